package network

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
)

const responseTimeout = 5 * time.Second

type requestPayload interface {
	isNetworkRequest()
}

type peerIDRequest struct{}
type connectedPeersRequest struct{}
type subscribeRequest struct{ topic string }
type publishRequest struct {
	topic string
	data  []byte
}

func (peerIDRequest) isNetworkRequest()        {}
func (connectedPeersRequest) isNetworkRequest() {}
func (subscribeRequest) isNetworkRequest()      {}
func (publishRequest) isNetworkRequest()        {}

// resultKind tags which request variant produced a result, so a client
// wrapper can confirm the actor answered the request it actually sent
// rather than trusting the reply blindly.
type resultKind int

const (
	resultPeerID resultKind = iota
	resultConnectedPeers
	resultSubscribe
	resultPublish
)

type result struct {
	kind           resultKind
	peerID         peer.ID
	connectedPeers []peer.ID
	err            error
}

type request struct {
	payload requestPayload
	reply   chan result
}

// NetworkClient is the only way outside code talks to a running Network
// actor. Safe for concurrent use.
type NetworkClient struct {
	reqCh  chan request
	stopCh chan struct{}
	doneCh chan struct{}

	stopOnce sync.Once
}

func (c *NetworkClient) send(ctx context.Context, payload requestPayload) (result, error) {
	select {
	case <-c.doneCh:
		return result{}, ErrSendClosed
	default:
	}

	reply := make(chan result, 1)
	select {
	case c.reqCh <- request{payload: payload, reply: reply}:
	default:
		return result{}, ErrSendClosed
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, responseTimeout)
	defer cancel()

	select {
	case r := <-reply:
		return r, r.err
	case <-timeoutCtx.Done():
		return result{}, fmt.Errorf("%w: waited %s", ErrTimeout, responseTimeout)
	}
}

// PeerID returns this node's local peer id.
func (c *NetworkClient) PeerID(ctx context.Context) (peer.ID, error) {
	r, err := c.send(ctx, peerIDRequest{})
	if err != nil {
		return "", err
	}
	if r.kind != resultPeerID {
		return "", ErrUnexpectedResponse
	}
	return r.peerID, nil
}

// ConnectedPeers returns a snapshot of the swarm's currently connected
// peers.
func (c *NetworkClient) ConnectedPeers(ctx context.Context) ([]peer.ID, error) {
	r, err := c.send(ctx, connectedPeersRequest{})
	if err != nil {
		return nil, err
	}
	if r.kind != resultConnectedPeers {
		return nil, ErrUnexpectedResponse
	}
	return r.connectedPeers, nil
}

// Subscribe idempotently subscribes to topic.
func (c *NetworkClient) Subscribe(ctx context.Context, topic string) error {
	r, err := c.send(ctx, subscribeRequest{topic: topic})
	if err != nil {
		return err
	}
	if r.kind != resultSubscribe {
		return ErrUnexpectedResponse
	}
	return nil
}

// Publish publishes data on topic via gossipsub.
func (c *NetworkClient) Publish(ctx context.Context, topic string, data []byte) error {
	r, err := c.send(ctx, publishRequest{topic: topic, data: data})
	if err != nil {
		return err
	}
	if r.kind != resultPublish {
		return ErrUnexpectedResponse
	}
	return nil
}

// Stop signals the actor to exit its loop. Safe to call more than once.
func (c *NetworkClient) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

// Stopped returns a channel closed once the actor's run loop has
// returned, whether because of Stop, context cancellation, or an
// unexpected exit.
func (c *NetworkClient) Stopped() <-chan struct{} {
	return c.doneCh
}

func (n *Network) run(reqCh chan request, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	n.log.Debug("starting network actor")
	for {
		select {
		case req, ok := <-reqCh:
			if !ok {
				n.log.Error("network actor request channel closed unexpectedly")
				return
			}
			n.handle(req)
		case <-stopCh:
			n.log.Info("network actor stopped after receiving shutdown signal")
			return
		case <-n.ctx.Done():
			return
		}
	}
}

func (n *Network) handle(req request) {
	res := result{}
	switch p := req.payload.(type) {
	case peerIDRequest:
		res.kind = resultPeerID
		res.peerID = n.host.ID()
	case connectedPeersRequest:
		res.kind = resultConnectedPeers
		for _, c := range n.host.Network().Conns() {
			res.connectedPeers = append(res.connectedPeers, c.RemotePeer())
		}
		n.refreshConnectedPeersGauge()
	case subscribeRequest:
		res.kind = resultSubscribe
		if p.topic != n.cfg.GossipTopic {
			// Additional topics beyond the node's configured gossip topic
			// aren't wired into the broadcast fan-out; report success only
			// for the topic this node actually joined.
			res.err = fmt.Errorf("network: topic %q is not joined by this node", p.topic)
		}
	case publishRequest:
		res.kind = resultPublish
		if err := n.topic.Publish(n.ctx, p.data); err != nil {
			res.err = fmt.Errorf("network: publish failed: %w", err)
		} else if n.metrics != nil {
			n.metrics.GossipMessagesPublishedTotal.WithLabelValues(p.topic).Inc()
		}
	}

	select {
	case req.reply <- res:
	default:
		n.log.Warn("dropped network response: receiver not waiting")
	}
}
