package network

import (
	"crypto/sha256"
	"encoding/hex"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/event"
	"github.com/libp2p/go-libp2p/core/peerstore"
	"go.uber.org/zap"
)

func shaHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// pumpSubscription drains the topic subscription for as long as the
// network's context is live, logging and forwarding each message's data
// to the broadcast fan-out.
func (n *Network) pumpSubscription(sub *pubsub.Subscription) {
	for {
		msg, err := sub.Next(n.ctx)
		if err != nil {
			// Context cancellation on shutdown surfaces here too; either
			// way there's nothing left to pump.
			return
		}
		if msg.ReceivedFrom == n.host.ID() {
			continue
		}
		n.log.Info("Gossip message received", zap.String("source", msg.ReceivedFrom.String()))
		if n.metrics != nil {
			n.metrics.GossipMessagesReceivedTotal.WithLabelValues(n.cfg.GossipTopic).Inc()
		}
		n.broadcast.Send(msg.Data)
		n.log.Debug("Gossip message relayed to client")
	}
}

// watchIdentify subscribes to the host's identify-completed events and
// feeds newly learned addresses into the DHT's routing table.
func (n *Network) watchIdentify() {
	sub, err := n.host.EventBus().Subscribe(new(event.EvtPeerIdentificationCompleted))
	if err != nil {
		n.log.Warn("network: could not subscribe to identify events", zap.Error(err))
		return
	}
	defer sub.Close()

	for {
		select {
		case <-n.ctx.Done():
			return
		case evt, ok := <-sub.Out():
			if !ok {
				return
			}
			id, ok := evt.(event.EvtPeerIdentificationCompleted)
			if !ok {
				continue
			}
			n.host.Peerstore().AddAddrs(id.Peer, id.ListenAddrs, peerstore.TempAddrTTL)
			n.dht.RoutingTable().TryAddPeer(id.Peer, false, false)
			n.refreshConnectedPeersGauge()
		}
	}
}

// refreshConnectedPeersGauge sets the connected-peers gauge to the
// swarm's current connection count. Called on every identify-completed
// event (a real connectivity change) and whenever a client queries
// ConnectedPeers, so the exposed value never goes stale between the two.
func (n *Network) refreshConnectedPeersGauge() {
	if n.metrics == nil {
		return
	}
	n.metrics.ConnectedPeers.WithLabelValues(n.host.ID().String()).Set(float64(len(n.host.Network().Conns())))
}
