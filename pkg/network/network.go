// Package network encapsulates the libp2p swarm behind a small
// synchronous-looking request/response surface. A single goroutine runs
// the event loop; every external interaction is a message.
package network

import (
	"context"
	"fmt"
	"time"

	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	libp2pquic "github.com/libp2p/go-libp2p/p2p/transport/quic"
	"github.com/libp2p/go-libp2p/p2p/transport/tcp"
	"go.uber.org/zap"

	"github.com/meshpin/node/internal/gossip"
	"github.com/meshpin/node/internal/metrics"
)

const identifyProtocolVersion = "/meshpin/id/0.0.0"

// NetworkConfig configures a Network before it's built. ListenPort 0 lets
// the OS assign a port.
type NetworkConfig struct {
	ListenPort   int
	IsBootNode   bool
	BootNodeAddr string
	GossipTopic  string
	Logger       *zap.Logger
	Metrics      *metrics.Registry
}

// Builder validates a NetworkConfig and constructs a Network. Validation
// happens at Build time, not on first use.
type Builder struct {
	cfg NetworkConfig
}

// NewBuilder returns a Builder for cfg.
func NewBuilder(cfg NetworkConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Build validates the configuration, constructs the libp2p host and its
// behaviors, and returns an unstarted Network. It fails fast - no
// goroutine is spawned - if the configuration is incomplete.
func (b *Builder) Build() (*Network, error) {
	cfg := b.cfg
	if !cfg.IsBootNode && cfg.BootNodeAddr == "" {
		return nil, ErrMissingBootNodeAddr
	}
	if cfg.GossipTopic == "" {
		cfg.GossipTopic = "gossip_topic"
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	priv, err := newIdentity()
	if err != nil {
		return nil, fmt.Errorf("network: generating identity: %w", err)
	}

	listenTCP := fmt.Sprintf("/ip4/0.0.0.0/tcp/%d", cfg.ListenPort)
	listenQUIC := fmt.Sprintf("/ip4/0.0.0.0/udp/%d/quic-v1", cfg.ListenPort)

	h, err := libp2p.New(
		libp2p.Identity(priv),
		libp2p.ListenAddrStrings(listenTCP, listenQUIC),
		libp2p.Transport(tcp.NewTCPTransport),
		libp2p.Transport(libp2pquic.NewTransport),
		libp2p.ProtocolVersion(identifyProtocolVersion),
	)
	if err != nil {
		return nil, fmt.Errorf("network: creating libp2p host: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	dhtMode := dht.ModeAuto
	if cfg.IsBootNode {
		dhtMode = dht.ModeServer
	}
	kad, err := dht.New(ctx, h, dht.Mode(dhtMode))
	if err != nil {
		cancel()
		_ = h.Close()
		return nil, fmt.Errorf("network: creating DHT: %w", err)
	}

	ps, err := pubsub.NewGossipSub(ctx, h,
		pubsub.WithMessageIdFn(contentDerivedMessageID),
		pubsub.WithGossipSubParams(gossipSubParamsWith10sHeartbeat()),
	)
	if err != nil {
		cancel()
		_ = h.Close()
		return nil, fmt.Errorf("network: creating gossipsub: %w", err)
	}

	topic, err := ps.Join(cfg.GossipTopic)
	if err != nil {
		cancel()
		_ = h.Close()
		return nil, fmt.Errorf("network: joining topic %q: %w", cfg.GossipTopic, err)
	}

	n := &Network{
		cfg:       cfg,
		host:      h,
		dht:       kad,
		pubsub:    ps,
		topic:     topic,
		broadcast: gossip.NewBroadcast(),
		log:       log,
		metrics:   cfg.Metrics,
		ctx:       ctx,
		cancel:    cancel,
	}
	return n, nil
}

// Network owns the libp2p host and its behaviors. After Start returns, the
// host is used by the goroutines Start spawned (the request loop, the
// subscription pump and the identify watcher).
type Network struct {
	cfg       NetworkConfig
	host      host.Host
	dht       *dht.IpfsDHT
	pubsub    *pubsub.PubSub
	topic     *pubsub.Topic
	broadcast *gossip.Broadcast
	log       *zap.Logger
	metrics   *metrics.Registry

	ctx    context.Context
	cancel context.CancelFunc
}

// Broadcast returns the fan-out broadcaster gossip messages are published
// on. The dispatcher and any test harness subscribe independently.
func (n *Network) Broadcast() *gossip.Broadcast {
	return n.broadcast
}

// Start runs the bootstrap sequence, spawns the event loop and the gossip
// subscription pump, and returns a client handle.
func (n *Network) Start() (*NetworkClient, error) {
	for _, addr := range n.host.Addrs() {
		n.log.Info("listening", zap.String("addr", fmt.Sprintf("%s/p2p/%s", addr, n.host.ID())))
	}

	if !n.cfg.IsBootNode {
		n.bootstrap()
	}

	sub, err := n.topic.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("network: subscribing to %q: %w", n.cfg.GossipTopic, err)
	}

	reqCh := make(chan request, 100)
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	go n.pumpSubscription(sub)
	go n.watchIdentify()
	go n.run(reqCh, stopCh, doneCh)

	return &NetworkClient{reqCh: reqCh, stopCh: stopCh, doneCh: doneCh}, nil
}

// bootstrap dials the configured boot node and waits up to 1s for the
// routing table to pick up a peer before proceeding regardless.
func (n *Network) bootstrap() {
	addrInfo, err := peer.AddrInfoFromString(n.cfg.BootNodeAddr)
	if err != nil {
		n.log.Warn("bootstrap: invalid boot node address", zap.Error(err))
		return
	}

	dialCtx, cancel := context.WithTimeout(n.ctx, time.Second)
	defer cancel()
	if err := n.host.Connect(dialCtx, *addrInfo); err != nil {
		n.log.Warn("bootstrap: failed to dial boot node", zap.Error(err))
		return
	}

	budgetCtx, cancel := context.WithTimeout(n.ctx, time.Second)
	defer cancel()
	peers, err := n.dht.GetClosestPeers(budgetCtx, n.host.ID().String())
	if err != nil || len(peers) == 0 {
		n.log.Warn("bootstrap: timed out priming routing table, proceeding anyway")
		return
	}
	n.log.Info("Bootstrap successful!")
}

func contentDerivedMessageID(m *pubsub.Message) string {
	return shaHex(m.Data)
}

func gossipSubParamsWith10sHeartbeat() pubsub.GossipSubParams {
	params := pubsub.DefaultGossipSubParams()
	params.HeartbeatInterval = 10 * time.Second
	return params
}

// Close tears down the libp2p host. Call after Stop on the client so no
// in-flight request races the teardown.
func (n *Network) Close() error {
	n.cancel()
	return n.host.Close()
}
