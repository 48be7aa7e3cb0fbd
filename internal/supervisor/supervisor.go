// Package supervisor wires the network, state, RPC server, metrics, and
// gossip dispatcher together and drives cooperative shutdown.
package supervisor

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/meshpin/node/internal/gossip"
	"github.com/meshpin/node/internal/metrics"
	"github.com/meshpin/node/internal/objectstore"
	"github.com/meshpin/node/internal/rpcserver"
	"github.com/meshpin/node/pkg/network"
	"github.com/meshpin/node/pkg/state"
)

// Config collects everything the supervisor needs to assemble and run a
// node.
type Config struct {
	RPCAddr     string
	NetCfg      network.NetworkConfig
	IpfsBaseURL string
	PushGatewayURL string
	PushInterval   time.Duration
	MetricsAddr    string

	Log    *zap.Logger
	Atom   *zap.AtomicLevel
	Metrics *metrics.Registry
}

// Supervisor owns the running node's actors and its RPC server, and
// drives orderly shutdown on the first terminal event.
type Supervisor struct {
	cfg Config

	netClient        *network.NetworkClient
	net              *network.Network
	stateC           *state.StateClient
	rpc              *rpcserver.Server
	metricsSrv       *http.Server
	cancelDispatcher context.CancelFunc
}

// Build constructs every component but does not yet run them.
func Build(cfg Config) (*Supervisor, error) {
	cfg.NetCfg.Metrics = cfg.Metrics

	n, err := network.NewBuilder(cfg.NetCfg).Build()
	if err != nil {
		return nil, err
	}

	st := state.New(cfg.Log).Start()

	store := objectstore.NewHTTPClient(cfg.IpfsBaseURL, cfg.Metrics)

	util := rpcserver.NewUtilModule(cfg.Atom)
	metricsMod := &rpcserver.MetricsModule{Running: cfg.Metrics.Running}

	netClient, err := n.Start()
	if err != nil {
		st.Stop()
		_ = n.Close()
		return nil, err
	}

	ipfsMod := &rpcserver.IpfsModule{
		Store: store,
		State: st,
		Net:   netClient,
		Topic: cfg.NetCfg.GossipTopic,
		Log:   cfg.Log,
	}

	rpc, err := rpcserver.New(cfg.RPCAddr, []rpcserver.Module{util, ipfsMod, metricsMod}, cfg.Log, cfg.Metrics)
	if err != nil {
		netClient.Stop()
		st.Stop()
		_ = n.Close()
		return nil, err
	}

	dispatcher := gossip.NewDispatcher(store, cfg.Metrics, cfg.Log)
	dispatcherMsgs, cancelSub := n.Broadcast().Subscribe()
	dispatcherCtx, cancelDispatcher := context.WithCancel(context.Background())
	go func() {
		dispatcher.Run(dispatcherCtx, dispatcherMsgs)
		cancelSub()
	}()

	if cfg.PushGatewayURL != "" {
		interval := cfg.PushInterval
		if interval <= 0 {
			interval = 15 * time.Second
		}
		go cfg.Metrics.PushLoop(dispatcherCtx, cfg.PushGatewayURL, interval, cfg.Log)
	}

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = cfg.Metrics.NewServer(cfg.MetricsAddr)
		go func() {
			cfg.Log.Info("metrics endpoint started", zap.String("addr", cfg.MetricsAddr))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				cfg.Log.Error("metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	s := &Supervisor{
		cfg:              cfg,
		netClient:        netClient,
		net:              n,
		stateC:           st,
		rpc:              rpc,
		metricsSrv:       metricsSrv,
		cancelDispatcher: cancelDispatcher,
	}
	return s, nil
}

// Run serves the RPC server and blocks until the earliest of: server
// stopped, state stopped, network stopped, or SIGINT. It then stops every
// component, aggregating any secondary shutdown errors.
func (s *Supervisor) Run(ctx context.Context) error {
	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- s.rpc.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case runErr = <-serveErrCh:
		s.cfg.Log.Info("rpc server stopped")
	case <-s.stateC.Stopped():
		s.cfg.Log.Error("state actor stopped unexpectedly")
	case <-s.netClient.Stopped():
		s.cfg.Log.Error("network actor stopped unexpectedly")
	case <-sigCh:
		s.cfg.Log.Info("received interrupt signal, shutting down")
	case <-ctx.Done():
		runErr = ctx.Err()
	}

	shutdownErr := s.shutdown()
	if shutdownErr != nil {
		s.cfg.Log.Error("errors while stopping components", zap.Error(shutdownErr))
	}
	return multierr.Append(runErr, shutdownErr)
}

func (s *Supervisor) shutdown() error {
	var errs error
	if s.cancelDispatcher != nil {
		s.cancelDispatcher()
	}
	if err := s.rpc.Stop(); err != nil {
		errs = multierr.Append(errs, err)
	}
	s.netClient.Stop()
	s.stateC.Stop()
	if err := s.net.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if s.metricsSrv != nil {
		if err := s.metricsSrv.Close(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
