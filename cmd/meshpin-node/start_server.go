package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/meshpin/node/internal/config"
	"github.com/meshpin/node/internal/logging"
	"github.com/meshpin/node/internal/metrics"
	"github.com/meshpin/node/internal/supervisor"
	"github.com/meshpin/node/pkg/network"
)

const version = "0.1.0"

type startServerFlags struct {
	port           int
	networkPort    int
	ip             string
	enableMetrics  bool
	isBootNode     bool
	bootNodeAddr   string
	dev            bool
	gossipTopic    string
	logLevel       string
	pushGatewayURL string
	metricsAddr    string
}

func startServerCmd() *cobra.Command {
	var f startServerFlags

	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Start a meshpin node and its JSON-RPC server",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if f.dev {
				return nil
			}
			hasBootFlag := f.isBootNode
			hasBootAddr := f.bootNodeAddr != ""
			if hasBootFlag == hasBootAddr {
				return fmt.Errorf("exactly one of --is-boot-node and --boot-node-addr must be supplied (unless --dev)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStartServer(cmd.Context(), f)
		},
	}

	cmd.Flags().IntVar(&f.port, "port", 8008, "JSON-RPC listen port")
	cmd.Flags().IntVar(&f.networkPort, "network-port", 0, "libp2p listen port (0 = OS-assigned)")
	cmd.Flags().StringVar(&f.ip, "ip", "0.0.0.0", "JSON-RPC bind address")
	cmd.Flags().BoolVar(&f.enableMetrics, "enable-metrics", false, "enable the Prometheus push loop")
	cmd.Flags().BoolVar(&f.isBootNode, "is-boot-node", false, "run this node as a boot node")
	cmd.Flags().StringVar(&f.bootNodeAddr, "boot-node-addr", "", "multiaddr of a boot node to dial")
	cmd.Flags().BoolVar(&f.dev, "dev", false, "skip boot-node flag validation for local development")
	cmd.Flags().StringVar(&f.gossipTopic, "gossip-topic", "gossip_topic", "gossipsub topic name")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "initial structured log level")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", ":9090", "bind address for the /metrics HTTP endpoint (used when --enable-metrics is set)")

	return cmd
}

func runStartServer(ctx context.Context, f startServerFlags) error {
	log, atom, err := logging.New(f.logLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	env := config.FromEnviron()
	reg := metrics.New(version, runtime.Version())

	sup, err := supervisor.Build(supervisor.Config{
		RPCAddr: fmt.Sprintf("%s:%d", f.ip, f.port),
		NetCfg: network.NetworkConfig{
			ListenPort:   f.networkPort,
			IsBootNode:   f.isBootNode,
			BootNodeAddr: f.bootNodeAddr,
			GossipTopic:  f.gossipTopic,
			Logger:       log,
		},
		IpfsBaseURL:    env.IpfsBaseURL,
		PushGatewayURL: pushGatewayURL(f.enableMetrics, env.PushGatewayBaseURL),
		MetricsAddr:    metricsAddr(f.enableMetrics, f.metricsAddr),
		Log:            log,
		Atom:           atom,
		Metrics:        reg,
	})
	if err != nil {
		return fmt.Errorf("building node: %w", err)
	}

	return sup.Run(ctx)
}

func pushGatewayURL(enabled bool, url string) string {
	if !enabled {
		return ""
	}
	return url
}

func metricsAddr(enabled bool, addr string) string {
	if !enabled {
		return ""
	}
	return addr
}
