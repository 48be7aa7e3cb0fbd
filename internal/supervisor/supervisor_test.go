package supervisor

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/meshpin/node/internal/metrics"
	"github.com/meshpin/node/pkg/network"
)

func TestBuildAndShutdown(t *testing.T) {
	log := zap.NewNop()
	atom := zap.NewAtomicLevel()
	reg := metrics.New("test", "go-test")

	sup, err := Build(Config{
		RPCAddr: "127.0.0.1:0",
		NetCfg: network.NetworkConfig{
			IsBootNode:  true,
			GossipTopic: "gossip_topic",
		},
		IpfsBaseURL: "http://localhost:5001",
		Log:         log,
		Atom:        &atom,
		Metrics:     reg,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- sup.shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete in time")
	}
}
