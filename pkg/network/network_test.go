package network

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBuilderRejectsMissingBootNodeAddr(t *testing.T) {
	_, err := NewBuilder(NetworkConfig{IsBootNode: false, BootNodeAddr: ""}).Build()
	if err != ErrMissingBootNodeAddr {
		t.Fatalf("expected ErrMissingBootNodeAddr, got %v", err)
	}
}

func TestBuilderAcceptsBootNode(t *testing.T) {
	n, err := NewBuilder(NetworkConfig{IsBootNode: true, GossipTopic: "gossip_topic"}).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer n.Close()
}

func TestSendAfterStopFails(t *testing.T) {
	n, err := NewBuilder(NetworkConfig{IsBootNode: true, GossipTopic: "gossip_topic"}).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer n.Close()

	client, err := n.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	client.Stop()
	<-client.Stopped()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := client.PeerID(ctx); !errors.Is(err, ErrSendClosed) {
		t.Fatalf("expected ErrSendClosed after Stopped(), got %v", err)
	}
}

// TestBootstrapConverges is the end-to-end scenario from the testable
// properties list: a non-boot node dialing a boot node becomes connected
// to it within the bootstrap budget.
func TestBootstrapConverges(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network integration test in short mode")
	}

	boot, err := NewBuilder(NetworkConfig{IsBootNode: true, GossipTopic: "gossip_topic"}).Build()
	if err != nil {
		t.Fatalf("Build boot: %v", err)
	}
	bootClient, err := boot.Start()
	if err != nil {
		t.Fatalf("Start boot: %v", err)
	}
	defer boot.Close()
	defer bootClient.Stop()

	bootAddrs := boot.host.Addrs()
	if len(bootAddrs) == 0 {
		t.Fatal("boot node has no listen addresses")
	}
	bootAddr := bootAddrs[0].String() + "/p2p/" + boot.host.ID().String()

	n1, err := NewBuilder(NetworkConfig{
		IsBootNode:   false,
		BootNodeAddr: bootAddr,
		GossipTopic:  "gossip_topic",
	}).Build()
	if err != nil {
		t.Fatalf("Build n1: %v", err)
	}
	n1Client, err := n1.Start()
	if err != nil {
		t.Fatalf("Start n1: %v", err)
	}
	defer n1.Close()
	defer n1Client.Stop()

	deadline := time.After(2 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			t.Fatal("bootstrap did not converge within 2s")
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			peers, err := n1Client.ConnectedPeers(ctx)
			cancel()
			if err != nil {
				continue
			}
			for _, p := range peers {
				if p == boot.host.ID() {
					return
				}
			}
		}
	}
}
