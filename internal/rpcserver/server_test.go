package rpcserver

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/meshpin/node/internal/objectstore/storetest"
	"github.com/meshpin/node/pkg/network"
	"github.com/meshpin/node/pkg/state"
)

type dupModuleA struct{}

func (dupModuleA) Name() string { return "a" }
func (dupModuleA) Methods() map[string]MethodFunc {
	return map[string]MethodFunc{"same.name": func(context.Context, json.RawMessage) (any, error) { return nil, nil }}
}

type dupModuleB struct{}

func (dupModuleB) Name() string { return "b" }
func (dupModuleB) Methods() map[string]MethodFunc {
	return map[string]MethodFunc{"same.name": func(context.Context, json.RawMessage) (any, error) { return nil, nil }}
}

func TestNewRejectsDuplicateMethodName(t *testing.T) {
	_, err := New("127.0.0.1:0", []Module{dupModuleA{}, dupModuleB{}}, nil, nil)
	if err == nil {
		t.Fatal("expected RegisterMethodError for duplicate method name")
	}
	if _, ok := err.(*RegisterMethodError); !ok {
		t.Fatalf("expected *RegisterMethodError, got %T: %v", err, err)
	}
}

func TestDispatchUnknownMethod(t *testing.T) {
	srv, err := New("127.0.0.1:0", nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp := srv.dispatch(context.Background(), []byte(`{"id":1,"method":"nope.nope","params":null}`))
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method-not-found error, got %+v", resp)
	}
}

func TestUtilPing(t *testing.T) {
	atom := zap.NewAtomicLevel()
	util := NewUtilModule(&atom)
	srv, err := New("127.0.0.1:0", []Module{util}, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp := srv.dispatch(context.Background(), []byte(`{"id":1,"method":"util.ping","params":null}`))
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	m, ok := resp.Result.(map[string]string)
	if !ok || m["response"] != "pong" {
		t.Fatalf("unexpected result: %+v", resp.Result)
	}
}

func TestUtilUpdateLogLevelRejectsUnknownLevel(t *testing.T) {
	atom := zap.NewAtomicLevel()
	util := NewUtilModule(&atom)
	srv, err := New("127.0.0.1:0", []Module{util}, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp := srv.dispatch(context.Background(), []byte(`{"id":1,"method":"util.updateLogLevel","params":{"level":"not-a-level"}}`))
	if resp.Error == nil || resp.Error.Code != codeGenericFailure {
		t.Fatalf("expected generic failure for unknown level, got %+v", resp)
	}
}

func TestIpfsAddUpdatesState(t *testing.T) {
	mock := storetest.NewMock()
	mock.Respond("/api/v0/add", 200, `{"Hash":"QmFoo","Name":"QmFoo"}`)

	st := state.New(nil).Start()
	defer st.Stop()

	boot, err := network.NewBuilder(network.NetworkConfig{IsBootNode: true, GossipTopic: "gossip_topic"}).Build()
	if err != nil {
		t.Fatalf("Build network: %v", err)
	}
	defer boot.Close()
	netClient, err := boot.Start()
	if err != nil {
		t.Fatalf("Start network: %v", err)
	}
	defer netClient.Stop()

	mod := &IpfsModule{Store: mock, State: st, Net: netClient, Topic: "gossip_topic", Log: zap.NewNop()}
	srv, err := New("127.0.0.1:0", []Module{mod}, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp := srv.dispatch(context.Background(), []byte(`{"id":1,"method":"ipfs.add","params":{"bytes":[1,2,3,4]}}`))
	if resp.Error != nil {
		t.Fatalf("ipfs.add failed: %v", resp.Error)
	}

	hashes, err := st.GetIpfsHashes()
	if err != nil {
		t.Fatalf("GetIpfsHashes: %v", err)
	}
	found := false
	for _, h := range hashes {
		if h == "QmFoo" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected QmFoo recorded in state, got %v", hashes)
	}
}
