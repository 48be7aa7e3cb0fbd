package rpcserver

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/meshpin/node/internal/gossip"
	"github.com/meshpin/node/internal/objectstore"
	"github.com/meshpin/node/pkg/network"
	"github.com/meshpin/node/pkg/state"
)

// IpfsModule implements ipfs.id, ipfs.add, ipfs.cat, ipfs.pin.
type IpfsModule struct {
	Store   objectstore.Client
	State   *state.StateClient
	Net     *network.NetworkClient
	Topic   string
	Log     *zap.Logger
}

func (m *IpfsModule) Name() string { return "ipfs" }

func (m *IpfsModule) Methods() map[string]MethodFunc {
	return map[string]MethodFunc{
		"ipfs.id":  m.id,
		"ipfs.add": m.add,
		"ipfs.cat": m.cat,
		"ipfs.pin": m.pin,
	}
}

func (m *IpfsModule) id(ctx context.Context, _ json.RawMessage) (any, error) {
	resp, err := objectstore.Identity(ctx, m.Store)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

type addParams struct {
	Bytes []byte `json:"bytes"`
}

func (m *IpfsModule) add(ctx context.Context, params json.RawMessage) (any, error) {
	var p addParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("ipfs.add: %w", err)
	}

	resp, err := objectstore.Add(ctx, m.Store, p.Bytes)
	if err != nil {
		return nil, err
	}

	// The local blob is already the source of truth once Add succeeded;
	// state and gossip failures are logged, not returned, per the
	// propagation policy.
	if err := m.State.AddIpfsHash(resp.Hash); err != nil {
		m.Log.Error("ipfs.add: recording local state failed", zap.String("hash", resp.Hash), zap.Error(err))
	}
	if err := m.publish(ctx, gossip.Intent{Kind: gossip.IntentAddFile, Hash: resp.Hash}); err != nil {
		m.Log.Error("ipfs.add: publishing gossip intent failed", zap.String("hash", resp.Hash), zap.Error(err))
	}

	return resp, nil
}

type catParams struct {
	Hash string `json:"hash"`
}

func (m *IpfsModule) cat(ctx context.Context, params json.RawMessage) (any, error) {
	var p catParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("ipfs.cat: %w", err)
	}
	if err := objectstore.ValidateHash(p.Hash); err != nil {
		return nil, err
	}

	body, err := objectstore.Cat(ctx, m.Store, p.Hash)
	if err != nil {
		return nil, err
	}
	return body, nil
}

type pinParams struct {
	Action objectstore.PinAction `json:"action"`
	Hash   string                `json:"hash,omitempty"`
}

func (m *IpfsModule) pin(ctx context.Context, params json.RawMessage) (any, error) {
	var p pinParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("ipfs.pin: %w", err)
	}

	switch p.Action {
	case objectstore.PinActionLs:
		resp, err := objectstore.PinLs(ctx, m.Store)
		if err != nil {
			return nil, err
		}
		return resp, nil

	case objectstore.PinActionAdd:
		if p.Hash == "" {
			return nil, fmt.Errorf("ipfs.pin: hash is required for action %q", p.Action)
		}
		if err := objectstore.ValidateHash(p.Hash); err != nil {
			return nil, err
		}
		resp, err := objectstore.PinAdd(ctx, m.Store, p.Hash)
		if err != nil {
			return nil, err
		}
		if err := m.State.PinIpfsHash(p.Hash); err != nil {
			m.Log.Error("ipfs.pin add: recording local state failed", zap.String("hash", p.Hash), zap.Error(err))
		}
		if err := m.publish(ctx, gossip.Intent{Kind: gossip.IntentAddPin, Hash: p.Hash}); err != nil {
			m.Log.Error("ipfs.pin add: publishing gossip intent failed", zap.String("hash", p.Hash), zap.Error(err))
		}
		return resp, nil

	case objectstore.PinActionRm:
		if p.Hash == "" {
			return nil, fmt.Errorf("ipfs.pin: hash is required for action %q", p.Action)
		}
		if err := objectstore.ValidateHash(p.Hash); err != nil {
			return nil, err
		}
		resp, err := objectstore.PinRm(ctx, m.Store, p.Hash)
		if err != nil {
			return nil, err
		}
		if err := m.State.RmPinIpfsHash(p.Hash); err != nil {
			m.Log.Error("ipfs.pin rm: recording local state failed", zap.String("hash", p.Hash), zap.Error(err))
		}
		if err := m.publish(ctx, gossip.Intent{Kind: gossip.IntentRmPin, Hash: p.Hash}); err != nil {
			m.Log.Error("ipfs.pin rm: publishing gossip intent failed", zap.String("hash", p.Hash), zap.Error(err))
		}
		return resp, nil

	default:
		return nil, fmt.Errorf("ipfs.pin: unknown action %q", p.Action)
	}
}

func (m *IpfsModule) publish(ctx context.Context, intent gossip.Intent) error {
	data, err := intent.MarshalJSON()
	if err != nil {
		return err
	}
	return m.Net.Publish(ctx, m.Topic, data)
}
