package rpcserver

import (
	"context"
	"encoding/json"
)

// MethodFunc handles one RPC method call. params is the raw JSON params
// value (may be null); the returned value is marshaled as the JSON-RPC
// result.
type MethodFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Module is a named bundle of RPC methods, e.g. "util", "ipfs", "metrics".
type Module interface {
	// Name is the module's dot-prefix namespace. The server does not use it
	// for dispatch; method names already carry their own namespace (e.g.
	// "ipfs.add").
	Name() string
	Methods() map[string]MethodFunc
}

// merge combines every module's Methods bundle into a single dispatch
// table. A duplicate method name across modules is a fatal configuration
// error surfaced at startup, not a silent override.
func merge(modules []Module) (map[string]MethodFunc, error) {
	table := make(map[string]MethodFunc)
	for _, m := range modules {
		for name, fn := range m.Methods() {
			if _, exists := table[name]; exists {
				return nil, &RegisterMethodError{Method: name}
			}
			table[name] = fn
		}
	}
	return table, nil
}
