package rpcserver

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// UtilModule implements util.ping and util.updateLogLevel.
type UtilModule struct {
	atom *zap.AtomicLevel
}

// NewUtilModule builds a UtilModule backed by atom, the same atomic level
// the logger was constructed with, so a level swap here is instantaneous
// and visible to every subsequent log record.
func NewUtilModule(atom *zap.AtomicLevel) *UtilModule {
	return &UtilModule{atom: atom}
}

func (m *UtilModule) Name() string { return "util" }

func (m *UtilModule) Methods() map[string]MethodFunc {
	return map[string]MethodFunc{
		"util.ping":           m.ping,
		"util.updateLogLevel": m.updateLogLevel,
	}
}

func (m *UtilModule) ping(_ context.Context, _ json.RawMessage) (any, error) {
	return map[string]string{"response": "pong"}, nil
}

type updateLogLevelParams struct {
	Level string `json:"level"`
}

func (m *UtilModule) updateLogLevel(_ context.Context, params json.RawMessage) (any, error) {
	var p updateLogLevelParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("util.updateLogLevel: %w", err)
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(p.Level)); err != nil {
		return nil, fmt.Errorf("util.updateLogLevel: %q is not a recognized log level", p.Level)
	}

	m.atom.SetLevel(lvl)
	return map[string]string{"response": "ok"}, nil
}
