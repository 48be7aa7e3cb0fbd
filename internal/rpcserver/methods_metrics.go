package rpcserver

import (
	"context"
	"encoding/json"
)

// MetricsModule implements metrics.checkStatus.
type MetricsModule struct {
	// Running reports whether the metrics push loop is still active. It's
	// a func rather than a bool so the module always reflects current
	// state instead of a value captured at construction time.
	Running func() bool
}

func (m *MetricsModule) Name() string { return "metrics" }

func (m *MetricsModule) Methods() map[string]MethodFunc {
	return map[string]MethodFunc{
		"metrics.checkStatus": m.checkStatus,
	}
}

func (m *MetricsModule) checkStatus(_ context.Context, _ json.RawMessage) (any, error) {
	status := "stopped"
	if m.Running != nil && m.Running() {
		status = "running"
	}
	return map[string]string{"status": status}, nil
}
