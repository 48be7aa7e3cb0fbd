package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

// PushLoop periodically pushes the registry to a Prometheus Pushgateway
// until ctx is done. It marks itself running on the registry so
// metrics.checkStatus reflects its liveness.
func (m *Registry) PushLoop(ctx context.Context, gatewayURL string, interval time.Duration, log *zap.Logger) {
	if gatewayURL == "" {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}

	pusher := push.New(gatewayURL, "meshpin_node").Gatherer(m.registry)

	m.SetPushRunning(true)
	defer m.SetPushRunning(false)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := pusher.Push(); err != nil {
				log.Warn("metrics: push to gateway failed", zap.Error(err))
			}
		}
	}
}
