// Package metrics holds the node's Prometheus collectors on an isolated
// registry, grounded on the teacher's own metrics package shape.
package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every meshpin Prometheus collector on its own
// prometheus.Registry, so metrics from multiple nodes in the same process
// (as in tests) never collide.
type Registry struct {
	registry *prometheus.Registry

	RPCRequestsTotal          *prometheus.CounterVec
	RPCRequestDurationSeconds *prometheus.HistogramVec

	GossipMessagesReceivedTotal *prometheus.CounterVec
	GossipMessagesPublishedTotal *prometheus.CounterVec
	GossipIntentsAppliedTotal   *prometheus.CounterVec

	ConnectedPeers *prometheus.GaugeVec

	ObjectStoreRequestsTotal          *prometheus.CounterVec
	ObjectStoreRequestDurationSeconds *prometheus.HistogramVec

	BuildInfo *prometheus.GaugeVec

	pushRunning atomic.Bool
}

// New creates a Registry with every collector registered, recording
// version/goVersion on the build info gauge.
func New(version, goVersion string) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Registry{
		registry: reg,

		RPCRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meshpin_rpc_requests_total",
				Help: "Total number of JSON-RPC requests handled.",
			},
			[]string{"method", "outcome"},
		),
		RPCRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meshpin_rpc_request_duration_seconds",
				Help:    "Duration of JSON-RPC request handling in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),

		GossipMessagesReceivedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meshpin_gossip_messages_received_total",
				Help: "Total number of gossipsub messages received.",
			},
			[]string{"topic"},
		),
		GossipMessagesPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meshpin_gossip_messages_published_total",
				Help: "Total number of gossipsub messages published.",
			},
			[]string{"topic"},
		),
		GossipIntentsAppliedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meshpin_gossip_intents_applied_total",
				Help: "Total number of decoded gossip intents applied to the object store, by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),

		ConnectedPeers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "meshpin_connected_peers",
				Help: "Number of currently connected libp2p peers.",
			},
			[]string{"node_id"},
		),

		ObjectStoreRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meshpin_objectstore_requests_total",
				Help: "Total number of object store HTTP requests, by endpoint and outcome.",
			},
			[]string{"endpoint", "outcome"},
		),
		ObjectStoreRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meshpin_objectstore_request_duration_seconds",
				Help:    "Duration of object store HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),

		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "meshpin_info",
				Help: "Build information for the running meshpin node.",
			},
			[]string{"version", "go_version"},
		),
	}

	reg.MustRegister(
		m.RPCRequestsTotal,
		m.RPCRequestDurationSeconds,
		m.GossipMessagesReceivedTotal,
		m.GossipMessagesPublishedTotal,
		m.GossipIntentsAppliedTotal,
		m.ConnectedPeers,
		m.ObjectStoreRequestsTotal,
		m.ObjectStoreRequestDurationSeconds,
		m.BuildInfo,
	)
	m.BuildInfo.WithLabelValues(version, goVersion).Set(1)

	return m
}

// Handler serves the Prometheus exposition format for this registry.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetPushRunning records whether the metrics push loop is currently
// active; metrics.checkStatus reads this through Running.
func (m *Registry) SetPushRunning(running bool) {
	m.pushRunning.Store(running)
}

// Running reports whether the push loop is currently active.
func (m *Registry) Running() bool {
	return m.pushRunning.Load()
}
