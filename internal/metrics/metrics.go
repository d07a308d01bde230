// Package metrics exposes Prometheus observability primitives for the bridge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry *prometheus.Registry

	settlements          *prometheus.CounterVec
	nodeReconnects       prometheus.Counter
	droppedNotifications prometheus.Counter
	nodeCallErrors       *prometheus.CounterVec
}

// New registers and returns the bridge metrics on a dedicated registry.
func New() *Metrics {
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nwcd_settlements_total",
		Help: "Counts ledger settlements by direction and result.",
	}, []string{"direction", "result"})

	nodeReconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nwcd_node_reconnects_total",
		Help: "Counts node websocket reconnect attempts.",
	})

	droppedNotifications := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nwcd_dropped_notifications_total",
		Help: "Counts queued notifications dropped after a processing failure.",
	})

	nodeCallErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nwcd_node_call_errors_total",
		Help: "Counts failed node API calls by operation.",
	}, []string{"op"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(settlements, nodeReconnects, droppedNotifications, nodeCallErrors)

	return &Metrics{
		registry:             registry,
		settlements:          settlements,
		nodeReconnects:       nodeReconnects,
		droppedNotifications: droppedNotifications,
		nodeCallErrors:       nodeCallErrors,
	}
}

// Registry returns the registry backing the scrape endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordSettlement(direction, result string) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(direction, result).Inc()
}

func (m *Metrics) RecordNodeReconnect() {
	if m == nil {
		return
	}
	m.nodeReconnects.Inc()
}

func (m *Metrics) RecordDroppedNotification() {
	if m == nil {
		return
	}
	m.droppedNotifications.Inc()
}

func (m *Metrics) RecordNodeCallError(op string) {
	if m == nil {
		return
	}
	m.nodeCallErrors.WithLabelValues(op).Inc()
}
