// Package metrics mirrors the shape of the teacher's p2p.Metrics: a small
// struct of prometheus collectors passed around as an option, with a
// NopMetrics() constructor used by default and in tests.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "peernet"

// Metrics holds the counters and gauges Net reports through.
type Metrics struct {
	// DatagramsRouted counts every feed outcome, labeled "connected",
	// "connected-disconnect", "connect", "connless", or "stray".
	DatagramsRouted *prometheus.CounterVec

	// BytesSent/BytesReceived are labeled by chunk_type: "connless",
	// "connected", "vital".
	BytesSent     *prometheus.CounterVec
	BytesReceived *prometheus.CounterVec

	// PeersActive is the current size of the peer registry.
	PeersActive prometheus.Gauge
}

// NewMetrics registers and returns a Metrics bound to reg. Passing a nil
// registry is a programming error, matching prometheus' own MustRegister
// contract.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		DatagramsRouted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_routed_total",
			Help:      "Number of inbound datagrams routed by feed, by outcome.",
		}, []string{"outcome"}),
		BytesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_sent_total",
			Help:      "Number of application bytes sent, by chunk type.",
		}, []string{"chunk_type"}),
		BytesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Number of application bytes received, by chunk type.",
		}, []string{"chunk_type"}),
		PeersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peers_active",
			Help:      "Current number of live peer registry entries.",
		}),
	}
	reg.MustRegister(m.DatagramsRouted, m.BytesSent, m.BytesReceived, m.PeersActive)
	return m
}

// NopMetrics returns a Metrics whose collectors are never registered,
// usable standalone without a registry. This is the default Net wires in
// when no metrics NetOption is given.
func NopMetrics() *Metrics {
	return &Metrics{
		DatagramsRouted: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "unregistered_datagrams_routed_total"}, []string{"outcome"}),
		BytesSent:       prometheus.NewCounterVec(prometheus.CounterOpts{Name: "unregistered_bytes_sent_total"}, []string{"chunk_type"}),
		BytesReceived:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: "unregistered_bytes_received_total"}, []string{"chunk_type"}),
		PeersActive:     prometheus.NewGauge(prometheus.GaugeOpts{Name: "unregistered_peers_active"}),
	}
}
