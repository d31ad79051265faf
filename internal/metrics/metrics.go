package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gowatchlist"

// Metrics holds the Prometheus collectors of the service
type Metrics struct {
	CatalogRequests   *prometheus.CounterVec
	CatalogLatency    *prometheus.HistogramVec
	SearchCycles      *prometheus.CounterVec
	TrackingMutations *prometheus.CounterVec
	TrackedItems      *prometheus.GaugeVec
	StreamClients     *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CatalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Catalog requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		CatalogLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_request_duration_seconds",
			Help:      "Catalog request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		SearchCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cycles_total",
			Help:      "Search cycles by final phase (results, partial, failed, superseded, idle).",
		}, []string{"outcome"}),
		TrackingMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_operations_total",
			Help:      "Tracking store operations by list, operation and outcome.",
		}, []string{"list", "op", "outcome"}),
		TrackedItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_items",
			Help:      "Number of tracked items per list.",
		}, []string{"list"}),
		StreamClients: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Connected websocket clients per topic.",
		}, []string{"topic"}),
	}

	reg.MustRegister(
		m.CatalogRequests,
		m.CatalogLatency,
		m.SearchCycles,
		m.TrackingMutations,
		m.TrackedItems,
		m.StreamClients,
	)
	return m
}
