package cache

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the store's Prometheus collectors. Stores are constructed
// per app (and per test), so collectors are instance fields rather than
// package globals; pass a Registerer to expose them.
type Metrics struct {
	Hits      prometheus.Counter
	Misses    prometheus.Counter
	Refetches prometheus.Counter
	Evictions prometheus.Counter
	Patches   prometheus.Counter
	Slots     prometheus.Gauge
}

// NewMetrics builds the collectors and registers them when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Reads served from a populated slot.",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Reads that found no populated slot.",
		}),
		Refetches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_refetches_total",
			Help: "Background refetches triggered by staleness.",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Slots evicted after the garbage-collection window.",
		}),
		Patches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_patches_total",
			Help: "Mutation patches applied to slots.",
		}),
		Slots: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_slots",
			Help: "Current number of live slots.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Hits, m.Misses, m.Refetches, m.Evictions, m.Patches, m.Slots)
	}
	return m
}
