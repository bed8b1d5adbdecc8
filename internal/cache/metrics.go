package cache

import "github.com/prometheus/client_golang/prometheus"

var (
	metricHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelhostd",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total model cache hits",
	})
	metricMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelhostd",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total model cache misses (absent or expired reads)",
	})
	metricEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelhostd",
		Subsystem: "cache",
		Name:      "evictions_total",
		Help:      "Total LRU evictions",
	})
	metricExpirations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelhostd",
		Subsystem: "cache",
		Name:      "expirations_total",
		Help:      "Total TTL expirations",
	})
	metricResident = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "modelhostd",
		Subsystem: "cache",
		Name:      "resident_models",
		Help:      "Models currently resident in the cache",
	})
)

func init() {
	prometheus.MustRegister(metricHits, metricMisses, metricEvictions, metricExpirations, metricResident)
}
