package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	metricLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelhostd",
			Subsystem: "manager",
			Name:      "loads_total",
			Help:      "Model load attempts by outcome",
		},
		[]string{"modality", "outcome"},
	)
	metricLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "modelhostd",
			Subsystem: "manager",
			Name:      "load_duration_seconds",
			Help:      "Duration of backend model loads",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"modality"},
	)
	metricActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "modelhostd",
		Subsystem: "manager",
		Name:      "active_models",
		Help:      "Currently active (loaded) models",
	})
)

func init() {
	prometheus.MustRegister(metricLoads, metricLoadDuration, metricActive)
}
