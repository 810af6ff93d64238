package workload

import "github.com/prometheus/client_golang/prometheus"

var (
	recomputesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "easel_recomputes_total",
			Help: "Total number of editor capacity recomputations.",
		},
	)

	recomputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "easel_recompute_duration_seconds",
			Help:    "Duration of a single editor capacity recomputation.",
			Buckets: prometheus.DefBuckets,
		},
	)

	distributionRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "easel_distribution_rejections_total",
			Help: "Assignments rejected for exceeding a request's unit total.",
		},
	)

	alertsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easel_alerts_created_total",
			Help: "Workload alerts created, by type and severity.",
		},
		[]string{"type", "severity"},
	)
)

func init() {
	prometheus.MustRegister(recomputesTotal)
	prometheus.MustRegister(recomputeDuration)
	prometheus.MustRegister(distributionRejections)
	prometheus.MustRegister(alertsCreated)
}
