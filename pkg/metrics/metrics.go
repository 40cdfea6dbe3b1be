package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "coursepub", Name: "uploads_total", Help: "Number of upload requests by outcome."},
		[]string{"outcome"},
	)
	OrphanedBlobs = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "coursepub", Name: "orphaned_blobs_total", Help: "Number of uploads that left a blob behind after a failed compensating delete."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "coursepub", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "coursepub", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(UploadsTotal)
	reg.MustRegister(OrphanedBlobs)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
