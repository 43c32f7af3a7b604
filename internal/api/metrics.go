package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hooksGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hooklab",
			Name:      "hook_batches_total",
			Help:      "Hook candidate batches served, by generated or fallback source.",
		},
		[]string{"source"},
	)

	contentRevealedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hooklab",
			Name:      "content_revealed_total",
			Help:      "Full posts revealed, by source and wallet tier.",
		},
		[]string{"source", "tier"},
	)

	quotaRefusedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hooklab",
			Name:      "quota_refusals_total",
			Help:      "Gated requests refused for lack of credits.",
		},
	)
)

func tier(premium bool) string {
	if premium {
		return "premium"
	}
	return "free"
}
