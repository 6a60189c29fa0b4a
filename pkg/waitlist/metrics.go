package waitlist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	joinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "waitlist",
		Name:      "joins_total",
		Help:      "Join requests by outcome.",
	}, []string{"outcome"})

	attributionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "waitlist",
		Name:      "referral_attributions_total",
		Help:      "Referral count increments by result.",
	}, []string{"result"})

	storeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "waitlist",
		Name:      "store_errors_total",
		Help:      "Ledger calls that failed with an unexpected error.",
	}, []string{"op"})
)

const (
	outcomeInvalid = "invalid_email"
	outcomeFailed  = "failed"

	attributionOK          = "ok"
	attributionUnknownCode = "unknown_code"
	attributionFailed      = "failed"
)
