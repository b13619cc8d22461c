package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeStored        = "stored"
	outcomeDuplicate     = "duplicate"
	outcomeRejected      = "rejected"
	outcomeTooLarge      = "too_large"
	outcomeUnsupported   = "unsupported"
	outcomeUnprocessable = "unprocessable"
	outcomeFailed        = "failed"
)

// uploadsTotal counts upload attempts.
// Labels: outcome (stored, duplicate, rejected, too_large, unsupported, unprocessable, failed)
var uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "billaudit",
	Subsystem: "documents",
	Name:      "uploads_total",
	Help:      "Total document uploads by outcome",
}, []string{"outcome"})
