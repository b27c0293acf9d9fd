package operator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backend",
		Subsystem: "operator",
		Name:      "cycles_total",
		Help:      "Completed operator cycles.",
	})

	drawsRequestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backend",
		Subsystem: "operator",
		Name:      "draws_requested_total",
		Help:      "Lottery draws requested by the operator.",
	})

	priceFeedFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backend",
		Subsystem: "operator",
		Name:      "price_feed_failures_total",
		Help:      "Price feed reads that kept failing after retries.",
	})

	snapshotFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backend",
		Subsystem: "operator",
		Name:      "snapshot_failures_total",
		Help:      "State snapshots that could not be persisted.",
	})
)
