// Package metrics holds the process-wide Prometheus collectors, exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "market_pulse"

var (
	Ticks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifier_ticks_total",
		Help:      "Notification ticks by outcome.",
	}, []string{"outcome"})

	PartitionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifier_partition_failures_total",
		Help:      "Failed bulk quote fetches during a tick.",
	}, []string{"market"})

	InstrumentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifier_instrument_failures_total",
		Help:      "Instruments whose processing failed during a tick.",
	}, []string{"market"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Alerts handed to the notification sink.",
	}, []string{"market"})

	Reconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_instruments_inserted_total",
		Help:      "Instruments inserted into the catalog by reconciliation.",
	}, []string{"market"})

	TaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Duration of scheduled task runs.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"task", "outcome"})
)
