package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DispatchesTotal tracks completed dispatches per link type and outcome
	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkdispatch_dispatches_total",
			Help: "Total number of completed dispatches",
		},
		[]string{"link_type", "outcome"},
	)

	// DispatchDuration tracks end-to-end dispatch duration, prompts included
	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkdispatch_dispatch_duration_seconds",
			Help:    "End-to-end dispatch duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"link_type"},
	)

	// PayloadDeliveriesTotal tracks RPA payload POST deliveries by status
	PayloadDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkdispatch_payload_deliveries_total",
			Help: "Total number of request-for-payment-address payload deliveries",
		},
		[]string{"status"},
	)

	// PayloadDeliveryLatency tracks RPA payload POST latency
	PayloadDeliveryLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linkdispatch_payload_delivery_latency_seconds",
			Help:    "Latency of payload POST deliveries in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RegistryLookupsTotal tracks name-registry pre-resolutions by result
	RegistryLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkdispatch_registry_lookups_total",
			Help: "Total number of name registry lookups",
		},
		[]string{"result"},
	)

	// PromptsTotal tracks user prompts by kind and answer
	PromptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkdispatch_prompts_total",
			Help: "Total number of user prompts shown",
		},
		[]string{"kind", "answer"},
	)

	// DBConnectionPoolUsage tracks database connection pool usage percentage
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkdispatch_db_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)
