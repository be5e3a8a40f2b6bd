// Package metric declares the Prometheus collectors of the storefront.
package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "cart",
		Name:      "mutations_total",
		Help:      "Cart actions applied, by action type.",
	}, []string{"action"})

	// status: success / error
	CartPersistTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "cart",
		Name:      "persist_total",
		Help:      "Background cart writes to storage.",
	}, []string{"status"})

	// result: ok / empty / corrupt / error
	CartRehydrateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "cart",
		Name:      "rehydrate_total",
		Help:      "Cart loads from storage at session start.",
	}, []string{"result"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "storefront",
		Subsystem: "session",
		Name:      "active",
		Help:      "Sessions holding a cart in memory.",
	})

	SessionsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "session",
		Name:      "evicted_total",
		Help:      "Idle sessions whose cart was flushed and dropped from memory.",
	})

	// status: confirmed / failed / error
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "orders",
		Name:      "submitted_total",
		Help:      "Order submissions by final status.",
	}, []string{"status"})

	OrderValue = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "orders",
		Name:      "total_value",
		Help:      "Grand total of confirmed orders.",
		Buckets:   []float64{500, 1000, 2500, 5000, 10000, 25000, 50000},
	})

	// status: success / error
	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Domain events handed to the broker.",
	}, []string{"topic", "status"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "notifications",
		Name:      "handled_total",
		Help:      "Order notifications consumed.",
	}, []string{"status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})
)

func ObserveRequest(route string, t time.Duration, status int) {
	RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(t.Seconds())
}
