// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PointsAwarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leafwise",
		Name:      "points_awarded_total",
		Help:      "Experience points granted, by action type.",
	}, []string{"action"})

	LevelUps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "leafwise",
		Name:      "level_ups_total",
		Help:      "Awards that moved a user into a higher tier.",
	})

	StreakBonuses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leafwise",
		Name:      "streak_bonuses_total",
		Help:      "Streak bonus awards, by action type.",
	}, []string{"action"})

	LimitReached = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leafwise",
		Name:      "freemium_limit_reached_total",
		Help:      "Requests denied by a freemium ceiling.",
	}, []string{"limit"})

	AIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leafwise",
		Name:      "ai_requests_total",
		Help:      "Calls to the inference provider by task and outcome.",
	}, []string{"task", "outcome"})

	AILatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "leafwise",
		Name:      "ai_request_duration_seconds",
		Help:      "Inference provider latency.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
	}, []string{"task"})

	WebhookEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leafwise",
		Name:      "payment_webhook_events_total",
		Help:      "Payment webhook events by type and result.",
	}, []string{"type", "result"})

	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leafwise",
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by namespace and result.",
	}, []string{"namespace", "result"})
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leafwise",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "leafwise",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequests,
		HTTPDuration,
		PointsAwarded,
		LevelUps,
		StreakBonuses,
		LimitReached,
		AIRequests,
		AILatency,
		WebhookEvents,
		CacheLookups,
	)
}
