// AngelaMos | 2026
// metrics.go

package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nexus_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nexus_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	authEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nexus_auth_events_total",
		Help: "Authentication events by kind and result",
	}, []string{"event", "result"})

	webhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nexus_billing_webhook_events_total",
		Help: "Billing webhook deliveries by event type and outcome",
	}, []string{"type", "outcome"})

	emailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nexus_emails_total",
		Help: "Outgoing e-mails by template and result",
	}, []string{"template", "result"})

	dependencyUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nexus_dependency_up",
		Help: "1 when the last readiness probe of a backing store succeeded",
	}, []string{"dependency"})
)

func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveAuth counts register, login, refresh and password events.
func ObserveAuth(event string, err error) {
	authEvents.WithLabelValues(event, resultLabel(err)).Inc()
}

func ObserveWebhook(eventType, outcome string) {
	webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func ObserveEmail(template string, err error) {
	emailsSent.WithLabelValues(template, resultLabel(err)).Inc()
}

func ObserveDependency(name string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1
	}
	dependencyUp.WithLabelValues(name).Set(v)
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
