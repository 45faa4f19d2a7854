// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the liveness monitor's counters.
type Collector struct {
	registry *prometheus.Registry

	checkins          *prometheus.CounterVec
	registrations     prometheus.Counter
	notificationsSent prometheus.Counter
	sendFailures      prometheus.Counter
	sweepFailures     prometheus.Counter
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		checkins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deadman_checkins_total",
			Help: "Check-in requests by outcome.",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deadman_registrations_total",
			Help: "Subjects registered through the dialogue.",
		}),
		notificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deadman_notifications_sent_total",
			Help: "Overdue notifications delivered.",
		}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deadman_notification_send_failures_total",
			Help: "Overdue notifications that failed to send.",
		}),
		sweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deadman_sweep_failures_total",
			Help: "Sweep iterations aborted by a store error or panic.",
		}),
	}

	c.registry.MustRegister(
		c.checkins,
		c.registrations,
		c.notificationsSent,
		c.sendFailures,
		c.sweepFailures,
	)
	return c
}

// Handler exposes the registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordCheckIn counts one check-in request with its outcome
// (accepted, not_found, store_error).
func (c *Collector) RecordCheckIn(outcome string) {
	c.checkins.WithLabelValues(outcome).Inc()
}

// RecordRegistration counts one completed registration.
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordNotificationSent counts one delivered overdue notification.
func (c *Collector) RecordNotificationSent() {
	c.notificationsSent.Inc()
}

// RecordSendFailure counts one failed notification send.
func (c *Collector) RecordSendFailure() {
	c.sendFailures.Inc()
}

// RecordSweepFailure counts one aborted sweep iteration.
func (c *Collector) RecordSweepFailure() {
	c.sweepFailures.Inc()
}
