package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Collector struct {
	reg *prometheus.Registry

	ActivationRuns       prometheus.Counter
	TripsGenerated       prometheus.Counter
	TripsCancelled       prometheus.Counter
	PositionsIngested    prometheus.Counter
	NotificationsCreated prometheus.Counter

	PushPublished prometheus.Counter
	PushErrs      prometheus.Counter
	NATSConnected prometheus.Gauge

	OracleCalls     prometheus.Counter
	OracleFallbacks prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ActivationRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_activation_runs_total",
			Help: "Total schedule activation runs.",
		}),
		TripsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_trips_generated_total",
			Help: "Total trips created by schedule activation.",
		}),
		TripsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_trips_cancelled_total",
			Help: "Total trips cancelled by schedule edits or deletion.",
		}),
		PositionsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_positions_ingested_total",
			Help: "Total position fixes persisted.",
		}),
		NotificationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_notifications_created_total",
			Help: "Total durable notification records written.",
		}),
		PushPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_push_published_total",
			Help: "Total push messages published.",
		}),
		PushErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_push_errors_total",
			Help: "Total push publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_nats_connected",
			Help: "1 if the NATS connection is established, 0 otherwise.",
		}),
		OracleCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_oracle_calls_total",
			Help: "Total routing oracle invocations.",
		}),
		OracleFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_oracle_fallbacks_total",
			Help: "Total stop sequencing runs degraded to the deterministic fallback.",
		}),
	}

	reg.MustRegister(
		c.ActivationRuns, c.TripsGenerated, c.TripsCancelled,
		c.PositionsIngested, c.NotificationsCreated,
		c.PushPublished, c.PushErrs, c.NATSConnected,
		c.OracleCalls, c.OracleFallbacks,
	)
	return c
}

// Interface hooks used by the publisher, the dispatcher and the stop
// planner.

func (c *Collector) PushPublishedInc() {
	if c != nil {
		c.PushPublished.Inc()
	}
}

func (c *Collector) PushErrInc() {
	if c != nil {
		c.PushErrs.Inc()
	}
}

func (c *Collector) NATSSetConnected(connected bool) {
	if c == nil {
		return
	}
	if connected {
		c.NATSConnected.Set(1)
	} else {
		c.NATSConnected.Set(0)
	}
}

func (c *Collector) NotificationsCreatedAdd(n int) {
	if c != nil && n > 0 {
		c.NotificationsCreated.Add(float64(n))
	}
}

func (c *Collector) OracleCallInc() {
	if c != nil {
		c.OracleCalls.Inc()
	}
}

func (c *Collector) OracleFallbackInc() {
	if c != nil {
		c.OracleFallbacks.Inc()
	}
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("metrics server error")
		}
	}()
	logrus.WithField("addr", addr).Info("metrics listening")
	return srv
}
