// Package metrics defines the Prometheus instrumentation shared by the
// engine service and the actor worker. Every metric is registered against
// an explicit prometheus.Registry rather than the global default registry,
// so tests can construct isolated instances.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Engine holds the engine service's request counters and latency
// histograms.
type Engine struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	bufferDepth     *prometheus.GaugeVec
}

// NewEngine registers the engine service's metrics against reg.
func NewEngine(reg prometheus.Registerer) *Engine {
	e := &Engine{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_requests_total",
			Help: "Total engine RPC calls by method and outcome status.",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "engine_request_duration_seconds",
			Help:    "Engine RPC call latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		bufferDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bufferpool_depth",
			Help: "Current depth of each buffer pool class.",
		}, []string{"class"}),
	}
	reg.MustRegister(e.requestsTotal, e.requestDuration, e.bufferDepth)
	return e
}

// Observe records one RPC call's outcome and latency. Safe to call on a nil
// *Engine (a no-op), so callers don't need to guard every call site.
func (e *Engine) Observe(method, status string, duration time.Duration) {
	if e == nil {
		return
	}
	e.requestsTotal.WithLabelValues(method, status).Inc()
	e.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// SetBufferDepth records the current depth of one buffer pool class.
func (e *Engine) SetBufferDepth(class string, depth int) {
	if e == nil {
		return
	}
	e.bufferDepth.WithLabelValues(class).Set(float64(depth))
}

// Actor holds the actor worker's episode and flush counters.
type Actor struct {
	episodesTotal    *prometheus.CounterVec
	transitionsFlush prometheus.Counter
	flushFailures    prometheus.Counter
}

// NewActor registers the actor worker's metrics against reg.
func NewActor(reg prometheus.Registerer) *Actor {
	a := &Actor{
		episodesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actor_episodes_total",
			Help: "Total episodes by outcome.",
		}, []string{"outcome"}),
		transitionsFlush: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actor_transitions_flushed_total",
			Help: "Total transitions successfully flushed to replay.",
		}),
		flushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actor_flush_failures_total",
			Help: "Total flush attempts that failed.",
		}),
	}
	reg.MustRegister(a.episodesTotal, a.transitionsFlush, a.flushFailures)
	return a
}

// ObserveEpisode records one episode's outcome ("done", "timeout", "error").
func (a *Actor) ObserveEpisode(outcome string) {
	if a == nil {
		return
	}
	a.episodesTotal.WithLabelValues(outcome).Inc()
}

// ObserveFlush records the outcome of one flush attempt of n transitions.
func (a *Actor) ObserveFlush(n int, err error) {
	if a == nil {
		return
	}
	if err != nil {
		a.flushFailures.Inc()
		return
	}
	a.transitionsFlush.Add(float64(n))
}
