package hooks

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// MetricsHook collects Prometheus metrics per named command.
type MetricsHook struct {
	commandDuration *prometheus.HistogramVec
	commandTotal    *prometheus.CounterVec
	commandErrors   *prometheus.CounterVec
}

// NewMetricsHook creates a new metrics hook and registers its collectors.
// Label cardinality is bounded: command labels come from the registry, and
// statements executed outside it are grouped under "raw".
func NewMetricsHook(registry prometheus.Registerer) (*MetricsHook, error) {
	h := &MetricsHook{
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dbconn_command_duration_seconds",
				Help:    "Duration of executed SQL commands in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"command", "operation"},
		),
		commandTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbconn_commands_total",
				Help: "Total number of executed SQL commands",
			},
			[]string{"command", "operation"},
		),
		commandErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbconn_command_errors_total",
				Help: "Total number of failed SQL commands",
			},
			[]string{"command", "operation"},
		),
	}

	collectors := []prometheus.Collector{h.commandDuration, h.commandTotal, h.commandErrors}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}

	return h, nil
}

// BeforeQuery is called before a statement is executed
func (h *MetricsHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

// AfterQuery is called after a statement is executed
func (h *MetricsHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	duration := time.Since(event.StartTime).Seconds()
	command := CommandName(ctx)
	op := OperationType(event.Query)

	h.commandDuration.WithLabelValues(command, op).Observe(duration)
	h.commandTotal.WithLabelValues(command, op).Inc()

	if event.Err != nil {
		h.commandErrors.WithLabelValues(command, op).Inc()
	}
}
