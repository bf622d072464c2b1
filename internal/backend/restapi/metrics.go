package restapi

import (
	"errors"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"tasker/internal/service"
)

// Metrics counts requests per operation and outcome on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates and registers the client collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasker_requests_total",
				Help: "Requests issued to the task service",
			},
			[]string{"op", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tasker_request_duration_seconds",
				Help:    "Latency of requests to the task service",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	m.Registry.MustRegister(m.requests, m.latency)
	return m
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, service.ErrUnauthorized):
		return "unauthorized"
	default:
		return "error"
	}
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	m.requests.WithLabelValues(op, outcome(err)).Inc()
	m.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Count is one row of the request counter.
type Count struct {
	Op      string
	Outcome string
	N       int
}

// Counts gathers the request counter, sorted by op then outcome.
func (m *Metrics) Counts() ([]Count, error) {
	families, err := m.Registry.Gather()
	if err != nil {
		return nil, err
	}
	var out []Count
	for _, fam := range families {
		if fam.GetName() != "tasker_requests_total" {
			continue
		}
		for _, metric := range fam.GetMetric() {
			out = append(out, Count{
				Op:      label(metric, "op"),
				Outcome: label(metric, "outcome"),
				N:       int(metric.GetCounter().GetValue()),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Op != out[j].Op {
			return out[i].Op < out[j].Op
		}
		return out[i].Outcome < out[j].Outcome
	})
	return out, nil
}

func label(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
