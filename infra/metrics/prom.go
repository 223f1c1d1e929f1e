package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/invsched/core/metrics"
)

// PromSink records solver activity in Prometheus metrics.
type PromSink struct {
	solves      *prometheus.CounterVec
	duration    prometheus.Histogram
	makespan    *prometheus.GaugeVec
	oracleCalls *prometheus.CounterVec
	expanded    prometheus.Histogram
	frontier    prometheus.Gauge
}

// NewPromSink registers solver metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invsched_solves_total",
			Help: "Number of makespan searches by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "invsched_solve_duration_seconds",
			Help:    "Wall time of a makespan search",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		makespan: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "invsched_makespan",
			Help: "Minimal makespan of the last feasible solve per instance",
		}, []string{"instance"}),
		oracleCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invsched_oracle_calls_total",
			Help: "Number of feasibility checks by result",
		}, []string{"feasible"}),
		expanded: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "invsched_oracle_states_expanded",
			Help:    "States expanded by one feasibility check",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		}),
		frontier: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "invsched_oracle_frontier_peak",
			Help: "Peak frontier size of the last feasibility check",
		}),
	}
	s.solves = register(reg, s.solves)
	s.duration = register(reg, s.duration)
	s.makespan = register(reg, s.makespan)
	s.oracleCalls = register(reg, s.oracleCalls)
	s.expanded = register(reg, s.expanded)
	s.frontier = register(reg, s.frontier)
	return s, nil
}

// register returns the already registered collector when c is a duplicate.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// RecordSolve updates the solve counters.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.solves.WithLabelValues(ev.Outcome()).Inc()
	s.duration.Observe(ev.Duration.Seconds())
	if ev.Feasible && ev.Err == "" {
		s.makespan.WithLabelValues(ev.Instance).Set(float64(ev.Makespan))
	}
	return nil
}

// RecordOracle records one feasibility check.
func (s *PromSink) RecordOracle(ev coremetrics.OracleEvent) error {
	label := "false"
	if ev.Feasible {
		label = "true"
	}
	s.oracleCalls.WithLabelValues(label).Inc()
	s.expanded.Observe(float64(ev.StatesExpanded))
	s.frontier.Set(float64(ev.FrontierPeak))
	return nil
}
