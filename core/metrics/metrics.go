package metrics

import (
	"time"

	"github.com/kilianp07/invsched/core/scheduler"
)

// SolveEvent summarises one makespan search.
type SolveEvent struct {
	RunID          string
	Instance       string
	Jobs           int
	Feasible       bool
	Makespan       int
	OracleCalls    int
	StatesExpanded int
	Duration       time.Duration
	Err            string
	Time           time.Time
}

// NewSolveEvent builds an event from a solver result and its error.
func NewSolveEvent(runID string, res scheduler.Result, err error) SolveEvent {
	ev := SolveEvent{
		RunID:          runID,
		Instance:       res.Instance,
		Jobs:           res.Jobs,
		Feasible:       res.Feasible,
		Makespan:       res.Makespan,
		OracleCalls:    res.OracleCalls,
		StatesExpanded: res.StatesExpanded,
		Duration:       res.Duration,
		Time:           time.Now(),
	}
	if err != nil {
		ev.Err = err.Error()
	}
	return ev
}

// Outcome labels the event as "feasible", "infeasible" or "error".
func (e SolveEvent) Outcome() string {
	switch {
	case e.Err != "":
		return "error"
	case e.Feasible:
		return "feasible"
	default:
		return "infeasible"
	}
}

// MetricsSink records solve results for observability purposes.
type MetricsSink interface {
	RecordSolve(ev SolveEvent) error
}

// OracleEvent captures a single feasibility check.
type OracleEvent struct {
	Instance       string
	Bound          int
	Feasible       bool
	StatesExpanded int
	StatesPushed   int
	FrontierPeak   int
	Time           time.Time
}

// OracleRecorder records feasibility checks.
type OracleRecorder interface {
	RecordOracle(ev OracleEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error   { return nil }
func (NopSink) RecordOracle(OracleEvent) error { return nil }
