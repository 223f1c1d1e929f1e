package scheduler

import (
	"github.com/kilianp07/invsched/core/logger"
	"github.com/kilianp07/invsched/core/model"
)

// OracleStats describes one feasibility check.
type OracleStats struct {
	Instance       string
	Bound          int
	Feasible       bool
	StatesExpanded int
	StatesPushed   int
	FrontierPeak   int
}

// OracleObserver receives statistics after every feasibility check.
type OracleObserver interface {
	ObserveOracle(OracleStats)
}

// Options configures a Solver. The zero value is usable.
type Options struct {
	// MaxStates bounds the states generated per feasibility check. It caps
	// the frontier and the memo table.
	// Zero selects DefaultMaxStates.
	MaxStates int
	Logger    logger.Logger
	Observer  OracleObserver
}

// Solver answers feasibility and minimal makespan queries. It holds no
// per-query state and is safe for concurrent use.
type Solver struct {
	maxStates int
	log       logger.Logger
	observer  OracleObserver
}

// New returns a Solver using opts.
func New(opts Options) *Solver {
	s := &Solver{maxStates: opts.MaxStates, log: opts.Logger, observer: opts.Observer}
	if s.maxStates <= 0 {
		s.maxStates = DefaultMaxStates
	}
	return s
}

// NewFromConfig builds a Solver from configuration.
func NewFromConfig(cfg Config, log logger.Logger, obs OracleObserver) *Solver {
	return New(Options{MaxStates: cfg.MaxStates, Logger: log, Observer: obs})
}

// MaxStates returns the effective exploration limit.
func (s *Solver) MaxStates() int { return s.maxStates }

var defaultSolver = New(Options{})

// IsFeasible reports whether every job of inst can complete by bound, using
// default options.
func IsFeasible(inst *model.Instance, bound int) (bool, error) {
	return defaultSolver.IsFeasible(inst, bound)
}

// MinimalMakespan returns the smallest feasible makespan of inst, using
// default options. ok is false when no schedule exists.
func MinimalMakespan(inst *model.Instance) (makespan int, ok bool, err error) {
	return defaultSolver.MinimalMakespan(inst)
}

func (s *Solver) debugw(msg string, fields map[string]any) {
	if s.log != nil {
		s.log.Debugw(msg, fields)
	}
}
