package scheduler

import (
	"time"

	"github.com/kilianp07/invsched/core/model"
)

// Result is the outcome of Solve.
type Result struct {
	Instance       string        `json:"instance"`
	Jobs           int           `json:"jobs"`
	Feasible       bool          `json:"feasible"`
	Makespan       int           `json:"makespan"`
	Schedule       Schedule      `json:"schedule,omitempty"`
	OracleCalls    int           `json:"oracle_calls"`
	StatesExpanded int           `json:"states_expanded"`
	Duration       time.Duration `json:"duration"`
}

// MinimalMakespan returns the smallest T >= 0 for which IsFeasible(inst, T)
// holds. ok is false when the instance has no feasible schedule.
func (s *Solver) MinimalMakespan(inst *model.Instance) (makespan int, ok bool, err error) {
	res, err := s.Solve(inst)
	if err != nil {
		return 0, false, err
	}
	return res.Makespan, res.Feasible, nil
}

// Solve bisects over [0, inst.HorizonUpperBound()] and returns the minimal
// makespan together with one schedule achieving it.
func (s *Solver) Solve(inst *model.Instance) (Result, error) {
	start := time.Now()
	res := Result{}
	if err := inst.Validate(); err != nil {
		return res, err
	}
	res.Instance = inst.Name
	res.Jobs = len(inst.Jobs)

	check := func(bound int) (*exploration, error) {
		ex, err := s.explore(inst, bound)
		res.OracleCalls++
		if ex != nil {
			res.StatesExpanded += ex.stats.StatesExpanded
		}
		return ex, err
	}

	// Feasibility is monotone in the bound, so an infeasible upper bound
	// settles the instance.
	hi := inst.HorizonUpperBound()
	ex, err := check(hi)
	if err != nil {
		return res, err
	}
	if !ex.feasible {
		res.Duration = time.Since(start)
		return res, nil
	}
	best, witness := hi, ex

	lo := 0
	hi--
	for lo <= hi {
		mid := lo + (hi-lo)/2
		ex, err := check(mid)
		if err != nil {
			return res, err
		}
		if ex.feasible {
			best, witness = mid, ex
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}

	res.Feasible = true
	res.Makespan = best
	res.Schedule = witness.schedule(inst)
	res.Duration = time.Since(start)
	s.debugw("makespan search finished", map[string]any{
		"instance":     inst.Name,
		"makespan":     best,
		"oracle_calls": res.OracleCalls,
		"expanded":     res.StatesExpanded,
	})
	return res, nil
}
