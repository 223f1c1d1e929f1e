package scheduler

import (
	"fmt"

	"github.com/kilianp07/invsched/core/model"
)

// exploration is the outcome of one oracle run.
type exploration struct {
	feasible bool
	goal     int
	expanded []SearchState
	stats    OracleStats
}

// IsFeasible reports whether a schedule applying every job exactly once
// completes by bound while no job starts before its release date and the
// inventory stays within [0, capacity] after each job. Idle time is allowed,
// so any such schedule can be padded to finish exactly at bound.
func (s *Solver) IsFeasible(inst *model.Instance, bound int) (bool, error) {
	if err := inst.Validate(); err != nil {
		return false, err
	}
	ex, err := s.explore(inst, bound)
	if err != nil {
		return false, err
	}
	return ex.feasible, nil
}

func fullMask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(n) - 1
}

// explore runs the best-first search for one bound. Every call owns its
// frontier and memo table.
func (s *Solver) explore(inst *model.Instance, bound int) (*exploration, error) {
	ex := &exploration{goal: -1, stats: OracleStats{Instance: inst.Name, Bound: bound}}
	defer func() {
		if s.observer != nil {
			s.observer.ObserveOracle(ex.stats)
		}
	}()
	if bound < 0 || !inst.FinalInventoryInRange() {
		return ex, nil
	}

	jobs := inst.Jobs
	done := fullMask(len(jobs))
	root := SearchState{Inventory: inst.InitialInventory, job: -1, parent: -1}

	best := map[stateKey]int{root.key(): 0}
	var open frontier
	var seq uint64
	open.push(root)
	ex.stats.StatesPushed = 1
	ex.stats.FrontierPeak = 1

	for open.Len() > 0 {
		cur := open.pop()
		if rec := best[cur.key()]; rec < cur.RunningMakespan {
			continue
		}
		idx := len(ex.expanded)
		ex.expanded = append(ex.expanded, cur)

		if cur.Used == done {
			ex.feasible = true
			ex.goal = idx
			break
		}

		for i, job := range jobs {
			bit := uint64(1) << uint(i)
			if cur.Used&bit != 0 {
				continue
			}
			end := job.EarliestStart(cur.Elapsed) + job.ProcessingTime
			if end > bound {
				continue
			}
			level := cur.Inventory + job.InventoryDelta
			if level < 0 || level > inst.InventoryCapacity {
				continue
			}
			next := SearchState{
				Elapsed:         end,
				Inventory:       level,
				RunningMakespan: max(cur.RunningMakespan, end),
				Used:            cur.Used | bit,
				job:             i,
				parent:          idx,
			}
			k := next.key()
			if rec, seen := best[k]; seen && rec <= next.RunningMakespan {
				continue
			}
			// The memo and the frontier never hold more than maxStates entries.
			if ex.stats.StatesPushed >= s.maxStates {
				ex.stats.StatesExpanded = len(ex.expanded)
				return ex, fmt.Errorf("%w: %d states generated at bound %d", ErrSearchLimitExceeded, ex.stats.StatesPushed, bound)
			}
			best[k] = next.RunningMakespan
			seq++
			next.seq = seq
			open.push(next)
			ex.stats.StatesPushed++
			if open.Len() > ex.stats.FrontierPeak {
				ex.stats.FrontierPeak = open.Len()
			}
		}
	}

	ex.stats.StatesExpanded = len(ex.expanded)
	ex.stats.Feasible = ex.feasible
	s.debugw("oracle finished", map[string]any{
		"instance": inst.Name,
		"bound":    bound,
		"feasible": ex.feasible,
		"expanded": ex.stats.StatesExpanded,
		"pushed":   ex.stats.StatesPushed,
	})
	return ex, nil
}
