package scheduler

import (
	"fmt"

	"github.com/kilianp07/invsched/core/model"
)

// Assignment places one job on the timeline.
type Assignment struct {
	JobID           string `json:"job_id"`
	Start           int    `json:"start"`
	End             int    `json:"end"`
	InventoryBefore int    `json:"inventory_before"`
	InventoryAfter  int    `json:"inventory_after"`
}

// Schedule is a sequence of assignments in execution order.
type Schedule []Assignment

// Completion returns the end time of the last assignment.
func (s Schedule) Completion() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].End
}

// schedule walks the predecessor links from the goal state back to the root.
func (ex *exploration) schedule(inst *model.Instance) Schedule {
	if ex.goal < 0 {
		return nil
	}
	var rev Schedule
	for i := ex.goal; i >= 0; {
		st := ex.expanded[i]
		if st.job < 0 {
			break
		}
		job := inst.Jobs[st.job]
		rev = append(rev, Assignment{
			JobID:           job.ID,
			Start:           st.Elapsed - job.ProcessingTime,
			End:             st.Elapsed,
			InventoryBefore: st.Inventory - job.InventoryDelta,
			InventoryAfter:  st.Inventory,
		})
		i = st.parent
	}
	out := make(Schedule, len(rev))
	for i, a := range rev {
		out[len(rev)-1-i] = a
	}
	return out
}

// Validate checks that s runs every job of inst exactly once, never before
// its release date, without overlap, and with the inventory inside
// [0, capacity] throughout.
func (s Schedule) Validate(inst *model.Instance) error {
	if len(s) != len(inst.Jobs) {
		return fmt.Errorf("schedule has %d assignments for %d jobs", len(s), len(inst.Jobs))
	}
	seen := make(map[string]bool, len(s))
	level := inst.InitialInventory
	free := 0
	for i, a := range s {
		idx, ok := inst.JobIndex(a.JobID)
		if !ok {
			return fmt.Errorf("assignment %d: unknown job %q", i, a.JobID)
		}
		if seen[a.JobID] {
			return fmt.Errorf("assignment %d: job %q scheduled twice", i, a.JobID)
		}
		seen[a.JobID] = true
		job := inst.Jobs[idx]
		if a.Start < job.ReleaseDate {
			return fmt.Errorf("job %q starts at %d before release %d", a.JobID, a.Start, job.ReleaseDate)
		}
		if a.Start < free {
			return fmt.Errorf("job %q starts at %d while machine busy until %d", a.JobID, a.Start, free)
		}
		if a.End-a.Start != job.ProcessingTime {
			return fmt.Errorf("job %q runs %d, want %d", a.JobID, a.End-a.Start, job.ProcessingTime)
		}
		if a.InventoryBefore != level {
			return fmt.Errorf("job %q inventory_before %d, want %d", a.JobID, a.InventoryBefore, level)
		}
		level += job.InventoryDelta
		if level < 0 || level > inst.InventoryCapacity {
			return fmt.Errorf("job %q leaves inventory at %d outside [0,%d]", a.JobID, level, inst.InventoryCapacity)
		}
		if a.InventoryAfter != level {
			return fmt.Errorf("job %q inventory_after %d, want %d", a.JobID, a.InventoryAfter, level)
		}
		free = a.End
	}
	return nil
}
