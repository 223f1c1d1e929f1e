package model

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// MaxJobs bounds the number of jobs in an instance. The solver tracks the set
// of applied jobs in a 64-bit mask.
const MaxJobs = 64

// ErrInvalidInstance is returned when an instance violates one of its
// construction invariants.
var ErrInvalidInstance = errors.New("invalid instance")

// Instance is a scheduling problem: jobs sharing one inventory bounded by
// [0, InventoryCapacity]. It is read-only once built.
type Instance struct {
	Name              string `json:"name,omitempty" yaml:"name,omitempty"`
	Jobs              []Job  `json:"jobs" yaml:"jobs"`
	InventoryCapacity int    `json:"inventory_capacity" yaml:"inventory_capacity"`
	InitialInventory  int    `json:"initial_inventory" yaml:"initial_inventory"`
}

// NewInstance copies jobs into a validated instance.
func NewInstance(name string, jobs []Job, capacity, initial int) (*Instance, error) {
	inst := &Instance{
		Name:              name,
		Jobs:              append([]Job(nil), jobs...),
		InventoryCapacity: capacity,
		InitialInventory:  initial,
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// Validate checks the instance and all of its jobs.
func (inst *Instance) Validate() error {
	if inst == nil {
		return fmt.Errorf("%w: instance is nil", ErrInvalidInstance)
	}
	if inst.InventoryCapacity < 0 {
		return fmt.Errorf("%w: inventory_capacity must be >= 0 (got %d)", ErrInvalidInstance, inst.InventoryCapacity)
	}
	if inst.InitialInventory < 0 || inst.InitialInventory > inst.InventoryCapacity {
		return fmt.Errorf("%w: initial_inventory must be in [0,%d] (got %d)",
			ErrInvalidInstance, inst.InventoryCapacity, inst.InitialInventory)
	}
	if len(inst.Jobs) > MaxJobs {
		return fmt.Errorf("%w: at most %d jobs supported (got %d)", ErrInvalidInstance, MaxJobs, len(inst.Jobs))
	}
	seen := make(map[string]struct{}, len(inst.Jobs))
	for _, j := range inst.Jobs {
		if err := j.Validate(); err != nil {
			return err
		}
		if _, dup := seen[j.ID]; dup {
			return fmt.Errorf("%w: duplicate job id %q", ErrInvalidInstance, j.ID)
		}
		seen[j.ID] = struct{}{}
	}
	if _, ok := inst.horizon(); !ok {
		return fmt.Errorf("%w: max release_date plus total processing_time overflows int", ErrInvalidInstance)
	}
	return nil
}

// horizon computes MaxReleaseDate + TotalProcessingTime, reporting false when
// the sum does not fit in an int. Every completion time the solver computes
// is bounded by it.
func (inst *Instance) horizon() (int, bool) {
	total := inst.MaxReleaseDate()
	for _, j := range inst.Jobs {
		if j.ProcessingTime > math.MaxInt-total {
			return 0, false
		}
		total += j.ProcessingTime
	}
	return total, true
}

// TotalProcessingTime sums the processing time of every job.
func (inst *Instance) TotalProcessingTime() int {
	total := 0
	for _, j := range inst.Jobs {
		total += j.ProcessingTime
	}
	return total
}

// MaxReleaseDate returns the latest release date, or 0 without jobs.
func (inst *Instance) MaxReleaseDate() int {
	latest := 0
	for _, j := range inst.Jobs {
		if j.ReleaseDate > latest {
			latest = j.ReleaseDate
		}
	}
	return latest
}

// HorizonUpperBound is a completion time every inventory-feasible order
// meets: wait for the last release, then run all jobs back to back.
// Validate rejects instances for which it would overflow.
func (inst *Instance) HorizonUpperBound() int {
	return inst.MaxReleaseDate() + inst.TotalProcessingTime()
}

// NetInventoryDelta sums every job's inventory delta. ok is false when the
// sum does not fit in an int.
func (inst *Instance) NetInventoryDelta() (net int, ok bool) {
	sum := inst.netDelta()
	if !sum.IsInt64() || sum.Int64() > math.MaxInt || sum.Int64() < math.MinInt {
		return 0, false
	}
	return int(sum.Int64()), true
}

// FinalInventoryInRange reports whether applying every job can leave the
// inventory within [0, InventoryCapacity]. The final level does not depend on
// the order, so a false result proves the instance infeasible.
func (inst *Instance) FinalInventoryInRange() bool {
	final := inst.netDelta()
	final.Add(final, big.NewInt(int64(inst.InitialInventory)))
	return final.Sign() >= 0 && final.Cmp(big.NewInt(int64(inst.InventoryCapacity))) <= 0
}

func (inst *Instance) netDelta() *big.Int {
	sum := new(big.Int)
	for _, j := range inst.Jobs {
		sum.Add(sum, big.NewInt(int64(j.InventoryDelta)))
	}
	return sum
}

// JobIndex returns the position of the job with the given ID.
func (inst *Instance) JobIndex(id string) (int, bool) {
	for i, j := range inst.Jobs {
		if j.ID == id {
			return i, true
		}
	}
	return -1, false
}
