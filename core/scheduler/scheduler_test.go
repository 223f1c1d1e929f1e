package scheduler

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/invsched/core/model"
)

func mustInstance(t *testing.T, jobs []model.Job, capacity, initial int) *model.Instance {
	t.Helper()
	inst, err := model.NewInstance(t.Name(), jobs, capacity, initial)
	require.NoError(t, err)
	return inst
}

func TestEmptyInstance(t *testing.T) {
	inst := mustInstance(t, nil, 0, 0)
	ms, ok, err := MinimalMakespan(inst)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, ms)

	feasible, err := IsFeasible(inst, 0)
	require.NoError(t, err)
	assert.True(t, feasible)
}

func TestSingleJobFeasible(t *testing.T) {
	inst := mustInstance(t, []model.Job{{ID: "1", ProcessingTime: 5}}, 10, 5)
	ms, ok, err := MinimalMakespan(inst)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5, ms)
}

func TestSingleJobInventoryInfeasible(t *testing.T) {
	inst := mustInstance(t, []model.Job{{ID: "1", ProcessingTime: 5, InventoryDelta: -20}}, 10, 5)
	_, ok, err := MinimalMakespan(inst)
	require.NoError(t, err)
	assert.False(t, ok)
	for _, bound := range []int{0, 5, 100} {
		feasible, err := IsFeasible(inst, bound)
		require.NoError(t, err)
		assert.False(t, feasible, "bound %d", bound)
	}
}

func TestReleaseDateForcesDelay(t *testing.T) {
	inst := mustInstance(t, []model.Job{{ID: "1", ProcessingTime: 2, ReleaseDate: 3}}, 0, 0)
	res, err := New(Options{}).Solve(inst)
	require.NoError(t, err)
	require.True(t, res.Feasible)
	assert.Equal(t, 5, res.Makespan)
	require.Len(t, res.Schedule, 1)
	assert.Equal(t, 3, res.Schedule[0].Start)
}

func TestSampleInstance(t *testing.T) {
	inst := model.SampleInstance()
	require.NoError(t, inst.Validate())
	res, err := New(Options{}).Solve(inst)
	require.NoError(t, err)
	require.True(t, res.Feasible)
	assert.Equal(t, 14, res.Makespan)
	require.NoError(t, res.Schedule.Validate(inst))
	assert.Equal(t, 14, res.Schedule.Completion())
}

func TestInventoryForcesOrder(t *testing.T) {
	jobs := []model.Job{
		{ID: "draw", ProcessingTime: 1, InventoryDelta: -2},
		{ID: "fill", ProcessingTime: 2, ReleaseDate: 4, InventoryDelta: 3},
		{ID: "trim", ProcessingTime: 1, InventoryDelta: -1},
	}
	inst := mustInstance(t, jobs, 3, 0)
	res, err := New(Options{}).Solve(inst)
	require.NoError(t, err)
	require.True(t, res.Feasible)
	assert.Equal(t, 8, res.Makespan)
	require.NoError(t, res.Schedule.Validate(inst))
	assert.Equal(t, "fill", res.Schedule[0].JobID)
	assert.Equal(t, 4, res.Schedule[0].Start)
}

func TestCapacityForcesOrder(t *testing.T) {
	jobs := []model.Job{
		{ID: "fill", ProcessingTime: 1, InventoryDelta: 3},
		{ID: "use", ProcessingTime: 2, InventoryDelta: -4},
	}
	inst := mustInstance(t, jobs, 5, 4)
	res, err := New(Options{}).Solve(inst)
	require.NoError(t, err)
	require.True(t, res.Feasible)
	assert.Equal(t, 3, res.Makespan)
	assert.Equal(t, []string{"use", "fill"}, []string{res.Schedule[0].JobID, res.Schedule[1].JobID})
}

func TestNegativeBoundInfeasible(t *testing.T) {
	inst := mustInstance(t, nil, 0, 0)
	feasible, err := IsFeasible(inst, -1)
	require.NoError(t, err)
	assert.False(t, feasible)
}

func TestInvalidInstanceRejected(t *testing.T) {
	inst := &model.Instance{Jobs: []model.Job{{ID: "x", ProcessingTime: 0}}, InventoryCapacity: 1}
	_, err := IsFeasible(inst, 10)
	assert.ErrorIs(t, err, model.ErrInvalidInstance)
	_, _, err = MinimalMakespan(inst)
	assert.ErrorIs(t, err, model.ErrInvalidInstance)
}

func TestSearchLimitExceeded(t *testing.T) {
	jobs := []model.Job{{ID: "a", ProcessingTime: 1}, {ID: "b", ProcessingTime: 1}}
	inst := mustInstance(t, jobs, 0, 0)
	s := New(Options{MaxStates: 1})
	_, err := s.IsFeasible(inst, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSearchLimitExceeded))

	_, err = s.Solve(inst)
	assert.ErrorIs(t, err, ErrSearchLimitExceeded)
}

type statsObserver struct{ last OracleStats }

func (o *statsObserver) ObserveOracle(st OracleStats) { o.last = st }

func TestSearchLimitBoundsRetainedStates(t *testing.T) {
	jobs := make([]model.Job, 40)
	for i := range jobs {
		jobs[i] = model.Job{ID: fmt.Sprintf("j%d", i), ProcessingTime: 1}
	}
	inst := mustInstance(t, jobs, 0, 0)
	obs := &statsObserver{}
	const limit = 5000
	s := New(Options{MaxStates: limit, Observer: obs})

	_, err := s.IsFeasible(inst, inst.HorizonUpperBound())
	require.ErrorIs(t, err, ErrSearchLimitExceeded)
	assert.LessOrEqual(t, obs.last.StatesPushed, limit)
	assert.LessOrEqual(t, obs.last.FrontierPeak, limit)
	assert.LessOrEqual(t, obs.last.StatesExpanded, limit)
}

func TestSearchLimitAllowsSmallInstances(t *testing.T) {
	obs := &statsObserver{}
	s := New(Options{MaxStates: 1000, Observer: obs})
	res, err := s.Solve(model.SampleInstance())
	require.NoError(t, err)
	assert.Equal(t, 14, res.Makespan)
	assert.LessOrEqual(t, obs.last.StatesPushed, 1000)
}

func TestHorizonOverflowIsAnError(t *testing.T) {
	half := math.MaxInt/2 + 1
	inst := &model.Instance{Jobs: []model.Job{{ID: "a", ProcessingTime: half}, {ID: "b", ProcessingTime: half}}}
	_, _, err := MinimalMakespan(inst)
	assert.ErrorIs(t, err, model.ErrInvalidInstance)

	inst = &model.Instance{Jobs: []model.Job{{ID: "a", ProcessingTime: math.MaxInt, ReleaseDate: 1}}}
	_, err = IsFeasible(inst, math.MaxInt)
	assert.ErrorIs(t, err, model.ErrInvalidInstance)
}

func TestLargestHorizonSolves(t *testing.T) {
	inst := mustInstance(t, []model.Job{{ID: "a", ProcessingTime: math.MaxInt}}, 0, 0)
	ms, ok, err := MinimalMakespan(inst)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, math.MaxInt, ms)
}

func TestFinalInventoryPreCheck(t *testing.T) {
	jobs := []model.Job{{ID: "a", ProcessingTime: 1, InventoryDelta: -2}, {ID: "b", ProcessingTime: 1, InventoryDelta: -2}}
	inst := mustInstance(t, jobs, 5, 3)
	obs := &statsObserver{}
	s := New(Options{Observer: obs})
	ok, err := s.IsFeasible(inst, 100)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, obs.last.StatesPushed)

	res, err := s.Solve(inst)
	require.NoError(t, err)
	assert.False(t, res.Feasible)
	assert.Equal(t, 1, res.OracleCalls)
}

func TestDefaultMaxStates(t *testing.T) {
	assert.Equal(t, DefaultMaxStates, New(Options{}).MaxStates())
	assert.Equal(t, 7, NewFromConfig(Config{MaxStates: 7}, nil, nil).MaxStates())
}

type countingObserver struct {
	calls    int
	feasible int
}

func (c *countingObserver) ObserveOracle(st OracleStats) {
	c.calls++
	if st.Feasible {
		c.feasible++
	}
}

func TestObserverSeesEveryOracleCall(t *testing.T) {
	obs := &countingObserver{}
	inst := mustInstance(t, []model.Job{{ID: "a", ProcessingTime: 3}, {ID: "b", ProcessingTime: 4, ReleaseDate: 1}}, 0, 0)
	res, err := New(Options{Observer: obs}).Solve(inst)
	require.NoError(t, err)
	assert.Equal(t, res.OracleCalls, obs.calls)
	assert.Positive(t, obs.feasible)
	assert.Equal(t, 7, res.Makespan)
}

func TestOracleIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New(Options{})
	for i := 0; i < 20; i++ {
		inst := randomInstance(rng, 1+rng.Intn(5))
		for bound := 0; bound <= inst.HorizonUpperBound(); bound++ {
			a, err := s.IsFeasible(inst, bound)
			require.NoError(t, err)
			b, err := s.IsFeasible(inst, bound)
			require.NoError(t, err)
			require.Equal(t, a, b)
		}
	}
}

func TestFeasibilityMonotone(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := New(Options{})
	for i := 0; i < 40; i++ {
		inst := randomInstance(rng, 1+rng.Intn(5))
		prev := false
		for bound := 0; bound <= inst.HorizonUpperBound()+3; bound++ {
			ok, err := s.IsFeasible(inst, bound)
			require.NoError(t, err)
			if prev {
				require.True(t, ok, "instance %d: feasible at %d but not at %d", i, bound-1, bound)
			}
			prev = ok
		}
	}
}

func TestMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := New(Options{})
	for i := 0; i < 200; i++ {
		inst := randomInstance(rng, rng.Intn(5))
		want, wantOK := bruteForce(inst)
		res, err := s.Solve(inst)
		require.NoError(t, err)
		require.Equal(t, wantOK, res.Feasible, "instance %d: %+v", i, inst)
		if !wantOK {
			continue
		}
		require.Equal(t, want, res.Makespan, "instance %d: %+v", i, inst)
		require.NoError(t, res.Schedule.Validate(inst))
		require.Equal(t, want, res.Schedule.Completion())

		feasible, err := s.IsFeasible(inst, res.Makespan)
		require.NoError(t, err)
		require.True(t, feasible)
		if res.Makespan > 0 {
			feasible, err = s.IsFeasible(inst, res.Makespan-1)
			require.NoError(t, err)
			require.False(t, feasible)
		}
	}
}

func TestScheduleValidateRejects(t *testing.T) {
	inst := mustInstance(t, []model.Job{
		{ID: "a", ProcessingTime: 2, ReleaseDate: 1, InventoryDelta: -1},
		{ID: "b", ProcessingTime: 1, InventoryDelta: 1},
	}, 2, 1)
	good := Schedule{
		{JobID: "a", Start: 1, End: 3, InventoryBefore: 1, InventoryAfter: 0},
		{JobID: "b", Start: 3, End: 4, InventoryBefore: 0, InventoryAfter: 1},
	}
	require.NoError(t, good.Validate(inst))

	bad := map[string]Schedule{
		"missing":   good[:1],
		"early":     {{JobID: "a", Start: 0, End: 2, InventoryBefore: 1, InventoryAfter: 0}, good[1]},
		"overlap":   {good[0], {JobID: "b", Start: 2, End: 3, InventoryBefore: 0, InventoryAfter: 1}},
		"duplicate": {good[0], good[0]},
		"unknown":   {good[0], {JobID: "z", Start: 3, End: 4}},
		"level":     {good[0], {JobID: "b", Start: 3, End: 4, InventoryBefore: 1, InventoryAfter: 2}},
	}
	for name, sched := range bad {
		assert.Error(t, sched.Validate(inst), name)
	}
}

func randomInstance(rng *rand.Rand, n int) *model.Instance {
	capacity := rng.Intn(6)
	jobs := make([]model.Job, n)
	for i := range jobs {
		jobs[i] = model.Job{
			ID:             fmt.Sprintf("j%d", i),
			ProcessingTime: 1 + rng.Intn(4),
			ReleaseDate:    rng.Intn(6),
			InventoryDelta: rng.Intn(7) - 3,
		}
	}
	inst, err := model.NewInstance("random", jobs, capacity, rng.Intn(capacity+1))
	if err != nil {
		panic(err)
	}
	return inst
}

// bruteForce tries every order, starting each job as early as allowed.
func bruteForce(inst *model.Instance) (int, bool) {
	n := len(inst.Jobs)
	used := make([]bool, n)
	best, found := 0, false
	var rec func(depth, t, level int)
	rec = func(depth, t, level int) {
		if depth == n {
			if !found || t < best {
				best, found = t, true
			}
			return
		}
		for i, j := range inst.Jobs {
			if used[i] {
				continue
			}
			next := level + j.InventoryDelta
			if next < 0 || next > inst.InventoryCapacity {
				continue
			}
			used[i] = true
			rec(depth+1, j.EarliestStart(t)+j.ProcessingTime, next)
			used[i] = false
		}
	}
	rec(0, 0, inst.InitialInventory)
	return best, found
}
