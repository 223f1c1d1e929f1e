package model

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstanceValid(t *testing.T) {
	jobs := []Job{{ID: "a", ProcessingTime: 5, InventoryDelta: -3}, {ID: "b", ProcessingTime: 3, ReleaseDate: 2, InventoryDelta: 2}}
	inst, err := NewInstance("demo", jobs, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 8, inst.TotalProcessingTime())
	assert.Equal(t, 2, inst.MaxReleaseDate())
	assert.Equal(t, 10, inst.HorizonUpperBound())
	net, ok := inst.NetInventoryDelta()
	assert.True(t, ok)
	assert.Equal(t, -1, net)
	assert.True(t, inst.FinalInventoryInRange())

	jobs[0].ID = "mutated"
	idx, ok := inst.JobIndex("a")
	assert.True(t, ok, "instance must not alias caller slice")
	assert.Equal(t, 0, idx)
}

func TestNewInstanceInvalid(t *testing.T) {
	cases := []struct {
		name     string
		jobs     []Job
		capacity int
		initial  int
	}{
		{"zero processing", []Job{{ID: "a", ProcessingTime: 0}}, 10, 0},
		{"negative processing", []Job{{ID: "a", ProcessingTime: -1}}, 10, 0},
		{"negative release", []Job{{ID: "a", ProcessingTime: 1, ReleaseDate: -1}}, 10, 0},
		{"negative capacity", nil, -1, 0},
		{"initial above capacity", nil, 5, 6},
		{"negative initial", nil, 5, -1},
		{"duplicate ids", []Job{{ID: "a", ProcessingTime: 1}, {ID: "a", ProcessingTime: 2}}, 5, 0},
		{"empty id", []Job{{ProcessingTime: 1}}, 5, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewInstance("x", tc.jobs, tc.capacity, tc.initial)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInstance), "got %v", err)
		})
	}
}

func TestNewInstanceTooManyJobs(t *testing.T) {
	jobs := make([]Job, MaxJobs+1)
	for i := range jobs {
		jobs[i] = Job{ID: string(rune('A' + i)), ProcessingTime: 1}
	}
	_, err := NewInstance("big", jobs, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidInstance)
}

func TestHorizonOverflowRejected(t *testing.T) {
	half := math.MaxInt/2 + 1
	_, err := NewInstance("wide", []Job{{ID: "a", ProcessingTime: half}, {ID: "b", ProcessingTime: half}}, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidInstance)
	assert.Contains(t, err.Error(), "overflows")

	_, err = NewInstance("late", []Job{{ID: "a", ProcessingTime: math.MaxInt, ReleaseDate: 1}}, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidInstance)

	inst, err := NewInstance("edge", []Job{{ID: "a", ProcessingTime: math.MaxInt}}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, inst.HorizonUpperBound())
}

func TestFinalInventory(t *testing.T) {
	cases := []struct {
		name     string
		deltas   []int
		capacity int
		initial  int
		inRange  bool
	}{
		{"balanced", []int{-2, 2}, 2, 1, true},
		{"drained", []int{-2, -1}, 5, 2, false},
		{"overfilled", []int{3, 1}, 5, 2, false},
		{"large cancelling", []int{math.MaxInt, 1, -math.MaxInt}, 1, 0, true},
		{"large sum", []int{math.MaxInt, math.MaxInt}, math.MaxInt, 0, false},
		{"large negative", []int{math.MinInt, -1}, 3, 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			jobs := make([]Job, len(tc.deltas))
			for i, d := range tc.deltas {
				jobs[i] = Job{ID: string(rune('a' + i)), ProcessingTime: 1, InventoryDelta: d}
			}
			inst, err := NewInstance(tc.name, jobs, tc.capacity, tc.initial)
			require.NoError(t, err)
			assert.Equal(t, tc.inRange, inst.FinalInventoryInRange())
		})
	}

	inst := &Instance{Jobs: []Job{{ID: "a", InventoryDelta: math.MaxInt}, {ID: "b", InventoryDelta: 1}}}
	_, ok := inst.NetInventoryDelta()
	assert.False(t, ok)
}

func TestEmptyInstance(t *testing.T) {
	inst, err := NewInstance("empty", nil, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, inst.HorizonUpperBound())
}

func TestJobEarliestStart(t *testing.T) {
	j := Job{ID: "a", ProcessingTime: 2, ReleaseDate: 3}
	assert.Equal(t, 3, j.EarliestStart(0))
	assert.Equal(t, 4, j.EarliestStart(4))
}

func TestDecodeInstanceYAML(t *testing.T) {
	data := `name: sample
inventory_capacity: 10
initial_inventory: 5
jobs:
  - {id: "1", processing_time: 5, release_date: 0, inventory_delta: -3}
  - {id: "2", processing_time: 3, release_date: 2, inventory_delta: 2}
`
	inst, err := DecodeInstance(bytes.NewBufferString(data), "yaml")
	require.NoError(t, err)
	assert.Equal(t, "sample", inst.Name)
	assert.Len(t, inst.Jobs, 2)
	assert.Equal(t, -3, inst.Jobs[0].InventoryDelta)
}

func TestDecodeInstanceErrors(t *testing.T) {
	_, err := DecodeInstance(bytes.NewBufferString("{}"), "toml")
	assert.Error(t, err)

	_, err = DecodeInstance(bytes.NewBufferString(`{"jobs":[],"unknown":1}`), "json")
	assert.Error(t, err)

	_, err = DecodeInstance(bytes.NewBufferString(`{"inventory_capacity":1,"initial_inventory":2}`), "json")
	assert.ErrorIs(t, err, ErrInvalidInstance)
}

func TestLoadInstanceFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plant.json")
	doc := `{"inventory_capacity":4,"initial_inventory":0,"jobs":[{"id":"fill","processing_time":2,"inventory_delta":4}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	inst, err := LoadInstance(path)
	require.NoError(t, err)
	assert.Equal(t, "plant", inst.Name, "name defaults to file stem")

	_, err = LoadInstance(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
