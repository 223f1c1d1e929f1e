package scheduler

import (
	"container/heap"
	"math/bits"
)

// SearchState is one node of the oracle's exploration.
type SearchState struct {
	// Elapsed is the time at which the machine becomes free.
	Elapsed int
	// Inventory is the stock level at Elapsed.
	Inventory int
	// RunningMakespan is the largest completion time on the path.
	RunningMakespan int
	// Used has bit i set when job i has been applied.
	Used uint64

	job    int // job applied to reach the state, -1 at the root
	parent int // index into the expanded list, -1 at the root
	seq    uint64
}

// Depth is the number of jobs applied along the path.
func (s SearchState) Depth() int { return bits.OnesCount64(s.Used) }

type stateKey struct {
	used      uint64
	inventory int
}

func (s SearchState) key() stateKey { return stateKey{used: s.Used, inventory: s.Inventory} }

// frontier is a min-heap on running makespan. Deeper states win ties so
// complete schedules surface as early as possible; seq keeps the order
// deterministic.
type frontier []SearchState

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].RunningMakespan != f[j].RunningMakespan {
		return f[i].RunningMakespan < f[j].RunningMakespan
	}
	if di, dj := f[i].Depth(), f[j].Depth(); di != dj {
		return di > dj
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

// Push is called by heap.Push.
func (f *frontier) Push(x any) { *f = append(*f, x.(SearchState)) }

// Pop is called by heap.Pop.
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	s := old[n-1]
	*f = old[:n-1]
	return s
}

func (f *frontier) push(s SearchState) { heap.Push(f, s) }

func (f *frontier) pop() SearchState { return heap.Pop(f).(SearchState) }
