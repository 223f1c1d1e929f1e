// Package scheduler finds the minimal makespan of an inventory-constrained
// single-machine instance.
//
// The feasibility oracle runs a best-first search over partial schedules.
// A state is the set of jobs already run, the time the machine becomes free
// and the inventory level at that time. The frontier is ordered by running
// makespan, so the first complete schedule popped is the earliest one within
// the bound. For a given set of applied jobs the inventory level is fixed,
// which makes an earlier finishing time dominate every later one; dominated
// states are never pushed.
//
// MinimalMakespan bisects over candidate bounds using the oracle as a
// monotone predicate. Solve additionally returns a witnessing schedule.
package scheduler
