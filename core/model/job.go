package model

import "fmt"

// Job is a unit of work that runs atomically once started.
type Job struct {
	ID             string `json:"id" yaml:"id"`
	ProcessingTime int    `json:"processing_time" yaml:"processing_time"`
	ReleaseDate    int    `json:"release_date" yaml:"release_date"`
	// InventoryDelta is applied to the inventory level when the job runs.
	// Negative values consume stock, positive values replenish it.
	InventoryDelta int `json:"inventory_delta" yaml:"inventory_delta"`
}

// Validate checks the per-job invariants.
func (j Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("%w: job id is required", ErrInvalidInstance)
	}
	if j.ProcessingTime <= 0 {
		return fmt.Errorf("%w: job %q processing_time must be > 0 (got %d)", ErrInvalidInstance, j.ID, j.ProcessingTime)
	}
	if j.ReleaseDate < 0 {
		return fmt.Errorf("%w: job %q release_date must be >= 0 (got %d)", ErrInvalidInstance, j.ID, j.ReleaseDate)
	}
	return nil
}

// EarliestStart returns the first time the job may start when the machine
// becomes free at t.
func (j Job) EarliestStart(t int) int {
	if t < j.ReleaseDate {
		return j.ReleaseDate
	}
	return t
}
