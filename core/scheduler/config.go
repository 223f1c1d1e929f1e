package scheduler

import "fmt"

// DefaultMaxStates caps the states retained by a single oracle call.
const DefaultMaxStates = 1_000_000

// Config holds solver limits loaded from configuration.
type Config struct {
	// MaxStates is the number of states one feasibility check may generate
	// before failing with ErrSearchLimitExceeded.
	MaxStates int `json:"max_states"`
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.MaxStates == 0 {
		c.MaxStates = DefaultMaxStates
	}
}

// Validate checks the limits.
func (c Config) Validate() error {
	if c.MaxStates < 0 {
		return fmt.Errorf("max_states must be >= 0 (got %d)", c.MaxStates)
	}
	return nil
}
