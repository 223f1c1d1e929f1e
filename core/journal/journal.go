// Package journal defines the append-only log of solve runs. Records
// summarise a run; the schedules themselves are not kept.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/invsched/core/metrics"
)

// Record is one solve run.
type Record struct {
	RunID          string    `json:"run_id"`
	Timestamp      time.Time `json:"timestamp"`
	Instance       string    `json:"instance"`
	Jobs           int       `json:"jobs"`
	Feasible       bool      `json:"feasible"`
	Makespan       int       `json:"makespan"`
	OracleCalls    int       `json:"oracle_calls"`
	StatesExpanded int       `json:"states_expanded"`
	DurationMS     float64   `json:"duration_ms"`
	Error          string    `json:"error,omitempty"`
}

// FromEvent converts a solve event into a journal record.
func FromEvent(ev metrics.SolveEvent) Record {
	return Record{
		RunID:          ev.RunID,
		Timestamp:      ev.Time.UTC(),
		Instance:       ev.Instance,
		Jobs:           ev.Jobs,
		Feasible:       ev.Feasible,
		Makespan:       ev.Makespan,
		OracleCalls:    ev.OracleCalls,
		StatesExpanded: ev.StatesExpanded,
		DurationMS:     float64(ev.Duration.Microseconds()) / 1000,
		Error:          ev.Err,
	}
}

// Query filters records. Zero values match everything.
type Query struct {
	Instance     string
	Start        time.Time
	End          time.Time
	FeasibleOnly bool
}

// Match reports whether r satisfies q.
func (q Query) Match(r Record) bool {
	if q.Instance != "" && r.Instance != q.Instance {
		return false
	}
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.FeasibleOnly && !r.Feasible {
		return false
	}
	return true
}

// Store persists journal records.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore drops every record.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }

// Config selects and tunes the journal backend.
type Config struct {
	// Backend is "none", "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the journal.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation of the jsonl file.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if c.Path == "" {
		switch c.Backend {
		case "jsonl":
			c.Path = "invsched-runs.jsonl"
		case "sqlite":
			c.Path = "invsched-runs.db"
		}
	}
	if c.Backend == "jsonl" && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "none":
		return nil
	case "jsonl", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("journal path is required for backend %s", c.Backend)
		}
		return nil
	default:
		return fmt.Errorf("unknown journal backend %s", c.Backend)
	}
}
