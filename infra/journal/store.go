package journal

import (
	"time"

	corejournal "github.com/kilianp07/invsched/core/journal"
)

// NewStore builds the backend selected by cfg.
func NewStore(cfg corejournal.Config) (corejournal.Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "jsonl":
		s, err := NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return corejournal.NopStore{}, nil
	}
}

func unixNanoUTC(ns int64) time.Time { return time.Unix(0, ns).UTC() }
