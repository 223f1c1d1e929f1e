package scheduler

import "errors"

// ErrSearchLimitExceeded is returned when one oracle call would retain more
// states than Options.MaxStates allows.
var ErrSearchLimitExceeded = errors.New("search limit exceeded")
