package grouping

import (
	"errors"
	"fmt"
)

// Sentinel input errors. These are detected during batch validation,
// before any strategy runs, and abort the whole request.
var (
	ErrEmptyRoster     = errors.New("roster is empty")
	ErrNoGroupShells   = errors.New("no group shells provided")
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// MalformedPreferenceError reports a preference record that cannot be
// normalized, e.g. a blank person id after trimming.
type MalformedPreferenceError struct {
	RecordIndex int
	Reason      string
}

func (e *MalformedPreferenceError) Error() string {
	return fmt.Sprintf("malformed preference record at index %d: %s", e.RecordIndex, e.Reason)
}

// MissingPreferenceError reports a roster member without a preference
// record in the supplied table. Callers are expected to fill missing
// records with empty shells (see NormalizePreferences) before invoking
// the engine.
type MissingPreferenceError struct {
	PersonID string
}

func (e *MissingPreferenceError) Error() string {
	return fmt.Sprintf("no preference record for roster member %q", e.PersonID)
}

// InsufficientCapacityError reports that the total finite capacity of
// the group shells cannot hold the roster.
type InsufficientCapacityError struct {
	RosterSize    int
	TotalCapacity int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("total group capacity %d is less than roster size %d", e.TotalCapacity, e.RosterSize)
}

// CapacityExceededError reports an attempt to place a person into a
// full group. It should never surface through the public contract; a
// strategy that triggers it has violated an internal invariant.
type CapacityExceededError struct {
	GroupID  string
	Capacity int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("group %q is at capacity %d", e.GroupID, e.Capacity)
}

// CancelledError reports cooperative cancellation of a slow strategy.
// A cancelled strategy yields no candidate, never a partial one.
type CancelledError struct {
	Strategy string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("strategy %q cancelled", e.Strategy)
}

// StrategyError wraps a failure scoped to a single strategy within a
// batch. Sibling strategies are unaffected.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy %q failed: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// Cancelled returns true if the wrapped failure was a cooperative
// cancellation rather than a genuine strategy failure.
func (e *StrategyError) Cancelled() bool {
	var cerr *CancelledError
	return errors.As(e.Err, &cerr)
}
