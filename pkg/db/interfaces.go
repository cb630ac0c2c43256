package db

import "context"

// RosterStore defines the read-only roster and preference operations
// the grouping services need
type RosterStore interface {
	GetPeople(ctx context.Context, programID string) ([]Person, error)
	GetPreferences(ctx context.Context, programID string) ([]Preference, error)
	GetGroupShells(ctx context.Context, programID string) ([]GroupShell, error)
}

// Database defines the interface for all database operations.
// The postgres.DB implements this interface.
type Database interface {
	RosterStore
	InsertAssignmentRun(ctx context.Context, run *AssignmentRun, assignments []Assignment) error
	GetAssignmentRuns(ctx context.Context, programID string) ([]AssignmentRun, error)
	GetAssignments(ctx context.Context, runID string) ([]Assignment, error)
}
