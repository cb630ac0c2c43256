package db

import "time"

// Person represents a database roster member record
type Person struct {
	ID        string
	ProgramID string
	FirstName string
	LastName  string
}

// Preference represents a database preference record for one person in
// one program. Liked lists keep their stored order; rank is position.
type Preference struct {
	ID            string
	ProgramID     string
	PersonID      string
	LikedPeople   []string
	AvoidedPeople []string
	LikedGroups   []string
	AvoidedGroups []string
}

// GroupShell represents a database group shell record. A nil Capacity
// means unbounded.
type GroupShell struct {
	ID        string
	ProgramID string
	Name      string
	Capacity  *int
}

// AssignmentRun represents one persisted candidate chosen by the
// organizer: which strategy produced it and when.
type AssignmentRun struct {
	ID          string
	ProgramID   string
	Strategy    string
	GeneratedAt time.Time
}

// Assignment represents one person placed in one group by a run
type Assignment struct {
	ID       string
	RunID    string
	GroupID  string
	PersonID string
}
