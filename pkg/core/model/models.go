package model

// Person represents a member of a program roster.
// Name fields are used only for display and tie-breaking, never by the
// grouping algorithms themselves.
type Person struct {
	ID        string
	FirstName string
	LastName  string
}

// Preference holds one person's grouping wishes for a single program.
// Liked lists are ordered (rank = position); avoided lists are sets.
type Preference struct {
	PersonID      string
	LikedPeople   []string
	AvoidedPeople []string
	LikedGroups   []string
	AvoidedGroups []string
	Metadata      map[string]string
}

// GroupShell is a named destination for people, not yet populated.
// A nil Capacity means the group is unbounded. Capacities are hard
// upper bounds and are never exceeded.
type GroupShell struct {
	ID       string
	Name     string
	Capacity *int
}

// Program represents one grouping context a roster belongs to
type Program struct {
	ID   string
	Name string
}
