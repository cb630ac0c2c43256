package grouping

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andysmith26/groupwheel/pkg/core/model"
)

// testRoster builds n people with ids p1..pn
func testRoster(n int) []model.Person {
	roster := make([]model.Person, n)
	for i := range roster {
		roster[i] = model.Person{ID: fmt.Sprintf("p%d", i+1)}
	}
	return roster
}

// shells builds unbounded group shells with the given ids
func shells(ids ...string) []model.GroupShell {
	out := make([]model.GroupShell, len(ids))
	for i, id := range ids {
		out[i] = model.GroupShell{ID: id, Name: id}
	}
	return out
}

func capOf(n int) *int {
	return &n
}

// mustNormalize builds a preference table or fails the test
func mustNormalize(t *testing.T, roster []model.Person, records []model.Preference) PreferenceTable {
	t.Helper()
	table, err := NormalizePreferences(roster, records)
	require.NoError(t, err)
	return table
}

// fixedClock always reports the same instant
type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }
