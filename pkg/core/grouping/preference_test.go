package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andysmith26/groupwheel/pkg/core/model"
)

func TestNormalizePreferences_FillsMissingRecords(t *testing.T) {
	roster := testRoster(3)
	records := []model.Preference{
		{PersonID: "p1", LikedPeople: []string{"p2"}},
	}

	table, err := NormalizePreferences(roster, records)
	require.NoError(t, err)

	assert.Len(t, table, 3, "Every roster member should have an entry")
	assert.True(t, table["p1"].HasLikes())
	assert.False(t, table["p2"].HasLikes(), "Missing record should become an empty shell")
	assert.False(t, table["p3"].HasLikes())
}

func TestNormalizePreferences_DedupePreservesFirstOccurrence(t *testing.T) {
	roster := testRoster(4)
	records := []model.Preference{
		{PersonID: "p1", LikedPeople: []string{"p2", "p3", "p2", "p4"}},
	}

	table := mustNormalize(t, roster, records)
	pref := table["p1"]

	assert.Equal(t, []string{"p2", "p3", "p4"}, pref.LikedPeople)
	assert.Equal(t, 0, pref.PersonRank("p2"))
	assert.Equal(t, 1, pref.PersonRank("p3"))
	assert.Equal(t, 2, pref.PersonRank("p4"))
}

func TestNormalizePreferences_BlankPersonID(t *testing.T) {
	roster := testRoster(2)
	records := []model.Preference{
		{PersonID: "p1"},
		{PersonID: "   "},
	}

	_, err := NormalizePreferences(roster, records)
	require.Error(t, err)

	var malformed *MalformedPreferenceError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 1, malformed.RecordIndex)
}

func TestNormalizePreferences_IgnoresNonRosterRecords(t *testing.T) {
	roster := testRoster(2)
	records := []model.Preference{
		{PersonID: "stranger", LikedPeople: []string{"p1"}},
	}

	table := mustNormalize(t, roster, records)

	assert.Len(t, table, 2)
	_, exists := table["stranger"]
	assert.False(t, exists)
}

func TestPreference_RankLookups(t *testing.T) {
	roster := testRoster(3)
	records := []model.Preference{
		{PersonID: "p1", LikedPeople: []string{"p2"}, LikedGroups: []string{"g2", "g1"}},
	}

	pref := mustNormalize(t, roster, records)["p1"]

	assert.Equal(t, 0, pref.PersonRank("p2"))
	assert.Equal(t, -1, pref.PersonRank("p3"), "Unliked person should rank -1")
	assert.Equal(t, 0, pref.GroupRank("g2"))
	assert.Equal(t, 1, pref.GroupRank("g1"))
	assert.Equal(t, -1, pref.GroupRank("g9"))
}

func TestNormalizePreferences_AvoidSets(t *testing.T) {
	roster := testRoster(3)
	records := []model.Preference{
		{PersonID: "p1", AvoidedPeople: []string{"p3", "p3"}, AvoidedGroups: []string{"g1"}},
	}

	pref := mustNormalize(t, roster, records)["p1"]

	assert.True(t, pref.AvoidedPeople["p3"])
	assert.False(t, pref.AvoidedPeople["p2"])
	assert.True(t, pref.AvoidedGroups["g1"])
	assert.False(t, pref.HasLikes(), "Avoids alone are not likes")
}
