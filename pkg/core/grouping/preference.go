package grouping

import (
	"strings"

	"github.com/andysmith26/groupwheel/pkg/core/model"
)

// Preference is the normalized, algorithm-facing form of a person's
// preference record. Liked lists are deduplicated with first-occurrence
// order preserved (rank = position of first appearance); avoided lists
// are sets. Identifiers are matched exactly as strings - the engine
// never validates that they exist.
type Preference struct {
	LikedPeople   []string
	AvoidedPeople map[string]bool
	LikedGroups   []string
	AvoidedGroups map[string]bool

	likedPersonRank map[string]int
	likedGroupRank  map[string]int
}

// PreferenceTable maps every roster member's id to their normalized
// preference. Tables are built fresh per invocation and never cached.
type PreferenceTable map[string]*Preference

// PersonRank returns the 0-based rank of id in the liked-people list,
// or -1 if the person is not liked.
func (p *Preference) PersonRank(id string) int {
	if rank, ok := p.likedPersonRank[id]; ok {
		return rank
	}
	return -1
}

// GroupRank returns the 0-based rank of id in the liked-groups list,
// or -1 if the group is not liked.
func (p *Preference) GroupRank(id string) int {
	if rank, ok := p.likedGroupRank[id]; ok {
		return rank
	}
	return -1
}

// HasLikes returns true if the person expressed at least one liked
// person or liked group.
func (p *Preference) HasLikes() bool {
	return len(p.LikedPeople) > 0 || len(p.LikedGroups) > 0
}

// NormalizePreferences builds a PreferenceTable covering every roster
// member from raw preference records. Roster members without a record
// get an empty shell (no likes, no avoids). Records whose person id is
// blank after trimming are rejected with MalformedPreferenceError.
// Records for people outside the roster are ignored.
func NormalizePreferences(roster []model.Person, records []model.Preference) (PreferenceTable, error) {
	inRoster := make(map[string]bool, len(roster))
	for _, person := range roster {
		inRoster[person.ID] = true
	}

	table := make(PreferenceTable, len(roster))

	for i, record := range records {
		personID := strings.TrimSpace(record.PersonID)
		if personID == "" {
			return nil, &MalformedPreferenceError{RecordIndex: i, Reason: "blank person id"}
		}
		if !inRoster[personID] {
			continue
		}

		pref := &Preference{
			AvoidedPeople: toSet(record.AvoidedPeople),
			AvoidedGroups: toSet(record.AvoidedGroups),
		}
		pref.LikedPeople, pref.likedPersonRank = dedupeRanked(record.LikedPeople)
		pref.LikedGroups, pref.likedGroupRank = dedupeRanked(record.LikedGroups)

		table[personID] = pref
	}

	// Fill missing records with empty shells
	for _, person := range roster {
		if _, ok := table[person.ID]; !ok {
			table[person.ID] = emptyPreference()
		}
	}

	return table, nil
}

// dedupeRanked deduplicates a liked list while preserving the order of
// first appearance, and returns the id -> rank lookup alongside it.
func dedupeRanked(ids []string) ([]string, map[string]int) {
	deduped := make([]string, 0, len(ids))
	rank := make(map[string]int, len(ids))
	for _, id := range ids {
		if _, seen := rank[id]; seen {
			continue
		}
		rank[id] = len(deduped)
		deduped = append(deduped, id)
	}
	return deduped, rank
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func emptyPreference() *Preference {
	return &Preference{
		AvoidedPeople:   map[string]bool{},
		AvoidedGroups:   map[string]bool{},
		likedPersonRank: map[string]int{},
		likedGroupRank:  map[string]int{},
	}
}
