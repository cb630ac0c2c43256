package grouping

import "context"

// preferenceStrategy processes people in roster order and honors each
// person's highest-ranked wish that is still satisfiable: a liked group
// with room, or the group of an already-placed liked person with room.
// Liked groups and liked people are merged by rank, group wish first on
// equal rank. When no wish can be honored the person falls back to the
// least-full group.
type preferenceStrategy struct{}

func (s *preferenceStrategy) Name() string { return StrategyPreference }

func (s *preferenceStrategy) Slow() bool { return false }

func (s *preferenceStrategy) Generate(_ context.Context, in Inputs, cfg Config) (*StrategyResult, error) {
	p := NewPartition(in.Shells, len(in.Roster))

	for _, person := range in.Roster {
		pref := in.Preferences[person.ID]
		idx := pickPreferredIndex(p, pref)
		if idx < 0 {
			idx = leastFullIndex(p)
		}
		if idx < 0 {
			// Unreachable after capacity validation
			return nil, &CapacityExceededError{GroupID: "", Capacity: 0}
		}
		if err := p.PlaceAt(person.ID, idx); err != nil {
			return nil, err
		}
	}

	return &StrategyResult{Partition: p}, nil
}

// pickPreferredIndex walks the person's wishes by ascending rank and
// returns the first group with room, or -1 when nothing is satisfiable.
func pickPreferredIndex(p *Partition, pref *Preference) int {
	maxRank := len(pref.LikedGroups)
	if len(pref.LikedPeople) > maxRank {
		maxRank = len(pref.LikedPeople)
	}

	for rank := 0; rank < maxRank; rank++ {
		if rank < len(pref.LikedGroups) {
			if idx := p.GroupIndex(pref.LikedGroups[rank]); idx >= 0 && p.HasRoomAt(idx) {
				return idx
			}
		}
		if rank < len(pref.LikedPeople) {
			if idx := p.GroupOf(pref.LikedPeople[rank]); idx >= 0 && p.HasRoomAt(idx) {
				return idx
			}
		}
	}
	return -1
}
