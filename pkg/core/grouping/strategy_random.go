package grouping

import (
	"context"
	"math/rand"
)

// randomStrategy shuffles the roster with a seeded source and deals
// people into groups round-robin, skipping full groups. It ignores
// preferences entirely and serves as the baseline.
type randomStrategy struct{}

func (s *randomStrategy) Name() string { return StrategyRandom }

func (s *randomStrategy) Slow() bool { return false }

func (s *randomStrategy) Generate(_ context.Context, in Inputs, cfg Config) (*StrategyResult, error) {
	cfg = cfg.withDefaults(DefaultWeights())
	rng := rand.New(rand.NewSource(cfg.Seed))

	ids := rosterIDs(in.Roster)
	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	p := NewPartition(in.Shells, len(ids))
	if err := dealRoundRobin(p, ids); err != nil {
		return nil, err
	}
	return &StrategyResult{Partition: p}, nil
}

// dealRoundRobin cycles through the groups in shell order, placing one
// person at a time and skipping groups that are full. Unbounded groups
// absorb any remainder once all bounded groups fill up.
func dealRoundRobin(p *Partition, ids []string) error {
	groupIdx := 0
	for _, id := range ids {
		placed := false
		for attempts := 0; attempts < p.GroupCount(); attempts++ {
			idx := (groupIdx + attempts) % p.GroupCount()
			if !p.HasRoomAt(idx) {
				continue
			}
			if err := p.PlaceAt(id, idx); err != nil {
				return err
			}
			groupIdx = (idx + 1) % p.GroupCount()
			placed = true
			break
		}
		if !placed {
			// Unreachable after capacity validation
			return &CapacityExceededError{GroupID: p.groups[groupIdx].id, Capacity: p.groups[groupIdx].capacity}
		}
	}
	return nil
}
