package grouping

import "context"

// roundRobinStrategy deals the roster into groups cyclically in input
// order. It ignores preferences; with unbounded groups the resulting
// sizes differ by at most one, and explicit unequal capacities are
// respected exactly.
type roundRobinStrategy struct{}

func (s *roundRobinStrategy) Name() string { return StrategyRoundRobin }

func (s *roundRobinStrategy) Slow() bool { return false }

func (s *roundRobinStrategy) Generate(_ context.Context, in Inputs, cfg Config) (*StrategyResult, error) {
	p := NewPartition(in.Shells, len(in.Roster))
	if err := dealRoundRobin(p, rosterIDs(in.Roster)); err != nil {
		return nil, err
	}
	return &StrategyResult{Partition: p}, nil
}
