package grouping

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Candidate is one immutable, fully-formed proposed assignment: the
// frozen partition, the strategy that produced it, its score, and its
// analytics. Candidates are never mutated after creation; re-ranking
// produces a new slice.
type Candidate struct {
	Strategy   string
	Assignment Assignment
	Score      Score
	Analytics  Analytics
}

// BatchResult collects per-strategy outcomes of one orchestrator run.
// A strategy failure never aborts its siblings: callers see partial
// candidates plus per-strategy error detail.
type BatchResult struct {
	Candidates []Candidate
	Failures   []*StrategyError
}

// Orchestrator runs one or more strategies against the same input
// snapshot, concurrently, and decorates the finished partitions with
// analytics.
type Orchestrator struct {
	clock Clock
}

// NewOrchestrator creates an orchestrator. A nil clock falls back to
// the system clock.
func NewOrchestrator(clock Clock) *Orchestrator {
	if clock == nil {
		clock = SystemClock()
	}
	return &Orchestrator{clock: clock}
}

// Run validates the inputs once, executes the requested strategies
// (default: every non-slow strategy) concurrently, and returns the
// candidates in catalog order. Input and capacity errors abort the
// whole batch with no partial results; strategy failures and
// cancellations are scoped to their strategy. cfgs supplies optional
// per-strategy configuration keyed by strategy name; absent entries
// run with defaults.
func (o *Orchestrator) Run(ctx context.Context, in Inputs, strategyNames []string, cfgs map[string]Config) (*BatchResult, error) {
	if err := ValidateInputs(in); err != nil {
		return nil, err
	}

	strategies, err := resolveStrategies(strategyNames)
	if err != nil {
		return nil, err
	}

	type slot struct {
		result *StrategyResult
		err    error
	}
	slots := make([]slot, len(strategies))

	// Each task writes only to its own slot; no shared mutable state
	// beyond the read-only inputs.
	g, gctx := errgroup.WithContext(ctx)
	for i, strategy := range strategies {
		i, strategy := i, strategy
		cfg := cfgs[strategy.Name()]
		g.Go(func() error {
			result, err := strategy.Generate(gctx, in, cfg)
			if err == nil && !result.Partition.IsComplete() {
				err = fmt.Errorf("incomplete partition: %d of %d people placed",
					result.Partition.placedCount(), len(in.Roster))
				result = nil
			}
			slots[i] = slot{result: result, err: err}
			return nil
		})
	}
	// Tasks report failures through their slots, never through the group
	_ = g.Wait()

	batch := &BatchResult{}
	for i, strategy := range strategies {
		if slots[i].err != nil {
			batch.Failures = append(batch.Failures, &StrategyError{Strategy: strategy.Name(), Err: slots[i].err})
			continue
		}
		result := slots[i].result
		weights := cfgs[strategy.Name()].Weights
		if weights == (ScoreWeights{}) {
			weights = defaultWeightsFor(strategy.Name())
		}
		batch.Candidates = append(batch.Candidates, Candidate{
			Strategy:   strategy.Name(),
			Assignment: result.Partition.Freeze(),
			Score:      ScorePartition(result.Partition, in.Preferences, weights),
			Analytics:  ComputeAnalytics(result.Partition, in.Preferences, result.SplitClusters, o.clock),
		})
	}
	return batch, nil
}

// RankCandidates returns a new slice ordered best-first by composite
// score, breaking ties with the fixed canonical membership order. The
// input slice and its candidates are left untouched.
func RankCandidates(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score.Composite != ranked[j].Score.Composite {
			return ranked[i].Score.Composite > ranked[j].Score.Composite
		}
		return assignmentKey(ranked[i].Assignment) < assignmentKey(ranked[j].Assignment)
	})
	return ranked
}

// resolveStrategies maps names to catalog entries, preserving catalog
// order. Empty input selects every non-slow strategy.
func resolveStrategies(names []string) ([]Strategy, error) {
	if len(names) == 0 {
		var fast []Strategy
		for _, s := range Catalog() {
			if !s.Slow() {
				fast = append(fast, s)
			}
		}
		return fast, nil
	}

	requested := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := strategyByName(name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
		}
		requested[name] = true
	}

	var resolved []Strategy
	for _, s := range Catalog() {
		if requested[s.Name()] {
			resolved = append(resolved, s)
		}
	}
	return resolved, nil
}

// defaultWeightsFor returns the scoring weights a strategy is judged by
// when the caller did not pin weights explicitly.
func defaultWeightsFor(name string) ScoreWeights {
	if name == StrategyPreference {
		return PreferenceFirstWeights()
	}
	return DefaultWeights()
}

// assignmentKey is the frozen-assignment analogue of canonicalKey,
// ordering groups by id since shell order is gone after freezing.
func assignmentKey(a Assignment) string {
	groupIDs := make([]string, 0, len(a))
	for id := range a {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)

	var b strings.Builder
	for _, id := range groupIDs {
		b.WriteString(id)
		b.WriteByte(':')
		b.WriteString(strings.Join(a[id], ","))
		b.WriteByte(';')
	}
	return b.String()
}
