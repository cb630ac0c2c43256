package grouping

import (
	"context"
	"math"
	"math/rand"
)

// annealingStrategy refines the balanced strategy's output with
// simulated annealing: random single-person moves and pairwise swaps,
// accepting improvements immediately and regressions with probability
// exp(-delta/temperature). Temperature decays geometrically each
// iteration. The run ends at the iteration budget or after StallLimit
// consecutive iterations without improving the best partition seen.
type annealingStrategy struct{}

func (s *annealingStrategy) Name() string { return StrategyAnnealing }

func (s *annealingStrategy) Slow() bool { return true }

func (s *annealingStrategy) Generate(ctx context.Context, in Inputs, cfg Config) (*StrategyResult, error) {
	cfg = cfg.withDefaults(DefaultWeights())
	rng := rand.New(rand.NewSource(cfg.Seed))

	init, err := (&balancedStrategy{}).Generate(ctx, in, cfg)
	if err != nil {
		return nil, err
	}
	current := init.Partition
	if current.GroupCount() < 2 {
		// Nothing to move between
		return &StrategyResult{Partition: current}, nil
	}

	ids := rosterIDs(in.Roster)
	currentScore := ScorePartition(current, in.Preferences, cfg.Weights)
	best := current.Clone()
	bestScore := currentScore

	temperature := cfg.InitialTemperature
	stall := 0

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		select {
		case <-ctx.Done():
			return nil, &CancelledError{Strategy: StrategyAnnealing}
		default:
		}

		move, ok := proposeMove(rng, current, ids)
		if ok {
			newScore := ScorePartition(current, in.Preferences, cfg.Weights)
			delta := newScore.Composite - currentScore.Composite

			if delta > 0 || rng.Float64() < math.Exp(delta/temperature) {
				currentScore = newScore
				if Less(current, best, currentScore, bestScore) {
					best = current.Clone()
					bestScore = currentScore
					stall = 0
				} else {
					stall++
				}
			} else {
				move.revert(current)
				stall++
			}
		} else {
			stall++
		}

		temperature *= cfg.CoolingRate
		if stall >= cfg.StallLimit {
			break
		}
	}

	return &StrategyResult{Partition: best}, nil
}

// proposedMove remembers enough to undo a rejected mutation.
type proposedMove struct {
	swap    bool
	personA string
	personB string
	fromIdx int
	toIdx   int
}

func (m proposedMove) revert(p *Partition) {
	if m.swap {
		p.Swap(m.personA, m.personB)
		return
	}
	p.MoveAt(m.personA, m.toIdx, m.fromIdx)
}

// proposeMove applies one random pairwise swap or single-person move to
// the partition. It returns false when the sampled mutation is not
// legal (same group, or no room anywhere else), in which case the
// partition is untouched.
func proposeMove(rng *rand.Rand, p *Partition, ids []string) (proposedMove, bool) {
	if rng.Intn(2) == 0 {
		a := ids[rng.Intn(len(ids))]
		b := ids[rng.Intn(len(ids))]
		if a == b || p.GroupOf(a) == p.GroupOf(b) {
			return proposedMove{}, false
		}
		p.Swap(a, b)
		return proposedMove{swap: true, personA: a, personB: b}, true
	}

	person := ids[rng.Intn(len(ids))]
	from := p.GroupOf(person)
	to := rng.Intn(p.GroupCount())
	if to == from || !p.HasRoomAt(to) {
		return proposedMove{}, false
	}
	if err := p.MoveAt(person, from, to); err != nil {
		return proposedMove{}, false
	}
	return proposedMove{personA: person, fromIdx: from, toIdx: to}, true
}
