package grouping

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/mroth/weightedrand/v2"
)

// geneticStrategy evolves a population of candidate partitions. Each
// generation scores all individuals, selects parents by rank (heavier
// weights for fitter individuals, drawn through the run's single random
// stream), produces offspring with a group-respecting crossover plus
// greedy repair, and applies a low-probability swap mutation. The best
// individual survives each generation unchanged, so the best score
// never degrades. The run ends at the generation budget or when the
// best score plateaus.
type geneticStrategy struct{}

func (s *geneticStrategy) Name() string { return StrategyGenetic }

func (s *geneticStrategy) Slow() bool { return true }

func (s *geneticStrategy) Generate(ctx context.Context, in Inputs, cfg Config) (*StrategyResult, error) {
	cfg = cfg.withDefaults(DefaultWeights())
	rng := rand.New(rand.NewSource(cfg.Seed))
	ids := rosterIDs(in.Roster)

	population, err := seedPopulation(ctx, in, cfg, rng)
	if err != nil {
		return nil, err
	}

	var best *Partition
	var bestScore Score
	plateau := 0

	for gen := 0; gen < cfg.Generations; gen++ {
		select {
		case <-ctx.Done():
			return nil, &CancelledError{Strategy: StrategyGenetic}
		default:
		}

		scores := make([]Score, len(population))
		eliteIdx := 0
		for i, individual := range population {
			scores[i] = ScorePartition(individual, in.Preferences, cfg.Weights)
			if i > 0 && Less(individual, population[eliteIdx], scores[i], scores[eliteIdx]) {
				eliteIdx = i
			}
		}

		if best == nil || Less(population[eliteIdx], best, scores[eliteIdx], bestScore) {
			best = population[eliteIdx].Clone()
			bestScore = scores[eliteIdx]
			plateau = 0
		} else {
			plateau++
			if plateau >= defaultPlateauLimit {
				break
			}
		}

		chooser, err := rankChooser(population, scores)
		if err != nil {
			return nil, fmt.Errorf("rank selection: %w", err)
		}

		next := make([]*Partition, 0, len(population))
		next = append(next, population[eliteIdx].Clone())
		for len(next) < len(population) {
			parentA := population[chooser.PickSource(rng)]
			parentB := population[chooser.PickSource(rng)]
			child := crossover(parentA, parentB, in)
			if rng.Float64() < cfg.MutationRate {
				mutateSwap(rng, child, ids)
			}
			next = append(next, child)
		}
		population = next
	}

	// Final sweep in case the last generation produced a new best
	for _, individual := range population {
		score := ScorePartition(individual, in.Preferences, cfg.Weights)
		if best == nil || Less(individual, best, score, bestScore) {
			best = individual.Clone()
			bestScore = score
		}
	}

	return &StrategyResult{Partition: best}, nil
}

// seedPopulation builds the initial population: the balanced strategy's
// output plus randomly dealt partitions, every seed drawn from the
// run's own stream.
func seedPopulation(ctx context.Context, in Inputs, cfg Config, rng *rand.Rand) ([]*Partition, error) {
	population := make([]*Partition, 0, cfg.PopulationSize)

	seeded, err := (&balancedStrategy{}).Generate(ctx, in, cfg)
	if err != nil {
		return nil, err
	}
	population = append(population, seeded.Partition)

	random := &randomStrategy{}
	for len(population) < cfg.PopulationSize {
		randomCfg := cfg
		randomCfg.Seed = rng.Int63()
		result, err := random.Generate(ctx, in, randomCfg)
		if err != nil {
			return nil, err
		}
		population = append(population, result.Partition)
	}
	return population, nil
}

// rankChooser builds a rank-selection chooser: the fittest individual
// gets weight len(population), the weakest gets 1. Rank selection keeps
// selection pressure stable even when composite scores go negative.
func rankChooser(population []*Partition, scores []Score) (*weightedrand.Chooser[int, int], error) {
	order := make([]int, len(population))
	for i := range order {
		order[i] = i
	}
	// Selection sort by fitness; populations are small
	for i := 0; i < len(order); i++ {
		best := i
		for j := i + 1; j < len(order); j++ {
			if Less(population[order[j]], population[order[best]], scores[order[j]], scores[order[best]]) {
				best = j
			}
		}
		order[i], order[best] = order[best], order[i]
	}

	choices := make([]weightedrand.Choice[int, int], len(order))
	for rank, idx := range order {
		choices[rank] = weightedrand.NewChoice(idx, len(order)-rank)
	}
	return weightedrand.NewChooser(choices...)
}

// crossover inherits whole-group memberships from alternating parents,
// then repairs duplicates and omissions by greedy reinsertion into
// under-capacity groups.
func crossover(parentA, parentB *Partition, in Inputs) *Partition {
	child := NewPartition(in.Shells, len(in.Roster))

	for gi := 0; gi < child.GroupCount(); gi++ {
		parent := parentA
		if gi%2 == 1 {
			parent = parentB
		}
		for _, member := range parent.MembersAt(gi) {
			if child.GroupOf(member) >= 0 || !child.HasRoomAt(gi) {
				continue
			}
			child.PlaceAt(member, gi)
		}
	}

	// Repair: anyone still missing goes to the least-full open group
	for _, person := range in.Roster {
		if child.GroupOf(person.ID) >= 0 {
			continue
		}
		if idx := leastFullIndex(child); idx >= 0 {
			child.PlaceAt(person.ID, idx)
		}
	}
	return child
}

// mutateSwap exchanges two random people across groups. A handful of
// attempts is enough; if sampling keeps hitting the same group the
// mutation is skipped.
func mutateSwap(rng *rand.Rand, p *Partition, ids []string) {
	for attempt := 0; attempt < 4; attempt++ {
		a := ids[rng.Intn(len(ids))]
		b := ids[rng.Intn(len(ids))]
		if a != b && p.GroupOf(a) != p.GroupOf(b) {
			p.Swap(a, b)
			return
		}
	}
}
