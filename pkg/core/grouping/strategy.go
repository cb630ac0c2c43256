package grouping

import (
	"context"

	"github.com/andysmith26/groupwheel/pkg/core/model"
)

// Strategy identifiers, in catalog order.
const (
	StrategyBalanced   = "balanced"
	StrategyPreference = "preference"
	StrategyRoundRobin = "roundrobin"
	StrategyRandom     = "random"
	StrategyAnnealing  = "annealing"
	StrategyGenetic    = "genetic"
)

// Inputs is the read-only snapshot every strategy runs against. The
// preference table must cover every roster member (see ValidateInputs).
type Inputs struct {
	Roster      []model.Person
	Preferences PreferenceTable
	Shells      []model.GroupShell
}

// Config carries per-strategy tuning. Zero values are replaced with the
// defaults below, so an empty Config is always usable.
type Config struct {
	// Seed feeds the single random stream of a strategy run. The same
	// seed and inputs reproduce the same partition bit-for-bit.
	Seed int64

	// Weights for the composite score. Zero value means the strategy's
	// own default weighting.
	Weights ScoreWeights

	// Annealing settings
	MaxIterations      int
	StallLimit         int
	InitialTemperature float64
	CoolingRate        float64

	// Genetic settings
	PopulationSize int
	Generations    int
	MutationRate   float64
}

const (
	defaultMaxIterations  = 2000
	defaultStallLimit     = 200
	defaultTemperature    = 1.0
	defaultCoolingRate    = 0.995
	defaultPopulationSize = 20
	defaultGenerations    = 60
	defaultPlateauLimit   = 12
	defaultMutationRate   = 0.1
)

func (c Config) withDefaults(weights ScoreWeights) Config {
	if c.Weights == (ScoreWeights{}) {
		c.Weights = weights
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = defaultMaxIterations
	}
	if c.StallLimit <= 0 {
		c.StallLimit = defaultStallLimit
	}
	if c.InitialTemperature <= 0 {
		c.InitialTemperature = defaultTemperature
	}
	if c.CoolingRate <= 0 || c.CoolingRate >= 1 {
		c.CoolingRate = defaultCoolingRate
	}
	if c.PopulationSize <= 1 {
		c.PopulationSize = defaultPopulationSize
	}
	if c.Generations <= 0 {
		c.Generations = defaultGenerations
	}
	if c.MutationRate <= 0 || c.MutationRate > 1 {
		c.MutationRate = defaultMutationRate
	}
	return c
}

// StrategyResult is a finished partition plus strategy-specific notes.
type StrategyResult struct {
	Partition *Partition

	// SplitClusters counts mutual-preference clusters the balanced
	// strategy could not keep whole because of capacity. Reported in
	// analytics rather than failing the run.
	SplitClusters int
}

// Strategy is the common contract every grouping algorithm implements.
// A strategy owns the partition it builds and never shares it with
// another in-flight run; cancellation is cooperative and checked
// between iterations for the slow strategies.
type Strategy interface {
	// Name returns the catalog identifier for this strategy
	Name() string

	// Slow reports whether the strategy is an expensive iterative
	// optimizer that should be opted into explicitly.
	Slow() bool

	// Generate builds a complete partition for the inputs or fails.
	Generate(ctx context.Context, in Inputs, cfg Config) (*StrategyResult, error)
}

// Catalog returns all strategies in their fixed catalog order. Batch
// results are reported in this order regardless of completion order.
func Catalog() []Strategy {
	return []Strategy{
		&balancedStrategy{},
		&preferenceStrategy{},
		&roundRobinStrategy{},
		&randomStrategy{},
		&annealingStrategy{},
		&geneticStrategy{},
	}
}

// strategyByName resolves a catalog identifier.
func strategyByName(name string) (Strategy, bool) {
	for _, s := range Catalog() {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// ValidateInputs performs the batch-level checks shared by all
// strategies: non-empty roster, at least one group shell, a preference
// record for every roster member, and total capacity able to hold the
// roster. Any failure here aborts the whole batch before a strategy
// runs.
func ValidateInputs(in Inputs) error {
	if len(in.Roster) == 0 {
		return ErrEmptyRoster
	}
	if len(in.Shells) == 0 {
		return ErrNoGroupShells
	}
	for _, person := range in.Roster {
		if _, ok := in.Preferences[person.ID]; !ok {
			return &MissingPreferenceError{PersonID: person.ID}
		}
	}

	totalCapacity := 0
	hasUnbounded := false
	for _, shell := range in.Shells {
		if shell.Capacity == nil {
			hasUnbounded = true
			continue
		}
		totalCapacity += *shell.Capacity
	}
	if !hasUnbounded && totalCapacity < len(in.Roster) {
		return &InsufficientCapacityError{RosterSize: len(in.Roster), TotalCapacity: totalCapacity}
	}

	return nil
}

// leastFullIndex picks the group with the fewest members that still has
// room. Ties break by shell order so placement is deterministic.
func leastFullIndex(p *Partition) int {
	best := -1
	for i := 0; i < p.GroupCount(); i++ {
		if !p.HasRoomAt(i) {
			continue
		}
		if best < 0 || p.SizeAt(i) < p.SizeAt(best) {
			best = i
		}
	}
	return best
}

// rosterIDs extracts roster ids in input order.
func rosterIDs(roster []model.Person) []string {
	ids := make([]string, len(roster))
	for i, person := range roster {
		ids[i] = person.ID
	}
	return ids
}
