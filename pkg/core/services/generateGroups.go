package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andysmith26/groupwheel/internal/config"
	"github.com/andysmith26/groupwheel/pkg/core/grouping"
	"github.com/andysmith26/groupwheel/pkg/core/model"
	"github.com/andysmith26/groupwheel/pkg/db"
)

// IDGenerator supplies fresh identifiers for persisted runs and
// assignments. The engine itself never needs ids; only persistence does.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the production IDGenerator
type UUIDGenerator struct{}

// NewID returns a random UUID string
func (UUIDGenerator) NewID() string {
	return uuid.New().String()
}

// GenerateGroupsStore defines the database operations needed for
// generating and committing group assignments
type GenerateGroupsStore interface {
	db.RosterStore
	InsertAssignmentRun(ctx context.Context, run *db.AssignmentRun, assignments []db.Assignment) error
}

// GenerateGroupsOptions controls one generation request
type GenerateGroupsOptions struct {
	// ProgramID selects the roster/preferences/shells snapshot
	ProgramID string

	// Strategies to run; empty means every non-slow strategy
	Strategies []string

	// Seed overrides the random seed for all strategies when non-zero
	Seed int64

	// Ranked orders the returned candidates best-first instead of
	// catalog order
	Ranked bool

	// Commit names the strategy whose candidate should be persisted;
	// empty means generate only
	Commit string

	// DryRun suppresses persistence even when Commit is set
	DryRun bool
}

// GenerateGroupsResult contains the generation results
type GenerateGroupsResult struct {
	ProgramID  string
	Candidates []grouping.Candidate
	Failures   []*grouping.StrategyError

	// RunID is set when a candidate was committed
	RunID string
}

// GenerateGroups loads the program snapshot, runs the requested
// strategies, and optionally persists the chosen candidate.
func GenerateGroups(
	ctx context.Context,
	store GenerateGroupsStore,
	cfg *config.Config,
	logger *zap.Logger,
	idGen IDGenerator,
	clock grouping.Clock,
	opts GenerateGroupsOptions,
) (*GenerateGroupsResult, error) {
	logger.Debug("Starting generateGroups",
		zap.String("program_id", opts.ProgramID),
		zap.Strings("strategies", opts.Strategies),
		zap.Bool("dry_run", opts.DryRun))

	// Step 1: Load the program snapshot
	logger.Debug("Fetching roster")
	people, err := store.GetPeople(ctx, opts.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}
	logger.Debug("Found people", zap.Int("count", len(people)))

	logger.Debug("Fetching preferences")
	preferences, err := store.GetPreferences(ctx, opts.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preferences: %w", err)
	}
	logger.Debug("Found preference records", zap.Int("count", len(preferences)))

	logger.Debug("Fetching group shells")
	shells, err := store.GetGroupShells(ctx, opts.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group shells: %w", err)
	}
	logger.Debug("Found group shells", zap.Int("count", len(shells)))

	// Step 2: Convert rows and normalize preferences
	inputs, err := buildInputs(people, preferences, shells)
	if err != nil {
		return nil, err
	}

	// Step 3: Run the strategy batch
	batch, err := grouping.NewOrchestrator(clock).Run(ctx, inputs, opts.Strategies, strategyConfigs(cfg, opts.Seed))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	for _, failure := range batch.Failures {
		if failure.Cancelled() {
			logger.Info("Strategy cancelled", zap.String("strategy", failure.Strategy))
		} else {
			logger.Warn("Strategy failed", zap.String("strategy", failure.Strategy), zap.Error(failure.Err))
		}
	}

	result := &GenerateGroupsResult{
		ProgramID:  opts.ProgramID,
		Candidates: batch.Candidates,
		Failures:   batch.Failures,
	}
	if opts.Ranked {
		result.Candidates = grouping.RankCandidates(batch.Candidates)
	}

	// Step 4: Persist the chosen candidate
	if opts.Commit == "" {
		return result, nil
	}
	if opts.DryRun {
		logger.Info("Dry run - not saving assignments", zap.String("strategy", opts.Commit))
		return result, nil
	}

	chosen, err := findCandidate(result.Candidates, opts.Commit)
	if err != nil {
		return nil, err
	}

	run := &db.AssignmentRun{
		ID:          idGen.NewID(),
		ProgramID:   opts.ProgramID,
		Strategy:    chosen.Strategy,
		GeneratedAt: chosen.Analytics.GeneratedAt,
	}
	assignments := assignmentRows(idGen, run.ID, chosen.Assignment)

	logger.Debug("Saving assignments",
		zap.String("run_id", run.ID),
		zap.Int("count", len(assignments)))
	if err := store.InsertAssignmentRun(ctx, run, assignments); err != nil {
		return nil, fmt.Errorf("failed to save assignments: %w", err)
	}
	result.RunID = run.ID

	logger.Info("Committed group assignment",
		zap.String("run_id", run.ID),
		zap.String("strategy", chosen.Strategy),
		zap.Int("people", len(assignments)))

	return result, nil
}

// buildInputs converts database rows into the engine's input snapshot
func buildInputs(people []db.Person, preferences []db.Preference, shells []db.GroupShell) (grouping.Inputs, error) {
	roster := make([]model.Person, len(people))
	for i, p := range people {
		roster[i] = model.Person{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName}
	}

	records := make([]model.Preference, len(preferences))
	for i, p := range preferences {
		records[i] = model.Preference{
			PersonID:      p.PersonID,
			LikedPeople:   p.LikedPeople,
			AvoidedPeople: p.AvoidedPeople,
			LikedGroups:   p.LikedGroups,
			AvoidedGroups: p.AvoidedGroups,
		}
	}

	groupShells := make([]model.GroupShell, len(shells))
	for i, s := range shells {
		groupShells[i] = model.GroupShell{ID: s.ID, Name: s.Name, Capacity: s.Capacity}
	}

	table, err := grouping.NormalizePreferences(roster, records)
	if err != nil {
		return grouping.Inputs{}, fmt.Errorf("failed to normalize preferences: %w", err)
	}

	return grouping.Inputs{Roster: roster, Preferences: table, Shells: groupShells}, nil
}

// strategyConfigs builds per-strategy engine configs from the
// application config, optionally forcing one seed across the batch.
func strategyConfigs(cfg *config.Config, seed int64) map[string]grouping.Config {
	cfgs := make(map[string]grouping.Config)
	if cfg != nil {
		for _, override := range cfg.StrategyOverrides {
			sc := grouping.Config{}
			if override.Seed != nil {
				sc.Seed = *override.Seed
			}
			if override.PreferenceWeight != nil || override.BalanceWeight != nil || override.AvoidPenalty != nil {
				weights := grouping.DefaultWeights()
				if override.Strategy == grouping.StrategyPreference {
					weights = grouping.PreferenceFirstWeights()
				}
				if override.PreferenceWeight != nil {
					weights.Preference = *override.PreferenceWeight
				}
				if override.BalanceWeight != nil {
					weights.Balance = *override.BalanceWeight
				}
				if override.AvoidPenalty != nil {
					weights.AvoidPenalty = *override.AvoidPenalty
				}
				sc.Weights = weights
			}
			if override.MaxIterations != nil {
				sc.MaxIterations = *override.MaxIterations
			}
			if override.StallLimit != nil {
				sc.StallLimit = *override.StallLimit
			}
			if override.PopulationSize != nil {
				sc.PopulationSize = *override.PopulationSize
			}
			if override.Generations != nil {
				sc.Generations = *override.Generations
			}
			if override.MutationRate != nil {
				sc.MutationRate = *override.MutationRate
			}
			cfgs[override.Strategy] = sc
		}
	}

	if seed != 0 {
		for _, name := range []string{
			grouping.StrategyBalanced, grouping.StrategyPreference, grouping.StrategyRoundRobin,
			grouping.StrategyRandom, grouping.StrategyAnnealing, grouping.StrategyGenetic,
		} {
			sc := cfgs[name]
			sc.Seed = seed
			cfgs[name] = sc
		}
	}

	return cfgs
}

// findCandidate locates the candidate produced by the named strategy
func findCandidate(candidates []grouping.Candidate, strategy string) (*grouping.Candidate, error) {
	for i := range candidates {
		if candidates[i].Strategy == strategy {
			return &candidates[i], nil
		}
	}
	return nil, fmt.Errorf("no candidate produced by strategy %q - cannot commit", strategy)
}

// assignmentRows flattens a frozen assignment into database rows
func assignmentRows(idGen IDGenerator, runID string, assignment grouping.Assignment) []db.Assignment {
	var rows []db.Assignment
	for groupID, members := range assignment {
		for _, personID := range members {
			rows = append(rows, db.Assignment{
				ID:       idGen.NewID(),
				RunID:    runID,
				GroupID:  groupID,
				PersonID: personID,
			})
		}
	}
	return rows
}
