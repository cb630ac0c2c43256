package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andysmith26/groupwheel/internal/config"
	"github.com/andysmith26/groupwheel/pkg/core/grouping"
	"github.com/andysmith26/groupwheel/pkg/db"
)

// fakeStore serves a fixed program snapshot and records inserts
type fakeStore struct {
	people      []db.Person
	preferences []db.Preference
	shells      []db.GroupShell

	insertedRun         *db.AssignmentRun
	insertedAssignments []db.Assignment
	insertErr           error
}

func (f *fakeStore) GetPeople(_ context.Context, _ string) ([]db.Person, error) {
	return f.people, nil
}

func (f *fakeStore) GetPreferences(_ context.Context, _ string) ([]db.Preference, error) {
	return f.preferences, nil
}

func (f *fakeStore) GetGroupShells(_ context.Context, _ string) ([]db.GroupShell, error) {
	return f.shells, nil
}

func (f *fakeStore) InsertAssignmentRun(_ context.Context, run *db.AssignmentRun, assignments []db.Assignment) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.insertedRun = run
	f.insertedAssignments = assignments
	return nil
}

// sequenceIDs hands out id-1, id-2, ... for reproducible assertions
type sequenceIDs struct {
	next int
}

func (s *sequenceIDs) NewID() string {
	s.next++
	return fmt.Sprintf("id-%d", s.next)
}

type stubClock struct {
	at time.Time
}

func (c stubClock) Now() time.Time { return c.at }

func classStore() *fakeStore {
	capacity := 3
	return &fakeStore{
		people: []db.Person{
			{ID: "p1", FirstName: "Ada"},
			{ID: "p2", FirstName: "Ben"},
			{ID: "p3", FirstName: "Cleo"},
			{ID: "p4", FirstName: "Dev"},
		},
		preferences: []db.Preference{
			{PersonID: "p1", LikedPeople: []string{"p2"}},
			{PersonID: "p2", LikedPeople: []string{"p1"}},
		},
		shells: []db.GroupShell{
			{ID: "g1", Name: "Red", Capacity: &capacity},
			{ID: "g2", Name: "Blue"},
		},
	}
}

func testGenerateOpts() (*config.Config, *zap.Logger, stubClock) {
	cfg := &config.Config{DatabaseURL: "postgres://test"}
	clock := stubClock{at: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
	return cfg, zap.NewNop(), clock
}

func TestGenerateGroups_DefaultStrategies(t *testing.T) {
	store := classStore()
	cfg, logger, clock := testGenerateOpts()

	result, err := GenerateGroups(context.Background(), store, cfg, logger, &sequenceIDs{}, clock,
		GenerateGroupsOptions{ProgramID: "prog-1"})
	require.NoError(t, err)

	assert.Equal(t, "prog-1", result.ProgramID)
	assert.Len(t, result.Candidates, 4, "Default run covers the fast strategies")
	assert.Empty(t, result.Failures)
	assert.Empty(t, result.RunID, "Nothing should be persisted without a commit")
	assert.Nil(t, store.insertedRun)
}

func TestGenerateGroups_CommitPersistsChosenCandidate(t *testing.T) {
	store := classStore()
	cfg, logger, clock := testGenerateOpts()

	result, err := GenerateGroups(context.Background(), store, cfg, logger, &sequenceIDs{}, clock,
		GenerateGroupsOptions{ProgramID: "prog-1", Commit: grouping.StrategyBalanced})
	require.NoError(t, err)

	assert.Equal(t, "id-1", result.RunID)
	require.NotNil(t, store.insertedRun)
	assert.Equal(t, "prog-1", store.insertedRun.ProgramID)
	assert.Equal(t, grouping.StrategyBalanced, store.insertedRun.Strategy)
	assert.Equal(t, clock.at, store.insertedRun.GeneratedAt)
	assert.Len(t, store.insertedAssignments, 4, "Every roster member gets one assignment row")
	for _, a := range store.insertedAssignments {
		assert.Equal(t, "id-1", a.RunID)
	}
}

func TestGenerateGroups_DryRunNeverPersists(t *testing.T) {
	store := classStore()
	cfg, logger, clock := testGenerateOpts()

	result, err := GenerateGroups(context.Background(), store, cfg, logger, &sequenceIDs{}, clock,
		GenerateGroupsOptions{ProgramID: "prog-1", Commit: grouping.StrategyBalanced, DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, result.RunID)
	assert.Nil(t, store.insertedRun, "Dry run must not write")
	assert.NotEmpty(t, result.Candidates)
}

func TestGenerateGroups_CommitUnknownCandidate(t *testing.T) {
	store := classStore()
	cfg, logger, clock := testGenerateOpts()

	// The annealing candidate was never generated, so there is nothing to commit
	_, err := GenerateGroups(context.Background(), store, cfg, logger, &sequenceIDs{}, clock,
		GenerateGroupsOptions{ProgramID: "prog-1", Commit: grouping.StrategyAnnealing})

	assert.Error(t, err)
	assert.Nil(t, store.insertedRun)
}

func TestGenerateGroups_RankedOrdersBestFirst(t *testing.T) {
	store := classStore()
	cfg, logger, clock := testGenerateOpts()

	result, err := GenerateGroups(context.Background(), store, cfg, logger, &sequenceIDs{}, clock,
		GenerateGroupsOptions{ProgramID: "prog-1", Ranked: true, Seed: 7})
	require.NoError(t, err)

	for i := 1; i < len(result.Candidates); i++ {
		assert.GreaterOrEqual(t,
			result.Candidates[i-1].Score.Composite,
			result.Candidates[i].Score.Composite)
	}
}

func TestGenerateGroups_SeedMakesRunsReproducible(t *testing.T) {
	cfg, logger, clock := testGenerateOpts()
	opts := GenerateGroupsOptions{
		ProgramID:  "prog-1",
		Strategies: []string{grouping.StrategyRandom, grouping.StrategyGenetic},
		Seed:       99,
	}

	first, err := GenerateGroups(context.Background(), classStore(), cfg, logger, &sequenceIDs{}, clock, opts)
	require.NoError(t, err)
	second, err := GenerateGroups(context.Background(), classStore(), cfg, logger, &sequenceIDs{}, clock, opts)
	require.NoError(t, err)

	require.Len(t, first.Candidates, 2)
	for i := range first.Candidates {
		assert.Equal(t, first.Candidates[i].Assignment, second.Candidates[i].Assignment)
	}
}

func TestGenerateGroups_InsufficientCapacityAbortsBatch(t *testing.T) {
	store := classStore()
	one := 1
	store.shells = []db.GroupShell{
		{ID: "g1", Capacity: &one},
		{ID: "g2", Capacity: &one},
	}
	cfg, logger, clock := testGenerateOpts()

	_, err := GenerateGroups(context.Background(), store, cfg, logger, &sequenceIDs{}, clock,
		GenerateGroupsOptions{ProgramID: "prog-1"})

	var insufficient *grouping.InsufficientCapacityError
	assert.ErrorAs(t, err, &insufficient)
}

func TestGenerateGroups_StrategyOverridesApply(t *testing.T) {
	store := classStore()
	cfg, logger, clock := testGenerateOpts()
	seed := int64(42)
	cfg.StrategyOverrides = []config.StrategyOverride{
		{Strategy: grouping.StrategyRandom, Seed: &seed},
	}
	opts := GenerateGroupsOptions{ProgramID: "prog-1", Strategies: []string{grouping.StrategyRandom}}

	first, err := GenerateGroups(context.Background(), store, cfg, logger, &sequenceIDs{}, clock, opts)
	require.NoError(t, err)
	second, err := GenerateGroups(context.Background(), store, cfg, logger, &sequenceIDs{}, clock, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Candidates[0].Assignment, second.Candidates[0].Assignment)
}
