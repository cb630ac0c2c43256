package grouping

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andysmith26/groupwheel/pkg/core/model"
)

func TestValidateInputs_EmptyRoster(t *testing.T) {
	err := ValidateInputs(Inputs{Shells: shells("g1")})
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestValidateInputs_NoShells(t *testing.T) {
	roster := testRoster(1)
	err := ValidateInputs(Inputs{Roster: roster, Preferences: mustNormalize(t, roster, nil)})
	assert.ErrorIs(t, err, ErrNoGroupShells)
}

func TestValidateInputs_MissingPreference(t *testing.T) {
	roster := testRoster(2)
	table := mustNormalize(t, roster, nil)
	delete(table, "p2")

	err := ValidateInputs(Inputs{Roster: roster, Preferences: table, Shells: shells("g1")})

	var missing *MissingPreferenceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "p2", missing.PersonID)
}

func TestValidateInputs_InsufficientCapacity(t *testing.T) {
	roster := testRoster(5)
	groups := []model.GroupShell{
		{ID: "g1", Capacity: capOf(2)},
		{ID: "g2", Capacity: capOf(2)},
	}

	err := ValidateInputs(Inputs{Roster: roster, Preferences: mustNormalize(t, roster, nil), Shells: groups})

	var insufficient *InsufficientCapacityError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 5, insufficient.RosterSize)
	assert.Equal(t, 4, insufficient.TotalCapacity)
}

func TestValidateInputs_UnboundedGroupAbsorbsAnyRoster(t *testing.T) {
	roster := testRoster(100)
	groups := []model.GroupShell{
		{ID: "g1", Capacity: capOf(1)},
		{ID: "g2"},
	}

	err := ValidateInputs(Inputs{Roster: roster, Preferences: mustNormalize(t, roster, nil), Shells: groups})
	assert.NoError(t, err)
}

func TestRoundRobin_DealsInRosterOrder(t *testing.T) {
	roster := testRoster(7)
	in := Inputs{Roster: roster, Preferences: mustNormalize(t, roster, nil), Shells: shells("g1", "g2", "g3")}

	result, err := (&roundRobinStrategy{}).Generate(context.Background(), in, Config{})
	require.NoError(t, err)

	p := result.Partition
	assert.True(t, p.IsComplete())
	assert.Equal(t, []string{"p1", "p4", "p7"}, p.MembersAt(0))
	assert.Equal(t, []string{"p2", "p5"}, p.MembersAt(1))
	assert.Equal(t, []string{"p3", "p6"}, p.MembersAt(2))
}

func TestRoundRobin_SkipsFullGroups(t *testing.T) {
	roster := testRoster(4)
	groups := []model.GroupShell{
		{ID: "g1", Capacity: capOf(1)},
		{ID: "g2"},
	}
	in := Inputs{Roster: roster, Preferences: mustNormalize(t, roster, nil), Shells: groups}

	result, err := (&roundRobinStrategy{}).Generate(context.Background(), in, Config{})
	require.NoError(t, err)

	p := result.Partition
	assert.Equal(t, 1, p.SizeOf("g1"))
	assert.Equal(t, 3, p.SizeOf("g2"))
}

func TestRandom_SameSeedSameResult(t *testing.T) {
	roster := testRoster(10)
	in := Inputs{Roster: roster, Preferences: mustNormalize(t, roster, nil), Shells: shells("g1", "g2", "g3")}
	cfg := Config{Seed: 42}

	first, err := (&randomStrategy{}).Generate(context.Background(), in, cfg)
	require.NoError(t, err)
	second, err := (&randomStrategy{}).Generate(context.Background(), in, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Partition.Freeze(), second.Partition.Freeze())
}

func TestRandom_IgnoresPreferences(t *testing.T) {
	roster := testRoster(10)
	plain := Inputs{Roster: roster, Preferences: mustNormalize(t, roster, nil), Shells: shells("g1", "g2")}
	opinionated := Inputs{
		Roster: roster,
		Preferences: mustNormalize(t, roster, []model.Preference{
			{PersonID: "p1", LikedPeople: []string{"p2"}, AvoidedPeople: []string{"p3"}},
		}),
		Shells: shells("g1", "g2"),
	}
	cfg := Config{Seed: 7}

	first, err := (&randomStrategy{}).Generate(context.Background(), plain, cfg)
	require.NoError(t, err)
	second, err := (&randomStrategy{}).Generate(context.Background(), opinionated, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Partition.Freeze(), second.Partition.Freeze(),
		"Preferences must not influence the random strategy")
}

func TestPreferenceStrategy_FollowsLikedPerson(t *testing.T) {
	roster := testRoster(2)
	in := Inputs{
		Roster: roster,
		Preferences: mustNormalize(t, roster, []model.Preference{
			{PersonID: "p2", LikedPeople: []string{"p1"}},
		}),
		Shells: shells("g1", "g2"),
	}

	result, err := (&preferenceStrategy{}).Generate(context.Background(), in, Config{})
	require.NoError(t, err)

	p := result.Partition
	assert.Equal(t, p.GroupOf("p1"), p.GroupOf("p2"), "p2 should join p1's group")
}

func TestPreferenceStrategy_HonorsLikedGroup(t *testing.T) {
	roster := testRoster(1)
	in := Inputs{
		Roster: roster,
		Preferences: mustNormalize(t, roster, []model.Preference{
			{PersonID: "p1", LikedGroups: []string{"g2"}},
		}),
		Shells: shells("g1", "g2"),
	}

	result, err := (&preferenceStrategy{}).Generate(context.Background(), in, Config{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Partition.GroupOf("p1"))
}

func TestPreferenceStrategy_FallsBackWhenWishFull(t *testing.T) {
	roster := testRoster(2)
	groups := []model.GroupShell{
		{ID: "g1", Capacity: capOf(1)},
		{ID: "g2"},
	}
	in := Inputs{
		Roster: roster,
		Preferences: mustNormalize(t, roster, []model.Preference{
			{PersonID: "p1", LikedGroups: []string{"g1"}},
			{PersonID: "p2", LikedGroups: []string{"g1"}},
		}),
		Shells: groups,
	}

	result, err := (&preferenceStrategy{}).Generate(context.Background(), in, Config{})
	require.NoError(t, err)

	p := result.Partition
	assert.Equal(t, 0, p.GroupOf("p1"))
	assert.Equal(t, 1, p.GroupOf("p2"), "Full wish should fall back to the least-full group")
}

func TestPreferenceStrategy_SecondWishWhenFirstFull(t *testing.T) {
	roster := testRoster(2)
	groups := []model.GroupShell{
		{ID: "g1", Capacity: capOf(1)},
		{ID: "g2"},
		{ID: "g3"},
	}
	in := Inputs{
		Roster: roster,
		Preferences: mustNormalize(t, roster, []model.Preference{
			{PersonID: "p1", LikedGroups: []string{"g1"}},
			{PersonID: "p2", LikedGroups: []string{"g1", "g3"}},
		}),
		Shells: groups,
	}

	result, err := (&preferenceStrategy{}).Generate(context.Background(), in, Config{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Partition.GroupOf("p2"))
}

func TestBalanced_KeepsMutualClusterTogether(t *testing.T) {
	roster := testRoster(9)
	records := []model.Preference{
		// A mutual triangle
		{PersonID: "p1", LikedPeople: []string{"p2", "p3"}},
		{PersonID: "p2", LikedPeople: []string{"p1", "p3"}},
		{PersonID: "p3", LikedPeople: []string{"p1", "p2"}},
	}
	in := Inputs{Roster: roster, Preferences: mustNormalize(t, roster, records), Shells: shells("g1", "g2", "g3")}

	result, err := (&balancedStrategy{}).Generate(context.Background(), in, Config{})
	require.NoError(t, err)

	p := result.Partition
	assert.True(t, p.IsComplete())
	assert.Equal(t, 0, result.SplitClusters)
	assert.Equal(t, p.GroupOf("p1"), p.GroupOf("p2"))
	assert.Equal(t, p.GroupOf("p2"), p.GroupOf("p3"))
}

func TestBalanced_EvenSizesWithoutPreferences(t *testing.T) {
	roster := testRoster(9)
	in := Inputs{Roster: roster, Preferences: mustNormalize(t, roster, nil), Shells: shells("g1", "g2", "g3")}

	result, err := (&balancedStrategy{}).Generate(context.Background(), in, Config{})
	require.NoError(t, err)

	p := result.Partition
	for i := 0; i < p.GroupCount(); i++ {
		assert.Equal(t, 3, p.SizeAt(i))
	}
}

func TestBalanced_SplitsClusterWhenCapacityForces(t *testing.T) {
	roster := testRoster(2)
	records := []model.Preference{
		{PersonID: "p1", LikedPeople: []string{"p2"}},
		{PersonID: "p2", LikedPeople: []string{"p1"}},
	}
	groups := []model.GroupShell{
		{ID: "g1", Capacity: capOf(1)},
		{ID: "g2", Capacity: capOf(1)},
	}
	in := Inputs{Roster: roster, Preferences: mustNormalize(t, roster, records), Shells: groups}

	result, err := (&balancedStrategy{}).Generate(context.Background(), in, Config{})
	require.NoError(t, err)

	assert.True(t, result.Partition.IsComplete())
	assert.Equal(t, 1, result.SplitClusters, "The pair cannot fit together and must be reported as split")
}

func TestAnnealing_SameSeedSameResult(t *testing.T) {
	in := optimizerInputs(t)
	cfg := Config{Seed: 99, MaxIterations: 300}

	first, err := (&annealingStrategy{}).Generate(context.Background(), in, cfg)
	require.NoError(t, err)
	second, err := (&annealingStrategy{}).Generate(context.Background(), in, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Partition.Freeze(), second.Partition.Freeze())
}

func TestAnnealing_SameSeedSameResultWithDeepWishLists(t *testing.T) {
	// Three-entry like lists pull non-dyadic rank credits into the
	// scores that drive acceptance, so this catches any ordering
	// wobble in the scoring path that the small fixture would miss.
	roster := testRoster(30)
	records := make([]model.Preference, 0, 30)
	for i := 1; i <= 30; i++ {
		records = append(records, model.Preference{
			PersonID: roster[i-1].ID,
			LikedPeople: []string{
				roster[i%30].ID,
				roster[(i+4)%30].ID,
				roster[(i+9)%30].ID,
			},
		})
	}
	in := Inputs{
		Roster:      roster,
		Preferences: mustNormalize(t, roster, records),
		Shells:      shells("g1", "g2", "g3", "g4", "g5"),
	}
	cfg := Config{Seed: 7, MaxIterations: 400}

	first, err := (&annealingStrategy{}).Generate(context.Background(), in, cfg)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := (&annealingStrategy{}).Generate(context.Background(), in, cfg)
		require.NoError(t, err)
		require.Equal(t, first.Partition.Freeze(), again.Partition.Freeze(), "Run %d diverged from the first", i)
	}
}

func TestAnnealing_NeverWorseThanItsStart(t *testing.T) {
	in := optimizerInputs(t)
	cfg := Config{Seed: 5, MaxIterations: 300}

	start, err := (&balancedStrategy{}).Generate(context.Background(), in, cfg)
	require.NoError(t, err)
	refined, err := (&annealingStrategy{}).Generate(context.Background(), in, cfg)
	require.NoError(t, err)

	startScore := ScorePartition(start.Partition, in.Preferences, DefaultWeights())
	refinedScore := ScorePartition(refined.Partition, in.Preferences, DefaultWeights())

	assert.True(t, refined.Partition.IsComplete())
	assert.GreaterOrEqual(t, refinedScore.Composite, startScore.Composite)
}

func TestAnnealing_Cancellation(t *testing.T) {
	in := optimizerInputs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&annealingStrategy{}).Generate(ctx, in, Config{Seed: 1})

	var cancelled *CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.Equal(t, StrategyAnnealing, cancelled.Strategy)
}

func TestGenetic_SameSeedSameResult(t *testing.T) {
	in := optimizerInputs(t)
	cfg := Config{Seed: 123, PopulationSize: 8, Generations: 15}

	first, err := (&geneticStrategy{}).Generate(context.Background(), in, cfg)
	require.NoError(t, err)
	second, err := (&geneticStrategy{}).Generate(context.Background(), in, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Partition.Freeze(), second.Partition.Freeze())
}

func TestGenetic_NeverWorseThanItsSeedIndividual(t *testing.T) {
	in := optimizerInputs(t)
	cfg := Config{Seed: 11, PopulationSize: 8, Generations: 15}

	seeded, err := (&balancedStrategy{}).Generate(context.Background(), in, cfg)
	require.NoError(t, err)
	evolved, err := (&geneticStrategy{}).Generate(context.Background(), in, cfg)
	require.NoError(t, err)

	seededScore := ScorePartition(seeded.Partition, in.Preferences, DefaultWeights())
	evolvedScore := ScorePartition(evolved.Partition, in.Preferences, DefaultWeights())

	assert.True(t, evolved.Partition.IsComplete())
	assert.GreaterOrEqual(t, evolvedScore.Composite, seededScore.Composite)
}

func TestGenetic_Cancellation(t *testing.T) {
	in := optimizerInputs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&geneticStrategy{}).Generate(ctx, in, Config{Seed: 1, PopulationSize: 4})

	var cancelled *CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.Equal(t, StrategyGenetic, cancelled.Strategy)
}

func TestAllStrategies_CompleteAndRespectCapacities(t *testing.T) {
	roster := testRoster(12)
	records := []model.Preference{
		{PersonID: "p1", LikedPeople: []string{"p2"}},
		{PersonID: "p2", LikedPeople: []string{"p1"}},
		{PersonID: "p5", AvoidedPeople: []string{"p6"}},
		{PersonID: "p9", LikedGroups: []string{"g2"}},
	}
	groups := []model.GroupShell{
		{ID: "g1", Capacity: capOf(5)},
		{ID: "g2", Capacity: capOf(5)},
		{ID: "g3"},
	}
	in := Inputs{Roster: roster, Preferences: mustNormalize(t, roster, records), Shells: groups}

	for _, strategy := range Catalog() {
		for seed := int64(1); seed <= 3; seed++ {
			name := fmt.Sprintf("%s/seed=%d", strategy.Name(), seed)
			cfg := Config{Seed: seed, MaxIterations: 200, PopulationSize: 6, Generations: 8}

			result, err := strategy.Generate(context.Background(), in, cfg)
			require.NoError(t, err, name)

			p := result.Partition
			assert.True(t, p.IsComplete(), name)
			for i := 0; i < p.GroupCount(); i++ {
				if p.CapacityAt(i) >= 0 {
					assert.LessOrEqual(t, p.SizeAt(i), p.CapacityAt(i), name)
				}
			}
		}
	}
}

// optimizerInputs is a small fixture with enough tension between
// preferences and balance for the iterative strategies to chew on.
func optimizerInputs(t *testing.T) Inputs {
	t.Helper()
	roster := testRoster(8)
	records := []model.Preference{
		{PersonID: "p1", LikedPeople: []string{"p2"}},
		{PersonID: "p2", LikedPeople: []string{"p1"}},
		{PersonID: "p3", LikedPeople: []string{"p4", "p5"}},
		{PersonID: "p6", AvoidedPeople: []string{"p7"}},
	}
	return Inputs{Roster: roster, Preferences: mustNormalize(t, roster, records), Shells: shells("g1", "g2")}
}
