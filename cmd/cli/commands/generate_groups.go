package commands

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andysmith26/groupwheel/pkg/core/grouping"
	"github.com/andysmith26/groupwheel/pkg/core/services"
)

// GenerateGroupsCmd creates the generateGroups command
func GenerateGroupsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generateGroups",
		Short: "Generate candidate group assignments for a program",
		Long:  "Run one or more grouping strategies against the program roster and preferences, and optionally commit the chosen candidate",
		RunE: func(cmd *cobra.Command, args []string) error {
			program, _ := cmd.Flags().GetString("program")
			strategies, _ := cmd.Flags().GetStringSlice("strategy")
			seed, _ := cmd.Flags().GetInt64("seed")
			ranked, _ := cmd.Flags().GetBool("ranked")
			commit, _ := cmd.Flags().GetString("commit")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			inputPath, _ := cmd.Flags().GetString("input")

			// Snapshot runs have no database to persist into.
			if inputPath != "" && commit != "" {
				return fmt.Errorf("--commit requires the database and cannot be combined with --input")
			}

			app.Logger.Debug("generateGroups command",
				zap.Strings("strategies", strategies),
				zap.String("commit", commit),
				zap.Bool("dry_run", dryRun))

			var result *services.GenerateGroupsResult
			var err error

			if inputPath != "" {
				// Snapshot mode: no database involved
				result, err = generateFromSnapshot(app, inputPath, strategies, seed, ranked)
			} else {
				result, err = services.GenerateGroups(
					app.Ctx,
					app.Database,
					app.Cfg,
					app.Logger,
					services.UUIDGenerator{},
					grouping.SystemClock(),
					services.GenerateGroupsOptions{
						ProgramID:  app.programID(program),
						Strategies: strategies,
						Seed:       seed,
						Ranked:     ranked,
						Commit:     commit,
						DryRun:     dryRun,
					},
				)
			}
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			printBatch(result, dryRun)
			return nil
		},
	}

	cmd.Flags().String("program", "", "Program to generate groups for (default: configured program)")
	cmd.Flags().StringSlice("strategy", nil, "Strategies to run (default: all non-slow strategies)")
	cmd.Flags().Int64("seed", 0, "Random seed applied to every strategy (0 = per-strategy defaults)")
	cmd.Flags().Bool("ranked", false, "Order candidates best-first instead of catalog order")
	cmd.Flags().String("commit", "", "Persist the candidate produced by this strategy")
	cmd.Flags().Bool("dry-run", false, "Never persist, even with --commit")
	cmd.Flags().String("input", "", "Generate from a YAML snapshot file instead of the database")

	return cmd
}

// generateFromSnapshot runs the engine over a YAML snapshot file
func generateFromSnapshot(app *AppContext, path string, strategies []string, seed int64, ranked bool) (*services.GenerateGroupsResult, error) {
	snapshot, err := services.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	inputs, err := snapshot.Inputs()
	if err != nil {
		return nil, err
	}

	cfgs := map[string]grouping.Config{}
	if seed != 0 {
		for _, s := range grouping.Catalog() {
			cfgs[s.Name()] = grouping.Config{Seed: seed}
		}
	}

	batch, err := grouping.NewOrchestrator(nil).Run(app.Ctx, inputs, strategies, cfgs)
	if err != nil {
		return nil, err
	}

	candidates := batch.Candidates
	if ranked {
		candidates = grouping.RankCandidates(candidates)
	}
	return &services.GenerateGroupsResult{
		ProgramID:  snapshot.Program,
		Candidates: candidates,
		Failures:   batch.Failures,
	}, nil
}

// printBatch renders the batch outcome for the terminal
func printBatch(result *services.GenerateGroupsResult, dryRun bool) {
	fmt.Printf("\nGroup Generation Results\n\n")
	fmt.Printf("Program:    %s\n", result.ProgramID)
	fmt.Printf("Candidates: %d\n", len(result.Candidates))
	if dryRun {
		fmt.Printf("Mode:       DRY RUN (not saved)\n")
	} else if result.RunID != "" {
		fmt.Printf("Committed:  run %s\n", result.RunID)
	}
	fmt.Println()

	for _, candidate := range result.Candidates {
		fmt.Printf("--- %s ---\n", candidate.Strategy)
		fmt.Printf("  composite %.4f (preference %.4f, balance %.4f)\n",
			candidate.Score.Composite, candidate.Score.Preference, candidate.Score.Balance)
		fmt.Printf("  top choice %.1f%%", candidate.Analytics.PercentTopChoice)
		if !math.IsNaN(candidate.Analytics.AvgPreferenceRank) {
			fmt.Printf(", avg rank %.2f", candidate.Analytics.AvgPreferenceRank)
		}
		if candidate.Analytics.SplitClusters > 0 {
			fmt.Printf(", %d cluster(s) split for capacity", candidate.Analytics.SplitClusters)
		}
		fmt.Println()
		for _, gs := range candidate.Analytics.GroupSizes {
			fmt.Printf("  %s (%d): %s\n", gs.GroupID, gs.Size, strings.Join(candidate.Assignment[gs.GroupID], ", "))
		}
		fmt.Println()
	}

	if len(result.Failures) > 0 {
		fmt.Printf("Failures (%d):\n", len(result.Failures))
		for _, failure := range result.Failures {
			if failure.Cancelled() {
				fmt.Printf("  - %s: cancelled\n", failure.Strategy)
			} else {
				fmt.Printf("  - %s: %v\n", failure.Strategy, failure.Err)
			}
		}
		fmt.Println()
	}
}
