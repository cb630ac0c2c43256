package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andysmith26/groupwheel/pkg/core/services"
)

// ViewAssignmentsCmd creates the viewAssignments command
func ViewAssignmentsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewAssignments",
		Short: "View saved assignment runs for a program",
		RunE: func(cmd *cobra.Command, args []string) error {
			program, _ := cmd.Flags().GetString("program")
			limit, _ := cmd.Flags().GetInt("limit")

			app.Logger.Debug("viewAssignments command", zap.String("program", program))

			views, err := services.ViewAssignments(app.Ctx, app.Database, app.Logger, app.programID(program), limit)
			if err != nil {
				return fmt.Errorf("failed to load assignments: %w", err)
			}

			if len(views) == 0 {
				fmt.Println("\nNo saved assignment runs found")
				return nil
			}

			fmt.Printf("\nSaved Assignment Runs\n\n")
			for _, view := range views {
				fmt.Printf("Run %s (%s) generated %s\n",
					view.Run.ID, view.Run.Strategy, view.Run.GeneratedAt.Format("2006-01-02 15:04"))

				groupIDs := make([]string, 0, len(view.Groups))
				for id := range view.Groups {
					groupIDs = append(groupIDs, id)
				}
				sort.Strings(groupIDs)
				for _, id := range groupIDs {
					fmt.Printf("  %s: %s\n", id, strings.Join(view.Groups[id], ", "))
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().String("program", "", "Program to inspect (default: configured program)")
	cmd.Flags().Int("limit", 0, "Show at most this many runs (0 = all)")

	return cmd
}
