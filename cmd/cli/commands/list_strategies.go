package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andysmith26/groupwheel/pkg/core/grouping"
)

// ListStrategiesCmd creates the listStrategies command
func ListStrategiesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listStrategies",
		Short: "List the available grouping strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("\nAvailable Strategies\n\n")
			for _, strategy := range grouping.Catalog() {
				marker := ""
				if strategy.Slow() {
					marker = " (slow, opt-in)"
				}
				fmt.Printf("  %s%s\n", strategy.Name(), marker)
			}
			fmt.Println()
			return nil
		},
	}
}
