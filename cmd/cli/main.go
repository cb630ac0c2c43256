package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andysmith26/groupwheel/cmd/cli/commands"
	"github.com/andysmith26/groupwheel/internal/config"
	"github.com/andysmith26/groupwheel/pkg/postgres"
	"github.com/andysmith26/groupwheel/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     *commands.AppContext
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "groupwheel",
		Short: "Groupwheel CLI - Generate group assignments",
		Long:  `A CLI tool for partitioning a program roster into capacity-bounded groups under like and avoid preferences.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Snapshot runs never touch the database
			if cmd.Name() == "generateGroups" {
				if input, _ := cmd.Flags().GetString("input"); input != "" {
					return initApp(false)
				}
			}
			if cmd.Name() == "listStrategies" {
				return initApp(false)
			}
			return initApp(true)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output on the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.GenerateGroupsCmd(appRef()))
	rootCmd.AddCommand(commands.ListStrategiesCmd(appRef()))
	rootCmd.AddCommand(commands.ViewAssignmentsCmd(appRef()))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appRef returns the shared context; it is populated by initApp before any RunE fires
func appRef() *commands.AppContext {
	if app == nil {
		app = &commands.AppContext{}
	}
	return app
}

// initApp sets up logger, config, and database
func initApp(withDatabase bool) error {
	var err error
	appRef()
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Snapshot and catalog commands run without config or database
	if !withDatabase {
		return nil
	}

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	app.Logger.Info("Connecting to database")
	database, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	app.Logger.Info("Running migrations")
	if err := database.RunMigrations(app.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	app.Database = database
	app.Logger.Info("Database initialized successfully")

	return nil
}
