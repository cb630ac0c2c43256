package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/andysmith26/groupwheel/internal/config"
	"github.com/andysmith26/groupwheel/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database db.Database
	Logger   *zap.Logger
	Ctx      context.Context
}

// programID resolves the program to operate on: an explicit flag value
// wins, otherwise the configured default.
func (app *AppContext) programID(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return app.Cfg.DefaultProgram
}
