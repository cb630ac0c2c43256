package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/andysmith26/groupwheel/pkg/db"
)

// ViewAssignmentsStore defines the database operations needed for
// viewing persisted assignments
type ViewAssignmentsStore interface {
	GetAssignmentRuns(ctx context.Context, programID string) ([]db.AssignmentRun, error)
	GetAssignments(ctx context.Context, runID string) ([]db.Assignment, error)
}

// AssignmentView is one persisted run with its members grouped by group
type AssignmentView struct {
	Run    db.AssignmentRun
	Groups map[string][]string
}

// ViewAssignments loads the persisted runs for a program, most recent
// first, with members collected per group. A positive limit caps the
// number of runs returned.
func ViewAssignments(ctx context.Context, store ViewAssignmentsStore, logger *zap.Logger, programID string, limit int) ([]AssignmentView, error) {
	logger.Debug("Fetching assignment runs", zap.String("program_id", programID))
	runs, err := store.GetAssignmentRuns(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment runs: %w", err)
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	views := make([]AssignmentView, 0, len(runs))
	for _, run := range runs {
		assignments, err := store.GetAssignments(ctx, run.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch assignments for run %s: %w", run.ID, err)
		}

		groups := make(map[string][]string)
		for _, a := range assignments {
			groups[a.GroupID] = append(groups[a.GroupID], a.PersonID)
		}
		for groupID := range groups {
			sort.Strings(groups[groupID])
		}

		views = append(views, AssignmentView{Run: run, Groups: groups})
	}

	return views, nil
}
