package postgres

import (
	"context"
	"fmt"

	"github.com/andysmith26/groupwheel/pkg/db"
)

// InsertAssignmentRun inserts a run record and its assignments in one
// transaction
func (d *DB) InsertAssignmentRun(ctx context.Context, run *db.AssignmentRun, assignments []db.Assignment) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO assignment_run (id, program_id, strategy, generated_at)
		VALUES ($1, $2, $3, $4)
	`, run.ID, run.ProgramID, run.Strategy, run.GeneratedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert assignment run: %w", err)
	}

	for _, a := range assignments {
		_, err := tx.Exec(ctx, `
			INSERT INTO assignment (id, run_id, group_id, person_id)
			VALUES ($1, $2, $3, $4)
		`, a.ID, a.RunID, a.GroupID, a.PersonID)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetAssignmentRuns retrieves all assignment runs for a program, most
// recent first
func (d *DB) GetAssignmentRuns(ctx context.Context, programID string) ([]db.AssignmentRun, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, program_id, strategy, generated_at
		FROM assignment_run
		WHERE program_id = $1
		ORDER BY generated_at DESC
	`, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment runs: %w", err)
	}
	defer rows.Close()

	var runs []db.AssignmentRun
	for rows.Next() {
		var r db.AssignmentRun
		if err := rows.Scan(&r.ID, &r.ProgramID, &r.Strategy, &r.GeneratedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment run: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignment runs: %w", err)
	}

	return runs, nil
}

// GetAssignments retrieves the assignments of one run
func (d *DB) GetAssignments(ctx context.Context, runID string) ([]db.Assignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, run_id, group_id, person_id
		FROM assignment
		WHERE run_id = $1
		ORDER BY group_id, person_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		var a db.Assignment
		if err := rows.Scan(&a.ID, &a.RunID, &a.GroupID, &a.PersonID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}
