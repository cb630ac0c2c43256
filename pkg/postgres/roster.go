package postgres

import (
	"context"
	"fmt"

	"github.com/andysmith26/groupwheel/pkg/db"
)

// GetPeople retrieves the roster for a program in stored roster order
func (d *DB) GetPeople(ctx context.Context, programID string) ([]db.Person, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, program_id, first_name, last_name
		FROM person
		WHERE program_id = $1
		ORDER BY roster_order
	`, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer rows.Close()

	var people []db.Person
	for rows.Next() {
		var p db.Person
		if err := rows.Scan(&p.ID, &p.ProgramID, &p.FirstName, &p.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}

	return people, nil
}

// GetPreferences retrieves all preference records for a program
func (d *DB) GetPreferences(ctx context.Context, programID string) ([]db.Preference, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, program_id, person_id, liked_people, avoided_people, liked_groups, avoided_groups
		FROM preference
		WHERE program_id = $1
	`, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var preferences []db.Preference
	for rows.Next() {
		var p db.Preference
		if err := rows.Scan(&p.ID, &p.ProgramID, &p.PersonID,
			&p.LikedPeople, &p.AvoidedPeople, &p.LikedGroups, &p.AvoidedGroups); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		preferences = append(preferences, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preferences: %w", err)
	}

	return preferences, nil
}

// GetGroupShells retrieves the group shells for a program in stored
// shell order
func (d *DB) GetGroupShells(ctx context.Context, programID string) ([]db.GroupShell, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, program_id, name, capacity
		FROM group_shell
		WHERE program_id = $1
		ORDER BY shell_order
	`, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group shells: %w", err)
	}
	defer rows.Close()

	var shells []db.GroupShell
	for rows.Next() {
		var s db.GroupShell
		if err := rows.Scan(&s.ID, &s.ProgramID, &s.Name, &s.Capacity); err != nil {
			return nil, fmt.Errorf("failed to scan group shell: %w", err)
		}
		shells = append(shells, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group shells: %w", err)
	}

	return shells, nil
}
