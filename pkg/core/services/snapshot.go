package services

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/andysmith26/groupwheel/pkg/core/grouping"
	"github.com/andysmith26/groupwheel/pkg/core/model"
)

// Snapshot is a self-contained program snapshot loaded from a YAML
// file, so groups can be generated without a database.
type Snapshot struct {
	Program     string               `yaml:"program"`
	People      []SnapshotPerson     `yaml:"people" validate:"required,min=1,dive"`
	Preferences []SnapshotPreference `yaml:"preferences,omitempty" validate:"dive"`
	Groups      []SnapshotGroup      `yaml:"groups" validate:"required,min=1,dive"`
}

// SnapshotPerson is one roster entry in a snapshot file
type SnapshotPerson struct {
	ID        string `yaml:"id" validate:"required"`
	FirstName string `yaml:"firstName,omitempty"`
	LastName  string `yaml:"lastName,omitempty"`
}

// SnapshotPreference is one preference record in a snapshot file
type SnapshotPreference struct {
	PersonID      string            `yaml:"personId" validate:"required"`
	LikedPeople   []string          `yaml:"likedPeople,omitempty"`
	AvoidedPeople []string          `yaml:"avoidedPeople,omitempty"`
	LikedGroups   []string          `yaml:"likedGroups,omitempty"`
	AvoidedGroups []string          `yaml:"avoidedGroups,omitempty"`
	Metadata      map[string]string `yaml:"metadata,omitempty"`
}

// SnapshotGroup is one group shell in a snapshot file
type SnapshotGroup struct {
	ID       string `yaml:"id" validate:"required"`
	Name     string `yaml:"name,omitempty"`
	Capacity *int   `yaml:"capacity,omitempty" validate:"omitnil,min=1"`
}

var snapshotValidate = validator.New()

// LoadSnapshot reads and validates a YAML snapshot file
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snapshot Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}

	if err := snapshotValidate.Struct(&snapshot); err != nil {
		return nil, fmt.Errorf("snapshot validation failed: %w", err)
	}

	return &snapshot, nil
}

// Inputs converts the snapshot into the engine's input form,
// normalizing preferences along the way.
func (s *Snapshot) Inputs() (grouping.Inputs, error) {
	roster := make([]model.Person, len(s.People))
	for i, p := range s.People {
		roster[i] = model.Person{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName}
	}

	records := make([]model.Preference, len(s.Preferences))
	for i, p := range s.Preferences {
		records[i] = model.Preference{
			PersonID:      p.PersonID,
			LikedPeople:   p.LikedPeople,
			AvoidedPeople: p.AvoidedPeople,
			LikedGroups:   p.LikedGroups,
			AvoidedGroups: p.AvoidedGroups,
			Metadata:      p.Metadata,
		}
	}

	shells := make([]model.GroupShell, len(s.Groups))
	for i, g := range s.Groups {
		name := g.Name
		if name == "" {
			name = g.ID
		}
		shells[i] = model.GroupShell{ID: g.ID, Name: name, Capacity: g.Capacity}
	}

	table, err := grouping.NormalizePreferences(roster, records)
	if err != nil {
		return grouping.Inputs{}, fmt.Errorf("failed to normalize preferences: %w", err)
	}

	return grouping.Inputs{Roster: roster, Preferences: table, Shells: shells}, nil
}
