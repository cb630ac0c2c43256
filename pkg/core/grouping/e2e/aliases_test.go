package e2e

import (
	"github.com/andysmith26/groupwheel/pkg/core/grouping"
)

// Type aliases to avoid prefixing everything with grouping.
type (
	Inputs          = grouping.Inputs
	Config          = grouping.Config
	PreferenceTable = grouping.PreferenceTable
	BatchResult     = grouping.BatchResult
	Candidate       = grouping.Candidate
	Assignment      = grouping.Assignment
)

// Function aliases
var (
	NormalizePreferences = grouping.NormalizePreferences
	NewOrchestrator      = grouping.NewOrchestrator
	RankCandidates       = grouping.RankCandidates
	Catalog              = grouping.Catalog
)
