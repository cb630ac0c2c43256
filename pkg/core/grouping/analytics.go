package grouping

import (
	"math"
	"time"
)

// Clock supplies the timestamp attached to analytics. Algorithms never
// consult it for decisions; injecting it keeps candidate output
// reproducible in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// GroupSize is one entry of a candidate's size distribution, in shell
// order.
type GroupSize struct {
	GroupID string
	Size    int
}

// Analytics is the derived, read-only summary attached to a candidate.
type Analytics struct {
	GeneratedAt time.Time

	// PercentTopChoice is the share (0-100) of people with at least one
	// like who got their first-ranked liked group or sit with their
	// first-ranked liked person.
	PercentTopChoice float64

	// AvgPreferenceRank is the mean 1-based rank achieved by people
	// whose likes were satisfied at all. NaN when no one expressed a
	// preference or nobody's likes were satisfied.
	AvgPreferenceRank float64

	GroupSizes []GroupSize

	// SplitClusters counts mutual-preference clusters the balanced
	// strategy had to split across groups for capacity.
	SplitClusters int
}

// ComputeAnalytics summarizes a finished partition.
func ComputeAnalytics(p *Partition, prefs PreferenceTable, splitClusters int, clock Clock) Analytics {
	withLikes := 0
	topSatisfied := 0
	rankSum := 0
	rankCount := 0

	for personID, pref := range prefs {
		if !pref.HasLikes() {
			continue
		}
		idx := p.GroupOf(personID)
		if idx < 0 {
			continue
		}
		withLikes++

		bestRank := bestSatisfiedRank(p, personID, idx, pref)
		if bestRank < 0 {
			continue
		}
		if bestRank == 0 {
			topSatisfied++
		}
		rankSum += bestRank + 1
		rankCount++
	}

	percentTop := 0.0
	if withLikes > 0 {
		percentTop = 100 * float64(topSatisfied) / float64(withLikes)
	}
	avgRank := math.NaN()
	if rankCount > 0 {
		avgRank = float64(rankSum) / float64(rankCount)
	}

	sizes := make([]GroupSize, p.GroupCount())
	for i := 0; i < p.GroupCount(); i++ {
		sizes[i] = GroupSize{GroupID: p.groups[i].id, Size: p.SizeAt(i)}
	}

	return Analytics{
		GeneratedAt:       clock.Now(),
		PercentTopChoice:  percentTop,
		AvgPreferenceRank: avgRank,
		GroupSizes:        sizes,
		SplitClusters:     splitClusters,
	}
}

// bestSatisfiedRank returns the best 0-based rank among the person's
// satisfied likes, or -1 when none were satisfied.
func bestSatisfiedRank(p *Partition, personID string, idx int, pref *Preference) int {
	best := -1
	if rank := pref.GroupRank(p.groups[idx].id); rank >= 0 {
		best = rank
	}
	for _, member := range p.MembersAt(idx) {
		if member == personID {
			continue
		}
		if rank := pref.PersonRank(member); rank >= 0 && (best < 0 || rank < best) {
			best = rank
		}
	}
	return best
}
