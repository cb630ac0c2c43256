package grouping

// ScoreWeights controls how the composite score trades preference
// satisfaction against size balance. Each strategy carries its own
// weights: "balanced" uses near-equal weights, "preference" weights
// preference roughly 4:1 over balance.
type ScoreWeights struct {
	// Preference scales the preference-satisfaction component.
	Preference float64

	// Balance scales the size-balance component.
	Balance float64

	// AvoidPenalty is the cost of one violated avoid relation. The
	// default equals the rank-1 reward, so one violated avoid cancels
	// one perfectly satisfied like.
	AvoidPenalty float64
}

// DefaultWeights returns the near-equal weighting used by the balanced
// strategy.
func DefaultWeights() ScoreWeights {
	return ScoreWeights{Preference: 1.0, Balance: 1.0, AvoidPenalty: 1.0}
}

// PreferenceFirstWeights returns the preference-heavy weighting used by
// the preference strategy.
func PreferenceFirstWeights() ScoreWeights {
	return ScoreWeights{Preference: 4.0, Balance: 1.0, AvoidPenalty: 1.0}
}

// Score is the scored evaluation of one partition.
type Score struct {
	Preference float64
	Balance    float64
	Composite  float64
}

// ScorePartition evaluates a partition against the normalized
// preferences.
//
// The preference component averages a per-person score: 1.0 when the
// person sits with their rank-1 liked person or in their rank-1 liked
// group, 1/(rank+1) partial credit for lower ranks, minus AvoidPenalty
// for every avoided person sharing the group and for being placed in an
// avoided group.
//
// The balance component is the negative variance of group sizes around
// capacity-aware targets; perfectly even sizes score 0.
func ScorePartition(p *Partition, prefs PreferenceTable, w ScoreWeights) Score {
	// Walk groups and members in placement order rather than ranging
	// over the preference map: float addition is order-sensitive, and
	// map iteration order would make repeated scoring of the same
	// partition drift by ulps.
	var prefTotal float64
	for idx := range p.groups {
		for _, personID := range p.groups[idx].members {
			pref, ok := prefs[personID]
			if !ok {
				continue
			}
			prefTotal += personScore(p, personID, idx, pref, w)
		}
	}

	preference := 0.0
	if p.rosterSize > 0 {
		preference = prefTotal / float64(p.rosterSize)
	}
	balance := balanceScore(p)

	return Score{
		Preference: preference,
		Balance:    balance,
		Composite:  w.Preference*preference + w.Balance*balance,
	}
}

// personScore computes one person's satisfaction given their current
// bucket.
func personScore(p *Partition, personID string, idx int, pref *Preference, w ScoreWeights) float64 {
	groupID := p.groups[idx].id

	// Best satisfied rank across liked groups and liked co-members.
	bestRank := -1
	if rank := pref.GroupRank(groupID); rank >= 0 {
		bestRank = rank
	}
	for _, member := range p.groups[idx].members {
		if member == personID {
			continue
		}
		if rank := pref.PersonRank(member); rank >= 0 && (bestRank < 0 || rank < bestRank) {
			bestRank = rank
		}
	}

	score := 0.0
	if bestRank >= 0 {
		score = 1.0 / float64(bestRank+1)
	}

	// Avoid violations
	if pref.AvoidedGroups[groupID] {
		score -= w.AvoidPenalty
	}
	for _, member := range p.groups[idx].members {
		if member != personID && pref.AvoidedPeople[member] {
			score -= w.AvoidPenalty
		}
	}

	return score
}

// balanceScore returns the negative variance of group sizes around
// their capacity-aware targets.
func balanceScore(p *Partition) float64 {
	if len(p.groups) == 0 {
		return 0
	}
	targets := balanceTargets(p)

	var sumSq float64
	for i := range p.groups {
		dev := float64(len(p.groups[i].members)) - targets[i]
		sumSq += dev * dev
	}
	return -sumSq / float64(len(p.groups))
}

// balanceTargets computes the size each group would hold under a
// perfectly even spread, accounting for capacities: groups too small to
// take an even share are pinned at capacity and the remainder is spread
// over the rest.
func balanceTargets(p *Partition) []float64 {
	n := len(p.groups)
	targets := make([]float64, n)
	pinned := make([]bool, n)
	remaining := float64(p.rosterSize)
	open := n

	for {
		if open == 0 {
			break
		}
		share := remaining / float64(open)
		pinnedThisRound := false
		for i := range p.groups {
			if pinned[i] {
				continue
			}
			capacity := p.groups[i].capacity
			if capacity != unbounded && float64(capacity) < share {
				targets[i] = float64(capacity)
				pinned[i] = true
				remaining -= float64(capacity)
				open--
				pinnedThisRound = true
			}
		}
		if !pinnedThisRound {
			for i := range p.groups {
				if !pinned[i] {
					targets[i] = share
				}
			}
			break
		}
	}
	return targets
}

// Less imposes the fixed total order used to break composite-score ties:
// higher composite first, then lexicographically smaller canonical
// membership. Repeated ranking of identical inputs is therefore
// reproducible.
func Less(a, b *Partition, scoreA, scoreB Score) bool {
	if scoreA.Composite != scoreB.Composite {
		return scoreA.Composite > scoreB.Composite
	}
	return a.canonicalKey() < b.canonicalKey()
}
