package grouping

import (
	"context"
	"sort"
)

// Affinity edge weights. A reciprocated like outweighs two independent
// one-directional likes, so mutual friends gravitate together first.
const (
	affinityOneWay = 1.0
	affinityMutual = 3.0
)

// balancedStrategy keeps mutual friends together while holding group
// sizes as even as capacities allow. It first places whole clusters of
// mutually-linked people (pairs, triangles, larger components), then
// grows groups greedily by adding the highest-affinity remaining person
// to the group that keeps sizes closest to equal. People with no
// remaining affinity land in the least-full group.
type balancedStrategy struct{}

func (s *balancedStrategy) Name() string { return StrategyBalanced }

func (s *balancedStrategy) Slow() bool { return false }

func (s *balancedStrategy) Generate(_ context.Context, in Inputs, cfg Config) (*StrategyResult, error) {
	p := NewPartition(in.Shells, len(in.Roster))
	affinity := buildAffinity(in)

	splitClusters := 0
	for _, cluster := range mutualClusters(in, affinity) {
		if placeClusterWhole(p, cluster) {
			continue
		}
		// Capacity cannot hold the whole cluster in one group: keep the
		// highest-weight members together and report the overflow.
		splitClusters++
		if err := placeClusterSplit(p, cluster, affinity); err != nil {
			return nil, err
		}
	}

	if err := placeRemaining(p, in, affinity); err != nil {
		return nil, err
	}

	return &StrategyResult{Partition: p, SplitClusters: splitClusters}, nil
}

// buildAffinity computes pairwise like weights over the roster. The
// graph is transient and request-scoped.
func buildAffinity(in Inputs) map[string]map[string]float64 {
	likes := func(a, b string) bool {
		return in.Preferences[a].PersonRank(b) >= 0
	}

	affinity := make(map[string]map[string]float64, len(in.Roster))
	add := func(a, b string, w float64) {
		if affinity[a] == nil {
			affinity[a] = make(map[string]float64)
		}
		affinity[a][b] = w
	}

	for i, a := range in.Roster {
		for j := i + 1; j < len(in.Roster); j++ {
			b := in.Roster[j]
			aLikesB := likes(a.ID, b.ID)
			bLikesA := likes(b.ID, a.ID)
			var w float64
			switch {
			case aLikesB && bLikesA:
				w = affinityMutual
			case aLikesB || bLikesA:
				w = affinityOneWay
			default:
				continue
			}
			add(a.ID, b.ID, w)
			add(b.ID, a.ID, w)
		}
	}
	return affinity
}

// mutualClusters returns the connected components of the reciprocated
// like graph, largest total internal weight first. Singleton components
// are omitted. Traversal follows roster order so cluster order is
// deterministic.
func mutualClusters(in Inputs, affinity map[string]map[string]float64) [][]string {
	ids := rosterIDs(in.Roster)
	posOf := make(map[string]int, len(ids))
	for i, id := range ids {
		posOf[id] = i
	}

	mutual := func(a, b string) bool {
		return affinity[a][b] == affinityMutual
	}

	visited := make(map[string]bool, len(ids))
	var clusters [][]string

	for _, id := range ids {
		if visited[id] {
			continue
		}
		// BFS over mutual edges in roster order
		component := []string{id}
		visited[id] = true
		for head := 0; head < len(component); head++ {
			current := component[head]
			for _, other := range ids {
				if !visited[other] && mutual(current, other) {
					visited[other] = true
					component = append(component, other)
				}
			}
		}
		if len(component) > 1 {
			clusters = append(clusters, component)
		}
	}

	weightOf := func(cluster []string) float64 {
		var total float64
		for i, a := range cluster {
			for _, b := range cluster[i+1:] {
				total += affinity[a][b]
			}
		}
		return total
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		wi, wj := weightOf(clusters[i]), weightOf(clusters[j])
		if wi != wj {
			return wi > wj
		}
		if len(clusters[i]) != len(clusters[j]) {
			return len(clusters[i]) > len(clusters[j])
		}
		return posOf[clusters[i][0]] < posOf[clusters[j][0]]
	})

	return clusters
}

// placeClusterWhole puts the whole cluster into the least-full group
// that can hold all members simultaneously. Returns false when no group
// has enough remaining capacity.
func placeClusterWhole(p *Partition, cluster []string) bool {
	best := -1
	for i := 0; i < p.GroupCount(); i++ {
		if p.RemainingAt(i) < len(cluster) {
			continue
		}
		if best < 0 || p.SizeAt(i) < p.SizeAt(best) {
			best = i
		}
	}
	if best < 0 {
		return false
	}
	for _, id := range cluster {
		if err := p.PlaceAt(id, best); err != nil {
			return false
		}
	}
	return true
}

// placeClusterSplit places as many connected members together as
// capacity permits. Members are ordered by internal weight so the
// highest-weight subset stays together, then packed into the groups
// with the most remaining room.
func placeClusterSplit(p *Partition, cluster []string, affinity map[string]map[string]float64) error {
	ordered := make([]string, len(cluster))
	copy(ordered, cluster)
	internalWeight := func(id string) float64 {
		var total float64
		for _, other := range cluster {
			if other != id {
				total += affinity[id][other]
			}
		}
		return total
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return internalWeight(ordered[i]) > internalWeight(ordered[j])
	})

	for len(ordered) > 0 {
		best := -1
		for i := 0; i < p.GroupCount(); i++ {
			if p.RemainingAt(i) <= 0 {
				continue
			}
			if best < 0 || p.RemainingAt(i) > p.RemainingAt(best) {
				best = i
			}
		}
		if best < 0 {
			// Unreachable after capacity validation
			return &CapacityExceededError{GroupID: p.groups[0].id, Capacity: p.groups[0].capacity}
		}
		take := p.RemainingAt(best)
		if take > len(ordered) {
			take = len(ordered)
		}
		for _, id := range ordered[:take] {
			if err := p.PlaceAt(id, best); err != nil {
				return err
			}
		}
		ordered = ordered[take:]
	}
	return nil
}

// placeRemaining greedily grows groups with whoever has the strongest
// affinity to people already placed, preferring the group that keeps
// sizes closest to equal. Once nobody has remaining affinity the rest
// fill least-full groups in roster order.
func placeRemaining(p *Partition, in Inputs, affinity map[string]map[string]float64) error {
	remaining := make([]string, 0, len(in.Roster))
	for _, person := range in.Roster {
		if p.GroupOf(person.ID) < 0 {
			remaining = append(remaining, person.ID)
		}
	}

	groupAffinity := func(id string, idx int) float64 {
		var total float64
		for _, member := range p.MembersAt(idx) {
			total += affinity[id][member]
		}
		return total
	}

	for len(remaining) > 0 {
		bestPerson, bestGroup := -1, -1
		bestAff := 0.0
		for pi, id := range remaining {
			for gi := 0; gi < p.GroupCount(); gi++ {
				if !p.HasRoomAt(gi) {
					continue
				}
				aff := groupAffinity(id, gi)
				if aff <= 0 {
					continue
				}
				better := aff > bestAff ||
					(aff == bestAff && bestGroup >= 0 && p.SizeAt(gi) < p.SizeAt(bestGroup))
				if bestPerson < 0 || better {
					bestPerson, bestGroup, bestAff = pi, gi, aff
				}
			}
		}

		if bestPerson < 0 {
			// No remaining affinity anywhere
			break
		}
		if err := p.PlaceAt(remaining[bestPerson], bestGroup); err != nil {
			return err
		}
		remaining = append(remaining[:bestPerson], remaining[bestPerson+1:]...)
	}

	for _, id := range remaining {
		idx := leastFullIndex(p)
		if idx < 0 {
			return &CapacityExceededError{GroupID: p.groups[0].id, Capacity: p.groups[0].capacity}
		}
		if err := p.PlaceAt(id, idx); err != nil {
			return err
		}
	}
	return nil
}
