package grouping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andysmith26/groupwheel/pkg/core/model"
)

// unbounded marks a group bucket without a capacity limit.
const unbounded = -1

// Partition is the mutable "who is in which group" state a strategy
// builds up. It is an arena of integer-indexed group buckets so that
// placements and moves stay cheap for the iterative strategies.
// A Partition is owned exclusively by the strategy run that created it
// and must never be mutated from more than one goroutine.
type Partition struct {
	groups     []groupBucket
	indexByID  map[string]int
	groupOf    map[string]int
	rosterSize int
}

type groupBucket struct {
	id       string
	capacity int
	members  []string
}

// NewPartition creates an empty partition over the given group shells.
// rosterSize is the number of people the partition must eventually hold
// for IsComplete to become true.
func NewPartition(shells []model.GroupShell, rosterSize int) *Partition {
	p := &Partition{
		groups:     make([]groupBucket, len(shells)),
		indexByID:  make(map[string]int, len(shells)),
		groupOf:    make(map[string]int, rosterSize),
		rosterSize: rosterSize,
	}
	for i, shell := range shells {
		capacity := unbounded
		if shell.Capacity != nil {
			capacity = *shell.Capacity
		}
		p.groups[i] = groupBucket{id: shell.ID, capacity: capacity}
		p.indexByID[shell.ID] = i
	}
	return p
}

// GroupCount returns the number of group buckets.
func (p *Partition) GroupCount() int {
	return len(p.groups)
}

// GroupIDs returns the group identifiers in shell order.
func (p *Partition) GroupIDs() []string {
	ids := make([]string, len(p.groups))
	for i := range p.groups {
		ids[i] = p.groups[i].id
	}
	return ids
}

// GroupIndex returns the bucket index for a group id, or -1 if the
// group does not exist in this partition.
func (p *Partition) GroupIndex(groupID string) int {
	if idx, ok := p.indexByID[groupID]; ok {
		return idx
	}
	return -1
}

// SizeOf returns the current member count of a group.
func (p *Partition) SizeOf(groupID string) int {
	idx, ok := p.indexByID[groupID]
	if !ok {
		return 0
	}
	return len(p.groups[idx].members)
}

// SizeAt returns the current member count of the bucket at idx.
func (p *Partition) SizeAt(idx int) int {
	return len(p.groups[idx].members)
}

// CapacityAt returns the capacity of the bucket at idx, or -1 when the
// group is unbounded.
func (p *Partition) CapacityAt(idx int) int {
	return p.groups[idx].capacity
}

// HasRoomAt returns true if the bucket at idx can accept one more
// person.
func (p *Partition) HasRoomAt(idx int) bool {
	g := &p.groups[idx]
	return g.capacity == unbounded || len(g.members) < g.capacity
}

// RemainingAt returns how many more people the bucket at idx can hold.
// Unbounded groups report the full remaining roster.
func (p *Partition) RemainingAt(idx int) int {
	g := &p.groups[idx]
	if g.capacity == unbounded {
		return p.rosterSize - p.placedCount()
	}
	return g.capacity - len(g.members)
}

// MembersAt returns the member ids of the bucket at idx. The returned
// slice is the partition's own storage and must not be mutated.
func (p *Partition) MembersAt(idx int) []string {
	return p.groups[idx].members
}

// GroupOf returns the bucket index the person is currently placed in,
// or -1 if the person is unplaced.
func (p *Partition) GroupOf(personID string) int {
	if idx, ok := p.groupOf[personID]; ok {
		return idx
	}
	return -1
}

// Place puts a person into a group. It fails with CapacityExceededError
// when the group is at its bound, and with a plain error when the
// group id is unknown or the person is already placed.
func (p *Partition) Place(personID, groupID string) error {
	idx, ok := p.indexByID[groupID]
	if !ok {
		return fmt.Errorf("unknown group %q", groupID)
	}
	return p.PlaceAt(personID, idx)
}

// PlaceAt is the index-based variant of Place used in strategy inner
// loops.
func (p *Partition) PlaceAt(personID string, idx int) error {
	if _, placed := p.groupOf[personID]; placed {
		return fmt.Errorf("person %q is already placed", personID)
	}
	g := &p.groups[idx]
	if g.capacity != unbounded && len(g.members) >= g.capacity {
		return &CapacityExceededError{GroupID: g.id, Capacity: g.capacity}
	}
	g.members = append(g.members, personID)
	p.groupOf[personID] = idx
	return nil
}

// MoveBetweenGroups moves a placed person from one group to another.
// The capacity check happens before any mutation, so a failed move
// never leaves the partition in an illegal state.
func (p *Partition) MoveBetweenGroups(personID, fromGroupID, toGroupID string) error {
	fromIdx, ok := p.indexByID[fromGroupID]
	if !ok {
		return fmt.Errorf("unknown group %q", fromGroupID)
	}
	toIdx, ok := p.indexByID[toGroupID]
	if !ok {
		return fmt.Errorf("unknown group %q", toGroupID)
	}
	return p.MoveAt(personID, fromIdx, toIdx)
}

// MoveAt is the index-based variant of MoveBetweenGroups.
func (p *Partition) MoveAt(personID string, fromIdx, toIdx int) error {
	if current, placed := p.groupOf[personID]; !placed || current != fromIdx {
		return fmt.Errorf("person %q is not in group %q", personID, p.groups[fromIdx].id)
	}
	if fromIdx == toIdx {
		return nil
	}
	to := &p.groups[toIdx]
	if to.capacity != unbounded && len(to.members) >= to.capacity {
		return &CapacityExceededError{GroupID: to.id, Capacity: to.capacity}
	}
	p.remove(personID, fromIdx)
	to.members = append(to.members, personID)
	p.groupOf[personID] = toIdx
	return nil
}

// Swap exchanges the groups of two placed people. Group sizes are
// unchanged, so a swap can never violate a capacity bound.
func (p *Partition) Swap(personA, personB string) error {
	idxA, okA := p.groupOf[personA]
	idxB, okB := p.groupOf[personB]
	if !okA || !okB {
		return fmt.Errorf("both people must be placed to swap")
	}
	if idxA == idxB {
		return nil
	}
	p.remove(personA, idxA)
	p.remove(personB, idxB)
	p.groups[idxB].members = append(p.groups[idxB].members, personA)
	p.groups[idxA].members = append(p.groups[idxA].members, personB)
	p.groupOf[personA] = idxB
	p.groupOf[personB] = idxA
	return nil
}

func (p *Partition) remove(personID string, idx int) {
	members := p.groups[idx].members
	for i, id := range members {
		if id == personID {
			members[i] = members[len(members)-1]
			p.groups[idx].members = members[:len(members)-1]
			return
		}
	}
}

func (p *Partition) placedCount() int {
	return len(p.groupOf)
}

// IsComplete returns true once every roster member is placed in exactly
// one group.
func (p *Partition) IsComplete() bool {
	return len(p.groupOf) == p.rosterSize
}

// Clone returns an independent deep copy of the partition.
func (p *Partition) Clone() *Partition {
	clone := &Partition{
		groups:     make([]groupBucket, len(p.groups)),
		indexByID:  p.indexByID,
		groupOf:    make(map[string]int, len(p.groupOf)),
		rosterSize: p.rosterSize,
	}
	for i, g := range p.groups {
		members := make([]string, len(g.members))
		copy(members, g.members)
		clone.groups[i] = groupBucket{id: g.id, capacity: g.capacity, members: members}
	}
	for id, idx := range p.groupOf {
		clone.groupOf[id] = idx
	}
	return clone
}

// Assignment is the frozen, immutable form of a partition: group id to
// sorted member ids. Candidates hold assignments, never live partitions.
type Assignment map[string][]string

// Freeze converts the partition into an immutable Assignment with
// members sorted per group.
func (p *Partition) Freeze() Assignment {
	assignment := make(Assignment, len(p.groups))
	for _, g := range p.groups {
		members := make([]string, len(g.members))
		copy(members, g.members)
		sort.Strings(members)
		assignment[g.id] = members
	}
	return assignment
}

// canonicalKey produces a total order over partitions with identical
// composite scores, so repeated scoring of identical inputs ranks
// reproducibly. Groups are ordered by shell order; members are sorted.
func (p *Partition) canonicalKey() string {
	var b strings.Builder
	for _, g := range p.groups {
		members := make([]string, len(g.members))
		copy(members, g.members)
		sort.Strings(members)
		b.WriteString(g.id)
		b.WriteByte(':')
		b.WriteString(strings.Join(members, ","))
		b.WriteByte(';')
	}
	return b.String()
}
