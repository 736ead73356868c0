// Package tombstone blanks entities without the native delete operation,
// which the indexing layer ignores.
//
// An entity is tombstoned by removing every relation that touches it
// (including type relations, which clears its type badges) and unsetting
// every property it holds a value for. The entity ID stays resolvable but
// returns no name, properties, relations or backlinks.
package tombstone

import (
	"github.com/agentstation/kgsync/pkg/graph"
)

// Entry is the work for one entity.
type Entry struct {
	EntityID graph.ID
	Name     string
	// Relations lists the relation IDs first removed on this entity's
	// behalf. A relation shared with an earlier entity in the batch is
	// listed only there.
	Relations []graph.ID
	// Properties lists the distinct property IDs to unset.
	Properties []graph.ID
}

// Set is the tombstone plan for a batch of entities.
type Set struct {
	Entries []Entry
	// relations holds every distinct relation ID in first-seen order.
	relations *graph.Set
	skipped   int
}

// Builder builds tombstone sets.
type Builder struct{}

// NewBuilder creates a Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build plans the removal of every relation and value on snapshots. Nil
// snapshots are skipped; callers must validate existence beforehand.
func (b *Builder) Build(snapshots []*graph.Entity) *Set {
	s := &Set{relations: graph.NewSet()}
	for _, snap := range snapshots {
		if snap == nil {
			s.skipped++
			continue
		}
		entry := Entry{EntityID: snap.ID, Name: snap.Name}
		for _, r := range snap.Relations {
			if s.relations.Add(r.ID) {
				entry.Relations = append(entry.Relations, r.ID)
			}
		}
		for _, bl := range snap.Backlinks {
			if s.relations.Add(bl.ID) {
				entry.Relations = append(entry.Relations, bl.ID)
			}
		}
		props := graph.NewSet()
		for _, pv := range snap.Values {
			props.Add(pv.PropertyID)
		}
		entry.Properties = props.List()
		s.Entries = append(s.Entries, entry)
	}
	return s
}

// Relations returns every distinct relation ID to remove.
func (s *Set) Relations() []graph.ID {
	return s.relations.List()
}

// Skipped returns how many nil snapshots were ignored.
func (s *Set) Skipped() int {
	return s.skipped
}

// IsEmpty reports whether there is nothing to remove or unset.
func (s *Set) IsEmpty() bool {
	if s.relations.Len() > 0 {
		return false
	}
	for _, e := range s.Entries {
		if len(e.Properties) > 0 {
			return false
		}
	}
	return true
}

// Ops returns one deleteRelation per distinct relation followed by one
// unsetValues per entity holding values.
func (s *Set) Ops() []graph.Op {
	ops := make([]graph.Op, 0, s.relations.Len()+len(s.Entries))
	for _, id := range s.relations.List() {
		ops = append(ops, graph.DeleteRelation(id))
	}
	for _, e := range s.Entries {
		if len(e.Properties) == 0 {
			continue
		}
		ops = append(ops, graph.UnsetValues(e.EntityID, e.Properties))
	}
	return ops
}
