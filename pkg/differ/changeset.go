// Package differ compares a sheet's declared values against the live state
// of already-known entities and reports only what must change to converge.
package differ

import (
	"fmt"
	"strings"

	"github.com/agentstation/kgsync/pkg/graph"
)

// ChangeKind marks whether a declared value differs from the live one.
type ChangeKind string

const (
	// ChangeSet means the declared value must be written.
	ChangeSet ChangeKind = "SET"
	// ChangeUnchanged means the live value already matches.
	ChangeUnchanged ChangeKind = "UNCHANGED"
)

// Status summarizes an entity diff.
type Status string

const (
	// StatusSkipped means nothing about the entity changes.
	StatusSkipped Status = "SKIPPED"
	// StatusUpdated means at least one value or relation changes.
	StatusUpdated Status = "UPDATED"
)

// PropertyDiff compares one non-blank scalar cell with the live value.
type PropertyDiff struct {
	PropertyID graph.ID    `yaml:"property_id" json:"property_id"`
	Property   string      `yaml:"property" json:"property"`
	Kind       ChangeKind  `yaml:"kind" json:"kind"`
	Previous   string      `yaml:"previous" json:"previous"`
	Next       string      `yaml:"next" json:"next"`
	Value      graph.Value `yaml:"value" json:"value"`
}

// RelationDiff compares declared relation targets with live relations of
// one property, as sets.
type RelationDiff struct {
	PropertyID graph.ID `yaml:"property_id" json:"property_id"`
	Property   string   `yaml:"property" json:"property"`
	// ToAdd holds target entity IDs with no live relation.
	ToAdd []graph.ID `yaml:"to_add,omitempty" json:"to_add,omitempty"`
	// ToRemove holds live relation IDs whose target is not declared.
	ToRemove []graph.ID `yaml:"to_remove,omitempty" json:"to_remove,omitempty"`
	// Unchanged holds target entity IDs present on both sides.
	Unchanged []graph.ID `yaml:"unchanged,omitempty" json:"unchanged,omitempty"`
}

// HasChanges reports whether anything must be added or removed.
func (r *RelationDiff) HasChanges() bool {
	return len(r.ToAdd) > 0 || len(r.ToRemove) > 0
}

// EntityDiff aggregates every comparison made for one entity.
type EntityDiff struct {
	EntityID    graph.ID       `yaml:"entity_id" json:"entity_id"`
	Name        string         `yaml:"name" json:"name"`
	Status      Status         `yaml:"status" json:"status"`
	Properties  []PropertyDiff `yaml:"properties,omitempty" json:"properties,omitempty"`
	Description *PropertyDiff  `yaml:"description,omitempty" json:"description,omitempty"`
	Relations   []RelationDiff `yaml:"relations,omitempty" json:"relations,omitempty"`
}

// Changed returns the SET property diffs.
func (e *EntityDiff) Changed() []PropertyDiff {
	var out []PropertyDiff
	for _, p := range e.Properties {
		if p.Kind == ChangeSet {
			out = append(out, p)
		}
	}
	return out
}

// DescriptionChanged reports whether the description must be written.
func (e *EntityDiff) DescriptionChanged() bool {
	return e.Description != nil && e.Description.Kind == ChangeSet
}

func (e *EntityDiff) computeStatus() {
	e.Status = StatusSkipped
	if len(e.Changed()) > 0 || e.DescriptionChanged() {
		e.Status = StatusUpdated
		return
	}
	for i := range e.Relations {
		if e.Relations[i].HasChanges() {
			e.Status = StatusUpdated
			return
		}
	}
}

// Summary counts the outcome of a set of entity diffs.
type Summary struct {
	Entities         int
	Updated          int
	Skipped          int
	ValuesSet        int
	RelationsAdded   int
	RelationsRemoved int
}

// Summarize counts diffs.
func Summarize(diffs []*EntityDiff) Summary {
	s := Summary{Entities: len(diffs)}
	for _, d := range diffs {
		if d.Status == StatusUpdated {
			s.Updated++
		} else {
			s.Skipped++
		}
		s.ValuesSet += len(d.Changed())
		if d.DescriptionChanged() {
			s.ValuesSet++
		}
		for _, r := range d.Relations {
			s.RelationsAdded += len(r.ToAdd)
			s.RelationsRemoved += len(r.ToRemove)
		}
	}
	return s
}

// String returns a human-readable summary.
func (s Summary) String() string {
	if s.Updated == 0 {
		return fmt.Sprintf("No changes detected (%d entities checked)", s.Entities)
	}
	parts := []string{fmt.Sprintf("%d updated", s.Updated), fmt.Sprintf("%d skipped", s.Skipped)}
	if s.ValuesSet > 0 {
		parts = append(parts, fmt.Sprintf("%d values set", s.ValuesSet))
	}
	if s.RelationsAdded > 0 {
		parts = append(parts, fmt.Sprintf("%d relations added", s.RelationsAdded))
	}
	if s.RelationsRemoved > 0 {
		parts = append(parts, fmt.Sprintf("%d relations removed", s.RelationsRemoved))
	}
	return "Entities: " + strings.Join(parts, ", ")
}
