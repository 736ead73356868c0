// Package batch turns reconciliation results into ordered operation
// batches ready for a publisher.
package batch

import (
	"github.com/agentstation/kgsync/pkg/differ"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/resolve"
	"github.com/agentstation/kgsync/pkg/tombstone"
)

// Batch names, also used as file name prefixes.
const (
	NameCreate    = "create"
	NamePatch     = "patch"
	NameTombstone = "tombstone"
)

// Plan is the create-mode input: every type, property and entity of a
// sheet with its resolution.
type Plan struct {
	Namespace  graph.ID
	Types      []*resolve.Entry
	Properties []*resolve.Entry
	Entities   []EntityPlan
}

// EntityPlan is one row to create or link.
type EntityPlan struct {
	Entry       *resolve.Entry
	Description string
	Values      []graph.PropertyValue
	// TypeIDs are the entity's declared types, resolved.
	TypeIDs   []graph.ID
	Relations []RelationPlan
}

// RelationPlan is one relation cell with its targets resolved.
type RelationPlan struct {
	PropertyID graph.ID
	TargetIDs  []graph.ID
}

// Builder assembles batches.
type Builder struct {
	schema graph.Schema
	newID  graph.IDGenerator
}

// Option configures a Builder.
type Option func(*Builder)

// WithIDGenerator overrides how relation IDs are minted.
func WithIDGenerator(gen graph.IDGenerator) Option {
	return func(b *Builder) {
		if gen != nil {
			b.newID = gen
		}
	}
}

// NewBuilder creates a Builder using schema's system identifiers.
func NewBuilder(schema graph.Schema, opts ...Option) *Builder {
	b := &Builder{schema: schema, newID: graph.NewID}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromResolution builds the create-mode batch. Types and properties come
// first so entities can reference them. Only CREATE entries produce ops;
// linked rows already exist and are reconciled with a patch run.
func (b *Builder) FromResolution(p Plan) *graph.Batch {
	out := graph.NewBatch(NameCreate, p.Namespace)

	for _, t := range p.Types {
		if t.Action == resolve.ActionCreate {
			out.Add(b.createNamed(t.ID, t.DisplayName, b.schema.TypeType)...)
		}
	}
	for _, prop := range p.Properties {
		if prop.Action == resolve.ActionCreate {
			out.Add(b.createNamed(prop.ID, prop.DisplayName, b.schema.PropertyType)...)
		}
	}

	for _, e := range p.Entities {
		if e.Entry.Action != resolve.ActionCreate {
			continue
		}
		op := graph.EntityOp{ID: e.Entry.ID, Name: ptr(e.Entry.DisplayName), Values: e.Values}
		if e.Description != "" {
			op.Description = ptr(e.Description)
		}
		out.Add(graph.CreateEntity(op))
		for _, typeID := range graph.NewSet(e.TypeIDs...).List() {
			out.Add(graph.CreateRelation(b.newID(), b.schema.TypesProperty, e.Entry.ID, typeID))
		}
		for _, rel := range e.Relations {
			for _, target := range graph.NewSet(rel.TargetIDs...).List() {
				out.Add(graph.CreateRelation(b.newID(), rel.PropertyID, e.Entry.ID, target))
			}
		}
	}
	return out
}

// FromDiffs builds the patch batch. Each updated entity gets one
// updateEntity carrying every SET value and a changed description, then
// one createRelation per target to add and one deleteRelation per live
// relation to remove.
func (b *Builder) FromDiffs(namespace graph.ID, diffs []*differ.EntityDiff) *graph.Batch {
	out := graph.NewBatch(NamePatch, namespace)
	for _, d := range diffs {
		if d.Status != differ.StatusUpdated {
			continue
		}

		op := graph.EntityOp{ID: d.EntityID}
		for _, pd := range d.Changed() {
			op.Values = append(op.Values, graph.PropertyValue{PropertyID: pd.PropertyID, Value: pd.Value})
		}
		if d.DescriptionChanged() {
			op.Description = ptr(d.Description.Value.Value)
		}
		if len(op.Values) > 0 || op.Description != nil {
			out.Add(graph.UpdateEntity(op))
		}

		for _, rd := range d.Relations {
			for _, target := range rd.ToAdd {
				out.Add(graph.CreateRelation(b.newID(), rd.PropertyID, d.EntityID, target))
			}
			for _, relID := range rd.ToRemove {
				out.Add(graph.DeleteRelation(relID))
			}
		}
	}
	return out
}

// FromTombstone wraps a tombstone set's ops in a batch.
func (b *Builder) FromTombstone(namespace graph.ID, set *tombstone.Set) *graph.Batch {
	out := graph.NewBatch(NameTombstone, namespace)
	out.Add(set.Ops()...)
	return out
}

func (b *Builder) createNamed(id graph.ID, name string, typeID graph.ID) []graph.Op {
	return []graph.Op{
		graph.CreateEntity(graph.EntityOp{ID: id, Name: ptr(name)}),
		graph.CreateRelation(b.newID(), b.schema.TypesProperty, id, typeID),
	}
}

func ptr(s string) *string {
	return &s
}
