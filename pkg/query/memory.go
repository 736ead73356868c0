package query

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/normalize"
)

// Memory is an in-process store that answers queries and applies batches
// the way the indexer would. It backs tests and offline runs.
type Memory struct {
	mu       sync.RWMutex
	schema   graph.Schema
	order    []graph.ID
	entities map[graph.ID]*record
	// relation ID -> source entity ID
	relations map[graph.ID]graph.ID
}

type record struct {
	id         graph.ID
	namespaces map[graph.ID]bool
	values     []graph.PropertyValue
	relations  []graph.Relation
	backlinks  []graph.Backlink
}

var _ Querier = (*Memory)(nil)

// NewMemory creates an empty store using schema's system identifiers.
func NewMemory(schema graph.Schema) *Memory {
	return &Memory{
		schema:    schema,
		entities:  make(map[graph.ID]*record),
		relations: make(map[graph.ID]graph.ID),
	}
}

// Search implements Querier.
func (m *Memory) Search(ctx context.Context, name string, namespace graph.ID) ([]graph.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := normalize.Name(name)
	var out []graph.Candidate
	for _, id := range m.order {
		rec := m.entities[id]
		if !rec.namespaces[namespace] {
			continue
		}
		e := m.snapshot(rec)
		if e.Name == "" || normalize.Name(e.Name) != key {
			continue
		}
		out = append(out, graph.Candidate{ID: e.ID, Name: e.Name, TypeIDs: e.TypeIDs})
	}
	return out, nil
}

// Entity implements Querier. An empty namespace matches any namespace.
func (m *Memory) Entity(ctx context.Context, id, namespace graph.ID) (*graph.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.entities[id]
	if !ok || (!namespace.IsZero() && !rec.namespaces[namespace]) {
		return nil, nil
	}
	return m.snapshot(rec), nil
}

// Len returns the number of entities the store knows about.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities)
}

// Apply executes every op in b against the store.
func (m *Memory) Apply(b *graph.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, op := range b.Ops {
		if err := m.apply(b.Namespace, op); err != nil {
			return errors.NewResourceError("apply", string(op.Type), strconv.Itoa(i), err)
		}
	}
	return nil
}

func (m *Memory) apply(namespace graph.ID, op graph.Op) error {
	switch op.Type {
	case graph.OpCreateEntity, graph.OpUpdateEntity:
		if op.Entity == nil {
			return errors.New("missing entity payload")
		}
		rec := m.ensure(op.Entity.ID, namespace)
		if op.Entity.Name != nil {
			rec.set(graph.PropertyValue{PropertyID: m.schema.NameProperty, Value: graph.Value{Type: graph.DataTypeText, Value: *op.Entity.Name}})
		}
		if op.Entity.Description != nil {
			rec.set(graph.PropertyValue{PropertyID: m.schema.DescriptionProperty, Value: graph.Value{Type: graph.DataTypeText, Value: *op.Entity.Description}})
		}
		for _, pv := range op.Entity.Values {
			rec.set(pv)
		}
	case graph.OpCreateRelation:
		r := op.Relation
		if r == nil {
			return errors.New("missing relation payload")
		}
		if _, exists := m.relations[r.ID]; exists {
			return errors.New("relation " + string(r.ID) + " already exists")
		}
		from := m.ensure(r.FromID, namespace)
		to := m.ensure(r.ToID, namespace)
		from.relations = append(from.relations, graph.Relation{ID: r.ID, TypeID: r.TypeID, TargetID: r.ToID})
		to.backlinks = append(to.backlinks, graph.Backlink{ID: r.ID, TypeID: r.TypeID, SourceID: r.FromID})
		m.relations[r.ID] = r.FromID
	case graph.OpDeleteRelation:
		if op.Relation == nil {
			return errors.New("missing relation payload")
		}
		m.deleteRelation(op.Relation.ID)
	case graph.OpUnsetValues:
		if op.Unset == nil {
			return errors.New("missing unset payload")
		}
		if rec, ok := m.entities[op.Unset.EntityID]; ok {
			rec.values = slices.DeleteFunc(rec.values, func(pv graph.PropertyValue) bool {
				return slices.Contains(op.Unset.PropertyIDs, pv.PropertyID)
			})
		}
	default:
		return errors.New("unsupported op " + string(op.Type))
	}
	return nil
}

// deleteRelation is a no-op for unknown IDs, matching the indexer.
func (m *Memory) deleteRelation(id graph.ID) {
	sourceID, ok := m.relations[id]
	if !ok {
		return
	}
	delete(m.relations, id)
	src := m.entities[sourceID]
	var targetID graph.ID
	src.relations = slices.DeleteFunc(src.relations, func(r graph.Relation) bool {
		if r.ID == id {
			targetID = r.TargetID
			return true
		}
		return false
	})
	if dst, ok := m.entities[targetID]; ok {
		dst.backlinks = slices.DeleteFunc(dst.backlinks, func(b graph.Backlink) bool { return b.ID == id })
	}
}

func (m *Memory) ensure(id, namespace graph.ID) *record {
	rec, ok := m.entities[id]
	if !ok {
		rec = &record{id: id, namespaces: make(map[graph.ID]bool)}
		m.entities[id] = rec
		m.order = append(m.order, id)
	}
	rec.namespaces[namespace] = true
	return rec
}

func (r *record) set(pv graph.PropertyValue) {
	for i := range r.values {
		if r.values[i].PropertyID == pv.PropertyID {
			r.values[i] = pv
			return
		}
	}
	r.values = append(r.values, pv)
}

// snapshot copies rec into a standalone entity. Name, description and type
// IDs are derived from the system properties.
func (m *Memory) snapshot(rec *record) *graph.Entity {
	e := &graph.Entity{
		ID:        rec.id,
		Values:    slices.Clone(rec.values),
		Relations: slices.Clone(rec.relations),
		Backlinks: slices.Clone(rec.backlinks),
	}
	if v, ok := e.Value(m.schema.NameProperty); ok {
		e.Name = v.Value
	}
	if v, ok := e.Value(m.schema.DescriptionProperty); ok {
		e.Description = v.Value
	}
	for _, r := range rec.relations {
		if r.TypeID == m.schema.TypesProperty {
			e.TypeIDs = append(e.TypeIDs, r.TargetID)
		}
	}
	return e
}
