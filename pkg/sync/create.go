package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentstation/kgsync/pkg/batch"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/logging"
	"github.com/agentstation/kgsync/pkg/normalize"
	"github.com/agentstation/kgsync/pkg/resolve"
	"github.com/agentstation/kgsync/pkg/workbook"
)

// CreateOrLink resolves every type, property, row and relation target of
// wb and builds a batch creating whatever does not exist yet. Rows that
// link to existing entities produce no ops; patch them instead.
func (e *Engine) CreateOrLink(ctx context.Context, wb *workbook.Workbook, opts ...Option) (*Result, error) {
	ctx, cancel, o, err := e.prepare(ctx, ModeCreate, opts)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := wb.Validate(); err != nil {
		return nil, err
	}
	namespace, err := namespaceFor(o, wb)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithNamespace(ctx, namespace.String())

	resolver := resolve.New(e.querier, e.root,
		resolve.WithIDGenerator(e.newID),
		resolve.WithObserver(e.hooks.OnResolved),
	)

	// Types and properties first: entity type hints need their IDs.
	schemaMaps, err := resolveAll(ctx, resolver, namespace, typeRequests(wb, e.schema), propertyRequests(wb, e.schema))
	if err != nil {
		return nil, err
	}
	types := withExplicitTypes(wb, schemaMaps[0])
	props := withExplicitProperties(wb, schemaMaps[1])

	entityMaps, err := resolveAll(ctx, resolver, namespace, entityRequests(wb, types))
	if err != nil {
		return nil, err
	}
	entities := withExplicitEntities(wb, types, entityMaps[0])

	plan, err := buildPlan(wb, namespace, types, props, entities)
	if err != nil {
		return nil, err
	}

	builder := batch.NewBuilder(e.schema, batch.WithIDGenerator(e.newID))
	r := &Result{
		Mode:       ModeCreate,
		Namespace:  namespace,
		DryRun:     o.DryRun,
		Resolution: entities,
		Created:    entities.Count(resolve.ActionCreate),
		Linked:     entities.Count(resolve.ActionLink),
		Batch:      builder.FromResolution(plan),
	}
	if err := e.publish(ctx, o, r); err != nil {
		return nil, err
	}
	return r, nil
}

func typeRequests(wb *workbook.Workbook, schema graph.Schema) []resolve.Request {
	var reqs []resolve.Request
	for _, t := range wb.Types {
		if t.TypeID().IsZero() {
			reqs = append(reqs, resolve.Request{
				Name:      t.Name,
				TypeHints: []graph.ID{schema.TypeType},
				Context:   fmt.Sprintf("type %q", t.Name),
			})
		}
	}
	return reqs
}

func propertyRequests(wb *workbook.Workbook, schema graph.Schema) []resolve.Request {
	var reqs []resolve.Request
	for _, p := range wb.Properties {
		if p.PropertyID().IsZero() {
			reqs = append(reqs, resolve.Request{
				Name:      p.Name,
				TypeHints: []graph.ID{schema.PropertyType},
				Context:   fmt.Sprintf("property %q", p.Name),
			})
		}
	}
	return reqs
}

// entityRequests asks for every row without an explicit ID and every
// relation target that is not such a row. Rows hint their own types,
// targets the property's target types.
func entityRequests(wb *workbook.Workbook, types resolve.Map) []resolve.Request {
	explicit := make(map[string]bool)
	for i := range wb.Entities {
		if !wb.Entities[i].EntityID().IsZero() {
			explicit[normalize.Name(wb.Entities[i].Name)] = true
		}
	}

	var reqs []resolve.Request
	for i := range wb.Entities {
		ent := &wb.Entities[i]
		if ent.EntityID().IsZero() {
			reqs = append(reqs, resolve.Request{
				Name:      ent.Name,
				TypeHints: typeIDs(types, ent.TypeNames()),
				Context:   fmt.Sprintf("entity %q", ent.Name),
			})
		}
		for _, p := range wb.Properties {
			if p.Kind != graph.KindRelation {
				continue
			}
			for _, target := range ent.Targets(p.Name) {
				if explicit[normalize.Name(target)] {
					continue
				}
				reqs = append(reqs, resolve.Request{
					Name:      target,
					TypeHints: typeIDs(types, p.TargetTypes),
					Context:   fmt.Sprintf("entity %q / property %q", ent.Name, p.Name),
				})
			}
		}
	}
	return reqs
}

func typeIDs(types resolve.Map, names []string) []graph.ID {
	var ids []graph.ID
	for _, n := range names {
		if t, ok := types.Lookup(n); ok {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// withExplicitTypes adds LINK entries for types the sheet gives an ID.
func withExplicitTypes(wb *workbook.Workbook, m resolve.Map) resolve.Map {
	out := orEmpty(m)
	for _, t := range wb.Types {
		if id := t.TypeID(); !id.IsZero() {
			out[normalize.Name(t.Name)] = &resolve.Entry{DisplayName: t.Name, ID: id, TypeIDs: []graph.ID{id}, Action: resolve.ActionLink}
		}
	}
	return out
}

// withExplicitProperties adds LINK entries for properties the sheet gives an ID.
func withExplicitProperties(wb *workbook.Workbook, m resolve.Map) resolve.Map {
	out := orEmpty(m)
	for _, p := range wb.Properties {
		if id := p.PropertyID(); !id.IsZero() {
			out[normalize.Name(p.Name)] = &resolve.Entry{DisplayName: p.Name, ID: id, Action: resolve.ActionLink}
		}
	}
	return out
}

// withExplicitEntities adds LINK entries for rows the sheet gives an ID.
func withExplicitEntities(wb *workbook.Workbook, types, m resolve.Map) resolve.Map {
	out := orEmpty(m)
	for i := range wb.Entities {
		ent := &wb.Entities[i]
		if id := ent.EntityID(); !id.IsZero() {
			hints := typeIDs(types, ent.TypeNames())
			out[normalize.Name(ent.Name)] = &resolve.Entry{DisplayName: ent.Name, ID: id, DeclaredTypes: hints, TypeIDs: hints, Action: resolve.ActionLink}
		}
	}
	return out
}

func orEmpty(m resolve.Map) resolve.Map {
	if m == nil {
		return make(resolve.Map)
	}
	return m
}

// buildPlan assembles create-mode input: declared types and properties,
// each row, then every relation target that is not itself a row.
func buildPlan(wb *workbook.Workbook, namespace graph.ID, types, props, entities resolve.Map) (batch.Plan, error) {
	plan := batch.Plan{Namespace: namespace}
	for _, t := range wb.Types {
		entry, _ := types.Lookup(t.Name)
		plan.Types = append(plan.Types, entry)
	}
	for _, p := range wb.Properties {
		entry, _ := props.Lookup(p.Name)
		plan.Properties = append(plan.Properties, entry)
	}

	rows := make(map[string]bool, len(wb.Entities))
	for i := range wb.Entities {
		ent := &wb.Entities[i]
		entry, ok := entities.Lookup(ent.Name)
		if !ok {
			return plan, errors.NewNotFoundError("resolution", ent.Name)
		}
		rows[normalize.Name(ent.Name)] = true

		ep := batch.EntityPlan{Entry: entry, TypeIDs: typeIDs(types, ent.TypeNames())}
		for _, p := range wb.Properties {
			propEntry, _ := props.Lookup(p.Name)
			switch p.Kind {
			case graph.KindRelation:
				var targets []graph.ID
				for _, name := range ent.Targets(p.Name) {
					if te, ok := entities.Lookup(name); ok {
						targets = append(targets, te.ID)
					}
				}
				if len(targets) > 0 {
					ep.Relations = append(ep.Relations, batch.RelationPlan{PropertyID: propEntry.ID, TargetIDs: targets})
				}
			case graph.KindDescription:
				ep.Description = strings.TrimSpace(ent.Cell(p.Name))
			default:
				cell := ent.Cell(p.Name)
				if normalize.IsBlank(cell) {
					continue
				}
				v, err := normalize.Encode(p.Kind, cell)
				if err != nil {
					return plan, fmt.Errorf("entity %q property %q: %w", ent.Name, p.Name, err)
				}
				ep.Values = append(ep.Values, graph.PropertyValue{PropertyID: propEntry.ID, Value: v})
			}
		}
		plan.Entities = append(plan.Entities, ep)
	}

	// Relation targets that are not rows still need to exist.
	for _, key := range entities.Keys() {
		if rows[key] {
			continue
		}
		entry := entities[key]
		plan.Entities = append(plan.Entities, batch.EntityPlan{Entry: entry, TypeIDs: entry.DeclaredTypes})
	}
	return plan, nil
}
