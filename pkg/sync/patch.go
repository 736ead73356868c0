package sync

import (
	"context"
	"fmt"

	"github.com/agentstation/kgsync/pkg/batch"
	"github.com/agentstation/kgsync/pkg/differ"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/logging"
	"github.com/agentstation/kgsync/pkg/resolve"
	"github.com/agentstation/kgsync/pkg/workbook"
)

// Patch diffs every row of wb against the live entity and builds a batch
// holding only the changes needed to converge.
//
// Every row, type, property and relation target must already exist, and
// rows must exist in the target namespace itself. All unresolvable names
// are reported together before any entity is fetched, and any fetch
// failure or missing entity aborts the run.
func (e *Engine) Patch(ctx context.Context, wb *workbook.Workbook, opts ...Option) (*Result, error) {
	ctx, cancel, o, err := e.prepare(ctx, ModePatch, opts)
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
		resolve.WithExistingOnly(true),
		resolve.WithObserver(e.hooks.OnResolved),
	)
	schemaMaps, err := resolveAll(ctx, resolver, namespace, typeRequests(wb, e.schema), propertyRequests(wb, e.schema))
	if err != nil && !errors.IsUnresolved(err) {
		return nil, err
	}
	unresolved := errors.NewUnresolvedError("resolve")
	collectUnresolved(unresolved, err)
	types := withExplicitTypes(wb, schemaMaps[0])
	props := withExplicitProperties(wb, schemaMaps[1])

	entityMaps, err := resolveAll(ctx, resolver, namespace, entityRequests(wb, types))
	if err != nil && !errors.IsUnresolved(err) {
		return nil, err
	}
	collectUnresolved(unresolved, err)
	entities := withExplicitEntities(wb, types, entityMaps[0])

	// A row matched only in the root namespace has no copy here to patch.
	for i := range wb.Entities {
		ent := &wb.Entities[i]
		if !ent.EntityID().IsZero() {
			continue
		}
		if entry, ok := entities.Lookup(ent.Name); ok && entry.Namespace != namespace {
			unresolved.Add(ent.Name, fmt.Sprintf("entity %q (found only in root namespace)", ent.Name))
		}
	}
	if err := unresolved.Err(); err != nil {
		return nil, err
	}

	columns := make([]differ.Property, 0, len(wb.Properties))
	for _, p := range wb.Properties {
		entry, _ := props.Lookup(p.Name)
		columns = append(columns, differ.Property{Name: p.Name, ID: entry.ID, Kind: p.Kind})
	}

	rows := make([]differ.Row, 0, len(wb.Entities))
	for i := range wb.Entities {
		ent := &wb.Entities[i]
		entry, ok := entities.Lookup(ent.Name)
		if !ok {
			return nil, errors.NewNotFoundError("resolution", ent.Name)
		}
		row := differ.Row{
			EntityID: entry.ID,
			Name:     ent.Name,
			Cells:    ent.Cells(wb.Properties),
			Targets:  make(map[string][]graph.ID),
		}
		for _, p := range wb.Properties {
			if p.Kind != graph.KindRelation {
				continue
			}
			for _, name := range ent.Targets(p.Name) {
				if te, ok := entities.Lookup(name); ok {
					row.Targets[p.Name] = append(row.Targets[p.Name], te.ID)
				}
			}
		}
		rows = append(rows, row)
	}

	d := differ.New(
		differ.WithAdditive(o.Additive),
		differ.WithObserver(e.hooks.OnDiffed),
	)
	fetch := func(ctx context.Context, id graph.ID) (*graph.Entity, error) {
		return e.querier.Entity(ctx, id, namespace)
	}
	diffs, err := d.Entities(ctx, rows, columns, fetch)
	if err != nil {
		return nil, err
	}

	summary := differ.Summarize(diffs)
	builder := batch.NewBuilder(e.schema, batch.WithIDGenerator(e.newID))
	r := &Result{
		Mode:      ModePatch,
		Namespace: namespace,
		DryRun:    o.DryRun,
		Diffs:     diffs,
		Updated:   summary.Updated,
		Skipped:   summary.Skipped,
		Batch:     builder.FromDiffs(namespace, diffs),
	}
	if err := e.publish(ctx, o, r); err != nil {
		return nil, err
	}
	return r, nil
}

// collectUnresolved appends the references held by err, if it is an
// *errors.UnresolvedError, to dst.
func collectUnresolved(dst *errors.UnresolvedError, err error) {
	var u *errors.UnresolvedError
	if errors.As(err, &u) {
		dst.Refs = append(dst.Refs, u.Refs...)
	}
}
