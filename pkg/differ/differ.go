package differ

import (
	"context"
	"fmt"

	"github.com/agentstation/kgsync/internal/fanout"
	"github.com/agentstation/kgsync/pkg/constants"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/logging"
	"github.com/agentstation/kgsync/pkg/normalize"
)

// Property is a declared column with its resolved remote property ID.
type Property struct {
	Name string
	ID   graph.ID
	Kind graph.Kind
}

// Row is one entity's declared state. Cells are keyed by property name and
// hold raw curator text; Targets hold relation targets already resolved to
// entity IDs, keyed by property name.
type Row struct {
	EntityID graph.ID
	Name     string
	Cells    map[string]string
	Targets  map[string][]graph.ID
}

// Fetcher returns a fresh snapshot of an entity, nil if it does not exist.
type Fetcher func(ctx context.Context, id graph.ID) (*graph.Entity, error)

// Differ computes entity diffs.
type Differ interface {
	// Entity diffs one row against its snapshot.
	Entity(row Row, props []Property, snapshot *graph.Entity) (*EntityDiff, error)

	// Entities fetches every row's snapshot with bounded concurrency and
	// diffs them, returning diffs in row order. A fetch failure or a
	// missing entity aborts the whole call.
	Entities(ctx context.Context, rows []Row, props []Property, fetch Fetcher) ([]*EntityDiff, error)
}

// differ is the default implementation of Differ.
type differ struct {
	additive    bool
	concurrency int
	onDiffed    func(*EntityDiff)
}

// New creates a Differ in sync mode unless WithAdditive is given.
func New(opts ...Option) Differ {
	d := &differ{concurrency: constants.DiffBatchSize}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Entities implements Differ.
func (d *differ) Entities(ctx context.Context, rows []Row, props []Property, fetch Fetcher) ([]*EntityDiff, error) {
	ctx = logging.WithStage(ctx, "diff")

	snapshots, err := fanout.Map(ctx, rows, d.concurrency, func(ctx context.Context, row Row) (*graph.Entity, error) {
		snap, err := fetch(ctx, row.EntityID)
		if err != nil {
			return nil, errors.WrapFetch("entity", row.EntityID.String(), "", err)
		}
		if snap == nil {
			// Patching requires every entity to exist.
			return nil, errors.NewFetchError("entity", row.EntityID.String(), "", errors.NewNotFoundError("entity", row.EntityID.String()))
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}

	diffs := make([]*EntityDiff, len(rows))
	for i, row := range rows {
		diff, err := d.Entity(row, props, snapshots[i])
		if err != nil {
			return nil, err
		}
		diffs[i] = diff
		logging.Ctx(ctx).Debug().
			Str("entity_id", diff.EntityID.String()).
			Str("name", diff.Name).
			Str("status", string(diff.Status)).
			Int("values_set", len(diff.Changed())).
			Msg("Diffed entity")
		if d.onDiffed != nil {
			d.onDiffed(diff)
		}
	}
	return diffs, nil
}

// Entity implements Differ.
func (d *differ) Entity(row Row, props []Property, snapshot *graph.Entity) (*EntityDiff, error) {
	if snapshot == nil {
		return nil, errors.NewNotFoundError("entity", row.EntityID.String())
	}

	diff := &EntityDiff{EntityID: snapshot.ID, Name: row.Name}
	for _, prop := range props {
		if !prop.ID.Valid() {
			return nil, errors.NewValidationError("property", prop.Name, "property has no resolved ID")
		}

		switch prop.Kind {
		case graph.KindRelation:
			targets, ok := row.Targets[prop.Name]
			if !ok || len(targets) == 0 {
				continue
			}
			rd := d.relation(prop, targets, snapshot)
			diff.Relations = append(diff.Relations, rd)

		case graph.KindDescription:
			cell := row.Cells[prop.Name]
			if normalize.IsBlank(cell) {
				continue
			}
			pd, err := scalar(prop, cell, snapshot.Description, true)
			if err != nil {
				return nil, fmt.Errorf("entity %q: %w", row.Name, err)
			}
			diff.Description = pd

		default:
			cell := row.Cells[prop.Name]
			if normalize.IsBlank(cell) {
				continue
			}
			live, ok := snapshot.Value(prop.ID)
			pd, err := scalar(prop, cell, live.Value, ok)
			if err != nil {
				return nil, fmt.Errorf("entity %q: %w", row.Name, err)
			}
			diff.Properties = append(diff.Properties, *pd)
		}
	}
	diff.computeStatus()
	return diff, nil
}

// scalar compares one non-blank declared cell with the live value. A live
// value that cannot be parsed under the declared kind counts as different.
func scalar(prop Property, declared, live string, hasLive bool) (*PropertyDiff, error) {
	value, err := normalize.Encode(prop.Kind, declared)
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", prop.Name, err)
	}
	pd := &PropertyDiff{
		PropertyID: prop.ID,
		Property:   prop.Name,
		Kind:       ChangeSet,
		Previous:   live,
		Next:       declared,
		Value:      value,
	}
	if hasLive {
		if eq, err := normalize.Equal(prop.Kind, declared, live); err == nil && eq {
			pd.Kind = ChangeUnchanged
		}
	}
	return pd, nil
}

// relation compares declared targets with live relations whose type is the
// property's ID.
func (d *differ) relation(prop Property, targets []graph.ID, snapshot *graph.Entity) RelationDiff {
	rd := RelationDiff{PropertyID: prop.ID, Property: prop.Name}

	desired := graph.NewSet(targets...)
	live := make(map[graph.ID]bool)
	for _, r := range snapshot.RelationsOfType(prop.ID) {
		live[r.TargetID] = true
	}

	for _, target := range desired.List() {
		if live[target] {
			rd.Unchanged = append(rd.Unchanged, target)
		} else {
			rd.ToAdd = append(rd.ToAdd, target)
		}
	}

	if !d.additive {
		removed := graph.NewSet()
		for _, r := range snapshot.RelationsOfType(prop.ID) {
			if !desired.Has(r.TargetID) {
				removed.Add(r.ID)
			}
		}
		rd.ToRemove = removed.List()
	}
	return rd
}
