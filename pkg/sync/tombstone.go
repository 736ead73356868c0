package sync

import (
	"context"

	"github.com/agentstation/kgsync/internal/fanout"
	"github.com/agentstation/kgsync/pkg/batch"
	"github.com/agentstation/kgsync/pkg/constants"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/logging"
	"github.com/agentstation/kgsync/pkg/tombstone"
)

// Tombstone blanks every entity in ids within namespace. IDs that do not
// exist are reported together before anything is built; a fetch failure
// aborts the run.
func (e *Engine) Tombstone(ctx context.Context, ids []graph.ID, namespace graph.ID, opts ...Option) (*Result, error) {
	ctx, cancel, o, err := e.prepare(ctx, ModeTombstone, opts)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if !o.Namespace.IsZero() {
		namespace = o.Namespace
	}
	if !namespace.Valid() {
		return nil, errors.NewValidationError("namespace", namespace, "a valid target namespace is required")
	}
	ctx = logging.WithNamespace(logging.WithStage(ctx, "fetch"), namespace.String())

	targets := graph.NewSet(ids...).List()
	for _, id := range targets {
		if !id.Valid() {
			return nil, errors.NewValidationError("id", id, "invalid entity ID")
		}
	}

	snapshots, err := fanout.Map(ctx, targets, constants.TombstoneBatchSize, func(ctx context.Context, id graph.ID) (*graph.Entity, error) {
		snap, err := e.querier.Entity(ctx, id, namespace)
		if err != nil {
			return nil, errors.WrapFetch("entity", id.String(), namespace.String(), err)
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}

	missing := errors.NewUnresolvedError("tombstone")
	for i, snap := range snapshots {
		if snap == nil {
			missing.Add(targets[i].String(), "tombstone target")
		}
	}
	if err := missing.Err(); err != nil {
		return nil, err
	}

	set := tombstone.NewBuilder().Build(snapshots)
	for _, entry := range set.Entries {
		logging.Ctx(ctx).Debug().
			Str("entity_id", entry.EntityID.String()).
			Int("relations", len(entry.Relations)).
			Int("properties", len(entry.Properties)).
			Msg("Planned tombstone")
		if e.hooks.OnTombstoned != nil {
			e.hooks.OnTombstoned(entry)
		}
	}

	r := &Result{
		Mode:       ModeTombstone,
		Namespace:  namespace,
		DryRun:     o.DryRun,
		Tombstone:  set,
		Tombstoned: len(set.Entries),
		Batch:      batch.NewBuilder(e.schema).FromTombstone(namespace, set),
	}
	if err := e.publish(ctx, o, r); err != nil {
		return nil, err
	}
	return r, nil
}
