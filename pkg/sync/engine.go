package sync

import (
	"context"
	"fmt"

	"github.com/agentstation/kgsync/pkg/differ"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/logging"
	"github.com/agentstation/kgsync/pkg/publish"
	"github.com/agentstation/kgsync/pkg/query"
	"github.com/agentstation/kgsync/pkg/resolve"
	"github.com/agentstation/kgsync/pkg/tombstone"
	"github.com/agentstation/kgsync/pkg/workbook"
)

// Hooks are callbacks fired while a pipeline runs. Any may be nil.
type Hooks struct {
	OnResolved   func(*resolve.Entry)
	OnDiffed     func(*differ.EntityDiff)
	OnTombstoned func(tombstone.Entry)
}

// Engine runs pipelines against one remote store.
type Engine struct {
	querier   query.Querier
	root      graph.ID
	schema    graph.Schema
	publisher publish.Publisher
	hooks     Hooks
	newID     graph.IDGenerator
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPublisher sets where finished batches go. The default only logs.
func WithPublisher(p publish.Publisher) EngineOption {
	return func(e *Engine) {
		if p != nil {
			e.publisher = p
		}
	}
}

// WithHooks sets pipeline callbacks.
func WithHooks(h Hooks) EngineOption {
	return func(e *Engine) {
		e.hooks = h
	}
}

// WithIDGenerator overrides how new entity and relation IDs are minted.
func WithIDGenerator(gen graph.IDGenerator) EngineOption {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// NewEngine creates an engine. root is the universal namespace searched
// for every name alongside the target namespace.
func NewEngine(q query.Querier, root graph.ID, schema graph.Schema, opts ...EngineOption) (*Engine, error) {
	if !root.Valid() {
		return nil, errors.NewConfigError("sync", fmt.Sprintf("invalid root namespace %q", root), nil)
	}
	if !schema.Valid() {
		return nil, errors.NewConfigError("sync", "schema identifiers must all be valid IDs", nil)
	}
	e := &Engine{
		querier:   q,
		root:      root,
		schema:    schema,
		publisher: publish.LogPublisher{},
		newID:     graph.NewID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// prepare applies options, the run timeout and logging fields.
func (e *Engine) prepare(ctx context.Context, mode Mode, opts []Option) (context.Context, context.CancelFunc, *Options, error) {
	o := Defaults().Apply(opts...)
	if err := o.Validate(); err != nil {
		return nil, nil, nil, err
	}
	cancel := context.CancelFunc(func() {})
	if o.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
	}
	ctx = logging.WithMode(ctx, string(mode))
	return ctx, cancel, o, nil
}

// namespaceFor picks the override or the workbook's namespace.
func namespaceFor(o *Options, wb *workbook.Workbook) (graph.ID, error) {
	ns := o.Namespace
	if ns.IsZero() {
		ns = wb.NamespaceID()
	}
	if !ns.Valid() {
		return "", errors.NewValidationError("namespace", wb.Namespace, "a valid target namespace is required")
	}
	return ns, nil
}

// publish hands b to the configured publisher, or logs it on dry runs.
func (e *Engine) publish(ctx context.Context, o *Options, r *Result) error {
	r.countOps()
	var p publish.Publisher = e.publisher
	if o.DryRun {
		p = publish.LogPublisher{}
	}
	receipt, err := p.Publish(ctx, r.Batch)
	if err != nil {
		return fmt.Errorf("publishing %s batch: %w", r.Batch.Name, err)
	}
	r.Receipt = receipt
	logging.Ctx(ctx).Info().Msg(r.Summary())
	return nil
}

// resolveAll runs every request group through one resolver and reports
// unresolved names from all groups as one error, alongside whatever each
// group did resolve. Fetch failures return immediately.
func resolveAll(ctx context.Context, r *resolve.Resolver, namespace graph.ID, groups ...[]resolve.Request) ([]resolve.Map, error) {
	maps := make([]resolve.Map, len(groups))
	var unresolved *errors.UnresolvedError
	for i, reqs := range groups {
		m, err := r.Resolve(ctx, reqs, namespace)
		var u *errors.UnresolvedError
		switch {
		case err == nil:
			maps[i] = m
		case errors.As(err, &u):
			maps[i] = m
			if unresolved == nil {
				unresolved = errors.NewUnresolvedError(u.Stage)
			}
			unresolved.Refs = append(unresolved.Refs, u.Refs...)
		default:
			return nil, err
		}
	}
	if err := unresolved.Err(); err != nil {
		return maps, err
	}
	return maps, nil
}
