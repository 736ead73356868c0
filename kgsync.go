// Package kgsync reconciles a curator's workbook with a remote knowledge
// graph. A Client resolves names to entity IDs, diffs declared values
// against live entities and builds the batches that create, patch or
// tombstone them.
package kgsync

import (
	"context"
	"fmt"

	"github.com/agentstation/kgsync/internal/transport"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/query"
	ksync "github.com/agentstation/kgsync/pkg/sync"
	"github.com/agentstation/kgsync/pkg/workbook"
)

// Client runs reconciliation pipelines against one knowledge graph.
type Client interface {
	// CreateOrLink creates every workbook entity that does not exist yet
	CreateOrLink(ctx context.Context, wb *workbook.Workbook, opts ...ksync.Option) (*ksync.Result, error)

	// Patch converges existing entities to the workbook's values
	Patch(ctx context.Context, wb *workbook.Workbook, opts ...ksync.Option) (*ksync.Result, error)

	// Tombstone blanks the given entities in namespace
	Tombstone(ctx context.Context, ids []graph.ID, namespace graph.ID, opts ...ksync.Option) (*ksync.Result, error)

	// OnEntityResolved registers a callback for every resolved name
	OnEntityResolved(EntityResolvedHook)

	// OnEntityDiffed registers a callback for every diffed entity
	OnEntityDiffed(EntityDiffedHook)

	// OnEntityTombstoned registers a callback for every planned tombstone
	OnEntityTombstoned(EntityTombstonedHook)
}

// client is the internal implementation of the Client interface
type client struct {
	*hooks
	engine *ksync.Engine
}

// New creates a Client with the given options. Either WithQuerier or
// WithRemote must be given, along with WithRootNamespace.
func New(opts ...Option) (Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	q, err := cfg.querier()
	if err != nil {
		return nil, err
	}

	c := &client{hooks: newHooks()}
	engine, err := ksync.NewEngine(q, cfg.root, cfg.schema,
		ksync.WithPublisher(cfg.publisher),
		ksync.WithIDGenerator(cfg.newID),
		ksync.WithHooks(ksync.Hooks{
			OnResolved:   c.triggerResolved,
			OnDiffed:     c.triggerDiffed,
			OnTombstoned: c.triggerTombstoned,
		}),
	)
	if err != nil {
		return nil, err
	}
	c.engine = engine
	return c, nil
}

// CreateOrLink implements Client.
func (c *client) CreateOrLink(ctx context.Context, wb *workbook.Workbook, opts ...ksync.Option) (*ksync.Result, error) {
	return c.engine.CreateOrLink(ctx, wb, opts...)
}

// Patch implements Client.
func (c *client) Patch(ctx context.Context, wb *workbook.Workbook, opts ...ksync.Option) (*ksync.Result, error) {
	return c.engine.Patch(ctx, wb, opts...)
}

// Tombstone implements Client.
func (c *client) Tombstone(ctx context.Context, ids []graph.ID, namespace graph.ID, opts ...ksync.Option) (*ksync.Result, error) {
	return c.engine.Tombstone(ctx, ids, namespace, opts...)
}

// querier returns the configured querier, building the HTTP one when a
// remote endpoint was given.
func (c *config) querier() (query.Querier, error) {
	if c.query != nil {
		return c.query, nil
	}
	if c.remoteURL == "" {
		return nil, errors.NewConfigError("kgsync", "no querier configured: use WithQuerier or WithRemote", nil)
	}
	var apiKey string
	if c.remoteAPIKey != nil {
		apiKey = *c.remoteAPIKey
	}
	httpClient := transport.New(transport.ForScheme(c.authScheme), apiKey,
		transport.WithTimeout(c.httpTimeout),
		transport.WithRetries(c.maxRetries),
	)
	return query.NewHTTP(c.remoteURL, httpClient), nil
}
