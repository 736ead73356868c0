// Package query reads the remote knowledge-graph store.
//
// The store is only ever read here. Writes are assembled as operation
// batches elsewhere and handed to a publisher.
package query

import (
	"context"

	"github.com/agentstation/kgsync/pkg/graph"
)

// Querier looks entities up in the remote store.
type Querier interface {
	// Search returns entities in namespace whose name matches name
	// case-insensitively. Callers apply their own exact-match policy.
	Search(ctx context.Context, name string, namespace graph.ID) ([]graph.Candidate, error)

	// Entity returns a fresh snapshot of id as seen from namespace.
	// A nil entity with a nil error means the entity does not exist;
	// any error is a fetch failure.
	Entity(ctx context.Context, id, namespace graph.ID) (*graph.Entity, error)
}
