package kgsync

import (
	"sync"

	"github.com/agentstation/kgsync/pkg/differ"
	"github.com/agentstation/kgsync/pkg/resolve"
	"github.com/agentstation/kgsync/pkg/tombstone"
)

// Hook function types for pipeline events
type (
	// EntityResolvedHook is called when a name resolves to a new or existing entity
	EntityResolvedHook func(entry resolve.Entry)

	// EntityDiffedHook is called when a row has been compared with its live entity
	EntityDiffedHook func(diff differ.EntityDiff)

	// EntityTombstonedHook is called when an entity is planned for blanking
	EntityTombstonedHook func(entry tombstone.Entry)
)

// hooks manages event callbacks for pipeline runs
type hooks struct {
	mu                 sync.RWMutex
	onEntityResolved   []EntityResolvedHook
	onEntityDiffed     []EntityDiffedHook
	onEntityTombstoned []EntityTombstonedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnEntityResolved registers a callback for resolved names
func (h *hooks) OnEntityResolved(fn EntityResolvedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntityResolved = append(h.onEntityResolved, fn)
}

// OnEntityDiffed registers a callback for diffed entities
func (h *hooks) OnEntityDiffed(fn EntityDiffedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntityDiffed = append(h.onEntityDiffed, fn)
}

// OnEntityTombstoned registers a callback for planned tombstones
func (h *hooks) OnEntityTombstoned(fn EntityTombstonedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntityTombstoned = append(h.onEntityTombstoned, fn)
}

// Hooks receive copies so callbacks cannot mutate pipeline state.

func (h *hooks) triggerResolved(entry *resolve.Entry) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onEntityResolved {
		fn(*entry)
	}
}

func (h *hooks) triggerDiffed(diff *differ.EntityDiff) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onEntityDiffed {
		fn(*diff)
	}
}

func (h *hooks) triggerTombstoned(entry tombstone.Entry) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onEntityTombstoned {
		fn(entry)
	}
}
