// Package graph models the remote knowledge-graph store: identifiers,
// typed values, entity snapshots and the operations that mutate it.
package graph

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/agentstation/kgsync/pkg/constants"
	"github.com/agentstation/kgsync/pkg/errors"
)

// ID is a fixed-length lowercase hexadecimal identifier.
type ID string

// String returns the string representation of an ID
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether id is empty.
func (id ID) IsZero() bool {
	return id == ""
}

// Valid reports whether id is a well-formed identifier.
func (id ID) Valid() bool {
	if len(id) != constants.IDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ParseID normalizes s (trimmed, lowercased, dashes removed) and validates it.
func ParseID(s string) (ID, error) {
	id := ID(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "")))
	if !id.Valid() {
		return "", errors.NewValidationError("id", s, fmt.Sprintf("expected %d hex characters", constants.IDLength))
	}
	return id, nil
}

// MustParseID is like ParseID but panics on invalid input. Use it only for
// compile-time constants and tests.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IDGenerator mints fresh identifiers.
type IDGenerator func() ID

// NewID returns a fresh random identifier.
func NewID() ID {
	u := uuid.New()
	return ID(strings.ReplaceAll(u.String(), "-", ""))
}

// Set is an insertion-ordered set of IDs.
type Set struct {
	order []ID
	index map[ID]struct{}
}

// NewSet creates a set holding ids in order, dropping duplicates.
func NewSet(ids ...ID) *Set {
	s := &Set{index: make(map[ID]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was absent.
func (s *Set) Add(id ID) bool {
	if s.index == nil {
		s.index = make(map[ID]struct{})
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Has reports whether id is in the set.
func (s *Set) Has(id ID) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of ids in the set.
func (s *Set) Len() int {
	return len(s.order)
}

// List returns the ids in insertion order.
func (s *Set) List() []ID {
	out := make([]ID, len(s.order))
	copy(out, s.order)
	return out
}
