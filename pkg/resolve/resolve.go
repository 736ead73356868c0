// Package resolve decides, for every distinct name a workbook mentions,
// whether it refers to an entity already in the remote store (LINK) or a
// new one (CREATE).
//
// Names are matched by their normalized form only. A name can match in the
// target namespace, in the root namespace, or both; a target match wins.
// Within one namespace a candidate whose types overlap the caller's type
// hints wins, and otherwise the first candidate returned is taken.
package resolve

import (
	"context"
	"sort"

	"github.com/agentstation/kgsync/internal/fanout"
	"github.com/agentstation/kgsync/pkg/constants"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/logging"
	"github.com/agentstation/kgsync/pkg/normalize"
	"github.com/agentstation/kgsync/pkg/query"
)

// Action is the outcome of resolving one name.
type Action string

const (
	// ActionCreate mints a new identifier.
	ActionCreate Action = "CREATE"
	// ActionLink reuses an identifier found in the store.
	ActionLink Action = "LINK"
)

// Request asks for one name to be resolved.
type Request struct {
	Name      string
	TypeHints []graph.ID
	// Context describes where the name was referenced, for error reports.
	Context string
}

// Entry is the resolution of one normalized name. Entries are never
// modified after Resolve returns them.
type Entry struct {
	DisplayName   string
	ID            graph.ID
	DeclaredTypes []graph.ID
	TypeIDs       []graph.ID
	Action        Action
	// Namespace is where the match was found; empty for CREATE.
	Namespace graph.ID
}

// Map is keyed by normalized name.
type Map map[string]*Entry

// Lookup returns the entry for name in any spelling.
func (m Map) Lookup(name string) (*Entry, bool) {
	e, ok := m[normalize.Name(name)]
	return e, ok
}

// Keys returns the normalized names in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Count returns how many entries carry action.
func (m Map) Count(action Action) int {
	n := 0
	for _, e := range m {
		if e.Action == action {
			n++
		}
	}
	return n
}

// Resolver resolves names against a root and a target namespace.
type Resolver struct {
	querier      query.Querier
	root         graph.ID
	existingOnly bool
	batchSize    int
	newID        graph.IDGenerator
	onResolved   func(*Entry)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithExistingOnly makes every unmatched name an error instead of a CREATE.
func WithExistingOnly(on bool) Option {
	return func(r *Resolver) {
		r.existingOnly = on
	}
}

// WithBatchSize overrides how many names are looked up concurrently.
func WithBatchSize(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithIDGenerator overrides how CREATE identifiers are minted.
func WithIDGenerator(gen graph.IDGenerator) Option {
	return func(r *Resolver) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// WithObserver registers a callback invoked once per resolved entry, in
// input order, after every lookup has finished.
func WithObserver(fn func(*Entry)) Option {
	return func(r *Resolver) {
		r.onResolved = fn
	}
}

// New creates a resolver that treats root as the universal namespace.
func New(q query.Querier, root graph.ID, opts ...Option) *Resolver {
	r := &Resolver{
		querier:   q,
		root:      root,
		batchSize: constants.ResolveBatchSize,
		newID:     graph.NewID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// lookup is the raw result of one name's searches.
type lookup struct {
	target *graph.Candidate
	root   *graph.Candidate
}

// Resolve produces one entry per distinct normalized name in reqs.
//
// Requests that normalize to the same name are merged and their type hints
// combined; the first spelling becomes the display name. A lookup failure
// aborts with a fetch error. In existing-only mode every unmatched name is
// collected into a single *errors.UnresolvedError, returned alongside the
// entries that did resolve.
func (r *Resolver) Resolve(ctx context.Context, reqs []Request, namespace graph.ID) (Map, error) {
	ctx = logging.WithStage(ctx, "resolve")
	logger := logging.Ctx(ctx)

	merged, keys := merge(reqs)
	searchTarget := namespace.Valid() && namespace != r.root

	results, err := fanout.Map(ctx, keys, r.batchSize, func(ctx context.Context, key string) (lookup, error) {
		return r.lookup(ctx, merged[key], namespace, searchTarget)
	})
	if err != nil {
		return nil, err
	}

	out := make(Map, len(keys))
	unresolved := errors.NewUnresolvedError("resolve")
	for i, key := range keys {
		req := merged[key]
		entry := r.decide(req, results[i], namespace)
		if entry == nil {
			for _, c := range req.contexts {
				unresolved.Add(req.Name, c)
			}
			continue
		}
		out[key] = entry

		logger.Debug().
			Str("name", entry.DisplayName).
			Str("action", string(entry.Action)).
			Str("id", entry.ID.String()).
			Msg("Resolved name")
		if r.onResolved != nil {
			r.onResolved(entry)
		}
	}
	if err := unresolved.Err(); err != nil {
		return out, err
	}

	logger.Info().
		Int("names", len(out)).
		Int("linked", out.Count(ActionLink)).
		Int("created", out.Count(ActionCreate)).
		Msg("Resolution complete")
	return out, nil
}

type mergedRequest struct {
	Request
	contexts []string
}

// merge folds requests by normalized name, preserving first-seen order.
func merge(reqs []Request) (map[string]*mergedRequest, []string) {
	merged := make(map[string]*mergedRequest, len(reqs))
	var keys []string
	for _, req := range reqs {
		key := normalize.Name(req.Name)
		if key == "" {
			continue
		}
		m, ok := merged[key]
		if !ok {
			m = &mergedRequest{Request: Request{Name: req.Name}}
			merged[key] = m
			keys = append(keys, key)
		}
		m.TypeHints = graph.NewSet(append(m.TypeHints, req.TypeHints...)...).List()
		if req.Context != "" {
			m.contexts = append(m.contexts, req.Context)
		}
	}
	for _, m := range merged {
		if len(m.contexts) == 0 {
			m.contexts = []string{""}
		}
	}
	return merged, keys
}

// lookup searches the root and, when requested, the target namespace in
// parallel for one name.
func (r *Resolver) lookup(ctx context.Context, req *mergedRequest, namespace graph.ID, searchTarget bool) (lookup, error) {
	spaces := []graph.ID{r.root}
	if searchTarget {
		spaces = append(spaces, namespace)
	}
	found, err := fanout.Map(ctx, spaces, len(spaces), func(ctx context.Context, ns graph.ID) (*graph.Candidate, error) {
		candidates, err := r.querier.Search(ctx, req.Name, ns)
		if err != nil {
			return nil, errors.WrapFetch("search", req.Name, ns.String(), err)
		}
		return pick(ctx, req, candidates), nil
	})
	if err != nil {
		return lookup{}, err
	}
	res := lookup{root: found[0]}
	if searchTarget {
		res.target = found[1]
	}
	return res, nil
}

// pick applies the exact-match and tiebreak policy to one namespace's
// candidates.
func pick(ctx context.Context, req *mergedRequest, candidates []graph.Candidate) *graph.Candidate {
	key := normalize.Name(req.Name)
	var matches []graph.Candidate
	for _, c := range candidates {
		if normalize.Name(c.Name) == key {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	chosen := matches[0]
	if len(req.TypeHints) > 0 {
		for _, c := range matches {
			if c.HasAnyType(req.TypeHints) {
				chosen = c
				break
			}
		}
	}
	if len(matches) > 1 {
		logging.Ctx(ctx).Debug().
			Str("name", req.Name).
			Int("candidates", len(matches)).
			Str("chosen", chosen.ID.String()).
			Msg("Ambiguous name, picked candidate")
	}
	return &chosen
}

// decide turns a lookup into an entry; nil means unresolved.
func (r *Resolver) decide(req *mergedRequest, res lookup, namespace graph.ID) *Entry {
	entry := &Entry{
		DisplayName:   req.Name,
		DeclaredTypes: req.TypeHints,
	}
	switch {
	case res.target != nil:
		entry.Action = ActionLink
		entry.ID = res.target.ID
		entry.TypeIDs = res.target.TypeIDs
		entry.Namespace = namespace
	case res.root != nil:
		entry.Action = ActionLink
		entry.ID = res.root.ID
		entry.TypeIDs = res.root.TypeIDs
		entry.Namespace = r.root
	case r.existingOnly:
		return nil
	default:
		entry.Action = ActionCreate
		entry.ID = r.newID()
		entry.TypeIDs = req.TypeHints
	}
	return entry
}
