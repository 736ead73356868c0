package sync_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/kgsync/pkg/differ"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/logging"
	"github.com/agentstation/kgsync/pkg/publish"
	"github.com/agentstation/kgsync/pkg/query"
	"github.com/agentstation/kgsync/pkg/resolve"
	"github.com/agentstation/kgsync/pkg/sync"
	"github.com/agentstation/kgsync/pkg/tombstone"
	"github.com/agentstation/kgsync/pkg/workbook"
)

const sheet = `
types:
  - name: Company
  - name: Person
properties:
  - name: Founded
    kind: date
  - name: Employees
    kind: integer
  - name: Summary
    kind: description
  - name: Founders
    kind: relation
    target_types: [Person]
entities:
  - name: Acme
    types: Company
    values:
      Founded: "1949-05-01"
      Employees: 120
      Summary: Makes everything
      Founders: Alice; Bob
`

type fixture struct {
	store  *query.Memory
	engine *sync.Engine
	root   graph.ID
	target graph.ID
}

func newFixture(t *testing.T, hooks sync.Hooks) *fixture {
	t.Helper()
	logging.DisableLoggingForTest(t)

	store := query.NewMemory(graph.DefaultSchema())
	f := &fixture{store: store, root: graph.NewID(), target: graph.NewID()}
	engine, err := sync.NewEngine(store, f.root, graph.DefaultSchema(),
		sync.WithPublisher(publish.StorePublisher{Store: store}),
		sync.WithHooks(hooks),
	)
	require.NoError(t, err)
	f.engine = engine
	return f
}

func (f *fixture) workbook(t *testing.T, doc string) *workbook.Workbook {
	t.Helper()
	wb, err := workbook.Parse([]byte("namespace: "+f.target.String()+"\n"+doc), "test.yaml")
	require.NoError(t, err)
	return wb
}

func ptr(s string) *string { return &s }

func (f *fixture) entityID(t *testing.T, name string) graph.ID {
	t.Helper()
	found, err := f.store.Search(context.Background(), name, f.target)
	require.NoError(t, err)
	require.Len(t, found, 1, "entity %q", name)
	return found[0].ID
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	store := query.NewMemory(graph.DefaultSchema())

	_, err := sync.NewEngine(store, "nope", graph.DefaultSchema())
	assert.Error(t, err)

	_, err = sync.NewEngine(store, graph.NewID(), graph.Schema{})
	assert.Error(t, err)
}

func TestCreateOrLink(t *testing.T) {
	var resolved []string
	f := newFixture(t, sync.Hooks{
		OnResolved: func(e *resolve.Entry) { resolved = append(resolved, e.DisplayName) },
	})
	ctx := context.Background()

	result, err := f.engine.CreateOrLink(ctx, f.workbook(t, sheet))
	require.NoError(t, err)

	assert.Equal(t, sync.ModeCreate, result.Mode)
	assert.Equal(t, 3, result.Created) // Acme, Alice, Bob
	assert.Equal(t, 0, result.Linked)
	assert.True(t, result.HasChanges())
	require.NotNil(t, result.Receipt)
	assert.Equal(t, "memory", result.Receipt.Location)
	assert.Contains(t, resolved, "Acme")
	assert.Contains(t, resolved, "Founders")

	acme, err := f.store.Entity(ctx, f.entityID(t, "Acme"), f.target)
	require.NoError(t, err)
	require.NotNil(t, acme)
	assert.Equal(t, "Makes everything", acme.Description)
	assert.Len(t, acme.TypeIDs, 1)

	founders := f.entityID(t, "Founders")
	assert.Len(t, acme.RelationsOfType(founders), 2)

	// Targets are created with the property's target types.
	person := f.entityID(t, "Person")
	alice, err := f.store.Entity(ctx, f.entityID(t, "Alice"), f.target)
	require.NoError(t, err)
	assert.Equal(t, []graph.ID{person}, alice.TypeIDs)

	t.Run("second run links everything", func(t *testing.T) {
		before := f.store.Len()
		again, err := f.engine.CreateOrLink(ctx, f.workbook(t, sheet))
		require.NoError(t, err)
		assert.Equal(t, 0, again.Created)
		assert.Equal(t, 3, again.Linked)
		assert.False(t, again.HasChanges())
		assert.Equal(t, before, f.store.Len())
	})
}

func TestCreateOrLinkDryRun(t *testing.T) {
	f := newFixture(t, sync.Hooks{})

	result, err := f.engine.CreateOrLink(context.Background(), f.workbook(t, sheet), sync.WithDryRun(true))
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.True(t, result.HasChanges())
	require.NotNil(t, result.Receipt)
	assert.True(t, result.Receipt.DryRun)
	assert.Equal(t, 0, f.store.Len())
	assert.Contains(t, result.Summary(), "(Dry run)")
}

func TestCreateOrLinkInvalidWorkbook(t *testing.T) {
	f := newFixture(t, sync.Hooks{})
	wb := f.workbook(t, `
properties:
  - name: Founded
    kind: colour
entities:
  - name: Acme
`)

	_, err := f.engine.CreateOrLink(context.Background(), wb)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, 0, f.store.Len())
}

func TestPatchAfterCreateIsIdempotent(t *testing.T) {
	f := newFixture(t, sync.Hooks{})
	ctx := context.Background()

	_, err := f.engine.CreateOrLink(ctx, f.workbook(t, sheet))
	require.NoError(t, err)

	result, err := f.engine.Patch(ctx, f.workbook(t, sheet))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	assert.False(t, result.HasChanges())
	assert.Equal(t, "patch: no changes", result.Summary())
}

func TestPatch(t *testing.T) {
	changed := `
types:
  - name: Company
  - name: Person
properties:
  - name: Founded
    kind: date
  - name: Employees
    kind: integer
  - name: Summary
    kind: description
  - name: Founders
    kind: relation
    target_types: [Person]
entities:
  - name: Acme
    types: Company
    values:
      Founded: "1949-05-01"
      Employees: 150
      Summary: Makes everything
      Founders: Alice
`

	t.Run("sync removes undeclared relations", func(t *testing.T) {
		var diffs []*differ.EntityDiff
		f := newFixture(t, sync.Hooks{
			OnDiffed: func(d *differ.EntityDiff) { diffs = append(diffs, d) },
		})
		ctx := context.Background()
		_, err := f.engine.CreateOrLink(ctx, f.workbook(t, sheet))
		require.NoError(t, err)

		result, err := f.engine.Patch(ctx, f.workbook(t, changed))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Updated)
		assert.Equal(t, 1, result.ValuesSet)
		assert.Equal(t, 1, result.RelationsRemoved)
		assert.Equal(t, 0, result.RelationsAdded)
		require.Len(t, diffs, 1)
		assert.Equal(t, differ.StatusUpdated, diffs[0].Status)

		acme, err := f.store.Entity(ctx, f.entityID(t, "Acme"), f.target)
		require.NoError(t, err)
		founders := acme.RelationsOfType(f.entityID(t, "Founders"))
		require.Len(t, founders, 1)
		assert.Equal(t, f.entityID(t, "Alice"), founders[0].TargetID)

		again, err := f.engine.Patch(ctx, f.workbook(t, changed))
		require.NoError(t, err)
		assert.False(t, again.HasChanges())
	})

	t.Run("additive keeps live relations", func(t *testing.T) {
		f := newFixture(t, sync.Hooks{})
		ctx := context.Background()
		_, err := f.engine.CreateOrLink(ctx, f.workbook(t, sheet))
		require.NoError(t, err)

		result, err := f.engine.Patch(ctx, f.workbook(t, changed), sync.WithAdditive(true))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Updated)
		assert.Equal(t, 0, result.RelationsRemoved)

		acme, err := f.store.Entity(ctx, f.entityID(t, "Acme"), f.target)
		require.NoError(t, err)
		assert.Len(t, acme.RelationsOfType(f.entityID(t, "Founders")), 2)
	})
}

func TestPatchReportsEveryUnresolvedName(t *testing.T) {
	f := newFixture(t, sync.Hooks{})
	ctx := context.Background()
	_, err := f.engine.CreateOrLink(ctx, f.workbook(t, sheet))
	require.NoError(t, err)
	before := f.store.Len()

	wb := f.workbook(t, `
properties:
  - name: Founders
    kind: relation
entities:
  - name: Acme
    values:
      Founders: Alice; Atlantis; El Dorado
`)
	_, err = f.engine.Patch(ctx, wb)
	require.Error(t, err)
	assert.True(t, errors.IsUnresolved(err))

	var unresolved *errors.UnresolvedError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, []string{"Atlantis", "El Dorado"}, unresolved.Names())
	assert.Equal(t, before, f.store.Len())
}

func TestPatchPicksRowByDeclaredType(t *testing.T) {
	f := newFixture(t, sync.Hooks{})
	ctx := context.Background()
	schema := graph.DefaultSchema()

	company, employees := graph.NewID(), graph.NewID()
	plain, typed := graph.NewID(), graph.NewID()
	seed := graph.NewBatch("seed", f.target)
	seed.Add(
		graph.CreateEntity(graph.EntityOp{ID: company, Name: ptr("Company")}),
		graph.CreateRelation(graph.NewID(), schema.TypesProperty, company, schema.TypeType),
		graph.CreateEntity(graph.EntityOp{ID: employees, Name: ptr("Employees")}),
		graph.CreateRelation(graph.NewID(), schema.TypesProperty, employees, schema.PropertyType),
		graph.CreateEntity(graph.EntityOp{ID: plain, Name: ptr("Mercury")}),
		graph.CreateEntity(graph.EntityOp{ID: typed, Name: ptr("Mercury")}),
		graph.CreateRelation(graph.NewID(), schema.TypesProperty, typed, company),
	)
	require.NoError(t, f.store.Apply(seed))

	result, err := f.engine.Patch(ctx, f.workbook(t, `
types:
  - name: Company
properties:
  - name: Employees
    kind: integer
entities:
  - name: Mercury
    types: Company
    values:
      Employees: 10
`))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	got, err := f.store.Entity(ctx, typed, f.target)
	require.NoError(t, err)
	v, ok := got.Value(employees)
	require.True(t, ok, "typed Mercury is patched")
	assert.Equal(t, "10", v.Value)

	got, err = f.store.Entity(ctx, plain, f.target)
	require.NoError(t, err)
	_, ok = got.Value(employees)
	assert.False(t, ok, "untyped Mercury is untouched")
}

func TestPatchRootOnlyRowIsUnresolved(t *testing.T) {
	f := newFixture(t, sync.Hooks{})
	ctx := context.Background()

	seed := graph.NewBatch("seed", f.root)
	seed.Add(graph.CreateEntity(graph.EntityOp{ID: graph.NewID(), Name: ptr("Acme")}))
	require.NoError(t, f.store.Apply(seed))
	before := f.store.Len()

	_, err := f.engine.Patch(ctx, f.workbook(t, `
entities:
  - name: Acme
`))
	require.Error(t, err)
	assert.True(t, errors.IsUnresolved(err))
	assert.False(t, errors.IsFatal(err))

	var unresolved *errors.UnresolvedError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, []string{"Acme"}, unresolved.Names())
	assert.Contains(t, unresolved.Refs[0].Context, "root namespace")
	assert.Equal(t, before, f.store.Len())
}

func TestPatchMissingEntityIsFatal(t *testing.T) {
	f := newFixture(t, sync.Hooks{})
	wb := f.workbook(t, `
entities:
  - name: Ghost
    id: `+graph.NewID().String()+`
`)

	_, err := f.engine.Patch(context.Background(), wb)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
	assert.True(t, errors.IsNotFound(err))
}

func TestTombstone(t *testing.T) {
	var entries []tombstone.Entry
	f := newFixture(t, sync.Hooks{
		OnTombstoned: func(e tombstone.Entry) { entries = append(entries, e) },
	})
	ctx := context.Background()
	_, err := f.engine.CreateOrLink(ctx, f.workbook(t, sheet))
	require.NoError(t, err)

	acmeID := f.entityID(t, "Acme")
	aliceID := f.entityID(t, "Alice")

	result, err := f.engine.Tombstone(ctx, []graph.ID{acmeID, acmeID, aliceID}, f.target)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Tombstoned)
	assert.Len(t, entries, 2)
	// Acme -> Alice is both an outgoing relation and a backlink but is deleted once.
	assert.Equal(t, 4, result.RelationsRemoved) // Acme: type, Alice, Bob; Alice: type
	assert.Positive(t, result.ValuesUnset)

	for _, id := range []graph.ID{acmeID, aliceID} {
		snap, err := f.store.Entity(ctx, id, f.target)
		require.NoError(t, err)
		require.NotNil(t, snap)
		assert.Empty(t, snap.Values)
		assert.Empty(t, snap.Relations)
		assert.Empty(t, snap.Backlinks)
		assert.Empty(t, snap.Name)
	}
}

func TestTombstoneErrors(t *testing.T) {
	f := newFixture(t, sync.Hooks{})
	ctx := context.Background()

	t.Run("unknown ids are reported together", func(t *testing.T) {
		a, b := graph.NewID(), graph.NewID()
		_, err := f.engine.Tombstone(ctx, []graph.ID{a, b}, f.target)
		require.Error(t, err)

		var unresolved *errors.UnresolvedError
		require.True(t, errors.As(err, &unresolved))
		assert.ElementsMatch(t, []string{a.String(), b.String()}, unresolved.Names())
	})

	t.Run("invalid namespace", func(t *testing.T) {
		_, err := f.engine.Tombstone(ctx, []graph.ID{graph.NewID()}, "")
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := f.engine.Tombstone(ctx, []graph.ID{"bogus"}, f.target)
		assert.True(t, errors.IsValidationError(err))
	})
}
