package differ_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/kgsync/pkg/differ"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
)

func id(n int) graph.ID {
	return graph.ID(fmt.Sprintf("%032x", n))
}

var (
	entityID  = id(1)
	nameProp  = differ.Property{Name: "Legal name", ID: id(100), Kind: graph.KindText}
	scoreProp = differ.Property{Name: "Score", ID: id(101), Kind: graph.KindFloat}
	descProp  = differ.Property{Name: "About", ID: id(102), Kind: graph.KindDescription}
	linkProp  = differ.Property{Name: "Partners", ID: id(103), Kind: graph.KindRelation}
	openProp  = differ.Property{Name: "Open", ID: id(104), Kind: graph.KindBoolean}

	targetA = id(200)
	targetB = id(201)
	targetC = id(202)
)

func snapshot() *graph.Entity {
	return &graph.Entity{
		ID:          entityID,
		Name:        "Acme",
		Description: "Makes anvils",
		Values: []graph.PropertyValue{
			{PropertyID: nameProp.ID, Value: graph.Value{Type: graph.DataTypeText, Value: "Acme"}},
			{PropertyID: scoreProp.ID, Value: graph.Value{Type: graph.DataTypeNumber, Value: "3.0"}},
			{PropertyID: openProp.ID, Value: graph.Value{Type: graph.DataTypeCheckbox, Value: "1"}},
		},
		Relations: []graph.Relation{
			{ID: id(300), TypeID: linkProp.ID, TargetID: targetA},
			{ID: id(301), TypeID: linkProp.ID, TargetID: targetB},
			{ID: id(302), TypeID: id(999), TargetID: targetC},
		},
	}
}

var allProps = []differ.Property{nameProp, scoreProp, descProp, linkProp, openProp}

func TestBlankCellNeverDiffs(t *testing.T) {
	row := differ.Row{EntityID: entityID, Name: "Acme", Cells: map[string]string{
		"Legal name": "",
		"Score":      "   ",
		"About":      "",
	}}
	diff, err := differ.New().Entity(row, allProps, snapshot())
	require.NoError(t, err)
	assert.Equal(t, differ.StatusSkipped, diff.Status)
	assert.Empty(t, diff.Properties)
	assert.Empty(t, diff.Relations)
	assert.Nil(t, diff.Description)
}

func TestUnchangedRowIsSkipped(t *testing.T) {
	row := differ.Row{EntityID: entityID, Name: "Acme",
		Cells: map[string]string{
			"Legal name": " Acme ",
			"Score":      "3.0000000001",
			"About":      "Makes anvils",
			"Open":       "yes",
		},
		Targets: map[string][]graph.ID{"Partners": {targetB, targetA}},
	}
	diff, err := differ.New().Entity(row, allProps, snapshot())
	require.NoError(t, err)
	assert.Equal(t, differ.StatusSkipped, diff.Status)
	assert.Empty(t, diff.Changed())
	require.Len(t, diff.Properties, 3)
	for _, p := range diff.Properties {
		assert.Equal(t, differ.ChangeUnchanged, p.Kind, p.Property)
	}
	require.NotNil(t, diff.Description)
	assert.Equal(t, differ.ChangeUnchanged, diff.Description.Kind)
}

func TestScalarChanges(t *testing.T) {
	row := differ.Row{EntityID: entityID, Name: "Acme", Cells: map[string]string{
		"Score": "3.1",
		"About": "Makes rockets",
		"Open":  "no",
	}}
	diff, err := differ.New().Entity(row, allProps, snapshot())
	require.NoError(t, err)
	assert.Equal(t, differ.StatusUpdated, diff.Status)

	changed := diff.Changed()
	require.Len(t, changed, 2)
	assert.Equal(t, scoreProp.ID, changed[0].PropertyID)
	assert.Equal(t, "3.0", changed[0].Previous)
	assert.Equal(t, "3.1", changed[0].Next)
	assert.Equal(t, graph.Value{Type: graph.DataTypeNumber, Value: "3.1"}, changed[0].Value)
	assert.Equal(t, graph.Value{Type: graph.DataTypeCheckbox, Value: "0"}, changed[1].Value)

	require.True(t, diff.DescriptionChanged())
	assert.Equal(t, "Makes anvils", diff.Description.Previous)
}

func TestMissingLiveValueIsSet(t *testing.T) {
	prop := differ.Property{Name: "Founded", ID: id(105), Kind: graph.KindDate}
	row := differ.Row{EntityID: entityID, Cells: map[string]string{"Founded": "1949-05-01"}}
	diff, err := differ.New().Entity(row, []differ.Property{prop}, snapshot())
	require.NoError(t, err)
	require.Len(t, diff.Properties, 1)
	assert.Equal(t, differ.ChangeSet, diff.Properties[0].Kind)
	assert.Empty(t, diff.Properties[0].Previous)
}

func TestRelationModes(t *testing.T) {
	row := differ.Row{EntityID: entityID, Targets: map[string][]graph.ID{"Partners": {targetA, targetC}}}

	t.Run("additive", func(t *testing.T) {
		diff, err := differ.New(differ.WithAdditive(true)).Entity(row, allProps, snapshot())
		require.NoError(t, err)
		require.Len(t, diff.Relations, 1)
		rd := diff.Relations[0]
		assert.Equal(t, []graph.ID{targetC}, rd.ToAdd)
		assert.Empty(t, rd.ToRemove)
		assert.Equal(t, []graph.ID{targetA}, rd.Unchanged)
		assert.Equal(t, differ.StatusUpdated, diff.Status)
	})

	t.Run("sync", func(t *testing.T) {
		diff, err := differ.New().Entity(row, allProps, snapshot())
		require.NoError(t, err)
		require.Len(t, diff.Relations, 1)
		rd := diff.Relations[0]
		assert.Equal(t, []graph.ID{targetC}, rd.ToAdd)
		assert.Equal(t, []graph.ID{id(301)}, rd.ToRemove, "removal is keyed by the live relation ID")
		assert.Equal(t, []graph.ID{targetA}, rd.Unchanged)
	})
}

func TestRelationOnlyMatchesOwnType(t *testing.T) {
	// targetC is live under another property, so it is still added here.
	row := differ.Row{EntityID: entityID, Targets: map[string][]graph.ID{"Partners": {targetA, targetB, targetC, targetC}}}
	diff, err := differ.New().Entity(row, allProps, snapshot())
	require.NoError(t, err)
	rd := diff.Relations[0]
	assert.Equal(t, []graph.ID{targetC}, rd.ToAdd)
	assert.Empty(t, rd.ToRemove)
}

func TestInvalidDeclaredValue(t *testing.T) {
	row := differ.Row{EntityID: entityID, Name: "Acme", Cells: map[string]string{"Score": "lots"}}
	_, err := differ.New().Entity(row, allProps, snapshot())
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestEntitiesFetchesAndFailsFast(t *testing.T) {
	rows := make([]differ.Row, 25)
	for i := range rows {
		rows[i] = differ.Row{EntityID: id(1000 + i), Name: fmt.Sprintf("row %d", i), Cells: map[string]string{"Score": "3"}}
	}
	var calls atomic.Int32
	fetch := func(_ context.Context, eid graph.ID) (*graph.Entity, error) {
		calls.Add(1)
		s := snapshot()
		s.ID = eid
		return s, nil
	}

	var observed []string
	d := differ.New(differ.WithObserver(func(e *differ.EntityDiff) { observed = append(observed, e.Name) }))
	diffs, err := d.Entities(context.Background(), rows, allProps, fetch)
	require.NoError(t, err)
	require.Len(t, diffs, 25)
	assert.Equal(t, int32(25), calls.Load())
	assert.Equal(t, id(1007), diffs[7].EntityID)
	assert.Equal(t, "row 0", observed[0])
	assert.Equal(t, differ.StatusSkipped, diffs[3].Status)

	t.Run("missing entity is fatal", func(t *testing.T) {
		_, err := differ.New().Entities(context.Background(), rows, allProps, func(_ context.Context, eid graph.ID) (*graph.Entity, error) {
			if eid == id(1003) {
				return nil, nil
			}
			return fetch(context.Background(), eid)
		})
		require.Error(t, err)
		assert.True(t, errors.IsFatal(err))
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("fetch failure is fatal", func(t *testing.T) {
		_, err := differ.New().Entities(context.Background(), rows, allProps, func(context.Context, graph.ID) (*graph.Entity, error) {
			return nil, errors.NewAPIError("test", 502, "bad gateway")
		})
		require.Error(t, err)
		assert.True(t, errors.IsFatal(err))
	})
}

func TestSummarize(t *testing.T) {
	row := differ.Row{EntityID: entityID, Cells: map[string]string{"Score": "4"},
		Targets: map[string][]graph.ID{"Partners": {targetC}}}
	diff, err := differ.New().Entity(row, allProps, snapshot())
	require.NoError(t, err)

	s := differ.Summarize([]*differ.EntityDiff{diff, {Status: differ.StatusSkipped}})
	assert.Equal(t, differ.Summary{Entities: 2, Updated: 1, Skipped: 1, ValuesSet: 1, RelationsAdded: 1, RelationsRemoved: 2}, s)
	assert.Contains(t, s.String(), "2 relations removed")
}
