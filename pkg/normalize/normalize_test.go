package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/normalize"
)

func TestName(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"Acme Corp", "acme corp"},
		{"  Acme   Corp ", "ACME CORP"},
		{"Acme\tCorp\n", "acme corp"},
		{"ÉCOLE Normale", "école normale"},
	}
	for _, tt := range tests {
		t.Run(tt.a, func(t *testing.T) {
			assert.Equal(t, normalize.Name(tt.a), normalize.Name(tt.b))
		})
	}
	assert.Equal(t, "acme corp", normalize.Name("  ACME  Corp"))
	assert.NotEqual(t, normalize.Name("Acme Corp"), normalize.Name("AcmeCorp"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, normalize.SplitList(" Alice; Bob\nCarol ;; "))
	assert.Empty(t, normalize.SplitList("  "))
	assert.Equal(t, []string{"Alice", "Bob"}, normalize.Unique([]string{"Alice", "alice ", "Bob"}))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name     string
		kind     graph.Kind
		declared string
		live     string
		want     bool
	}{
		{"text trimmed", graph.KindText, "  Acme ", "Acme", true},
		{"text case sensitive", graph.KindText, "acme", "Acme", false},
		{"boolean yes vs 1", graph.KindBoolean, "Yes", "1", true},
		{"boolean no vs true", graph.KindBoolean, "no", "true", false},
		{"integer separators", graph.KindInteger, "1,200", "1200", true},
		{"integer exponent", graph.KindInteger, "1e3", "1000", true},
		{"integer max", graph.KindInteger, "9223372036854775807", "9223372036854775807", true},
		{"integer zero fraction", graph.KindInteger, "3", "3.0", true},
		{"float within epsilon", graph.KindFloat, "3.0000000001", "3.0", true},
		{"float changed", graph.KindFloat, "3.1", "3.0", false},
		{"date vs midnight timestamp", graph.KindDate, "2024-01-02", "2024-01-02T00:00:00Z", true},
		{"date us layout", graph.KindDate, "1/2/2024", "2024-01-02", true},
		{"datetime offset", graph.KindDatetime, "2024-01-02T10:00:00+02:00", "2024-01-02T08:00:00Z", true},
		{"time short form", graph.KindTime, "09:30", "09:30:00", true},
		{"time pm", graph.KindTime, "3:15 PM", "15:15:00", true},
		{"point spacing", graph.KindPoint, "40.7128, -74.0060", "40.7128,-74.006", true},
		{"point moved", graph.KindPoint, "40.7128,-74.0060", "40.7,-74.006", false},
		{"description", graph.KindDescription, "A company ", "A company", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalize.Equal(tt.kind, tt.declared, tt.live)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalInvalid(t *testing.T) {
	tests := []struct {
		kind graph.Kind
		raw  string
	}{
		{graph.KindBoolean, "maybe"},
		{graph.KindInteger, "3.5"},
		{graph.KindInteger, "1e30"},
		{graph.KindInteger, "-1e19"},
		{graph.KindInteger, "9223372036854775808"},
		{graph.KindFloat, "three"},
		{graph.KindDate, "next tuesday"},
		{graph.KindPoint, "40.7"},
		{graph.KindPoint, "91,0"},
		{graph.Kind("colour"), "red"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.raw, func(t *testing.T) {
			_, err := normalize.Canonical(tt.kind, tt.raw)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestCanonicalBlank(t *testing.T) {
	for _, kind := range graph.Kinds {
		got, err := normalize.Canonical(kind, "   ")
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestEncode(t *testing.T) {
	v, err := normalize.Encode(graph.KindBoolean, "yes")
	require.NoError(t, err)
	assert.Equal(t, graph.Value{Type: graph.DataTypeCheckbox, Value: "1"}, v)

	v, err = normalize.Encode(graph.KindDate, "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, graph.Value{Type: graph.DataTypeTime, Value: "2024-01-02T00:00:00Z"}, v)

	v, err = normalize.Encode(graph.KindInteger, "1,200")
	require.NoError(t, err)
	assert.Equal(t, graph.Value{Type: graph.DataTypeNumber, Value: "1200"}, v)

	_, err = normalize.Encode(graph.KindRelation, "Alice")
	assert.Error(t, err)
}

func TestEncodeRoundTripsThroughEqual(t *testing.T) {
	cells := map[graph.Kind]string{
		graph.KindText:     "Acme",
		graph.KindBoolean:  "no",
		graph.KindInteger:  "42",
		graph.KindFloat:    "2.5",
		graph.KindDate:     "3/4/2021",
		graph.KindDatetime: "2021-03-04 05:06:07",
		graph.KindTime:     "5:06 PM",
		graph.KindPoint:    "(1.5, 2.5)",
	}
	for kind, cell := range cells {
		v, err := normalize.Encode(kind, cell)
		require.NoError(t, err, kind)
		eq, err := normalize.Equal(kind, cell, v.Value)
		require.NoError(t, err, kind)
		assert.True(t, eq, "%s: %q vs stored %q", kind, cell, v.Value)
	}
}
