package output_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/kgsync/internal/cmd/output"
	"github.com/agentstation/kgsync/internal/cmd/table"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/resolve"
	"github.com/agentstation/kgsync/pkg/sync"
)

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml", "wide", ""} {
		_, err := output.ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := output.ParseFormat("csv")
	assert.Error(t, err)
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, output.FormatYAML, output.DetectFormat("YAML"))
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	data := table.Data{
		Headers: []string{"Name", "Action"},
		Rows:    [][]string{{"Acme", "CREATE"}},
	}
	require.NoError(t, output.NewFormatter(output.FormatTable).Format(&buf, data))
	assert.Contains(t, buf.String(), "Acme")
	assert.Contains(t, buf.String(), "CREATE")
}

func TestResult(t *testing.T) {
	id := graph.NewID()
	r := &sync.Result{
		Mode:      sync.ModeCreate,
		Namespace: graph.NewID(),
		Resolution: resolve.Map{
			"acme": {DisplayName: "Acme", ID: id, Action: resolve.ActionCreate},
		},
		Created: 1,
		Batch:   graph.NewBatch("create", graph.NewID()),
	}

	t.Run("wide table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, output.Result(&buf, r, output.FormatWide))
		assert.Contains(t, buf.String(), id.String())
		assert.Contains(t, buf.String(), "Created")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, output.Result(&buf, r, output.FormatJSON))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "create", decoded["mode"])
		assert.EqualValues(t, 1, decoded["created"])
	})
}
