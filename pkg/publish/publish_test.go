package publish_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/logging"
	"github.com/agentstation/kgsync/pkg/publish"
	"github.com/agentstation/kgsync/pkg/query"
)

const (
	space  = graph.ID("11111111111111111111111111111111")
	entity = graph.ID("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
)

func sample() *graph.Batch {
	name := "Acme"
	b := graph.NewBatch("create", space)
	b.Add(graph.CreateEntity(graph.EntityOp{ID: entity, Name: &name}))
	return b
}

func TestFilePublisherYAML(t *testing.T) {
	dir := t.TempDir()
	p := publish.NewFilePublisher(dir, publish.FormatYAML)

	receipt, err := p.Publish(context.Background(), sample())
	require.NoError(t, err)
	assert.Equal(t, 1, receipt.Ops)
	assert.True(t, strings.HasPrefix(filepath.Base(receipt.Location), "create-"))
	assert.Equal(t, ".yaml", filepath.Ext(receipt.Location))

	data, err := os.ReadFile(receipt.Location)
	require.NoError(t, err)
	var decoded struct {
		Name      string `yaml:"name"`
		Namespace string `yaml:"namespace"`
		Ops       []struct {
			Type string `yaml:"type"`
		} `yaml:"ops"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "create", decoded.Name)
	assert.Equal(t, string(space), decoded.Namespace)
	require.Len(t, decoded.Ops, 1)
	assert.Equal(t, "createEntity", decoded.Ops[0].Type)
}

func TestFilePublisherJSON(t *testing.T) {
	p := publish.NewFilePublisher(t.TempDir(), publish.FormatJSON)
	receipt, err := p.Publish(context.Background(), sample())
	require.NoError(t, err)

	data, err := os.ReadFile(receipt.Location)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "create", decoded["name"])
}

func TestFilePublisherSkipsEmptyBatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	receipt, err := publish.NewFilePublisher(dir, publish.FormatYAML).Publish(context.Background(), graph.NewBatch("patch", space))
	require.NoError(t, err)
	assert.Empty(t, receipt.Location)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestLogPublisher(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	receipt, err := publish.LogPublisher{}.Publish(ctx, sample())
	require.NoError(t, err)
	assert.True(t, receipt.DryRun)
	assert.Equal(t, map[graph.OpType]int{graph.OpCreateEntity: 1}, receipt.Counts)
	tl.AssertContains(t, "Dry run")
}

func TestStorePublisher(t *testing.T) {
	store := query.NewMemory(graph.DefaultSchema())
	_, err := publish.StorePublisher{Store: store}.Publish(context.Background(), sample())
	require.NoError(t, err)

	e, err := store.Entity(context.Background(), entity, space)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "Acme", e.Name)
}
