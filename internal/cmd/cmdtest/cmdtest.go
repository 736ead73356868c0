// Package cmdtest provides fixtures for command tests.
package cmdtest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/kgsync"
	"github.com/agentstation/kgsync/internal/cmd/application"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/publish"
	"github.com/agentstation/kgsync/pkg/query"
	"github.com/agentstation/kgsync/pkg/workbook"
)

// Env is an in-memory store behind a mock application.
type Env struct {
	Store  *query.Memory
	Root   graph.ID
	Target graph.ID
	OutDir string
	App    *application.Mock
}

// New creates an Env whose commands print JSON.
func New(t *testing.T) *Env {
	t.Helper()
	env := &Env{
		Store:  query.NewMemory(graph.DefaultSchema()),
		Root:   graph.NewID(),
		Target: graph.NewID(),
		OutDir: t.TempDir(),
	}
	env.App = &application.Mock{
		ClientFunc: func(opts ...kgsync.Option) (kgsync.Client, error) {
			return kgsync.New(append([]kgsync.Option{
				kgsync.WithQuerier(env.Store),
				kgsync.WithRootNamespace(env.Root),
			}, opts...)...)
		},
		OutputFormatFunc: func() string { return "json" },
		OutDirFunc:       func() string { return env.OutDir },
	}
	return env
}

// Workbook writes doc, prefixed with the target namespace, to a temp file.
func (e *Env) Workbook(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workbook.yaml")
	data := []byte("namespace: " + e.Target.String() + "\n" + doc)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// Seed creates doc directly in the store.
func (e *Env) Seed(t *testing.T, doc string) {
	t.Helper()
	client, err := kgsync.New(
		kgsync.WithQuerier(e.Store),
		kgsync.WithRootNamespace(e.Root),
		kgsync.WithPublisher(publish.StorePublisher{Store: e.Store}),
	)
	require.NoError(t, err)

	wb, err := workbook.Load(e.Workbook(t, doc))
	require.NoError(t, err)
	_, err = client.CreateOrLink(context.Background(), wb)
	require.NoError(t, err)
}

// Run executes cmd with args and returns stdout and stderr.
func Run(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
