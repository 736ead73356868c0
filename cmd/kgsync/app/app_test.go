package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/kgsync"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/query"
)

func testApp(t *testing.T, config *Config, opts ...Option) *App {
	t.Helper()
	logger := zerolog.Nop()
	app, err := New("1.0.0", "abc123", "2024-01-01", "test",
		append([]Option{WithConfig(config), WithLogger(&logger)}, opts...)...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return app
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app := testApp(t, &Config{Format: "json", OutDir: "out"})

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.OutputFormat() != "json" {
		t.Errorf("OutputFormat() = %s, want json", app.OutputFormat())
	}
	if app.OutDir() != "out" {
		t.Errorf("OutDir() = %s, want out", app.OutDir())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
}

// TestApp_Client verifies client construction from configuration.
func TestApp_Client(t *testing.T) {
	t.Run("missing root namespace", func(t *testing.T) {
		app := testApp(t, &Config{})
		if _, err := app.Client(); err == nil {
			t.Error("expected error without root namespace")
		}
	})

	t.Run("missing querier", func(t *testing.T) {
		app := testApp(t, &Config{RootNamespace: graph.NewID().String()})
		if _, err := app.Client(); err == nil {
			t.Error("expected error without api_url")
		}
	})

	t.Run("remote", func(t *testing.T) {
		app := testApp(t, &Config{
			RootNamespace: graph.NewID().String(),
			APIURL:        "http://127.0.0.1:1/graphql",
			APIKey:        "secret",
		})
		if _, err := app.Client(); err != nil {
			t.Errorf("Client() failed: %v", err)
		}
	})

	t.Run("injected querier", func(t *testing.T) {
		store := query.NewMemory(graph.DefaultSchema())
		app := testApp(t, &Config{RootNamespace: graph.NewID().String()},
			WithClientOptions(kgsync.WithQuerier(store)))
		if _, err := app.Client(); err != nil {
			t.Errorf("Client() failed: %v", err)
		}
	})
}

// TestApp_Execute verifies the root command wiring.
func TestApp_Execute(t *testing.T) {
	app := testApp(t, &Config{})

	root := app.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "kgsync 1.0.0") {
		t.Errorf("unexpected version output %q", out.String())
	}

	for _, name := range []string{"create", "patch", "tombstone"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

// TestApp_ExecuteRejectsFormat verifies output formats are checked up front.
func TestApp_ExecuteRejectsFormat(t *testing.T) {
	app := testApp(t, &Config{})
	if err := app.Execute(context.Background(), []string{"version", "--format", "csv"}); err == nil {
		t.Error("expected error for unsupported format")
	}
}
