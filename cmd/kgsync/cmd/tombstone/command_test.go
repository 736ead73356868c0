package tombstone_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/kgsync/cmd/kgsync/cmd/tombstone"
	"github.com/agentstation/kgsync/internal/cmd/cmdtest"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
)

func TestTombstoneCommand(t *testing.T) {
	env := cmdtest.New(t)
	env.Seed(t, `
properties:
  - name: Motto
    kind: text
entities:
  - name: Acme
    values:
      Motto: Build it
  - name: Globex
`)
	find := func(name string) string {
		found, err := env.Store.Search(context.Background(), name, env.Target)
		require.NoError(t, err)
		require.Len(t, found, 1)
		return found[0].ID.String()
	}

	list := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(list, []byte("# stale\n\n"+find("Globex")+"\n"), 0o600))

	stdout, _, err := cmdtest.Run(t, tombstone.NewCommand(env.App),
		find("Acme"), "--from-file", list, "-n", env.Target.String(), "--dry-run")
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "tombstone", result["mode"])
	assert.EqualValues(t, 2, result["tombstoned"])
}

func TestTombstoneCommandErrors(t *testing.T) {
	env := cmdtest.New(t)

	t.Run("no ids", func(t *testing.T) {
		_, _, err := cmdtest.Run(t, tombstone.NewCommand(env.App), "-n", env.Target.String())
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("invalid ids are reported together", func(t *testing.T) {
		_, _, err := cmdtest.Run(t, tombstone.NewCommand(env.App), "x", "y", "-n", env.Target.String())
		var errs errors.ValidationErrors
		require.True(t, errors.As(err, &errs))
		assert.Len(t, errs, 2)
	})

	t.Run("missing namespace", func(t *testing.T) {
		_, _, err := cmdtest.Run(t, tombstone.NewCommand(env.App), graph.NewID().String())
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, _, err := cmdtest.Run(t, tombstone.NewCommand(env.App), graph.NewID().String(), "-n", env.Target.String())
		assert.True(t, errors.IsUnresolved(err))
	})
}
