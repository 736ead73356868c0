package create_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/kgsync/cmd/kgsync/cmd/create"
	"github.com/agentstation/kgsync/internal/cmd/cmdtest"
	"github.com/agentstation/kgsync/pkg/errors"
)

const sheet = `
types:
  - name: Company
properties:
  - name: Motto
    kind: text
entities:
  - name: Acme
    types: Company
    values:
      Motto: Build it
`

func TestCreateCommand(t *testing.T) {
	env := cmdtest.New(t)

	stdout, stderr, err := cmdtest.Run(t, create.NewCommand(env.App), env.Workbook(t, sheet))
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "create", result["mode"])
	assert.EqualValues(t, 1, result["created"])
	assert.Contains(t, stderr, "batch written to")

	files, err := os.ReadDir(env.OutDir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestCreateCommandDryRun(t *testing.T) {
	env := cmdtest.New(t)

	_, stderr, err := cmdtest.Run(t, create.NewCommand(env.App), env.Workbook(t, sheet), "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stderr, "(Dry run)")

	files, err := os.ReadDir(env.OutDir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCreateCommandErrors(t *testing.T) {
	env := cmdtest.New(t)

	_, _, err := cmdtest.Run(t, create.NewCommand(env.App))
	assert.Error(t, err)

	_, _, err = cmdtest.Run(t, create.NewCommand(env.App), env.Workbook(t, sheet), "--namespace", "nope")
	assert.True(t, errors.IsValidationError(err))

	_, _, err = cmdtest.Run(t, create.NewCommand(env.App), env.Workbook(t, sheet), "--batch-format", "xml")
	assert.True(t, errors.IsValidationError(err))
}
