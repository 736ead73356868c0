// Package create implements the create command.
package create

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/kgsync/cmd/application"
	"github.com/agentstation/kgsync/internal/cmd/cmdutil"
	"github.com/agentstation/kgsync/pkg/workbook"
)

// NewCommand creates the create command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.RunFlags

	cmd := &cobra.Command{
		Use:     "create <workbook>",
		GroupID: "core",
		Short:   "Create workbook entities that do not exist yet",
		Args:    cobra.ExactArgs(1),
		Long: `Create resolves every type, property, row and relation target in the
workbook by name. Names found in the target or root namespace are linked to
the existing entity; every other name gets a fresh ID.

The resulting batch creates the new entities with their names, values,
types and relations. Linked rows are left untouched; run patch to update them.`,
		Example: `  kgsync create companies.yaml              # Write a create batch
  kgsync create companies.yaml --dry-run    # Log the batch only
  kgsync create companies.yaml -o wide      # Show namespaces and types`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdutil.Context(cmd, app)

			wb, err := workbook.Load(args[0])
			if err != nil {
				return err
			}
			opts, err := flags.Options(app)
			if err != nil {
				return err
			}
			client, err := flags.Client(app)
			if err != nil {
				return err
			}

			result, err := client.CreateOrLink(ctx, wb, opts...)
			if err != nil {
				return err
			}
			return cmdutil.Report(cmd, app, result)
		},
	}

	flags = cmdutil.AddRunFlags(cmd)

	return cmd
}
