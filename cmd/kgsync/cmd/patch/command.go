// Package patch implements the patch command.
package patch

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/kgsync/cmd/application"
	"github.com/agentstation/kgsync/internal/cmd/cmdutil"
	"github.com/agentstation/kgsync/pkg/sync"
	"github.com/agentstation/kgsync/pkg/workbook"
)

// NewCommand creates the patch command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		flags    *cmdutil.RunFlags
		additive bool
	)

	cmd := &cobra.Command{
		Use:     "patch <workbook>",
		GroupID: "core",
		Short:   "Update existing entities to match the workbook",
		Args:    cobra.ExactArgs(1),
		Long: `Patch compares every workbook row with the live entity and writes a batch
holding only the differences. Blank cells are ignored.

Every row, property and relation target must already exist. Unknown names
are reported together and nothing is written.

By default relations not declared in the workbook are removed. With
--additive they are kept and only missing relations are added.`,
		Example: `  kgsync patch companies.yaml               # Converge relations exactly
  kgsync patch companies.yaml --additive    # Never remove relations
  kgsync patch companies.yaml --dry-run -o json`,
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
			opts = append(opts, sync.WithAdditive(additive))
			client, err := flags.Client(app)
			if err != nil {
				return err
			}

			result, err := client.Patch(ctx, wb, opts...)
			if err != nil {
				return err
			}
			return cmdutil.Report(cmd, app, result)
		},
	}

	flags = cmdutil.AddRunFlags(cmd)
	cmd.Flags().BoolVar(&additive, "additive", false,
		"Only add relations, never remove them")

	return cmd
}
