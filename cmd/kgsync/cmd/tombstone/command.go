// Package tombstone implements the tombstone command.
package tombstone

import (
	"bufio"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/kgsync/cmd/application"
	"github.com/agentstation/kgsync/internal/cmd/cmdutil"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
)

// NewCommand creates the tombstone command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		flags    *cmdutil.RunFlags
		fromFile string
	)

	cmd := &cobra.Command{
		Use:     "tombstone [id...]",
		GroupID: "core",
		Short:   "Blank entities by removing all their relations and values",
		Long: `Tombstone removes every relation (outgoing and incoming) and every
property value of the given entities. The entities themselves remain as
empty shells.

IDs come from the arguments and, with --from-file, from a file holding
one ID per line. Blank lines and lines starting with # are ignored.
A target namespace is required.`,
		Example: `  kgsync tombstone -n 3f1c... 8a0e...
  kgsync tombstone -n 3f1c... --from-file stale.txt --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdutil.Context(cmd, app)

			raw := args
			if fromFile != "" {
				lines, err := readIDs(fromFile)
				if err != nil {
					return err
				}
				raw = append(raw, lines...)
			}
			if len(raw) == 0 {
				return errors.NewValidationError("ids", nil, "at least one entity ID is required")
			}
			ids, err := parseIDs(raw)
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

			// The namespace comes from the options; an empty one is rejected there.
			result, err := client.Tombstone(ctx, ids, "", opts...)
			if err != nil {
				return err
			}
			return cmdutil.Report(cmd, app, result)
		},
	}

	flags = cmdutil.AddRunFlags(cmd)
	cmd.Flags().StringVarP(&fromFile, "from-file", "f", "",
		"File with one entity ID per line")

	return cmd
}

// parseIDs validates every ID and reports all invalid ones together.
func parseIDs(raw []string) ([]graph.ID, error) {
	var (
		ids  []graph.ID
		errs errors.ValidationErrors
	)
	for _, s := range raw {
		id, err := graph.ParseID(s)
		if err != nil {
			errs = append(errs, errors.NewValidationError("id", s, "invalid entity ID"))
			continue
		}
		ids = append(ids, id)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func readIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return ids, nil
}
