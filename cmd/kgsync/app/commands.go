package app

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/kgsync/cmd/kgsync/cmd/create"
	"github.com/agentstation/kgsync/cmd/kgsync/cmd/patch"
	"github.com/agentstation/kgsync/cmd/kgsync/cmd/tombstone"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(create.NewCommand(a))
	rootCmd.AddCommand(patch.NewCommand(a))
	rootCmd.AddCommand(tombstone.NewCommand(a))
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("kgsync %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
				cmd.Printf("  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
