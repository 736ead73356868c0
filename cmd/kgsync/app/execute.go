package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/kgsync/internal/cmd/alerts"
	"github.com/agentstation/kgsync/internal/cmd/output"
)

// Execute runs the kgsync CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:     "kgsync",
		Short:   "Reconcile curator workbooks with a knowledge graph",
		Version: a.version,
		Long: `kgsync turns a curator's workbook into batches of graph operations.

It resolves names to existing entities, creates what is missing, patches
live entities to match the workbook and blanks retired entities. Batches
are written to disk for an external signer; kgsync never submits them.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupCommand(cmd, configFile)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.kgsync.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().Bool("no-color", a.config.NoColor, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: table, json, yaml, wide")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("kgsync {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, configFile string) error {
	if configFile != "" {
		config, err := loadConfig(configFile)
		if err != nil {
			return err
		}
		a.config = config
	}

	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	if _, err := output.ParseFormat(format); err != nil {
		return err
	}
	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)

	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// ExitOnError prints an error alert and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_ = alerts.NewFormatWriter(os.Stderr, output.FormatTable).WriteAlert(alerts.FromError(err))
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
