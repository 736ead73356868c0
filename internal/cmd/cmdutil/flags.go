// Package cmdutil provides shared flags and helpers for the pipeline commands.
package cmdutil

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/kgsync"
	"github.com/agentstation/kgsync/cmd/application"
	"github.com/agentstation/kgsync/internal/cmd/alerts"
	"github.com/agentstation/kgsync/internal/cmd/output"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/logging"
	"github.com/agentstation/kgsync/pkg/publish"
	"github.com/agentstation/kgsync/pkg/sync"
)

// RunFlags holds the flags shared by every pipeline command.
type RunFlags struct {
	DryRun      bool
	OutDir      string
	BatchFormat string
	Namespace   string
}

// AddRunFlags adds pipeline flags to a command.
func AddRunFlags(cmd *cobra.Command) *RunFlags {
	flags := &RunFlags{}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false,
		"Build and log the batch without writing it")
	cmd.Flags().StringVar(&flags.OutDir, "out", "",
		"Directory for batch files (default from config or ./batches)")
	cmd.Flags().StringVar(&flags.BatchFormat, "batch-format", "",
		"Batch file encoding: yaml, json")
	cmd.Flags().StringVarP(&flags.Namespace, "namespace", "n", "",
		"Target namespace ID (overrides the workbook and config)")

	return flags
}

// Options converts flags into pipeline options. The namespace falls back
// to the configured default.
func (f *RunFlags) Options(app application.Application) ([]sync.Option, error) {
	opts := []sync.Option{sync.WithDryRun(f.DryRun)}

	ns := f.Namespace
	if ns == "" {
		ns = app.Namespace()
	}
	if ns != "" {
		id, err := graph.ParseID(ns)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sync.WithNamespace(id))
	}
	return opts, nil
}

// Client builds a client that writes batches where the flags say.
func (f *RunFlags) Client(app application.Application) (kgsync.Client, error) {
	dir := f.OutDir
	if dir == "" {
		dir = app.OutDir()
	}
	format := f.BatchFormat
	if format == "" {
		format = app.BatchFormat()
	}
	switch publish.Format(format) {
	case publish.FormatYAML, publish.FormatJSON, "":
	default:
		return nil, errors.NewValidationError("batch-format", format, "must be yaml or json")
	}
	return app.Client(kgsync.WithPublisher(publish.NewFilePublisher(dir, publish.Format(format))))
}

// Context attaches the application logger to the command context.
func Context(cmd *cobra.Command, app application.Application) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, app.Logger())
}

// Report writes the result to stdout and a one-line status to stderr.
func Report(cmd *cobra.Command, app application.Application, r *sync.Result) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}
	if err := output.Result(cmd.OutOrStdout(), r, format); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}

	var alert *alerts.Alert
	switch {
	case r.DryRun:
		alert = alerts.NewWarning(r.Summary())
	case !r.HasChanges():
		alert = alerts.NewInfo(r.Summary())
	default:
		alert = alerts.NewSuccess(r.Summary())
		if r.Receipt != nil && r.Receipt.Location != "" {
			alert.WithDetails("batch written to " + r.Receipt.Location)
		}
	}
	return alerts.NewFormatWriter(cmd.ErrOrStderr(), output.FormatTable).WriteAlert(alert)
}
