// Package sync runs the three reconciliation pipelines: create-or-link,
// diff-and-patch and tombstone. Each pipeline ends by handing one batch to
// a publisher.
package sync

import (
	"time"

	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
)

// Options controls a single pipeline run.
type Options struct {
	DryRun    bool          // Build the batch but only log it
	Additive  bool          // Patch mode: never remove live relations
	Timeout   time.Duration // Timeout for the whole run (0 means none)
	Namespace graph.ID      // Overrides the workbook's target namespace
}

// Option is a function that configures sync Options.
type Option func(*Options)

// Defaults returns the default sync options.
func Defaults() *Options {
	return &Options{}
}

// Apply applies the given options to the sync options.
func (s *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks if the sync options are valid.
func (s *Options) Validate() error {
	if s.Timeout < 0 {
		return errors.NewValidationError("Timeout", s.Timeout, "timeout must be non-negative")
	}
	if !s.Namespace.IsZero() && !s.Namespace.Valid() {
		return errors.NewValidationError("Namespace", s.Namespace, "namespace must be a valid ID")
	}
	return nil
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(opts *Options) {
		opts.DryRun = dryRun
	}
}

// WithAdditive configures additive relation reconciliation.
func WithAdditive(additive bool) Option {
	return func(opts *Options) {
		opts.Additive = additive
	}
}

// WithTimeout configures the run timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

// WithNamespace overrides the target namespace.
func WithNamespace(namespace graph.ID) Option {
	return func(opts *Options) {
		opts.Namespace = namespace
	}
}
