// Package app provides the application context and dependency management
// for the kgsync CLI. It centralizes configuration, logging and client
// construction so commands only depend on cmd/application.
package app

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/kgsync"
	"github.com/agentstation/kgsync/cmd/application"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
)

// App represents the kgsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Options applied before the configured ones (testing)
	clientOpts []kgsync.Option
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Namespace returns the configured default target namespace.
func (a *App) Namespace() string {
	return a.config.Namespace
}

// OutDir returns the configured batch directory.
func (a *App) OutDir() string {
	return a.config.OutDir
}

// BatchFormat returns the configured batch file encoding.
func (a *App) BatchFormat() string {
	return a.config.BatchFormat
}

// Client builds a client from the configuration. A new client is built on
// every call since commands pick their own publisher.
func (a *App) Client(opts ...kgsync.Option) (kgsync.Client, error) {
	base, err := a.clientOptions()
	if err != nil {
		return nil, err
	}
	all := make([]kgsync.Option, 0, len(a.clientOpts)+len(base)+len(opts))
	all = append(all, a.clientOpts...)
	all = append(all, base...)
	all = append(all, opts...)
	client, err := kgsync.New(all...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	return client, nil
}

// clientOptions translates the configuration into client options.
func (a *App) clientOptions() ([]kgsync.Option, error) {
	c := a.config

	root, err := graph.ParseID(c.RootNamespace)
	if err != nil {
		return nil, errors.NewConfigError("root_namespace", "a valid root namespace ID is required", err)
	}
	schema, err := c.Schema()
	if err != nil {
		return nil, err
	}

	opts := []kgsync.Option{
		kgsync.WithRootNamespace(root),
		kgsync.WithSchema(schema),
		kgsync.WithAuthScheme(c.AuthScheme),
		kgsync.WithMaxRetries(c.MaxRetries),
	}
	if c.HTTPTimeout > 0 {
		opts = append(opts, kgsync.WithHTTPTimeout(c.HTTPTimeout))
	}
	if c.APIURL != "" {
		var apiKey *string
		if c.APIKey != "" {
			apiKey = &c.APIKey
		}
		opts = append(opts, kgsync.WithRemote(c.APIURL, apiKey))
	}
	return opts, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClientOptions adds client options applied before the configured
// ones (useful for testing with an in-memory querier).
func WithClientOptions(opts ...kgsync.Option) Option {
	return func(a *App) error {
		a.clientOpts = append(a.clientOpts, opts...)
		return nil
	}
}
