// Package application provides the application interface for kgsync commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            client, err := app.Client()
//	            if err != nil {
//	                return err
//	            }
//	            // ... run a pipeline
//	            return nil
//	        },
//	    }
//	}
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/kgsync"
)

// Application provides the application interface that commands need.
// The App struct from cmd/kgsync/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client builds a client from the loaded configuration. Extra options
	// are applied last and override configured values.
	Client(opts ...kgsync.Option) (kgsync.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Namespace returns the configured default target namespace, if any.
	Namespace() string

	// OutDir returns the configured directory for batch files.
	OutDir() string

	// BatchFormat returns the configured batch file encoding (yaml or json).
	BatchFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
