// Package constants provides shared constants used throughout the kgsync codebase.
// This includes timeouts, concurrency caps, comparison tolerances and file
// permissions that must stay consistent across the pipelines.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for a single request to the indexer API
	DefaultHTTPTimeout = 30 * time.Second

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 500 * time.Millisecond

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 10 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Concurrency limits. Each limit is the size of one fan-out batch: every
// request in a batch is issued at once and the next batch waits for all of them.
const (
	// ResolveBatchSize caps concurrent name lookups in the identity resolver
	ResolveBatchSize = 20

	// DiffBatchSize caps concurrent entity snapshot fetches in the diff engine
	DiffBatchSize = 10

	// TombstoneBatchSize caps concurrent snapshot fetches in the tombstone pipeline
	TombstoneBatchSize = 10
)

// Limit constants define various limits and capacities
const (
	// MaxRetries is the maximum number of retry attempts for a failed indexer request
	MaxRetries = 3

	// SearchPageSize is the number of candidates requested per name lookup
	SearchPageSize = 50

	// IDLength is the length of a hex-encoded graph identifier
	IDLength = 32
)

// Comparison tolerances
const (
	// FloatEpsilon is the absolute tolerance used when comparing float values
	FloatEpsilon = 1e-9
)

// Path constants
const (
	// DefaultConfigName is the config file name searched in $HOME and the working directory
	DefaultConfigName = ".kgsync"

	// DefaultOutDir is where batch files are written when no --out is given
	DefaultOutDir = "./batches"
)

// Format constants
const (
	// TimeFormatFilename is the format used in generated filenames
	TimeFormatFilename = "20060102-150405"

	// DateFormat is the canonical calendar-day form
	DateFormat = "2006-01-02"

	// TimeOfDayFormat is the canonical time-of-day form
	TimeOfDayFormat = "15:04:05"
)
