package kgsync

import (
	"time"

	"github.com/agentstation/kgsync/pkg/constants"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/publish"
	"github.com/agentstation/kgsync/pkg/query"
)

// config holds the settings applied by Options
type config struct {
	query        query.Querier
	remoteURL    string
	remoteAPIKey *string
	authScheme   string
	httpTimeout  time.Duration
	maxRetries   int

	root      graph.ID
	schema    graph.Schema
	publisher publish.Publisher
	newID     graph.IDGenerator
}

func defaultConfig() *config {
	return &config{
		httpTimeout: constants.DefaultHTTPTimeout,
		maxRetries:  constants.MaxRetries,
		schema:      graph.DefaultSchema(),
		publisher:   publish.LogPublisher{},
		newID:       graph.NewID,
	}
}

// Option is a function that configures a Client
type Option func(*config) error

// WithRemote configures the indexer API endpoint. An api key can be
// provided for authentication, otherwise use nil to skip it.
func WithRemote(url string, apiKey *string) Option {
	return func(c *config) error {
		if url == "" {
			return errors.NewValidationError("url", url, "remote URL is required")
		}
		c.remoteURL = url
		c.remoteAPIKey = apiKey
		return nil
	}
}

// WithAuthScheme configures how the api key is sent: "bearer" (default),
// "none", or the name of a custom header.
func WithAuthScheme(scheme string) Option {
	return func(c *config) error {
		c.authScheme = scheme
		return nil
	}
}

// WithHTTPTimeout configures the per-request timeout of the remote querier
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d <= 0 {
			return errors.NewValidationError("http_timeout", d, "timeout must be positive")
		}
		c.httpTimeout = d
		return nil
	}
}

// WithMaxRetries configures how often a retryable remote failure is retried
func WithMaxRetries(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return errors.NewValidationError("max_retries", n, "retries must be non-negative")
		}
		c.maxRetries = n
		return nil
	}
}

// WithQuerier configures a custom querier, taking precedence over WithRemote
func WithQuerier(q query.Querier) Option {
	return func(c *config) error {
		c.query = q
		return nil
	}
}

// WithRootNamespace configures the universal namespace searched for every name
func WithRootNamespace(id graph.ID) Option {
	return func(c *config) error {
		c.root = id
		return nil
	}
}

// WithSchema overrides the system property and type identifiers
func WithSchema(s graph.Schema) Option {
	return func(c *config) error {
		c.schema = s
		return nil
	}
}

// WithPublisher configures where finished batches go
func WithPublisher(p publish.Publisher) Option {
	return func(c *config) error {
		c.publisher = p
		return nil
	}
}

// WithIDGenerator configures how new identifiers are minted
func WithIDGenerator(gen graph.IDGenerator) Option {
	return func(c *config) error {
		c.newID = gen
		return nil
	}
}
