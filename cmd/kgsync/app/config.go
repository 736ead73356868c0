package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/kgsync/pkg/constants"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Indexer API
	APIURL      string
	APIKey      string
	AuthScheme  string
	HTTPTimeout time.Duration
	MaxRetries  int

	// Graph
	RootNamespace string
	Namespace     string
	SchemaIDs     SchemaConfig

	// Batches
	OutDir      string
	BatchFormat string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// SchemaConfig overrides the system property and type identifiers.
// Empty fields keep the defaults.
type SchemaConfig struct {
	NameProperty        string
	DescriptionProperty string
	TypesProperty       string
	PropertyType        string
	TypeType            string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (KGSYNC_ prefix)
// 3. .env files
// 4. Config file (~/.kgsync.yaml or ./.kgsync.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig(os.Getenv("KGSYNC_CONFIG"))
}

func loadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("KGSYNC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "reading config file", err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		APIURL:      v.GetString("api_url"),
		APIKey:      v.GetString("api_key"),
		AuthScheme:  v.GetString("auth_scheme"),
		HTTPTimeout: v.GetDuration("http_timeout"),
		MaxRetries:  v.GetInt("max_retries"),

		RootNamespace: v.GetString("root_namespace"),
		Namespace:     v.GetString("namespace"),
		SchemaIDs: SchemaConfig{
			NameProperty:        v.GetString("schema.name_property"),
			DescriptionProperty: v.GetString("schema.description_property"),
			TypesProperty:       v.GetString("schema.types_property"),
			PropertyType:        v.GetString("schema.property_type"),
			TypeType:            v.GetString("schema.type_type"),
		},

		OutDir:      v.GetString("out_dir"),
		BatchFormat: v.GetString("batch_format"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("auth_scheme", "bearer")
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("max_retries", constants.MaxRetries)
	v.SetDefault("out_dir", constants.DefaultOutDir)
	v.SetDefault("batch_format", "yaml")
}

// Schema returns the graph schema with configured overrides applied.
func (c *Config) Schema() (graph.Schema, error) {
	schema := graph.DefaultSchema()
	overrides := []struct {
		key   string
		value string
		dst   *graph.ID
	}{
		{"schema.name_property", c.SchemaIDs.NameProperty, &schema.NameProperty},
		{"schema.description_property", c.SchemaIDs.DescriptionProperty, &schema.DescriptionProperty},
		{"schema.types_property", c.SchemaIDs.TypesProperty, &schema.TypesProperty},
		{"schema.property_type", c.SchemaIDs.PropertyType, &schema.PropertyType},
		{"schema.type_type", c.SchemaIDs.TypeType, &schema.TypeType},
	}

	var errs errors.ValidationErrors
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		id, err := graph.ParseID(o.value)
		if err != nil {
			errs = append(errs, errors.NewValidationError(o.key, o.value, "invalid ID"))
			continue
		}
		*o.dst = id
	}
	if err := errs.Err(); err != nil {
		return graph.Schema{}, err
	}
	return schema, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
