package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/kgsync/pkg/constants"
)

// Config holds logger configuration options
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error or off
	Level string

	// Format is json, console or auto (console on a terminal)
	Format string

	// Output is stderr, stdout, discard or a file path
	Output string

	// TimeFormat for console timestamps (kitchen, rfc3339, unix, or a Go layout)
	TimeFormat string

	// NoColor disables color output in console mode
	NoColor bool

	// AddCaller includes file:line in log output
	AddCaller bool

	// Fields are attached to every event, e.g. a run label
	Fields map[string]any
}

// DefaultConfig returns the configuration used before the CLI loads its own.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
	}
}

// NewLoggerFromConfig creates a new logger from configuration. It also sets
// the zerolog global level so library code logging through Default obeys it.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	ctx := zerolog.New(newWriter(cfg)).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	if len(cfg.Fields) > 0 {
		ctx = ctx.Fields(cfg.Fields)
	}
	return ctx.Logger()
}

// newWriter resolves the output destination and wraps it for console output.
func newWriter(cfg *Config) io.Writer {
	output := openOutput(cfg.Output)

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
	case "auto", "":
		if f, ok := output.(*os.File); !ok || !isTerminal(f) {
			return output
		}
	default:
		return output
	}
	return zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: parseTimeFormat(cfg.TimeFormat),
		NoColor:    cfg.NoColor,
	}
}

func openOutput(dest string) io.Writer {
	switch strings.ToLower(dest) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	}

	// An unwritable path falls back to stderr.
	file, err := os.OpenFile(dest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr
	}
	return file
}

// parseLevel parses a log level string, falling back to info.
func parseLevel(level string) zerolog.Level {
	switch level = strings.ToLower(level); level {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "off", "none":
		return zerolog.Disabled
	}
	if l, err := zerolog.ParseLevel(level); err == nil {
		return l
	}
	return zerolog.InfoLevel
}

// parseTimeFormat maps a time format name to a Go layout.
func parseTimeFormat(format string) string {
	switch strings.ToLower(format) {
	case "", "kitchen":
		return time.Kitchen
	case "rfc3339":
		return time.RFC3339
	case "unix", "epoch":
		return ""
	}
	if strings.Contains(format, "2006") || strings.Contains(format, "15:04") {
		return format
	}
	return time.Kitchen
}
