// Package logging provides structured logging for kgsync using zerolog.
//
// Pipelines never take a logger parameter. They pull one from the context,
// which the CLI seeds with run-scoped fields:
//
//	ctx = logging.WithMode(ctx, "patch")
//	ctx = logging.WithNamespace(ctx, ns.String())
//	logging.Ctx(ctx).Info().Int("entities", n).Msg("Diffing entities")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger backs every context without a logger of its own.
var defaultLogger = NewLoggerFromConfig(&Config{
	Level:   os.Getenv("LOG_LEVEL"),
	Format:  os.Getenv("LOG_FORMAT"),
	Output:  "stderr",
	NoColor: os.Getenv("NO_COLOR") != "",
})

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the default logger and zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Info starts an info event on the default logger.
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

// Warn starts a warning event on the default logger.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
