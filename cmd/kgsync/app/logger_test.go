package app

import (
	"testing"
)

// TestDetermineLogLevel tests the log level precedence logic.
func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name:     "default level when no flags set",
			config:   &Config{},
			expected: "info",
		},
		{
			name:     "verbose flag sets debug",
			config:   &Config{Verbose: true},
			expected: "debug",
		},
		{
			name:     "quiet flag sets warn",
			config:   &Config{Quiet: true},
			expected: "warn",
		},
		{
			name:     "explicit log-level overrides verbose",
			config:   &Config{LogLevel: "error", Verbose: true},
			expected: "error",
		},
		{
			name:     "quiet wins over verbose",
			config:   &Config{Verbose: true, Quiet: true},
			expected: "warn",
		},
		{
			name:     "invalid level falls back to info",
			config:   &Config{LogLevel: "loud"},
			expected: "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineLogLevel(tt.config); got != tt.expected {
				t.Errorf("determineLogLevel() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// TestNewLogger verifies the logger honors the level.
func TestNewLogger(t *testing.T) {
	logger := NewLogger(&Config{Quiet: true, LogFormat: "json", LogOutput: "discard"})
	if logger.GetLevel().String() != "warn" {
		t.Errorf("level = %s, want warn", logger.GetLevel())
	}
}
