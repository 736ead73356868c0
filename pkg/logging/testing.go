package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger records JSON log output so tests can assert on fields.
type TestLogger struct {
	*zerolog.Logger
	Buffer *bytes.Buffer
}

// NewTestLogger creates a trace-level logger writing into a buffer. The
// global level is lowered for the duration of the test.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	previous := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(previous) })

	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.TraceLevel)
	return &TestLogger{Logger: &logger, Buffer: buf}
}

// Lines returns one entry per logged event.
func (tl *TestLogger) Lines() []string {
	out := strings.TrimSpace(tl.Buffer.String())
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// AssertContains fails the test unless some event contains substr.
func (tl *TestLogger) AssertContains(t testing.TB, substr string) {
	t.Helper()
	if !strings.Contains(tl.Buffer.String(), substr) {
		t.Errorf("log output does not contain %q\n%s", substr, tl.Buffer.String())
	}
}

// DisableLoggingForTest silences the default logger until the test ends.
func DisableLoggingForTest(t testing.TB) {
	t.Helper()
	original := defaultLogger
	SetDefault(zerolog.Nop())
	t.Cleanup(func() { SetDefault(original) })
}

// CaptureLoggingForTest routes the default logger into a TestLogger until
// the test ends.
func CaptureLoggingForTest(t testing.TB) *TestLogger {
	t.Helper()
	original := defaultLogger
	tl := NewTestLogger(t)
	SetDefault(*tl.Logger)
	t.Cleanup(func() { SetDefault(original) })
	return tl
}
