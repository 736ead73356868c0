package alerts

import (
	"fmt"

	"github.com/agentstation/kgsync/internal/cmd/emoji"
)

// Level represents the severity of an alert.
type Level int

// Alert levels, most severe first.
const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
	LevelSuccess
)

const ansiReset = "\033[0m"

type style struct {
	name  string
	icon  string
	color string
}

var styles = map[Level]style{
	LevelError:   {"error", emoji.Error, "\033[31m"},
	LevelWarning: {"warning", emoji.Warning, "\033[33m"},
	LevelInfo:    {"info", emoji.Info, "\033[36m"},
	LevelSuccess: {"success", emoji.Success, "\033[32m"},
}

// String returns the level name used in structured output.
func (l Level) String() string {
	if s, ok := styles[l]; ok {
		return s.name
	}
	return fmt.Sprintf("unknown(%d)", l)
}

// Icon returns the prefix shown in plain output.
func (l Level) Icon() string {
	if s, ok := styles[l]; ok {
		return s.icon
	}
	return emoji.Info
}

// colorize wraps text in the level's ANSI color.
func (l Level) colorize(text string) string {
	s, ok := styles[l]
	if !ok {
		return text
	}
	return s.color + text + ansiReset
}
