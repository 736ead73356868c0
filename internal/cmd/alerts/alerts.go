// Package alerts provides a structured system for status notifications.
package alerts

import (
	"fmt"

	"github.com/agentstation/utc"

	"github.com/agentstation/kgsync/pkg/errors"
)

// Alert represents a run status notification.
type Alert struct {
	Level     Level
	Message   string
	Details   []string
	Timestamp utc.Time
	Err       error
}

// New creates a new alert with the given level and message.
func New(level Level, message string) *Alert {
	return &Alert{
		Level:     level,
		Message:   message,
		Timestamp: utc.Now(),
	}
}

// NewError creates a new error alert.
func NewError(message string) *Alert {
	return New(LevelError, message)
}

// NewWarning creates a new warning alert.
func NewWarning(message string) *Alert {
	return New(LevelWarning, message)
}

// NewInfo creates a new info alert.
func NewInfo(message string) *Alert {
	return New(LevelInfo, message)
}

// NewSuccess creates a new success alert.
func NewSuccess(message string) *Alert {
	return New(LevelSuccess, message)
}

// WithError adds an underlying error to the alert.
func (a *Alert) WithError(err error) *Alert {
	a.Err = err
	return a
}

// WithDetails adds additional context details to the alert.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// String returns a string representation of the alert.
func (a *Alert) String() string {
	message := fmt.Sprintf("%s %s", a.Level.Icon(), a.Message)
	if a.Err != nil {
		message += fmt.Sprintf(": %v", a.Err)
	}
	return message
}

// FromError builds an error alert for a failed run. Aggregated errors are
// expanded into one detail line per item.
func FromError(err error) *Alert {
	var (
		unresolved *errors.UnresolvedError
		invalid    errors.ValidationErrors
	)
	switch {
	case errors.As(err, &unresolved):
		alert := NewError(fmt.Sprintf("%d unresolved reference(s)", len(unresolved.Names())))
		for _, ref := range unresolved.Refs {
			alert.WithDetails(fmt.Sprintf("%s (%s)", ref.Name, ref.Context))
		}
		return alert
	case errors.As(err, &invalid):
		alert := NewError(fmt.Sprintf("%d validation error(s)", len(invalid)))
		for _, v := range invalid {
			alert.WithDetails(v.Error())
		}
		return alert
	case errors.IsCanceled(err):
		return NewWarning("run canceled, no batch was written").WithError(err)
	case errors.IsRateLimited(err):
		return NewError("indexer rate limit exceeded").WithError(err).
			WithDetails("retry later or raise max_retries")
	case errors.IsFatal(err):
		return NewError("remote fetch failed").WithError(err)
	default:
		return NewError("run failed").WithError(err)
	}
}
