// Package application provides test doubles for cmd/application.
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/kgsync"
	"github.com/agentstation/kgsync/cmd/application"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    ClientFunc: func(opts ...kgsync.Option) (kgsync.Client, error) {
//	        return kgsync.New(append(opts, kgsync.WithQuerier(store))...)
//	    },
//	}
//	cmd := create.NewCommand(mock)
type Mock struct {
	ClientFunc       func(opts ...kgsync.Option) (kgsync.Client, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	NamespaceFunc    func() string
	OutDirFunc       func() string
	BatchFormatFunc  func() string
	VersionFunc      func() string
}

var _ application.Application = (*Mock)(nil)

// Client returns a client using the mock function or a nil client.
func (m *Mock) Client(opts ...kgsync.Option) (kgsync.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(opts...)
	}
	return nil, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Namespace returns the namespace using the mock function or "".
func (m *Mock) Namespace() string {
	if m.NamespaceFunc != nil {
		return m.NamespaceFunc()
	}
	return ""
}

// OutDir returns the batch directory using the mock function or "".
func (m *Mock) OutDir() string {
	if m.OutDirFunc != nil {
		return m.OutDirFunc()
	}
	return ""
}

// BatchFormat returns the batch format using the mock function or "yaml".
func (m *Mock) BatchFormat() string {
	if m.BatchFormatFunc != nil {
		return m.BatchFormatFunc()
	}
	return "yaml"
}

// Version returns the version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }
