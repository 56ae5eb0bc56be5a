package internal

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when the journal has no record of a session
var ErrSessionNotFound = errors.New("session not found in journal")

// ErrSessionClosed is returned when a step is recorded for a session that
// has already ended
var ErrSessionClosed = errors.New("session already ended")

// StorageError represents errors accessing the session journal
type StorageError struct {
	Path string
	Op   string // "open", "migrate", "read", "write"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ConfigError represents an invalid or unreadable configuration
type ConfigError struct {
	Path  string // empty when the value came from flags or environment
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config error [%s]: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config error [%s] %s: %v", e.Field, e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
