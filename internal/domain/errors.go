package domain

import "errors"

// ErrNothingToIndex reports that a document produced no embeddable chunks.
// It marks an empty-input outcome, not a processing failure.
var ErrNothingToIndex = errors.New("nothing to index")

// ConfigError reports a missing credential or connection setting.
type ConfigError struct {
	Setting string
}

func (e *ConfigError) Error() string { return "missing configuration: " + e.Setting }

// ConnectError reports that the vector store could not be reached.
// Callers may retry a fresh run; the current run is over.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string { return "vector store connection failed: " + e.Err.Error() }
func (e *ConnectError) Unwrap() error { return e.Err }

// ExtractError reports that no text could be extracted from a document file.
type ExtractError struct {
	Path string
	Err  error
}

func (e *ExtractError) Error() string { return "extract " + e.Path + ": " + e.Err.Error() }
func (e *ExtractError) Unwrap() error { return e.Err }

// EmbedError carries the provider failure for a single embed call.
type EmbedError struct {
	Provider string
	Err      error
}

func (e *EmbedError) Error() string { return e.Provider + " embedding failed: " + e.Err.Error() }
func (e *EmbedError) Unwrap() error { return e.Err }

// InsertError reports a failed bulk insert. No rows from the batch were
// committed.
type InsertError struct {
	Err error
}

func (e *InsertError) Error() string { return "bulk insert failed: " + e.Err.Error() }
func (e *InsertError) Unwrap() error { return e.Err }
