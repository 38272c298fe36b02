package domain

import "fmt"

// ValidationError means the search input itself is unusable. It is surfaced
// before any I/O happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError means a required resource could not be resolved. Only the
// origin location failing to resolve aborts a whole search.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// ExternalSourceError means the fare provider was unreachable or returned a
// malformed payload. The affected segment or route is skipped, siblings
// continue.
type ExternalSourceError struct {
	Provider string
	Err      error
}

func (e *ExternalSourceError) Error() string {
	return fmt.Sprintf("external source %s: %v", e.Provider, e.Err)
}

func (e *ExternalSourceError) Unwrap() error { return e.Err }

// PersistenceError means a store write failed for a reason other than a
// duplicate business key. The record under construction is abandoned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
