package domain

import "fmt"

// ValidationError reports malformed input. Callers must not retry it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// StorageError reports that the persistent collection could not be read or written.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NotFoundError reports that geocoding returned no candidates.
// Side is "start" or "end" for route planning and empty for a plain search.
type NotFoundError struct {
	Query string
	Side  string
}

func (e *NotFoundError) Error() string {
	if e.Side != "" {
		return fmt.Sprintf("could not find %s location %q", e.Side, e.Query)
	}
	return fmt.Sprintf("location not found: %q", e.Query)
}

// NetworkError reports a transport-level failure on an outbound call.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
