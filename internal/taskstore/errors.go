package taskstore

import "fmt"

// ValidationError reports a required field missing or malformed. It is
// raised locally, before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// RemoteError reports a non-success response from one of the remote
// services. Detail carries the service-provided message when the body
// had one, otherwise a generic fallback.
type RemoteError struct {
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote: %d: %s", e.Status, e.Detail)
}

// TransportError reports a network-level failure: the service was never
// reached or the response never arrived. Indistinguishable from
// RemoteError to most callers, but carries no server detail.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
