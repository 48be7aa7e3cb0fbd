package state

import "errors"

// Sentinel errors returned by StateClient. Wrapped with %w so callers can
// still use errors.Is against the underlying cause where one exists.
var (
	// ErrSendClosed is returned when the request channel has no room (the
	// queue is full) or has been closed because the actor already stopped.
	ErrSendClosed = errors.New("state: request channel closed or full")

	// ErrTimeout is returned when a request/response round trip exceeds its
	// ceiling. The actor is not notified and may still complete the work;
	// the reply is simply dropped on arrival.
	ErrTimeout = errors.New("state: request timed out")

	// ErrUnexpectedResponse indicates the actor replied with a response
	// variant that doesn't match the request payload. This is a
	// programming error inside the actor, never a user-triggerable one.
	ErrUnexpectedResponse = errors.New("state: unexpected response variant")
)
