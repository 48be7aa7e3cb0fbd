package network

import "errors"

// Sentinel errors returned by NetworkClient and Builder.
var (
	// ErrSendClosed mirrors state.ErrSendClosed: the request queue has no
	// room, or the actor has already stopped.
	ErrSendClosed = errors.New("network: request channel closed or full")

	// ErrTimeout is returned when a request/response round trip exceeds
	// its 5s ceiling.
	ErrTimeout = errors.New("network: request timed out")

	// ErrUnexpectedResponse indicates the actor replied with a response
	// variant that doesn't match the request payload.
	ErrUnexpectedResponse = errors.New("network: unexpected response variant")

	// ErrMissingBootNodeAddr is a Builder validation failure: a non-boot
	// node was configured without a boot-node multiaddress to dial.
	ErrMissingBootNodeAddr = errors.New("network: boot-node address required when not running as a boot node")
)
