// Package apperr defines the error taxonomy shared by the connection,
// session, and host layers. Each sentinel is meant to be wrapped with
// fmt.Errorf("...: %w", ...) and tested for with errors.Is, matching how
// the rest of this codebase handles errors.
package apperr

import "errors"

var (
	// ErrProtocol marks malformed JSON, missing required fields, or an
	// unknown required method on an inbound line.
	ErrProtocol = errors.New("protocol error")

	// ErrTransport marks a pipe closed or write failure; always precedes
	// a Crashed transition for the owning session.
	ErrTransport = errors.New("transport error")

	// ErrTimeout marks an outbound RPC waiter whose deadline expired.
	// The id stays reserved in the pending table until the real
	// response arrives or the connection closes.
	ErrTimeout = errors.New("timeout")

	// ErrPermissionDenied marks a user- or policy-rejected permission.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidState marks an operation attempted in a state that
	// forbids it.
	ErrInvalidState = errors.New("invalid state")

	// ErrIO marks a filesystem or subprocess failure not covered above.
	ErrIO = errors.New("io error")

	// ErrConnectionClosed completes pending requests that were never
	// answered because the connection tore down.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrBusy is returned by an outbound submission when the writer
	// queue is full rather than blocking forever or dropping silently.
	ErrBusy = errors.New("busy")
)
