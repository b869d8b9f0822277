package presence

import "errors"

var (
	// ErrUnknownSession is returned when an operation references an id that is not registered.
	ErrUnknownSession = errors.New("unknown session")

	// ErrDuplicateSession is returned when a connect notification reuses a live id.
	ErrDuplicateSession = errors.New("duplicate session")

	// ErrUnresolvedRecipient marks a direct message whose recipient is not connected.
	// It never leaves the router.
	ErrUnresolvedRecipient = errors.New("unresolved recipient")

	// ErrNotConnected is returned when a request arrives from a connection
	// whose lifecycle is not in the connected state.
	ErrNotConnected = errors.New("session not connected")

	ErrUnknownRequest   = errors.New("unknown request kind")
	ErrMalformedRequest = errors.New("malformed request")
)
