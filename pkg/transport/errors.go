package transport

import "errors"

var (
	ErrInvalidConfig = errors.New("transport: invalid configuration")
	ErrNoTransport   = errors.New("transport: no transport configured")
	ErrUnknownKind   = errors.New("transport: unknown kind")
)
