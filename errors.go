package resp3decoder

import (
	"errors"
)

// Error types for specific failure scenarios
var (
	// ErrInvalidConfig indicates invalid configuration options
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Decode failures are reported by the protocol package: every error returned
// from Decode wraps one of the protocol sentinel errors (protocol.ErrEndOfMessage,
// protocol.ErrInvalidCharacter, ...) in a *protocol.DecodeError that carries
// the byte offset and the tag being decoded. Match them with errors.Is and
// errors.As.
