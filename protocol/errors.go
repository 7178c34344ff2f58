package protocol

import (
	"errors"
	"fmt"
)

// Decode error taxonomy. Every failed decode reports exactly one of these,
// wrapped in a *DecodeError carrying the byte offset and the tag being decoded.
var (
	// ErrEndOfMessage indicates the cursor ran past the end of the buffer
	// while content was still expected
	ErrEndOfMessage = errors.New("unexpected end of message")

	// ErrExpectedLength indicates a length prefix did not start with a digit
	ErrExpectedLength = errors.New("expected length prefix")

	// ErrInvalidCharacter indicates a malformed numeric literal, boolean,
	// length digit, or a map key that is not a string
	ErrInvalidCharacter = errors.New("invalid character")

	// ErrExpectedCRLF indicates a mandatory CRLF terminator was missing or wrong
	ErrExpectedCRLF = errors.New("expected CRLF terminator")

	// ErrExpectedEOL indicates a blob payload was not followed by a carriage return
	ErrExpectedEOL = errors.New("expected end of line after blob payload")

	// ErrUnexpectedCharacterAfterNull indicates a null tag was not immediately
	// followed by its terminator
	ErrUnexpectedCharacterAfterNull = errors.New("unexpected character after null")

	// ErrInvalidVerbatimStringFormat indicates a verbatim string payload did not
	// start with a known format token (mkd or txt)
	ErrInvalidVerbatimStringFormat = errors.New("invalid verbatim string format")

	// ErrInvalidCharacterAfterVerbatimFormat indicates the verbatim format token
	// was not followed by a colon
	ErrInvalidCharacterAfterVerbatimFormat = errors.New("invalid character after verbatim format")

	// ErrPushZeroLength indicates a push message with no elements
	ErrPushZeroLength = errors.New("push message is empty")

	// ErrPushExpectedString indicates a push message whose first element is not
	// a simple string
	ErrPushExpectedString = errors.New("push message must start with a string")

	// ErrIllegalPushPosition indicates a push value nested inside an aggregate;
	// push messages are only valid as the outermost decoded value
	ErrIllegalPushPosition = errors.New("push message inside an aggregate")

	// ErrInternal indicates numeric overflow while parsing a length or integer
	ErrInternal = errors.New("internal decode error")

	// ErrUnsupported indicates a recognized-but-unsupported tag (big number)
	// or a wholly unrecognized tag byte
	ErrUnsupported = errors.New("unsupported message type")

	// ErrMaxDepthExceeded indicates the configured nesting limit was hit.
	// This guard is off by default; see Reader.SetMaxDepth.
	ErrMaxDepthExceeded = errors.New("maximum nesting depth exceeded")
)

// DecodeError reports a decode failure with positional context.
// Use errors.Is to match against the taxonomy sentinels above.
type DecodeError struct {
	Err    error     // one of the taxonomy sentinels
	Offset int       // byte offset in the input where the failure was detected
	Tag    ValueType // tag being decoded when the failure occurred, 0 before dispatch
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Tag == 0 {
		return fmt.Sprintf("resp3 decode error at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("resp3 decode error at offset %d (decoding %s): %v", e.Offset, e.Tag, e.Err)
}

// Unwrap returns the wrapped taxonomy sentinel
func (e *DecodeError) Unwrap() error {
	return e.Err
}
