// Package protocol implements a RESP3 (Redis Serialization Protocol
// version 3) decoder over fully-buffered messages.
//
// The decoder is a byte cursor, not a stream: the complete message must
// already be in memory, and decoding performs no I/O and never blocks.
// Scalar payloads alias the input buffer rather than copying it.
//
// Basic usage:
//
//	reader := protocol.NewReader(buf)
//	value, err := reader.ReadNext()
//	if err != nil {
//		// err wraps one of the taxonomy sentinels in a *DecodeError
//	}
//	// Process value
//
// The package supports all RESP3 data types:
//   - Simple Strings, Blob Strings, Verbatim Strings
//   - Simple Errors and Blob Errors, split into code and message
//   - Numbers (int64), Floats (float64), Booleans, Null
//   - Arrays, Sets, Maps, Attributes and Push messages
//
// Big numbers are recognized but reported as unsupported. Encoding is out
// of scope; this package only decodes.
package protocol
