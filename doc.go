// Package resp3decoder decodes RESP3 (Redis Serialization Protocol version 3)
// messages from in-memory byte buffers into typed value trees.
//
// The decoder works on fully-buffered messages: it performs no I/O, never
// blocks, and either returns one complete value or one error from a fixed
// taxonomy. Scalar payloads alias the input buffer for zero-copy decoding.
//
// Basic usage:
//
//	decoder, err := resp3decoder.New(
//		resp3decoder.WithMaxDepth(64),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	value, err := decoder.Decode([]byte("%1\r\n+greeting\r\n$5\r\nhello\r\n"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(value) // {greeting: hello}
//
// The library supports:
//
//   - All RESP3 data types: strings, blobs, verbatim strings, numbers,
//     floats, booleans, nulls, errors, arrays, maps, sets, attributes and
//     push messages
//   - Structured decode errors with byte offsets and tag context
//   - Sequential decoding of several messages from one buffer
//   - Structural digests, tree rendering and Lua-scripted inspection
//   - Decode statistics and pluggable metrics collection
//
// Encoding values back to wire bytes, network I/O and streaming partial
// buffers are out of scope.
//
// For more examples and advanced usage, see the examples/ directory.
package resp3decoder
