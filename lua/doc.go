// Package lua provides Lua-scripted inspection of decoded protocol values.
//
// Scripts receive the decoded message as the global variable msg, converted
// to native Lua types: strings and blobs become Lua strings, numbers and
// floats become Lua numbers, null becomes nil, arrays, sets and pushes
// become 1-indexed tables, and maps and attributes become keyed tables.
// Error replies become tables with err and code fields.
//
// A resp helper table exposes message-level information:
//   - resp.kind() returns the protocol type name of the message
//   - resp.render() returns its indented multi-line rendering
//   - resp.hash() returns its content digest as a hex string
//
// Scripts can be cached by SHA1 hash with LoadScript and executed by hash
// with EvalSHA, mirroring the EVAL and EVALSHA script caching model.
package lua
