package protocol

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// ValueType represents the type of a RESP3 value. The constant values are the
// wire tag bytes themselves.
type ValueType byte

const (
	// RESP3 value types
	TypeString         ValueType = '+'
	TypeBlobString     ValueType = '$'
	TypeVerbatimString ValueType = '='
	TypeNumber         ValueType = ':'
	TypeFloat          ValueType = ','
	TypeBoolean        ValueType = '#'
	TypeError          ValueType = '-'
	TypeBlobError      ValueType = '!'
	TypeNull           ValueType = '_'
	TypeArray          ValueType = '*'
	TypeMap            ValueType = '%'
	TypeSet            ValueType = '~'
	TypePush           ValueType = '>'
	TypeAttribute      ValueType = '|'
	TypeBigNumber      ValueType = ')'
)

// String returns a stable lowercase name for the type
func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBlobString:
		return "blob-string"
	case TypeVerbatimString:
		return "verbatim-string"
	case TypeNumber:
		return "number"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	case TypeError:
		return "error"
	case TypeBlobError:
		return "blob-error"
	case TypeNull:
		return "null"
	case TypeArray:
		return "array"
	case TypeMap:
		return "map"
	case TypeSet:
		return "set"
	case TypePush:
		return "push"
	case TypeAttribute:
		return "attribute"
	case TypeBigNumber:
		return "big-number"
	default:
		return "unknown"
	}
}

// IsAggregate returns true for types that contain other values
func (t ValueType) IsAggregate() bool {
	switch t {
	case TypeArray, TypeMap, TypeSet, TypePush, TypeAttribute:
		return true
	}
	return false
}

// VerbatimFormat is the format hint carried by a verbatim string
type VerbatimFormat byte

const (
	// VerbatimText marks plain text content (wire token "txt")
	VerbatimText VerbatimFormat = iota
	// VerbatimMarkdown marks markdown content (wire token "mkd")
	VerbatimMarkdown
)

// String returns the wire token for the format
func (f VerbatimFormat) String() string {
	if f == VerbatimMarkdown {
		return "mkd"
	}
	return "txt"
}

// Value represents a decoded RESP3 value.
//
// Scalar payloads (Data, Code) are sub-slices of the decoded input buffer and
// stay valid only as long as that buffer does; use Text, ErrorCode or
// ErrorMessage to obtain owned copies. Aggregate values own their Array and
// Entries storage.
//
// Depth records how many aggregate boundaries were crossed to produce the
// value. It is display metadata only and is ignored by Equal.
type Value struct {
	Type    ValueType
	Data    []byte         // strings, blobs, verbatim content; error message for error types
	Code    []byte         // leading uppercase code for error types
	Integer int64          // TypeNumber payload
	Float   float64        // TypeFloat payload; supports ±Inf and NaN
	Bool    bool           // TypeBoolean payload
	Format  VerbatimFormat // TypeVerbatimString format hint
	Array   []Value        // TypeArray, TypeSet, TypePush elements
	Entries []MapEntry     // TypeMap, TypeAttribute pairs
	Depth   int
}

// MapEntry is a single key/value pair of a map or attribute value.
// Key is always a TypeString value for entries produced by the decoder.
type MapEntry struct {
	Key   Value
	Value Value
}

// NewPush builds a push value from elements, enforcing the push invariants:
// non-empty, first element a string, and no nested push elements
func NewPush(elems []Value) (Value, error) {
	if len(elems) == 0 {
		return Value{}, ErrPushZeroLength
	}
	if elems[0].Type != TypeString {
		return Value{}, ErrPushExpectedString
	}
	for _, e := range elems {
		if e.Type == TypePush {
			return Value{}, ErrIllegalPushPosition
		}
	}
	return Value{Type: TypePush, Array: elems}, nil
}

// NewMap builds a map value from entries, enforcing that every key is a
// string and no entry value is a push
func NewMap(entries []MapEntry) (Value, error) {
	if err := checkEntries(entries); err != nil {
		return Value{}, err
	}
	return Value{Type: TypeMap, Entries: entries}, nil
}

// NewAttribute builds an attribute value from entries under the same rules
// as NewMap
func NewAttribute(entries []MapEntry) (Value, error) {
	if err := checkEntries(entries); err != nil {
		return Value{}, err
	}
	return Value{Type: TypeAttribute, Entries: entries}, nil
}

func checkEntries(entries []MapEntry) error {
	for _, e := range entries {
		if e.Key.Type != TypeString {
			return ErrInvalidCharacter
		}
		if e.Value.Type == TypePush {
			return ErrIllegalPushPosition
		}
	}
	return nil
}

// String returns a compact one-line representation of the value
func (v Value) String() string {
	switch v.Type {
	case TypeString, TypeBlobString, TypeVerbatimString:
		return string(v.Data)
	case TypeNumber:
		return strconv.FormatInt(v.Integer, 10)
	case TypeFloat:
		return formatFloat(v.Float)
	case TypeBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case TypeError, TypeBlobError:
		if len(v.Code) == 0 {
			return string(v.Data)
		}
		if len(v.Data) == 0 {
			return string(v.Code)
		}
		return string(v.Code) + " " + string(v.Data)
	case TypeNull:
		return "(nil)"
	case TypeArray, TypeSet, TypePush:
		parts := make([]string, len(v.Array))
		for i, item := range v.Array {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TypeMap, TypeAttribute:
		parts := make([]string, len(v.Entries))
		for i, e := range v.Entries {
			parts[i] = e.Key.String() + ": " + e.Value.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "unknown type " + string(byte(v.Type))
	}
}

// formatFloat renders a float using the protocol vocabulary for the
// non-finite values
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Bytes returns the raw payload slice for string-like values. The slice
// aliases the decoded input buffer.
func (v Value) Bytes() []byte {
	return v.Data
}

// Text returns an owned string copy of the payload for string-like values
func (v Value) Text() string {
	return string(v.Data)
}

// Int returns the integer payload, or 0 if the value is not a number
func (v Value) Int() int64 {
	return v.Integer
}

// IsNull returns true if this is a null value
func (v Value) IsNull() bool {
	return v.Type == TypeNull
}

// IsError returns true if this is an error or blob error value
func (v Value) IsError() bool {
	return v.Type == TypeError || v.Type == TypeBlobError
}

// IsAggregate returns true if this value contains other values
func (v Value) IsAggregate() bool {
	return v.Type.IsAggregate()
}

// ErrorCode returns an owned copy of the error code, empty for non-errors
func (v Value) ErrorCode() string {
	return string(v.Code)
}

// ErrorMessage returns an owned copy of the error message, empty for non-errors
func (v Value) ErrorMessage() string {
	if v.IsError() {
		return string(v.Data)
	}
	return ""
}

// Len returns the element count for aggregates and the payload byte length
// for string-like values; 0 otherwise
func (v Value) Len() int {
	switch v.Type {
	case TypeArray, TypeSet, TypePush:
		return len(v.Array)
	case TypeMap, TypeAttribute:
		return len(v.Entries)
	case TypeString, TypeBlobString, TypeVerbatimString, TypeError, TypeBlobError:
		return len(v.Data)
	}
	return 0
}

// MapGet returns the value stored under key in a map or attribute value.
// Entries are scanned in decode order; the first match wins.
func (v Value) MapGet(key string) (Value, bool) {
	for _, e := range v.Entries {
		if string(e.Key.Data) == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Equal reports structural equality of two values. Depth metadata is ignored,
// payload slices are compared by content, and NaN floats compare equal to
// each other so that identical inputs always decode to equal trees.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeString, TypeBlobString:
		return bytes.Equal(v.Data, o.Data)
	case TypeVerbatimString:
		return v.Format == o.Format && bytes.Equal(v.Data, o.Data)
	case TypeNumber:
		return v.Integer == o.Integer
	case TypeFloat:
		if math.IsNaN(v.Float) && math.IsNaN(o.Float) {
			return true
		}
		return v.Float == o.Float
	case TypeBoolean:
		return v.Bool == o.Bool
	case TypeError, TypeBlobError:
		return bytes.Equal(v.Code, o.Code) && bytes.Equal(v.Data, o.Data)
	case TypeNull:
		return true
	case TypeArray, TypeSet, TypePush:
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	case TypeMap, TypeAttribute:
		if len(v.Entries) != len(o.Entries) {
			return false
		}
		for i := range v.Entries {
			if !v.Entries[i].Key.Equal(o.Entries[i].Key) {
				return false
			}
			if !v.Entries[i].Value.Equal(o.Entries[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// Walk visits v and every contained value in pre-order. Traversal stops when
// fn returns false; Walk reports whether the traversal ran to completion.
func (v Value) Walk(fn func(Value) bool) bool {
	if !fn(v) {
		return false
	}
	for _, e := range v.Array {
		if !e.Walk(fn) {
			return false
		}
	}
	for _, e := range v.Entries {
		if !e.Key.Walk(fn) {
			return false
		}
		if !e.Value.Walk(fn) {
			return false
		}
	}
	return true
}

// Validate checks the value tree against the structural invariants the
// decoder enforces: known types, string map keys, push shape, and no push
// below the root. Values produced by a successful decode always validate.
func (v Value) Validate() error {
	return v.validate(true)
}

func (v Value) validate(root bool) error {
	switch v.Type {
	case TypeString, TypeBlobString, TypeVerbatimString, TypeNumber, TypeFloat,
		TypeBoolean, TypeError, TypeBlobError, TypeNull:
		return nil
	case TypePush:
		if !root {
			return ErrIllegalPushPosition
		}
		if len(v.Array) == 0 {
			return ErrPushZeroLength
		}
		if v.Array[0].Type != TypeString {
			return ErrPushExpectedString
		}
		for _, e := range v.Array {
			if err := e.validate(false); err != nil {
				return err
			}
		}
		return nil
	case TypeArray, TypeSet:
		for _, e := range v.Array {
			if err := e.validate(false); err != nil {
				return err
			}
		}
		return nil
	case TypeMap, TypeAttribute:
		for _, e := range v.Entries {
			if e.Key.Type != TypeString {
				return ErrInvalidCharacter
			}
			if err := e.Value.validate(false); err != nil {
				return err
			}
		}
		return nil
	default:
		return ErrUnsupported
	}
}
