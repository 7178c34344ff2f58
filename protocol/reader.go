package protocol

import (
	"bytes"
	"errors"
	"math"
	"strconv"
)

// CRLF is the protocol line terminator
const CRLF = "\r\n"

// maxPrealloc caps the element capacity reserved up front for an aggregate,
// so a bogus count line cannot force a huge allocation before any element
// has actually decoded
const maxPrealloc = 4096

var (
	floatInf    = []byte("inf")
	floatNegInf = []byte("-inf")
	floatNaN    = []byte("nan")
	verbatimTxt = []byte("txt")
	verbatimMkd = []byte("mkd")
)

// Reader is a cursor-driven RESP3 decoder over a fully-buffered message.
// It performs no I/O and never blocks: the buffer must already contain the
// complete message bytes.
//
// Scalar values returned by the reader alias the input buffer; the buffer
// must outlive them. The reader keeps no state between messages other than
// the cursor, so several complete messages laid out back to back in one
// buffer (an attribute followed by the reply it annotates, or a pipelined
// capture) can be decoded with consecutive ReadNext calls.
//
// A Reader is not safe for concurrent use. After a decode error the cursor
// position is unspecified; call Reset before reusing the reader.
type Reader struct {
	buf      []byte
	pos      int
	depth    int
	maxDepth int
	tag      ValueType // tag currently being decoded, for error context
}

// NewReader creates a reader positioned at the start of buf
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Reset rewinds the reader onto a new buffer, keeping its configuration
func (r *Reader) Reset(buf []byte) {
	r.buf = buf
	r.pos = 0
	r.depth = 0
	r.tag = 0
}

// SetMaxDepth bounds aggregate nesting: a value of n permits children at
// nesting level n but fails ErrMaxDepthExceeded one level deeper. Zero
// disables the guard, which is the default; deeply nested input then
// recurses once per nesting level.
func (r *Reader) SetMaxDepth(n int) {
	r.maxDepth = n
}

// Offset returns the number of input bytes consumed so far
func (r *Reader) Offset() int {
	return r.pos
}

// Remaining returns the number of unread input bytes
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// ReadNext decodes the next RESP3 value from the buffer.
//
// Exactly one value is consumed. On failure the returned error wraps one of
// the taxonomy sentinels in a *DecodeError and no partially built value is
// returned.
func (r *Reader) ReadNext() (Value, error) {
	return r.readValue()
}

func (r *Reader) readValue() (Value, error) {
	if r.pos >= len(r.buf) {
		r.tag = 0
		return Value{}, r.fail(ErrEndOfMessage)
	}
	tag := ValueType(r.buf[r.pos])
	r.pos++
	r.tag = tag

	switch tag {
	case TypeString:
		return r.readSimpleString()
	case TypeBlobString:
		return r.readBlobString()
	case TypeVerbatimString:
		return r.readVerbatimString()
	case TypeNumber:
		return r.readNumber()
	case TypeFloat:
		return r.readFloat()
	case TypeBoolean:
		return r.readBoolean()
	case TypeError:
		return r.readSimpleError()
	case TypeBlobError:
		return r.readBlobError()
	case TypeNull:
		return r.readNull()
	case TypeArray:
		return r.readAggregate(TypeArray)
	case TypeSet:
		return r.readAggregate(TypeSet)
	case TypePush:
		return r.readPush()
	case TypeMap:
		return r.readMapLike(TypeMap)
	case TypeAttribute:
		return r.readMapLike(TypeAttribute)
	case TypeBigNumber:
		// recognized, explicitly unsupported
		return Value{}, r.failAt(ErrUnsupported, r.pos-1)
	default:
		return Value{}, r.failAt(ErrUnsupported, r.pos-1)
	}
}

// readSimpleString reads a simple string value
func (r *Reader) readSimpleString() (Value, error) {
	line, err := r.readLine()
	if err != nil {
		return Value{}, err
	}
	return Value{Type: TypeString, Data: line, Depth: r.depth}, nil
}

// readSimpleError reads an error value and splits it into code and message
func (r *Reader) readSimpleError() (Value, error) {
	line, err := r.readLine()
	if err != nil {
		return Value{}, err
	}
	code, message := splitErrorText(line)
	return Value{Type: TypeError, Code: code, Data: message, Depth: r.depth}, nil
}

// readNumber reads a signed 64-bit decimal integer value
func (r *Reader) readNumber() (Value, error) {
	start := r.pos
	line, err := r.readLine()
	if err != nil {
		return Value{}, err
	}
	n, err := parseInt64(line)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return Value{}, r.failAt(ErrInternal, start)
		}
		return Value{}, r.failAt(ErrInvalidCharacter, start)
	}
	return Value{Type: TypeNumber, Integer: n, Depth: r.depth}, nil
}

// readFloat reads a float value: the exact tokens inf, -inf and nan, or a
// standard decimal floating-point literal
func (r *Reader) readFloat() (Value, error) {
	start := r.pos
	line, err := r.readLine()
	if err != nil {
		return Value{}, err
	}
	var f float64
	switch {
	case bytes.Equal(line, floatInf):
		f = math.Inf(1)
	case bytes.Equal(line, floatNegInf):
		f = math.Inf(-1)
	case bytes.Equal(line, floatNaN):
		f = math.NaN()
	default:
		v, perr := strconv.ParseFloat(string(line), 64)
		if perr != nil && !errors.Is(perr, strconv.ErrRange) {
			return Value{}, r.failAt(ErrInvalidCharacter, start)
		}
		// out-of-range literals saturate to ±Inf, as the standard parse defines
		f = v
	}
	return Value{Type: TypeFloat, Float: f, Depth: r.depth}, nil
}

// readBoolean reads a boolean value; the line must be exactly t or f
func (r *Reader) readBoolean() (Value, error) {
	start := r.pos
	line, err := r.readLine()
	if err != nil {
		return Value{}, err
	}
	if len(line) != 1 {
		return Value{}, r.failAt(ErrInvalidCharacter, start)
	}
	switch line[0] {
	case 't':
		return Value{Type: TypeBoolean, Bool: true, Depth: r.depth}, nil
	case 'f':
		return Value{Type: TypeBoolean, Bool: false, Depth: r.depth}, nil
	}
	return Value{}, r.failAt(ErrInvalidCharacter, start)
}

// readNull reads a null value; the tag must be immediately followed by CRLF
func (r *Reader) readNull() (Value, error) {
	if r.pos >= len(r.buf) {
		return Value{}, r.failAt(ErrEndOfMessage, len(r.buf))
	}
	if r.buf[r.pos] != '\r' {
		return Value{}, r.fail(ErrUnexpectedCharacterAfterNull)
	}
	if err := r.consumeCRLF(); err != nil {
		return Value{}, err
	}
	return Value{Type: TypeNull, Depth: r.depth}, nil
}

// readBlobString reads a length-prefixed blob string value
func (r *Reader) readBlobString() (Value, error) {
	payload, err := r.readBlobPayload()
	if err != nil {
		return Value{}, err
	}
	return Value{Type: TypeBlobString, Data: payload, Depth: r.depth}, nil
}

// readBlobError reads a length-prefixed blob error value and splits it into
// code and message
func (r *Reader) readBlobError() (Value, error) {
	payload, err := r.readBlobPayload()
	if err != nil {
		return Value{}, err
	}
	code, message := splitErrorText(payload)
	return Value{Type: TypeBlobError, Code: code, Data: message, Depth: r.depth}, nil
}

// readVerbatimString reads a length-prefixed fmt:content payload
func (r *Reader) readVerbatimString() (Value, error) {
	n, err := r.readLength()
	if err != nil {
		return Value{}, err
	}
	if n > len(r.buf)-r.pos {
		return Value{}, r.failAt(ErrEndOfMessage, len(r.buf))
	}
	start := r.pos
	payload := r.buf[start : start+n]
	r.pos += n

	if n == 0 {
		// no payload means no format header; an empty text-format string
		if err := r.consumeCRLF(); err != nil {
			return Value{}, err
		}
		return Value{Type: TypeVerbatimString, Data: payload, Format: VerbatimText, Depth: r.depth}, nil
	}

	var format VerbatimFormat
	switch {
	case n >= 3 && bytes.Equal(payload[:3], verbatimTxt):
		format = VerbatimText
	case n >= 3 && bytes.Equal(payload[:3], verbatimMkd):
		format = VerbatimMarkdown
	default:
		return Value{}, r.failAt(ErrInvalidVerbatimStringFormat, start)
	}
	if n < 4 || payload[3] != ':' {
		return Value{}, r.failAt(ErrInvalidCharacterAfterVerbatimFormat, start+3)
	}
	if err := r.consumeCRLF(); err != nil {
		return Value{}, err
	}
	return Value{Type: TypeVerbatimString, Data: payload[4:], Format: format, Depth: r.depth}, nil
}

// readAggregate reads a count-prefixed sequence of values as an array, set
// or the array backing a push message
func (r *Reader) readAggregate(tag ValueType) (Value, error) {
	count, err := r.readLength()
	if err != nil {
		return Value{}, err
	}
	out := Value{Type: tag, Depth: r.depth}
	if count == 0 {
		// zero-count aggregates never touch the depth counter
		return out, nil
	}

	if err := r.enterAggregate(); err != nil {
		return Value{}, err
	}
	defer r.leaveAggregate()

	elems := make([]Value, 0, min(count, maxPrealloc))
	for i := 0; i < count; i++ {
		elem, err := r.readValue()
		if err != nil {
			return Value{}, err
		}
		if elem.Type == TypePush {
			return Value{}, r.failAs(ErrIllegalPushPosition, tag)
		}
		elems = append(elems, elem)
	}
	out.Array = elems
	return out, nil
}

// readMapLike reads a count-prefixed sequence of key/value pairs as a map
// or attribute; every key must decode to a simple string
func (r *Reader) readMapLike(tag ValueType) (Value, error) {
	count, err := r.readLength()
	if err != nil {
		return Value{}, err
	}
	out := Value{Type: tag, Depth: r.depth}
	if count == 0 {
		return out, nil
	}

	if err := r.enterAggregate(); err != nil {
		return Value{}, err
	}
	defer r.leaveAggregate()

	entries := make([]MapEntry, 0, min(count, maxPrealloc))
	for i := 0; i < count; i++ {
		key, err := r.readValue()
		if err != nil {
			return Value{}, err
		}
		if key.Type != TypeString {
			return Value{}, r.failAs(ErrInvalidCharacter, tag)
		}
		val, err := r.readValue()
		if err != nil {
			return Value{}, err
		}
		if val.Type == TypePush {
			return Value{}, r.failAs(ErrIllegalPushPosition, tag)
		}
		entries = append(entries, MapEntry{Key: key, Value: val})
	}
	out.Entries = entries
	return out, nil
}

// readPush reads a push message: array-shaped, non-empty, first element a
// string. Nested pushes are rejected by the aggregate element loop, so a
// push can only ever be the outermost decoded value.
func (r *Reader) readPush() (Value, error) {
	v, err := r.readAggregate(TypePush)
	if err != nil {
		return Value{}, err
	}
	if len(v.Array) == 0 {
		return Value{}, r.failAs(ErrPushZeroLength, TypePush)
	}
	if v.Array[0].Type != TypeString {
		return Value{}, r.failAs(ErrPushExpectedString, TypePush)
	}
	return v, nil
}

// readLine returns the bytes from the cursor up to the next CR, which must
// be followed by LF; the cursor moves past the terminator
func (r *Reader) readLine() ([]byte, error) {
	i := bytes.IndexByte(r.buf[r.pos:], '\r')
	if i < 0 {
		return nil, r.failAt(ErrEndOfMessage, len(r.buf))
	}
	cr := r.pos + i
	if cr+1 >= len(r.buf) || r.buf[cr+1] != '\n' {
		return nil, r.failAt(ErrExpectedCRLF, cr+1)
	}
	line := r.buf[r.pos:cr]
	r.pos = cr + 2
	return line, nil
}

// readLength reads a line holding a non-negative decimal length or count
func (r *Reader) readLength() (int, error) {
	start := r.pos
	line, err := r.readLine()
	if err != nil {
		return 0, err
	}
	if len(line) == 0 || line[0] < '0' || line[0] > '9' {
		return 0, r.failAt(ErrExpectedLength, start)
	}
	var n int64
	for _, c := range line {
		if c < '0' || c > '9' {
			return 0, r.failAt(ErrInvalidCharacter, start)
		}
		d := int64(c - '0')
		if n > (math.MaxInt64-d)/10 {
			return 0, r.failAt(ErrInternal, start)
		}
		n = n*10 + d
	}
	if n > int64(math.MaxInt) {
		return 0, r.failAt(ErrInternal, start)
	}
	return int(n), nil
}

// readBlobPayload reads a length-prefixed payload whose trailing byte must
// be CR, then consumes the terminating CRLF
func (r *Reader) readBlobPayload() ([]byte, error) {
	n, err := r.readLength()
	if err != nil {
		return nil, err
	}
	if n > len(r.buf)-r.pos {
		return nil, r.failAt(ErrEndOfMessage, len(r.buf))
	}
	payload := r.buf[r.pos : r.pos+n]
	r.pos += n
	if r.pos >= len(r.buf) {
		return nil, r.failAt(ErrEndOfMessage, len(r.buf))
	}
	if r.buf[r.pos] != '\r' {
		return nil, r.fail(ErrExpectedEOL)
	}
	if err := r.consumeCRLF(); err != nil {
		return nil, err
	}
	return payload, nil
}

// consumeCRLF consumes a mandatory CRLF at the cursor
func (r *Reader) consumeCRLF() error {
	if len(r.buf)-r.pos < 2 {
		return r.failAt(ErrEndOfMessage, len(r.buf))
	}
	if r.buf[r.pos] != '\r' || r.buf[r.pos+1] != '\n' {
		return r.fail(ErrExpectedCRLF)
	}
	r.pos += 2
	return nil
}

// enterAggregate increments the nesting depth, enforcing the optional limit
func (r *Reader) enterAggregate() error {
	if r.maxDepth > 0 && r.depth+1 > r.maxDepth {
		return r.fail(ErrMaxDepthExceeded)
	}
	r.depth++
	return nil
}

func (r *Reader) leaveAggregate() {
	r.depth--
}

func (r *Reader) fail(err error) error {
	return &DecodeError{Err: err, Offset: r.pos, Tag: r.tag}
}

func (r *Reader) failAt(err error, offset int) error {
	return &DecodeError{Err: err, Offset: offset, Tag: r.tag}
}

func (r *Reader) failAs(err error, tag ValueType) error {
	return &DecodeError{Err: err, Offset: r.pos, Tag: tag}
}

// splitErrorText splits error text into the leading run of uppercase ASCII
// letters (the code, possibly empty) and the whitespace-trimmed remainder
// (the message). Both slices alias the input.
func splitErrorText(text []byte) (code, message []byte) {
	i := 0
	for i < len(text) && text[i] >= 'A' && text[i] <= 'Z' {
		i++
	}
	return text[:i], bytes.TrimSpace(text[i:])
}

// parseInt64 parses a signed decimal int64 from a byte slice without
// allocating. Only a leading '-' sign is accepted. The negated accumulation
// keeps the full signed range, including math.MinInt64.
func parseInt64(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, strconv.ErrSyntax
	}
	var neg bool
	var i int
	if b[0] == '-' {
		neg = true
		i = 1
	}
	if i >= len(b) {
		return 0, strconv.ErrSyntax
	}

	var n int64
	for ; i < len(b); i++ {
		if b[i] < '0' || b[i] > '9' {
			return 0, strconv.ErrSyntax
		}
		d := int64(b[i] - '0')
		if n < (math.MinInt64+d)/10 {
			return 0, strconv.ErrRange
		}
		n = n*10 - d
	}
	if !neg {
		if n == math.MinInt64 {
			return 0, strconv.ErrRange
		}
		n = -n
	}
	return n, nil
}
