package protocol

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// canonicalNaN is the bit pattern hashed for every NaN payload, so that
// values comparing Equal always digest identically
var canonicalNaN = math.Float64bits(math.NaN())

// Sum64 returns a 64-bit structural digest of the value tree, useful for
// deduplicating or bucketing captured replies.
//
// Values that compare Equal produce the same digest. The digest covers type
// tags, payload bytes, verbatim formats, error codes, numeric bit patterns
// and element order; Depth is derivable from structure and is not hashed.
// This is not a cryptographic digest.
func (v Value) Sum64() uint64 {
	d := xxhash.New()
	v.sumInto(d)
	return d.Sum64()
}

func (v Value) sumInto(d *xxhash.Digest) {
	// Digest.Write never returns an error
	d.Write([]byte{byte(v.Type)})
	switch v.Type {
	case TypeString, TypeBlobString:
		writeLenPrefixed(d, v.Data)
	case TypeVerbatimString:
		d.Write([]byte{byte(v.Format)})
		writeLenPrefixed(d, v.Data)
	case TypeNumber:
		writeUint64(d, uint64(v.Integer))
	case TypeFloat:
		bits := math.Float64bits(v.Float)
		switch {
		case v.Float == 0:
			bits = 0 // +0 and -0 compare equal
		case math.IsNaN(v.Float):
			bits = canonicalNaN
		}
		writeUint64(d, bits)
	case TypeBoolean:
		if v.Bool {
			d.Write([]byte{1})
		} else {
			d.Write([]byte{0})
		}
	case TypeError, TypeBlobError:
		writeLenPrefixed(d, v.Code)
		writeLenPrefixed(d, v.Data)
	case TypeArray, TypeSet, TypePush:
		writeUint64(d, uint64(len(v.Array)))
		for _, item := range v.Array {
			item.sumInto(d)
		}
	case TypeMap, TypeAttribute:
		writeUint64(d, uint64(len(v.Entries)))
		for _, e := range v.Entries {
			e.Key.sumInto(d)
			e.Value.sumInto(d)
		}
	}
}

// writeLenPrefixed writes a length-prefixed byte run, keeping adjacent
// variable-length fields from colliding
func writeLenPrefixed(d *xxhash.Digest, b []byte) {
	writeUint64(d, uint64(len(b)))
	d.Write(b)
}

func writeUint64(d *xxhash.Digest, n uint64) {
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], n)
	d.Write(scratch[:])
}
