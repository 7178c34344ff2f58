package resp3decoder

import (
	"errors"
	"time"

	"github.com/raniellyferreira/resp3-inmemory-decoder/protocol"
)

// Decoder is a configured RESP3 message decoder.
//
// A Decoder is immutable after construction and safe for concurrent use;
// each Decode call works on its own cursor.
type Decoder struct {
	// Configuration
	config *config

	// Statistics (exported for monitoring)
	Stats DecodeStats
}

// New creates a new Decoder with the given options
//
// Example:
//
//	decoder, err := resp3decoder.New(
//		resp3decoder.WithMaxDepth(64),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Since: v1.0.0
func New(opts ...Option) (*Decoder, error) {
	cfg := defaultConfig()

	// Apply options
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return &Decoder{
		config: cfg,
		Stats: DecodeStats{
			MessagesByType: make(map[string]int64),
		},
	}, nil
}

// Decode decodes one complete message from the front of buf
//
// The buffer must already hold the complete message; no I/O is performed.
// Bytes after the first complete message are ignored; use Reader to walk
// a buffer holding several messages. On failure the returned error wraps
// one of the protocol sentinel errors in a *protocol.DecodeError.
//
// Example:
//
//	value, err := decoder.Decode([]byte("+OK\r\n"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(value.Text())
//
// Since: v1.0.0
func (d *Decoder) Decode(buf []byte) (protocol.Value, error) {
	start := time.Now()

	reader := d.Reader(buf)
	value, err := reader.ReadNext()

	if d.config.metrics != nil {
		d.config.metrics.RecordDecodeDuration(time.Since(start))
	}

	if err != nil {
		d.Stats.recordFailure()
		if d.config.metrics != nil {
			d.config.metrics.RecordError(taxonomyName(err))
		}
		d.config.logger.Debug("Decode failed",
			Field{Key: "error", Value: err},
			Field{Key: "bytes", Value: len(buf)})
		return protocol.Value{}, err
	}

	consumed := int64(reader.Offset())
	typeName := value.Type.String()
	d.Stats.recordMessage(typeName, consumed)
	if d.config.metrics != nil {
		d.config.metrics.RecordMessage(typeName)
		d.config.metrics.RecordMessageBytes(consumed)
	}

	return value, nil
}

// Reader returns a cursor over buf carrying the decoder's configuration
//
// Use it to decode several complete messages laid out back to back in one
// buffer, such as an attribute followed by the reply it annotates, or a
// pipelined capture.
//
// Example:
//
//	reader := decoder.Reader(capture)
//	for reader.Remaining() > 0 {
//		value, err := reader.ReadNext()
//		if err != nil {
//			break
//		}
//		fmt.Println(value)
//	}
//
// Since: v1.0.0
func (d *Decoder) Reader(buf []byte) *protocol.Reader {
	reader := protocol.NewReader(buf)
	if d.config.maxDepth > 0 {
		reader.SetMaxDepth(d.config.maxDepth)
	}
	return reader
}

// MaxDepth returns the configured nesting limit, 0 when unlimited
//
// Since: v1.0.0
func (d *Decoder) MaxDepth() int {
	return d.config.maxDepth
}

// defaultDecoder backs the package-level Decode convenience
var defaultDecoder = &Decoder{config: defaultConfig()}

// Decode decodes one complete message from the front of buf using a default
// configuration
//
// Example:
//
//	value, err := resp3decoder.Decode([]byte(":42\r\n"))
//
// Since: v1.0.0
func Decode(buf []byte) (protocol.Value, error) {
	return defaultDecoder.Decode(buf)
}

// taxonomyName maps a decode failure onto its sentinel text for metrics labels
func taxonomyName(err error) string {
	var de *protocol.DecodeError
	if errors.As(err, &de) && de.Err != nil {
		return de.Err.Error()
	}
	return err.Error()
}
