package resp3decoder_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resp3decoder "github.com/raniellyferreira/resp3-inmemory-decoder"
	"github.com/raniellyferreira/resp3-inmemory-decoder/protocol"
)

func TestNew(t *testing.T) {
	decoder, err := resp3decoder.New()
	require.NoError(t, err)
	require.NotNil(t, decoder)

	assert.Equal(t, 0, decoder.MaxDepth())
}

func TestNewWithInvalidOptions(t *testing.T) {
	_, err := resp3decoder.New(resp3decoder.WithMaxDepth(-1))
	assert.ErrorIs(t, err, resp3decoder.ErrInvalidConfig)

	_, err = resp3decoder.New(resp3decoder.WithLogger(nil))
	assert.ErrorIs(t, err, resp3decoder.ErrInvalidConfig)
}

func TestDecoderDecode(t *testing.T) {
	decoder, err := resp3decoder.New()
	require.NoError(t, err)

	input := []byte("%1\r\n+greeting\r\n$5\r\nhello\r\n")
	value, err := decoder.Decode(input)
	require.NoError(t, err)

	assert.Equal(t, protocol.TypeMap, value.Type)
	got, ok := value.MapGet("greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", got.Text())

	assert.Equal(t, int64(1), decoder.Stats.GetMessages())
	assert.Equal(t, int64(len(input)), decoder.Stats.GetBytesDecoded())
	assert.Equal(t, int64(1), decoder.Stats.GetMessageCount("map"))
	assert.Equal(t, int64(0), decoder.Stats.GetFailures())
}

func TestDecoderDecodeTrailingBytes(t *testing.T) {
	decoder, err := resp3decoder.New()
	require.NoError(t, err)

	// Only the first complete message is decoded
	value, err := decoder.Decode([]byte("+first\r\n+second\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "first", value.Text())

	// Consumed bytes, not buffer length, feed the stats
	assert.Equal(t, int64(len("+first\r\n")), decoder.Stats.GetBytesDecoded())
}

func TestDecoderDecodeError(t *testing.T) {
	logger := &captureLogger{}
	metrics := &captureMetrics{}

	decoder, err := resp3decoder.New(
		resp3decoder.WithLogger(logger),
		resp3decoder.WithMetrics(metrics),
	)
	require.NoError(t, err)

	_, err = decoder.Decode([]byte(":12a\r\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrInvalidCharacter)

	var de *protocol.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 1, de.Offset)

	assert.Equal(t, int64(1), decoder.Stats.GetFailures())
	assert.Equal(t, int64(0), decoder.Stats.GetMessages())

	require.Len(t, metrics.errorTypes(), 1)
	assert.Equal(t, protocol.ErrInvalidCharacter.Error(), metrics.errorTypes()[0])
	assert.NotEmpty(t, logger.messages(), "decode failures should be logged")
}

func TestDecoderMetrics(t *testing.T) {
	metrics := &captureMetrics{}

	decoder, err := resp3decoder.New(resp3decoder.WithMetrics(metrics))
	require.NoError(t, err)

	input := []byte("*2\r\n:1\r\n:2\r\n")
	_, err = decoder.Decode(input)
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.durationCount())
	assert.Equal(t, []string{"array"}, metrics.messageTypes())
	assert.Equal(t, int64(len(input)), metrics.totalBytes())
	assert.Empty(t, metrics.errorTypes())
}

func TestDecoderMaxDepth(t *testing.T) {
	decoder, err := resp3decoder.New(resp3decoder.WithMaxDepth(1))
	require.NoError(t, err)
	assert.Equal(t, 1, decoder.MaxDepth())

	_, err = decoder.Decode([]byte("*1\r\n*1\r\n:1\r\n"))
	assert.ErrorIs(t, err, protocol.ErrMaxDepthExceeded)

	_, err = decoder.Decode([]byte("*2\r\n:1\r\n:2\r\n"))
	assert.NoError(t, err)
}

func TestDecoderReaderSequence(t *testing.T) {
	decoder, err := resp3decoder.New()
	require.NoError(t, err)

	reader := decoder.Reader([]byte("|1\r\n+ttl\r\n:3600\r\n$4\r\ndata\r\n"))

	attr, err := reader.ReadNext()
	require.NoError(t, err)
	assert.Equal(t, protocol.TypeAttribute, attr.Type)

	reply, err := reader.ReadNext()
	require.NoError(t, err)
	assert.Equal(t, "data", reply.Text())

	assert.Zero(t, reader.Remaining())
}

func TestDecoderReaderCarriesMaxDepth(t *testing.T) {
	decoder, err := resp3decoder.New(resp3decoder.WithMaxDepth(1))
	require.NoError(t, err)

	reader := decoder.Reader([]byte("*1\r\n*1\r\n:1\r\n"))
	_, err = reader.ReadNext()
	assert.ErrorIs(t, err, protocol.ErrMaxDepthExceeded)
}

func TestPackageDecode(t *testing.T) {
	value, err := resp3decoder.Decode([]byte(":42\r\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), value.Int())

	_, err = resp3decoder.Decode([]byte(")42\r\n"))
	assert.ErrorIs(t, err, protocol.ErrUnsupported)
}

func TestDecoderConcurrent(t *testing.T) {
	decoder, err := resp3decoder.New()
	require.NoError(t, err)

	input := []byte("$5\r\nhello\r\n")
	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := decoder.Decode(input); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(workers*perWorker), decoder.Stats.GetMessages())
	assert.Equal(t, int64(workers*perWorker), decoder.Stats.GetMessageCount("blob-string"))
}

func TestVersionInfo(t *testing.T) {
	info := resp3decoder.VersionInfo()
	require.NotNil(t, info)
	assert.Equal(t, resp3decoder.Version, info["version"])
}

// Test helper types

type captureLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *captureLogger) Debug(msg string, fields ...resp3decoder.Field) { l.record(msg) }
func (l *captureLogger) Info(msg string, fields ...resp3decoder.Field)  { l.record(msg) }
func (l *captureLogger) Error(msg string, fields ...resp3decoder.Field) { l.record(msg) }

func (l *captureLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, msg)
}

func (l *captureLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

type captureMetrics struct {
	mu        sync.Mutex
	durations int
	messages  []string
	bytes     int64
	errors    []string
}

func (m *captureMetrics) RecordDecodeDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations++
}

func (m *captureMetrics) RecordMessage(valueType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, valueType)
}

func (m *captureMetrics) RecordMessageBytes(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytes += bytes
}

func (m *captureMetrics) RecordError(errorType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, errorType)
}

func (m *captureMetrics) durationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.durations
}

func (m *captureMetrics) messageTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

func (m *captureMetrics) totalBytes() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bytes
}

func (m *captureMetrics) errorTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errors...)
}
