package resp3decoder

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// Logger interface for custom logging implementations
type Logger interface {
	// Debug logs a debug message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info message with optional fields
	Info(msg string, fields ...Field)

	// Error logs an error message with optional fields
	Error(msg string, fields ...Field)
}

// MetricsCollector interface for metrics collection
type MetricsCollector interface {
	// RecordDecodeDuration records the time taken to decode one message
	RecordDecodeDuration(duration time.Duration)

	// RecordMessage records a successfully decoded message by type name
	RecordMessage(valueType string)

	// RecordMessageBytes records the wire size of a decoded message
	RecordMessageBytes(bytes int64)

	// RecordError records a decode failure by taxonomy name
	RecordError(errorType string)
}

// DecodeStats provides decode counters for monitoring
type DecodeStats struct {
	mu sync.RWMutex

	// Volume stats
	Messages     int64
	BytesDecoded int64
	Failures     int64

	// Per-type message counts, keyed by ValueType names
	MessagesByType map[string]int64
}

// GetMessages returns the number of successfully decoded messages (thread-safe)
func (s *DecodeStats) GetMessages() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Messages
}

// GetBytesDecoded returns the total wire bytes decoded (thread-safe)
func (s *DecodeStats) GetBytesDecoded() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.BytesDecoded
}

// GetFailures returns the number of failed decodes (thread-safe)
func (s *DecodeStats) GetFailures() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Failures
}

// GetMessageCount returns the count for a specific value type (thread-safe)
func (s *DecodeStats) GetMessageCount(valueType string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MessagesByType[valueType]
}

func (s *DecodeStats) recordMessage(valueType string, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages++
	s.BytesDecoded += bytes
	if s.MessagesByType != nil {
		s.MessagesByType[valueType]++
	}
}

func (s *DecodeStats) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failures++
}

// defaultLogger is a simple logger implementation using the standard log package
type defaultLogger struct{}

func (l *defaultLogger) Debug(msg string, fields ...Field) {
	l.logWithFields("DEBUG", msg, fields...)
}

func (l *defaultLogger) Info(msg string, fields ...Field) {
	l.logWithFields("INFO", msg, fields...)
}

func (l *defaultLogger) Error(msg string, fields ...Field) {
	l.logWithFields("ERROR", msg, fields...)
}

func (l *defaultLogger) logWithFields(level, msg string, fields ...Field) {
	logMsg := level + ": " + msg
	for _, field := range fields {
		logMsg += " " + field.Key + "=" + formatValue(field.Value)
	}
	log.Println(logMsg)
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case error:
		return val.Error()
	default:
		return fmt.Sprintf("%v", val)
	}
}
