package resp3decoder

// config holds the configuration for a Decoder
type config struct {
	// Decoding limits
	maxDepth int

	// Observability
	logger  Logger
	metrics MetricsCollector
}

// defaultConfig returns a configuration with sensible defaults
func defaultConfig() *config {
	return &config{
		maxDepth: 0, // unlimited nesting
		logger:   &defaultLogger{},
	}
}

// Option represents a configuration option for a Decoder
type Option func(*config) error

// WithMaxDepth bounds aggregate nesting while decoding
// When set to 0, no limit is enforced (the default)
//
// Example:
//
//	WithMaxDepth(64) // reject input nested deeper than 64 levels
func WithMaxDepth(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return ErrInvalidConfig
		}
		c.maxDepth = n
		return nil
	}
}

// WithLogger sets a custom logger for the decoder
//
// Example:
//
//	WithLogger(myCustomLogger)
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return ErrInvalidConfig
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics enables metrics collection with the provided collector
//
// Example:
//
//	WithMetrics(myMetricsCollector)
func WithMetrics(collector MetricsCollector) Option {
	return func(c *config) error {
		c.metrics = collector
		return nil
	}
}
