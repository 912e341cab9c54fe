package host

import "log/slog"

// DefaultMaxRequestSize caps requests copied into guest memory.
const DefaultMaxRequestSize = 16 * 1024 * 1024 // 16 MB

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithLogger sets the logger for executor events and guest log records.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxRequestSize caps the request size in bytes. Values <= 0 are ignored.
func WithMaxRequestSize(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxRequestSize = n
		}
	}
}
