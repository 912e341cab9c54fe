package abi

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	domainerrors "github.com/reglet-dev/jsonffi/domain/errors"
)

// DefaultMaxTotalAllocations caps the bytes held by live allocations.
// This prevents unbounded growth when a caller forgets to free handles.
const DefaultMaxTotalAllocations = 100 * 1024 * 1024 // 100 MB

// GuardMode decides what happens when a caller frees a handle the
// allocator does not own.
type GuardMode int

const (
	// GuardLog logs the misuse and ignores the call.
	GuardLog GuardMode = iota
	// GuardAbort panics. Inside an exported C function this terminates the
	// process with a diagnosable message instead of corrupting the heap.
	GuardAbort
)

func (m GuardMode) String() string {
	switch m {
	case GuardLog:
		return "log"
	case GuardAbort:
		return "abort"
	default:
		return fmt.Sprintf("guard(%d)", int(m))
	}
}

// ParseGuardMode parses "log" or "abort" (case-insensitive).
func ParseGuardMode(s string) (GuardMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "log":
		return GuardLog, nil
	case "abort":
		return GuardAbort, nil
	default:
		return GuardLog, fmt.Errorf("unknown guard mode %q (want log or abort)", s)
	}
}

type config struct {
	logger              *slog.Logger
	maxTotalAllocations int
	guard               GuardMode
}

func defaultConfig() config {
	return config{
		maxTotalAllocations: DefaultMaxTotalAllocations,
		guard:               GuardLog,
	}
}

var settings = struct {
	sync.RWMutex
	cfg config
}{
	cfg: defaultConfig(),
}

// Option configures the allocator.
type Option func(*config)

// WithMaxTotalAllocations sets the allocation cap in bytes.
// Zero or negative limits are ignored.
func WithMaxTotalAllocations(limit int) Option {
	return func(c *config) {
		if limit > 0 {
			c.maxTotalAllocations = limit
		}
	}
}

// WithGuardMode sets the misuse policy.
func WithGuardMode(mode GuardMode) Option {
	return func(c *config) {
		c.guard = mode
	}
}

// WithLogger sets the logger used to report misuse. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Configure applies options to the process-wide allocator settings.
func Configure(opts ...Option) {
	settings.Lock()
	defer settings.Unlock()
	for _, opt := range opts {
		opt(&settings.cfg)
	}
}

func currentConfig() config {
	settings.RLock()
	defer settings.RUnlock()
	return settings.cfg
}

func (c config) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// reportMisuse applies the configured guard policy to a misuse.
func reportMisuse(err *domainerrors.MemoryMisuseError) {
	cfg := currentConfig()
	if cfg.guard == GuardAbort {
		panic("abi: " + err.Error())
	}
	cfg.log().Error("abi: memory misuse ignored",
		"op", err.Op,
		"addr", fmt.Sprintf("0x%x", err.Addr),
		"problem", err.Problem,
	)
}
