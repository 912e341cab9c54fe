// Package config reads the process-wide settings of the shared library
// from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/reglet-dev/jsonffi/internal/abi"
	"github.com/reglet-dev/jsonffi/log"
)

// Environment variables recognised by Load.
const (
	EnvLogLevel       = "JSONFFI_LOG_LEVEL"
	EnvGuard          = "JSONFFI_GUARD"
	EnvMaxAllocations = "JSONFFI_MAX_ALLOCATIONS"
)

// DefaultLogLevel keeps a host application's stderr quiet unless something
// goes wrong.
const DefaultLogLevel = slog.LevelWarn

// Settings are the resolved runtime settings.
type Settings struct {
	LogLevel            slog.Level
	Guard               abi.GuardMode
	MaxTotalAllocations int
}

// Defaults returns the settings used when no variable is set.
func Defaults() Settings {
	return Settings{
		LogLevel:            DefaultLogLevel,
		Guard:               abi.GuardLog,
		MaxTotalAllocations: abi.DefaultMaxTotalAllocations,
	}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load resolves settings through lookup. Invalid values keep their default
// and are reported together in the returned error, so callers can still use
// the settings.
func Load(lookup LookupFunc) (Settings, error) {
	s := Defaults()
	var errs []error

	if v, ok := OptionalString(lookup, EnvLogLevel); ok {
		level, err := log.ParseLevel(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvLogLevel, err))
		} else {
			s.LogLevel = level
		}
	}

	if v, ok := OptionalString(lookup, EnvGuard); ok {
		mode, err := abi.ParseGuardMode(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvGuard, err))
		} else {
			s.Guard = mode
		}
	}

	if n, ok, err := OptionalInt(lookup, EnvMaxAllocations); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", EnvMaxAllocations, err))
	} else if ok {
		if n <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %d", EnvMaxAllocations, n))
		} else {
			s.MaxTotalAllocations = n
		}
	}

	return s, errors.Join(errs...)
}

// FromEnv is Load over the process environment.
func FromEnv() (Settings, error) {
	return Load(os.LookupEnv)
}

// Apply configures the allocator and returns the logger the library should
// use, writing to w (stderr when nil).
func (s Settings) Apply(w io.Writer) *slog.Logger {
	logger := log.NewLogger(log.WithLevel(s.LogLevel), log.WithWriter(w))
	abi.Configure(
		abi.WithGuardMode(s.Guard),
		abi.WithMaxTotalAllocations(s.MaxTotalAllocations),
		abi.WithLogger(logger),
	)
	return logger
}

// OptionalString returns the trimmed value of key and whether it is set to
// something non-empty.
func OptionalString(lookup LookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// OptionalInt parses key as a base-10 integer. Unset or empty values report
// ok=false without an error.
func OptionalInt(lookup LookupFunc, key string) (n int, ok bool, err error) {
	v, set := OptionalString(lookup, key)
	if !set {
		return 0, false, nil
	}
	n, err = strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("not an integer: %q", v)
	}
	return n, true, nil
}
