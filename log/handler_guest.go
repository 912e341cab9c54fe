//go:build wasip1

package log

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/jsonffi/internal/abi"
)

//go:wasmimport jsonffi_host log_message
//nolint:revive // intentional snake_case to match WASM import convention
func host_log_message(messagePacked uint64)

// GuestHandler implements slog.Handler by forwarding records to the host.
type GuestHandler struct {
	attrs []slog.Attr
	level slog.Level
}

// NewGuestHandler creates a GuestHandler with the given options.
// Only the level option applies; the host decides formatting.
func NewGuestHandler(opts ...HandlerOption) *GuestHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &GuestHandler{level: cfg.level}
}

// Enabled reports whether the handler handles records at the given level.
func (h *GuestHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *GuestHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

// WithGroup is not supported on the wire; the handler is returned unchanged.
func (h *GuestHandler) WithGroup(string) slog.Handler {
	next := *h
	return &next
}

// Handle serializes the record and hands it to the host. The host reads the
// buffer during the import call and the guest releases it right after.
func (h *GuestHandler) Handle(_ context.Context, record slog.Record) error {
	if len(h.attrs) > 0 {
		record = record.Clone()
		record.AddAttrs(h.attrs...)
	}
	data, err := EncodeRecord(record)
	if err != nil {
		fmt.Printf("jsonffi: failed to marshal log message for host: %v, original: %s\n", err, record.Message)
		return nil
	}

	packed := abi.PtrFromBytes(data)
	host_log_message(packed)
	abi.DeallocatePacked(packed)
	return nil
}
