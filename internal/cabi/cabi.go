//go:build cgo && !wasip1

// Package cabi implements the C calling convention of the boundary on top
// of a boundary.Bridge: requests arrive as caller-owned C strings or
// buffers, and responses leave as native-owned C strings that must be
// returned through FreeCString.
package cabi

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"unsafe"

	"github.com/reglet-dev/jsonffi/application/boundary"
	"github.com/reglet-dev/jsonffi/domain/entities"
	domainerrors "github.com/reglet-dev/jsonffi/domain/errors"
	"github.com/reglet-dev/jsonffi/domain/ports"
	"github.com/reglet-dev/jsonffi/internal/abi"
)

var (
	bridge atomic.Pointer[boundary.Bridge]
	logger atomic.Pointer[slog.Logger]
)

// Register installs the processor served by the exported functions.
// It replaces any previous registration.
func Register(p ports.Processor, l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	logger.Store(l)
	bridge.Store(boundary.New(p, boundary.WithLogger(l)))
}

func currentLogger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// ProcessCString handles a NUL-terminated request. It returns nil only for
// a nil request or when the response could not be allocated.
func ProcessCString(req unsafe.Pointer) unsafe.Pointer {
	if req == nil {
		return nil
	}
	return respond(abi.CStringBytes(req))
}

// ProcessBuffer handles a request of exactly n bytes, which may contain NUL.
func ProcessBuffer(req unsafe.Pointer, n int) unsafe.Pointer {
	if req == nil || n < 0 {
		return nil
	}
	return respond(abi.BufferBytes(req, n))
}

// SchemaCString returns the schema document as a native-owned C string.
// Failures are reported as an Err envelope.
func SchemaCString() (handle unsafe.Pointer) {
	defer recoverAlloc(&handle)

	b := bridge.Load()
	if b == nil {
		return abi.AllocCString(notRegistered())
	}
	doc, err := b.Schema()
	if err != nil {
		currentLogger().Error("cabi: schema generation failed", "error", err.Error())
		return abi.AllocCString(b.Encode(domainerrors.ToEnvelope(err)))
	}
	return abi.AllocCString(doc)
}

// FreeCString releases a handle returned by this package. A nil handle is
// a no-op; misuse is handled according to the allocator's GuardMode.
func FreeCString(handle unsafe.Pointer) {
	abi.Release(handle)
}

func respond(raw []byte) (handle unsafe.Pointer) {
	defer recoverAlloc(&handle)

	b := bridge.Load()
	if b == nil {
		return abi.AllocCString(notRegistered())
	}
	return abi.AllocCString(b.Respond(raw))
}

// recoverAlloc turns an allocator panic into a nil handle.
func recoverAlloc(handle *unsafe.Pointer) {
	if r := recover(); r != nil {
		currentLogger().Error("cabi: response allocation failed", "error", fmt.Sprint(r))
		*handle = nil
	}
}

func notRegistered() []byte {
	env := domainerrors.ToEnvelope(&domainerrors.InternalError{Value: "no processor registered"})
	data, err := env.MarshalJSON()
	if err != nil {
		return []byte(entities.EncodeFallback)
	}
	return data
}
