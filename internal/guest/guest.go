//go:build wasip1

// Package guest exports the boundary from a WASM module.
//
// Exports (besides allocate and deallocate from internal/abi):
//
//	process(ptr, len uint32) uint64   request in, packed response out
//	schema() uint64                   packed schema document
//	live_allocations() uint32         allocator counter, for leak checks
//
// Every packed response is native-owned: the host reads it and hands it
// back through deallocate.
package guest

import (
	"log/slog"
	"sync/atomic"

	"github.com/reglet-dev/jsonffi/application/boundary"
	domainerrors "github.com/reglet-dev/jsonffi/domain/errors"
	"github.com/reglet-dev/jsonffi/domain/ports"
	"github.com/reglet-dev/jsonffi/internal/abi"
	"github.com/reglet-dev/jsonffi/log"
)

var bridge atomic.Pointer[boundary.Bridge]

// Register installs the processor served by the exports and routes slog
// output to the host.
func Register(p ports.Processor, opts ...log.HandlerOption) {
	logger := slog.New(log.NewGuestHandler(opts...))
	slog.SetDefault(logger)
	abi.Configure(abi.WithLogger(logger))
	bridge.Store(boundary.New(p, boundary.WithLogger(logger)))
}

//go:wasmexport process
func process(ptr uint32, length uint32) uint64 {
	raw := abi.BytesFromPtr(abi.PackPtrLen(ptr, length))

	b := bridge.Load()
	if b == nil {
		slog.Error("guest: process called before Register")
		return notRegistered()
	}
	return abi.PtrFromBytes(b.Respond(raw))
}

//go:wasmexport schema
func schema() uint64 {
	b := bridge.Load()
	if b == nil {
		return notRegistered()
	}
	doc, err := b.Schema()
	if err != nil {
		slog.Error("guest: schema generation failed", "error", err.Error())
		return abi.PtrFromBytes(b.Encode(domainerrors.ToEnvelope(err)))
	}
	return abi.PtrFromBytes(doc)
}

//go:wasmexport live_allocations
func liveAllocations() uint32 {
	count, _ := abi.Stats()
	return uint32(count) //nolint:gosec // bounded by the allocation cap
}

func notRegistered() uint64 {
	env := domainerrors.ToEnvelope(&domainerrors.InternalError{Value: "no processor registered"})
	return abi.PtrFromBytes(boundary.New(nil).Encode(env))
}
