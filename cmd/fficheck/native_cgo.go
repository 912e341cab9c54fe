//go:build cgo && !wasip1

package main

import (
	"context"
	"errors"
	"log/slog"
	"unsafe"

	"github.com/reglet-dev/jsonffi/internal/abi"
	"github.com/reglet-dev/jsonffi/internal/cabi"
	"github.com/reglet-dev/jsonffi/internal/plugh"
)

// nativeRunner calls the C ABI in-process, exactly as a foreign caller of
// libjsonffi would: pass a buffer, read the returned string, free it.
type nativeRunner struct{}

func newNativeRunner(logger *slog.Logger) (runner, error) {
	abi.Configure(abi.WithLogger(logger))
	cabi.Register(plugh.Processor{}, logger)
	return &nativeRunner{}, nil
}

func (nativeRunner) Process(_ context.Context, req []byte) ([]byte, error) {
	n := len(req)
	if n == 0 {
		// A zero-length request still needs a non-null pointer.
		req = []byte{0}
	}
	handle := cabi.ProcessBuffer(unsafe.Pointer(&req[0]), n)
	if handle == nil {
		return nil, errors.New("boundary returned a null handle")
	}
	out := abi.CStringBytes(handle)
	cabi.FreeCString(handle)
	return out, nil
}

func (nativeRunner) LiveAllocations(context.Context) (int, error) {
	count, _ := abi.Stats()
	return count, nil
}

func (nativeRunner) Close(context.Context) error {
	return nil
}
