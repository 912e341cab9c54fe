package host

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/jsonffi/domain/entities"
	"github.com/reglet-dev/jsonffi/internal/abi"
	"github.com/reglet-dev/jsonffi/log"
	"github.com/tetratelabs/wazero/api"
)

func (e *Executor) registerHostFunctions(ctx context.Context) error {
	builder := e.runtime.NewHostModuleBuilder(log.HostModule)

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, packed uint64) {
			ptr, length := unpack(packed)
			payload, ok := m.Memory().Read(ptr, length)
			if !ok {
				e.logger.Warn("host: guest log record out of bounds", "ptr", ptr, "len", length)
				return
			}

			msg, err := log.DecodeMessage(payload)
			if err != nil {
				e.logger.Info("host: guest log (raw)", "payload", string(payload))
				return
			}
			msg.Emit(ctx, e.logger.With("module", m.Name()))
		}).
		Export(log.HostLogFunc)

	_, err := builder.Instantiate(ctx)
	return err
}

// Process sends req to the guest and returns a copy of the serialized
// envelope. Both the request and the response buffers are released in the
// guest before Process returns.
func (m *Module) Process(ctx context.Context, req []byte) ([]byte, error) {
	if len(req) > m.maxRequestSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrRequestTooLarge, len(req), m.maxRequestSize)
	}

	ptr, err := m.write(ctx, req)
	if err != nil {
		return nil, err
	}

	results, callErr := m.process.Call(ctx, uint64(ptr), uint64(len(req)))
	if ptr != 0 {
		if err := m.free(ctx, ptr, uint32(len(req))); err != nil { //nolint:gosec // bounded by maxRequestSize
			m.logger.Warn("host: failed to release request buffer", "error", err.Error())
		}
	}
	if callErr != nil {
		return nil, fmt.Errorf("process call failed: %w", callErr)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("process returned no results")
	}
	return m.take(ctx, results[0])
}

// ProcessEnvelope is Process followed by envelope decoding.
func (m *Module) ProcessEnvelope(ctx context.Context, req []byte, strict bool) (entities.Envelope, error) {
	data, err := m.Process(ctx, req)
	if err != nil {
		return entities.Envelope{}, err
	}
	return entities.ParseEnvelope(data, strict)
}

// Schema returns the guest's schema document.
func (m *Module) Schema(ctx context.Context) ([]byte, error) {
	f := m.module.ExportedFunction(ExportSchema)
	if f == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingExport, ExportSchema)
	}
	results, err := f.Call(ctx)
	if err != nil {
		return nil, fmt.Errorf("schema call failed: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("schema returned no results")
	}
	return m.take(ctx, results[0])
}

// LiveAllocations reports the guest allocator's live buffer count.
func (m *Module) LiveAllocations(ctx context.Context) (int, error) {
	f := m.module.ExportedFunction(ExportLiveAllocations)
	if f == nil {
		return 0, fmt.Errorf("%w: %q", ErrMissingExport, ExportLiveAllocations)
	}
	results, err := f.Call(ctx)
	if err != nil {
		return 0, fmt.Errorf("live_allocations call failed: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("live_allocations returned no results")
	}
	return int(api.DecodeU32(results[0])), nil
}

// write copies data into a fresh guest buffer. Empty data needs no buffer
// and yields pointer 0.
func (m *Module) write(ctx context.Context, data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, nil
	}
	results, err := m.allocate.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate in guest: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("allocate returned no results")
	}
	ptr := api.DecodeU32(results[0])
	if !m.module.Memory().Write(ptr, data) {
		_ = m.free(ctx, ptr, uint32(len(data))) //nolint:gosec // bounded by maxRequestSize
		return 0, fmt.Errorf("failed to write request to guest memory")
	}
	return ptr, nil
}

// take copies a packed native-owned buffer out of the guest and frees it.
func (m *Module) take(ctx context.Context, packed uint64) ([]byte, error) {
	ptr, length := unpack(packed)
	if ptr == 0 || length == 0 {
		return nil, ErrNullResponse
	}
	view, ok := m.module.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("failed to read response from guest memory")
	}
	out := make([]byte, length)
	copy(out, view)

	if err := m.free(ctx, ptr, length); err != nil {
		return out, fmt.Errorf("failed to release response buffer: %w", err)
	}
	return out, nil
}

// unpack splits a packed value without trusting it; abi.UnpackPtrLen
// panics on malformed input, which a guest must not be able to trigger.
func unpack(packed uint64) (ptr, length uint32) {
	return uint32(packed >> abi.PtrHighBits), uint32(packed) //nolint:gosec // intentional truncation
}

func (m *Module) free(ctx context.Context, ptr, length uint32) error {
	_, err := m.deallocate.Call(ctx, uint64(ptr), uint64(length))
	return err
}

// logWriter forwards guest stderr lines to a logger.
type logWriter struct {
	logger *slog.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) > 0 {
			w.logger.Info("host: guest stderr", "line", string(line))
		}
	}
	return len(p), nil
}
