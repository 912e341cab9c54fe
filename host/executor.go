package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Guest export names.
const (
	ExportAllocate        = "allocate"
	ExportDeallocate      = "deallocate"
	ExportProcess         = "process"
	ExportSchema          = "schema"
	ExportLiveAllocations = "live_allocations"
)

var (
	// ErrMissingExport is returned when a module lacks a required export.
	ErrMissingExport = errors.New("missing export")

	// ErrRequestTooLarge is returned when a request exceeds the configured cap.
	ErrRequestTooLarge = errors.New("request too large")

	// ErrNullResponse is returned when the guest hands back a null pointer.
	ErrNullResponse = errors.New("null response from guest")
)

// Executor owns a wazero runtime with WASI and the jsonffi_host module.
type Executor struct {
	runtime        wazero.Runtime
	logger         *slog.Logger
	maxRequestSize int
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{
		logger:         slog.Default(),
		maxRequestSize: DefaultMaxRequestSize,
	}
	for _, opt := range opts {
		opt(e)
	}

	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	e.runtime = rt

	if err := e.registerHostFunctions(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return e, nil
}

// Close releases resources held by the executor and every module it loaded.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Module is an instantiated boundary guest. Calls are serialized by the
// caller; a wazero module instance is not safe for concurrent use.
type Module struct {
	module         api.Module
	logger         *slog.Logger
	maxRequestSize int

	allocate   api.Function
	deallocate api.Function
	process    api.Function
}

// LoadModule compiles and instantiates wasmBytes as a reactor and checks
// that it exports the boundary ABI.
func (e *Executor) LoadModule(ctx context.Context, wasmBytes []byte) (*Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	exports := compiled.ExportedFunctions()
	for _, name := range []string{ExportAllocate, ExportDeallocate, ExportProcess} {
		if _, ok := exports[name]; !ok {
			_ = compiled.Close(ctx)
			return nil, fmt.Errorf("%w: %q", ErrMissingExport, name)
		}
	}

	cfg := wazero.NewModuleConfig().
		WithStartFunctions("_initialize").
		WithStderr(logWriter{logger: e.logger})
	mod, err := e.runtime.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	return &Module{
		module:         mod,
		logger:         e.logger,
		maxRequestSize: e.maxRequestSize,
		allocate:       mod.ExportedFunction(ExportAllocate),
		deallocate:     mod.ExportedFunction(ExportDeallocate),
		process:        mod.ExportedFunction(ExportProcess),
	}, nil
}

// Close closes the module instance.
func (m *Module) Close(ctx context.Context) error {
	return m.module.Close(ctx)
}
