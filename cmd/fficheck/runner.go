package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/reglet-dev/jsonffi/host"
)

func newRunner(ctx context.Context, opts options, logger *slog.Logger) (runner, error) {
	if opts.wasm != "" {
		return newWasmRunner(ctx, opts.wasm, logger)
	}
	return newNativeRunner(logger)
}

// wasmRunner drives a module through the wazero host.
type wasmRunner struct {
	executor *host.Executor
	*host.Module
}

func newWasmRunner(ctx context.Context, path string, logger *slog.Logger) (runner, error) {
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	executor, err := host.NewExecutor(ctx, host.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	mod, err := executor.LoadModule(ctx, wasmBytes)
	if err != nil {
		_ = executor.Close(ctx)
		return nil, err
	}
	return &wasmRunner{executor: executor, Module: mod}, nil
}

func (r *wasmRunner) Close(ctx context.Context) error {
	return r.executor.Close(ctx)
}
