//go:build !cgo || wasip1

package main

import (
	"errors"
	"log/slog"
)

func newNativeRunner(*slog.Logger) (runner, error) {
	return nil, errors.New("built without cgo: the native ABI is unavailable, use -wasm")
}
