//go:build wasip1

// Command jsonffi-wasm builds the plugh boundary as a WASM reactor module.
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o jsonffi.wasm ./cmd/jsonffi-wasm
//
// Run it through the host package or `fficheck -wasm jsonffi.wasm`.
package main

import (
	"log/slog"

	"github.com/reglet-dev/jsonffi/internal/guest"
	"github.com/reglet-dev/jsonffi/internal/plugh"
	"github.com/reglet-dev/jsonffi/log"
)

func init() {
	guest.Register(plugh.Processor{}, log.WithLevel(slog.LevelWarn))
}

func main() {}
