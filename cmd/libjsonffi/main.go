// Command libjsonffi builds the plugh boundary as a C shared library.
//
// Build:
//
//	go build -buildmode=c-shared -o libjsonffi.so ./cmd/libjsonffi
//
// Every char* returned by the library is owned by the library and must be
// passed to mylib_free_string exactly once. Requests stay owned by the
// caller and are never retained.
//
// Environment:
//
//	JSONFFI_LOG_LEVEL        debug, info, warn (default) or error
//	JSONFFI_GUARD            log (default) or abort, applied to invalid frees
//	JSONFFI_MAX_ALLOCATIONS  cap in bytes on memory held by unfreed responses
package main

/*
#include <stddef.h>
*/
import "C"

import (
	"os"
	"unsafe"

	"github.com/reglet-dev/jsonffi/internal/cabi"
	"github.com/reglet-dev/jsonffi/internal/config"
	"github.com/reglet-dev/jsonffi/internal/plugh"
)

func init() {
	settings, err := config.FromEnv()
	logger := settings.Apply(os.Stderr)
	if err != nil {
		logger.Warn("libjsonffi: ignoring invalid environment", "error", err.Error())
	}
	cabi.Register(plugh.Processor{}, logger)
}

// mylib_myfunc_str processes a NUL-terminated JSON request.
// Returns NULL only when request is NULL or the response cannot be allocated.
//
//export mylib_myfunc_str
func mylib_myfunc_str(request *C.char) *C.char {
	return (*C.char)(cabi.ProcessCString(unsafe.Pointer(request)))
}

// mylib_myfunc_buf processes a request of exactly length bytes.
//
//export mylib_myfunc_buf
func mylib_myfunc_buf(request *C.char, length C.size_t) *C.char {
	return (*C.char)(cabi.ProcessBuffer(unsafe.Pointer(request), int(length)))
}

// mylib_schema_str returns the request and response JSON Schemas.
//
//export mylib_schema_str
func mylib_schema_str() *C.char {
	return (*C.char)(cabi.SchemaCString())
}

// mylib_free_string releases a string returned by this library.
//
//export mylib_free_string
func mylib_free_string(s *C.char) {
	cabi.FreeCString(unsafe.Pointer(s))
}

func main() {}
