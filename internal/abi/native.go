//go:build cgo && !wasip1

package abi

/*
#include <stdlib.h>
#include <string.h>
*/
import "C"

import (
	"encoding/binary"
	"fmt"
	"sync"
	"unsafe"

	domainerrors "github.com/reglet-dev/jsonffi/domain/errors"
)

// Every native allocation is laid out as
//
//	[tag uint32][length uint32][payload ...][NUL]
//	                           ^ handle returned to the caller
//
// The tag is checked on release and poisoned before the block goes back to
// the C heap.
const (
	headerSize = 8
	tagLive    = uint32(0x4a534f4e) // "JSON"
	tagFreed   = uint32(0xdeadf4ee)
)

// handles tracks live native allocations by payload address.
// Addresses refer to C memory, so keeping them as uintptr is safe.
var handles = struct {
	sync.Mutex
	live           map[uintptr]int // payload addr -> payload length
	totalAllocated int
}{
	live: make(map[uintptr]int),
}

// AllocCString copies data into a new NUL-terminated C heap buffer and
// returns a NativeOwned handle to its first byte. Ownership passes to the
// caller, who must release it with Free exactly once.
// Panics if the allocation cap would be exceeded or malloc fails.
func AllocCString(data []byte) unsafe.Pointer {
	size := headerSize + len(data) + 1
	limit := currentConfig().maxTotalAllocations

	handles.Lock()
	defer handles.Unlock()

	if handles.totalAllocated+size > limit {
		panic(fmt.Sprintf("abi: memory allocation limit exceeded (requested: %d bytes, current: %d bytes, limit: %d bytes)",
			size, handles.totalAllocated, limit))
	}

	base := C.malloc(C.size_t(size))
	if base == nil {
		panic("abi: out of memory")
	}

	block := unsafe.Slice((*byte)(base), size)
	binary.LittleEndian.PutUint32(block[0:4], tagLive)
	binary.LittleEndian.PutUint32(block[4:8], uint32(len(data))) //nolint:gosec // bounded by the allocation cap
	copy(block[headerSize:], data)
	block[size-1] = 0

	payload := unsafe.Add(base, headerSize)
	handles.live[uintptr(payload)] = len(data)
	handles.totalAllocated += size

	return payload
}

// Free releases a handle returned by AllocCString. A nil handle is a no-op.
//
// Handles the allocator does not own (already freed, or never allocated
// here) are rejected without being touched, and reported as a
// *errors.MemoryMisuseError. A live handle whose header tag was overwritten
// is still released, and the corruption is reported.
func Free(handle unsafe.Pointer) error {
	if handle == nil {
		return nil
	}
	addr := uintptr(handle)

	handles.Lock()
	length, ok := handles.live[addr]
	if !ok {
		handles.Unlock()
		return &domainerrors.MemoryMisuseError{
			Op:      "free",
			Addr:    addr,
			Problem: "handle not owned by allocator (double free or foreign pointer)",
		}
	}
	delete(handles.live, addr)
	handles.totalAllocated -= headerSize + length + 1
	if handles.totalAllocated < 0 {
		handles.totalAllocated = 0
	}
	handles.Unlock()

	base := unsafe.Add(handle, -headerSize)
	header := unsafe.Slice((*byte)(base), headerSize)
	tag := binary.LittleEndian.Uint32(header[0:4])
	stored := int(binary.LittleEndian.Uint32(header[4:8]))

	binary.LittleEndian.PutUint32(header[0:4], tagFreed)
	C.free(base)

	if tag != tagLive || stored != length {
		return &domainerrors.MemoryMisuseError{
			Op:      "free",
			Addr:    addr,
			Problem: "allocation header corrupted",
		}
	}
	return nil
}

// Release frees a handle and applies the configured GuardMode to misuse.
func Release(handle unsafe.Pointer) {
	if err := Free(handle); err != nil {
		if misuse, ok := err.(*domainerrors.MemoryMisuseError); ok {
			reportMisuse(misuse)
		}
	}
}

// Owns reports whether handle is a live allocation of this allocator.
func Owns(handle unsafe.Pointer) bool {
	handles.Lock()
	defer handles.Unlock()
	_, ok := handles.live[uintptr(handle)]
	return ok
}

// CStringBytes copies the NUL-terminated string at p into Go memory.
// The caller keeps ownership of p. Returns nil for a nil pointer.
func CStringBytes(p unsafe.Pointer) []byte {
	if p == nil {
		return nil
	}
	n := int(C.strlen((*C.char)(p)))
	return BufferBytes(p, n)
}

// BufferBytes copies n bytes starting at p into Go memory.
// The caller keeps ownership of p. Returns nil for a nil pointer.
func BufferBytes(p unsafe.Pointer, n int) []byte {
	if p == nil || n < 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(p), n))
	return out
}

// Stats returns the number of live allocations and the bytes they hold,
// headers and terminators included.
func Stats() (count, totalBytes int) {
	handles.Lock()
	defer handles.Unlock()
	return len(handles.live), handles.totalAllocated
}

// FreeAllTracked releases every live allocation.
// It exists for test isolation and shutdown; handles held by callers become
// invalid.
func FreeAllTracked() {
	handles.Lock()
	defer handles.Unlock()

	for addr := range handles.live {
		base := unsafe.Add(unsafe.Pointer(addr), -headerSize) //nolint:govet // C heap address
		binary.LittleEndian.PutUint32(unsafe.Slice((*byte)(base), 4), tagFreed)
		C.free(base)
		delete(handles.live, addr)
	}
	handles.totalAllocated = 0
}
