//go:build wasip1

package abi

import (
	"fmt"
	"sync"
	"unsafe"

	domainerrors "github.com/reglet-dev/jsonffi/domain/errors"
)

// memoryManager tracks all allocations made in WASM linear memory.
// It keeps a reference to allocated slices to prevent the Go GC from
// collecting them, pinning the memory until the host deallocates it.
var memoryManager = struct {
	sync.Mutex
	ptrs           map[uint32][]byte // ptr -> slice reference
	totalAllocated int
}{
	ptrs: make(map[uint32][]byte),
}

// allocate reserves memory in WASM linear memory and returns a pointer.
// The host calls it to place a CallerOwned request inside the guest.
// Panics if the allocation would exceed the configured cap.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	limit := currentConfig().maxTotalAllocations

	memoryManager.Lock()
	defer memoryManager.Unlock()

	if memoryManager.totalAllocated+int(size) > limit {
		panic(fmt.Sprintf("abi: memory allocation limit exceeded (requested: %d bytes, current: %d bytes, limit: %d bytes)",
			size, memoryManager.totalAllocated, limit))
	}

	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0])))

	memoryManager.ptrs[ptr] = buf
	memoryManager.totalAllocated += int(size)

	return ptr
}

// deallocate releases memory by dropping the pinned slice.
// The stored length is used for accounting, not the caller's size.
// Unknown pointers are reported through the guard policy.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, size uint32) {
	memoryManager.Lock()
	storedSlice, exists := memoryManager.ptrs[ptr]
	if exists {
		delete(memoryManager.ptrs, ptr)
		memoryManager.totalAllocated -= len(storedSlice)
		if memoryManager.totalAllocated < 0 {
			memoryManager.totalAllocated = 0
		}
	}
	memoryManager.Unlock()

	if !exists && ptr != 0 {
		reportMisuse(&domainerrors.MemoryMisuseError{
			Op:      "deallocate",
			Addr:    uintptr(ptr),
			Problem: fmt.Sprintf("pointer not owned by allocator (size %d)", size),
		})
	}
}

// FreeAllTracked frees all memory currently tracked.
// Called during panic recovery to prevent leaks.
func FreeAllTracked() {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	for ptr := range memoryManager.ptrs {
		delete(memoryManager.ptrs, ptr)
	}
	memoryManager.totalAllocated = 0
}

// Stats returns the number of live allocations and the bytes they hold.
func Stats() (count, totalBytes int) {
	memoryManager.Lock()
	defer memoryManager.Unlock()
	return len(memoryManager.ptrs), memoryManager.totalAllocated
}

// PtrFromBytes allocates linear memory, copies data into it and returns the
// packed pointer and length. The result is NativeOwned: the host must call
// deallocate once it has read it.
func PtrFromBytes(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	size := uint32(len(data))
	ptr := allocate(size)
	copyToMemory(ptr, data)
	return PackPtrLen(ptr, size)
}

// BytesFromPtr copies the CallerOwned buffer described by packed into Go memory.
func BytesFromPtr(packed uint64) []byte {
	ptr, length := UnpackPtrLen(packed)
	if ptr == 0 || length == 0 {
		return nil
	}
	return readFromMemory(ptr, length)
}

// DeallocatePacked unpacks a pointer/length pair and deallocates it.
func DeallocatePacked(packed uint64) {
	ptr, length := UnpackPtrLen(packed)
	if ptr != 0 && length > 0 {
		deallocate(ptr, length)
	}
}

func copyToMemory(ptr uint32, data []byte) {
	//nolint:gosec // G103: Valid unsafe.Pointer use for WASM linear memory access
	dest := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), len(data))
	copy(dest, data)
}

func readFromMemory(ptr uint32, length uint32) []byte {
	//nolint:gosec // G103: Valid unsafe.Pointer use for WASM linear memory access
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
	data := make([]byte, length)
	copy(data, src)
	return data
}
