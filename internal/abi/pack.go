// Package abi implements the byte buffer ownership protocol: who allocates a
// buffer that crosses the boundary, and who must release it.
//
// Two allocators share the same rules. Native builds (cgo) hand out
// NUL-terminated C heap buffers through AllocCString and take them back
// through Free. WASM builds (wasip1) export allocate/deallocate over linear
// memory and exchange buffers as packed pointer/length pairs. In both cases
// every allocation is tracked until it is released exactly once.
package abi

import "fmt"

// PtrHighBits is the shift applied to the pointer half of a packed value.
const PtrHighBits = 32

// Ownership tags which side of the boundary must release a buffer.
type Ownership int

const (
	// CallerOwned buffers are allocated by the caller. The library reads
	// them during a call and never retains or releases them.
	CallerOwned Ownership = iota
	// NativeOwned buffers are allocated by the library. The caller must
	// release them exactly once through the paired free function.
	NativeOwned
)

func (o Ownership) String() string {
	switch o {
	case CallerOwned:
		return "caller-owned"
	case NativeOwned:
		return "native-owned"
	default:
		return fmt.Sprintf("ownership(%d)", int(o))
	}
}

// PackPtrLen packs a pointer and length into a single uint64.
// Pointer is stored in the high 32 bits, length in the low 32 bits.
// Panics if ptr is 0 and length > 0, indicating an invalid state.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid pack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return (uint64(ptr) << PtrHighBits) | uint64(length)
}

// UnpackPtrLen unpacks a uint64 into its original pointer and length.
// Panics if ptr is 0 and length > 0, indicating an invalid packed value.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> PtrHighBits)
	length = uint32(packed)
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid unpack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return ptr, length
}
