package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackPtrLen(t *testing.T) {
	tests := []struct {
		name   string
		ptr    uint32
		length uint32
		want   uint64
	}{
		{
			name:   "typical values",
			ptr:    0x12345678,
			length: 0xABCDEF00,
			want:   (uint64(0x12345678) << PtrHighBits) | uint64(0xABCDEF00),
		},
		{
			name:   "zero pointer zero length",
			ptr:    0,
			length: 0,
			want:   0,
		},
		{
			name:   "max pointer",
			ptr:    0xFFFFFFFF,
			length: 1,
			want:   (uint64(0xFFFFFFFF) << PtrHighBits) | 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := PackPtrLen(tt.ptr, tt.length)
			assert.Equal(t, tt.want, packed, "packed value mismatch")

			gotPtr, gotLen := UnpackPtrLen(packed)
			assert.Equal(t, tt.ptr, gotPtr, "unpacked pointer mismatch")
			assert.Equal(t, tt.length, gotLen, "unpacked length mismatch")
		})
	}
}

func TestPackPtrLen_PanicsOnNullPointerWithLength(t *testing.T) {
	assert.Panics(t, func() {
		PackPtrLen(0, 100)
	}, "expected panic for null pointer with non-zero length")
}

func TestUnpackPtrLen_PanicsOnInvalidPacked(t *testing.T) {
	assert.Panics(t, func() {
		UnpackPtrLen(uint64(1))
	}, "expected panic for invalid packed value")
}

func TestOwnership_String(t *testing.T) {
	assert.Equal(t, "caller-owned", CallerOwned.String())
	assert.Equal(t, "native-owned", NativeOwned.String())
	assert.Equal(t, "ownership(7)", Ownership(7).String())
}

func TestParseGuardMode(t *testing.T) {
	tests := []struct {
		input   string
		want    GuardMode
		wantErr bool
	}{
		{input: "", want: GuardLog},
		{input: "log", want: GuardLog},
		{input: " ABORT ", want: GuardAbort},
		{input: "explode", want: GuardLog, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseGuardMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuardMode_String(t *testing.T) {
	assert.Equal(t, "log", GuardLog.String())
	assert.Equal(t, "abort", GuardAbort.String())
}

func TestConfigure_InvalidLimitIgnored(t *testing.T) {
	Configure(WithMaxTotalAllocations(0), WithMaxTotalAllocations(-100))
	assert.Equal(t, DefaultMaxTotalAllocations, currentConfig().maxTotalAllocations)
}
