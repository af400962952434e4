// Package buffer allocates pixel buffers whose rows start on the alignment
// boundary the scaling kernels expect.
package buffer

import (
	"errors"
	"fmt"
	"math/bits"
	"sync/atomic"
	"unsafe"
)

// ErrLowMemory is returned when an allocation cannot be satisfied.
var ErrLowMemory = errors.New("low memory")

// MaxAlloc caps a single allocation in bytes. Requests above it fail with
// ErrLowMemory instead of reaching the runtime allocator.
var MaxAlloc = 1 << 40

var live atomic.Int64

// Live returns the number of buffers allocated and not yet released.
func Live() int64 {
	return live.Load()
}

// Buffer is one owned allocation plus the offset of its first aligned byte.
// The usable region is Slice*Height bytes long and starts at that offset.
type Buffer struct {
	raw    []byte
	off    int
	Slice  int // bytes per row, including alignment padding
	Height int // rows
}

// Allocate requests slice*height+padding bytes and positions the usable view
// on the first Align() boundary inside the block.
func Allocate(slice, height, padding int) (*Buffer, error) {
	if slice < 0 || height < 0 || padding < 0 {
		return nil, fmt.Errorf("%w: negative size %dx%d+%d", ErrLowMemory, slice, height, padding)
	}
	hi, usable := bits.Mul64(uint64(slice), uint64(height))
	if hi != 0 || usable > uint64(MaxAlloc) || uint64(padding) > uint64(MaxAlloc)-usable {
		return nil, fmt.Errorf("%w: %d rows of %d bytes", ErrLowMemory, height, slice)
	}
	size := int(usable) + padding

	raw, err := makeBytes(size)
	if err != nil {
		return nil, err
	}

	off := 0
	if size > 0 {
		addr := uintptr(unsafe.Pointer(&raw[0]))
		off = int((uintptr(align) - addr%uintptr(align)) % uintptr(align))
	}
	if off+int(usable) > len(raw) {
		return nil, fmt.Errorf("%w: padding %d cannot absorb alignment offset %d", ErrLowMemory, padding, off)
	}

	live.Add(1)
	return &Buffer{raw: raw, off: off, Slice: slice, Height: height}, nil
}

func makeBytes(size int) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = fmt.Errorf("%w: %v", ErrLowMemory, r)
		}
	}()
	return make([]byte, size), nil
}

// Bytes returns the usable, aligned region. It is nil after Release.
func (b *Buffer) Bytes() []byte {
	if b == nil || b.raw == nil {
		return nil
	}
	return b.raw[b.off : b.off+b.Slice*b.Height]
}

// Row returns row y, Slice bytes long.
func (b *Buffer) Row(y int) []byte {
	start := b.off + y*b.Slice
	return b.raw[start : start+b.Slice]
}

// Offset is the distance from the start of the raw block to the aligned view.
func (b *Buffer) Offset() int {
	return b.off
}

// Cap is the size of the raw block.
func (b *Buffer) Cap() int {
	return len(b.raw)
}

// Release drops the raw block. Calling it again, or on a nil buffer, does
// nothing.
func (b *Buffer) Release() {
	if b == nil || b.raw == nil {
		return
	}
	b.raw = nil
	live.Add(-1)
}

// Released reports whether Release has run.
func (b *Buffer) Released() bool {
	return b.raw == nil
}
