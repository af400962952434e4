package scale

import (
	"errors"
	"fmt"
)

// RowMultiple is the granularity, in bytes, every source row must be a
// multiple of. The kernels may read whole 8-byte words at a time.
const RowMultiple = 8

var (
	// ErrPrecondition is wrapped by every geometry failure.
	ErrPrecondition = errors.New("source bitmap size")

	ErrPixelDepth   = fmt.Errorf("%w: unsupported pixel depth", ErrPrecondition)
	ErrTooSmall     = fmt.Errorf("%w: bitmap too small", ErrPrecondition)
	ErrUnalignedRow = fmt.Errorf("%w: row width not a multiple of %d bytes", ErrPrecondition, RowMultiple)
)

// Check reports whether a depth-byte, width x height bitmap can be fed to
// the kernel for f. It has no side effects and must pass before any
// destination buffer is allocated.
func Check(f Factor, depth, width, height int) error {
	if depth < 1 || depth > 4 {
		return fmt.Errorf("%w: %d bytes per pixel", ErrPixelDepth, depth)
	}
	if width < 2 || height < f.MinRows() {
		return fmt.Errorf("%w: %dx%d, %s needs at least 2x%d", ErrTooSmall, width, height, f, f.MinRows())
	}
	if rowBytes := width * depth; rowBytes%RowMultiple != 0 {
		return fmt.Errorf("%w: %d pixels of %d bytes is %d bytes", ErrUnalignedRow, width, depth, rowBytes)
	}
	return nil
}
