package buffer

import (
	"os"
	"strconv"
)

// minAlign is the alignment used when no wider SIMD word is available.
// It matches a 128-bit register (SSE2, NEON).
const minAlign = 16

// align is the detected alignment in bytes. Set by init() in align_*.go.
var align = minAlign

// Align returns the alignment, in bytes, that row slices and the first
// usable byte of every buffer are rounded to. It is the width of the widest
// SIMD word the kernels may use on this CPU.
func Align() int {
	return align
}

// DefaultPadding is the extra room every allocation reserves so the usable
// view can be moved forward to the first aligned byte.
func DefaultPadding() int {
	return align
}

// AlignedSlice rounds a row length in bytes up to the next multiple of
// Align(). It is monotonic and AlignedSlice(AlignedSlice(n)) == AlignedSlice(n).
func AlignedSlice(rowBytes int) int {
	if rowBytes <= 0 {
		return 0
	}
	return (rowBytes + align - 1) &^ (align - 1)
}

// NoSimdEnv reports whether SCALEX_NO_SIMD is set. Any non-empty value that
// does not parse as a boolean counts as true.
func NoSimdEnv() bool {
	val := os.Getenv("SCALEX_NO_SIMD")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}
