// Package scale2x implements the Scale2x family of pixel-art magnification
// kernels: 2x, 3x, 4x and the 2x3/2x4 variants that stretch rows.
//
// Every kernel reads width*height pixels of depth bytes from src (rows
// srcSlice bytes apart) and writes the magnified image into dst (rows
// dstSlice bytes apart). Pixels are only compared for equality, so 1, 2, 3
// and 4 byte pixels share one implementation. Neighbours outside the image
// repeat the nearest edge pixel.
//
// Row starts must be aligned to the pixel size; buffers from
// internal/buffer always are.
package scale2x

import (
	"fmt"
	"unsafe"
)

type pixel interface {
	comparable
	uint8 | uint16 | [3]uint8 | uint32
}

func view[P pixel](buf []byte, slice, y, n int) []P {
	if n == 0 {
		return nil
	}
	var zero P
	start := y * slice
	end := start + n*int(unsafe.Sizeof(zero))
	row := buf[start:end:end]
	return unsafe.Slice((*P)(unsafe.Pointer(&row[0])), n)
}

// frame describes one kernel invocation.
type frame struct {
	dst      []byte
	dstSlice int
	src      []byte
	srcSlice int
	width    int
	height   int
}

// rows returns the source rows above, at and below y, clamped to the image.
func rows[P pixel](f *frame, y int) (above, row, below []P) {
	row = view[P](f.src, f.srcSlice, y, f.width)
	above, below = row, row
	if y > 0 {
		above = view[P](f.src, f.srcSlice, y-1, f.width)
	}
	if y+1 < f.height {
		below = view[P](f.src, f.srcSlice, y+1, f.width)
	}
	return above, row, below
}

func run(depth int, f *frame, k8 func(*frame), k16 func(*frame), k24 func(*frame), k32 func(*frame)) {
	switch depth {
	case 1:
		k8(f)
	case 2:
		k16(f)
	case 3:
		k24(f)
	case 4:
		k32(f)
	default:
		panic(fmt.Sprintf("scale2x: unsupported pixel depth %d", depth))
	}
}

// Scale2x doubles the image in both directions. dst must hold 2*height rows
// of at least 2*width*depth bytes.
func Scale2x(dst []byte, dstSlice int, src []byte, srcSlice, depth, width, height int) {
	f := &frame{dst, dstSlice, src, srcSlice, width, height}
	run(depth, f, frame2x[uint8], frame2x[uint16], frame2x[[3]uint8], frame2x[uint32])
}

func frame2x[P pixel](f *frame) {
	w := f.width
	for y := 0; y < f.height; y++ {
		src0, src1, src2 := rows[P](f, y)
		dst0 := view[P](f.dst, f.dstSlice, 2*y, 2*w)
		dst1 := view[P](f.dst, f.dstSlice, 2*y+1, 2*w)
		border2x(dst0, src0, src1, src2)
		border2x(dst1, src2, src1, src0)
	}
}

// border2x writes the top output row of a 2x block for every pixel of src1.
// Passing the rows swapped (below, row, above) yields the bottom row.
func border2x[P pixel](dst, src0, src1, src2 []P) {
	last := len(src1) - 1
	for x := 0; x <= last; x++ {
		l, r := x-1, x+1
		if l < 0 {
			l = 0
		}
		if r > last {
			r = last
		}
		b, d, e, f, h := src0[x], src1[l], src1[x], src1[r], src2[x]
		if b != h && d != f {
			dst[2*x] = e
			dst[2*x+1] = e
			if d == b {
				dst[2*x] = d
			}
			if b == f {
				dst[2*x+1] = f
			}
		} else {
			dst[2*x] = e
			dst[2*x+1] = e
		}
	}
}

// center2x writes a middle output row of the 2x3 and 2x4 kernels.
func center2x[P pixel](dst, src0, src1, src2 []P) {
	last := len(src1) - 1
	for x := 0; x <= last; x++ {
		l, r := x-1, x+1
		if l < 0 {
			l = 0
		}
		if r > last {
			r = last
		}
		a, b, c := src0[l], src0[x], src0[r]
		d, e, f := src1[l], src1[x], src1[r]
		g, h, i := src2[l], src2[x], src2[r]
		dst[2*x] = e
		dst[2*x+1] = e
		if b != h && d != f {
			if (d == b && e != g) || (d == h && e != a) {
				dst[2*x] = d
			}
			if (f == b && e != i) || (f == h && e != c) {
				dst[2*x+1] = f
			}
		}
	}
}

// Scale2x3 doubles the width and triples the height.
func Scale2x3(dst []byte, dstSlice int, src []byte, srcSlice, depth, width, height int) {
	f := &frame{dst, dstSlice, src, srcSlice, width, height}
	run(depth, f, frame2x3[uint8], frame2x3[uint16], frame2x3[[3]uint8], frame2x3[uint32])
}

func frame2x3[P pixel](f *frame) {
	w := f.width
	for y := 0; y < f.height; y++ {
		src0, src1, src2 := rows[P](f, y)
		border2x(view[P](f.dst, f.dstSlice, 3*y, 2*w), src0, src1, src2)
		center2x(view[P](f.dst, f.dstSlice, 3*y+1, 2*w), src0, src1, src2)
		border2x(view[P](f.dst, f.dstSlice, 3*y+2, 2*w), src2, src1, src0)
	}
}

// Scale2x4 doubles the width and quadruples the height.
func Scale2x4(dst []byte, dstSlice int, src []byte, srcSlice, depth, width, height int) {
	f := &frame{dst, dstSlice, src, srcSlice, width, height}
	run(depth, f, frame2x4[uint8], frame2x4[uint16], frame2x4[[3]uint8], frame2x4[uint32])
}

func frame2x4[P pixel](f *frame) {
	w := f.width
	for y := 0; y < f.height; y++ {
		src0, src1, src2 := rows[P](f, y)
		border2x(view[P](f.dst, f.dstSlice, 4*y, 2*w), src0, src1, src2)
		center2x(view[P](f.dst, f.dstSlice, 4*y+1, 2*w), src0, src1, src2)
		center2x(view[P](f.dst, f.dstSlice, 4*y+2, 2*w), src2, src1, src0)
		border2x(view[P](f.dst, f.dstSlice, 4*y+3, 2*w), src2, src1, src0)
	}
}

// Scale4x applies Scale2x twice. mid is scratch space of 2*height rows,
// midSlice bytes each, large enough for a 2*width row.
func Scale4x(dst []byte, dstSlice int, mid []byte, midSlice int, src []byte, srcSlice, depth, width, height int) {
	Scale2x(mid, midSlice, src, srcSlice, depth, width, height)
	Scale2x(dst, dstSlice, mid, midSlice, depth, 2*width, 2*height)
}
