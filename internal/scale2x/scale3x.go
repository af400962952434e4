package scale2x

// Scale3x triples the image in both directions. dst must hold 3*height rows
// of at least 3*width*depth bytes.
func Scale3x(dst []byte, dstSlice int, src []byte, srcSlice, depth, width, height int) {
	f := &frame{dst, dstSlice, src, srcSlice, width, height}
	run(depth, f, frame3x[uint8], frame3x[uint16], frame3x[[3]uint8], frame3x[uint32])
}

func frame3x[P pixel](f *frame) {
	w := f.width
	for y := 0; y < f.height; y++ {
		src0, src1, src2 := rows[P](f, y)
		dst0 := view[P](f.dst, f.dstSlice, 3*y, 3*w)
		dst1 := view[P](f.dst, f.dstSlice, 3*y+1, 3*w)
		dst2 := view[P](f.dst, f.dstSlice, 3*y+2, 3*w)
		border3x(dst0, src0, src1, src2)
		center3x(dst1, src0, src1, src2)
		border3x(dst2, src2, src1, src0)
	}
}

// border3x writes the top output row of a 3x block. With the rows swapped it
// writes the bottom one.
func border3x[P pixel](dst, src0, src1, src2 []P) {
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
		h := src2[x]
		o := dst[3*x : 3*x+3]
		o[0], o[1], o[2] = e, e, e
		if b != h && d != f {
			if d == b {
				o[0] = d
			}
			if (d == b && e != c) || (b == f && e != a) {
				o[1] = b
			}
			if b == f {
				o[2] = f
			}
		}
	}
}

func center3x[P pixel](dst, src0, src1, src2 []P) {
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
		o := dst[3*x : 3*x+3]
		o[0], o[1], o[2] = e, e, e
		if b != h && d != f {
			if (d == b && e != g) || (d == h && e != a) {
				o[0] = d
			}
			if (b == f && e != i) || (h == f && e != c) {
				o[2] = f
			}
		}
	}
}
