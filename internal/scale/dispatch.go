package scale

import (
	"fmt"

	"github.com/davesmith10/scalex/internal/buffer"
	"github.com/davesmith10/scalex/internal/scale2x"
)

// Scaler forwards one call to the kernel for a factor. It owns the scratch
// rows the two-pass 4x kernel needs, so once Prepare has run, Scale never
// allocates and never fails. A Scaler is not safe for concurrent use.
type Scaler struct {
	mid *buffer.Buffer
}

// NewScaler returns a dispatcher with no scratch space allocated yet.
func NewScaler() *Scaler {
	return &Scaler{}
}

// Prepare allocates whatever scratch space f needs for a width x height
// source of depth-byte pixels. It is the only step of a scale that can fail.
func (s *Scaler) Prepare(f Factor, depth, width, height int) error {
	if f != Factor4x4 {
		return nil
	}
	slice, rows := buffer.AlignedSlice(2*width*depth), 2*height
	if s.mid != nil && s.mid.Slice == slice && s.mid.Height == rows {
		return nil
	}
	s.Close()
	mid, err := buffer.Allocate(slice, rows, buffer.DefaultPadding())
	if err != nil {
		return fmt.Errorf("4x scratch: %w", err)
	}
	s.mid = mid
	return nil
}

// Scale fills dst with the f-magnified copy of src. The geometry must already
// have passed Check, Prepare must have run for it, and dst must hold
// height*f.Y() rows of at least width*depth*f.X() bytes.
func (s *Scaler) Scale(f Factor, dst []byte, dstSlice int, src []byte, srcSlice, depth, width, height int) {
	switch f {
	case Factor2x2:
		scale2x.Scale2x(dst, dstSlice, src, srcSlice, depth, width, height)
	case Factor2x3:
		scale2x.Scale2x3(dst, dstSlice, src, srcSlice, depth, width, height)
	case Factor2x4:
		scale2x.Scale2x4(dst, dstSlice, src, srcSlice, depth, width, height)
	case Factor3x3:
		scale2x.Scale3x(dst, dstSlice, src, srcSlice, depth, width, height)
	case Factor4x4:
		if s.mid == nil || s.mid.Height != 2*height || s.mid.Slice < 2*width*depth {
			panic("scale: 4x scratch not prepared for this geometry")
		}
		scale2x.Scale4x(dst, dstSlice, s.mid.Bytes(), s.mid.Slice, src, srcSlice, depth, width, height)
	default:
		panic(fmt.Sprintf("scale: no kernel for %v", f))
	}
}

// Close releases the scratch space. The Scaler can be prepared again.
func (s *Scaler) Close() {
	s.mid.Release()
	s.mid = nil
}
