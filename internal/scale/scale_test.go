package scale

import (
	"bytes"
	"testing"

	"github.com/davesmith10/scalex/internal/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFactor(t *testing.T) {
	tests := []struct {
		in   string
		want Factor
		err  error
	}{
		{"2", Factor2x2, nil},
		{"3", Factor3x3, nil},
		{"4", Factor4x4, nil},
		{"2x2", Factor2x2, nil},
		{"2x3", Factor2x3, nil},
		{"2x4", Factor2x4, nil},
		{"3x3", Factor3x3, nil},
		{"4x4", Factor4x4, nil},
		{"5", 0, ErrInvalidFactor},
		{"", 0, ErrInvalidFactor},
		{"x", 0, ErrInvalidFactor},
		{"2x", 0, ErrInvalidFactor},
		{"0x2", 0, ErrInvalidFactor},
		{"2x-1", 0, ErrInvalidFactor},
		{"axb", 0, ErrInvalidFactor},
		{"3x2", 0, ErrUnsupported},
		{"1x1", 0, ErrUnsupported},
		{"5x5", 0, ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFactor(tt.in)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				assert.False(t, got.Valid())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFactorRatios(t *testing.T) {
	want := map[Factor]string{
		Factor2x2: "2x2", Factor2x3: "2x3", Factor2x4: "2x4", Factor3x3: "3x3", Factor4x4: "4x4",
	}
	for _, f := range Supported() {
		assert.Equal(t, want[f], f.String())
		assert.Equal(t, f.X()*100+f.Y(), f.Key())
		back, err := ParseFactor(f.Flag())
		require.NoError(t, err)
		assert.Equal(t, f, back)
	}
	assert.Equal(t, "2, 2x3, 2x4, 3 and 4", ValidValues())
	assert.Equal(t, "Factor(0)", Factor(0).String())
}

func TestCheck(t *testing.T) {
	for _, f := range Supported() {
		assert.NoError(t, Check(f, 4, 16, 16), f.String())
		assert.NoError(t, Check(f, 1, 8, 8), f.String())
		assert.NoError(t, Check(f, 2, 4, f.MinRows()), f.String())

		assert.ErrorIs(t, Check(f, 1, 10, 16), ErrUnalignedRow, f.String())
		assert.ErrorIs(t, Check(f, 1, 0, 16), ErrTooSmall, f.String())
		assert.ErrorIs(t, Check(f, 4, 1, 16), ErrTooSmall, f.String())
		assert.ErrorIs(t, Check(f, 4, 16, f.MinRows()-1), ErrTooSmall, f.String())
		assert.ErrorIs(t, Check(f, 5, 16, 16), ErrPixelDepth, f.String())
		assert.ErrorIs(t, Check(f, 0, 16, 16), ErrPixelDepth, f.String())

		for _, err := range []error{Check(f, 1, 10, 16), Check(f, 4, 1, 1), Check(f, 8, 8, 8)} {
			assert.ErrorIs(t, err, ErrPrecondition)
		}
	}
	assert.NoError(t, Check(Factor2x2, 4, 2, 2))
	assert.ErrorIs(t, Check(Factor4x4, 4, 2, 3), ErrTooSmall)
	assert.NoError(t, Check(Factor2x2, 3, 8, 2))
	assert.ErrorIs(t, Check(Factor2x2, 3, 10, 2), ErrUnalignedRow)
}

func allocate(t *testing.T, rowBytes, rows int) *buffer.Buffer {
	t.Helper()
	b, err := buffer.Allocate(buffer.AlignedSlice(rowBytes), rows, buffer.DefaultPadding())
	require.NoError(t, err)
	t.Cleanup(b.Release)
	return b
}

func TestScalerRepeatable(t *testing.T) {
	const depth, w, h = 4, 16, 16
	src := allocate(t, w*depth, h)
	pix := src.Bytes()
	for i := range pix {
		pix[i] = byte((i / depth) % 3)
	}
	orig := append([]byte(nil), pix...)

	s := NewScaler()
	defer s.Close()
	for _, f := range Supported() {
		require.NoError(t, Check(f, depth, w, h))
		require.NoError(t, s.Prepare(f, depth, w, h))

		a := allocate(t, w*depth*f.X(), h*f.Y())
		b := allocate(t, w*depth*f.X(), h*f.Y())
		s.Scale(f, a.Bytes(), a.Slice, src.Bytes(), src.Slice, depth, w, h)
		s.Scale(f, b.Bytes(), b.Slice, src.Bytes(), src.Slice, depth, w, h)

		assert.True(t, bytes.Equal(a.Bytes(), b.Bytes()), "%s not repeatable", f)
		assert.Equal(t, orig, src.Bytes(), "%s modified the source", f)
	}
}

func TestScalerPrepareReuse(t *testing.T) {
	s := NewScaler()
	require.NoError(t, s.Prepare(Factor4x4, 1, 8, 8))
	mid := s.mid
	require.NoError(t, s.Prepare(Factor4x4, 1, 8, 8))
	assert.Same(t, mid, s.mid)

	// A different height changes the scratch rows whatever the alignment.
	require.NoError(t, s.Prepare(Factor4x4, 1, 8, 12))
	assert.True(t, mid.Released())
	assert.NotSame(t, mid, s.mid)

	s.Close()
	assert.Nil(t, s.mid)
}

func TestScalerInvariantViolations(t *testing.T) {
	src := allocate(t, 8, 4)
	dst := allocate(t, 32, 16)
	s := NewScaler()
	assert.Panics(t, func() {
		s.Scale(Factor(42), dst.Bytes(), dst.Slice, src.Bytes(), src.Slice, 1, 8, 4)
	})
	assert.Panics(t, func() {
		s.Scale(Factor4x4, dst.Bytes(), dst.Slice, src.Bytes(), src.Slice, 1, 8, 4)
	})
}
