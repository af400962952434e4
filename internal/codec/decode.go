package codec

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/davesmith10/scalex/internal/buffer"
	"github.com/davesmith10/scalex/internal/ir"
)

// fromImage copies a decoded image into an aligned buffer, keeping the
// narrowest pixel layout that represents it exactly.
func fromImage(img image.Image) (*ir.Image, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Paletted:
		m, err := alloc(1, w, h, ir.ColorPaletted, 1)
		if err != nil {
			return nil, err
		}
		copyRows(m, src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y))
		m.Palette = toPalette(src.Palette)
		return m, nil

	case *image.Gray:
		m, err := alloc(1, w, h, ir.ColorGray, 1)
		if err != nil {
			return nil, err
		}
		copyRows(m, src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y))
		return m, nil

	case *image.Gray16:
		m, err := alloc(2, w, h, ir.ColorGray16, 1)
		if err != nil {
			return nil, err
		}
		copyRows(m, src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y))
		return m, nil

	case *image.NRGBA:
		m, err := alloc(4, w, h, ir.ColorRGBA, 4)
		if err != nil {
			return nil, err
		}
		copyRows(m, src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y))
		return m, nil

	case *image.CMYK:
		m, err := alloc(4, w, h, ir.ColorCMYK, 4)
		if err != nil {
			return nil, err
		}
		copyRows(m, src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y))
		return m, nil

	case *image.RGBA:
		if src.Opaque() {
			m, err := alloc(3, w, h, ir.ColorRGB, 3)
			if err != nil {
				return nil, err
			}
			for y := 0; y < h; y++ {
				in := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
				out := m.Pix.Row(y)
				for x := 0; x < w; x++ {
					copy(out[3*x:3*x+3], in[4*x:4*x+3])
				}
			}
			return m, nil
		}
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	return fromImage(nrgba)
}

func alloc(depth, w, h int, ct ir.ColorType, channels int) (*ir.Image, error) {
	pix, err := buffer.Allocate(buffer.AlignedSlice(w*depth), h, buffer.DefaultPadding())
	if err != nil {
		return nil, err
	}
	return &ir.Image{
		Depth:    depth,
		Width:    w,
		Height:   h,
		Pix:      pix,
		Color:    ct,
		Channels: channels,
	}, nil
}

func copyRows(m *ir.Image, pix []byte, stride, start int) {
	n := m.RowBytes()
	for y := 0; y < m.Height; y++ {
		off := start + y*stride
		copy(m.Pix.Row(y), pix[off:off+n])
	}
}

func toPalette(p color.Palette) *ir.Palette {
	pal := &ir.Palette{RGB: make([][3]uint8, len(p))}
	alpha := make([]uint8, len(p))
	lastTranslucent := -1
	for i, c := range p {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		pal.RGB[i] = [3]uint8{n.R, n.G, n.B}
		alpha[i] = n.A
		if n.A != 0xff {
			lastTranslucent = i
		}
	}
	pal.Alpha = alpha[:lastTranslucent+1]
	return pal
}
