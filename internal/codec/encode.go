package codec

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/davesmith10/scalex/internal/ir"
	"github.com/davesmith10/scalex/internal/jpeg"
)

type encodeFunc func(w io.Writer, m *ir.Image) error

var encoders = map[string]encodeFunc{
	".png":  encodePNG,
	".gif":  encodeGIF,
	".bmp":  encodeBMP,
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
	".jpg":  encodeJPEG,
	".jpeg": encodeJPEG,
}

func encodePNG(w io.Writer, m *ir.Image) error {
	img, err := toImage(m)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return wrapIO(enc.Encode(w, img))
}

func encodeGIF(w io.Writer, m *ir.Image) error {
	img, err := toImage(m)
	if err != nil {
		return err
	}
	return wrapIO(gif.Encode(w, img, nil))
}

func encodeBMP(w io.Writer, m *ir.Image) error {
	img, err := toImage(m)
	if err != nil {
		return err
	}
	return wrapIO(bmp.Encode(w, img))
}

func encodeTIFF(w io.Writer, m *ir.Image) error {
	img, err := toImage(m)
	if err != nil {
		return err
	}
	return wrapIO(tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}))
}

func encodeJPEG(w io.Writer, m *ir.Image) error {
	var (
		pix    []byte
		stride int
		comps  int
	)
	switch m.Color {
	case ir.ColorGray, ir.ColorRGB:
		pix, stride, comps = m.Pix.Bytes(), m.Stride(), m.Depth
	case ir.ColorCMYK:
		if m.Inverted {
			pix, stride, comps = m.Pix.Bytes(), m.Stride(), 4
			break
		}
		pix, stride, comps = invertRows(m), m.RowBytes(), 4
	default:
		img, err := toImage(m)
		if err != nil {
			return err
		}
		pix, stride, comps = packRGB(img), 3*m.Width, 3
	}
	data, err := jpeg.Encode(pix, stride, m.Width, m.Height, comps, m.ICC, jpeg.EncoderOptions{})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFormat, err)
	}
	_, err = w.Write(data)
	return wrapIO(err)
}

func wrapIO(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// toImage views m's rows as a standard library image. Layouts that exist in
// the standard library alias the buffer directly; packed RGB is expanded.
func toImage(m *ir.Image) (image.Image, error) {
	r := image.Rect(0, 0, m.Width, m.Height)
	pix, stride := m.Pix.Bytes(), m.Stride()

	switch m.Color {
	case ir.ColorPaletted:
		return &image.Paletted{Pix: pix, Stride: stride, Rect: r, Palette: fromPalette(m.Palette)}, nil
	case ir.ColorGray:
		return &image.Gray{Pix: pix, Stride: stride, Rect: r}, nil
	case ir.ColorGray16:
		return &image.Gray16{Pix: pix, Stride: stride, Rect: r}, nil
	case ir.ColorRGBA:
		return &image.NRGBA{Pix: pix, Stride: stride, Rect: r}, nil
	case ir.ColorCMYK:
		if !m.Inverted {
			return &image.CMYK{Pix: pix, Stride: stride, Rect: r}, nil
		}
		return &image.CMYK{Pix: invertRows(m), Stride: m.RowBytes(), Rect: r}, nil
	case ir.ColorRGB:
		out := image.NewRGBA(r)
		for y := 0; y < m.Height; y++ {
			in := m.Pix.Row(y)
			o := out.Pix[y*out.Stride:]
			for x := 0; x < m.Width; x++ {
				copy(o[4*x:4*x+3], in[3*x:3*x+3])
				o[4*x+3] = 0xff
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: colour type %v", ErrFormat, m.Color)
	}
}

// invertRows packs the active bytes of m's rows, each sample flipped to
// 255-v. It converts between plain and Adobe CMYK in either direction.
func invertRows(m *ir.Image) []byte {
	n := m.RowBytes()
	out := make([]byte, 0, n*m.Height)
	for y := 0; y < m.Height; y++ {
		for _, v := range m.Pix.Row(y)[:n] {
			out = append(out, 255-v)
		}
	}
	return out
}

func fromPalette(p *ir.Palette) color.Palette {
	out := make(color.Palette, p.Len())
	for i, c := range p.RGB {
		a := uint8(0xff)
		if i < len(p.Alpha) {
			a = p.Alpha[i]
		}
		out[i] = color.NRGBA{R: c[0], G: c[1], B: c[2], A: a}
	}
	return out
}

func packRGB(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, 0, 3*b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out = append(out, c.R, c.G, c.B)
		}
	}
	return out
}
