package ir

import "github.com/davesmith10/scalex/internal/buffer"

// ColorType is the pixel layout an image was decoded from, kept so the
// store step can write the same layout back.
type ColorType int

const (
	ColorGray ColorType = iota + 1
	ColorGray16
	ColorRGB
	ColorRGBA
	ColorPaletted
	ColorCMYK
)

func (c ColorType) String() string {
	switch c {
	case ColorGray:
		return "gray"
	case ColorGray16:
		return "gray16"
	case ColorRGB:
		return "rgb"
	case ColorRGBA:
		return "rgba"
	case ColorPaletted:
		return "paletted"
	case ColorCMYK:
		return "cmyk"
	default:
		return "unknown"
	}
}

// Image is the intermediate representation passed between the codec, the
// geometry check and the kernels. Rows of Width*Depth bytes start every
// Pix.Slice bytes in Pix.Bytes().
type Image struct {
	Depth    int // bytes per pixel, 1..4
	Width    int
	Height   int
	Pix      *buffer.Buffer
	Color    ColorType
	Channels int
	Palette  *Palette // nil unless Color == ColorPaletted
	ICC      []byte   // embedded ICC profile, nil if absent
	Inverted bool     // ColorCMYK only: 255 means no ink (Adobe JPEG)
	Format   string   // codec the image was read with
}

// Stride is the distance in bytes between two rows.
func (m *Image) Stride() int {
	return m.Pix.Slice
}

// RowBytes is the active part of a row, without padding.
func (m *Image) RowBytes() int {
	return m.Width * m.Depth
}

// Release frees the pixel buffer and the palette. It is safe to call more
// than once.
func (m *Image) Release() {
	if m == nil {
		return
	}
	m.Pix.Release()
	m.Palette.Release()
}

// Palette is an ordered list of RGB entries, with an optional alpha per
// entry for formats that carry transparency.
type Palette struct {
	RGB   [][3]uint8
	Alpha []uint8 // len(Alpha) <= len(RGB); missing entries are opaque
}

// Len is the number of entries.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.RGB)
}

// Release drops the entries. Later calls do nothing.
func (p *Palette) Release() {
	if p == nil {
		return
	}
	p.RGB = nil
	p.Alpha = nil
}
