package codec

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davesmith10/scalex/internal/buffer"
	"github.com/davesmith10/scalex/internal/ir"
	"github.com/davesmith10/scalex/internal/jpeg"
)

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func load(t *testing.T, path string) *ir.Image {
	t.Helper()
	m, err := Load(path)
	require.NoError(t, err)
	t.Cleanup(m.Release)
	return m
}

// sameColors compares the pixels of m against want through the NRGBA model.
func sameColors(t *testing.T, want image.Image, m *ir.Image) {
	t.Helper()
	got, err := toImage(m)
	require.NoError(t, err)
	b := want.Bounds()
	require.Equal(t, b.Dx(), got.Bounds().Dx())
	require.Equal(t, b.Dy(), got.Bounds().Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			w := color.NRGBAModel.Convert(want.At(b.Min.X+x, b.Min.Y+y))
			g := color.NRGBAModel.Convert(got.At(x, y))
			require.Equal(t, w, g, "pixel (%d,%d)", x, y)
		}
	}
}

func palettedSprite() *image.Paletted {
	pal := color.Palette{
		color.NRGBA{0, 0, 0, 0},
		color.NRGBA{255, 0, 0, 255},
		color.NRGBA{0, 0, 255, 255},
	}
	img := image.NewPaletted(image.Rect(0, 0, 16, 8), pal)
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 3)
	}
	return img
}

func translucentNRGBA(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 16), uint8(y * 16), 99, uint8(128 + x)})
		}
	}
	return img
}

func TestLoadLayouts(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 8, 4))
	gray16 := image.NewGray16(image.Rect(0, 0, 4, 4))
	rgb := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i)
	}
	for i := range gray16.Pix {
		gray16.Pix[i] = uint8(i * 3)
	}
	for i := range rgb.Pix {
		rgb.Pix[i] = uint8(i)
		if i%4 == 3 {
			rgb.Pix[i] = 0xff
		}
	}

	tests := []struct {
		name     string
		img      image.Image
		depth    int
		ct       ir.ColorType
		channels int
	}{
		{"paletted", palettedSprite(), 1, ir.ColorPaletted, 1},
		{"gray", gray, 1, ir.ColorGray, 1},
		{"gray16", gray16, 2, ir.ColorGray16, 1},
		{"rgb", rgb, 3, ir.ColorRGB, 3},
		{"rgba", translucentNRGBA(8, 4), 4, ir.ColorRGBA, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := load(t, writePNG(t, tt.img))
			assert.Equal(t, "png", m.Format)
			assert.Equal(t, tt.depth, m.Depth)
			assert.Equal(t, tt.ct, m.Color)
			assert.Equal(t, tt.channels, m.Channels)
			assert.Equal(t, tt.img.Bounds().Dx(), m.Width)
			assert.Equal(t, tt.img.Bounds().Dy(), m.Height)
			assert.Zero(t, m.Stride()%buffer.Align())
			assert.GreaterOrEqual(t, m.Stride(), m.RowBytes())
			sameColors(t, tt.img, m)
		})
	}
}

func TestLoadPalette(t *testing.T) {
	m := load(t, writePNG(t, palettedSprite()))
	require.Equal(t, 3, m.Palette.Len())
	assert.Equal(t, [3]uint8{255, 0, 0}, m.Palette.RGB[1])
	assert.Equal(t, []uint8{0}, m.Palette.Alpha)
}

func TestLoadNormalisesOtherModels(t *testing.T) {
	img := image.NewRGBA64(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.Set(x, 0, color.NRGBA{10, 20, 30, 255})
		img.Set(x, 1, color.NRGBA{40, 50, 60, 255})
	}
	path := filepath.Join(t.TempDir(), "wide.tiff")
	m, err := fromImage(img)
	require.NoError(t, err)
	defer m.Release()
	assert.Equal(t, 4, m.Depth)
	assert.Equal(t, ir.ColorRGBA, m.Color)

	require.NoError(t, Store(path, m))
	back := load(t, path)
	assert.Equal(t, "tiff", back.Format)
	sameColors(t, img, back)
}

func TestStoreRoundTrip(t *testing.T) {
	opaque := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for i := range opaque.Pix {
		opaque.Pix[i] = uint8(i * 5)
		if i%4 == 3 {
			opaque.Pix[i] = 0xff
		}
	}

	for _, ext := range []string{".png", ".bmp", ".tif", ".gif"} {
		t.Run(ext, func(t *testing.T) {
			src := image.Image(opaque)
			if ext == ".gif" {
				src = palettedSprite()
			}
			m := load(t, writePNG(t, src))
			dst := filepath.Join(t.TempDir(), "out"+ext)
			require.NoError(t, Store(dst, m))
			sameColors(t, src, load(t, dst))
		})
	}

	t.Run("translucent png", func(t *testing.T) {
		src := translucentNRGBA(8, 8)
		m := load(t, writePNG(t, src))
		dst := filepath.Join(t.TempDir(), "out.png")
		require.NoError(t, Store(dst, m))
		back := load(t, dst)
		assert.Equal(t, 4, back.Depth)
		sameColors(t, src, back)
	})
}

func TestStoreModes(t *testing.T) {
	m := load(t, writePNG(t, palettedSprite()))
	dst := filepath.Join(t.TempDir(), "out.png")

	require.NoError(t, Store(dst, m))
	st, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, DefaultMode, st.Mode().Perm())
	assert.NotZero(t, st.Mode().Perm()&0o044, "group and other cannot read the output")

	require.NoError(t, os.Chmod(dst, 0o640))
	require.NoError(t, Store(dst, m))
	st, err = os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), st.Mode().Perm(), "replaced file lost its mode")
}

func TestJPEGRoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range src.Pix {
		src.Pix[i] = 0x80
		if i%4 == 3 {
			src.Pix[i] = 0xff
		}
	}
	m := load(t, writePNG(t, src))
	dst := filepath.Join(t.TempDir(), "out.jpg")
	require.NoError(t, Store(dst, m))

	back := load(t, dst)
	assert.Equal(t, "jpeg", back.Format)
	assert.Equal(t, 3, back.Depth)
	assert.Equal(t, ir.ColorRGB, back.Color)
	assert.Equal(t, 8, back.Width)
	assert.InDelta(t, 0x80, int(back.Pix.Row(3)[4]), 4)
}

// writeCMYKJPEG stores an 8x4 CMYK JPEG whose samples are all ink.
func writeCMYKJPEG(t *testing.T, ink [4]byte) string {
	t.Helper()
	pix := make([]byte, 8*4*4)
	for i := range pix {
		pix[i] = ink[i%4]
	}
	data, err := jpeg.Encode(pix, 8*4, 8, 4, 4, nil, jpeg.EncoderOptions{Quality: 100})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "ink.jpg")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestCMYKJPEG(t *testing.T) {
	m := load(t, writeCMYKJPEG(t, [4]byte{20, 200, 90, 240}))
	assert.Equal(t, ir.ColorCMYK, m.Color)
	assert.Equal(t, 4, m.Depth)
	assert.True(t, m.Inverted)

	img, err := toImage(m)
	require.NoError(t, err)
	c := img.At(2, 2).(color.CMYK)
	assert.InDelta(t, 255-20, int(c.C), 4)
	assert.InDelta(t, 255-240, int(c.K), 4)

	t.Run("to png", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "out.png")
		require.NoError(t, Store(dst, m))
		sameColors(t, img, load(t, dst))
	})

	t.Run("to jpeg", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "out.jpg")
		require.NoError(t, Store(dst, m))
		back := load(t, dst)
		assert.Equal(t, ir.ColorCMYK, back.Color)
		assert.True(t, back.Inverted)
		assert.InDelta(t, 200, int(back.Pix.Row(1)[4*3+1]), 4)
	})
}

func TestLoadErrors(t *testing.T) {
	before := buffer.Live()
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, ErrIO)

	junk := filepath.Join(dir, "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0644))
	_, err = Load(junk)
	assert.ErrorIs(t, err, ErrFormat)

	assert.Equal(t, before, buffer.Live())
}

func TestStoreErrorsLeaveNothing(t *testing.T) {
	m := load(t, writePNG(t, palettedSprite()))
	dir := t.TempDir()

	err := Store(filepath.Join(dir, "out.webp"), m)
	assert.ErrorIs(t, err, ErrFormat)

	err = Store(filepath.Join(dir, "missing", "out.png"), m)
	assert.ErrorIs(t, err, ErrIO)

	bad := *m
	bad.Color = 0
	err = Store(filepath.Join(dir, "out.png"), &bad)
	assert.ErrorIs(t, err, ErrFormat)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed stores left files behind")
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []string{".bmp", ".gif", ".jpeg", ".jpg", ".png", ".tif", ".tiff"}, Formats())
}
