// Package codec reads and writes the raster files scalex works on and
// converts them to and from the ir.Image layout the kernels consume.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/davesmith10/scalex/internal/ir"
	"github.com/davesmith10/scalex/internal/jpeg"
)

var (
	// ErrIO wraps failures reading or writing files.
	ErrIO = errors.New("i/o error")

	// ErrFormat wraps undecodable input and unsupported output formats.
	ErrFormat = errors.New("unsupported or corrupt image")
)

// Load reads and decodes the image at path into an aligned buffer. The
// caller owns the result and must Release it.
func Load(path string) (*ir.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	if isJPEG(data) {
		return loadJPEG(path, data)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, path, err)
	}
	m, err := fromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Format = format
	return m, nil
}

func isJPEG(data []byte) bool {
	return len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
}

func loadJPEG(path string, data []byte) (*ir.Image, error) {
	dec, err := jpeg.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, path, err)
	}
	m := &ir.Image{
		Depth:    dec.Components,
		Width:    dec.Width,
		Height:   dec.Height,
		Pix:      dec.Pix,
		Color:    ir.ColorRGB,
		Channels: dec.Components,
		ICC:      dec.ICC,
		Format:   "jpeg",
	}
	switch dec.Components {
	case 1:
		m.Color = ir.ColorGray
	case 4:
		m.Color = ir.ColorCMYK
		m.Inverted = dec.Inverted
	}
	return m, nil
}

// Store encodes m to path, choosing the format from the file extension. The
// file is written next to its destination under a temporary name and
// renamed into place, so a failed store never leaves a partial file at path.
func Store(path string, m *ir.Image) (err error) {
	enc, ok := encoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("%w: no encoder for %q (supported: %s)", ErrFormat, filepath.Ext(path), strings.Join(Formats(), " "))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = enc(tmp, m); err != nil {
		return err
	}
	if err = tmp.Chmod(storeMode(path)); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// DefaultMode is the permission of a newly stored file.
const DefaultMode os.FileMode = 0o644

// storeMode keeps the permissions of a file being replaced.
func storeMode(path string) os.FileMode {
	if st, err := os.Stat(path); err == nil && st.Mode().IsRegular() {
		return st.Mode().Perm()
	}
	return DefaultMode
}

// Formats lists the file extensions Store accepts.
func Formats() []string {
	exts := lo.Keys(encoders)
	slices.Sort(exts)
	return exts
}
