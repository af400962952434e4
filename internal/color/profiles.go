// Package color inspects ICC profiles carried through a scale untouched.
// No colour conversion happens anywhere in scalex; this is only for
// reporting what an image embeds.
package color

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const (
	maxProfileSize = 4 * 1024 * 1024 // 4 MB
	acspMagic      = 0x61637370      // 'acsp'
)

// ProfileInfo contains metadata parsed from an ICC profile header.
type ProfileInfo struct {
	Size       uint32
	Version    string
	ColorSpace string // "RGB ", "CMYK", etc.
	PCS        string // "XYZ ", "Lab "
	Class      string // "mntr", "prtr", "scnr", etc.
}

// ParseProfileInfo reads ICC header metadata from raw profile bytes.
func ParseProfileInfo(data []byte) (*ProfileInfo, error) {
	if len(data) < 128 {
		return nil, errors.New("ICC profile too short (< 128 bytes)")
	}
	if uint32(len(data)) > maxProfileSize {
		return nil, fmt.Errorf("ICC profile too large (%d bytes, max %d)", len(data), maxProfileSize)
	}
	if sig := binary.BigEndian.Uint32(data[36:40]); sig != acspMagic {
		return nil, fmt.Errorf("invalid ICC signature: 0x%08x (expected 0x%08x)", sig, acspMagic)
	}

	return &ProfileInfo{
		Size:       binary.BigEndian.Uint32(data[0:4]),
		Version:    fmt.Sprintf("%d.%d.%d", data[8], data[9]>>4, data[9]&0x0f),
		ColorSpace: string(data[16:20]),
		PCS:        string(data[20:24]),
		Class:      string(data[12:16]),
	}, nil
}

// Describe is a one-line summary such as "4.3.0 RGB Display profile".
func (p *ProfileInfo) Describe() string {
	return fmt.Sprintf("%s %s %s profile", p.Version, ColorSpaceName(p.ColorSpace), ProfileClassName(p.Class))
}

var colorSpaceNames = map[string]string{
	"RGB ": "RGB",
	"CMYK": "CMYK",
	"GRAY": "Grayscale",
	"Lab ": "CIELAB",
	"XYZ ": "CIEXYZ",
}

// ColorSpaceName returns a human-readable name for an ICC color space signature.
func ColorSpaceName(sig string) string {
	if name, ok := colorSpaceNames[sig]; ok {
		return name
	}
	return strings.TrimSpace(sig)
}

var profileClassNames = map[string]string{
	"mntr": "Display",
	"prtr": "Output",
	"scnr": "Input",
	"link": "DeviceLink",
	"spac": "ColorSpace",
	"abst": "Abstract",
	"nmcl": "NamedColor",
}

// ProfileClassName returns a human-readable name for an ICC profile class.
func ProfileClassName(sig string) string {
	if name, ok := profileClassNames[sig]; ok {
		return name
	}
	return strings.TrimSpace(sig)
}
