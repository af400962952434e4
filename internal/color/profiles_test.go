package color

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(space, class string) []byte {
	h := make([]byte, 128)
	binary.BigEndian.PutUint32(h[0:4], 128)
	h[8], h[9] = 4, 0x30
	copy(h[12:16], class)
	copy(h[16:20], space)
	copy(h[20:24], "XYZ ")
	binary.BigEndian.PutUint32(h[36:40], acspMagic)
	return h
}

func TestParseProfileInfo(t *testing.T) {
	pi, err := ParseProfileInfo(header("RGB ", "mntr"))
	require.NoError(t, err)
	assert.Equal(t, uint32(128), pi.Size)
	assert.Equal(t, "4.3.0", pi.Version)
	assert.Equal(t, "RGB ", pi.ColorSpace)
	assert.Equal(t, "4.3.0 RGB Display profile", pi.Describe())
}

func TestParseProfileInfoRejects(t *testing.T) {
	_, err := ParseProfileInfo(make([]byte, 64))
	assert.Error(t, err)

	bad := header("GRAY", "mntr")
	bad[36] = 'x'
	_, err = ParseProfileInfo(bad)
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "Grayscale", ColorSpaceName("GRAY"))
	assert.Equal(t, "HSV", ColorSpaceName("HSV "))
	assert.Equal(t, "Output", ProfileClassName("prtr"))
	assert.Equal(t, "odd", ProfileClassName("odd "))
}
