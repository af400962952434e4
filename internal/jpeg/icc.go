package jpeg

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"slices"
)

const (
	iccMarkerTag     = "ICC_PROFILE\x00"
	iccHeaderLen     = len(iccMarkerTag) + 2 // tag + seq + count
	maxChunkDataSize = 65535 - 2 - iccHeaderLen
)

// ExtractICC reassembles an ICC profile from APP2 marker payloads. Payloads
// that are not ICC chunks are ignored; nil is returned when there are none.
func ExtractICC(markers [][]byte) ([]byte, error) {
	type chunk struct {
		seq  int
		data []byte
	}
	var chunks []chunk
	expected := 0

	for _, m := range markers {
		if len(m) < iccHeaderLen || string(m[:len(iccMarkerTag)]) != iccMarkerTag {
			continue
		}
		seq, count := int(m[12]), int(m[13])
		if seq == 0 || seq > count {
			return nil, fmt.Errorf("invalid ICC chunk sequence %d/%d", seq, count)
		}
		if expected == 0 {
			expected = count
		} else if count != expected {
			return nil, fmt.Errorf("inconsistent ICC chunk count: %d vs %d", count, expected)
		}
		chunks = append(chunks, chunk{seq: seq, data: m[iccHeaderLen:]})
	}

	if len(chunks) == 0 {
		return nil, nil
	}
	if len(chunks) != expected {
		return nil, fmt.Errorf("expected %d ICC chunks, found %d", expected, len(chunks))
	}

	slices.SortFunc(chunks, func(a, b chunk) int { return cmp.Compare(a.seq, b.seq) })

	var buf bytes.Buffer
	for _, c := range chunks {
		buf.Write(c.data)
	}
	return buf.Bytes(), nil
}

// ChunkICC splits an ICC profile into APP2 marker payloads, each carrying
// the tag, its 1-based sequence number and the chunk count.
func ChunkICC(profile []byte) ([][]byte, error) {
	if len(profile) == 0 {
		return nil, errors.New("empty ICC profile")
	}

	n := (len(profile) + maxChunkDataSize - 1) / maxChunkDataSize
	if n > 255 {
		return nil, fmt.Errorf("ICC profile too large: needs %d chunks (max 255)", n)
	}

	chunks := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		part := profile[i*maxChunkDataSize : min((i+1)*maxChunkDataSize, len(profile))]
		c := make([]byte, 0, iccHeaderLen+len(part))
		c = append(c, iccMarkerTag...)
		c = append(c, byte(i+1), byte(n))
		c = append(c, part...)
		chunks = append(chunks, c)
	}
	return chunks, nil
}
