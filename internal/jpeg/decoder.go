package jpeg

/*
#cgo pkg-config: libjpeg
#include <stdio.h>
#include <stdlib.h>
#include <string.h>
#include <jpeglib.h>
#include <setjmp.h>

typedef struct {
    struct jpeg_error_mgr pub;
    jmp_buf               jmpbuf;
    char                  msg[JMSG_LENGTH_MAX];
} decode_err;

static void decode_error_exit(j_common_ptr cinfo) {
    decode_err *e = (decode_err *)cinfo->err;
    (*(cinfo->err->format_message))(cinfo, e->msg);
    longjmp(e->jmpbuf, 1);
}

// decode_into decompresses buf straight into caller-owned rows of stride
// bytes. components selects grayscale (1), RGB (3) or CMYK (4) output; the
// geometry
// must match what the header announced. Returns 0 on success, otherwise
// msg holds the reason.
static int decode_into(const unsigned char *buf, unsigned long size,
                       unsigned char *dst, int stride, int width, int height,
                       int components, char *msg) {
    struct jpeg_decompress_struct cinfo;
    decode_err jerr;

    cinfo.err = jpeg_std_error(&jerr.pub);
    jerr.pub.error_exit = decode_error_exit;

    if (setjmp(jerr.jmpbuf)) {
        memcpy(msg, jerr.msg, JMSG_LENGTH_MAX);
        jpeg_destroy_decompress(&cinfo);
        return -1;
    }

    jpeg_create_decompress(&cinfo);
    jpeg_mem_src(&cinfo, (unsigned char *)buf, size);
    jpeg_read_header(&cinfo, TRUE);
    switch (components) {
    case 1:  cinfo.out_color_space = JCS_GRAYSCALE; break;
    case 4:  cinfo.out_color_space = JCS_CMYK; break;
    default: cinfo.out_color_space = JCS_RGB;
    }
    jpeg_start_decompress(&cinfo);

    if ((int)cinfo.output_width != width || (int)cinfo.output_height != height ||
        cinfo.output_components != components) {
        snprintf(msg, JMSG_LENGTH_MAX, "output %ux%u with %d components, expected %dx%d with %d",
                 cinfo.output_width, cinfo.output_height, cinfo.output_components,
                 width, height, components);
        jpeg_destroy_decompress(&cinfo);
        return -1;
    }

    while (cinfo.output_scanline < cinfo.output_height) {
        JSAMPROW row = dst + (size_t)cinfo.output_scanline * stride;
        jpeg_read_scanlines(&cinfo, &row, 1);
    }

    jpeg_finish_decompress(&cinfo);
    jpeg_destroy_decompress(&cinfo);
    return 0;
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/davesmith10/scalex/internal/buffer"
)

// LibjpegVersion returns the JPEG library version.
func LibjpegVersion() int {
	return int(C.JPEG_LIB_VERSION)
}

// Decoded holds a decoded JPEG whose rows live in an aligned buffer owned by
// the caller, who must Release it.
type Decoded struct {
	Width      int
	Height     int
	Components int            // 1 for grayscale, 3 for RGB, 4 for CMYK
	Inverted   bool           // CMYK samples follow the Adobe convention, 255 = no ink
	Pix        *buffer.Buffer
	ICC        []byte // extracted ICC profile, nil if absent
}

// Decode decodes a JPEG file from memory. Grayscale files stay one byte per
// pixel and CMYK/YCCK files four, as libjpeg cannot turn ink into RGB;
// everything else comes out as packed RGB. The header is read first
// so libjpeg can write scanlines directly into the aligned rows.
func Decode(data []byte) (*Decoded, error) {
	info, err := GetInfo(data)
	if err != nil {
		return nil, err
	}

	comps := 3
	switch info.ColorSpace {
	case "Grayscale":
		comps = 1
	case "CMYK", "YCCK":
		comps = 4
	}
	pix, err := buffer.Allocate(buffer.AlignedSlice(info.Width*comps), info.Height, buffer.DefaultPadding())
	if err != nil {
		return nil, err
	}
	rows := pix.Bytes()
	if len(rows) == 0 {
		pix.Release()
		return nil, fmt.Errorf("empty %dx%d image", info.Width, info.Height)
	}

	var msg [C.JMSG_LENGTH_MAX]C.char
	rc := C.decode_into(
		(*C.uchar)(unsafe.Pointer(&data[0])),
		C.ulong(len(data)),
		(*C.uchar)(unsafe.Pointer(&rows[0])),
		C.int(pix.Slice),
		C.int(info.Width),
		C.int(info.Height),
		C.int(comps),
		&msg[0],
	)
	if rc != 0 {
		pix.Release()
		return nil, fmt.Errorf("libjpeg decode: %s", C.GoString(&msg[0]))
	}

	return &Decoded{
		Width:      info.Width,
		Height:     info.Height,
		Components: comps,
		Inverted:   comps == 4 && info.Adobe,
		Pix:        pix,
		ICC:        info.ICC,
	}, nil
}
