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
} header_err;

static void header_error_exit(j_common_ptr cinfo) {
    header_err *e = (header_err *)cinfo->err;
    (*(cinfo->err->format_message))(cinfo, e->msg);
    longjmp(e->jmpbuf, 1);
}

#define MAX_SAMPLED 4

typedef struct {
    int  width, height;
    int  components;
    int  color_space;    // J_COLOR_SPACE of the file, not of the output
    int  progressive;
    int  jfif;
    int  adobe;
    int  density_unit;   // 0 aspect only, 1 dpi, 2 dots per cm
    int  x_density, y_density;
    int  h_samp[MAX_SAMPLED], v_samp[MAX_SAMPLED];
    unsigned char *icc;  // APP2 payloads back to back, malloc'd
    unsigned int   icc_len;
    unsigned short chunk_len[256];
    int  chunks;
    int  failed;
    char msg[JMSG_LENGTH_MAX];
} jpeg_header;

// read_jpeg_header parses everything up to the first scan. APP2 payloads are
// concatenated into one allocation; chunk_len records where each ends.
static void read_jpeg_header(const unsigned char *buf, unsigned long size, jpeg_header *h) {
    struct jpeg_decompress_struct cinfo;
    header_err jerr;

    memset(h, 0, sizeof(*h));
    cinfo.err = jpeg_std_error(&jerr.pub);
    jerr.pub.error_exit = header_error_exit;

    if (setjmp(jerr.jmpbuf)) {
        memcpy(h->msg, jerr.msg, sizeof(h->msg));
        h->failed = 1;
        jpeg_destroy_decompress(&cinfo);
        return;
    }

    jpeg_create_decompress(&cinfo);
    jpeg_save_markers(&cinfo, JPEG_APP0+2, 0xFFFF);
    jpeg_mem_src(&cinfo, (unsigned char *)buf, size);
    jpeg_read_header(&cinfo, TRUE);

    h->width = cinfo.image_width;
    h->height = cinfo.image_height;
    h->components = cinfo.num_components;
    h->color_space = cinfo.jpeg_color_space;
    h->progressive = cinfo.progressive_mode;
    h->jfif = cinfo.saw_JFIF_marker;
    h->adobe = cinfo.saw_Adobe_marker;
    h->density_unit = cinfo.density_unit;
    h->x_density = cinfo.X_density;
    h->y_density = cinfo.Y_density;
    for (int c = 0; c < cinfo.num_components && c < MAX_SAMPLED; c++) {
        h->h_samp[c] = cinfo.comp_info[c].h_samp_factor;
        h->v_samp[c] = cinfo.comp_info[c].v_samp_factor;
    }

    unsigned int total = 0;
    for (jpeg_saved_marker_ptr m = cinfo.marker_list; m != NULL; m = m->next) {
        if (m->marker == JPEG_APP0+2) total += m->data_length;
    }
    if (total > 0 && (h->icc = malloc(total)) != NULL) {
        for (jpeg_saved_marker_ptr m = cinfo.marker_list; m != NULL && h->chunks < 256; m = m->next) {
            if (m->marker != JPEG_APP0+2 || m->data_length == 0) continue;
            memcpy(h->icc + h->icc_len, m->data, m->data_length);
            h->icc_len += m->data_length;
            h->chunk_len[h->chunks++] = m->data_length;
        }
    }

    jpeg_destroy_decompress(&cinfo);
}
*/
import "C"

import (
	"fmt"
	"strings"
	"unsafe"
)

// colorSpaceName names libjpeg's J_COLOR_SPACE values.
func colorSpaceName(cs int) string {
	names := [...]string{"Unknown", "Grayscale", "RGB", "YCbCr", "CMYK", "YCCK"}
	if cs >= 0 && cs < len(names) {
		return names[cs]
	}
	return fmt.Sprintf("J_COLOR_SPACE(%d)", cs)
}

// ImageInfo is what the JPEG header says about a file.
type ImageInfo struct {
	Width         int
	Height        int
	NumComponents int
	ColorSpace    string
	Progressive   bool
	Sampling      string // per-component HxV factors, "2x2,1x1,1x1"
	JFIF          bool
	Adobe         bool // APP14 present; CMYK samples are stored inverted
	DensityUnit   int  // 0 = pixel aspect only, 1 = dpi, 2 = dots per cm
	XDensity      int
	YDensity      int
	ICC           []byte // extracted ICC profile, nil if absent
}

// SquarePixels reports whether the header declares a 1:1 pixel aspect, which
// is what the kernels assume. Files without a JFIF header count as square.
func (i *ImageInfo) SquarePixels() bool {
	return !i.JFIF || i.XDensity == i.YDensity
}

// GetInfo reads the JPEG header and any ICC profile without decoding pixels.
func GetInfo(data []byte) (*ImageInfo, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("data too short for JPEG")
	}

	var h C.jpeg_header
	C.read_jpeg_header((*C.uchar)(unsafe.Pointer(&data[0])), C.ulong(len(data)), &h)
	defer C.free(unsafe.Pointer(h.icc))

	if h.failed != 0 {
		return nil, fmt.Errorf("libjpeg: %s", C.GoString(&h.msg[0]))
	}

	var app2 [][]byte
	if h.icc != nil {
		all := C.GoBytes(unsafe.Pointer(h.icc), C.int(h.icc_len))
		for i := 0; i < int(h.chunks); i++ {
			n := int(h.chunk_len[i])
			app2 = append(app2, all[:n:n])
			all = all[n:]
		}
	}
	icc, err := ExtractICC(app2)
	if err != nil {
		return nil, fmt.Errorf("extracting ICC: %w", err)
	}

	n := int(h.components)
	samp := make([]string, 0, n)
	for c := 0; c < n && c < C.MAX_SAMPLED; c++ {
		samp = append(samp, fmt.Sprintf("%dx%d", int(h.h_samp[c]), int(h.v_samp[c])))
	}

	return &ImageInfo{
		Width:         int(h.width),
		Height:        int(h.height),
		NumComponents: n,
		ColorSpace:    colorSpaceName(int(h.color_space)),
		Progressive:   h.progressive != 0,
		Sampling:      strings.Join(samp, ","),
		JFIF:          h.jfif != 0,
		Adobe:         h.adobe != 0,
		DensityUnit:   int(h.density_unit),
		XDensity:      int(h.x_density),
		YDensity:      int(h.y_density),
		ICC:           icc,
	}, nil
}
