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
} encode_err_mgr;

static void encode_error_exit(j_common_ptr cinfo) {
    encode_err_mgr *e = (encode_err_mgr *)cinfo->err;
    (*(cinfo->err->format_message))(cinfo, e->msg);
    longjmp(e->jmpbuf, 1);
}

typedef struct {
    unsigned char *buf;
    unsigned long  size;
    int            has_error;
    char           error_msg[256];
} encode_result;

// encode_jpeg encodes 1 (grayscale), 3 (RGB) or 4 (CMYK) component rows, row_stride
// bytes apart. markers holds marker_count APP2 payloads back to back,
// marker_lens their sizes.
static encode_result encode_jpeg(
    const unsigned char *pixels, int width, int height, int row_stride, int components,
    const unsigned int *luma_qtable, const unsigned int *chroma_qtable,
    const unsigned char *markers, const unsigned int *marker_lens, int marker_count
) {
    encode_result res;
    memset(&res, 0, sizeof(res));

    struct jpeg_compress_struct cinfo;
    encode_err_mgr jerr;

    cinfo.err = jpeg_std_error(&jerr.pub);
    jerr.pub.error_exit = encode_error_exit;

    if (setjmp(jerr.jmpbuf)) {
        strncpy(res.error_msg, jerr.msg, sizeof(res.error_msg)-1);
        res.has_error = 1;
        jpeg_destroy_compress(&cinfo);
        return res;
    }

    jpeg_create_compress(&cinfo);
    jpeg_mem_dest(&cinfo, &res.buf, &res.size);

    cinfo.image_width = width;
    cinfo.image_height = height;
    cinfo.input_components = components;
    switch (components) {
    case 1:  cinfo.in_color_space = JCS_GRAYSCALE; break;
    case 4:  cinfo.in_color_space = JCS_CMYK; break;
    default: cinfo.in_color_space = JCS_RGB;
    }

    jpeg_set_defaults(&cinfo);
    cinfo.optimize_coding = TRUE;

    // No chroma subsampling: hard pixel edges smear badly at 2x1.
    for (int i = 0; i < cinfo.num_components; i++) {
        cinfo.comp_info[i].h_samp_factor = 1;
        cinfo.comp_info[i].v_samp_factor = 1;
    }

    if (cinfo.quant_tbl_ptrs[0] == NULL)
        cinfo.quant_tbl_ptrs[0] = jpeg_alloc_quant_table((j_common_ptr)&cinfo);
    if (cinfo.quant_tbl_ptrs[1] == NULL)
        cinfo.quant_tbl_ptrs[1] = jpeg_alloc_quant_table((j_common_ptr)&cinfo);

    for (int i = 0; i < 64; i++) {
        cinfo.quant_tbl_ptrs[0]->quantval[i] = (UINT16)luma_qtable[i];
        cinfo.quant_tbl_ptrs[1]->quantval[i] = (UINT16)chroma_qtable[i];
    }

    jpeg_start_compress(&cinfo, TRUE);

    unsigned long offset = 0;
    for (int i = 0; i < marker_count; i++) {
        jpeg_write_marker(&cinfo, JPEG_APP0 + 2, markers + offset, marker_lens[i]);
        offset += marker_lens[i];
    }

    while (cinfo.next_scanline < cinfo.image_height) {
        const unsigned char *row = pixels + (unsigned long)cinfo.next_scanline * row_stride;
        jpeg_write_scanlines(&cinfo, (JSAMPARRAY)&row, 1);
    }

    jpeg_finish_compress(&cinfo);
    jpeg_destroy_compress(&cinfo);
    return res;
}

static void free_encode_buf(unsigned char *buf) {
    free(buf);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// EncoderOptions controls JPEG encoding.
type EncoderOptions struct {
	Quality int // 1-100, default 95
}

// Encode compresses grayscale (components == 1), RGB (3) or CMYK (4) rows.
// Row y starts at pixels[y*stride]; only width*components bytes of it are
// read. CMYK samples are written as given and libjpeg adds an Adobe marker,
// so readers take them as inverted. icc, when present, is embedded as APP2 markers.
func Encode(pixels []byte, stride, width, height, components int, icc []byte, opts EncoderOptions) ([]byte, error) {
	if components != 1 && components != 3 && components != 4 {
		return nil, fmt.Errorf("unsupported component count %d", components)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if stride < width*components || len(pixels) < (height-1)*stride+width*components {
		return nil, fmt.Errorf("pixel buffer too short for %dx%d, stride %d", width, height, stride)
	}

	if opts.Quality == 0 {
		opts.Quality = 95
	}
	luma, chroma := GenerateQuantTables(opts.Quality)

	var lumaC, chromaC [64]C.uint
	for i := 0; i < 64; i++ {
		lumaC[i] = C.uint(luma[i])
		chromaC[i] = C.uint(chroma[i])
	}

	var markers []byte
	var lens []C.uint
	if len(icc) > 0 {
		chunks, err := ChunkICC(icc)
		if err != nil {
			return nil, err
		}
		for _, c := range chunks {
			markers = append(markers, c...)
			lens = append(lens, C.uint(len(c)))
		}
	}
	var markersPtr *C.uchar
	var lensPtr *C.uint
	if len(lens) > 0 {
		markersPtr = (*C.uchar)(unsafe.Pointer(&markers[0]))
		lensPtr = &lens[0]
	}

	res := C.encode_jpeg(
		(*C.uchar)(unsafe.Pointer(&pixels[0])),
		C.int(width), C.int(height), C.int(stride), C.int(components),
		&lumaC[0], &chromaC[0],
		markersPtr, lensPtr, C.int(len(lens)),
	)

	if res.has_error != 0 {
		return nil, fmt.Errorf("libjpeg encode: %s", C.GoString(&res.error_msg[0]))
	}

	defer C.free_encode_buf(res.buf)

	return C.GoBytes(unsafe.Pointer(res.buf), C.int(res.size)), nil
}
