// Package pipeline wires the codec, the geometry check and the scale kernels
// into the two things scalex does with an image: magnify it into a new file,
// or time how fast it can be magnified.
package pipeline

import (
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/davesmith10/scalex/internal/buffer"
	"github.com/davesmith10/scalex/internal/codec"
	"github.com/davesmith10/scalex/internal/ir"
	"github.com/davesmith10/scalex/internal/scale"
)

// Options controls a single Run.
type Options struct {
	Factor scale.Factor
	CRC    bool               // checksum the destination pixels
	Log    logrus.FieldLogger // nil discards
}

// Result describes a completed Run.
type Result struct {
	SrcWidth  int
	SrcHeight int
	DstWidth  int
	DstHeight int
	Depth     int
	Factor    scale.Factor
	Elapsed   time.Duration
	CRC       uint32 // zero unless Options.CRC was set
}

// CRCString formats the checksum as eight lowercase hex digits.
func (r *Result) CRCString() string {
	return fmt.Sprintf("%08x", r.CRC)
}

// run holds everything a pipeline acquires so a single deferred release
// frees it whichever stage fails.
type run struct {
	log    logrus.FieldLogger
	src    *ir.Image
	dst    *buffer.Buffer
	scaler *scale.Scaler
}

func newRun(log logrus.FieldLogger) *run {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &run{log: log, scaler: scale.NewScaler()}
}

func (r *run) release() {
	r.scaler.Close()
	r.dst.Release()
	r.src.Release()
}

// prepare loads srcPath, validates its geometry for f and allocates the
// destination and any kernel scratch space.
func (r *run) prepare(srcPath string, f scale.Factor) error {
	start := time.Now()
	src, err := codec.Load(srcPath)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	r.src = src
	r.log.WithFields(logrus.Fields{
		"path":    srcPath,
		"format":  src.Format,
		"width":   src.Width,
		"height":  src.Height,
		"depth":   src.Depth,
		"color":   src.Color,
		"elapsed": time.Since(start),
	}).Debug("loaded source")

	if err := scale.Check(f, src.Depth, src.Width, src.Height); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	slice := buffer.AlignedSlice(src.Width * src.Depth * f.X())
	dst, err := buffer.Allocate(slice, src.Height*f.Y(), buffer.DefaultPadding())
	if err != nil {
		return fmt.Errorf("allocate: %w", err)
	}
	r.dst = dst
	if err := r.scaler.Prepare(f, src.Depth, src.Width, src.Height); err != nil {
		return fmt.Errorf("allocate: %w", err)
	}
	r.log.WithFields(logrus.Fields{
		"factor": f,
		"key":    f.Key(),
		"slice":  slice,
		"rows":   dst.Height,
		"align":  buffer.Align(),
	}).Debug("allocated destination")
	return nil
}

func (r *run) scale(f scale.Factor) {
	r.scaler.Scale(f, r.dst.Bytes(), r.dst.Slice, r.src.Pix.Bytes(), r.src.Stride(),
		r.src.Depth, r.src.Width, r.src.Height)
}

// output describes the destination buffer as an image sharing the source's
// colour layout, palette and profile.
func (r *run) output(f scale.Factor) *ir.Image {
	return &ir.Image{
		Depth:    r.src.Depth,
		Width:    r.src.Width * f.X(),
		Height:   r.src.Height * f.Y(),
		Pix:      r.dst,
		Color:    r.src.Color,
		Channels: r.src.Channels,
		Palette:  r.src.Palette,
		ICC:      r.src.ICC,
		Format:   r.src.Format,
	}
}

// Run executes load, validate, allocate, scale, store and the optional
// checksum. Every buffer it acquired is released before it returns.
func Run(srcPath, dstPath string, opts Options) (*Result, error) {
	if !opts.Factor.Valid() {
		return nil, fmt.Errorf("%w: %v", scale.ErrInvalidFactor, opts.Factor)
	}
	start := time.Now()
	r := newRun(opts.Log)
	defer r.release()

	if err := r.prepare(srcPath, opts.Factor); err != nil {
		return nil, err
	}

	t := time.Now()
	r.scale(opts.Factor)
	r.log.WithField("elapsed", time.Since(t)).Debug("scaled")

	out := r.output(opts.Factor)
	if err := codec.Store(dstPath, out); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	r.log.WithField("path", dstPath).Debug("stored destination")

	res := &Result{
		SrcWidth:  r.src.Width,
		SrcHeight: r.src.Height,
		DstWidth:  out.Width,
		DstHeight: out.Height,
		Depth:     out.Depth,
		Factor:    opts.Factor,
	}
	if opts.CRC {
		res.CRC = checksum(out)
		r.log.WithField("crc", res.CRCString()).Debug("checksummed destination")
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// checksum is the CRC-32 (IEEE) of the active bytes of every row, in order.
// Row padding is excluded so the value does not depend on the alignment.
func checksum(m *ir.Image) uint32 {
	var crc uint32
	n := m.RowBytes()
	for y := 0; y < m.Height; y++ {
		crc = crc32.Update(crc, crc32.IEEETable, m.Pix.Row(y)[:n])
	}
	return crc
}
