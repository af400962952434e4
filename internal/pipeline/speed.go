package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/davesmith10/scalex/internal/scale"
)

const (
	DefaultBudget = 2 * time.Second
	DefaultBatch  = 1000
)

// SpeedOptions controls a throughput measurement.
type SpeedOptions struct {
	Factor   scale.Factor
	Budget   time.Duration    // run until elapsed exceeds this, default 2s
	Batch    int              // scale calls between clock reads, default 1000
	Progress io.Writer        // receives one '.' per batch, nil discards
	Now      func() time.Time // clock, default time.Now
	Log      logrus.FieldLogger
}

// SpeedResult is the outcome of Speed.
type SpeedResult struct {
	Bytes   int64 // source bytes fed to the kernel
	Elapsed time.Duration
	Calls   int
}

// Rate is the throughput in bytes per microsecond, which is MB/s.
func (s *SpeedResult) Rate() float64 {
	us := float64(s.Elapsed) / float64(time.Microsecond)
	if us <= 0 {
		return 0
	}
	return float64(s.Bytes) / us
}

func (s *SpeedResult) String() string {
	return fmt.Sprintf("Input data processed at %g MB/s", s.Rate())
}

// Speed loads srcPath once and scales it repeatedly into the same
// destination buffer until the budget is spent. Nothing is stored.
func Speed(srcPath string, opts SpeedOptions) (*SpeedResult, error) {
	if !opts.Factor.Valid() {
		return nil, fmt.Errorf("%w: %v", scale.ErrInvalidFactor, opts.Factor)
	}
	if opts.Budget <= 0 {
		opts.Budget = DefaultBudget
	}
	if opts.Batch <= 0 {
		opts.Batch = DefaultBatch
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := newRun(opts.Log)
	defer r.release()

	if err := r.prepare(srcPath, opts.Factor); err != nil {
		return nil, err
	}

	perCall := int64(r.src.Width) * int64(r.src.Height) * int64(r.src.Depth)
	res := &SpeedResult{}
	start := opts.Now()
	for res.Elapsed <= opts.Budget {
		for i := 0; i < opts.Batch; i++ {
			r.scale(opts.Factor)
		}
		res.Calls += opts.Batch
		res.Bytes += int64(opts.Batch) * perCall
		if _, err := io.WriteString(opts.Progress, "."); err != nil {
			return nil, fmt.Errorf("progress: %w", err)
		}
		res.Elapsed = opts.Now().Sub(start)
	}

	r.log.WithFields(logrus.Fields{
		"calls":   res.Calls,
		"bytes":   res.Bytes,
		"elapsed": res.Elapsed,
	}).Debug("speed run finished")
	return res, nil
}
