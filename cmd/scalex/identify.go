package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/davesmith10/scalex/internal/codec"
	"github.com/davesmith10/scalex/internal/color"
	"github.com/davesmith10/scalex/internal/jpeg"
	"github.com/davesmith10/scalex/internal/scale"
)

func newIdentifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "identify FILE",
		Short: "Inspect an image and report which scale factors it accepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentify(cmd, opts, args[0])
		},
	}
}

func runIdentify(cmd *cobra.Command, opts *rootOptions, path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", codec.ErrIO, err)
	}
	m, err := codec.Load(path)
	if err != nil {
		return err
	}
	defer m.Release()
	opts.log.WithField("path", path).Debug("identified")

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "File:        %s\n", path)
	fmt.Fprintf(w, "Format:      %s\n", m.Format)
	fmt.Fprintf(w, "Dimensions:  %d x %d\n", m.Width, m.Height)
	fmt.Fprintf(w, "Depth:       %d bytes per pixel\n", m.Depth)
	fmt.Fprintf(w, "Color type:  %s\n", m.Color)
	if m.Palette != nil {
		fmt.Fprintf(w, "Palette:     %d entries, %d with alpha\n", m.Palette.Len(), len(m.Palette.Alpha))
	}
	fmt.Fprintf(w, "File size:   %d bytes\n", st.Size())

	if m.Format == "jpeg" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: %w", codec.ErrIO, err)
		}
		info, err := jpeg.GetInfo(data)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", codec.ErrFormat, path, err)
		}
		fmt.Fprintf(w, "JPEG:        %s, %d components, sampling %s, progressive=%t\n",
			info.ColorSpace, info.NumComponents, info.Sampling, info.Progressive)
		if !info.SquarePixels() {
			fmt.Fprintf(w, "Warning:     pixel aspect %d:%d is not square\n", info.XDensity, info.YDensity)
		}
	}

	if m.ICC != nil {
		pi, err := color.ParseProfileInfo(m.ICC)
		if err != nil {
			fmt.Fprintf(w, "ICC profile: present (%d bytes) but invalid: %v\n", len(m.ICC), err)
		} else {
			fmt.Fprintf(w, "ICC profile: %d bytes, %s\n", len(m.ICC), pi.Describe())
		}
	} else {
		fmt.Fprintln(w, "ICC profile: none")
	}

	fmt.Fprintln(w, "Scale factors:")
	lines := lo.Map(scale.Supported(), func(f scale.Factor, _ int) string {
		if err := scale.Check(f, m.Depth, m.Width, m.Height); err != nil {
			return fmt.Sprintf("  -k %-4s no: %v", f.Flag(), err)
		}
		return fmt.Sprintf("  -k %-4s ok: %d x %d", f.Flag(), m.Width*f.X(), m.Height*f.Y())
	})
	fmt.Fprintln(w, strings.Join(lines, "\n"))
	return nil
}
