package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/davesmith10/scalex/internal/pipeline"
	"github.com/davesmith10/scalex/internal/scale"
)

var errUsage = errors.New("wrong number of arguments")

type rootOptions struct {
	scale     string
	crc       bool
	speed     bool
	debug     bool
	logFormat string

	log *logrus.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "scalex [-k N] [-c] FROM TO",
		Short: "Fast implementation of the Scale2/3/4x effects",
		Long: `Fast implementation of the Scale2/3/4x effects.

Magnifies FROM into TO with the selected factor, or with -T measures how
fast FROM can be magnified without writing anything.`,
		Example: `  scalex -k 3 sprite.png sprite3x.png
  scalex -k 2x4 -c tiles.bmp tiles.png
  scalex -T -k 4 sprite.png`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := initLogger(stderr, opts.debug, opts.logFormat)
			if err != nil {
				return err
			}
			opts.log = log
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts, args)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("scalex v{{.Version}}\n")

	opts.bindScale(cmd.Flags())
	opts.bindLogging(cmd.PersistentFlags())

	cmd.AddCommand(newIdentifyCmd(opts))
	return cmd
}

func (o *rootOptions) bindScale(f *pflag.FlagSet) {
	f.StringVarP(&o.scale, "scale", "k", "2", "scale factor: "+scale.ValidValues())
	f.BoolVarP(&o.crc, "crc", "c", false, "print the CRC-32 of the destination pixels")
	f.BoolVarP(&o.speed, "speed", "T", false, "measure throughput on FROM instead of writing TO")
}

func (o *rootOptions) bindLogging(f *pflag.FlagSet) {
	f.BoolVar(&o.debug, "debug", false, "log every pipeline stage")
	f.StringVar(&o.logFormat, "log-format", "text", "log format (text or json)")
}

func runRoot(cmd *cobra.Command, opts *rootOptions, args []string) error {
	// The factor is checked before anything touches the filesystem.
	factor, err := scale.ParseFactor(opts.scale)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if opts.speed {
		if len(args) != 1 {
			return errUsage
		}
		res, err := pipeline.Speed(args[0], pipeline.SpeedOptions{
			Factor:   factor,
			Progress: out,
			Log:      opts.log,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, res)
		return nil
	}

	if len(args) != 2 {
		return errUsage
	}
	res, err := pipeline.Run(args[0], args[1], pipeline.Options{
		Factor: factor,
		CRC:    opts.crc,
		Log:    opts.log,
	})
	if err != nil {
		return err
	}
	opts.log.WithFields(logrus.Fields{
		"src":     fmt.Sprintf("%dx%d", res.SrcWidth, res.SrcHeight),
		"dst":     fmt.Sprintf("%dx%d", res.DstWidth, res.DstHeight),
		"elapsed": res.Elapsed,
	}).Debug("done")
	if opts.crc {
		fmt.Fprintln(out, res.CRCString())
	}
	return nil
}
