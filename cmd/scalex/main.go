package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/davesmith10/scalex/internal/buffer"
	"github.com/davesmith10/scalex/internal/scale"
)

var version = "2.6"

const preconditionHint = `Error in the size of the source bitmap. Generally this happen
when the bitmap is too small or when the width is not an exact
multiplier of 8 bytes.`

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and maps any failure to a message on stderr
// and exit status 1.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	switch {
	case errors.Is(err, errUsage):
		fmt.Fprint(stderr, cmd.UsageString())
	case errors.Is(err, scale.ErrInvalidFactor), errors.Is(err, scale.ErrUnsupported):
		fmt.Fprintf(stderr, "Invalid -k option. Valid values are %s.\n", scale.ValidValues())
	case errors.Is(err, scale.ErrPrecondition):
		fmt.Fprintln(stderr, err)
		fmt.Fprintln(stderr, preconditionHint)
	case errors.Is(err, buffer.ErrLowMemory):
		fmt.Fprintln(stderr, "Low memory.")
	default:
		fmt.Fprintln(stderr, "Error:", err)
	}
	return 1
}

func initLogger(w io.Writer, debug bool, format string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.WarnLevel)

	switch format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: debug})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		return nil, fmt.Errorf("unknown log format %q (text or json)", format)
	}

	if debug {
		logger.SetLevel(logrus.DebugLevel)
		logger.Debug("Debug logging enabled")
	}
	return logger, nil
}
