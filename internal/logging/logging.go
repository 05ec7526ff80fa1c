// Package logging configures the hclog logger shared by all commands.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/term"
)

// Options configures New.
type Options struct {
	// Verbose enables debug output.
	Verbose bool

	// Quiet limits output to errors. It wins over Verbose.
	Quiet bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// Level returns the log level selected by opts.
func (o Options) Level() hclog.Level {
	switch {
	case o.Quiet:
		return hclog.Error
	case o.Verbose:
		return hclog.Debug
	default:
		return hclog.Info
	}
}

// New creates the root logger.
func New(opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	color := hclog.ColorOff
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == "" {
		color = hclog.AutoColor
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:            "glazecat",
		Output:          out,
		Level:           opts.Level(),
		Color:           color,
		DisableTime:     !opts.Verbose,
		IncludeLocation: opts.Verbose && !opts.Quiet,
	})
}
