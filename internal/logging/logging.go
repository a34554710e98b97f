// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New returns the process logger. Output goes to stderr, rendered for
// humans when stderr is a terminal and as JSON lines otherwise so
// scheduled runs stay machine-readable. verbose lowers the level to
// debug.
func New(verbose bool) zerolog.Logger {
	var writer io.Writer = os.Stderr
	if isatty.IsTerminal(os.Stderr.Fd()) {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
