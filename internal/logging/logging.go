// Package logging configures the process-wide zerolog logger. Grounded on
// cmd/cryptorun/main.go's ConsoleWriter bootstrap, generalized with a
// TTY check (golang.org/x/term) so a non-interactive run — a cron
// invocation, a container without a pty — gets structured JSON instead of
// the human-readable console format.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Setup installs the global zerolog logger at the given level (one of
// zerolog's level strings: "debug", "info", "warn", "error"; an unknown
// value falls back to "info"). out defaults to os.Stderr when nil.
func Setup(levelStr string, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var writer io.Writer = out
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}

// IsTTY reports whether the given file is an interactive terminal, the same
// check Setup uses to choose console output over JSON.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
