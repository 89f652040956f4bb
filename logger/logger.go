package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a logger writing to stderr. format is "json" or "console".
func New(level, format string) (zerolog.Logger, error) {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter builds a logger writing to w
func NewWithWriter(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %v", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	switch strings.ToLower(format) {
	case "", "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
