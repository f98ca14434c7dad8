// Package logger configures the global zerolog logger from command line options.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger holds logging options. The terminal belongs to the map UI, so output
// goes to a file and is discarded when no file is set.
type Logger struct {
	File   string `short:"d" long:"log-file"   env:"PIPEROUTE_LOG_FILE"   description:"Write logs to this file (e.g., debug.log)"`
	Level  string `long:"log-level"            env:"PIPEROUTE_LOG_LEVEL"  description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	Format string `long:"log-format"           env:"PIPEROUTE_LOG_FORMAT" description:"Log format" choice:"json" choice:"console" default:"console"`
}

// Setup points the global logger at the configured destination. The returned
// closer must be closed on exit.
func (l *Logger) Setup() (io.Closer, error) {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if l.File == "" {
		log.Logger = zerolog.New(io.Discard)
		return nopCloser{}, nil
	}

	file, err := os.OpenFile(l.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Logger = zerolog.New(io.Discard)
		return nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
	}

	var out io.Writer = file
	if l.Format == "console" {
		out = zerolog.ConsoleWriter{Out: file, NoColor: true, TimeFormat: time.DateTime}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	log.Info().Str("level", level.String()).Msg("piperoute log started")

	return file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
