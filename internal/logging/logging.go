package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config captures logging configuration options.
type Config struct {
	Level string
	Env   string
	Out   io.Writer
}

// New builds a zerolog logger. DEV gets a human readable console writer, everything else JSON.
func New(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if cfg.Env == "DEV" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Setup builds the logger and installs it as the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	logger := New(cfg)
	log.Logger = logger
	return logger
}
