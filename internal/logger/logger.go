package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/lshigami/formkit/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init sets up the global zerolog logger with sane defaults so that early
// startup messages (config loading) are readable. Configure refines it later.
func Init() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// Configure rebuilds the global logger from the loaded configuration.
func Configure(cfg config.Log) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // megabytes
			MaxAge:     cfg.MaxAgeDays,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
		// the file always receives JSON lines
		out = io.MultiWriter(out, rotating)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	log.Debug().Str("level", zerolog.GlobalLevel().String()).Msg("Logger configured")
}

// parseLevel accepts any zerolog level name in any case. Unknown or empty
// names fall back to info.
func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
