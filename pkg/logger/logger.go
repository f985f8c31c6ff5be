package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var base zerolog.Logger

func init() {
	Setup(os.Getenv("FOODHUB_LOG_LEVEL"), os.Getenv("FOODHUB_LOG_FORMAT"), os.Stderr)
}

// Setup reconfigures the package logger. config.Load calls this again once
// the real settings are known.
func Setup(level, format string, out io.Writer) {
	var output io.Writer = out
	if output == nil {
		output = os.Stderr
	}
	if format == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	base = zerolog.New(output).
		With().
		Timestamp().
		Str("service", "foodhub").
		Logger().
		Level(parseLevel(level))
}

func parseLevel(value string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(s); err == nil {
		return lvl
	}
	return zerolog.InfoLevel
}

func Info(format string, v ...interface{}) {
	base.Info().Msgf(format, v...)
}

func Error(format string, v ...interface{}) {
	base.Error().Msgf(format, v...)
}

func Warn(format string, v ...interface{}) {
	base.Warn().Msgf(format, v...)
}

func Debug(format string, v ...interface{}) {
	base.Debug().Msgf(format, v...)
}
