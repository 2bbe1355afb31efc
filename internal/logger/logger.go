package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

const serviceName = "taxi-booking-service"

func New(env string) zerolog.Logger {
	return newWithWriter(env, os.Stderr)
}

func newWithWriter(env string, out io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if env == "development" {
		level = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: out, NoColor: true}
	}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}
