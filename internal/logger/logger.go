// Package logger wraps zerolog with a console writer shared by the
// whole application. Log output goes to stderr so measurement results
// on stdout stay machine-readable.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/sevki/carbonara/internal/errors"
)

var log = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}).With().Timestamp().Logger()

// Init sets the global log level. Debug wins over verbose; the default
// is warn so a quiet run prints nothing but the result.
func Init(debug, verbose bool) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else if verbose {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// Debug logs a debug message
func Debug() *zerolog.Event {
	return log.Debug()
}

// Info logs an info message
func Info() *zerolog.Event {
	return log.Info()
}

// Warn logs a warning message
func Warn() *zerolog.Event {
	return log.Warn()
}

// Error logs an error message
func Error() *zerolog.Event {
	return log.Error()
}

// Fatal logs a fatal message and exits the program
func Fatal() *zerolog.Event {
	return log.Fatal()
}

// ErrorWithCode logs an error message together with its error code
func ErrorWithCode(err error) *zerolog.Event {
	return log.Error().
		Str("error_code", string(errors.CodeOf(err))).
		Err(err)
}
