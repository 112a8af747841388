// SPDX-License-Identifier: EPL-2.0

// Package logger wraps zerolog with the constructors the engine and its
// command line tool share.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var pid = os.Getpid()

// Logger is a thin handle over a zerolog.Logger. A nil *Logger discards
// every event, so components can hold one unconditionally.
type Logger struct {
	logger *zerolog.Logger
}

func level(isDebug bool) zerolog.Level {
	if isDebug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// New writes JSON events to stderr.
func New(isDebug bool) *Logger {
	logger := zerolog.New(os.Stderr).Level(level(isDebug)).
		With().Timestamp().Int("pid", pid).Logger()
	return &Logger{logger: &logger}
}

// NewConsole writes human readable lines to stdout, prefixed with tag.
func NewConsole(isDebug bool, tag string, noColor bool) *Logger {
	return newConsole(os.Stdout, isDebug, tag, noColor)
}

func newConsole(w io.Writer, isDebug bool, tag string, noColor bool) *Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.0000", NoColor: noColor,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			"s",
			zerolog.MessageFieldName,
		},
		FieldsExclude: []string{"s"},
	}

	if output.NoColor {
		output.FormatMessage = func(i any) string {
			if i == nil {
				return ""
			}
			return fmt.Sprintf("%v", i)
		}
	}

	logger := zerolog.New(output).Level(level(isDebug)).
		With().Str("s", tag).Timestamp().Logger()
	return &Logger{logger: &logger}
}

// NewWriter sends JSON events to w. Tests use it to capture output.
func NewWriter(w io.Writer, isDebug bool) *Logger {
	logger := zerolog.New(w).Level(level(isDebug))
	return &Logger{logger: &logger}
}

func Default() *Logger { return &Logger{logger: &log.Logger} }

// Nop discards everything.
func Nop() *Logger {
	logger := zerolog.Nop()
	return &Logger{logger: &logger}
}

func (l *Logger) z() *zerolog.Logger {
	if l == nil || l.logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return l.logger
}

// With creates a child logger with the field added to its context.
func (l *Logger) With() zerolog.Context { return l.z().With() }

// Debug starts a new message with debug level.
// You must call Msg on the returned event in order to send the event.
func (l *Logger) Debug() *zerolog.Event { return l.z().Debug() }

// Info starts a new message with info level.
// You must call Msg on the returned event in order to send the event.
func (l *Logger) Info() *zerolog.Event { return l.z().Info() }

// Warn starts a new message with warn level.
// You must call Msg on the returned event in order to send the event.
func (l *Logger) Warn() *zerolog.Event { return l.z().Warn() }

// Error starts a new message with error level.
func (l *Logger) Error() *zerolog.Event { return l.z().Error() }

// Extend adds some additional context to the existing logger.
func (l *Logger) Extend(ctx zerolog.Context) *Logger {
	logger := ctx.Logger()
	return &Logger{logger: &logger}
}

// Since returns the elapsed time rounded for log fields.
func Since(start time.Time) time.Duration {
	return time.Since(start).Round(time.Microsecond)
}
