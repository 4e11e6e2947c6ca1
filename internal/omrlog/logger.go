// Package omrlog provides a thin structured-logging adapter the OMR
// pipeline stages log through, so the core depends on an interface
// rather than directly on zerolog.
package omrlog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Fields is a set of structured key-value pairs attached to a log line.
type Fields map[string]interface{}

// Logger is the minimal logging surface pipeline stages need.
type Logger interface {
	Info(stage, message string, fields Fields)
	Warn(stage, message string, fields Fields)
	Debug(stage, message string, fields Fields)
}

// Adapter implements Logger on top of zerolog.
type Adapter struct {
	logger zerolog.Logger
}

// New builds an Adapter writing to w at the given level.
func New(w io.Writer, level zerolog.Level) *Adapter {
	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &Adapter{logger: logger}
}

// NewConsole builds an Adapter writing human-readable output to stderr.
func NewConsole(level zerolog.Level) *Adapter {
	return New(zerolog.ConsoleWriter{Out: os.Stderr}, level)
}

func (a *Adapter) Info(stage, message string, fields Fields) {
	event := a.logger.Info().Str("stage", stage)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

func (a *Adapter) Warn(stage, message string, fields Fields) {
	event := a.logger.Warn().Str("stage", stage)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

func (a *Adapter) Debug(stage, message string, fields Fields) {
	event := a.logger.Debug().Str("stage", stage)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

// Nop is a Logger that discards everything, used when a caller does
// not want pipeline logging (e.g. in tests).
type Nop struct{}

func (Nop) Info(string, string, Fields)  {}
func (Nop) Warn(string, string, Fields)  {}
func (Nop) Debug(string, string, Fields) {}
