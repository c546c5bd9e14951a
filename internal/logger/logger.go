package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"

	fieldRunID = "run_id"
)

type runIDKey struct{}

type implLogger struct {
	zl zerolog.Logger
}

// New creates a console Logger writing to stdout at the given level.
func New(level string) Logger {
	return NewWithWriter(level, FormatConsole, os.Stdout)
}

// NewWithWriter creates a Logger with an explicit format and destination.
// Unknown levels fall back to info.
func NewWithWriter(level, format string, w io.Writer) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := w
	if strings.ToLower(format) != FormatJSON {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime, NoColor: true}
	}

	return &implLogger{
		zl: zerolog.New(out).Level(lvl).With().Timestamp().Logger(),
	}
}

// WithRunID returns a context whose log lines are tagged with the run id.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID returns the run id stored by WithRunID, or "".
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

func (l *implLogger) event(ctx context.Context, e *zerolog.Event) *zerolog.Event {
	if id := RunID(ctx); id != "" {
		e = e.Str(fieldRunID, id)
	}
	return e
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.event(ctx, l.zl.Debug()).Msgf(msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.event(ctx, l.zl.Info()).Msgf(msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.event(ctx, l.zl.Warn()).Msgf(msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.event(ctx, l.zl.Error()).Msgf(msg, args...)
}

// Nop returns a Logger that discards everything. Useful in tests.
func Nop() Logger {
	return &implLogger{zl: zerolog.Nop()}
}
