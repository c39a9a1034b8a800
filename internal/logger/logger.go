// Package logger is the project's thin facade over zerolog. It keeps
// call sites free of zerolog types while preserving leveled, structured
// output and context propagation.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the level, encoding, and destination of a Logger.
// Zero values mean info level, JSON records, and os.Stderr.
type Config struct {
	Level  string // debug, info, warn, error, fatal
	Format string // json (default) or console
	Output io.Writer
}

// Logger emits leveled records. Derive field-carrying children with
// Str, Int, Err, or Field; the parent is never mutated.
type Logger struct {
	z zerolog.Logger
}

// New builds a Logger from cfg. A nil cfg is equivalent to the zero
// Config. Unknown level names fall back to info rather than erroring,
// so a bad flag value degrades to noisier output instead of a crash.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = &Config{}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	z := zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
	return &Logger{z: z}
}

func parseLevel(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Str returns a child logger that stamps every record with key=val.
func (l *Logger) Str(key, val string) *Logger {
	return &Logger{z: l.z.With().Str(key, val).Logger()}
}

// Int returns a child logger that stamps every record with key=val.
func (l *Logger) Int(key string, val int) *Logger {
	return &Logger{z: l.z.With().Int(key, val).Logger()}
}

// Err returns a child logger that attaches err under the standard
// error key.
func (l *Logger) Err(err error) *Logger {
	return &Logger{z: l.z.With().Err(err).Logger()}
}

// Field returns a child logger carrying an arbitrarily typed value.
func (l *Logger) Field(key string, val any) *Logger {
	return &Logger{z: l.z.With().Interface(key, val).Logger()}
}

// WithContext returns a copy of ctx carrying this logger.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.z.WithContext(ctx)
}

// FromContext returns the logger stored in ctx by WithContext, or the
// package default when ctx carries none.
func FromContext(ctx context.Context) *Logger {
	z := zerolog.Ctx(ctx)
	if z.GetLevel() == zerolog.Disabled {
		return Default()
	}
	return &Logger{z: *z}
}

func (l *Logger) Debug(msg string) { l.z.Debug().Msg(msg) }

func (l *Logger) Debugf(format string, args ...any) { l.z.Debug().Msgf(format, args...) }

func (l *Logger) Info(msg string) { l.z.Info().Msg(msg) }

func (l *Logger) Infof(format string, args ...any) { l.z.Info().Msgf(format, args...) }

func (l *Logger) Warn(msg string) { l.z.Warn().Msg(msg) }

func (l *Logger) Warnf(format string, args ...any) { l.z.Warn().Msgf(format, args...) }

func (l *Logger) Error(msg string) { l.z.Error().Msg(msg) }

func (l *Logger) Errorf(format string, args ...any) { l.z.Error().Msgf(format, args...) }

// Fatal logs the message and exits the process.
func (l *Logger) Fatal(msg string) { l.z.Fatal().Msg(msg) }

func (l *Logger) Fatalf(format string, args ...any) { l.z.Fatal().Msgf(format, args...) }

var std = New(nil)

// Default returns the process-wide logger used when a component is not
// handed one explicitly.
func Default() *Logger {
	return std
}

// SetDefault replaces the process-wide logger. Call it once during
// startup, before concurrent use of Default.
func SetDefault(l *Logger) {
	std = l
}
