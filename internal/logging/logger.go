// Package logging provides leveled, optionally colored console logging with
// an optional JSON log file sink, built on zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/vconv/internal/config"
	"github.com/backmassage/vconv/internal/term"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger writes human-readable lines to the console (errors to stderr) and,
// when a log file is configured, one JSON object per line to that file.
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

// NewLogger configures terminal colors from cfg and optionally opens
// cfg.LogFile for appending. Call Close() when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	var file *os.File
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		file = f
	}

	var fileOut io.Writer
	if file != nil {
		fileOut = file
	}
	l := newLogger(os.Stdout, os.Stderr, fileOut, cfg.Verbose, term.Enabled())
	l.file = file
	return l, nil
}

// newLogger wires the writers. fileOut may be nil.
func newLogger(stdout, stderr, fileOut io.Writer, verbose, color bool) *Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	out := levelSplitWriter{
		out: consoleWriter(stdout, color),
		err: consoleWriter(stderr, color),
	}
	var w zerolog.LevelWriter = out
	if fileOut != nil {
		w = zerolog.MultiLevelWriter(out, fileOut)
	}

	return &Logger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

func consoleWriter(out io.Writer, color bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !color,
		TimeFormat: timeFormat,
		FormatLevel: func(i interface{}) string {
			s, _ := i.(string)
			return levelColor(s, color) + "[" + strings.ToUpper(s) + "]" + levelReset(color)
		},
	}
}

func levelColor(level string, color bool) string {
	if !color {
		return ""
	}
	switch level {
	case "debug":
		return term.Cyan
	case "warn":
		return term.Yellow
	case "error":
		return term.Red
	default:
		return term.Blue
	}
}

func levelReset(color bool) string {
	if !color {
		return ""
	}
	return term.NC
}

// levelSplitWriter sends error-and-above events to err and the rest to out.
type levelSplitWriter struct {
	out io.Writer
	err io.Writer
}

func (w levelSplitWriter) Write(p []byte) (int, error) { return w.out.Write(p) }

func (w levelSplitWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l >= zerolog.ErrorLevel && l < zerolog.NoLevel {
		return w.err.Write(p)
	}
	return w.out.Write(p)
}

// Zerolog exposes the underlying logger for packages that log structured
// events themselves (the job converter and HTTP middleware).
func (l *Logger) Zerolog() *zerolog.Logger { return &l.zl }

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// Success logs a completed step at INFO level, tagged status=success.
func (l *Logger) Success(format string, args ...interface{}) {
	l.zl.Info().Str("status", "success").Msg(fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs at ERROR level, to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level; dropped unless the logger was built verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

// Elapsed logs msg at INFO level with a rounded duration field.
func (l *Logger) Elapsed(msg string, d time.Duration) {
	l.zl.Info().Str("elapsed", d.Round(time.Millisecond).String()).Msg(msg)
}
