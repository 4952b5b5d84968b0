// Package logging builds the shopdesk logger. Output goes to a rotated file
// because the TUI owns the terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// TimestampFormat is the time layout of every log line. logtail parses it.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Options configure New.
type Options struct {
	Level string // logrus level name; empty means info
	File  string // log file path; empty logs nowhere but Stderr
	// Stderr, when set, additionally receives warnings and errors. CLI
	// commands pass os.Stderr.
	Stderr     io.Writer
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger is the configured logger plus the rotating file behind it.
type Logger struct {
	*logrus.Logger
	file *lumberjack.Logger
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// File returns the log file path, or "" when logging to no file.
func (l *Logger) File() string {
	if l.file == nil {
		return ""
	}
	return l.file.Filename
}

// ParseLevel accepts logrus level names, case-insensitively. Empty is info.
func ParseLevel(raw string) (logrus.Level, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("log level %q: %w", raw, err)
	}
	return level, nil
}

// New builds a logger from opts.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)
	// One JSON object per line; logtail decodes the file back.
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: TimestampFormat})
	logger.SetOutput(io.Discard)

	out := &Logger{Logger: logger}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		out.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    valueOr(opts.MaxSizeMB, 10),
			MaxBackups: valueOr(opts.MaxBackups, 3),
			MaxAge:     valueOr(opts.MaxAgeDays, 14),
		}
		logger.SetOutput(out.file)
	}
	if opts.Stderr != nil {
		logger.AddHook(&teeHook{
			w:         opts.Stderr,
			formatter: &logrus.TextFormatter{DisableTimestamp: true},
		})
	}
	return out, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func valueOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// teeHook copies warnings and errors to a second writer.
type teeHook struct {
	w         io.Writer
	formatter logrus.Formatter
}

func (h *teeHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
}

func (h *teeHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.w.Write(line)
	return err
}
