// Package logger provides structured logging for autosuggest.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry so components can carry their own fields
type Logger struct {
	base *logrus.Entry
}

// Entry accumulates fields for a single log line
type Entry struct {
	level logrus.Level
	entry *logrus.Entry
}

// New creates a new logger instance writing to output (stderr when nil)
func New(level string, output io.Writer) *Logger {
	if output == nil {
		output = os.Stderr
	}

	log := logrus.New()
	log.SetOutput(output)
	log.SetLevel(ParseLevel(level))
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})

	return &Logger{base: logrus.NewEntry(log)}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return New("panic", io.Discard)
}

// ParseLevel converts a level name to a logrus level, defaulting to info
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// WithComponent returns a child logger tagging every line with the component name
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{base: l.base.WithField("component", name)}
}

// Enabled reports whether lines at the given level would be written
func (l *Logger) Enabled(level logrus.Level) bool {
	return l.base.Logger.IsLevelEnabled(level)
}

// Debug starts a debug line
func (l *Logger) Debug() *Entry {
	return l.at(logrus.DebugLevel)
}

// Info starts an info line
func (l *Logger) Info() *Entry {
	return l.at(logrus.InfoLevel)
}

// Warn starts a warning line
func (l *Logger) Warn() *Entry {
	return l.at(logrus.WarnLevel)
}

// Error starts an error line
func (l *Logger) Error() *Entry {
	return l.at(logrus.ErrorLevel)
}

func (l *Logger) at(level logrus.Level) *Entry {
	return &Entry{level: level, entry: l.base}
}

// Str adds a string field
func (e *Entry) Str(key, value string) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Int adds an int field
func (e *Entry) Int(key string, value int) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Uint64 adds an unsigned field, used for slot versions
func (e *Entry) Uint64(key string, value uint64) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Bool adds a bool field
func (e *Entry) Bool(key string, value bool) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Strs adds a string slice field
func (e *Entry) Strs(key string, values []string) *Entry {
	e.entry = e.entry.WithField(key, strings.Join(values, ","))
	return e
}

// Err adds an error field
func (e *Entry) Err(err error) *Entry {
	if err != nil {
		e.entry = e.entry.WithError(err)
	}
	return e
}

// Dur adds a duration field (formatted in milliseconds)
func (e *Entry) Dur(key string, duration time.Duration) *Entry {
	ms := float64(duration.Microseconds()) / 1000.0
	e.entry = e.entry.WithField(key, ms)
	return e
}

// Msg writes the line with accumulated fields
func (e *Entry) Msg(msg string) {
	e.entry.Log(e.level, msg)
}
