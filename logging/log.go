// Copyright (C) 2025 Engboniface, Inc.
// This file is part of stellar-core
//
// stellar-core is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// stellar-core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with stellar-core.  If not, see <https://www.gnu.org/licenses/>.

/*
Package logging wraps logrus behind a narrow Logger interface.

To log to the base logger:

	logging.Base().Info("node started")

To log to a new logger:

	logger := logging.NewLogger()
	logger.Info("node started")
*/
package logging

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level refers to the log logging level
type Level uint32

const (
	// Panic Level level, highest level of severity. Logs and then calls
	// panic with the message passed to Debug, Info, ...
	Panic Level = iota
	// Fatal Level level. Logs and then calls `os.Exit(1)`.
	Fatal
	// Error Level level. Used for errors that should definitely be noted.
	Error
	// Warn Level level. Non-critical entries that deserve eyes.
	Warn
	// Info Level level. General operational entries about what's going on
	// inside the application.
	Info
	// Debug Level level. Usually only enabled when debugging. Very verbose
	// logging.
	Debug
)

var baseLogger Logger
var once sync.Once

// Init needs to be called to ensure our logging has been initialized
func Init() {
	once.Do(func() {
		baseLogger = NewLogger()
		baseLogger.SetLevel(Warn)
	})
}

func init() {
	Init()
}

// Base returns the default Logger logging to stderr.
func Base() Logger {
	return baseLogger
}

// Fields maps logrus fields
type Fields = logrus.Fields

// Logger is the interface for loggers.
type Logger interface {
	// Debug logs a message at level Debug.
	Debug(...interface{})
	Debugf(string, ...interface{})

	// Info logs a message at level Info.
	Info(...interface{})
	Infof(string, ...interface{})

	// Warn logs a message at level Warn.
	Warn(...interface{})
	Warnf(string, ...interface{})

	// Error logs a message at level Error.
	Error(...interface{})
	Errorf(string, ...interface{})

	// Fatal logs a message at level Fatal.
	Fatal(...interface{})
	Fatalf(string, ...interface{})

	// Panic logs a message at level Panic.
	Panic(...interface{})
	Panicf(string, ...interface{})

	// With adds one key-value to the log
	With(key string, value interface{}) Logger

	// WithFields logs a message with specific fields
	WithFields(Fields) Logger

	// SetLevel sets the logging level (the base logger starts at Warn,
	// a NewLogger at Info)
	SetLevel(Level)

	// GetLevel returns the current logging level
	GetLevel() Level

	// IsLevelEnabled checks if the given level would be emitted
	IsLevelEnabled(level Level) bool

	// SetOutput sets the output target
	SetOutput(io.Writer)

	// SetJSONFormatter sets the logger to JSON format
	SetJSONFormatter()

	// AddHook adds a hook to the logger
	AddHook(hook logrus.Hook)
}

// NewLogger returns a new Logger logging to stderr.
func NewLogger() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	out := logger{
		entry: logrus.NewEntry(l),
	}
	formatter := out.entry.Logger.Formatter
	tf, ok := formatter.(*logrus.TextFormatter)
	if ok {
		tf.TimestampFormat = "2006-01-02T15:04:05.000000 -0700"
	}
	return out
}

// NewWrappedLogger returns a new Logger wrapping the given logrus.Logger.
func NewWrappedLogger(l *logrus.Logger) Logger {
	return logger{
		entry: logrus.NewEntry(l),
	}
}

type logger struct {
	entry *logrus.Entry
}

// source adds file, line and function fields to the event
func (l logger) source() *logrus.Entry {
	event := l.entry

	if pc, file, line, ok := runtime.Caller(2); ok {
		event = event.WithFields(logrus.Fields{
			"file": filenameSlash(file),
			"line": line,
		})
		if fn := runtime.FuncForPC(pc); fn != nil {
			event = event.WithField("function", fn.Name())
		}
	}
	return event
}

func filenameSlash(file string) string {
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		return file[idx+1:]
	}
	return file
}

func (l logger) With(key string, value interface{}) Logger {
	return logger{
		entry: l.entry.WithField(key, value),
	}
}

func (l logger) WithFields(fields Fields) Logger {
	return logger{
		entry: l.entry.WithFields(fields),
	}
}

func (l logger) Debug(args ...interface{}) {
	l.source().Debug(args...)
}

func (l logger) Debugf(format string, args ...interface{}) {
	l.source().Debugf(format, args...)
}

func (l logger) Info(args ...interface{}) {
	l.source().Info(args...)
}

func (l logger) Infof(format string, args ...interface{}) {
	l.source().Infof(format, args...)
}

func (l logger) Warn(args ...interface{}) {
	l.source().Warn(args...)
}

func (l logger) Warnf(format string, args ...interface{}) {
	l.source().Warnf(format, args...)
}

func (l logger) Error(args ...interface{}) {
	l.source().Error(args...)
}

func (l logger) Errorf(format string, args ...interface{}) {
	l.source().Errorf(format, args...)
}

func (l logger) Fatal(args ...interface{}) {
	l.source().Fatal(args...)
}

func (l logger) Fatalf(format string, args ...interface{}) {
	l.source().Fatalf(format, args...)
}

func (l logger) Panic(args ...interface{}) {
	defer func() {
		if r := recover(); r != nil {
			panic(fmt.Sprint(args...))
		}
	}()
	l.source().Panic(args...)
}

func (l logger) Panicf(format string, args ...interface{}) {
	defer func() {
		if r := recover(); r != nil {
			panic(fmt.Sprintf(format, args...))
		}
	}()
	l.source().Panicf(format, args...)
}

func (l logger) SetLevel(lvl Level) {
	l.entry.Logger.Level = logrus.Level(lvl)
}

func (l logger) GetLevel() Level {
	return Level(l.entry.Logger.Level)
}

func (l logger) IsLevelEnabled(level Level) bool {
	return l.entry.Logger.Level >= logrus.Level(level)
}

func (l logger) SetOutput(w io.Writer) {
	l.entry.Logger.Out = w
}

func (l logger) SetJSONFormatter() {
	l.entry.Logger.Formatter = &logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000000 -0700",
	}
}

func (l logger) AddHook(hook logrus.Hook) {
	l.entry.Logger.AddHook(hook)
}

// TestingLog returns a Logger that writes to the given testing.TB at Info
// level.
func TestingLog(t testingTB) Logger {
	l := NewLogger()
	l.SetOutput(testWriter{t})
	l.SetLevel(Info)
	return l
}

// testingTB is the subset of testing.TB used by TestingLog; using a local
// interface keeps the testing package out of production binaries.
type testingTB interface {
	Log(args ...interface{})
}

type testWriter struct {
	t testingTB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
