// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/ctool-go/taskmanager/cfg"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ProgrammeName is attached to every log record so that output from the task
// manager can be told apart when it shares a sink with other programmes.
const ProgrammeName string = "taskmanager"

var (
	mu                   sync.Mutex
	defaultLoggerFactory *loggerFactory
	defaultLogger        *slog.Logger
)

type loggerFactory struct {
	// If nil, log to stdout. Otherwise, log to this rotating file.
	file   io.WriteCloser
	format string
	level  string
}

// init initializes the logger factory to write text logs to stdout.
func init() {
	defaultLoggerFactory = &loggerFactory{
		format: cfg.TextLogFormat,
		level:  cfg.INFO,
	}
	defaultLogger = defaultLoggerFactory.newLogger("")
}

// InitLogFile points the default logger at the destination described by
// loggingConfig. An empty file path keeps logging on stdout. A non-empty one
// is written through lumberjack so that it is rotated according to the
// log-rotate settings.
func InitLogFile(loggingConfig cfg.LoggingConfig) error {
	mu.Lock()
	defer mu.Unlock()

	f := &loggerFactory{
		format: string(loggingConfig.Format),
		level:  string(loggingConfig.Severity),
	}
	if f.format == "" {
		f.format = cfg.TextLogFormat
	}
	if f.level == "" {
		f.level = cfg.INFO
	}
	if loggingConfig.FilePath != "" {
		// Fail early if the file cannot be created at all; lumberjack would
		// otherwise report the problem only on the first write.
		probe, err := os.OpenFile(string(loggingConfig.FilePath), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("error while opening log file %q: %w", loggingConfig.FilePath, err)
		}
		probe.Close()

		f.file = &lumberjack.Logger{
			Filename:   string(loggingConfig.FilePath),
			MaxSize:    int(loggingConfig.LogRotate.MaxFileSizeMb),
			MaxBackups: int(loggingConfig.LogRotate.BackupFileCount),
			Compress:   loggingConfig.LogRotate.Compress,
		}
	}

	closeLocked()
	defaultLoggerFactory = f
	defaultLogger = f.newLogger("")
	return nil
}

// SetLogFormat switches the default logger between "text" and "json" output.
func SetLogFormat(format string) {
	mu.Lock()
	defer mu.Unlock()
	defaultLoggerFactory.format = format
	defaultLogger = defaultLoggerFactory.newLogger("")
}

// Close closes the log file when necessary. Later messages go to stdout.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if defaultLoggerFactory.file == nil {
		return
	}
	closeLocked()
	defaultLogger = defaultLoggerFactory.newLogger("")
}

// LOCKS_REQUIRED(mu)
func closeLocked() {
	if f := defaultLoggerFactory.file; f != nil {
		f.Close()
		defaultLoggerFactory.file = nil
	}
}

func (f *loggerFactory) writer() io.Writer {
	if f.file != nil {
		return f.file
	}
	return os.Stdout
}

func (f *loggerFactory) newLogger(prefix string) *slog.Logger {
	var programLevel = new(slog.LevelVar)
	setLoggingLevel(f.level, programLevel)
	return slog.New(f.createJsonOrTextHandler(f.writer(), programLevel, prefix))
}

func current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger
}

func logf(level slog.Level, format string, v ...interface{}) {
	l := current()
	if !l.Enabled(context.Background(), level) {
		return
	}
	l.Log(context.Background(), level, fmt.Sprintf(format, v...))
}

// Tracef prints the message with TRACE severity in the specified format.
func Tracef(format string, v ...interface{}) {
	logf(LevelTrace, format, v...)
}

// Debugf prints the message with DEBUG severity in the specified format.
func Debugf(format string, v ...interface{}) {
	logf(LevelDebug, format, v...)
}

// Infof prints the message with INFO severity in the specified format.
func Infof(format string, v ...interface{}) {
	logf(LevelInfo, format, v...)
}

// Warnf prints the message with WARNING severity in the specified format.
func Warnf(format string, v ...interface{}) {
	logf(LevelWarn, format, v...)
}

// Errorf prints the message with ERROR severity in the specified format.
func Errorf(format string, v ...interface{}) {
	logf(LevelError, format, v...)
}
