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

package cfg

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// LogSeverity represents the logging severity and can accept the following values
// "TRACE", "DEBUG", "INFO", "WARNING", "ERROR", "OFF"
type LogSeverity string

// Constants for all supported log severities.
const (
	TraceLogSeverity   LogSeverity = "TRACE"
	DebugLogSeverity   LogSeverity = "DEBUG"
	InfoLogSeverity    LogSeverity = "INFO"
	WarningLogSeverity LogSeverity = "WARNING"
	ErrorLogSeverity   LogSeverity = "ERROR"
	OffLogSeverity     LogSeverity = "OFF"
)

// severityRanking maps each level to an integer for validation and comparison.
var severityRanking = map[LogSeverity]int{
	TraceLogSeverity:   0,
	DebugLogSeverity:   1,
	InfoLogSeverity:    2,
	WarningLogSeverity: 3,
	ErrorLogSeverity:   4,
	OffLogSeverity:     5,
}

func (l *LogSeverity) UnmarshalText(text []byte) error {
	level := LogSeverity(strings.ToUpper(string(text)))
	if _, ok := severityRanking[level]; !ok {
		return fmt.Errorf("invalid log severity level: %s. Must be one of [TRACE, DEBUG, INFO, WARNING, ERROR, OFF]", text)
	}
	*l = level
	return nil
}

// Rank returns the integer representation of the severity rank.
// Returns -1 if the severity is unknown.
func (l LogSeverity) Rank() int {
	if rank, ok := severityRanking[l]; ok {
		return rank
	}
	return -1
}

// LogFormat is either "text" or "json".
type LogFormat string

func (f *LogFormat) UnmarshalText(text []byte) error {
	format := strings.ToLower(string(text))
	v := []string{TextLogFormat, JSONLogFormat}
	if !slices.Contains(v, format) {
		return fmt.Errorf("invalid log format: %s. It can only accept values in the list: %v", text, v)
	}
	*f = LogFormat(format)
	return nil
}

// WaitMode selects how idle workers wait for the next batch.
type WaitMode string

const (
	// PollWaitMode makes idle workers sleep for a fixed interval between
	// checks of the manager state.
	PollWaitMode WaitMode = "poll"

	// SignalWaitMode makes idle workers block until the manager state changes.
	SignalWaitMode WaitMode = "signal"
)

func (w *WaitMode) UnmarshalText(text []byte) error {
	mode := WaitMode(strings.ToLower(string(text)))
	if mode != PollWaitMode && mode != SignalWaitMode {
		return fmt.Errorf("invalid wait mode: %s. It can only accept values in the list: [%s %s]", text, PollWaitMode, SignalWaitMode)
	}
	*w = mode
	return nil
}

// TracingMode selects the span exporter. The empty mode disables tracing.
type TracingMode string

const (
	NoTracing     TracingMode = ""
	StdoutTracing TracingMode = "stdout"
)

func (m *TracingMode) UnmarshalText(text []byte) error {
	mode := TracingMode(strings.ToLower(string(text)))
	if mode != NoTracing && mode != StdoutTracing {
		return fmt.Errorf("invalid tracing mode: %s. Must be empty or %q", text, StdoutTracing)
	}
	*m = mode
	return nil
}

// ResolvedPath represents a file-path which is an absolute path. Relative
// paths are resolved against the current working directory.
type ResolvedPath string

func (p *ResolvedPath) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = ""
		return nil
	}
	path, err := filepath.Abs(string(text))
	if err != nil {
		return err
	}
	*p = ResolvedPath(path)
	return nil
}
