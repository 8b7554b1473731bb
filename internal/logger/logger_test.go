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
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/ctool-go/taskmanager/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	textTraceString   = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=TRACE message=\"TestLogs: www.traceExample.com\""
	textDebugString   = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=DEBUG message=\"TestLogs: www.debugExample.com\""
	textInfoString    = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=INFO message=\"TestLogs: www.infoExample.com\""
	textWarningString = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=WARNING message=\"TestLogs: www.warningExample.com\""
	textErrorString   = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=ERROR message=\"TestLogs: www.errorExample.com\""

	jsonTraceString   = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"TRACE\",\"message\":\"TestLogs: www.traceExample.com\"}"
	jsonDebugString   = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"DEBUG\",\"message\":\"TestLogs: www.debugExample.com\"}"
	jsonInfoString    = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"INFO\",\"message\":\"TestLogs: www.infoExample.com\"}"
	jsonWarningString = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"WARNING\",\"message\":\"TestLogs: www.warningExample.com\"}"
	jsonErrorString   = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"ERROR\",\"message\":\"TestLogs: www.errorExample.com\"}"
)

type LoggerTest struct {
	suite.Suite
	saved *slog.Logger
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTest))
}

func (t *LoggerTest) SetupTest() {
	t.saved = defaultLogger
}

func (t *LoggerTest) TearDownTest() {
	defaultLogger = t.saved
	defaultLoggerFactory.format = cfg.TextLogFormat
}

// //////////////////////////////////////////////////////////////////////
// Boilerplate
// //////////////////////////////////////////////////////////////////////

func redirectLogsToGivenBuffer(buf *bytes.Buffer, format, level string) {
	var programLevel = new(slog.LevelVar)
	f := &loggerFactory{format: format, level: level}
	defaultLogger = slog.New(f.createJsonOrTextHandler(buf, programLevel, "TestLogs: "))
	setLoggingLevel(level, programLevel)
}

func fetchLogOutput(format, level string) []string {
	var buf bytes.Buffer
	redirectLogsToGivenBuffer(&buf, format, level)

	functions := []func(){
		func() { Tracef("www.traceExample.com") },
		func() { Debugf("www.debugExample.com") },
		func() { Infof("www.infoExample.com") },
		func() { Warnf("www.warningExample.com") },
		func() { Errorf("www.errorExample.com") },
	}
	var output []string
	for _, f := range functions {
		f()
		output = append(output, buf.String())
		buf.Reset()
	}
	return output
}

func validateOutput(t *testing.T, expected []string, output []string) {
	require.Len(t, output, len(expected))
	for i := range output {
		if expected[i] == "" {
			assert.Equal(t, expected[i], output[i])
		} else {
			assert.Regexp(t, regexp.MustCompile(expected[i]), output[i])
		}
	}
}

// //////////////////////////////////////////////////////////////////////
// Tests
// //////////////////////////////////////////////////////////////////////

func (t *LoggerTest) TestSeverityFiltering() {
	testCases := []struct {
		format   string
		level    string
		expected []string
	}{
		{cfg.TextLogFormat, cfg.OFF, []string{"", "", "", "", ""}},
		{cfg.TextLogFormat, cfg.ERROR, []string{"", "", "", "", textErrorString}},
		{cfg.TextLogFormat, cfg.WARNING, []string{"", "", "", textWarningString, textErrorString}},
		{cfg.TextLogFormat, cfg.INFO, []string{"", "", textInfoString, textWarningString, textErrorString}},
		{cfg.TextLogFormat, cfg.DEBUG, []string{"", textDebugString, textInfoString, textWarningString, textErrorString}},
		{cfg.TextLogFormat, cfg.TRACE, []string{textTraceString, textDebugString, textInfoString, textWarningString, textErrorString}},
		{cfg.JSONLogFormat, cfg.OFF, []string{"", "", "", "", ""}},
		{cfg.JSONLogFormat, cfg.ERROR, []string{"", "", "", "", jsonErrorString}},
		{cfg.JSONLogFormat, cfg.WARNING, []string{"", "", "", jsonWarningString, jsonErrorString}},
		{cfg.JSONLogFormat, cfg.INFO, []string{"", "", jsonInfoString, jsonWarningString, jsonErrorString}},
		{cfg.JSONLogFormat, cfg.DEBUG, []string{"", jsonDebugString, jsonInfoString, jsonWarningString, jsonErrorString}},
		{cfg.JSONLogFormat, cfg.TRACE, []string{jsonTraceString, jsonDebugString, jsonInfoString, jsonWarningString, jsonErrorString}},
	}

	for _, tc := range testCases {
		t.Run(tc.format+"_"+tc.level, func() {
			validateOutput(t.T(), tc.expected, fetchLogOutput(tc.format, tc.level))
		})
	}
}

func (t *LoggerTest) TestSetLoggingLevel() {
	testData := []struct {
		inputLevel           string
		expectedProgramLevel slog.Level
	}{
		{cfg.TRACE, LevelTrace},
		{cfg.DEBUG, LevelDebug},
		{cfg.INFO, LevelInfo},
		{cfg.WARNING, LevelWarn},
		{cfg.ERROR, LevelError},
		{cfg.OFF, LevelOff},
	}

	for _, test := range testData {
		programLevel := new(slog.LevelVar)
		setLoggingLevel(test.inputLevel, programLevel)
		assert.Equal(t.T(), test.expectedProgramLevel, programLevel.Level())
	}
}

func (t *LoggerTest) TestInitLogFile() {
	filePath := filepath.Join(t.T().TempDir(), "log.txt")
	loggingConfig := cfg.LoggingConfig{
		FilePath: cfg.ResolvedPath(filePath),
		Format:   cfg.JSONLogFormat,
		Severity: cfg.DebugLogSeverity,
		LogRotate: cfg.LogRotateLoggingConfig{
			MaxFileSizeMb:   2,
			BackupFileCount: 2,
			Compress:        true,
		},
	}
	savedFactory := defaultLoggerFactory
	defer func() {
		Close()
		defaultLoggerFactory = savedFactory
	}()

	err := InitLogFile(loggingConfig)
	require.NoError(t.T(), err)
	Debugf("batch %d done", 7)
	Close()

	assert.NotNil(t.T(), defaultLoggerFactory)
	assert.Equal(t.T(), cfg.JSONLogFormat, defaultLoggerFactory.format)
	assert.Equal(t.T(), cfg.DEBUG, defaultLoggerFactory.level)
	content, err := os.ReadFile(filePath)
	require.NoError(t.T(), err)
	assert.Contains(t.T(), string(content), "\"severity\":\"DEBUG\"")
	assert.Contains(t.T(), string(content), "batch 7 done")
}

func (t *LoggerTest) TestInitLogFile_UnwritablePath() {
	err := InitLogFile(cfg.LoggingConfig{FilePath: cfg.ResolvedPath(filepath.Join(t.T().TempDir(), "missing", "log.txt"))})

	assert.Error(t.T(), err)
}

func (t *LoggerTest) TestSetLogFormat() {
	savedFactory := *defaultLoggerFactory
	defer func() { *defaultLoggerFactory = savedFactory }()

	SetLogFormat(cfg.JSONLogFormat)
	assert.Equal(t.T(), cfg.JSONLogFormat, defaultLoggerFactory.format)

	SetLogFormat(cfg.TextLogFormat)
	assert.Equal(t.T(), cfg.TextLogFormat, defaultLoggerFactory.format)
}
