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
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Debug DebugConfig `yaml:"debug"`

	Logging LoggingConfig `yaml:"logging"`

	Metrics MetricsConfig `yaml:"metrics"`

	Monitoring MonitoringConfig `yaml:"monitoring"`

	Pool PoolConfig `yaml:"pool"`

	Workload WorkloadConfig `yaml:"workload"`
}

type DebugConfig struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation"`
}

type LogRotateLoggingConfig struct {
	BackupFileCount int64 `yaml:"backup-file-count"`

	Compress bool `yaml:"compress"`

	MaxFileSizeMb int64 `yaml:"max-file-size-mb"`
}

type LoggingConfig struct {
	FilePath ResolvedPath `yaml:"file-path"`

	Format LogFormat `yaml:"format"`

	LogRotate LogRotateLoggingConfig `yaml:"log-rotate"`

	Severity LogSeverity `yaml:"severity"`
}

type MetricsConfig struct {
	PrometheusPort int64 `yaml:"prometheus-port"`
}

type MonitoringConfig struct {
	TracingMode TracingMode `yaml:"tracing-mode"`
}

type PoolConfig struct {
	IdleInterval time.Duration `yaml:"idle-interval"`

	MaxWorkers int64 `yaml:"max-workers"`

	Threads int64 `yaml:"threads"`

	WaitMode WaitMode `yaml:"wait-mode"`
}

type WorkloadConfig struct {
	Rounds int64 `yaml:"rounds"`

	TaskDuration time.Duration `yaml:"task-duration"`

	TaskKinds int64 `yaml:"task-kinds"`

	TaskRepeats int64 `yaml:"task-repeats"`

	TasksPerSec float64 `yaml:"tasks-per-sec"`
}

type flagBinding struct {
	flag string
	key  string
}

// BindFlags declares every command-line flag on flagSet and binds each of
// them to its config key in v.
func BindFlags(v *viper.Viper, flagSet *pflag.FlagSet) error {
	flagSet.BoolP("debug_invariants", "", false, "Exit when internal invariants are violated.")

	flagSet.DurationP("idle-interval", "", DefaultIdleInterval, "How long an idle worker sleeps between polls when wait-mode is 'poll'. Also the polling interval of Await in that mode.")

	flagSet.StringP("log-file", "", "", "The file for storing logs. When not provided, logs are printed to stdout.")

	flagSet.StringP("log-format", "", "text", "The format of the log file: 'text' or 'json'.")

	flagSet.IntP("log-rotate-backup-file-count", "", 10, "The maximum number of backup log files to retain after they have been rotated. A value of 0 retains all backup files.")

	flagSet.BoolP("log-rotate-compress", "", true, "Controls whether the rotated log files should be compressed using gzip.")

	flagSet.IntP("log-rotate-max-file-size-mb", "", 512, "The maximum size in megabytes that a log file can reach before it is rotated.")

	flagSet.StringP("log-severity", "", "info", "Specifies the logging severity expressed as one of [trace, debug, info, warning, error, off]")

	flagSet.IntP("max-workers", "", 0, "Upper bound on the number of worker goroutines the pool may start. 0 means no bound.")

	flagSet.IntP("prometheus-port", "", 0, "Expose Prometheus metrics endpoint on this port and a path of /metrics. 0 disables the endpoint.")

	flagSet.IntP("rounds", "", 1, "Number of batches submitted one after another to the same task manager.")

	flagSet.DurationP("task-duration", "", time.Millisecond, "Simulated work per task. Task kind k takes (k+1) times this duration.")

	flagSet.IntP("task-kinds", "", 5, "Number of distinct task kinds in every batch.")

	flagSet.IntP("task-repeats", "", 100, "How many times each task kind appears in a batch.")

	flagSet.Float64P("tasks-per-sec", "", 0, "Caps the rate at which tasks start executing across the pool. 0 means unlimited.")

	flagSet.IntP("threads", "", 10, "Number of worker goroutines owned by the task manager.")

	flagSet.StringP("tracing-mode", "", "", "Export a span per batch. Value can be '' (disabled) or 'stdout'.")

	flagSet.StringP("wait-mode", "", string(SignalWaitMode), "How idle workers and Await wait for state changes: 'signal' (notified) or 'poll' (fixed-interval sleeps).")

	bindings := []flagBinding{
		{"debug_invariants", "debug.exit-on-invariant-violation"},
		{"idle-interval", "pool.idle-interval"},
		{"log-file", "logging.file-path"},
		{"log-format", "logging.format"},
		{"log-rotate-backup-file-count", "logging.log-rotate.backup-file-count"},
		{"log-rotate-compress", "logging.log-rotate.compress"},
		{"log-rotate-max-file-size-mb", "logging.log-rotate.max-file-size-mb"},
		{"log-severity", "logging.severity"},
		{"max-workers", "pool.max-workers"},
		{"prometheus-port", "metrics.prometheus-port"},
		{"rounds", "workload.rounds"},
		{"task-duration", "workload.task-duration"},
		{"task-kinds", "workload.task-kinds"},
		{"task-repeats", "workload.task-repeats"},
		{"tasks-per-sec", "workload.tasks-per-sec"},
		{"threads", "pool.threads"},
		{"tracing-mode", "monitoring.tracing-mode"},
		{"wait-mode", "pool.wait-mode"},
	}
	for _, b := range bindings {
		if err := v.BindPFlag(b.key, flagSet.Lookup(b.flag)); err != nil {
			return err
		}
	}

	return nil
}
