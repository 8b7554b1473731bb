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
	"errors"
	"fmt"
)

const (
	ThreadsInvalidValueError      = "threads should be atleast 1"
	IdleIntervalInvalidValueError = "idle-interval should be positive"
	MaxWorkersInvalidValueError   = "max-workers should be 0 (no bound) or a positive value"
	TaskKindsInvalidValueError    = "task-kinds should be atleast 1"
	TaskRepeatsInvalidValueError  = "task-repeats can't be negative"
	TaskDurationInvalidValueError = "task-duration can't be negative"
	RoundsInvalidValueError       = "rounds should be atleast 1"
	TasksPerSecInvalidValueError  = "tasks-per-sec can't be negative"
	PrometheusPortInvalidError    = "prometheus-port should be between 0 and 65535"
)

func isValidLogRotateConfig(config *LogRotateLoggingConfig) error {
	if config.MaxFileSizeMb <= 0 {
		return fmt.Errorf("max-file-size-mb should be atleast 1")
	}
	if config.BackupFileCount < 0 {
		return fmt.Errorf("backup-file-count should be 0 (to retain all backup files) or a positive value")
	}
	return nil
}

func isValidPoolConfig(c *PoolConfig) error {
	if c.Threads < 1 {
		return errors.New(ThreadsInvalidValueError)
	}
	if c.IdleInterval <= 0 {
		return errors.New(IdleIntervalInvalidValueError)
	}
	if c.MaxWorkers < 0 {
		return errors.New(MaxWorkersInvalidValueError)
	}
	if c.WaitMode != PollWaitMode && c.WaitMode != SignalWaitMode {
		return fmt.Errorf("unsupported wait-mode %q", c.WaitMode)
	}
	return nil
}

func isValidWorkloadConfig(c *WorkloadConfig) error {
	if c.TaskKinds < 1 {
		return errors.New(TaskKindsInvalidValueError)
	}
	if c.TaskRepeats < 0 {
		return errors.New(TaskRepeatsInvalidValueError)
	}
	if c.TaskDuration < 0 {
		return errors.New(TaskDurationInvalidValueError)
	}
	if c.Rounds < 1 {
		return errors.New(RoundsInvalidValueError)
	}
	if c.TasksPerSec < 0 {
		return errors.New(TasksPerSecInvalidValueError)
	}
	return nil
}

// ValidateConfig returns a non-nil error if the config is invalid.
func ValidateConfig(config *Config) error {
	var err error

	if err = isValidLogRotateConfig(&config.Logging.LogRotate); err != nil {
		return fmt.Errorf("error parsing log-rotate config: %w", err)
	}

	if err = isValidPoolConfig(&config.Pool); err != nil {
		return fmt.Errorf("error parsing pool config: %w", err)
	}

	if err = isValidWorkloadConfig(&config.Workload); err != nil {
		return fmt.Errorf("error parsing workload config: %w", err)
	}

	if config.Metrics.PrometheusPort < 0 || config.Metrics.PrometheusPort > MaxPrometheusPort {
		return fmt.Errorf("error parsing metrics config: %s", PrometheusPortInvalidError)
	}

	return nil
}
