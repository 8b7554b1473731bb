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

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ctool-go/taskmanager/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig(t *testing.T) cfg.Config {
	t.Helper()
	c, err := execute(t, []string{
		"--threads=3",
		"--task-kinds=3",
		"--task-repeats=20",
		"--task-duration=0s",
		"--rounds=2",
	})
	require.NoError(t, err)
	return c
}

func TestRunCompletesWorkload(t *testing.T) {
	c := smallConfig(t)
	c.Logging.FilePath = cfg.ResolvedPath(filepath.Join(t.TempDir(), "taskmanager.log"))

	require.NoError(t, run(context.Background(), c))

	content, err := os.ReadFile(string(c.Logging.FilePath))
	require.NoError(t, err)
	assert.Contains(t, string(content), "All 120 tasks executed exactly once.")
	assert.Contains(t, string(content), "Task kind 2 executed 40 times")
}

func TestRunPollModeWithThrottle(t *testing.T) {
	c := smallConfig(t)
	c.Logging.FilePath = cfg.ResolvedPath(filepath.Join(t.TempDir(), "taskmanager.log"))
	c.Pool.WaitMode = cfg.PollWaitMode
	c.Pool.IdleInterval = time.Millisecond
	c.Workload.TasksPerSec = 100000

	assert.NoError(t, run(context.Background(), c))
}

func TestRunCancelled(t *testing.T) {
	c := smallConfig(t)
	c.Logging.FilePath = cfg.ResolvedPath(filepath.Join(t.TempDir(), "taskmanager.log"))
	c.Workload.TaskDuration = time.Millisecond
	c.Workload.Rounds = 1000
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, c)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunTooManyWorkers(t *testing.T) {
	c := smallConfig(t)
	c.Logging.FilePath = cfg.ResolvedPath(filepath.Join(t.TempDir(), "taskmanager.log"))
	c.Pool.MaxWorkers = 2

	assert.Error(t, run(context.Background(), c))
}

func TestNewThrottle(t *testing.T) {
	throttle, err := newThrottle(0)
	assert.NoError(t, err)
	assert.Nil(t, throttle)

	throttle, err = newThrottle(10)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), throttle.Capacity())

	_, err = newThrottle(0.01)
	assert.Error(t, err)
}
