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

package ratelimit

import (
	"context"

	"github.com/ctool-go/taskmanager/internal/logger"
	"github.com/ctool-go/taskmanager/internal/workerpool"
)

// ThrottledTask returns a task that takes one token from throttle before
// running wrapped. Tokens are awaited under ctx; if ctx ends first the task
// still runs, so that a throttled batch keeps its exactly-once guarantee.
func ThrottledTask(
	ctx context.Context,
	wrapped workerpool.Task,
	throttle Throttle) workerpool.Task {
	return &throttledTask{
		ctx:      ctx,
		wrapped:  wrapped,
		throttle: throttle,
	}
}

type throttledTask struct {
	ctx      context.Context
	wrapped  workerpool.Task
	throttle Throttle
}

func (tt *throttledTask) Execute() {
	if err := tt.throttle.Wait(tt.ctx, 1); err != nil {
		logger.Tracef("Running task without a throttle token: %v", err)
	}
	tt.wrapped.Execute()
}

// ThrottleBatch wraps every task of a batch with ThrottledTask.
func ThrottleBatch(
	ctx context.Context,
	tasks []workerpool.Task,
	throttle Throttle) []workerpool.Task {
	out := make([]workerpool.Task, len(tasks))
	for i, t := range tasks {
		out[i] = ThrottledTask(ctx, t, throttle)
	}
	return out
}
