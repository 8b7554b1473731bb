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

package workload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ctool-go/taskmanager/internal/logger"
	"github.com/ctool-go/taskmanager/internal/ratelimit"
	"github.com/ctool-go/taskmanager/internal/workerpool"
)

// Report summarizes a Run.
type Report struct {
	Rounds  int
	Tasks   int
	Elapsed time.Duration
	Counts  []int64
}

// Run submits rounds batches of w to m one after another, awaiting each, and
// then verifies the execution counts. A nil throttle runs tasks unthrottled.
func Run(
	ctx context.Context,
	m *workerpool.TaskManager,
	w *Workload,
	rounds int,
	throttle ratelimit.Throttle) (r Report, err error) {
	start := time.Now()
	for round := range rounds {
		tasks := w.Tasks()
		if throttle != nil {
			tasks = ratelimit.ThrottleBatch(ctx, tasks, throttle)
		}

		if err = submit(ctx, m, tasks); err != nil {
			err = fmt.Errorf("round %d: %w", round+1, err)
			return
		}

		if err = m.AwaitContext(ctx); err != nil {
			err = fmt.Errorf("round %d: awaiting batch: %w", round+1, err)
			return
		}
		logger.Infof("Round %d/%d: %d tasks done", round+1, rounds, len(tasks))
	}

	r = Report{
		Rounds:  rounds,
		Tasks:   rounds * w.Size(),
		Elapsed: time.Since(start),
		Counts:  w.Counts(),
	}
	err = w.Verify(rounds)
	return
}

// submit retries a rejected submission once the running batch has drained.
func submit(ctx context.Context, m *workerpool.TaskManager, tasks []workerpool.Task) error {
	for {
		err := m.SubmitContext(ctx, tasks)
		if !errors.Is(err, workerpool.ErrSubmissionRejected) {
			return err
		}
		if err := m.AwaitContext(ctx); err != nil {
			return fmt.Errorf("awaiting running batch: %w", err)
		}
	}
}
