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

package workerpool

import (
	"context"

	"github.com/ctool-go/taskmanager/internal/logger"
	"github.com/ctool-go/taskmanager/metrics"
)

// worker is the record of one goroutine owned by a TaskManager.
type worker struct {
	id int
	m  *TaskManager
}

// loop runs until the manager shuts down. It never returns an error; the
// signature matches errgroup.Group.
func (w *worker) loop() error {
	m := w.m
	b := m.batch
	m.cfg.Metrics.ActiveWorkers(1)
	defer m.cfg.Metrics.ActiveWorkers(-1)

	for {
		switch b.loadState() {
		case StateShutdown:
			logger.Tracef("worker %d: exiting", w.id)
			return nil
		case StateIdle:
			_ = m.waiter.wait(context.Background(), func() bool {
				return b.loadState() != StateIdle
			})
		case StateRunning:
			w.step()
		}
	}
}

// step claims and executes at most one task.
func (w *worker) step() {
	m := w.m
	b := m.batch

	// Announce activity before looking at the batch contents. The submitter
	// does not touch them until busy drops to zero with the batch not running.
	b.busy.Add(1)
	defer m.releaseWorker()

	if b.loadState() != StateRunning {
		return
	}

	idx, ok := b.claimNext()
	if !ok {
		if b.markIdle() {
			logger.Tracef("worker %d: batch %s exhausted", w.id, b.id)
		}
		return
	}

	start := m.cfg.Clock.Now()
	b.tasks[idx].Execute()
	metrics.CaptureTaskMetrics(b.ctx, m.cfg.Metrics, m.cfg.Clock.Now().Sub(start))
	b.executed.Add(1)

	if b.remaining.Add(-1) == 0 {
		m.completeBatch()
	}
}
