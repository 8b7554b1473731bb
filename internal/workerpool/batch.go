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
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// taskBatch is the single batch shared by all workers of a task manager. Its
// identity never changes; its contents are replaced on every submission.
type taskBatch struct {
	// INVARIANT: Holds a valid State.
	// INVARIANT: Once StateShutdown, never changes again.
	state atomic.Int32

	// Index of the next task to hand out. It only moves while the state is
	// StateRunning and may run past length; a claim at or beyond length means
	// the batch is exhausted.
	cursor atomic.Uint64

	// Number of workers currently between announcing activity and releasing
	// it. While it is zero and the state is not StateRunning, no worker reads
	// the fields below.
	busy atomic.Int64

	// Tasks not yet finished in the current batch.
	remaining atomic.Int64

	// Tasks finished in the current batch.
	executed atomic.Uint64

	// Set once the current batch has been completed or abandoned.
	finished atomic.Bool

	// The fields below are written only by the submitter, while the state is
	// not StateRunning and busy is zero. The following store of StateRunning
	// publishes them to the workers.
	tasks  []Task
	length uint64
	id     uuid.UUID
	ctx    context.Context
	span   trace.Span
	start  time.Time
}

func (b *taskBatch) loadState() State {
	return State(b.state.Load())
}

// claimNext hands out the next index. Every index in [0, length) is returned
// exactly once across all callers. ok is false once the batch is exhausted.
func (b *taskBatch) claimNext() (idx uint64, ok bool) {
	idx = b.cursor.Add(1) - 1
	return idx, idx < b.length
}

// markIdle flips a running batch to idle. It reports whether this call made
// the transition; concurrent callers and a batch already shut down are left
// untouched.
func (b *taskBatch) markIdle() bool {
	return b.state.CompareAndSwap(int32(StateRunning), int32(StateIdle))
}

// reset installs a private copy of tasks as the current batch without
// publishing it.
//
// REQUIRES: state != StateRunning && busy == 0
func (b *taskBatch) reset(ctx context.Context, tasks []Task, id uuid.UUID, span trace.Span, start time.Time) {
	b.tasks = append([]Task(nil), tasks...)
	b.length = uint64(len(tasks))
	b.id = id
	b.ctx = ctx
	b.span = span
	b.start = start
	b.remaining.Store(int64(len(tasks)))
	b.executed.Store(0)
	b.finished.Store(false)
	b.cursor.Store(0)
}

// publish makes the installed batch visible to the workers.
func (b *taskBatch) publish() {
	b.state.Store(int32(StateRunning))
}

// settled reports whether nothing is running: either the manager is shut down
// or the batch is idle and every claimed task has returned.
func (b *taskBatch) settled() bool {
	switch b.loadState() {
	case StateShutdown:
		return true
	case StateIdle:
		return b.busy.Load() == 0
	}
	return false
}

// release drops the task slice so that captured inputs can be collected.
//
// REQUIRES: state != StateRunning && busy == 0
func (b *taskBatch) release() {
	b.tasks = nil
	b.length = 0
}
