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

// Package workerpool runs batches of independent tasks on a fixed set of
// worker goroutines.
//
// A TaskManager owns its workers for its whole lifetime. The caller submits a
// batch, waits for it with Await, and may then submit the next one; the same
// workers serve every batch. Each task of a batch is executed exactly once, in
// no particular order.
package workerpool

import (
	"context"
	"errors"
	"fmt"

	"github.com/ctool-go/taskmanager/internal/logger"
	"github.com/ctool-go/taskmanager/metrics"
	"github.com/ctool-go/taskmanager/tracing"
	"github.com/google/uuid"
	"github.com/jacobsa/syncutil"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// maxThreads is the largest worker table a TaskManager will reserve.
const maxThreads = 1 << 16

var errBatchAbandoned = errors.New("batch abandoned by Destroy")

// TaskManager executes batches of tasks on a fixed number of workers. All
// methods are safe for concurrent use; Submit, Destroy, Workers and Snapshot
// are serialized by an internal mutex, Await never takes it.
type TaskManager struct {
	/////////////////////////
	// Constant data
	/////////////////////////

	cfg    Config
	batch  *taskBatch
	waiter waiter
	group  *errgroup.Group

	/////////////////////////
	// Mutable state
	/////////////////////////

	mu syncutil.InvariantMutex

	// INVARIANT: If !destroyed, len(workers) > 0
	// INVARIANT: If destroyed, workers == nil
	//
	// GUARDED_BY(mu)
	workers []*worker

	// INVARIANT: If destroyed, batch state is StateShutdown
	//
	// GUARDED_BY(mu)
	destroyed bool
}

// NewTaskManager starts threads workers sharing an empty batch. The workers
// stay idle until the first Submit.
func NewTaskManager(threads int, config Config) (*TaskManager, error) {
	return newTaskManager(threads, config, nil)
}

// NewTaskManagerWithTasks starts threads workers that immediately begin
// executing tasks. The batch is installed before the first worker starts.
func NewTaskManagerWithTasks(tasks []Task, threads int, config Config) (*TaskManager, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	return newTaskManager(threads, config, tasks)
}

func newTaskManager(threads int, config Config, initial []Task) (*TaskManager, error) {
	if threads <= 0 {
		return nil, fmt.Errorf("creating task manager with %d threads: %w", threads, ErrInvalidArgument)
	}
	if threads > maxThreads {
		return nil, fmt.Errorf("reserving %d workers (max %d): %w", threads, maxThreads, ErrAllocationFailure)
	}
	config, err := config.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("creating task manager: %w", err)
	}

	m := &TaskManager{
		cfg:     config,
		batch:   &taskBatch{},
		waiter:  newWaiter(config),
		group:   new(errgroup.Group),
		workers: make([]*worker, 0, threads),
	}
	m.batch.finished.Store(true)
	if config.MaxWorkers > 0 {
		m.group.SetLimit(config.MaxWorkers)
	}

	if initial != nil {
		m.install(context.Background(), initial)
	}

	for i := range threads {
		w := &worker{id: i, m: m}
		if !m.group.TryGo(w.loop) {
			m.stopWorkers()
			m.abandonBatch()
			return nil, fmt.Errorf("starting worker %d of %d: %w", i+1, threads, ErrThreadStart)
		}
		m.workers = append(m.workers, w)
	}

	m.mu = syncutil.NewInvariantMutex(m.checkInvariants)
	logger.Debugf("Task manager started with %d workers (wait mode %s)", threads, config.WaitMode)
	return m, nil
}

////////////////////////////////////////////////////////////////////////
// Public interface
////////////////////////////////////////////////////////////////////////

// Submit replaces the finished batch with tasks and wakes the workers. It
// fails with ErrSubmissionRejected while the previous batch is still running,
// and with ErrShutdown after Destroy.
//
// LOCKS_EXCLUDED(m.mu)
func (m *TaskManager) Submit(tasks []Task) error {
	return m.SubmitContext(context.Background(), tasks)
}

// SubmitContext is like Submit. The batch span becomes a child of the span in
// ctx, and ctx bounds the wait for workers still finishing the previous batch.
//
// LOCKS_EXCLUDED(m.mu)
func (m *TaskManager) SubmitContext(ctx context.Context, tasks []Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.batch.loadState() {
	case StateShutdown:
		return fmt.Errorf("submitting %d tasks: %w", len(tasks), ErrShutdown)
	case StateRunning:
		m.cfg.Metrics.BatchSubmitCount(1, metrics.OutcomeRejectedAttr)
		logger.Warnf("Rejected a batch of %d tasks: batch %s is still running. Call Await before submitting the next batch.", len(tasks), m.batch.id)
		return fmt.Errorf("submitting %d tasks: %w", len(tasks), ErrSubmissionRejected)
	}

	// Workers that saw the previous batch running may still be on their way
	// out of it.
	if err := m.waiter.wait(ctx, func() bool { return m.batch.busy.Load() == 0 }); err != nil {
		return fmt.Errorf("waiting for previous batch: %w", err)
	}

	m.install(ctx, tasks)
	return nil
}

// Await blocks until the current batch is exhausted and every task claimed
// from it has returned. It returns immediately if no batch is running or the
// manager has been destroyed.
func (m *TaskManager) Await() {
	_ = m.AwaitContext(context.Background())
}

// AwaitContext is like Await but gives up when ctx is done, returning
// ctx.Err().
func (m *TaskManager) AwaitContext(ctx context.Context) error {
	return m.waiter.wait(ctx, m.batch.settled)
}

// Destroy stops every worker and waits for them to exit. Tasks already
// executing run to completion; tasks not yet claimed are abandoned. Calling
// Destroy more than once is harmless.
//
// LOCKS_EXCLUDED(m.mu)
func (m *TaskManager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.destroyed {
		return
	}

	m.stopWorkers()
	m.abandonBatch()
	m.batch.release()
	n := len(m.workers)
	m.workers = nil
	m.destroyed = true
	logger.Debugf("Task manager destroyed; %d workers joined", n)
}

// State returns the current state of the manager's batch.
func (m *TaskManager) State() State {
	return m.batch.loadState()
}

// Workers returns the number of workers owned by the manager, or zero once
// it has been destroyed.
//
// LOCKS_EXCLUDED(m.mu)
func (m *TaskManager) Workers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workers)
}

// Snapshot is a point-in-time view of a TaskManager.
type Snapshot struct {
	State   State
	BatchID string
	// Cursor may exceed Length once the batch is exhausted.
	Cursor   uint64
	Length   int
	Executed uint64
	Workers  int
}

// Snapshot reports the progress of the current batch.
//
// LOCKS_EXCLUDED(m.mu)
func (m *TaskManager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		State:    m.batch.loadState(),
		Cursor:   m.batch.cursor.Load(),
		Length:   int(m.batch.length),
		Executed: m.batch.executed.Load(),
		Workers:  len(m.workers),
	}
	if m.batch.id != uuid.Nil {
		s.BatchID = m.batch.id.String()
	}
	return s
}

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

// LOCKS_REQUIRED(m.mu)
func (m *TaskManager) checkInvariants() {
	state := m.batch.loadState()
	if state < StateIdle || state > StateShutdown {
		panic(fmt.Sprintf("Unexpected batch state: %v", state))
	}

	if m.destroyed {
		if m.workers != nil {
			panic("Destroyed task manager still holds workers")
		}
		if state != StateShutdown {
			panic(fmt.Sprintf("Destroyed task manager in state %v", state))
		}
		return
	}

	if len(m.workers) == 0 {
		panic("Live task manager without workers")
	}
}

// install resets the batch to tasks and publishes it.
//
// REQUIRES: batch state != StateRunning && batch busy == 0
func (m *TaskManager) install(ctx context.Context, tasks []Task) {
	id := uuid.New()
	ctx, span := m.cfg.Tracer.StartSpan(ctx, tracing.BatchSpanName,
		attribute.String(tracing.BatchIDKey, id.String()),
		attribute.Int(tracing.BatchSizeKey, len(tasks)))

	m.batch.reset(ctx, tasks, id, span, m.cfg.Clock.Now())
	m.cfg.Metrics.BatchSubmitCount(1, metrics.OutcomeAcceptedAttr)
	logger.Debugf("Batch %s submitted with %d tasks", id, len(tasks))

	// Nothing will ever finish a task of an empty batch; the first worker to
	// claim just flips it back to idle.
	if len(tasks) == 0 {
		m.completeBatch()
	}

	m.batch.publish()
	m.waiter.notify()
}

// completeBatch records the end of the current batch. Only the first call
// per batch has an effect.
func (m *TaskManager) completeBatch() {
	b := m.batch
	if !b.finished.CompareAndSwap(false, true) {
		return
	}

	latency := m.cfg.Clock.Now().Sub(b.start)
	m.cfg.Metrics.BatchLatency(b.ctx, latency)
	m.cfg.Tracer.EndSpan(b.span)
	logger.Debugf("Batch %s finished: %d tasks in %v", b.id, b.length, latency)
}

// abandonBatch ends the span of a batch that will never finish.
//
// REQUIRES: no worker is running
func (m *TaskManager) abandonBatch() {
	b := m.batch
	if !b.finished.CompareAndSwap(false, true) {
		return
	}

	left := b.remaining.Load()
	m.cfg.Tracer.RecordError(b.span, fmt.Errorf("%d of %d tasks not executed: %w", left, b.length, errBatchAbandoned))
	m.cfg.Tracer.EndSpan(b.span)
	logger.Warnf("Batch %s abandoned with %d of %d tasks not executed", b.id, left, b.length)
}

// releaseWorker ends the activity a worker announced in step. The last worker
// out of a batch that is no longer running wakes Await and Submit.
func (m *TaskManager) releaseWorker() {
	if m.batch.busy.Add(-1) == 0 && m.batch.loadState() != StateRunning {
		m.waiter.notify()
	}
}

// stopWorkers flips the batch to StateShutdown and joins every worker.
func (m *TaskManager) stopWorkers() {
	m.batch.state.Store(int32(StateShutdown))
	m.waiter.notify()
	_ = m.group.Wait()
}
