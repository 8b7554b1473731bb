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

// Package workload builds the synthetic batches run by the taskmanager
// command: a number of task kinds, each with its own simulated duration and
// execution counter, interleaved and repeated.
package workload

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ctool-go/taskmanager/cfg"
	"github.com/ctool-go/taskmanager/internal/workerpool"
)

// Workload is a set of task kinds and the number of times each one has run.
type Workload struct {
	repeats int

	// Simulated work of each kind, indexed by kind.
	durations []time.Duration

	// Executions of each kind across every batch built from this workload.
	counters []atomic.Int64
}

// New builds a workload of c.TaskKinds kinds repeated c.TaskRepeats times per
// batch. Kind k sleeps for (k+1) * c.TaskDuration.
func New(c cfg.WorkloadConfig) *Workload {
	w := &Workload{
		repeats:   int(c.TaskRepeats),
		durations: make([]time.Duration, c.TaskKinds),
		counters:  make([]atomic.Int64, c.TaskKinds),
	}
	for k := range w.durations {
		w.durations[k] = time.Duration(k+1) * c.TaskDuration
	}
	return w
}

// Kinds returns the number of task kinds.
func (w *Workload) Kinds() int {
	return len(w.durations)
}

// Size returns the number of tasks in one batch.
func (w *Workload) Size() int {
	return w.repeats * len(w.durations)
}

// Tasks returns one batch: every kind once, in kind order, repeated.
func (w *Workload) Tasks() []workerpool.Task {
	tasks := make([]workerpool.Task, 0, w.Size())
	for range w.repeats {
		for k := range w.durations {
			tasks = append(tasks, workerpool.NewTask(w.execute, k))
		}
	}
	return tasks
}

func (w *Workload) execute(kind int) {
	if d := w.durations[kind]; d > 0 {
		time.Sleep(d)
	}
	w.counters[kind].Add(1)
}

// Counts returns how many times each kind has executed.
func (w *Workload) Counts() []int64 {
	counts := make([]int64, len(w.counters))
	for k := range w.counters {
		counts[k] = w.counters[k].Load()
	}
	return counts
}

// Verify checks that every kind ran exactly once per repeat per round.
func (w *Workload) Verify(rounds int) error {
	want := int64(w.repeats * rounds)
	var errs []error
	for k, got := range w.Counts() {
		if got != want {
			errs = append(errs, fmt.Errorf("task kind %d executed %d times, want %d", k, got, want))
		}
	}
	return errors.Join(errs...)
}
