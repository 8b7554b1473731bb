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
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newRunningBatch(tasks []Task) *taskBatch {
	b := &taskBatch{}
	b.reset(context.Background(), tasks, uuid.New(), noop.Span{}, time.Now())
	b.publish()
	return b
}

func TestClaimNextExactlyOnce(t *testing.T) {
	const claimers = 16

	for _, length := range []int{0, 1, 1000, 100000} {
		t.Run(fmt.Sprintf("L=%d", length), func(t *testing.T) {
			b := newRunningBatch(make([]Task, length))
			claims := make([]atomic.Int32, length)
			var wg sync.WaitGroup

			for range claimers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for {
						idx, ok := b.claimNext()
						if !ok {
							return
						}
						claims[idx].Add(1)
					}
				}()
			}
			wg.Wait()

			for i := range claims {
				require.Equal(t, int32(1), claims[i].Load(), "index %d", i)
			}
			// Every claimer over-claims exactly once before giving up.
			assert.Equal(t, uint64(length+claimers), b.cursor.Load())
		})
	}
}

func TestMarkIdleIsIdempotent(t *testing.T) {
	b := newRunningBatch(make([]Task, 3))
	var flips atomic.Int32
	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.markIdle() {
				flips.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), flips.Load())
	assert.Equal(t, StateIdle, b.loadState())
}

func TestMarkIdleKeepsShutdown(t *testing.T) {
	b := newRunningBatch(make([]Task, 1))
	b.state.Store(int32(StateShutdown))

	assert.False(t, b.markIdle())
	assert.Equal(t, StateShutdown, b.loadState())
}

func TestResetCopiesTasks(t *testing.T) {
	var ran []string
	tasks := []Task{
		TaskFunc(func() { ran = append(ran, "a") }),
		TaskFunc(func() { ran = append(ran, "b") }),
	}
	b := newRunningBatch(tasks)

	tasks[0] = TaskFunc(func() { ran = append(ran, "replaced") })
	for {
		idx, ok := b.claimNext()
		if !ok {
			break
		}
		b.tasks[idx].Execute()
	}

	assert.Equal(t, []string{"a", "b"}, ran)
	assert.Equal(t, int64(2), b.remaining.Load())
	assert.Equal(t, uint64(0), b.executed.Load())
}

func TestSettled(t *testing.T) {
	b := newRunningBatch(make([]Task, 1))
	assert.False(t, b.settled())

	require.True(t, b.markIdle())
	b.busy.Add(1)
	assert.False(t, b.settled())

	b.busy.Add(-1)
	assert.True(t, b.settled())

	b.busy.Add(1)
	b.state.Store(int32(StateShutdown))
	assert.True(t, b.settled())
}

func TestReleaseDropsTasks(t *testing.T) {
	b := newRunningBatch(make([]Task, 4))
	require.True(t, b.markIdle())

	b.release()

	assert.Nil(t, b.tasks)
	_, ok := b.claimNext()
	assert.False(t, ok)
}
