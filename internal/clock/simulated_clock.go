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

package clock

import (
	"sync"
	"time"
)

type afterRequest struct {
	deadline time.Time
	ch       chan time.Time
}

// SimulatedClock is a Clock whose time only moves when SetTime or AdvanceTime
// is called. Channels returned by After fire once the simulated time reaches
// their deadline.
type SimulatedClock struct {
	mu      sync.Mutex
	t       time.Time
	pending []afterRequest
}

// NewSimulatedClock returns a SimulatedClock reading t.
func NewSimulatedClock(t time.Time) *SimulatedClock {
	return &SimulatedClock{t: t}
}

func (sc *SimulatedClock) Now() time.Time {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.t
}

// SetTime sets the current time and fires any After channels whose deadline
// has been reached.
func (sc *SimulatedClock) SetTime(t time.Time) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.t = t
	sc.fireLocked()
}

// AdvanceTime moves the current time forward by d.
func (sc *SimulatedClock) AdvanceTime(d time.Duration) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.t = sc.t.Add(d)
	sc.fireLocked()
}

func (sc *SimulatedClock) After(d time.Duration) <-chan time.Time {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Buffered so that firing never blocks on an abandoned receiver.
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- sc.t
		return ch
	}
	sc.pending = append(sc.pending, afterRequest{deadline: sc.t.Add(d), ch: ch})
	return ch
}

// PendingCount reports how many After channels have not fired yet.
func (sc *SimulatedClock) PendingCount() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.pending)
}

// LOCKS_REQUIRED(sc.mu)
func (sc *SimulatedClock) fireLocked() {
	remaining := sc.pending[:0]
	for _, r := range sc.pending {
		if sc.t.Before(r.deadline) {
			remaining = append(remaining, r)
			continue
		}
		r.ch <- r.deadline
	}
	sc.pending = remaining
}
