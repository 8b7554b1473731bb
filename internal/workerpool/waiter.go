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
	"sync"
	"time"

	"github.com/ctool-go/taskmanager/cfg"
	"github.com/ctool-go/taskmanager/internal/clock"
)

// waiter blocks workers and Await callers until the batch reaches the state
// they are waiting for.
type waiter interface {
	// wait returns nil once cond reports true, or ctx.Err() if ctx is done
	// first.
	wait(ctx context.Context, cond func() bool) error

	// notify wakes every goroutine blocked in wait so that it re-evaluates its
	// condition. It must be called after each state change a waiter may be
	// interested in.
	notify()
}

func newWaiter(c Config) waiter {
	if c.WaitMode == cfg.PollWaitMode {
		return &pollWaiter{clock: c.Clock, interval: c.IdleInterval}
	}
	return newSignalWaiter()
}

// pollWaiter re-checks the condition once per interval. notify is a no-op, so
// every state change is observed with up to one interval of delay.
type pollWaiter struct {
	clock    clock.Clock
	interval time.Duration
}

func (p *pollWaiter) wait(ctx context.Context, cond func() bool) error {
	for !cond() {
		select {
		case <-p.clock.After(p.interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (p *pollWaiter) notify() {}

// signalWaiter broadcasts state changes by closing a channel and replacing it
// with a fresh one.
type signalWaiter struct {
	mu sync.Mutex

	// Closed on the next call to notify.
	//
	// GUARDED_BY(mu)
	ch chan struct{}
}

func newSignalWaiter() *signalWaiter {
	return &signalWaiter{ch: make(chan struct{})}
}

func (s *signalWaiter) current() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch
}

func (s *signalWaiter) wait(ctx context.Context, cond func() bool) error {
	for {
		// The channel is taken before cond is evaluated so that a notify racing
		// with the evaluation still wakes us.
		ch := s.current()
		if cond() {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *signalWaiter) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	close(s.ch)
	s.ch = make(chan struct{})
}
