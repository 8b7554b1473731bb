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
	"fmt"
	"time"

	"github.com/ctool-go/taskmanager/cfg"
	"github.com/ctool-go/taskmanager/internal/clock"
	"github.com/ctool-go/taskmanager/metrics"
	"github.com/ctool-go/taskmanager/tracing"
)

// Config controls how a TaskManager waits and what it reports. The zero
// value is usable: every unset field takes its default.
type Config struct {
	// IdleInterval is how long an idle worker sleeps between checks of the
	// batch state in poll mode. Defaults to cfg.DefaultIdleInterval.
	IdleInterval time.Duration

	// WaitMode is cfg.SignalWaitMode (default) or cfg.PollWaitMode.
	WaitMode cfg.WaitMode

	// MaxWorkers bounds the number of worker goroutines the manager may run.
	// Creating a manager with more threads fails with ErrThreadStart. Zero
	// means no bound.
	MaxWorkers int

	Metrics metrics.MetricHandle
	Tracer  tracing.TraceHandle
	Clock   clock.Clock
}

// NewConfig builds a Config from the pool section of the flags/config file.
func NewConfig(c cfg.PoolConfig) Config {
	return Config{
		IdleInterval: c.IdleInterval,
		WaitMode:     c.WaitMode,
		MaxWorkers:   int(c.MaxWorkers),
	}
}

func (c Config) withDefaults() (Config, error) {
	if c.IdleInterval <= 0 {
		c.IdleInterval = cfg.DefaultIdleInterval
	}
	switch c.WaitMode {
	case "":
		c.WaitMode = cfg.SignalWaitMode
	case cfg.SignalWaitMode, cfg.PollWaitMode:
	default:
		return c, fmt.Errorf("unsupported wait mode %q: %w", c.WaitMode, ErrInvalidArgument)
	}
	if c.MaxWorkers < 0 {
		return c, fmt.Errorf("negative max workers %d: %w", c.MaxWorkers, ErrInvalidArgument)
	}
	if c.Metrics == nil {
		c.Metrics = metrics.NewNoopMetrics()
	}
	if c.Tracer == nil {
		c.Tracer = tracing.NewNoopTracer()
	}
	if c.Clock == nil {
		c.Clock = clock.RealClock{}
	}
	return c, nil
}
