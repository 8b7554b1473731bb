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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ctool-go/taskmanager/cfg"
	"github.com/ctool-go/taskmanager/common"
	"github.com/ctool-go/taskmanager/internal/logger"
	"github.com/ctool-go/taskmanager/internal/monitor"
	"github.com/ctool-go/taskmanager/internal/ratelimit"
	"github.com/ctool-go/taskmanager/internal/workerpool"
	"github.com/ctool-go/taskmanager/internal/workload"
	"github.com/ctool-go/taskmanager/metrics"
	"github.com/ctool-go/taskmanager/tracing"
	"github.com/jacobsa/syncutil"
)

const (
	// Window over which tasks-per-sec is enforced.
	throttleWindow = 30 * time.Second

	metricsWorkers    = 3
	metricsBufferSize = 256
)

// Run executes the configured workload until it finishes or the process is
// interrupted.
func Run(c cfg.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, c)
}

func run(ctx context.Context, c cfg.Config) (err error) {
	if err = logger.InitLogFile(c.Logging); err != nil {
		return fmt.Errorf("init log file: %w", err)
	}
	defer logger.Close()

	if cfgStr, err := cfg.Stringify(&c); err != nil {
		logger.Warnf("failed to stringify configs: %v", err)
	} else {
		logger.Infof("taskmanager version %s starting with config:\n%s", common.GetVersion(), cfgStr)
	}
	monitor.LogResource(ctx)

	if c.Debug.ExitOnInvariantViolation {
		syncutil.EnableInvariantChecking()
	}

	shutdownFn := common.JoinShutdownFunc(
		monitor.SetupOTelMetricExporters(ctx, &c),
		monitor.SetupTracing(ctx, &c),
	)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := shutdownFn(shutdownCtx); shutdownErr != nil {
			logger.Errorf("Error while shutting down telemetry: %v", shutdownErr)
		}
	}()

	poolCfg, closeMetrics, err := newPoolConfig(ctx, &c)
	if err != nil {
		return err
	}
	defer closeMetrics()

	throttle, err := newThrottle(c.Workload.TasksPerSec)
	if err != nil {
		return fmt.Errorf("tasks-per-sec: %w", err)
	}

	m, err := workerpool.NewTaskManager(int(c.Pool.Threads), poolCfg)
	if err != nil {
		return fmt.Errorf("creating task manager: %w", err)
	}
	defer m.Destroy()

	w := workload.New(c.Workload)
	report, err := workload.Run(ctx, m, w, int(c.Workload.Rounds), throttle)
	logReport(report)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warnf("Interrupted: %v", err)
		}
		return fmt.Errorf("workload: %w", err)
	}
	logger.Infof("All %d tasks executed exactly once.", report.Tasks)
	return nil
}

func newPoolConfig(ctx context.Context, c *cfg.Config) (workerpool.Config, func(), error) {
	poolCfg := workerpool.NewConfig(c.Pool)
	closeMetrics := func() {}

	if c.Metrics.PrometheusPort > 0 {
		mh, err := metrics.NewOTelMetrics(ctx, metricsWorkers, metricsBufferSize)
		if err != nil {
			return poolCfg, closeMetrics, fmt.Errorf("creating metrics: %w", err)
		}
		poolCfg.Metrics = mh
		closeMetrics = mh.Close
	} else {
		poolCfg.Metrics = metrics.NewNoopMetrics()
	}

	if c.Monitoring.TracingMode != cfg.NoTracing {
		poolCfg.Tracer = tracing.NewOTelTracer()
	} else {
		poolCfg.Tracer = tracing.NewNoopTracer()
	}
	return poolCfg, closeMetrics, nil
}

func newThrottle(tasksPerSec float64) (ratelimit.Throttle, error) {
	if tasksPerSec == 0 {
		return nil, nil
	}
	capacity, err := ratelimit.ChooseLimiterCapacity(tasksPerSec, throttleWindow)
	if err != nil {
		return nil, err
	}
	return ratelimit.NewThrottle(tasksPerSec, int(capacity)), nil
}

func logReport(r workload.Report) {
	if r.Rounds == 0 {
		return
	}
	logger.Infof("Ran %d rounds, %d tasks in %v", r.Rounds, r.Tasks, r.Elapsed)
	for kind, n := range r.Counts {
		logger.Infof("Task kind %d executed %d times", kind, n)
	}
}
