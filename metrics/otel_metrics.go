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

package metrics

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ctool-go/taskmanager/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const logInterval = 5 * time.Minute

// MeterName is the instrumentation scope of every instrument in this package.
const MeterName = "taskmanager"

var (
	unrecognizedAttr                 atomic.Value
	batchSubmitCountAcceptedAttrSet  = metric.WithAttributeSet(attribute.NewSet(attribute.String("outcome", string(OutcomeAcceptedAttr))))
	batchSubmitCountRejectedAttrSet  = metric.WithAttributeSet(attribute.NewSet(attribute.String("outcome", string(OutcomeRejectedAttr))))
	latencyBucketBoundariesMicrosecs = []float64{10, 50, 100, 200, 400, 800, 1200, 2000, 5000, 10000, 20000, 50000, 100000, 200000, 500000, 1000000, 2000000, 5000000, 10000000, 50000000}
)

type histogramRecord struct {
	ctx        context.Context
	instrument metric.Int64Histogram
	value      int64
	attributes metric.RecordOption
}

type otelMetrics struct {
	ch                             chan histogramRecord
	wg                             *sync.WaitGroup
	activeWorkersAtomic            *atomic.Int64
	batchSubmitCountAcceptedAtomic *atomic.Int64
	batchSubmitCountRejectedAtomic *atomic.Int64
	tasksExecutedCountAtomic       *atomic.Int64
	batchLatency                   metric.Int64Histogram
	taskLatency                    metric.Int64Histogram
}

func (o *otelMetrics) ActiveWorkers(inc int64) {
	o.activeWorkersAtomic.Add(inc)
}

func (o *otelMetrics) BatchLatency(ctx context.Context, latency time.Duration) {
	o.record(histogramRecord{ctx: ctx, instrument: o.batchLatency, value: latency.Microseconds()})
}

func (o *otelMetrics) BatchSubmitCount(inc int64, outcome Outcome) {
	if inc < 0 {
		logger.Errorf("Counter metric workerpool/batch_submit_count received a negative increment: %d", inc)
		return
	}
	switch outcome {
	case OutcomeAcceptedAttr:
		o.batchSubmitCountAcceptedAtomic.Add(inc)
	case OutcomeRejectedAttr:
		o.batchSubmitCountRejectedAtomic.Add(inc)
	default:
		updateUnrecognizedAttribute(string(outcome))
	}
}

func (o *otelMetrics) TaskLatency(ctx context.Context, latency time.Duration) {
	o.record(histogramRecord{ctx: ctx, instrument: o.taskLatency, value: latency.Microseconds()})
}

func (o *otelMetrics) TasksExecutedCount(inc int64) {
	if inc < 0 {
		logger.Errorf("Counter metric workerpool/tasks_executed_count received a negative increment: %d", inc)
		return
	}
	o.tasksExecutedCountAtomic.Add(inc)
}

func (o *otelMetrics) record(r histogramRecord) {
	select {
	case o.ch <- r: // Do nothing
	default: // Unblock writes to channel if it's full.
	}
}

// NewOTelMetrics registers the worker pool instruments on the global meter
// provider. Histogram samples are recorded asynchronously by the given number
// of workers reading from a channel of size bufferSize.
func NewOTelMetrics(ctx context.Context, workers int, bufferSize int) (*otelMetrics, error) {
	ch := make(chan histogramRecord, bufferSize)
	var wg sync.WaitGroup
	startSampledLogging(ctx)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range ch {
				if record.attributes != nil {
					record.instrument.Record(record.ctx, record.value, record.attributes)
				} else {
					record.instrument.Record(record.ctx, record.value)
				}
			}
		}()
	}
	meter := otel.Meter(MeterName)

	var activeWorkersAtomic,
		batchSubmitCountAcceptedAtomic,
		batchSubmitCountRejectedAtomic,
		tasksExecutedCountAtomic atomic.Int64

	_, err0 := meter.Int64ObservableUpDownCounter("workerpool/active_workers",
		metric.WithDescription("The number of worker goroutines currently alive in task managers."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			observeUpDownCounter(obsrv, &activeWorkersAtomic)
			return nil
		}))

	batchLatency, err1 := meter.Int64Histogram("workerpool/batch_latency",
		metric.WithDescription("The cumulative distribution of batch latencies, from submission until the last task finished."),
		metric.WithUnit("us"),
		metric.WithExplicitBucketBoundaries(latencyBucketBoundariesMicrosecs...))

	_, err2 := meter.Int64ObservableCounter("workerpool/batch_submit_count",
		metric.WithDescription("The cumulative number of batch submissions along with the outcome: accepted or rejected."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &batchSubmitCountAcceptedAtomic, batchSubmitCountAcceptedAttrSet)
			conditionallyObserve(obsrv, &batchSubmitCountRejectedAtomic, batchSubmitCountRejectedAttrSet)
			return nil
		}))

	taskLatency, err3 := meter.Int64Histogram("workerpool/task_latency",
		metric.WithDescription("The cumulative distribution of task execution latencies."),
		metric.WithUnit("us"),
		metric.WithExplicitBucketBoundaries(latencyBucketBoundariesMicrosecs...))

	_, err4 := meter.Int64ObservableCounter("workerpool/tasks_executed_count",
		metric.WithDescription("The cumulative number of tasks executed by workers."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &tasksExecutedCountAtomic)
			return nil
		}))

	errs := []error{err0, err1, err2, err3, err4}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &otelMetrics{
		ch:                             ch,
		wg:                             &wg,
		activeWorkersAtomic:            &activeWorkersAtomic,
		batchSubmitCountAcceptedAtomic: &batchSubmitCountAcceptedAtomic,
		batchSubmitCountRejectedAtomic: &batchSubmitCountRejectedAtomic,
		tasksExecutedCountAtomic:       &tasksExecutedCountAtomic,
		batchLatency:                   batchLatency,
		taskLatency:                    taskLatency,
	}, nil
}

// Close stops the histogram workers after draining pending samples.
func (o *otelMetrics) Close() {
	close(o.ch)
	o.wg.Wait()
}

func conditionallyObserve(obsrv metric.Int64Observer, counter *atomic.Int64, obsrvOptions ...metric.ObserveOption) {
	if val := counter.Load(); val > 0 {
		obsrv.Observe(val, obsrvOptions...)
	}
}

func observeUpDownCounter(obsrv metric.Int64Observer, counter *atomic.Int64, obsrvOptions ...metric.ObserveOption) {
	obsrv.Observe(counter.Load(), obsrvOptions...)
}

func updateUnrecognizedAttribute(newValue string) {
	unrecognizedAttr.CompareAndSwap("", newValue)
}

// startSampledLogging starts a goroutine that logs unrecognized attributes periodically.
func startSampledLogging(ctx context.Context) {
	unrecognizedAttr.Store("")

	go func() {
		ticker := time.NewTicker(logInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logUnrecognizedAttribute()
			}
		}
	}()
}

func logUnrecognizedAttribute() {
	if currentAttr := unrecognizedAttr.Swap("").(string); currentAttr != "" {
		logger.Tracef("Attribute %s is not declared", currentAttr)
	}
}
