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
	"time"
)

// Outcome is the result of a batch submission.
type Outcome string

// Constants for attribute Outcome
const (
	OutcomeAcceptedAttr Outcome = "accepted"
	OutcomeRejectedAttr Outcome = "rejected"
)

// MetricHandle provides an interface for recording worker pool metrics. A
// no-op implementation is available through NewNoopMetrics.
type MetricHandle interface {
	// ActiveWorkers - The number of worker goroutines currently alive in task managers.
	ActiveWorkers(inc int64)

	// BatchLatency - The cumulative distribution of batch latencies, from submission until the last task finished.
	BatchLatency(ctx context.Context, latency time.Duration)

	// BatchSubmitCount - The cumulative number of batch submissions along with the outcome: accepted or rejected.
	BatchSubmitCount(inc int64, outcome Outcome)

	// TaskLatency - The cumulative distribution of task execution latencies.
	TaskLatency(ctx context.Context, latency time.Duration)

	// TasksExecutedCount - The cumulative number of tasks executed by workers.
	TasksExecutedCount(inc int64)
}
