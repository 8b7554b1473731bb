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

package monitor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ctool-go/taskmanager/cfg"
	"github.com/ctool-go/taskmanager/internal/workerpool"
	"github.com/ctool-go/taskmanager/metrics"
	"github.com/ctool-go/taskmanager/tracing"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func freePort(t *testing.T) int64 {
	t.Helper()
	l, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	defer l.Close()
	return int64(l.Addr().(*net.TCPAddr).Port)
}

func TestSetupOTelMetricExporters_Prometheus(t *testing.T) {
	ctx := context.Background()
	port := freePort(t)
	shutdown := SetupOTelMetricExporters(ctx, &cfg.Config{Metrics: cfg.MetricsConfig{PrometheusPort: port}})
	defer func() { assert.NoError(t, shutdown(ctx)) }()
	mh, err := metrics.NewOTelMetrics(ctx, 1, 100)
	require.NoError(t, err)
	defer mh.Close()
	m, err := workerpool.NewTaskManager(2, workerpool.Config{Metrics: mh})
	require.NoError(t, err)
	defer m.Destroy()
	var ran atomic.Int32
	require.NoError(t, m.Submit([]workerpool.Task{workerpool.TaskFunc(func() { ran.Add(1) })}))
	m.Await()
	var families map[string]*dto.MetricFamily

	require.Eventually(t, func() bool {
		families = scrape(t, port)
		_, ok := families["workerpool_tasks_executed_count"]
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	executed := families["workerpool_tasks_executed_count"]
	require.Len(t, executed.GetMetric(), 1)
	assert.Equal(t, float64(1), executed.GetMetric()[0].GetCounter().GetValue())
	submits := families["workerpool_batch_submit_count"]
	require.NotNil(t, submits)
	require.Len(t, submits.GetMetric(), 1)
	assert.Equal(t, "outcome", submits.GetMetric()[0].GetLabel()[0].GetName())
	assert.Equal(t, "accepted", submits.GetMetric()[0].GetLabel()[0].GetValue())
}

func scrape(t *testing.T, port int64) map[string]*dto.MetricFamily {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/metrics", port))
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return nil
	}
	return families
}

func TestSetupOTelMetricExporters_NoPrometheus(t *testing.T) {
	ctx := context.Background()

	shutdown := SetupOTelMetricExporters(ctx, &cfg.Config{})

	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(ctx))
}

func TestNewTraceProvider_Disabled(t *testing.T) {
	tp, shutdown, err := newTraceProvider(context.Background(), &cfg.Config{}, io.Discard)

	assert.NoError(t, err)
	assert.Nil(t, tp)
	assert.Nil(t, shutdown)
	assert.Nil(t, SetupTracing(context.Background(), &cfg.Config{}))
}

func TestNewTraceProvider_Stdout(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	c := &cfg.Config{Monitoring: cfg.MonitoringConfig{TracingMode: cfg.StdoutTracing}}
	tp, shutdown, err := newTraceProvider(ctx, c, &buf)
	require.NoError(t, err)
	require.NotNil(t, tp)
	otel.SetTracerProvider(tp)
	m, err := workerpool.NewTaskManager(2, workerpool.Config{Tracer: tracing.NewOTelTracer()})
	require.NoError(t, err)

	require.NoError(t, m.Submit([]workerpool.Task{workerpool.TaskFunc(func() {})}))
	m.Await()
	m.Destroy()
	require.NoError(t, shutdown(ctx))

	assert.Contains(t, buf.String(), tracing.BatchSpanName)
	assert.Contains(t, buf.String(), tracing.BatchIDKey)
	assert.Contains(t, buf.String(), serviceName)
}

func TestGetResource(t *testing.T) {
	res, err := getResource(context.Background())

	require.NoError(t, err)
	found := false
	for _, kv := range res.Attributes() {
		if kv.Key == "service.name" {
			found = true
			assert.Equal(t, serviceName, kv.Value.AsString())
		}
	}
	assert.True(t, found)
}
