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
	"context"
	"os"

	"github.com/ctool-go/taskmanager/common"
	"github.com/ctool-go/taskmanager/internal/logger"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const serviceName = "taskmanager"

func getResource(ctx context.Context) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(common.GetVersion()),
			semconv.ProcessPID(os.Getpid()),
		),
	)
}

// LogResource prints the resource attributes attached to exported telemetry.
func LogResource(ctx context.Context) {
	res, err := getResource(ctx)
	if err != nil {
		logger.Warnf("Error while fetching resource: %v", err)
		return
	}
	for _, kv := range res.Attributes() {
		logger.Debugf("Telemetry resource %s=%s", kv.Key, kv.Value.Emit())
	}
}
