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

package common

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinShutdownFunc(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		fns          []ShutdownFn
		expectedErrs []string
	}{
		{
			name:         "empty",
			fns:          nil,
			expectedErrs: nil,
		},
		{
			name:         "one_ok",
			fns:          []ShutdownFn{func(_ context.Context) error { return nil }},
			expectedErrs: nil,
		},
		{
			name: "exporter_and_provider_fail",
			fns: []ShutdownFn{
				func(_ context.Context) error { return errors.New("prometheus") },
				nil,
				func(_ context.Context) error { return nil },
				func(_ context.Context) error { return errors.New("meter provider") },
			},
			expectedErrs: []string{"prometheus", "meter provider"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := JoinShutdownFunc(tc.fns...)(context.Background())

			if len(tc.expectedErrs) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, e := range tc.expectedErrs {
				assert.ErrorContains(t, err, e)
			}
		})
	}
}

func TestJoinShutdownFuncCallsEveryFunctionInOrder(t *testing.T) {
	var calls []int
	fn := func(i int) ShutdownFn {
		return func(_ context.Context) error {
			calls = append(calls, i)
			return nil
		}
	}

	require.NoError(t, JoinShutdownFunc(fn(1), fn(2), fn(3))(context.Background()))

	assert.Equal(t, []int{1, 2, 3}, calls)
}

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())
}
