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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	referenceTime    = time.Date(2021, time.May, 17, 9, 0, 0, 0, time.UTC)
	shortTestTimeout = 10 * time.Millisecond
	fireTestTimeout  = 50 * time.Millisecond
)

func TestSimulatedClock_NowFollowsSetAndAdvance(t *testing.T) {
	clock := NewSimulatedClock(referenceTime)
	assert.True(t, clock.Now().Equal(referenceTime))

	clock.AdvanceTime(time.Hour)
	assert.True(t, clock.Now().Equal(referenceTime.Add(time.Hour)))

	clock.SetTime(referenceTime)
	assert.True(t, clock.Now().Equal(referenceTime))
}

func TestSimulatedClock_After(t *testing.T) {
	testCases := []struct {
		name         string
		after        time.Duration
		action       func(sc *SimulatedClock)
		expectFire   bool
		expectedTime time.Time
	}{
		{
			name:         "zero duration fires immediately",
			after:        0,
			action:       func(*SimulatedClock) {},
			expectFire:   true,
			expectedTime: referenceTime,
		},
		{
			name:         "negative duration fires immediately",
			after:        -time.Second,
			action:       func(*SimulatedClock) {},
			expectFire:   true,
			expectedTime: referenceTime,
		},
		{
			name:         "advance past deadline",
			after:        100 * time.Millisecond,
			action:       func(sc *SimulatedClock) { sc.AdvanceTime(time.Second) },
			expectFire:   true,
			expectedTime: referenceTime.Add(100 * time.Millisecond),
		},
		{
			name:         "set past deadline",
			after:        100 * time.Millisecond,
			action:       func(sc *SimulatedClock) { sc.SetTime(referenceTime.Add(time.Minute)) },
			expectFire:   true,
			expectedTime: referenceTime.Add(100 * time.Millisecond),
		},
		{
			name:       "advance short of deadline",
			after:      100 * time.Millisecond,
			action:     func(sc *SimulatedClock) { sc.AdvanceTime(99 * time.Millisecond) },
			expectFire: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clock := NewSimulatedClock(referenceTime)
			ch := clock.After(tc.after)
			require.NotNil(t, ch)

			tc.action(clock)

			if !tc.expectFire {
				select {
				case got := <-ch:
					t.Fatalf("unexpected fire at %v", got)
				case <-time.After(shortTestTimeout):
				}
				assert.Equal(t, 1, clock.PendingCount())
				return
			}
			select {
			case got := <-ch:
				assert.True(t, tc.expectedTime.Equal(got), "got %v, want %v", got, tc.expectedTime)
			case <-time.After(fireTestTimeout):
				t.Fatal("timed out waiting for After to fire")
			}
			assert.Equal(t, 0, clock.PendingCount())
		})
	}
}

func TestRealClock_After(t *testing.T) {
	var c Clock = RealClock{}
	start := c.Now()

	<-c.After(time.Millisecond)

	assert.GreaterOrEqual(t, c.Now().Sub(start), time.Millisecond)
}
