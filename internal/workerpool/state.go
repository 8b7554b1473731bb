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

import "fmt"

// State is the lifecycle state of the batch owned by a task manager.
type State int32

const (
	// StateIdle means no batch is in progress; workers sleep.
	StateIdle State = iota
	// StateRunning means workers are claiming tasks of the current batch.
	StateRunning
	// StateShutdown is terminal; workers exit when they observe it.
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateShutdown:
		return "Shutdown"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}
