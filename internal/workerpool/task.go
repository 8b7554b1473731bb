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

// Task interface defines the contract for a runnable task. A task is executed
// at most once per batch it appears in and reports its outcome through state
// it captures itself.
type Task interface {
	Execute()
}

// TaskFunc adapts an ordinary function to the Task interface.
type TaskFunc func()

func (f TaskFunc) Execute() {
	f()
}

type inputTask[T any] struct {
	fn    func(T)
	input T
}

func (t *inputTask[T]) Execute() {
	t.fn(t.input)
}

// NewTask returns a Task that calls fn with input when executed. The task
// does not copy or release input; ownership stays with the caller.
func NewTask[T any](fn func(T), input T) Task {
	return &inputTask[T]{fn: fn, input: input}
}
