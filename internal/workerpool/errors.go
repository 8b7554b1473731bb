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

import "errors"

var (
	// ErrAllocationFailure is returned when the resources of a task manager
	// cannot be reserved. No manager is returned.
	ErrAllocationFailure = errors.New("workerpool: allocation failure")

	// ErrThreadStart is returned when a worker goroutine cannot be started.
	// Workers that did start have been stopped and joined.
	ErrThreadStart = errors.New("workerpool: failed to start worker")

	// ErrSubmissionRejected is returned by Submit while the previous batch is
	// still running. Call Await and submit again.
	ErrSubmissionRejected = errors.New("workerpool: batch still running")

	ErrInvalidArgument = errors.New("workerpool: invalid argument")

	// ErrShutdown is returned by Submit once the manager has been destroyed.
	ErrShutdown = errors.New("workerpool: task manager destroyed")
)
