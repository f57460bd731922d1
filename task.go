// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package duoscience

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskState represents the state of a DuoScience task as reported by the
// event stream.
type TaskState string

const (
	// TaskStatePending indicates the task was accepted but has not started.
	TaskStatePending TaskState = "pending"

	// TaskStateRunning indicates the task is being worked on.
	TaskStateRunning TaskState = "running"

	// TaskStateCompleted indicates the task finished successfully.
	TaskStateCompleted TaskState = "completed"

	// TaskStateError indicates the task was aborted by an error.
	TaskStateError TaskState = "error"

	// TaskStateFailed indicates the task ran and failed.
	TaskStateFailed TaskState = "failed"
)

// Terminal reports whether the state ends the event stream. The server
// sends no further events for a task once a terminal event is delivered.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateError, TaskStateFailed:
		return true
	}
	return false
}

// TaskAck is the body of the 202 Accepted response that acknowledges a
// started task.
type TaskAck struct {
	TaskID string `json:"task_id"`
}

// Validate ensures the acknowledgement carries a task id. A 202 without a
// task id leaves the client with no stream to attach to and is treated as
// a protocol violation.
func (a TaskAck) Validate() error {
	if a.TaskID == "" {
		return fmt.Errorf("server accepted the task but did not return a task_id")
	}
	return nil
}

// Task is the client-side record of a started task: the endpoint it was
// sent to, the parameters snapshot, and the events observed so far. The
// server itself only ever exposes the ack and the event stream; Task is
// assembled locally and is what the transcript store persists.
type Task struct {
	ID        string      `json:"id"`
	Endpoint  string      `json:"endpoint"`
	Params    *TaskParams `json:"params,omitempty"`
	State     TaskState   `json:"state"`
	Events    []*Event    `json:"events,omitempty"`
	Result    Result      `json:"result,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt,omitzero"`
}

// NewTask creates the local record for a task started at endpoint with
// params. An empty id (servers always return one, but callers may build
// records by hand) is replaced with a generated UUID.
func NewTask(id, endpoint string, params *TaskParams) (*Task, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}
	if params != nil {
		if err := params.Validate(); err != nil {
			return nil, fmt.Errorf("invalid task params: %w", err)
		}
	}
	if id == "" {
		id = uuid.NewString()
	}

	return &Task{
		ID:        id,
		Endpoint:  endpoint,
		Params:    params,
		State:     TaskStatePending,
		CreatedAt: time.Now(),
	}, nil
}

// ApplyEvent folds a stream event into the task record, updating the state
// and, on completion, the result.
func (t *Task) ApplyEvent(event *Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Status == "" {
		return fmt.Errorf("event has no status")
	}

	t.Events = append(t.Events, event)
	t.State = event.Status
	t.UpdatedAt = time.Now()
	if event.Status == TaskStateCompleted {
		t.Result = event.Result
	}
	return nil
}

// Done reports whether the task reached a terminal state.
func (t *Task) Done() bool {
	return t.State.Terminal()
}

// Err returns the error reported by the stream if the task ended in the
// error or failed state, and nil otherwise.
func (t *Task) Err() error {
	if t.State != TaskStateError && t.State != TaskStateFailed {
		return nil
	}
	for i := len(t.Events) - 1; i >= 0; i-- {
		if err := t.Events[i].Err(); err != nil {
			return err
		}
	}
	return fmt.Errorf("task %s ended in state %q", t.ID, t.State)
}
