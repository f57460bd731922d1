// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package duoscience

import (
	"fmt"

	"github.com/go-json-experiment/json"
)

// Result is the free-form result object of a completed task. The server
// reports the final answer under "response" (chat) or "content" (research,
// hypotheses) alongside endpoint-specific fields.
type Result map[string]any

// Answer returns the final answer text of the result, trying "response"
// first and "content" second. The boolean is false when neither is present.
func (r Result) Answer() (string, bool) {
	for _, key := range []string{"response", "content"} {
		if v, ok := r[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// Event represents a single status event from a task's SSE stream.
type Event struct {
	// Status is the task state the event reports.
	Status TaskState `json:"status"`

	// Message is the human-readable progress or error message, if any.
	Message string `json:"message,omitzero"`

	// Result is the task result. It is only set on completed events.
	Result Result `json:"result,omitzero"`
}

// Terminal reports whether the event ends the stream.
func (e *Event) Terminal() bool {
	return e.Status.Terminal()
}

// Err converts an error or failed event into an error value. It returns
// nil for every other status.
func (e *Event) Err() error {
	switch e.Status {
	case TaskStateError, TaskStateFailed:
		if e.Message != "" {
			return fmt.Errorf("task %s: %s", e.Status, e.Message)
		}
		return fmt.Errorf("task %s", e.Status)
	}
	return nil
}

// UnmarshalJSON implements [json.Unmarshaler].
//
// Older servers deliver the completed result under "payload" instead of
// "result"; both are accepted, with "result" winning when both are set.
func (e *Event) UnmarshalJSON(data []byte) error {
	var wire struct {
		Status  TaskState `json:"status"`
		Message string    `json:"message"`
		Result  Result    `json:"result"`
		Payload Result    `json:"payload"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	e.Status = wire.Status
	e.Message = wire.Message
	e.Result = wire.Result
	if e.Result == nil {
		e.Result = wire.Payload
	}
	return nil
}

// ErrorEvent builds a synthetic error event. The client emits these on the
// stream when the connection is lost mid-task, so consumers observe a
// terminal event even when the server never sent one.
func ErrorEvent(format string, args ...any) *Event {
	return &Event{
		Status:  TaskStateError,
		Message: fmt.Sprintf(format, args...),
	}
}
