// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package duoscience

import (
	"fmt"

	"github.com/go-json-experiment/json"
)

// Effort levels accepted by the task endpoints.
const (
	EffortLow    = "low"
	EffortMedium = "medium"
	EffortHigh   = "high"
)

// TaskParams are the parameters of a task request. UserID and ChatID are
// required by every endpoint; the rest are optional.
type TaskParams struct {
	// UserID is the unique identifier of the requesting user.
	UserID string `json:"user_id"`

	// ChatID identifies the chat or session the task belongs to.
	ChatID string `json:"chat_id"`

	// Content is the text message or topic, if any.
	Content string `json:"content,omitzero"`

	// Files are the attachments, at most MaxFilesPerRequest of them.
	Files []*FilePayload `json:"files,omitzero"`

	// Domain selects a science domain (e.g. "bioscience").
	Domain string `json:"domain,omitzero"`

	// Effort selects the effort level, one of the Effort constants.
	Effort string `json:"effort,omitzero"`

	// Extra holds additional endpoint-specific parameters. They are
	// flattened into the request object and must not collide with the
	// named fields above.
	Extra map[string]any `json:"-"`
}

// Validate ensures the params satisfy the API contract.
func (p *TaskParams) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("user_id cannot be empty")
	}
	if p.ChatID == "" {
		return fmt.Errorf("chat_id cannot be empty")
	}
	if len(p.Files) > MaxFilesPerRequest {
		return fmt.Errorf("too many files: maximum is %d per request, got %d", MaxFilesPerRequest, len(p.Files))
	}
	for i, f := range p.Files {
		if f == nil {
			return fmt.Errorf("file at index %d cannot be nil", i)
		}
		if err := f.Validate(); err != nil {
			return fmt.Errorf("file at index %d is invalid: %w", i, err)
		}
	}
	for key := range p.Extra {
		switch key {
		case "user_id", "chat_id", "content", "files", "domain", "effort":
			return fmt.Errorf("extra parameter %q collides with a named field", key)
		}
	}
	return nil
}

// MarshalJSON implements [json.Marshaler]. Extra parameters are flattened
// into the same object as the named fields, matching the wire format the
// endpoints expect.
func (p *TaskParams) MarshalJSON() ([]byte, error) {
	type plain TaskParams

	data, err := json.Marshal((*plain)(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return data, nil
	}

	var merged map[string]any
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, value := range p.Extra {
		merged[key] = value
	}
	return json.Marshal(merged)
}

// UnmarshalJSON implements [json.Unmarshaler], splitting unknown object
// members back into Extra.
func (p *TaskParams) UnmarshalJSON(data []byte) error {
	type plain TaskParams
	if err := json.Unmarshal(data, (*plain)(p)); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range []string{"user_id", "chat_id", "content", "files", "domain", "effort"} {
		delete(raw, key)
	}
	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}
