// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package duoscience

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTaskParamsValidate(t *testing.T) {
	valid := TaskParams{UserID: "u", ChatID: "c", Content: "hello"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() of valid params failed: %v", err)
	}

	tests := []struct {
		name    string
		params  TaskParams
		wantErr string
	}{
		{
			name:    "missing user_id",
			params:  TaskParams{ChatID: "c"},
			wantErr: "user_id",
		},
		{
			name:    "missing chat_id",
			params:  TaskParams{UserID: "u"},
			wantErr: "chat_id",
		},
		{
			name: "nil file",
			params: TaskParams{
				UserID: "u", ChatID: "c",
				Files: []*FilePayload{nil},
			},
			wantErr: "cannot be nil",
		},
		{
			name: "invalid file",
			params: TaskParams{
				UserID: "u", ChatID: "c",
				Files: []*FilePayload{{Filename: "a.txt"}},
			},
			wantErr: "missing keys",
		},
		{
			name: "extra collides with named field",
			params: TaskParams{
				UserID: "u", ChatID: "c",
				Extra: map[string]any{"domain": "physics"},
			},
			wantErr: "collides",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestTaskParamsValidateFileLimit(t *testing.T) {
	params := TaskParams{UserID: "u", ChatID: "c"}
	for i := 0; i <= MaxFilesPerRequest; i++ {
		params.Files = append(params.Files, NewFilePayload("note.txt", "", []byte("x")))
	}

	err := params.Validate()
	if err == nil {
		t.Fatalf("Validate() with %d files should fail", len(params.Files))
	}
	if !strings.Contains(err.Error(), "too many files") {
		t.Errorf("Validate() error should mention the file limit, got %q", err)
	}

	params.Files = params.Files[:MaxFilesPerRequest]
	if err := params.Validate(); err != nil {
		t.Errorf("Validate() with exactly %d files failed: %v", MaxFilesPerRequest, err)
	}
}

func TestTaskParamsMarshal(t *testing.T) {
	params := &TaskParams{
		UserID:  "user-1",
		ChatID:  "chat-1",
		Content: "prove it",
		Domain:  "math",
		Effort:  EffortHigh,
		Extra:   map[string]any{"temperature": 0.2},
	}

	data, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	want := map[string]any{
		"user_id":     "user-1",
		"chat_id":     "chat-1",
		"content":     "prove it",
		"domain":      "math",
		"effort":      "high",
		"temperature": 0.2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Wire object mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskParamsMarshalOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&TaskParams{UserID: "u", ChatID: "c"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"content", "files", "domain", "effort"} {
		if _, ok := got[key]; ok {
			t.Errorf("Empty field %q should be omitted from the wire object", key)
		}
	}
}

func TestTaskParamsUnmarshalExtra(t *testing.T) {
	data := `{"user_id": "u", "chat_id": "c", "content": "hi", "temperature": 0.5}`

	var got TaskParams
	if err := json.Unmarshal([]byte(data), &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.UserID != "u" || got.ChatID != "c" || got.Content != "hi" {
		t.Errorf("Named fields not populated: %+v", got)
	}
	if diff := cmp.Diff(map[string]any{"temperature": 0.5}, got.Extra); diff != "" {
		t.Errorf("Extra mismatch (-want +got):\n%s", diff)
	}
}
