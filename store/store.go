// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists local transcripts of DuoScience tasks.
//
// The API keeps no queryable history on the client's behalf, so the CLI
// records every started task and its terminal outcome in a local database.
// Library consumers can use the store directly or ignore it entirely.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	duoscience "github.com/duoscience/duoscience-go"
)

// TranscriptStore defines the interface for task transcript persistence.
type TranscriptStore interface {
	// Save persists a task record, inserting or updating by task id.
	Save(ctx context.Context, task *duoscience.Task) error

	// Get retrieves a task record by its id.
	Get(ctx context.Context, taskID string) (*duoscience.Task, error)

	// ListByChat retrieves the tasks recorded for a chat, oldest first.
	ListByChat(ctx context.Context, chatID string, limit, offset int) ([]*duoscience.Task, error)

	// Count returns the number of recorded tasks, optionally filtered by chat.
	Count(ctx context.Context, chatID string) (int64, error)

	// Delete removes a task record.
	Delete(ctx context.Context, taskID string) error

	// Close cleanly shuts down the store.
	Close(ctx context.Context) error
}

// NotFoundError is returned when a task id has no record.
type NotFoundError struct {
	TaskID string
}

// Error returns the error message.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("transcript not found: %s", e.TaskID)
}

// TaskModel is the database representation of a task transcript.
// Params and Result are stored as JSON blobs; the searchable columns are
// the ids, the endpoint and the state.
type TaskModel struct {
	ID        string `gorm:"primaryKey"`
	Endpoint  string `gorm:"index"`
	UserID    string `gorm:"index"`
	ChatID    string `gorm:"index"`
	State     string
	Params    []byte
	Result    []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName implements the gorm table naming convention.
func (TaskModel) TableName() string {
	return "transcripts"
}

// NewTaskModel converts a task into its database representation.
func NewTaskModel(task *duoscience.Task) (*TaskModel, error) {
	model := &TaskModel{
		ID:        task.ID,
		Endpoint:  task.Endpoint,
		State:     string(task.State),
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
	if task.Params != nil {
		model.UserID = task.Params.UserID
		model.ChatID = task.Params.ChatID

		params, err := json.Marshal(task.Params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		model.Params = params
	}
	if task.Result != nil {
		result, err := json.Marshal(task.Result)
		if err != nil {
			return nil, fmt.Errorf("marshal result: %w", err)
		}
		model.Result = result
	}
	return model, nil
}

// ToTask converts the database representation back into a task.
func (m *TaskModel) ToTask() (*duoscience.Task, error) {
	task := &duoscience.Task{
		ID:        m.ID,
		Endpoint:  m.Endpoint,
		State:     duoscience.TaskState(m.State),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if len(m.Params) > 0 {
		var params duoscience.TaskParams
		if err := json.Unmarshal(m.Params, &params); err != nil {
			return nil, fmt.Errorf("unmarshal params: %w", err)
		}
		task.Params = &params
	}
	if len(m.Result) > 0 {
		var result duoscience.Result
		if err := json.Unmarshal(m.Result, &result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		task.Result = result
	}
	return task, nil
}

// Open opens (creating if necessary) a sqlite-backed store at path. The
// special path ":memory:" opens an in-memory database.
func Open(path string) (*DatabaseStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open transcript database %q: %w", path, err)
	}
	return NewDatabaseStore(db)
}
