// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	duoscience "github.com/duoscience/duoscience-go"
)

// DatabaseStore is a GORM-backed implementation of TranscriptStore. Any
// GORM-supported database works; Open wires the pure-Go sqlite driver.
type DatabaseStore struct {
	db *gorm.DB
}

var _ TranscriptStore = (*DatabaseStore)(nil)

// NewDatabaseStore creates a transcript store on top of an existing GORM
// database handle and runs the schema migration.
func NewDatabaseStore(db *gorm.DB) (*DatabaseStore, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if err := db.AutoMigrate(&TaskModel{}); err != nil {
		return nil, fmt.Errorf("migrate transcript schema: %w", err)
	}
	return &DatabaseStore{db: db}, nil
}

// Save persists a task record, inserting or updating by task id.
func (s *DatabaseStore) Save(ctx context.Context, task *duoscience.Task) error {
	if task == nil || task.ID == "" {
		return errors.New("task must have an id")
	}
	model, err := NewTaskModel(task)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("save transcript %s: %w", task.ID, err)
	}
	return nil
}

// Get retrieves a task record by its id.
func (s *DatabaseStore) Get(ctx context.Context, taskID string) (*duoscience.Task, error) {
	var model TaskModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError{TaskID: taskID}
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript %s: %w", taskID, err)
	}
	return model.ToTask()
}

// ListByChat retrieves the tasks recorded for a chat, oldest first. A
// non-positive limit returns all records.
func (s *DatabaseStore) ListByChat(ctx context.Context, chatID string, limit, offset int) ([]*duoscience.Task, error) {
	query := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var models []TaskModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list transcripts for chat %s: %w", chatID, err)
	}

	tasks := make([]*duoscience.Task, 0, len(models))
	for i := range models {
		task, err := models[i].ToTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Count returns the number of recorded tasks. An empty chatID counts all
// records.
func (s *DatabaseStore) Count(ctx context.Context, chatID string) (int64, error) {
	query := s.db.WithContext(ctx).Model(&TaskModel{})
	if chatID != "" {
		query = query.Where("chat_id = ?", chatID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count transcripts: %w", err)
	}
	return count, nil
}

// Delete removes a task record. Deleting an absent record is not an error.
func (s *DatabaseStore) Delete(ctx context.Context, taskID string) error {
	if err := s.db.WithContext(ctx).Delete(&TaskModel{}, "id = ?", taskID).Error; err != nil {
		return fmt.Errorf("delete transcript %s: %w", taskID, err)
	}
	return nil
}

// Close cleanly shuts down the underlying database connection.
func (s *DatabaseStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("access underlying database: %w", err)
	}
	return sqlDB.Close()
}
