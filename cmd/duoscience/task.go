// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	duoscience "github.com/duoscience/duoscience-go"
	"github.com/duoscience/duoscience-go/client"
	"github.com/duoscience/duoscience-go/store"
)

var (
	flagUser      string
	flagChat      string
	flagDomain    string
	flagEffort    string
	flagFiles     []string
	flagNoHistory bool
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a chat message and stream the answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd.Context(), duoscience.EndpointChat, args[0])
	},
}

var researchCmd = &cobra.Command{
	Use:   "research <question>",
	Short: "Start a deep research task and stream the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd.Context(), duoscience.EndpointResearch, args[0])
	},
}

var hypothesesCmd = &cobra.Command{
	Use:   "hypotheses <topic>",
	Short: "Generate scientific hypotheses and stream the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd.Context(), duoscience.EndpointHypotheses, args[0])
	},
}

func init() {
	for _, c := range []*cobra.Command{chatCmd, researchCmd, hypothesesCmd} {
		c.Flags().StringVar(&flagUser, "user", "", "user id (defaults to the configured user)")
		c.Flags().StringVar(&flagChat, "chat", "", "chat id (a fresh id is generated when empty)")
		c.Flags().StringVar(&flagDomain, "domain", "", "scientific domain hint")
		c.Flags().StringArrayVarP(&flagFiles, "file", "f", nil, "attach a file (repeatable)")
		c.Flags().BoolVar(&flagNoHistory, "no-history", false, "do not record the task in the local history")
	}
	researchCmd.Flags().StringVar(&flagEffort, "effort", "", "research effort: low, medium or high")
	hypothesesCmd.Flags().StringVar(&flagEffort, "effort", "", "generation effort: low, medium or high")

	rootCmd.AddCommand(chatCmd, researchCmd, hypothesesCmd)
}

func runTask(ctx context.Context, endpoint, content string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger()
	opts := []client.Option{client.WithLogger(logger)}
	if cfg.APIKey != "" {
		opts = append(opts, client.WithAPIKey(cfg.APIKey))
	}
	c := client.NewHTTPClient(cfg.BaseURL, opts...)
	defer c.Close()

	userID := flagUser
	if userID == "" {
		userID = cfg.UserID
	}
	if userID == "" {
		userID = "cli"
	}
	chatID := flagChat
	if chatID == "" {
		chatID = uuid.NewString()
	}

	files, err := c.LoadFiles(ctx, flagFiles...)
	if err != nil {
		return err
	}

	params := &duoscience.TaskParams{
		UserID:  userID,
		ChatID:  chatID,
		Content: content,
		Files:   files,
		Domain:  flagDomain,
		Effort:  flagEffort,
	}

	ack, err := c.StartTask(ctx, endpoint, params)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "task %s started (chat %s)\n", ack.TaskID, chatID)

	task, err := duoscience.NewTask(ack.TaskID, endpoint, params)
	if err != nil {
		return err
	}

	var history store.TranscriptStore
	if !flagNoHistory {
		history, err = openHistory(cfg)
		if err != nil {
			logger.Warn("transcript store unavailable, history disabled", "error", err)
		} else {
			defer history.Close(ctx)
			if err := history.Save(ctx, task); err != nil {
				logger.Warn("failed to record task", "task_id", task.ID, "error", err)
			}
		}
	}

	events, err := c.StreamTask(ctx, ack.TaskID)
	if err != nil {
		return err
	}

	for event := range events {
		if err := task.ApplyEvent(event); err != nil {
			return err
		}
		if event.Message != "" {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", event.Status, event.Message)
		}
	}

	if history != nil {
		if err := history.Save(ctx, task); err != nil {
			logger.Warn("failed to record outcome", "task_id", task.ID, "error", err)
		}
	}

	if err := task.Err(); err != nil {
		return err
	}
	if answer, ok := task.Result.Answer(); ok {
		fmt.Println(strings.TrimRight(answer, "\n"))
	}
	return nil
}

func openHistory(cfg *config) (store.TranscriptStore, error) {
	if dir := filepath.Dir(cfg.Database); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return store.Open(cfg.Database)
}
