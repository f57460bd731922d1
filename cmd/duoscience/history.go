// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/duoscience/duoscience-go/store"
)

var (
	flagHistoryChat  string
	flagHistoryLimit int
	flagHistoryShow  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse tasks recorded in the local transcript database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		history, err := store.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer history.Close(cmd.Context())

		if flagHistoryShow != "" {
			task, err := history.Get(cmd.Context(), flagHistoryShow)
			if err != nil {
				return err
			}
			if answer, ok := task.Result.Answer(); ok {
				fmt.Println(answer)
				return nil
			}
			fmt.Fprintf(os.Stderr, "task %s is in state %s with no answer\n", task.ID, task.State)
			return nil
		}

		if flagHistoryChat == "" {
			count, err := history.Count(cmd.Context(), "")
			if err != nil {
				return err
			}
			fmt.Printf("%d tasks recorded; pass --chat to list a conversation\n", count)
			return nil
		}

		tasks, err := history.ListByChat(cmd.Context(), flagHistoryChat, flagHistoryLimit, 0)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TASK\tENDPOINT\tSTATE\tSTARTED")
		for _, task := range tasks {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				task.ID, task.Endpoint, task.State, task.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().StringVar(&flagHistoryChat, "chat", "", "list the tasks of this chat")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 0, "maximum number of tasks to list")
	historyCmd.Flags().StringVar(&flagHistoryShow, "show", "", "print the recorded answer of a task id")

	rootCmd.AddCommand(historyCmd)
}
