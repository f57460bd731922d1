// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

// Command duoscience is a terminal client for the DuoScience API. It can
// start chat, research and hypothesis tasks, stream their progress, convert
// markdown reports to PDF and browse the local task history.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	duoscience "github.com/duoscience/duoscience-go"
)

var (
	flagConfig  string
	flagBaseURL string
	flagAPIKey  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:     "duoscience",
	Short:   "Client for the DuoScience API",
	Version: duoscience.Version,
	Long: `duoscience starts tasks against a DuoScience server and streams their
progress to the terminal. Completed conversations are recorded in a local
transcript database and can be browsed with the history command.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "base URL of the DuoScience server")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "API key used for authentication")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
