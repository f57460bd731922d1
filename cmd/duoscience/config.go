// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	duoscience "github.com/duoscience/duoscience-go"
)

const (
	envBaseURL = "DUOSCIENCE_BASE_URL"
	envAPIKey  = "DUOSCIENCE_API_KEY"
)

// config holds the CLI settings. Values are resolved in order: command-line
// flags, then environment variables, then the config file, then defaults.
type config struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	UserID   string `yaml:"user_id"`
	Database string `yaml:"database"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "duoscience", "config.yaml")
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "duoscience.db"
	}
	return filepath.Join(dir, "duoscience", "history.db")
}

// loadConfig reads the config file (if any) and applies environment and
// flag overrides. A missing default config file is fine; a missing file
// passed with --config is an error.
func loadConfig() (*config, error) {
	cfg := &config{
		BaseURL:  duoscience.DefaultBaseURL,
		Database: defaultDatabasePath(),
	}

	path := flagConfig
	required := path != ""
	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !required:
			// No config file is fine, defaults apply.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if v := os.Getenv(envBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(envAPIKey); v != "" {
		cfg.APIKey = v
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = duoscience.DefaultBaseURL
	}
	if cfg.Database == "" {
		cfg.Database = defaultDatabasePath()
	}
	return cfg, nil
}
