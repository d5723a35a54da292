// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Search     SearchConfig     `yaml:"search"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Generation GenerationConfig `yaml:"generation"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host    string        `yaml:"host"`
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

// SearchConfig contains web search provider configuration
type SearchConfig struct {
	Provider   string        `yaml:"provider"`    // "serper" (default), "brave" or "tavily"
	APIKey     string        `yaml:"api_key"`
	MaxResults int           `yaml:"max_results"` // result count K
	Timeout    time.Duration `yaml:"timeout"`
}

// FetchConfig contains page fetch and context assembly configuration
type FetchConfig struct {
	PageTimeout     time.Duration `yaml:"page_timeout"`      // per-URL fetch timeout
	Deadline        time.Duration `yaml:"deadline"`          // overall fan-out deadline
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`    // response size cap per page
	MaxSourceChars  int           `yaml:"max_source_chars"`  // per-source text clamp
	MaxContextChars int           `yaml:"max_context_chars"` // total context budget
}

// GenerationConfig contains LLM backend configuration
type GenerationConfig struct {
	Endpoint    string        `yaml:"endpoint"` // OpenAI-compatible base URL; empty for api.openai.com
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			Timeout: 60 * time.Second,
		},
	}
	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg
}

// Environment variables override file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEARCH_PROVIDER"); v != "" {
		cfg.Search.Provider = v
	}
	if v := os.Getenv("SEARCH_API_KEY"); v != "" {
		cfg.Search.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Generation.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_ENDPOINT"); v != "" {
		cfg.Generation.Endpoint = v
	}
	if v := os.Getenv("ANSWER_MODEL"); v != "" {
		cfg.Generation.Model = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 60 * time.Second
	}
	if cfg.Search.Provider == "" {
		cfg.Search.Provider = "serper"
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 10 * time.Second
	}
	if cfg.Fetch.PageTimeout == 0 {
		cfg.Fetch.PageTimeout = 10 * time.Second
	}
	if cfg.Fetch.Deadline == 0 {
		cfg.Fetch.Deadline = 12 * time.Second
	}
	if cfg.Fetch.MaxBodyBytes == 0 {
		cfg.Fetch.MaxBodyBytes = 5 * 1024 * 1024
	}
	if cfg.Fetch.MaxSourceChars == 0 {
		cfg.Fetch.MaxSourceChars = 4000
	}
	if cfg.Fetch.MaxContextChars == 0 {
		cfg.Fetch.MaxContextChars = 16000
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "gpt-4o-mini"
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 4096
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = 0.5
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = 120 * time.Second
	}
}
