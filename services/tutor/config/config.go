// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads tutor service configuration from a YAML file with
// environment variable overrides.
//
// Precedence, lowest to highest: built-in defaults, YAML file, environment.
// Environment overrides exist so container deployments can tune a stock
// image without baking in a config file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full tutor service configuration.
type Config struct {
	// Server configures the HTTP surface.
	Server ServerConfig `yaml:"server"`

	// Agent configures the tutoring loop.
	Agent AgentConfig `yaml:"agent"`

	// Simulation configures the quantum engine defaults.
	Simulation SimulationConfig `yaml:"simulation"`

	// Store configures persistence.
	Store StoreConfig `yaml:"store"`

	// LLM configures the reasoning backend.
	LLM LLMConfig `yaml:"llm"`
}

type ServerConfig struct {
	// Port the HTTP server listens on. Default 8085.
	Port int `yaml:"port"`

	// RequestTimeout bounds a single HTTP request. Default 60s, sized
	// for a full agent loop rather than a single simulation.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// RateLimitRPS is the per-process request rate limit. Default 20.
	RateLimitRPS float64 `yaml:"rate_limit_rps"`

	// RateLimitBurst is the rate limiter bucket size. Default 40.
	RateLimitBurst int `yaml:"rate_limit_burst"`
}

type AgentConfig struct {
	// MaxIterations caps reasoning rounds per chat turn. Default 8.
	MaxIterations int `yaml:"max_iterations"`

	// ToolTimeout bounds a single tool execution. Default 10s.
	ToolTimeout time.Duration `yaml:"tool_timeout"`

	// TurnTimeout is the wall-clock bound for a whole chat turn.
	// Default 45s.
	TurnTimeout time.Duration `yaml:"turn_timeout"`
}

type SimulationConfig struct {
	// Shots is the default measurement shot count. Default 1024.
	Shots int `yaml:"shots"`

	// PassThreshold is the similarity score at or above which a
	// challenge submission counts as completed. Default 0.90.
	PassThreshold float64 `yaml:"pass_threshold"`
}

type StoreConfig struct {
	// Path is the BadgerDB directory. Default "~/.quantumiq/data".
	// Empty string selects an in-memory store (tests, demos).
	Path string `yaml:"path"`
}

type LLMConfig struct {
	// Model is the chat completion model name. Default "gpt-4o".
	Model string `yaml:"model"`

	// BaseURL overrides the API endpoint, e.g. for a local
	// OpenAI-compatible server. Empty uses the client default.
	BaseURL string `yaml:"base_url,omitempty"`

	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never appears in config files. Default "OPENAI_API_KEY".
	APIKeyEnv string `yaml:"api_key_env"`

	// RequestTimeout bounds a single completion call. Default 30s.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           8085,
			RequestTimeout: 60 * time.Second,
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
		Agent: AgentConfig{
			MaxIterations: 8,
			ToolTimeout:   10 * time.Second,
			TurnTimeout:   45 * time.Second,
		},
		Simulation: SimulationConfig{
			Shots:         1024,
			PassThreshold: 0.90,
		},
		Store: StoreConfig{
			Path: "~/.quantumiq/data",
		},
		LLM: LLMConfig{
			Model:          "gpt-4o",
			APIKeyEnv:      "OPENAI_API_KEY",
			RequestTimeout: 30 * time.Second,
		},
	}
}

// Load reads configuration from path, applies environment overrides,
// and validates the result.
//
// A missing file is not an error: defaults plus environment apply.
//
// Inputs:
//   - path: YAML config file path. Empty skips file loading.
//
// Outputs:
//   - Config: The effective configuration.
//   - error: Non-nil for unreadable or malformed files, or for values
//     that fail validation after all layers are applied.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that would misbehave at
// runtime rather than fail fast.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Agent.MaxIterations < 1 {
		return fmt.Errorf("agent.max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	if c.Simulation.Shots < 1 {
		return fmt.Errorf("simulation.shots must be positive, got %d", c.Simulation.Shots)
	}
	if c.Simulation.PassThreshold <= 0 || c.Simulation.PassThreshold > 1 {
		return fmt.Errorf("simulation.pass_threshold %v outside (0, 1]", c.Simulation.PassThreshold)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model cannot be empty")
	}
	return nil
}

// applyEnv layers QUANTUMIQ_* environment overrides over cfg.
// Unparseable values are ignored in favor of the layer below.
func applyEnv(cfg *Config) {
	if v := os.Getenv("QUANTUMIQ_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("QUANTUMIQ_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Agent.MaxIterations = n
		}
	}
	if v := os.Getenv("QUANTUMIQ_SHOTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.Shots = n
		}
	}
	if v := os.Getenv("QUANTUMIQ_PASS_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Simulation.PassThreshold = f
		}
	}
	if v := os.Getenv("QUANTUMIQ_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("QUANTUMIQ_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("QUANTUMIQ_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
}
