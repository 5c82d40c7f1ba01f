// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for the executor.
var (
	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidArguments indicates the argument JSON is malformed or
	// missing required fields.
	ErrInvalidArguments = errors.New("invalid tool arguments")

	// ErrExecutionFailed indicates the tool returned an error.
	ErrExecutionFailed = errors.New("tool execution failed")

	// ErrTimeout indicates the tool execution timed out.
	ErrTimeout = errors.New("tool execution timed out")
)

// DefaultToolTimeout bounds a single tool execution when the executor is
// configured with a zero timeout.
const DefaultToolTimeout = 10 * time.Second

// Executor runs tool invocations with validation and timeouts.
//
// Thread Safety:
//
//	Executor is safe for concurrent use. Multiple tool executions can
//	run simultaneously.
type Executor struct {
	registry *Registry
	timeout  time.Duration
	logger   *slog.Logger
}

// NewExecutor creates a tool executor.
//
// Inputs:
//
//	registry - The tool registry
//	timeout - Per-execution timeout. Zero selects DefaultToolTimeout.
//	logger - Structured logger. Nil selects slog.Default().
func NewExecutor(registry *Registry, timeout time.Duration, logger *slog.Logger) *Executor {
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{registry: registry, timeout: timeout, logger: logger}
}

// Execute runs a tool invocation.
//
// Description:
//
//	Resolves the tool, validates the argument JSON against the
//	descriptor's required fields, runs the tool under the configured
//	timeout, and returns the serialized result with a bounded preview.
//
// Outputs:
//
//	*Result - The execution result
//	error - ErrToolNotFound, ErrInvalidArguments, ErrTimeout, or
//	        ErrExecutionFailed wrapping the tool's error
//
// Thread Safety: This method is safe for concurrent use.
func (e *Executor) Execute(ctx context.Context, inv *Invocation) (*Result, error) {
	if inv == nil {
		return nil, fmt.Errorf("%w: nil invocation", ErrInvalidArguments)
	}
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}

	logger := e.logger.With("tool", inv.ToolName, "invocation_id", inv.ID)

	tool, ok := e.registry.Get(inv.ToolName)
	if !ok {
		logger.Warn("Tool not found")
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, inv.ToolName)
	}

	if err := validateArguments(tool.Descriptor(), inv.Arguments); err != nil {
		logger.Warn("Argument validation failed", "error", err)
		return nil, err
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	started := time.Now()
	output, err := tool.Execute(execCtx, inv)
	elapsed := time.Since(started)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Error("Tool execution timed out", "timeout", e.timeout)
			return nil, fmt.Errorf("%w: %s after %v", ErrTimeout, inv.ToolName, e.timeout)
		}
		logger.Error("Tool execution failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}

	logger.Debug("Tool executed", "duration", elapsed)

	return &Result{
		InvocationID: inv.ID,
		ToolName:     inv.ToolName,
		Output:       output,
		Preview:      preview(output),
		Duration:     elapsed,
	}, nil
}

// validateArguments checks the argument JSON parses to an object and
// carries every required field. Type checking stays with the tool's own
// unmarshal, which reports mismatches through ErrInvalidArguments too.
func validateArguments(desc Descriptor, args json.RawMessage) error {
	fields := map[string]json.RawMessage{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &fields); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
	}
	for _, name := range desc.Required {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			return fmt.Errorf("%w: missing required field %q", ErrInvalidArguments, name)
		}
	}
	return nil
}
