// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AleutianAI/quantumiq/pkg/validation"
	"github.com/AleutianAI/quantumiq/services/tutor/agent/llm"
	"github.com/AleutianAI/quantumiq/services/tutor/agent/tools"
)

// Defaults for the loop bounds.
const (
	// DefaultMaxIterations caps reasoning rounds per turn.
	DefaultMaxIterations = 8

	// DefaultTurnTimeout is the wall-clock bound for a whole turn,
	// sized to roughly the iteration cap times a slow reasoning call.
	DefaultTurnTimeout = 45 * time.Second

	// defaultTemperature for tutoring conversations.
	defaultTemperature = 0.7
)

// Loop runs the bounded tool-calling conversation.
//
// Each iteration is one thought-action-observation cycle: the reasoning
// component either answers or requests tool calls, the executor runs
// them, and the results feed the next iteration. The loop is bounded
// both by iteration count and by wall clock; hitting either bound
// degrades to fallback text rather than failing the turn.
//
// Thread Safety:
//
//	Loop is safe for concurrent use. Each Run call carries its own
//	conversation state.
type Loop struct {
	client        llm.Client
	registry      *tools.Registry
	executor      *tools.Executor
	maxIterations int
	turnTimeout   time.Duration
	logger        *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithMaxIterations overrides the iteration cap.
func WithMaxIterations(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxIterations = n
		}
	}
}

// WithTurnTimeout overrides the wall-clock bound for a turn.
func WithTurnTimeout(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.turnTimeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoop creates the agent loop.
//
// Inputs:
//
//	client - The reasoning client. Must not be nil.
//	registry - The tool registry advertised to the client.
//	executor - Runs the tool calls.
func NewLoop(client llm.Client, registry *tools.Registry, executor *tools.Executor, opts ...Option) (*Loop, error) {
	if client == nil {
		return nil, errors.New("agent: client must not be nil")
	}
	if registry == nil {
		return nil, errors.New("agent: registry must not be nil")
	}
	if executor == nil {
		return nil, errors.New("agent: executor must not be nil")
	}

	l := &Loop{
		client:        client,
		registry:      registry,
		executor:      executor,
		maxIterations: DefaultMaxIterations,
		turnTimeout:   DefaultTurnTimeout,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Run executes one conversation turn.
//
// Description:
//
//	Assembles the system prompt, prior history, and the learner's
//	message, then iterates: complete, execute requested tools, feed
//	results back. Stops when the reasoning component answers without
//	tool calls, or degrades to fallback text when it fails or the
//	iteration or wall-clock bound is hit. Tool failures are reported
//	back to the reasoning component as error results; they do not
//	abort the turn.
//
// Outputs:
//
//	*ChatResult - Reply, tool traces, iteration count. Reply is never
//	              empty. Degraded turns return a result, not an error.
//	error - Non-nil only for invalid input or a cancelled caller
//	        context.
func (l *Loop) Run(ctx context.Context, conv ConversationContext) (*ChatResult, error) {
	if err := validation.ValidateLearnerID(conv.LearnerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(conv.Message) == "" {
		return nil, ErrEmptyMessage
	}

	ctx, cancel := context.WithTimeout(ctx, l.turnTimeout)
	defer cancel()

	logger := l.logger.With("learner_id", conv.LearnerID, "provider", l.client.Name())
	started := time.Now()

	messages := make([]llm.Message, 0, len(conv.History)+1)
	for _, msg := range conv.History {
		if msg.Role == "user" || msg.Role == "assistant" {
			messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
		}
	}
	messages = append(messages, llm.Message{Role: "user", Content: conv.Message})

	descriptors := l.registry.Descriptors()
	result := &ChatResult{}

	for iteration := 0; iteration < l.maxIterations; iteration++ {
		result.Iterations = iteration + 1

		response, err := l.client.Complete(ctx, &llm.Request{
			SystemPrompt: systemPrompt,
			Messages:     messages,
			Tools:        descriptors,
			Temperature:  defaultTemperature,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
				return nil, ctxErr
			}
			logger.Error("Reasoning call failed, degrading",
				"iteration", iteration+1,
				"error", fmt.Errorf("%w: %v", ErrReasoningUnavailable, err),
			)
			return l.degrade(result, started), nil
		}

		if !response.HasToolCalls() {
			reply := strings.TrimSpace(response.Content)
			if reply == "" {
				reply = fallbackReply
				result.Degraded = true
			}
			result.Reply = reply
			result.Duration = time.Since(started)
			logger.Info("Turn complete",
				"iterations", result.Iterations,
				"tool_calls", len(result.ToolCalls),
				"duration", result.Duration,
			)
			return result, nil
		}

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})

		for _, call := range response.ToolCalls {
			messages = append(messages, l.runTool(ctx, logger, conv, call, result))
		}
	}

	logger.Warn("Turn degraded", "error", ErrLoopBoundExceeded, "iterations", l.maxIterations)
	return l.degrade(result, started), nil
}

// runTool executes one requested call and returns the tool message to
// feed back. Failures become error results so the reasoning component
// can recover or answer without the tool.
func (l *Loop) runTool(ctx context.Context, logger *slog.Logger, conv ConversationContext, call llm.ToolCall, result *ChatResult) llm.Message {
	trace := ToolTrace{Tool: call.Name, Arguments: call.Arguments}

	execResult, err := l.executor.Execute(ctx, &tools.Invocation{
		ID:        call.ID,
		ToolName:  call.Name,
		Arguments: json.RawMessage(call.Arguments),
		LearnerID: conv.LearnerID,
		Circuit:   conv.Circuit,
	})

	var toolResult llm.ToolResult
	if err != nil {
		wrapped := fmt.Errorf("%w: %s: %v", ErrToolExecutionFailed, call.Name, err)
		logger.Warn("Tool call failed", "tool", call.Name, "error", wrapped)

		trace.IsError = true
		trace.ResultPreview = err.Error()
		toolResult = llm.ToolResult{
			ToolCallID: call.ID,
			Content:    fmt.Sprintf("Error: %v", err),
			IsError:    true,
		}
	} else {
		trace.ResultPreview = execResult.Preview
		trace.Duration = execResult.Duration
		toolResult = llm.ToolResult{
			ToolCallID: call.ID,
			Content:    execResult.Output,
		}

		// Generated challenges ride along on the chat result so the
		// frontend can render them without another round trip.
		if call.Name == "generate_challenge" {
			result.Challenge = json.RawMessage(execResult.Output)
		}
	}

	result.ToolCalls = append(result.ToolCalls, trace)
	return llm.Message{Role: "tool", ToolResult: &toolResult}
}

func (l *Loop) degrade(result *ChatResult, started time.Time) *ChatResult {
	result.Reply = fallbackReply
	result.Degraded = true
	result.Duration = time.Since(started)
	return result
}
