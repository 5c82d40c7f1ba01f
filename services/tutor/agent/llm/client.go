// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm is the tutor's reasoning seam: a small client interface
// over chat-completion providers with native function calling, plus a
// deterministic mock for tests.
package llm

import (
	"context"
	"time"

	"github.com/AleutianAI/quantumiq/services/tutor/agent/tools"
)

// Client is the interface for reasoning providers.
//
// Thread Safety:
//
//	Implementations must be safe for concurrent use.
type Client interface {
	// Complete sends a completion request.
	Complete(ctx context.Context, request *Request) (*Response, error)

	// Name returns the provider name (e.g., "openai", "mock").
	Name() string

	// Model returns the model identifier in use.
	Model() string
}

// Request represents a completion request.
type Request struct {
	// SystemPrompt sets the tutor persona and rules.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Messages is the conversation so far, oldest first.
	Messages []Message `json:"messages"`

	// Tools lists the tools the model may call.
	Tools []tools.Descriptor `json:"tools,omitempty"`

	// MaxTokens bounds the response length. Zero means provider default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls sampling randomness.
	Temperature float32 `json:"temperature,omitempty"`
}

// Message is a single conversation message.
//
// Role is one of "user", "assistant", or "tool". Assistant messages may
// carry ToolCalls; tool messages carry exactly one ToolResult.
type Message struct {
	Role       string      `json:"role"`
	Content    string      `json:"content,omitempty"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	// ID identifies the call for result correlation.
	ID string `json:"id"`

	// Name is the tool name.
	Name string `json:"name"`

	// Arguments is the raw JSON argument object.
	Arguments string `json:"arguments"`
}

// ToolResult carries a tool's output back to the model.
type ToolResult struct {
	// ToolCallID links back to the tool call.
	ToolCallID string `json:"tool_call_id"`

	// Content is the serialized result, or the error text.
	Content string `json:"content"`

	// IsError marks failed executions.
	IsError bool `json:"is_error,omitempty"`
}

// Response represents a completion response.
type Response struct {
	// Content is the text response.
	Content string `json:"content"`

	// ToolCalls contains any tool calls the model wants to make.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// StopReason indicates why generation stopped.
	// Values: "end", "max_tokens", "tool_use".
	StopReason string `json:"stop_reason"`

	// InputTokens and OutputTokens report usage when the provider does.
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`

	// Duration is how long the request took.
	Duration time.Duration `json:"duration,omitempty"`

	// Model is the model that generated this response.
	Model string `json:"model,omitempty"`
}

// HasToolCalls returns true if the response contains tool calls.
func (r *Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}
