// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures the OpenAI-backed client.
type OpenAIConfig struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// Model selects the model, e.g. "gpt-4o".
	Model string

	// BaseURL overrides the API endpoint for compatible servers
	// (vLLM, LiteLLM proxies). Empty uses the OpenAI default.
	BaseURL string

	// RequestTimeout bounds a single completion call. Zero disables
	// the client-side bound; callers still control ctx.
	RequestTimeout time.Duration
}

// OpenAIClient implements Client against the OpenAI chat API.
//
// Thread Safety:
//
//	OpenAIClient is safe for concurrent use.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIClient creates an OpenAI-backed reasoning client.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm: API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
		slog.Warn("No model configured, defaulting", "model", model)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	slog.Info("Initializing OpenAI client", "model", model, "base_url", cfg.BaseURL)
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		timeout: cfg.RequestTimeout,
	}, nil
}

// Complete implements the Client interface.
//
// Description:
//
//	Translates the request into a chat completion with function-calling
//	tools, sends it, and maps the first choice back. Tool calls in the
//	choice come back as ToolCalls on the response.
func (c *OpenAIClient) Complete(ctx context.Context, request *Request) (*Response, error) {
	if request == nil {
		return nil, errors.New("llm: nil request")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(request),
	}
	if request.MaxTokens > 0 {
		req.MaxCompletionTokens = request.MaxTokens
	}
	if request.Temperature > 0 {
		req.Temperature = request.Temperature
	}
	for _, desc := range request.Tools {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        desc.Name,
				Description: desc.Description,
				Parameters:  desc.Parameters,
			},
		})
	}

	started := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("llm: completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("llm: completion returned no choices")
	}

	choice := resp.Choices[0]
	out := &Response{
		Content:      choice.Message.Content,
		StopReason:   stopReason(choice.FinishReason),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Duration:     time.Since(started),
		Model:        resp.Model,
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

// Name implements the Client interface.
func (c *OpenAIClient) Name() string { return "openai" }

// Model implements the Client interface.
func (c *OpenAIClient) Model() string { return c.model }

func toOpenAIMessages(request *Request) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(request.Messages)+1)
	if request.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: request.SystemPrompt,
		})
	}

	for _, msg := range request.Messages {
		switch msg.Role {
		case "tool":
			if msg.ToolResult == nil {
				continue
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    msg.ToolResult.Content,
				ToolCallID: msg.ToolResult.ToolCallID,
			})
		case "assistant":
			m := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: msg.Content,
			}
			for _, tc := range msg.ToolCalls {
				m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			messages = append(messages, m)
		default:
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: msg.Content,
			})
		}
	}
	return messages
}

func stopReason(reason openai.FinishReason) string {
	switch reason {
	case openai.FinishReasonToolCalls, openai.FinishReasonFunctionCall:
		return "tool_use"
	case openai.FinishReasonLength:
		return "max_tokens"
	default:
		return "end"
	}
}
