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
	"encoding/json"
	"fmt"
	"sync"
)

// MockClient is a deterministic Client for tests.
//
// Responses are served from a queue; when the queue drains, the default
// response repeats. Every request is recorded for assertions.
//
// Thread Safety:
//
//	MockClient is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	model           string
	responses       []*Response
	defaultResponse *Response
	responseFunc    func(*Request) (*Response, error)
	errorToReturn   error
	calls           []*Request
}

// NewMockClient creates a mock reasoning client.
func NewMockClient() *MockClient {
	return &MockClient{
		model: "mock-model",
		defaultResponse: &Response{
			Content:    "Mock response",
			StopReason: "end",
		},
	}
}

// QueueResponse appends a response to the queue.
func (c *MockClient) QueueResponse(response *Response) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, response)
	return c
}

// QueueToolCall queues a response that invokes a tool.
func (c *MockClient) QueueToolCall(toolName string, arguments map[string]any) *MockClient {
	argsJSON, _ := json.Marshal(arguments)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, &Response{
		StopReason: "tool_use",
		ToolCalls: []ToolCall{{
			ID:        fmt.Sprintf("call_%d", len(c.responses)),
			Name:      toolName,
			Arguments: string(argsJSON),
		}},
	})
	return c
}

// QueueFinalResponse queues a plain text response with no tool calls.
func (c *MockClient) QueueFinalResponse(content string) *MockClient {
	return c.QueueResponse(&Response{Content: content, StopReason: "end"})
}

// SetDefaultResponse sets the response served once the queue is empty.
func (c *MockClient) SetDefaultResponse(response *Response) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultResponse = response
	return c
}

// WithResponseFunc sets a dynamic response function, overriding the queue.
func (c *MockClient) WithResponseFunc(f func(*Request) (*Response, error)) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responseFunc = f
	return c
}

// WithError makes Complete return this error.
func (c *MockClient) WithError(err error) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorToReturn = err
	return c
}

// Complete implements the Client interface.
func (c *MockClient) Complete(ctx context.Context, request *Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, request)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.errorToReturn != nil {
		return nil, c.errorToReturn
	}
	if c.responseFunc != nil {
		return c.responseFunc(request)
	}
	if len(c.responses) > 0 {
		response := c.responses[0]
		c.responses = c.responses[1:]
		response.Model = c.model
		return response, nil
	}

	response := *c.defaultResponse
	response.Model = c.model
	return &response, nil
}

// Name implements the Client interface.
func (c *MockClient) Name() string { return "mock" }

// Model implements the Client interface.
func (c *MockClient) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// CallCount returns the number of Complete calls made.
func (c *MockClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// LastRequest returns the most recent request, or nil.
func (c *MockClient) LastRequest() *Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return nil
	}
	return c.calls[len(c.calls)-1]
}
