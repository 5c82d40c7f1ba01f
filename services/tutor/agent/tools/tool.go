// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tools defines the tutor's fixed tool surface: six tools the
// reasoning loop can invoke, a registry describing them, and an executor
// that validates arguments and runs them with timeouts.
package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AleutianAI/quantumiq/services/quantum"
)

// Descriptor describes a tool to the reasoning component.
type Descriptor struct {
	// Name is the tool's unique identifier.
	Name string `json:"name"`

	// Description tells the reasoning component when to use the tool.
	Description string `json:"description"`

	// Parameters is the JSON Schema for the tool's arguments.
	Parameters json.RawMessage `json:"parameters"`

	// Required lists argument fields that must be present.
	Required []string `json:"-"`

	// Mutates marks tools that change persistent learner state.
	Mutates bool `json:"-"`
}

// Tool is one invocable capability.
//
// Execute returns a serializable result string (JSON for structured
// results). Errors are surfaced to the loop, which reports them back to
// the reasoning component rather than aborting the conversation.
type Tool interface {
	Descriptor() Descriptor
	Execute(ctx context.Context, inv *Invocation) (string, error)
}

// Invocation is one requested tool call plus the conversation state the
// tool may need. Arguments arrive as the raw JSON the reasoning
// component produced.
type Invocation struct {
	// ID identifies the call. Assigned by the executor when empty.
	ID string `json:"id"`

	// ToolName selects the tool.
	ToolName string `json:"tool_name"`

	// Arguments is the raw JSON argument object.
	Arguments json.RawMessage `json:"arguments"`

	// LearnerID scopes store reads and writes.
	LearnerID string `json:"learner_id"`

	// Circuit is the learner's current circuit, nil when the request
	// carried none.
	Circuit *quantum.Circuit `json:"circuit,omitempty"`
}

// Result is the outcome of one tool execution.
type Result struct {
	InvocationID string        `json:"invocation_id"`
	ToolName     string        `json:"tool_name"`
	Output       string        `json:"output"`
	Preview      string        `json:"preview"`
	Duration     time.Duration `json:"duration"`
}

// previewRunes bounds the display preview of a tool result. The full
// output still goes back to the reasoning component.
const previewRunes = 200

func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewRunes {
		return s
	}
	return string(runes[:previewRunes]) + "…"
}
