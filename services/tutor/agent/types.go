// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package agent drives the tutoring conversation: a bounded loop where
// the reasoning component inspects the learner's circuit and progress
// through tools, then produces a reply.
package agent

import (
	"encoding/json"
	"time"

	"github.com/AleutianAI/quantumiq/services/quantum"
	"github.com/AleutianAI/quantumiq/services/tutor/agent/llm"
)

// ConversationContext carries one chat turn's input.
type ConversationContext struct {
	// LearnerID scopes all tool reads and writes.
	LearnerID string `json:"learner_id"`

	// Message is the learner's message for this turn.
	Message string `json:"message"`

	// Circuit is the learner's current circuit, nil when the builder
	// is empty.
	Circuit *quantum.Circuit `json:"circuit,omitempty"`

	// History is the prior conversation, oldest first. Only user and
	// assistant text messages are expected; tool traffic from earlier
	// turns is not replayed.
	History []llm.Message `json:"history,omitempty"`
}

// ToolTrace records one tool call made during a turn, for transparency
// in the chat response.
type ToolTrace struct {
	// Tool is the tool name.
	Tool string `json:"tool"`

	// Arguments is the raw JSON the reasoning component supplied.
	Arguments string `json:"arguments"`

	// ResultPreview is a bounded preview of the result, or the error
	// text for failed calls.
	ResultPreview string `json:"result_preview"`

	// IsError marks failed calls.
	IsError bool `json:"is_error,omitempty"`

	// Duration is how long the call took.
	Duration time.Duration `json:"duration,omitempty"`
}

// ChatResult is the outcome of one turn.
type ChatResult struct {
	// Reply is the tutor's text. Never empty: degraded turns carry
	// fallback text.
	Reply string `json:"reply"`

	// ToolCalls lists the tools used this turn, in order.
	ToolCalls []ToolTrace `json:"tool_calls,omitempty"`

	// Challenge carries the generate_challenge result when the turn
	// produced one, so the frontend can render it directly.
	Challenge json.RawMessage `json:"challenge,omitempty"`

	// Iterations is how many reasoning rounds the turn took.
	Iterations int `json:"iterations"`

	// Degraded marks turns that fell back because the reasoning
	// component failed or the iteration bound was hit.
	Degraded bool `json:"degraded,omitempty"`

	// Duration is the wall-clock time for the turn.
	Duration time.Duration `json:"duration"`
}
