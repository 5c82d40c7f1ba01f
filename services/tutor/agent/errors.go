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

import "errors"

// Sentinel errors for the agent loop.
var (
	// ErrReasoningUnavailable indicates the reasoning component could
	// not produce a response. The loop degrades to fallback text rather
	// than surfacing this to the learner.
	ErrReasoningUnavailable = errors.New("agent: reasoning component unavailable")

	// ErrToolExecutionFailed indicates a tool call failed. The failure
	// is reported back to the reasoning component as an error result.
	ErrToolExecutionFailed = errors.New("agent: tool execution failed")

	// ErrLoopBoundExceeded indicates the iteration bound was reached
	// before the reasoning component produced a final answer. Never
	// propagated to callers; Run substitutes fallback text.
	ErrLoopBoundExceeded = errors.New("agent: loop bound exceeded")

	// ErrEmptyMessage indicates the learner's message was empty.
	ErrEmptyMessage = errors.New("agent: message must not be empty")
)
