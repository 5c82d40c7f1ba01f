// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/quantumiq/services/tutor/agent"
	"github.com/AleutianAI/quantumiq/services/tutor/agent/llm"
	"github.com/AleutianAI/quantumiq/services/tutor/datatypes"
	"github.com/AleutianAI/quantumiq/services/tutor/middleware"
	"github.com/AleutianAI/quantumiq/services/tutor/observability"
)

// HandleChat runs one tutoring turn through the agent loop.
func HandleChat(loop *agent.Loop, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "HandleChat")
		defer span.End()

		started := time.Now()
		var req datatypes.ChatRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			recordRequest(metrics, "chat", false, started)
			return
		}

		history := make([]llm.Message, 0, len(req.History))
		for _, msg := range req.History {
			history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
		}

		result, err := loop.Run(ctx, agent.ConversationContext{
			LearnerID: middleware.GetLearnerID(c),
			Message:   req.Message,
			Circuit:   req.Circuit,
			History:   history,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Chat turn failed", "error", err)
			status := http.StatusInternalServerError
			if errors.Is(err, agent.ErrEmptyMessage) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			recordRequest(metrics, "chat", false, started)
			return
		}

		if metrics != nil {
			metrics.RecordTurn(result.Iterations, result.Degraded)
			for _, trace := range result.ToolCalls {
				metrics.RecordToolCall(trace.Tool, !trace.IsError)
			}
		}
		recordRequest(metrics, "chat", true, started)
		c.JSON(http.StatusOK, result)
	}
}

func recordRequest(metrics *observability.Metrics, endpoint string, success bool, started time.Time) {
	if metrics != nil {
		metrics.RecordRequest(endpoint, success, time.Since(started).Seconds())
	}
}
