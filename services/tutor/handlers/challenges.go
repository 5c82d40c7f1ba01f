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

	"github.com/AleutianAI/quantumiq/services/quantum"
	"github.com/AleutianAI/quantumiq/services/tutor/challenges"
	"github.com/AleutianAI/quantumiq/services/tutor/datatypes"
	"github.com/AleutianAI/quantumiq/services/tutor/middleware"
	"github.com/AleutianAI/quantumiq/services/tutor/observability"
)

// ListPresets returns the fixed challenge catalog.
func ListPresets(svc *challenges.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"presets": svc.Presets()})
	}
}

// StartChallenge begins a challenge: a preset by key, or a generated one
// by concept and difficulty.
func StartChallenge(svc *challenges.Service, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "StartChallenge")
		defer span.End()

		started := time.Now()
		var req datatypes.StartChallengeRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			recordRequest(metrics, "challenge_start", false, started)
			return
		}

		learnerID := middleware.GetLearnerID(c)

		var inst challenges.Instance
		var err error
		switch {
		case req.Key != "":
			inst, err = svc.Start(ctx, learnerID, req.Key)
		case req.Concept != "":
			inst = svc.StartGenerated(ctx, learnerID, req.Concept, req.Difficulty)
		default:
			err = errors.New("either key or concept is required")
		}
		if err != nil {
			span.RecordError(err)
			status := http.StatusBadRequest
			if errors.Is(err, challenges.ErrChallengeNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			recordRequest(metrics, "challenge_start", false, started)
			return
		}

		recordRequest(metrics, "challenge_start", true, started)
		c.JSON(http.StatusOK, inst)
	}
}

// SubmitChallenge scores a submission against an active challenge.
func SubmitChallenge(svc *challenges.Service, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "SubmitChallenge")
		defer span.End()

		started := time.Now()
		var req datatypes.SubmitChallengeRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			recordRequest(metrics, "challenge_submit", false, started)
			return
		}

		result, err := svc.Submit(ctx, middleware.GetLearnerID(c), req.ChallengeID, req.Circuit)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Warn("Submission failed", "error", err)

			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, challenges.ErrChallengeNotFound):
				status = http.StatusNotFound
			case errors.Is(err, challenges.ErrEmptySubmission),
				errors.Is(err, quantum.ErrInvalidCircuit),
				errors.Is(err, quantum.ErrInvalidOperation):
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			recordRequest(metrics, "challenge_submit", false, started)
			return
		}

		if metrics != nil {
			metrics.RecordSubmission(result.Passed)
		}
		recordRequest(metrics, "challenge_submit", true, started)
		c.JSON(http.StatusOK, result)
	}
}

// ChallengeHistory lists the learner's attempts, most recent first.
func ChallengeHistory(svc *challenges.Service, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "ChallengeHistory")
		defer span.End()

		started := time.Now()
		attempts, err := svc.History(ctx, middleware.GetLearnerID(c))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			recordRequest(metrics, "challenge_history", false, started)
			return
		}

		recordRequest(metrics, "challenge_history", true, started)
		c.JSON(http.StatusOK, gin.H{"attempts": attempts})
	}
}
