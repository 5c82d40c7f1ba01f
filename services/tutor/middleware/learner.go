// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides HTTP middleware for the tutor service:
// learner identity extraction and per-learner rate limiting.
//
// Authentication is an upstream concern. The service trusts the
// X-Learner-ID header; what it defends is its own key space, by
// validating the identifier before it reaches a store key.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/quantumiq/pkg/validation"
)

// LearnerHeader carries the learner identity.
const LearnerHeader = "X-Learner-ID"

// learnerIDKey is the gin context key for the validated learner ID.
const learnerIDKey = "quantumiq_learner_id"

// GetLearnerID retrieves the validated learner ID from the context.
// Empty means the middleware did not run on this route.
func GetLearnerID(c *gin.Context) string {
	return c.GetString(learnerIDKey)
}

// RequireLearner extracts and validates the learner identity header.
//
// Description:
//
//	Rejects requests without a valid X-Learner-ID with 400. On success
//	the validated ID is stored in the context for handlers.
func RequireLearner() gin.HandlerFunc {
	return func(c *gin.Context) {
		learnerID := c.GetHeader(LearnerHeader)
		if learnerID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "missing " + LearnerHeader + " header",
			})
			return
		}
		if err := validation.ValidateLearnerID(learnerID); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Set(learnerIDKey, learnerID)
		c.Next()
	}
}
