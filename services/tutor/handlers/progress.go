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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/quantumiq/services/tutor/middleware"
	"github.com/AleutianAI/quantumiq/services/tutor/observability"
	"github.com/AleutianAI/quantumiq/services/tutor/store"
)

// GetProgress returns the learner's mastery records and learning plan.
func GetProgress(st store.Store, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "GetProgress")
		defer span.End()

		started := time.Now()
		learnerID := middleware.GetLearnerID(c)

		mastery, err := st.ListMastery(ctx, learnerID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			recordRequest(metrics, "progress", false, started)
			return
		}

		response := gin.H{"mastery": mastery}
		plan, err := st.GetPlan(ctx, learnerID)
		switch {
		case err == nil:
			response["learning_plan"] = plan
		case errors.Is(err, store.ErrNotFound):
			// New learners have no plan yet.
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			recordRequest(metrics, "progress", false, started)
			return
		}

		recordRequest(metrics, "progress", true, started)
		c.JSON(http.StatusOK, response)
	}
}
