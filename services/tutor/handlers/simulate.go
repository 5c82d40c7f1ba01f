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
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/quantumiq/services/quantum"
	"github.com/AleutianAI/quantumiq/services/tutor/datatypes"
	"github.com/AleutianAI/quantumiq/services/tutor/observability"
)

// HandleSimulate runs a circuit and returns the full observation:
// statevector, probabilities, Bloch coordinates, and sampled counts.
func HandleSimulate(defaultShots int, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := tracer.Start(c.Request.Context(), "HandleSimulate")
		defer span.End()

		started := time.Now()
		var req datatypes.SimulateRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			recordRequest(metrics, "simulate", false, started)
			return
		}

		shots := req.Shots
		if shots == 0 {
			shots = defaultShots
		}

		pipeline := quantum.NewPipeline(quantum.WithShots(shots))
		result, err := pipeline.Simulate(req.Circuit)
		if err != nil {
			writeSimulationError(c, span, metrics, "simulate", err, started)
			return
		}

		if metrics != nil {
			metrics.RecordSimulation("success")
		}
		recordRequest(metrics, "simulate", true, started)
		c.JSON(http.StatusOK, datatypes.SimulateResponse{
			ObservationResult: *result,
			Shots:             shots,
		})
	}
}

// HandleSimulateStep runs stepwise simulation, returning one observation
// per circuit prefix for the step-through debugger view.
func HandleSimulateStep(defaultShots int, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := tracer.Start(c.Request.Context(), "HandleSimulateStep")
		defer span.End()

		started := time.Now()
		var req datatypes.SimulateRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			recordRequest(metrics, "simulate_step", false, started)
			return
		}

		shots := req.Shots
		if shots == 0 {
			shots = defaultShots
		}

		pipeline := quantum.NewPipeline(quantum.WithShots(shots))
		stepTrace, err := pipeline.SimulateStepwise(req.Circuit)
		if err != nil {
			writeSimulationError(c, span, metrics, "simulate_step", err, started)
			return
		}

		if metrics != nil {
			metrics.RecordSimulation("success")
		}
		recordRequest(metrics, "simulate_step", true, started)
		c.JSON(http.StatusOK, stepTrace)
	}
}

// writeSimulationError maps simulation errors to HTTP statuses: invalid
// circuits are the client's fault, numerical drift is ours.
func writeSimulationError(c *gin.Context, span trace.Span, metrics *observability.Metrics, endpoint string, err error, started time.Time) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	slog.Warn("Simulation failed", "endpoint", endpoint, "error", err)

	status := http.StatusInternalServerError
	label := "error"
	if errors.Is(err, quantum.ErrInvalidCircuit) || errors.Is(err, quantum.ErrInvalidOperation) {
		status = http.StatusBadRequest
		label = "invalid"
	}

	if metrics != nil {
		metrics.RecordSimulation(label)
	}
	recordRequest(metrics, endpoint, false, started)
	c.JSON(status, gin.H{"error": err.Error()})
}
