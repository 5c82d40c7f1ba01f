// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package routes wires the tutor service's HTTP surface.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/quantumiq/services/tutor/agent"
	"github.com/AleutianAI/quantumiq/services/tutor/challenges"
	"github.com/AleutianAI/quantumiq/services/tutor/handlers"
	"github.com/AleutianAI/quantumiq/services/tutor/middleware"
	"github.com/AleutianAI/quantumiq/services/tutor/observability"
	"github.com/AleutianAI/quantumiq/services/tutor/store"
)

// Deps carries everything the routes need.
type Deps struct {
	Loop       *agent.Loop
	Challenges *challenges.Service
	Store      store.Store
	Metrics    *observability.Metrics

	// DefaultShots is the measurement sample count when a request does
	// not specify one.
	DefaultShots int

	// RateLimitRPS and RateLimitBurst bound per-learner request rates.
	// Zero RPS disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// SetupRoutes registers the tutor API on the router.
//
// Simulation endpoints are anonymous; chat, challenges, and progress
// require the learner identity header.
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	var limit gin.HandlerFunc
	if deps.RateLimitRPS > 0 {
		limit = middleware.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst)
	}
	{
		v1.GET("/health", handlers.HealthCheck)

		// Anonymous endpoints rate-limit per client IP.
		anon := v1.Group("")
		if limit != nil {
			anon.Use(limit)
		}
		anon.POST("/simulate", handlers.HandleSimulate(deps.DefaultShots, deps.Metrics))
		anon.POST("/simulate/step", handlers.HandleSimulateStep(deps.DefaultShots, deps.Metrics))
		anon.GET("/challenges/presets", handlers.ListPresets(deps.Challenges))

		// The limiter runs after RequireLearner here, so learner routes
		// rate-limit per learner ID. Both groups share one bucket map.
		learner := v1.Group("")
		learner.Use(middleware.RequireLearner())
		if limit != nil {
			learner.Use(limit)
		}
		{
			learner.POST("/chat", handlers.HandleChat(deps.Loop, deps.Metrics))
			learner.POST("/challenges/start", handlers.StartChallenge(deps.Challenges, deps.Metrics))
			learner.POST("/challenges/submit", handlers.SubmitChallenge(deps.Challenges, deps.Metrics))
			learner.GET("/challenges/history", handlers.ChallengeHistory(deps.Challenges, deps.Metrics))
			learner.GET("/progress", handlers.GetProgress(deps.Store, deps.Metrics))
		}
	}
}
