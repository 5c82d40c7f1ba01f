// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides request and response types for the tutor
// HTTP surface.
package datatypes

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/quantumiq/services/quantum"
)

const (
	// MaxMessageBytes bounds a single chat message. Byte length, not
	// rune count, to bound memory against large payloads.
	MaxMessageBytes = 32 * 1024

	// MaxHistoryMessages bounds the replayed conversation history.
	MaxHistoryMessages = 100

	// MaxShots bounds a simulation's measurement sample count.
	MaxShots = 65536
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("maxbytes", validateMaxBytes)
	}
}

// validateMaxBytes enforces MaxMessageBytes on string fields. Checks
// byte length, not rune count, so multi-byte payloads cannot slip past
// the limit.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxMessageBytes
}

// ChatMessage is one prior conversation message.
type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required,maxbytes"`
}

// ChatRequest is the body for POST /v1/chat.
//
// The learner's current circuit rides along with the message so the
// tutor can inspect it without a separate circuit store.
type ChatRequest struct {
	Message string           `json:"message" binding:"required,maxbytes"`
	Circuit *quantum.Circuit `json:"circuit,omitempty"`
	History []ChatMessage    `json:"history,omitempty" binding:"omitempty,max=100,dive"`
}

// SimulateRequest is the body for POST /v1/simulate and
// POST /v1/simulate/step. The circuit fields are inline: num_qubits
// plus the gate list.
type SimulateRequest struct {
	quantum.Circuit
	// Shots overrides the configured sample count. Zero uses the
	// default. Ignored by stepwise simulation's intermediate steps.
	Shots int `json:"shots,omitempty" binding:"omitempty,min=1,max=65536"`
}

// StartChallengeRequest is the body for POST /v1/challenges/start.
//
// Exactly one path applies: a preset key, or a concept (with optional
// difficulty) for a generated challenge.
type StartChallengeRequest struct {
	Key        string `json:"key,omitempty"`
	Concept    string `json:"concept,omitempty"`
	Difficulty string `json:"difficulty,omitempty" binding:"omitempty,oneof=easy medium hard"`
}

// SubmitChallengeRequest is the body for POST /v1/challenges/submit.
type SubmitChallengeRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required"`
	quantum.Circuit
}

// SimulateResponse is the simulation result plus the shot count used.
type SimulateResponse struct {
	quantum.ObservationResult
	Shots int `json:"shots"`
}
