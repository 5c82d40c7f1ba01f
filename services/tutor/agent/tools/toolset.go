// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AleutianAI/quantumiq/pkg/validation"
	"github.com/AleutianAI/quantumiq/services/quantum"
	"github.com/AleutianAI/quantumiq/services/tutor/challenges"
	"github.com/AleutianAI/quantumiq/services/tutor/docs"
	"github.com/AleutianAI/quantumiq/services/tutor/store"
)

// Deps holds the collaborators the tool set needs.
type Deps struct {
	Store      store.Store
	Challenges *challenges.Service
}

// NewDefaultRegistry builds the registry with the tutor's six tools.
//
// The catalog is fixed: the reasoning component reads the learner's
// circuit and progress, searches the reference corpus, generates
// challenges, rewrites the learning plan, and scores submissions. It
// never gets a tool that executes arbitrary effects.
func NewDefaultRegistry(deps Deps) (*Registry, error) {
	if deps.Store == nil {
		return nil, errors.New("tools: store must not be nil")
	}
	if deps.Challenges == nil {
		return nil, errors.New("tools: challenge service must not be nil")
	}

	registry := NewRegistry()
	for _, tool := range []Tool{
		&getUserCircuitTool{},
		&getUserProgressTool{store: deps.Store},
		&generateChallengeTool{challenges: deps.Challenges},
		&searchDocsTool{},
		&updatePlanTool{store: deps.Store},
		&evaluateSubmissionTool{challenges: deps.Challenges},
	} {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// marshalOutput serializes a tool result. Tool results always travel as
// JSON so the reasoning component gets a stable shape.
func marshalOutput(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serialize result: %w", err)
	}
	return string(data), nil
}

// ===== get_user_circuit =====

type getUserCircuitTool struct{}

func (t *getUserCircuitTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "get_user_circuit",
		Description: "Read the learner's current circuit from the builder. Returns the gate list and qubit count, or reports that the builder is empty.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
	}
}

func (t *getUserCircuitTool) Execute(_ context.Context, inv *Invocation) (string, error) {
	if inv.Circuit == nil || len(inv.Circuit.Operations) == 0 {
		return marshalOutput(map[string]any{
			"empty":   true,
			"message": "The circuit builder is empty.",
		})
	}
	return marshalOutput(map[string]any{
		"empty":      false,
		"num_qubits": inv.Circuit.NumQubits,
		"operations": inv.Circuit.Operations,
	})
}

// ===== get_user_progress =====

type getUserProgressTool struct {
	store store.Store
}

func (t *getUserProgressTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "get_user_progress",
		Description: "Read the learner's mastery levels, learning plan, and derived weak areas. Use this before recommending what to practice next.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
	}
}

// weakMasteryLevel and weakErrorRate define when a concept counts as a
// weak area: low estimated mastery, or a high share of failed attempts.
const (
	weakMasteryLevel = 0.5
	weakErrorRate    = 0.4
)

func (t *getUserProgressTool) Execute(ctx context.Context, inv *Invocation) (string, error) {
	records, err := t.store.ListMastery(ctx, inv.LearnerID)
	if err != nil {
		return "", fmt.Errorf("list mastery: %w", err)
	}

	var weak []string
	for _, rec := range records {
		if rec.Level < weakMasteryLevel {
			weak = append(weak, rec.Concept)
			continue
		}
		if rec.Attempts > 0 {
			errorRate := 1 - float64(rec.Completions)/float64(rec.Attempts)
			if errorRate > weakErrorRate {
				weak = append(weak, rec.Concept)
			}
		}
	}

	out := map[string]any{
		"mastery":    records,
		"weak_areas": weak,
	}
	plan, err := t.store.GetPlan(ctx, inv.LearnerID)
	switch {
	case err == nil:
		out["learning_plan"] = plan
	case errors.Is(err, store.ErrNotFound):
		// No plan yet is a normal state for a new learner.
	default:
		return "", fmt.Errorf("read plan: %w", err)
	}

	return marshalOutput(out)
}

// ===== generate_challenge =====

type generateChallengeTool struct {
	challenges *challenges.Service
}

func (t *generateChallengeTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "generate_challenge",
		Description: "Start a practice challenge targeting a concept (superposition, entanglement, phase) at a difficulty (easy, medium, hard). Returns the challenge ID the learner submits against.",
		Parameters: json.RawMessage(`{"type":"object","properties":{"concept":{"type":"string","description":"Concept to practice"},"difficulty":{"type":"string","enum":["easy","medium","hard"]}},"required":["concept"]}`),
		Required:   []string{"concept"},
		Mutates:    true,
	}
}

func (t *generateChallengeTool) Execute(ctx context.Context, inv *Invocation) (string, error) {
	var args struct {
		Concept    string `json:"concept"`
		Difficulty string `json:"difficulty"`
	}
	if err := json.Unmarshal(inv.Arguments, &args); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	inst := t.challenges.StartGenerated(ctx, inv.LearnerID, args.Concept, args.Difficulty)
	return marshalOutput(map[string]any{
		"challenge_id": inst.ID,
		"name":         inst.Definition.Name,
		"description":  inst.Definition.Description,
		"num_qubits":   inst.Definition.NumQubits(),
		"concept":      inst.Definition.Concepts[0],
		"difficulty":   inst.Definition.Difficulty,
	})
}

// ===== search_quantum_docs =====

type searchDocsTool struct{}

func (t *searchDocsTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "search_quantum_docs",
		Description: "Search the curated quantum computing reference corpus. Use this to ground explanations instead of answering from memory.",
		Parameters: json.RawMessage(`{"type":"object","properties":{"query":{"type":"string","description":"Free-text search query"}},"required":["query"]}`),
		Required:   []string{"query"},
	}
}

func (t *searchDocsTool) Execute(_ context.Context, inv *Invocation) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(inv.Arguments, &args); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return marshalOutput(docs.Search(args.Query))
}

// ===== update_learning_plan =====

type updatePlanTool struct {
	store store.Store
}

func (t *updatePlanTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "update_learning_plan",
		Description: "Replace the learner's learning plan with a new ordered list of focus concepts and a short rationale. The write is immediate.",
		Parameters: json.RawMessage(`{"type":"object","properties":{"focus_concepts":{"type":"array","items":{"type":"string"},"description":"Concept keys in recommended order"},"rationale":{"type":"string","description":"Why these concepts, in one or two sentences"}},"required":["focus_concepts"]}`),
		Required:   []string{"focus_concepts"},
		Mutates:    true,
	}
}

func (t *updatePlanTool) Execute(ctx context.Context, inv *Invocation) (string, error) {
	var args struct {
		FocusConcepts []string `json:"focus_concepts"`
		Rationale     string   `json:"rationale"`
	}
	if err := json.Unmarshal(inv.Arguments, &args); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if len(args.FocusConcepts) == 0 {
		return "", fmt.Errorf("%w: focus_concepts must not be empty", ErrInvalidArguments)
	}

	concepts := make([]string, 0, len(args.FocusConcepts))
	for _, raw := range args.FocusConcepts {
		key, err := validation.SanitizeConceptKey(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		concepts = append(concepts, key)
	}

	plan := store.LearningPlan{
		FocusConcepts: concepts,
		Rationale:     args.Rationale,
	}
	if err := t.store.PutPlan(ctx, inv.LearnerID, plan); err != nil {
		return "", fmt.Errorf("write plan: %w", err)
	}
	return marshalOutput(map[string]any{
		"updated":        true,
		"focus_concepts": concepts,
	})
}

// ===== evaluate_submission =====

type evaluateSubmissionTool struct {
	challenges *challenges.Service
}

func (t *evaluateSubmissionTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "evaluate_submission",
		Description: "Score the learner's circuit against an active challenge. Persists the attempt and updates mastery for every concept the challenge exercises.",
		Parameters: json.RawMessage(`{"type":"object","properties":{"challenge_id":{"type":"string","description":"ID returned by generate_challenge or a challenge start"},"circuit":{"type":"object","description":"The submitted circuit: num_qubits plus an operations list"}},"required":["challenge_id","circuit"]}`),
		Required:   []string{"challenge_id", "circuit"},
		Mutates:    true,
	}
}

func (t *evaluateSubmissionTool) Execute(ctx context.Context, inv *Invocation) (string, error) {
	var args struct {
		ChallengeID string          `json:"challenge_id"`
		Circuit     quantum.Circuit `json:"circuit"`
	}
	if err := json.Unmarshal(inv.Arguments, &args); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	result, err := t.challenges.Submit(ctx, inv.LearnerID, args.ChallengeID, args.Circuit)
	if err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}
	return marshalOutput(result)
}
