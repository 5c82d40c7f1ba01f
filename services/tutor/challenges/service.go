// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package challenges

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/quantumiq/services/quantum"
	"github.com/AleutianAI/quantumiq/services/tutor/store"
)

var (
	// ErrChallengeNotFound is returned when a challenge key or active
	// challenge ID does not resolve for the learner.
	ErrChallengeNotFound = errors.New("challenges: challenge not found")

	// ErrEmptySubmission is returned for a submission with no operations.
	ErrEmptySubmission = errors.New("challenges: cannot submit an empty circuit")
)

// Instance is one in-flight challenge for a learner.
type Instance struct {
	ID         string     `json:"id"`
	LearnerID  string     `json:"learner_id"`
	Definition Definition `json:"definition"`
	StartedAt  time.Time  `json:"started_at"`
}

// Result is the outcome of scoring a submission.
type Result struct {
	AttemptID string  `json:"attempt_id"`
	Challenge string  `json:"challenge"`
	Score     float64 `json:"score"`
	Passed    bool    `json:"passed"`
	Threshold float64 `json:"threshold"`

	// TargetProbabilities and SubmittedProbabilities let the tutor (or
	// the frontend) explain WHERE the distributions diverged.
	TargetProbabilities    map[string]float64 `json:"target_probabilities"`
	SubmittedProbabilities map[string]float64 `json:"submitted_probabilities"`
}

// Service starts challenges and scores submissions.
//
// In-flight challenges are held in memory: they are cheap to recreate
// and losing one on restart costs the learner a single "start" call.
// Completed attempts and mastery movements persist through the store.
//
// Thread Safety: Safe for concurrent use.
type Service struct {
	store     store.Store
	pipeline  *quantum.Pipeline
	threshold float64

	mu     sync.Mutex
	active map[string]Instance
}

// NewService creates a challenge service.
//
// Inputs:
//
//	st - Persistence for attempts and mastery. Must not be nil.
//	pipeline - Simulation pipeline used for scoring. Must not be nil.
//	threshold - Pass threshold in (0, 1]. Zero selects the default.
func NewService(st store.Store, pipeline *quantum.Pipeline, threshold float64) (*Service, error) {
	if st == nil {
		return nil, errors.New("store must not be nil")
	}
	if pipeline == nil {
		return nil, errors.New("pipeline must not be nil")
	}
	if threshold == 0 {
		threshold = quantum.DefaultPassThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %v outside (0, 1]", threshold)
	}
	return &Service{
		store:     st,
		pipeline:  pipeline,
		threshold: threshold,
		active:    make(map[string]Instance),
	}, nil
}

// Presets returns the fixed catalog.
func (s *Service) Presets() []Definition {
	return Presets()
}

// Start begins a preset challenge for a learner.
//
// Outputs:
//
//	Instance - The in-flight challenge, with a fresh ID for Submit.
//	error - ErrChallengeNotFound for an unknown preset key.
func (s *Service) Start(ctx context.Context, learnerID, key string) (Instance, error) {
	def, ok := Preset(key)
	if !ok {
		return Instance{}, fmt.Errorf("%w: preset %q", ErrChallengeNotFound, key)
	}
	return s.startDefinition(learnerID, def), nil
}

// StartGenerated begins a generated challenge targeting a concept and
// difficulty. Used by the tutor when it wants tailored practice.
func (s *Service) StartGenerated(ctx context.Context, learnerID, concept, difficulty string) Instance {
	return s.startDefinition(learnerID, Generate(concept, difficulty))
}

func (s *Service) startDefinition(learnerID string, def Definition) Instance {
	inst := Instance{
		ID:         uuid.NewString(),
		LearnerID:  learnerID,
		Definition: def,
		StartedAt:  time.Now().UTC(),
	}
	s.mu.Lock()
	s.active[inst.ID] = inst
	s.mu.Unlock()
	return inst
}

// Submit scores a learner's circuit against an active challenge.
//
// Description:
//
//	Simulates the target and the submission on a register wide enough
//	for both, then scores the probability distributions with the
//	Bhattacharyya coefficient. At or above the threshold the attempt
//	passes. The attempt is persisted and mastery is updated for every
//	concept the challenge exercises. The active instance is consumed on
//	a pass; a failed attempt leaves it live for another try.
//
// Outputs:
//
//	Result - Score, pass verdict, and both distributions.
//	error - ErrChallengeNotFound if the instance ID does not belong to
//	        the learner, ErrEmptySubmission for no operations, or a
//	        simulation error for an invalid circuit.
func (s *Service) Submit(ctx context.Context, learnerID, instanceID string, submission quantum.Circuit) (Result, error) {
	s.mu.Lock()
	inst, ok := s.active[instanceID]
	s.mu.Unlock()
	if !ok || inst.LearnerID != learnerID {
		return Result{}, fmt.Errorf("%w: instance %q", ErrChallengeNotFound, instanceID)
	}
	if len(submission.Operations) == 0 {
		return Result{}, ErrEmptySubmission
	}

	// Both circuits run on the same register so the distributions share
	// a key space.
	width := inst.Definition.Target.NumQubits
	if submission.NumQubits > width {
		width = submission.NumQubits
	}
	target := inst.Definition.Target
	target.NumQubits = width
	submission.NumQubits = width

	targetObs, err := s.pipeline.Simulate(target)
	if err != nil {
		return Result{}, fmt.Errorf("simulate target: %w", err)
	}
	subObs, err := s.pipeline.Simulate(submission)
	if err != nil {
		return Result{}, fmt.Errorf("simulate submission: %w", err)
	}

	score := quantum.Score(targetObs.Probabilities, subObs.Probabilities)
	passed := score >= s.threshold

	attempt := store.ChallengeAttempt{
		ID:          uuid.NewString(),
		ChallengeID: inst.Definition.Key,
		Concept:     primaryConcept(inst.Definition),
		Score:       score,
		Passed:      passed,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.store.PutAttempt(ctx, learnerID, attempt); err != nil {
		return Result{}, fmt.Errorf("persist attempt: %w", err)
	}
	if err := s.updateMastery(ctx, learnerID, inst.Definition.Concepts, score, passed); err != nil {
		return Result{}, err
	}

	if passed {
		s.mu.Lock()
		delete(s.active, instanceID)
		s.mu.Unlock()
	}

	return Result{
		AttemptID:              attempt.ID,
		Challenge:              inst.Definition.Key,
		Score:                  score,
		Passed:                 passed,
		Threshold:              s.threshold,
		TargetProbabilities:    targetObs.Probabilities,
		SubmittedProbabilities: subObs.Probabilities,
	}, nil
}

// History returns the learner's attempts, most recent first.
func (s *Service) History(ctx context.Context, learnerID string) ([]store.ChallengeAttempt, error) {
	return s.store.ListAttempts(ctx, learnerID)
}

// updateMastery folds a score into each exercised concept's estimate.
// The estimate is an exponential moving average pulled toward the score,
// so a run of passes converges toward 1 without a single lucky attempt
// saturating it.
func (s *Service) updateMastery(ctx context.Context, learnerID string, concepts []string, score float64, passed bool) error {
	for _, concept := range concepts {
		rec, err := s.store.GetMastery(ctx, learnerID, concept)
		if errors.Is(err, store.ErrNotFound) {
			rec = store.MasteryRecord{Concept: concept}
		} else if err != nil {
			return fmt.Errorf("read mastery for %s: %w", concept, err)
		}

		rec.Level = clamp01(0.7*rec.Level + 0.3*score)
		rec.Attempts++
		if passed {
			rec.Completions++
		}
		rec.UpdatedAt = time.Now().UTC()

		if err := s.store.PutMastery(ctx, learnerID, rec); err != nil {
			return fmt.Errorf("write mastery for %s: %w", concept, err)
		}
	}
	return nil
}

func primaryConcept(def Definition) string {
	if len(def.Concepts) > 0 {
		return def.Concepts[0]
	}
	return "superposition"
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
