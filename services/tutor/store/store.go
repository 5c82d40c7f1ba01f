// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store persists learner progress on BadgerDB.
//
// BadgerDB is used for local embedded storage with low-latency access.
// Values are JSON documents keyed by a '/'-delimited namespace:
//
//	mastery/<learner>/<concept> -> MasteryRecord
//	plan/<learner>              -> LearningPlan
//	attempt/<learner>/<id>      -> ChallengeAttempt
//
// Writes are last-write-wins per key. There is no cross-key transaction
// surface: every operation the tutor performs touches a single learner,
// and a lost concurrent update degrades to a stale mastery estimate, not
// corruption.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: record not found")

// MasteryRecord tracks a learner's estimated mastery of one concept.
type MasteryRecord struct {
	// Concept is the curriculum concept key, e.g. "superposition".
	Concept string `json:"concept"`

	// Level is the mastery estimate in [0, 1].
	Level float64 `json:"level"`

	// Attempts counts challenge submissions touching this concept.
	Attempts int `json:"attempts"`

	// Completions counts submissions at or above the pass threshold.
	Completions int `json:"completions"`

	// UpdatedAt is the last write time.
	UpdatedAt time.Time `json:"updated_at"`
}

// LearningPlan is the tutor's current plan for a learner.
type LearningPlan struct {
	// FocusConcepts are the concepts the tutor is steering toward,
	// strongest recommendation first.
	FocusConcepts []string `json:"focus_concepts"`

	// Rationale is the tutor's stated reason for the plan, surfaced to
	// the learner on request.
	Rationale string `json:"rationale"`

	// UpdatedAt is the last write time.
	UpdatedAt time.Time `json:"updated_at"`
}

// ChallengeAttempt records one challenge submission and its outcome.
type ChallengeAttempt struct {
	// ID is the attempt identifier (UUID).
	ID string `json:"id"`

	// ChallengeID identifies the challenge definition attempted.
	ChallengeID string `json:"challenge_id"`

	// Concept is the primary concept the challenge exercises.
	Concept string `json:"concept"`

	// Score is the similarity score in [0, 1].
	Score float64 `json:"score"`

	// Passed reports whether Score met the pass threshold in effect.
	Passed bool `json:"passed"`

	// SubmittedAt is when the submission was evaluated.
	SubmittedAt time.Time `json:"submitted_at"`
}

// Store is the persistence surface for learner progress.
//
// Implementations must be safe for concurrent use. All methods honor
// context cancellation.
type Store interface {
	// GetMastery returns the mastery record for one concept.
	// Returns ErrNotFound if the learner has no record for the concept.
	GetMastery(ctx context.Context, learnerID, concept string) (MasteryRecord, error)

	// PutMastery writes a mastery record, replacing any existing one.
	PutMastery(ctx context.Context, learnerID string, rec MasteryRecord) error

	// ListMastery returns all mastery records for a learner, sorted by
	// concept key. An unknown learner yields an empty slice, not an error.
	ListMastery(ctx context.Context, learnerID string) ([]MasteryRecord, error)

	// GetPlan returns the learner's current plan.
	// Returns ErrNotFound if no plan has been written.
	GetPlan(ctx context.Context, learnerID string) (LearningPlan, error)

	// PutPlan writes the learner's plan, replacing any existing one.
	PutPlan(ctx context.Context, learnerID string, plan LearningPlan) error

	// PutAttempt appends a challenge attempt.
	PutAttempt(ctx context.Context, learnerID string, attempt ChallengeAttempt) error

	// ListAttempts returns all attempts for a learner, most recent first.
	// An unknown learner yields an empty slice, not an error.
	ListAttempts(ctx context.Context, learnerID string) ([]ChallengeAttempt, error)

	// Close releases the underlying database.
	Close() error
}
