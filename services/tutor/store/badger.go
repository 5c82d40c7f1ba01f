// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/quantumiq/pkg/validation"
)

// Config holds configuration for the BadgerDB-backed store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Required for persistent databases.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	// Default: true for production, false for testing.
	SyncWrites bool

	// Logger is the logger for BadgerDB operations.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns production defaults for a path.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryConfig returns configuration optimized for testing.
func InMemoryConfig() Config {
	return Config{
		InMemory:   true,
		SyncWrites: false,
	}
}

// BadgerStore implements Store on BadgerDB.
//
// Thread Safety: Safe for concurrent use. BadgerDB transactions give
// each operation a consistent snapshot.
type BadgerStore struct {
	db *badger.DB
}

var _ Store = (*BadgerStore)(nil)

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open creates and opens a BadgerDB-backed store.
//
// Description:
//
//	Opens a BadgerDB database at the configured path, or in memory if
//	InMemory is true. Creates the directory if it doesn't exist.
//
// Inputs:
//
//	cfg - Store configuration. Path is required unless InMemory is true.
//
// Outputs:
//
//	*BadgerStore - The opened store. Caller must call Close() when done.
//	error - Non-nil if path is invalid or database cannot be opened.
//
// Thread Safety: The returned store is safe for concurrent use.
func Open(cfg Config) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil) // Disable BadgerDB's internal logging
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Key builders. Learner IDs and concept keys are validated before being
// embedded, so '/' remains a reliable delimiter.

func masteryKey(learnerID, concept string) []byte {
	return []byte("mastery/" + learnerID + "/" + concept)
}

func masteryPrefix(learnerID string) []byte {
	return []byte("mastery/" + learnerID + "/")
}

func planKey(learnerID string) []byte {
	return []byte("plan/" + learnerID)
}

func attemptKey(learnerID, id string) []byte {
	return []byte("attempt/" + learnerID + "/" + id)
}

func attemptPrefix(learnerID string) []byte {
	return []byte("attempt/" + learnerID + "/")
}

// GetMastery returns the mastery record for one concept.
func (s *BadgerStore) GetMastery(ctx context.Context, learnerID, concept string) (MasteryRecord, error) {
	var rec MasteryRecord
	if err := validateIDs(learnerID, concept); err != nil {
		return rec, err
	}
	err := s.get(ctx, masteryKey(learnerID, concept), &rec)
	return rec, err
}

// PutMastery writes a mastery record, replacing any existing one.
func (s *BadgerStore) PutMastery(ctx context.Context, learnerID string, rec MasteryRecord) error {
	if err := validateIDs(learnerID, rec.Concept); err != nil {
		return err
	}
	if rec.Level < 0 || rec.Level > 1 {
		return fmt.Errorf("mastery level %v outside [0, 1]", rec.Level)
	}
	return s.put(ctx, masteryKey(learnerID, rec.Concept), rec)
}

// ListMastery returns all mastery records for a learner, sorted by
// concept key.
func (s *BadgerStore) ListMastery(ctx context.Context, learnerID string) ([]MasteryRecord, error) {
	if err := validation.ValidateLearnerID(learnerID); err != nil {
		return nil, err
	}

	var records []MasteryRecord
	err := s.scan(ctx, masteryPrefix(learnerID), func(val []byte) error {
		var rec MasteryRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return fmt.Errorf("decode mastery record: %w", err)
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Concept < records[j].Concept
	})
	return records, nil
}

// GetPlan returns the learner's current plan.
func (s *BadgerStore) GetPlan(ctx context.Context, learnerID string) (LearningPlan, error) {
	var plan LearningPlan
	if err := validation.ValidateLearnerID(learnerID); err != nil {
		return plan, err
	}
	err := s.get(ctx, planKey(learnerID), &plan)
	return plan, err
}

// PutPlan writes the learner's plan, replacing any existing one.
func (s *BadgerStore) PutPlan(ctx context.Context, learnerID string, plan LearningPlan) error {
	if err := validation.ValidateLearnerID(learnerID); err != nil {
		return err
	}
	for _, concept := range plan.FocusConcepts {
		if err := validation.ValidateConceptKey(concept); err != nil {
			return err
		}
	}
	return s.put(ctx, planKey(learnerID), plan)
}

// PutAttempt appends a challenge attempt.
func (s *BadgerStore) PutAttempt(ctx context.Context, learnerID string, attempt ChallengeAttempt) error {
	if err := validation.ValidateLearnerID(learnerID); err != nil {
		return err
	}
	if attempt.ID == "" || strings.Contains(attempt.ID, "/") {
		return fmt.Errorf("invalid attempt id %q", attempt.ID)
	}
	return s.put(ctx, attemptKey(learnerID, attempt.ID), attempt)
}

// ListAttempts returns all attempts for a learner, most recent first.
func (s *BadgerStore) ListAttempts(ctx context.Context, learnerID string) ([]ChallengeAttempt, error) {
	if err := validation.ValidateLearnerID(learnerID); err != nil {
		return nil, err
	}

	var attempts []ChallengeAttempt
	err := s.scan(ctx, attemptPrefix(learnerID), func(val []byte) error {
		var a ChallengeAttempt
		if err := json.Unmarshal(val, &a); err != nil {
			return fmt.Errorf("decode attempt: %w", err)
		}
		attempts = append(attempts, a)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(attempts, func(i, j int) bool {
		return attempts[i].SubmittedAt.After(attempts[j].SubmittedAt)
	})
	return attempts, nil
}

// get reads and decodes a single JSON value.
func (s *BadgerStore) get(ctx context.Context, key []byte, out any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
}

// put encodes and writes a single JSON value.
func (s *BadgerStore) put(ctx context.Context, key []byte, val any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// scan visits every value under a key prefix.
func (s *BadgerStore) scan(ctx context.Context, prefix []byte, visit func(val []byte) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("context cancelled: %w", err)
			}
			if err := it.Item().Value(visit); err != nil {
				return err
			}
		}
		return nil
	})
}

func validateIDs(learnerID, concept string) error {
	if err := validation.ValidateLearnerID(learnerID); err != nil {
		return err
	}
	return validation.ValidateConceptKey(concept)
}
