// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that end up in
// database keys or file paths. Using these validators prevents key-space
// collisions and path traversal from crafted identifiers.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// learnerIDPattern matches valid learner identifiers.
// Allows: letters, digits, underscores, hyphens, dots.
// Max length: 64 characters. Identifiers are embedded in store keys
// delimited by '/', so the slash is deliberately excluded.
var learnerIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]{0,63}$`)

// conceptKeyPattern matches curriculum concept keys.
// Concepts are lowercase snake_case names like "superposition" or
// "bell_states", 1-48 characters.
var conceptKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,47}$`)

// ValidateLearnerID validates a learner identifier before it is embedded
// in a store key.
//
// Valid identifiers:
//   - 1-64 characters
//   - Letters, digits, underscores, hyphens, dots
//   - Must start with a letter or digit
//
// Returns an error if the identifier is invalid.
//
// Example:
//
//	if err := validation.ValidateLearnerID(learnerID); err != nil {
//	    return nil, fmt.Errorf("invalid learner id: %w", err)
//	}
//	// Safe to use in a store key
func ValidateLearnerID(id string) error {
	if id == "" {
		return fmt.Errorf("learner id cannot be empty")
	}

	if !learnerIDPattern.MatchString(id) {
		return fmt.Errorf("invalid learner id format: %q (must be 1-64 alphanumeric chars, underscores, hyphens, or dots)", id)
	}

	return nil
}

// ValidateConceptKey validates a curriculum concept key.
//
// Returns an error if the key is not a lowercase snake_case name.
func ValidateConceptKey(key string) error {
	if key == "" {
		return fmt.Errorf("concept key cannot be empty")
	}

	if !conceptKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid concept key format: %q (must be lowercase snake_case, 1-48 chars)", key)
	}

	return nil
}

// SanitizeConceptKey normalizes and validates a concept key.
// Returns the lowercase key if valid, or an error if invalid.
//
// Use this when accepting concept names from model output, which may
// arrive with stray whitespace or mixed case:
//
//	safeKey, err := validation.SanitizeConceptKey(raw)
//	if err != nil {
//	    return err
//	}
func SanitizeConceptKey(key string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(key))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if err := ValidateConceptKey(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
