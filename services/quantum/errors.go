// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package quantum

import (
	"errors"
	"fmt"
)

// Sentinel errors for the quantum package.
var (
	// ErrInvalidOperation indicates a malformed gate operation: unknown
	// gate, wrong target count, out-of-range target, or repeated target.
	ErrInvalidOperation = errors.New("invalid gate operation")

	// ErrInvalidCircuit indicates the circuit itself is malformed
	// (qubit count outside 1..MaxQubits).
	ErrInvalidCircuit = errors.New("invalid circuit")

	// ErrNumericalDrift indicates a probability distribution no longer
	// sums to one within tolerance. This signals an internal gate-algebra
	// bug, never bad user input.
	ErrNumericalDrift = errors.New("probability normalization drifted")
)

// OperationError carries enough detail for a user-facing message naming
// the offending operation. It wraps ErrInvalidOperation so callers can
// classify with errors.Is.
type OperationError struct {
	Index   int
	Gate    string
	Targets []int
	Reason  string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %d (%s on %v): %s", e.Index, e.Gate, e.Targets, e.Reason)
}

func (e *OperationError) Unwrap() error {
	return ErrInvalidOperation
}
