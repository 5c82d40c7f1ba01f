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
	"math"
	"math/cmplx"
	"sort"
)

// GateSpec describes one catalog entry: its canonical name, how many
// qubits it acts on, and the transform applied to the state.
type GateSpec struct {
	Name  string
	Arity int

	// apply mutates the amplitudes in place. Callers go through Apply,
	// which clones first, so the mutation never escapes.
	apply func(s *Statevector, targets []int)
}

// gateCatalog is the immutable eight-gate set. Single-qubit gates are
// expressed as 2x2 unitaries tensored into the identity at the target's
// bit position; cx and ccx are conditional basis-index permutations.
var gateCatalog = map[string]GateSpec{
	"h": {Name: "h", Arity: 1, apply: func(s *Statevector, t []int) {
		inv := complex(1/math.Sqrt2, 0)
		applySingleQubit(s, t[0], [2][2]complex128{{inv, inv}, {inv, -inv}})
	}},
	"x": {Name: "x", Arity: 1, apply: func(s *Statevector, t []int) {
		applySingleQubit(s, t[0], [2][2]complex128{{0, 1}, {1, 0}})
	}},
	"y": {Name: "y", Arity: 1, apply: func(s *Statevector, t []int) {
		applySingleQubit(s, t[0], [2][2]complex128{{0, -1i}, {1i, 0}})
	}},
	"z": {Name: "z", Arity: 1, apply: func(s *Statevector, t []int) {
		applySingleQubit(s, t[0], [2][2]complex128{{1, 0}, {0, -1}})
	}},
	"s": {Name: "s", Arity: 1, apply: func(s *Statevector, t []int) {
		applySingleQubit(s, t[0], [2][2]complex128{{1, 0}, {0, 1i}})
	}},
	"t": {Name: "t", Arity: 1, apply: func(s *Statevector, t []int) {
		applySingleQubit(s, t[0], [2][2]complex128{{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}})
	}},
	"cx": {Name: "cx", Arity: 2, apply: func(s *Statevector, t []int) {
		applyControlledX(s, t[:1], t[1])
	}},
	"ccx": {Name: "ccx", Arity: 3, apply: func(s *Statevector, t []int) {
		applyControlledX(s, t[:2], t[2])
	}},
}

// gateAliases maps accepted spellings to canonical catalog names.
var gateAliases = map[string]string{
	"cnot":    "cx",
	"toffoli": "ccx",
}

// LookupGate resolves a gate name (canonical or alias, case handled by
// the caller) to its catalog entry.
func LookupGate(name string) (GateSpec, bool) {
	if canonical, ok := gateAliases[name]; ok {
		name = canonical
	}
	spec, ok := gateCatalog[name]
	return spec, ok
}

// GateNames returns the canonical catalog names in sorted order.
func GateNames() []string {
	names := make([]string, 0, len(gateCatalog))
	for name := range gateCatalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply executes one gate operation and returns the resulting state.
//
// Description:
//
//	Validates the operation against the catalog (arity, target range,
//	target distinctness), then applies the unitary to a copy of the
//	input. The input state is never modified. Dimension and norm are
//	preserved because every catalog entry is unitary.
//
// Inputs:
//
//	state - The state to evolve. Must not be nil.
//	op - The gate operation to apply.
//
// Outputs:
//
//	*Statevector - The evolved state (always a fresh allocation).
//	error - ErrInvalidOperation (as *OperationError) if the operation
//	        is malformed.
func Apply(state *Statevector, op GateOperation) (*Statevector, error) {
	if err := validateOperation(state.NumQubits, 0, op); err != nil {
		return nil, err
	}

	spec, _ := LookupGate(op.Gate)
	next := state.Clone()
	spec.apply(next, op.Targets)
	return next, nil
}

// validateOperation checks one operation against the catalog and the
// register width. index is only used for error reporting.
func validateOperation(numQubits, index int, op GateOperation) error {
	spec, ok := LookupGate(op.Gate)
	if !ok {
		return &OperationError{Index: index, Gate: op.Gate, Targets: op.Targets, Reason: "unknown gate"}
	}
	if len(op.Targets) != spec.Arity {
		return &OperationError{
			Index: index, Gate: op.Gate, Targets: op.Targets,
			Reason: "wrong target count for gate arity",
		}
	}
	seen := make(map[int]bool, len(op.Targets))
	for _, q := range op.Targets {
		if q < 0 || q >= numQubits {
			return &OperationError{Index: index, Gate: op.Gate, Targets: op.Targets, Reason: "target qubit out of range"}
		}
		if seen[q] {
			return &OperationError{Index: index, Gate: op.Gate, Targets: op.Targets, Reason: "repeated target qubit"}
		}
		seen[q] = true
	}
	return nil
}

// applySingleQubit tensors a 2x2 unitary into the identity at qubit q.
// Amplitude pairs differing only in bit q are combined through m.
func applySingleQubit(s *Statevector, q int, m [2][2]complex128) {
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
		s.Amplitudes[i] = m[0][0]*a0 + m[0][1]*a1
		s.Amplitudes[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

// applyControlledX exchanges amplitudes between basis-index pairs whose
// control bits are all 1 and whose target bit differs. This structural
// permutation is O(2^n) and never materializes a dense matrix.
func applyControlledX(s *Statevector, controls []int, target int) {
	controlMask := 0
	for _, c := range controls {
		controlMask |= 1 << c
	}
	targetBit := 1 << target
	for i := range s.Amplitudes {
		if i&controlMask == controlMask && i&targetBit == 0 {
			j := i | targetBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}
