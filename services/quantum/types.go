// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package quantum implements the statevector simulation core: the fixed
// gate catalog, circuit evolution, measurement statistics, per-qubit Bloch
// projections, and distribution scoring for challenge grading.
//
// # Bit-Order Convention
//
// The package uses little-endian qubit ordering throughout: bit q of a
// basis index addresses qubit q, so index 1 on a 2-qubit register is the
// state where qubit 0 is |1> and qubit 1 is |0>. Basis bitstrings are
// rendered with qubit n-1 leftmost and qubit 0 rightmost, matching the
// binary expansion of the index. FormatBasisState is the single place
// this convention is realized; every probability map, measurement count,
// and challenge score key goes through it.
//
// # Thread Safety
//
// All exported functions are pure: they never mutate their inputs and
// hold no package state beyond the immutable gate catalog. They are safe
// for unrestricted concurrent use.
package quantum

import "fmt"

const (
	// MaxQubits caps register width. The controlled-gate implementation
	// is an O(2^n) index permutation rather than a dense matrix product,
	// so the cap is a product decision, not an algorithmic one.
	MaxQubits = 5

	// DefaultShots is the measurement sample count used when a request
	// does not specify one.
	DefaultShots = 1024

	// normTolerance bounds acceptable drift of the statevector norm.
	normTolerance = 1e-9

	// probSumTolerance bounds acceptable drift of a probability
	// distribution's total mass before sampling refuses to proceed.
	probSumTolerance = 1e-6
)

// GateOperation is one placed gate: a catalog name plus the ordered qubit
// indices it acts on. For controlled gates the controls come first and
// the target last, e.g. {"cx", [control, target]}.
type GateOperation struct {
	Gate    string `json:"gate" binding:"required"`
	Targets []int  `json:"targets" binding:"required"`
}

// Circuit is an ordered gate sequence over a fixed-width register.
// Operation order is positional: element i executes before element i+1.
type Circuit struct {
	NumQubits  int             `json:"num_qubits" binding:"required,min=1,max=5"`
	Operations []GateOperation `json:"circuit"`
}

// Statevector holds the 2^n complex amplitudes of an n-qubit pure state.
type Statevector struct {
	Amplitudes []complex128
	NumQubits  int
}

// NewStatevector returns the all-zero basis state |0...0> on n qubits.
func NewStatevector(numQubits int) *Statevector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &Statevector{Amplitudes: amps, NumQubits: numQubits}
}

// Clone returns an independent copy of the state.
func (s *Statevector) Clone() *Statevector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &Statevector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// BlochPoint is one qubit's (x, y, z) projection onto the Bloch ball.
// A pure unentangled qubit sits on the unit sphere surface; entanglement
// pulls the point strictly inside.
type BlochPoint struct {
	Qubit int     `json:"qubit"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

// ObservationResult bundles everything derived from one simulated state:
// the raw amplitudes (as [re, im] pairs for JSON transport), exact basis
// probabilities over all 2^n outcomes, per-qubit Bloch coordinates, and
// sampled measurement counts.
type ObservationResult struct {
	Statevector       [][2]float64       `json:"statevector"`
	Probabilities     map[string]float64 `json:"probabilities"`
	BlochCoords       []BlochPoint       `json:"bloch_coords"`
	MeasurementCounts map[string]int     `json:"measurement_counts"`
}

// StepTrace is the per-prefix observation sequence from stepwise
// simulation. Steps[0] observes the empty prefix (the |0...0> state) and
// Steps[len(ops)] observes the full circuit.
type StepTrace struct {
	Steps []ObservationResult `json:"steps"`
	Gates []GateOperation     `json:"gates"`
}

// FormatBasisState renders basis index i as a fixed-width bitstring under
// the package bit-order convention: qubit n-1 leftmost, qubit 0 rightmost.
func FormatBasisState(index, numQubits int) string {
	return fmt.Sprintf("%0*b", numQubits, index)
}
