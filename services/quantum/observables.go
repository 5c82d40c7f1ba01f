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
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Probabilities returns |amplitude|^2 for every basis state, keyed by
// fixed-width bitstrings under the package bit-order convention. All 2^n
// outcomes appear, including zero-probability ones, so distribution
// comparisons see identical key sets for identical register widths.
func Probabilities(s *Statevector) map[string]float64 {
	probs := make(map[string]float64, len(s.Amplitudes))
	for i, amp := range s.Amplitudes {
		re, im := real(amp), imag(amp)
		probs[FormatBasisState(i, s.NumQubits)] = re*re + im*im
	}
	return probs
}

// BlochVector computes qubit q's (x, y, z) Bloch coordinates.
//
// Description:
//
//	Builds the single-qubit reduced density matrix by a genuine partial
//	trace - summing outer-product contributions over every configuration
//	of the remaining qubits - then reads off the Pauli expectations:
//	x = Tr(rho X), y = Tr(rho Y), z = Tr(rho Z). A pure unentangled
//	qubit lands exactly on the unit sphere; an entangled qubit lands
//	strictly inside. Components are clamped to [-1, 1] against float
//	rounding.
//
// Inputs:
//
//	s - The joint state.
//	q - The qubit index, 0 <= q < s.NumQubits.
//
// Outputs:
//
//	BlochPoint - The projection for qubit q.
func BlochVector(s *Statevector, q int) BlochPoint {
	var rho00, rho01, rho10, rho11 complex128

	bit := 1 << q
	for i, a0 := range s.Amplitudes {
		if i&bit != 0 {
			continue
		}
		a1 := s.Amplitudes[i|bit]
		// i with bit q clear fixes one configuration of the other
		// qubits; a0/a1 are the amplitudes with qubit q at |0>/|1>.
		rho00 += a0 * conj(a0)
		rho01 += a0 * conj(a1)
		rho10 += a1 * conj(a0)
		rho11 += a1 * conj(a1)
	}

	return BlochPoint{
		Qubit: q,
		X:     clamp(2*real(rho01), -1, 1),
		Y:     clamp(2*imag(rho10), -1, 1),
		Z:     clamp(real(rho00)-real(rho11), -1, 1),
	}
}

// BlochVectors computes Bloch coordinates for every qubit in the state.
func BlochVectors(s *Statevector) []BlochPoint {
	points := make([]BlochPoint, s.NumQubits)
	for q := 0; q < s.NumQubits; q++ {
		points[q] = BlochVector(s, q)
	}
	return points
}

// Sample draws shots independent categorical samples from a probability
// distribution and returns per-outcome counts.
//
// Description:
//
//	Outcomes are visited in sorted key order so a fixed rng source
//	yields a fixed count map, which is what makes sampling seedable for
//	reproducible tests. The distribution is checked for normalization
//	first: failing the 1e-6 tolerance means an upstream gate-algebra
//	bug, and the sample is refused rather than silently renormalized.
//
// Inputs:
//
//	probs - Outcome probabilities. Must sum to 1 within 1e-6.
//	shots - Number of samples to draw. Must be positive.
//	rng - Randomness source. Must not be nil.
//
// Outputs:
//
//	map[string]int - Counts per outcome, summing to shots. Outcomes
//	                 never drawn are omitted.
//	error - ErrNumericalDrift if the distribution is not normalized.
func Sample(probs map[string]float64, shots int, rng *rand.Rand) (map[string]int, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("shot count must be positive, got %d", shots)
	}

	keys := make([]string, 0, len(probs))
	total := 0.0
	for k, p := range probs {
		keys = append(keys, k)
		total += p
	}
	if math.Abs(total-1) > probSumTolerance {
		return nil, fmt.Errorf("%w: distribution sums to %.9f", ErrNumericalDrift, total)
	}
	sort.Strings(keys)

	counts := make(map[string]int)
	for shot := 0; shot < shots; shot++ {
		r := rng.Float64()
		cum := 0.0
		picked := keys[len(keys)-1] // float tail lands on the last outcome
		for _, k := range keys {
			cum += probs[k]
			if r < cum {
				picked = k
				break
			}
		}
		counts[picked]++
	}
	return counts, nil
}

func conj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
