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
	"math"
	"math/rand"
	"testing"
)

const coordTolerance = 1e-9

func mustFold(t *testing.T, numQubits int, ops ...GateOperation) *Statevector {
	t.Helper()
	state := NewStatevector(numQubits)
	for _, op := range ops {
		var err error
		state, err = Apply(state, op)
		if err != nil {
			t.Fatalf("apply %v: %v", op, err)
		}
	}
	return state
}

func TestFormatBasisState(t *testing.T) {
	// Index bit q is qubit q; the string renders qubit n-1 leftmost.
	if got := FormatBasisState(1, 3); got != "001" {
		t.Errorf("index 1 on 3 qubits = %q, want 001", got)
	}
	if got := FormatBasisState(4, 3); got != "100" {
		t.Errorf("index 4 on 3 qubits = %q, want 100", got)
	}
	if got := FormatBasisState(0, 5); got != "00000" {
		t.Errorf("index 0 on 5 qubits = %q, want 00000", got)
	}
}

func TestProbabilities(t *testing.T) {
	t.Run("ground state", func(t *testing.T) {
		probs := Probabilities(NewStatevector(3))
		if len(probs) != 8 {
			t.Fatalf("expected all 8 outcomes, got %d", len(probs))
		}
		if probs["000"] != 1 {
			t.Errorf("P(000) = %v, want 1", probs["000"])
		}
		if probs["101"] != 0 {
			t.Errorf("P(101) = %v, want 0", probs["101"])
		}
	})

	t.Run("hadamard splits evenly", func(t *testing.T) {
		state := mustFold(t, 1, GateOperation{Gate: "h", Targets: []int{0}})
		probs := Probabilities(state)
		if math.Abs(probs["0"]-0.5) > coordTolerance || math.Abs(probs["1"]-0.5) > coordTolerance {
			t.Errorf("H|0> probabilities = %v, want 0.5/0.5", probs)
		}
	})

	t.Run("bell state", func(t *testing.T) {
		state := mustFold(t, 2,
			GateOperation{Gate: "h", Targets: []int{0}},
			GateOperation{Gate: "cx", Targets: []int{0, 1}},
		)
		probs := Probabilities(state)
		if math.Abs(probs["00"]-0.5) > coordTolerance || math.Abs(probs["11"]-0.5) > coordTolerance {
			t.Errorf("bell probabilities = %v, want 0.5 on 00 and 11", probs)
		}
		if probs["01"] != 0 || probs["10"] != 0 {
			t.Errorf("bell probabilities = %v, want 0 on 01 and 10", probs)
		}
	})
}

func TestBlochVector(t *testing.T) {
	t.Run("ground state points to +z", func(t *testing.T) {
		p := BlochVector(NewStatevector(2), 0)
		if p.X != 0 || p.Y != 0 || math.Abs(p.Z-1) > coordTolerance {
			t.Errorf("|0> bloch = (%v,%v,%v), want (0,0,1)", p.X, p.Y, p.Z)
		}
	})

	t.Run("plus state points to +x", func(t *testing.T) {
		state := mustFold(t, 1, GateOperation{Gate: "h", Targets: []int{0}})
		p := BlochVector(state, 0)
		if math.Abs(p.X-1) > coordTolerance || math.Abs(p.Y) > coordTolerance || math.Abs(p.Z) > coordTolerance {
			t.Errorf("|+> bloch = (%v,%v,%v), want (1,0,0)", p.X, p.Y, p.Z)
		}
	})

	t.Run("h then s points to +y", func(t *testing.T) {
		state := mustFold(t, 1,
			GateOperation{Gate: "h", Targets: []int{0}},
			GateOperation{Gate: "s", Targets: []int{0}},
		)
		p := BlochVector(state, 0)
		if math.Abs(p.Y-1) > coordTolerance {
			t.Errorf("SH|0> bloch = (%v,%v,%v), want (0,1,0)", p.X, p.Y, p.Z)
		}
	})

	t.Run("excited state points to -z", func(t *testing.T) {
		state := mustFold(t, 1, GateOperation{Gate: "x", Targets: []int{0}})
		p := BlochVector(state, 0)
		if math.Abs(p.Z+1) > coordTolerance {
			t.Errorf("|1> bloch = (%v,%v,%v), want (0,0,-1)", p.X, p.Y, p.Z)
		}
	})

	// The defining correctness property of the partial trace: a bell
	// pair is jointly pure, but each half alone is maximally mixed, so
	// both Bloch vectors collapse to the origin. A naive amplitude read
	// cannot produce this.
	t.Run("entangled qubits sit at the origin", func(t *testing.T) {
		state := mustFold(t, 2,
			GateOperation{Gate: "h", Targets: []int{0}},
			GateOperation{Gate: "cx", Targets: []int{0, 1}},
		)
		for q := 0; q < 2; q++ {
			p := BlochVector(state, q)
			mag := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
			if mag > coordTolerance {
				t.Errorf("bell qubit %d bloch magnitude = %v, want 0", q, mag)
			}
		}
	})

	t.Run("unentangled qubit stays on the sphere", func(t *testing.T) {
		// H on qubit 0 only; qubit 1 untouched. Both remain pure.
		state := mustFold(t, 2, GateOperation{Gate: "h", Targets: []int{0}})
		for q := 0; q < 2; q++ {
			p := BlochVector(state, q)
			mag := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
			if math.Abs(mag-1) > coordTolerance {
				t.Errorf("qubit %d bloch magnitude = %v, want 1", q, mag)
			}
		}
	})
}

func TestSample(t *testing.T) {
	t.Run("counts sum to shots", func(t *testing.T) {
		probs := map[string]float64{"00": 0.25, "01": 0.25, "10": 0.25, "11": 0.25}
		counts, err := Sample(probs, 1024, rand.New(rand.NewSource(7)))
		if err != nil {
			t.Fatal(err)
		}
		total := 0
		for _, c := range counts {
			total += c
		}
		if total != 1024 {
			t.Errorf("counts sum to %d, want 1024", total)
		}
	})

	t.Run("seeded sampling is reproducible", func(t *testing.T) {
		probs := map[string]float64{"0": 0.5, "1": 0.5}
		a, err := Sample(probs, 256, rand.New(rand.NewSource(42)))
		if err != nil {
			t.Fatal(err)
		}
		b, err := Sample(probs, 256, rand.New(rand.NewSource(42)))
		if err != nil {
			t.Fatal(err)
		}
		if len(a) != len(b) {
			t.Fatalf("outcome sets differ: %v vs %v", a, b)
		}
		for k, v := range a {
			if b[k] != v {
				t.Errorf("outcome %s: %d vs %d", k, v, b[k])
			}
		}
	})

	t.Run("deterministic distribution", func(t *testing.T) {
		counts, err := Sample(map[string]float64{"101": 1.0}, 64, rand.New(rand.NewSource(1)))
		if err != nil {
			t.Fatal(err)
		}
		if counts["101"] != 64 {
			t.Errorf("expected every shot on 101, got %v", counts)
		}
	})

	t.Run("rejects drifted distribution", func(t *testing.T) {
		probs := map[string]float64{"0": 0.6, "1": 0.6}
		_, err := Sample(probs, 16, rand.New(rand.NewSource(1)))
		if !errors.Is(err, ErrNumericalDrift) {
			t.Errorf("expected ErrNumericalDrift, got %v", err)
		}
	})

	t.Run("rejects non-positive shots", func(t *testing.T) {
		if _, err := Sample(map[string]float64{"0": 1}, 0, rand.New(rand.NewSource(1))); err == nil {
			t.Error("expected error for zero shots")
		}
	})
}
