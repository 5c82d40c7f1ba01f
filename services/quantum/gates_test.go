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
	"math/cmplx"
	"testing"
)

func TestLookupGate(t *testing.T) {
	t.Run("canonical names", func(t *testing.T) {
		for _, name := range []string{"h", "x", "y", "z", "s", "t", "cx", "ccx"} {
			if _, ok := LookupGate(name); !ok {
				t.Errorf("expected gate %q in catalog", name)
			}
		}
	})

	t.Run("aliases resolve", func(t *testing.T) {
		spec, ok := LookupGate("cnot")
		if !ok || spec.Name != "cx" {
			t.Errorf("cnot should resolve to cx, got %+v ok=%v", spec, ok)
		}
		spec, ok = LookupGate("toffoli")
		if !ok || spec.Name != "ccx" {
			t.Errorf("toffoli should resolve to ccx, got %+v ok=%v", spec, ok)
		}
	})

	t.Run("unknown gate", func(t *testing.T) {
		if _, ok := LookupGate("rx"); ok {
			t.Error("rx is not in the fixed catalog")
		}
	})
}

func TestApply_Validation(t *testing.T) {
	state := NewStatevector(2)

	cases := []struct {
		name string
		op   GateOperation
	}{
		{"unknown gate", GateOperation{Gate: "sqrtx", Targets: []int{0}}},
		{"too few targets", GateOperation{Gate: "cx", Targets: []int{0}}},
		{"too many targets", GateOperation{Gate: "h", Targets: []int{0, 1}}},
		{"target out of range", GateOperation{Gate: "x", Targets: []int{2}}},
		{"negative target", GateOperation{Gate: "x", Targets: []int{-1}}},
		{"repeated targets", GateOperation{Gate: "cx", Targets: []int{1, 1}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Apply(state, tc.op)
			if !errors.Is(err, ErrInvalidOperation) {
				t.Errorf("expected ErrInvalidOperation, got %v", err)
			}
			var opErr *OperationError
			if !errors.As(err, &opErr) {
				t.Errorf("expected *OperationError detail, got %T", err)
			}
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	state := NewStatevector(1)

	next, err := Apply(state, GateOperation{Gate: "x", Targets: []int{0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.Amplitudes[0] != 1 || state.Amplitudes[1] != 0 {
		t.Error("input state was mutated")
	}
	if next.Amplitudes[0] != 0 || next.Amplitudes[1] != 1 {
		t.Errorf("X|0> should be |1>, got %v", next.Amplitudes)
	}
}

func TestApply_SingleQubitGates(t *testing.T) {
	t.Run("hadamard creates equal superposition", func(t *testing.T) {
		next, err := Apply(NewStatevector(1), GateOperation{Gate: "h", Targets: []int{0}})
		if err != nil {
			t.Fatal(err)
		}
		want := complex(1/math.Sqrt2, 0)
		if cmplx.Abs(next.Amplitudes[0]-want) > 1e-12 || cmplx.Abs(next.Amplitudes[1]-want) > 1e-12 {
			t.Errorf("H|0> = %v, want (%v, %v)", next.Amplitudes, want, want)
		}
	})

	t.Run("z flips phase of |1>", func(t *testing.T) {
		state := NewStatevector(1)
		state, _ = Apply(state, GateOperation{Gate: "x", Targets: []int{0}})
		state, err := Apply(state, GateOperation{Gate: "z", Targets: []int{0}})
		if err != nil {
			t.Fatal(err)
		}
		if cmplx.Abs(state.Amplitudes[1]-(-1)) > 1e-12 {
			t.Errorf("Z|1> = %v, want -|1>", state.Amplitudes)
		}
	})

	t.Run("s then s equals z", func(t *testing.T) {
		viaS := NewStatevector(1)
		viaS, _ = Apply(viaS, GateOperation{Gate: "x", Targets: []int{0}})
		viaS, _ = Apply(viaS, GateOperation{Gate: "s", Targets: []int{0}})
		viaS, _ = Apply(viaS, GateOperation{Gate: "s", Targets: []int{0}})

		if cmplx.Abs(viaS.Amplitudes[1]-(-1)) > 1e-12 {
			t.Errorf("SS|1> = %v, want -|1>", viaS.Amplitudes)
		}
	})

	t.Run("t fourth power equals z", func(t *testing.T) {
		state := NewStatevector(1)
		state, _ = Apply(state, GateOperation{Gate: "x", Targets: []int{0}})
		for i := 0; i < 4; i++ {
			state, _ = Apply(state, GateOperation{Gate: "t", Targets: []int{0}})
		}
		if cmplx.Abs(state.Amplitudes[1]-(-1)) > 1e-12 {
			t.Errorf("TTTT|1> = %v, want -|1>", state.Amplitudes)
		}
	})
}

func TestApply_ControlledGates(t *testing.T) {
	t.Run("cx with control low is identity", func(t *testing.T) {
		next, err := Apply(NewStatevector(2), GateOperation{Gate: "cx", Targets: []int{0, 1}})
		if err != nil {
			t.Fatal(err)
		}
		if next.Amplitudes[0] != 1 {
			t.Errorf("CX|00> should stay |00>, got %v", next.Amplitudes)
		}
	})

	t.Run("cx with control high flips target", func(t *testing.T) {
		state := NewStatevector(2)
		state, _ = Apply(state, GateOperation{Gate: "x", Targets: []int{0}})
		state, err := Apply(state, GateOperation{Gate: "cx", Targets: []int{0, 1}})
		if err != nil {
			t.Fatal(err)
		}
		// Little-endian: qubit 0 and qubit 1 both set is index 3.
		if state.Amplitudes[3] != 1 {
			t.Errorf("CX(X|00>) should be |11>, got %v", state.Amplitudes)
		}
	})

	t.Run("ccx flips only when both controls set", func(t *testing.T) {
		state := NewStatevector(3)
		state, _ = Apply(state, GateOperation{Gate: "x", Targets: []int{0}})
		state, _ = Apply(state, GateOperation{Gate: "x", Targets: []int{1}})
		state, err := Apply(state, GateOperation{Gate: "ccx", Targets: []int{0, 1, 2}})
		if err != nil {
			t.Fatal(err)
		}
		if state.Amplitudes[7] != 1 {
			t.Errorf("CCX|011> should be |111>, got %v", state.Amplitudes)
		}

		partial := NewStatevector(3)
		partial, _ = Apply(partial, GateOperation{Gate: "x", Targets: []int{0}})
		partial, _ = Apply(partial, GateOperation{Gate: "ccx", Targets: []int{0, 1, 2}})
		if partial.Amplitudes[1] != 1 {
			t.Errorf("CCX|001> should stay |001>, got %v", partial.Amplitudes)
		}
	})
}

func TestApply_PreservesNorm(t *testing.T) {
	ops := []GateOperation{
		{Gate: "h", Targets: []int{0}},
		{Gate: "t", Targets: []int{0}},
		{Gate: "cx", Targets: []int{0, 1}},
		{Gate: "y", Targets: []int{2}},
		{Gate: "h", Targets: []int{1}},
		{Gate: "s", Targets: []int{2}},
		{Gate: "ccx", Targets: []int{0, 1, 2}},
	}

	state := NewStatevector(3)
	for _, op := range ops {
		var err error
		state, err = Apply(state, op)
		if err != nil {
			t.Fatalf("apply %v: %v", op, err)
		}
		if err := checkNorm(state); err != nil {
			t.Fatalf("norm lost after %v: %v", op, err)
		}
	}
}
