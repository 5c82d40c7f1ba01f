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
	"testing"

	"github.com/AleutianAI/quantumiq/services/quantum"
	"github.com/AleutianAI/quantumiq/services/tutor/store"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	st, err := store.Open(store.InMemoryConfig())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	svc, err := NewService(st, quantum.NewPipeline(quantum.WithSeed(1), quantum.WithShots(128)), 0.9)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, st
}

func TestPresets(t *testing.T) {
	all := Presets()
	if len(all) != 6 {
		t.Fatalf("preset count = %d, want 6", len(all))
	}
	keys := map[string]bool{}
	for _, d := range all {
		keys[d.Key] = true
		if d.Name == "" || d.Description == "" || len(d.Concepts) == 0 {
			t.Errorf("preset %q missing fields", d.Key)
		}
		if d.Target.NumQubits < 1 || len(d.Target.Operations) == 0 {
			t.Errorf("preset %q has no target circuit", d.Key)
		}
	}
	for _, want := range []string{"bell_state", "quantum_teleportation", "ghz_state", "deutsch_jozsa", "phase_flip", "grover_2qubit"} {
		if !keys[want] {
			t.Errorf("missing preset %q", want)
		}
	}
}

func TestGenerate(t *testing.T) {
	t.Run("known template", func(t *testing.T) {
		def := Generate("entanglement", "medium")
		if def.Name != "Bell State |Ψ+⟩" {
			t.Errorf("got %q", def.Name)
		}
		if def.Difficulty != "medium" || def.Concepts[0] != "entanglement" {
			t.Errorf("metadata wrong: %+v", def)
		}
	})

	t.Run("unknown concept falls back", func(t *testing.T) {
		def := Generate("quantum_gravity", "easy")
		if def.Concepts[0] != "superposition" {
			t.Errorf("fallback concept = %q, want superposition", def.Concepts[0])
		}
	})

	t.Run("unknown difficulty falls back", func(t *testing.T) {
		def := Generate("phase", "brutal")
		if def.Difficulty != "easy" {
			t.Errorf("fallback difficulty = %q, want easy", def.Difficulty)
		}
	})
}

func TestService_StartAndSubmit(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	inst, err := svc.Start(ctx, "alice", "bell_state")
	if err != nil {
		t.Fatal(err)
	}
	if inst.ID == "" || inst.Definition.Key != "bell_state" {
		t.Fatalf("bad instance: %+v", inst)
	}

	t.Run("correct submission passes", func(t *testing.T) {
		res, err := svc.Submit(ctx, "alice", inst.ID, quantum.Circuit{
			NumQubits: 2,
			Operations: []quantum.GateOperation{
				{Gate: "h", Targets: []int{0}},
				{Gate: "cx", Targets: []int{0, 1}},
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		if !res.Passed {
			t.Errorf("correct bell circuit should pass, score %v", res.Score)
		}
		if res.Score < 0.999 {
			t.Errorf("exact match score = %v, want ~1", res.Score)
		}

		// Mastery moved for both exercised concepts.
		for _, concept := range []string{"superposition", "entanglement"} {
			rec, err := st.GetMastery(ctx, "alice", concept)
			if err != nil {
				t.Fatalf("mastery for %s: %v", concept, err)
			}
			if rec.Attempts != 1 || rec.Completions != 1 {
				t.Errorf("%s mastery = %+v", concept, rec)
			}
			if rec.Level <= 0 {
				t.Errorf("%s level should have moved above zero", concept)
			}
		}

		// Passed instance is consumed.
		_, err = svc.Submit(ctx, "alice", inst.ID, quantum.Circuit{
			NumQubits:  2,
			Operations: []quantum.GateOperation{{Gate: "h", Targets: []int{0}}},
		})
		if !errors.Is(err, ErrChallengeNotFound) {
			t.Errorf("consumed instance should be gone, got %v", err)
		}
	})
}

func TestService_Submit_WrongCircuitFails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	inst, err := svc.Start(ctx, "bob", "bell_state")
	if err != nil {
		t.Fatal(err)
	}

	// X on one qubit: distribution is disjoint from the bell pair's.
	res, err := svc.Submit(ctx, "bob", inst.ID, quantum.Circuit{
		NumQubits:  2,
		Operations: []quantum.GateOperation{{Gate: "x", Targets: []int{0}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Passed {
		t.Errorf("wrong circuit should not pass, score %v", res.Score)
	}

	// Failed instance stays live for a retry.
	res2, err := svc.Submit(ctx, "bob", inst.ID, quantum.Circuit{
		NumQubits: 2,
		Operations: []quantum.GateOperation{
			{Gate: "h", Targets: []int{0}},
			{Gate: "cx", Targets: []int{0, 1}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res2.Passed {
		t.Errorf("retry with correct circuit should pass, score %v", res2.Score)
	}
}

func TestService_Submit_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("unknown preset", func(t *testing.T) {
		_, err := svc.Start(ctx, "carol", "nonexistent")
		if !errors.Is(err, ErrChallengeNotFound) {
			t.Errorf("expected ErrChallengeNotFound, got %v", err)
		}
	})

	t.Run("unknown instance", func(t *testing.T) {
		_, err := svc.Submit(ctx, "carol", "no-such-id", quantum.Circuit{
			NumQubits:  1,
			Operations: []quantum.GateOperation{{Gate: "h", Targets: []int{0}}},
		})
		if !errors.Is(err, ErrChallengeNotFound) {
			t.Errorf("expected ErrChallengeNotFound, got %v", err)
		}
	})

	t.Run("wrong learner", func(t *testing.T) {
		inst, err := svc.Start(ctx, "carol", "phase_flip")
		if err != nil {
			t.Fatal(err)
		}
		_, err = svc.Submit(ctx, "mallory", inst.ID, quantum.Circuit{
			NumQubits:  1,
			Operations: []quantum.GateOperation{{Gate: "h", Targets: []int{0}}},
		})
		if !errors.Is(err, ErrChallengeNotFound) {
			t.Errorf("another learner's instance should not resolve, got %v", err)
		}
	})

	t.Run("empty submission", func(t *testing.T) {
		inst, err := svc.Start(ctx, "carol", "phase_flip")
		if err != nil {
			t.Fatal(err)
		}
		_, err = svc.Submit(ctx, "carol", inst.ID, quantum.Circuit{NumQubits: 1})
		if !errors.Is(err, ErrEmptySubmission) {
			t.Errorf("expected ErrEmptySubmission, got %v", err)
		}
	})

	t.Run("invalid submission circuit", func(t *testing.T) {
		inst, err := svc.Start(ctx, "carol", "phase_flip")
		if err != nil {
			t.Fatal(err)
		}
		_, err = svc.Submit(ctx, "carol", inst.ID, quantum.Circuit{
			NumQubits:  1,
			Operations: []quantum.GateOperation{{Gate: "warp", Targets: []int{0}}},
		})
		if !errors.Is(err, quantum.ErrInvalidOperation) {
			t.Errorf("expected ErrInvalidOperation, got %v", err)
		}
	})
}

func TestService_History(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	inst, err := svc.Start(ctx, "dave", "phase_flip")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Submit(ctx, "dave", inst.ID, quantum.Circuit{
		NumQubits: 1,
		Operations: []quantum.GateOperation{
			{Gate: "h", Targets: []int{0}},
			{Gate: "z", Targets: []int{0}},
			{Gate: "h", Targets: []int{0}},
		},
	}); err != nil {
		t.Fatal(err)
	}

	history, err := svc.History(ctx, "dave")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].ChallengeID != "phase_flip" || !history[0].Passed {
		t.Errorf("history entry = %+v", history[0])
	}
}

func TestService_StartGenerated(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	inst := svc.StartGenerated(ctx, "erin", "phase", "hard")
	if inst.Definition.Name != "Phase Kickback" {
		t.Errorf("got %q", inst.Definition.Name)
	}

	res, err := svc.Submit(ctx, "erin", inst.ID, inst.Definition.Target)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Passed {
		t.Errorf("submitting the target itself should pass, score %v", res.Score)
	}
}
