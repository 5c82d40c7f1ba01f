// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package challenges defines the circuit-building challenge catalog and
// the service that scores submissions against target circuits.
package challenges

import (
	"github.com/AleutianAI/quantumiq/services/quantum"
)

// Definition describes one challenge: a named target circuit plus the
// concepts it exercises. The learner never sees the target operations,
// only the description.
type Definition struct {
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Target      quantum.Circuit `json:"-"`
	Concepts    []string        `json:"concepts"`
	Difficulty  string          `json:"difficulty,omitempty"`
}

// NumQubits returns the register width of the target circuit.
func (d Definition) NumQubits() int {
	return d.Target.NumQubits
}

func op(gate string, targets ...int) quantum.GateOperation {
	return quantum.GateOperation{Gate: gate, Targets: targets}
}

// presets is the fixed catalog, in curriculum order.
var presets = []Definition{
	{
		Key:         "bell_state",
		Name:        "Bell State",
		Description: "Create a Bell state (maximally entangled pair). Apply a Hadamard to qubit 0, then a CNOT from qubit 0 to qubit 1. The result should be an equal superposition of |00⟩ and |11⟩.",
		Target: quantum.Circuit{
			NumQubits:  2,
			Operations: []quantum.GateOperation{op("h", 0), op("cx", 0, 1)},
		},
		Concepts: []string{"superposition", "entanglement"},
	},
	{
		Key:         "quantum_teleportation",
		Name:        "Quantum Teleportation",
		Description: "Implement the quantum teleportation protocol. Prepare a Bell pair on qubits 1 and 2, then apply CNOT and H on qubit 0 to teleport its state.",
		Target: quantum.Circuit{
			NumQubits:  3,
			Operations: []quantum.GateOperation{op("h", 1), op("cx", 1, 2), op("cx", 0, 1), op("h", 0)},
		},
		Concepts: []string{"entanglement", "quantum_teleportation", "measurement"},
	},
	{
		Key:         "ghz_state",
		Name:        "GHZ State",
		Description: "Create a 3-qubit GHZ state: an equal superposition of |000⟩ and |111⟩. Use a Hadamard and two CNOTs.",
		Target: quantum.Circuit{
			NumQubits:  3,
			Operations: []quantum.GateOperation{op("h", 0), op("cx", 0, 1), op("cx", 0, 2)},
		},
		Concepts: []string{"superposition", "entanglement", "multi_qubit_gates"},
	},
	{
		Key:         "deutsch_jozsa",
		Name:        "Deutsch-Jozsa (Balanced Oracle)",
		Description: "Implement the Deutsch-Jozsa algorithm for a balanced oracle. Put qubit 0 in superposition, apply a CNOT oracle, then measure.",
		Target: quantum.Circuit{
			NumQubits:  2,
			Operations: []quantum.GateOperation{op("x", 1), op("h", 0), op("h", 1), op("cx", 0, 1), op("h", 0)},
		},
		Concepts: []string{"superposition", "phase", "deutsch_jozsa"},
	},
	{
		Key:         "phase_flip",
		Name:        "Phase Flip",
		Description: "Apply a phase flip to a qubit in superposition. Start with H, apply Z, then H again. The qubit should end in the |1⟩ state.",
		Target: quantum.Circuit{
			NumQubits:  1,
			Operations: []quantum.GateOperation{op("h", 0), op("z", 0), op("h", 0)},
		},
		Concepts: []string{"superposition", "phase"},
	},
	{
		Key:         "grover_2qubit",
		Name:        "Grover's Search (2-qubit)",
		Description: "Implement Grover's algorithm for 2 qubits searching for |11⟩. Apply superposition, oracle (CZ), then diffusion operator.",
		Target: quantum.Circuit{
			NumQubits: 2,
			Operations: []quantum.GateOperation{
				op("h", 0), op("h", 1),
				op("x", 0), op("x", 1),
				op("h", 1), op("cx", 0, 1), op("h", 1),
				op("x", 0), op("x", 1),
				op("h", 0), op("h", 1),
			},
		},
		Concepts: []string{"superposition", "grovers_algorithm", "phase", "multi_qubit_gates"},
	},
}

// Presets returns the fixed challenge catalog in curriculum order.
func Presets() []Definition {
	out := make([]Definition, len(presets))
	copy(out, presets)
	return out
}

// Preset returns one preset definition by key.
func Preset(key string) (Definition, bool) {
	for _, d := range presets {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}

// templates holds generated-challenge definitions per concept and
// difficulty. The tutor picks from these when it decides the learner
// needs targeted practice.
var templates = map[string]map[string]Definition{
	"superposition": {
		"easy": {
			Key:         "gen_superposition_easy",
			Name:        "Create Superposition",
			Description: "Apply a Hadamard gate to put qubit 0 into an equal superposition of |0⟩ and |1⟩.",
			Target:      quantum.Circuit{NumQubits: 1, Operations: []quantum.GateOperation{op("h", 0)}},
		},
		"medium": {
			Key:         "gen_superposition_medium",
			Name:        "Dual Superposition",
			Description: "Put both qubit 0 and qubit 1 into equal superposition independently (no entanglement).",
			Target:      quantum.Circuit{NumQubits: 2, Operations: []quantum.GateOperation{op("h", 0), op("h", 1)}},
		},
		"hard": {
			Key:         "gen_superposition_hard",
			Name:        "Superposition and Phase",
			Description: "Create a superposition on qubit 0, apply a phase shift with S gate, then Hadamard again. What state do you get?",
			Target:      quantum.Circuit{NumQubits: 1, Operations: []quantum.GateOperation{op("h", 0), op("s", 0), op("h", 0)}},
		},
	},
	"entanglement": {
		"easy": {
			Key:         "gen_entanglement_easy",
			Name:        "Basic Bell State",
			Description: "Create a Bell state |Φ+⟩ = (|00⟩ + |11⟩)/√2 using Hadamard and CNOT.",
			Target:      quantum.Circuit{NumQubits: 2, Operations: []quantum.GateOperation{op("h", 0), op("cx", 0, 1)}},
		},
		"medium": {
			Key:         "gen_entanglement_medium",
			Name:        "Bell State |Ψ+⟩",
			Description: "Create the Bell state |Ψ+⟩ = (|01⟩ + |10⟩)/√2. Hint: start by flipping one qubit.",
			Target:      quantum.Circuit{NumQubits: 2, Operations: []quantum.GateOperation{op("x", 0), op("h", 0), op("cx", 0, 1)}},
		},
		"hard": {
			Key:         "gen_entanglement_hard",
			Name:        "3-Qubit GHZ State",
			Description: "Create a GHZ state (|000⟩ + |111⟩)/√2: entangle all three qubits.",
			Target:      quantum.Circuit{NumQubits: 3, Operations: []quantum.GateOperation{op("h", 0), op("cx", 0, 1), op("cx", 0, 2)}},
		},
	},
	"phase": {
		"easy": {
			Key:         "gen_phase_easy",
			Name:        "Phase Flip Observation",
			Description: "Apply H, then Z, then H to qubit 0. Observe how phase affects measurement in a different basis.",
			Target:      quantum.Circuit{NumQubits: 1, Operations: []quantum.GateOperation{op("h", 0), op("z", 0), op("h", 0)}},
		},
		"medium": {
			Key:         "gen_phase_medium",
			Name:        "T Gate Phase",
			Description: "Apply H then T gate to explore π/4 phase rotations. Compare the Bloch sphere to the Z gate version.",
			Target:      quantum.Circuit{NumQubits: 1, Operations: []quantum.GateOperation{op("h", 0), op("t", 0)}},
		},
		"hard": {
			Key:         "gen_phase_hard",
			Name:        "Phase Kickback",
			Description: "Demonstrate phase kickback: prepare target in |−⟩ state, then apply CNOT. Observe the phase shift on the control qubit.",
			Target:      quantum.Circuit{NumQubits: 2, Operations: []quantum.GateOperation{op("x", 1), op("h", 1), op("h", 0), op("cx", 0, 1)}},
		},
	},
}

// Generate returns a challenge definition for a concept and difficulty.
//
// Unknown concepts fall back to superposition and unknown difficulties
// to easy, so the tutor always gets something to hand the learner. The
// returned definition carries the concept and difficulty actually used.
func Generate(concept, difficulty string) Definition {
	byDifficulty, ok := templates[concept]
	if !ok {
		concept = "superposition"
		byDifficulty = templates[concept]
	}
	def, ok := byDifficulty[difficulty]
	if !ok {
		difficulty = "easy"
		def = byDifficulty[difficulty]
	}
	def.Concepts = []string{concept}
	def.Difficulty = difficulty
	return def
}
