// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package docs holds the curated quantum-computing reference corpus the
// tutor cites from.
//
// The corpus is a fixed in-process catalog, not a vector store: it is
// small, curated, and exists to keep the tutor's explanations grounded
// in accurate text rather than free generation. Search is keyword
// matching over titles and content.
package docs

import (
	"sort"
	"strings"
)

// Document is one reference entry.
type Document struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SearchResult is the outcome of a corpus search.
type SearchResult struct {
	Query      string     `json:"query"`
	Results    []Document `json:"results"`
	TotalFound int        `json:"total_found"`
}

// maxResults caps how many documents a search returns.
const maxResults = 3

// corpus is the full reference catalog, keyed by concept.
var corpus = []Document{
	{
		Key:     "superposition",
		Title:   "Quantum Superposition",
		Content: "A quantum bit (qubit) can exist in a superposition of |0⟩ and |1⟩ states simultaneously, represented as α|0⟩ + β|1⟩ where |α|² + |β|² = 1. The Hadamard gate (H) creates an equal superposition from a basis state: H|0⟩ = (|0⟩ + |1⟩)/√2. Upon measurement, the qubit collapses to |0⟩ with probability |α|² or |1⟩ with probability |β|². This is fundamentally different from classical probability: the qubit genuinely exists in both states until measured.",
	},
	{
		Key:     "entanglement",
		Title:   "Quantum Entanglement",
		Content: "Entanglement is a quantum correlation between two or more qubits where the state of one qubit cannot be described independently of the others. A Bell state (|00⟩ + |11⟩)/√2 is the simplest entangled state: measuring one qubit instantly determines the other's state regardless of distance. Created using H + CNOT: apply Hadamard to qubit 0, then CNOT with qubit 0 as control and qubit 1 as target. Entanglement is a resource for quantum teleportation, superdense coding, and quantum error correction.",
	},
	{
		Key:     "measurement",
		Title:   "Quantum Measurement",
		Content: "Measurement in quantum computing collapses a qubit's superposition into a definite classical state. For a qubit in state α|0⟩ + β|1⟩, measurement yields |0⟩ with probability |α|² and |1⟩ with probability |β|². Measurement is irreversible: it destroys the superposition. In the computational basis, measurement projects onto |0⟩ or |1⟩. Multi-qubit measurements can partially collapse entangled states, affecting all correlated qubits simultaneously.",
	},
	{
		Key:     "phase",
		Title:   "Quantum Phase",
		Content: "Phase is a uniquely quantum property with no classical analog. In the state α|0⟩ + β|1⟩, the relative phase between α and β affects interference but not measurement probabilities directly. The Z gate adds a phase of π to |1⟩: Z|1⟩ = -|1⟩. The S gate adds π/2 and the T gate adds π/4. Phase kickback is a crucial technique where a controlled gate's phase shifts back to the control qubit. This is the core mechanism behind quantum algorithms like Deutsch-Jozsa and Grover's search.",
	},
	{
		Key:     "multi_qubit_gates",
		Title:   "Multi-Qubit Gates",
		Content: "CNOT (Controlled-NOT) flips the target qubit if the control qubit is |1⟩. It's the fundamental two-qubit gate for creating entanglement. Toffoli (CCX/CCNOT) is a three-qubit gate that flips the target only if both controls are |1⟩. It's universal for classical computation and key for quantum error correction. SWAP exchanges two qubits' states. Any multi-qubit unitary can be decomposed into single-qubit gates plus CNOTs.",
	},
	{
		Key:     "quantum_teleportation",
		Title:   "Quantum Teleportation",
		Content: "Quantum teleportation transfers a qubit's state from one location to another using entanglement and classical communication. Protocol: (1) Alice and Bob share a Bell pair. (2) Alice entangles her unknown qubit with her half of the Bell pair using CNOT + H. (3) Alice measures both her qubits, getting 2 classical bits. (4) Alice sends these bits to Bob. (5) Bob applies corrections (X and/or Z) based on Alice's bits. The unknown state is now on Bob's qubit. No faster-than-light communication: the classical bits must still be sent normally.",
	},
	{
		Key:     "grovers_algorithm",
		Title:   "Grover's Search Algorithm",
		Content: "Grover's algorithm searches an unstructured database of N items in O(√N) time, a quadratic speedup over classical O(N). Steps: (1) Initialize all qubits in equal superposition with H gates. (2) Apply the oracle, which flips the sign of the target state. (3) Apply the diffusion operator (inversion about the mean), which amplifies the target state's amplitude. (4) Repeat steps 2-3 approximately √N times. (5) Measure to find the target with high probability. The oracle is problem-specific; the diffusion operator is always H⊗n · (2|0⟩⟨0| - I) · H⊗n.",
	},
	{
		Key:     "deutsch_jozsa",
		Title:   "Deutsch-Jozsa Algorithm",
		Content: "The Deutsch-Jozsa algorithm determines whether a function f:{0,1}ⁿ → {0,1} is constant (same output for all inputs) or balanced (equal 0s and 1s) using just one query, an exponential speedup over classical algorithms that need 2^(n-1)+1 queries in the worst case. Circuit: (1) Prepare ancilla qubit in |1⟩ with X gate. (2) Apply H to all qubits. (3) Apply the oracle Uf. (4) Apply H to input qubits. (5) Measure input qubits: all |0⟩ means constant, anything else means balanced. This works via phase kickback from the ancilla qubit.",
	},
}

// All returns the full corpus in stable key order.
func All() []Document {
	out := make([]Document, len(corpus))
	copy(out, corpus)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Get returns the document for an exact concept key.
func Get(key string) (Document, bool) {
	for _, doc := range corpus {
		if doc.Key == key {
			return doc, true
		}
	}
	return Document{}, false
}

// Search finds documents matching a free-text query.
//
// Description:
//
//	Splits the query into lowercase words and matches each against
//	document titles and content. Documents matching more words rank
//	higher; ties break on corpus order. If nothing matches by words,
//	falls back to partial matching between the query and document keys,
//	so "teleport" still finds quantum_teleportation.
//
// Inputs:
//
//	query - Free-text query. Empty or whitespace yields no results.
//
// Outputs:
//
//	SearchResult - Top 3 matches plus the total match count.
func Search(query string) SearchResult {
	normalized := strings.ToLower(strings.TrimSpace(query))
	result := SearchResult{Query: normalized}
	if normalized == "" {
		return result
	}

	words := strings.Fields(normalized)

	type scored struct {
		doc   Document
		hits  int
		index int
	}
	var matches []scored
	for i, doc := range corpus {
		title := strings.ToLower(doc.Title)
		content := strings.ToLower(doc.Content)
		hits := 0
		for _, word := range words {
			if strings.Contains(title, word) || strings.Contains(content, word) {
				hits++
			}
		}
		if hits > 0 {
			matches = append(matches, scored{doc: doc, hits: hits, index: i})
		}
	}

	if len(matches) == 0 {
		// Partial key matching catches truncated concept names.
		for i, doc := range corpus {
			if strings.Contains(normalized, doc.Key) || strings.Contains(doc.Key, normalized) {
				matches = append(matches, scored{doc: doc, hits: 1, index: i})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].hits != matches[j].hits {
			return matches[i].hits > matches[j].hits
		}
		return matches[i].index < matches[j].index
	})

	result.TotalFound = len(matches)
	for i := 0; i < len(matches) && i < maxResults; i++ {
		result.Results = append(result.Results, matches[i].doc)
	}
	return result
}
