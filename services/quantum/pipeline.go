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
	"time"
)

// Pipeline drives gate application and observation for one-shot and
// step-through execution.
//
// Probabilities and Bloch coordinates are deterministic pure functions of
// the circuit; only measurement sampling is stochastic. A seeded pipeline
// reproduces its measurement counts exactly.
//
// Thread Safety: Pipeline is immutable after construction and safe for
// concurrent use. Each simulation draws from its own rand source.
type Pipeline struct {
	shots  int
	seed   int64
	seeded bool
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithShots overrides the default measurement shot count.
func WithShots(shots int) PipelineOption {
	return func(p *Pipeline) {
		p.shots = shots
	}
}

// WithSeed pins the sampling randomness for reproducible runs.
func WithSeed(seed int64) PipelineOption {
	return func(p *Pipeline) {
		p.seed = seed
		p.seeded = true
	}
}

// NewPipeline creates a pipeline with DefaultShots unless overridden.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{shots: DefaultShots}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run validates the circuit and folds all operations onto the all-zero
// basis state, returning the final statevector.
//
// Outputs:
//
//	*Statevector - The evolved state.
//	error - ErrInvalidCircuit for a bad register width,
//	        ErrInvalidOperation (with the offending index) for a bad
//	        gate operation, ErrNumericalDrift if unitarity was lost.
func (p *Pipeline) Run(c Circuit) (*Statevector, error) {
	if c.NumQubits < 1 || c.NumQubits > MaxQubits {
		return nil, fmt.Errorf("%w: qubit count %d outside 1..%d", ErrInvalidCircuit, c.NumQubits, MaxQubits)
	}

	state := NewStatevector(c.NumQubits)
	for i, op := range c.Operations {
		if err := validateOperation(c.NumQubits, i, op); err != nil {
			return nil, err
		}
		spec, _ := LookupGate(op.Gate)
		// Mutating the fold accumulator in place is safe: the state was
		// allocated here and each gate is applied exactly once.
		spec.apply(state, op.Targets)
	}

	if err := checkNorm(state); err != nil {
		return nil, err
	}
	return state, nil
}

// Simulate executes the whole circuit and derives the full observation:
// exact probabilities, per-qubit Bloch coordinates, and a sampled
// measurement distribution at the configured shot count.
func (p *Pipeline) Simulate(c Circuit) (*ObservationResult, error) {
	state, err := p.Run(c)
	if err != nil {
		return nil, err
	}
	return p.observe(state, p.newRand())
}

// SimulateStepwise emits one ObservationResult per circuit prefix,
// including the empty prefix, for step-through animation.
//
// The final step's probabilities equal Simulate's bit-for-bit - both are
// pure functions of the same prefix. Sampling in each step draws from
// the same seeded stream when the pipeline is seeded.
func (p *Pipeline) SimulateStepwise(c Circuit) (*StepTrace, error) {
	if c.NumQubits < 1 || c.NumQubits > MaxQubits {
		return nil, fmt.Errorf("%w: qubit count %d outside 1..%d", ErrInvalidCircuit, c.NumQubits, MaxQubits)
	}
	for i, op := range c.Operations {
		if err := validateOperation(c.NumQubits, i, op); err != nil {
			return nil, err
		}
	}

	rng := p.newRand()
	trace := &StepTrace{
		Steps: make([]ObservationResult, 0, len(c.Operations)+1),
		Gates: c.Operations,
	}

	state := NewStatevector(c.NumQubits)
	step, err := p.observe(state, rng)
	if err != nil {
		return nil, err
	}
	trace.Steps = append(trace.Steps, *step)

	for _, op := range c.Operations {
		spec, _ := LookupGate(op.Gate)
		spec.apply(state, op.Targets)
		if err := checkNorm(state); err != nil {
			return nil, err
		}
		step, err := p.observe(state, rng)
		if err != nil {
			return nil, err
		}
		trace.Steps = append(trace.Steps, *step)
	}
	return trace, nil
}

// observe derives the full ObservationResult from a state.
func (p *Pipeline) observe(state *Statevector, rng *rand.Rand) (*ObservationResult, error) {
	probs := Probabilities(state)
	counts, err := Sample(probs, p.shots, rng)
	if err != nil {
		return nil, err
	}

	sv := make([][2]float64, len(state.Amplitudes))
	for i, amp := range state.Amplitudes {
		sv[i] = [2]float64{real(amp), imag(amp)}
	}

	return &ObservationResult{
		Statevector:       sv,
		Probabilities:     probs,
		BlochCoords:       BlochVectors(state),
		MeasurementCounts: counts,
	}, nil
}

func (p *Pipeline) newRand() *rand.Rand {
	if p.seeded {
		return rand.New(rand.NewSource(p.seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// checkNorm asserts the unitarity invariant: squared magnitudes sum to 1.
func checkNorm(s *Statevector) error {
	total := 0.0
	for _, amp := range s.Amplitudes {
		re, im := real(amp), imag(amp)
		total += re*re + im*im
	}
	if math.Abs(total-1) > normTolerance {
		return fmt.Errorf("%w: state norm is %.12f", ErrNumericalDrift, total)
	}
	return nil
}
