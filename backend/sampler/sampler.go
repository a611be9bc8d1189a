// Copyright 2025 The QML-Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sampler provides the finite-shot sampling backend.
//
// The sampler simulates the circuit exactly, then draws shots from the
// resulting distribution with a seeded source, so runs are reproducible.
// Executed circuits must carry a final measurement.
package sampler

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/qml-go/qml/backend"
	"github.com/qml-go/qml/circuit"
	"github.com/qml-go/qml/internal/sim"
)

// DefaultShots is the shot count used when none is configured.
const DefaultShots = 1024

// Backend is a finite-shot sampling backend.
type Backend struct {
	shots int
	rng   *rand.Rand
}

// New creates a sampler with the given default shot count (DefaultShots when
// shots <= 0) and a fixed seed.
func New(shots int) *Backend {
	return NewWithSeed(shots, 1)
}

// NewWithSeed creates a sampler with an explicit random seed.
func NewWithSeed(shots int, seed int64) *Backend {
	if shots <= 0 {
		shots = DefaultShots
	}
	return &Backend{shots: shots, rng: rand.New(rand.NewSource(seed))}
}

// Name returns the backend name.
func (b *Backend) Name() string { return "sampler" }

// IsStatevector reports false.
func (b *Backend) IsStatevector() bool { return false }

// Shots returns the default shot count.
func (b *Backend) Shots() int { return b.shots }

// Execute samples the circuit's outcome distribution.
//
// The circuit must be fully bound and carry a final measurement. When
// opts.Memory is set, the result retains the ordered per-shot bitstrings.
func (b *Backend) Execute(c *circuit.Circuit, opts backend.Options) (backend.Result, error) {
	if !c.Measured() {
		return nil, fmt.Errorf("sampler execution: %w", backend.ErrNoMeasurement)
	}

	probs, err := sim.Probabilities(c)
	if err != nil {
		return nil, fmt.Errorf("sampler execution: %w", err)
	}

	shots := b.shots
	if opts.Shots > 0 {
		shots = opts.Shots
	}

	// Cumulative distribution over basis indices for inverse sampling.
	cdf := make([]float64, len(probs))
	var acc float64
	for k, p := range probs {
		acc += p
		cdf[k] = acc
	}

	n := c.NumQubits()
	counts := make(map[string]float64)
	var memory []string
	if opts.Memory {
		memory = make([]string, 0, shots)
	}

	for i := 0; i < shots; i++ {
		r := b.rng.Float64() * acc
		k := sort.SearchFloat64s(cdf, r)
		if k >= len(probs) {
			k = len(probs) - 1
		}
		bits := circuit.IndexToBitstring(k, n)
		counts[bits]++
		if opts.Memory {
			memory = append(memory, bits)
		}
	}

	return &result{counts: counts, memory: memory, hasMemory: opts.Memory}, nil
}

type result struct {
	counts    map[string]float64
	memory    []string
	hasMemory bool
}

func (r *result) Counts() map[string]float64 {
	return r.counts
}

func (r *result) Memory() ([]string, error) {
	if !r.hasMemory {
		return nil, backend.ErrMemoryUnavailable
	}
	return r.memory, nil
}
