// Copyright 2025 The QML-Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package statevector provides the amplitude-exact execution backend.
//
// Counts returned by this backend are exact outcome probabilities rather
// than shot counts. Per-shot memory is never available.
package statevector

import (
	"fmt"

	"github.com/qml-go/qml/backend"
	"github.com/qml-go/qml/circuit"
	"github.com/qml-go/qml/internal/sim"
)

// Backend is an amplitude-exact simulator backend.
type Backend struct{}

// New creates a statevector backend.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend name.
func (b *Backend) Name() string { return "statevector" }

// IsStatevector reports true.
func (b *Backend) IsStatevector() bool { return true }

// Shots returns 0: exact backends have no shot count.
func (b *Backend) Shots() int { return 0 }

// Execute simulates the circuit exactly. Options.Shots and Options.Memory
// are ignored; there are no discrete shots to count or retain.
func (b *Backend) Execute(c *circuit.Circuit, opts backend.Options) (backend.Result, error) {
	probs, err := sim.Probabilities(c)
	if err != nil {
		return nil, fmt.Errorf("statevector execution: %w", err)
	}

	counts := make(map[string]float64)
	n := c.NumQubits()
	for k, p := range probs {
		if p > 0 {
			counts[circuit.IndexToBitstring(k, n)] = p
		}
	}
	return &result{counts: counts}, nil
}

type result struct {
	counts map[string]float64
}

func (r *result) Counts() map[string]float64 {
	return r.counts
}

func (r *result) Memory() ([]string, error) {
	return nil, backend.ErrMemoryUnavailable
}
