// Copyright 2025 The QML-Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package backend defines the execution contracts for quantum circuits.
//
// A Backend executes a fully bound circuit and returns a Result exposing
// aggregate outcome counts and, when requested, per-shot memory. Execution
// options are passed explicitly into every call; backends hold no mutable
// per-call state, so a failed execution can never leak configuration into
// the next caller.
//
// Two implementations ship with this module:
//   - backend/statevector: amplitude-exact simulation
//   - backend/sampler: seeded finite-shot sampling
package backend

import (
	"errors"

	"github.com/qml-go/qml/circuit"
)

// Execution failure modes.
var (
	// ErrMemoryUnavailable is returned by Result.Memory when per-shot
	// memory was not retained for the execution.
	ErrMemoryUnavailable = errors.New("per-shot memory not retained for this execution")

	// ErrNoMeasurement is returned when a sampling execution is requested
	// for a circuit without a final measurement.
	ErrNoMeasurement = errors.New("circuit has no final measurement")
)

// Options configures a single execution.
//
// Options travel with the call rather than living on the backend: retaining
// per-shot memory for one caller must not change what a concurrent or
// subsequent caller observes.
type Options struct {
	// Shots overrides the backend's default shot count when positive.
	Shots int

	// Memory requests per-shot bitstring retention. Ignored by
	// amplitude-exact backends, which have no shots to retain.
	Memory bool
}

// Result is the outcome of one circuit execution.
type Result interface {
	// Counts returns outcome weights keyed by bitstring (qubit 0
	// rightmost). Sampling backends return shot counts; amplitude-exact
	// backends return exact probabilities. Either way the weights are
	// normalizable by their sum.
	Counts() map[string]float64

	// Memory returns the ordered per-shot bitstrings. Fails with
	// ErrMemoryUnavailable unless the execution retained memory.
	Memory() ([]string, error)
}

// Backend executes bound circuits.
type Backend interface {
	// Name identifies the backend.
	Name() string

	// IsStatevector reports whether the backend is amplitude-exact.
	// Amplitude-exact backends cannot produce discrete samples.
	IsStatevector() bool

	// Shots returns the default shot count (0 for amplitude-exact backends).
	Shots() int

	// Execute runs a fully bound circuit with the given options.
	Execute(c *circuit.Circuit, opts Options) (Result, error)
}
