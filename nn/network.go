// Copyright 2025 The QML-Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides quantum-circuit-backed neural networks.
//
// A NeuralNetwork exposes a conventional forward/backward surface over a
// parametrized quantum circuit: Forward produces samples or a probability
// distribution over a discrete output space, Backward produces analytic
// probability gradients with respect to input and weight parameters.
//
// The concrete implementation is CircuitQNN, which binds parameters into a
// circuit, executes it on a backend, remaps raw outcomes through an optional
// Interpret function, and accumulates into dense or sparse arrays.
package nn

import (
	"errors"
	"fmt"

	"github.com/qml-go/qml/tensor"
)

// ErrMissingOutputShape is returned when a custom Interpret function is
// supplied without an explicit output shape; the shape cannot be inferred
// from an arbitrary remapping.
var ErrMissingOutputShape = errors.New("output shape required with custom interpret")

// ErrStatevectorSampling is returned when discrete samples are requested
// from an amplitude-exact backend, which has no shots to report.
var ErrStatevectorSampling = errors.New("sampling does not work with a statevector backend")

// DimensionMismatchError reports a vector or parameter-set length that
// disagrees with the network's declared dimensions.
type DimensionMismatchError struct {
	What string
	Got  int
	Want int
}

// Error implements the error interface.
func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: %s has length %d, expected %d", e.What, e.Got, e.Want)
}

// Interpret maps a raw outcome index (the integer encoding of a measured
// bitstring) to coordinates in the network's output space. It must be a
// deterministic pure function and may be many-to-one: outcomes that collide
// on the same coordinate have their probabilities summed.
type Interpret func(raw int) []int

// NeuralNetwork is the base contract every circuit-backed network satisfies.
//
// NumInputs and NumWeights are fixed at construction. Forward and Backward
// are pure: the underlying circuit is bound per call and never mutated, so a
// network is safe to share across sequential calls.
type NeuralNetwork interface {
	// NumInputs returns the number of input parameters.
	NumInputs() int

	// NumWeights returns the number of trainable weight parameters.
	NumWeights() int

	// OutputShape returns the shape of one forward result, without the
	// leading batch axis.
	OutputShape() tensor.Shape

	// Forward evaluates the network, returning an array of shape
	// (1, *OutputShape) — or (1, shots, *OutputShape) in samples mode.
	Forward(input, weights []float64) (tensor.Values, error)

	// Backward computes gradients with respect to inputs and weights,
	// shaped (1, NumInputs, *OutputShape) and (1, NumWeights,
	// *OutputShape). Both results are nil in samples mode, where no
	// gradient is defined.
	Backward(input, weights []float64) (inputGrad, weightGrad tensor.Values, err error)
}
