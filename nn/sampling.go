// Copyright 2025 The QML-Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/qml-go/qml/tensor"
)

// sampler is the capability a sampling-style network implementation
// provides. SamplingNetwork routes Forward and Backward onto it.
type sampler interface {
	// Sample draws per-shot outcomes, shaped (1, shots, *OutputShape).
	Sample(input, weights []float64) (*tensor.Array, error)

	// Probabilities aggregates outcomes into a distribution over the
	// output space, shaped (1, *OutputShape).
	Probabilities(input, weights []float64) (tensor.Values, error)

	// ProbabilityGradients computes d(probabilities)/d(parameter) in the
	// same index space as Probabilities. Degenerate parameter counts
	// yield zero-sized arrays, never nil.
	ProbabilityGradients(input, weights []float64) (tensor.Values, tensor.Values, error)
}

// SamplingNetwork holds the dispatch policy shared by sampling-style
// networks: forward either returns raw samples or a (possibly sparse)
// probability distribution, and gradients only exist in the latter mode.
//
// It is composed into a concrete implementation rather than subclassed; the
// implementation supplies the sampler capability.
type SamplingNetwork struct {
	numInputs     int
	numWeights    int
	outputShape   tensor.Shape
	dense         bool
	returnSamples bool
	impl          sampler
}

func newSamplingNetwork(numInputs, numWeights int, dense, returnSamples bool, outputShape tensor.Shape, impl sampler) *SamplingNetwork {
	return &SamplingNetwork{
		numInputs:     numInputs,
		numWeights:    numWeights,
		outputShape:   outputShape.Clone(),
		dense:         dense,
		returnSamples: returnSamples,
		impl:          impl,
	}
}

// NumInputs returns the number of input parameters.
func (s *SamplingNetwork) NumInputs() int {
	return s.numInputs
}

// NumWeights returns the number of trainable weight parameters.
func (s *SamplingNetwork) NumWeights() int {
	return s.numWeights
}

// OutputShape returns the per-result output shape.
func (s *SamplingNetwork) OutputShape() tensor.Shape {
	return s.outputShape.Clone()
}

// Dense reports whether results are fully materialized arrays. Samples mode
// always returns dense arrays regardless of the configured setting.
func (s *SamplingNetwork) Dense() bool {
	return s.dense || s.returnSamples
}

// ReturnSamples reports whether Forward produces raw samples instead of a
// probability distribution.
func (s *SamplingNetwork) ReturnSamples() bool {
	return s.returnSamples
}

// Forward dispatches to Sample or Probabilities depending on the mode.
func (s *SamplingNetwork) Forward(input, weights []float64) (tensor.Values, error) {
	if s.returnSamples {
		return s.impl.Sample(input, weights)
	}
	return s.impl.Probabilities(input, weights)
}

// Backward returns probability gradients, or (nil, nil) in samples mode:
// drawing discrete samples is not differentiable.
func (s *SamplingNetwork) Backward(input, weights []float64) (tensor.Values, tensor.Values, error) {
	if s.returnSamples {
		return nil, nil, nil
	}
	return s.impl.ProbabilityGradients(input, weights)
}
