// Copyright 2025 The QML-Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package connector bridges quantum neural networks into reverse-mode
// autograd engines.
//
// A Connector wraps one nn.NeuralNetwork together with a trainable weight
// vector and exposes the network as a single differentiable operation:
// Forward evaluates the network and records a Context; Backward consumes
// that Context plus the upstream gradient signal and returns gradients for
// the input and the weights. The network reference itself never receives a
// gradient. Tensors at this boundary are gonum matrices.
package connector

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/qml-go/qml/nn"
	"github.com/qml-go/qml/tensor"
)

// Context carries the recorded forward inputs into the paired Backward call.
type Context struct {
	input   *mat.Dense
	weights []float64
	network nn.NeuralNetwork
}

// Connector wraps a network with trainable weights.
type Connector struct {
	network nn.NeuralNetwork
	weights []float64
}

// New creates a connector with weights initialized uniformly in [-1, 1).
func New(network nn.NeuralNetwork) *Connector {
	return NewWithSeed(network, 1)
}

// NewWithSeed creates a connector with an explicit seed for the weight
// initialization.
func NewWithSeed(network nn.NeuralNetwork, seed int64) *Connector {
	rng := rand.New(rand.NewSource(seed))
	weights := make([]float64, network.NumWeights())
	for i := range weights {
		weights[i] = 2*rng.Float64() - 1
	}
	return &Connector{network: network, weights: weights}
}

// Network returns the wrapped network.
func (c *Connector) Network() nn.NeuralNetwork {
	return c.network
}

// Weights returns the trainable weight vector. Mutating it (e.g. from an
// optimizer step) is the intended update path.
func (c *Connector) Weights() []float64 {
	return c.weights
}

// SetWeights replaces the weight vector. Fails with
// *nn.DimensionMismatchError on a length disagreement.
func (c *Connector) SetWeights(weights []float64) error {
	if len(weights) != c.network.NumWeights() {
		return &nn.DimensionMismatchError{What: "weights", Got: len(weights), Want: c.network.NumWeights()}
	}
	copy(c.weights, weights)
	return nil
}

// checkInput validates the input tensor against the network before any
// execution happens: one batch row, trailing dimension equal to NumInputs.
func checkInput(input *mat.Dense, network nn.NeuralNetwork) error {
	r, cols := input.Dims()
	if cols != network.NumInputs() {
		return &nn.DimensionMismatchError{What: "input", Got: cols, Want: network.NumInputs()}
	}
	if r != 1 {
		return &nn.DimensionMismatchError{What: "input batch", Got: r, Want: 1}
	}
	return nil
}

// Forward evaluates the network as one differentiable operation.
//
// The returned Context pairs with exactly one Backward call. Scalar results
// are normalized to a 1-element row vector.
func (c *Connector) Forward(input *mat.Dense) (*mat.Dense, *Context, error) {
	if err := checkInput(input, c.network); err != nil {
		return nil, nil, err
	}

	out, err := c.network.Forward(input.RawRowView(0), c.weights)
	if err != nil {
		return nil, nil, err
	}

	data := append([]float64(nil), out.Dense().Data()...)
	if len(data) == 0 {
		data = []float64{0}
	}
	result := mat.NewDense(1, len(data), data)

	ctx := &Context{
		input:   mat.DenseCopyOf(input),
		weights: append([]float64(nil), c.weights...),
		network: c.network,
	}
	return result, ctx, nil
}

// Backward computes the gradients of the recorded operation given the
// upstream gradient signal.
//
// The network's per-parameter gradient arrays are materialized dense and
// reconciled with gradOutput: a 1-D gradient is reshaped to a (1, n) row
// first; the input gradient is elementwise-scaled by the upstream signal,
// the weight gradient is matrix-multiplied with it. A gradient with zero
// elements is propagated as nil ("no gradient"). The wrapped network never
// receives a gradient.
func (c *Connector) Backward(ctx *Context, gradOutput *mat.Dense) (inputGrad, weightGrad *mat.Dense, err error) {
	if err := checkInput(ctx.input, ctx.network); err != nil {
		return nil, nil, err
	}

	inGrad, wGrad, err := ctx.network.Backward(ctx.input.RawRowView(0), ctx.weights)
	if err != nil {
		return nil, nil, err
	}

	if g := flattenGrad(inGrad); g != nil {
		inputGrad, err = scaleElem(gradOutput, g)
		if err != nil {
			return nil, nil, err
		}
	}
	if g := flattenGrad(wGrad); g != nil {
		weightGrad, err = matMul(gradOutput, g)
		if err != nil {
			return nil, nil, err
		}
	}
	return inputGrad, weightGrad, nil
}

// flattenGrad materializes a gradient as a (numParams, outFlat) matrix,
// dropping the leading batch axis. Absent or zero-element gradients map to
// nil. A gradient whose output axis is flat collapses to a (1, numParams)
// row, mirroring the 1-D reshape of the bridge contract.
func flattenGrad(v tensor.Values) *mat.Dense {
	if v == nil {
		return nil
	}
	dense := v.Dense()
	if dense.NumElements() == 0 {
		return nil
	}

	shape := dense.Shape()
	n := 1
	if len(shape) >= 2 {
		n = shape[1] // (1, numParams, *out)
	}
	outFlat := dense.NumElements() / n

	if outFlat == 1 {
		return mat.NewDense(1, n, append([]float64(nil), dense.Data()...))
	}
	return mat.NewDense(n, outFlat, append([]float64(nil), dense.Data()...))
}

// scaleElem multiplies the upstream signal elementwise into the gradient
// rows, broadcasting singleton dimensions.
func scaleElem(gradOut, g *mat.Dense) (*mat.Dense, error) {
	gr, gc := gradOut.Dims()
	r, cols := g.Dims()
	if gr != 1 || (gc != 1 && gc != cols) {
		return nil, &nn.DimensionMismatchError{What: "upstream gradient", Got: gc, Want: cols}
	}
	out := mat.NewDense(r, cols, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			s := gradOut.At(0, 0)
			if gc == cols {
				s = gradOut.At(0, j)
			}
			out.Set(i, j, s*g.At(i, j))
		}
	}
	return out, nil
}

// matMul combines the upstream signal with a per-parameter gradient matrix,
// contracting over the output axis: (1, out) x (n, out)^T -> (1, n).
func matMul(gradOut, g *mat.Dense) (*mat.Dense, error) {
	gr, gc := gradOut.Dims()
	_, cols := g.Dims()

	if gc == 1 {
		// Scalar upstream signal against a (1, n) row: plain scaling.
		return scaleElem(gradOut, g)
	}
	if gr != 1 || gc != cols {
		return nil, &nn.DimensionMismatchError{What: "upstream gradient", Got: gc, Want: cols}
	}

	var out mat.Dense
	out.Mul(gradOut, g.T())
	return &out, nil
}
