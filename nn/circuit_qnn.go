// Copyright 2025 The QML-Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/qml-go/qml/backend"
	"github.com/qml-go/qml/circuit"
	"github.com/qml-go/qml/gradient"
	"github.com/qml-go/qml/tensor"
)

// QNNConfig configures a CircuitQNN.
type QNNConfig struct {
	// Circuit is the parametrized circuit generating the network's
	// samples. It is copied at construction; the caller's circuit is
	// never mutated.
	Circuit *circuit.Circuit

	// InputParams and WeightParams split the circuit's free parameters
	// into network inputs and trainable weights. Together they must
	// exactly partition the circuit's parameter set; forward and backward
	// bind values positionally in the order given here.
	InputParams  []*circuit.Parameter
	WeightParams []*circuit.Parameter

	// Dense selects fully materialized probability arrays over sparse
	// accumulators. Samples mode is always dense.
	Dense bool

	// ReturnSamples switches Forward from probabilities to raw per-shot
	// samples. Backward returns no gradients in that mode.
	ReturnSamples bool

	// Interpret optionally remaps raw outcome indices into output-space
	// coordinates. When set, OutputShape is required.
	Interpret Interpret

	// OutputShape is the output space of the custom interpretation.
	OutputShape tensor.Shape

	// Backend executes the bound circuits.
	Backend backend.Backend
}

// CircuitQNN is a sampling neural network backed by a quantum circuit.
//
// Forward binds input and weight values into the circuit, executes it, and
// aggregates outcomes into the output space. Backward evaluates a gradient
// circuit derived once at construction, remapping raw outcome indices through
// the same interpretation as the forward pass so probabilities and their
// gradients stay index-consistent.
type CircuitQNN struct {
	*SamplingNetwork

	circuit      *circuit.Circuit
	inputParams  []*circuit.Parameter
	weightParams []*circuit.Parameter
	interpret    Interpret
	gradCircuit  *gradient.Circuit
	backend      backend.Backend
}

// NewCircuitQNN constructs the network and derives its gradient circuit.
//
// Fails with ErrMissingOutputShape if an Interpret function is given without
// an explicit output shape, and with *DimensionMismatchError if the input
// and weight parameter lists do not exactly partition the circuit's free
// parameters.
func NewCircuitQNN(cfg QNNConfig) (*CircuitQNN, error) {
	if cfg.Circuit == nil {
		return nil, fmt.Errorf("nn: circuit is required")
	}
	if cfg.Backend == nil {
		return nil, fmt.Errorf("nn: backend is required")
	}

	// Copy the circuit and reconcile measurements with the backend:
	// amplitude-exact execution wants none, sampling needs them.
	circ := cfg.Circuit.Copy()
	if cfg.Backend.IsStatevector() {
		circ.RemoveFinalMeasurements()
	} else if !circ.Measured() {
		circ.MeasureAll()
	}

	if err := checkParameterPartition(circ, cfg.InputParams, cfg.WeightParams); err != nil {
		return nil, err
	}

	outputShape, err := resolveOutputShape(cfg, circ.NumQubits())
	if err != nil {
		return nil, err
	}

	// The gradient circuit is derived once from the measurement-free
	// circuit over inputs followed by weights, and never mutated after.
	params := make([]*circuit.Parameter, 0, len(cfg.InputParams)+len(cfg.WeightParams))
	params = append(params, cfg.InputParams...)
	params = append(params, cfg.WeightParams...)
	gradCircuit, err := gradient.Build(circ, params)
	if err != nil {
		return nil, fmt.Errorf("nn: building gradient circuit: %w", err)
	}

	qnn := &CircuitQNN{
		circuit:      circ,
		inputParams:  append([]*circuit.Parameter(nil), cfg.InputParams...),
		weightParams: append([]*circuit.Parameter(nil), cfg.WeightParams...),
		interpret:    cfg.Interpret,
		gradCircuit:  gradCircuit,
		backend:      cfg.Backend,
	}
	qnn.SamplingNetwork = newSamplingNetwork(
		len(cfg.InputParams), len(cfg.WeightParams),
		cfg.Dense, cfg.ReturnSamples, outputShape, qnn)
	return qnn, nil
}

func checkParameterPartition(c *circuit.Circuit, inputs, weights []*circuit.Parameter) error {
	free := c.Parameters()
	declared := make(map[*circuit.Parameter]bool, len(inputs)+len(weights))
	for _, p := range append(append([]*circuit.Parameter(nil), inputs...), weights...) {
		if declared[p] {
			return &DimensionMismatchError{
				What: fmt.Sprintf("parameter %q declared twice", p.Name()),
				Got:  len(inputs) + len(weights),
				Want: len(free),
			}
		}
		declared[p] = true
	}
	if len(declared) != len(free) {
		return &DimensionMismatchError{
			What: "input+weight parameters",
			Got:  len(declared),
			Want: len(free),
		}
	}
	for _, p := range free {
		if !declared[p] {
			return &DimensionMismatchError{
				What: fmt.Sprintf("circuit parameter %q unassigned", p.Name()),
				Got:  len(declared),
				Want: len(free),
			}
		}
	}
	return nil
}

func resolveOutputShape(cfg QNNConfig, numQubits int) (tensor.Shape, error) {
	var shape tensor.Shape
	if cfg.ReturnSamples {
		shape = tensor.Shape{1}
		if cfg.OutputShape != nil {
			shape = cfg.OutputShape
		}
	} else {
		shape = tensor.Shape{1 << numQubits}
	}
	if cfg.Interpret != nil {
		if cfg.OutputShape == nil {
			return nil, ErrMissingOutputShape
		}
		shape = cfg.OutputShape
	}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("nn: %w", err)
	}
	return shape, nil
}

// Circuit returns the network's circuit copy (with measurements reconciled
// to the backend). Callers must not mutate it.
func (q *CircuitQNN) Circuit() *circuit.Circuit {
	return q.circuit
}

// InputParams returns the ordered input parameters.
func (q *CircuitQNN) InputParams() []*circuit.Parameter {
	return q.inputParams
}

// WeightParams returns the ordered trainable weight parameters.
func (q *CircuitQNN) WeightParams() []*circuit.Parameter {
	return q.weightParams
}

// Backend returns the execution backend.
func (q *CircuitQNN) Backend() backend.Backend {
	return q.backend
}

// paramValues validates the value vectors and combines them into a binding,
// positional against the stored parameter order.
func (q *CircuitQNN) paramValues(input, weights []float64) (map[*circuit.Parameter]float64, error) {
	if len(input) != len(q.inputParams) {
		return nil, &DimensionMismatchError{What: "input", Got: len(input), Want: len(q.inputParams)}
	}
	if len(weights) != len(q.weightParams) {
		return nil, &DimensionMismatchError{What: "weights", Got: len(weights), Want: len(q.weightParams)}
	}
	values := make(map[*circuit.Parameter]float64, len(input)+len(weights))
	for i, p := range q.inputParams {
		values[p] = input[i]
	}
	for i, p := range q.weightParams {
		values[p] = weights[i]
	}
	return values, nil
}

// interpretKey remaps a raw outcome index into output-space coordinates.
func (q *CircuitQNN) interpretKey(raw int) []int {
	if q.interpret == nil {
		return []int{raw}
	}
	return q.interpret(raw)
}

// Sample executes the circuit with per-shot memory and returns raw samples
// shaped (1, shots, *OutputShape). Fails with ErrStatevectorSampling on
// amplitude-exact backends.
func (q *CircuitQNN) Sample(input, weights []float64) (*tensor.Array, error) {
	if q.backend.IsStatevector() {
		return nil, ErrStatevectorSampling
	}

	values, err := q.paramValues(input, weights)
	if err != nil {
		return nil, err
	}
	bound, err := q.circuit.Bind(values)
	if err != nil {
		return nil, err
	}

	res, err := q.backend.Execute(bound, backend.Options{Memory: true})
	if err != nil {
		return nil, err
	}
	memory, err := res.Memory()
	if err != nil {
		return nil, err
	}

	shape := q.OutputShape()
	samples := tensor.NewArray(shape.Concat(1, len(memory)))
	width := shape.NumElements()
	for i, bits := range memory {
		raw, err := circuit.BitstringToIndex(bits)
		if err != nil {
			return nil, err
		}
		if err := writeSampleRow(samples, i, q.interpretKey(raw), width); err != nil {
			return nil, err
		}
	}
	return samples, nil
}

// writeSampleRow stores one interpreted sample into slot [0, shot, :].
// A single coordinate broadcasts across the trailing axis; a full tuple is
// assigned elementwise in row-major order.
func writeSampleRow(samples *tensor.Array, shot int, coords []int, width int) error {
	data := samples.Data()
	base := shot * width
	switch {
	case len(coords) == 1:
		for j := 0; j < width; j++ {
			data[base+j] = float64(coords[0])
		}
	case len(coords) == width:
		for j, c := range coords {
			data[base+j] = float64(c)
		}
	default:
		return &DimensionMismatchError{What: "interpreted sample", Got: len(coords), Want: width}
	}
	return nil
}

// Probabilities executes the circuit and aggregates outcome counts into a
// probability array shaped (1, *OutputShape). Raw outcomes that interpret
// to the same output coordinate have their probabilities summed.
func (q *CircuitQNN) Probabilities(input, weights []float64) (tensor.Values, error) {
	values, err := q.paramValues(input, weights)
	if err != nil {
		return nil, err
	}
	bound, err := q.circuit.Bind(values)
	if err != nil {
		return nil, err
	}

	res, err := q.backend.Execute(bound, backend.Options{})
	if err != nil {
		return nil, err
	}
	counts := res.Counts()
	var shots float64
	for _, v := range counts {
		shots += v
	}

	prob := q.newAccumulator(q.OutputShape().Concat(1))
	for bits, v := range counts {
		raw, err := circuit.BitstringToIndex(bits)
		if err != nil {
			return nil, err
		}
		coords, err := q.outputCoords(raw)
		if err != nil {
			return nil, err
		}
		prob.AddAt(v/shots, append([]int{0}, coords...)...)
	}
	return prob, nil
}

// ProbabilityGradients evaluates the derived gradient circuit at the bound
// parameter values and packs the result into the same index space as
// Probabilities: identical interpretation, identical sum-on-collision
// accumulation. Results are shaped (1, NumInputs, *OutputShape) and
// (1, NumWeights, *OutputShape); zero parameter counts yield zero-sized
// dense arrays rather than nil.
func (q *CircuitQNN) ProbabilityGradients(input, weights []float64) (tensor.Values, tensor.Values, error) {
	values, err := q.paramValues(input, weights)
	if err != nil {
		return nil, nil, err
	}

	grad, err := q.gradCircuit.Evaluate(values)
	if err != nil {
		return nil, nil, err
	}

	numInputs := len(q.inputParams)
	numWeights := len(q.weightParams)
	shape := q.OutputShape()

	inputGrad := q.newGradAccumulator(shape.Concat(1, numInputs), numInputs)
	weightGrad := q.newGradAccumulator(shape.Concat(1, numWeights), numWeights)

	dim := 1 << q.circuit.NumQubits()
	for raw := 0; raw < dim; raw++ {
		coords, err := q.outputCoords(raw)
		if err != nil {
			return nil, nil, err
		}
		for i := 0; i < numInputs; i++ {
			inputGrad.AddAt(real(grad[i][raw]), append([]int{0, i}, coords...)...)
		}
		for i := 0; i < numWeights; i++ {
			weightGrad.AddAt(real(grad[numInputs+i][raw]), append([]int{0, i}, coords...)...)
		}
	}
	return inputGrad, weightGrad, nil
}

// outputCoords interprets a raw index and validates the coordinate rank
// against the output shape.
func (q *CircuitQNN) outputCoords(raw int) ([]int, error) {
	coords := q.interpretKey(raw)
	if want := len(q.OutputShape()); len(coords) != want {
		return nil, &DimensionMismatchError{What: "interpreted coordinates", Got: len(coords), Want: want}
	}
	return coords, nil
}

func (q *CircuitQNN) newAccumulator(shape tensor.Shape) tensor.Accumulator {
	if q.Dense() {
		return tensor.NewArray(shape)
	}
	return tensor.NewSparse(shape)
}

// newGradAccumulator picks the accumulator for a gradient result. A
// degenerate parameter axis always materializes dense: an empty sparse map
// would be indistinguishable from "no gradient", and this layer never
// returns nil.
func (q *CircuitQNN) newGradAccumulator(shape tensor.Shape, numParams int) tensor.Accumulator {
	if q.Dense() || numParams == 0 {
		return tensor.NewArray(shape)
	}
	return tensor.NewSparse(shape)
}
