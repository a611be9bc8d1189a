// Copyright 2025 The QML-Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gradient computes analytic probability gradients of parametrized
// circuits via the parameter-shift rule.
//
// Build derives a gradient circuit once, at network construction time;
// Evaluate binds concrete parameter values and returns the gradient tensor
// d P(k) / d theta_i indexed [parameter][raw outcome index]. For a rotation
// gate occurrence the shift rule gives
//
//	dP/dtheta = (P(theta + pi/2) - P(theta - pi/2)) / 2
//
// and occurrences of a shared parameter sum by the product rule. Gradients
// are always evaluated through the exact statevector engine, independent of
// the backend used for the forward pass.
package gradient

import (
	"fmt"
	"math"

	"github.com/qml-go/qml/circuit"
	"github.com/qml-go/qml/internal/sim"
)

const shift = math.Pi / 2

// Circuit is a derived gradient representation for a fixed parameter order.
// It is built once and never mutated; Evaluate only binds values.
type Circuit struct {
	base   *circuit.Circuit
	params []*circuit.Parameter

	// occurrences[i] lists gate positions in base that reference params[i].
	occurrences [][]int
}

// Build derives a gradient circuit for the given ordered parameter list.
//
// The circuit is copied and its final measurements stripped; gradients are
// amplitude-level objects. Every listed parameter must appear in at least
// one rotation gate (rx, ry, rz), the gate family the shift rule covers.
func Build(c *circuit.Circuit, params []*circuit.Parameter) (*Circuit, error) {
	base := c.Copy()
	base.RemoveFinalMeasurements()

	byParam := make(map[*circuit.Parameter][]int)
	for pos, g := range base.Gates() {
		if g.Param == nil {
			continue
		}
		switch g.Name {
		case circuit.GateRX, circuit.GateRY, circuit.GateRZ:
			byParam[g.Param] = append(byParam[g.Param], pos)
		default:
			return nil, fmt.Errorf("parameter %q bound to non-rotation gate %q", g.Param.Name(), g.Name)
		}
	}

	occurrences := make([][]int, len(params))
	for i, p := range params {
		occ := byParam[p]
		if len(occ) == 0 {
			return nil, fmt.Errorf("parameter %q does not appear in the circuit", p.Name())
		}
		occurrences[i] = occ
	}

	return &Circuit{base: base, params: params, occurrences: occurrences}, nil
}

// NumParameters returns the length of the parameter list.
func (g *Circuit) NumParameters() int {
	return len(g.params)
}

// Evaluate binds the given parameter values and returns the probability
// gradient tensor, rows indexed by the Build parameter order and columns by
// raw outcome index. Values are complex per the evaluation contract; the
// imaginary parts of probability gradients are zero.
func (g *Circuit) Evaluate(values map[*circuit.Parameter]float64) ([][]complex128, error) {
	bound, err := g.base.Bind(values)
	if err != nil {
		return nil, err
	}

	dim := 1 << g.base.NumQubits()
	grad := make([][]complex128, len(g.params))
	for i := range g.params {
		row := make([]complex128, dim)
		for _, pos := range g.occurrences[i] {
			plus, err := shiftedProbabilities(bound, pos, +shift)
			if err != nil {
				return nil, err
			}
			minus, err := shiftedProbabilities(bound, pos, -shift)
			if err != nil {
				return nil, err
			}
			for k := 0; k < dim; k++ {
				row[k] += complex((plus[k]-minus[k])/2, 0)
			}
		}
		grad[i] = row
	}
	return grad, nil
}

// shiftedProbabilities evaluates the bound circuit with one gate's angle
// shifted by delta.
func shiftedProbabilities(bound *circuit.Circuit, pos int, delta float64) ([]float64, error) {
	shifted := bound.Copy()
	shifted.Gates()[pos].Value += delta
	return sim.Probabilities(shifted)
}
