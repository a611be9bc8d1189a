// Copyright 2025 The QML-Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package circuit provides parametrized quantum circuits.
//
// A Circuit is an ordered list of gates over a fixed qubit register. Gate
// angles are either constants or free Parameters; Bind substitutes concrete
// values for parameters and returns a new circuit, leaving the receiver
// untouched. Backends execute fully bound circuits only.
//
// Example:
//
//	theta := circuit.NewParameter("theta")
//	qc := circuit.New(1)
//	qc.H(0)
//	qc.RY(theta, 0)
//	bound, err := qc.Bind(map[*circuit.Parameter]float64{theta: math.Pi / 2})
package circuit

import (
	"errors"
	"fmt"
)

// ErrUnboundParameter is returned when an operation requires a fully bound
// circuit but free parameters remain.
var ErrUnboundParameter = errors.New("circuit has unbound parameters")

// Parameter is a named free parameter of a circuit.
//
// Parameters are compared by identity: two parameters with the same name are
// still distinct. Construct them once and share the pointer.
type Parameter struct {
	name string
}

// NewParameter creates a free parameter with the given name.
func NewParameter(name string) *Parameter {
	return &Parameter{name: name}
}

// Name returns the parameter's name.
func (p *Parameter) Name() string {
	return p.name
}

func (p *Parameter) String() string {
	return p.name
}

// Angle is a rotation-gate argument: either a constant or a free Parameter.
// *Parameter satisfies Angle directly; use Rad for constants.
type Angle interface {
	angle() (*Parameter, float64)
}

type constAngle float64

func (c constAngle) angle() (*Parameter, float64) { return nil, float64(c) }

func (p *Parameter) angle() (*Parameter, float64) { return p, 0 }

// Rad wraps a constant angle in radians.
func Rad(v float64) Angle {
	return constAngle(v)
}

// Gate names understood by the simulation engine.
const (
	GateH    = "h"
	GateX    = "x"
	GateY    = "y"
	GateZ    = "z"
	GateS    = "s"
	GateT    = "t"
	GateRX   = "rx"
	GateRY   = "ry"
	GateRZ   = "rz"
	GateCX   = "cx"
	GateCZ   = "cz"
	GateSwap = "swap"
)

// Gate is a single circuit instruction.
//
// Rotation gates carry either a bound Value or a Param reference; for all
// other gates both are zero. Qubits holds (control, target) for two-qubit
// gates and a single target otherwise.
type Gate struct {
	Name   string
	Qubits []int
	Param  *Parameter // nil when the angle is bound
	Value  float64    // angle in radians when Param is nil
}

// Circuit is a parametrized quantum circuit.
type Circuit struct {
	numQubits int
	gates     []Gate
	measured  bool // final full-register measurement present
}

// New creates an empty circuit over the given number of qubits.
func New(numQubits int) *Circuit {
	if numQubits <= 0 {
		panic(fmt.Sprintf("circuit: invalid qubit count %d", numQubits))
	}
	return &Circuit{numQubits: numQubits}
}

// NumQubits returns the size of the qubit register.
func (c *Circuit) NumQubits() int {
	return c.numQubits
}

// Gates returns the instruction list. Callers must not mutate it.
func (c *Circuit) Gates() []Gate {
	return c.gates
}

// Measured reports whether a final full-register measurement is present.
func (c *Circuit) Measured() bool {
	return c.measured
}

func (c *Circuit) checkQubits(qs ...int) {
	for _, q := range qs {
		if q < 0 || q >= c.numQubits {
			panic(fmt.Sprintf("circuit: qubit %d out of range [0, %d)", q, c.numQubits))
		}
	}
}

func (c *Circuit) append1(name string, q int) *Circuit {
	c.checkQubits(q)
	c.gates = append(c.gates, Gate{Name: name, Qubits: []int{q}})
	return c
}

func (c *Circuit) appendRot(name string, theta Angle, q int) *Circuit {
	c.checkQubits(q)
	p, v := theta.angle()
	c.gates = append(c.gates, Gate{Name: name, Qubits: []int{q}, Param: p, Value: v})
	return c
}

func (c *Circuit) append2(name string, a, b int) *Circuit {
	c.checkQubits(a, b)
	if a == b {
		panic(fmt.Sprintf("circuit: %s needs two distinct qubits, got %d twice", name, a))
	}
	c.gates = append(c.gates, Gate{Name: name, Qubits: []int{a, b}})
	return c
}

// H applies a Hadamard gate.
func (c *Circuit) H(q int) *Circuit { return c.append1(GateH, q) }

// X applies a Pauli-X gate.
func (c *Circuit) X(q int) *Circuit { return c.append1(GateX, q) }

// Y applies a Pauli-Y gate.
func (c *Circuit) Y(q int) *Circuit { return c.append1(GateY, q) }

// Z applies a Pauli-Z gate.
func (c *Circuit) Z(q int) *Circuit { return c.append1(GateZ, q) }

// S applies a phase gate.
func (c *Circuit) S(q int) *Circuit { return c.append1(GateS, q) }

// T applies a T gate.
func (c *Circuit) T(q int) *Circuit { return c.append1(GateT, q) }

// RX applies an X-rotation by the given angle.
func (c *Circuit) RX(theta Angle, q int) *Circuit { return c.appendRot(GateRX, theta, q) }

// RY applies a Y-rotation by the given angle.
func (c *Circuit) RY(theta Angle, q int) *Circuit { return c.appendRot(GateRY, theta, q) }

// RZ applies a Z-rotation by the given angle.
func (c *Circuit) RZ(theta Angle, q int) *Circuit { return c.appendRot(GateRZ, theta, q) }

// CX applies a controlled-X gate.
func (c *Circuit) CX(control, target int) *Circuit { return c.append2(GateCX, control, target) }

// CZ applies a controlled-Z gate.
func (c *Circuit) CZ(control, target int) *Circuit { return c.append2(GateCZ, control, target) }

// Swap exchanges two qubits.
func (c *Circuit) Swap(a, b int) *Circuit { return c.append2(GateSwap, a, b) }

// MeasureAll marks the circuit with a final full-register measurement.
func (c *Circuit) MeasureAll() *Circuit {
	c.measured = true
	return c
}

// RemoveFinalMeasurements drops the final measurement marker.
func (c *Circuit) RemoveFinalMeasurements() *Circuit {
	c.measured = false
	return c
}

// Copy returns a deep copy of the circuit. Parameter references are shared;
// parameters are identities, not state.
func (c *Circuit) Copy() *Circuit {
	gates := make([]Gate, len(c.gates))
	copy(gates, c.gates)
	for i := range gates {
		qs := make([]int, len(gates[i].Qubits))
		copy(qs, gates[i].Qubits)
		gates[i].Qubits = qs
	}
	return &Circuit{numQubits: c.numQubits, gates: gates, measured: c.measured}
}

// Parameters returns the circuit's free parameters ordered by first
// appearance, without duplicates.
func (c *Circuit) Parameters() []*Parameter {
	seen := make(map[*Parameter]bool)
	var params []*Parameter
	for _, g := range c.gates {
		if g.Param != nil && !seen[g.Param] {
			seen[g.Param] = true
			params = append(params, g.Param)
		}
	}
	return params
}

// NumParameters returns the number of distinct free parameters.
func (c *Circuit) NumParameters() int {
	return len(c.Parameters())
}

// IsBound reports whether no free parameters remain.
func (c *Circuit) IsBound() bool {
	return len(c.Parameters()) == 0
}

// Bind substitutes concrete values for free parameters and returns the bound
// circuit. Every free parameter must receive a value; extra entries are
// ignored. The receiver is never mutated.
func (c *Circuit) Bind(values map[*Parameter]float64) (*Circuit, error) {
	out := c.Copy()
	for i := range out.gates {
		p := out.gates[i].Param
		if p == nil {
			continue
		}
		v, ok := values[p]
		if !ok {
			return nil, fmt.Errorf("%w: no value for %q", ErrUnboundParameter, p.Name())
		}
		out.gates[i].Param = nil
		out.gates[i].Value = v
	}
	return out, nil
}

// BitstringToIndex converts a measured bitstring (qubit 0 rightmost) into
// its raw outcome index.
func BitstringToIndex(b string) (int, error) {
	var k int
	for _, r := range b {
		switch r {
		case '0':
			k <<= 1
		case '1':
			k = k<<1 | 1
		default:
			return 0, fmt.Errorf("invalid bitstring %q", b)
		}
	}
	return k, nil
}

// IndexToBitstring renders a raw outcome index as a zero-padded bitstring
// over n qubits, qubit 0 rightmost.
func IndexToBitstring(k, n int) string {
	return fmt.Sprintf("%0*b", n, k)
}
