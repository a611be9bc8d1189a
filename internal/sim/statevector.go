// Package sim implements the statevector simulation engine shared by the
// execution backends and the gradient engine.
//
// States are dense complex128 amplitude vectors over 2^n basis states with
// qubit 0 as the least significant bit of the basis index.
package sim

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/qml-go/qml/circuit"
)

// State is a statevector over 2^n amplitudes.
type State struct {
	amps      []complex128
	numQubits int
}

// NewState creates the all-zeros state |0...0>.
func NewState(numQubits int) *State {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &State{amps: amps, numQubits: numQubits}
}

// Amplitudes returns the amplitude vector. Callers must not mutate it.
func (s *State) Amplitudes() []complex128 {
	return s.amps
}

// NumQubits returns the register size.
func (s *State) NumQubits() int {
	return s.numQubits
}

// Probabilities returns |amp|^2 per basis state.
func (s *State) Probabilities() []float64 {
	probs := make([]float64, len(s.amps))
	for i, a := range s.amps {
		probs[i] = real(a * cmplx.Conj(a))
	}
	return probs
}

func (s *State) applyH(q int) {
	f := complex(1/math.Sqrt2, 0)
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = f*(s.amps[i]+s.amps[j]), f*(s.amps[i]-s.amps[j])
		}
	}
}

func (s *State) applyX(q int) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *State) applyY(q int) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = 1i*s.amps[j], -1i*s.amps[i]
		}
	}
}

func (s *State) applyZ(q int) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] = -s.amps[i]
		}
	}
}

func (s *State) applyPhase(q int, factor complex128) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] *= factor
		}
	}
}

func (s *State) applyRX(q int, theta float64) {
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			ai, aj := s.amps[i], s.amps[j]
			s.amps[i] = c*ai + js*aj
			s.amps[j] = js*ai + c*aj
		}
	}
}

func (s *State) applyRY(q int, theta float64) {
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			ai, aj := s.amps[i], s.amps[j]
			s.amps[i] = c*ai - sn*aj
			s.amps[j] = sn*ai + c*aj
		}
	}
}

func (s *State) applyRZ(q int, theta float64) {
	bit := 1 << q
	phase := cmplx.Exp(complex(0, theta/2))
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] *= phase
		} else {
			s.amps[i] *= cmplx.Conj(phase)
		}
	}
}

func (s *State) applyCX(control, target int) {
	cBit, tBit := 1<<control, 1<<target
	for i := range s.amps {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *State) applyCZ(control, target int) {
	cBit, tBit := 1<<control, 1<<target
	for i := range s.amps {
		if i&cBit != 0 && i&tBit != 0 {
			s.amps[i] = -s.amps[i]
		}
	}
}

func (s *State) applySwap(a, b int) {
	aBit, bBit := 1<<a, 1<<b
	for i := range s.amps {
		if i&aBit != 0 && i&bBit == 0 {
			j := (i &^ aBit) | bBit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// Apply applies a single bound gate.
func (s *State) Apply(g circuit.Gate) error {
	if g.Param != nil {
		return fmt.Errorf("%w: gate %s depends on %q", circuit.ErrUnboundParameter, g.Name, g.Param.Name())
	}
	switch g.Name {
	case circuit.GateH:
		s.applyH(g.Qubits[0])
	case circuit.GateX:
		s.applyX(g.Qubits[0])
	case circuit.GateY:
		s.applyY(g.Qubits[0])
	case circuit.GateZ:
		s.applyZ(g.Qubits[0])
	case circuit.GateS:
		s.applyPhase(g.Qubits[0], 1i)
	case circuit.GateT:
		s.applyPhase(g.Qubits[0], cmplx.Exp(complex(0, math.Pi/4)))
	case circuit.GateRX:
		s.applyRX(g.Qubits[0], g.Value)
	case circuit.GateRY:
		s.applyRY(g.Qubits[0], g.Value)
	case circuit.GateRZ:
		s.applyRZ(g.Qubits[0], g.Value)
	case circuit.GateCX:
		s.applyCX(g.Qubits[0], g.Qubits[1])
	case circuit.GateCZ:
		s.applyCZ(g.Qubits[0], g.Qubits[1])
	case circuit.GateSwap:
		s.applySwap(g.Qubits[0], g.Qubits[1])
	default:
		return fmt.Errorf("unknown gate %q", g.Name)
	}
	return nil
}

// Run simulates a bound circuit from |0...0> and returns the final state.
// Measurement markers are no-ops at the amplitude level.
func Run(c *circuit.Circuit) (*State, error) {
	state := NewState(c.NumQubits())
	for _, g := range c.Gates() {
		if err := state.Apply(g); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// Probabilities simulates a bound circuit and returns the outcome
// distribution over raw basis indices.
func Probabilities(c *circuit.Circuit) ([]float64, error) {
	state, err := Run(c)
	if err != nil {
		return nil, err
	}
	return state.Probabilities(), nil
}
