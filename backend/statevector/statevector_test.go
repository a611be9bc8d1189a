package statevector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qml-go/qml/backend"
	"github.com/qml-go/qml/circuit"
)

func TestExactCounts(t *testing.T) {
	qc := circuit.New(2)
	qc.H(0).CX(0, 1)

	b := New()
	assert.True(t, b.IsStatevector())
	assert.Equal(t, 0, b.Shots())

	res, err := b.Execute(qc, backend.Options{})
	require.NoError(t, err)

	counts := res.Counts()
	assert.InDelta(t, 0.5, counts["00"], 1e-12)
	assert.InDelta(t, 0.5, counts["11"], 1e-12)
	assert.NotContains(t, counts, "01")
	assert.NotContains(t, counts, "10")

	var sum float64
	for _, v := range counts {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestMemoryNeverAvailable(t *testing.T) {
	qc := circuit.New(1)
	qc.H(0)

	res, err := New().Execute(qc, backend.Options{Memory: true})
	require.NoError(t, err)

	_, err = res.Memory()
	assert.ErrorIs(t, err, backend.ErrMemoryUnavailable)
}

func TestUnboundCircuitFails(t *testing.T) {
	theta := circuit.NewParameter("theta")
	qc := circuit.New(1)
	qc.RY(theta, 0)

	_, err := New().Execute(qc, backend.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, circuit.ErrUnboundParameter)
}
