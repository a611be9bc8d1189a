package connector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/qml-go/qml/backend/statevector"
	"github.com/qml-go/qml/circuit"
	"github.com/qml-go/qml/nn"
	"github.com/qml-go/qml/tensor"
)

// mockNetwork is a scripted nn.NeuralNetwork that records calls.
type mockNetwork struct {
	numInputs    int
	numWeights   int
	outputShape  tensor.Shape
	out          tensor.Values
	inGrad       tensor.Values
	wGrad        tensor.Values
	forwardCalls int
	backwardCalls int
}

func (m *mockNetwork) NumInputs() int            { return m.numInputs }
func (m *mockNetwork) NumWeights() int           { return m.numWeights }
func (m *mockNetwork) OutputShape() tensor.Shape { return m.outputShape }

func (m *mockNetwork) Forward(input, weights []float64) (tensor.Values, error) {
	m.forwardCalls++
	return m.out, nil
}

func (m *mockNetwork) Backward(input, weights []float64) (tensor.Values, tensor.Values, error) {
	m.backwardCalls++
	return m.inGrad, m.wGrad, nil
}

func arrayOf(shape tensor.Shape, data []float64) *tensor.Array {
	a := tensor.NewArray(shape)
	copy(a.Data(), data)
	return a
}

func TestForwardValidatesBeforeNetworkCall(t *testing.T) {
	network := &mockNetwork{numInputs: 2, numWeights: 1, outputShape: tensor.Shape{4}}
	c := NewWithSeed(network, 1)

	_, _, err := c.Forward(mat.NewDense(1, 3, nil)) // trailing dim != 2
	require.Error(t, err)

	var dimErr *nn.DimensionMismatchError
	assert.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 0, network.forwardCalls, "validation must precede any network call")
}

func TestForwardReturnsRowVector(t *testing.T) {
	network := &mockNetwork{
		numInputs:   2,
		numWeights:  1,
		outputShape: tensor.Shape{4},
		out:         arrayOf(tensor.Shape{1, 4}, []float64{0.1, 0.2, 0.3, 0.4}),
	}
	c := NewWithSeed(network, 1)

	out, ctx, err := c.Forward(mat.NewDense(1, 2, []float64{0.5, 0.6}))
	require.NoError(t, err)
	require.NotNil(t, ctx)

	r, cols := out.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 4, cols)
	assert.InDelta(t, 0.3, out.At(0, 2), 1e-12)
}

func TestForwardNormalizesScalar(t *testing.T) {
	network := &mockNetwork{
		numInputs:   1,
		numWeights:  0,
		outputShape: tensor.Shape{},
		out:         arrayOf(tensor.Shape{}, []float64{2.5}),
	}
	c := NewWithSeed(network, 1)

	out, _, err := c.Forward(mat.NewDense(1, 1, []float64{0.0}))
	require.NoError(t, err)

	r, cols := out.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 1, cols, "scalar result becomes a 1-element vector")
	assert.InDelta(t, 2.5, out.At(0, 0), 1e-12)
}

func TestBackwardEmptyGradientIsNil(t *testing.T) {
	// Zero weights: the network reports a zero-element gradient array,
	// which the bridge propagates as "no gradient".
	network := &mockNetwork{
		numInputs:   1,
		numWeights:  0,
		outputShape: tensor.Shape{2},
		out:         arrayOf(tensor.Shape{1, 2}, []float64{0.5, 0.5}),
		inGrad:      arrayOf(tensor.Shape{1, 1, 2}, []float64{0.3, -0.3}),
		wGrad:       tensor.NewArray(tensor.Shape{1, 0, 2}),
	}
	c := NewWithSeed(network, 1)

	_, ctx, err := c.Forward(mat.NewDense(1, 1, []float64{0.1}))
	require.NoError(t, err)

	inputGrad, weightGrad, err := c.Backward(ctx, mat.NewDense(1, 2, []float64{1, 1}))
	require.NoError(t, err)
	assert.NotNil(t, inputGrad)
	assert.Nil(t, weightGrad, "zero-element gradient propagates as nil")
}

func TestBackwardNilGradientsPassThrough(t *testing.T) {
	network := &mockNetwork{
		numInputs:   1,
		numWeights:  1,
		outputShape: tensor.Shape{1},
		out:         arrayOf(tensor.Shape{1, 1}, []float64{1}),
	}
	c := NewWithSeed(network, 1)

	_, ctx, err := c.Forward(mat.NewDense(1, 1, []float64{0.1}))
	require.NoError(t, err)

	inputGrad, weightGrad, err := c.Backward(ctx, mat.NewDense(1, 1, []float64{1}))
	require.NoError(t, err)
	assert.Nil(t, inputGrad, "samples-mode networks have no gradients")
	assert.Nil(t, weightGrad)
	assert.Equal(t, 1, network.backwardCalls)
}

func TestBackwardWeightGradContraction(t *testing.T) {
	// G = dP_k/dw_i as (weights=2, out=2); upstream signal (1, 2).
	network := &mockNetwork{
		numInputs:   1,
		numWeights:  2,
		outputShape: tensor.Shape{2},
		out:         arrayOf(tensor.Shape{1, 2}, []float64{0.5, 0.5}),
		inGrad:      arrayOf(tensor.Shape{1, 1, 2}, []float64{0.1, -0.1}),
		wGrad:       arrayOf(tensor.Shape{1, 2, 2}, []float64{1, 2, 3, 4}),
	}
	c := NewWithSeed(network, 1)

	_, ctx, err := c.Forward(mat.NewDense(1, 1, []float64{0.1}))
	require.NoError(t, err)

	gradOut := mat.NewDense(1, 2, []float64{10, 100})
	inputGrad, weightGrad, err := c.Backward(ctx, gradOut)
	require.NoError(t, err)

	// weightGrad[i] = sum_k gradOut[k] * G[i][k].
	require.NotNil(t, weightGrad)
	assert.InDelta(t, 10*1+100*2, weightGrad.At(0, 0), 1e-12)
	assert.InDelta(t, 10*3+100*4, weightGrad.At(0, 1), 1e-12)

	// inputGrad rows are elementwise-scaled by the upstream signal.
	require.NotNil(t, inputGrad)
	assert.InDelta(t, 10*0.1, inputGrad.At(0, 0), 1e-12)
	assert.InDelta(t, 100*-0.1, inputGrad.At(0, 1), 1e-12)
}

func TestEndToEndWithCircuitQNN(t *testing.T) {
	x := circuit.NewParameter("x")
	w1 := circuit.NewParameter("w1")
	w2 := circuit.NewParameter("w2")

	qc := circuit.New(2)
	qc.RY(x, 0).RY(w1, 1).CX(0, 1).RX(w2, 0)

	qnn, err := nn.NewCircuitQNN(nn.QNNConfig{
		Circuit:      qc,
		InputParams:  []*circuit.Parameter{x},
		WeightParams: []*circuit.Parameter{w1, w2},
		Dense:        true,
		Backend:      statevector.New(),
	})
	require.NoError(t, err)

	c := NewWithSeed(qnn, 7)
	require.Len(t, c.Weights(), 2)
	for _, w := range c.Weights() {
		assert.GreaterOrEqual(t, w, -1.0)
		assert.Less(t, w, 1.0)
	}

	input := mat.NewDense(1, 1, []float64{0.4})
	out, ctx, err := c.Forward(input)
	require.NoError(t, err)

	_, cols := out.Dims()
	require.Equal(t, 4, cols)

	// Upstream signal g: the wrapped scalar objective is sum_k g_k P_k,
	// so d/dw_i must equal sum_k g_k dP_k/dw_i.
	signal := []float64{1.5, -0.5, 2.0, 0.25}
	_, weightGrad, err := c.Backward(ctx, mat.NewDense(1, 4, signal))
	require.NoError(t, err)
	require.NotNil(t, weightGrad)

	const eps = 1e-6
	objective := func(weights []float64) float64 {
		probs, err := qnn.Forward([]float64{0.4}, weights)
		require.NoError(t, err)
		data := probs.Dense().Data()
		var sum float64
		for k, g := range signal {
			sum += g * data[k]
		}
		return sum
	}

	base := append([]float64(nil), c.Weights()...)
	for i := range base {
		plus := append([]float64(nil), base...)
		plus[i] += eps
		minus := append([]float64(nil), base...)
		minus[i] -= eps
		fd := (objective(plus) - objective(minus)) / (2 * eps)
		assert.InDelta(t, fd, weightGrad.At(0, i), 1e-5, "weight %d", i)
	}
}

func TestSetWeights(t *testing.T) {
	network := &mockNetwork{numInputs: 1, numWeights: 2, outputShape: tensor.Shape{2}}
	c := NewWithSeed(network, 1)

	require.NoError(t, c.SetWeights([]float64{0.5, -0.5}))
	assert.InDeltaSlice(t, []float64{0.5, -0.5}, c.Weights(), 1e-12)

	err := c.SetWeights([]float64{1})
	var dimErr *nn.DimensionMismatchError
	assert.ErrorAs(t, err, &dimErr)
}
