// Copyright 2025 The QML-Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package loss provides loss functions over prediction vectors and
// probability distributions.
//
// Every loss is stateless: Evaluate maps (predict, target) to a scalar and
// Gradient returns the derivative with respect to predict, shaped like
// predict. EvaluateBatch applies a loss row-wise to 2-D inputs.
package loss

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// InvalidShapeError reports degenerate or disagreeing input shapes.
type InvalidShapeError struct {
	PredictLen int
	TargetLen  int
}

// Error implements the error interface.
func (e *InvalidShapeError) Error() string {
	if e.PredictLen == 0 && e.TargetLen == 0 {
		return "invalid shape: empty input"
	}
	return fmt.Sprintf("invalid shape: predict has length %d, target %d", e.PredictLen, e.TargetLen)
}

// Loss maps a prediction and a target to a scalar and its gradient.
type Loss interface {
	// Evaluate returns the loss value.
	Evaluate(predict, target []float64) (float64, error)

	// Gradient returns d(loss)/d(predict), shaped like predict.
	Gradient(predict, target []float64) ([]float64, error)
}

func checkShapes(predict, target []float64) error {
	if len(predict) == 0 || len(predict) != len(target) {
		return &InvalidShapeError{PredictLen: len(predict), TargetLen: len(target)}
	}
	return nil
}

func residual(predict, target []float64) []float64 {
	diff := make([]float64, len(predict))
	floats.SubTo(diff, predict, target)
	return diff
}

// L2 is the squared Euclidean loss: ||predict - target||^2.
type L2 struct{}

// Evaluate returns the squared 2-norm of the residual.
func (L2) Evaluate(predict, target []float64) (float64, error) {
	if err := checkShapes(predict, target); err != nil {
		return 0, err
	}
	n := floats.Norm(residual(predict, target), 2)
	return n * n, nil
}

// Gradient returns 2 * (predict - target).
func (L2) Gradient(predict, target []float64) ([]float64, error) {
	if err := checkShapes(predict, target); err != nil {
		return nil, err
	}
	diff := residual(predict, target)
	floats.Scale(2, diff)
	return diff, nil
}

// L1 is the absolute-error loss: ||predict - target||_1.
type L1 struct{}

// Evaluate returns the 1-norm of the residual.
func (L1) Evaluate(predict, target []float64) (float64, error) {
	if err := checkShapes(predict, target); err != nil {
		return 0, err
	}
	return floats.Norm(residual(predict, target), 1), nil
}

// Gradient returns the element-wise sign of the residual.
func (L1) Gradient(predict, target []float64) ([]float64, error) {
	if err := checkShapes(predict, target); err != nil {
		return nil, err
	}
	diff := residual(predict, target)
	for i, v := range diff {
		switch {
		case v > 0:
			diff[i] = 1
		case v < 0:
			diff[i] = -1
		default:
			diff[i] = 0
		}
	}
	return diff, nil
}

// CrossEntropy is the cross-entropy loss -sum(target_i * ln(predict_i))
// for probability-vector predictions.
type CrossEntropy struct{}

// Evaluate returns -sum(target_i * ln(predict_i)). Zero-target entries
// contribute nothing regardless of the prediction.
func (CrossEntropy) Evaluate(predict, target []float64) (float64, error) {
	if err := checkShapes(predict, target); err != nil {
		return 0, err
	}
	var sum float64
	for i, t := range target {
		if t != 0 {
			sum -= t * math.Log(predict[i])
		}
	}
	return sum, nil
}

// Gradient returns -target_i / predict_i.
func (CrossEntropy) Gradient(predict, target []float64) ([]float64, error) {
	if err := checkShapes(predict, target); err != nil {
		return nil, err
	}
	grad := make([]float64, len(predict))
	for i, t := range target {
		if t != 0 {
			grad[i] = -t / predict[i]
		}
	}
	return grad, nil
}

// KLDivergence is the Kullback-Leibler divergence
// sum(predict_i * ln(predict_i / target_i)).
type KLDivergence struct{}

// Evaluate returns sum(predict_i * ln(predict_i / target_i)). Zero-predict
// entries contribute nothing.
func (KLDivergence) Evaluate(predict, target []float64) (float64, error) {
	if err := checkShapes(predict, target); err != nil {
		return 0, err
	}
	var sum float64
	for i, p := range predict {
		if p != 0 {
			sum += p * math.Log(p/target[i])
		}
	}
	return sum, nil
}

// Gradient returns ln(predict_i / target_i) + 1.
func (KLDivergence) Gradient(predict, target []float64) ([]float64, error) {
	if err := checkShapes(predict, target); err != nil {
		return nil, err
	}
	grad := make([]float64, len(predict))
	for i, p := range predict {
		if p != 0 {
			grad[i] = math.Log(p/target[i]) + 1
		}
	}
	return grad, nil
}

// EvaluateBatch applies a loss row-wise over 2-D predictions and targets,
// returning one loss value per row.
func EvaluateBatch(l Loss, predict, target *mat.Dense) ([]float64, error) {
	pr, pc := predict.Dims()
	tr, tc := target.Dims()
	if pr != tr || pc != tc || pr == 0 || pc == 0 {
		return nil, &InvalidShapeError{PredictLen: pr * pc, TargetLen: tr * tc}
	}
	out := make([]float64, pr)
	for i := 0; i < pr; i++ {
		v, err := l.Evaluate(predict.RawRowView(i), target.RawRowView(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
