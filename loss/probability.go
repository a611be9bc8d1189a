// Copyright 2025 The QML-Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package loss

import (
	"github.com/qml-go/qml/tensor"
)

// L2Probability is the squared-error loss between two sparse probability
// distributions over the same output space. The sum runs over the union of
// stored keys; absent keys read as zero.
type L2Probability struct{}

func jointOffsets(predict, target *tensor.Sparse) []int {
	seen := make(map[int]bool)
	var offsets []int
	collect := func(s *tensor.Sparse) {
		s.NonZero(func(off int, _ float64) {
			if !seen[off] {
				seen[off] = true
				offsets = append(offsets, off)
			}
		})
	}
	collect(predict)
	collect(target)
	return offsets
}

func checkSparseShapes(predict, target *tensor.Sparse) error {
	if !predict.Shape().Equal(target.Shape()) {
		return &InvalidShapeError{
			PredictLen: predict.Shape().NumElements(),
			TargetLen:  target.Shape().NumElements(),
		}
	}
	return nil
}

// Evaluate returns sum over joint keys of (predict(k) - target(k))^2.
func (L2Probability) Evaluate(predict, target *tensor.Sparse) (float64, error) {
	if err := checkSparseShapes(predict, target); err != nil {
		return 0, err
	}
	var sum float64
	for _, off := range jointOffsets(predict, target) {
		d := predict.AtOffset(off) - target.AtOffset(off)
		sum += d * d
	}
	return sum, nil
}

// Gradient returns 2 * (predict(k) - target(k)) at every joint key, as a
// sparse array over the shared output space.
func (L2Probability) Gradient(predict, target *tensor.Sparse) (*tensor.Sparse, error) {
	if err := checkSparseShapes(predict, target); err != nil {
		return nil, err
	}
	grad := tensor.NewSparse(predict.Shape())
	for _, off := range jointOffsets(predict, target) {
		grad.SetOffset(off, 2*(predict.AtOffset(off)-target.AtOffset(off)))
	}
	return grad, nil
}
