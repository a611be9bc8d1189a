// Copyright 2025 The QML-Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense and sparse output arrays used by
// quantum neural networks.
//
// Networks in this module produce probability distributions over a discrete
// outcome space. Depending on the size of that space, results are held either
// in a fully materialized Array or in a Sparse accumulator keyed by output
// coordinate. Both satisfy the Values interface, so callers that need a
// concrete buffer can always materialize via Dense().
//
// Example:
//
//	probs := tensor.NewSparse(tensor.Shape{1, 4})
//	probs.AddAt(0.25, 0, 1)
//	probs.AddAt(0.25, 0, 1) // collisions accumulate
//	dense := probs.Dense()  // [0, 0.5, 0, 0]
package tensor
