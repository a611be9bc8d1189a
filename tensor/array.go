// Copyright 2025 The QML-Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "fmt"

// Values is the interchange point between dense and sparse results.
//
// Forward and backward passes of a sampling network return Values; whether
// the concrete type is *Array or *Sparse depends on the network's dense
// setting. Dense always materializes a full buffer.
type Values interface {
	// Shape returns the dimensions of the result.
	Shape() Shape

	// Dense materializes the result as a dense array. For an *Array this is
	// the receiver itself; for a *Sparse it allocates.
	Dense() *Array
}

// Array is a dense, row-major float64 array.
type Array struct {
	shape  Shape
	stride []int
	data   []float64
}

// NewArray creates a zero-initialized dense array with the given shape.
// Panics if the shape is invalid; shapes are build-time constants here,
// never user input.
func NewArray(shape Shape) *Array {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return &Array{
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		data:   make([]float64, shape.NumElements()),
	}
}

// Shape returns the array's shape.
func (a *Array) Shape() Shape {
	return a.shape
}

// Dense returns the receiver.
func (a *Array) Dense() *Array {
	return a
}

// Data returns the underlying buffer in row-major order.
func (a *Array) Data() []float64 {
	return a.data
}

// NumElements returns the total number of elements.
func (a *Array) NumElements() int {
	return len(a.data)
}

// offset converts a multi-index into a flat buffer offset.
func (a *Array) offset(coords []int) int {
	if len(coords) != len(a.shape) {
		panic(fmt.Sprintf("tensor: got %d coordinates for shape %v", len(coords), a.shape))
	}
	off := 0
	for i, c := range coords {
		if c < 0 || c >= a.shape[i] {
			panic(fmt.Sprintf("tensor: coordinate %d out of range for axis %d of shape %v", c, i, a.shape))
		}
		off += c * a.stride[i]
	}
	return off
}

// At returns the element at the given coordinates.
func (a *Array) At(coords ...int) float64 {
	return a.data[a.offset(coords)]
}

// Set stores v at the given coordinates.
func (a *Array) Set(v float64, coords ...int) {
	a.data[a.offset(coords)] = v
}

// AddAt accumulates v into the element at the given coordinates.
func (a *Array) AddAt(v float64, coords ...int) {
	a.data[a.offset(coords)] += v
}

// Sum returns the sum of all elements.
func (a *Array) Sum() float64 {
	var sum float64
	for _, v := range a.data {
		sum += v
	}
	return sum
}
