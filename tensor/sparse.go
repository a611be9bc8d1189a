// Copyright 2025 The QML-Go Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"fmt"
	"sort"
)

// Sparse is a sparse accumulator over the same coordinate space as Array.
//
// Elements are keyed by their flat row-major offset. AddAt sums on
// collision, which is the accumulation policy probability remapping
// requires: several raw outcomes may land on the same output coordinate.
type Sparse struct {
	shape  Shape
	stride []int
	elems  map[int]float64
}

// NewSparse creates an empty sparse array with the given shape.
func NewSparse(shape Shape) *Sparse {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return &Sparse{
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		elems:  make(map[int]float64),
	}
}

// Shape returns the array's shape.
func (s *Sparse) Shape() Shape {
	return s.shape
}

func (s *Sparse) offset(coords []int) int {
	if len(coords) != len(s.shape) {
		panic(fmt.Sprintf("tensor: got %d coordinates for shape %v", len(coords), s.shape))
	}
	off := 0
	for i, c := range coords {
		if c < 0 || c >= s.shape[i] {
			panic(fmt.Sprintf("tensor: coordinate %d out of range for axis %d of shape %v", c, i, s.shape))
		}
		off += c * s.stride[i]
	}
	return off
}

// At returns the element at the given coordinates, zero if absent.
func (s *Sparse) At(coords ...int) float64 {
	return s.elems[s.offset(coords)]
}

// Set stores v at the given coordinates, overwriting any prior value.
func (s *Sparse) Set(v float64, coords ...int) {
	s.elems[s.offset(coords)] = v
}

// AddAt accumulates v into the element at the given coordinates.
func (s *Sparse) AddAt(v float64, coords ...int) {
	s.elems[s.offset(coords)] += v
}

// AtOffset returns the element at the given flat row-major offset, zero if
// absent. Offsets pair with NonZero for whole-array iteration.
func (s *Sparse) AtOffset(off int) float64 {
	return s.elems[off]
}

// SetOffset stores v at the given flat row-major offset.
func (s *Sparse) SetOffset(off int, v float64) {
	if off < 0 || off >= s.shape.NumElements() {
		panic(fmt.Sprintf("tensor: offset %d out of range for shape %v", off, s.shape))
	}
	s.elems[off] = v
}

// NumStored returns the number of explicitly stored elements.
func (s *Sparse) NumStored() int {
	return len(s.elems)
}

// Sum returns the sum of all stored elements.
func (s *Sparse) Sum() float64 {
	var sum float64
	for _, v := range s.elems {
		sum += v
	}
	return sum
}

// NonZero calls fn for every stored element in flat-offset order.
func (s *Sparse) NonZero(fn func(offset int, v float64)) {
	offsets := make([]int, 0, len(s.elems))
	for off := range s.elems {
		offsets = append(offsets, off)
	}
	sort.Ints(offsets)
	for _, off := range offsets {
		fn(off, s.elems[off])
	}
}

// Dense materializes the sparse array into a dense one.
func (s *Sparse) Dense() *Array {
	out := NewArray(s.shape)
	for off, v := range s.elems {
		out.data[off] = v
	}
	return out
}

// Accumulator is the shared accumulation surface of Array and Sparse.
//
// Networks write results through this interface so the dense and sparse
// branches stay interchangeable.
type Accumulator interface {
	Values
	AddAt(v float64, coords ...int)
	Set(v float64, coords ...int)
}

var (
	_ Accumulator = (*Array)(nil)
	_ Accumulator = (*Sparse)(nil)
)
