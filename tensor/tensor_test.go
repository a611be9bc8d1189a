package tensor

import (
	"math"
	"testing"
)

func assertEqualFloat(t *testing.T, expected, actual float64, msg string) {
	t.Helper()
	if math.Abs(expected-actual) > 1e-9 {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

// Shape tests

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape    Shape
		expected int
	}{
		{Shape{}, 1},          // Scalar
		{Shape{5}, 5},         // 1D
		{Shape{2, 3}, 6},      // 2D
		{Shape{1, 2, 4}, 8},   // 3D
		{Shape{1, 0, 4}, 0},   // degenerate parameter axis
		{Shape{2, 3, 4}, 24},   // 3D
		{Shape{1, 1, 1, 1}, 1}, // singleton dims
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.expected {
			t.Errorf("%v.NumElements() = %d, want %d", tt.shape, got, tt.expected)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("Validate(2, 3) = %v, want nil", err)
	}
	if err := (Shape{1, 0}).Validate(); err != nil {
		t.Errorf("Validate(1, 0) = %v, want nil (zero axes are legal)", err)
	}
	if err := (Shape{2, -1}).Validate(); err == nil {
		t.Error("Validate(2, -1) = nil, want error")
	}
}

func TestShapeEqualClone(t *testing.T) {
	s := Shape{1, 4}
	c := s.Clone()
	if !s.Equal(c) {
		t.Errorf("clone %v not equal to original %v", c, s)
	}
	c[0] = 7
	if s[0] != 1 {
		t.Error("mutating clone changed the original")
	}
	if s.Equal(Shape{4}) || s.Equal(Shape{1, 5}) {
		t.Error("Equal matched different shapes")
	}
}

func TestShapeComputeStrides(t *testing.T) {
	tests := []struct {
		shape    Shape
		expected []int
	}{
		{Shape{4}, []int{1}},
		{Shape{2, 3}, []int{3, 1}},
		{Shape{1, 2, 4}, []int{8, 4, 1}},
	}

	for _, tt := range tests {
		got := tt.shape.ComputeStrides()
		for i := range tt.expected {
			if got[i] != tt.expected[i] {
				t.Errorf("%v.ComputeStrides() = %v, want %v", tt.shape, got, tt.expected)
				break
			}
		}
	}
}

func TestShapeConcat(t *testing.T) {
	s := Shape{4}
	got := s.Concat(1, 2)
	if !got.Equal(Shape{1, 2, 4}) {
		t.Errorf("Concat(1, 2) = %v, want (1, 2, 4)", got)
	}
	if !s.Equal(Shape{4}) {
		t.Error("Concat mutated the receiver")
	}
}

// Array tests

func TestArrayAtSetAdd(t *testing.T) {
	a := NewArray(Shape{2, 3})
	a.Set(1.5, 1, 2)
	assertEqualFloat(t, 1.5, a.At(1, 2), "Set/At")

	a.AddAt(0.5, 1, 2)
	assertEqualFloat(t, 2.0, a.At(1, 2), "AddAt accumulates")
	assertEqualFloat(t, 0.0, a.At(0, 0), "untouched element stays zero")
	assertEqualFloat(t, 2.0, a.Sum(), "Sum")
}

func TestArrayRowMajorLayout(t *testing.T) {
	a := NewArray(Shape{2, 2})
	a.Set(1, 0, 1)
	a.Set(2, 1, 0)
	data := a.Data()
	assertEqualFloat(t, 1, data[1], "(0,1) maps to offset 1")
	assertEqualFloat(t, 2, data[2], "(1,0) maps to offset 2")
}

func TestArrayDenseIsIdentity(t *testing.T) {
	a := NewArray(Shape{3})
	if a.Dense() != a {
		t.Error("Array.Dense() should return the receiver")
	}
}

func TestArrayOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on out-of-range coordinate")
		}
	}()
	NewArray(Shape{2}).At(3)
}

// Sparse tests

func TestSparseCollisionSums(t *testing.T) {
	s := NewSparse(Shape{1, 4})
	s.AddAt(0.25, 0, 1)
	s.AddAt(0.25, 0, 1)
	s.AddAt(0.5, 0, 3)

	assertEqualFloat(t, 0.5, s.At(0, 1), "collision sums")
	assertEqualFloat(t, 0.0, s.At(0, 0), "absent key reads zero")
	if s.NumStored() != 2 {
		t.Errorf("NumStored() = %d, want 2", s.NumStored())
	}
	assertEqualFloat(t, 1.0, s.Sum(), "Sum")
}

func TestSparseDense(t *testing.T) {
	s := NewSparse(Shape{2, 2})
	s.AddAt(0.5, 0, 1)
	s.AddAt(0.5, 1, 1)

	d := s.Dense()
	if !d.Shape().Equal(Shape{2, 2}) {
		t.Errorf("Dense shape = %v, want (2, 2)", d.Shape())
	}
	assertEqualFloat(t, 0.5, d.At(0, 1), "Dense (0,1)")
	assertEqualFloat(t, 0.5, d.At(1, 1), "Dense (1,1)")
	assertEqualFloat(t, 0.0, d.At(0, 0), "Dense (0,0)")
}

func TestSparseNonZeroOrder(t *testing.T) {
	s := NewSparse(Shape{4})
	s.AddAt(3, 3)
	s.AddAt(1, 1)
	s.AddAt(2, 2)

	var offsets []int
	s.NonZero(func(off int, v float64) {
		offsets = append(offsets, off)
	})
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			t.Errorf("NonZero offsets not sorted: %v", offsets)
			break
		}
	}
}
