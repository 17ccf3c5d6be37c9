package tensor

import (
	"reflect"
	"testing"
)

func TestShape(t *testing.T) {
	tests := []struct {
		shape    Shape
		elements int
		rank     int
		scalar   bool
		str      string
	}{
		{Shape{}, 1, 0, true, "()"},
		{Shape{1}, 1, 1, true, "(1)"},
		{Shape{2, 3}, 6, 2, false, "(2, 3)"},
		{Shape{2, 3, 4}, 24, 3, false, "(2, 3, 4)"},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.elements {
			t.Errorf("%v.NumElements() = %d, want %d", tt.shape, got, tt.elements)
		}
		if got := tt.shape.Rank(); got != tt.rank {
			t.Errorf("%v.Rank() = %d, want %d", tt.shape, got, tt.rank)
		}
		if got := tt.shape.IsScalar(); got != tt.scalar {
			t.Errorf("%v.IsScalar() = %v, want %v", tt.shape, got, tt.scalar)
		}
		if got := tt.shape.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
	}
}

func TestShape_Validate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []Shape{{0}, {2, -1}} {
		if err := bad.Validate(); err == nil {
			t.Errorf("%v: expected error", bad)
		}
	}
}

func TestShape_StridesAndDims(t *testing.T) {
	s := Shape{2, 3, 4}
	if got := s.ComputeStrides(); !reflect.DeepEqual(got, []int{12, 4, 1}) {
		t.Errorf("strides = %v", got)
	}

	for _, tt := range []struct{ dim, want int }{{0, 0}, {2, 2}, {-1, 2}, {-3, 0}} {
		got, err := s.NormalizeDim(tt.dim)
		if err != nil || got != tt.want {
			t.Errorf("NormalizeDim(%d) = %d, %v; want %d", tt.dim, got, err, tt.want)
		}
	}
	for _, dim := range []int{3, -4} {
		if _, err := s.NormalizeDim(dim); err == nil {
			t.Errorf("NormalizeDim(%d): expected error", dim)
		}
	}

	outer, size, inner := s.SplitAt(1)
	if outer != 2 || size != 3 || inner != 4 {
		t.Errorf("SplitAt(1) = %d, %d, %d", outer, size, inner)
	}
}

func TestShape_EqualClone(t *testing.T) {
	s := Shape{2, 3}
	c := s.Clone()
	c[0] = 5
	if s[0] != 2 {
		t.Error("Clone shares memory")
	}
	if !s.Equal(Shape{2, 3}) || s.Equal(Shape{3, 2}) || s.Equal(Shape{2, 3, 1}) {
		t.Error("Equal mismatch")
	}
}

func TestFromSlice(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}
	r, err := FromSlice(data, Shape{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 100
	if r.At(0, 0) != 1 {
		t.Error("FromSlice does not copy its input")
	}
	if r.At(1, 2) != 6 {
		t.Errorf("At(1, 2) = %v, want 6", r.At(1, 2))
	}

	r.Set(-1, 1, 0)
	if r.Data()[3] != -1 {
		t.Errorf("Set wrote %v", r.Data())
	}

	if _, err := FromSlice([]float32{1, 2}, Shape{3}); err == nil {
		t.Error("expected length mismatch error")
	}
	if _, err := FromSlice(nil, Shape{0}); err == nil {
		t.Error("expected invalid shape error")
	}
}

func TestRawTensor_CloneFillReshape(t *testing.T) {
	r, err := Full(Shape{2, 2}, 3)
	if err != nil {
		t.Fatal(err)
	}
	c := r.Clone()
	r.Fill(0)
	if !reflect.DeepEqual(c.Data(), []float32{3, 3, 3, 3}) {
		t.Errorf("clone changed with original: %v", c.Data())
	}

	flat, err := c.Reshape(Shape{4})
	if err != nil {
		t.Fatal(err)
	}
	flat.Data()[0] = 7
	if c.At(0, 0) != 7 {
		t.Error("Reshape does not share the buffer")
	}
	if _, err := c.Reshape(Shape{3}); err == nil {
		t.Error("expected reshape size error")
	}

	z := ZerosLike(c)
	if !z.Shape().Equal(c.Shape()) || z.Data()[0] != 0 {
		t.Errorf("ZerosLike = %v %v", z.Shape(), z.Data())
	}
}

func TestRawTensor_AtPanics(t *testing.T) {
	r := MustNewRaw(Shape{2, 2})
	for _, index := range [][]int{{2, 0}, {0}, {-1, 1}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("At(%v): expected panic", index)
				}
			}()
			r.At(index...)
		}()
	}
}
