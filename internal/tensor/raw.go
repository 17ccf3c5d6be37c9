// Package tensor provides the storage layer of the autodiff engine: shapes and
// contiguous row-major float32 buffers. It knows nothing about gradients.
package tensor

import "fmt"

// RawTensor is the low-level tensor representation: a contiguous row-major
// float32 buffer together with its shape.
//
// RawTensor values are plain storage. Gradient tracking, producing nodes and
// version counters live one level up in the autodiff package.
type RawTensor struct {
	data   []float32 // Contiguous buffer, len == shape.NumElements()
	shape  Shape     // Tensor dimensions
	stride []int     // Memory strides (row-major)
}

// NewRaw creates a new zero-filled RawTensor with the given shape.
func NewRaw(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:   make([]float32, shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}

// MustNewRaw is like NewRaw but panics on an invalid shape.
// Used by kernels whose shapes were validated by the caller.
func MustNewRaw(shape Shape) *RawTensor {
	r, err := NewRaw(shape)
	if err != nil {
		panic(err)
	}
	return r
}

// FromSlice creates a RawTensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float32, shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	r := MustNewRaw(shape)
	copy(r.data, data)
	return r, nil
}

// Full creates a RawTensor filled with value.
func Full(shape Shape, value float32) (*RawTensor, error) {
	r, err := NewRaw(shape)
	if err != nil {
		return nil, err
	}
	r.Fill(value)
	return r, nil
}

// ZerosLike returns a zero-filled tensor with the same shape as r.
func ZerosLike(r *RawTensor) *RawTensor {
	return MustNewRaw(r.shape)
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return len(r.data)
}

// Data returns the underlying buffer (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (r *RawTensor) Data() []float32 {
	return r.data
}

// At returns the element at the given multi-dimensional index.
func (r *RawTensor) At(index ...int) float32 {
	return r.data[r.offset(index)]
}

// Set writes value at the given multi-dimensional index.
func (r *RawTensor) Set(value float32, index ...int) {
	r.data[r.offset(index)] = value
}

func (r *RawTensor) offset(index []int) int {
	if len(index) != len(r.shape) {
		panic(fmt.Sprintf("index %v has %d dimensions, tensor has shape %v", index, len(index), r.shape))
	}
	off := 0
	for i, idx := range index {
		if idx < 0 || idx >= r.shape[i] {
			panic(fmt.Sprintf("index %v out of bounds for shape %v", index, r.shape))
		}
		off += idx * r.stride[i]
	}
	return off
}

// Fill sets every element to value.
func (r *RawTensor) Fill(value float32) {
	for i := range r.data {
		r.data[i] = value
	}
}

// Clone returns a deep copy.
func (r *RawTensor) Clone() *RawTensor {
	clone := MustNewRaw(r.shape)
	copy(clone.data, r.data)
	return clone
}

// Reshape returns a tensor sharing this buffer under a new shape with the same
// number of elements.
func (r *RawTensor) Reshape(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != len(r.data) {
		return nil, fmt.Errorf("cannot reshape %v (%d elements) into %v", r.shape, len(r.data), shape)
	}
	return &RawTensor{
		data:   r.data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}

// String returns a short description, not the contents.
func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor%v", r.shape)
}
