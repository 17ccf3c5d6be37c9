// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the storage types of minigrad: shapes and contiguous
// row-major float32 buffers.
//
// RawTensor values carry no gradient state. Wrap them with autodiff.FromRaw to
// take part in a computation graph.
//
//	raw, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	fmt.Println(raw.At(1, 0)) // 3
package tensor

import "github.com/born-ml/minigrad/internal/tensor"

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// RawTensor is a contiguous float32 buffer with a shape.
type RawTensor = tensor.RawTensor

// New creates a zero-filled RawTensor.
func New(shape Shape) (*RawTensor, error) {
	return tensor.NewRaw(shape)
}

// FromSlice creates a RawTensor holding a copy of data.
func FromSlice(data []float32, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Full creates a RawTensor filled with value.
func Full(shape Shape, value float32) (*RawTensor, error) {
	return tensor.Full(shape, value)
}
