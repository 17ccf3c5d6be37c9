// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides tape-based reverse-mode automatic differentiation.
//
// Operations on tensors that require gradients record nodes as they run
// (define-by-run). Backward walks those nodes from a scalar output in reverse
// topological order and accumulates gradients into every tracked leaf.
//
// Example:
//
//	import (
//	    "github.com/born-ml/minigrad/autodiff"
//	    "github.com/born-ml/minigrad/tensor"
//	)
//
//	func main() {
//	    x, _ := autodiff.NewTensor([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, true)
//	    sq, _ := autodiff.Pow(x, 2)
//	    loss, _ := autodiff.Mean(sq)
//
//	    if err := autodiff.Backward(loss); err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(x.Grad().Data()) // [0.5 1 1.5 2]
//	}
//
// Inference code disables recording with NoGrad:
//
//	defer autodiff.NoGrad()()
package autodiff

import (
	"github.com/born-ml/minigrad/internal/autodiff"
	"github.com/born-ml/minigrad/internal/tensor"
)

// Error kinds. Every error returned by this package wraps one of them; match
// with errors.Is.
var (
	ErrShape        = autodiff.ErrShape
	ErrGraph        = autodiff.ErrGraph
	ErrInvalidState = autodiff.ErrInvalidState
)

// Tensor is a value in the computation graph.
type Tensor = autodiff.Tensor

// Node records one operation for the backward pass.
type Node = autodiff.Node

// Kind identifies the operation a Node records.
type Kind = autodiff.Kind

// Operation kinds.
const (
	KindAdd          = autodiff.KindAdd
	KindScale        = autodiff.KindScale
	KindLinear       = autodiff.KindLinear
	KindReLU         = autodiff.KindReLU
	KindPower        = autodiff.KindPower
	KindMean         = autodiff.KindMean
	KindSum          = autodiff.KindSum
	KindLogSoftmax   = autodiff.KindLogSoftmax
	KindNLLLoss      = autodiff.KindNLLLoss
	KindCrossEntropy = autodiff.KindCrossEntropy
)

// Tape is the ordered graph reachable from an output.
type Tape = autodiff.Tape

// BackwardOption configures Backward.
type BackwardOption = autodiff.BackwardOption

// NewTensor creates a leaf tensor holding a copy of data.
func NewTensor(data []float32, shape tensor.Shape, requiresGrad bool) (*Tensor, error) {
	return autodiff.NewTensor(data, shape, requiresGrad)
}

// FromRaw wraps an existing buffer as a leaf tensor without copying.
func FromRaw(raw *tensor.RawTensor, requiresGrad bool) *Tensor {
	return autodiff.FromRaw(raw, requiresGrad)
}

// Zeros creates a zero-filled leaf tensor.
func Zeros(shape tensor.Shape, requiresGrad bool) (*Tensor, error) {
	return autodiff.Zeros(shape, requiresGrad)
}

// Scalar creates a rank-0 leaf tensor.
func Scalar(value float32, requiresGrad bool) *Tensor {
	return autodiff.Scalar(value, requiresGrad)
}

// Add returns a + b for tensors of equal shape.
func Add(a, b *Tensor) (*Tensor, error) { return autodiff.Add(a, b) }

// Scale returns c * x.
func Scale(x *Tensor, c float32) (*Tensor, error) { return autodiff.Scale(x, c) }

// Linear returns input @ weight.T + bias; bias may be nil.
func Linear(input, weight, bias *Tensor) (*Tensor, error) {
	return autodiff.Linear(input, weight, bias)
}

// ReLU returns max(x, 0) element-wise.
func ReLU(x *Tensor) (*Tensor, error) { return autodiff.ReLU(x) }

// Pow returns x^n element-wise.
func Pow(x *Tensor, n float32) (*Tensor, error) { return autodiff.Pow(x, n) }

// Sum reduces all elements to a scalar.
func Sum(x *Tensor) (*Tensor, error) { return autodiff.Sum(x) }

// Mean averages all elements into a scalar.
func Mean(x *Tensor) (*Tensor, error) { return autodiff.Mean(x) }

// LogSoftmax normalizes x along dim in log space.
func LogSoftmax(x *Tensor, dim int) (*Tensor, error) { return autodiff.LogSoftmax(x, dim) }

// NLLLoss is the mean negative log-likelihood of labels under logProbs.
func NLLLoss(logProbs *Tensor, labels []int) (*Tensor, error) {
	return autodiff.NLLLoss(logProbs, labels)
}

// CrossEntropy is LogSoftmax followed by NLLLoss, as one node.
func CrossEntropy(logits *Tensor, labels []int) (*Tensor, error) {
	return autodiff.CrossEntropy(logits, labels)
}

// Backward accumulates gradients of output into every tracked leaf.
func Backward(output *Tensor, opts ...BackwardOption) error {
	return autodiff.Backward(output, opts...)
}

// WithGrad seeds Backward with an explicit output gradient.
func WithGrad(seed *tensor.RawTensor) BackwardOption { return autodiff.WithGrad(seed) }

// RetainGraph keeps the graph alive for another Backward.
func RetainGraph() BackwardOption { return autodiff.RetainGraph() }

// NewTape orders the graph reachable from output for inspection.
func NewTape(output *Tensor) (*Tape, error) { return autodiff.NewTape(output) }

// NoGrad disables recording until the returned restore function is called.
func NoGrad() (restore func()) { return autodiff.NoGrad() }

// SetGradEnabled sets the recording flag and returns a function restoring the
// previous value.
func SetGradEnabled(enabled bool) (restore func()) { return autodiff.SetGradEnabled(enabled) }

// IsGradEnabled reports whether operations are being recorded.
func IsGradEnabled() bool { return autodiff.IsGradEnabled() }

// WithNoGrad runs fn with recording disabled.
func WithNoGrad(fn func() error) error { return autodiff.WithNoGrad(fn) }
