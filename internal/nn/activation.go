package nn

import (
	"fmt"

	"github.com/born-ml/minigrad/internal/autodiff"
	"github.com/born-ml/minigrad/internal/tensor"
)

// stateless provides the parameter-free part of the Module interface.
type stateless struct{}

// Parameters returns nil; activations have no trainable parameters.
func (stateless) Parameters() []*Parameter { return nil }

// StateDict returns an empty map.
func (stateless) StateDict() map[string]*tensor.RawTensor { return map[string]*tensor.RawTensor{} }

// LoadStateDict accepts and ignores any state.
func (stateless) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
type ReLU struct {
	stateless
}

// NewReLU creates a new ReLU activation module.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU) Forward(input *autodiff.Tensor) (*autodiff.Tensor, error) {
	return autodiff.ReLU(input)
}

// String returns the module name.
func (r *ReLU) String() string {
	return "ReLU()"
}

// LogSoftmax converts logits into log-probabilities along a dimension.
type LogSoftmax struct {
	stateless
	dim int
}

// NewLogSoftmax creates a LogSoftmax module reducing along dim (negative counts
// from the end).
func NewLogSoftmax(dim int) *LogSoftmax {
	return &LogSoftmax{dim: dim}
}

// Forward applies log_softmax along the configured dimension.
func (l *LogSoftmax) Forward(input *autodiff.Tensor) (*autodiff.Tensor, error) {
	return autodiff.LogSoftmax(input, l.dim)
}

// String returns the module name.
func (l *LogSoftmax) String() string {
	return fmt.Sprintf("LogSoftmax(dim=%d)", l.dim)
}
