// Package nn implements neural network modules on top of the autodiff engine.
//
// This package provides building blocks for constructing networks:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable tensors with permanently enabled gradient tracking
//   - Linear: Fully connected layer
//   - ReLU, LogSoftmax: Parameter-free activations
//   - Sequential: Container for stacking layers
//   - NLLLoss, CrossEntropyLoss: Classification criteria
package nn

import (
	"github.com/born-ml/minigrad/internal/autodiff"
	"github.com/born-ml/minigrad/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(4, 3, rng),
//	    nn.NewReLU(),
//	    nn.NewLinear(3, 2, rng),
//	    nn.NewLogSoftmax(1),
//	)
type Module interface {
	// Forward computes the output of the module given an input tensor.
	//
	// Fails with autodiff.ErrShape when the input does not fit the module.
	Forward(input *autodiff.Tensor) (*autodiff.Tensor, error)

	// Parameters returns all trainable parameters of this module, including
	// those of nested modules. Parameter-free modules return nil.
	Parameters() []*Parameter

	// StateDict returns parameter values keyed by name.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies values from a state dictionary into the parameters.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
