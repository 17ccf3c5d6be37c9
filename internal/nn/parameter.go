package nn

import (
	"github.com/pkg/errors"

	"github.com/born-ml/minigrad/internal/autodiff"
	"github.com/born-ml/minigrad/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// The underlying tensor always tracks gradients and lives as long as the
// module owning it.
type Parameter struct {
	name   string           // Parameter name (e.g., "weight", "bias")
	tensor *autodiff.Tensor // The parameter tensor
}

// NewParameter creates a new trainable parameter from initial values.
func NewParameter(name string, data []float32, shape tensor.Shape) (*Parameter, error) {
	t, err := autodiff.NewParameter(data, shape)
	if err != nil {
		return nil, errors.WithMessagef(err, "parameter %q", name)
	}
	return &Parameter{name: name, tensor: t}, nil
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *autodiff.Tensor {
	return p.tensor
}

// Grad returns the accumulated gradient, or nil before the first backward pass.
func (p *Parameter) Grad() *tensor.RawTensor {
	return p.tensor.Grad()
}

// ZeroGrad resets the gradient buffer to zero.
func (p *Parameter) ZeroGrad() {
	p.tensor.ClearGradient()
}

// load copies raw into the parameter after validating its shape.
func (p *Parameter) load(raw *tensor.RawTensor) error {
	if !raw.Shape().Equal(p.tensor.Shape()) {
		return errors.Wrapf(autodiff.ErrShape, "%s shape mismatch: expected %v, got %v",
			p.name, p.tensor.Shape(), raw.Shape())
	}
	p.tensor.UpdateInPlace(func(values []float32) {
		copy(values, raw.Data())
	})
	return nil
}
