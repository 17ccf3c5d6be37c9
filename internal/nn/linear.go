package nn

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/born-ml/minigrad/internal/autodiff"
	"github.com/born-ml/minigrad/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]
}

// NewLinear creates a new Linear layer with Xavier weights drawn from rng and
// zero biases.
//
// Panics if either feature count is not positive.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("NewLinear: feature counts must be positive, got in=%d out=%d", inFeatures, outFeatures))
	}

	weightShape := tensor.Shape{outFeatures, inFeatures}
	weight, err := NewParameter("weight", Xavier(inFeatures, outFeatures, weightShape, rng), weightShape)
	if err != nil {
		panic(err)
	}

	biasShape := tensor.Shape{outFeatures}
	bias, err := NewParameter("bias", Zeros(biasShape), biasShape)
	if err != nil {
		panic(err)
	}

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
	}
}

// NewLinearFrom creates a Linear layer from explicit weight and bias values.
// bias may be nil for a layer without bias.
func NewLinearFrom(weight []float32, bias []float32, inFeatures, outFeatures int) (*Linear, error) {
	w, err := NewParameter("weight", weight, tensor.Shape{outFeatures, inFeatures})
	if err != nil {
		return nil, err
	}
	l := &Linear{inFeatures: inFeatures, outFeatures: outFeatures, weight: w}
	if bias != nil {
		if l.bias, err = NewParameter("bias", bias, tensor.Shape{outFeatures}); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear) Forward(input *autodiff.Tensor) (*autodiff.Tensor, error) {
	var bias *autodiff.Tensor
	if l.bias != nil {
		bias = l.bias.Tensor()
	}
	out, err := autodiff.Linear(input, l.weight.Tensor(), bias)
	if err != nil {
		return nil, errors.WithMessagef(err, "Linear(%d, %d)", l.inFeatures, l.outFeatures)
	}
	return out, nil
}

// Parameters returns [weight, bias] if bias is present, otherwise [weight].
func (l *Linear) Parameters() []*Parameter {
	if l.bias != nil {
		return []*Parameter{l.weight, l.bias}
	}
	return []*Parameter{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter, or nil.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns a map of parameter names to raw tensors.
func (l *Linear) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for _, p := range l.Parameters() {
		stateDict[p.Name()] = p.Tensor().Raw()
	}
	return stateDict
}

// LoadStateDict loads parameters from a state dictionary.
func (l *Linear) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for _, p := range l.Parameters() {
		raw, ok := stateDict[p.Name()]
		if !ok {
			return errors.Errorf("missing %s in state dict", p.Name())
		}
		if err := p.load(raw); err != nil {
			return err
		}
	}
	return nil
}

// String returns a PyTorch-style description.
func (l *Linear) String() string {
	return fmt.Sprintf("Linear(in_features=%d, out_features=%d, bias=%t)", l.inFeatures, l.outFeatures, l.bias != nil)
}
