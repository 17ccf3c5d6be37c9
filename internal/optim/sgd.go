package optim

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/minigrad/internal/autodiff"
	"github.com/born-ml/minigrad/internal/backend/cpu"
	"github.com/born-ml/minigrad/internal/nn"
	"github.com/born-ml/minigrad/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float32
	momentum   float32
	velocities map[*nn.Parameter]*tensor.RawTensor
	backend    *cpu.CPUBackend
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate, must be > 0
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// Validate checks the configuration ranges.
func (c SGDConfig) Validate() error {
	if !(c.LR > 0) {
		return errors.Wrapf(ErrInvalidConfig, "learning rate must be > 0, got %g", c.LR)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return errors.Wrapf(ErrInvalidConfig, "momentum must be in [0, 1), got %g", c.Momentum)
	}
	return nil
}

// NewSGD creates a new SGD optimizer over params.
func NewSGD(params []*nn.Parameter, config SGDConfig) (*SGD, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*tensor.RawTensor),
		backend:    cpu.New(),
	}, nil
}

// Step performs a single optimization step.
//
// All gradients are checked before any parameter is touched, so a failing Step
// leaves the model unchanged.
func (s *SGD) Step() error {
	if err := checkGradients(s.params); err != nil {
		return err
	}

	for _, param := range s.params {
		update := param.Grad()
		if s.momentum != 0 {
			update = s.updateVelocity(param, update)
		}
		param.Tensor().UpdateInPlace(func(values []float32) {
			for i, g := range update.Data() {
				values[i] -= s.lr * g
			}
		})
	}
	return nil
}

// updateVelocity computes velocity = momentum * velocity + grad and returns it.
func (s *SGD) updateVelocity(param *nn.Parameter, grad *tensor.RawTensor) *tensor.RawTensor {
	velocity, exists := s.velocities[param]
	if !exists {
		velocity = tensor.ZerosLike(grad)
		s.velocities[param] = velocity
	}
	data := velocity.Data()
	for i := range data {
		data[i] *= s.momentum
	}
	s.backend.AddInto(velocity, grad)
	return velocity
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (s *SGD) LR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float32) error {
	if !(lr > 0) {
		return errors.Wrapf(ErrInvalidConfig, "learning rate must be > 0, got %g", lr)
	}
	s.lr = lr
	return nil
}

// StateDict returns the optimizer state for serialization.
//
// For SGD with momentum, this exports velocity buffers for each parameter.
// Without momentum, returns an empty map.
//
// State keys: "velocity.{param_index}" -> velocity tensor.
func (s *SGD) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	if s.momentum == 0 {
		return stateDict
	}
	for i, param := range s.params {
		if velocity, exists := s.velocities[param]; exists {
			stateDict[fmt.Sprintf("velocity.%d", i)] = velocity
		}
	}
	return stateDict
}

// LoadStateDict restores velocity buffers. Returns an error wrapping
// autodiff.ErrShape if a velocity shape doesn't match its parameter.
func (s *SGD) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if s.momentum == 0 {
		return nil
	}

	velocities := make(map[*nn.Parameter]*tensor.RawTensor)
	for i, param := range s.params {
		velocity, exists := stateDict[fmt.Sprintf("velocity.%d", i)]
		if !exists {
			continue // initialized on first step
		}
		if !velocity.Shape().Equal(param.Tensor().Shape()) {
			return errors.Wrapf(autodiff.ErrShape, "velocity shape mismatch for parameter %d: expected %v, got %v",
				i, param.Tensor().Shape(), velocity.Shape())
		}
		velocities[param] = velocity.Clone()
	}
	s.velocities = velocities
	return nil
}
