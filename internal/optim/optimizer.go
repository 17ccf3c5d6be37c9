// Package optim implements optimization algorithms for training neural networks.
//
// Example usage:
//
//	optimizer, err := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
//
//	for _, batch := range batches {
//	    optimizer.ZeroGrad()
//	    output, _ := model.Forward(batch.Inputs)
//	    loss, _ := criterion.Forward(output, batch.Labels)
//	    if err := autodiff.Backward(loss); err != nil {
//	        return err
//	    }
//	    if err := optimizer.Step(); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"github.com/pkg/errors"

	"github.com/born-ml/minigrad/internal/autodiff"
	"github.com/born-ml/minigrad/internal/nn"
)

// ErrInvalidConfig reports an optimizer configuration outside its valid range.
var ErrInvalidConfig = errors.New("invalid optimizer config")

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step updates every managed parameter in place from its gradient buffer.
	//
	// Fails with autodiff.ErrInvalidState, without modifying any parameter, if
	// a parameter's gradient buffer was never allocated.
	Step() error

	// ZeroGrad clears all parameter gradients.
	//
	// Gradients accumulate across backward passes, so call this before each
	// forward/backward cycle.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float32
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// checkGradients verifies every parameter has an allocated gradient.
func checkGradients(params []*nn.Parameter) error {
	for i, p := range params {
		if p.Grad() == nil {
			return errors.Wrapf(autodiff.ErrInvalidState,
				"parameter %d (%s) has no gradient; was backward called?", i, p.Name())
		}
	}
	return nil
}
