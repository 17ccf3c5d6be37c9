// Package train runs the mini-batch training loop: zero gradients, forward,
// loss, backward, optimizer step, with per-epoch evaluation.
package train

import (
	"github.com/pkg/errors"

	"github.com/born-ml/minigrad/internal/optim"
)

// ErrInvalidConfig reports a training configuration outside its valid range.
var ErrInvalidConfig = errors.New("invalid training config")

// Config holds the training hyperparameters.
//
// Zero values select the defaults noted on each field.
type Config struct {
	Epochs    int     // Passes over the training set (default: 10)
	BatchSize int     // Examples per mini-batch (default: 32)
	LR        float32 // SGD learning rate (default: 0.1)
	Momentum  float32 // SGD momentum in [0, 1) (default: 0)
	Seed      int64   // Seed for batch shuffling
	LogEvery  int     // Log the loss every LogEvery batches at -v=1; 0 disables
}

// WithDefaults returns a copy of c with zero fields set to their defaults.
func (c Config) WithDefaults() Config {
	if c.Epochs == 0 {
		c.Epochs = 10
	}
	if c.BatchSize == 0 {
		c.BatchSize = 32
	}
	if c.LR == 0 {
		c.LR = 0.1
	}
	return c
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if c.Epochs <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "epochs must be positive, got %d", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "batch size must be positive, got %d", c.BatchSize)
	}
	if c.LogEvery < 0 {
		return errors.Wrapf(ErrInvalidConfig, "log interval must not be negative, got %d", c.LogEvery)
	}
	if err := c.sgdConfig().Validate(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	return nil
}

func (c Config) sgdConfig() optim.SGDConfig {
	return optim.SGDConfig{LR: c.LR, Momentum: c.Momentum}
}
