// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Basic Usage
//
//	optimizer, err := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1, Momentum: 0.9})
//
//	for _, batch := range batches {
//	    optimizer.ZeroGrad()
//	    logits, _ := model.Forward(batch.Inputs)
//	    loss, _ := criterion.Forward(logits, batch.Labels)
//	    _ = autodiff.Backward(loss)
//	    if err := optimizer.Step(); err != nil {
//	        log.Fatal(err)
//	    }
//	}
package optim

import (
	"github.com/born-ml/minigrad/internal/nn"
	"github.com/born-ml/minigrad/internal/optim"
)

// ErrInvalidConfig reports an out-of-range optimizer configuration.
var ErrInvalidConfig = optim.ErrInvalidConfig

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config represents the base configuration for optimizers.
type Config = optim.Config

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	model := nn.NewLinear(4, 3, rng)
//	optimizer, err := optim.NewSGD(
//	    model.Parameters(),
//	    optim.SGDConfig{
//	        LR:       0.01,
//	        Momentum: 0.9,
//	    },
//	)
func NewSGD(params []*nn.Parameter, config SGDConfig) (*SGD, error) {
	return optim.NewSGD(params, config)
}
