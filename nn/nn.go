// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Linear
//   - Activations: ReLU, LogSoftmax
//   - Loss functions: NLLLoss, CrossEntropyLoss
//   - Utilities: Sequential, Module interface, Parameter
//   - Initialization: Xavier, Zeros
//
// # Basic Usage
//
//	rng := rand.New(rand.NewSource(42))
//	model := nn.NewSequential(
//	    nn.NewLinear(4, 16, rng),
//	    nn.NewReLU(),
//	    nn.NewLinear(16, 3, rng),
//	)
//	logits, err := model.Forward(x)
//	loss, err := nn.NewCrossEntropyLoss().Forward(logits, labels)
package nn

import (
	"math/rand"

	"github.com/born-ml/minigrad/internal/nn"
	"github.com/born-ml/minigrad/internal/tensor"
)

// Module is the interface implemented by all layers.
type Module = nn.Module

// Loss maps model outputs and labels to a scalar loss.
type Loss = nn.Loss

// Parameter is a named trainable tensor.
type Parameter = nn.Parameter

// Layer and criterion types.
type (
	Linear           = nn.Linear
	ReLU             = nn.ReLU
	LogSoftmax       = nn.LogSoftmax
	Sequential       = nn.Sequential
	NLLLoss          = nn.NLLLoss
	CrossEntropyLoss = nn.CrossEntropyLoss
)

// NewParameter creates a trainable parameter.
func NewParameter(name string, data []float32, shape tensor.Shape) (*Parameter, error) {
	return nn.NewParameter(name, data, shape)
}

// NewLinear creates a Linear layer with Xavier-uniform weights and zero bias.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, rng)
}

// NewLinearFrom creates a Linear layer from explicit weight and bias values.
func NewLinearFrom(weight, bias []float32, inFeatures, outFeatures int) (*Linear, error) {
	return nn.NewLinearFrom(weight, bias, inFeatures, outFeatures)
}

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU { return nn.NewReLU() }

// NewLogSoftmax creates a LogSoftmax activation along dim.
func NewLogSoftmax(dim int) *LogSoftmax { return nn.NewLogSoftmax(dim) }

// NewSequential chains modules.
func NewSequential(modules ...Module) *Sequential { return nn.NewSequential(modules...) }

// NewNLLLoss creates the negative log-likelihood criterion.
func NewNLLLoss() *NLLLoss { return nn.NewNLLLoss() }

// NewCrossEntropyLoss creates the fused cross-entropy criterion.
func NewCrossEntropyLoss() *CrossEntropyLoss { return nn.NewCrossEntropyLoss() }

// Xavier returns Xavier-uniform initial values.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) []float32 {
	return nn.Xavier(fanIn, fanOut, shape, rng)
}
