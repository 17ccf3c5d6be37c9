package nn

import (
	"github.com/born-ml/minigrad/internal/autodiff"
)

// Loss maps model outputs and integer class labels to a scalar loss tensor.
type Loss interface {
	Forward(output *autodiff.Tensor, labels []int) (*autodiff.Tensor, error)
}

// NLLLoss is the negative log-likelihood criterion over log-probabilities.
// Pair it with a model ending in LogSoftmax(1).
//
//	Loss = -mean_b(log_probs[b, labels[b]])
type NLLLoss struct{}

// NewNLLLoss creates a new NLLLoss criterion.
func NewNLLLoss() *NLLLoss {
	return &NLLLoss{}
}

// Forward computes the loss for log-probabilities of shape [batch, classes].
func (l *NLLLoss) Forward(logProbs *autodiff.Tensor, labels []int) (*autodiff.Tensor, error) {
	return autodiff.NLLLoss(logProbs, labels)
}

// CrossEntropyLoss computes cross-entropy loss for multi-class classification
// directly from raw logits, as one fused node.
//
// Mathematical Formulation:
//
//	Loss = -mean_b(log_softmax(logits[b])[labels[b]])
//
// Gradient:
//
//	∂L/∂logits = (softmax(logits) - y_one_hot) / batch_size
//
// Equivalent to LogSoftmax(1) followed by NLLLoss, but more accurate because
// probabilities near 0 or 1 are never materialized as logarithms.
type CrossEntropyLoss struct{}

// NewCrossEntropyLoss creates a new cross-entropy criterion.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward computes the loss for logits of shape [batch, classes].
func (l *CrossEntropyLoss) Forward(logits *autodiff.Tensor, labels []int) (*autodiff.Tensor, error) {
	return autodiff.CrossEntropy(logits, labels)
}
