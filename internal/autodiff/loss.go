package autodiff

// NLLLoss computes the negative log-likelihood -mean_b(logProbs[b, labels[b]]).
//
// logProbs must be [batch, classes] and labels must hold one class index in
// [0, classes) per example.
//
// Backward: ∂L/∂logProbs is -1/batch at each true-label position, 0 elsewhere.
func NLLLoss(logProbs *Tensor, labels []int) (*Tensor, error) {
	if err := validateLabels("nll_loss", logProbs, labels); err != nil {
		return nil, err
	}

	result := kernels.NLLLoss(logProbs.raw, labels)

	var node *Node
	if tracksGrad(logProbs) {
		node = &Node{
			kind:       KindNLLLoss,
			inputs:     []*Tensor{logProbs},
			labels:     append([]int(nil), labels...),
			inputShape: logProbs.Shape().Clone(),
		}
	}
	return newOutput(result, node), nil
}

// CrossEntropy fuses LogSoftmax over the class dimension with NLLLoss.
//
// Forward:
//
//	Loss = mean_b(-log_softmax(logits[b])[labels[b]])
//
// Backward:
//
//	∂L/∂logits = (softmax(logits) - one_hot(labels)) / batch
//
// The fused rule never materializes probabilities near 0 or 1 as logarithms,
// so it is more accurate than composing the two primitives.
func CrossEntropy(logits *Tensor, labels []int) (*Tensor, error) {
	if err := validateLabels("cross_entropy", logits, labels); err != nil {
		return nil, err
	}

	logProbs, probs := kernels.LogSoftmax(logits.raw, 1)
	result := kernels.NLLLoss(logProbs, labels)

	var node *Node
	if tracksGrad(logits) {
		node = &Node{
			kind:   KindCrossEntropy,
			inputs: []*Tensor{logits},
			probs:  probs,
			labels: append([]int(nil), labels...),
		}
	}
	return newOutput(result, node), nil
}

func validateLabels(op string, scores *Tensor, labels []int) error {
	shape := scores.Shape()
	if len(shape) != 2 {
		return shapeErrorf("%s: expected 2D input [batch, classes], got %v", op, shape)
	}
	batch, classes := shape[0], shape[1]
	if len(labels) != batch {
		return shapeErrorf("%s: got %d labels for a batch of %d", op, len(labels), batch)
	}
	for i, label := range labels {
		if label < 0 || label >= classes {
			return shapeErrorf("%s: label %d at index %d out of range [0, %d)", op, label, i, classes)
		}
	}
	return nil
}
