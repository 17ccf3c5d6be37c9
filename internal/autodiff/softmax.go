package autodiff

// LogSoftmax computes log-probabilities along dim; negative dims count from
// the end, so -1 is the last dimension.
//
// Forward uses the shift-by-max technique:
//
//	log_softmax(x)_i = x_i - max(x) - log(Σ_j exp(x_j - max(x)))
//
// Backward:
//
//	∂L/∂x = ∂L/∂out - softmax(x) · Σ_dim ∂L/∂out
func LogSoftmax(x *Tensor, dim int) (*Tensor, error) {
	d, err := x.Shape().NormalizeDim(dim)
	if err != nil {
		return nil, shapeErrorf("log_softmax: %v", err)
	}

	logProbs, probs := kernels.LogSoftmax(x.raw, d)

	var node *Node
	if tracksGrad(x) {
		node = &Node{kind: KindLogSoftmax, inputs: []*Tensor{x}, probs: probs, dim: d}
	}
	return newOutput(logProbs, node), nil
}
