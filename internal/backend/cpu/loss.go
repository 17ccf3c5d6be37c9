package cpu

import (
	"github.com/born-ml/minigrad/internal/tensor"
)

// NLLLoss computes -mean_b(logProbs[b, labels[b]]) as a rank-0 tensor.
//
// logProbs has shape (batch, classes); labels has one in-range class index per row.
func (cpu *CPUBackend) NLLLoss(logProbs *tensor.RawTensor, labels []int) *tensor.RawTensor {
	mustRank("nll_loss", logProbs, 2)
	batch, classes := logProbs.Shape()[0], logProbs.Shape()[1]
	if len(labels) != batch {
		panic("nll_loss: labels length does not match batch size")
	}

	data := logProbs.Data()
	var sum float32
	for b, label := range labels {
		sum += data[b*classes+label]
	}

	result := tensor.MustNewRaw(tensor.Shape{})
	result.Data()[0] = -sum / float32(batch)
	return result
}

// NLLLossBackward scatters -grad/batch into the true-label positions and zero
// elsewhere.
func (cpu *CPUBackend) NLLLossBackward(outputGrad *tensor.RawTensor, shape tensor.Shape, labels []int) *tensor.RawTensor {
	batch, classes := shape[0], shape[1]
	gradInput := tensor.MustNewRaw(shape)
	out := gradInput.Data()
	scale := -outputGrad.Data()[0] / float32(batch)
	for b, label := range labels {
		out[b*classes+label] = scale
	}
	return gradInput
}

// CrossEntropyBackward computes grad * (softmax - one_hot(labels)) / batch.
//
// This is the fused LogSoftmax + NLLLoss rule; it never materializes
// log-probabilities, so it stays accurate when probabilities approach 0 or 1.
func (cpu *CPUBackend) CrossEntropyBackward(outputGrad, probs *tensor.RawTensor, labels []int) *tensor.RawTensor {
	mustRank("cross_entropy_backward", probs, 2)
	batch, classes := probs.Shape()[0], probs.Shape()[1]
	gradInput := tensor.ZerosLike(probs)
	p, out := probs.Data(), gradInput.Data()
	scale := outputGrad.Data()[0] / float32(batch)

	for b := 0; b < batch; b++ {
		for c := 0; c < classes; c++ {
			idx := b*classes + c
			grad := p[idx]
			if c == labels[b] {
				grad -= 1
			}
			out[idx] = scale * grad
		}
	}
	return gradInput
}
