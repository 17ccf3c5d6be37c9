package cpu

import (
	"github.com/chewxy/math32"

	"github.com/born-ml/minigrad/internal/tensor"
)

// LogSoftmax computes log(softmax(x)) along dim.
//
// Forward (for each slice along dim):
//
//	m = max(x)
//	log_softmax(x)_i = x_i - m - log(Σ_j exp(x_j - m))
//
// Subtracting the max keeps exp from overflowing. The softmax probabilities
// are returned too since both the LogSoftmax and the fused cross-entropy
// backward rules are expressed in terms of them.
func (cpu *CPUBackend) LogSoftmax(x *tensor.RawTensor, dim int) (logProbs, probs *tensor.RawTensor) {
	logProbs = tensor.ZerosLike(x)
	probs = tensor.ZerosLike(x)
	outer, size, inner := x.Shape().SplitAt(dim)
	in, lp, p := x.Data(), logProbs.Data(), probs.Data()

	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			base := o*size*inner + i

			maxVal := in[base]
			for k := 1; k < size; k++ {
				maxVal = math32.Max(maxVal, in[base+k*inner])
			}

			var sumExp float32
			for k := 0; k < size; k++ {
				idx := base + k*inner
				e := math32.Exp(in[idx] - maxVal)
				p[idx] = e
				sumExp += e
			}

			logSum := math32.Log(sumExp)
			for k := 0; k < size; k++ {
				idx := base + k*inner
				lp[idx] = in[idx] - maxVal - logSum
				p[idx] /= sumExp
			}
		}
	}
	return logProbs, probs
}

// Softmax computes exp(x_i - m) / Σ_j exp(x_j - m) along dim.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	_, probs := cpu.LogSoftmax(x, dim)
	return probs
}

// LogSoftmaxBackward computes grad - softmax * Σ grad along dim.
func (cpu *CPUBackend) LogSoftmaxBackward(outputGrad, probs *tensor.RawTensor, dim int) *tensor.RawTensor {
	mustSameShape("log_softmax_backward", outputGrad, probs)
	gradInput := tensor.ZerosLike(probs)
	outer, size, inner := probs.Shape().SplitAt(dim)
	g, p, out := outputGrad.Data(), probs.Data(), gradInput.Data()

	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			base := o*size*inner + i
			var sumGrad float32
			for k := 0; k < size; k++ {
				sumGrad += g[base+k*inner]
			}
			for k := 0; k < size; k++ {
				idx := base + k*inner
				out[idx] = g[idx] - p[idx]*sumGrad
			}
		}
	}
	return gradInput
}
