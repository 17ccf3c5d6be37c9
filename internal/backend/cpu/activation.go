package cpu

import (
	"github.com/born-ml/minigrad/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
//
// It also returns the positive mask (x > 0) the backward rule needs, so the
// autodiff node does not have to keep the whole input alive.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) (*tensor.RawTensor, []bool) {
	result := tensor.ZerosLike(x)
	out := result.Data()
	mask := make([]bool, x.NumElements())
	for i, val := range x.Data() {
		if val > 0 {
			out[i] = val
			mask[i] = true
		}
	}
	return result, mask
}

// ReLUBackward routes gradient through positions where the input was strictly
// positive. An input of exactly 0 receives zero gradient.
func (cpu *CPUBackend) ReLUBackward(outputGrad *tensor.RawTensor, mask []bool) *tensor.RawTensor {
	gradInput := tensor.ZerosLike(outputGrad)
	in, out := outputGrad.Data(), gradInput.Data()
	for i, positive := range mask {
		if positive {
			out[i] = in[i]
		}
	}
	return gradInput
}
