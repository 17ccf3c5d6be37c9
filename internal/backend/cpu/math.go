package cpu

import (
	"github.com/chewxy/math32"

	"github.com/born-ml/minigrad/internal/tensor"
)

// Pow raises every element to the power n.
func (cpu *CPUBackend) Pow(x *tensor.RawTensor, n float32) *tensor.RawTensor {
	result := tensor.ZerosLike(x)
	out := result.Data()
	for i, v := range x.Data() {
		out[i] = powf(v, n)
	}
	return result
}

// PowBackward computes grad * n * x^(n-1).
func (cpu *CPUBackend) PowBackward(outputGrad, x *tensor.RawTensor, n float32) *tensor.RawTensor {
	mustSameShape("pow_backward", outputGrad, x)
	gradInput := tensor.ZerosLike(x)
	out, g := gradInput.Data(), outputGrad.Data()
	for i, v := range x.Data() {
		out[i] = g[i] * n * powf(v, n-1)
	}
	return gradInput
}

// powf special-cases small integral exponents so common cases such as x^2 and
// x^1 are exact.
func powf(x, n float32) float32 {
	switch n {
	case 0:
		return 1
	case 1:
		return x
	case 2:
		return x * x
	case 3:
		return x * x * x
	}
	return math32.Pow(x, n)
}
