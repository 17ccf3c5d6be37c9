package cpu

import (
	"github.com/born-ml/minigrad/internal/tensor"
)

// Sum reduces all elements into a rank-0 tensor.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustNewRaw(tensor.Shape{})
	var sum float32
	for _, v := range x.Data() {
		sum += v
	}
	result.Data()[0] = sum
	return result
}

// Mean reduces all elements into their arithmetic mean as a rank-0 tensor.
func (cpu *CPUBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.Sum(x)
	result.Data()[0] /= float32(x.NumElements())
	return result
}

// Broadcast fills a new tensor of the given shape with scale * grad[0], where
// grad is a single-element tensor. Backward of Sum (scale 1) and Mean (scale 1/n).
func (cpu *CPUBackend) Broadcast(grad *tensor.RawTensor, shape tensor.Shape, scale float32) *tensor.RawTensor {
	result := tensor.MustNewRaw(shape)
	result.Fill(grad.Data()[0] * scale)
	return result
}

// SumColumns sums a (M, N) tensor over its rows, producing a (N) tensor.
// This is the bias gradient of a Linear layer.
func (cpu *CPUBackend) SumColumns(x *tensor.RawTensor) *tensor.RawTensor {
	mustRank("sum_columns", x, 2)
	m, n := x.Shape()[0], x.Shape()[1]
	result := tensor.MustNewRaw(tensor.Shape{n})
	out, in := result.Data(), x.Data()
	for i := 0; i < m; i++ {
		for j, v := range in[i*n : (i+1)*n] {
			out[j] += v
		}
	}
	return result
}

// AddRowVectorInto adds the (N) vector v to every row of the (M, N) tensor x in place.
func (cpu *CPUBackend) AddRowVectorInto(x, v *tensor.RawTensor) {
	mustRank("add_row_vector", x, 2)
	mustRank("add_row_vector", v, 1)
	m, n := x.Shape()[0], x.Shape()[1]
	if v.Shape()[0] != n {
		panic("add_row_vector: vector length does not match row length")
	}
	data, bias := x.Data(), v.Data()
	for i := 0; i < m; i++ {
		row := data[i*n : (i+1)*n]
		for j := range row {
			row[j] += bias[j]
		}
	}
}
