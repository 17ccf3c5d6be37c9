package cpu

import (
	"fmt"

	"github.com/born-ml/minigrad/internal/tensor"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N)
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	mustRank("matmul", a, 2)
	mustRank("matmul", b, 2)
	m, k := a.Shape()[0], a.Shape()[1]
	kAlt, n := b.Shape()[0], b.Shape()[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	result := tensor.MustNewRaw(tensor.Shape{m, n})
	c, aData, bData := result.Data(), a.Data(), b.Data()
	cpu.forRows(m, k*n, func(start, end int) {
		for i := start; i < end; i++ {
			out := c[i*n : (i+1)*n]
			for kIdx := 0; kIdx < k; kIdx++ {
				aik := aData[i*k+kIdx]
				for j, bkj := range bData[kIdx*n : (kIdx+1)*n] {
					out[j] += aik * bkj
				}
			}
		}
	})
	return result
}

// MatMulTransB computes a @ b^T without materializing the transpose.
// (M, K) @ (N, K)^T -> (M, N)
//
// This is the Linear forward shape: input (batch, in) times weight (out, in).
func (cpu *CPUBackend) MatMulTransB(a, b *tensor.RawTensor) *tensor.RawTensor {
	mustRank("matmul_trans_b", a, 2)
	mustRank("matmul_trans_b", b, 2)
	m, k := a.Shape()[0], a.Shape()[1]
	n, kAlt := b.Shape()[0], b.Shape()[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul_trans_b: shape mismatch [%d,%d] @ [%d,%d]^T", m, k, n, kAlt))
	}

	result := tensor.MustNewRaw(tensor.Shape{m, n})
	c, aData, bData := result.Data(), a.Data(), b.Data()
	cpu.forRows(m, k*n, func(start, end int) {
		for i := start; i < end; i++ {
			aRow := aData[i*k : (i+1)*k]
			for j := 0; j < n; j++ {
				bRow := bData[j*k : (j+1)*k]
				var sum float32
				for kIdx, v := range aRow {
					sum += v * bRow[kIdx]
				}
				c[i*n+j] = sum
			}
		}
	})
	return result
}

// MatMulTransA computes a^T @ b without materializing the transpose.
// (K, M)^T @ (K, N) -> (M, N)
//
// Used for weight gradients: grad_output (batch, out)^T times input (batch, in).
func (cpu *CPUBackend) MatMulTransA(a, b *tensor.RawTensor) *tensor.RawTensor {
	mustRank("matmul_trans_a", a, 2)
	mustRank("matmul_trans_a", b, 2)
	k, m := a.Shape()[0], a.Shape()[1]
	kAlt, n := b.Shape()[0], b.Shape()[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul_trans_a: shape mismatch [%d,%d]^T @ [%d,%d]", k, m, kAlt, n))
	}

	result := tensor.MustNewRaw(tensor.Shape{m, n})
	c, aData, bData := result.Data(), a.Data(), b.Data()
	cpu.forRows(m, k*n, func(start, end int) {
		for i := start; i < end; i++ {
			out := c[i*n : (i+1)*n]
			for kIdx := 0; kIdx < k; kIdx++ {
				aki := aData[kIdx*m+i]
				for j, v := range bData[kIdx*n : (kIdx+1)*n] {
					out[j] += aki * v
				}
			}
		}
	})
	return result
}

// Transpose2D returns the transpose of a 2D tensor as a new contiguous tensor.
func (cpu *CPUBackend) Transpose2D(a *tensor.RawTensor) *tensor.RawTensor {
	mustRank("transpose", a, 2)
	m, n := a.Shape()[0], a.Shape()[1]
	result := tensor.MustNewRaw(tensor.Shape{n, m})
	out, in := result.Data(), a.Data()
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			out[j*m+i] = in[i*n+j]
		}
	}
	return result
}
