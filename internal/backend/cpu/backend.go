// Package cpu implements the CPU kernels used by the autodiff engine.
//
// Kernels operate on tensor.RawTensor values whose shapes the caller has
// already validated; a shape mismatch reaching a kernel is a programming error
// and panics.
package cpu

import (
	"fmt"

	"github.com/born-ml/minigrad/internal/parallel"
	"github.com/born-ml/minigrad/internal/tensor"
)

// minParallelWork is the number of multiply-adds below which matrix kernels
// stay on the calling goroutine.
const minParallelWork = 1 << 16

// CPUBackend implements tensor operations on CPU.
type CPUBackend struct {
	parallel parallel.Config
}

// New creates a new CPU backend that splits large matrix products across
// GOMAXPROCS goroutines.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{parallel: cfg}
}

// forRows runs f over row ranges of an m-row output, in parallel when the
// total work is large enough. Each output row is written by exactly one call.
func (cpu *CPUBackend) forRows(m, workPerRow int, f func(start, end int)) {
	if m*workPerRow < minParallelWork {
		f(0, m)
		return
	}
	parallel.ForRange(m, cpu.parallel, f)
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Add performs element-wise addition of two tensors with identical shapes.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	mustSameShape("add", a, b)
	result := tensor.ZerosLike(a)
	out, aData, bData := result.Data(), a.Data(), b.Data()
	for i := range out {
		out[i] = aData[i] + bData[i]
	}
	return result
}

// AddInto accumulates src into dst in place: dst += src.
func (cpu *CPUBackend) AddInto(dst, src *tensor.RawTensor) {
	mustSameShape("add_into", dst, src)
	d, s := dst.Data(), src.Data()
	for i := range d {
		d[i] += s[i]
	}
}

// AddScaledInto performs dst += alpha * src in place.
func (cpu *CPUBackend) AddScaledInto(dst, src *tensor.RawTensor, alpha float32) {
	mustSameShape("add_scaled_into", dst, src)
	d, s := dst.Data(), src.Data()
	for i := range d {
		d[i] += alpha * s[i]
	}
}

// Scale returns a new tensor with every element multiplied by s.
func (cpu *CPUBackend) Scale(a *tensor.RawTensor, s float32) *tensor.RawTensor {
	result := tensor.ZerosLike(a)
	out := result.Data()
	for i, v := range a.Data() {
		out[i] = v * s
	}
	return result
}

func mustSameShape(op string, a, b *tensor.RawTensor) {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, a.Shape(), b.Shape()))
	}
}

func mustRank(op string, r *tensor.RawTensor, rank int) {
	if len(r.Shape()) != rank {
		panic(fmt.Sprintf("%s: expected %dD tensor, got shape %v", op, rank, r.Shape()))
	}
}
