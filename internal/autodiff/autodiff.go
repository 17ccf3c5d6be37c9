// Package autodiff implements tape-based reverse-mode automatic differentiation.
//
// Architecture:
//   - Tensor: float32 values with an optional gradient buffer and a reference
//     to the Node that produced it.
//   - Node: one recorded primitive (Linear, ReLU, Power, Mean, LogSoftmax, ...),
//     a tagged union over Kind holding only what its backward rule needs.
//   - Tape: the nodes reachable backward from an output, in reverse topological
//     order. It is materialized on demand from node back-references.
//   - Backward: walks the tape, accumulating gradients into leaf tensors.
//
// Nodes are created while computing (define-by-run), and only when tracking is
// enabled and at least one input requires gradients.
//
// Usage:
//
//	x, _ := autodiff.NewTensor([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, true)
//	sq, _ := autodiff.Pow(x, 2)
//	loss, _ := autodiff.Mean(sq)
//	if err := autodiff.Backward(loss); err != nil {
//	    return err
//	}
//	fmt.Println(x.Grad().Data()) // [0.5 1 1.5 2]
package autodiff

import (
	"github.com/born-ml/minigrad/internal/backend/cpu"
)

// kernels executes every forward and backward computation.
var kernels = cpu.New()
