package autodiff

import (
	"github.com/gomlx/exceptions"

	"github.com/born-ml/minigrad/internal/tensor"
)

// backward applies the node's local gradient rule: given ∂L/∂output it returns
// ∂L/∂input for each input, in operand order.
//
// A nil entry means no gradient flows to that input.
func (n *Node) backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if n.released {
		return nil, graphErrorf("%s backward: saved state already released; pass RetainGraph to backward more than once", n.kind)
	}
	if err := n.checkSaved(); err != nil {
		return nil, err
	}

	switch n.kind {
	case KindAdd:
		return []*tensor.RawTensor{outputGrad, outputGrad}, nil

	case KindScale:
		return []*tensor.RawTensor{kernels.Scale(outputGrad, n.factor)}, nil

	case KindLinear:
		input, weight := n.saved[0].raw, n.saved[1].raw
		grads := []*tensor.RawTensor{
			kernels.MatMul(outputGrad, weight),
			kernels.MatMulTransA(outputGrad, input),
		}
		if n.hasBias {
			grads = append(grads, kernels.SumColumns(outputGrad))
		}
		return grads, nil

	case KindReLU:
		return []*tensor.RawTensor{kernels.ReLUBackward(outputGrad, n.mask)}, nil

	case KindPower:
		return []*tensor.RawTensor{kernels.PowBackward(outputGrad, n.saved[0].raw, n.exponent)}, nil

	case KindMean:
		scale := 1 / float32(n.inputShape.NumElements())
		return []*tensor.RawTensor{kernels.Broadcast(outputGrad, n.inputShape, scale)}, nil

	case KindSum:
		return []*tensor.RawTensor{kernels.Broadcast(outputGrad, n.inputShape, 1)}, nil

	case KindLogSoftmax:
		return []*tensor.RawTensor{kernels.LogSoftmaxBackward(outputGrad, n.probs, n.dim)}, nil

	case KindNLLLoss:
		return []*tensor.RawTensor{kernels.NLLLossBackward(outputGrad, n.inputShape, n.labels)}, nil

	case KindCrossEntropy:
		return []*tensor.RawTensor{kernels.CrossEntropyBackward(outputGrad, n.probs, n.labels)}, nil
	}

	exceptions.Panicf("backward: no rule for node kind %d", int(n.kind))
	return nil, nil
}
