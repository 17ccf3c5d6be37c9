package autodiff

// Linear computes the affine transform output = input @ weight^T + bias.
//
// Shapes:
//   - input:  [batch, in]
//   - weight: [out, in]
//   - bias:   [out], or nil for no bias
//   - output: [batch, out]
//
// Backward:
//
//	∂L/∂input  = ∂L/∂out @ weight
//	∂L/∂weight = ∂L/∂out^T @ input
//	∂L/∂bias   = column sums of ∂L/∂out
func Linear(input, weight, bias *Tensor) (*Tensor, error) {
	inShape, wShape := input.Shape(), weight.Shape()
	if len(inShape) != 2 {
		return nil, shapeErrorf("linear: expected 2D input [batch, features], got %v", inShape)
	}
	if len(wShape) != 2 {
		return nil, shapeErrorf("linear: expected 2D weight [out, in], got %v", wShape)
	}
	if inShape[1] != wShape[1] {
		return nil, shapeErrorf("linear: input has %d features, weight expects %d", inShape[1], wShape[1])
	}
	if bias != nil {
		if bShape := bias.Shape(); len(bShape) != 1 || bShape[0] != wShape[0] {
			return nil, shapeErrorf("linear: bias shape %v, want (%d)", bShape, wShape[0])
		}
	}

	result := kernels.MatMulTransB(input.raw, weight.raw)
	if bias != nil {
		kernels.AddRowVectorInto(result, bias.raw)
	}

	var node *Node
	if tracksGrad(input, weight, bias) {
		node = &Node{kind: KindLinear, inputs: []*Tensor{input, weight}, hasBias: bias != nil}
		if bias != nil {
			node.inputs = append(node.inputs, bias)
		}
		node.save(input, weight)
	}
	return newOutput(result, node), nil
}
