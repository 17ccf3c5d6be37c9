package autodiff

// Add performs element-wise addition of two tensors with identical shapes.
//
// Backward:
//
//	∂L/∂a = ∂L/∂out, ∂L/∂b = ∂L/∂out
func Add(a, b *Tensor) (*Tensor, error) {
	if !a.Shape().Equal(b.Shape()) {
		return nil, shapeErrorf("add: operand shapes %v and %v differ", a.Shape(), b.Shape())
	}

	result := kernels.Add(a.raw, b.raw)

	var node *Node
	if tracksGrad(a, b) {
		node = &Node{kind: KindAdd, inputs: []*Tensor{a, b}}
	}
	return newOutput(result, node), nil
}

// Scale multiplies every element of x by the constant c.
//
// Backward: ∂L/∂x = c · ∂L/∂out
func Scale(x *Tensor, c float32) (*Tensor, error) {
	result := kernels.Scale(x.raw, c)

	var node *Node
	if tracksGrad(x) {
		node = &Node{kind: KindScale, inputs: []*Tensor{x}, factor: c}
	}
	return newOutput(result, node), nil
}
