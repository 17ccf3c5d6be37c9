package autodiff

// ReLU applies max(0, x) element-wise.
//
// Backward: ∂L/∂x = ∂L/∂out where x > 0, else 0. An input of exactly 0 gets a
// zero gradient.
func ReLU(x *Tensor) (*Tensor, error) {
	result, mask := kernels.ReLU(x.raw)

	var node *Node
	if tracksGrad(x) {
		node = &Node{kind: KindReLU, inputs: []*Tensor{x}, mask: mask}
	}
	return newOutput(result, node), nil
}
