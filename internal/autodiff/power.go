package autodiff

// Pow raises every element of x to the power n.
//
// Backward: ∂L/∂x = ∂L/∂out · n · x^(n-1)
func Pow(x *Tensor, n float32) (*Tensor, error) {
	result := kernels.Pow(x.raw, n)

	var node *Node
	if tracksGrad(x) {
		node = &Node{kind: KindPower, inputs: []*Tensor{x}, exponent: n}
		node.save(x)
	}
	return newOutput(result, node), nil
}
