package autodiff

// Sum reduces every element of x into a scalar.
//
// Backward: the incoming scalar gradient is broadcast to every element.
func Sum(x *Tensor) (*Tensor, error) {
	result := kernels.Sum(x.raw)

	var node *Node
	if tracksGrad(x) {
		node = &Node{kind: KindSum, inputs: []*Tensor{x}, inputShape: x.Shape().Clone()}
	}
	return newOutput(result, node), nil
}

// Mean reduces every element of x into their arithmetic mean.
//
// Backward: the incoming scalar gradient divided by the element count is
// broadcast to every element.
func Mean(x *Tensor) (*Tensor, error) {
	result := kernels.Mean(x.raw)

	var node *Node
	if tracksGrad(x) {
		node = &Node{kind: KindMean, inputs: []*Tensor{x}, inputShape: x.Shape().Clone()}
	}
	return newOutput(result, node), nil
}
