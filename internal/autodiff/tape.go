package autodiff

import (
	"github.com/gomlx/exceptions"

	"github.com/born-ml/minigrad/internal/tensor"
)

// Tape is the computation graph reachable backward from one output tensor,
// materialized as a node list in reverse topological order: every node comes
// after all the nodes consuming its output.
//
// Usage:
//
//	tape, err := autodiff.NewTape(loss)
//	for _, node := range tape.Nodes() {
//	    fmt.Println(node.Kind())
//	}
type Tape struct {
	root  *Node
	nodes []*Node
}

// NewTape walks producer references from output and orders the reachable nodes.
//
// Ordering uses Kahn's algorithm over per-pass consumer counts: a node is
// emitted only once every reachable node consuming its output has been emitted.
// Among ready nodes the most recently created one goes first.
func NewTape(output *Tensor) (*Tape, error) {
	if output.node == nil {
		return nil, graphErrorf("tape: tensor %v has no producing node", output.Shape())
	}
	root := output.node

	// pending[n] counts the reachable edges from consumers into n's output.
	pending := map[*Node]int{root: 0}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, producer := range producers(n) {
			if _, seen := pending[producer]; !seen {
				stack = append(stack, producer)
			}
			pending[producer]++
		}
	}

	nodes := make([]*Node, 0, len(pending))
	ready := []*Node{root}
	for len(ready) > 0 {
		n := popNewest(&ready)
		nodes = append(nodes, n)
		for _, producer := range producers(n) {
			pending[producer]--
			if pending[producer] == 0 {
				ready = append(ready, producer)
			}
		}
	}
	if len(nodes) != len(pending) {
		// Unreachable for graphs built by this package: outputs are always new
		// tensors, so a node can never feed itself.
		return nil, graphErrorf("tape: cycle detected, ordered %d of %d nodes", len(nodes), len(pending))
	}

	return &Tape{root: root, nodes: nodes}, nil
}

// popNewest removes and returns the ready node with the highest creation id.
func popNewest(ready *[]*Node) *Node {
	r := *ready
	best := 0
	for i := 1; i < len(r); i++ {
		if r[i].id > r[best].id {
			best = i
		}
	}
	n := r[best]
	r[best] = r[len(r)-1]
	*ready = r[:len(r)-1]
	return n
}

// producers returns, for each tracked non-leaf input of n, its producing node.
// An input used twice appears twice.
func producers(n *Node) []*Node {
	var result []*Node
	for _, in := range n.inputs {
		if in.requiresGrad && in.node != nil {
			result = append(result, in.node)
		}
	}
	return result
}

// Nodes returns the nodes in reverse topological order, starting at the output's
// producer.
func (t *Tape) Nodes() []*Node {
	return t.nodes
}

// Len returns the number of recorded nodes.
func (t *Tape) Len() int {
	return len(t.nodes)
}

// Kinds returns the kind of every node, in tape order.
func (t *Tape) Kinds() []Kind {
	kinds := make([]Kind, len(t.nodes))
	for i, n := range t.nodes {
		kinds[i] = n.kind
	}
	return kinds
}

// backwardConfig holds Backward options.
type backwardConfig struct {
	seed        *tensor.RawTensor
	retainGraph bool
}

// BackwardOption configures Backward.
type BackwardOption func(*backwardConfig)

// WithGrad seeds the backward pass with an explicit output gradient instead of
// 1. It is required for outputs with more than one element.
func WithGrad(seed *tensor.RawTensor) BackwardOption {
	return func(c *backwardConfig) {
		c.seed = seed
	}
}

// RetainGraph keeps saved intermediates after the pass so the same graph can be
// differentiated again.
func RetainGraph() BackwardOption {
	return func(c *backwardConfig) {
		c.retainGraph = true
	}
}

// Backward computes gradients of output with respect to every tracked leaf that
// contributed to it, accumulating them into the leaves' gradient buffers.
//
// Algorithm:
//  1. Seed ∂L/∂output with 1 (or the WithGrad seed).
//  2. Visit nodes in reverse topological order; a node runs only after every
//     consumer of its output contributed, so values reused in several places
//     receive the full sum first.
//  3. Apply each node's rule and route input gradients: into the per-pass map for
//     non-leaf inputs, into the gradient buffer for leaves.
//
// Fails with ErrGraph for an untracked output, a leaf output, a non-scalar output
// without a seed, or a graph already released by a previous pass; with ErrShape
// for a seed of the wrong shape.
func Backward(output *Tensor, opts ...BackwardOption) error {
	var cfg backwardConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if !output.requiresGrad {
		return graphErrorf("backward: tensor %v does not require grad", output.Shape())
	}
	if output.node == nil {
		return graphErrorf("backward: tensor %v is a leaf; backward starts from a producing node", output.Shape())
	}

	seed := cfg.seed
	switch {
	case seed == nil && output.NumElements() != 1:
		return graphErrorf("backward: output %v is not a scalar; pass WithGrad to seed it", output.Shape())
	case seed == nil:
		seed = tensor.ZerosLike(output.raw)
		seed.Fill(1)
	case !seed.Shape().Equal(output.Shape()):
		return shapeErrorf("backward: seed shape %v, output shape %v", seed.Shape(), output.Shape())
	default:
		seed = seed.Clone()
	}

	tape, err := NewTape(output)
	if err != nil {
		return err
	}
	// Validate the whole graph up front so a failing pass leaves no partial
	// gradients behind.
	for _, n := range tape.nodes {
		if n.released {
			return graphErrorf("backward: %s node already released by a previous pass; use RetainGraph", n.kind)
		}
		if err := n.checkSaved(); err != nil {
			return err
		}
	}

	// Gradient rules run on raw buffers, but disable tracking anyway so nothing
	// a rule touches can record nodes.
	defer NoGrad()()

	if caught := exceptions.TryCatch[error](func() {
		err = tape.run(seed, cfg.retainGraph)
	}); caught != nil {
		return graphErrorf("backward: %v", caught)
	}
	return err
}

// run executes the backward pass over the ordered nodes.
func (t *Tape) run(seed *tensor.RawTensor, retainGraph bool) error {
	grads := map[*Node]*tensor.RawTensor{t.root: seed}

	for _, n := range t.nodes {
		outputGrad := grads[n]
		delete(grads, n)

		if out := n.output.Value(); out != nil && out.retainGrad {
			out.accumulate(outputGrad)
		}

		inputGrads, err := n.backward(outputGrad)
		if err != nil {
			return err
		}

		for i, in := range n.inputs {
			if i >= len(inputGrads) || inputGrads[i] == nil || !in.requiresGrad {
				continue
			}
			grad := inputGrads[i]
			if !grad.Shape().Equal(in.Shape()) {
				exceptions.Panicf("%s rule produced gradient %v for input %d of shape %v",
					n.kind, grad.Shape(), i, in.Shape())
			}

			if in.node == nil {
				in.accumulate(grad)
				continue
			}
			if existing, ok := grads[in.node]; ok {
				// Rules may return their incoming gradient unchanged (Add), so
				// never accumulate into a buffer another input might share.
				grads[in.node] = kernels.Add(existing, grad)
			} else {
				grads[in.node] = grad
			}
		}

		if !retainGraph {
			n.release()
		}
	}
	return nil
}
