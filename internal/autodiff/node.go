package autodiff

import (
	"sync/atomic"
	"weak"

	"github.com/born-ml/minigrad/internal/tensor"
)

// Kind identifies the primitive an operation node applies.
type Kind int

// Supported primitives. The set is closed: every kind has exactly one backward
// rule, dispatched in Node.backward.
const (
	KindAdd Kind = iota
	KindScale
	KindLinear
	KindReLU
	KindPower
	KindMean
	KindSum
	KindLogSoftmax
	KindNLLLoss
	KindCrossEntropy
)

// String returns the primitive's name.
func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "Add"
	case KindScale:
		return "Scale"
	case KindLinear:
		return "Linear"
	case KindReLU:
		return "ReLU"
	case KindPower:
		return "Power"
	case KindMean:
		return "Mean"
	case KindSum:
		return "Sum"
	case KindLogSoftmax:
		return "LogSoftmax"
	case KindNLLLoss:
		return "NLLLoss"
	case KindCrossEntropy:
		return "CrossEntropy"
	default:
		return "Unknown"
	}
}

// nextNodeID hands out creation indices. Every input of a node was produced
// before the node itself, so creation order is a topological order.
var nextNodeID atomic.Uint64

// Node records one differentiable primitive applied during the forward pass.
//
// Node is a tagged union over Kind: only the fields the kind's backward rule
// reads are populated. Inputs are shared with other nodes, so ownership forms a
// DAG; the Go garbage collector frees a node once neither its output tensor nor
// any downstream node references it.
type Node struct {
	kind   Kind
	id     uint64
	inputs []*Tensor
	output weak.Pointer[Tensor]

	// Tensors whose values the backward rule reads, with their versions at
	// forward time. Linear: [input, weight]. Power: [input].
	saved         []*Tensor
	savedVersions []uint64

	mask       []bool            // ReLU: input > 0
	probs      *tensor.RawTensor // LogSoftmax, CrossEntropy: softmax of the input
	labels     []int             // NLLLoss, CrossEntropy
	inputShape tensor.Shape      // Mean, Sum, NLLLoss
	exponent   float32           // Power
	factor     float32           // Scale
	dim        int               // LogSoftmax
	hasBias    bool              // Linear

	released bool
}

// Kind returns the primitive this node applies.
func (n *Node) Kind() Kind {
	return n.kind
}

// ID returns the node's creation index.
func (n *Node) ID() uint64 {
	return n.id
}

// Inputs returns the node's input tensors in operand order.
func (n *Node) Inputs() []*Tensor {
	return n.inputs
}

// Released reports whether the node's saved state was freed by a backward pass.
func (n *Node) Released() bool {
	return n.released
}

// save records tensors the backward rule will read, with their current versions.
func (n *Node) save(ts ...*Tensor) {
	n.saved = ts
	n.savedVersions = make([]uint64, len(ts))
	for i, t := range ts {
		n.savedVersions[i] = t.version.n
	}
}

// checkSaved fails if a saved tensor was modified in place after the forward pass.
func (n *Node) checkSaved() error {
	for i, t := range n.saved {
		if t.version.n != n.savedVersions[i] {
			return graphErrorf("%s backward: a saved input of shape %v was modified in place (version %d, saved at %d)",
				n.kind, t.Shape(), t.version.n, n.savedVersions[i])
		}
	}
	return nil
}

// release drops everything the backward rule needed, keeping only the graph
// structure.
func (n *Node) release() {
	n.saved = nil
	n.savedVersions = nil
	n.mask = nil
	n.probs = nil
	n.labels = nil
	n.released = true
}

// tracksGrad reports whether an operation over inputs must be recorded.
func tracksGrad(inputs ...*Tensor) bool {
	if !IsGradEnabled() {
		return false
	}
	for _, in := range inputs {
		if in != nil && in.requiresGrad {
			return true
		}
	}
	return false
}

// newOutput wraps an operation's result. When node is non-nil the output
// tracks gradients and points back at node; otherwise it is a plain leaf.
func newOutput(raw *tensor.RawTensor, node *Node) *Tensor {
	out := FromRaw(raw, node != nil)
	if node != nil {
		node.id = nextNodeID.Add(1)
		node.output = weak.Make(out)
		out.node = node
	}
	return out
}
