package autodiff

import (
	"fmt"

	"github.com/born-ml/minigrad/internal/tensor"
)

// versionCounter counts in-place modifications of a buffer. It is shared between
// a tensor and its detached views so that a mutation through either one is seen
// by nodes that saved the other.
type versionCounter struct {
	n uint64
}

// Tensor is a float32 array with optional gradient tracking.
//
// A tensor created by the user is a leaf: it has no producing node. A tensor
// returned by an operation while tracking is enabled and at least one input
// requires gradients holds a reference to the Node that produced it; following
// those references backward materializes the computation graph.
//
// Invariants:
//   - the gradient buffer, once allocated, has the same shape as the values;
//   - a tensor with tracking disabled never allocates or accumulates a gradient.
type Tensor struct {
	raw          *tensor.RawTensor
	requiresGrad bool
	grad         *tensor.RawTensor // nil until the first accumulation
	node         *Node             // producing node, nil for leaves
	retainGrad   bool              // non-leaf that also keeps its gradient
	parameter    bool              // tracking permanently enabled
	version      *versionCounter
}

// NewTensor creates a leaf tensor from data, copied into a buffer of the given shape.
func NewTensor(data []float32, shape tensor.Shape, requiresGrad bool) (*Tensor, error) {
	raw, err := tensor.FromSlice(data, shape)
	if err != nil {
		return nil, shapeErrorf("new tensor: %v", err)
	}
	return FromRaw(raw, requiresGrad), nil
}

// NewParameter creates a leaf tensor whose gradient tracking can never be disabled.
func NewParameter(data []float32, shape tensor.Shape) (*Tensor, error) {
	t, err := NewTensor(data, shape, true)
	if err != nil {
		return nil, err
	}
	t.parameter = true
	return t, nil
}

// FromRaw wraps an existing buffer as a leaf tensor. The buffer is not copied.
func FromRaw(raw *tensor.RawTensor, requiresGrad bool) *Tensor {
	return &Tensor{
		raw:          raw,
		requiresGrad: requiresGrad,
		version:      &versionCounter{},
	}
}

// Zeros creates a zero-filled leaf tensor.
func Zeros(shape tensor.Shape, requiresGrad bool) (*Tensor, error) {
	raw, err := tensor.NewRaw(shape)
	if err != nil {
		return nil, shapeErrorf("zeros: %v", err)
	}
	return FromRaw(raw, requiresGrad), nil
}

// Scalar creates a rank-0 leaf tensor.
func Scalar(value float32, requiresGrad bool) *Tensor {
	raw := tensor.MustNewRaw(tensor.Shape{})
	raw.Data()[0] = value
	return FromRaw(raw, requiresGrad)
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() tensor.Shape {
	return t.raw.Shape()
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.raw.NumElements()
}

// Raw returns the underlying value buffer.
func (t *Tensor) Raw() *tensor.RawTensor {
	return t.raw
}

// Data returns the values (zero-copy).
//
// Writing through the returned slice bypasses version tracking; use
// UpdateInPlace for mutations that may race with a pending backward pass.
func (t *Tensor) Data() []float32 {
	return t.raw.Data()
}

// Item extracts the single value of a one-element tensor, typically a loss.
func (t *Tensor) Item() (float32, error) {
	if t.raw.NumElements() != 1 {
		return 0, shapeErrorf("item: tensor of shape %v has %d elements, want 1", t.Shape(), t.raw.NumElements())
	}
	return t.raw.Data()[0], nil
}

// RequiresGrad reports whether gradients are tracked for this tensor.
func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad
}

// SetRequiresGrad toggles tracking on a leaf tensor.
//
// Enabling is idempotent. Disabling fails with ErrInvalidState while a gradient
// buffer exists (release it first) or if the tensor is a parameter, and with
// ErrGraph on a non-leaf.
func (t *Tensor) SetRequiresGrad(requiresGrad bool) error {
	if requiresGrad == t.requiresGrad {
		return nil
	}
	if t.node != nil {
		return graphErrorf("set requires grad: only leaf tensors can change tracking")
	}
	if !requiresGrad {
		if t.parameter {
			return invalidStateErrorf("set requires grad: parameters always track gradients")
		}
		if t.grad != nil {
			return invalidStateErrorf("set requires grad: release the gradient buffer before disabling tracking")
		}
	}
	t.requiresGrad = requiresGrad
	return nil
}

// IsParameter reports whether the tensor was created with NewParameter.
func (t *Tensor) IsParameter() bool {
	return t.parameter
}

// IsLeaf reports whether the tensor has no producing node.
func (t *Tensor) IsLeaf() bool {
	return t.node == nil
}

// Node returns the producing node, or nil for a leaf.
func (t *Tensor) Node() *Node {
	return t.node
}

// Grad returns the gradient buffer, or nil if it was never allocated.
func (t *Tensor) Grad() *tensor.RawTensor {
	return t.grad
}

// RetainGrad asks Backward to also store the gradient of this non-leaf tensor.
// It is a no-op for leaves, which always keep their gradients.
func (t *Tensor) RetainGrad() error {
	if !t.requiresGrad {
		return invalidStateErrorf("retain grad: tensor does not require grad")
	}
	if t.node != nil {
		t.retainGrad = true
	}
	return nil
}

// AccumulateGradient adds delta element-wise into the gradient buffer,
// allocating a zero buffer first if needed.
func (t *Tensor) AccumulateGradient(delta *tensor.RawTensor) error {
	if !t.requiresGrad {
		return invalidStateErrorf("accumulate gradient: tensor does not require grad")
	}
	if !delta.Shape().Equal(t.Shape()) {
		return shapeErrorf("accumulate gradient: delta shape %v, tensor shape %v", delta.Shape(), t.Shape())
	}
	t.accumulate(delta)
	return nil
}

// accumulate is AccumulateGradient without the checks; the engine has already
// verified tracking and shape.
func (t *Tensor) accumulate(delta *tensor.RawTensor) {
	if t.grad == nil {
		t.grad = tensor.ZerosLike(t.raw)
	}
	kernels.AddInto(t.grad, delta)
}

// ClearGradient resets an allocated gradient buffer to zero. The buffer stays
// allocated; see ReleaseGradient.
func (t *Tensor) ClearGradient() {
	if t.grad != nil {
		t.grad.Fill(0)
	}
}

// ReleaseGradient deallocates the gradient buffer.
func (t *Tensor) ReleaseGradient() {
	t.grad = nil
}

// Detach returns a leaf tensor sharing the same values, with tracking disabled
// and no producing node. Operations on it are never recorded.
func (t *Tensor) Detach() *Tensor {
	return &Tensor{
		raw:     t.raw,
		version: t.version,
	}
}

// Version returns the number of in-place modifications made through UpdateInPlace.
func (t *Tensor) Version() uint64 {
	return t.version.n
}

// UpdateInPlace lets fn mutate the values and bumps the version counter.
//
// Nodes that saved this tensor for their backward rule detect the change and
// fail with ErrGraph instead of silently computing gradients from new values.
func (t *Tensor) UpdateInPlace(fn func(values []float32)) {
	fn(t.raw.Data())
	t.version.n++
}

// String returns a short description, not the contents.
func (t *Tensor) String() string {
	kind := "leaf"
	if t.node != nil {
		kind = t.node.kind.String()
	}
	return fmt.Sprintf("Tensor%v(requires_grad=%t, %s)", t.Shape(), t.requiresGrad, kind)
}
