package autodiff

import "sync/atomic"

// gradDisabled is the process-wide tracking switch. Its zero value means
// tracking is enabled.
var gradDisabled atomic.Bool

// IsGradEnabled reports whether operations currently record nodes.
func IsGradEnabled() bool {
	return !gradDisabled.Load()
}

// SetGradEnabled sets the tracking state and returns a function restoring the
// previous one. Restoring the previous state, rather than re-enabling, keeps
// nested scopes deterministic:
//
//	defer autodiff.SetGradEnabled(false)()
func SetGradEnabled(enabled bool) (restore func()) {
	previous := gradDisabled.Swap(!enabled)
	return func() {
		gradDisabled.Store(previous)
	}
}

// NoGrad disables tracking until the returned function is called.
//
//	func evaluate(model nn.Module, x *autodiff.Tensor) (*autodiff.Tensor, error) {
//	    defer autodiff.NoGrad()()
//	    return model.Forward(x)
//	}
func NoGrad() (restore func()) {
	return SetGradEnabled(false)
}

// WithNoGrad runs fn with tracking disabled. The previous state is restored when
// fn returns, including when it returns an error or panics.
func WithNoGrad(fn func() error) error {
	defer NoGrad()()
	return fn()
}
