package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/minigrad/internal/autodiff"
	"github.com/born-ml/minigrad/internal/nn"
	"github.com/born-ml/minigrad/internal/optim"
	"github.com/born-ml/minigrad/internal/tensor"
)

func newParam(t *testing.T, name string, data []float32, shape tensor.Shape) *nn.Parameter {
	t.Helper()
	p, err := nn.NewParameter(name, data, shape)
	require.NoError(t, err)
	return p
}

func setGrad(t *testing.T, p *nn.Parameter, grad []float32) {
	t.Helper()
	raw, err := tensor.FromSlice(grad, p.Tensor().Shape())
	require.NoError(t, err)
	p.Tensor().ReleaseGradient()
	require.NoError(t, p.Tensor().AccumulateGradient(raw))
}

// TestNewSGD_Config tests configuration validation.
func TestNewSGD_Config(t *testing.T) {
	p := newParam(t, "w", []float32{1}, tensor.Shape{1})

	tests := []struct {
		name    string
		config  optim.SGDConfig
		wantErr bool
	}{
		{"plain", optim.SGDConfig{LR: 0.1}, false},
		{"momentum", optim.SGDConfig{LR: 0.01, Momentum: 0.9}, false},
		{"zero lr", optim.SGDConfig{LR: 0}, true},
		{"negative lr", optim.SGDConfig{LR: -1}, true},
		{"momentum one", optim.SGDConfig{LR: 0.1, Momentum: 1}, true},
		{"negative momentum", optim.SGDConfig{LR: 0.1, Momentum: -0.1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, err := optim.NewSGD([]*nn.Parameter{p}, tt.config)
			if tt.wantErr {
				assert.ErrorIs(t, err, optim.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.config.LR, opt.LR())
		})
	}
}

// TestSGD_Step tests p_new = p_old - lr * grad.
func TestSGD_Step(t *testing.T) {
	w := newParam(t, "w", []float32{1, 2, 3}, tensor.Shape{3})
	b := newParam(t, "b", []float32{0.5}, tensor.Shape{1})
	setGrad(t, w, []float32{0.5, -1, 2})
	setGrad(t, b, []float32{1})

	opt, err := optim.NewSGD([]*nn.Parameter{w, b}, optim.SGDConfig{LR: 0.5})
	require.NoError(t, err)
	require.NoError(t, opt.Step())

	assert.InDeltaSlice(t, []float32{0.75, 2.5, 2}, w.Tensor().Data(), 1e-6)
	assert.InDeltaSlice(t, []float32{0}, b.Tensor().Data(), 1e-6)
	assert.Equal(t, uint64(1), w.Tensor().Version())
	assert.Equal(t, []float32{0.5, -1, 2}, w.Grad().Data(), "step leaves gradients untouched")
}

// TestSGD_ZeroGrad tests that gradients become zero-filled, not released.
func TestSGD_ZeroGrad(t *testing.T) {
	w := newParam(t, "w", []float32{1, 2}, tensor.Shape{2})
	setGrad(t, w, []float32{3, 4})

	opt, err := optim.NewSGD([]*nn.Parameter{w}, optim.SGDConfig{LR: 0.1})
	require.NoError(t, err)
	opt.ZeroGrad()
	require.NotNil(t, w.Grad())
	assert.Equal(t, []float32{0, 0}, w.Grad().Data())

	// Stepping on zero gradients is a no-op.
	require.NoError(t, opt.Step())
	assert.Equal(t, []float32{1, 2}, w.Tensor().Data())
}

// TestSGD_MissingGradient tests that a parameter without gradient aborts the
// whole step before any update.
func TestSGD_MissingGradient(t *testing.T) {
	w := newParam(t, "w", []float32{1, 2}, tensor.Shape{2})
	b := newParam(t, "b", []float32{3}, tensor.Shape{1})
	setGrad(t, w, []float32{1, 1})

	opt, err := optim.NewSGD([]*nn.Parameter{w, b}, optim.SGDConfig{LR: 1})
	require.NoError(t, err)

	err = opt.Step()
	assert.ErrorIs(t, err, autodiff.ErrInvalidState)
	assert.Contains(t, err.Error(), "b")
	assert.Equal(t, []float32{1, 2}, w.Tensor().Data(), "no partial update")
}

// TestSGD_Momentum tests velocity accumulation across steps.
func TestSGD_Momentum(t *testing.T) {
	w := newParam(t, "w", []float32{1}, tensor.Shape{1})
	opt, err := optim.NewSGD([]*nn.Parameter{w}, optim.SGDConfig{LR: 0.1, Momentum: 0.5})
	require.NoError(t, err)

	setGrad(t, w, []float32{1})
	require.NoError(t, opt.Step()) // v = 1, w = 0.9
	assert.InDelta(t, 0.9, w.Tensor().Data()[0], 1e-6)

	require.NoError(t, opt.Step()) // v = 1.5, w = 0.75
	assert.InDelta(t, 0.75, w.Tensor().Data()[0], 1e-6)

	state := opt.StateDict()
	require.Contains(t, state, "velocity.0")
	assert.InDeltaSlice(t, []float32{1.5}, state["velocity.0"].Data(), 1e-6)

	// Restoring the state into a fresh optimizer continues the trajectory.
	w2 := newParam(t, "w", []float32{0.75}, tensor.Shape{1})
	opt2, err := optim.NewSGD([]*nn.Parameter{w2}, optim.SGDConfig{LR: 0.1, Momentum: 0.5})
	require.NoError(t, err)
	require.NoError(t, opt2.LoadStateDict(state))

	setGrad(t, w2, []float32{1})
	require.NoError(t, opt.Step())
	require.NoError(t, opt2.Step())
	assert.InDeltaSlice(t, w.Tensor().Data(), w2.Tensor().Data(), 1e-6)

	bad, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2})
	err = opt2.LoadStateDict(map[string]*tensor.RawTensor{"velocity.0": bad})
	assert.ErrorIs(t, err, autodiff.ErrShape)
}

// TestSGD_SetLR tests learning rate updates.
func TestSGD_SetLR(t *testing.T) {
	w := newParam(t, "w", []float32{1}, tensor.Shape{1})
	opt, err := optim.NewSGD([]*nn.Parameter{w}, optim.SGDConfig{LR: 0.1})
	require.NoError(t, err)

	require.NoError(t, opt.SetLR(0.01))
	assert.Equal(t, float32(0.01), opt.LR())
	assert.ErrorIs(t, opt.SetLR(0), optim.ErrInvalidConfig)
	assert.Equal(t, float32(0.01), opt.LR())
}

// TestSGD_TwoLayerNetwork runs one training step of
// Linear(4,3) -> ReLU -> Linear(3,2) -> LogSoftmax with NLL loss and checks the
// loss decreases.
func TestSGD_TwoLayerNetwork(t *testing.T) {
	l1, err := nn.NewLinearFrom(
		[]float32{
			0.2, -0.1, 0.3, 0.1,
			-0.2, 0.4, 0.1, -0.3,
			0.1, 0.2, -0.1, 0.3,
		},
		[]float32{0.1, 0.2, 0.3}, 4, 3)
	require.NoError(t, err)
	l2, err := nn.NewLinearFrom(
		[]float32{
			0.3, -0.2, 0.1,
			-0.1, 0.2, 0.4,
		},
		[]float32{0, 0}, 3, 2)
	require.NoError(t, err)
	model := nn.NewSequential(l1, nn.NewReLU(), l2, nn.NewLogSoftmax(1))
	criterion := nn.NewNLLLoss()

	x, err := autodiff.NewTensor([]float32{
		1, 0.5, -0.5, 1,
		-1, 1, 0.5, 0,
	}, tensor.Shape{2, 4}, false)
	require.NoError(t, err)
	labels := []int{0, 1}

	lossAt := func() *autodiff.Tensor {
		out, err := model.Forward(x)
		require.NoError(t, err)
		loss, err := criterion.Forward(out, labels)
		require.NoError(t, err)
		return loss
	}

	opt, err := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
	require.NoError(t, err)

	opt.ZeroGrad()
	loss := lossAt()
	before, err := loss.Item()
	require.NoError(t, err)
	require.NoError(t, autodiff.Backward(loss))
	for _, p := range model.Parameters() {
		require.NotNil(t, p.Grad(), p.Name())
	}
	require.NoError(t, opt.Step())

	after, err := lossAt().Item()
	require.NoError(t, err)
	assert.Less(t, after, before)
}
