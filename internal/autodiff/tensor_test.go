package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/minigrad/internal/autodiff"
	"github.com/born-ml/minigrad/internal/tensor"
)

func TestNewTensor_InvalidShape(t *testing.T) {
	_, err := autodiff.NewTensor([]float32{1, 2, 3}, tensor.Shape{2, 2}, false)
	assert.ErrorIs(t, err, autodiff.ErrShape)

	_, err = autodiff.NewTensor(nil, tensor.Shape{0}, false)
	assert.ErrorIs(t, err, autodiff.ErrShape)
}

func TestAccumulateGradient(t *testing.T) {
	x := mustTensor(t, []float32{1, 2}, tensor.Shape{2}, true)
	assert.Nil(t, x.Grad(), "gradient buffer is allocated lazily")

	delta, err := tensor.FromSlice([]float32{0.5, -1}, tensor.Shape{2})
	require.NoError(t, err)
	require.NoError(t, x.AccumulateGradient(delta))
	require.NoError(t, x.AccumulateGradient(delta))
	assert.Equal(t, []float32{1, -2}, x.Grad().Data())

	wrong, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 2})
	require.NoError(t, err)
	assert.ErrorIs(t, x.AccumulateGradient(wrong), autodiff.ErrShape)

	x.ClearGradient()
	require.NotNil(t, x.Grad())
	assert.Equal(t, []float32{0, 0}, x.Grad().Data())

	x.ReleaseGradient()
	assert.Nil(t, x.Grad())
}

func TestAccumulateGradient_Untracked(t *testing.T) {
	x := mustTensor(t, []float32{1, 2}, tensor.Shape{2}, false)
	delta, err := tensor.FromSlice([]float32{1, 1}, tensor.Shape{2})
	require.NoError(t, err)

	assert.ErrorIs(t, x.AccumulateGradient(delta), autodiff.ErrInvalidState)
	assert.Nil(t, x.Grad())
}

func TestSetRequiresGrad(t *testing.T) {
	x := mustTensor(t, []float32{1}, tensor.Shape{1}, false)
	require.NoError(t, x.SetRequiresGrad(true))
	require.NoError(t, x.SetRequiresGrad(true), "enabling is idempotent")
	assert.True(t, x.RequiresGrad())

	delta, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1})
	require.NoError(t, x.AccumulateGradient(delta))
	assert.ErrorIs(t, x.SetRequiresGrad(false), autodiff.ErrInvalidState)

	x.ReleaseGradient()
	require.NoError(t, x.SetRequiresGrad(false))
	assert.False(t, x.RequiresGrad())

	y, err := autodiff.Pow(mustTensor(t, []float32{1}, tensor.Shape{1}, true), 2)
	require.NoError(t, err)
	assert.ErrorIs(t, y.SetRequiresGrad(false), autodiff.ErrGraph)
}

func TestParameter_AlwaysTracks(t *testing.T) {
	p, err := autodiff.NewParameter([]float32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	assert.True(t, p.IsParameter())
	assert.True(t, p.RequiresGrad())
	assert.ErrorIs(t, p.SetRequiresGrad(false), autodiff.ErrInvalidState)
}

func TestDetach(t *testing.T) {
	x := mustTensor(t, []float32{1, 2}, tensor.Shape{2}, true)
	y, err := autodiff.Pow(x, 2)
	require.NoError(t, err)

	d := y.Detach()
	assert.True(t, d.IsLeaf())
	assert.False(t, d.RequiresGrad())
	assert.Equal(t, y.Data(), d.Data())

	// Values are shared, and so is the version counter.
	x.Detach().UpdateInPlace(func(v []float32) { v[0] = 3 })
	assert.Equal(t, float32(3), x.Data()[0])
	assert.Equal(t, uint64(1), x.Version())

	z, err := autodiff.Sum(d)
	require.NoError(t, err)
	assert.ErrorIs(t, autodiff.Backward(z), autodiff.ErrGraph)
}

func TestItem(t *testing.T) {
	v, err := autodiff.Scalar(2.5, false).Item()
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), v)

	_, err = mustTensor(t, []float32{1, 2}, tensor.Shape{2}, false).Item()
	assert.ErrorIs(t, err, autodiff.ErrShape)
}
