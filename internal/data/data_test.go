package data_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/minigrad/internal/autodiff"
	"github.com/born-ml/minigrad/internal/data"
)

func smallDataset(t *testing.T) *data.Dataset {
	t.Helper()
	features := [][]float32{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}}
	d, err := data.NewDataset(features, []int{0, 1, 0, 1, 2}, 3)
	require.NoError(t, err)
	return d
}

func TestNewDataset(t *testing.T) {
	d := smallDataset(t)
	assert.Equal(t, 5, d.Len())
	assert.Equal(t, 2, d.NumFeatures())
	assert.Equal(t, 3, d.NumClasses())

	row, label := d.Example(3)
	assert.Equal(t, []float32{3, 3}, row)
	assert.Equal(t, 1, label)
}

func TestNewDataset_Errors(t *testing.T) {
	tests := []struct {
		name       string
		features   [][]float32
		labels     []int
		numClasses int
		wantErr    error
	}{
		{"empty", nil, nil, 2, autodiff.ErrShape},
		{"label count", [][]float32{{1}, {2}}, []int{0}, 2, autodiff.ErrShape},
		{"ragged rows", [][]float32{{1, 2}, {3}}, []int{0, 1}, 2, autodiff.ErrShape},
		{"label too large", [][]float32{{1}, {2}}, []int{0, 2}, 2, autodiff.ErrShape},
		{"negative label", [][]float32{{1}}, []int{-1}, 2, autodiff.ErrShape},
		{"no classes", [][]float32{{1}}, []int{0}, 0, data.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := data.NewDataset(tt.features, tt.labels, tt.numClasses)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestBatches_InOrder tests batching without shuffling, including the partial
// last batch.
func TestBatches_InOrder(t *testing.T) {
	batches, err := smallDataset(t).Batches(2, nil)
	require.NoError(t, err)
	require.Len(t, batches, 3)

	assert.Equal(t, []float32{0, 0, 1, 1}, batches[0].Inputs.Data())
	assert.Equal(t, []int{0, 1}, batches[0].Labels)
	assert.False(t, batches[0].Inputs.RequiresGrad())

	last := batches[2]
	assert.Equal(t, 1, last.Size())
	assert.Equal(t, []int{1, 2}, []int(last.Inputs.Shape()))
	assert.Equal(t, []int{2}, last.Labels)

	_, err = smallDataset(t).Batches(0, nil)
	assert.ErrorIs(t, err, data.ErrInvalidConfig)
}

// TestBatches_Shuffled tests that shuffling keeps every example exactly once and
// keeps rows aligned with their labels.
func TestBatches_Shuffled(t *testing.T) {
	d := smallDataset(t)
	batches, err := d.Batches(2, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	var seen []int
	for _, b := range batches {
		values := b.Inputs.Data()
		for i, label := range b.Labels {
			row := int(values[i*2])
			_, want := d.Example(row)
			assert.Equal(t, want, label, "row %d", row)
			seen = append(seen, row)
		}
	}
	sort.Ints(seen)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
}

func TestSplit(t *testing.T) {
	d := smallDataset(t)
	train, eval, err := d.Split(0.6, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 3, train.Len())
	assert.Equal(t, 2, eval.Len())
	assert.Equal(t, d.NumClasses(), eval.NumClasses())

	_, _, err = d.Split(1, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, data.ErrInvalidConfig)
	_, _, err = d.Split(0.01, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, data.ErrInvalidConfig)
}

func TestBlobs(t *testing.T) {
	d, err := data.Blobs(data.BlobsConfig{Samples: 90, Features: 4, Classes: 3, Seed: 3})
	require.NoError(t, err)
	assert.Equal(t, 90, d.Len())
	assert.Equal(t, 4, d.NumFeatures())

	counts := make([]int, 3)
	for i := range d.Len() {
		_, label := d.Example(i)
		counts[label]++
	}
	assert.Equal(t, []int{30, 30, 30}, counts)

	// Same seed, same data.
	again, err := data.Blobs(data.BlobsConfig{Samples: 90, Features: 4, Classes: 3, Seed: 3})
	require.NoError(t, err)
	for i := range d.Len() {
		a, _ := d.Example(i)
		b, _ := again.Example(i)
		assert.Equal(t, a, b)
	}
}

// TestBlobs_Separated tests that with a small spread every example is closest
// to the mean of its own class in the first two features.
func TestBlobs_Separated(t *testing.T) {
	const classes = 4
	d, err := data.Blobs(data.BlobsConfig{Samples: 200, Features: 2, Classes: classes, Radius: 5, Spread: 0.2, Seed: 11})
	require.NoError(t, err)

	means := make([][2]float32, classes)
	counts := make([]float32, classes)
	for i := range d.Len() {
		row, label := d.Example(i)
		means[label][0] += row[0]
		means[label][1] += row[1]
		counts[label]++
	}
	for k := range means {
		means[k][0] /= counts[k]
		means[k][1] /= counts[k]
	}

	for i := range d.Len() {
		row, label := d.Example(i)
		best, bestDist := -1, float32(0)
		for k, m := range means {
			dx, dy := row[0]-m[0], row[1]-m[1]
			if dist := dx*dx + dy*dy; best < 0 || dist < bestDist {
				best, bestDist = k, dist
			}
		}
		assert.Equal(t, label, best, "example %d", i)
	}
}

func TestBlobsConfig_Validate(t *testing.T) {
	_, err := data.Blobs(data.BlobsConfig{Features: 1})
	assert.ErrorIs(t, err, data.ErrInvalidConfig)
	_, err = data.Blobs(data.BlobsConfig{Classes: 1})
	assert.ErrorIs(t, err, data.ErrInvalidConfig)
	_, err = data.Blobs(data.BlobsConfig{Samples: 2, Classes: 3})
	assert.ErrorIs(t, err, data.ErrInvalidConfig)
	_, err = data.Blobs(data.BlobsConfig{Spread: -1})
	assert.ErrorIs(t, err, data.ErrInvalidConfig)
}
