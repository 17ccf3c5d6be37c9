// Package data provides in-memory classification datasets and mini-batch
// iteration for training.
package data

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/born-ml/minigrad/internal/autodiff"
	"github.com/born-ml/minigrad/internal/tensor"
)

// ErrInvalidConfig reports a dataset or generator configuration outside its
// valid range.
var ErrInvalidConfig = errors.New("invalid data config")

// Batch is one mini-batch: a (batch, features) input tensor that does not track
// gradients, and one class label per row.
type Batch struct {
	Inputs *autodiff.Tensor
	Labels []int
}

// Size returns the number of examples in the batch.
func (b Batch) Size() int {
	return len(b.Labels)
}

// Dataset is an in-memory labeled dataset stored row-major.
type Dataset struct {
	features    []float32 // len == n * numFeatures
	labels      []int
	numFeatures int
	numClasses  int
}

// NewDataset copies features and labels into a Dataset.
//
// Every row must have the same non-zero length, there must be one label per
// row, and every label must be in [0, numClasses). Violations wrap
// autodiff.ErrShape.
func NewDataset(features [][]float32, labels []int, numClasses int) (*Dataset, error) {
	if len(features) == 0 {
		return nil, errors.Wrap(autodiff.ErrShape, "dataset: no examples")
	}
	if len(features) != len(labels) {
		return nil, errors.Wrapf(autodiff.ErrShape, "dataset: %d feature rows but %d labels", len(features), len(labels))
	}
	if numClasses <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "dataset: numClasses must be positive, got %d", numClasses)
	}

	numFeatures := len(features[0])
	if numFeatures == 0 {
		return nil, errors.Wrap(autodiff.ErrShape, "dataset: rows have no features")
	}
	d := &Dataset{
		features:    make([]float32, 0, len(features)*numFeatures),
		labels:      make([]int, len(labels)),
		numFeatures: numFeatures,
		numClasses:  numClasses,
	}
	for i, row := range features {
		if len(row) != numFeatures {
			return nil, errors.Wrapf(autodiff.ErrShape, "dataset: row %d has %d features, expected %d", i, len(row), numFeatures)
		}
		d.features = append(d.features, row...)
	}
	for i, label := range labels {
		if label < 0 || label >= numClasses {
			return nil, errors.Wrapf(autodiff.ErrShape, "dataset: label %d at row %d out of range [0, %d)", label, i, numClasses)
		}
	}
	copy(d.labels, labels)
	return d, nil
}

// Len returns the number of examples.
func (d *Dataset) Len() int {
	return len(d.labels)
}

// NumFeatures returns the length of each feature row.
func (d *Dataset) NumFeatures() int {
	return d.numFeatures
}

// NumClasses returns the number of classes labels are drawn from.
func (d *Dataset) NumClasses() int {
	return d.numClasses
}

// Example returns a copy of row i and its label.
func (d *Dataset) Example(i int) ([]float32, int) {
	row := make([]float32, d.numFeatures)
	copy(row, d.features[i*d.numFeatures:(i+1)*d.numFeatures])
	return row, d.labels[i]
}

// Batches splits the dataset into mini-batches of batchSize examples; the last
// batch holds the remainder and may be smaller.
//
// With a non-nil rng the examples are shuffled first, otherwise they keep
// their order.
func (d *Dataset) Batches(batchSize int, rng *rand.Rand) ([]Batch, error) {
	if batchSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "batch size must be positive, got %d", batchSize)
	}

	order := make([]int, d.Len())
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	batches := make([]Batch, 0, (len(order)+batchSize-1)/batchSize)
	for start := 0; start < len(order); start += batchSize {
		indices := order[start:min(start+batchSize, len(order))]
		batch, err := d.gather(indices)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// All returns the whole dataset as a single batch, in order.
func (d *Dataset) All() (Batch, error) {
	order := make([]int, d.Len())
	for i := range order {
		order[i] = i
	}
	return d.gather(order)
}

// gather builds a batch from the given example indices.
func (d *Dataset) gather(indices []int) (Batch, error) {
	values := make([]float32, 0, len(indices)*d.numFeatures)
	labels := make([]int, len(indices))
	for i, idx := range indices {
		values = append(values, d.features[idx*d.numFeatures:(idx+1)*d.numFeatures]...)
		labels[i] = d.labels[idx]
	}
	inputs, err := autodiff.NewTensor(values, tensor.Shape{len(indices), d.numFeatures}, false)
	if err != nil {
		return Batch{}, err
	}
	return Batch{Inputs: inputs, Labels: labels}, nil
}

// Split shuffles the examples with rng and splits them into two datasets, the
// first holding round(fraction * Len()) examples. Both parts must be non-empty.
func (d *Dataset) Split(fraction float64, rng *rand.Rand) (*Dataset, *Dataset, error) {
	if !(fraction > 0 && fraction < 1) {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "split fraction must be in (0, 1), got %g", fraction)
	}
	n := d.Len()
	cut := int(fraction*float64(n) + 0.5)
	if cut == 0 || cut == n {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "split of %d examples at %g leaves an empty part", n, fraction)
	}

	order := rng.Perm(n)
	return d.subset(order[:cut]), d.subset(order[cut:]), nil
}

// subset copies the given examples into a new Dataset.
func (d *Dataset) subset(indices []int) *Dataset {
	sub := &Dataset{
		features:    make([]float32, 0, len(indices)*d.numFeatures),
		labels:      make([]int, len(indices)),
		numFeatures: d.numFeatures,
		numClasses:  d.numClasses,
	}
	for i, idx := range indices {
		sub.features = append(sub.features, d.features[idx*d.numFeatures:(idx+1)*d.numFeatures]...)
		sub.labels[i] = d.labels[idx]
	}
	return sub
}
