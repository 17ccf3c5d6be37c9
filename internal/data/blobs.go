package data

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// BlobsConfig configures the synthetic Gaussian-blob generator.
//
// Zero values select the defaults noted on each field.
type BlobsConfig struct {
	Samples  int     // Total number of examples (default: 300)
	Features int     // Feature dimension, at least 2 (default: 4)
	Classes  int     // Number of clusters (default: 3)
	Radius   float32 // Distance of each cluster center from the origin (default: 3)
	Spread   float32 // Standard deviation around each center (default: 0.5)
	Seed     int64   // Random seed
}

// WithDefaults returns a copy of c with zero fields set to their defaults.
func (c BlobsConfig) WithDefaults() BlobsConfig {
	if c.Samples == 0 {
		c.Samples = 300
	}
	if c.Features == 0 {
		c.Features = 4
	}
	if c.Classes == 0 {
		c.Classes = 3
	}
	if c.Radius == 0 {
		c.Radius = 3
	}
	if c.Spread == 0 {
		c.Spread = 0.5
	}
	return c
}

// Validate checks the configuration ranges.
func (c BlobsConfig) Validate() error {
	switch {
	case c.Samples < c.Classes:
		return errors.Wrapf(ErrInvalidConfig, "blobs: %d samples cannot cover %d classes", c.Samples, c.Classes)
	case c.Features < 2:
		return errors.Wrapf(ErrInvalidConfig, "blobs: need at least 2 features, got %d", c.Features)
	case c.Classes < 2:
		return errors.Wrapf(ErrInvalidConfig, "blobs: need at least 2 classes, got %d", c.Classes)
	case !(c.Radius > 0), !(c.Spread > 0):
		return errors.Wrapf(ErrInvalidConfig, "blobs: radius and spread must be positive, got %g and %g", c.Radius, c.Spread)
	}
	return nil
}

// Blobs generates a classification dataset of Gaussian clusters.
//
// Cluster centers sit evenly spaced on a circle of the given radius in the first
// two feature dimensions, with the remaining coordinates drawn uniformly from
// [-radius/2, radius/2]. Labels cycle through the classes so every class gets
// Samples/Classes examples (±1).
func Blobs(config BlobsConfig) (*Dataset, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(config.Seed)) //nolint:gosec // G404: synthetic data, not security sensitive

	centers := make([][]float32, config.Classes)
	for k := range centers {
		angle := 2 * math32.Pi * float32(k) / float32(config.Classes)
		center := make([]float32, config.Features)
		center[0] = config.Radius * math32.Cos(angle)
		center[1] = config.Radius * math32.Sin(angle)
		for j := 2; j < config.Features; j++ {
			center[j] = config.Radius * (rng.Float32() - 0.5)
		}
		centers[k] = center
	}

	features := make([][]float32, config.Samples)
	labels := make([]int, config.Samples)
	for i := range features {
		label := i % config.Classes
		row := make([]float32, config.Features)
		for j := range row {
			row[j] = centers[label][j] + config.Spread*float32(rng.NormFloat64())
		}
		features[i] = row
		labels[i] = label
	}
	return NewDataset(features, labels, config.Classes)
}
