package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/minigrad/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Draws values from U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))),
// which keeps activation variance roughly constant across layers.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) []float32 {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = float32((rng.Float64()*2 - 1) * bound)
	}
	return data
}

// Zeros returns zero-initialized values for shape.
func Zeros(shape tensor.Shape) []float32 {
	return make([]float32, shape.NumElements())
}
