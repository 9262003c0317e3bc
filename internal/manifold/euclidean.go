package manifold

import (
	"fmt"
	"math/rand"

	"github.com/tangent-ml/tangent/internal/tensor"
)

// Euclidean is the unconstrained space of real tensors of a fixed shape.
// Projection is the identity and retraction is plain addition; it mostly
// serves as the trivial base case and as a testing ground.
type Euclidean struct {
	shape tensor.Shape
}

// NewEuclidean creates the Euclidean manifold of tensors with the given
// shape.
func NewEuclidean(shape ...int) *Euclidean {
	return &Euclidean{shape: tensor.Shape(shape).Clone()}
}

// Name returns the manifold description.
func (m *Euclidean) Name() string {
	return fmt.Sprintf("Euclidean(%v)", m.shape)
}

// Dim returns the dimension, which equals the number of elements.
func (m *Euclidean) Dim() int {
	return m.shape.NumElements()
}

// RandomPoint draws a point with standard normal entries.
func (m *Euclidean) RandomPoint(rng *rand.Rand) *tensor.RawTensor {
	point := tensor.Zeros(m.shape, tensor.Float64, tensor.CPU)
	data := point.AsFloat64()
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return point
}

// Project returns the gradient unchanged: every direction is tangent.
func (m *Euclidean) Project(x, g *tensor.RawTensor) *tensor.RawTensor {
	return g.Clone()
}

// Retract adds the tangent vector to the point.
func (m *Euclidean) Retract(x, v *tensor.RawTensor) *tensor.RawTensor {
	result := x.Clone()
	out, xs, vs := result.AsFloat64(), x.AsFloat64(), v.AsFloat64()
	for i := range out {
		out[i] = xs[i] + vs[i]
	}
	return result
}
