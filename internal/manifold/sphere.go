package manifold

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/tangent-ml/tangent/internal/tensor"
)

// Sphere is the unit sphere in R^n: vectors x with ||x|| = 1.
type Sphere struct {
	n int
}

// NewSphere creates the unit sphere embedded in R^n.
func NewSphere(n int) *Sphere {
	if n < 2 {
		panic(fmt.Sprintf("sphere: ambient dimension must be >= 2, got %d", n))
	}
	return &Sphere{n: n}
}

// Name returns the manifold description.
func (m *Sphere) Name() string {
	return fmt.Sprintf("Sphere(%d)", m.n)
}

// Dim returns the intrinsic dimension n-1.
func (m *Sphere) Dim() int {
	return m.n - 1
}

// RandomPoint draws a uniformly distributed point by normalizing a
// standard normal vector.
func (m *Sphere) RandomPoint(rng *rand.Rand) *tensor.RawTensor {
	point := tensor.Zeros(tensor.Shape{m.n}, tensor.Float64, tensor.CPU)
	data := point.AsFloat64()
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	floats.Scale(1/floats.Norm(data, 2), data)
	return point
}

// Project removes the radial component of g at x: g - <x, g> x.
func (m *Sphere) Project(x, g *tensor.RawTensor) *tensor.RawTensor {
	result := g.Clone()
	out := result.AsFloat64()
	floats.AddScaled(out, -floats.Dot(x.AsFloat64(), out), x.AsFloat64())
	return result
}

// Retract maps x + v back onto the sphere by normalization.
func (m *Sphere) Retract(x, v *tensor.RawTensor) *tensor.RawTensor {
	result := x.Clone()
	out := result.AsFloat64()
	floats.Add(out, v.AsFloat64())
	floats.Scale(1/floats.Norm(out, 2), out)
	return result
}
