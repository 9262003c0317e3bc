package manifold

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/tangent-ml/tangent/internal/tensor"
)

// Rotations is the product of k copies of the special orthogonal group
// SO(n): points are tensors of shape [k, n, n] whose blocks are rotation
// matrices.
type Rotations struct {
	n, k int
}

// NewRotations creates the product of k copies of SO(n).
func NewRotations(n, k int) *Rotations {
	if n < 2 || k < 1 {
		panic(fmt.Sprintf("rotations: invalid dimensions n=%d k=%d", n, k))
	}
	return &Rotations{n: n, k: k}
}

// Name returns the manifold description.
func (m *Rotations) Name() string {
	if m.k == 1 {
		return fmt.Sprintf("SO(%d)", m.n)
	}
	return fmt.Sprintf("SO(%d)^%d", m.n, m.k)
}

// Dim returns the intrinsic dimension k * n(n-1)/2.
func (m *Rotations) Dim() int {
	return m.k * m.n * (m.n - 1) / 2
}

// PointShape returns the shape of points on this manifold.
func (m *Rotations) PointShape() tensor.Shape {
	return tensor.Shape{m.k, m.n, m.n}
}

// RandomPoint draws k independent uniformly distributed rotations via QR
// decomposition of normal matrices.
func (m *Rotations) RandomPoint(rng *rand.Rand) *tensor.RawTensor {
	point := tensor.Zeros(m.PointShape(), tensor.Float64, tensor.CPU)
	for i := 0; i < m.k; i++ {
		randomRotation(m.block(point, i), rng)
	}
	return point
}

// Project maps an ambient gradient onto the tangent space at x. For each
// block X with gradient G the tangent component is X * skew(X^T G).
func (m *Rotations) Project(x, g *tensor.RawTensor) *tensor.RawTensor {
	result := g.Clone()
	for i := 0; i < m.k; i++ {
		xb := m.block(x, i)
		gb := m.block(result, i)

		var xtg mat.Dense
		xtg.Mul(xb.T(), gb)
		skewPart(&xtg)
		gb.Mul(xb, &xtg)
	}
	return result
}

// Retract maps x + v back onto the manifold block-wise using a QR-based
// retraction.
func (m *Rotations) Retract(x, v *tensor.RawTensor) *tensor.RawTensor {
	result := x.Clone()
	for i := 0; i < m.k; i++ {
		rb := m.block(result, i)
		var sum mat.Dense
		sum.Add(rb, m.block(v, i))
		qFactor(rb, &sum)
	}
	return result
}

// block returns block i of a [k, n, n] tensor as a dense matrix sharing
// the tensor's memory.
func (m *Rotations) block(t *tensor.RawTensor, i int) *mat.Dense {
	size := m.n * m.n
	return mat.NewDense(m.n, m.n, t.AsFloat64()[i*size:(i+1)*size])
}

// AnchoredRotations is Rotations with designated blocks held fixed.
// It implements AnchorProvider: anchored blocks must not receive
// gradient signal, and the optimizer must not move them.
type AnchoredRotations struct {
	*Rotations
	anchors []int
}

// NewAnchoredRotations creates the product of k copies of SO(n) with the
// given block indices anchored.
func NewAnchoredRotations(n, k int, anchors ...int) *AnchoredRotations {
	base := NewRotations(n, k)
	if len(anchors) == 0 {
		panic("rotations: anchored manifold needs at least one anchor index")
	}
	for _, a := range anchors {
		if a < 0 || a >= k {
			panic(fmt.Sprintf("rotations: anchor index %d out of range [0, %d)", a, k))
		}
	}
	return &AnchoredRotations{
		Rotations: base,
		anchors:   append([]int(nil), anchors...),
	}
}

// Name returns the manifold description.
func (m *AnchoredRotations) Name() string {
	return fmt.Sprintf("%s with anchors %v", m.Rotations.Name(), m.anchors)
}

// Dim returns the intrinsic dimension excluding anchored blocks.
func (m *AnchoredRotations) Dim() int {
	return (m.k - len(m.anchors)) * m.n * (m.n - 1) / 2
}

// AnchorIndices returns the indices of the fixed blocks.
func (m *AnchoredRotations) AnchorIndices() []int {
	return m.anchors
}

// Project maps onto the tangent space and zeroes the anchored blocks.
func (m *AnchoredRotations) Project(x, g *tensor.RawTensor) *tensor.RawTensor {
	result := m.Rotations.Project(x, g)
	for _, a := range m.anchors {
		m.block(result, a).Zero()
	}
	return result
}

// randomRotation fills dst with a uniformly distributed rotation matrix.
func randomRotation(dst *mat.Dense, rng *rand.Rand) {
	n, _ := dst.Dims()
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, rng.NormFloat64())
		}
	}
	qFactor(dst, a)
}

// qFactor writes the orientation-corrected Q factor of a into dst,
// yielding a matrix in SO(n).
func qFactor(dst *mat.Dense, a *mat.Dense) {
	var qr mat.QR
	qr.Factorize(a)

	var q, r mat.Dense
	qr.QTo(&q)
	qr.RTo(&r)

	// Fix the sign ambiguity of the decomposition so qFactor is
	// continuous, then flip one column if the determinant is -1.
	n, _ := q.Dims()
	for j := 0; j < n; j++ {
		if r.At(j, j) < 0 {
			for i := 0; i < n; i++ {
				q.Set(i, j, -q.At(i, j))
			}
		}
	}
	if mat.Det(&q) < 0 {
		for i := 0; i < n; i++ {
			q.Set(i, 0, -q.At(i, 0))
		}
	}
	dst.Copy(&q)
}

// skewPart replaces a with its skew-symmetric part (a - a^T) / 2.
func skewPart(a *mat.Dense) {
	n, _ := a.Dims()
	for i := 0; i < n; i++ {
		a.Set(i, i, 0)
		for j := i + 1; j < n; j++ {
			v := (a.At(i, j) - a.At(j, i)) / 2
			a.Set(i, j, v)
			a.Set(j, i, -v)
		}
	}
}
