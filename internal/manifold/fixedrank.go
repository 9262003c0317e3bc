package manifold

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/tangent-ml/tangent/internal/tensor"
)

// FixedRankEmbedded is the manifold of m×n matrices of fixed rank k,
// embedded in the space of all m×n matrices. Points are stored in
// factorized form (see FixedRankPoint), never as the full product.
type FixedRankEmbedded struct {
	m, n, k int
}

// NewFixedRankEmbedded creates the manifold of m×n matrices of rank k.
func NewFixedRankEmbedded(m, n, k int) *FixedRankEmbedded {
	if k < 1 || k > m || k > n {
		panic(fmt.Sprintf("fixedrank: invalid rank %d for %d×%d matrices", k, m, n))
	}
	return &FixedRankEmbedded{m: m, n: n, k: k}
}

// Name returns the manifold description.
func (f *FixedRankEmbedded) Name() string {
	return fmt.Sprintf("Embedded manifold of %d×%d matrices of rank %d", f.m, f.n, f.k)
}

// Dim returns the intrinsic dimension (m + n - k) * k.
func (f *FixedRankEmbedded) Dim() int {
	return (f.m + f.n - f.k) * f.k
}

// Rank returns the fixed rank k.
func (f *FixedRankEmbedded) Rank() int {
	return f.k
}

// RandomPoint draws a random point by truncating the SVD of a standard
// normal m×n matrix to rank k.
func (f *FixedRankEmbedded) RandomPoint(rng *rand.Rand) FixedRankPoint {
	a := mat.NewDense(f.m, f.n, nil)
	for i := 0; i < f.m; i++ {
		for j := 0; j < f.n; j++ {
			a.Set(i, j, rng.NormFloat64())
		}
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		panic("fixedrank: SVD of random matrix failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	point := FixedRankPoint{
		U: tensor.Zeros(tensor.Shape{f.m, f.k}, tensor.Float64, tensor.CPU),
		S: tensor.Zeros(tensor.Shape{f.k, f.k}, tensor.Float64, tensor.CPU),
		V: tensor.Zeros(tensor.Shape{f.n, f.k}, tensor.Float64, tensor.CPU),
	}
	uData, sData, vData := point.U.AsFloat64(), point.S.AsFloat64(), point.V.AsFloat64()
	for i := 0; i < f.m; i++ {
		for j := 0; j < f.k; j++ {
			uData[i*f.k+j] = u.At(i, j)
		}
	}
	for j := 0; j < f.k; j++ {
		sData[j*f.k+j] = values[j]
	}
	for i := 0; i < f.n; i++ {
		for j := 0; j < f.k; j++ {
			vData[i*f.k+j] = v.At(i, j)
		}
	}
	return point
}
