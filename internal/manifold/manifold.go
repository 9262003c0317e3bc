// Package manifold defines the search spaces for Riemannian optimization.
//
// A Manifold is an opaque handle from the optimizer's point of view:
// cost gradients are computed in the ambient Euclidean space and then
// converted using whatever capabilities the manifold exposes. Optional
// capabilities are expressed as separate interfaces and discovered by
// type assertion:
//
//   - AnchorProvider: the manifold holds sub-blocks of a point fixed and
//     their gradient slices must be suppressed.
//   - Projector / Retractor: the manifold supports tangent projection and
//     retraction, enough for gradient-descent style optimizers.
package manifold

import "github.com/tangent-ml/tangent/internal/tensor"

// Manifold is a constrained search space over which optimization is
// performed.
type Manifold interface {
	// Name returns a human-readable description of the manifold.
	Name() string

	// Dim returns the intrinsic dimension of the manifold.
	Dim() int
}

// AnchorProvider is implemented by manifolds that keep designated
// sub-blocks of a point fixed. Gradient slices along the first axis at
// the returned indices must be zeroed: the constraint is external to the
// cost function, so autodiff cannot discover it.
type AnchorProvider interface {
	AnchorIndices() []int
}

// Projector is implemented by manifolds that can project an ambient
// Euclidean gradient onto the tangent space at a point.
type Projector interface {
	Project(x, g *tensor.RawTensor) *tensor.RawTensor
}

// Retractor is implemented by manifolds that can map a tangent vector at
// a point back onto the manifold.
type Retractor interface {
	Retract(x, v *tensor.RawTensor) *tensor.RawTensor
}

// FixedRankPoint is a point on a fixed-rank matrix manifold, stored as a
// truncated SVD-like factorization: a full matrix is approximated by
// U @ S @ V^T with U [m,k], S [k,k] and V [n,k].
type FixedRankPoint struct {
	U *tensor.RawTensor
	S *tensor.RawTensor
	V *tensor.RawTensor
}
