// Package problem describes an optimization problem: a manifold to
// search over and a cost function to minimize.
package problem

import (
	"github.com/tangent-ml/tangent/internal/autodiff"
	"github.com/tangent-ml/tangent/internal/manifold"
	"github.com/tangent-ml/tangent/internal/tensor"
)

// Cost is a scalar cost over points represented as a single tensor.
// The function must build its computation through the engine so the
// forward pass can be traced; the returned value must be a scalar
// (possibly complex, in which case only its real part is differentiated).
type Cost func(e *autodiff.Engine, x *tensor.RawTensor) (*tensor.RawTensor, error)

// FactorCost is a scalar cost over points represented as a low-rank
// factorization U @ S @ V^T.
type FactorCost func(e *autodiff.Engine, u, s, v *tensor.RawTensor) (*tensor.RawTensor, error)

// Problem is an immutable descriptor pairing a manifold with a cost
// function. Exactly one of Cost and FactorCost is consulted, depending
// on the point representation selected at dispatch time: Cost for
// single-tensor points, FactorCost for factorized points.
//
// Both the manifold and the cost for the selected representation must be
// set before the problem is dispatched.
type Problem struct {
	Manifold   manifold.Manifold
	Cost       Cost
	FactorCost FactorCost
}
