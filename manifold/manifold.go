// Copyright 2025 Tangent ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package manifold provides the search spaces for Riemannian
// optimization.
//
// Optional manifold behavior (anchored sub-blocks, tangent projection,
// retraction) is expressed through capability interfaces discovered by
// type assertion.
package manifold

import (
	"github.com/tangent-ml/tangent/internal/manifold"
)

// Manifold is a constrained search space over which optimization is
// performed.
type Manifold = manifold.Manifold

// AnchorProvider is implemented by manifolds that keep designated
// sub-blocks of a point fixed.
type AnchorProvider = manifold.AnchorProvider

// Projector is implemented by manifolds that can project an ambient
// gradient onto the tangent space at a point.
type Projector = manifold.Projector

// Retractor is implemented by manifolds that can map a tangent vector
// at a point back onto the manifold.
type Retractor = manifold.Retractor

// Euclidean is the unconstrained space of tensors of a fixed shape.
type Euclidean = manifold.Euclidean

// NewEuclidean creates the Euclidean manifold of tensors with the given
// shape.
func NewEuclidean(shape ...int) *Euclidean {
	return manifold.NewEuclidean(shape...)
}

// Sphere is the unit sphere in R^n.
type Sphere = manifold.Sphere

// NewSphere creates the unit sphere embedded in R^n.
func NewSphere(n int) *Sphere {
	return manifold.NewSphere(n)
}

// Rotations is the product of k copies of the special orthogonal group
// SO(n).
type Rotations = manifold.Rotations

// NewRotations creates the product of k copies of SO(n).
func NewRotations(n, k int) *Rotations {
	return manifold.NewRotations(n, k)
}

// AnchoredRotations is Rotations with designated blocks held fixed.
type AnchoredRotations = manifold.AnchoredRotations

// NewAnchoredRotations creates the product of k copies of SO(n) with the
// given block indices anchored.
func NewAnchoredRotations(n, k int, anchors ...int) *AnchoredRotations {
	return manifold.NewAnchoredRotations(n, k, anchors...)
}

// FixedRankEmbedded is the manifold of m×n matrices of fixed rank k.
type FixedRankEmbedded = manifold.FixedRankEmbedded

// NewFixedRankEmbedded creates the manifold of m×n matrices of rank k.
func NewFixedRankEmbedded(m, n, k int) *FixedRankEmbedded {
	return manifold.NewFixedRankEmbedded(m, n, k)
}

// FixedRankPoint is a point on a fixed-rank matrix manifold in
// factorized {U, S, V} form.
type FixedRankPoint = manifold.FixedRankPoint
