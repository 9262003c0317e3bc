// Copyright 2025 Tangent ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package problem describes an optimization problem: a manifold to
// search over and a cost function to minimize.
//
// Example:
//
//	p := &problem.Problem{
//	    Manifold: manifold.NewSphere(3),
//	    Cost: func(e *autodiff.Engine, x *tensor.RawTensor) (*tensor.RawTensor, error) {
//	        return e.Sum(e.Mul(x, x)), nil
//	    },
//	}
package problem

import (
	"github.com/tangent-ml/tangent/internal/problem"
)

// Problem is an immutable descriptor pairing a manifold with a cost
// function.
type Problem = problem.Problem

// Cost is a scalar cost over points represented as a single tensor.
type Cost = problem.Cost

// FactorCost is a scalar cost over points represented as a low-rank
// {U, S, V} factorization.
type FactorCost = problem.FactorCost
