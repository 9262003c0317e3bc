// Copyright 2025 Tangent ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gradient computes Euclidean cost gradients via reverse-mode
// automatic differentiation.
//
// Example:
//
//	engine := autodiff.New(cpu.New())
//	f, err := gradient.Build(p, engine, gradient.Config{})
//	if err != nil {
//	    // ...
//	}
//	cost, grad, err := f.Evaluate(x)
//
// The returned gradient lives in the ambient Euclidean space; projecting
// it onto the manifold's tangent space is the optimizer's job.
package gradient

import (
	"github.com/tangent-ml/tangent/internal/autodiff"
	"github.com/tangent-ml/tangent/internal/gradient"
	"github.com/tangent-ml/tangent/internal/problem"
)

// Dispatch-time failures.
var (
	// ErrIncompleteProblem reports a descriptor missing its manifold or
	// the cost function for the selected mode.
	ErrIncompleteProblem = gradient.ErrIncompleteProblem

	// ErrEngineUnavailable reports a missing autodiff engine.
	ErrEngineUnavailable = gradient.ErrEngineUnavailable

	// ErrModeMismatch reports a call through the evaluation method that
	// does not match the mode the function was built with.
	ErrModeMismatch = gradient.ErrModeMismatch
)

// Mode selects the point representation a Function differentiates over.
type Mode = gradient.Mode

// Supported modes.
const (
	Generic          Mode = gradient.Generic
	FixedRankFactors Mode = gradient.FixedRankFactors
)

// Config configures Build.
type Config = gradient.Config

// Function is a gradient function: built once per problem, invoked once
// per optimizer iteration.
type Function = gradient.Function

// FactorGradients holds the gradients with respect to the two outer
// factors passed to EvaluateFactors.
type FactorGradients = gradient.FactorGradients

// Build validates the problem descriptor and returns the gradient
// function for the selected mode.
func Build(p *problem.Problem, e *autodiff.Engine, cfg Config) (*Function, error) {
	return gradient.Build(p, e, cfg)
}
