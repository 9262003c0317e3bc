// Copyright 2025 Tangent ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim implements Riemannian optimization algorithms.
//
// Example:
//
//	engine := autodiff.New(cpu.New())
//	result, err := optim.SteepestDescent(p, engine, x0, optim.SteepestDescentConfig{
//	    StepSize: 0.1,
//	})
package optim

import (
	"github.com/tangent-ml/tangent/internal/autodiff"
	"github.com/tangent-ml/tangent/internal/optim"
	"github.com/tangent-ml/tangent/internal/problem"
	"github.com/tangent-ml/tangent/internal/tensor"
)

// SteepestDescentConfig configures SteepestDescent.
type SteepestDescentConfig = optim.SteepestDescentConfig

// Result is the outcome of an optimization run.
type Result = optim.Result

// SteepestDescent minimizes the problem's cost by Riemannian gradient
// descent with a fixed step size.
func SteepestDescent(p *problem.Problem, e *autodiff.Engine, x0 *tensor.RawTensor, cfg SteepestDescentConfig) (*Result, error) {
	return optim.SteepestDescent(p, e, x0, cfg)
}
