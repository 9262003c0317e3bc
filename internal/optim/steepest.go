// Package optim implements Riemannian optimization algorithms.
//
// The optimizers consume the gradient functions produced by the gradient
// package: build once, evaluate every iteration, convert the Euclidean
// gradient to a Riemannian one through the manifold's capabilities, and
// retract the update back onto the manifold.
package optim

import (
	"fmt"
	"math"

	"github.com/tangent-ml/tangent/internal/autodiff"
	"github.com/tangent-ml/tangent/internal/gradient"
	"github.com/tangent-ml/tangent/internal/manifold"
	"github.com/tangent-ml/tangent/internal/problem"
	"github.com/tangent-ml/tangent/internal/tensor"
)

// SteepestDescentConfig configures SteepestDescent.
type SteepestDescentConfig struct {
	MaxIterations     int     // default 1000
	StepSize          float64 // default 0.1
	GradientTolerance float64 // stop when the Riemannian gradient norm drops below this; default 1e-6
}

// Result is the outcome of an optimization run.
type Result struct {
	Point        *tensor.RawTensor
	Cost         float64
	Iterations   int
	GradientNorm float64
}

// SteepestDescent minimizes the problem's cost by Riemannian gradient
// descent with a fixed step size.
//
// The manifold must implement both Projector and Retractor. The gradient
// function is built once (generic mode) and invoked once per iteration.
func SteepestDescent(p *problem.Problem, e *autodiff.Engine, x0 *tensor.RawTensor, cfg SteepestDescentConfig) (*Result, error) {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 1000
	}
	if cfg.StepSize <= 0 {
		cfg.StepSize = 0.1
	}
	if cfg.GradientTolerance <= 0 {
		cfg.GradientTolerance = 1e-6
	}

	projector, ok := p.Manifold.(manifold.Projector)
	if !ok {
		return nil, fmt.Errorf("optim: manifold %s does not support tangent projection", p.Manifold.Name())
	}
	retractor, ok := p.Manifold.(manifold.Retractor)
	if !ok {
		return nil, fmt.Errorf("optim: manifold %s does not support retraction", p.Manifold.Name())
	}

	egrad, err := gradient.Build(p, e, gradient.Config{Mode: gradient.Generic})
	if err != nil {
		return nil, err
	}

	x := x0.Clone()
	result := &Result{Point: x}
	for i := 0; i < cfg.MaxIterations; i++ {
		cost, g, err := egrad.Evaluate(x)
		if err != nil {
			return nil, err
		}

		rgrad := projector.Project(x, g)
		norm := gradientNorm(rgrad)

		result.Point = x
		result.Cost = cost
		result.Iterations = i + 1
		result.GradientNorm = norm
		if norm < cfg.GradientTolerance {
			break
		}

		step := e.Inner().MulScalar(rgrad, complex(-cfg.StepSize, 0))
		x = retractor.Retract(x, step)
	}

	return result, nil
}

// gradientNorm returns the Euclidean norm of a real gradient tensor.
func gradientNorm(g *tensor.RawTensor) float64 {
	var total float64
	switch g.DType() {
	case tensor.Float32:
		for _, v := range g.AsFloat32() {
			total += float64(v) * float64(v)
		}
	case tensor.Float64:
		for _, v := range g.AsFloat64() {
			total += v * v
		}
	default:
		panic(fmt.Sprintf("optim: gradient has non-real dtype %s", g.DType()))
	}
	return math.Sqrt(total)
}
