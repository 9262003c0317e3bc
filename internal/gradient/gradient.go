// Package gradient computes Euclidean cost gradients via reverse-mode
// automatic differentiation.
//
// Build inspects the problem descriptor once and returns a Function: a
// callable handle the optimizer invokes every iteration to obtain the
// cost value and its Euclidean gradient at the current point. The
// returned gradient is with respect to the ambient space; converting it
// to a Riemannian gradient (tangent projection) is the caller's job.
//
// Two point representations are supported, fixed per problem at build
// time:
//
//   - Generic: the point is a single tensor. The strategy is wrapped in
//     the engine's trace cache when available, so repeat evaluations
//     with compatible input shapes avoid graph reconstruction.
//   - FixedRankFactors: the point is a {U, S, V} low-rank factorization
//     and gradients are taken with respect to two caller-chosen outer
//     factors via two decoupled traces. This mode is deliberately
//     uncached: the two-trace pattern defeats the cache's single-trace
//     assumptions.
package gradient

import (
	"errors"
	"fmt"
	"log"

	"github.com/tangent-ml/tangent/internal/autodiff"
	"github.com/tangent-ml/tangent/internal/manifold"
	"github.com/tangent-ml/tangent/internal/problem"
	"github.com/tangent-ml/tangent/internal/tensor"
)

// Dispatch-time failures.
var (
	// ErrIncompleteProblem reports a descriptor missing its manifold or
	// the cost function for the selected mode.
	ErrIncompleteProblem = errors.New("problem descriptor incomplete")

	// ErrEngineUnavailable reports a missing autodiff engine.
	ErrEngineUnavailable = errors.New("autodiff engine unavailable")

	// ErrModeMismatch reports a call through the evaluation method that
	// does not match the mode the function was built with.
	ErrModeMismatch = errors.New("evaluation does not match build mode")
)

// Mode selects the point representation a Function differentiates over.
type Mode int

const (
	// Generic differentiates costs over single-tensor points.
	Generic Mode = iota

	// FixedRankFactors differentiates costs over {U, S, V} factorized
	// points, returning gradients for two alternate outer factors.
	FixedRankFactors
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Generic:
		return "generic"
	case FixedRankFactors:
		return "fixed-rank-factors"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Config configures Build.
type Config struct {
	// Mode selects the point representation. The zero value is Generic.
	Mode Mode

	// Logger receives the one-time warning when trace caching is
	// unavailable. Defaults to log.Default().
	Logger *log.Logger
}

// FactorGradients holds the gradients with respect to the two outer
// factors passed to EvaluateFactors.
type FactorGradients struct {
	A *tensor.RawTensor
	B *tensor.RawTensor
}

// Function is a gradient function: the single stateful product of Build.
// It owns its trace cache exclusively; the cache lives and dies with the
// Function and can be dropped explicitly via Invalidate.
//
// A Function is not safe for concurrent use. Callers that evaluate from
// multiple goroutines must either serialize access or build a private
// Function per goroutine.
type Function struct {
	mode       Mode
	engine     *autodiff.Engine
	manifold   manifold.Manifold
	cost       problem.Cost
	factorCost problem.FactorCost
	traced     *autodiff.Traced
}

// Build validates the problem descriptor and returns the gradient
// function for the selected mode. No cost evaluation happens here; the
// descriptor and environment are checked before any AD machinery is
// touched.
//
// In Generic mode the strategy is wrapped in the engine's trace cache
// when the engine supports compilation; the cache is cleared immediately
// so no trace from a previous problem can leak in. Without compilation
// support Build falls back to uncached evaluation and warns once.
func Build(p *problem.Problem, e *autodiff.Engine, cfg Config) (*Function, error) {
	if p == nil || p.Manifold == nil {
		return nil, fmt.Errorf("gradient: %w: manifold not set", ErrIncompleteProblem)
	}
	switch cfg.Mode {
	case Generic:
		if p.Cost == nil {
			return nil, fmt.Errorf("gradient: %w: cost function not set", ErrIncompleteProblem)
		}
	case FixedRankFactors:
		if p.FactorCost == nil {
			return nil, fmt.Errorf("gradient: %w: factor cost function not set", ErrIncompleteProblem)
		}
	default:
		return nil, fmt.Errorf("gradient: unknown mode %v", cfg.Mode)
	}
	if e == nil {
		return nil, fmt.Errorf("gradient: %w: no engine supplied (construct one with autodiff.New over a compute backend)", ErrEngineUnavailable)
	}

	f := &Function{
		mode:       cfg.Mode,
		engine:     e,
		manifold:   p.Manifold,
		cost:       p.Cost,
		factorCost: p.FactorCost,
	}

	if cfg.Mode == Generic {
		if e.SupportsCompilation() {
			f.traced = e.Compile(func(eng *autodiff.Engine, inputs []*tensor.RawTensor) (*tensor.RawTensor, error) {
				return f.traceCost(eng, inputs[0])
			})
			// A fresh Function must never see traces from a previous
			// problem that shared the engine.
			f.traced.ClearCache()
		} else {
			logger := cfg.Logger
			if logger == nil {
				logger = log.Default()
			}
			logger.Printf("gradient: %s does not support trace caching; evaluating uncached "+
				"(expect slower gradients; cost terms requiring higher-order derivatives are unsupported on this path)",
				e.Name())
		}
	}

	return f, nil
}

// Mode returns the mode the function was built with.
func (f *Function) Mode() Mode {
	return f.mode
}

// Invalidate drops the trace cache, forcing the next evaluation to
// retrace. It is a no-op for uncached functions.
func (f *Function) Invalidate() {
	if f.traced != nil {
		f.traced.ClearCache()
	}
}

// scalarValue reads a real scalar tensor as float64.
func scalarValue(v *tensor.RawTensor) float64 {
	switch v.DType() {
	case tensor.Float32:
		return float64(v.AsFloat32()[0])
	case tensor.Float64:
		return v.AsFloat64()[0]
	default:
		panic(fmt.Sprintf("gradient: scalar value has non-real dtype %s", v.DType()))
	}
}
