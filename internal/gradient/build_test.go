package gradient_test

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangent-ml/tangent/internal/autodiff"
	"github.com/tangent-ml/tangent/internal/backend/cpu"
	"github.com/tangent-ml/tangent/internal/gradient"
	"github.com/tangent-ml/tangent/internal/manifold"
	"github.com/tangent-ml/tangent/internal/problem"
	"github.com/tangent-ml/tangent/internal/tensor"
)

// countingBackend wraps a backend and counts compute operations, so
// tests can assert that dispatch does not run any AD machinery.
type countingBackend struct {
	inner tensor.Backend
	calls int
}

func (c *countingBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	c.calls++
	return c.inner.Add(a, b)
}

func (c *countingBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	c.calls++
	return c.inner.Sub(a, b)
}

func (c *countingBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	c.calls++
	return c.inner.Mul(a, b)
}

func (c *countingBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	c.calls++
	return c.inner.Div(a, b)
}

func (c *countingBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	c.calls++
	return c.inner.MatMul(a, b)
}

func (c *countingBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	c.calls++
	return c.inner.Transpose(t, axes...)
}

func (c *countingBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	c.calls++
	return c.inner.Reshape(t, newShape)
}

func (c *countingBackend) MulScalar(x *tensor.RawTensor, scalar complex128) *tensor.RawTensor {
	c.calls++
	return c.inner.MulScalar(x, scalar)
}

func (c *countingBackend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	c.calls++
	return c.inner.Neg(x)
}

func (c *countingBackend) Real(x *tensor.RawTensor) *tensor.RawTensor {
	c.calls++
	return c.inner.Real(x)
}

func (c *countingBackend) Conj(x *tensor.RawTensor) *tensor.RawTensor {
	c.calls++
	return c.inner.Conj(x)
}

func (c *countingBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	c.calls++
	return c.inner.Sum(x)
}

func (c *countingBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	c.calls++
	return c.inner.SumDim(x, dim, keepDim)
}

func (c *countingBackend) Name() string          { return "Counting(" + c.inner.Name() + ")" }
func (c *countingBackend) Device() tensor.Device { return c.inner.Device() }

func quadraticCost(e *autodiff.Engine, x *tensor.RawTensor) (*tensor.RawTensor, error) {
	return e.Sum(e.Mul(x, x)), nil
}

func quadraticProblem() *problem.Problem {
	return &problem.Problem{
		Manifold: manifold.NewEuclidean(3),
		Cost:     quadraticCost,
	}
}

func TestBuild_IncompleteProblem(t *testing.T) {
	engine := autodiff.New(cpu.New())

	_, err := gradient.Build(nil, engine, gradient.Config{})
	assert.ErrorIs(t, err, gradient.ErrIncompleteProblem)

	_, err = gradient.Build(&problem.Problem{Cost: quadraticCost}, engine, gradient.Config{})
	assert.ErrorIs(t, err, gradient.ErrIncompleteProblem)

	_, err = gradient.Build(&problem.Problem{Manifold: manifold.NewEuclidean(3)}, engine, gradient.Config{})
	assert.ErrorIs(t, err, gradient.ErrIncompleteProblem)

	// A generic cost does not satisfy the factorized mode.
	_, err = gradient.Build(quadraticProblem(), engine, gradient.Config{Mode: gradient.FixedRankFactors})
	assert.ErrorIs(t, err, gradient.ErrIncompleteProblem)
}

func TestBuild_EngineUnavailable(t *testing.T) {
	_, err := gradient.Build(quadraticProblem(), nil, gradient.Config{})
	assert.ErrorIs(t, err, gradient.ErrEngineUnavailable)
}

func TestBuild_UnknownMode(t *testing.T) {
	engine := autodiff.New(cpu.New())
	_, err := gradient.Build(quadraticProblem(), engine, gradient.Config{Mode: gradient.Mode(99)})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, gradient.ErrIncompleteProblem)
}

// TestBuild_NoEvaluationAtDispatch asserts that Build validates without
// running a single compute operation: failures must surface before any
// AD work, and successful dispatch must stay lazy.
func TestBuild_NoEvaluationAtDispatch(t *testing.T) {
	counting := &countingBackend{inner: cpu.New()}
	engine := autodiff.New(counting)

	_, err := gradient.Build(&problem.Problem{Manifold: manifold.NewEuclidean(3)}, engine, gradient.Config{})
	require.Error(t, err)
	assert.Zero(t, counting.calls)

	f, err := gradient.Build(quadraticProblem(), engine, gradient.Config{})
	require.NoError(t, err)
	assert.Zero(t, counting.calls, "Build ran compute operations")

	// The first evaluation is where compute starts.
	_, _, err = f.Evaluate(fromF64(t, []float64{1, 2, 3}, 3))
	require.NoError(t, err)
	assert.Greater(t, counting.calls, 0)
}

func TestBuild_Mode(t *testing.T) {
	engine := autodiff.New(cpu.New())

	f, err := gradient.Build(quadraticProblem(), engine, gradient.Config{})
	require.NoError(t, err)
	assert.Equal(t, gradient.Generic, f.Mode())

	p := &problem.Problem{
		Manifold: manifold.NewFixedRankEmbedded(3, 3, 2),
		FactorCost: func(e *autodiff.Engine, u, s, v *tensor.RawTensor) (*tensor.RawTensor, error) {
			return e.Sum(e.MatMul(e.MatMul(u, s), e.Transpose(v))), nil
		},
	}
	f, err = gradient.Build(p, engine, gradient.Config{Mode: gradient.FixedRankFactors})
	require.NoError(t, err)
	assert.Equal(t, gradient.FixedRankFactors, f.Mode())
}

// TestBuild_UncachedFallbackWarning asserts the degraded path: an engine
// without trace caching produces exactly one warning and a function that
// still evaluates correctly.
func TestBuild_UncachedFallbackWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	engine := autodiff.New(cpu.New(), autodiff.WithoutCompilation())
	f, err := gradient.Build(quadraticProblem(), engine, gradient.Config{Logger: logger})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "trace caching")
	assert.Equal(t, 1, strings.Count(out, "\n"), "expected exactly one warning line")

	// The fallback function is fully usable.
	for i := 0; i < 3; i++ {
		value, grad, err := f.Evaluate(fromF64(t, []float64{1, 2, 3}, 3))
		require.NoError(t, err)
		assert.InDelta(t, 14.0, value, 1e-12)
		assertGrad(t, grad, []float64{2, 4, 6})
	}
}

func TestBuild_NoWarningWithCaching(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	engine := autodiff.New(cpu.New())
	_, err := gradient.Build(quadraticProblem(), engine, gradient.Config{Logger: logger})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestFunction_InvalidateUncached(t *testing.T) {
	engine := autodiff.New(cpu.New(), autodiff.WithoutCompilation())
	f, err := gradient.Build(quadraticProblem(), engine, gradient.Config{Logger: log.New(&bytes.Buffer{}, "", 0)})
	require.NoError(t, err)

	// No cache to drop; must be a safe no-op.
	f.Invalidate()
	value, _, err := f.Evaluate(fromF64(t, []float64{1, 2, 3}, 3))
	require.NoError(t, err)
	assert.InDelta(t, 14.0, value, 1e-12)
}

func TestEvaluate_CostErrorPropagates(t *testing.T) {
	sentinel := errors.New("cost blew up")
	p := &problem.Problem{
		Manifold: manifold.NewEuclidean(2),
		Cost: func(e *autodiff.Engine, x *tensor.RawTensor) (*tensor.RawTensor, error) {
			return nil, sentinel
		},
	}

	engine := autodiff.New(cpu.New())
	f, err := gradient.Build(p, engine, gradient.Config{})
	require.NoError(t, err)

	_, _, err = f.Evaluate(fromF64(t, []float64{1, 2}, 2))
	assert.ErrorIs(t, err, sentinel)
}
