package gradient_test

import (
	"io"
	"log"
	"math"
	"math/rand"
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

func fromF64(t *testing.T, data []float64, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(data, tensor.Shape(shape), tensor.CPU)
	require.NoError(t, err)
	return raw
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func assertGrad(t *testing.T, got *tensor.RawTensor, want []float64) {
	t.Helper()
	data := got.AsFloat64()
	require.Len(t, data, len(want))
	for i := range want {
		assert.InDelta(t, want[i], data[i], 1e-10, "grad[%d]", i)
	}
}

// TestEvaluate_Quadratic tests the canonical case: cost sum(x^2) at
// x = [1, 2, 3] yields value 14 and gradient [2, 4, 6].
func TestEvaluate_Quadratic(t *testing.T) {
	engine := autodiff.New(cpu.New())
	f, err := gradient.Build(quadraticProblem(), engine, gradient.Config{})
	require.NoError(t, err)

	value, grad, err := f.Evaluate(fromF64(t, []float64{1, 2, 3}, 3))
	require.NoError(t, err)
	assert.InDelta(t, 14.0, value, 1e-12)
	assertGrad(t, grad, []float64{2, 4, 6})
}

// TestEvaluate_Idempotent tests that cache reuse does not change
// results: repeated evaluations at the same point agree exactly, and
// evaluations at new points remain correct.
func TestEvaluate_Idempotent(t *testing.T) {
	engine := autodiff.New(cpu.New())
	f, err := gradient.Build(quadraticProblem(), engine, gradient.Config{})
	require.NoError(t, err)

	x := fromF64(t, []float64{1, 2, 3}, 3)
	v1, g1, err := f.Evaluate(x)
	require.NoError(t, err)
	v2, g2, err := f.Evaluate(x)
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, g1.AsFloat64(), g2.AsFloat64())

	// A different point through the same cached trace.
	v3, g3, err := f.Evaluate(fromF64(t, []float64{-1, 0, 2}, 3))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, v3, 1e-12)
	assertGrad(t, g3, []float64{-2, 0, 4})
}

// TestEvaluate_Invalidate tests that dropping the trace cache forces a
// retrace with identical results.
func TestEvaluate_Invalidate(t *testing.T) {
	engine := autodiff.New(cpu.New())
	f, err := gradient.Build(quadraticProblem(), engine, gradient.Config{})
	require.NoError(t, err)

	x := fromF64(t, []float64{2, -1, 0.5}, 3)
	v1, g1, err := f.Evaluate(x)
	require.NoError(t, err)

	f.Invalidate()

	v2, g2, err := f.Evaluate(x)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, g1.AsFloat64(), g2.AsFloat64())
}

// TestEvaluate_AuxiliaryOpsAfterValue tests a cost function that keeps
// computing through the engine after producing its return value. The
// trailing operations land on the tape but must not divert the gradient
// seed away from the returned scalar.
func TestEvaluate_AuxiliaryOpsAfterValue(t *testing.T) {
	p := &problem.Problem{
		Manifold: manifold.NewEuclidean(3),
		Cost: func(e *autodiff.Engine, x *tensor.RawTensor) (*tensor.RawTensor, error) {
			v := e.Sum(e.Mul(x, x))
			e.Add(x, x) // scratch work, not part of the cost
			return v, nil
		},
	}

	engine := autodiff.New(cpu.New())
	f, err := gradient.Build(p, engine, gradient.Config{})
	require.NoError(t, err)

	value, grad, err := f.Evaluate(fromF64(t, []float64{1, 2, 3}, 3))
	require.NoError(t, err)
	assert.InDelta(t, 14.0, value, 1e-12)
	assertGrad(t, grad, []float64{2, 4, 6})
}

// TestEvaluate_MatrixCost tests a cost built from matrix operations:
// f(X) = sum(A @ X), whose gradient is ones^T-broadcast of A summed over
// rows: dX[i,j] = sum_k A[k,i].
func TestEvaluate_MatrixCost(t *testing.T) {
	a := fromF64(t, []float64{1, 2, 3, 4}, 2, 2)
	p := &problem.Problem{
		Manifold: manifold.NewEuclidean(2, 2),
		Cost: func(e *autodiff.Engine, x *tensor.RawTensor) (*tensor.RawTensor, error) {
			return e.Sum(e.MatMul(a, x)), nil
		},
	}

	engine := autodiff.New(cpu.New())
	f, err := gradient.Build(p, engine, gradient.Config{})
	require.NoError(t, err)

	x := fromF64(t, []float64{1, 0, 0, 1}, 2, 2)
	value, grad, err := f.Evaluate(x)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, value, 1e-12)
	assertGrad(t, grad, []float64{4, 4, 6, 6})
}

// TestEvaluate_ComplexCostNormalized tests that a complex-valued cost is
// reduced to its real part before differentiation: f(z) = sum(conj(z)*z)
// carries a complex dtype but a real value; the gradient is 2z.
func TestEvaluate_ComplexCostNormalized(t *testing.T) {
	p := &problem.Problem{
		Manifold: manifold.NewEuclidean(2),
		Cost: func(e *autodiff.Engine, z *tensor.RawTensor) (*tensor.RawTensor, error) {
			return e.Sum(e.Mul(e.Conj(z), z)), nil
		},
	}

	engine := autodiff.New(cpu.New())
	f, err := gradient.Build(p, engine, gradient.Config{})
	require.NoError(t, err)

	z, err := tensor.FromSlice([]complex128{1 + 2i, 3 - 1i}, tensor.Shape{2}, tensor.CPU)
	require.NoError(t, err)

	value, grad, err := f.Evaluate(z)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, value, 1e-12)

	require.Equal(t, tensor.Complex128, grad.DType())
	g := grad.AsComplex128()
	want := []complex128{2 + 4i, 6 - 2i}
	for i := range want {
		d := g[i] - want[i]
		assert.Less(t, math.Hypot(real(d), imag(d)), 1e-10, "grad[%d] = %v, want %v", i, g[i], want[i])
	}
}

// TestEvaluate_AnchoredBlocksZeroed tests gradient suppression for
// manifolds that hold sub-blocks of the point fixed.
func TestEvaluate_AnchoredBlocksZeroed(t *testing.T) {
	m := manifold.NewAnchoredRotations(2, 3, 1)
	p := &problem.Problem{Manifold: m, Cost: quadraticCost}

	engine := autodiff.New(cpu.New())
	f, err := gradient.Build(p, engine, gradient.Config{})
	require.NoError(t, err)

	x := m.RandomPoint(rand.New(rand.NewSource(29)))
	_, grad, err := f.Evaluate(x)
	require.NoError(t, err)

	gd := grad.AsFloat64()
	xd := x.AsFloat64()
	// Block 1 is anchored: its gradient slice must be zero.
	for _, v := range gd[4:8] {
		assert.Zero(t, v)
	}
	// Free blocks keep the analytic gradient 2x.
	for _, i := range []int{0, 1, 2, 3, 8, 9, 10, 11} {
		assert.InDelta(t, 2*xd[i], gd[i], 1e-12)
	}
}

// TestEvaluate_AnchoredZeroingUncached tests the same suppression on the
// uncached fallback path.
func TestEvaluate_AnchoredZeroingUncached(t *testing.T) {
	m := manifold.NewAnchoredRotations(2, 2, 0)
	p := &problem.Problem{Manifold: m, Cost: quadraticCost}

	engine := autodiff.New(cpu.New(), autodiff.WithoutCompilation())
	f, err := gradient.Build(p, engine, gradient.Config{Logger: discardLogger()})
	require.NoError(t, err)

	x := m.RandomPoint(rand.New(rand.NewSource(31)))
	_, grad, err := f.Evaluate(x)
	require.NoError(t, err)

	for _, v := range grad.AsFloat64()[:4] {
		assert.Zero(t, v)
	}
}

// TestEvaluate_ModeMismatch tests that each evaluation method rejects
// functions built for the other mode.
func TestEvaluate_ModeMismatch(t *testing.T) {
	engine := autodiff.New(cpu.New())

	generic, err := gradient.Build(quadraticProblem(), engine, gradient.Config{})
	require.NoError(t, err)

	pt := manifold.NewFixedRankEmbedded(3, 3, 2).RandomPoint(rand.New(rand.NewSource(37)))
	_, _, err = generic.EvaluateFactors(pt, pt.U, pt.V)
	assert.ErrorIs(t, err, gradient.ErrModeMismatch)

	factorized, err := gradient.Build(&problem.Problem{
		Manifold: manifold.NewFixedRankEmbedded(3, 3, 2),
		FactorCost: func(e *autodiff.Engine, u, s, v *tensor.RawTensor) (*tensor.RawTensor, error) {
			return e.Sum(e.MatMul(e.MatMul(u, s), e.Transpose(v))), nil
		},
	}, engine, gradient.Config{Mode: gradient.FixedRankFactors})
	require.NoError(t, err)

	_, _, err = factorized.Evaluate(fromF64(t, []float64{1, 2, 3}, 3))
	assert.ErrorIs(t, err, gradient.ErrModeMismatch)
}
