package gradient

import (
	"fmt"

	"github.com/tangent-ml/tangent/internal/autodiff"
	"github.com/tangent-ml/tangent/internal/manifold"
	"github.com/tangent-ml/tangent/internal/tensor"
)

// EvaluateFactors computes the cost and the gradients with respect to
// two alternate outer factors of a fixed-rank point. Only valid for
// functions built in FixedRankFactors mode.
//
// The gradients are decoupled into two independent traces against
// synthetic points with an identity scaling factor:
//
//	X1 = {U: factorA, S: I, V: pt.V}  ->  grad w.r.t. factorA
//	X2 = {U: pt.U,    S: I, V: factorB}  ->  grad w.r.t. factorB
//
// With S forced to identity and the non-varied factor held at its
// current value, both synthetic evaluations equal the true cost at the
// original point; the second value is discarded after its gradient is
// extracted. That equality is an invariant of the construction, not
// re-verified at runtime.
func (f *Function) EvaluateFactors(pt manifold.FixedRankPoint, factorA, factorB *tensor.RawTensor) (float64, FactorGradients, error) {
	if f.mode != FixedRankFactors {
		return 0, FactorGradients{}, fmt.Errorf("gradient: %w: EvaluateFactors called on a %s function", ErrModeMismatch, f.mode)
	}

	rank := factorA.Shape()[len(factorA.Shape())-1]

	value1, gradA, err := f.traceFactor(factorA, tensor.Eye(rank, factorA.DType(), f.engine.Device()), pt.V, factorA)
	if err != nil {
		return 0, FactorGradients{}, err
	}

	_, gradB, err := f.traceFactor(pt.U, tensor.Eye(rank, factorB.DType(), f.engine.Device()), factorB, factorB)
	if err != nil {
		return 0, FactorGradients{}, err
	}

	return scalarValue(value1), FactorGradients{A: gradA, B: gradB}, nil
}

// traceFactor evaluates the factor cost at (u, s, v) under a fresh trace
// and extracts the gradient with respect to target (one of u, v). No
// anchoring special cases apply in this mode.
func (f *Function) traceFactor(u, s, v, target *tensor.RawTensor) (*tensor.RawTensor, *tensor.RawTensor, error) {
	tape := f.engine.Tape()
	tape.Clear()
	tape.StartRecording()
	value, err := f.factorCost(f.engine, u, s, v)
	tape.StopRecording()
	if err != nil {
		return nil, nil, err
	}
	if value.DType().IsComplex() {
		// Same normalization as the generic strategy: the backward seed
		// must be real.
		tape.StartRecording()
		value = f.engine.Real(value)
		tape.StopRecording()
	}

	grads, err := autodiff.Gradient(f.engine, value, target)
	if err != nil {
		return nil, nil, err
	}
	return value, grads[0], nil
}
