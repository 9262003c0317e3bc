package autodiff

import (
	"fmt"

	"github.com/tangent-ml/tangent/internal/tensor"
)

// Gradient computes gradients of a traced scalar value with respect to
// the given inputs.
//
// The value must be a real scalar: the backward seed is d(value)/d(value)
// = 1, which is only meaningful for a real cost. Complex cost values must
// be passed through Engine.Real (while recording) first.
//
// Inputs that did not participate in the traced computation receive zero
// gradients of their own shape and dtype, so callers can rely on
// position-for-position results.
func Gradient(e *Engine, value *tensor.RawTensor, wrt ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if value.NumElements() != 1 {
		return nil, fmt.Errorf("autodiff: gradient of non-scalar value with shape %v", value.Shape())
	}
	if value.DType().IsComplex() {
		return nil, fmt.Errorf("autodiff: gradient seed must be real, value is %s", value.DType())
	}
	if e.tape.NumOps() == 0 {
		return nil, fmt.Errorf("autodiff: no operations recorded (was the tape recording during the forward pass?)")
	}

	seed := tensor.Ones(value.Shape(), value.DType(), e.Device())
	grads := e.tape.Backward(value, seed, e.inner)

	result := make([]*tensor.RawTensor, len(wrt))
	for i, w := range wrt {
		if g, ok := grads[w]; ok {
			result[i] = g
			continue
		}
		result[i] = tensor.Zeros(w.Shape(), w.DType(), e.Device())
	}
	return result, nil
}
