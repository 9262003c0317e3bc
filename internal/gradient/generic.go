package gradient

import (
	"fmt"

	"github.com/tangent-ml/tangent/internal/autodiff"
	"github.com/tangent-ml/tangent/internal/manifold"
	"github.com/tangent-ml/tangent/internal/tensor"
)

// Evaluate computes the cost and its Euclidean gradient at a
// single-tensor point. Only valid for functions built in Generic mode.
//
// Errors raised by the cost function or by the engine during tracing
// propagate unmodified.
func (f *Function) Evaluate(x *tensor.RawTensor) (float64, *tensor.RawTensor, error) {
	if f.mode != Generic {
		return 0, nil, fmt.Errorf("gradient: %w: Evaluate called on a %s function", ErrModeMismatch, f.mode)
	}

	var (
		value *tensor.RawTensor
		grad  *tensor.RawTensor
		err   error
	)
	if f.traced != nil {
		var grads []*tensor.RawTensor
		value, grads, err = f.traced.Call(x)
		if err != nil {
			return 0, nil, err
		}
		grad = grads[0]
	} else {
		value, grad, err = f.evaluateUncached(x)
		if err != nil {
			return 0, nil, err
		}
	}

	// Anchored sub-blocks are held fixed by the manifold, which the
	// trace cannot know; suppress their gradient signal.
	if anchored, ok := f.manifold.(manifold.AnchorProvider); ok {
		zeroSlices(grad, anchored.AnchorIndices())
	}

	return scalarValue(value), grad, nil
}

// evaluateUncached is the fallback path for engines without trace
// caching: a throwaway trace on the engine's own tape.
func (f *Function) evaluateUncached(x *tensor.RawTensor) (*tensor.RawTensor, *tensor.RawTensor, error) {
	tape := f.engine.Tape()
	tape.Clear()
	tape.StartRecording()
	value, err := f.traceCost(f.engine, x)
	tape.StopRecording()
	if err != nil {
		return nil, nil, err
	}

	grads, err := autodiff.Gradient(f.engine, value, x)
	if err != nil {
		return nil, nil, err
	}
	return value, grads[0], nil
}

// traceCost runs the user cost and normalizes its value to a real
// scalar. A complex cost value means the author forgot to take the real
// part; the engine needs a real scalar to seed the backward pass, so the
// real part is extracted here, on the tape, before differentiation.
func (f *Function) traceCost(e *autodiff.Engine, x *tensor.RawTensor) (*tensor.RawTensor, error) {
	value, err := f.cost(e, x)
	if err != nil {
		return nil, err
	}
	if value.DType().IsComplex() {
		value = e.Real(value)
	}
	return value, nil
}

// zeroSlices zeroes the given slices of t along its first axis.
func zeroSlices(t *tensor.RawTensor, indices []int) {
	shape := t.Shape()
	if len(shape) == 0 || len(indices) == 0 {
		return
	}
	sliceSize := t.NumElements() / shape[0]

	switch t.DType() {
	case tensor.Float32:
		data := t.AsFloat32()
		for _, idx := range indices {
			clear(data[idx*sliceSize : (idx+1)*sliceSize])
		}
	case tensor.Float64:
		data := t.AsFloat64()
		for _, idx := range indices {
			clear(data[idx*sliceSize : (idx+1)*sliceSize])
		}
	case tensor.Complex64:
		data := t.AsComplex64()
		for _, idx := range indices {
			clear(data[idx*sliceSize : (idx+1)*sliceSize])
		}
	case tensor.Complex128:
		data := t.AsComplex128()
		for _, idx := range indices {
			clear(data[idx*sliceSize : (idx+1)*sliceSize])
		}
	}
}
