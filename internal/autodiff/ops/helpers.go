package ops

import (
	"fmt"

	"github.com/tangent-ml/tangent/internal/tensor"
)

// reduceBroadcast sums a gradient back down to the shape of the input it
// belongs to. Needed whenever the forward pass broadcast the input up to
// a larger output shape.
func reduceBroadcast(grad *tensor.RawTensor, target tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(target) {
		return grad
	}

	// Collapse extra leading dimensions.
	for len(grad.Shape()) > len(target) {
		grad = backend.SumDim(grad, 0, false)
	}

	// Collapse dimensions the input held at size 1.
	for d := 0; d < len(target); d++ {
		if target[d] == 1 && grad.Shape()[d] != 1 {
			grad = backend.SumDim(grad, d, true)
		}
	}

	if !grad.Shape().Equal(target) {
		grad = backend.Reshape(grad, target)
	}
	return grad
}

// expand broadcasts a gradient up to shape by multiplying a ones tensor
// of the target shape with it.
func expand(grad *tensor.RawTensor, shape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(shape) {
		return grad
	}
	return backend.Mul(tensor.Ones(shape, grad.DType(), grad.Device()), grad)
}

// widenToComplex converts a real gradient to the matching complex dtype
// with zero imaginary parts. Complex gradients pass through unchanged.
func widenToComplex(grad *tensor.RawTensor) *tensor.RawTensor {
	if grad.DType().IsComplex() {
		return grad
	}

	result, err := tensor.NewRaw(grad.Shape(), grad.DType().ComplexType(), grad.Device())
	if err != nil {
		panic(fmt.Sprintf("widenToComplex: %v", err))
	}
	switch grad.DType() {
	case tensor.Float32:
		src, dst := grad.AsFloat32(), result.AsComplex64()
		for i, v := range src {
			dst[i] = complex(v, 0)
		}
	case tensor.Float64:
		src, dst := grad.AsFloat64(), result.AsComplex128()
		for i, v := range src {
			dst[i] = complex(v, 0)
		}
	}
	return result
}
