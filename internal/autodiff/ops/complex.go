package ops

import "github.com/tangent-ml/tangent/internal/tensor"

// RealOp extracts the real part of a complex tensor: output = Re(x).
//
// Backward pass: the real gradient is widened back to the complex dtype
// with zero imaginary parts (d Re(z) / d Re(z) = 1, d Re(z) / d Im(z) = 0).
type RealOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewRealOp creates a new RealOp.
func NewRealOp(input, output *tensor.RawTensor) *RealOp {
	return &RealOp{input: input, output: output}
}

// Backward widens the real gradient to the input's complex dtype.
func (op *RealOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	if !op.input.DType().IsComplex() {
		return []*tensor.RawTensor{outputGrad}
	}
	return []*tensor.RawTensor{widenToComplex(outputGrad)}
}

// Inputs returns the input tensor.
func (op *RealOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the real part.
func (op *RealOp) Output() *tensor.RawTensor {
	return op.output
}

// ConjOp represents complex conjugation: output = conj(x).
type ConjOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewConjOp creates a new ConjOp.
func NewConjOp(input, output *tensor.RawTensor) *ConjOp {
	return &ConjOp{input: input, output: output}
}

// Backward conjugates the output gradient.
func (op *ConjOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Conj(outputGrad)}
}

// Inputs returns the input tensor.
func (op *ConjOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the conjugated tensor.
func (op *ConjOp) Output() *tensor.RawTensor {
	return op.output
}
