package ops

import "github.com/tangent-ml/tangent/internal/tensor"

// MulScalarOp represents multiplication by a constant: output = s * x.
//
// Backward pass: grad_x = outputGrad * conj(s).
type MulScalarOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	scalar complex128
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(input, output *tensor.RawTensor, scalar complex128) *MulScalarOp {
	return &MulScalarOp{
		input:  input,
		output: output,
		scalar: scalar,
	}
}

// Backward computes the input gradient for scalar multiplication.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	s := complex(real(op.scalar), -imag(op.scalar))
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, s)}
}

// Inputs returns the input tensor.
func (op *MulScalarOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the scaled tensor.
func (op *MulScalarOp) Output() *tensor.RawTensor {
	return op.output
}
