package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Backends must not modify their inputs: autodiff records pointers to
// input tensors during the forward pass and reads them again during the
// backward pass.
type Backend interface {
	// Element-wise binary operations (NumPy-style broadcasting).
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations (2-D operands).
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Reshape(t *RawTensor, newShape Shape) *RawTensor

	// Element-wise unary operations.
	MulScalar(x *RawTensor, scalar complex128) *RawTensor
	Neg(x *RawTensor) *RawTensor
	Real(x *RawTensor) *RawTensor // real part; real input passes through as a copy
	Conj(x *RawTensor) *RawTensor // complex conjugate; identity copy for real input

	// Reduction operations.
	Sum(x *RawTensor) *RawTensor                           // total sum (scalar result)
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor // sum along dimension

	// Metadata.
	Name() string
	Device() Device
}
