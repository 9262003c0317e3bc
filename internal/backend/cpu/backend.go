// Package cpu implements the dense CPU compute backend.
package cpu

import (
	"fmt"

	"github.com/tangent-ml/tangent/internal/tensor"
)

// CPUBackend implements tensor operations on the CPU.
//
// All operations allocate fresh result tensors; inputs are never
// modified. This is required by the autodiff engine, which keeps
// references to forward-pass inputs for the backward pass.
type CPUBackend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{device: tensor.CPU}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, addKernel)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, subKernel)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, mulKernel)
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b, divKernel)
}

// MatMul performs matrix multiplication of two 2-D tensors:
// [m, k] @ [k, n] -> [m, n].
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: expected 2-D operands, got %v and %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("matmul: inner dimensions do not match: %v @ %v", as, bs))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch: %s vs %s", a.DType(), b.DType()))
	}

	result := mustNewRaw(tensor.Shape{as[0], bs[1]}, a.DType(), cpu.device)
	switch a.DType() {
	case tensor.Float32:
		matMulKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), as[0], as[1], bs[1])
	case tensor.Float64:
		matMulKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), as[0], as[1], bs[1])
	case tensor.Complex64:
		matMulKernel(result.AsComplex64(), a.AsComplex64(), b.AsComplex64(), as[0], as[1], bs[1])
	case tensor.Complex128:
		matMulKernel(result.AsComplex128(), a.AsComplex128(), b.AsComplex128(), as[0], as[1], bs[1])
	}
	return result
}

// Transpose permutes the tensor's axes. With no axes given, all
// dimensions are reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	ndim := len(t.Shape())
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: got %d axes for %d-D tensor", len(axes), ndim))
	}

	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		outShape[i] = t.Shape()[ax]
	}

	result := mustNewRaw(outShape, t.DType(), cpu.device)
	switch t.DType() {
	case tensor.Float32:
		transposeKernel(result.AsFloat32(), t.AsFloat32(), t.Shape(), axes)
	case tensor.Float64:
		transposeKernel(result.AsFloat64(), t.AsFloat64(), t.Shape(), axes)
	case tensor.Complex64:
		transposeKernel(result.AsComplex64(), t.AsComplex64(), t.Shape(), axes)
	case tensor.Complex128:
		transposeKernel(result.AsComplex128(), t.AsComplex128(), t.Shape(), axes)
	}
	return result
}

// Reshape returns a tensor with the same data and a new shape.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result, err := t.Clone().WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// MulScalar multiplies every element by a scalar. For real tensors the
// imaginary part of the scalar must be zero.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar complex128) *tensor.RawTensor {
	if !x.DType().IsComplex() && imag(scalar) != 0 {
		panic(fmt.Sprintf("mulscalar: complex scalar %v applied to %s tensor", scalar, x.DType()))
	}
	result := mustNewRaw(x.Shape(), x.DType(), cpu.device)
	switch x.DType() {
	case tensor.Float32:
		s := float32(real(scalar))
		mapKernel(result.AsFloat32(), x.AsFloat32(), func(v float32) float32 { return v * s })
	case tensor.Float64:
		s := real(scalar)
		mapKernel(result.AsFloat64(), x.AsFloat64(), func(v float64) float64 { return v * s })
	case tensor.Complex64:
		s := complex64(scalar)
		mapKernel(result.AsComplex64(), x.AsComplex64(), func(v complex64) complex64 { return v * s })
	case tensor.Complex128:
		mapKernel(result.AsComplex128(), x.AsComplex128(), func(v complex128) complex128 { return v * scalar })
	}
	return result
}

// Neg negates every element.
func (cpu *CPUBackend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.MulScalar(x, -1)
}

// Real extracts the real part of a complex tensor. Real tensors pass
// through as a copy.
func (cpu *CPUBackend) Real(x *tensor.RawTensor) *tensor.RawTensor {
	if !x.DType().IsComplex() {
		return x.Clone()
	}
	result := mustNewRaw(x.Shape(), x.DType().RealType(), cpu.device)
	switch x.DType() {
	case tensor.Complex64:
		src, dst := x.AsComplex64(), result.AsFloat32()
		for i, v := range src {
			dst[i] = real(v)
		}
	case tensor.Complex128:
		src, dst := x.AsComplex128(), result.AsFloat64()
		for i, v := range src {
			dst[i] = real(v)
		}
	}
	return result
}

// Conj returns the complex conjugate. Real tensors pass through as a copy.
func (cpu *CPUBackend) Conj(x *tensor.RawTensor) *tensor.RawTensor {
	if !x.DType().IsComplex() {
		return x.Clone()
	}
	result := mustNewRaw(x.Shape(), x.DType(), cpu.device)
	switch x.DType() {
	case tensor.Complex64:
		mapKernel(result.AsComplex64(), x.AsComplex64(), func(v complex64) complex64 {
			return complex(real(v), -imag(v))
		})
	case tensor.Complex128:
		mapKernel(result.AsComplex128(), x.AsComplex128(), func(v complex128) complex128 {
			return complex(real(v), -imag(v))
		})
	}
	return result
}

// Sum reduces the tensor to a scalar (shape []).
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := mustNewRaw(tensor.Shape{}, x.DType(), cpu.device)
	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] = sumKernel(x.AsFloat32())
	case tensor.Float64:
		result.AsFloat64()[0] = sumKernel(x.AsFloat64())
	case tensor.Complex64:
		result.AsComplex64()[0] = sumKernel(x.AsComplex64())
	case tensor.Complex128:
		result.AsComplex128()[0] = sumKernel(x.AsComplex128())
	}
	return result
}

// SumDim sums along a dimension. With keepDim the reduced dimension
// stays with size 1; otherwise it is removed.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("sumdim: dimension %d out of range for shape %v", dim, shape))
	}

	outShape := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != dim:
			outShape = append(outShape, d)
		case keepDim:
			outShape = append(outShape, 1)
		}
	}

	result := mustNewRaw(outShape, x.DType(), cpu.device)
	switch x.DType() {
	case tensor.Float32:
		sumDimKernel(result.AsFloat32(), x.AsFloat32(), shape, dim)
	case tensor.Float64:
		sumDimKernel(result.AsFloat64(), x.AsFloat64(), shape, dim)
	case tensor.Complex64:
		sumDimKernel(result.AsComplex64(), x.AsComplex64(), shape, dim)
	case tensor.Complex128:
		sumDimKernel(result.AsComplex128(), x.AsComplex128(), shape, dim)
	}
	return result
}

// binary dispatches an element-wise binary operation by dtype.
func (cpu *CPUBackend) binary(name string, a, b *tensor.RawTensor, k kernelSet) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", name, a.DType(), b.DType()))
	}
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result := mustNewRaw(outShape, a.DType(), cpu.device)
	switch a.DType() {
	case tensor.Float32:
		broadcastKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), outShape, a.Shape(), b.Shape(), k.f32)
	case tensor.Float64:
		broadcastKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), outShape, a.Shape(), b.Shape(), k.f64)
	case tensor.Complex64:
		broadcastKernel(result.AsComplex64(), a.AsComplex64(), b.AsComplex64(), outShape, a.Shape(), b.Shape(), k.c64)
	case tensor.Complex128:
		broadcastKernel(result.AsComplex128(), a.AsComplex128(), b.AsComplex128(), outShape, a.Shape(), b.Shape(), k.c128)
	}
	return result
}

func mustNewRaw(shape tensor.Shape, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("cpu: failed to create result tensor: %v", err))
	}
	return result
}
