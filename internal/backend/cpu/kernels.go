package cpu

import (
	"github.com/tangent-ml/tangent/internal/tensor"
)

// kernelSet bundles the per-dtype variants of an element-wise binary
// operation for dtype dispatch in CPUBackend.binary.
type kernelSet struct {
	f32  func(a, b float32) float32
	f64  func(a, b float64) float64
	c64  func(a, b complex64) complex64
	c128 func(a, b complex128) complex128
}

func add[T tensor.DType](a, b T) T { return a + b }
func sub[T tensor.DType](a, b T) T { return a - b }
func mul[T tensor.DType](a, b T) T { return a * b }
func div[T tensor.DType](a, b T) T { return a / b }

var (
	addKernel = kernelSet{add[float32], add[float64], add[complex64], add[complex128]}
	subKernel = kernelSet{sub[float32], sub[float64], sub[complex64], sub[complex128]}
	mulKernel = kernelSet{mul[float32], mul[float64], mul[complex64], mul[complex128]}
	divKernel = kernelSet{div[float32], div[float64], div[complex64], div[complex128]}
)

// broadcastStrides maps input strides onto the output rank, with stride 0
// for broadcast (size-1 or missing) dimensions.
func broadcastStrides(out, in tensor.Shape) []int {
	strides := make([]int, len(out))
	inStrides := in.ComputeStrides()
	offset := len(out) - len(in)
	for i := range out {
		j := i - offset
		if j < 0 || in[j] == 1 {
			strides[i] = 0
		} else {
			strides[i] = inStrides[j]
		}
	}
	return strides
}

// broadcastKernel applies f element-wise over broadcast operands.
func broadcastKernel[T tensor.DType](out, a, b []T, outShape, aShape, bShape tensor.Shape, f func(T, T) T) {
	if aShape.Equal(bShape) {
		for i := range out {
			out[i] = f(a[i], b[i])
		}
		return
	}

	aStrides := broadcastStrides(outShape, aShape)
	bStrides := broadcastStrides(outShape, bShape)
	idx := make([]int, len(outShape))
	for i := range out {
		ai, bi := 0, 0
		for d := range idx {
			ai += idx[d] * aStrides[d]
			bi += idx[d] * bStrides[d]
		}
		out[i] = f(a[ai], b[bi])

		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < outShape[d] {
				break
			}
			idx[d] = 0
		}
	}
}

// mapKernel applies f element-wise.
func mapKernel[T tensor.DType](out, in []T, f func(T) T) {
	for i, v := range in {
		out[i] = f(v)
	}
}

// sumKernel returns the total sum of the slice.
func sumKernel[T tensor.DType](in []T) T {
	var total T
	for _, v := range in {
		total += v
	}
	return total
}

// matMulKernel computes out[m,n] = a[m,k] @ b[k,n] in ikj order.
func matMulKernel[T tensor.DType](out, a, b []T, m, k, n int) {
	for i := 0; i < m; i++ {
		for p := 0; p < k; p++ {
			av := a[i*k+p]
			if av == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out[i*n+j] += av * b[p*n+j]
			}
		}
	}
}

// transposeKernel copies in into out with axes permuted.
func transposeKernel[T tensor.DType](out, in []T, inShape tensor.Shape, axes []int) {
	outShape := make(tensor.Shape, len(axes))
	for i, ax := range axes {
		outShape[i] = inShape[ax]
	}
	outStrides := outShape.ComputeStrides()

	idx := make([]int, len(inShape))
	for i := range in {
		oi := 0
		for d, ax := range axes {
			oi += idx[ax] * outStrides[d]
		}
		out[oi] = in[i]

		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < inShape[d] {
				break
			}
			idx[d] = 0
		}
	}
}

// sumDimKernel accumulates in into out along dim. The flat layout of out
// is the same whether or not the reduced dimension is kept.
func sumDimKernel[T tensor.DType](out, in []T, shape tensor.Shape, dim int) {
	outStrides := make([]int, len(shape))
	stride := 1
	for d := len(shape) - 1; d >= 0; d-- {
		if d == dim {
			continue
		}
		outStrides[d] = stride
		stride *= shape[d]
	}

	idx := make([]int, len(shape))
	for i := range in {
		oi := 0
		for d := range idx {
			oi += idx[d] * outStrides[d]
		}
		out[oi] += in[i]

		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
		}
	}
}
