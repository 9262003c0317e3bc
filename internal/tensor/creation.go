package tensor

import (
	"fmt"
	"unsafe"
)

// FromSlice creates a tensor on the given device from a Go slice.
// The element type determines the tensor's data type.
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}

	var zero T
	raw, err := NewRaw(shape, inferDataType(zero), device)
	if err != nil {
		return nil, err
	}
	copy(raw.data, unsafeBytes(data))
	return raw, nil
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType, device Device) *RawTensor {
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("zeros: %v", err))
	}
	return raw
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType, device Device) *RawTensor {
	return Full(shape, 1.0, dtype, device)
}

// Full creates a tensor with every element set to value.
// The value is converted to the tensor's data type.
func Full(shape Shape, value float64, dtype DataType, device Device) *RawTensor {
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("full: %v", err))
	}
	fill(raw, value)
	return raw
}

// Eye creates an n×n identity matrix.
func Eye(n int, dtype DataType, device Device) *RawTensor {
	raw, err := NewRaw(Shape{n, n}, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("eye: %v", err))
	}
	switch dtype {
	case Float32:
		data := raw.AsFloat32()
		for i := 0; i < n; i++ {
			data[i*n+i] = 1
		}
	case Float64:
		data := raw.AsFloat64()
		for i := 0; i < n; i++ {
			data[i*n+i] = 1
		}
	case Complex64:
		data := raw.AsComplex64()
		for i := 0; i < n; i++ {
			data[i*n+i] = 1
		}
	case Complex128:
		data := raw.AsComplex128()
		for i := 0; i < n; i++ {
			data[i*n+i] = 1
		}
	}
	return raw
}

// unsafeBytes reinterprets a typed slice as raw bytes.
func unsafeBytes[T DType](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*int(unsafe.Sizeof(zero)))
}

// fill sets every element of the tensor to value.
func fill(r *RawTensor, value float64) {
	switch r.dtype {
	case Float32:
		data := r.AsFloat32()
		for i := range data {
			data[i] = float32(value)
		}
	case Float64:
		data := r.AsFloat64()
		for i := range data {
			data[i] = value
		}
	case Complex64:
		data := r.AsComplex64()
		for i := range data {
			data[i] = complex(float32(value), 0)
		}
	case Complex128:
		data := r.AsComplex128()
		for i := range data {
			data[i] = complex(value, 0)
		}
	}
}
