package cpu_test

import (
	"math"
	"testing"

	"github.com/tangent-ml/tangent/internal/backend/cpu"
	"github.com/tangent-ml/tangent/internal/tensor"
)

func fromF64(t *testing.T, data []float64, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(data, tensor.Shape(shape), tensor.CPU)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	return raw
}

func fromC128(t *testing.T, data []complex128, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(data, tensor.Shape(shape), tensor.CPU)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	return raw
}

func assertF64(t *testing.T, got *tensor.RawTensor, want []float64) {
	t.Helper()
	data := got.AsFloat64()
	if len(data) != len(want) {
		t.Fatalf("got %d elements, want %d", len(data), len(want))
	}
	for i := range want {
		if math.Abs(data[i]-want[i]) > 1e-12 {
			t.Errorf("data[%d] = %g, want %g", i, data[i], want[i])
		}
	}
}

// TestAdd tests element-wise addition, including inputs left unmodified.
func TestAdd(t *testing.T) {
	be := cpu.New()
	a := fromF64(t, []float64{1, 2, 3}, 3)
	b := fromF64(t, []float64{10, 20, 30}, 3)

	assertF64(t, be.Add(a, b), []float64{11, 22, 33})
	assertF64(t, a, []float64{1, 2, 3})
	assertF64(t, b, []float64{10, 20, 30})
}

// TestAdd_Broadcasting tests row and scalar broadcasting.
func TestAdd_Broadcasting(t *testing.T) {
	be := cpu.New()

	// [2,3] + [3] broadcasts the row.
	a := fromF64(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	row := fromF64(t, []float64{10, 20, 30}, 3)
	got := be.Add(a, row)
	if !got.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("shape = %v, want [2 3]", got.Shape())
	}
	assertF64(t, got, []float64{11, 22, 33, 14, 25, 36})

	// [2,3] + scalar.
	scalar := fromF64(t, []float64{100})
	assertF64(t, be.Add(a, scalar), []float64{101, 102, 103, 104, 105, 106})

	// [3,1] * [1,4] broadcasts both sides.
	col := fromF64(t, []float64{1, 2, 3}, 3, 1)
	r := fromF64(t, []float64{1, 10, 100, 1000}, 1, 4)
	prod := be.Mul(col, r)
	if !prod.Shape().Equal(tensor.Shape{3, 4}) {
		t.Fatalf("shape = %v, want [3 4]", prod.Shape())
	}
	assertF64(t, prod, []float64{
		1, 10, 100, 1000,
		2, 20, 200, 2000,
		3, 30, 300, 3000,
	})
}

// TestSubMulDiv tests the remaining element-wise binaries.
func TestSubMulDiv(t *testing.T) {
	be := cpu.New()
	a := fromF64(t, []float64{6, 8, 10}, 3)
	b := fromF64(t, []float64{2, 4, 5}, 3)

	assertF64(t, be.Sub(a, b), []float64{4, 4, 5})
	assertF64(t, be.Mul(a, b), []float64{12, 32, 50})
	assertF64(t, be.Div(a, b), []float64{3, 2, 2})
}

// TestMatMul tests 2-D matrix multiplication.
func TestMatMul(t *testing.T) {
	be := cpu.New()
	a := fromF64(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	b := fromF64(t, []float64{7, 8, 9, 10, 11, 12}, 3, 2)

	got := be.MatMul(a, b)
	if !got.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("shape = %v, want [2 2]", got.Shape())
	}
	assertF64(t, got, []float64{58, 64, 139, 154})
}

// TestMatMul_Complex tests complex matrix multiplication.
func TestMatMul_Complex(t *testing.T) {
	be := cpu.New()
	a := fromC128(t, []complex128{1 + 1i, 0, 0, 1 - 1i}, 2, 2)
	b := fromC128(t, []complex128{2, 1i, -1i, 2}, 2, 2)

	got := be.MatMul(a, b).AsComplex128()
	want := []complex128{2 + 2i, -1 + 1i, -1 - 1i, 2 - 2i}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// TestTranspose tests default reversal and explicit axis permutation.
func TestTranspose(t *testing.T) {
	be := cpu.New()
	a := fromF64(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	got := be.Transpose(a)
	if !got.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("shape = %v, want [3 2]", got.Shape())
	}
	assertF64(t, got, []float64{1, 4, 2, 5, 3, 6})

	// Explicit identity permutation.
	same := be.Transpose(a, 0, 1)
	assertF64(t, same, []float64{1, 2, 3, 4, 5, 6})

	// 3-D permutation.
	cube := fromF64(t, []float64{0, 1, 2, 3, 4, 5, 6, 7}, 2, 2, 2)
	perm := be.Transpose(cube, 2, 0, 1)
	if !perm.Shape().Equal(tensor.Shape{2, 2, 2}) {
		t.Fatalf("shape = %v, want [2 2 2]", perm.Shape())
	}
	assertF64(t, perm, []float64{0, 2, 4, 6, 1, 3, 5, 7})
}

// TestReshape tests reshaping without touching the source.
func TestReshape(t *testing.T) {
	be := cpu.New()
	a := fromF64(t, []float64{1, 2, 3, 4}, 2, 2)

	got := be.Reshape(a, tensor.Shape{4})
	if !got.Shape().Equal(tensor.Shape{4}) {
		t.Fatalf("shape = %v, want [4]", got.Shape())
	}
	got.AsFloat64()[0] = 99
	assertF64(t, a, []float64{1, 2, 3, 4})
}

// TestMulScalar tests scalar multiplication for real and complex tensors.
func TestMulScalar(t *testing.T) {
	be := cpu.New()

	a := fromF64(t, []float64{1, -2, 3}, 3)
	assertF64(t, be.MulScalar(a, 2), []float64{2, -4, 6})
	assertF64(t, be.Neg(a), []float64{-1, 2, -3})

	c := fromC128(t, []complex128{1 + 1i, 2}, 2)
	got := be.MulScalar(c, 1i).AsComplex128()
	if got[0] != -1+1i || got[1] != 2i {
		t.Errorf("MulScalar(c, i) = %v", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("complex scalar on real tensor did not panic")
		}
	}()
	be.MulScalar(a, 1i)
}

// TestRealConj tests the complex unary operations.
func TestRealConj(t *testing.T) {
	be := cpu.New()
	c := fromC128(t, []complex128{3 + 4i, -1 - 2i}, 2)

	re := be.Real(c)
	if re.DType() != tensor.Float64 {
		t.Fatalf("Real dtype = %v, want float64", re.DType())
	}
	assertF64(t, re, []float64{3, -1})

	conj := be.Conj(c).AsComplex128()
	if conj[0] != 3-4i || conj[1] != -1+2i {
		t.Errorf("Conj = %v", conj)
	}

	// Real tensors pass through both as copies.
	r := fromF64(t, []float64{1, 2}, 2)
	be.Real(r).AsFloat64()[0] = 99
	be.Conj(r).AsFloat64()[0] = 99
	assertF64(t, r, []float64{1, 2})
}

// TestSum tests full reduction to a scalar.
func TestSum(t *testing.T) {
	be := cpu.New()
	a := fromF64(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	got := be.Sum(a)
	if !got.Shape().Equal(tensor.Shape{}) {
		t.Fatalf("shape = %v, want scalar", got.Shape())
	}
	if got.AsFloat64()[0] != 21 {
		t.Errorf("Sum = %f, want 21", got.AsFloat64()[0])
	}

	c := fromC128(t, []complex128{1 + 1i, 2 - 3i}, 2)
	if s := be.Sum(c).AsComplex128()[0]; s != 3-2i {
		t.Errorf("complex Sum = %v, want (3-2i)", s)
	}
}

// TestSumDim tests dimension reductions with and without keepDim.
func TestSumDim(t *testing.T) {
	be := cpu.New()
	a := fromF64(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	rows := be.SumDim(a, 0, false)
	if !rows.Shape().Equal(tensor.Shape{3}) {
		t.Fatalf("shape = %v, want [3]", rows.Shape())
	}
	assertF64(t, rows, []float64{5, 7, 9})

	cols := be.SumDim(a, 1, true)
	if !cols.Shape().Equal(tensor.Shape{2, 1}) {
		t.Fatalf("shape = %v, want [2 1]", cols.Shape())
	}
	assertF64(t, cols, []float64{6, 15})
}

// TestDTypeMismatch tests that binaries reject mixed dtypes.
func TestDTypeMismatch(t *testing.T) {
	be := cpu.New()
	a := fromF64(t, []float64{1}, 1)
	b, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1}, tensor.CPU)

	defer func() {
		if recover() == nil {
			t.Error("mixed-dtype Add did not panic")
		}
	}()
	be.Add(a, b)
}
