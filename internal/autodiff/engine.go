// Package autodiff implements reverse-mode automatic differentiation.
//
// Engine wraps a compute backend (decorator pattern) and records every
// operation on a gradient Tape during the forward pass. Walking the tape
// in reverse yields exact gradients for any input of the traced
// computation.
//
// Usage:
//
//	engine := autodiff.New(cpu.New())
//	engine.Tape().StartRecording()
//	y := engine.Sum(engine.Mul(x, x)) // y = sum(x²)
//	engine.Tape().StopRecording()
//	grads, err := autodiff.Gradient(engine, y, x)
package autodiff

import (
	"github.com/tangent-ml/tangent/internal/autodiff/ops"
	"github.com/tangent-ml/tangent/internal/tensor"
)

// Engine wraps a Backend and adds automatic differentiation.
// It implements the tensor.Backend interface and records operations on a
// gradient Tape.
//
// An Engine is not safe for concurrent use: the tape is shared mutable
// state across every operation performed through the engine.
type Engine struct {
	inner       tensor.Backend
	tape        *Tape
	compilation bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithoutCompilation disables the trace cache. Engines built with this
// option report false from SupportsCompilation, and callers are expected
// to fall back to uncached evaluation.
func WithoutCompilation() Option {
	return func(e *Engine) {
		e.compilation = false
	}
}

// New creates a new Engine wrapping the given backend.
func New(backend tensor.Backend, opts ...Option) *Engine {
	e := &Engine{
		inner:       backend,
		tape:        NewTape(),
		compilation: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tape returns the active gradient tape.
func (e *Engine) Tape() *Tape {
	return e.tape
}

// Inner returns the wrapped backend.
func (e *Engine) Inner() tensor.Backend {
	return e.inner
}

// SupportsCompilation reports whether the engine can cache traces across
// calls (see Compile). Decided once at construction time.
func (e *Engine) SupportsCompilation() bool {
	return e.compilation
}

// swapTape installs t as the active tape and returns the previous one.
// Used by Traced to give each cache entry a private tape.
func (e *Engine) swapTape(t *Tape) *Tape {
	old := e.tape
	e.tape = t
	return old
}

// Name returns the engine name.
func (e *Engine) Name() string {
	return "Autodiff(" + e.inner.Name() + ")"
}

// Device returns the compute device.
func (e *Engine) Device() tensor.Device {
	return e.inner.Device()
}

// Add performs element-wise addition and records the operation.
func (e *Engine) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := e.inner.Add(a, b)
	if e.tape.IsRecording() {
		e.tape.Record(ops.NewAddOp(a, b, result))
	}
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (e *Engine) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := e.inner.Sub(a, b)
	if e.tape.IsRecording() {
		e.tape.Record(ops.NewSubOp(a, b, result))
	}
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (e *Engine) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := e.inner.Mul(a, b)
	if e.tape.IsRecording() {
		e.tape.Record(ops.NewMulOp(a, b, result))
	}
	return result
}

// Div performs element-wise division and records the operation.
func (e *Engine) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := e.inner.Div(a, b)
	if e.tape.IsRecording() {
		e.tape.Record(ops.NewDivOp(a, b, result))
	}
	return result
}

// MatMul performs matrix multiplication and records the operation.
func (e *Engine) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := e.inner.MatMul(a, b)
	if e.tape.IsRecording() {
		e.tape.Record(ops.NewMatMulOp(a, b, result))
	}
	return result
}

// Transpose permutes axes and records the operation.
func (e *Engine) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	ndim := len(t.Shape())
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	result := e.inner.Transpose(t, axes...)
	if e.tape.IsRecording() {
		e.tape.Record(ops.NewTransposeOp(t, result, axes))
	}
	return result
}

// Reshape changes the shape and records the operation.
func (e *Engine) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result := e.inner.Reshape(t, newShape)
	if e.tape.IsRecording() {
		e.tape.Record(ops.NewReshapeOp(t, result))
	}
	return result
}

// MulScalar multiplies by a constant and records the operation.
func (e *Engine) MulScalar(x *tensor.RawTensor, scalar complex128) *tensor.RawTensor {
	result := e.inner.MulScalar(x, scalar)
	if e.tape.IsRecording() {
		e.tape.Record(ops.NewMulScalarOp(x, result, scalar))
	}
	return result
}

// Neg negates every element and records the operation.
func (e *Engine) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return e.MulScalar(x, -1)
}

// Real extracts the real part and records the operation.
func (e *Engine) Real(x *tensor.RawTensor) *tensor.RawTensor {
	result := e.inner.Real(x)
	if e.tape.IsRecording() {
		e.tape.Record(ops.NewRealOp(x, result))
	}
	return result
}

// Conj conjugates every element and records the operation.
func (e *Engine) Conj(x *tensor.RawTensor) *tensor.RawTensor {
	result := e.inner.Conj(x)
	if e.tape.IsRecording() {
		e.tape.Record(ops.NewConjOp(x, result))
	}
	return result
}

// Sum reduces to a scalar and records the operation.
func (e *Engine) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := e.inner.Sum(x)
	if e.tape.IsRecording() {
		e.tape.Record(ops.NewSumOp(x, result))
	}
	return result
}

// SumDim reduces along a dimension and records the operation.
func (e *Engine) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	result := e.inner.SumDim(x, dim, keepDim)
	if e.tape.IsRecording() {
		e.tape.Record(ops.NewSumDimOp(x, result, dim, keepDim))
	}
	return result
}
