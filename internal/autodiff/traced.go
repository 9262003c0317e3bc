package autodiff

import (
	"strings"

	"github.com/tangent-ml/tangent/internal/tensor"
)

// TraceFunc is a computation traced by the engine: it receives the
// engine (for recorded operations) and the current inputs, and returns
// the scalar value to differentiate.
type TraceFunc func(e *Engine, inputs []*tensor.RawTensor) (*tensor.RawTensor, error)

// Traced is a cached, differentiable computation produced by
// Engine.Compile.
//
// Each distinct input signature (dtype and shape per input) owns a cache
// entry with a private tape. Repeat calls with a compatible signature
// reuse the entry's tape buffer instead of growing a fresh one, avoiding
// per-call graph reconstruction overhead. Results are identical with or
// without a cache hit.
//
// A Traced value is not safe for concurrent use.
type Traced struct {
	engine  *Engine
	fn      TraceFunc
	entries map[string]*Tape // cache entry per input signature
}

// Compile wraps fn in a trace cache. Callers should check
// SupportsCompilation first; Compile on an engine that does not support
// compilation returns nil.
func (e *Engine) Compile(fn TraceFunc) *Traced {
	if !e.compilation {
		return nil
	}
	return &Traced{
		engine:  e,
		fn:      fn,
		entries: make(map[string]*Tape),
	}
}

// Call evaluates the traced function at the given inputs and returns the
// scalar value together with the gradients with respect to every input.
//
// Errors from the traced function propagate unmodified.
func (tr *Traced) Call(inputs ...*tensor.RawTensor) (*tensor.RawTensor, []*tensor.RawTensor, error) {
	key := signature(inputs)
	tape, ok := tr.entries[key]
	if !ok {
		tape = NewTape()
		tr.entries[key] = tape
	}

	tape.Clear()
	tape.StartRecording()
	previous := tr.engine.swapTape(tape)
	defer tr.engine.swapTape(previous)

	value, err := tr.fn(tr.engine, inputs)
	tape.StopRecording()
	if err != nil {
		return nil, nil, err
	}

	grads, err := Gradient(tr.engine, value, inputs...)
	if err != nil {
		return nil, nil, err
	}

	return value, grads, nil
}

// ClearCache drops every cache entry. The next Call retraces from
// scratch. Use this when reusing an engine across unrelated problems.
func (tr *Traced) ClearCache() {
	tr.entries = make(map[string]*Tape)
}

// NumEntries returns the number of live cache entries.
func (tr *Traced) NumEntries() int {
	return len(tr.entries)
}

// signature keys the cache on the dtype and shape of every input.
func signature(inputs []*tensor.RawTensor) string {
	var sb strings.Builder
	for _, in := range inputs {
		sb.WriteString(in.DType().String())
		sb.WriteString(in.Shape().String())
		sb.WriteByte(';')
	}
	return sb.String()
}
