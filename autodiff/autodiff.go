// Copyright 2025 Tangent ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// The Engine wraps any compute backend and records operations on a
// gradient tape during the forward pass; walking the tape in reverse
// yields exact gradients for the traced inputs.
//
// Example:
//
//	engine := autodiff.New(cpu.New())
//	engine.Tape().StartRecording()
//	y := engine.Sum(engine.Mul(x, x)) // y = sum(x²)
//	engine.Tape().StopRecording()
//	grads, err := autodiff.Gradient(engine, y, x) // dy/dx = 2x
package autodiff

import (
	"github.com/tangent-ml/tangent/internal/autodiff"
	"github.com/tangent-ml/tangent/internal/tensor"
)

// Engine is the autodiff-enabled backend.
type Engine = autodiff.Engine

// Option configures an Engine.
type Option = autodiff.Option

// New creates a new Engine wrapping the given backend.
func New(backend tensor.Backend, opts ...Option) *Engine {
	return autodiff.New(backend, opts...)
}

// WithoutCompilation disables the engine's trace cache.
func WithoutCompilation() Option {
	return autodiff.WithoutCompilation()
}

// Tape records operations for automatic differentiation.
type Tape = autodiff.Tape

// NewTape creates a new gradient tape.
func NewTape() *Tape {
	return autodiff.NewTape()
}

// TraceFunc is a computation traced by the engine.
type TraceFunc = autodiff.TraceFunc

// Traced is a cached differentiable computation produced by
// Engine.Compile.
type Traced = autodiff.Traced

// Gradient computes gradients of a traced scalar value with respect to
// the given inputs.
func Gradient(e *Engine, value *tensor.RawTensor, wrt ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return autodiff.Gradient(e, value, wrt...)
}
