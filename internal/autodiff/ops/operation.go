// Package ops defines the differentiable operations recorded on the
// gradient tape.
//
// Each operation stores its forward-pass inputs and output and knows how
// to turn an output gradient into input gradients. For complex tensors
// the backward rules follow the conjugate convention: for a cost that is
// real-valued at the end of the graph, the gradient returned for a
// complex input is the direction of steepest ascent, i.e. conj terms
// appear wherever an input multiplies the gradient.
package ops

import "github.com/tangent-ml/tangent/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Operations are recorded during the forward pass and replayed in reverse
// during the backward pass.
type Operation interface {
	// Backward computes gradients for the inputs given the output gradient.
	// The returned slice matches Inputs() position by position; nil entries
	// mean no gradient flows to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}
