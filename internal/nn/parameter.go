package nn

import (
	"github.com/born-ml/resnet/internal/tensor"
)

// Parameter is a named tensor owned by a layer.
//
// Trainable parameters (weights, biases, normalization scale and shift) are
// what an external optimizer updates. Non-trainable ones (running mean and
// variance) are state that travels with the weights but is only changed by
// the layer itself.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
type Parameter[B tensor.Backend] struct {
	name      string
	tensor    *tensor.Tensor[float32, B]
	trainable bool
}

// NewParameter creates a trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t, trainable: true}
}

// NewBuffer creates a non-trainable parameter, such as a running statistic.
func NewBuffer[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Trainable reports whether an optimizer should update this parameter.
func (p *Parameter[B]) Trainable() bool {
	return p.trainable
}

// NumElements returns the number of scalars held by the parameter.
func (p *Parameter[B]) NumElements() int {
	return p.tensor.NumElements()
}

// CountParameters sums NumElements over params.
// With trainableOnly, buffers are skipped.
func CountParameters[B tensor.Backend](params []*Parameter[B], trainableOnly bool) int {
	n := 0
	for _, p := range params {
		if trainableOnly && !p.trainable {
			continue
		}
		n += p.NumElements()
	}
	return n
}
