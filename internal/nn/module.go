// Package nn implements the layers a convolutional residual classifier is
// assembled from.
//
// This package provides:
//   - Module interface: Base interface for all NN components
//   - Parameter: Weights, biases and normalization statistics
//   - Conv2D, BatchNorm2D, MaxPool2D, GlobalAvgPool2D, Flatten, Linear, ReLU
//   - Sequential: Container for stacking layers
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
//
// Constructors and Forward panic on invalid arguments or shapes with an
// "<op>: ..." message, the same convention the backends use.
package nn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/resnet/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	stem := nn.NewSequential[Backend](
//	    nn.NewConv2D(3, 64, 7, 7, 2, 3, true, backend),
//	    nn.NewBatchNorm2D(64, 1e-5, backend),
//	    nn.NewReLU[Backend](),
//	    nn.NewMaxPool2D(3, 2, 1, backend),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	// The returned tensor never aliases the input.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns every parameter tensor of this module, including
	// non-trainable normalization statistics. Returns nil for modules
	// without parameters (activations, pooling).
	Parameters() []*Parameter[B]

	// StateDict maps parameter names to their raw tensors.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies values from stateDict into the module's parameters.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// Trainable is implemented by modules whose Forward depends on the mode,
// such as BatchNorm2D. Containers forward SetTraining to their children.
type Trainable interface {
	SetTraining(training bool)
}

// SetTraining switches m (and, for containers, its children) between
// training and evaluation mode. Modules that do not care are left alone.
func SetTraining[B tensor.Backend](m Module[B], training bool) {
	if t, ok := m.(Trainable); ok {
		t.SetTraining(training)
	}
}

// stateless is embedded by modules that have no parameters.
type stateless[B tensor.Backend] struct{}

// Parameters returns nil.
func (stateless[B]) Parameters() []*Parameter[B] { return nil }

// StateDict returns an empty map.
func (stateless[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict accepts any state dict and loads nothing.
func (stateless[B]) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }

// PrefixStateDict copies src into dst with every key prefixed by prefix + ".".
func PrefixStateDict(dst map[string]*tensor.RawTensor, prefix string, src map[string]*tensor.RawTensor) {
	for name, raw := range src {
		dst[prefix+"."+name] = raw
	}
}

// SubStateDict returns the entries of stateDict under prefix + ".", with the
// prefix stripped.
func SubStateDict(stateDict map[string]*tensor.RawTensor, prefix string) map[string]*tensor.RawTensor {
	sub := make(map[string]*tensor.RawTensor)
	p := prefix + "."
	for key, raw := range stateDict {
		if name, ok := strings.CutPrefix(key, p); ok && name != "" {
			sub[name] = raw
		}
	}
	return sub
}

// SortedKeys returns the keys of stateDict in lexical order.
func SortedKeys(stateDict map[string]*tensor.RawTensor) []string {
	keys := make([]string, 0, len(stateDict))
	for k := range stateDict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// loadParam copies stateDict[key] into p after checking shape and dtype.
func loadParam[B tensor.Backend](stateDict map[string]*tensor.RawTensor, key string, p *Parameter[B]) error {
	raw, ok := stateDict[key]
	if !ok {
		return fmt.Errorf("missing %s in state dict", key)
	}
	want := p.Tensor().Shape()
	if !raw.Shape().Equal(want) {
		return fmt.Errorf("%s shape mismatch: expected %v, got %v", key, want, raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		return fmt.Errorf("%s dtype mismatch: expected float32, got %v", key, raw.DType())
	}
	copy(p.Tensor().Data(), raw.AsFloat32())
	return nil
}
