// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/tensor"
)

// Parameter is a named tensor owned by a module. Non-trainable parameters
// (buffers) hold normalization statistics.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// NewBuffer creates a non-trainable parameter.
func NewBuffer[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewBuffer(name, t)
}

// CountParameters sums the element counts of params, optionally only the
// trainable ones.
func CountParameters[B tensor.Backend](params []*Parameter[B], trainableOnly bool) int {
	return nn.CountParameters(params, trainableOnly)
}

// PrefixStateDict copies src into dst with every key prefixed by "prefix.".
func PrefixStateDict(dst map[string]*tensor.RawTensor, prefix string, src map[string]*tensor.RawTensor) {
	nn.PrefixStateDict(dst, prefix, src)
}

// SubStateDict returns the entries of sd under "prefix." with the prefix removed.
func SubStateDict(sd map[string]*tensor.RawTensor, prefix string) map[string]*tensor.RawTensor {
	return nn.SubStateDict(sd, prefix)
}

// SortedKeys returns the keys of sd in lexical order.
func SortedKeys(sd map[string]*tensor.RawTensor) []string {
	return nn.SortedKeys(sd)
}
