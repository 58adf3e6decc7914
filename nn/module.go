// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/serialization"
	"github.com/born-ml/resnet/tensor"
)

// Module is implemented by every layer and container.
//
// Forward never modifies its input. StateDict maps dotted parameter names to
// the live parameter storage; LoadStateDict copies values in and fails on a
// missing key or a shape mismatch.
type Module[B tensor.Backend] = nn.Module[B]

// Trainable is implemented by modules with distinct training and
// evaluation behavior.
type Trainable = nn.Trainable

// SetTraining switches m between training and evaluation mode. Modules that
// do not implement Trainable are left alone.
func SetTraining[B tensor.Backend](m Module[B], training bool) {
	nn.SetTraining(m, training)
}

// Save writes the module's state dict to a SafeTensors file.
//
//	model := nn.NewLinear(512, 10, backend)
//	err := nn.Save(model, "head.safetensors", map[string]string{"task": "digits"})
func Save[B tensor.Backend](module Module[B], path string, metadata map[string]string) error {
	return serialization.WriteSafeTensors(path, module.StateDict(), metadata)
}

// Load reads a SafeTensors file into module and returns the file metadata.
// The data checksum is verified when the file carries one.
func Load[B tensor.Backend](path string, module Module[B]) (map[string]string, error) {
	stateDict, metadata, err := serialization.ReadSafeTensors(path)
	if err != nil {
		return nil, err
	}
	if err := module.LoadStateDict(stateDict); err != nil {
		return nil, err
	}
	return metadata, nil
}
