// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package resnet is a residual convolutional image classifier.
//
// A Network maps a batch of images [N, C, H, W] to class scores
// [N, num_classes] through a stem, four residual blocks and a linear head:
//
//	backend := cpu.New()
//	net, err := resnet.New(resnet.DefaultConfig(3, 1000), backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	scores, err := net.Infer(images) // [N, 1000]
//
// Networks start in evaluation mode. Weights are exchanged through state
// dicts with dotted keys (for example "blocks.1.layers.0.shortcut.weight")
// and persisted as SafeTensors files with Save, Load and Open.
package resnet

import (
	"github.com/born-ml/resnet/internal/resnet"
	"github.com/born-ml/resnet/tensor"
)

// Config describes a network.
type Config = resnet.Config

// DefaultConfig returns two layers per block and epsilon 1e-5.
func DefaultConfig(inChannels, numClasses int) Config {
	return resnet.DefaultConfig(inChannels, numClasses)
}

// Network is the full classifier.
type Network[B tensor.Backend] = resnet.Network[B]

// ResidualBlock is a sequence of residual layers; the first downsamples.
type ResidualBlock[B tensor.Backend] = resnet.ResidualBlock[B]

// ResidualLayer is one residual unit.
type ResidualLayer[B tensor.Backend] = resnet.ResidualLayer[B]

// StageShape is the output shape of one named stage.
type StageShape = resnet.StageShape

// ShapeError reports an input the network cannot process.
type ShapeError = resnet.ShapeError

// ShortcutKind selects the residual path of a layer.
type ShortcutKind = resnet.ShortcutKind

// Shortcut kinds.
const (
	Identity   = resnet.Identity
	Projection = resnet.Projection
)

// Errors returned by this package. Use errors.Is to test for them.
var (
	ErrInvalidConfig    = resnet.ErrInvalidConfig
	ErrInvalidStride    = resnet.ErrInvalidStride
	ErrShortcutMismatch = resnet.ErrShortcutMismatch
	ErrShape            = resnet.ErrShape
	ErrStateDict        = resnet.ErrStateDict
)

// New builds a network from cfg.
func New[B tensor.Backend](cfg Config, backend B) (*Network[B], error) {
	return resnet.New(cfg, backend)
}

// NewResidualLayer creates a layer whose shortcut follows from its geometry.
func NewResidualLayer[B tensor.Backend](inChannels, outChannels, stride int, eps float32, backend B) (*ResidualLayer[B], error) {
	return resnet.NewResidualLayer(inChannels, outChannels, stride, eps, backend)
}

// NewResidualBlock creates a block of numLayers layers.
func NewResidualBlock[B tensor.Backend](inChannels, outChannels, numLayers int, eps float32, backend B) (*ResidualBlock[B], error) {
	return resnet.NewResidualBlock(inChannels, outChannels, numLayers, eps, backend)
}

// RequiredShortcut returns the shortcut kind a layer geometry needs.
func RequiredShortcut(inChannels, outChannels, stride int) ShortcutKind {
	return resnet.RequiredShortcut(inChannels, outChannels, stride)
}

// StemOutputSize returns ceil(h/4) x ceil(w/4).
func StemOutputSize(h, w int) (int, int) {
	return resnet.StemOutputSize(h, w)
}

// Save writes n's weights and configuration to a SafeTensors file.
func Save[B tensor.Backend](path string, n *Network[B]) error {
	return resnet.Save(path, n)
}

// Load reads a file written by Save into n.
func Load[B tensor.Backend](path string, n *Network[B]) error {
	return resnet.Load(path, n)
}

// Open builds a network from a file written by Save.
func Open[B tensor.Backend](path string, backend B) (*Network[B], error) {
	return resnet.Open(path, backend)
}

// ConfigFromMetadata parses the configuration stored in a file's metadata.
func ConfigFromMetadata(meta map[string]string) (Config, error) {
	return resnet.ConfigFromMetadata(meta)
}
