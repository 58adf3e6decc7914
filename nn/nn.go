// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/tensor"
)

// Conv2D is a 2D convolution with optional bias.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a convolution with He-normal weights.
//
//	conv := nn.NewConv2D(64, 128, 3, 3, 2, 1, true, backend) // 3x3, stride 2, padding 1
func NewConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding int,
	useBias bool,
	backend B,
) *Conv2D[B] {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding, useBias, backend)
}

// BatchNorm2D normalizes each channel of [N, C, H, W] input.
type BatchNorm2D[B tensor.Backend] = nn.BatchNorm2D[B]

// NewBatchNorm2D creates a batch norm in evaluation mode with unit weight,
// zero bias, zero running mean and unit running variance.
func NewBatchNorm2D[B tensor.Backend](numFeatures int, eps float32, backend B) *BatchNorm2D[B] {
	return nn.NewBatchNorm2D(numFeatures, eps, backend)
}

// MaxPool2D takes the maximum over square windows. Padding never wins.
type MaxPool2D[B tensor.Backend] = nn.MaxPool2D[B]

// NewMaxPool2D creates a max pool. padding must not exceed kernelSize/2.
func NewMaxPool2D[B tensor.Backend](kernelSize, stride, padding int, backend B) *MaxPool2D[B] {
	return nn.NewMaxPool2D(kernelSize, stride, padding, backend)
}

// GlobalAvgPool2D averages [N, C, H, W] to [N, C, 1, 1].
type GlobalAvgPool2D[B tensor.Backend] = nn.GlobalAvgPool2D[B]

// NewGlobalAvgPool2D creates a global average pool.
func NewGlobalAvgPool2D[B tensor.Backend]() *GlobalAvgPool2D[B] {
	return nn.NewGlobalAvgPool2D[B]()
}

// Flatten reshapes [N, ...] to [N, rest].
type Flatten[B tensor.Backend] = nn.Flatten[B]

// NewFlatten creates a flatten layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return nn.NewFlatten[B]()
}

// Linear is a fully connected layer y = xW^T + b.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a linear layer with Xavier weights and zero bias.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// ReLU is max(0, x).
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sequential applies modules in order.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a container of modules.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Xavier returns U(-a, a) weights with a = sqrt(6/(fanIn+fanOut)).
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, backend)
}

// KaimingNormal returns N(0, 2/fanIn) weights.
func KaimingNormal[B tensor.Backend](fanIn int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.KaimingNormal(fanIn, shape, backend)
}

// Zeros returns a zero tensor.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Zeros(shape, backend)
}

// Ones returns a tensor of ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Ones(shape, backend)
}
