// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/resnet/internal/tensor"
)

// DType constrains tensor element types to float32 and float64.
type DType = tensor.DType

// DataType is the runtime element type of a RawTensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Device identifies where tensor data lives.
type Device = tensor.Device

// CPU is the only device.
const CPU Device = tensor.CPU

// Shape lists tensor dimensions, e.g. Shape{N, C, H, W}.
type Shape = tensor.Shape

// Backend performs the numerical work behind tensor operations.
type Backend = tensor.Backend

// RawTensor is untyped tensor storage, as found in state dicts.
type RawTensor = tensor.RawTensor

// Tensor is a typed tensor bound to a backend.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Randn creates a tensor with values drawn from N(0, 1).
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Randn[T, B](shape, b)
}

// FromSlice creates a tensor from data in row-major order.
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice(data, shape, b)
}

// ConvOutputSize returns the output length of a convolution or pooling
// window along one axis.
func ConvOutputSize(in, kernel, stride, padding int) int {
	return tensor.ConvOutputSize(in, kernel, stride, padding)
}
