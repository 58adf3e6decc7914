package nn

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// MaxPool2D is a 2D max pooling layer.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
// Where:
//
//	out_height = (height + 2*padding - kernelSize) / stride + 1
//	out_width  = (width + 2*padding - kernelSize) / stride + 1
//
// Padded cells never win the max. Padding may be at most kernelSize/2.
//
// Example:
//
//	// The 3x3 stride-2 pool of a ResNet stem
//	pool := nn.NewMaxPool2D(3, 2, 1, backend)
//
//	input := tensor.Randn[float32](tensor.Shape{8, 64, 112, 112}, backend)
//	output := pool.Forward(input) // [8, 64, 56, 56]
type MaxPool2D[B tensor.Backend] struct {
	stateless[B]

	kernelSize int
	stride     int
	padding    int
	backend    B
}

// NewMaxPool2D creates a new 2D max pooling layer.
func NewMaxPool2D[B tensor.Backend](kernelSize, stride, padding int, backend B) *MaxPool2D[B] {
	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	if padding < 0 || 2*padding > kernelSize {
		panic(fmt.Sprintf("maxpool2d: padding %d must be in [0, kernel_size/2] for kernel %d", padding, kernelSize))
	}

	return &MaxPool2D[B]{
		kernelSize: kernelSize,
		stride:     stride,
		padding:    padding,
		backend:    backend,
	}
}

// Forward performs the forward pass.
//
// Input: [batch, channels, height, width]
// Output: [batch, channels, out_height, out_width].
func (m *MaxPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	outputRaw := m.backend.MaxPool2D(input.Raw(), m.kernelSize, m.stride, m.padding)
	return tensor.New[float32, B](outputRaw, m.backend)
}

// String returns a string representation of the layer.
func (m *MaxPool2D[B]) String() string {
	return fmt.Sprintf("MaxPool2D(kernel_size=%d, stride=%d, padding=%d)",
		m.kernelSize, m.stride, m.padding)
}

// KernelSize returns the pooling kernel size.
func (m *MaxPool2D[B]) KernelSize() int {
	return m.kernelSize
}

// Stride returns the stride.
func (m *MaxPool2D[B]) Stride() int {
	return m.stride
}

// Padding returns the padding.
func (m *MaxPool2D[B]) Padding() int {
	return m.padding
}

// ComputeOutputSize computes output spatial dimensions for given input size.
//
// Returns: [out_height, out_width].
func (m *MaxPool2D[B]) ComputeOutputSize(inputH, inputW int) [2]int {
	return [2]int{
		tensor.ConvOutputSize(inputH, m.kernelSize, m.stride, m.padding),
		tensor.ConvOutputSize(inputW, m.kernelSize, m.stride, m.padding),
	}
}
