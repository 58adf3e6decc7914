package nn

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// GlobalAvgPool2D averages every channel over all spatial positions.
//
// Input shape:  [batch, channels, height, width] (any height and width)
// Output shape: [batch, channels, 1, 1]
type GlobalAvgPool2D[B tensor.Backend] struct {
	stateless[B]
}

// NewGlobalAvgPool2D creates a global average pooling layer.
func NewGlobalAvgPool2D[B tensor.Backend]() *GlobalAvgPool2D[B] {
	return &GlobalAvgPool2D[B]{}
}

// Forward averages over the last two dimensions.
func (g *GlobalAvgPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if ndim := len(input.Shape()); ndim != 4 {
		panic(fmt.Sprintf("globalavgpool2d: expected 4D input [N,C,H,W], got %dD", ndim))
	}
	return input.MeanDim(3, true).MeanDim(2, true)
}

// String returns a string representation of the layer.
func (g *GlobalAvgPool2D[B]) String() string {
	return "GlobalAvgPool2D(output_size=(1, 1))"
}

// Flatten collapses every dimension after the batch dimension.
//
//	[N, C, 1, 1] -> [N, C]
type Flatten[B tensor.Backend] struct {
	stateless[B]
}

// NewFlatten creates a flatten layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return &Flatten[B]{}
}

// Forward returns input reshaped to [N, prod(rest)].
func (f *Flatten[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Flatten()
}

// String returns a string representation of the layer.
func (f *Flatten[B]) String() string {
	return "Flatten()"
}
