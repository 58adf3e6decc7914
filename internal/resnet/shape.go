package resnet

import (
	"fmt"
	"strconv"

	"github.com/born-ml/resnet/internal/tensor"
)

// StageShape is the output shape of one named stage.
type StageShape struct {
	Stage string
	Shape tensor.Shape
}

// StemOutputSize returns the spatial size after the stem: ceil(h/4) x ceil(w/4)
// for any h, w >= 1.
func StemOutputSize(h, w int) (int, int) {
	h = tensor.ConvOutputSize(h, StemKernel, StemStride, StemPadding)
	w = tensor.ConvOutputSize(w, StemKernel, StemStride, StemPadding)
	h = tensor.ConvOutputSize(h, PoolKernel, PoolStride, PoolPadding)
	w = tensor.ConvOutputSize(w, PoolKernel, PoolStride, PoolPadding)
	return h, w
}

// OutputShape returns the score shape [N, num_classes] for an input shape,
// or a *ShapeError if the network cannot process it.
func (n *Network[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	trace, err := n.Trace(input)
	if err != nil {
		return nil, err
	}
	return trace[len(trace)-1].Shape, nil
}

// Trace returns the shape after each stage, starting with the input itself
// and ending with the head.
func (n *Network[B]) Trace(input tensor.Shape) ([]StageShape, error) {
	if err := n.checkInput(input); err != nil {
		return nil, err
	}

	batch, h, w := input[0], input[2], input[3]
	trace := []StageShape{{Stage: "input", Shape: input.Clone()}}

	conv := n.stem.conv.ComputeOutputSize(h, w)
	trace = append(trace, StageShape{"stem.conv", tensor.Shape{batch, StemChannels, conv[0], conv[1]}})
	pool := n.stem.pool.ComputeOutputSize(conv[0], conv[1])
	h, w = pool[0], pool[1]
	trace = append(trace, StageShape{"stem.pool", tensor.Shape{batch, StemChannels, h, w}})

	for i, b := range n.blocks {
		h, w = b.OutputSize(h, w)
		trace = append(trace, StageShape{
			Stage: "blocks." + strconv.Itoa(i),
			Shape: tensor.Shape{batch, b.OutChannels(), h, w},
		})
	}

	trace = append(trace, StageShape{"head", tensor.Shape{batch, n.cfg.NumClasses}})
	return trace, nil
}

func (n *Network[B]) checkInput(input tensor.Shape) error {
	fail := func(stage, format string, args ...any) error {
		return &ShapeError{Stage: stage, Input: input.Clone(), Reason: fmt.Sprintf(format, args...)}
	}

	if len(input) != 4 {
		return fail("input", "expected 4D input [N, C, H, W], got %dD", len(input))
	}
	if input[0] < 1 {
		return fail("input", "batch size must be positive, got %d", input[0])
	}
	if input[1] != n.cfg.InChannels {
		return fail("stem.conv", "expected %d input channels, got %d", n.cfg.InChannels, input[1])
	}
	if input[2] < 1 || input[3] < 1 {
		return fail("input", "spatial size must be positive, got %dx%d", input[2], input[3])
	}
	return nil
}
