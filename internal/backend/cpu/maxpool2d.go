package cpu

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/born-ml/resnet/internal/parallel"
	"github.com/born-ml/resnet/internal/tensor"
)

// MaxPool2D performs 2D max pooling.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
// Where:
//
//	out_height = (height + 2*padding - kernelSize) / stride + 1
//	out_width  = (width + 2*padding - kernelSize) / stride + 1
//
// Padding cells act as negative infinity: they never win the max, so a window
// that overlaps the border only considers real input values. Padding may be at
// most half the kernel size, which guarantees every window sees at least one
// real value.
//
// Example (3x3 pool, stride=2, padding=1) on a 4x4 input gives 2x2:
//
//	Input: [[1,2,3,4],    Output: [[6,8],
//	        [5,6,7,8],             [14,16]]
//	        [9,10,11,12],
//	        [13,14,15,16]]
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	N, C, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]

	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	if padding < 0 || 2*padding > kernelSize {
		panic(fmt.Sprintf("maxpool2d: padding %d must be in [0, kernel_size/2] for kernel %d", padding, kernelSize))
	}

	HOut := tensor.ConvOutputSize(H, kernelSize, stride, padding)
	WOut := tensor.ConvOutputSize(W, kernelSize, stride, padding)
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid output dimensions %dx%d (kernel=%d, stride=%d, padding=%d, input=%dx%d)",
			HOut, WOut, kernelSize, stride, padding, H, W))
	}

	output := cpu.newResult("maxpool2d", tensor.Shape{N, C, HOut, WOut}, input.DType())
	g := poolGeometry{h: H, w: W, hOut: HOut, wOut: WOut, kernel: kernelSize, stride: stride, padding: padding}

	switch input.DType() {
	case tensor.Float32:
		maxpool2d(output.AsFloat32(), input.AsFloat32(), N, C, g, math32.Inf(-1), cpu.parallel)
	case tensor.Float64:
		maxpool2d(output.AsFloat64(), input.AsFloat64(), N, C, g, math.Inf(-1), cpu.parallel)
	default:
		panic(fmt.Sprintf("maxpool2d: unsupported dtype %v", input.DType()))
	}

	return output
}

type poolGeometry struct {
	h, w, hOut, wOut        int
	kernel, stride, padding int
}

func maxpool2d[T tensor.DType](out, in []T, batch, channels int, g poolGeometry, negInf T, cfg parallel.Config) {
	parallel.ForBatch(batch, channels, func(n, c int) {
		plane := n*channels + c
		src := in[plane*g.h*g.w : (plane+1)*g.h*g.w]
		dst := out[plane*g.hOut*g.wOut : (plane+1)*g.hOut*g.wOut]

		for oh := 0; oh < g.hOut; oh++ {
			hStart := oh*g.stride - g.padding
			hEnd := min(hStart+g.kernel, g.h)
			hStart = max(hStart, 0)

			for ow := 0; ow < g.wOut; ow++ {
				wStart := ow*g.stride - g.padding
				wEnd := min(wStart+g.kernel, g.w)
				wStart = max(wStart, 0)

				best := negInf
				for ih := hStart; ih < hEnd; ih++ {
					row := src[ih*g.w : (ih+1)*g.w]
					for iw := wStart; iw < wEnd; iw++ {
						if row[iw] > best {
							best = row[iw]
						}
					}
				}
				dst[oh*g.wOut+ow] = best
			}
		}
	}, cfg)
}
