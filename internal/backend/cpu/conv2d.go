package cpu

import (
	"fmt"

	"github.com/born-ml/resnet/internal/parallel"
	"github.com/born-ml/resnet/internal/tensor"
)

// convGeometry holds the dimensions of one Conv2D call.
type convGeometry struct {
	n, cIn, h, w     int // input [N, C_in, H, W]
	cOut, kh, kw     int // kernel [C_out, C_in, K_h, K_w]
	hOut, wOut       int
	stride, padding  int
	colRows, colCols int // im2col matrix [C_in*K_h*K_w, H_out*W_out]
}

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape: [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (H + 2*padding - K_h) / stride + 1
//	out_w = (W + 2*padding - K_w) / stride + 1
//
// Algorithm (per sample, samples run in parallel):
//  1. Im2col: unfold the padded input into a [C_in*K_h*K_w, H_out*W_out] matrix
//  2. GEMM: [C_out, C_in*K_h*K_w] @ [C_in*K_h*K_w, H_out*W_out]
//  3. The GEMM result is already laid out as [C_out, H_out, W_out] for that sample
//
// Reference: "High Performance Convolutional Neural Networks for Document Processing"
// (Chellapilla et al., 2006).
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	checkSameDType("conv2d", input, kernel)

	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}

	g := convGeometry{
		n: inputShape[0], cIn: inputShape[1], h: inputShape[2], w: inputShape[3],
		cOut: kernelShape[0], kh: kernelShape[2], kw: kernelShape[3],
		stride: stride, padding: padding,
	}

	if g.cIn != kernelShape[1] {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", g.cIn, kernelShape[1]))
	}

	g.hOut = tensor.ConvOutputSize(g.h, g.kh, stride, padding)
	g.wOut = tensor.ConvOutputSize(g.w, g.kw, stride, padding)
	if g.hOut <= 0 || g.wOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (input %dx%d, kernel %dx%d, stride=%d, padding=%d)",
			g.hOut, g.wOut, g.h, g.w, g.kh, g.kw, stride, padding))
	}
	g.colRows = g.cIn * g.kh * g.kw
	g.colCols = g.hOut * g.wOut

	output := cpu.newResult("conv2d", tensor.Shape{g.n, g.cOut, g.hOut, g.wOut}, input.DType())

	// One goroutine per sample at most; each needs its own column buffer.
	cfg := cpu.parallel.WithMinChunkSize(1)

	switch input.DType() {
	case tensor.Float32:
		conv2d(output.AsFloat32(), input.AsFloat32(), kernel.AsFloat32(), g, gemm32, cfg)
	case tensor.Float64:
		conv2d(output.AsFloat64(), input.AsFloat64(), kernel.AsFloat64(), g, gemm64, cfg)
	default:
		panic(fmt.Sprintf("conv2d: unsupported dtype %s", input.DType()))
	}

	return output
}

func conv2d[T tensor.DType](
	out, in, kernel []T,
	g convGeometry,
	gemm func(c, a, b []T, m, k, n int),
	cfg parallel.Config,
) {
	inPlane := g.cIn * g.h * g.w
	outPlane := g.cOut * g.colCols

	parallel.For(g.n, func(n int) {
		col := make([]T, g.colRows*g.colCols)
		im2col(col, in[n*inPlane:(n+1)*inPlane], g)
		gemm(out[n*outPlane:(n+1)*outPlane], kernel, col, g.cOut, g.colRows, g.colCols)
	}, cfg)
}

// im2col unfolds one sample [C, H, W] into col [C*K_h*K_w, H_out*W_out].
//
// Row r = c*K_h*K_w + kh*K_w + kw holds, for every output position, the input
// value that kernel tap (kh, kw) of channel c sees. Taps that fall into the
// padding read zero.
func im2col[T tensor.DType](col, sample []T, g convGeometry) {
	for c := 0; c < g.cIn; c++ {
		plane := sample[c*g.h*g.w : (c+1)*g.h*g.w]
		for kh := 0; kh < g.kh; kh++ {
			for kw := 0; kw < g.kw; kw++ {
				row := col[((c*g.kh+kh)*g.kw+kw)*g.colCols:][:g.colCols]

				for oh := 0; oh < g.hOut; oh++ {
					dst := row[oh*g.wOut : (oh+1)*g.wOut]
					ih := oh*g.stride - g.padding + kh
					if ih < 0 || ih >= g.h {
						clear(dst)
						continue
					}
					src := plane[ih*g.w : (ih+1)*g.w]
					for ow := range dst {
						iw := ow*g.stride - g.padding + kw
						if iw < 0 || iw >= g.w {
							dst[ow] = 0
						} else {
							dst[ow] = src[iw]
						}
					}
				}
			}
		}
	}
}
