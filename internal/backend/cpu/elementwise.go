package cpu

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, addOp[float32], addOp[float64])
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, subOp[float32], subOp[float64])
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, mulOp[float32], mulOp[float64])
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b, divOp[float32], divOp[float64])
}

func addOp[T tensor.DType](x, y T) T { return x + y }
func subOp[T tensor.DType](x, y T) T { return x - y }
func mulOp[T tensor.DType](x, y T) T { return x * y }
func divOp[T tensor.DType](x, y T) T { return x / y }

// binary dispatches a broadcasting binary op on dtype.
// The result is always a fresh tensor; neither input is modified.
func (cpu *CPUBackend) binary(
	op string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	checkSameDType(op, a, b)

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	result := cpu.newResult(op, outShape, a.DType())

	switch a.DType() {
	case tensor.Float32:
		applyBinary(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape, needsBroadcast, f32)
	case tensor.Float64:
		applyBinary(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), outShape, needsBroadcast, f64)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}

	return result
}

// applyBinary writes f(a, b) into dst, broadcasting when needed.
func applyBinary[T tensor.DType](
	dst, a, b []T,
	aShape, bShape, outShape tensor.Shape,
	needsBroadcast bool,
	f func(x, y T) T,
) {
	if !needsBroadcast {
		for i := range dst {
			dst[i] = f(a[i], b[i])
		}
		return
	}

	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(aShape, outShape)
	bStrides := broadcastStrides(bShape, outShape)

	for i := range dst {
		dst[i] = f(a[flatIndex(i, outStrides, aStrides)], b[flatIndex(i, outStrides, bStrides)])
	}
}

// broadcastStrides computes strides for reading inShape as if it had outShape.
// Dimensions of size 1 (and missing leading dimensions) get stride 0.
func broadcastStrides(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	offset := outDim - len(inShape)
	origStrides := inShape.ComputeStrides()

	strides := make([]int, outDim)
	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		if inIdx < 0 || inShape[inIdx] == 1 {
			continue
		}
		strides[i] = origStrides[inIdx]
	}
	return strides
}

// flatIndex maps a flat output index to a flat input index.
func flatIndex(outIdx int, outStrides, inStrides []int) int {
	flat := 0
	for i, stride := range outStrides {
		coord := outIdx / stride
		outIdx %= stride
		flat += coord * inStrides[i]
	}
	return flat
}
