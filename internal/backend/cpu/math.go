package cpu

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/born-ml/resnet/internal/tensor"
)

// Sqrt computes element-wise square root.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("sqrt", x, math32.Sqrt, math.Sqrt)
}

// Rsqrt computes element-wise reciprocal square root: 1/sqrt(x).
func (cpu *CPUBackend) Rsqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("rsqrt", x,
		func(v float32) float32 { return 1 / math32.Sqrt(v) },
		func(v float64) float64 { return 1 / math.Sqrt(v) },
	)
}

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("relu", x, relu[float32], relu[float64])
}

// AddScalar adds scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	s32 := float32(scalar)
	return cpu.unary("add_scalar", x,
		func(v float32) float32 { return v + s32 },
		func(v float64) float64 { return v + scalar },
	)
}

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	s32 := float32(scalar)
	return cpu.unary("mul_scalar", x,
		func(v float32) float32 { return v * s32 },
		func(v float64) float64 { return v * scalar },
	)
}

func relu[T tensor.DType](v T) T {
	if v > 0 {
		return v
	}
	return 0
}

// unary applies an element-wise function into a fresh tensor.
func (cpu *CPUBackend) unary(
	op string,
	x *tensor.RawTensor,
	f32 func(float32) float32,
	f64 func(float64) float64,
) *tensor.RawTensor {
	result := cpu.newResult(op, x.Shape(), x.DType())

	switch x.DType() {
	case tensor.Float32:
		applyUnary(result.AsFloat32(), x.AsFloat32(), f32)
	case tensor.Float64:
		applyUnary(result.AsFloat64(), x.AsFloat64(), f64)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, x.DType()))
	}

	return result
}

func applyUnary[T tensor.DType](dst, src []T, f func(T) T) {
	for i, v := range src {
		dst[i] = f(v)
	}
}
