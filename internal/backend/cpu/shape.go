package cpu

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// Reshape returns a copy of t with a different shape.
// The element count must be preserved.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result, err := t.WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose permutes the dimensions of t.
//
// With no axes, all dimensions are reversed (standard 2D transpose).
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result := cpu.newResult("transpose", newShape, t.DType())

	// srcStrides[i] is the source stride of destination axis i.
	strides := shape.ComputeStrides()
	srcStrides := make([]int, ndim)
	for i, ax := range axes {
		srcStrides[i] = strides[ax]
	}
	dstStrides := newShape.ComputeStrides()

	switch t.DType() {
	case tensor.Float32:
		permute(result.AsFloat32(), t.AsFloat32(), dstStrides, srcStrides)
	case tensor.Float64:
		permute(result.AsFloat64(), t.AsFloat64(), dstStrides, srcStrides)
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}

	return result
}

func permute[T tensor.DType](dst, src []T, dstStrides, srcStrides []int) {
	for i := range dst {
		dst[i] = src[flatIndex(i, dstStrides, srcStrides)]
	}
}
