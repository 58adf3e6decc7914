package cpu

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// SumDim sums tensor elements along a dimension.
//
// Negative dims count from the end. With keepDim the reduced dimension is
// kept with size 1, which is what broadcasting against the input needs.
//
// Example:
//
//	x: [2, 64, 7, 7]
//	SumDim(x, -1, true)  -> [2, 64, 7, 1]
//	SumDim(x, 1, false)  -> [2, 7, 7]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("sumdim", x, dim, keepDim, false)
}

// MeanDim averages tensor elements along a dimension.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("meandim", x, dim, keepDim, true)
}

func (cpu *CPUBackend) reduceDim(op string, x *tensor.RawTensor, dim int, keepDim, mean bool) *tensor.RawTensor {
	shape := x.Shape()
	dim, err := shape.NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	var outShape tensor.Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = make(tensor.Shape, 0, len(shape)-1)
		outShape = append(outShape, shape[:dim]...)
		outShape = append(outShape, shape[dim+1:]...)
	}

	result := cpu.newResult(op, outShape, x.DType())

	// View the input as [outer, size, inner] and reduce the middle axis.
	outer := shape[:dim].NumElements()
	size := shape[dim]
	inner := shape[dim+1:].NumElements()

	switch x.DType() {
	case tensor.Float32:
		reduceMiddle(result.AsFloat32(), x.AsFloat32(), outer, size, inner, mean)
	case tensor.Float64:
		reduceMiddle(result.AsFloat64(), x.AsFloat64(), outer, size, inner, mean)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, x.DType()))
	}

	return result
}

func reduceMiddle[T tensor.DType](dst, src []T, outer, size, inner int, mean bool) {
	for o := 0; o < outer; o++ {
		acc := dst[o*inner : (o+1)*inner]
		for k := 0; k < size; k++ {
			row := src[(o*size+k)*inner : (o*size+k+1)*inner]
			for i, v := range row {
				acc[i] += v
			}
		}
		if mean {
			n := T(size)
			for i := range acc {
				acc[i] /= n
			}
		}
	}
}
