package tensor

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		panic(err) // Shape validation should prevent this
	}

	// Data is already zero-initialized by make()
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
//
// Example:
//
//	t := tensor.Ones[float64](Shape{2, 3}, backend)
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[float32](Shape{3, 3}, 3.14, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a tensor with values drawn from the standard normal distribution N(0, 1).
//
// Example:
//
//	images := tensor.Randn[float32](Shape{2, 3, 224, 224}, backend)
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Normal[T, B](shape, 0, 1, b)
}

// Normal creates a tensor with values drawn from N(mean, std²).
func Normal[T DType, B Backend](shape Shape, mean, std float64, b B) *Tensor[T, B] {
	dist := distuv.Normal{Mu: mean, Sigma: std}
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(dist.Rand())
	}
	return t
}

// Uniform creates a tensor with values drawn uniformly from [low, high).
func Uniform[T DType, B Backend](shape Shape, low, high float64, b B) *Tensor[T, B] {
	dist := distuv.Uniform{Min: low, Max: high}
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(dist.Rand())
	}
	return t
}
