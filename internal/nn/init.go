package nn

import (
	"math"

	"github.com/born-ml/resnet/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Values are drawn from U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))).
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return tensor.Uniform[float32](shape, -bound, bound, backend)
}

// KaimingNormal (He) initialization for weights feeding a ReLU.
//
// Values are drawn from N(0, 2/fan_in).
func KaimingNormal[B tensor.Backend](fanIn int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Normal[float32](shape, 0, math.Sqrt(2.0/float64(fanIn)), backend)
}

// FanInUniform draws from U(-1/sqrt(fan_in), 1/sqrt(fan_in)), the usual bias init.
func FanInUniform[B tensor.Backend](fanIn int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := 1 / math.Sqrt(float64(fanIn))
	return tensor.Uniform[float32](shape, -bound, bound, backend)
}

// Zeros creates a tensor filled with zeros.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a tensor filled with ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}
