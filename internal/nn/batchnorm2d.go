package nn

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// DefaultBatchNormMomentum is the weight given to the current batch when
// updating running statistics.
const DefaultBatchNormMomentum = 0.1

// BatchNorm2D normalizes each channel of a [N, C, H, W] tensor.
//
//	y = (x - mean) / sqrt(var + eps) * gamma + beta
//
// In evaluation mode (the default) mean and var are the running statistics,
// so the output for one sample does not depend on the rest of the batch.
// In training mode they are the biased batch statistics over N, H and W,
// and the running statistics are updated:
//
//	running = (1 - momentum) * running + momentum * batch
//
// where the variance fed into the update is the unbiased batch estimate.
//
// Parameters: gamma ("weight", ones), beta ("bias", zeros),
// "running_mean" (zeros) and "running_var" (ones). The running statistics
// are non-trainable buffers.
//
// Forward is safe for concurrent use in evaluation mode only.
type BatchNorm2D[B tensor.Backend] struct {
	numFeatures int
	eps         float32
	momentum    float32
	training    bool

	weight      *Parameter[B] // gamma [C]
	bias        *Parameter[B] // beta [C]
	runningMean *Parameter[B] // [C]
	runningVar  *Parameter[B] // [C]

	backend B
}

// NewBatchNorm2D creates a batch normalization layer over numFeatures channels.
func NewBatchNorm2D[B tensor.Backend](numFeatures int, eps float32, backend B) *BatchNorm2D[B] {
	if numFeatures <= 0 {
		panic(fmt.Sprintf("batchnorm2d: invalid num_features %d", numFeatures))
	}
	if eps <= 0 {
		panic(fmt.Sprintf("batchnorm2d: eps must be positive, got %g", eps))
	}

	shape := tensor.Shape{numFeatures}
	return &BatchNorm2D[B]{
		numFeatures: numFeatures,
		eps:         eps,
		momentum:    DefaultBatchNormMomentum,
		weight:      NewParameter("batchnorm2d.weight", Ones(shape, backend)),
		bias:        NewParameter("batchnorm2d.bias", Zeros(shape, backend)),
		runningMean: NewBuffer("batchnorm2d.running_mean", Zeros(shape, backend)),
		runningVar:  NewBuffer("batchnorm2d.running_var", Ones(shape, backend)),
		backend:     backend,
	}
}

// Forward normalizes input [N, C, H, W] and returns a tensor of the same shape.
func (bn *BatchNorm2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("batchnorm2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if inputShape[1] != bn.numFeatures {
		panic(fmt.Sprintf("batchnorm2d: input channels %d != expected %d", inputShape[1], bn.numFeatures))
	}

	c := bn.numFeatures
	var mean, variance *tensor.Tensor[float32, B] // [1, C, 1, 1]
	if bn.training {
		mean, variance = bn.batchStats(input)
	} else {
		mean = bn.runningMean.Tensor().Reshape(1, c, 1, 1)
		variance = bn.runningVar.Tensor().Reshape(1, c, 1, 1)
	}

	// Fold the affine transform into one scale and one shift per channel:
	// scale = gamma / sqrt(var + eps), shift = beta - mean * scale.
	scale := variance.AddScalar(bn.eps).Rsqrt().Mul(bn.weight.Tensor().Reshape(1, c, 1, 1))
	shift := bn.bias.Tensor().Reshape(1, c, 1, 1).Sub(mean.Mul(scale))

	return input.Mul(scale).Add(shift)
}

// batchStats returns the per-channel batch mean and biased variance and
// folds them into the running statistics.
func (bn *BatchNorm2D[B]) batchStats(input *tensor.Tensor[float32, B]) (mean, variance *tensor.Tensor[float32, B]) {
	mean = channelMean(input)
	centered := input.Sub(mean)
	variance = channelMean(centered.Mul(centered))

	shape := input.Shape()
	n := shape[0] * shape[2] * shape[3]
	unbiased := float32(1)
	if n > 1 {
		unbiased = float32(n) / float32(n-1)
	}

	m := bn.momentum
	rm := bn.runningMean.Tensor().Data()
	rv := bn.runningVar.Tensor().Data()
	for i, v := range mean.Data() {
		rm[i] = (1-m)*rm[i] + m*v
	}
	for i, v := range variance.Data() {
		rv[i] = (1-m)*rv[i] + m*v*unbiased
	}

	return mean, variance
}

// channelMean reduces [N, C, H, W] to [1, C, 1, 1].
func channelMean[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.MeanDim(3, true).MeanDim(2, true).MeanDim(0, true)
}

// Parameters returns gamma, beta, running mean and running variance.
func (bn *BatchNorm2D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{bn.weight, bn.bias, bn.runningMean, bn.runningVar}
}

// StateDict uses the PyTorch names: weight, bias, running_mean, running_var.
func (bn *BatchNorm2D[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"weight":       bn.weight.Tensor().Raw(),
		"bias":         bn.bias.Tensor().Raw(),
		"running_mean": bn.runningMean.Tensor().Raw(),
		"running_var":  bn.runningVar.Tensor().Raw(),
	}
}

// LoadStateDict loads all four tensors.
func (bn *BatchNorm2D[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for _, entry := range []struct {
		key string
		p   *Parameter[B]
	}{
		{"weight", bn.weight},
		{"bias", bn.bias},
		{"running_mean", bn.runningMean},
		{"running_var", bn.runningVar},
	} {
		if err := loadParam(stateDict, entry.key, entry.p); err != nil {
			return err
		}
	}
	return nil
}

// SetTraining switches between batch statistics (true) and running statistics (false).
func (bn *BatchNorm2D[B]) SetTraining(training bool) {
	bn.training = training
}

// Training reports whether the layer is in training mode.
func (bn *BatchNorm2D[B]) Training() bool {
	return bn.training
}

// NumFeatures returns the number of channels.
func (bn *BatchNorm2D[B]) NumFeatures() int {
	return bn.numFeatures
}

// Eps returns the variance epsilon.
func (bn *BatchNorm2D[B]) Eps() float32 {
	return bn.eps
}

// Weight returns gamma.
func (bn *BatchNorm2D[B]) Weight() *Parameter[B] { return bn.weight }

// Bias returns beta.
func (bn *BatchNorm2D[B]) Bias() *Parameter[B] { return bn.bias }

// RunningMean returns the running mean buffer.
func (bn *BatchNorm2D[B]) RunningMean() *Parameter[B] { return bn.runningMean }

// RunningVar returns the running variance buffer.
func (bn *BatchNorm2D[B]) RunningVar() *Parameter[B] { return bn.runningVar }

// String returns a string representation of the layer.
func (bn *BatchNorm2D[B]) String() string {
	return fmt.Sprintf("BatchNorm2D(%d, eps=%g, momentum=%g)", bn.numFeatures, bn.eps, bn.momentum)
}
