package resnet

import (
	"github.com/pkg/errors"
)

// Architecture constants.
const (
	StemChannels    = 64
	StemKernel      = 7
	StemStride      = 2
	StemPadding     = 3
	PoolKernel      = 3
	PoolStride      = 2
	PoolPadding     = 1
	NumBlocks       = 4
	FeatureChannels = 512

	// DefaultEpsilon is the batch-norm variance epsilon.
	DefaultEpsilon = 1e-5
)

// BlockWidths lists the (in, out) channels of the four residual blocks.
var BlockWidths = [NumBlocks][2]int{
	{64, 64},
	{64, 128},
	{128, 256},
	{256, 512},
}

// Config describes a network.
type Config struct {
	InChannels     int            // channels of the input image, > 0
	NumClasses     int            // width of the score vector, > 0
	LayersPerBlock [NumBlocks]int // residual layers in each block, each >= 1
	Epsilon        float32        // batch-norm epsilon, > 0
}

// DefaultConfig returns the standard configuration: two layers per block
// and epsilon 1e-5.
func DefaultConfig(inChannels, numClasses int) Config {
	return Config{
		InChannels:     inChannels,
		NumClasses:     numClasses,
		LayersPerBlock: [NumBlocks]int{2, 2, 2, 2},
		Epsilon:        DefaultEpsilon,
	}
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if c.InChannels <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "in_channels must be positive, got %d", c.InChannels)
	}
	if c.NumClasses <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "num_classes must be positive, got %d", c.NumClasses)
	}
	for i, n := range c.LayersPerBlock {
		if n < 1 {
			return errors.Wrapf(ErrInvalidConfig, "block %d needs at least one layer, got %d", i, n)
		}
	}
	if c.Epsilon <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "epsilon must be positive, got %g", c.Epsilon)
	}
	return nil
}
