package resnet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/tensor"
)

// ResidualBlock is an ordered list of residual layers.
//
// Layer 0 maps inChannels to outChannels with stride 2 and a projection
// shortcut. Layers 1..n-1 map outChannels to outChannels with stride 1 and
// an identity shortcut.
type ResidualBlock[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	layers      []*ResidualLayer[B]
}

// NewResidualBlock creates a block of numLayers layers.
func NewResidualBlock[B tensor.Backend](inChannels, outChannels, numLayers int, eps float32, backend B) (*ResidualBlock[B], error) {
	if numLayers < 1 {
		return nil, errors.Wrapf(ErrInvalidConfig, "a block needs at least one layer, got %d", numLayers)
	}

	layers := make([]*ResidualLayer[B], 0, numLayers)
	first, err := NewResidualLayerWithShortcut(inChannels, outChannels, 2, eps, Projection, backend)
	if err != nil {
		return nil, errors.Wrap(err, "layer 0")
	}
	layers = append(layers, first)

	for i := 1; i < numLayers; i++ {
		l, err := NewResidualLayerWithShortcut(outChannels, outChannels, 1, eps, Identity, backend)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d", i)
		}
		layers = append(layers, l)
	}

	return &ResidualBlock[B]{
		inChannels:  inChannels,
		outChannels: outChannels,
		layers:      layers,
	}, nil
}

// Forward threads x through every layer in order.
func (b *ResidualBlock[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	for _, l := range b.layers {
		x = l.Forward(x)
	}
	return x
}

// Parameters returns the layers' parameters in order.
func (b *ResidualBlock[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, l := range b.layers {
		params = append(params, l.Parameters()...)
	}
	return params
}

// StateDict names entries layers.<i>.<layer key>.
func (b *ResidualBlock[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, l := range b.layers {
		nn.PrefixStateDict(stateDict, "layers."+strconv.Itoa(i), l.StateDict())
	}
	return stateDict
}

// LoadStateDict loads every layer from its prefix.
func (b *ResidualBlock[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for i, l := range b.layers {
		prefix := "layers." + strconv.Itoa(i)
		if err := l.LoadStateDict(nn.SubStateDict(stateDict, prefix)); err != nil {
			return prefixErr(prefix, err)
		}
	}
	return nil
}

// SetTraining switches every layer.
func (b *ResidualBlock[B]) SetTraining(training bool) {
	for _, l := range b.layers {
		l.SetTraining(training)
	}
}

// Layers returns the layers in order. The slice must not be modified.
func (b *ResidualBlock[B]) Layers() []*ResidualLayer[B] { return b.layers }

// Len returns the number of layers.
func (b *ResidualBlock[B]) Len() int { return len(b.layers) }

// InChannels returns the input channel count.
func (b *ResidualBlock[B]) InChannels() int { return b.inChannels }

// OutChannels returns the output channel count.
func (b *ResidualBlock[B]) OutChannels() int { return b.outChannels }

// OutputSize returns the spatial size produced for an h x w input.
func (b *ResidualBlock[B]) OutputSize(h, w int) (int, int) {
	for _, l := range b.layers {
		h, w = l.OutputSize(h, w)
	}
	return h, w
}

// String lists the layers.
func (b *ResidualBlock[B]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ResidualBlock(%d -> %d, layers=%d)", b.inChannels, b.outChannels, len(b.layers))
	for i, l := range b.layers {
		fmt.Fprintf(&sb, "\n  (%d) %s", i, l)
	}
	return sb.String()
}
