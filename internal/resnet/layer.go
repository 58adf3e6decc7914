package resnet

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/tensor"
)

// ResidualLayer computes
//
//	y = ReLU(BN2(Conv2(ReLU(BN1(Conv1(x))))))
//	out = y + shortcut(x)
//
// Conv1 is 3x3 with the layer's stride, Conv2 is 3x3 with stride 1, both
// padded by 1. Nothing follows the addition.
type ResidualLayer[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	stride      int

	conv1 *nn.Conv2D[B]
	bn1   *nn.BatchNorm2D[B]
	conv2 *nn.Conv2D[B]
	bn2   *nn.BatchNorm2D[B]

	main     nn.Module[B]
	shortcut Shortcut[B]
}

// NewResidualLayer creates a layer whose shortcut kind follows from its
// geometry: a projection when inChannels != outChannels or stride != 1.
func NewResidualLayer[B tensor.Backend](inChannels, outChannels, stride int, eps float32, backend B) (*ResidualLayer[B], error) {
	return NewResidualLayerWithShortcut(inChannels, outChannels, stride, eps, RequiredShortcut(inChannels, outChannels, stride), backend)
}

// NewResidualLayerWithShortcut creates a layer with an explicit shortcut
// kind. Requesting a kind that does not match the geometry fails with
// ErrShortcutMismatch.
func NewResidualLayerWithShortcut[B tensor.Backend](
	inChannels, outChannels, stride int,
	eps float32,
	kind ShortcutKind,
	backend B,
) (*ResidualLayer[B], error) {
	if inChannels <= 0 || outChannels <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "channels must be positive, got in=%d out=%d", inChannels, outChannels)
	}
	if stride != 1 && stride != 2 {
		return nil, errors.Wrapf(ErrInvalidStride, "stride must be 1 or 2, got %d", stride)
	}
	if eps <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "epsilon must be positive, got %g", eps)
	}
	if want := RequiredShortcut(inChannels, outChannels, stride); kind != want {
		return nil, errors.Wrapf(ErrShortcutMismatch, "%d->%d stride %d needs %s, got %s",
			inChannels, outChannels, stride, want, kind)
	}

	l := &ResidualLayer[B]{
		inChannels:  inChannels,
		outChannels: outChannels,
		stride:      stride,
		conv1:       nn.NewConv2D(inChannels, outChannels, 3, 3, stride, 1, true, backend),
		bn1:         nn.NewBatchNorm2D(outChannels, eps, backend),
		conv2:       nn.NewConv2D(outChannels, outChannels, 3, 3, 1, 1, true, backend),
		bn2:         nn.NewBatchNorm2D(outChannels, eps, backend),
		shortcut:    newShortcut(kind, inChannels, outChannels, stride, backend),
	}
	l.main = nn.NewSequential[B](l.conv1, l.bn1, nn.NewReLU[B](), l.conv2, l.bn2, nn.NewReLU[B]())
	return l, nil
}

// Forward returns main(x) + shortcut(x).
func (l *ResidualLayer[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return l.main.Forward(x).Add(l.shortcut.Apply(x))
}

// Parameters returns the main path's parameters followed by the shortcut's.
func (l *ResidualLayer[B]) Parameters() []*nn.Parameter[B] {
	return append(l.main.Parameters(), l.shortcut.Parameters()...)
}

// StateDict names entries conv1.*, bn1.*, conv2.*, bn2.* and shortcut.*.
func (l *ResidualLayer[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for _, part := range l.parts() {
		nn.PrefixStateDict(stateDict, part.name, part.state.StateDict())
	}
	return stateDict
}

// LoadStateDict loads every sub-module from its prefix.
func (l *ResidualLayer[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for _, part := range l.parts() {
		if err := part.state.LoadStateDict(nn.SubStateDict(stateDict, part.name)); err != nil {
			return prefixErr(part.name, err)
		}
	}
	return nil
}

type stateful interface {
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(map[string]*tensor.RawTensor) error
}

type namedState struct {
	name  string
	state stateful
}

func (l *ResidualLayer[B]) parts() []namedState {
	parts := []namedState{
		{"conv1", l.conv1},
		{"bn1", l.bn1},
		{"conv2", l.conv2},
		{"bn2", l.bn2},
	}
	if l.shortcut.Kind() == Projection {
		parts = append(parts, namedState{"shortcut", l.shortcut})
	}
	return parts
}

// SetTraining switches both batch norms.
func (l *ResidualLayer[B]) SetTraining(training bool) {
	nn.SetTraining(l.main, training)
}

// InChannels returns the input channel count.
func (l *ResidualLayer[B]) InChannels() int { return l.inChannels }

// OutChannels returns the output channel count.
func (l *ResidualLayer[B]) OutChannels() int { return l.outChannels }

// Stride returns the stride of the first convolution and the projection.
func (l *ResidualLayer[B]) Stride() int { return l.stride }

// HasProjection reports whether the shortcut is a 1x1 convolution.
func (l *ResidualLayer[B]) HasProjection() bool { return l.shortcut.Kind() == Projection }

// Shortcut returns the residual path.
func (l *ResidualLayer[B]) Shortcut() Shortcut[B] { return l.shortcut }

// Conv1 returns the first 3x3 convolution.
func (l *ResidualLayer[B]) Conv1() *nn.Conv2D[B] { return l.conv1 }

// BN1 returns the first batch norm.
func (l *ResidualLayer[B]) BN1() *nn.BatchNorm2D[B] { return l.bn1 }

// Conv2 returns the second 3x3 convolution.
func (l *ResidualLayer[B]) Conv2() *nn.Conv2D[B] { return l.conv2 }

// BN2 returns the second batch norm.
func (l *ResidualLayer[B]) BN2() *nn.BatchNorm2D[B] { return l.bn2 }

// OutputSize returns the spatial size produced for an h x w input.
func (l *ResidualLayer[B]) OutputSize(h, w int) (int, int) {
	out := l.conv1.ComputeOutputSize(h, w)
	return out[0], out[1]
}

// String describes the layer.
func (l *ResidualLayer[B]) String() string {
	return fmt.Sprintf("ResidualLayer(%d -> %d, stride=%d, shortcut=%s)",
		l.inChannels, l.outChannels, l.stride, l.shortcut.Kind())
}
