package resnet

import (
	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/tensor"
)

// Stem is the entry of the network:
// 7x7 conv stride 2 pad 3 -> BN -> ReLU -> 3x3 max pool stride 2 pad 1.
// It reduces an H x W image to ceil(H/4) x ceil(W/4) with 64 channels.
type Stem[B tensor.Backend] struct {
	conv *nn.Conv2D[B]
	bn   *nn.BatchNorm2D[B]
	pool *nn.MaxPool2D[B]
	seq  *nn.Sequential[B]
}

func newStem[B tensor.Backend](inChannels int, eps float32, backend B) *Stem[B] {
	s := &Stem[B]{
		conv: nn.NewConv2D(inChannels, StemChannels, StemKernel, StemKernel, StemStride, StemPadding, true, backend),
		bn:   nn.NewBatchNorm2D(StemChannels, eps, backend),
		pool: nn.NewMaxPool2D(PoolKernel, PoolStride, PoolPadding, backend),
	}
	s.seq = nn.NewSequential[B](s.conv, s.bn, nn.NewReLU[B](), s.pool)
	return s
}

// Forward applies the stem.
func (s *Stem[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return s.seq.Forward(x)
}

// Parameters returns the convolution and batch-norm parameters.
func (s *Stem[B]) Parameters() []*nn.Parameter[B] {
	return s.seq.Parameters()
}

// StateDict names entries conv.* and bn.*.
func (s *Stem[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	nn.PrefixStateDict(stateDict, "conv", s.conv.StateDict())
	nn.PrefixStateDict(stateDict, "bn", s.bn.StateDict())
	return stateDict
}

// LoadStateDict loads conv.* and bn.*.
func (s *Stem[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := s.conv.LoadStateDict(nn.SubStateDict(stateDict, "conv")); err != nil {
		return prefixErr("conv", err)
	}
	if err := s.bn.LoadStateDict(nn.SubStateDict(stateDict, "bn")); err != nil {
		return prefixErr("bn", err)
	}
	return nil
}

// SetTraining switches the batch norm.
func (s *Stem[B]) SetTraining(training bool) {
	s.bn.SetTraining(training)
}

// Conv returns the 7x7 convolution.
func (s *Stem[B]) Conv() *nn.Conv2D[B] { return s.conv }

// BN returns the batch norm.
func (s *Stem[B]) BN() *nn.BatchNorm2D[B] { return s.bn }

// Pool returns the max pool.
func (s *Stem[B]) Pool() *nn.MaxPool2D[B] { return s.pool }

// Head maps [N, 512, h, w] features to [N, classes] scores:
// global average pool -> flatten -> linear.
type Head[B tensor.Backend] struct {
	fc  *nn.Linear[B]
	seq *nn.Sequential[B]
}

func newHead[B tensor.Backend](numClasses int, backend B) *Head[B] {
	h := &Head[B]{fc: nn.NewLinear(FeatureChannels, numClasses, backend)}
	h.seq = nn.NewSequential[B](nn.NewGlobalAvgPool2D[B](), nn.NewFlatten[B](), h.fc)
	return h
}

// Forward applies the head.
func (h *Head[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return h.seq.Forward(x)
}

// Parameters returns the linear layer's weight and bias.
func (h *Head[B]) Parameters() []*nn.Parameter[B] {
	return h.fc.Parameters()
}

// StateDict names entries fc.*.
func (h *Head[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	nn.PrefixStateDict(stateDict, "fc", h.fc.StateDict())
	return stateDict
}

// LoadStateDict loads fc.*.
func (h *Head[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := h.fc.LoadStateDict(nn.SubStateDict(stateDict, "fc")); err != nil {
		return prefixErr("fc", err)
	}
	return nil
}

// FC returns the linear classifier.
func (h *Head[B]) FC() *nn.Linear[B] { return h.fc }
