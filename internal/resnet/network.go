package resnet

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/tensor"
)

// Network is a residual image classifier.
//
//	[N, in_channels, H, W] -> stem -> blocks[0..3] -> head -> [N, num_classes]
//
// Network implements nn.Module, so an external optimizer or persistence
// layer can use Parameters and StateDict directly.
type Network[B tensor.Backend] struct {
	cfg     Config
	stem    *Stem[B]
	blocks  []*ResidualBlock[B]
	head    *Head[B]
	backend B
}

// New builds a network from cfg.
func New[B tensor.Backend](cfg Config, backend B) (*Network[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := &Network[B]{
		cfg:     cfg,
		stem:    newStem(cfg.InChannels, cfg.Epsilon, backend),
		blocks:  make([]*ResidualBlock[B], 0, NumBlocks),
		head:    newHead(cfg.NumClasses, backend),
		backend: backend,
	}
	for i, width := range BlockWidths {
		b, err := NewResidualBlock(width[0], width[1], cfg.LayersPerBlock[i], cfg.Epsilon, backend)
		if err != nil {
			return nil, errors.Wrapf(err, "block %d", i)
		}
		n.blocks = append(n.blocks, b)
	}
	return n, nil
}

// MustNew is like New but panics on an invalid configuration.
func MustNew[B tensor.Backend](cfg Config, backend B) *Network[B] {
	n, err := New(cfg, backend)
	if err != nil {
		panic(fmt.Sprintf("resnet: %v", err))
	}
	return n
}

// Forward maps images [N, in_channels, H, W] to scores [N, num_classes].
// It panics when the input cannot be processed; see Infer.
func (n *Network[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return n.run(x, nil)
}

// run performs the pass, recording the current stage name in stage when
// stage is non-nil.
func (n *Network[B]) run(x *tensor.Tensor[float32, B], stage *string) *tensor.Tensor[float32, B] {
	mark := func(s string) {
		if stage != nil {
			*stage = s
		}
	}

	mark("stem")
	x = n.stem.Forward(x)
	for i, b := range n.blocks {
		mark("blocks." + strconv.Itoa(i))
		x = b.Forward(x)
	}
	mark("head")
	return n.head.Forward(x)
}

// Infer is Forward with error reporting. The input shape is checked up
// front, and any failure inside a stage is returned as a *ShapeError
// naming that stage instead of panicking.
func (n *Network[B]) Infer(x *tensor.Tensor[float32, B]) (out *tensor.Tensor[float32, B], err error) {
	if _, err := n.OutputShape(x.Shape()); err != nil {
		return nil, err
	}

	stage := "input"
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &ShapeError{Stage: stage, Input: x.Shape().Clone(), Reason: fmt.Sprint(r)}
		}
	}()
	return n.run(x, &stage), nil
}

// Parameters returns every parameter tensor: stem, blocks in order, head.
// Batch-norm running statistics are included as non-trainable parameters.
func (n *Network[B]) Parameters() []*nn.Parameter[B] {
	params := n.stem.Parameters()
	for _, b := range n.blocks {
		params = append(params, b.Parameters()...)
	}
	return append(params, n.head.Parameters()...)
}

// NumParameters returns the number of scalars in all parameters.
func (n *Network[B]) NumParameters() int {
	return nn.CountParameters(n.Parameters(), false)
}

// NumTrainableParameters returns the number of scalars an optimizer updates.
func (n *Network[B]) NumTrainableParameters() int {
	return nn.CountParameters(n.Parameters(), true)
}

// StateDict returns all parameters keyed by hierarchical name, for example
// "stem.conv.weight", "blocks.1.layers.0.shortcut.weight", "head.fc.bias".
// The tensors are shared with the network, not copied.
func (n *Network[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	nn.PrefixStateDict(stateDict, "stem", n.stem.StateDict())
	for i, b := range n.blocks {
		nn.PrefixStateDict(stateDict, "blocks."+strconv.Itoa(i), b.StateDict())
	}
	nn.PrefixStateDict(stateDict, "head", n.head.StateDict())
	return stateDict
}

// CheckStateDict compares stateDict against the network's own keys and
// shapes without loading anything. It returns one line per problem, sorted.
func (n *Network[B]) CheckStateDict(stateDict map[string]*tensor.RawTensor) []string {
	var problems []string
	own := n.StateDict()
	for name, raw := range own {
		got, ok := stateDict[name]
		switch {
		case !ok:
			problems = append(problems, "missing "+name)
		case !got.Shape().Equal(raw.Shape()):
			problems = append(problems, fmt.Sprintf("shape mismatch %s: expected %v, got %v", name, raw.Shape(), got.Shape()))
		case got.DType() != raw.DType():
			problems = append(problems, fmt.Sprintf("dtype mismatch %s: expected %v, got %v", name, raw.DType(), got.DType()))
		}
	}
	for name := range stateDict {
		if _, ok := own[name]; !ok {
			problems = append(problems, "unexpected "+name)
		}
	}
	sort.Strings(problems)
	return problems
}

// LoadStateDict copies stateDict into the network. The keys must match
// StateDict exactly; nothing is loaded if any key is missing, unexpected
// or has the wrong shape.
func (n *Network[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if problems := n.CheckStateDict(stateDict); len(problems) > 0 {
		return errors.Wrap(ErrStateDict, strings.Join(problems, "; "))
	}

	if err := n.stem.LoadStateDict(nn.SubStateDict(stateDict, "stem")); err != nil {
		return prefixErr("stem", err)
	}
	for i, b := range n.blocks {
		prefix := "blocks." + strconv.Itoa(i)
		if err := b.LoadStateDict(nn.SubStateDict(stateDict, prefix)); err != nil {
			return prefixErr(prefix, err)
		}
	}
	if err := n.head.LoadStateDict(nn.SubStateDict(stateDict, "head")); err != nil {
		return prefixErr("head", err)
	}
	return nil
}

// SetTraining switches every batch norm between batch statistics (true)
// and running statistics (false). Networks start in evaluation mode.
func (n *Network[B]) SetTraining(training bool) {
	n.stem.SetTraining(training)
	for _, b := range n.blocks {
		b.SetTraining(training)
	}
}

// Config returns the configuration the network was built from.
func (n *Network[B]) Config() Config { return n.cfg }

// Stem returns the entry stage.
func (n *Network[B]) Stem() *Stem[B] { return n.stem }

// Blocks returns the four residual blocks. The slice must not be modified.
func (n *Network[B]) Blocks() []*ResidualBlock[B] { return n.blocks }

// Head returns the classifier stage.
func (n *Network[B]) Head() *Head[B] { return n.head }

// Backend returns the compute backend.
func (n *Network[B]) Backend() B { return n.backend }

// String describes the network.
func (n *Network[B]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ResNet(in_channels=%d, num_classes=%d)\n", n.cfg.InChannels, n.cfg.NumClasses)
	fmt.Fprintf(&sb, "  stem: %s, %s, ReLU(), %s\n", n.stem.conv, n.stem.bn, n.stem.pool)
	for i, b := range n.blocks {
		fmt.Fprintf(&sb, "  blocks.%d: %s\n", i, strings.ReplaceAll(b.String(), "\n", "\n  "))
	}
	fmt.Fprintf(&sb, "  head: GlobalAvgPool2D(), Flatten(), %s", n.head.fc)
	return sb.String()
}

func prefixErr(prefix string, err error) error {
	return fmt.Errorf("%s: %w", prefix, err)
}
