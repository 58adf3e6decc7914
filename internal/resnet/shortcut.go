package resnet

import (
	"fmt"

	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/tensor"
)

// ShortcutKind selects how a residual layer carries its input to the sum.
type ShortcutKind int

const (
	// Identity adds the input unchanged.
	Identity ShortcutKind = iota
	// Projection passes the input through a learned 1x1 convolution.
	Projection
)

// String returns "identity" or "projection".
func (k ShortcutKind) String() string {
	switch k {
	case Identity:
		return "identity"
	case Projection:
		return "projection"
	default:
		return fmt.Sprintf("ShortcutKind(%d)", int(k))
	}
}

// RequiredShortcut returns the only shortcut kind valid for a layer: a
// projection exactly when the channel count or the resolution changes.
func RequiredShortcut(inChannels, outChannels, stride int) ShortcutKind {
	if inChannels != outChannels || stride != 1 {
		return Projection
	}
	return Identity
}

// Shortcut is the residual path of a layer, fixed at construction.
// The zero value is an identity shortcut.
type Shortcut[B tensor.Backend] struct {
	kind ShortcutKind
	proj *nn.Conv2D[B] // set only for Projection
}

func newShortcut[B tensor.Backend](kind ShortcutKind, inChannels, outChannels, stride int, backend B) Shortcut[B] {
	if kind == Identity {
		return Shortcut[B]{kind: Identity}
	}
	return Shortcut[B]{
		kind: Projection,
		proj: nn.NewConv2D(inChannels, outChannels, 1, 1, stride, 0, true, backend),
	}
}

// Kind returns the shortcut variant.
func (s Shortcut[B]) Kind() ShortcutKind {
	return s.kind
}

// Projection returns the 1x1 convolution, or nil for an identity shortcut.
func (s Shortcut[B]) Projection() *nn.Conv2D[B] {
	return s.proj
}

// Apply maps the layer input onto the residual sum's operand.
func (s Shortcut[B]) Apply(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if s.kind == Identity {
		return x
	}
	return s.proj.Forward(x)
}

// Parameters returns the projection's parameters, or nil.
func (s Shortcut[B]) Parameters() []*nn.Parameter[B] {
	if s.kind == Identity {
		return nil
	}
	return s.proj.Parameters()
}

// StateDict returns the projection's weight and bias, or an empty map.
func (s Shortcut[B]) StateDict() map[string]*tensor.RawTensor {
	if s.kind == Identity {
		return map[string]*tensor.RawTensor{}
	}
	return s.proj.StateDict()
}

// LoadStateDict loads the projection, if any.
func (s Shortcut[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if s.kind == Identity {
		return nil
	}
	return s.proj.LoadStateDict(stateDict)
}

// String describes the shortcut.
func (s Shortcut[B]) String() string {
	if s.kind == Identity {
		return "Identity()"
	}
	return s.proj.String()
}
