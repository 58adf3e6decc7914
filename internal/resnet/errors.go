package resnet

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/resnet/internal/tensor"
)

// Sentinel errors. Returned errors wrap one of these.
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidStride    = errors.New("invalid stride")
	ErrShortcutMismatch = errors.New("shortcut kind does not match layer geometry")
	ErrShape            = errors.New("shape error")
	ErrStateDict        = errors.New("state dict mismatch")
)

// ShapeError reports an input that a stage of the network cannot process.
type ShapeError struct {
	Stage  string       // e.g. "stem.conv", "blocks.2"
	Input  tensor.Shape // shape of the network input
	Reason string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s (input shape %v)", e.Stage, e.Reason, e.Input)
}

// Unwrap returns ErrShape.
func (e *ShapeError) Unwrap() error {
	return ErrShape
}

// Cause returns ErrShape for github.com/pkg/errors.Cause.
func (e *ShapeError) Cause() error {
	return ErrShape
}
