// Package resnet assembles residual image classifiers from the layers in
// internal/nn.
//
// A Network is a stem (7x7 convolution, batch norm, ReLU, 3x3 max pool), four
// ResidualBlocks of widths 64, 128, 256 and 512, and a head (global average
// pool, flatten, linear). Each ResidualBlock is a list of ResidualLayers; the
// first layer of every block halves the resolution and projects the shortcut,
// the remaining ones keep the shape and add their input unchanged.
//
// The topology is fixed at construction. Forward never mutates its input,
// and in evaluation mode (the default) it is safe to call concurrently.
//
// Construction problems are reported as errors wrapping ErrInvalidConfig,
// ErrInvalidStride or ErrShortcutMismatch. Forward keeps the nn.Module contract
// and panics on a bad input; Infer reports the same problem as a *ShapeError.
package resnet
