package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual numerical work for tensor operations; the
// network code only composes them.
//
// Every method returns a newly allocated RawTensor and never modifies its
// arguments. Shape errors are reported by panicking with a message prefixed
// by the operation name (e.g. "conv2d: ...").
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor // (M, K) @ (K, N) -> (M, N)

	// Convolutional operations.
	// Conv2D: input [N, C_in, H, W], kernel [C_out, C_in, K_h, K_w].
	// MaxPool2D: square window, zero or more cells of padding that never win the max.
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor
	MaxPool2D(input *RawTensor, kernelSize, stride, padding int) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Scalar operations (element-wise with scalar)
	AddScalar(x *RawTensor, scalar float64) *RawTensor
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// Math operations (element-wise)
	Sqrt(x *RawTensor) *RawTensor
	Rsqrt(x *RawTensor) *RawTensor // 1/sqrt(x)
	ReLU(x *RawTensor) *RawTensor  // max(0, x)

	// Reduction operations
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
