package serialization

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// SafeTensors dtype strings.
const (
	DTypeF32 = "F32"
	DTypeF64 = "F64"
)

// Header keys with special meaning.
const (
	MetadataKey         = "__metadata__"
	MetadataChecksumKey = "sha256"
)

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// Header is a parsed SafeTensors header.
type Header struct {
	Tensors  []TensorMeta      // Sorted by name
	Metadata map[string]string // Contents of __metadata__, never nil
}

// TensorMeta describes one tensor of a file.
type TensorMeta struct {
	Name   string          // Tensor name (e.g., "stem.conv.weight")
	DType  tensor.DataType // Element type
	Shape  tensor.Shape    // Tensor shape
	Offset int64           // Offset in the data section
	Size   int64           // Size in bytes
}

// dtypeToSafeTensors converts tensor.DataType to SafeTensors dtype string.
func dtypeToSafeTensors(dt tensor.DataType) (string, error) {
	switch dt {
	case tensor.Float32:
		return DTypeF32, nil
	case tensor.Float64:
		return DTypeF64, nil
	default:
		return "", fmt.Errorf("%w: %v", ErrUnsupportedDType, dt)
	}
}

// dtypeFromSafeTensors converts a SafeTensors dtype string to tensor.DataType.
func dtypeFromSafeTensors(s string) (tensor.DataType, error) {
	switch s {
	case DTypeF32:
		return tensor.Float32, nil
	case DTypeF64:
		return tensor.Float64, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDType, s)
	}
}
