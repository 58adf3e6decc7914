package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/resnet/internal/tensor"
)

func raw32(t *testing.T, shape tensor.Shape, data []float32) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	if data != nil {
		require.Len(t, data, shape.NumElements())
		copy(r.AsFloat32(), data)
	}
	return r
}

func raw64(t *testing.T, shape tensor.Shape, data []float64) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	if data != nil {
		require.Len(t, data, shape.NumElements())
		copy(r.AsFloat64(), data)
	}
	return r
}

func iota32(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i + 1)
	}
	return out
}
