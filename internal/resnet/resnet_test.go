package resnet_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/resnet/internal/backend/cpu"
	"github.com/born-ml/resnet/internal/resnet"
	"github.com/born-ml/resnet/internal/tensor"
)

type Backend = *cpu.CPUBackend

const eps = resnet.DefaultEpsilon

func randn(shape ...int) *tensor.Tensor[float32, Backend] {
	return tensor.Randn[float32](tensor.Shape(shape), cpu.New())
}

// smallConfig has one layer per block, which keeps construction fast.
func smallConfig(in, classes int) resnet.Config {
	cfg := resnet.DefaultConfig(in, classes)
	cfg.LayersPerBlock = [resnet.NumBlocks]int{1, 1, 1, 1}
	return cfg
}

func newNetwork(t *testing.T, cfg resnet.Config) *resnet.Network[Backend] {
	t.Helper()
	net, err := resnet.New(cfg, cpu.New())
	require.NoError(t, err)
	return net
}
