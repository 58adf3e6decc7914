package resnet_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/resnet/internal/backend/cpu"
	"github.com/born-ml/resnet/internal/resnet"
	"github.com/born-ml/resnet/internal/tensor"
)

func TestResidualBlock_Structure(t *testing.T) {
	block, err := resnet.NewResidualBlock(64, 128, 3, eps, cpu.New())
	require.NoError(t, err)

	require.Equal(t, 3, block.Len())
	assert.Equal(t, 64, block.InChannels())
	assert.Equal(t, 128, block.OutChannels())

	layers := block.Layers()
	assert.Equal(t, 64, layers[0].InChannels())
	assert.Equal(t, 128, layers[0].OutChannels())
	assert.Equal(t, 2, layers[0].Stride())
	assert.True(t, layers[0].HasProjection())

	for _, l := range layers[1:] {
		assert.Equal(t, 128, l.InChannels())
		assert.Equal(t, 128, l.OutChannels())
		assert.Equal(t, 1, l.Stride())
		assert.False(t, l.HasProjection())
	}
}

func TestResidualBlock_SameWidthStillProjects(t *testing.T) {
	block, err := resnet.NewResidualBlock(8, 8, 2, eps, cpu.New())
	require.NoError(t, err)

	assert.True(t, block.Layers()[0].HasProjection())
	assert.Equal(t, resnet.Projection, resnet.RequiredShortcut(8, 8, 2))
}

func TestResidualBlock_Forward(t *testing.T) {
	block, err := resnet.NewResidualBlock(4, 8, 2, eps, cpu.New())
	require.NoError(t, err)

	out := block.Forward(randn(2, 4, 9, 9))
	assert.Equal(t, tensor.Shape{2, 8, 5, 5}, out.Shape())

	h, w := block.OutputSize(9, 9)
	assert.Equal(t, 5, h)
	assert.Equal(t, 5, w)
}

func TestResidualBlock_StateDictNames(t *testing.T) {
	block, err := resnet.NewResidualBlock(4, 8, 2, eps, cpu.New())
	require.NoError(t, err)

	sd := block.StateDict()
	assert.Contains(t, sd, "layers.0.conv1.weight")
	assert.Contains(t, sd, "layers.0.shortcut.weight")
	assert.Contains(t, sd, "layers.1.bn2.running_var")
	assert.NotContains(t, sd, "layers.1.shortcut.weight")
	assert.Len(t, sd, 14+12)

	other, err := resnet.NewResidualBlock(4, 8, 2, eps, cpu.New())
	require.NoError(t, err)
	require.NoError(t, other.LoadStateDict(sd))

	delete(sd, "layers.1.bn1.bias")
	err = other.LoadStateDict(sd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layers.1")
}

func TestResidualBlock_Errors(t *testing.T) {
	_, err := resnet.NewResidualBlock(4, 8, 0, eps, cpu.New())
	assert.True(t, errors.Is(err, resnet.ErrInvalidConfig))

	_, err = resnet.NewResidualBlock(0, 8, 1, eps, cpu.New())
	assert.True(t, errors.Is(err, resnet.ErrInvalidConfig))
}

func TestResidualBlock_String(t *testing.T) {
	block, err := resnet.NewResidualBlock(4, 8, 2, eps, cpu.New())
	require.NoError(t, err)

	assert.Equal(t, "ResidualBlock(4 -> 8, layers=2)\n"+
		"  (0) ResidualLayer(4 -> 8, stride=2, shortcut=projection)\n"+
		"  (1) ResidualLayer(8 -> 8, stride=1, shortcut=identity)", block.String())
}
