package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/resnet/internal/backend/cpu"
	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/tensor"
)

func TestLinear_Forward(t *testing.T) {
	backend := cpu.New()
	fc := nn.NewLinear(3, 2, backend)
	copy(fc.Weight().Tensor().Data(), []float32{1, 0, 0, 1, 1, 1})
	copy(fc.Bias().Tensor().Data(), []float32{0.5, -0.5})

	x := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)

	out := fc.Forward(x)

	require.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{1.5, 5.5, 4.5, 14.5}, out.Data())
}

func TestLinear_Shapes(t *testing.T) {
	backend := cpu.New()
	fc := nn.NewLinear(512, 10, backend)

	assert.Equal(t, 512, fc.InFeatures())
	assert.Equal(t, 10, fc.OutFeatures())
	assert.Equal(t, tensor.Shape{10, 512}, fc.Weight().Tensor().Shape())
	assert.Equal(t, "Linear(in_features=512, out_features=10)", fc.String())
	assert.Equal(t, 512*10+10, nn.CountParameters(fc.Parameters(), true))

	assert.Panics(t, func() { fc.Forward(tensor.Zeros[float32](tensor.Shape{1, 511}, backend)) })
	assert.Panics(t, func() { fc.Forward(tensor.Zeros[float32](tensor.Shape{1, 512, 1}, backend)) })
	assert.Panics(t, func() { nn.NewLinear(0, 10, backend) })
}

func TestLinear_StateDict(t *testing.T) {
	backend := cpu.New()
	src := nn.NewLinear(4, 3, backend)
	dst := nn.NewLinear(4, 3, backend)

	require.NoError(t, dst.LoadStateDict(src.StateDict()))
	assert.Equal(t, src.Weight().Tensor().Data(), dst.Weight().Tensor().Data())

	wrong := nn.NewLinear(4, 2, backend)
	assert.ErrorContains(t, wrong.LoadStateDict(src.StateDict()), "weight shape mismatch")
}
