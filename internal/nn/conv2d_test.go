package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/resnet/internal/backend/cpu"
	"github.com/born-ml/resnet/internal/tensor"
)

func TestConv2D_Creation(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(3, 64, 7, 7, 2, 3, true, backend)

	assert.Equal(t, 3, conv.InChannels())
	assert.Equal(t, 64, conv.OutChannels())
	assert.Equal(t, [2]int{7, 7}, conv.KernelSize())
	assert.Equal(t, 2, conv.Stride())
	assert.Equal(t, 3, conv.Padding())
	assert.Equal(t, tensor.Shape{64, 3, 7, 7}, conv.Weight().Tensor().Shape())
	assert.Equal(t, tensor.Shape{64}, conv.Bias().Tensor().Shape())
	assert.Len(t, conv.Parameters(), 2)

	noBias := NewConv2D(3, 4, 1, 1, 1, 0, false, backend)
	assert.Nil(t, noBias.Bias())
	assert.Len(t, noBias.Parameters(), 1)
	assert.Len(t, noBias.StateDict(), 1)
}

func TestConv2D_InvalidArguments(t *testing.T) {
	backend := cpu.New()

	assert.Panics(t, func() { NewConv2D(0, 4, 3, 3, 1, 1, true, backend) })
	assert.Panics(t, func() { NewConv2D(3, 4, 0, 3, 1, 1, true, backend) })
	assert.Panics(t, func() { NewConv2D(3, 4, 3, 3, 0, 1, true, backend) })
	assert.Panics(t, func() { NewConv2D(3, 4, 3, 3, 1, -1, true, backend) })
}

func TestConv2D_ForwardShape(t *testing.T) {
	backend := cpu.New()

	tests := []struct {
		name            string
		kernel, stride  int
		padding         int
		in              tensor.Shape
		want            tensor.Shape
		wantComputedOut [2]int
	}{
		{"3x3 same", 3, 1, 1, tensor.Shape{2, 4, 8, 8}, tensor.Shape{2, 6, 8, 8}, [2]int{8, 8}},
		{"3x3 stride 2", 3, 2, 1, tensor.Shape{1, 4, 7, 7}, tensor.Shape{1, 6, 4, 4}, [2]int{4, 4}},
		{"1x1 stride 2", 1, 2, 0, tensor.Shape{1, 4, 7, 5}, tensor.Shape{1, 6, 4, 3}, [2]int{4, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := NewConv2D(4, 6, tt.kernel, tt.kernel, tt.stride, tt.padding, true, backend)
			out := conv.Forward(tensor.Zeros[float32](tt.in, backend))
			assert.Equal(t, tt.want, out.Shape())
			assert.Equal(t, tt.wantComputedOut, conv.ComputeOutputSize(tt.in[2], tt.in[3]))
		})
	}
}

func TestConv2D_ForwardAddsBias(t *testing.T) {
	backend := cpu.New()
	conv := NewConv2D(1, 2, 1, 1, 1, 0, true, backend)
	copy(conv.Weight().Tensor().Data(), []float32{1, 2})
	copy(conv.Bias().Tensor().Data(), []float32{10, -10})

	input, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2}, backend)
	require.NoError(t, err)

	out := conv.Forward(input)

	assert.Equal(t, []float32{11, 12, 13, 14, -8, -6, -4, -2}, out.Data())
	// The input is not modified.
	assert.Equal(t, []float32{1, 2, 3, 4}, input.Data())
}

func TestConv2D_ForwardChannelMismatch(t *testing.T) {
	backend := cpu.New()
	conv := NewConv2D(3, 4, 3, 3, 1, 1, true, backend)

	assert.PanicsWithValue(t, "conv2d: input channels 1 != expected 3", func() {
		conv.Forward(tensor.Zeros[float32](tensor.Shape{1, 1, 8, 8}, backend))
	})
	assert.Panics(t, func() {
		conv.Forward(tensor.Zeros[float32](tensor.Shape{3, 8, 8}, backend))
	})
}

func TestConv2D_StateDictRoundTrip(t *testing.T) {
	backend := cpu.New()
	src := NewConv2D(2, 3, 3, 3, 1, 1, true, backend)
	dst := NewConv2D(2, 3, 3, 3, 1, 1, true, backend)

	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	assert.Equal(t, src.Weight().Tensor().Data(), dst.Weight().Tensor().Data())
	assert.Equal(t, src.Bias().Tensor().Data(), dst.Bias().Tensor().Data())
	// Loading copies; the tensors stay distinct.
	assert.NotSame(t, src.Weight().Tensor().Raw(), dst.Weight().Tensor().Raw())
}

func TestConv2D_LoadStateDictErrors(t *testing.T) {
	backend := cpu.New()
	conv := NewConv2D(2, 3, 3, 3, 1, 1, true, backend)
	other := NewConv2D(2, 4, 3, 3, 1, 1, true, backend)

	err := conv.LoadStateDict(other.StateDict())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weight shape mismatch")

	sd := conv.StateDict()
	delete(sd, "bias")
	err = conv.LoadStateDict(sd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing bias")

	f64, err := tensor.NewRaw(tensor.Shape{3}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	sd = conv.StateDict()
	sd["bias"] = f64
	assert.ErrorContains(t, conv.LoadStateDict(sd), "dtype mismatch")
}

func TestConv2D_String(t *testing.T) {
	conv := NewConv2D(64, 128, 1, 1, 2, 0, true, cpu.New())
	assert.Equal(t, "Conv2D(in_channels=64, out_channels=128, kernel_size=(1, 1), stride=2, padding=0, bias=true)", conv.String())
}
