package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/resnet/internal/parallel"
	"github.com/born-ml/resnet/internal/tensor"
)

func TestConv2D_BasicForward(t *testing.T) {
	backend := New()

	// 1 2 3
	// 4 5 6
	// 7 8 9
	input := raw32(t, tensor.Shape{1, 1, 3, 3}, iota32(9))
	// Diagonal kernel:
	// 1 0
	// 0 1
	kernel := raw32(t, tensor.Shape{1, 1, 2, 2}, []float32{1, 0, 0, 1})

	output := backend.Conv2D(input, kernel, 1, 0)

	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())
	assert.Equal(t, []float32{6, 8, 12, 14}, output.AsFloat32())
}

func TestConv2D_WithPadding(t *testing.T) {
	backend := New()

	ones := []float32{1, 1, 1, 1, 1, 1, 1, 1, 1}
	input := raw32(t, tensor.Shape{1, 1, 3, 3}, ones)
	kernel := raw32(t, tensor.Shape{1, 1, 3, 3}, ones)

	output := backend.Conv2D(input, kernel, 1, 1)

	// Sum kernel over a zero-padded all-ones image counts in-bounds neighbours.
	require.Equal(t, tensor.Shape{1, 1, 3, 3}, output.Shape())
	assert.Equal(t, []float32{4, 6, 4, 6, 9, 6, 4, 6, 4}, output.AsFloat32())
}

func TestConv2D_Stride2(t *testing.T) {
	backend := New()

	input := raw32(t, tensor.Shape{1, 1, 4, 4}, iota32(16))
	kernel := raw32(t, tensor.Shape{1, 1, 1, 1}, []float32{1})

	output := backend.Conv2D(input, kernel, 2, 0)

	// 1x1 stride-2 picks every other pixel.
	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())
	assert.Equal(t, []float32{1, 3, 9, 11}, output.AsFloat32())
}

func TestConv2D_OddInputStride2Padding1(t *testing.T) {
	backend := New()

	input := raw32(t, tensor.Shape{1, 1, 7, 7}, nil)
	kernel := raw32(t, tensor.Shape{1, 1, 3, 3}, nil)

	output := backend.Conv2D(input, kernel, 2, 1)

	// (7 + 2 - 3)/2 + 1 = 4, i.e. ceil(7/2).
	assert.Equal(t, tensor.Shape{1, 1, 4, 4}, output.Shape())
}

func TestConv2D_MultiChannel(t *testing.T) {
	backend := New()

	// Two input channels: all ones and all twos.
	input := raw32(t, tensor.Shape{1, 2, 2, 2}, []float32{1, 1, 1, 1, 2, 2, 2, 2})
	// Two output channels: the first reads channel 0, the second sums both.
	kernel := raw32(t, tensor.Shape{2, 2, 1, 1}, []float32{1, 0, 1, 1})

	output := backend.Conv2D(input, kernel, 1, 0)

	require.Equal(t, tensor.Shape{1, 2, 2, 2}, output.Shape())
	assert.Equal(t, []float32{1, 1, 1, 1, 3, 3, 3, 3}, output.AsFloat32())
}

func TestConv2D_BatchMatchesSequential(t *testing.T) {
	input := raw32(t, tensor.Shape{4, 3, 9, 9}, nil)
	for i := range input.AsFloat32() {
		input.AsFloat32()[i] = float32(i%17) - 8
	}
	kernel := raw32(t, tensor.Shape{5, 3, 3, 3}, nil)
	for i := range kernel.AsFloat32() {
		kernel.AsFloat32()[i] = float32(i%5) - 2
	}

	par := New(WithParallel(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}))
	seq := New(WithParallel(parallel.Sequential()))

	a := par.Conv2D(input, kernel, 2, 1)
	b := seq.Conv2D(input, kernel, 2, 1)

	assert.Equal(t, tensor.Shape{4, 5, 5, 5}, a.Shape())
	assert.Equal(t, b.AsFloat32(), a.AsFloat32())
}

func TestConv2D_Float64(t *testing.T) {
	backend := New()

	input := raw64(t, tensor.Shape{1, 1, 2, 2}, []float64{1, 2, 3, 4})
	kernel := raw64(t, tensor.Shape{1, 1, 2, 2}, []float64{1, 1, 1, 1})

	output := backend.Conv2D(input, kernel, 1, 0)

	assert.Equal(t, []float64{10}, output.AsFloat64())
}

func TestConv2D_StemGeometry(t *testing.T) {
	if testing.Short() {
		t.Skip("full-resolution stem convolution")
	}
	backend := New()

	input := raw32(t, tensor.Shape{1, 3, 224, 224}, nil)
	kernel := raw32(t, tensor.Shape{8, 3, 7, 7}, nil)

	output := backend.Conv2D(input, kernel, 2, 3)

	assert.Equal(t, tensor.Shape{1, 8, 112, 112}, output.Shape())
}

func TestConv2D_Panics(t *testing.T) {
	backend := New()

	tests := []struct {
		name    string
		input   tensor.Shape
		kernel  tensor.Shape
		stride  int
		padding int
	}{
		{"3D input", tensor.Shape{1, 3, 3}, tensor.Shape{1, 1, 2, 2}, 1, 0},
		{"3D kernel", tensor.Shape{1, 1, 3, 3}, tensor.Shape{1, 2, 2}, 1, 0},
		{"channel mismatch", tensor.Shape{1, 2, 3, 3}, tensor.Shape{1, 3, 2, 2}, 1, 0},
		{"zero stride", tensor.Shape{1, 1, 3, 3}, tensor.Shape{1, 1, 2, 2}, 0, 0},
		{"negative padding", tensor.Shape{1, 1, 3, 3}, tensor.Shape{1, 1, 2, 2}, 1, -1},
		{"kernel larger than input", tensor.Shape{1, 1, 2, 2}, tensor.Shape{1, 1, 3, 3}, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := raw32(t, tt.input, nil)
			kernel := raw32(t, tt.kernel, nil)
			assert.Panics(t, func() {
				backend.Conv2D(input, kernel, tt.stride, tt.padding)
			})
		})
	}
}

func TestConv2D_DTypeMismatch(t *testing.T) {
	backend := New()
	input := raw32(t, tensor.Shape{1, 1, 2, 2}, nil)
	kernel := raw64(t, tensor.Shape{1, 1, 1, 1}, nil)

	assert.PanicsWithValue(t, "conv2d: dtype mismatch float32 vs float64", func() {
		backend.Conv2D(input, kernel, 1, 0)
	})
}
