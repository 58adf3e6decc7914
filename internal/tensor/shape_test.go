package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_NumElements(t *testing.T) {
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, 24, Shape{2, 3, 4}.NumElements())
	assert.Equal(t, 3*224*224, Shape{1, 3, 224, 224}.NumElements())
}

func TestShape_Validate(t *testing.T) {
	require.NoError(t, Shape{1, 2}.Validate())
	require.NoError(t, Shape{}.Validate())
	assert.Error(t, Shape{1, 0}.Validate())
	assert.Error(t, Shape{-1}.Validate())
}

func TestShape_ComputeStrides(t *testing.T) {
	assert.Equal(t, []int{24, 12, 4, 1}, Shape{2, 2, 3, 4}.ComputeStrides())
	assert.Equal(t, []int{}, Shape{}.ComputeStrides())
}

func TestShape_CloneIsIndependent(t *testing.T) {
	s := Shape{1, 2, 3}
	c := s.Clone()
	c[0] = 9

	assert.Equal(t, Shape{1, 2, 3}, s)
	assert.True(t, s.Equal(Shape{1, 2, 3}))
	assert.False(t, s.Equal(c))
	assert.False(t, s.Equal(Shape{1, 2}))
}

func TestShape_NormalizeDim(t *testing.T) {
	s := Shape{2, 3, 4}

	d, err := s.NormalizeDim(-1)
	require.NoError(t, err)
	assert.Equal(t, 2, d)

	d, err = s.NormalizeDim(1)
	require.NoError(t, err)
	assert.Equal(t, 1, d)

	_, err = s.NormalizeDim(3)
	assert.Error(t, err)
	_, err = s.NormalizeDim(-4)
	assert.Error(t, err)
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		want      Shape
		broadcast bool
		wantErr   bool
	}{
		{"equal", Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{"column", Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"channel bias", Shape{1, 64, 1, 1}, Shape{2, 64, 8, 8}, Shape{2, 64, 8, 8}, true, false},
		{"missing leading", Shape{5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"incompatible", Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, broadcast, err := BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.broadcast, broadcast)
		})
	}
}

func TestConvOutputSize(t *testing.T) {
	// Stem convolution and pooling at 224.
	assert.Equal(t, 112, ConvOutputSize(224, 7, 2, 3))
	assert.Equal(t, 56, ConvOutputSize(112, 3, 2, 1))
	// Stride-2 3x3 with padding 1 rounds odd sizes up.
	assert.Equal(t, 4, ConvOutputSize(7, 3, 2, 1))
	assert.Equal(t, 1, ConvOutputSize(1, 3, 2, 1))
	// 1x1 projection with stride 2 and no padding.
	assert.Equal(t, 4, ConvOutputSize(7, 1, 2, 0))
}

func TestRawTensor_WithShape(t *testing.T) {
	r, err := NewRaw(Shape{2, 3}, Float32, CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), []float32{1, 2, 3, 4, 5, 6})

	v, err := r.WithShape(Shape{6})
	require.NoError(t, err)
	assert.Equal(t, Shape{6}, v.Shape())
	assert.Equal(t, []int{1}, v.Strides())

	v.AsFloat32()[0] = 42
	assert.Equal(t, float32(1), r.AsFloat32()[0])

	_, err = r.WithShape(Shape{4})
	assert.Error(t, err)
}

func TestRawTensor_Elements(t *testing.T) {
	r, err := NewRaw(Shape{2}, Float32, CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), []float32{1.5, -2})

	assert.Equal(t, []float64{1.5, -2}, r.Elements())
	assert.Equal(t, 8, r.ByteSize())
	assert.Panics(t, func() { r.AsFloat64() })
}

func TestDataType(t *testing.T) {
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Float64.Size())
	assert.Equal(t, "float32", Float32.String())
	assert.Equal(t, Float64, inferDataType(float64(0)))
	assert.Equal(t, "CPU", CPU.String())
}
