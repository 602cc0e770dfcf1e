package caps

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"

	"github.com/gomlx/npulower/types"
)

func activation(dims types.TensorShape) types.TensorInfo {
	return types.TensorInfo{
		Dimensions:   dims,
		DataType:     dtypes.U8,
		DataFormat:   types.NHWC,
		Quantization: types.QuantizationInfo{ZeroPoint: 0, Scale: 1},
	}
}

func hwio(dims types.TensorShape) types.TensorInfo {
	return types.TensorInfo{Dimensions: dims, DataType: dtypes.U8, DataFormat: types.HWIO}
}

func bias(channels uint32) types.TensorInfo {
	return types.TensorInfo{
		Dimensions: types.TensorShape{1, 1, 1, channels},
		DataType:   dtypes.S32,
		DataFormat: types.NHWC,
	}
}

func TestDefaultCapabilities(t *testing.T) {
	c := Default()
	assert.Equal(t, types.TensorShape{1, 8, 8, 16}, c.BrickGroupShape())
	assert.Equal(t, uint32(16), c.NumberOfSrams())
}

func TestNumSubmapChannels(t *testing.T) {
	c := Default()
	// Aligned channel counts interleave exactly.
	assert.Equal(t, uint32(64), c.NumSubmapChannels(16, 2, 2))
	assert.Equal(t, uint32(128), c.NumSubmapChannels(32, 2, 2))
	assert.Equal(t, uint32(16), c.NumSubmapChannels(16, 1, 1))
	// Unaligned counts pad every sub-map but the first.
	assert.Equal(t, uint32(51), c.NumSubmapChannels(3, 2, 2))
	assert.Equal(t, uint32(65), c.NumSubmapChannels(17, 1, 2))
}

func TestConvolutionSupport(t *testing.T) {
	q := NewSupportQueries(Default())
	input := activation(types.TensorShape{1, 8, 8, 16})

	stride1 := types.ConvolutionInfo{Stride: types.Stride{X: 1, Y: 1}}
	assert.Equal(t, types.Supported,
		q.IsConvolutionSupported(bias(32), hwio(types.TensorShape{3, 3, 16, 32}), stride1, input))

	// 3x3 stride is beyond the interleave transform.
	stride3 := types.ConvolutionInfo{Stride: types.Stride{X: 3, Y: 3}}
	assert.Equal(t, types.EstimateOnly,
		q.IsConvolutionSupported(bias(32), hwio(types.TensorShape{3, 3, 16, 32}), stride3, input))

	// Kernels above 7 are beyond the MCE.
	assert.Equal(t, types.EstimateOnly,
		q.IsConvolutionSupported(bias(32), hwio(types.TensorShape{9, 9, 16, 32}), stride1, input))

	// Wrong weight format.
	assert.Equal(t, types.Unsupported,
		q.IsConvolutionSupported(bias(32), types.TensorInfo{
			Dimensions: types.TensorShape{3, 3, 16, 1},
			DataType:   dtypes.U8,
			DataFormat: types.HWIM,
		}, stride1, input))
}

func TestDepthwiseSupport(t *testing.T) {
	q := NewSupportQueries(Default())
	input := activation(types.TensorShape{1, 8, 8, 16})
	stride1 := types.ConvolutionInfo{Stride: types.Stride{X: 1, Y: 1}}

	hwim := types.TensorInfo{Dimensions: types.TensorShape{3, 3, 16, 1}, DataType: dtypes.U8, DataFormat: types.HWIM}
	assert.Equal(t, types.Supported, q.IsDepthwiseConvolutionSupported(bias(16), hwim, stride1, input))

	// Channel multiplier over several input channels cannot be lowered.
	multiplied := types.TensorInfo{Dimensions: types.TensorShape{3, 3, 16, 4}, DataType: dtypes.U8, DataFormat: types.HWIM}
	assert.Equal(t, types.Unsupported, q.IsDepthwiseConvolutionSupported(bias(64), multiplied, stride1, input))
}

func TestTransposeConvolutionSupport(t *testing.T) {
	q := NewSupportQueries(Default())
	input := activation(types.TensorShape{1, 4, 4, 8})
	w := hwio(types.TensorShape{3, 3, 8, 8})

	stride2 := types.ConvolutionInfo{Stride: types.Stride{X: 2, Y: 2}}
	assert.Equal(t, types.Supported, q.IsTransposeConvolutionSupported(bias(8), w, stride2, input))

	// Padding beyond kernel-1 would need negative internal padding.
	cropped := types.ConvolutionInfo{Stride: types.Stride{X: 2, Y: 2}, Padding: types.Padding{Top: 3}}
	assert.Equal(t, types.Unsupported, q.IsTransposeConvolutionSupported(bias(8), w, cropped, input))

	stride1 := types.ConvolutionInfo{Stride: types.Stride{X: 1, Y: 1}}
	assert.Equal(t, types.EstimateOnly, q.IsTransposeConvolutionSupported(bias(8), w, stride1, input))
}

func TestPoolingSupport(t *testing.T) {
	q := NewSupportQueries(Default())
	input := activation(types.TensorShape{1, 8, 8, 16})

	assert.Equal(t, types.Supported, q.IsPoolingSupported(types.PoolingInfo{
		SizeX: 2, SizeY: 2, StrideX: 2, StrideY: 2, Type: types.PoolingMax,
	}, input))
	assert.Equal(t, types.Supported, q.IsPoolingSupported(types.PoolingInfo{
		SizeX: 8, SizeY: 8, StrideX: 1, StrideY: 1, Type: types.PoolingAvg,
	}, input))
	assert.Equal(t, types.Unsupported, q.IsPoolingSupported(types.PoolingInfo{
		SizeX: 1, SizeY: 1, StrideX: 1, StrideY: 1, Type: types.PoolingMax,
	}, input))
}

func TestSoftmaxAndDataSupport(t *testing.T) {
	q := NewSupportQueries(Default())
	input := activation(types.TensorShape{1, 8, 8, 16})
	assert.Equal(t, types.EstimateOnly, q.IsSoftmaxSupported(input))

	float := input
	float.DataType = dtypes.F32
	assert.Equal(t, types.Unsupported, q.IsSoftmaxSupported(float))
	assert.Equal(t, types.Unsupported, q.IsAdditionSupported(float, input, input.Quantization))
}

func TestConcatenationAndSplitSupport(t *testing.T) {
	q := NewSupportQueries(Default())
	a := activation(types.TensorShape{1, 8, 8, 3})
	b := activation(types.TensorShape{1, 8, 8, 5})
	assert.Equal(t, types.Supported, q.IsConcatenationSupported(
		[]types.TensorInfo{a, b}, types.ConcatenationInfo{Axis: 3}))

	mismatched := activation(types.TensorShape{1, 4, 8, 5})
	assert.Equal(t, types.Unsupported, q.IsConcatenationSupported(
		[]types.TensorInfo{a, mismatched}, types.ConcatenationInfo{Axis: 3}))

	input := activation(types.TensorShape{1, 8, 8, 16})
	assert.Equal(t, types.Supported, q.IsSplitSupported(input, types.SplitInfo{Axis: 3, Sizes: []uint32{8, 8}}))
	assert.Equal(t, types.Unsupported, q.IsSplitSupported(input, types.SplitInfo{Axis: 3, Sizes: []uint32{8, 4}}))
}
