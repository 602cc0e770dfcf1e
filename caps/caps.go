// Package caps provides concrete hardware parameters for the lowering pass: a
// HardwareCapabilities value describing the NHWCB brick-group geometry and
// SRAM arrangement, and a conservative SupportQueries oracle that classifies
// operations for that configuration.
package caps

import (
	"github.com/gomlx/gopjrt/dtypes"

	"github.com/gomlx/npulower/internal/utils"
	"github.com/gomlx/npulower/types"
)

// HardwareCapabilities reports the geometry of one NPU configuration.
type HardwareCapabilities struct {
	brickGroupShape types.TensorShape
	numberOfSrams   uint32
}

// NewHardwareCapabilities creates a HardwareCapabilities with the given
// brick-group shape and SRAM count.
func NewHardwareCapabilities(brickGroupShape types.TensorShape, numberOfSrams uint32) *HardwareCapabilities {
	return &HardwareCapabilities{
		brickGroupShape: brickGroupShape,
		numberOfSrams:   numberOfSrams,
	}
}

// Default returns the baseline configuration: 8x8x16 brick groups and 16
// SRAMs.
func Default() *HardwareCapabilities {
	return NewHardwareCapabilities(types.TensorShape{1, 8, 8, 16}, 16)
}

// BrickGroupShape returns the alignment unit of the NHWCB format.
func (c *HardwareCapabilities) BrickGroupShape() types.TensorShape {
	return c.brickGroupShape
}

// NumberOfSrams returns how many SRAM banks the configuration has.
func (c *HardwareCapabilities) NumberOfSrams() uint32 {
	return c.numberOfSrams
}

// NumSubmapChannels returns the channel count of the interleaved tensor a
// strided convolution reads. Channel counts that do not fill the SRAM banks
// evenly leave padding channels in all sub-maps but the first.
func (c *HardwareCapabilities) NumSubmapChannels(channels, strideX, strideY uint32) uint32 {
	if channels%c.numberOfSrams != 0 {
		return utils.RoundUpToNearestMultiple(channels, c.numberOfSrams)*(strideX*strideY-1) + channels
	}
	return channels * strideX * strideY
}

// SupportQueries classifies operations for a HardwareCapabilities
// configuration. The checks are structural: element types, weight formats,
// stride and kernel limits, and padding ranges. Anything outside the
// fixed-function envelope that still has well-defined shapes is EstimateOnly;
// malformed combinations are Unsupported.
type SupportQueries struct {
	caps *HardwareCapabilities
}

// NewSupportQueries creates the support oracle for the given capabilities.
func NewSupportQueries(caps *HardwareCapabilities) *SupportQueries {
	return &SupportQueries{caps: caps}
}

func isQuantizedActivation(info types.TensorInfo) bool {
	return info.DataType == dtypes.U8
}

func strideSupported(stride types.Stride) bool {
	return (stride.X == 1 && stride.Y == 1) || (stride.X == 2 && stride.Y == 2)
}

// IsConvolutionSupported classifies a convolution.
func (q *SupportQueries) IsConvolutionSupported(bias, weights types.TensorInfo, info types.ConvolutionInfo, input types.TensorInfo) types.SupportedLevel {
	if !isQuantizedActivation(input) || weights.DataType != dtypes.U8 || bias.DataType != dtypes.S32 {
		return types.Unsupported
	}
	if weights.DataFormat != types.HWIO {
		return types.Unsupported
	}
	if !strideSupported(info.Stride) {
		return types.EstimateOnly
	}
	if weights.Dimensions[0] > 7 || weights.Dimensions[1] > 7 {
		return types.EstimateOnly
	}
	return types.Supported
}

// IsDepthwiseConvolutionSupported classifies a depthwise convolution.
func (q *SupportQueries) IsDepthwiseConvolutionSupported(bias, weights types.TensorInfo, info types.ConvolutionInfo, input types.TensorInfo) types.SupportedLevel {
	if !isQuantizedActivation(input) || weights.DataType != dtypes.U8 || bias.DataType != dtypes.S32 {
		return types.Unsupported
	}
	if weights.DataFormat != types.HWIM {
		return types.Unsupported
	}
	// A channel multiplier is only expressible via a regular convolution of a
	// single input channel.
	if weights.Dimensions[3] > 1 && weights.Dimensions[2] != 1 {
		return types.Unsupported
	}
	if !strideSupported(info.Stride) {
		return types.EstimateOnly
	}
	if weights.Dimensions[0] > 7 || weights.Dimensions[1] > 7 {
		return types.EstimateOnly
	}
	return types.Supported
}

// IsTransposeConvolutionSupported classifies a transpose convolution. The
// user padding may not exceed kernel-1, which keeps the internal convolution
// padding non-negative.
func (q *SupportQueries) IsTransposeConvolutionSupported(bias, weights types.TensorInfo, info types.ConvolutionInfo, input types.TensorInfo) types.SupportedLevel {
	if !isQuantizedActivation(input) || weights.DataType != dtypes.U8 || bias.DataType != dtypes.S32 {
		return types.Unsupported
	}
	if weights.DataFormat != types.HWIO {
		return types.Unsupported
	}
	if info.Padding.Top > weights.Dimensions[0]-1 || info.Padding.Bottom > weights.Dimensions[0]-1 ||
		info.Padding.Left > weights.Dimensions[1]-1 || info.Padding.Right > weights.Dimensions[1]-1 {
		return types.Unsupported
	}
	if info.Stride.X != info.Stride.Y || info.Stride.X != 2 {
		return types.EstimateOnly
	}
	return types.Supported
}

// IsPoolingSupported classifies a pooling. Only the four fixed-function
// configurations (whole-plane mean, 3x3/1 average, 2x2/2 and 3x3/2 max) are
// supported.
func (q *SupportQueries) IsPoolingSupported(info types.PoolingInfo, input types.TensorInfo) types.SupportedLevel {
	if !isQuantizedActivation(input) {
		return types.Unsupported
	}
	mean := types.PoolingInfo{
		SizeX:   input.Dimensions[2],
		SizeY:   input.Dimensions[1],
		StrideX: info.StrideX,
		StrideY: info.StrideY,
		Padding: types.Padding{},
		Type:    types.PoolingAvg,
	}
	switch {
	case info == mean,
		info == (types.PoolingInfo{SizeX: 3, SizeY: 3, StrideX: 1, StrideY: 1, Padding: info.Padding, Type: types.PoolingAvg}),
		info == (types.PoolingInfo{SizeX: 2, SizeY: 2, StrideX: 2, StrideY: 2, Padding: info.Padding, Type: types.PoolingMax}),
		info == (types.PoolingInfo{SizeX: 3, SizeY: 3, StrideX: 2, StrideY: 2, Padding: info.Padding, Type: types.PoolingMax}):
		return types.Supported
	}
	return types.Unsupported
}

// IsSoftmaxSupported classifies a softmax. The hardware has no softmax
// kernel, so the best it offers is estimation.
func (q *SupportQueries) IsSoftmaxSupported(input types.TensorInfo) types.SupportedLevel {
	if !isQuantizedActivation(input) {
		return types.Unsupported
	}
	return types.EstimateOnly
}

// IsAdditionSupported classifies an element-wise addition.
func (q *SupportQueries) IsAdditionSupported(input0, input1 types.TensorInfo, outputQuantization types.QuantizationInfo) types.SupportedLevel {
	if !isQuantizedActivation(input0) || !isQuantizedActivation(input1) {
		return types.Unsupported
	}
	if input0.Dimensions != input1.Dimensions {
		return types.Unsupported
	}
	return types.Supported
}

// IsConcatenationSupported classifies a concatenation.
func (q *SupportQueries) IsConcatenationSupported(inputs []types.TensorInfo, info types.ConcatenationInfo) types.SupportedLevel {
	if len(inputs) == 0 || info.Axis > 3 {
		return types.Unsupported
	}
	for _, input := range inputs {
		if !isQuantizedActivation(input) {
			return types.Unsupported
		}
		for axis := uint32(0); axis < 4; axis++ {
			if axis != info.Axis && input.Dimensions[axis] != inputs[0].Dimensions[axis] {
				return types.Unsupported
			}
		}
	}
	return types.Supported
}

// IsSplitSupported classifies a split.
func (q *SupportQueries) IsSplitSupported(input types.TensorInfo, info types.SplitInfo) types.SupportedLevel {
	if !isQuantizedActivation(input) || info.Axis > 3 || len(info.Sizes) == 0 {
		return types.Unsupported
	}
	var total uint32
	for _, size := range info.Sizes {
		total += size
	}
	if total != input.Dimensions[info.Axis] {
		return types.Unsupported
	}
	return types.Supported
}
