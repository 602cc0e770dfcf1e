package npulower

import (
	"fmt"

	"github.com/gomlx/npulower/types"
)

// SupportQueries is the oracle that classifies each source operation as
// Supported, EstimateOnly or Unsupported for the target hardware. The caps
// package provides a conservative implementation; callers with richer
// hardware models can supply their own.
type SupportQueries interface {
	IsConvolutionSupported(bias, weights types.TensorInfo, info types.ConvolutionInfo, input types.TensorInfo) types.SupportedLevel
	IsDepthwiseConvolutionSupported(bias, weights types.TensorInfo, info types.ConvolutionInfo, input types.TensorInfo) types.SupportedLevel
	IsTransposeConvolutionSupported(bias, weights types.TensorInfo, info types.ConvolutionInfo, input types.TensorInfo) types.SupportedLevel
	IsPoolingSupported(info types.PoolingInfo, input types.TensorInfo) types.SupportedLevel
	IsSoftmaxSupported(input types.TensorInfo) types.SupportedLevel
	IsAdditionSupported(input0, input1 types.TensorInfo, outputQuantization types.QuantizationInfo) types.SupportedLevel
	IsConcatenationSupported(inputs []types.TensorInfo, info types.ConcatenationInfo) types.SupportedLevel
	IsSplitSupported(input types.TensorInfo, info types.SplitInfo) types.SupportedLevel
}

// Capabilities reports the hardware parameters the lowering depends on.
type Capabilities interface {
	// BrickGroupShape is the alignment unit of the NHWCB format, as
	// (1, height, width, channels).
	BrickGroupShape() types.TensorShape

	// NumSubmapChannels is the channel count of the interleaved tensor a
	// strided convolution reads: the input's channels spread across
	// strideX*strideY sub-maps.
	NumSubmapChannels(channels, strideX, strideY uint32) uint32
}

// NotSupportedError reports that the network cannot be lowered for the target
// hardware: the support oracle rejected an operation, or the network uses a
// construct the lowering rejects (e.g. shared inputs to a concatenation).
type NotSupportedError struct {
	Reason string
}

func (e *NotSupportedError) Error() string { return e.Reason }

func notSupportedf(format string, args ...any) error {
	return &NotSupportedError{Reason: fmt.Sprintf(format, args...)}
}
