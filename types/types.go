// Package types defines the value types shared between the source network and
// the lowered graph: tensor shapes and infos, quantization parameters, and the
// per-operation parameter structs.
//
// All tensor shapes are NHWC-ordered 4-vectors. The element type of a tensor
// is a dtypes.DType (only dtypes.U8 and dtypes.S32 are meaningful for this
// hardware); the quantized interpretation is carried by QuantizationInfo.
package types

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/npulower/internal/utils"
)

// TensorShape holds the dimensions of a tensor in NHWC order.
type TensorShape [4]uint32

// NumElements returns the total number of elements of the shape.
func (s TensorShape) NumElements() uint32 {
	return s[0] * s[1] * s[2] * s[3]
}

// String implements fmt.Stringer.
func (s TensorShape) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", s[0], s[1], s[2], s[3])
}

// QuantizationInfo holds the affine quantization parameters of a tensor:
// real_value = (quantized_value - ZeroPoint) * Scale.
type QuantizationInfo struct {
	ZeroPoint int32
	Scale     float32
}

// TensorInfo describes a tensor: its dimensions, element type, external data
// format and quantization parameters.
type TensorInfo struct {
	Dimensions   TensorShape
	DataType     dtypes.DType
	DataFormat   DataFormat
	Quantization QuantizationInfo
}

// TotalSizeBytes returns the size in bytes of a tensor with this info.
func (t TensorInfo) TotalSizeBytes() uint32 {
	return t.Dimensions.NumElements() * utils.DTypeSize(t.DataType)
}

// Stride of a convolution in X (width) and Y (height).
type Stride struct {
	X, Y uint32
}

// Padding applied around the spatial (height, width) plane of a tensor.
type Padding struct {
	Top, Bottom, Left, Right uint32
}

// ConvolutionInfo holds the parameters of a convolution-like operation.
// For a transpose convolution the Stride is the upscaling factor and the
// Padding crops the output.
type ConvolutionInfo struct {
	Padding            Padding
	Stride             Stride
	OutputQuantization QuantizationInfo
}

// PoolingInfo holds the parameters of a pooling operation.
// Field order matters for the whole-struct comparisons the lowering performs.
type PoolingInfo struct {
	SizeX, SizeY     uint32
	StrideX, StrideY uint32
	Padding          Padding
	Type             PoolingType
}

// ReluInfo holds the clamp bounds of a relu, in the quantized domain.
type ReluInfo struct {
	LowerBound, UpperBound int16
}

// ConcatenationInfo holds the axis and output quantization of a concatenation.
type ConcatenationInfo struct {
	Axis               uint32
	OutputQuantization QuantizationInfo
}

// SplitInfo holds the axis and the per-output sizes of a split.
// The sizes must sum to the input's extent along the axis.
type SplitInfo struct {
	Axis  uint32
	Sizes []uint32
}

// DepthToSpaceInfo holds the block size of a depth-to-space operation.
type DepthToSpaceInfo struct {
	BlockSize uint32
}

// FullyConnectedInfo holds the output quantization of a fully connected layer.
type FullyConnectedInfo struct {
	OutputQuantization QuantizationInfo
}

// EstimateOnlyInfo describes an operation that can only be estimated, never
// compiled: a free-form reason and the infos of its outputs.
type EstimateOnlyInfo struct {
	Reason      string
	OutputInfos []TensorInfo
}

// Fraction is an exact ratio, used by ShapeMultiplier.
type Fraction struct {
	Numerator, Denominator uint32
}

// ShapeMultiplier describes the input-to-output spatial and channel ratio of a
// PLE operation.
type ShapeMultiplier struct {
	H, W     Fraction
	Channels uint32
}

// IdentityShapeMultiplier leaves the shape unchanged.
var IdentityShapeMultiplier = ShapeMultiplier{H: Fraction{1, 1}, W: Fraction{1, 1}, Channels: 1}
