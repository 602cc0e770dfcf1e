// Package shapeinference calculates the output shape of each source network
// operation and validates its inputs.
//
// The network constructors use these to attach a TensorInfo to every operand
// before the lowering pass runs; the lowering itself never recomputes shapes.
//
// All shapes are NHWC. Weight tensors are HWIO (per-output) or HWIM
// (per-multiplier) as noted per function.
package shapeinference

import (
	"github.com/gomlx/npulower/types"
	"github.com/pkg/errors"
)

// Convolution returns the output shape of a convolution with HWIO weights
// {KH, KW, I, O}.
func Convolution(input, weights types.TensorInfo, info types.ConvolutionInfo) (types.TensorShape, error) {
	if weights.DataFormat != types.HWIO {
		return types.TensorShape{}, errors.Errorf("convolution weights must be HWIO, got %s", weights.DataFormat)
	}
	in := input.Dimensions
	w := weights.Dimensions
	if w[2] != in[3] {
		return types.TensorShape{}, errors.Errorf("convolution weights expect %d input channels, input has %d", w[2], in[3])
	}
	if info.Stride.X == 0 || info.Stride.Y == 0 {
		return types.TensorShape{}, errors.Errorf("convolution stride must be positive, got (%d, %d)", info.Stride.X, info.Stride.Y)
	}
	h := in[1] + info.Padding.Top + info.Padding.Bottom
	wi := in[2] + info.Padding.Left + info.Padding.Right
	if h < w[0] || wi < w[1] {
		return types.TensorShape{}, errors.Errorf("kernel %dx%d larger than padded input %dx%d", w[0], w[1], h, wi)
	}
	return types.TensorShape{
		in[0],
		(h-w[0])/info.Stride.Y + 1,
		(wi-w[1])/info.Stride.X + 1,
		w[3],
	}, nil
}

// DepthwiseConvolution returns the output shape of a depthwise convolution
// with HWIM weights {KH, KW, I, M}: each of the I input channels produces M
// output channels.
func DepthwiseConvolution(input, weights types.TensorInfo, info types.ConvolutionInfo) (types.TensorShape, error) {
	if weights.DataFormat != types.HWIM {
		return types.TensorShape{}, errors.Errorf("depthwise convolution weights must be HWIM, got %s", weights.DataFormat)
	}
	in := input.Dimensions
	w := weights.Dimensions
	if w[2] != in[3] {
		return types.TensorShape{}, errors.Errorf("depthwise weights expect %d input channels, input has %d", w[2], in[3])
	}
	if info.Stride.X == 0 || info.Stride.Y == 0 {
		return types.TensorShape{}, errors.Errorf("depthwise stride must be positive, got (%d, %d)", info.Stride.X, info.Stride.Y)
	}
	h := in[1] + info.Padding.Top + info.Padding.Bottom
	wi := in[2] + info.Padding.Left + info.Padding.Right
	if h < w[0] || wi < w[1] {
		return types.TensorShape{}, errors.Errorf("kernel %dx%d larger than padded input %dx%d", w[0], w[1], h, wi)
	}
	return types.TensorShape{
		in[0],
		(h-w[0])/info.Stride.Y + 1,
		(wi-w[1])/info.Stride.X + 1,
		in[3] * w[3],
	}, nil
}

// TransposeConvolution returns the output shape of a transpose convolution
// with HWIO weights. The stride is the upscaling factor and the padding crops
// the output.
func TransposeConvolution(input, weights types.TensorInfo, info types.ConvolutionInfo) (types.TensorShape, error) {
	if weights.DataFormat != types.HWIO {
		return types.TensorShape{}, errors.Errorf("transpose convolution weights must be HWIO, got %s", weights.DataFormat)
	}
	in := input.Dimensions
	w := weights.Dimensions
	if w[2] != in[3] {
		return types.TensorShape{}, errors.Errorf("transpose convolution weights expect %d input channels, input has %d", w[2], in[3])
	}
	if info.Stride.X != info.Stride.Y {
		return types.TensorShape{}, errors.Errorf("transpose convolution stride must be square, got (%d, %d)", info.Stride.X, info.Stride.Y)
	}
	// The internal convolution pads the upscaled input by kernel-1 minus the
	// user padding, so the user padding may not exceed kernel-1.
	if info.Padding.Top > w[0]-1 || info.Padding.Bottom > w[0]-1 ||
		info.Padding.Left > w[1]-1 || info.Padding.Right > w[1]-1 {
		return types.TensorShape{}, errors.Errorf("transpose convolution padding %+v exceeds kernel size %dx%d minus one", info.Padding, w[0], w[1])
	}
	outH := (in[1]-1)*info.Stride.Y + w[0] - info.Padding.Top - info.Padding.Bottom
	outW := (in[2]-1)*info.Stride.X + w[1] - info.Padding.Left - info.Padding.Right
	return types.TensorShape{in[0], outH, outW, w[3]}, nil
}

// Pooling returns the output shape of a pooling operation.
func Pooling(input types.TensorInfo, info types.PoolingInfo) (types.TensorShape, error) {
	if info.StrideX == 0 || info.StrideY == 0 {
		return types.TensorShape{}, errors.Errorf("pooling stride must be positive, got (%d, %d)", info.StrideX, info.StrideY)
	}
	in := input.Dimensions
	h := in[1] + info.Padding.Top + info.Padding.Bottom
	w := in[2] + info.Padding.Left + info.Padding.Right
	if h < info.SizeY || w < info.SizeX {
		return types.TensorShape{}, errors.Errorf("pooling window %dx%d larger than padded input %dx%d", info.SizeX, info.SizeY, h, w)
	}
	return types.TensorShape{
		in[0],
		(h-info.SizeY)/info.StrideY + 1,
		(w-info.SizeX)/info.StrideX + 1,
		in[3],
	}, nil
}

// FullyConnected returns the output shape {1, 1, 1, O} of a fully connected
// layer with HWIO weights {1, 1, C, O} over a {1, 1, 1, C} input.
func FullyConnected(input, weights types.TensorInfo) (types.TensorShape, error) {
	if weights.DataFormat != types.HWIO {
		return types.TensorShape{}, errors.Errorf("fully connected weights must be HWIO, got %s", weights.DataFormat)
	}
	in := input.Dimensions
	w := weights.Dimensions
	if in[1] != 1 || in[2] != 1 {
		return types.TensorShape{}, errors.Errorf("fully connected input must be {1, 1, 1, C}, got %s", in)
	}
	if w[0] != 1 || w[1] != 1 {
		return types.TensorShape{}, errors.Errorf("fully connected weights must be {1, 1, C, O}, got %s", w)
	}
	if w[2] != in[3] {
		return types.TensorShape{}, errors.Errorf("fully connected weights expect %d input channels, input has %d", w[2], in[3])
	}
	return types.TensorShape{1, 1, 1, w[3]}, nil
}

// Concatenation returns the output shape of concatenating the inputs along the
// axis. All other axes must agree.
func Concatenation(inputs []types.TensorInfo, axis uint32) (types.TensorShape, error) {
	if len(inputs) == 0 {
		return types.TensorShape{}, errors.New("concatenation requires at least one input")
	}
	if axis > 3 {
		return types.TensorShape{}, errors.Errorf("concatenation axis must be in [0, 3], got %d", axis)
	}
	out := inputs[0].Dimensions
	for i, input := range inputs[1:] {
		dims := input.Dimensions
		for a := uint32(0); a < 4; a++ {
			if a == axis {
				continue
			}
			if dims[a] != out[a] {
				return types.TensorShape{}, errors.Errorf(
					"concatenation input #%d has %s, which disagrees with %s outside axis %d", i+1, dims, out, axis)
			}
		}
		out[axis] += dims[axis]
	}
	return out, nil
}

// Split returns the shapes of the outputs of splitting input along the axis
// into the given sizes. The sizes must tile the input exactly.
func Split(input types.TensorInfo, info types.SplitInfo) ([]types.TensorShape, error) {
	if info.Axis > 3 {
		return nil, errors.Errorf("split axis must be in [0, 3], got %d", info.Axis)
	}
	if len(info.Sizes) == 0 {
		return nil, errors.New("split requires at least one output size")
	}
	var total uint32
	for _, size := range info.Sizes {
		total += size
	}
	if total != input.Dimensions[info.Axis] {
		return nil, errors.Errorf("split sizes sum to %d, but input axis %d has extent %d",
			total, info.Axis, input.Dimensions[info.Axis])
	}
	shapes := make([]types.TensorShape, len(info.Sizes))
	for i, size := range info.Sizes {
		shape := input.Dimensions
		shape[info.Axis] = size
		shapes[i] = shape
	}
	return shapes, nil
}

// Reshape validates that newDimensions preserves the element count of input.
func Reshape(input types.TensorInfo, newDimensions types.TensorShape) (types.TensorShape, error) {
	if input.Dimensions.NumElements() != newDimensions.NumElements() {
		return types.TensorShape{}, errors.Errorf("reshape from %s to %s changes the element count (%d to %d)",
			input.Dimensions, newDimensions, input.Dimensions.NumElements(), newDimensions.NumElements())
	}
	return newDimensions, nil
}

// DepthToSpace returns the output shape of a depth-to-space rearrangement with
// the given block size.
func DepthToSpace(input types.TensorInfo, blockSize uint32) (types.TensorShape, error) {
	if blockSize == 0 {
		return types.TensorShape{}, errors.New("depth-to-space block size must be positive")
	}
	in := input.Dimensions
	group := blockSize * blockSize
	if in[3]%group != 0 {
		return types.TensorShape{}, errors.Errorf(
			"depth-to-space input channels (%d) must be a multiple of block size squared (%d)", in[3], group)
	}
	return types.TensorShape{in[0], in[1] * blockSize, in[2] * blockSize, in[3] / group}, nil
}
