package npulower

import (
	"bytes"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"k8s.io/klog/v2"

	"github.com/gomlx/npulower/internal/utils"
	"github.com/gomlx/npulower/network"
	"github.com/gomlx/npulower/types"
	"github.com/pkg/errors"
)

// rotateWeightsXY reflects HWIO/HWIM weights through their XY plane:
// flipped[KH-1-y][KW-1-x] = original[y][x]. The trailing two axes move as one
// contiguous block.
func rotateWeightsXY(weightsShape types.TensorShape, weightsData []byte) []byte {
	kh, kw := weightsShape[0], weightsShape[1]
	block := weightsShape[2] * weightsShape[3]
	flipped := make([]byte, len(weightsData))
	for y := uint32(0); y < kh; y++ {
		for x := uint32(0); x < kw; x++ {
			src := (y*kw + x) * block
			dst := ((kh-1-y)*kw + (kw - 1 - x)) * block
			copy(flipped[dst:dst+block], weightsData[src:src+block])
		}
	}
	return flipped
}

// createTransposeConv lowers a transpose convolution to an upscaling
// convolution over 180-degree-rotated weights.
//
// The user padding of a transpose convolution crops the *output*. For the
// internal convolution to reproduce the uncropped result, its input padding
// must be kernel_size-1; every pixel of user padding crops one output pixel
// and therefore removes one pixel of internal padding. Hence the internal
// padding is kernel_size - 1 - user_padding, which the support oracle
// guarantees to be non-negative.
//
// The hardware cannot upscale with kernels larger than 7, so those factor the
// upscaling into a separate identity (1x1) depthwise pass first. Its weights
// hold the value 2 at scale 0.5; the product must stay 1.0 so the pass is an
// identity.
func createTransposeConv(g *Graph, stride types.Stride,
	weightsInfo types.TensorInfo, weightsData []byte,
	biasInfo types.TensorInfo, biasData []int32,
	padding types.Padding, inputInfo, outputInfo types.TensorInfo,
	sourceOperationID uint32) []Node {
	if stride.X != stride.Y {
		exceptions.Panicf("transpose convolution stride must be square, got (%d, %d)", stride.X, stride.Y)
	}
	upscaleFactor := stride.X
	weightsShape := weightsInfo.Dimensions
	if padding.Top > weightsShape[0]-1 || padding.Left > weightsShape[1]-1 {
		exceptions.Panicf("transpose convolution padding (%d, %d) exceeds kernel %dx%d minus one",
			padding.Top, padding.Left, weightsShape[0], weightsShape[1])
	}
	topMcePadding := weightsShape[0] - 1 - padding.Top
	leftMcePadding := weightsShape[1] - 1 - padding.Left

	inputShape := inputInfo.Dimensions
	var nodes []Node

	if weightsShape[0] > 7 || weightsShape[1] > 7 {
		intermediateShape := types.TensorShape{
			inputShape[0],
			inputShape[1] * upscaleFactor,
			inputShape[2] * upscaleFactor,
			inputShape[3],
		}
		numIfm := inputShape[3]
		const weightScale = 0.5
		biasScale := weightScale * inputInfo.Quantization.Scale

		identityWeightsInfo := types.TensorInfo{
			Dimensions:   types.TensorShape{1, 1, numIfm, 1},
			DataType:     dtypes.U8,
			DataFormat:   types.HWIM,
			Quantization: types.QuantizationInfo{ZeroPoint: 0, Scale: weightScale},
		}
		identityBiasInfo := types.TensorInfo{
			Dimensions:   types.TensorShape{1, 1, 1, numIfm},
			DataType:     dtypes.S32,
			DataFormat:   types.NHWC,
			Quantization: types.QuantizationInfo{ZeroPoint: 0, Scale: biasScale},
		}
		identityWeights := bytes.Repeat([]byte{byte(1.0 / weightScale)}, int(numIfm))
		identityBias := make([]int32, numIfm)

		nodes = append(nodes, g.NewMceOperationNode(inputShape, intermediateShape,
			inputInfo.Quantization, identityWeightsInfo, identityWeights,
			identityBiasInfo, identityBias, types.Stride{X: 1, Y: 1}, upscaleFactor, 0, 0,
			types.MceDepthwiseConvolution, types.CompilerNHWCB, utils.SetWith(sourceOperationID)))

		upscaleFactor = 1
		inputShape = intermediateShape
	}

	flippedWeightsData := rotateWeightsXY(weightsShape, weightsData)
	klog.V(3).Infof("rotated %s of transpose convolution weights for op %d",
		humanize.IBytes(uint64(len(flippedWeightsData))), sourceOperationID)

	nodes = append(nodes, g.NewMceOperationNode(inputShape, outputInfo.Dimensions,
		outputInfo.Quantization, weightsInfo, flippedWeightsData, biasInfo, biasData,
		types.Stride{X: 1, Y: 1}, upscaleFactor, topMcePadding, leftMcePadding,
		types.MceConvolution, types.CompilerNHWCB, utils.SetWith(sourceOperationID)))
	return nodes
}

func (c *Converter) visitTransposeConvolution(op *network.TransposeConvolution) error {
	level := c.queries.IsTransposeConvolutionSupported(op.Bias().TensorInfo(), op.Weights().TensorInfo(),
		op.ConvolutionInfo(), op.Input(0).TensorInfo())
	if level == types.EstimateOnly {
		c.lowerToEstimateOnly(op)
		return nil
	}
	if level == types.Unsupported {
		return errors.WithStack(notSupportedf("transpose convolution with %s weights is not supported",
			op.Weights().TensorInfo().Dimensions))
	}

	info := op.ConvolutionInfo()
	nodes := createTransposeConv(c.graph, info.Stride,
		op.Weights().TensorInfo(), op.Weights().Data(),
		op.Bias().TensorInfo(), op.Bias().DataAsInt32(),
		info.Padding, op.Input(0).TensorInfo(), op.Output(0).TensorInfo(), op.ID())
	c.connectChain(op, nodes)
	return nil
}

// visitDepthToSpace lowers a block-size-2 depth-to-space as a stride-2
// transpose convolution whose 2x2 kernel holds one-hot selectors: the weight
// vector at each kernel position picks the input channel that lands on the
// corresponding output pixel. Input channels are grouped with all top-left
// elements first, then top-right, bottom-left, bottom-right.
func (c *Converter) visitDepthToSpace(op *network.DepthToSpace) error {
	blockSize := op.DepthToSpaceInfo().BlockSize
	if blockSize != 2 {
		exceptions.Panicf("depth-to-space requires block size 2, got %d", blockSize)
	}
	ifmChannelsPerOfm := blockSize * blockSize

	inInfo := op.Input(0).TensorInfo()
	outInfo := op.Output(0).TensorInfo()
	inChannels := inInfo.Dimensions[3]
	outChannels := outInfo.Dimensions[3]

	// A scale of 1.0 would make the overall multiplier >= 1, which the
	// hardware cannot encode, so the selector value compensates a 0.5 scale.
	const weightsScale = 0.5
	weightsInfo := types.TensorInfo{
		Dimensions:   types.TensorShape{blockSize, blockSize, inChannels, outChannels},
		DataType:     dtypes.U8,
		DataFormat:   types.HWIO,
		Quantization: types.QuantizationInfo{ZeroPoint: 0, Scale: weightsScale},
	}
	weightsData := make([]byte, weightsInfo.Dimensions.NumElements())
	for ofmIdx := uint32(0); ofmIdx < outChannels; ofmIdx++ {
		// The IFMs feeding one OFM start at the OFM's index and are separated
		// by the number of blocks.
		ifmBase := ofmIdx
		ifmStride := inChannels / ifmChannelsPerOfm
		for v := uint32(0); v < blockSize; v++ {
			for u := uint32(0); u < blockSize; u++ {
				ifmWithinBlock := v*blockSize + u
				ifmIdx := ifmBase + ifmWithinBlock*ifmStride
				offset := ((v*blockSize+u)*inChannels+ifmIdx)*outChannels + ofmIdx
				weightsData[offset] = byte(1.0 / weightsScale)
			}
		}
	}

	biasScale := weightsScale * inInfo.Quantization.Scale
	biasInfo := types.TensorInfo{
		Dimensions:   types.TensorShape{1, 1, 1, outChannels},
		DataType:     dtypes.S32,
		DataFormat:   types.NHWC,
		Quantization: types.QuantizationInfo{ZeroPoint: 0, Scale: biasScale},
	}
	biasData := make([]int32, outChannels)

	nodes := createTransposeConv(c.graph, types.Stride{X: blockSize, Y: blockSize},
		weightsInfo, weightsData, biasInfo, biasData, types.Padding{}, inInfo, outInfo, op.ID())
	c.connectChain(op, nodes)
	return nil
}
