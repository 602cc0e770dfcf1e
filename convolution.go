package npulower

import (
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"

	"github.com/gomlx/npulower/internal/utils"
	"github.com/gomlx/npulower/network"
	"github.com/gomlx/npulower/types"
	"github.com/pkg/errors"
)

// strideInterleave emits the PLE head that reformats a stride-2 convolution
// input into stride-1 sub-maps. Only a 2x2 stride is representable; the
// support oracle must have rejected anything else.
func (c *Converter) strideInterleave(opID uint32, input *network.Operand, stride types.Stride) *FuseOnlyPleOperationNode {
	if stride.X != 2 || stride.Y != 2 {
		exceptions.Panicf("strided convolution requires a 2x2 stride, got (%d, %d)", stride.X, stride.Y)
	}
	inInfo := input.TensorInfo()
	interleaved := types.TensorShape{
		inInfo.Dimensions[0],
		utils.DivRoundUp(inInfo.Dimensions[1], stride.Y),
		utils.DivRoundUp(inInfo.Dimensions[2], stride.X),
		c.capabilities.NumSubmapChannels(inInfo.Dimensions[3], stride.X, stride.Y),
	}
	shapeMultiplier := types.ShapeMultiplier{
		H:        types.Fraction{Numerator: 1, Denominator: stride.Y},
		W:        types.Fraction{Numerator: 1, Denominator: stride.X},
		Channels: stride.X * stride.Y,
	}
	return c.graph.NewFuseOnlyPleOperationNode(interleaved, inInfo.Quantization,
		types.PleInterleave2x2, types.CompilerNHWCB, shapeMultiplier, utils.SetWith(opID))
}

func (c *Converter) visitConvolution(op *network.Convolution) error {
	level := c.queries.IsConvolutionSupported(op.Bias().TensorInfo(), op.Weights().TensorInfo(),
		op.ConvolutionInfo(), op.Input(0).TensorInfo())
	if level == types.EstimateOnly {
		c.lowerToEstimateOnly(op)
		return nil
	}
	if level == types.Unsupported {
		return errors.WithStack(notSupportedf("convolution with %s weights is not supported",
			op.Weights().TensorInfo().Dimensions))
	}

	info := op.ConvolutionInfo()
	var nodes []Node
	if info.Stride.X > 1 || info.Stride.Y > 1 {
		nodes = append(nodes, c.strideInterleave(op.ID(), op.Input(0), info.Stride))
	}

	weightsData := slices.Clone(op.Weights().Data())
	klog.V(3).Infof("convolution id %d carries %s of weights", op.ID(), humanize.IBytes(uint64(len(weightsData))))
	nodes = append(nodes, c.graph.NewMceOperationNode(
		op.Input(0).TensorInfo().Dimensions,
		op.Output(0).TensorInfo().Dimensions,
		op.Output(0).TensorInfo().Quantization,
		op.Weights().TensorInfo(), weightsData,
		op.Bias().TensorInfo(), op.Bias().DataAsInt32(),
		info.Stride, 1, info.Padding.Top, info.Padding.Left,
		types.MceConvolution, types.CompilerNHWCB, utils.SetWith(op.ID())))
	c.connectChain(op, nodes)
	return nil
}

func (c *Converter) visitDepthwiseConvolution(op *network.DepthwiseConvolution) error {
	level := c.queries.IsDepthwiseConvolutionSupported(op.Bias().TensorInfo(), op.Weights().TensorInfo(),
		op.ConvolutionInfo(), op.Input(0).TensorInfo())
	if level == types.EstimateOnly {
		c.lowerToEstimateOnly(op)
		return nil
	}
	if level == types.Unsupported {
		return errors.WithStack(notSupportedf("depthwise convolution with %s weights is not supported",
			op.Weights().TensorInfo().Dimensions))
	}

	info := op.ConvolutionInfo()
	var nodes []Node
	if info.Stride.X > 1 || info.Stride.Y > 1 {
		nodes = append(nodes, c.strideInterleave(op.ID(), op.Input(0), info.Stride))
	}

	// A channel multiplier > 1 is only representable when there is a single
	// input channel, in which case the operation is just a regular
	// convolution of that channel.
	weightsInfo := op.Weights().TensorInfo()
	operation := types.MceDepthwiseConvolution
	if weightsInfo.Dimensions[3] > 1 {
		if weightsInfo.Dimensions[2] != 1 {
			exceptions.Panicf("depthwise convolution with channel multiplier %d requires a single input channel, got %d",
				weightsInfo.Dimensions[3], weightsInfo.Dimensions[2])
		}
		weightsInfo.DataFormat = types.HWIO
		operation = types.MceConvolution
	}

	// Winograd is never used for depthwise convolution.
	weightsData := slices.Clone(op.Weights().Data())
	nodes = append(nodes, c.graph.NewMceOperationNode(
		op.Input(0).TensorInfo().Dimensions,
		op.Output(0).TensorInfo().Dimensions,
		op.Output(0).TensorInfo().Quantization,
		weightsInfo, weightsData,
		op.Bias().TensorInfo(), op.Bias().DataAsInt32(),
		info.Stride, 1, info.Padding.Top, info.Padding.Left,
		operation, types.CompilerNHWCB, utils.SetWith(op.ID())))
	c.connectChain(op, nodes)
	return nil
}
