package npulower

import (
	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"

	"github.com/gomlx/npulower/internal/utils"
	"github.com/gomlx/npulower/network"
	"github.com/gomlx/npulower/types"
)

// shapeContainingLinearElements returns the smallest 4D shape whose NHWCB
// layout covers numElements logical elements contiguously, so the DMA can copy
// the 1D fully-connected input without a format conversion.
//
// Patches are 4x4. Up to one brick's worth of elements fits a single patch
// column with up to brickGroupChannels channels; between one and two bricks a
// column of two patches (the first brick is full, so all channels are
// needed); up to four bricks a full brick group; beyond that whole brick
// groups stack along depth, and only the last group may have fewer channels.
func shapeContainingLinearElements(brickGroupShape types.TensorShape, numElements uint32) types.TensorShape {
	brickGroupHeight := brickGroupShape[1]
	brickGroupWidth := brickGroupShape[2]
	brickGroupChannels := brickGroupShape[3]
	const patchHeight = 4
	const patchWidth = 4
	patchesPerBrickGroupHeight := brickGroupHeight / patchHeight
	patchesPerBrickGroupWidth := brickGroupWidth / patchWidth
	patchesPerBrickGroup := patchesPerBrickGroupHeight * patchesPerBrickGroupWidth * brickGroupChannels

	numPatches := utils.DivRoundUp(numElements, patchWidth*patchHeight)
	reinterpretedWidth := uint32(patchWidth)
	if numPatches > brickGroupChannels*patchesPerBrickGroupHeight {
		reinterpretedWidth = brickGroupWidth
	}
	reinterpretedHeight := uint32(patchHeight)
	if numPatches > brickGroupChannels {
		reinterpretedHeight = brickGroupHeight
	}
	numFullBrickGroups := numPatches / patchesPerBrickGroup
	reinterpretedChannels := brickGroupChannels*numFullBrickGroups +
		min(brickGroupChannels, numPatches%patchesPerBrickGroup)
	return types.TensorShape{1, reinterpretedHeight, reinterpretedWidth, reinterpretedChannels}
}

// padToSize extends data to newSize bytes, filling with padValue.
func padToSize(data []byte, newSize uint32, padValue byte) []byte {
	result := make([]byte, newSize)
	n := copy(result, data)
	for i := n; i < len(result); i++ {
		result[i] = padValue
	}
	return result
}

func (c *Converter) visitFullyConnected(op *network.FullyConnected) error {
	var nodes []Node

	// The input must be NHWC...
	inInfo := op.Input(0).TensorInfo()
	if c.operandToNode[op.Input(0)].Format() != types.CompilerNHWC {
		nodes = append(nodes, c.graph.NewFormatConversionNode(
			inInfo.Dimensions, inInfo.Quantization, types.CompilerNHWC, utils.SetWith(op.ID())))
	}

	// ...but is reinterpreted as NHWCB so it is copied into SRAM without a
	// conversion.
	reinterpretedShape := shapeContainingLinearElements(c.capabilities.BrickGroupShape(), inInfo.Dimensions[3])
	nodes = append(nodes, c.graph.NewReinterpretNode(
		reinterpretedShape, inInfo.Quantization, types.CompilerNHWCB, utils.SetWith(op.ID())))

	// The weight encoder requires the input-channel count to be a multiple of
	// 1024; pad with the weights' zero point here rather than in the encoder.
	weightsInfo := op.Weights().TensorInfo()
	weightsInfo.Dimensions[2] = utils.RoundUpToNearestMultiple(weightsInfo.Dimensions[2], 1024)
	paddedWeightsData := padToSize(op.Weights().Data(), weightsInfo.TotalSizeBytes(),
		byte(weightsInfo.Quantization.ZeroPoint))
	klog.V(3).Infof("padded fully connected weights for op %d to %s",
		op.ID(), humanize.IBytes(uint64(len(paddedWeightsData))))

	outInfo := op.Output(0).TensorInfo()
	nodes = append(nodes, c.graph.NewMceOperationNode(
		inInfo.Dimensions, outInfo.Dimensions, outInfo.Quantization,
		weightsInfo, paddedWeightsData,
		op.Bias().TensorInfo(), op.Bias().DataAsInt32(),
		types.Stride{X: 1, Y: 1}, 1, 0, 0,
		types.MceFullyConnected, types.CompilerNHWCB, utils.SetWith(op.ID())))
	c.connectChain(op, nodes)
	return nil
}
