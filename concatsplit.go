package npulower

import (
	"github.com/gomlx/npulower/internal/utils"
	"github.com/gomlx/npulower/network"
	"github.com/gomlx/npulower/types"
	"github.com/pkg/errors"
)

// splice records an edge and the node to insert on it. Splices are collected
// first and applied afterwards so that iterating a node's input edges is not
// disturbed by the insertions.
type splice struct {
	edge   *Edge
	middle Node
}

func (c *Converter) visitConcatenation(op *network.Concatenation) error {
	inputs := op.Inputs()
	info := op.ConcatenationInfo()
	axis := info.Axis

	inputInfos := make([]types.TensorInfo, len(inputs))
	for i, input := range inputs {
		inputInfos[i] = input.TensorInfo()
	}
	level := c.queries.IsConcatenationSupported(inputInfos, info)

	// Shared inputs to a concatenation are not representable: the extraction
	// windows would alias. Estimation does not care, so only reject outside
	// estimation mode.
	for _, input := range inputs {
		if len(input.Consumers()) > 1 && !c.estimationMode {
			return errors.WithStack(notSupportedf("inputs to concatenation cannot be connected to multiple operations"))
		}
	}

	if level == types.EstimateOnly {
		c.lowerToEstimateOnly(op)
		return nil
	}
	if level == types.Unsupported {
		return errors.WithStack(notSupportedf("concatenation of %d inputs on axis %d is not supported",
			len(inputs), axis))
	}

	// NHWCB is only usable when every input tiles the brick group along the
	// concatenation axis, so the DMA can place each tensor in DRAM directly.
	format := types.CompilerNHWCB
	for _, inputInfo := range inputInfos {
		if inputInfo.Dimensions[axis]%c.capabilities.BrickGroupShape()[axis] != 0 {
			format = types.CompilerNHWC
			break
		}
	}

	outInfo := op.Output(0).TensorInfo()
	n := c.graph.NewConcatNode(outInfo.Dimensions, info.OutputQuantization, format, axis,
		utils.SetWith(op.ID()))
	c.connect(op, n)

	// Splice format conversions onto inputs not already in the chosen format.
	var conversions []splice
	for i := range inputs {
		if n.InputFormat(i) != format {
			reformat := c.graph.NewFormatConversionNode(
				inputInfos[i].Dimensions, inputInfos[i].Quantization, format, utils.SetWith(op.ID()))
			conversions = append(conversions, splice{n.Input(i), reformat})
		}
	}
	for _, s := range conversions {
		c.graph.SplitEdge(s.edge, s.middle)
	}

	// The concat node assumes identical quantization across inputs and
	// output; splice requantize nodes onto inputs that differ.
	outputQuant := outInfo.Quantization
	var requantizes []splice
	for i := range inputs {
		if inputQuant := n.InputQuantization(i); inputQuant != outputQuant {
			requant := c.graph.NewRequantizeNode(
				inputInfos[i].Dimensions, inputQuant, outputQuant, format, utils.SetWith(op.ID()))
			requantizes = append(requantizes, splice{n.Input(i), requant})
		}
	}
	for _, s := range requantizes {
		c.graph.SplitEdge(s.edge, s.middle)
	}
	return nil
}

func (c *Converter) visitSplit(op *network.Split) error {
	input := op.Input(0)
	inInfo := input.TensorInfo()
	info := op.SplitInfo()

	level := c.queries.IsSplitSupported(inInfo, info)
	if level == types.EstimateOnly {
		inputNode := c.operandToNode[input]
		for _, output := range op.Outputs() {
			outInfo := output.TensorInfo()
			n := c.graph.NewEstimateOnlyNode(outInfo.Dimensions, outInfo.Quantization,
				types.CompilerNHWCB, utils.SetWith(op.ID()))
			c.operandToNode[output] = n
			c.graph.Connect(inputNode, n)
		}
		return nil
	}
	if level == types.Unsupported {
		return errors.WithStack(notSupportedf("split into %d outputs on axis %d is not supported",
			len(info.Sizes), info.Axis))
	}

	// As for concatenation: NHWCB only if every output tiles the brick group
	// along the split axis, so the DMA can extract each tensor from DRAM.
	format := types.CompilerNHWCB
	for _, output := range op.Outputs() {
		if output.TensorInfo().Dimensions[info.Axis]%c.capabilities.BrickGroupShape()[info.Axis] != 0 {
			format = types.CompilerNHWC
			break
		}
	}

	inputNode := c.operandToNode[input]
	if inputNode.Format() != format {
		conversion := c.graph.NewFormatConversionNode(
			inInfo.Dimensions, inInfo.Quantization, format, utils.SetWith(op.ID()))
		c.graph.Connect(inputNode, conversion)
		inputNode = conversion
	}

	// One subtensor extraction per output, tiling the input along the axis.
	// Extraction never requantizes.
	extracts := make([]*ExtractSubtensorNode, len(info.Sizes))
	var supertensorOffset types.TensorShape
	for i, size := range info.Sizes {
		outputShape := inInfo.Dimensions
		outputShape[info.Axis] = size
		extracts[i] = c.graph.NewExtractSubtensorNode(supertensorOffset, outputShape,
			inInfo.Quantization, format, utils.SetWith(op.ID()))
		supertensorOffset[info.Axis] += size
	}

	for i, extract := range extracts {
		c.graph.Connect(inputNode, extract)
		c.operandToNode[op.Outputs()[i]] = extract
	}
	return nil
}
