package npulower

import (
	"github.com/x448/float16"

	"github.com/gomlx/npulower/internal/utils"
	"github.com/gomlx/npulower/types"
)

// InputNode is a network input buffer.
type InputNode struct {
	nodeBase
	info types.TensorInfo
}

func (n *InputNode) Kind() string { return "Input" }

// TensorInfo returns the declared info of the input tensor.
func (n *InputNode) TensorInfo() types.TensorInfo { return n.info }

// NewInputNode creates an InputNode whose format follows the input's declared
// external format.
func (g *Graph) NewInputNode(info types.TensorInfo, operationIDs utils.Set[uint32]) *InputNode {
	return addNode(g, &InputNode{
		nodeBase: newNodeBase(info.Dimensions, info.Quantization,
			types.ExternalToCompilerFormat(info.DataFormat), operationIDs),
		info: info,
	})
}

// OutputNode is a network output buffer. Its provenance carries the id of the
// operation producing the output, not the output operation itself, so
// downstream stages can identify which producer each network output belongs
// to.
type OutputNode struct {
	nodeBase
	producerOutputIndex int
}

func (n *OutputNode) Kind() string { return "Output" }

// ProducerOutputIndex returns which output of the producing source operation
// this network output carries.
func (n *OutputNode) ProducerOutputIndex() int { return n.producerOutputIndex }

// NewOutputNode creates an OutputNode.
func (g *Graph) NewOutputNode(shape types.TensorShape, quant types.QuantizationInfo,
	format types.CompilerDataFormat, operationIDs utils.Set[uint32], producerOutputIndex int) *OutputNode {
	return addNode(g, &OutputNode{
		nodeBase:            newNodeBase(shape, quant, format, operationIDs),
		producerOutputIndex: producerOutputIndex,
	})
}

// ConstantNode holds static tensor contents, e.g. weights awaiting encoding.
type ConstantNode struct {
	nodeBase
	info types.TensorInfo
	data []byte
}

func (n *ConstantNode) Kind() string { return "Constant" }

// TensorInfo returns the info of the constant tensor.
func (n *ConstantNode) TensorInfo() types.TensorInfo { return n.info }

// Data returns the constant's raw bytes.
func (n *ConstantNode) Data() []byte { return n.data }

// NewConstantNode creates a ConstantNode owning data.
func (g *Graph) NewConstantNode(info types.TensorInfo, data []byte, operationIDs utils.Set[uint32]) *ConstantNode {
	return addNode(g, &ConstantNode{
		nodeBase: newNodeBase(info.Dimensions, info.Quantization,
			types.ExternalToCompilerFormat(info.DataFormat), operationIDs),
		info: info,
		data: data,
	})
}

// FormatConversionNode converts its input to the node's format, moving data.
type FormatConversionNode struct {
	nodeBase
}

func (n *FormatConversionNode) Kind() string { return "FormatConversion" }

// NewFormatConversionNode creates a FormatConversionNode producing format.
func (g *Graph) NewFormatConversionNode(shape types.TensorShape, quant types.QuantizationInfo,
	format types.CompilerDataFormat, operationIDs utils.Set[uint32]) *FormatConversionNode {
	return addNode(g, &FormatConversionNode{newNodeBase(shape, quant, format, operationIDs)})
}

// ReinterpretNode changes the shape or format of its input without moving
// data: a metadata-only rewrite.
type ReinterpretNode struct {
	nodeBase
}

func (n *ReinterpretNode) Kind() string { return "Reinterpret" }

// NewReinterpretNode creates a ReinterpretNode.
func (g *Graph) NewReinterpretNode(shape types.TensorShape, quant types.QuantizationInfo,
	format types.CompilerDataFormat, operationIDs utils.Set[uint32]) *ReinterpretNode {
	return addNode(g, &ReinterpretNode{newNodeBase(shape, quant, format, operationIDs)})
}

// ExtractSubtensorNode reads a window of its input starting at
// SupertensorOffset. Extraction never requantizes.
type ExtractSubtensorNode struct {
	nodeBase
	supertensorOffset types.TensorShape
}

func (n *ExtractSubtensorNode) Kind() string { return "ExtractSubtensor" }

// SupertensorOffset returns the NHWC offset of the window within the input.
func (n *ExtractSubtensorNode) SupertensorOffset() types.TensorShape { return n.supertensorOffset }

// NewExtractSubtensorNode creates an ExtractSubtensorNode.
func (g *Graph) NewExtractSubtensorNode(supertensorOffset, shape types.TensorShape,
	quant types.QuantizationInfo, format types.CompilerDataFormat,
	operationIDs utils.Set[uint32]) *ExtractSubtensorNode {
	return addNode(g, &ExtractSubtensorNode{
		nodeBase:          newNodeBase(shape, quant, format, operationIDs),
		supertensorOffset: supertensorOffset,
	})
}

// ConcatNode writes each of its inputs into consecutive windows of its output
// along Axis. It assumes identical quantization across its inputs and output;
// the lowering splices RequantizeNodes onto inputs that differ.
type ConcatNode struct {
	nodeBase
	axis uint32
}

func (n *ConcatNode) Kind() string { return "Concat" }

// Axis returns the concatenation axis.
func (n *ConcatNode) Axis() uint32 { return n.axis }

// NewConcatNode creates a ConcatNode. Inputs are connected afterwards.
func (g *Graph) NewConcatNode(shape types.TensorShape, quant types.QuantizationInfo,
	format types.CompilerDataFormat, axis uint32, operationIDs utils.Set[uint32]) *ConcatNode {
	return addNode(g, &ConcatNode{
		nodeBase: newNodeBase(shape, quant, format, operationIDs),
		axis:     axis,
	})
}

// RequantizeNode rescales its input to the node's quantization. The hardware
// applies the rescale as a half-precision multiplier, computed here at
// construction time.
type RequantizeNode struct {
	nodeBase
	rescale float16.Float16
}

func (n *RequantizeNode) Kind() string { return "Requantize" }

// Rescale returns the input-scale over output-scale multiplier as the
// half-precision value the hardware applies.
func (n *RequantizeNode) Rescale() float16.Float16 { return n.rescale }

// NewRequantizeNode creates a RequantizeNode converting from inputQuant to
// outputQuant.
func (g *Graph) NewRequantizeNode(shape types.TensorShape, inputQuant, outputQuant types.QuantizationInfo,
	format types.CompilerDataFormat, operationIDs utils.Set[uint32]) *RequantizeNode {
	return addNode(g, &RequantizeNode{
		nodeBase: newNodeBase(shape, outputQuant, format, operationIDs),
		rescale:  float16.Fromfloat32(inputQuant.Scale / outputQuant.Scale),
	})
}

// McePostProcessOperationNode clamps the preceding MCE operation's output to
// [LowerBound, UpperBound] in the quantized domain (relu).
type McePostProcessOperationNode struct {
	nodeBase
	lowerBound, upperBound int16
}

func (n *McePostProcessOperationNode) Kind() string { return "McePostProcess" }

// LowerBound returns the clamp lower bound.
func (n *McePostProcessOperationNode) LowerBound() int16 { return n.lowerBound }

// UpperBound returns the clamp upper bound.
func (n *McePostProcessOperationNode) UpperBound() int16 { return n.upperBound }

// NewMcePostProcessOperationNode creates a McePostProcessOperationNode.
func (g *Graph) NewMcePostProcessOperationNode(shape types.TensorShape, quant types.QuantizationInfo,
	lowerBound, upperBound int16, format types.CompilerDataFormat,
	operationIDs utils.Set[uint32]) *McePostProcessOperationNode {
	return addNode(g, &McePostProcessOperationNode{
		nodeBase:   newNodeBase(shape, quant, format, operationIDs),
		lowerBound: lowerBound,
		upperBound: upperBound,
	})
}

// MceOperationNode runs the multiply/convolve engine: convolution, depthwise
// convolution or fully connected. It owns its (possibly transformed) weight
// and bias buffers.
type MceOperationNode struct {
	nodeBase
	inputShape      types.TensorShape
	weightsInfo     types.TensorInfo
	weightsData     []byte
	biasInfo        types.TensorInfo
	biasData        []int32
	stride          types.Stride
	upscaleFactor   uint32
	padTop, padLeft uint32
	operation       types.MceOperation
}

func (n *MceOperationNode) Kind() string { return "MceOperation" }

// InputShape returns the shape the operation reads.
func (n *MceOperationNode) InputShape() types.TensorShape { return n.inputShape }

// WeightsInfo returns the info of the weights tensor.
func (n *MceOperationNode) WeightsInfo() types.TensorInfo { return n.weightsInfo }

// WeightsData returns the weight bytes, already transformed for the hardware.
func (n *MceOperationNode) WeightsData() []byte { return n.weightsData }

// BiasInfo returns the info of the bias tensor.
func (n *MceOperationNode) BiasInfo() types.TensorInfo { return n.biasInfo }

// BiasData returns the bias values.
func (n *MceOperationNode) BiasData() []int32 { return n.biasData }

// Stride returns the convolution stride.
func (n *MceOperationNode) Stride() types.Stride { return n.stride }

// UpscaleFactor returns the zero-insertion ratio applied to input rows and
// columns.
func (n *MceOperationNode) UpscaleFactor() uint32 { return n.upscaleFactor }

// PadTop returns the top input padding.
func (n *MceOperationNode) PadTop() uint32 { return n.padTop }

// PadLeft returns the left input padding.
func (n *MceOperationNode) PadLeft() uint32 { return n.padLeft }

// Operation returns the MCE operation mode.
func (n *MceOperationNode) Operation() types.MceOperation { return n.operation }

// NewMceOperationNode creates an MceOperationNode. The node takes ownership of
// weightsData and biasData.
func (g *Graph) NewMceOperationNode(inputShape, outputShape types.TensorShape,
	outputQuant types.QuantizationInfo, weightsInfo types.TensorInfo, weightsData []byte,
	biasInfo types.TensorInfo, biasData []int32, stride types.Stride, upscaleFactor uint32,
	padTop, padLeft uint32, operation types.MceOperation, format types.CompilerDataFormat,
	operationIDs utils.Set[uint32]) *MceOperationNode {
	return addNode(g, &MceOperationNode{
		nodeBase:      newNodeBase(outputShape, outputQuant, format, operationIDs),
		inputShape:    inputShape,
		weightsInfo:   weightsInfo,
		weightsData:   weightsData,
		biasInfo:      biasInfo,
		biasData:      biasData,
		stride:        stride,
		upscaleFactor: upscaleFactor,
		padTop:        padTop,
		padLeft:       padLeft,
		operation:     operation,
	})
}

// FuseOnlyPleOperationNode runs a PLE kernel fused after an MCE operation in
// the same pass.
type FuseOnlyPleOperationNode struct {
	nodeBase
	operation       types.PleOperation
	shapeMultiplier types.ShapeMultiplier
}

func (n *FuseOnlyPleOperationNode) Kind() string { return "FuseOnlyPle" }

// Operation returns the PLE kernel.
func (n *FuseOnlyPleOperationNode) Operation() types.PleOperation { return n.operation }

// ShapeMultiplier returns the input-to-output shape ratio of the kernel.
func (n *FuseOnlyPleOperationNode) ShapeMultiplier() types.ShapeMultiplier { return n.shapeMultiplier }

// NewFuseOnlyPleOperationNode creates a FuseOnlyPleOperationNode.
func (g *Graph) NewFuseOnlyPleOperationNode(shape types.TensorShape, quant types.QuantizationInfo,
	operation types.PleOperation, format types.CompilerDataFormat,
	shapeMultiplier types.ShapeMultiplier, operationIDs utils.Set[uint32]) *FuseOnlyPleOperationNode {
	return addNode(g, &FuseOnlyPleOperationNode{
		nodeBase:        newNodeBase(shape, quant, format, operationIDs),
		operation:       operation,
		shapeMultiplier: shapeMultiplier,
	})
}

// StandalonePleOperationNode runs a PLE kernel that consumes DRAM input
// directly, without a preceding MCE operation.
type StandalonePleOperationNode struct {
	nodeBase
	operation types.PleOperation
}

func (n *StandalonePleOperationNode) Kind() string { return "StandalonePle" }

// Operation returns the PLE kernel.
func (n *StandalonePleOperationNode) Operation() types.PleOperation { return n.operation }

// NewStandalonePleOperationNode creates a StandalonePleOperationNode.
func (g *Graph) NewStandalonePleOperationNode(shape types.TensorShape, quant types.QuantizationInfo,
	operation types.PleOperation, format types.CompilerDataFormat,
	operationIDs utils.Set[uint32]) *StandalonePleOperationNode {
	return addNode(g, &StandalonePleOperationNode{
		nodeBase:  newNodeBase(shape, quant, format, operationIDs),
		operation: operation,
	})
}

// EstimateOnlyNode is a placeholder preserving only output shape,
// quantization and format; downstream can estimate performance around it but
// not execute it.
type EstimateOnlyNode struct {
	nodeBase
}

func (n *EstimateOnlyNode) Kind() string { return "EstimateOnly" }

// NewEstimateOnlyNode creates an EstimateOnlyNode.
func (g *Graph) NewEstimateOnlyNode(shape types.TensorShape, quant types.QuantizationInfo,
	format types.CompilerDataFormat, operationIDs utils.Set[uint32]) *EstimateOnlyNode {
	return addNode(g, &EstimateOnlyNode{newNodeBase(shape, quant, format, operationIDs)})
}
