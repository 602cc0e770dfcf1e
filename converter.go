package npulower

import (
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"

	"github.com/gomlx/npulower/internal/utils"
	"github.com/gomlx/npulower/network"
	"github.com/gomlx/npulower/types"
	"github.com/pkg/errors"
)

// Converter lowers a source network into a Graph of hardware-executable
// primitives. It owns the graph and the operand->node binding for the
// duration of one Convert call; both are discarded if the conversion fails.
//
// The conversion is single-threaded: the network is walked in topological
// order, so every input operand of an operation is already bound to its
// lowered producer when the operation's rewrite runs.
type Converter struct {
	capabilities   Capabilities
	queries        SupportQueries
	estimationMode bool

	graph         *Graph
	operandToNode map[*network.Operand]Node
}

// NewConverter creates a Converter for the given hardware. In estimation mode
// some rejections are relaxed so that networks with estimate-only regions can
// still be lowered for performance estimation.
func NewConverter(capabilities Capabilities, queries SupportQueries, estimationMode bool) *Converter {
	return &Converter{
		capabilities:   capabilities,
		queries:        queries,
		estimationMode: estimationMode,
	}
}

// Convert lowers net with default (non-estimation) settings.
func Convert(net *network.Network, capabilities Capabilities, queries SupportQueries) (*Graph, error) {
	return NewConverter(capabilities, queries, false).Convert(net)
}

// Convert lowers net and returns the lowered graph. On error the partially
// built graph is discarded.
//
// The error is a *NotSupportedError when the support oracle rejected an
// operation or the network uses a construct the lowering rejects. Malformed
// operations that the oracle should have rejected (e.g. a 3x3 stride on a
// strided convolution) panic instead; they are programmer errors.
func (c *Converter) Convert(net *network.Network) (*Graph, error) {
	c.graph = NewGraph()
	c.operandToNode = make(map[*network.Operand]Node)
	for _, op := range net.Operations() {
		klog.V(2).Infof("lowering %T (id %d)", op, op.ID())
		if err := c.visit(op); err != nil {
			c.graph = nil
			c.operandToNode = nil
			return nil, err
		}
	}
	klog.V(1).Infof("lowered %d operations into %d nodes and %d edges",
		len(net.Operations()), len(c.graph.nodes), len(c.graph.edges))
	return c.graph, nil
}

// NodeForOperand returns the lowered node producing the value of operand after
// a successful Convert, or nil if the operand is unknown.
func (c *Converter) NodeForOperand(operand *network.Operand) Node {
	return c.operandToNode[operand]
}

func (c *Converter) visit(op network.Operation) error {
	switch op := op.(type) {
	case *network.Input:
		return c.visitInput(op)
	case *network.Output:
		return c.visitOutput(op)
	case *network.Constant:
		return c.visitConstant(op)
	case *network.Convolution:
		return c.visitConvolution(op)
	case *network.DepthwiseConvolution:
		return c.visitDepthwiseConvolution(op)
	case *network.TransposeConvolution:
		return c.visitTransposeConvolution(op)
	case *network.FullyConnected:
		return c.visitFullyConnected(op)
	case *network.Pooling:
		return c.visitPooling(op)
	case *network.Reshape:
		return c.visitReshape(op)
	case *network.Addition:
		return c.visitAddition(op)
	case *network.Concatenation:
		return c.visitConcatenation(op)
	case *network.Split:
		return c.visitSplit(op)
	case *network.Relu:
		return c.visitRelu(op)
	case *network.Sigmoid:
		return c.visitSigmoid(op)
	case *network.Softmax:
		return c.visitSoftmax(op)
	case *network.DepthToSpace:
		return c.visitDepthToSpace(op)
	case *network.EstimateOnly:
		return c.visitEstimateOnly(op)
	default:
		return errors.Errorf("unknown source operation type %T", op)
	}
}

// connectChain wires nodes head to tail, connects every input operand's
// lowered producer to the head, and binds the operation's output to the tail.
//
// Operations with more than one output (Split, EstimateOnly) handle their own
// binding and must not use this.
func (c *Converter) connectChain(op network.Operation, nodes []Node) {
	if len(op.Outputs()) > 1 {
		exceptions.Panicf("connectChain cannot bind an operation with %d outputs", len(op.Outputs()))
	}
	for i := 0; i+1 < len(nodes); i++ {
		c.graph.Connect(nodes[i], nodes[i+1])
	}
	for _, input := range op.Inputs() {
		c.graph.Connect(c.operandToNode[input], nodes[0])
	}
	if len(op.Outputs()) > 0 {
		c.operandToNode[op.Outputs()[0]] = nodes[len(nodes)-1]
	}
}

func (c *Converter) connect(op network.Operation, node Node) {
	c.connectChain(op, []Node{node})
}

// lowerToEstimateOnly emits the single placeholder node used whenever the
// support oracle answers EstimateOnly for a single-output operation.
func (c *Converter) lowerToEstimateOnly(op network.Operation) {
	outInfo := op.Outputs()[0].TensorInfo()
	n := c.graph.NewEstimateOnlyNode(outInfo.Dimensions, outInfo.Quantization,
		types.CompilerNHWCB, utils.SetWith(op.ID()))
	c.connect(op, n)
}

func (c *Converter) visitInput(op *network.Input) error {
	info := op.TensorInfo()
	var nodes []Node
	n := c.graph.NewInputNode(info, utils.SetWith(op.ID()))
	nodes = append(nodes, n)

	// Operations work best with NHWCB, so convert immediately if needed.
	if n.Format() != types.CompilerNHWCB {
		outInfo := op.Output(0).TensorInfo()
		nodes = append(nodes, c.graph.NewFormatConversionNode(
			outInfo.Dimensions, outInfo.Quantization, types.CompilerNHWCB, utils.SetWith(op.ID())))
	}
	c.connectChain(op, nodes)
	return nil
}

func (c *Converter) visitOutput(op *network.Output) error {
	info := op.TensorInfo()
	format := types.ExternalToCompilerFormat(info.DataFormat)
	// The provenance of the output (and of any conversion feeding it) is the
	// *producer* of the network output, so downstream stages can match
	// network outputs that have no unique node of their own.
	producerID := op.Input(0).Producer().ID()

	var nodes []Node
	if c.operandToNode[op.Input(0)].Format() != format {
		nodes = append(nodes, c.graph.NewFormatConversionNode(
			info.Dimensions, info.Quantization, format, utils.SetWith(producerID)))
	}
	nodes = append(nodes, c.graph.NewOutputNode(info.Dimensions, info.Quantization, format,
		utils.SetWith(producerID), op.Input(0).ProducerOutputIndex()))
	c.connectChain(op, nodes)
	return nil
}

func (c *Converter) visitConstant(op *network.Constant) error {
	c.connect(op, c.graph.NewConstantNode(op.TensorInfo(), op.Data(), utils.SetWith(op.ID())))
	return nil
}

func (c *Converter) visitRelu(op *network.Relu) error {
	outInfo := op.Output(0).TensorInfo()
	info := op.ReluInfo()
	c.connect(op, c.graph.NewMcePostProcessOperationNode(outInfo.Dimensions, outInfo.Quantization,
		info.LowerBound, info.UpperBound, types.CompilerNHWCB, utils.SetWith(op.ID())))
	return nil
}

func (c *Converter) visitSigmoid(op *network.Sigmoid) error {
	outInfo := op.Output(0).TensorInfo()
	c.connect(op, c.graph.NewFuseOnlyPleOperationNode(outInfo.Dimensions, outInfo.Quantization,
		types.PleSigmoid, types.CompilerNHWCB, types.IdentityShapeMultiplier, utils.SetWith(op.ID())))
	return nil
}

func (c *Converter) visitSoftmax(op *network.Softmax) error {
	if c.queries.IsSoftmaxSupported(op.Input(0).TensorInfo()) == types.EstimateOnly {
		c.lowerToEstimateOnly(op)
		return nil
	}
	return errors.New("softmax lowering is not implemented")
}

func (c *Converter) visitPooling(op *network.Pooling) error {
	info := op.PoolingInfo()
	inInfo := op.Input(0).TensorInfo()
	outInfo := op.Output(0).TensorInfo()

	level := c.queries.IsPoolingSupported(info, inInfo)
	if level == types.EstimateOnly {
		c.lowerToEstimateOnly(op)
		return nil
	}
	if level == types.Unsupported {
		return errors.WithStack(notSupportedf("pooling %dx%d stride (%d, %d) type %s is not supported",
			info.SizeX, info.SizeY, info.StrideX, info.StrideY, info.Type))
	}

	fuseOnly := func(op *network.Pooling, ple types.PleOperation) Node {
		shapeMultiplier := types.ShapeMultiplier{
			H:        types.Fraction{Numerator: 1, Denominator: info.StrideY},
			W:        types.Fraction{Numerator: 1, Denominator: info.StrideX},
			Channels: 1,
		}
		return c.graph.NewFuseOnlyPleOperationNode(outInfo.Dimensions, outInfo.Quantization,
			ple, types.CompilerNHWCB, shapeMultiplier, utils.SetWith(op.ID()))
	}
	standalone := func(op *network.Pooling, ple types.PleOperation) Node {
		return c.graph.NewStandalonePleOperationNode(outInfo.Dimensions, outInfo.Quantization,
			ple, types.CompilerNHWCB, utils.SetWith(op.ID()))
	}

	// A pooling window covering the whole (unpadded) XY plane is a mean.
	meanInfo := types.PoolingInfo{
		SizeX:   inInfo.Dimensions[2],
		SizeY:   inInfo.Dimensions[1],
		StrideX: info.StrideX,
		StrideY: info.StrideY,
		Padding: types.Padding{},
		Type:    types.PoolingAvg,
	}

	var n Node
	switch {
	case info == meanInfo:
		n = fuseOnly(op, types.PleMeanXY8x8)
	case info == (types.PoolingInfo{SizeX: 3, SizeY: 3, StrideX: 1, StrideY: 1, Padding: info.Padding, Type: types.PoolingAvg}):
		n = standalone(op, types.PleAvgPool3x3UDMA)
	case info == (types.PoolingInfo{SizeX: 2, SizeY: 2, StrideX: 2, StrideY: 2, Padding: info.Padding, Type: types.PoolingMax}):
		n = fuseOnly(op, types.PleMaxPool2x2)
	case info == (types.PoolingInfo{SizeX: 3, SizeY: 3, StrideX: 2, StrideY: 2, Padding: info.Padding, Type: types.PoolingMax}):
		n = fuseOnly(op, types.PleMaxPool3x3)
	default:
		return errors.WithStack(notSupportedf("pooling %dx%d stride (%d, %d) type %s has no hardware kernel",
			info.SizeX, info.SizeY, info.StrideX, info.StrideY, info.Type))
	}
	c.connect(op, n)
	return nil
}

func (c *Converter) visitReshape(op *network.Reshape) error {
	var nodes []Node
	// Convert to NHWC (if necessary), reinterpret to the new shape, then
	// convert back to NHWCB: the reshape itself is metadata-only.
	inInfo := op.Input(0).TensorInfo()
	if c.operandToNode[op.Input(0)].Format() != types.CompilerNHWC {
		nodes = append(nodes, c.graph.NewFormatConversionNode(
			inInfo.Dimensions, inInfo.Quantization, types.CompilerNHWC, utils.SetWith(op.ID())))
	}
	outInfo := op.Output(0).TensorInfo()
	nodes = append(nodes, c.graph.NewReinterpretNode(
		outInfo.Dimensions, outInfo.Quantization, types.CompilerNHWC, utils.SetWith(op.ID())))
	nodes = append(nodes, c.graph.NewFormatConversionNode(
		outInfo.Dimensions, outInfo.Quantization, types.CompilerNHWCB, utils.SetWith(op.ID())))
	c.connectChain(op, nodes)
	return nil
}

func (c *Converter) visitAddition(op *network.Addition) error {
	inInfo0 := op.Input(0).TensorInfo()
	inInfo1 := op.Input(1).TensorInfo()
	outInfo := op.Output(0).TensorInfo()

	level := c.queries.IsAdditionSupported(inInfo0, inInfo1, outInfo.Quantization)
	if level == types.EstimateOnly {
		c.lowerToEstimateOnly(op)
		return nil
	}
	if level == types.Unsupported {
		return errors.WithStack(notSupportedf("addition of %s and %s is not supported",
			inInfo0.Dimensions, inInfo1.Dimensions))
	}

	// The non-rescaling kernel is only usable when both inputs and the output
	// share quantization parameters.
	pleOp := types.PleAdditionRescale
	if inInfo0.Quantization == inInfo1.Quantization && inInfo0.Quantization == outInfo.Quantization {
		pleOp = types.PleAddition
	}
	c.connect(op, c.graph.NewStandalonePleOperationNode(outInfo.Dimensions, outInfo.Quantization,
		pleOp, types.CompilerNHWCB, utils.SetWith(op.ID())))
	return nil
}

func (c *Converter) visitEstimateOnly(op *network.EstimateOnly) error {
	// One placeholder per output, each connected from every input.
	for _, output := range op.Outputs() {
		outInfo := output.TensorInfo()
		n := c.graph.NewEstimateOnlyNode(outInfo.Dimensions, outInfo.Quantization,
			types.CompilerNHWCB, utils.SetWith(op.ID()))
		c.operandToNode[output] = n
		for _, input := range op.Inputs() {
			c.graph.Connect(c.operandToNode[input], n)
		}
	}
	return nil
}
