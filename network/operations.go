package network

import (
	"encoding/binary"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/npulower/shapeinference"
	"github.com/gomlx/npulower/types"
	"github.com/pkg/errors"
)

// Input is a network entry point.
type Input struct {
	operationBase
	info types.TensorInfo
}

// TensorInfo returns the declared info of the input tensor.
func (op *Input) TensorInfo() types.TensorInfo { return op.info }

// AddInput adds a network input with the given info. The external format must
// be an activation format (NHWC or NHWCB).
func (n *Network) AddInput(info types.TensorInfo) (*Input, error) {
	if info.DataFormat != types.NHWC && info.DataFormat != types.NHWCB {
		return nil, errors.Errorf("network input format must be NHWC or NHWCB, got %s", info.DataFormat)
	}
	op := &Input{info: info}
	n.register(op, &op.operationBase, nil, []types.TensorInfo{info})
	return op, nil
}

// Output marks an operand as a network output, with the external format it
// must be produced in.
type Output struct {
	operationBase
	info types.TensorInfo
}

// TensorInfo returns the info of the output tensor, with DataFormat set to the
// requested external format.
func (op *Output) TensorInfo() types.TensorInfo { return op.info }

// AddOutput declares producer to be a network output in the given external
// format.
func (n *Network) AddOutput(producer *Operand, format types.DataFormat) (*Output, error) {
	if format != types.NHWC && format != types.NHWCB {
		return nil, errors.Errorf("network output format must be NHWC or NHWCB, got %s", format)
	}
	info := producer.TensorInfo()
	info.DataFormat = format
	op := &Output{info: info}
	n.register(op, &op.operationBase, []*Operand{producer}, nil)
	return op, nil
}

// Constant is a tensor with static contents, e.g. weights or bias.
type Constant struct {
	operationBase
	info types.TensorInfo
	data []byte
}

// TensorInfo returns the info of the constant tensor.
func (op *Constant) TensorInfo() types.TensorInfo { return op.info }

// Data returns the raw bytes of the constant.
func (op *Constant) Data() []byte { return op.data }

// DataAsInt32 decodes the constant's bytes as little-endian int32 values.
func (op *Constant) DataAsInt32() []int32 {
	values := make([]int32, len(op.data)/4)
	for i := range values {
		values[i] = int32(binary.LittleEndian.Uint32(op.data[4*i:]))
	}
	return values
}

// AddConstant adds a constant tensor with the given raw contents.
func (n *Network) AddConstant(info types.TensorInfo, data []byte) (*Constant, error) {
	if uint32(len(data)) != info.TotalSizeBytes() {
		return nil, errors.Errorf("constant data is %d bytes, info %s requires %d",
			len(data), info.Dimensions, info.TotalSizeBytes())
	}
	op := &Constant{info: info, data: data}
	n.register(op, &op.operationBase, nil, []types.TensorInfo{info})
	return op, nil
}

func validateBias(bias *Constant, outputChannels uint32) error {
	info := bias.TensorInfo()
	if info.DataType != dtypes.S32 {
		return errors.Errorf("bias must be int32, got %s", info.DataType)
	}
	want := types.TensorShape{1, 1, 1, outputChannels}
	if info.Dimensions != want {
		return errors.Errorf("bias dimensions must be %s, got %s", want, info.Dimensions)
	}
	return nil
}

// Convolution is a 2D convolution with HWIO weights.
type Convolution struct {
	operationBase
	bias, weights *Constant
	info          types.ConvolutionInfo
}

func (op *Convolution) Bias() *Constant { return op.bias }
func (op *Convolution) Weights() *Constant { return op.weights }
func (op *Convolution) ConvolutionInfo() types.ConvolutionInfo { return op.info }

// AddConvolution adds a convolution of input with the given weights and bias
// constants.
func (n *Network) AddConvolution(input *Operand, bias, weights *Constant, info types.ConvolutionInfo) (*Convolution, error) {
	outShape, err := shapeinference.Convolution(input.TensorInfo(), weights.TensorInfo(), info)
	if err != nil {
		return nil, errors.WithMessage(err, "AddConvolution")
	}
	if err := validateBias(bias, outShape[3]); err != nil {
		return nil, errors.WithMessage(err, "AddConvolution")
	}
	outInfo := types.TensorInfo{
		Dimensions:   outShape,
		DataType:     input.TensorInfo().DataType,
		DataFormat:   input.TensorInfo().DataFormat,
		Quantization: info.OutputQuantization,
	}
	op := &Convolution{bias: bias, weights: weights, info: info}
	n.register(op, &op.operationBase, []*Operand{input}, []types.TensorInfo{outInfo})
	return op, nil
}

// DepthwiseConvolution is a 2D depthwise convolution with HWIM weights.
type DepthwiseConvolution struct {
	operationBase
	bias, weights *Constant
	info          types.ConvolutionInfo
}

func (op *DepthwiseConvolution) Bias() *Constant { return op.bias }
func (op *DepthwiseConvolution) Weights() *Constant { return op.weights }
func (op *DepthwiseConvolution) ConvolutionInfo() types.ConvolutionInfo { return op.info }

// AddDepthwiseConvolution adds a depthwise convolution of input with the given
// weights and bias constants.
func (n *Network) AddDepthwiseConvolution(input *Operand, bias, weights *Constant, info types.ConvolutionInfo) (*DepthwiseConvolution, error) {
	outShape, err := shapeinference.DepthwiseConvolution(input.TensorInfo(), weights.TensorInfo(), info)
	if err != nil {
		return nil, errors.WithMessage(err, "AddDepthwiseConvolution")
	}
	if err := validateBias(bias, outShape[3]); err != nil {
		return nil, errors.WithMessage(err, "AddDepthwiseConvolution")
	}
	outInfo := types.TensorInfo{
		Dimensions:   outShape,
		DataType:     input.TensorInfo().DataType,
		DataFormat:   input.TensorInfo().DataFormat,
		Quantization: info.OutputQuantization,
	}
	op := &DepthwiseConvolution{bias: bias, weights: weights, info: info}
	n.register(op, &op.operationBase, []*Operand{input}, []types.TensorInfo{outInfo})
	return op, nil
}

// TransposeConvolution is a 2D transpose ("backwards"/upsampling) convolution
// with HWIO weights. The stride is the upscaling factor.
type TransposeConvolution struct {
	operationBase
	bias, weights *Constant
	info          types.ConvolutionInfo
}

func (op *TransposeConvolution) Bias() *Constant { return op.bias }
func (op *TransposeConvolution) Weights() *Constant { return op.weights }
func (op *TransposeConvolution) ConvolutionInfo() types.ConvolutionInfo { return op.info }

// AddTransposeConvolution adds a transpose convolution of input with the given
// weights and bias constants.
func (n *Network) AddTransposeConvolution(input *Operand, bias, weights *Constant, info types.ConvolutionInfo) (*TransposeConvolution, error) {
	outShape, err := shapeinference.TransposeConvolution(input.TensorInfo(), weights.TensorInfo(), info)
	if err != nil {
		return nil, errors.WithMessage(err, "AddTransposeConvolution")
	}
	if err := validateBias(bias, outShape[3]); err != nil {
		return nil, errors.WithMessage(err, "AddTransposeConvolution")
	}
	outInfo := types.TensorInfo{
		Dimensions:   outShape,
		DataType:     input.TensorInfo().DataType,
		DataFormat:   input.TensorInfo().DataFormat,
		Quantization: info.OutputQuantization,
	}
	op := &TransposeConvolution{bias: bias, weights: weights, info: info}
	n.register(op, &op.operationBase, []*Operand{input}, []types.TensorInfo{outInfo})
	return op, nil
}

// FullyConnected is a fully connected layer over a {1, 1, 1, C} input.
type FullyConnected struct {
	operationBase
	bias, weights *Constant
	info          types.FullyConnectedInfo
}

func (op *FullyConnected) Bias() *Constant { return op.bias }
func (op *FullyConnected) Weights() *Constant { return op.weights }
func (op *FullyConnected) FullyConnectedInfo() types.FullyConnectedInfo { return op.info }

// AddFullyConnected adds a fully connected layer of input with the given
// weights and bias constants.
func (n *Network) AddFullyConnected(input *Operand, bias, weights *Constant, info types.FullyConnectedInfo) (*FullyConnected, error) {
	outShape, err := shapeinference.FullyConnected(input.TensorInfo(), weights.TensorInfo())
	if err != nil {
		return nil, errors.WithMessage(err, "AddFullyConnected")
	}
	if err := validateBias(bias, outShape[3]); err != nil {
		return nil, errors.WithMessage(err, "AddFullyConnected")
	}
	outInfo := types.TensorInfo{
		Dimensions:   outShape,
		DataType:     input.TensorInfo().DataType,
		DataFormat:   input.TensorInfo().DataFormat,
		Quantization: info.OutputQuantization,
	}
	op := &FullyConnected{bias: bias, weights: weights, info: info}
	n.register(op, &op.operationBase, []*Operand{input}, []types.TensorInfo{outInfo})
	return op, nil
}

// Pooling is a max or average pooling operation.
type Pooling struct {
	operationBase
	info types.PoolingInfo
}

func (op *Pooling) PoolingInfo() types.PoolingInfo { return op.info }

// AddPooling adds a pooling of input. The output keeps the input's
// quantization.
func (n *Network) AddPooling(input *Operand, info types.PoolingInfo) (*Pooling, error) {
	outShape, err := shapeinference.Pooling(input.TensorInfo(), info)
	if err != nil {
		return nil, errors.WithMessage(err, "AddPooling")
	}
	outInfo := input.TensorInfo()
	outInfo.Dimensions = outShape
	op := &Pooling{info: info}
	n.register(op, &op.operationBase, []*Operand{input}, []types.TensorInfo{outInfo})
	return op, nil
}

// Reshape changes the dimensions of a tensor without changing its contents.
type Reshape struct {
	operationBase
	newDimensions types.TensorShape
}

func (op *Reshape) NewDimensions() types.TensorShape { return op.newDimensions }

// AddReshape adds a reshape of input to newDimensions, which must preserve the
// element count.
func (n *Network) AddReshape(input *Operand, newDimensions types.TensorShape) (*Reshape, error) {
	outShape, err := shapeinference.Reshape(input.TensorInfo(), newDimensions)
	if err != nil {
		return nil, errors.WithMessage(err, "AddReshape")
	}
	outInfo := input.TensorInfo()
	outInfo.Dimensions = outShape
	op := &Reshape{newDimensions: newDimensions}
	n.register(op, &op.operationBase, []*Operand{input}, []types.TensorInfo{outInfo})
	return op, nil
}

// Addition is an element-wise addition of two tensors of the same shape.
type Addition struct {
	operationBase
	outputQuantization types.QuantizationInfo
}

func (op *Addition) OutputQuantization() types.QuantizationInfo { return op.outputQuantization }

// AddAddition adds an element-wise addition of input0 and input1.
func (n *Network) AddAddition(input0, input1 *Operand, outputQuantization types.QuantizationInfo) (*Addition, error) {
	if input0.TensorInfo().Dimensions != input1.TensorInfo().Dimensions {
		return nil, errors.Errorf("addition inputs must have the same dimensions, got %s and %s",
			input0.TensorInfo().Dimensions, input1.TensorInfo().Dimensions)
	}
	outInfo := input0.TensorInfo()
	outInfo.Quantization = outputQuantization
	op := &Addition{outputQuantization: outputQuantization}
	n.register(op, &op.operationBase, []*Operand{input0, input1}, []types.TensorInfo{outInfo})
	return op, nil
}

// Concatenation joins tensors along one axis.
type Concatenation struct {
	operationBase
	info types.ConcatenationInfo
}

func (op *Concatenation) ConcatenationInfo() types.ConcatenationInfo { return op.info }

// AddConcatenation adds a concatenation of inputs along info.Axis.
func (n *Network) AddConcatenation(inputs []*Operand, info types.ConcatenationInfo) (*Concatenation, error) {
	inputInfos := make([]types.TensorInfo, len(inputs))
	for i, input := range inputs {
		inputInfos[i] = input.TensorInfo()
	}
	outShape, err := shapeinference.Concatenation(inputInfos, info.Axis)
	if err != nil {
		return nil, errors.WithMessage(err, "AddConcatenation")
	}
	outInfo := inputInfos[0]
	outInfo.Dimensions = outShape
	outInfo.Quantization = info.OutputQuantization
	op := &Concatenation{info: info}
	n.register(op, &op.operationBase, inputs, []types.TensorInfo{outInfo})
	return op, nil
}

// Split partitions a tensor along one axis into consecutive pieces.
type Split struct {
	operationBase
	info types.SplitInfo
}

func (op *Split) SplitInfo() types.SplitInfo { return op.info }

// AddSplit adds a split of input into len(info.Sizes) outputs.
func (n *Network) AddSplit(input *Operand, info types.SplitInfo) (*Split, error) {
	outShapes, err := shapeinference.Split(input.TensorInfo(), info)
	if err != nil {
		return nil, errors.WithMessage(err, "AddSplit")
	}
	outInfos := make([]types.TensorInfo, len(outShapes))
	for i, shape := range outShapes {
		outInfos[i] = input.TensorInfo()
		outInfos[i].Dimensions = shape
	}
	op := &Split{info: info}
	n.register(op, &op.operationBase, []*Operand{input}, outInfos)
	return op, nil
}

// Relu clamps a tensor to [LowerBound, UpperBound] in the quantized domain.
type Relu struct {
	operationBase
	info types.ReluInfo
}

func (op *Relu) ReluInfo() types.ReluInfo { return op.info }

// AddRelu adds a relu of input. The output keeps the input's quantization.
func (n *Network) AddRelu(input *Operand, info types.ReluInfo) (*Relu, error) {
	if info.LowerBound > info.UpperBound {
		return nil, errors.Errorf("relu lower bound %d exceeds upper bound %d", info.LowerBound, info.UpperBound)
	}
	op := &Relu{info: info}
	n.register(op, &op.operationBase, []*Operand{input}, []types.TensorInfo{input.TensorInfo()})
	return op, nil
}

// Sigmoid is an element-wise logistic function.
type Sigmoid struct {
	operationBase
}

// AddSigmoid adds a sigmoid of input. The output range is [0, 1), so the
// output quantization is fixed at zero point 0, scale 1/256.
func (n *Network) AddSigmoid(input *Operand) (*Sigmoid, error) {
	outInfo := input.TensorInfo()
	outInfo.Quantization = types.QuantizationInfo{ZeroPoint: 0, Scale: 1.0 / 256}
	op := &Sigmoid{}
	n.register(op, &op.operationBase, []*Operand{input}, []types.TensorInfo{outInfo})
	return op, nil
}

// Softmax is a softmax over the channel axis.
type Softmax struct {
	operationBase
}

// AddSoftmax adds a softmax of input. Like sigmoid, the output quantization is
// fixed at zero point 0, scale 1/256.
func (n *Network) AddSoftmax(input *Operand) (*Softmax, error) {
	outInfo := input.TensorInfo()
	outInfo.Quantization = types.QuantizationInfo{ZeroPoint: 0, Scale: 1.0 / 256}
	op := &Softmax{}
	n.register(op, &op.operationBase, []*Operand{input}, []types.TensorInfo{outInfo})
	return op, nil
}

// DepthToSpace rearranges blocks of channels into spatial positions.
type DepthToSpace struct {
	operationBase
	info types.DepthToSpaceInfo
}

func (op *DepthToSpace) DepthToSpaceInfo() types.DepthToSpaceInfo { return op.info }

// AddDepthToSpace adds a depth-to-space rearrangement of input.
func (n *Network) AddDepthToSpace(input *Operand, info types.DepthToSpaceInfo) (*DepthToSpace, error) {
	outShape, err := shapeinference.DepthToSpace(input.TensorInfo(), info.BlockSize)
	if err != nil {
		return nil, errors.WithMessage(err, "AddDepthToSpace")
	}
	outInfo := input.TensorInfo()
	outInfo.Dimensions = outShape
	op := &DepthToSpace{info: info}
	n.register(op, &op.operationBase, []*Operand{input}, []types.TensorInfo{outInfo})
	return op, nil
}

// EstimateOnly is an operation the hardware cannot execute but whose shapes
// are known, so downstream can still estimate performance around it.
type EstimateOnly struct {
	operationBase
	info types.EstimateOnlyInfo
}

func (op *EstimateOnly) EstimateOnlyInfo() types.EstimateOnlyInfo { return op.info }

// AddEstimateOnly adds an estimate-only operation with the given output infos,
// consuming the given inputs.
func (n *Network) AddEstimateOnly(info types.EstimateOnlyInfo, inputs ...*Operand) (*EstimateOnly, error) {
	if len(info.OutputInfos) == 0 {
		return nil, errors.New("estimate-only operation requires at least one output info")
	}
	op := &EstimateOnly{info: info}
	n.register(op, &op.operationBase, inputs, info.OutputInfos)
	return op, nil
}
