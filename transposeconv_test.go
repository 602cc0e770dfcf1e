package npulower

import (
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/npulower/caps"
	"github.com/gomlx/npulower/network"
	"github.com/gomlx/npulower/types"
)

func TestRotateWeightsXY(t *testing.T) {
	t.Run("2x2 single channel", func(t *testing.T) {
		shape := types.TensorShape{2, 2, 1, 1}
		data := []byte{1, 2, 3, 4}
		assert.Equal(t, []byte{4, 3, 2, 1}, rotateWeightsXY(shape, data))
	})

	t.Run("trailing axes move as a block", func(t *testing.T) {
		shape := types.TensorShape{2, 1, 2, 1}
		data := []byte{10, 11, 20, 21}
		assert.Equal(t, []byte{20, 21, 10, 11}, rotateWeightsXY(shape, data))
	})

	t.Run("rotating twice is the identity", func(t *testing.T) {
		shape := types.TensorShape{3, 3, 2, 2}
		data := make([]byte, shape.NumElements())
		for i := range data {
			data[i] = byte(i * 7)
		}
		assert.Equal(t, data, rotateWeightsXY(shape, rotateWeightsXY(shape, data)))
	})
}

func addTransposeConv(t *testing.T, net *network.Network, input *network.Operand,
	kernel types.TensorShape, padding types.Padding) *network.TransposeConvolution {
	t.Helper()
	weights := addWeights(t, net, kernel, types.HWIO)
	bias := addBias(t, net, kernel[3])
	return must.M1(net.AddTransposeConvolution(input, bias, weights, types.ConvolutionInfo{
		Padding:            padding,
		Stride:             types.Stride{X: 2, Y: 2},
		OutputQuantization: unitQuant,
	}))
}

func TestTransposeConvolutionStride2(t *testing.T) {
	net := network.New()
	input := must.M1(net.AddInput(activation(types.TensorShape{1, 4, 4, 8}, types.NHWCB)))
	// Cropping bottom/right by one gives the doubled output size.
	tconv := addTransposeConv(t, net, input.Output(0), types.TensorShape{3, 3, 8, 8},
		types.Padding{Bottom: 1, Right: 1})
	require.Equal(t, types.TensorShape{1, 8, 8, 8}, tconv.Output(0).TensorInfo().Dimensions)

	converter := NewConverter(caps.Default(), defaultQueries(), false)
	g, err := converter.Convert(net)
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	// A 3x3 kernel upscales in the convolution itself: single-node chain.
	mces := nodesOfType[*MceOperationNode](g)
	require.Len(t, mces, 1)
	mce := mces[0]
	assert.Equal(t, types.MceConvolution, mce.Operation())
	assert.Equal(t, types.Stride{X: 1, Y: 1}, mce.Stride())
	assert.Equal(t, uint32(2), mce.UpscaleFactor())
	assert.Equal(t, uint32(2), mce.PadTop())
	assert.Equal(t, uint32(2), mce.PadLeft())
	assert.Equal(t, types.TensorShape{1, 4, 4, 8}, mce.InputShape())
	assert.Equal(t, types.TensorShape{1, 8, 8, 8}, mce.Shape())

	// The weights are the 180-degree rotation of the user's weights.
	original := tconv.Weights().Data()
	assert.Equal(t, rotateWeightsXY(types.TensorShape{3, 3, 8, 8}, original), mce.WeightsData())
	assert.Same(t, Node(mce), converter.NodeForOperand(tconv.Output(0)))
}

func TestTransposeConvolutionKernel7StaysFused(t *testing.T) {
	net := network.New()
	input := must.M1(net.AddInput(activation(types.TensorShape{1, 4, 4, 8}, types.NHWCB)))
	addTransposeConv(t, net, input.Output(0), types.TensorShape{7, 7, 8, 8},
		types.Padding{Top: 3, Bottom: 3, Left: 3, Right: 3})

	g, err := Convert(net, caps.Default(), defaultQueries())
	require.NoError(t, err)

	mces := nodesOfType[*MceOperationNode](g)
	require.Len(t, mces, 1)
	assert.Equal(t, uint32(2), mces[0].UpscaleFactor())
	assert.Equal(t, uint32(3), mces[0].PadTop())
}

func TestTransposeConvolutionLargeKernelSplits(t *testing.T) {
	const inputScale = 0.25
	net := network.New()
	info := activation(types.TensorShape{1, 4, 4, 8}, types.NHWCB)
	info.Quantization = types.QuantizationInfo{ZeroPoint: 0, Scale: inputScale}
	input := must.M1(net.AddInput(info))
	tconv := addTransposeConv(t, net, input.Output(0), types.TensorShape{8, 8, 8, 8},
		types.Padding{Top: 3, Bottom: 4, Left: 3, Right: 4})
	require.Equal(t, types.TensorShape{1, 7, 7, 8}, tconv.Output(0).TensorInfo().Dimensions)

	g, err := Convert(net, caps.Default(), allSupported())
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	// Upscaling runs as its own identity depthwise pass, then the rotated
	// convolution runs without upscaling.
	mces := nodesOfType[*MceOperationNode](g)
	require.Len(t, mces, 2)

	identity := mces[0]
	assert.Equal(t, types.MceDepthwiseConvolution, identity.Operation())
	assert.Equal(t, uint32(2), identity.UpscaleFactor())
	assert.Equal(t, types.TensorShape{1, 8, 8, 8}, identity.Shape())
	assert.Equal(t, types.TensorShape{1, 1, 8, 1}, identity.WeightsInfo().Dimensions)
	assert.Equal(t, types.HWIM, identity.WeightsInfo().DataFormat)
	// Weight value 2 at scale 0.5: the product must stay 1.0.
	assert.Equal(t, float32(0.5), identity.WeightsInfo().Quantization.Scale)
	for _, w := range identity.WeightsData() {
		assert.Equal(t, byte(2), w)
	}
	assert.Equal(t, float32(0.5*inputScale), identity.BiasInfo().Quantization.Scale)
	for _, b := range identity.BiasData() {
		assert.Equal(t, int32(0), b)
	}

	conv := mces[1]
	assert.Equal(t, types.MceConvolution, conv.Operation())
	assert.Equal(t, uint32(1), conv.UpscaleFactor())
	assert.Equal(t, uint32(4), conv.PadTop())
	assert.Equal(t, uint32(4), conv.PadLeft())
	assert.Equal(t, types.TensorShape{1, 8, 8, 8}, conv.InputShape())
	assert.Equal(t, types.TensorShape{1, 7, 7, 8}, conv.Shape())

	// Chain order: identity feeds the convolution.
	require.Len(t, conv.Inputs(), 1)
	assert.Same(t, identity, conv.Input(0).Source().(*MceOperationNode))
}

func TestDepthToSpace(t *testing.T) {
	const inputScale = 0.1
	net := network.New()
	info := activation(types.TensorShape{1, 4, 4, 4}, types.NHWCB)
	info.Quantization = types.QuantizationInfo{ZeroPoint: 0, Scale: inputScale}
	input := must.M1(net.AddInput(info))
	d2s := must.M1(net.AddDepthToSpace(input.Output(0), types.DepthToSpaceInfo{BlockSize: 2}))
	require.Equal(t, types.TensorShape{1, 8, 8, 1}, d2s.Output(0).TensorInfo().Dimensions)

	converter := NewConverter(caps.Default(), defaultQueries(), false)
	g, err := converter.Convert(net)
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	mces := nodesOfType[*MceOperationNode](g)
	require.Len(t, mces, 1)
	mce := mces[0]
	assert.Equal(t, types.MceConvolution, mce.Operation())
	assert.Equal(t, uint32(2), mce.UpscaleFactor())
	assert.Equal(t, uint32(1), mce.PadTop())
	assert.Equal(t, uint32(1), mce.PadLeft())
	assert.Equal(t, types.TensorShape{1, 8, 8, 1}, mce.Shape())

	// Synthesised 2x2x4x1 selector weights at scale 0.5, rotated 180 degrees
	// by the transpose-convolution lowering.
	assert.Equal(t, types.TensorShape{2, 2, 4, 1}, mce.WeightsInfo().Dimensions)
	assert.Equal(t, types.HWIO, mce.WeightsInfo().DataFormat)
	assert.Equal(t, types.QuantizationInfo{ZeroPoint: 0, Scale: 0.5}, mce.WeightsInfo().Quantization)
	synthesised := []byte{
		2, 0, 0, 0, // (0,0) selects channel 0
		0, 2, 0, 0, // (0,1) selects channel 1
		0, 0, 2, 0, // (1,0) selects channel 2
		0, 0, 0, 2, // (1,1) selects channel 3
	}
	assert.Equal(t, rotateWeightsXY(types.TensorShape{2, 2, 4, 1}, synthesised), mce.WeightsData())

	assert.Equal(t, float32(0.5*inputScale), mce.BiasInfo().Quantization.Scale)
	require.Len(t, mce.BiasData(), 1)
	assert.Equal(t, int32(0), mce.BiasData()[0])

	assert.Same(t, Node(mce), converter.NodeForOperand(d2s.Output(0)))
}

func TestDepthToSpaceBlockSize3Panics(t *testing.T) {
	net := network.New()
	input := must.M1(net.AddInput(activation(types.TensorShape{1, 4, 4, 9}, types.NHWCB)))
	must.M1(net.AddDepthToSpace(input.Output(0), types.DepthToSpaceInfo{BlockSize: 3}))

	converter := NewConverter(caps.Default(), defaultQueries(), false)
	require.Panics(t, func() { _, _ = converter.Convert(net) })
}
