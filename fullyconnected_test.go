package npulower

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/npulower/caps"
	"github.com/gomlx/npulower/network"
	"github.com/gomlx/npulower/types"
)

func TestShapeContainingLinearElements(t *testing.T) {
	brickGroup := types.TensorShape{1, 8, 8, 16}
	testCases := []struct {
		name        string
		numElements uint32
		expected    types.TensorShape
	}{
		{"one patch", 16, types.TensorShape{1, 4, 4, 1}},
		{"partial patch rounds up", 17, types.TensorShape{1, 4, 4, 2}},
		{"one brick", 256, types.TensorShape{1, 4, 4, 16}},
		{"just over one brick", 257, types.TensorShape{1, 8, 4, 16}},
		{"one full brick group", 1024, types.TensorShape{1, 8, 8, 16}},
		{"brick group plus one patch", 1040, types.TensorShape{1, 8, 8, 17}},
		{"two full brick groups", 2048, types.TensorShape{1, 8, 8, 32}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := shapeContainingLinearElements(brickGroup, tc.numElements)
			assert.Equal(t, tc.expected, got)
			// The computed shape must cover all the elements.
			assert.GreaterOrEqual(t, got.NumElements(), tc.numElements)
		})
	}
}

func TestPadToSize(t *testing.T) {
	padded := padToSize([]byte{1, 2, 3}, 6, 9)
	assert.Equal(t, []byte{1, 2, 3, 9, 9, 9}, padded)
}

func TestFullyConnectedLowering(t *testing.T) {
	net := network.New()
	input := must.M1(net.AddInput(activation(types.TensorShape{1, 1, 1, 16}, types.NHWCB)))

	const weightsZeroPoint = 3
	weightsInfo := types.TensorInfo{
		Dimensions:   types.TensorShape{1, 1, 16, 8},
		DataType:     dtypes.U8,
		DataFormat:   types.HWIO,
		Quantization: types.QuantizationInfo{ZeroPoint: weightsZeroPoint, Scale: 0.5},
	}
	weightsData := make([]byte, weightsInfo.TotalSizeBytes())
	for i := range weightsData {
		weightsData[i] = byte(i + 1)
	}
	weights := must.M1(net.AddConstant(weightsInfo, weightsData))
	bias := addBias(t, net, 8)
	fc := must.M1(net.AddFullyConnected(input.Output(0), bias, weights,
		types.FullyConnectedInfo{OutputQuantization: unitQuant}))

	converter := NewConverter(caps.Default(), defaultQueries(), false)
	g, err := converter.Convert(net)
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	// The NHWCB input is converted to NHWC, then reinterpreted as the
	// smallest brick-covering shape.
	conversions := nodesOfType[*FormatConversionNode](g)
	require.Len(t, conversions, 1)
	assert.Equal(t, types.CompilerNHWC, conversions[0].Format())

	reinterprets := nodesOfType[*ReinterpretNode](g)
	require.Len(t, reinterprets, 1)
	assert.Equal(t, types.TensorShape{1, 4, 4, 1}, reinterprets[0].Shape())
	assert.Equal(t, types.CompilerNHWCB, reinterprets[0].Format())

	mces := nodesOfType[*MceOperationNode](g)
	require.Len(t, mces, 1)
	mce := mces[0]
	assert.Equal(t, types.MceFullyConnected, mce.Operation())
	assert.Equal(t, types.Stride{X: 1, Y: 1}, mce.Stride())
	assert.Equal(t, uint32(1), mce.UpscaleFactor())
	assert.Equal(t, uint32(0), mce.PadTop())
	assert.Equal(t, uint32(0), mce.PadLeft())
	assert.Equal(t, types.TensorShape{1, 1, 1, 8}, mce.Shape())

	// Weights are padded up to 1024 input channels with the weights' zero
	// point.
	assert.Equal(t, types.TensorShape{1, 1, 1024, 8}, mce.WeightsInfo().Dimensions)
	padded := mce.WeightsData()
	require.Len(t, padded, 1024*8)
	assert.Equal(t, weightsData, padded[:len(weightsData)])
	for _, b := range padded[len(weightsData):] {
		require.Equal(t, byte(weightsZeroPoint), b)
	}

	assert.Same(t, Node(mce), converter.NodeForOperand(fc.Output(0)))
}

func TestFullyConnectedConvertsBackToNHWC(t *testing.T) {
	net := network.New()
	input := must.M1(net.AddInput(activation(types.TensorShape{1, 1, 1, 1024}, types.NHWC)))
	// The NHWC input gets its usual conversion to NHWCB...
	weightsInfo := types.TensorInfo{
		Dimensions:   types.TensorShape{1, 1, 1024, 8},
		DataType:     dtypes.U8,
		DataFormat:   types.HWIO,
		Quantization: types.QuantizationInfo{ZeroPoint: 0, Scale: 0.5},
	}
	weights := must.M1(net.AddConstant(weightsInfo, make([]byte, weightsInfo.TotalSizeBytes())))
	bias := addBias(t, net, 8)
	must.M1(net.AddFullyConnected(input.Output(0), bias, weights,
		types.FullyConnectedInfo{OutputQuantization: unitQuant}))

	g, err := Convert(net, caps.Default(), defaultQueries())
	require.NoError(t, err)

	// ...so the fully connected rule must convert back to NHWC before its
	// reinterpret: two conversions in total.
	conversions := nodesOfType[*FormatConversionNode](g)
	assert.Len(t, conversions, 2)

	reinterprets := nodesOfType[*ReinterpretNode](g)
	require.Len(t, reinterprets, 1)
	assert.Equal(t, types.TensorShape{1, 8, 8, 16}, reinterprets[0].Shape())

	// Already a multiple of 1024: no padding added.
	mces := nodesOfType[*MceOperationNode](g)
	require.Len(t, mces, 1)
	assert.Equal(t, types.TensorShape{1, 1, 1024, 8}, mces[0].WeightsInfo().Dimensions)
	assert.Len(t, mces[0].WeightsData(), 1024*8)
}
