package types

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTensorShape(t *testing.T) {
	shape := TensorShape{1, 8, 8, 16}
	assert.Equal(t, uint32(1024), shape.NumElements())
	assert.Equal(t, "(1, 8, 8, 16)", shape.String())
}

func TestTensorInfoTotalSizeBytes(t *testing.T) {
	u8 := TensorInfo{Dimensions: TensorShape{1, 2, 2, 4}, DataType: dtypes.U8}
	assert.Equal(t, uint32(16), u8.TotalSizeBytes())

	bias := TensorInfo{Dimensions: TensorShape{1, 1, 1, 8}, DataType: dtypes.S32}
	assert.Equal(t, uint32(32), bias.TotalSizeBytes())
}

func TestExternalToCompilerFormat(t *testing.T) {
	assert.Equal(t, CompilerNHWC, ExternalToCompilerFormat(NHWC))
	assert.Equal(t, CompilerNHWCB, ExternalToCompilerFormat(NHWCB))
	assert.Equal(t, CompilerWeight, ExternalToCompilerFormat(HWIO))
	assert.Equal(t, CompilerWeight, ExternalToCompilerFormat(HWIM))
	require.Panics(t, func() { ExternalToCompilerFormat(DataFormat(42)) })
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "NHWCB", NHWCB.String())
	assert.Equal(t, "Weight", CompilerWeight.String())
	assert.Equal(t, "Avg", PoolingAvg.String())
	assert.Equal(t, "EstimateOnly", EstimateOnly.String())
	assert.Equal(t, "Interleave2x2", PleInterleave2x2.String())
	assert.Equal(t, "DepthwiseConvolution", MceDepthwiseConvolution.String())

	level, err := SupportedLevelString("Supported")
	require.NoError(t, err)
	assert.Equal(t, Supported, level)

	ple, err := PleOperationString("additionrescale")
	require.NoError(t, err)
	assert.Equal(t, PleAdditionRescale, ple)

	_, err = MceOperationString("Pooling")
	require.Error(t, err)
}

func TestIdentityShapeMultiplier(t *testing.T) {
	assert.Equal(t, Fraction{1, 1}, IdentityShapeMultiplier.H)
	assert.Equal(t, Fraction{1, 1}, IdentityShapeMultiplier.W)
	assert.Equal(t, uint32(1), IdentityShapeMultiplier.Channels)
}
