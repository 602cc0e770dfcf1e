package npulower

import (
	"bytes"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/npulower/internal/utils"
	"github.com/gomlx/npulower/types"
)

func testNode(g *Graph, format types.CompilerDataFormat) *EstimateOnlyNode {
	return g.NewEstimateOnlyNode(types.TensorShape{1, 8, 8, 16},
		types.QuantizationInfo{ZeroPoint: 0, Scale: 1}, format, utils.SetWith[uint32](0))
}

func TestConnect(t *testing.T) {
	g := NewGraph()
	a := testNode(g, types.CompilerNHWCB)
	b := testNode(g, types.CompilerNHWCB)
	e := g.Connect(a, b)

	assert.Same(t, a, e.Source())
	assert.Same(t, b, e.Dest())
	require.Len(t, b.Inputs(), 1)
	require.Len(t, a.Outputs(), 1)
	assert.Same(t, e, b.Input(0))
	assert.Equal(t, types.CompilerNHWCB, b.InputFormat(0))
}

func TestSplitEdge(t *testing.T) {
	g := NewGraph()
	a := testNode(g, types.CompilerNHWCB)
	b := testNode(g, types.CompilerNHWCB)
	consumer := testNode(g, types.CompilerNHWCB)
	g.Connect(a, consumer)
	g.Connect(b, consumer)

	// Splitting the first edge must not disturb the second input slot.
	mid := testNode(g, types.CompilerNHWCB)
	g.SplitEdge(consumer.Input(0), mid)

	require.Len(t, consumer.Inputs(), 2)
	assert.Same(t, mid, consumer.Input(0).Source().(*EstimateOnlyNode))
	assert.Same(t, b, consumer.Input(1).Source().(*EstimateOnlyNode))
	require.Len(t, mid.Inputs(), 1)
	assert.Same(t, a, mid.Input(0).Source().(*EstimateOnlyNode))
	require.Len(t, a.Outputs(), 1)
	assert.Same(t, mid, a.Outputs()[0].Dest().(*EstimateOnlyNode))
	assert.Len(t, g.Edges(), 3)
}

func TestValidateDetectsCycle(t *testing.T) {
	g := NewGraph()
	a := testNode(g, types.CompilerNHWCB)
	b := testNode(g, types.CompilerNHWCB)
	g.Connect(a, b)
	require.Error(t, func() error { g.Connect(b, a); return g.Validate() }())
}

func TestValidateDetectsMissingInputs(t *testing.T) {
	g := NewGraph()
	g.NewFormatConversionNode(types.TensorShape{1, 8, 8, 16},
		types.QuantizationInfo{}, types.CompilerNHWC, utils.SetWith[uint32](0))
	err := g.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input edges")
}

func TestValidateDetectsFormatMismatch(t *testing.T) {
	g := NewGraph()
	info := types.TensorInfo{
		Dimensions: types.TensorShape{1, 8, 8, 16},
		DataType:   dtypes.U8,
		DataFormat: types.NHWC,
	}
	a := g.NewConstantNode(info, make([]byte, info.TotalSizeBytes()), utils.SetWith[uint32](0))
	concat := g.NewConcatNode(types.TensorShape{1, 8, 8, 16},
		types.QuantizationInfo{}, types.CompilerNHWCB, 3, utils.SetWith[uint32](0))
	g.Connect(a, concat)
	err := g.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crosses formats")
}

func TestWriteDot(t *testing.T) {
	g := NewGraph()
	a := testNode(g, types.CompilerNHWCB)
	b := testNode(g, types.CompilerNHWCB)
	g.Connect(a, b)

	var buf bytes.Buffer
	require.NoError(t, g.WriteDot(&buf))
	dot := buf.String()
	assert.Contains(t, dot, "digraph LoweredGraph")
	assert.Contains(t, dot, "n0 -> n1;")
	assert.Contains(t, dot, "EstimateOnly")
}
