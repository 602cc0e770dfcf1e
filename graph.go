package npulower

import (
	"github.com/gomlx/npulower/internal/utils"
	"github.com/gomlx/npulower/types"
	"github.com/pkg/errors"
)

// Edge is a directed connection from the output of one lowered node to one
// input slot of another.
type Edge struct {
	source, dest Node
}

// Source returns the producing node of the edge.
func (e *Edge) Source() Node { return e.source }

// Dest returns the consuming node of the edge.
func (e *Edge) Dest() Node { return e.dest }

// Node is a lowered-graph node: one hardware-executable primitive (or
// placeholder). Concrete kinds embed nodeBase and add their parameters.
//
// Every node carries its output shape, output quantization, output format and
// the set of source-operation ids that created it (its provenance).
type Node interface {
	// Kind is a short name of the node's variant, e.g. "McePostProcess".
	Kind() string

	// Shape of the node's output.
	Shape() types.TensorShape

	// Quantization of the node's output.
	Quantization() types.QuantizationInfo

	// Format of the node's output.
	Format() types.CompilerDataFormat

	// OperationIDs is the set of source-operation ids whose lowering created
	// this node.
	OperationIDs() utils.Set[uint32]

	// Inputs returns the node's input edges, in slot order.
	Inputs() []*Edge

	// Input returns the i-th input edge.
	Input(i int) *Edge

	// InputFormat returns the output format of the i-th input's producer.
	InputFormat(i int) types.CompilerDataFormat

	// InputQuantization returns the output quantization of the i-th input's
	// producer.
	InputQuantization(i int) types.QuantizationInfo

	// Outputs returns the edges consuming this node.
	Outputs() []*Edge

	addInput(e *Edge)
	addOutput(e *Edge)
	replaceOutput(old, replacement *Edge)
}

type nodeBase struct {
	shape        types.TensorShape
	quant        types.QuantizationInfo
	format       types.CompilerDataFormat
	operationIDs utils.Set[uint32]
	inputs       []*Edge
	outputs      []*Edge
}

func newNodeBase(shape types.TensorShape, quant types.QuantizationInfo,
	format types.CompilerDataFormat, operationIDs utils.Set[uint32]) nodeBase {
	return nodeBase{shape: shape, quant: quant, format: format, operationIDs: operationIDs}
}

func (n *nodeBase) Shape() types.TensorShape { return n.shape }
func (n *nodeBase) Quantization() types.QuantizationInfo { return n.quant }
func (n *nodeBase) Format() types.CompilerDataFormat { return n.format }
func (n *nodeBase) OperationIDs() utils.Set[uint32] { return n.operationIDs }
func (n *nodeBase) Inputs() []*Edge { return n.inputs }
func (n *nodeBase) Input(i int) *Edge { return n.inputs[i] }
func (n *nodeBase) Outputs() []*Edge { return n.outputs }

func (n *nodeBase) InputFormat(i int) types.CompilerDataFormat {
	return n.inputs[i].source.Format()
}

func (n *nodeBase) InputQuantization(i int) types.QuantizationInfo {
	return n.inputs[i].source.Quantization()
}

func (n *nodeBase) addInput(e *Edge)  { n.inputs = append(n.inputs, e) }
func (n *nodeBase) addOutput(e *Edge) { n.outputs = append(n.outputs, e) }

func (n *nodeBase) replaceOutput(old, replacement *Edge) {
	for i, e := range n.outputs {
		if e == old {
			n.outputs[i] = replacement
			return
		}
	}
}

// Graph is the lowered DAG the conversion pass produces. Nodes and edges are
// created monotonically; edges may be split but never deleted.
type Graph struct {
	nodes []Node
	edges []*Edge
}

// NewGraph creates an empty lowered graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns all edges in creation order.
func (g *Graph) Edges() []*Edge { return g.edges }

// addNode appends node to the graph and returns it.
func addNode[T Node](g *Graph, node T) T {
	g.nodes = append(g.nodes, node)
	return node
}

// Connect appends an edge from source's output to the next free input slot of
// dest.
func (g *Graph) Connect(source, dest Node) *Edge {
	e := &Edge{source: source, dest: dest}
	g.edges = append(g.edges, e)
	source.addOutput(e)
	dest.addInput(e)
	return e
}

// SplitEdge inserts middle between the endpoints of e: the edge's destination
// keeps its input slot order, and a new edge connects the old source to
// middle.
func (g *Graph) SplitEdge(e *Edge, middle Node) {
	newEdge := &Edge{source: e.source, dest: middle}
	g.edges = append(g.edges, newEdge)
	e.source.replaceOutput(e, newEdge)
	middle.addInput(newEdge)
	middle.addOutput(e)
	e.source = middle
}

// Validate checks the structural invariants of the graph: acyclicity, that
// every node except inputs and constants has at least one input edge, and that
// along every edge the producer's format matches what the consumer expects.
// Format-changing consumers (FormatConversion, Reinterpret) and EstimateOnly
// placeholders are exempt from the format check.
func (g *Graph) Validate() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[Node]int, len(g.nodes))
	var visit func(n Node) error
	visit = func(n Node) error {
		switch state[n] {
		case done:
			return nil
		case visiting:
			return errors.Errorf("graph contains a cycle through %s node %s", n.Kind(), n.Shape())
		}
		state[n] = visiting
		for _, e := range n.Outputs() {
			if err := visit(e.Dest()); err != nil {
				return err
			}
		}
		state[n] = done
		return nil
	}
	for _, n := range g.nodes {
		if err := visit(n); err != nil {
			return err
		}
	}

	for _, n := range g.nodes {
		switch n.(type) {
		case *InputNode, *ConstantNode:
			continue
		}
		if len(n.Inputs()) == 0 {
			return errors.Errorf("%s node %s has no input edges", n.Kind(), n.Shape())
		}
	}

	for _, e := range g.edges {
		switch e.Dest().(type) {
		case *FormatConversionNode, *ReinterpretNode, *EstimateOnlyNode:
			continue
		}
		if e.Source().Format() != e.Dest().Format() {
			return errors.Errorf("edge from %s (%s) to %s (%s) crosses formats without a conversion",
				e.Source().Kind(), e.Source().Format(), e.Dest().Kind(), e.Dest().Format())
		}
	}
	return nil
}
