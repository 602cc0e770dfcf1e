// Package network holds the source representation the compiler front-end
// consumes: a DAG of high-level operations connected by operands.
//
// Operations are appended in creation order and every constructor requires its
// input operands to exist already, so the operation list is always in
// topological order -- the lowering pass relies on this.
//
// Constructors validate operand compatibility and compute the TensorInfo of
// every output operand, using the shapeinference package for the operations
// whose output shape differs from their input's; hardware supportedness
// is not checked here, that is the lowering pass's job.
package network

import (
	"encoding/binary"

	"github.com/gomlx/npulower/types"
)

// Operand is an edge endpoint of the source DAG: one output of a producer
// operation, consumed by zero or more other operations.
type Operand struct {
	producer            Operation
	producerOutputIndex int
	info                types.TensorInfo
	consumers           []Operation
}

// TensorInfo returns the description of the tensor this operand carries.
func (o *Operand) TensorInfo() types.TensorInfo { return o.info }

// Producer returns the operation producing this operand.
func (o *Operand) Producer() Operation { return o.producer }

// ProducerOutputIndex returns which output of the producer this operand is.
func (o *Operand) ProducerOutputIndex() int { return o.producerOutputIndex }

// Consumers returns the operations consuming this operand.
func (o *Operand) Consumers() []Operation { return o.consumers }

// Operation is a node of the source DAG. Concrete operation types (Input,
// Convolution, Split, ...) embed operationBase and add their parameters.
type Operation interface {
	// ID is a stable identifier, unique within the Network.
	ID() uint32

	// Inputs are the operands this operation consumes.
	Inputs() []*Operand

	// Outputs are the operands this operation produces.
	Outputs() []*Operand
}

type operationBase struct {
	id      uint32
	inputs  []*Operand
	outputs []*Operand
}

func (b *operationBase) ID() uint32 { return b.id }
func (b *operationBase) Inputs() []*Operand { return b.inputs }
func (b *operationBase) Outputs() []*Operand { return b.outputs }

// Input returns the i-th input operand.
func (b *operationBase) Input(i int) *Operand { return b.inputs[i] }

// Output returns the i-th output operand.
func (b *operationBase) Output(i int) *Operand { return b.outputs[i] }

// Network is a source DAG under construction.
type Network struct {
	operations []Operation
	nextID     uint32
}

// New creates an empty Network.
func New() *Network {
	return &Network{}
}

// Operations returns the operations in topological (creation) order.
func (n *Network) Operations() []Operation {
	return n.operations
}

// register assigns the next id to op, wires its inputs (recording op as a
// consumer of each) and creates one output operand per info.
func (n *Network) register(op Operation, base *operationBase, inputs []*Operand, outputInfos []types.TensorInfo) {
	base.id = n.nextID
	n.nextID++
	base.inputs = inputs
	for _, input := range inputs {
		input.consumers = append(input.consumers, op)
	}
	base.outputs = make([]*Operand, len(outputInfos))
	for i, info := range outputInfos {
		base.outputs[i] = &Operand{
			producer:            op,
			producerOutputIndex: i,
			info:                info,
		}
	}
	n.operations = append(n.operations, op)
}

// BytesFromInt32 encodes values as the little-endian byte stream a Constant
// holds, e.g. for bias data.
func BytesFromInt32(values []int32) []byte {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[4*i:], uint32(v))
	}
	return data
}
