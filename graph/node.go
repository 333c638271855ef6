/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package graph

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/types/shapes"
	"github.com/gomlx/tensorir/types/xslices"
)

// Node is one operation in a Graph. It holds the result shape, the input
// edges (other nodes) and the static attributes of the operation, stored in
// its nodeInputs payload.
//
// Nodes are created by the op builder functions (Cast, ExtractSlice, Pad,
// ...) and are immutable from the user's perspective: rewrites go through a
// Rewriter, which keeps the use lists consistent.
type Node struct {
	graph *Graph
	shape shapes.Shape
	id    NodeId // id within graph.

	// inputNodes are the edges of the computation graph.
	// Static attributes of the node are registered in inputs instead.
	inputNodes []*Node

	// inputs holds the node type and its static attributes.
	inputs nodeInputs

	// users lists the nodes consuming this node's value, one entry per use
	// edge -- a node using this node twice appears twice.
	users []*Node

	// region is only set for region-carrying nodes (Generate, Pad).
	region *Region

	erased bool
}

// nodeInputs represents the static inputs to a node: the operation type plus
// its attributes. The pointer is cast to the corresponding type, named
// nodeInputs<OpType>, to access them.
type nodeInputs interface {
	Type() OpType

	// String prints a descriptive representation of the node, using its
	// static attributes.
	String() string
}

// Type identifies the operation performed by the node.
func (n *Node) Type() OpType {
	if n == nil || n.inputs == nil {
		return OpTypeInvalid
	}
	return n.inputs.Type()
}

// Graph that holds this Node.
func (n *Node) Graph() *Graph {
	if n == nil {
		return nil
	}
	return n.graph
}

// Shape of the Node's result.
func (n *Node) Shape() shapes.Shape {
	if n == nil {
		return shapes.Shape{}
	}
	return n.shape
}

// DType returns the element type of the node's shape.
func (n *Node) DType() dtypes.DType {
	return n.shape.DType
}

// Rank returns the rank of the node's shape. It panics for unranked shapes.
func (n *Node) Rank() int {
	return n.shape.Rank()
}

// IsScalar returns whether the node's shape is a scalar.
func (n *Node) IsScalar() bool {
	return n.shape.IsScalar()
}

// Id is the unique id of this node within the Graph.
func (n *Node) Id() NodeId {
	return n.id
}

// Inputs are the other nodes that are direct inputs to this node. This
// doesn't include static attributes, which are not given by other nodes.
func (n *Node) Inputs() []*Node { return n.inputNodes }

// NumInputs returns the number of input nodes.
func (n *Node) NumInputs() int { return len(n.inputNodes) }

// Input returns the idx-th input node.
func (n *Node) Input(idx int) *Node { return n.inputNodes[idx] }

// Users returns the nodes using this node's value, one entry per use edge.
// The returned slice is owned by the node, don't modify it.
func (n *Node) Users() []*Node { return n.users }

// NumUsers returns the number of uses of this node's value.
func (n *Node) NumUsers() int { return len(n.users) }

// HasOneUse returns whether this node's value is used exactly once.
func (n *Node) HasOneUse() bool { return len(n.users) == 1 }

// Region returns the body region of a region-carrying node (Generate, Pad),
// or nil for everything else.
func (n *Node) Region() *Region { return n.region }

// IsErased returns whether the node has been removed from the graph by a
// rewrite. Erased nodes must no longer be used.
func (n *Node) IsErased() bool { return n.erased }

// AssertValid panics if n is nil, erased, or in an invalid state.
func (n *Node) AssertValid() {
	if n == nil {
		exceptions.Panicf("Node is nil")
	}
	if n.inputs == nil {
		exceptions.Panicf("Node in an invalid state, maybe it was not properly created?")
	}
	if n.erased {
		exceptions.Panicf("Node #%d (%s) was erased from the graph and can no longer be used", n.id, n.Type())
	}
	n.graph.AssertValid()
}

// Source returns the main operand of the node: the tensor being cast,
// sliced, padded, reshaped, etc. It panics for nodes without operands.
func (n *Node) Source() *Node {
	if len(n.inputNodes) == 0 {
		exceptions.Panicf("node %s has no operands", n.Type())
	}
	return n.inputNodes[0]
}

// String implements the fmt.Stringer interface.
func (n *Node) String() (str string) {
	if n == nil {
		return "Node(nil)"
	}
	if n.inputs == nil {
		return "Node(invalid)"
	}
	inputIds := xslices.Map(n.inputNodes, func(input *Node) string {
		return fmt.Sprintf("#%d", input.id)
	})
	str = fmt.Sprintf("%s: %s", n.inputs, n.shape)
	if len(inputIds) > 0 {
		str += fmt.Sprintf(" [inputs=(%s)]", strings.Join(inputIds, ", "))
	}
	return
}

// Payload types, one per OpType, holding the static attributes of each
// operation. Operand layouts (what each position of inputNodes holds) are
// documented with the corresponding builder in ops.go.

type nodeInputsParameter struct {
	name string
}

func (ni *nodeInputsParameter) Type() OpType { return OpTypeParameter }
func (ni *nodeInputsParameter) String() string {
	return fmt.Sprintf("Parameter(name=%q)", ni.name)
}

type nodeInputsConstant struct {
	literal *Literal
}

func (ni *nodeInputsConstant) Type() OpType { return OpTypeConstant }
func (ni *nodeInputsConstant) String() string {
	return fmt.Sprintf("Constant(%s)", ni.literal)
}

type nodeInputsRegionArg struct {
	index int
}

func (ni *nodeInputsRegionArg) Type() OpType { return OpTypeRegionArg }
func (ni *nodeInputsRegionArg) String() string {
	return fmt.Sprintf("RegionArg(index=%d)", ni.index)
}

type nodeInputsCast struct{}

func (ni *nodeInputsCast) Type() OpType   { return OpTypeCast }
func (ni *nodeInputsCast) String() string { return "Cast()" }

type nodeInputsCollapseShape struct {
	reassociation [][]int
}

func (ni *nodeInputsCollapseShape) Type() OpType { return OpTypeCollapseShape }
func (ni *nodeInputsCollapseShape) String() string {
	return fmt.Sprintf("CollapseShape(reassociation=%v)", ni.reassociation)
}

type nodeInputsDim struct{}

func (ni *nodeInputsDim) Type() OpType   { return OpTypeDim }
func (ni *nodeInputsDim) String() string { return "Dim()" }

type nodeInputsEmpty struct{}

func (ni *nodeInputsEmpty) Type() OpType   { return OpTypeEmpty }
func (ni *nodeInputsEmpty) String() string { return "Empty()" }

type nodeInputsExpandShape struct {
	reassociation [][]int
}

func (ni *nodeInputsExpandShape) Type() OpType { return OpTypeExpandShape }
func (ni *nodeInputsExpandShape) String() string {
	return fmt.Sprintf("ExpandShape(reassociation=%v)", ni.reassociation)
}

type nodeInputsExtract struct{}

func (ni *nodeInputsExtract) Type() OpType   { return OpTypeExtract }
func (ni *nodeInputsExtract) String() string { return "Extract()" }

type nodeInputsExtractSlice struct {
	staticOffsets []int64
	staticSizes   []int64
	staticStrides []int64
}

func (ni *nodeInputsExtractSlice) Type() OpType { return OpTypeExtractSlice }
func (ni *nodeInputsExtractSlice) String() string {
	return fmt.Sprintf("ExtractSlice(offsets=%v, sizes=%v, strides=%v)",
		ni.staticOffsets, ni.staticSizes, ni.staticStrides)
}

type nodeInputsFromElements struct{}

func (ni *nodeInputsFromElements) Type() OpType   { return OpTypeFromElements }
func (ni *nodeInputsFromElements) String() string { return "FromElements()" }

type nodeInputsGather struct {
	gatherDims []int
	unique     bool
}

func (ni *nodeInputsGather) Type() OpType { return OpTypeGather }
func (ni *nodeInputsGather) String() string {
	return fmt.Sprintf("Gather(gatherDims=%v, unique=%v)", ni.gatherDims, ni.unique)
}

type nodeInputsGenerate struct{}

func (ni *nodeInputsGenerate) Type() OpType   { return OpTypeGenerate }
func (ni *nodeInputsGenerate) String() string { return "Generate()" }

type nodeInputsInsert struct{}

func (ni *nodeInputsInsert) Type() OpType   { return OpTypeInsert }
func (ni *nodeInputsInsert) String() string { return "Insert()" }

type nodeInputsInsertSlice struct {
	staticOffsets []int64
	staticSizes   []int64
	staticStrides []int64
}

func (ni *nodeInputsInsertSlice) Type() OpType { return OpTypeInsertSlice }
func (ni *nodeInputsInsertSlice) String() string {
	return fmt.Sprintf("InsertSlice(offsets=%v, sizes=%v, strides=%v)",
		ni.staticOffsets, ni.staticSizes, ni.staticStrides)
}

type nodeInputsPad struct {
	staticLow  []int64
	staticHigh []int64
	nofold     bool
}

func (ni *nodeInputsPad) Type() OpType { return OpTypePad }
func (ni *nodeInputsPad) String() string {
	return fmt.Sprintf("Pad(low=%v, high=%v, nofold=%v)", ni.staticLow, ni.staticHigh, ni.nofold)
}

type nodeInputsParallelInsertSlice struct {
	staticOffsets []int64
	staticSizes   []int64
	staticStrides []int64
}

func (ni *nodeInputsParallelInsertSlice) Type() OpType { return OpTypeParallelInsertSlice }
func (ni *nodeInputsParallelInsertSlice) String() string {
	return fmt.Sprintf("ParallelInsertSlice(offsets=%v, sizes=%v, strides=%v)",
		ni.staticOffsets, ni.staticSizes, ni.staticStrides)
}

type nodeInputsRank struct{}

func (ni *nodeInputsRank) Type() OpType   { return OpTypeRank }
func (ni *nodeInputsRank) String() string { return "Rank()" }

type nodeInputsReshape struct{}

func (ni *nodeInputsReshape) Type() OpType   { return OpTypeReshape }
func (ni *nodeInputsReshape) String() string { return "Reshape()" }

type nodeInputsScatter struct {
	scatterDims []int
	unique      bool
}

func (ni *nodeInputsScatter) Type() OpType { return OpTypeScatter }
func (ni *nodeInputsScatter) String() string {
	return fmt.Sprintf("Scatter(scatterDims=%v, unique=%v)", ni.scatterDims, ni.unique)
}

type nodeInputsSplat struct{}

func (ni *nodeInputsSplat) Type() OpType   { return OpTypeSplat }
func (ni *nodeInputsSplat) String() string { return "Splat()" }

// GetParameterName returns the parameter name. It panics if the node is not
// a Parameter.
func (n *Node) GetParameterName() string {
	n.AssertValid()
	if n.Type() != OpTypeParameter {
		exceptions.Panicf("trying to get GetParameterName of a non-parameter node %q", n.Type())
	}
	return n.inputs.(*nodeInputsParameter).name
}

// ConstantLiteral returns the literal held by a Constant node, or nil if the
// node is not a Constant.
func (n *Node) ConstantLiteral() *Literal {
	if n.Type() != OpTypeConstant {
		return nil
	}
	return n.inputs.(*nodeInputsConstant).literal
}

// ConstantIndexValue returns the value of a Constant node holding a scalar
// integer, and whether the node is one. It is how rewrites recognize
// constant offsets, sizes, strides and indices.
func (n *Node) ConstantIndexValue() (int64, bool) {
	literal := n.ConstantLiteral()
	if literal == nil {
		return 0, false
	}
	return literal.IndexValue()
}

// Reassociation returns the axes grouping of a CollapseShape or ExpandShape
// node. It panics for other node types.
func (n *Node) Reassociation() [][]int {
	switch inputs := n.inputs.(type) {
	case *nodeInputsCollapseShape:
		return inputs.reassociation
	case *nodeInputsExpandShape:
		return inputs.reassociation
	}
	exceptions.Panicf("node %s has no reassociation", n.Type())
	return nil
}

// GatherDims returns the indexed axes of a Gather node.
func (n *Node) GatherDims() []int {
	n.AssertValid()
	if n.Type() != OpTypeGather {
		exceptions.Panicf("trying to get GatherDims of a non-gather node %q", n.Type())
	}
	return n.inputs.(*nodeInputsGather).gatherDims
}

// ScatterDims returns the indexed axes of a Scatter node.
func (n *Node) ScatterDims() []int {
	n.AssertValid()
	if n.Type() != OpTypeScatter {
		exceptions.Panicf("trying to get ScatterDims of a non-scatter node %q", n.Type())
	}
	return n.inputs.(*nodeInputsScatter).scatterDims
}
