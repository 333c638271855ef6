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
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/shapeinference"
	"github.com/gomlx/tensorir/types/shapes"
)

// The op builders below create one node each. They panic (with exceptions)
// on malformed calls -- nil nodes, mixed graphs, argument counts that make
// shape inference impossible. Semantic well-formedness of the built node is
// checked by Node.Verify, which returns diagnostics instead of panicking, so
// invalid combinations of shapes and attributes can be constructed and then
// reported.

// Parameter creates an input to the graph with the given shape. If name is
// empty a unique one is generated.
func Parameter(g *Graph, name string, shape shapes.Shape) *Node {
	g.AssertValid()
	if name == "" {
		name = fmt.Sprintf("p#%d", g.nextParameter)
	}
	g.nextParameter++
	return g.newNode(shape, &nodeInputsParameter{name: name}, nil)
}

// Constant creates a node holding a compile-time value. Its shape is the
// literal's shape, always fully static.
func Constant(g *Graph, literal *Literal) *Node {
	g.AssertValid()
	if literal == nil {
		exceptions.Panicf("Constant: literal is nil")
	}
	return g.newNode(literal.Shape(), &nodeInputsConstant{literal: literal}, nil)
}

// ConstantIndex creates a scalar Int64 constant, the type used for indices,
// extents and dimension values.
func ConstantIndex(g *Graph, value int64) *Node {
	return Constant(g, IndexLiteral(value))
}

// Cast reinterprets x under a different shape of the same element type,
// adding or removing static dimension information (or rankedness). The
// operand and target shapes must be cast-compatible; see Node.Verify.
func Cast(x *Node, target shapes.Shape) *Node {
	x.AssertValid()
	return x.graph.newNode(target, &nodeInputsCast{}, []*Node{x})
}

// DimIndex returns the extent of x along the axis computed by index, as a
// scalar Int64. index must be a scalar integer node.
func DimIndex(x, index *Node) *Node {
	x.AssertValid()
	index.AssertValid()
	return x.graph.newNode(shapes.Scalar(dtypes.Int64), &nodeInputsDim{}, []*Node{x, index})
}

// Dim returns the extent of x along the given axis, as a scalar Int64.
func Dim(x *Node, axis int) *Node {
	x.AssertValid()
	return DimIndex(x, ConstantIndex(x.graph, int64(axis)))
}

// Rank returns the rank of x as a scalar Int64.
func Rank(x *Node) *Node {
	x.AssertValid()
	return x.graph.newNode(shapes.Scalar(dtypes.Int64), &nodeInputsRank{}, []*Node{x})
}

// Empty creates an uninitialized tensor of the given shape, a destination
// for destination-passing-style consumers. dynamicExtents provide the
// runtime sizes of the dynamic axes of shape, in order, one scalar integer
// node each.
func Empty(g *Graph, shape shapes.Shape, dynamicExtents ...*Node) *Node {
	g.AssertValid()
	return g.newNode(shape, &nodeInputsEmpty{}, slices.Clone(dynamicExtents))
}

// Splat broadcasts the scalar value to a tensor of the given static
// dimensions.
func Splat(value *Node, dimensions ...int) *Node {
	value.AssertValid()
	shape := shapes.Make(value.DType(), dimensions...)
	return value.graph.newNode(shape, &nodeInputsSplat{}, []*Node{value})
}

// FromElements assembles a tensor of the given static shape from scalar
// elements, in row-major order. len(elements) must equal shape.Size().
func FromElements(g *Graph, shape shapes.Shape, elements ...*Node) *Node {
	g.AssertValid()
	return g.newNode(shape, &nodeInputsFromElements{}, slices.Clone(elements))
}

// Extract reads one element of x at the given coordinates, one scalar
// integer node per axis. The result is a scalar of x's element type.
func Extract(x *Node, coordinates ...*Node) *Node {
	x.AssertValid()
	inputs := make([]*Node, 0, 1+len(coordinates))
	inputs = append(inputs, x)
	inputs = append(inputs, coordinates...)
	return x.graph.newNode(shapes.Scalar(x.DType()), &nodeInputsExtract{}, inputs)
}

// Insert writes the scalar value into dest at the given coordinates,
// producing a tensor of dest's shape. dest is not modified: tensor values
// are immutable, the result is a new value.
func Insert(value, dest *Node, coordinates ...*Node) *Node {
	value.AssertValid()
	dest.AssertValid()
	inputs := make([]*Node, 0, 2+len(coordinates))
	inputs = append(inputs, value, dest)
	inputs = append(inputs, coordinates...)
	return value.graph.newNode(dest.Shape(), &nodeInputsInsert{}, inputs)
}

// Generate creates a tensor of the given shape whose elements are computed
// by body, called once here with the region's coordinate arguments (scalar
// Int64 nodes, one per axis) to build the element expression.
// dynamicExtents provide the runtime sizes of the dynamic axes of shape, in
// order.
func Generate(g *Graph, shape shapes.Shape, dynamicExtents []*Node, body func(coordinates []*Node) *Node) *Node {
	g.AssertValid()
	if body == nil {
		exceptions.Panicf("Generate: body is nil")
	}
	region := g.newRegion(shape.Rank())
	region.setYield(body(region.Args()))
	n := g.newNode(shape, &nodeInputsGenerate{}, slices.Clone(dynamicExtents))
	n.region = region
	return n
}

// Reshape reinterprets the elements of source, in row-major order, under the
// declared result shape. shapeOperand is a 1-D integer tensor holding the
// runtime extents of the result, one per axis.
func Reshape(source, shapeOperand *Node, result shapes.Shape) *Node {
	source.AssertValid()
	shapeOperand.AssertValid()
	return source.graph.newNode(result, &nodeInputsReshape{}, []*Node{source, shapeOperand})
}

// CollapseShape merges contiguous groups of axes of source into single axes,
// per the reassociation: one group of source axes per result axis, in order,
// covering every source axis. The result shape is inferred: per group the
// product of the member extents, dynamic if any member is dynamic.
func CollapseShape(source *Node, reassociation [][]int) *Node {
	source.AssertValid()
	if err := shapeinference.VerifyReassociation(reassociation, source.Rank()); err != nil {
		exceptions.Panicf("CollapseShape: %v", err)
	}
	result := shapeinference.CollapsedShape(source.Shape(), reassociation)
	return source.graph.newNode(result, &nodeInputsCollapseShape{reassociation: reassociation}, []*Node{source})
}

// ExpandShape splits axes of source into contiguous groups of result axes,
// per the reassociation: one group of result axes per source axis, in order,
// covering every result axis. The result shape cannot be inferred from the
// source alone, so it is declared; Node.Verify checks it collapses back to
// the source shape.
func ExpandShape(source *Node, reassociation [][]int, result shapes.Shape) *Node {
	source.AssertValid()
	return source.graph.newNode(result, &nodeInputsExpandShape{reassociation: reassociation}, []*Node{source})
}

// Gather reads slices of source at runtime coordinates. indices is an
// integer tensor whose last axis holds one coordinate per gather dimension;
// gatherDims names the source axes being indexed, strictly increasing. The
// result shape is inferred in the full (non-rank-reduced) form: the leading
// axes of indices, then the source axes with the gathered ones kept as size
// 1. unique promises the coordinates are distinct, enabling parallel
// lowering.
func Gather(source, indices *Node, gatherDims []int, unique bool) *Node {
	source.AssertValid()
	indices.AssertValid()
	result := shapeinference.GatherResultShape(source.Shape(), indices.Shape(), gatherDims, false)
	return GatherWithShape(source, indices, gatherDims, unique, result)
}

// GatherWithShape is like Gather but with a declared result shape, used for
// the rank-reduced form where the gathered axes are dropped instead of kept
// as size 1.
func GatherWithShape(source, indices *Node, gatherDims []int, unique bool, result shapes.Shape) *Node {
	source.AssertValid()
	indices.AssertValid()
	inputs := &nodeInputsGather{gatherDims: slices.Clone(gatherDims), unique: unique}
	return source.graph.newNode(result, inputs, []*Node{source, indices})
}

// Scatter writes the slices of source into dest at runtime coordinates, the
// inverse of Gather: indices is an integer tensor whose last axis holds one
// coordinate per scatter dimension, scatterDims names the dest axes being
// indexed. The result has dest's shape. unique promises the coordinates are
// distinct; it is required, otherwise the write order would be unspecified,
// and Node.Verify rejects the node.
func Scatter(source, dest, indices *Node, scatterDims []int, unique bool) *Node {
	source.AssertValid()
	dest.AssertValid()
	indices.AssertValid()
	inputs := &nodeInputsScatter{scatterDims: slices.Clone(scatterDims), unique: unique}
	return source.graph.newNode(dest.Shape(), inputs, []*Node{source, dest, indices})
}
