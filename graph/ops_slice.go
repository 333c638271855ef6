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
	"github.com/gomlx/exceptions"
	"github.com/gomlx/tensorir/shapeinference"
	"github.com/gomlx/tensorir/types"
	"github.com/gomlx/tensorir/types/shapes"
	"github.com/gomlx/tensorir/types/xslices"
)

// Slice operations address a rectangular window of a tensor with three
// per-axis lists: offsets, sizes and strides. Each entry is a DimExpr; the
// static values are stored as node attributes and the dynamic ones become
// extra operands, appended after the tensor operands in offsets, sizes,
// strides order.

func checkSliceArgs(opName string, rank int, offsets, sizes, strides []DimExpr) {
	if len(offsets) != rank || len(sizes) != rank || len(strides) != rank {
		exceptions.Panicf("%s: offsets/sizes/strides must have one entry per axis (%d), got %d/%d/%d",
			opName, rank, len(offsets), len(sizes), len(strides))
	}
}

func buildSliceOperands(tensorOperands []*Node, offsets, sizes, strides []DimExpr) (
	operands []*Node, staticOffsets, staticSizes, staticStrides []int64) {
	var dynOffsets, dynSizes, dynStrides []*Node
	staticOffsets, dynOffsets = splitDims(offsets)
	staticSizes, dynSizes = splitDims(sizes)
	staticStrides, dynStrides = splitDims(strides)
	operands = make([]*Node, 0, len(tensorOperands)+len(dynOffsets)+len(dynSizes)+len(dynStrides))
	operands = append(operands, tensorOperands...)
	operands = append(operands, dynOffsets...)
	operands = append(operands, dynSizes...)
	operands = append(operands, dynStrides...)
	return
}

// ExtractSlice reads the rectangular window of source described by offsets,
// sizes and strides. The result shape is inferred in the non-rank-reduced
// form: one axis per size entry, dynamic wherever the size is dynamic.
func ExtractSlice(source *Node, offsets, sizes, strides []DimExpr) *Node {
	source.AssertValid()
	checkSliceArgs("ExtractSlice", source.Rank(), offsets, sizes, strides)
	staticSizes, _ := splitDims(sizes)
	result := shapeinference.SliceResultShape(source.Shape(), staticSizes)
	return ExtractSliceWithShape(source, offsets, sizes, strides, result)
}

// ExtractSliceRankReduced is like ExtractSlice but produces the canonical
// rank-reduced result shape for the desired rank: static unit axes are
// dropped from the inferred shape, leading ones first, until the rank
// matches.
func ExtractSliceRankReduced(source *Node, offsets, sizes, strides []DimExpr, desiredRank int) *Node {
	source.AssertValid()
	checkSliceArgs("ExtractSliceRankReduced", source.Rank(), offsets, sizes, strides)
	staticSizes, _ := splitDims(sizes)
	result := shapeinference.RankReducedSliceResultShape(source.Shape(), staticSizes, desiredRank)
	return ExtractSliceWithShape(source, offsets, sizes, strides, result)
}

// ExtractSliceWithShape is like ExtractSlice but with a declared result
// shape, which may be a rank-reduced version of the inferred one: static
// unit axes of the window dropped. Node.Verify checks the declared shape.
func ExtractSliceWithShape(source *Node, offsets, sizes, strides []DimExpr, result shapes.Shape) *Node {
	source.AssertValid()
	checkSliceArgs("ExtractSliceWithShape", source.Rank(), offsets, sizes, strides)
	operands, staticOffsets, staticSizes, staticStrides := buildSliceOperands([]*Node{source}, offsets, sizes, strides)
	inputs := &nodeInputsExtractSlice{
		staticOffsets: staticOffsets,
		staticSizes:   staticSizes,
		staticStrides: staticStrides,
	}
	return source.graph.newNode(result, inputs, operands)
}

// InsertSlice writes source into the rectangular window of dest described by
// offsets, sizes and strides, producing a tensor of dest's shape. dest is
// not modified: the result is a new value. The source shape must match the
// window, up to rank reduction; see Node.Verify.
func InsertSlice(source, dest *Node, offsets, sizes, strides []DimExpr) *Node {
	source.AssertValid()
	dest.AssertValid()
	checkSliceArgs("InsertSlice", dest.Rank(), offsets, sizes, strides)
	operands, staticOffsets, staticSizes, staticStrides := buildSliceOperands([]*Node{source, dest}, offsets, sizes, strides)
	inputs := &nodeInputsInsertSlice{
		staticOffsets: staticOffsets,
		staticSizes:   staticSizes,
		staticStrides: staticStrides,
	}
	return source.graph.newNode(dest.Shape(), inputs, operands)
}

// ParallelInsertSlice is InsertSlice for parallel combining contexts: each
// participant writes a disjoint window of dest and the result value stands
// for dest with all windows updated. It verifies exactly like InsertSlice.
func ParallelInsertSlice(source, dest *Node, offsets, sizes, strides []DimExpr) *Node {
	source.AssertValid()
	dest.AssertValid()
	checkSliceArgs("ParallelInsertSlice", dest.Rank(), offsets, sizes, strides)
	operands, staticOffsets, staticSizes, staticStrides := buildSliceOperands([]*Node{source, dest}, offsets, sizes, strides)
	inputs := &nodeInputsParallelInsertSlice{
		staticOffsets: staticOffsets,
		staticSizes:   staticSizes,
		staticStrides: staticStrides,
	}
	return source.graph.newNode(dest.Shape(), inputs, operands)
}

// Pad grows source by low[axis] elements before and high[axis] elements
// after each axis, filling the new elements with padValue (a scalar of
// source's element type). The result shape is inferred: per axis
// source+low+high, dynamic if any term is dynamic. nofold marks the pad as a
// deliberate buffer-allocation point that folds must not remove even when
// the padding turns out to be zero.
func Pad(source *Node, low, high []DimExpr, padValue *Node, nofold bool) *Node {
	source.AssertValid()
	padValue.AssertValid()
	return PadGenerated(source, low, high, nofold, func([]*Node) *Node { return padValue })
}

// PadWithShape is like Pad but with a declared result shape, which may
// refine dynamic axes of the inferred one with static extents.
func PadWithShape(result shapes.Shape, source *Node, low, high []DimExpr, padValue *Node, nofold bool) *Node {
	source.AssertValid()
	padValue.AssertValid()
	n := Pad(source, low, high, padValue, nofold)
	n.shape = result
	return n
}

// PadGenerated is like Pad but the fill value is computed per coordinate by
// body, called once with the region's coordinate arguments to build the
// element expression.
func PadGenerated(source *Node, low, high []DimExpr, nofold bool, body func(coordinates []*Node) *Node) *Node {
	source.AssertValid()
	if body == nil {
		exceptions.Panicf("PadGenerated: body is nil")
	}
	rank := source.Rank()
	if len(low) != rank || len(high) != rank {
		exceptions.Panicf("Pad: low/high must have one entry per axis (%d), got %d/%d",
			rank, len(low), len(high))
	}
	staticLow, dynLow := splitDims(low)
	staticHigh, dynHigh := splitDims(high)
	result := shapeinference.PadResultShape(source.Shape(), staticLow, staticHigh)

	g := source.graph
	region := g.newRegion(rank)
	region.setYield(body(region.Args()))

	operands := make([]*Node, 0, 1+len(dynLow)+len(dynHigh))
	operands = append(operands, source)
	operands = append(operands, dynLow...)
	operands = append(operands, dynHigh...)
	inputs := &nodeInputsPad{staticLow: staticLow, staticHigh: staticHigh, nofold: nofold}
	n := g.newNode(result, inputs, operands)
	n.region = region
	return n
}

// numDynamic counts the DynamicSize sentinels of a static list, which is the
// number of operands the corresponding dynamic segment holds.
func numDynamic(statics []int64) int {
	return xslices.Count(statics, func(value int64) bool { return value == shapes.DynamicSize })
}

// sliceStatics returns the static offsets/sizes/strides of a slice node and
// the operand index where the dynamic segments start.
func (n *Node) sliceStatics() (staticOffsets, staticSizes, staticStrides []int64, dynBase int) {
	switch inputs := n.inputs.(type) {
	case *nodeInputsExtractSlice:
		return inputs.staticOffsets, inputs.staticSizes, inputs.staticStrides, 1
	case *nodeInputsInsertSlice:
		return inputs.staticOffsets, inputs.staticSizes, inputs.staticStrides, 2
	case *nodeInputsParallelInsertSlice:
		return inputs.staticOffsets, inputs.staticSizes, inputs.staticStrides, 2
	}
	exceptions.Panicf("node %s is not a slice operation", n.Type())
	return nil, nil, nil, 0
}

// StaticOffsets returns the static offsets of a slice node, with DynamicSize
// marking the dynamic entries. The returned slice is owned by the node.
func (n *Node) StaticOffsets() []int64 {
	staticOffsets, _, _, _ := n.sliceStatics()
	return staticOffsets
}

// StaticSizes returns the static sizes of a slice node, with DynamicSize
// marking the dynamic entries. The returned slice is owned by the node.
func (n *Node) StaticSizes() []int64 {
	_, staticSizes, _, _ := n.sliceStatics()
	return staticSizes
}

// StaticStrides returns the static strides of a slice node, with DynamicSize
// marking the dynamic entries. The returned slice is owned by the node.
func (n *Node) StaticStrides() []int64 {
	_, _, staticStrides, _ := n.sliceStatics()
	return staticStrides
}

// MixedOffsets returns the offsets of a slice node as DimExpr values, with
// the dynamic entries resolved to their operand nodes.
func (n *Node) MixedOffsets() []DimExpr {
	staticOffsets, _, _, dynBase := n.sliceStatics()
	return mergeDims(staticOffsets, n.inputNodes[dynBase:dynBase+numDynamic(staticOffsets)])
}

// MixedSizes returns the sizes of a slice node as DimExpr values, with the
// dynamic entries resolved to their operand nodes.
func (n *Node) MixedSizes() []DimExpr {
	staticOffsets, staticSizes, _, dynBase := n.sliceStatics()
	base := dynBase + numDynamic(staticOffsets)
	return mergeDims(staticSizes, n.inputNodes[base:base+numDynamic(staticSizes)])
}

// MixedStrides returns the strides of a slice node as DimExpr values, with
// the dynamic entries resolved to their operand nodes.
func (n *Node) MixedStrides() []DimExpr {
	staticOffsets, staticSizes, staticStrides, dynBase := n.sliceStatics()
	base := dynBase + numDynamic(staticOffsets) + numDynamic(staticSizes)
	return mergeDims(staticStrides, n.inputNodes[base:base+numDynamic(staticStrides)])
}

// Dest returns the destination operand of a destination-passing-style node:
// Insert, InsertSlice, ParallelInsertSlice and Scatter all write into a dest
// tensor and produce a value of its shape. It panics for other node types.
func (n *Node) Dest() *Node {
	switch n.Type() {
	case OpTypeInsert, OpTypeInsertSlice, OpTypeParallelInsertSlice, OpTypeScatter:
		return n.inputNodes[1]
	}
	exceptions.Panicf("node %s has no destination operand", n.Type())
	return nil
}

// IsDestinationStyle returns whether the node writes into a destination
// operand; see Dest.
func (n *Node) IsDestinationStyle() bool {
	switch n.Type() {
	case OpTypeInsert, OpTypeInsertSlice, OpTypeParallelInsertSlice, OpTypeScatter:
		return true
	}
	return false
}

// HasUnitStrides returns whether every stride of the slice node is the
// static value 1.
func (n *Node) HasUnitStrides() bool {
	return xslices.All(n.MixedStrides(), func(stride DimExpr) bool { return stride.IsConstant(1) })
}

// IsSameSliceAs compares the offsets, sizes and strides of two slice nodes
// for syntactic equality: equal statics, same nodes for dynamics.
func (n *Node) IsSameSliceAs(o *Node) bool {
	return sameDimExprs(n.MixedOffsets(), o.MixedOffsets()) &&
		sameDimExprs(n.MixedSizes(), o.MixedSizes()) &&
		sameDimExprs(n.MixedStrides(), o.MixedStrides())
}

// DroppedDims returns the set of window axes a rank-reduced ExtractSlice
// dropped from its result. It is empty for non-rank-reduced slices.
func (n *Node) DroppedDims() types.Set[int] {
	staticSizes := n.StaticSizes()
	expected := shapeinference.SliceResultShape(n.Source().Shape(), staticSizes)
	dropped, ok := shapeinference.ComputeRankReductionMask(expected.Dimensions, n.shape.Dimensions)
	if !ok {
		exceptions.Panicf("DroppedDims: node #%d has result %s which is not a rank-reduction of %s",
			n.id, n.shape, expected)
	}
	return dropped
}

// Pad accessors.

func (n *Node) padInputs() *nodeInputsPad {
	inputs, ok := n.inputs.(*nodeInputsPad)
	if !ok {
		exceptions.Panicf("node %s is not a Pad operation", n.Type())
	}
	return inputs
}

// StaticLowPad returns the static before-padding amounts of a Pad node, with
// DynamicSize marking the dynamic entries.
func (n *Node) StaticLowPad() []int64 { return n.padInputs().staticLow }

// StaticHighPad returns the static after-padding amounts of a Pad node, with
// DynamicSize marking the dynamic entries.
func (n *Node) StaticHighPad() []int64 { return n.padInputs().staticHigh }

// MixedLowPad returns the before-padding amounts of a Pad node as DimExpr
// values, with the dynamic entries resolved to their operand nodes.
func (n *Node) MixedLowPad() []DimExpr {
	inputs := n.padInputs()
	return mergeDims(inputs.staticLow, n.inputNodes[1:1+numDynamic(inputs.staticLow)])
}

// MixedHighPad returns the after-padding amounts of a Pad node as DimExpr
// values, with the dynamic entries resolved to their operand nodes.
func (n *Node) MixedHighPad() []DimExpr {
	inputs := n.padInputs()
	base := 1 + numDynamic(inputs.staticLow)
	return mergeDims(inputs.staticHigh, n.inputNodes[base:base+numDynamic(inputs.staticHigh)])
}

// Nofold returns whether the Pad node is marked as a deliberate
// buffer-allocation point that folds must not remove.
func (n *Node) Nofold() bool { return n.padInputs().nofold }

// HasZeroLowPad returns whether every before-padding amount is the static
// value 0.
func (n *Node) HasZeroLowPad() bool {
	return xslices.All(n.MixedLowPad(), func(pad DimExpr) bool { return pad.IsConstant(0) })
}

// HasZeroHighPad returns whether every after-padding amount is the static
// value 0.
func (n *Node) HasZeroHighPad() bool {
	return xslices.All(n.MixedHighPad(), func(pad DimExpr) bool { return pad.IsConstant(0) })
}

// PaddedDims returns the axes of a Pad node with a padding amount not known
// to be zero: dynamic amounts count as padded.
func (n *Node) PaddedDims() types.Set[int] {
	padded := types.MakeSet[int]()
	mark := func(amounts []DimExpr) {
		for axis, amount := range amounts {
			if !amount.IsConstant(0) {
				padded.Insert(axis)
			}
		}
	}
	mark(n.MixedLowPad())
	mark(n.MixedHighPad())
	return padded
}

// ConstantPaddingValue returns the fill value of a Pad node if it is the
// same at every coordinate: the region yields a constant, or a value not
// depending on the coordinates. It returns (nil, false) otherwise.
func (n *Node) ConstantPaddingValue() (*Node, bool) {
	n.padInputs()
	return n.region.ConstantYield()
}
