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
	"github.com/gomlx/tensorir/types/shapes"
)

// Fold tries to replace the node with a simpler value: an existing node or a
// freshly materialized constant. It returns the replacement and true on
// success, or (nil, false) when nothing folds. Folding never changes
// observable semantics.
//
// Fold only computes the replacement. Use Canonicalize (or a Rewriter) to
// substitute it into the graph.
func Fold(n *Node) (*Node, bool) {
	n.AssertValid()
	return foldNode(NewRewriter(n.graph), n)
}

// foldNode dispatches to the per-operation folders. A folder may return the
// node itself to signal an in-place fold (performed through rw).
func foldNode(rw *Rewriter, n *Node) (*Node, bool) {
	switch n.Type() {
	case OpTypeCast:
		return foldCast(n)
	case OpTypeCollapseShape:
		return foldReassociative(n, OpTypeExpandShape)
	case OpTypeDim:
		return foldDim(n)
	case OpTypeExpandShape:
		return foldReassociative(n, OpTypeCollapseShape)
	case OpTypeExtract:
		return foldExtract(n)
	case OpTypeExtractSlice:
		return foldExtractSlice(n)
	case OpTypeInsert:
		return foldInsert(n)
	case OpTypeInsertSlice:
		return foldInsertSlice(rw, n)
	case OpTypePad:
		return foldPad(n)
	case OpTypeRank:
		return foldRank(n)
	case OpTypeReshape:
		return foldReshape(n)
	case OpTypeSplat:
		return foldSplat(n)
	}
	return nil, false
}

// foldCast drops casts to the very same type.
func foldCast(n *Node) (*Node, bool) {
	source := n.Source()
	if source.Shape().Equal(n.shape) {
		return source, true
	}
	return nil, false
}

// foldDim resolves a dim with a constant axis: to a constant when the extent
// is static, or to the extent operand of a producer that carries one (Empty,
// Generate, non-rank-reduced ExtractSlice).
func foldDim(n *Node) (*Node, bool) {
	source := n.Source()
	axis64, ok := n.inputNodes[1].ConstantIndexValue()
	if !ok {
		return nil, false
	}
	if !source.Shape().IsRanked() {
		return nil, false
	}
	axis := int(axis64)
	if axis < 0 || axis >= source.Rank() {
		return nil, false
	}
	if source.Shape().IsStaticDim(axis) {
		return ConstantIndex(n.graph, int64(source.Shape().Dim(axis))), true
	}

	switch source.Type() {
	case OpTypeEmpty, OpTypeGenerate:
		// Operands are the extents of the dynamic axes, in order.
		dynIdx := 0
		for a := 0; a < axis; a++ {
			if source.Shape().IsDynamicDim(a) {
				dynIdx++
			}
		}
		return source.inputNodes[dynIdx], true
	case OpTypeExtractSlice:
		// For a non-rank-reduced slice the extent of each axis is its size.
		if source.Rank() != len(source.StaticSizes()) {
			break
		}
		size := source.MixedSizes()[axis]
		if size.IsStatic() {
			return ConstantIndex(n.graph, size.Static()), true
		}
		return size.Node(), true
	}
	return nil, false
}

// flattenIndex converts per-axis coordinates into a row-major flat index,
// checking bounds. It requires a fully static shape.
func flattenIndex(shape shapes.Shape, coordinates []int64) (flat int64, ok bool) {
	if !shape.FullyStatic() {
		return 0, false
	}
	for axis, coord := range coordinates {
		dim := int64(shape.Dim(axis))
		if coord < 0 || coord >= dim {
			return 0, false
		}
		flat = flat*dim + coord
	}
	return flat, true
}

// constantCoordinates resolves the coordinate operands to compile-time
// values, or fails.
func constantCoordinates(coordinates []*Node) ([]int64, bool) {
	values := make([]int64, len(coordinates))
	for ii, coord := range coordinates {
		value, ok := coord.ConstantIndexValue()
		if !ok {
			return nil, false
		}
		values[ii] = value
	}
	return values, true
}

// foldExtract reads through value-producing sources: the scalar of a splat,
// an element of a FromElements or of a dense constant at constant
// coordinates.
func foldExtract(n *Node) (*Node, bool) {
	source := n.Source()
	if source.Type() == OpTypeSplat {
		return source.Source(), true
	}
	if literal := source.ConstantLiteral(); literal != nil && literal.IsSplat() {
		return Constant(n.graph, literal.SplatElement()), true
	}
	coordinates, ok := constantCoordinates(n.inputNodes[1:])
	if !ok {
		return nil, false
	}
	flat, ok := flattenIndex(source.Shape(), coordinates)
	if !ok {
		return nil, false
	}
	if source.Type() == OpTypeFromElements {
		return source.inputNodes[flat], true
	}
	if literal := source.ConstantLiteral(); literal != nil {
		return Constant(n.graph, literal.Element(int(flat))), true
	}
	return nil, false
}

// isIdentitySlice returns whether a slice node covers its whole operand:
// zero offsets, unit strides and sizes equal to the operand's extents.
// operand is the tensor being windowed (source for extract, dest for
// insert).
func isIdentitySlice(n, operand *Node) bool {
	shape := operand.Shape()
	if !shape.IsRanked() {
		return false
	}
	offsets, sizes, strides := n.MixedOffsets(), n.MixedSizes(), n.MixedStrides()
	if len(offsets) != shape.Rank() {
		return false
	}
	for axis := range offsets {
		if !offsets[axis].IsConstant(0) || !strides[axis].IsConstant(1) {
			return false
		}
		if shape.IsDynamicDim(axis) || !sizes[axis].IsConstant(int64(shape.Dim(axis))) {
			return false
		}
	}
	return true
}

func foldExtractSlice(n *Node) (*Node, bool) {
	source := n.Source()
	// A slice of a splat constant is a smaller splat.
	if literal := source.ConstantLiteral(); literal != nil && literal.IsSplat() && n.shape.FullyStatic() {
		return Constant(n.graph, literal.ResizeSplat(n.shape)), true
	}
	// Whole-tensor slice of the same type.
	if source.Shape().Equal(n.shape) && isIdentitySlice(n, source) {
		return source, true
	}
	// Round-trip: extracting the slice an InsertSlice just wrote yields the
	// inserted value.
	if source.Type() == OpTypeInsertSlice && n.IsSameSliceAs(source) &&
		source.inputNodes[0].Shape().Equal(n.shape) {
		return source.inputNodes[0], true
	}
	return nil, false
}

func foldInsert(n *Node) (*Node, bool) {
	value, dest := n.inputNodes[0], n.inputNodes[1]
	valueLiteral := value.ConstantLiteral()
	destLiteral := dest.ConstantLiteral()
	if valueLiteral != nil && destLiteral != nil && destLiteral.IsSplat() &&
		valueLiteral.SameElements(destLiteral.SplatElement()) {
		return dest, true
	}
	return nil, false
}

func foldInsertSlice(rw *Rewriter, n *Node) (*Node, bool) {
	source, dest := n.inputNodes[0], n.inputNodes[1]
	// Whole-tensor insert of a same-typed value.
	if source.Shape().FullyStatic() && n.shape.FullyStatic() &&
		source.Shape().Equal(n.shape) && isIdentitySlice(n, dest) {
		return source, true
	}
	// Two consecutive inserts into the same window: the first is dead, write
	// over its destination directly. This is an in-place fold.
	if dest.Type() == OpTypeInsertSlice &&
		dest.inputNodes[0].Shape().Equal(source.Shape()) && dest.IsSameSliceAs(n) {
		rw.UpdateOperand(n, 1, dest.Dest())
		return n, true
	}
	// Round-trip: re-inserting a slice where it was extracted from is a
	// no-op.
	if source.Type() == OpTypeExtractSlice && source.Source() == dest && source.IsSameSliceAs(n) {
		return dest, true
	}
	return nil, false
}

func foldPad(n *Node) (*Node, bool) {
	source := n.Source()
	if n.shape.FullyStatic() && n.shape.Equal(source.Shape()) && !n.Nofold() {
		return source, true
	}
	return nil, false
}

func foldRank(n *Node) (*Node, bool) {
	source := n.Source()
	if !source.Shape().IsRanked() {
		return nil, false
	}
	return ConstantIndex(n.graph, int64(source.Rank())), true
}

// foldReshape drops reshapes to the very same type.
func foldReshape(n *Node) (*Node, bool) {
	source := n.Source()
	if source.Shape().IsRanked() && source.Shape().Equal(n.shape) {
		return source, true
	}
	return nil, false
}

// foldReassociative cancels a collapse of an expand (and vice versa) when
// the round trip reproduces the original type.
func foldReassociative(n *Node, inverse OpType) (*Node, bool) {
	source := n.Source()
	if source.Type() != inverse {
		return nil, false
	}
	if source.Source().Shape().Equal(n.shape) {
		return source.Source(), true
	}
	return nil, false
}

func foldSplat(n *Node) (*Node, bool) {
	literal := n.Source().ConstantLiteral()
	if literal == nil {
		return nil, false
	}
	return Constant(n.graph, literal.ResizeSplat(n.shape)), true
}
