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
	"slices"

	"github.com/gomlx/tensorir/shapeinference"
	"github.com/gomlx/tensorir/types/shapes"
)

// canonicalizationPatterns maps each operation type to its rewrite patterns,
// keyed by the node type a pattern matches on (its root). Patterns preserve
// semantics and move the IR towards more static shape information and fewer
// operations.
var canonicalizationPatterns map[OpType][]pattern

func init() {
	canonicalizationPatterns = map[OpType][]pattern{
		OpTypeCast: {
			{"chainedCast", chainedCast},
			{"castOfExtractSlice", castOfExtractSlice},
			{"castOfEmpty", castOfEmpty},
			{"castOfPad", castOfPad},
		},
		OpTypeDim: {
			{"dimOfCast", dimOfCast},
			{"dimOfDestinationStyleOp", dimOfDestinationStyleOp},
		},
		OpTypeEmpty: {
			{"emptyStaticShapeDims", emptyStaticShapeDims},
		},
		OpTypeExtract: {
			{"extractFromCast", extractFromCast},
			{"extractFromGenerate", extractFromGenerate},
		},
		OpTypeExtractSlice: {
			{"extractSliceOfEmpty", extractSliceOfEmpty},
			{"extractSliceConstantArguments", extractSliceConstantArguments},
			{"extractSliceOfCast", extractSliceOfCast},
			{"extractSliceOfConstant", extractSliceOfConstant},
		},
		OpTypeGenerate: {
			{"generateStaticShapeDims", generateStaticShapeDims},
		},
		OpTypeInsertSlice: {
			{"insertSliceConstantArguments", insertSliceConstantArguments},
			{"insertSliceOfCasts", insertSliceOfCasts},
			{"insertSliceSourceCast", insertSliceSourceCast},
		},
		OpTypeParallelInsertSlice: {
			{"insertSliceConstantArguments", insertSliceConstantArguments},
			{"insertSliceOfCasts", insertSliceOfCasts},
			{"insertSliceSourceCast", insertSliceSourceCast},
		},
		OpTypePad: {
			{"padStaticZeroPadding", padStaticZeroPadding},
			{"padConstantArguments", padConstantArguments},
			{"padOfCast", padOfCast},
			{"padOrthogonalPaddings", padOrthogonalPaddings},
		},
		OpTypeCollapseShape: {
			{"reshapeOfEmpty", reshapeOfEmpty},
			{"reassociativeOfSplatConstant", reassociativeOfSplatConstant},
			{"reassociativeOfFromElements", reassociativeOfFromElements},
			{"collapseOfCast", collapseOfCast},
		},
		OpTypeExpandShape: {
			{"reshapeOfEmpty", reshapeOfEmpty},
			{"reassociativeOfSplatConstant", reassociativeOfSplatConstant},
			{"reassociativeOfFromElements", reassociativeOfFromElements},
		},
	}
}

// chainedCast merges two chained casts into one when the intermediate type
// adds no information of its own: the three-way join of source, intermediate
// and result types must equal the direct join of source and result. When the
// intermediate carries static information absent from both endpoints,
// merging would discard a runtime-checked fact and the pattern refuses.
func chainedCast(rw *Rewriter, n *Node) bool {
	operandCast := n.Source()
	if operandCast.Type() != OpTypeCast {
		return false
	}
	sourceShape := operandCast.Source().Shape()
	intermediateShape := operandCast.Shape()
	resultShape := n.Shape()

	inner, ok := shapes.Join(sourceShape, intermediateShape)
	if !ok {
		return false
	}
	firstJoin, ok := shapes.Join(inner, resultShape)
	if !ok {
		return false
	}
	newJoin, ok := shapes.Join(sourceShape, resultShape)
	if !ok {
		return false
	}
	if !firstJoin.Equal(newJoin) {
		return false
	}
	rw.Replace(n, Cast(operandCast.Source(), resultShape))
	return true
}

// castOfExtractSlice folds a static-information-adding cast into the
// ExtractSlice producing its operand: the slice's static sizes are refined
// from the cast's result type and the slice produces that type directly.
func castOfExtractSlice(rw *Rewriter, n *Node) bool {
	slice := n.Source()
	if slice.Type() != OpTypeExtractSlice || !CanFoldIntoProducerOp(n) || !n.Shape().IsRanked() {
		return false
	}
	sizes := slices.Clone(slice.MixedSizes())
	dropped := slice.DroppedDims()
	resultAxis := 0
	for windowAxis := range sizes {
		if dropped.Has(windowAxis) {
			continue
		}
		if n.Shape().IsStaticDim(resultAxis) {
			sizes[windowAxis] = StaticDim(int64(n.Shape().Dim(resultAxis)))
		}
		resultAxis++
	}
	newSlice := ExtractSliceWithShape(slice.Source(), slice.MixedOffsets(), sizes, slice.MixedStrides(), n.Shape())
	rw.Replace(n, newSlice)
	return true
}

// castOfEmpty folds a static-information-adding cast into the Empty
// producing its operand: the empty tensor takes the cast's result type
// directly, dropping the extent operands of axes that became static.
func castOfEmpty(rw *Rewriter, n *Node) bool {
	empty := n.Source()
	if empty.Type() != OpTypeEmpty || !CanFoldIntoProducerOp(n) || !n.Shape().IsRanked() {
		return false
	}
	var extents []*Node
	dynIdx := 0
	for axis := 0; axis < empty.Rank(); axis++ {
		if empty.Shape().IsStaticDim(axis) {
			continue
		}
		if n.Shape().IsDynamicDim(axis) {
			extents = append(extents, empty.inputNodes[dynIdx])
		}
		dynIdx++
	}
	rw.Replace(n, Empty(n.graph, n.Shape(), extents...))
	return true
}

// castOfPad folds a static-information-preserving cast of a Pad result back
// into the pad, which then produces the cast's type directly.
func castOfPad(rw *Rewriter, n *Node) bool {
	padOp := n.Source()
	if padOp.Type() != OpTypePad || !padOp.HasOneUse() {
		return false
	}
	if !shapes.PreservesStaticInformation(padOp.Shape(), n.Shape()) {
		return false
	}
	newPad := padFromParts(padOp.Source(), padOp.MixedLowPad(), padOp.MixedHighPad(),
		padOp.Nofold(), padOp.Region().Clone(), n.Shape())
	rw.Replace(n, newPad)
	rw.EraseDead(padOp)
	return true
}

// dimOfCast reads the extent through a cast: the cast's operand has the same
// runtime extents.
func dimOfCast(rw *Rewriter, n *Node) bool {
	castOp := n.Source()
	if castOp.Type() != OpTypeCast || !castOp.Source().Shape().IsRanked() {
		return false
	}
	rw.UpdateOperand(n, 0, castOp.Source())
	return true
}

// dimOfDestinationStyleOp reads the extent from the destination operand: a
// destination-passing-style op always produces its destination's shape.
func dimOfDestinationStyleOp(rw *Rewriter, n *Node) bool {
	source := n.Source()
	if !source.IsDestinationStyle() {
		return false
	}
	rw.UpdateOperand(n, 0, source.Dest())
	return true
}

// refineShapeFromConstants moves constant dynamic extents of shape into
// static dimensions, returning the refined shape and the remaining dynamic
// extent operands. ok is false when no extent is constant.
func refineShapeFromConstants(shape shapes.Shape, extents []*Node) (refined shapes.Shape, remaining []*Node, ok bool) {
	mixed := dimExprsFromShape(shape, extents)
	canonical, changed := canonicalizeDims(mixed)
	if !changed {
		return shapes.Shape{}, nil, false
	}
	dims := make([]int, len(canonical))
	for axis, e := range canonical {
		if e.IsStatic() {
			dims[axis] = int(e.Static())
			continue
		}
		dims[axis] = shapes.DynamicSize
		remaining = append(remaining, e.Node())
	}
	return shapes.Make(shape.DType, dims...), remaining, true
}

// emptyStaticShapeDims turns constant extent operands of an Empty into
// static dimensions, casting back to the original type.
func emptyStaticShapeDims(rw *Rewriter, n *Node) bool {
	refined, remaining, ok := refineShapeFromConstants(n.Shape(), n.inputNodes)
	if !ok {
		return false
	}
	newEmpty := Empty(n.graph, refined, remaining...)
	rw.Replace(n, Cast(newEmpty, n.Shape()))
	return true
}

// generateStaticShapeDims turns constant extent operands of a Generate into
// static dimensions, casting back to the original type.
func generateStaticShapeDims(rw *Rewriter, n *Node) bool {
	refined, remaining, ok := refineShapeFromConstants(n.Shape(), n.inputNodes)
	if !ok {
		return false
	}
	newGenerate := generateFromParts(n.graph, refined, remaining, n.Region().Clone())
	rw.Replace(n, Cast(newGenerate, n.Shape()))
	return true
}

// extractFromCast reads the element through a cast: same underlying value,
// same coordinates.
func extractFromCast(rw *Rewriter, n *Node) bool {
	castOp := n.Source()
	if castOp.Type() != OpTypeCast || !castOp.Source().Shape().IsRanked() {
		return false
	}
	rw.UpdateOperand(n, 0, castOp.Source())
	return true
}

// extractFromGenerate inlines the generator body at the extract's
// coordinates. Only fires when the extract is the generate's single use, so
// the generator isn't duplicated.
func extractFromGenerate(rw *Rewriter, n *Node) bool {
	generate := n.Source()
	if generate.Type() != OpTypeGenerate || !generate.HasOneUse() {
		return false
	}
	value := generate.Region().Inline(n.inputNodes[1:])
	rw.Replace(n, value)
	rw.EraseDead(generate)
	return true
}

// extractSliceOfEmpty replaces a slice of an empty tensor with a smaller
// empty tensor: the slice's sizes are exactly the new extents.
func extractSliceOfEmpty(rw *Rewriter, n *Node) bool {
	empty := n.Source()
	if empty.Type() != OpTypeEmpty {
		return false
	}
	sizes := n.MixedSizes()
	dropped := n.DroppedDims()
	var extents []*Node
	resultAxis := 0
	for windowAxis, size := range sizes {
		if dropped.Has(windowAxis) {
			continue
		}
		if n.Shape().IsDynamicDim(resultAxis) {
			if size.IsStatic() {
				extents = append(extents, ConstantIndex(n.graph, size.Static()))
			} else {
				extents = append(extents, size.Node())
			}
		}
		resultAxis++
	}
	rw.Replace(n, Empty(n.graph, n.Shape(), extents...))
	rw.EraseDead(empty)
	return true
}

// reshapeOfEmpty replaces a collapse or expand of an empty tensor with an
// empty tensor of the result shape. Only fires when every dynamic result
// extent is directly one of the empty's extent operands, which holds when
// the reassociation group around each dynamic axis is otherwise all unit
// dimensions.
func reshapeOfEmpty(rw *Rewriter, n *Node) bool {
	empty := n.Source()
	if empty.Type() != OpTypeEmpty {
		return false
	}
	sourceShape := empty.Shape()
	extentOf := func(sourceAxis int) *Node {
		idx := 0
		for axis := 0; axis < sourceAxis; axis++ {
			if sourceShape.IsDynamicDim(axis) {
				idx++
			}
		}
		return empty.inputNodes[idx]
	}
	reassociation := n.Reassociation()
	var extents []*Node
	if n.Type() == OpTypeCollapseShape {
		// Groups list source axes per result axis.
		for resultAxis := 0; resultAxis < n.Rank(); resultAxis++ {
			if n.Shape().IsStaticDim(resultAxis) {
				continue
			}
			dynAxis := -1
			staticProduct := 1
			for _, sourceAxis := range reassociation[resultAxis] {
				if sourceShape.IsDynamicDim(sourceAxis) {
					if dynAxis >= 0 {
						return false
					}
					dynAxis = sourceAxis
				} else {
					staticProduct *= sourceShape.Dim(sourceAxis)
				}
			}
			if dynAxis < 0 || staticProduct != 1 {
				return false
			}
			extents = append(extents, extentOf(dynAxis))
		}
	} else {
		// Groups list result axes per source axis.
		sourceAxisOf := make([]int, n.Rank())
		for sourceAxis, group := range reassociation {
			for _, resultAxis := range group {
				sourceAxisOf[resultAxis] = sourceAxis
			}
		}
		for resultAxis := 0; resultAxis < n.Rank(); resultAxis++ {
			if n.Shape().IsStaticDim(resultAxis) {
				continue
			}
			sourceAxis := sourceAxisOf[resultAxis]
			if !sourceShape.IsDynamicDim(sourceAxis) {
				return false
			}
			for _, sibling := range reassociation[sourceAxis] {
				if sibling == resultAxis {
					continue
				}
				if n.Shape().IsDynamicDim(sibling) || n.Shape().Dim(sibling) != 1 {
					return false
				}
			}
			extents = append(extents, extentOf(sourceAxis))
		}
	}
	rw.Replace(n, Empty(n.graph, n.Shape(), extents...))
	rw.EraseDead(empty)
	return true
}

// extractSliceConstantArguments turns constant dynamic offsets, sizes and
// strides into static ones, rebuilding the slice in its canonical
// rank-reduced form and casting back to the original type.
func extractSliceConstantArguments(rw *Rewriter, n *Node) bool {
	offsets, offsetsChanged := canonicalizeDims(n.MixedOffsets())
	sizes, sizesChanged := canonicalizeDims(n.MixedSizes())
	strides, stridesChanged := canonicalizeDims(n.MixedStrides())
	if !offsetsChanged && !sizesChanged && !stridesChanged {
		return false
	}
	newSlice := ExtractSliceRankReduced(n.Source(), offsets, sizes, strides, n.Rank())
	rw.Replace(n, castTo(newSlice, n.Shape()))
	return true
}

// hasConstantSliceOperand returns whether any dynamic offset/size/stride
// operand of the slice node is a constant. Patterns that rebuild slices
// yield to the constant-argument folder first.
func hasConstantSliceOperand(n *Node) bool {
	_, _, _, dynBase := n.sliceStatics()
	for _, operand := range n.inputNodes[dynBase:] {
		if _, ok := operand.ConstantIndexValue(); ok {
			return true
		}
	}
	return false
}

// extractSliceOfCast folds an information-erasing cast into the slice
// consuming it: slicing the cast source directly preserves more static
// information.
func extractSliceOfCast(rw *Rewriter, n *Node) bool {
	if hasConstantSliceOperand(n) {
		return false
	}
	castSource := foldableCastSource(n.Source())
	if castSource == nil {
		return false
	}
	newSlice := ExtractSliceRankReduced(castSource, n.MixedOffsets(), n.MixedSizes(), n.MixedStrides(), n.Rank())
	rw.Replace(n, castTo(newSlice, n.Shape()))
	return true
}

// extractSliceOfConstant materializes a fully static slice of a dense
// constant as a smaller constant. Opt-in via WithConstantSliceFolding, since
// it duplicates constant data.
func extractSliceOfConstant(rw *Rewriter, n *Node) bool {
	if rw.constantSliceControl == nil {
		return false
	}
	literal := n.Source().ConstantLiteral()
	if literal == nil || literal.IsSplat() {
		// Splat slices fold for free, see foldExtractSlice.
		return false
	}
	if !n.Shape().FullyStatic() || n.Shape().Rank() != n.Source().Rank() {
		return false
	}
	offsets, sizes, strides := n.MixedOffsets(), n.MixedSizes(), n.MixedStrides()
	statics := func(mixed []DimExpr) ([]int64, bool) {
		values := make([]int64, len(mixed))
		for ii, e := range mixed {
			value, ok := e.ConstantValue()
			if !ok {
				return nil, false
			}
			values[ii] = value
		}
		return values, true
	}
	staticOffsets, ok := statics(offsets)
	if !ok {
		return false
	}
	staticSizes, ok := statics(sizes)
	if !ok {
		return false
	}
	staticStrides, ok := statics(strides)
	if !ok {
		return false
	}
	if !rw.constantSliceControl(n) {
		return false
	}
	rw.Replace(n, Constant(n.graph, literal.Slice(staticOffsets, staticSizes, staticStrides)))
	return true
}

// newInsertLike creates an InsertSlice or ParallelInsertSlice matching the
// kind of the template node.
func newInsertLike(template, source, dest *Node, offsets, sizes, strides []DimExpr) *Node {
	if template.Type() == OpTypeParallelInsertSlice {
		return ParallelInsertSlice(source, dest, offsets, sizes, strides)
	}
	return InsertSlice(source, dest, offsets, sizes, strides)
}

// insertSliceConstantArguments turns constant dynamic offsets, sizes and
// strides of an InsertSlice (or ParallelInsertSlice) into static ones. The
// source is cast to the canonical rank-reduced window type when it changes.
func insertSliceConstantArguments(rw *Rewriter, n *Node) bool {
	offsets, offsetsChanged := canonicalizeDims(n.MixedOffsets())
	sizes, sizesChanged := canonicalizeDims(n.MixedSizes())
	strides, stridesChanged := canonicalizeDims(n.MixedStrides())
	if !offsetsChanged && !sizesChanged && !stridesChanged {
		return false
	}
	source, dest := n.inputNodes[0], n.inputNodes[1]
	staticSizes, _ := splitDims(sizes)
	sourceShape := shapeinference.RankReducedSliceResultShape(dest.Shape(), staticSizes, source.Rank())
	toInsert := source
	if !sourceShape.Equal(source.Shape()) {
		toInsert = Cast(source, sourceShape)
	}
	rw.Replace(n, newInsertLike(n, toInsert, dest, offsets, sizes, strides))
	return true
}

// insertSliceOfCasts folds information-erasing casts on the source or
// destination into the insert. When the destination cast is folded the
// result is cast back to the original type.
func insertSliceOfCasts(rw *Rewriter, n *Node) bool {
	if hasConstantSliceOperand(n) {
		return false
	}
	source, dest := n.inputNodes[0], n.inputNodes[1]
	newSource, newDest := source, dest
	if castSource := foldableCastSource(source); castSource != nil {
		newSource = castSource
	}
	if castSource := foldableCastSource(dest); castSource != nil {
		newDest = castSource
	}
	if newSource == source && newDest == dest {
		return false
	}
	// The rebuilt insert must still verify with the refined types.
	staticSizes := n.StaticSizes()
	expected := shapeinference.SliceResultShape(newDest.Shape(), staticSizes)
	if shapeinference.VerifySliceResult(expected, newSource.Shape()) != shapeinference.SliceVerificationOK {
		return false
	}
	replacement := newInsertLike(n, newSource, newDest, n.MixedOffsets(), n.MixedSizes(), n.MixedStrides())
	rw.Replace(n, castTo(replacement, n.Shape()))
	return true
}

// insertSliceSourceCast casts the source of an insert to the more static
// type its size operands imply, exposing the static information to other
// cast patterns.
func insertSliceSourceCast(rw *Rewriter, n *Node) bool {
	source, dest := n.inputNodes[0], n.inputNodes[1]
	sourceShape := source.Shape()
	if !sourceShape.IsRanked() || sourceShape.Rank() != dest.Rank() {
		return false
	}
	newDims := slices.Clone(sourceShape.Dimensions)
	for axis, size := range n.MixedSizes() {
		if value, ok := size.ConstantValue(); ok {
			newDims[axis] = int(value)
		}
	}
	newSourceShape := shapes.Make(sourceShape.DType, newDims...)
	if newSourceShape.Equal(sourceShape) ||
		!shapes.PreservesStaticInformation(sourceShape, newSourceShape) ||
		!AreCastCompatible(sourceShape, newSourceShape) {
		return false
	}
	cast := Cast(source, newSourceShape)
	rw.Replace(n, newInsertLike(n, cast, dest, n.MixedOffsets(), n.MixedSizes(), n.MixedStrides()))
	return true
}

// padStaticZeroPadding removes pads with all-zero padding, leaving a cast to
// the declared result type. nofold pads are deliberate allocation points and
// stay.
func padStaticZeroPadding(rw *Rewriter, n *Node) bool {
	if !n.HasZeroLowPad() || !n.HasZeroHighPad() || n.Nofold() {
		return false
	}
	rw.Replace(n, Cast(n.Source(), n.Shape()))
	return true
}

// padConstantArguments turns constant dynamic low and high pad amounts into
// static ones, recomputing the result type and casting back to the original
// type where it refines.
func padConstantArguments(rw *Rewriter, n *Node) bool {
	low, lowChanged := canonicalizeDims(n.MixedLowPad())
	high, highChanged := canonicalizeDims(n.MixedHighPad())
	if !lowChanged && !highChanged {
		return false
	}
	staticLow, _ := splitDims(low)
	staticHigh, _ := splitDims(high)
	inferred := shapeinference.PadResultShape(n.Source().Shape(), staticLow, staticHigh)
	// Keep the declared extents where inference stays dynamic.
	dims := inferred.Dimensions
	for axis, dim := range dims {
		if dim == shapes.DynamicSize {
			dims[axis] = n.Shape().Dim(axis)
		}
	}
	newPad := padFromParts(n.Source(), low, high, n.Nofold(), n.Region().Clone(),
		shapes.Make(inferred.DType, dims...))
	rw.Replace(n, castTo(newPad, n.Shape()))
	return true
}

// padOfCast folds an information-erasing cast into the pad consuming it,
// recomputing the result type from the cast source's extents.
func padOfCast(rw *Rewriter, n *Node) bool {
	castSource := foldableCastSource(n.Source())
	if castSource == nil {
		return false
	}
	staticLow, staticHigh := n.StaticLowPad(), n.StaticHighPad()
	inferred := shapeinference.PadResultShape(castSource.Shape(), staticLow, staticHigh)
	// Keep the declared extents where inference stays dynamic.
	dims := inferred.Dimensions
	for axis, dim := range dims {
		if dim == shapes.DynamicSize {
			dims[axis] = n.Shape().Dim(axis)
		}
	}
	newResult := shapes.Make(inferred.DType, dims...)
	if newResult.Equal(n.Shape()) {
		rw.UpdateOperand(n, 0, castSource)
		return true
	}
	newPad := padFromParts(castSource, n.MixedLowPad(), n.MixedHighPad(), n.Nofold(),
		n.Region().Clone(), newResult)
	rw.Replace(n, Cast(newPad, n.Shape()))
	return true
}

// constantPadLiteral returns the literal of a pad's fill value when it is a
// materialized constant.
func constantPadLiteral(n *Node) *Literal {
	value, ok := n.ConstantPaddingValue()
	if !ok {
		return nil
	}
	return value.ConstantLiteral()
}

// padOrthogonalPaddings merges a chain of two ExtractSlice/Pad pairs that
// pad disjoint axes into a single pair. Preconditions: the chain is not
// rank-reducing, both slices have unit strides, both pads are high-only with
// the same constant fill value, their padded axes are disjoint, every axis
// has a zero-offset-and-zero-padding pair, and the inner slice spans the
// full extent of every axis padded by the outer pad.
func padOrthogonalPaddings(rw *Rewriter, n *Node) bool {
	innerSlice := n.Source()
	if innerSlice.Type() != OpTypeExtractSlice {
		return false
	}
	outerPad := innerSlice.Source()
	if outerPad.Type() != OpTypePad || outerPad.Nofold() {
		return false
	}
	outerSlice := outerPad.Source()
	if outerSlice.Type() != OpTypeExtractSlice {
		return false
	}

	// Rank-reducing chains don't line their axes up.
	rank := innerSlice.Rank()
	if outerSlice.Source().Rank() != rank || outerPad.Rank() != rank || outerSlice.Rank() != rank {
		return false
	}
	if !innerSlice.HasUnitStrides() || !outerSlice.HasUnitStrides() {
		return false
	}
	if !n.HasZeroLowPad() || !outerPad.HasZeroLowPad() {
		return false
	}
	innerValue := constantPadLiteral(n)
	outerValue := constantPadLiteral(outerPad)
	if innerValue == nil || outerValue == nil || !innerValue.SameElements(outerValue) {
		return false
	}
	innerDims := n.PaddedDims()
	outerDims := outerPad.PaddedDims()
	for axis := range innerDims {
		if outerDims.Has(axis) {
			return false
		}
	}

	// Combine the offsets: per axis take the offset of the pair whose other
	// member is the zero-offset, zero-padding one.
	innerOffsets := innerSlice.MixedOffsets()
	outerOffsets := outerSlice.MixedOffsets()
	newOffsets := make([]DimExpr, rank)
	for axis := 0; axis < rank; axis++ {
		switch {
		case !innerDims.Has(axis) && innerOffsets[axis].IsConstant(0):
			newOffsets[axis] = outerOffsets[axis]
		case !outerDims.Has(axis) && outerOffsets[axis].IsConstant(0):
			newOffsets[axis] = innerOffsets[axis]
		default:
			return false
		}
	}

	// Combine the sizes: axes padded by the outer pad must be spanned fully
	// by the inner slice and take the outer slice's size.
	newSizes := slices.Clone(innerSlice.MixedSizes())
	for axis := range newSizes {
		if !outerDims.Has(axis) {
			continue
		}
		sourceShape := innerSlice.Source().Shape()
		if sourceShape.IsDynamicDim(axis) ||
			!newSizes[axis].IsConstant(int64(sourceShape.Dim(axis))) {
			return false
		}
		newSizes[axis] = outerSlice.MixedSizes()[axis]
	}

	// Combine the high paddings.
	innerHigh := n.MixedHighPad()
	outerHigh := outerPad.MixedHighPad()
	newHigh := make([]DimExpr, rank)
	for axis := 0; axis < rank; axis++ {
		switch {
		case innerDims.Has(axis):
			newHigh[axis] = innerHigh[axis]
		case outerDims.Has(axis):
			newHigh[axis] = outerHigh[axis]
		default:
			newHigh[axis] = StaticDim(0)
		}
	}

	newSlice := ExtractSlice(outerSlice.Source(), newOffsets, newSizes, innerSlice.MixedStrides())
	newPad := padFromParts(newSlice, n.MixedLowPad(), newHigh, n.Nofold(),
		n.Region().Clone(), n.Shape())
	rw.Replace(n, newPad)
	return true
}

// reassociativeOfSplatConstant rewrites a collapse or expand of a splat
// constant as a splat constant of the result type.
func reassociativeOfSplatConstant(rw *Rewriter, n *Node) bool {
	literal := n.Source().ConstantLiteral()
	if literal == nil || !literal.IsSplat() || !n.Shape().FullyStatic() {
		return false
	}
	rw.Replace(n, Constant(n.graph, literal.ResizeSplat(n.Shape())))
	return true
}

// reassociativeOfFromElements rewrites a collapse or expand of a
// FromElements as a FromElements of the result type: reassociation never
// changes the row-major element order.
func reassociativeOfFromElements(rw *Rewriter, n *Node) bool {
	source := n.Source()
	if source.Type() != OpTypeFromElements || !n.Shape().FullyStatic() {
		return false
	}
	rw.Replace(n, FromElements(n.graph, n.Shape(), source.inputNodes...))
	return true
}

// collapseOfCast folds an information-erasing cast into the CollapseShape
// consuming it.
func collapseOfCast(rw *Rewriter, n *Node) bool {
	castSource := foldableCastSource(n.Source())
	if castSource == nil {
		return false
	}
	newResult := shapeinference.CollapsedShape(castSource.Shape(), n.Reassociation())
	if newResult.Equal(n.Shape()) {
		rw.UpdateOperand(n, 0, castSource)
		return true
	}
	newCollapse := CollapseShape(castSource, n.Reassociation())
	rw.Replace(n, Cast(newCollapse, n.Shape()))
	return true
}

// castTo inserts a Cast to target unless n already has that shape.
func castTo(n *Node, target shapes.Shape) *Node {
	if n.Shape().Equal(target) {
		return n
	}
	return Cast(n, target)
}

// padFromParts assembles a Pad node from already split parts and an existing
// (typically cloned) region, with a declared result shape.
func padFromParts(source *Node, low, high []DimExpr, nofold bool, region *Region, result shapes.Shape) *Node {
	staticLow, dynLow := splitDims(low)
	staticHigh, dynHigh := splitDims(high)
	operands := make([]*Node, 0, 1+len(dynLow)+len(dynHigh))
	operands = append(operands, source)
	operands = append(operands, dynLow...)
	operands = append(operands, dynHigh...)
	inputs := &nodeInputsPad{staticLow: staticLow, staticHigh: staticHigh, nofold: nofold}
	n := source.graph.newNode(result, inputs, operands)
	n.region = region
	return n
}

// generateFromParts assembles a Generate node from an existing (typically
// cloned) region.
func generateFromParts(g *Graph, shape shapes.Shape, dynamicExtents []*Node, region *Region) *Node {
	n := g.newNode(shape, &nodeInputsGenerate{}, slices.Clone(dynamicExtents))
	n.region = region
	return n
}
