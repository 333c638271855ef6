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
)

// ReifyResultShape returns one DimExpr per axis of n's result: a static
// extent where the shape is static, and a scalar Int64 node computing the
// runtime extent where it is dynamic. Ops that carry their extents as
// operands (Empty, Generate) or in their size lists (ExtractSlice) hand
// those out directly; destination-style ops read from their destination;
// everything else falls back to a Dim node on the result itself.
//
// n must be ranked.
func ReifyResultShape(n *Node) []DimExpr {
	n.AssertValid()
	if !n.Shape().IsRanked() {
		exceptions.Panicf("ReifyResultShape requires a ranked node, got #%d (%s) with shape %s",
			n.Id(), n.Type(), n.Shape())
	}
	switch n.Type() {
	case OpTypeEmpty, OpTypeGenerate:
		return dimExprsFromShape(n.Shape(), n.inputNodes)
	case OpTypeExtractSlice:
		sizes := n.MixedSizes()
		dropped := n.DroppedDims()
		result := make([]DimExpr, 0, n.Rank())
		for windowAxis, size := range sizes {
			if dropped.Has(windowAxis) {
				continue
			}
			result = append(result, size)
		}
		return result
	case OpTypeInsertSlice, OpTypeParallelInsertSlice, OpTypeScatter:
		return reifyFromValue(n.Dest())
	case OpTypeCast:
		// Dynamic result axes whose operand axis is static can still be
		// answered statically.
		source := n.Source()
		result := make([]DimExpr, n.Rank())
		for axis := range result {
			switch {
			case n.Shape().IsStaticDim(axis):
				result[axis] = StaticDim(int64(n.Shape().Dim(axis)))
			case source.Shape().IsRanked() && source.Shape().IsStaticDim(axis):
				result[axis] = StaticDim(int64(source.Shape().Dim(axis)))
			default:
				result[axis] = DynamicDim(Dim(n, axis))
			}
		}
		return result
	default:
		return reifyFromValue(n)
	}
}

// reifyFromValue covers any ranked value: static extents directly, Dim nodes
// for the rest.
func reifyFromValue(n *Node) []DimExpr {
	result := make([]DimExpr, n.Rank())
	for axis := range result {
		if n.Shape().IsStaticDim(axis) {
			result[axis] = StaticDim(int64(n.Shape().Dim(axis)))
		} else {
			result[axis] = DynamicDim(Dim(n, axis))
		}
	}
	return result
}

// DestinationOperand returns the operand tied to n's result under the
// destination-passing-style protocol, or ok=false when n has no tied
// destination.
func DestinationOperand(n *Node) (dest *Node, ok bool) {
	if !n.IsDestinationStyle() {
		return nil, false
	}
	return n.Dest(), true
}

// OrCreateDestination returns a tensor usable as an in-place destination
// holding n's result shape: the tied destination for destination-style ops,
// and a fresh Empty of the reified result shape otherwise.
func OrCreateDestination(n *Node) *Node {
	if dest, ok := DestinationOperand(n); ok {
		return dest
	}
	// A reified extent can be static even on a declared-dynamic axis; the
	// empty tensor still needs an extent operand there.
	mixed := ReifyResultShape(n)
	var extents []*Node
	for axis, e := range mixed {
		if !n.Shape().IsDynamicDim(axis) {
			continue
		}
		if e.IsStatic() {
			extents = append(extents, ConstantIndex(n.graph, e.Static()))
		} else {
			extents = append(extents, e.Node())
		}
	}
	return Empty(n.graph, n.Shape(), extents...)
}
