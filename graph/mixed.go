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

	"github.com/gomlx/exceptions"
	"github.com/gomlx/tensorir/types/shapes"
)

// DimExpr is either a compile-time integer or a node computing one at
// runtime. Slice offsets, sizes and strides, padding amounts and tensor
// extents are all lists of DimExpr: the static entries go into the node's
// attributes and the dynamic entries become extra operands.
//
// The zero DimExpr is the static value 0.
type DimExpr struct {
	static int64
	node   *Node
}

// StaticDim returns a DimExpr holding a compile-time value.
func StaticDim(value int64) DimExpr {
	return DimExpr{static: value}
}

// DynamicDim returns a DimExpr computed at runtime by the given node. The
// node must produce a scalar integer.
func DynamicDim(node *Node) DimExpr {
	if node == nil {
		exceptions.Panicf("DynamicDim: node is nil")
	}
	return DimExpr{static: shapes.DynamicSize, node: node}
}

// IsStatic returns whether the expression is a compile-time value.
func (e DimExpr) IsStatic() bool { return e.node == nil }

// Static returns the compile-time value. It panics for dynamic expressions.
func (e DimExpr) Static() int64 {
	if e.node != nil {
		exceptions.Panicf("DimExpr.Static() called on dynamic expression %s", e)
	}
	return e.static
}

// Node returns the node computing the expression at runtime, or nil for
// static expressions.
func (e DimExpr) Node() *Node { return e.node }

// ConstantValue returns the value of the expression if it is known at
// compile time: either the expression is static, or its node is a constant
// scalar integer.
func (e DimExpr) ConstantValue() (int64, bool) {
	if e.node == nil {
		return e.static, true
	}
	return e.node.ConstantIndexValue()
}

// IsConstant returns whether the expression has the given compile-time
// value.
func (e DimExpr) IsConstant(value int64) bool {
	got, ok := e.ConstantValue()
	return ok && got == value
}

// Same compares two expressions for syntactic equality: equal static values,
// or the very same node.
func (e DimExpr) Same(o DimExpr) bool {
	if e.node != nil || o.node != nil {
		return e.node == o.node
	}
	return e.static == o.static
}

// String implements the fmt.Stringer interface.
func (e DimExpr) String() string {
	if e.node != nil {
		return fmt.Sprintf("#%d", e.node.id)
	}
	return fmt.Sprintf("%d", e.static)
}

// sameDimExprs compares two expression lists element-wise with Same.
func sameDimExprs(a, b []DimExpr) bool {
	if len(a) != len(b) {
		return false
	}
	for ii := range a {
		if !a[ii].Same(b[ii]) {
			return false
		}
	}
	return true
}

// splitDims separates a mixed list into the static values (with DynamicSize
// marking the dynamic positions) and the dynamic nodes, in order. It is the
// encoding stored on slice and pad nodes.
func splitDims(mixed []DimExpr) (statics []int64, dynamics []*Node) {
	statics = make([]int64, len(mixed))
	for ii, e := range mixed {
		if e.IsStatic() {
			statics[ii] = e.static
			continue
		}
		statics[ii] = shapes.DynamicSize
		dynamics = append(dynamics, e.node)
	}
	return
}

// mergeDims is the inverse of splitDims. It panics if the number of
// DynamicSize sentinels in statics doesn't match the number of dynamic
// nodes.
func mergeDims(statics []int64, dynamics []*Node) []DimExpr {
	mixed := make([]DimExpr, len(statics))
	next := 0
	for ii, value := range statics {
		if value == shapes.DynamicSize {
			if next >= len(dynamics) {
				exceptions.Panicf("mergeDims: %d dynamic values given, but statics=%v has more DynamicSize entries",
					len(dynamics), statics)
			}
			mixed[ii] = DynamicDim(dynamics[next])
			next++
			continue
		}
		mixed[ii] = StaticDim(value)
	}
	if next != len(dynamics) {
		exceptions.Panicf("mergeDims: %d dynamic values given, but statics=%v only has %d DynamicSize entries",
			len(dynamics), statics, next)
	}
	return mixed
}

// staticDims converts a list of compile-time values into DimExpr form.
func staticDims(values ...int64) []DimExpr {
	mixed := make([]DimExpr, len(values))
	for ii, value := range values {
		mixed[ii] = StaticDim(value)
	}
	return mixed
}

// canonicalizeDims replaces dynamic entries whose node is a constant scalar
// integer with the static value. It reports whether anything changed.
func canonicalizeDims(mixed []DimExpr) (out []DimExpr, changed bool) {
	out = make([]DimExpr, len(mixed))
	for ii, e := range mixed {
		if e.IsStatic() {
			out[ii] = e
			continue
		}
		if value, ok := e.node.ConstantIndexValue(); ok {
			out[ii] = StaticDim(value)
			changed = true
			continue
		}
		out[ii] = e
	}
	return
}

// dimExprsFromShape returns the extents of a ranked shape as DimExpr values,
// with dynamicExtents filling the dynamic axes in order.
func dimExprsFromShape(shape shapes.Shape, dynamicExtents []*Node) []DimExpr {
	mixed := make([]DimExpr, shape.Rank())
	next := 0
	for axis, dim := range shape.Dimensions {
		if dim == shapes.DynamicSize {
			mixed[axis] = DynamicDim(dynamicExtents[next])
			next++
			continue
		}
		mixed[axis] = StaticDim(int64(dim))
	}
	return mixed
}
