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

package shapes

// This file holds the shape compatibility predicates and the shape "join"
// used to reason about shape casts: when a cast is redundant, when two chained
// casts can be collapsed, and when doing either would silently drop a runtime
// shape check.

// Compatible returns whether the two shapes can represent the same runtime
// tensor: same element type and, if both are ranked, same rank with each
// dimension either matching statically or dynamic on at least one side.
// An unranked shape is compatible with any shape of the same element type.
func (s Shape) Compatible(s2 Shape) bool {
	if !s.Ok() || !s2.Ok() || s.DType != s2.DType {
		return false
	}
	if s.Unranked || s2.Unranked {
		return true
	}
	if len(s.Dimensions) != len(s2.Dimensions) {
		return false
	}
	for axis, dim := range s.Dimensions {
		dim2 := s2.Dimensions[axis]
		if dim != DynamicSize && dim2 != DynamicSize && dim != dim2 {
			return false
		}
	}
	return true
}

// Join returns the most static shape compatible with both inputs: per axis a
// static dimension wins over a dynamic one. It returns ok=false when the
// shapes cannot represent the same runtime tensor -- different element types,
// different ranks, or an axis with two different static dimensions.
//
// Joining with an unranked shape yields the other shape unchanged.
func Join(s, s2 Shape) (joined Shape, ok bool) {
	if !s.Ok() || !s2.Ok() || s.DType != s2.DType {
		return Invalid(), false
	}
	if s.Unranked {
		return s2.Clone(), true
	}
	if s2.Unranked {
		return s.Clone(), true
	}
	if len(s.Dimensions) != len(s2.Dimensions) {
		return Invalid(), false
	}
	joined = s.Clone()
	for axis, dim := range s.Dimensions {
		dim2 := s2.Dimensions[axis]
		switch {
		case dim == DynamicSize:
			joined.Dimensions[axis] = dim2
		case dim2 == DynamicSize || dim == dim2:
			// Keep dim.
		default:
			return Invalid(), false
		}
	}
	return joined, true
}

// PreservesStaticInformation returns whether target carries at least as much
// static shape information as source: both must be ranked with the same
// element type and rank, every axis must be compatible, and no axis may
// regress from static in source to dynamic in target. The converse,
// dynamic in source refined to static in target, is allowed.
//
// This predicate is directional and deliberately asymmetric: it underlies
// both "a cast from source to target can be folded into its consumer" and,
// with arguments swapped, "a cast can be folded into its producer".
func PreservesStaticInformation(source, target Shape) bool {
	if !source.Ok() || !target.Ok() || source.DType != target.DType {
		return false
	}
	if source.Unranked || target.Unranked {
		return false
	}
	if len(source.Dimensions) != len(target.Dimensions) {
		return false
	}
	for axis, dim := range source.Dimensions {
		targetDim := target.Dimensions[axis]
		if dim != DynamicSize && targetDim == DynamicSize {
			// Static information dropped on this axis.
			return false
		}
		if dim != DynamicSize && targetDim != DynamicSize && dim != targetDim {
			return false
		}
	}
	return true
}
