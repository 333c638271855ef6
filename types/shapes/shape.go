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

// Package shapes defines Shape and associated tools.
//
// Shape represents the compile-time knowledge about a tensor value in the IR:
// its element type (DType, the enumeration defined in github.com/gomlx/gopjrt/dtypes),
// its rank, and per-axis dimensions. Unlike a concrete tensor shape, a dimension
// may be unknown at compile time, in which case it is set to DynamicSize. A shape
// may also be unranked, in which case it carries no dimensions at all and only
// the element type is known.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a tensor.
//   - Axis: the index of a dimension on a multidimensional tensor.
//   - Dimension: the size of a tensor in one of its axes. It is either a
//     positive static size or DynamicSize, meaning it is only known at runtime.
//   - DType: the data type of the unit element in a tensor.
//   - Scalar: a shape with no axes (rank 0), holding a single value of the DType.
//   - Static shape: a ranked shape where every dimension is static.
package shapes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/types/xslices"
)

// DynamicSize is the sentinel dimension value marking an axis whose size is
// only known at runtime.
const DynamicSize = -1

// Shape represents the type of a tensor value in the IR: element type, rank and
// per-axis dimensions, where each dimension is either static or DynamicSize.
//
// Use Make (or MakeUnranked) to create a new shape.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int

	// Unranked marks a shape whose rank is unknown. Unranked shapes have no
	// Dimensions -- not to be confused with a scalar, which is ranked with
	// rank 0.
	Unranked bool
}

// Make returns a ranked Shape with the given dimensions. Each dimension must be
// a positive size or DynamicSize. With no dimensions it returns a scalar shape.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{DType: dtype, Dimensions: slices.Clone(dimensions)}
	for _, dim := range dimensions {
		if dim <= 0 && dim != DynamicSize {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with an axis with dimension <= 0", s)
		}
	}
	return s
}

// MakeUnranked returns an unranked Shape of the given element type.
func MakeUnranked(dtype dtypes.DType) Shape {
	return Shape{DType: dtype, Unranked: true}
}

// Scalar returns a scalar (rank 0) Shape for the given type.
func Scalar(dtype dtypes.DType) Shape {
	return Shape{DType: dtype}
}

// Invalid returns an invalid shape.
//
// Invalid().Ok() == false.
func Invalid() Shape {
	return Shape{DType: dtypes.InvalidDType}
}

// Ok returns whether this is a valid Shape. A "zero" shape, that is just
// instantiating it with Shape{} will be invalid.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// IsRanked returns whether the shape has a known rank.
func (s Shape) IsRanked() bool { return !s.Unranked }

// Rank of the shape, that is, the number of dimensions. It panics on
// unranked shapes.
func (s Shape) Rank() int {
	if s.Unranked {
		exceptions.Panicf("Shape.Rank() called on unranked shape %s", s)
	}
	return len(s.Dimensions)
}

// IsScalar returns whether the shape represents a scalar: ranked and rank==0.
func (s Shape) IsScalar() bool { return s.Ok() && s.IsRanked() && len(s.Dimensions) == 0 }

// Dim returns the dimension of the given axis. axis can take negative numbers,
// in which case it counts as starting from the end -- so axis=-1 refers to the
// last axis. Like with a slice indexing, it panics for an out-of-bound axis.
func (s Shape) Dim(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// IsDynamicDim returns whether the dimension of the given axis is dynamic.
func (s Shape) IsDynamicDim(axis int) bool {
	return s.Dim(axis) == DynamicSize
}

// IsStaticDim returns whether the dimension of the given axis is static.
func (s Shape) IsStaticDim(axis int) bool {
	return s.Dim(axis) != DynamicSize
}

// FullyStatic returns whether the shape is ranked and every dimension is
// statically known.
func (s Shape) FullyStatic() bool {
	if s.Unranked {
		return false
	}
	return !slices.Contains(s.Dimensions, DynamicSize)
}

// NumDynamicDims returns the number of dynamic dimensions of the shape.
// Unranked shapes return 0.
func (s Shape) NumDynamicDims() (count int) {
	if s.Unranked {
		return 0
	}
	for _, dim := range s.Dimensions {
		if dim == DynamicSize {
			count++
		}
	}
	return
}

// DynamicAxes returns the axes with dynamic dimensions, in order.
func (s Shape) DynamicAxes() (axes []int) {
	for axis, dim := range s.Dimensions {
		if dim == DynamicSize {
			axes = append(axes, axis)
		}
	}
	return
}

// Shape returns a shallow copy of itself. It implements the HasShape interface.
func (s Shape) Shape() Shape { return s }

// String implements stringer, pretty-prints the shape. Dynamic dimensions are
// printed as "?", unranked shapes as "*".
func (s Shape) String() string {
	if s.Unranked {
		return fmt.Sprintf("(%s)[*]", s.DType)
	}
	if len(s.Dimensions) == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	parts := make([]string, len(s.Dimensions))
	for axis, dim := range s.Dimensions {
		if dim == DynamicSize {
			parts[axis] = "?"
		} else {
			parts[axis] = fmt.Sprintf("%d", dim)
		}
	}
	return fmt.Sprintf("(%s)[%s]", s.DType, strings.Join(parts, " "))
}

// Size returns the number of elements of DType needed for this shape, the
// product of all dimensions. It panics if the shape is not fully static.
func (s Shape) Size() int {
	if !s.FullyStatic() {
		exceptions.Panicf("Shape.Size() called on non-static shape %s", s)
	}
	return xslices.Product(s.Dimensions)
}

// Equal compares two shapes for equality: dtype, rankedness and dimensions are
// compared. Dynamic dimensions are only equal to dynamic dimensions.
func (s Shape) Equal(s2 Shape) bool {
	if s.DType != s2.DType || s.Unranked != s2.Unranked {
		return false
	}
	if s.Unranked {
		return true
	}
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() (s2 Shape) {
	s2 = s
	s2.Dimensions = slices.Clone(s.Dimensions)
	return
}

// WithDim returns a copy of the shape with the given axis set to the given
// dimension.
func (s Shape) WithDim(axis, dim int) Shape {
	s2 := s.Clone()
	s2.Dimensions[axis] = dim
	return s2
}
