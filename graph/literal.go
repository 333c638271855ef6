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
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/tensorir/types/shapes"
	"github.com/x448/float16"
)

// Literal is a compile-time tensor value, held by Constant nodes. Its shape
// is always fully static. A literal is either a splat -- every element holds
// the same value -- or dense, storing its elements flattened in row-major
// order.
//
// Elements are kept as int64 for integer and boolean element types and as
// float64 for floating point element types. Float values are quantized to
// the literal's element type at construction, so comparing literals compares
// the values the runtime would see.
type Literal struct {
	shape  shapes.Shape
	splat  bool
	ints   []int64
	floats []float64
}

// quantizeFloat rounds value to the precision of dtype.
func quantizeFloat(dtype dtypes.DType, value float64) float64 {
	switch dtype {
	case dtypes.Float16:
		return float64(float16.Fromfloat32(float32(value)).Float32())
	case dtypes.BFloat16:
		return float64(bfloat16.FromFloat32(float32(value)).Float32())
	case dtypes.Float32:
		return float64(float32(value))
	}
	return value
}

func validateLiteralShape(shape shapes.Shape) {
	if !shape.Ok() {
		exceptions.Panicf("cannot create a Literal with an invalid shape")
	}
	if !shape.FullyStatic() {
		exceptions.Panicf("cannot create a Literal with non-static shape %s", shape)
	}
	if !shape.DType.IsInt() && !shape.DType.IsFloat() && shape.DType != dtypes.Bool {
		exceptions.Panicf("Literal does not support dtype %s", shape.DType)
	}
}

// SplatLiteralInt returns a splat literal of the given shape with every
// element set to value. The shape's element type must be an integer or
// boolean type.
func SplatLiteralInt(shape shapes.Shape, value int64) *Literal {
	validateLiteralShape(shape)
	if shape.DType.IsFloat() {
		exceptions.Panicf("SplatLiteralInt: shape %s has a float dtype, use SplatLiteralFloat", shape)
	}
	return &Literal{shape: shape.Clone(), splat: true, ints: []int64{value}}
}

// SplatLiteralFloat returns a splat literal of the given shape with every
// element set to value, quantized to the shape's element type.
func SplatLiteralFloat(shape shapes.Shape, value float64) *Literal {
	validateLiteralShape(shape)
	if !shape.DType.IsFloat() {
		exceptions.Panicf("SplatLiteralFloat: shape %s has a non-float dtype, use SplatLiteralInt", shape)
	}
	return &Literal{shape: shape.Clone(), splat: true, floats: []float64{quantizeFloat(shape.DType, value)}}
}

// LiteralFromInts returns a dense literal of the given shape from the flat
// row-major values. It normalizes to a splat when all values are equal.
func LiteralFromInts(shape shapes.Shape, values []int64) *Literal {
	validateLiteralShape(shape)
	if shape.DType.IsFloat() {
		exceptions.Panicf("LiteralFromInts: shape %s has a float dtype, use LiteralFromFloats", shape)
	}
	if len(values) != shape.Size() {
		exceptions.Panicf("LiteralFromInts: shape %s needs %d values, got %d", shape, shape.Size(), len(values))
	}
	allSame := true
	for _, v := range values {
		if v != values[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return SplatLiteralInt(shape, values[0])
	}
	return &Literal{shape: shape.Clone(), ints: slices.Clone(values)}
}

// LiteralFromFloats returns a dense literal of the given shape from the flat
// row-major values, quantized to the shape's element type. It normalizes to
// a splat when all values are equal.
func LiteralFromFloats(shape shapes.Shape, values []float64) *Literal {
	validateLiteralShape(shape)
	if !shape.DType.IsFloat() {
		exceptions.Panicf("LiteralFromFloats: shape %s has a non-float dtype, use LiteralFromInts", shape)
	}
	if len(values) != shape.Size() {
		exceptions.Panicf("LiteralFromFloats: shape %s needs %d values, got %d", shape, shape.Size(), len(values))
	}
	quantized := make([]float64, len(values))
	for ii, v := range values {
		quantized[ii] = quantizeFloat(shape.DType, v)
	}
	allSame := true
	for _, v := range quantized {
		if v != quantized[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return SplatLiteralFloat(shape, quantized[0])
	}
	return &Literal{shape: shape.Clone(), floats: quantized}
}

// ScalarLiteralInt returns a scalar literal of the given integer or boolean
// element type.
func ScalarLiteralInt(dtype dtypes.DType, value int64) *Literal {
	return SplatLiteralInt(shapes.Scalar(dtype), value)
}

// ScalarLiteralFloat returns a scalar literal of the given float element
// type.
func ScalarLiteralFloat(dtype dtypes.DType, value float64) *Literal {
	return SplatLiteralFloat(shapes.Scalar(dtype), value)
}

// IndexLiteral returns a scalar Int64 literal, the type used for indices,
// extents and dimension values.
func IndexLiteral(value int64) *Literal {
	return ScalarLiteralInt(dtypes.Int64, value)
}

// Shape of the literal. It is always fully static.
func (l *Literal) Shape() shapes.Shape { return l.shape }

// DType returns the element type of the literal.
func (l *Literal) DType() dtypes.DType { return l.shape.DType }

// IsSplat returns whether every element of the literal holds the same value.
func (l *Literal) IsSplat() bool { return l.splat }

// Int returns the flatIdx-th element in row-major order, for integer and
// boolean literals.
func (l *Literal) Int(flatIdx int) int64 {
	if l.ints == nil {
		exceptions.Panicf("Literal.Int() called on float literal %s", l.shape)
	}
	if l.splat {
		return l.ints[0]
	}
	return l.ints[flatIdx]
}

// Float returns the flatIdx-th element in row-major order, for float
// literals.
func (l *Literal) Float(flatIdx int) float64 {
	if l.floats == nil {
		exceptions.Panicf("Literal.Float() called on integer literal %s", l.shape)
	}
	if l.splat {
		return l.floats[0]
	}
	return l.floats[flatIdx]
}

// Element returns the flatIdx-th element in row-major order as a scalar
// literal.
func (l *Literal) Element(flatIdx int) *Literal {
	scalar := shapes.Scalar(l.shape.DType)
	if l.ints != nil {
		return SplatLiteralInt(scalar, l.Int(flatIdx))
	}
	return SplatLiteralFloat(scalar, l.Float(flatIdx))
}

// SplatElement returns the repeated element of a splat literal as a scalar
// literal. It panics for dense literals.
func (l *Literal) SplatElement() *Literal {
	if !l.splat {
		exceptions.Panicf("Literal.SplatElement() called on dense literal %s", l.shape)
	}
	return l.Element(0)
}

// IndexValue returns the value of a scalar integer literal, and whether the
// literal is one.
func (l *Literal) IndexValue() (int64, bool) {
	if !l.shape.IsScalar() || l.ints == nil {
		return 0, false
	}
	return l.ints[0], true
}

// Equal compares two literals for equality of shape and values. Splat and
// dense representations never overlap: dense literals with all-equal values
// are normalized to splats at construction.
func (l *Literal) Equal(o *Literal) bool {
	if l == nil || o == nil {
		return l == o
	}
	return l.shape.Equal(o.shape) && l.splat == o.splat &&
		slices.Equal(l.ints, o.ints) && slices.Equal(l.floats, o.floats)
}

// SameElements returns whether two literals of the same element type hold
// the same elements in row-major order, regardless of shape. Splat literals
// compare their repeated element, so splats of different sizes with the same
// fill value compare equal.
func (l *Literal) SameElements(o *Literal) bool {
	if l == nil || o == nil || l.splat != o.splat || l.shape.DType != o.shape.DType {
		return false
	}
	return slices.Equal(l.ints, o.ints) && slices.Equal(l.floats, o.floats)
}

// WithShape returns a literal with the same elements reinterpreted under a
// new shape of the same element type and total size. Splat literals stay
// splats; dense literals share the element storage.
func (l *Literal) WithShape(shape shapes.Shape) *Literal {
	validateLiteralShape(shape)
	if shape.DType != l.shape.DType {
		exceptions.Panicf("Literal.WithShape: cannot change dtype from %s to %s", l.shape.DType, shape.DType)
	}
	if shape.Size() != l.shape.Size() {
		exceptions.Panicf("Literal.WithShape: shape %s has %d elements, literal %s has %d",
			shape, shape.Size(), l.shape, l.shape.Size())
	}
	return &Literal{shape: shape.Clone(), splat: l.splat, ints: l.ints, floats: l.floats}
}

// ResizeSplat returns a splat literal with the same repeated element under a
// new shape of the same element type. It panics for dense literals.
func (l *Literal) ResizeSplat(shape shapes.Shape) *Literal {
	if !l.splat {
		exceptions.Panicf("Literal.ResizeSplat() called on dense literal %s", l.shape)
	}
	if l.ints != nil {
		return SplatLiteralInt(shape, l.ints[0])
	}
	return SplatLiteralFloat(shape, l.floats[0])
}

// Slice extracts a strided sub-tensor: per axis, sizes[axis] elements
// starting at offsets[axis], stepping strides[axis]. All parameters must be
// static and in bounds. The result is a dense (or normalized splat) literal
// of shape sizes.
func (l *Literal) Slice(offsets, sizes, strides []int64) *Literal {
	rank := l.shape.Rank()
	if len(offsets) != rank || len(sizes) != rank || len(strides) != rank {
		exceptions.Panicf("Literal.Slice: offsets/sizes/strides must have %d entries each, got %d/%d/%d",
			rank, len(offsets), len(sizes), len(strides))
	}
	dims := make([]int, rank)
	for axis, size := range sizes {
		dims[axis] = int(size)
	}
	resultShape := shapes.Make(l.shape.DType, dims...)
	if l.splat {
		return l.WithShape(resultShape)
	}

	// counts[axis] is the row-major stride of the source at that axis.
	counts := make([]int64, rank)
	running := int64(1)
	for axis := rank - 1; axis >= 0; axis-- {
		counts[axis] = running
		running *= int64(l.shape.Dimensions[axis])
	}

	numElements := resultShape.Size()
	var flatInts []int64
	var flatFloats []float64
	if l.ints != nil {
		flatInts = make([]int64, 0, numElements)
	} else {
		flatFloats = make([]float64, 0, numElements)
	}
	var recurse func(axis int, sourceOffset int64)
	recurse = func(axis int, sourceOffset int64) {
		if axis == rank {
			if flatInts != nil {
				flatInts = append(flatInts, l.ints[sourceOffset])
			} else {
				flatFloats = append(flatFloats, l.floats[sourceOffset])
			}
			return
		}
		base := sourceOffset + offsets[axis]*counts[axis]
		for ii := int64(0); ii < sizes[axis]; ii++ {
			recurse(axis+1, base+ii*strides[axis]*counts[axis])
		}
	}
	recurse(0, 0)
	if flatInts != nil {
		return LiteralFromInts(resultShape, flatInts)
	}
	return LiteralFromFloats(resultShape, flatFloats)
}

// String implements the fmt.Stringer interface. Large dense literals print
// only their shape.
func (l *Literal) String() string {
	if l == nil {
		return "Literal(nil)"
	}
	value := func(flatIdx int) string {
		if l.ints != nil {
			return fmt.Sprintf("%d", l.Int(flatIdx))
		}
		return fmt.Sprintf("%g", l.Float(flatIdx))
	}
	if l.splat {
		return fmt.Sprintf("splat %s=%s", l.shape, value(0))
	}
	const maxElementsToPrint = 8
	size := l.shape.Size()
	if size > maxElementsToPrint {
		return fmt.Sprintf("dense %s", l.shape)
	}
	parts := make([]string, size)
	for ii := range parts {
		parts[ii] = value(ii)
	}
	return fmt.Sprintf("dense %s=%v", l.shape, parts)
}
