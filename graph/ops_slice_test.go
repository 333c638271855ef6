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
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/types"
	"github.com/gomlx/tensorir/types/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMixedSliceAccessors(t *testing.T) {
	g := New("slice")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 10, dyn))
	offset := Parameter(g, "offset", shapes.Scalar(dtypes.Int64))
	size := Parameter(g, "size", shapes.Scalar(dtypes.Int64))

	offsets := []DimExpr{DynamicDim(offset), StaticDim(0)}
	sizes := []DimExpr{StaticDim(4), DynamicDim(size)}
	strides := staticDims(1, 1)
	slice := ExtractSlice(x, offsets, sizes, strides)

	assert.Equal(t, []int64{shapes.DynamicSize, 0}, slice.StaticOffsets())
	assert.Equal(t, []int64{4, shapes.DynamicSize}, slice.StaticSizes())
	assert.Equal(t, []int64{1, 1}, slice.StaticStrides())

	// Mixed lists reconstitute the dynamic operands in order.
	gotOffsets := slice.MixedOffsets()
	assert.Equal(t, offset, gotOffsets[0].Node())
	assert.True(t, gotOffsets[1].IsConstant(0))
	gotSizes := slice.MixedSizes()
	assert.True(t, gotSizes[0].IsConstant(4))
	assert.Equal(t, size, gotSizes[1].Node())

	assert.True(t, slice.HasUnitStrides())
	strided := ExtractSlice(x, staticDims(0, 0), []DimExpr{StaticDim(4), DynamicDim(size)},
		staticDims(2, 1))
	assert.False(t, strided.HasUnitStrides())
}

func TestIsSameSliceAs(t *testing.T) {
	g := New("slice")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 8, 8))
	offset := Parameter(g, "offset", shapes.Scalar(dtypes.Int64))

	a := ExtractSlice(x, []DimExpr{DynamicDim(offset), StaticDim(0)},
		staticDims(4, 4), staticDims(1, 1))
	b := ExtractSlice(x, []DimExpr{DynamicDim(offset), StaticDim(0)},
		staticDims(4, 4), staticDims(1, 1))
	c := ExtractSlice(x, staticDims(0, 0), staticDims(4, 4), staticDims(1, 1))

	assert.True(t, a.IsSameSliceAs(b))
	assert.False(t, a.IsSameSliceAs(c))
}

func TestDroppedDims(t *testing.T) {
	g := New("slice")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 10, 20, 30))
	reduced := ExtractSliceRankReduced(x, staticDims(0, 0, 0), staticDims(1, 6, 1),
		staticDims(1, 1, 1), 2)
	assert.True(t, reduced.DroppedDims().Equal(types.SetWith(0)))

	full := ExtractSlice(x, staticDims(0, 0, 0), staticDims(1, 6, 1), staticDims(1, 1, 1))
	assert.Empty(t, full.DroppedDims())
}

func TestPadAccessors(t *testing.T) {
	g := New("pad")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 4, 5))
	zero := Constant(g, ScalarLiteralFloat(dtypes.Float32, 0))
	low := Parameter(g, "low", shapes.Scalar(dtypes.Int64))

	pad := Pad(x, []DimExpr{DynamicDim(low), StaticDim(0)}, staticDims(0, 2), zero, false)
	assert.Equal(t, []int64{shapes.DynamicSize, 0}, pad.StaticLowPad())
	assert.Equal(t, []int64{0, 2}, pad.StaticHighPad())
	assert.False(t, pad.Nofold())
	assert.False(t, pad.HasZeroLowPad())
	assert.True(t, pad.PaddedDims().Equal(types.SetWith(0, 1)))

	mixedLow := pad.MixedLowPad()
	assert.Equal(t, low, mixedLow[0].Node())
	assert.True(t, mixedLow[1].IsConstant(0))

	value, ok := pad.ConstantPaddingValue()
	require.True(t, ok)
	assert.Equal(t, zero, value)

	// A padding value computed from the coordinates is not constant.
	generated := PadGenerated(x, staticDims(1, 0), staticDims(0, 0), false,
		func(coordinates []*Node) *Node {
			return Extract(x, coordinates...)
		})
	_, ok = generated.ConstantPaddingValue()
	assert.False(t, ok)
}

func TestPaddedDimsDynamicAmount(t *testing.T) {
	g := New("pad")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 4, 5))
	zero := Constant(g, ScalarLiteralFloat(dtypes.Float32, 0))
	amount := Parameter(g, "amount", shapes.Scalar(dtypes.Int64))

	// A dynamic amount counts as padded even if it may be zero at runtime.
	pad := Pad(x, staticDims(0, 0), []DimExpr{DynamicDim(amount), StaticDim(0)}, zero, false)
	assert.True(t, pad.PaddedDims().Equal(types.SetWith(0)))
	assert.False(t, pad.HasZeroHighPad())
	assert.True(t, pad.HasZeroLowPad())
}
