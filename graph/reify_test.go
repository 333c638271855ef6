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
	"github.com/gomlx/tensorir/types/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReifyResultShapeEmpty(t *testing.T) {
	g := New("reify")
	extent := Parameter(g, "n", shapes.Scalar(dtypes.Int64))
	empty := Empty(g, shapes.Make(dtypes.Float32, dyn, 5), extent)

	mixed := ReifyResultShape(empty)
	require.Len(t, mixed, 2)
	assert.Equal(t, extent, mixed[0].Node())
	require.True(t, mixed[1].IsStatic())
	assert.Equal(t, int64(5), mixed[1].Static())
}

func TestReifyResultShapeExtractSlice(t *testing.T) {
	g := New("reify")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 10, 20, 30))
	size := Parameter(g, "size", shapes.Scalar(dtypes.Int64))
	sizes := []DimExpr{StaticDim(1), DynamicDim(size), StaticDim(1)}
	slice := ExtractSliceRankReduced(x, staticDims(0, 0, 0), sizes, staticDims(1, 1, 1), 2)
	require.Equal(t, shapes.Make(dtypes.Float32, dyn, 1), slice.Shape())

	// The dropped leading unit axis does not appear.
	mixed := ReifyResultShape(slice)
	require.Len(t, mixed, 2)
	assert.Equal(t, size, mixed[0].Node())
	require.True(t, mixed[1].IsStatic())
	assert.Equal(t, int64(1), mixed[1].Static())
}

func TestReifyResultShapeFallback(t *testing.T) {
	g := New("reify")
	source := Parameter(g, "source", shapes.Make(dtypes.Float32, 4, 5, 6))
	indices := Parameter(g, "indices", shapes.Make(dtypes.Int64, dyn, 2))
	gather := Gather(source, indices, []int{0, 2}, false)

	mixed := ReifyResultShape(gather)
	require.Len(t, mixed, 4)
	require.False(t, mixed[0].IsStatic())
	dim := mixed[0].Node()
	assert.Equal(t, OpTypeDim, dim.Type())
	assert.Equal(t, gather, dim.Source())
	assert.Equal(t, int64(1), mixed[1].Static())
	assert.Equal(t, int64(5), mixed[2].Static())
}

func TestDestinationOperand(t *testing.T) {
	g := New("reify")
	dest := Parameter(g, "dest", shapes.Make(dtypes.Float32, 8, 8))
	src := Parameter(g, "src", shapes.Make(dtypes.Float32, 4, 4))
	insert := InsertSlice(src, dest, staticDims(0, 0), staticDims(4, 4), staticDims(1, 1))

	tied, ok := DestinationOperand(insert)
	require.True(t, ok)
	assert.Equal(t, dest, tied)
	assert.Equal(t, dest, OrCreateDestination(insert))

	_, ok = DestinationOperand(src)
	assert.False(t, ok)
}

func TestOrCreateDestinationBuildsEmpty(t *testing.T) {
	g := New("reify")
	source := Parameter(g, "source", shapes.Make(dtypes.Float32, 4, 5, 6))
	indices := Parameter(g, "indices", shapes.Make(dtypes.Int64, dyn, 2))
	gather := Gather(source, indices, []int{0, 2}, false)

	dest := OrCreateDestination(gather)
	require.Equal(t, OpTypeEmpty, dest.Type())
	assert.Equal(t, gather.Shape(), dest.Shape())
	require.Equal(t, 1, dest.NumInputs())
	assert.Equal(t, OpTypeDim, dest.Input(0).Type())
}
