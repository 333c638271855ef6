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

func TestVerifyCast(t *testing.T) {
	g := New("verify")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 4))

	require.NoError(t, Cast(x, shapes.Make(dtypes.Float32, dyn)).Verify())
	require.NoError(t, Cast(x, shapes.MakeUnranked(dtypes.Float32)).Verify())

	err := Cast(x, shapes.Make(dtypes.Float32, 5)).Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cast incompatible")

	err = Cast(x, shapes.Make(dtypes.Int32, 4)).Verify()
	require.Error(t, err)
}

func TestVerifyDim(t *testing.T) {
	g := New("verify")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 4, 5))

	require.NoError(t, Dim(x, 1).Verify())

	err := Dim(x, 2).Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	// Unranked operands accept any index, the extent is a runtime question.
	u := Parameter(g, "u", shapes.MakeUnranked(dtypes.Float32))
	require.NoError(t, Dim(u, 0).Verify())
	require.NoError(t, Dim(u, 7).Verify())
}

func TestVerifyEmptyAndGenerate(t *testing.T) {
	g := New("verify")
	extent := Parameter(g, "n", shapes.Scalar(dtypes.Int64))

	require.NoError(t, Empty(g, shapes.Make(dtypes.Float32, dyn, 5), extent).Verify())
	require.Error(t, Empty(g, shapes.Make(dtypes.Float32, dyn, 5)).Verify())
	require.Error(t, Empty(g, shapes.Make(dtypes.Float32, 4, 5), extent).Verify())

	generate := Generate(g, shapes.Make(dtypes.Float32, dyn, 5), []*Node{extent},
		func(coordinates []*Node) *Node {
			return Constant(g, ScalarLiteralFloat(dtypes.Float32, 0))
		})
	require.NoError(t, generate.Verify())
}

func TestVerifyReshape(t *testing.T) {
	g := New("verify")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	shapeOperand := Constant(g, LiteralFromInts(shapes.Make(dtypes.Int64, 2), []int64{3, 2}))

	require.NoError(t, Reshape(x, shapeOperand, shapes.Make(dtypes.Float32, 3, 2)).Verify())

	// Element count mismatch.
	bad := Constant(g, LiteralFromInts(shapes.Make(dtypes.Int64, 2), []int64{3, 3}))
	err := Reshape(x, bad, shapes.Make(dtypes.Float32, 3, 3)).Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same number of elements")

	// A dynamically sized shape operand cannot produce a ranked result.
	dynOperand := Parameter(g, "s", shapes.Make(dtypes.Int64, dyn))
	err = Reshape(x, dynOperand, shapes.Make(dtypes.Float32, 3, 2)).Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dynamic length")
}

func TestVerifyReassociationOps(t *testing.T) {
	g := New("verify")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3, 5))

	collapse := CollapseShape(x, [][]int{{0, 1}, {2}})
	require.NoError(t, collapse.Verify())
	assert.Equal(t, shapes.Make(dtypes.Float32, 6, 5), collapse.Shape())

	expand := ExpandShape(collapse, [][]int{{0, 1}, {2}}, shapes.Make(dtypes.Float32, 2, 3, 5))
	require.NoError(t, expand.Verify())

	// The declared expansion must collapse back to the operand.
	bad := ExpandShape(collapse, [][]int{{0, 1}, {2}}, shapes.Make(dtypes.Float32, 3, 3, 5))
	require.Error(t, bad.Verify())
}

func TestVerifyExtractSlice(t *testing.T) {
	g := New("verify")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 10, 20, 30))
	offsets, sizes, strides := staticDims(0, 0, 0), staticDims(1, 6, 1), staticDims(1, 1, 1)

	full := ExtractSlice(x, offsets, sizes, strides)
	require.NoError(t, full.Verify())
	assert.Equal(t, shapes.Make(dtypes.Float32, 1, 6, 1), full.Shape())

	// Rank-reduced form: leading unit axis dropped first.
	reduced := ExtractSliceRankReduced(x, offsets, sizes, strides, 2)
	require.NoError(t, reduced.Verify())
	assert.Equal(t, shapes.Make(dtypes.Float32, 6, 1), reduced.Shape())

	// A declared shape that is neither the full nor a reduced form.
	bad := ExtractSliceWithShape(x, offsets, sizes, strides, shapes.Make(dtypes.Float32, 6, 2))
	require.Error(t, bad.Verify())
}

func TestVerifyInsertSlice(t *testing.T) {
	g := New("verify")
	dest := Parameter(g, "dest", shapes.Make(dtypes.Float32, 8, 8))
	offsets, sizes, strides := staticDims(0, 0), staticDims(1, 4), staticDims(1, 1)

	source := Parameter(g, "src", shapes.Make(dtypes.Float32, 1, 4))
	require.NoError(t, InsertSlice(source, dest, offsets, sizes, strides).Verify())

	// Rank-reduced source.
	reducedSource := Parameter(g, "rsrc", shapes.Make(dtypes.Float32, 4))
	require.NoError(t, InsertSlice(reducedSource, dest, offsets, sizes, strides).Verify())
	require.NoError(t, ParallelInsertSlice(reducedSource, dest, offsets, sizes, strides).Verify())

	// Wrong window size.
	badSource := Parameter(g, "bad", shapes.Make(dtypes.Float32, 2, 4))
	require.Error(t, InsertSlice(badSource, dest, offsets, sizes, strides).Verify())
}

func TestVerifyPad(t *testing.T) {
	g := New("verify")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 4, dyn))
	zero := Constant(g, ScalarLiteralFloat(dtypes.Float32, 0))

	pad := Pad(x, staticDims(1, 0), staticDims(2, 0), zero, false)
	require.NoError(t, pad.Verify())
	assert.Equal(t, shapes.Make(dtypes.Float32, 7, dyn), pad.Shape())

	// Declared static extent disagreeing with the inferred one.
	bad := PadWithShape(shapes.Make(dtypes.Float32, 8, dyn), x,
		staticDims(1, 0), staticDims(2, 0), zero, false)
	err := bad.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match the inferred type")

	// A declared static extent on a dynamically inferred axis is accepted.
	refined := PadWithShape(shapes.Make(dtypes.Float32, 7, 9), x,
		staticDims(1, 0), staticDims(2, 0), zero, false)
	require.NoError(t, refined.Verify())
}

func TestVerifyGather(t *testing.T) {
	g := New("verify")
	source := Parameter(g, "source", shapes.Make(dtypes.Float32, 4, 5, 6))
	indices := Parameter(g, "indices", shapes.Make(dtypes.Int64, dyn, 2))

	full := Gather(source, indices, []int{0, 2}, false)
	require.NoError(t, full.Verify())
	assert.Equal(t, shapes.Make(dtypes.Float32, dyn, 1, 5, 1), full.Shape())

	reduced := GatherWithShape(source, indices, []int{0, 2}, false,
		shapes.Make(dtypes.Float32, dyn, 5))
	require.NoError(t, reduced.Verify())

	// Any third shape is rejected.
	bad := GatherWithShape(source, indices, []int{0, 2}, false,
		shapes.Make(dtypes.Float32, dyn, 5, 1))
	err := bad.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rank-reduced variant")

	// Indices must have a static trailing axis matching the gather dims.
	badIndices := Parameter(g, "bad", shapes.Make(dtypes.Int64, dyn, 3))
	require.Error(t, Gather(source, badIndices, []int{0, 2}, false).Verify())
}

func TestVerifyScatterRequiresUnique(t *testing.T) {
	g := New("verify")
	dest := Parameter(g, "dest", shapes.Make(dtypes.Float32, 4, 5, 6))
	indices := Parameter(g, "indices", shapes.Make(dtypes.Int64, 7, 2))
	source := Parameter(g, "source", shapes.Make(dtypes.Float32, 7, 1, 5, 1))

	require.NoError(t, Scatter(source, dest, indices, []int{0, 2}, true).Verify())

	err := Scatter(source, dest, indices, []int{0, 2}, false).Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unique")

	// Rank-reduced source form is accepted too.
	reducedSource := Parameter(g, "rsource", shapes.Make(dtypes.Float32, 7, 5))
	require.NoError(t, Scatter(reducedSource, dest, indices, []int{0, 2}, true).Verify())

	// A source that is neither form is rejected.
	badSource := Parameter(g, "bsource", shapes.Make(dtypes.Float32, 7, 5, 1))
	require.Error(t, Scatter(badSource, dest, indices, []int{0, 2}, true).Verify())
}
