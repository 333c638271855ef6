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

package shapeinference

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/types"
	"github.com/gomlx/tensorir/types/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dyn = shapes.DynamicSize

func TestSliceResultShape(t *testing.T) {
	source := shapes.Make(dtypes.Float32, 10, 20, 30)
	got := SliceResultShape(source, []int64{1, 6, 1})
	assert.Equal(t, shapes.Make(dtypes.Float32, 1, 6, 1), got)

	got = SliceResultShape(source, []int64{dyn, 6, 1})
	assert.Equal(t, shapes.Make(dtypes.Float32, dyn, 6, 1), got)
}

func TestRankReducedSliceResultShape(t *testing.T) {
	source := shapes.Make(dtypes.Float32, 10, 20, 30)

	// Leading unit axes are dropped first: [1 6 1] to rank 2 is [6 1], not [1 6].
	got := RankReducedSliceResultShape(source, []int64{1, 6, 1}, 2)
	assert.Equal(t, shapes.Make(dtypes.Float32, 6, 1), got)

	got = RankReducedSliceResultShape(source, []int64{1, 6, 1}, 1)
	assert.Equal(t, shapes.Make(dtypes.Float32, 6), got)

	// Desired rank not smaller: unchanged.
	got = RankReducedSliceResultShape(source, []int64{1, 6, 1}, 3)
	assert.Equal(t, shapes.Make(dtypes.Float32, 1, 6, 1), got)
}

func TestComputeRankReductionMask(t *testing.T) {
	mask, ok := ComputeRankReductionMask([]int{1, 6, 1}, []int{6, 1})
	require.True(t, ok)
	assert.True(t, mask.Equal(types.SetWith(0)))

	mask, ok = ComputeRankReductionMask([]int{1, 6, 1}, []int{6})
	require.True(t, ok)
	assert.True(t, mask.Equal(types.SetWith(0, 2)))

	// Dropping a non-unit axis is not a rank reduction.
	_, ok = ComputeRankReductionMask([]int{2, 6}, []int{6})
	assert.False(t, ok)

	// The reduced dims must all be matched.
	_, ok = ComputeRankReductionMask([]int{1, 6}, []int{6, 5})
	assert.False(t, ok)
}

func TestVerifySliceResult(t *testing.T) {
	expected := shapes.Make(dtypes.Float32, 1, 6, 1)

	assert.Equal(t, SliceVerificationOK, VerifySliceResult(expected, expected))
	assert.Equal(t, SliceVerificationOK,
		VerifySliceResult(expected, shapes.Make(dtypes.Float32, 6, 1)))
	assert.Equal(t, SliceRankTooLarge,
		VerifySliceResult(expected, shapes.Make(dtypes.Float32, 1, 6, 1, 1)))
	assert.Equal(t, SliceSizeMismatch,
		VerifySliceResult(expected, shapes.Make(dtypes.Float32, 6, 2)))

	require.Error(t, SliceError(SliceSizeMismatch, "ExtractSlice",
		expected, shapes.Make(dtypes.Float32, 6, 2)))
	require.NoError(t, SliceError(SliceVerificationOK, "ExtractSlice", expected, expected))
}

func TestReassociation(t *testing.T) {
	require.NoError(t, VerifyReassociation([][]int{{0, 1}, {2}}, 3))
	require.Error(t, VerifyReassociation([][]int{{0}, {2}}, 3))
	require.Error(t, VerifyReassociation([][]int{{0, 1}}, 3))
	require.Error(t, VerifyReassociation([][]int{{0}, {}}, 1))

	source := shapes.Make(dtypes.Float32, 2, 3, 5)
	got := CollapsedShape(source, [][]int{{0, 1}, {2}})
	assert.Equal(t, shapes.Make(dtypes.Float32, 6, 5), got)

	// A dynamic member makes the whole group dynamic.
	source = shapes.Make(dtypes.Float32, 2, dyn, 5)
	got = CollapsedShape(source, [][]int{{0, 1}, {2}})
	assert.Equal(t, shapes.Make(dtypes.Float32, dyn, 5), got)
}

func TestGatherResultShape(t *testing.T) {
	source := shapes.Make(dtypes.Float32, 4, 5, 6)
	indices := shapes.Make(dtypes.Int64, dyn, 2)

	full := GatherResultShape(source, indices, []int{0, 2}, false)
	assert.Equal(t, shapes.Make(dtypes.Float32, dyn, 1, 5, 1), full)

	reduced := GatherResultShape(source, indices, []int{0, 2}, true)
	assert.Equal(t, shapes.Make(dtypes.Float32, dyn, 5), reduced)
}

func TestVerifyGatherDims(t *testing.T) {
	require.NoError(t, VerifyGatherDims([]int{0, 2}, 3, "gather_dims", "source"))
	require.Error(t, VerifyGatherDims(nil, 3, "gather_dims", "source"))
	require.Error(t, VerifyGatherDims([]int{0, 1, 2, 3}, 3, "gather_dims", "source"))
	require.Error(t, VerifyGatherDims([]int{-1}, 3, "gather_dims", "source"))
	require.Error(t, VerifyGatherDims([]int{3}, 3, "gather_dims", "source"))
	require.Error(t, VerifyGatherDims([]int{1, 1}, 3, "scatter_dims", "dest"))
	require.Error(t, VerifyGatherDims([]int{2, 0}, 3, "scatter_dims", "dest"))
}

func TestPadResultShape(t *testing.T) {
	source := shapes.Make(dtypes.Float32, 4, dyn)
	got := PadResultShape(source, []int64{1, 0}, []int64{2, 0})
	assert.Equal(t, shapes.Make(dtypes.Float32, 7, dyn), got)

	got = PadResultShape(shapes.Make(dtypes.Float32, 4, 5), []int64{dyn, 0}, []int64{0, 0})
	assert.Equal(t, shapes.Make(dtypes.Float32, dyn, 5), got)
}
