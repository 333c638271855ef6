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

func TestCanonicalizeChainedCast(t *testing.T) {
	g := New("canon")
	p := Parameter(g, "p", shapes.Make(dtypes.Float32, dyn, dyn))
	c1 := Cast(p, shapes.Make(dtypes.Float32, 8, dyn))
	c2 := Cast(c1, shapes.Make(dtypes.Float32, 8, 16))

	resolved := Canonicalize(g, []*Node{c2})[0]
	assert.Equal(t, OpTypeCast, resolved.Type())
	assert.Equal(t, p, resolved.Source())
	assert.Equal(t, shapes.Make(dtypes.Float32, 8, 16), resolved.Shape())
}

func TestCanonicalizeChainedCastRefusal(t *testing.T) {
	g := New("canon")
	p := Parameter(g, "p", shapes.Make(dtypes.Float32, dyn, dyn))
	// The middle cast asserts extent 8, which neither endpoint confirms:
	// collapsing would drop a runtime check.
	c1 := Cast(p, shapes.Make(dtypes.Float32, 8, 16))
	c2 := Cast(c1, shapes.Make(dtypes.Float32, dyn, 16))

	resolved := Canonicalize(g, []*Node{c2})[0]
	assert.Equal(t, c2, resolved)
	assert.Equal(t, c1, resolved.Source())
}

func TestCanonicalizeEmptyStaticShapeDims(t *testing.T) {
	g := New("canon")
	empty := Empty(g, shapes.Make(dtypes.Float32, dyn, 5), ConstantIndex(g, 7))

	resolved := Canonicalize(g, []*Node{empty})[0]
	require.Equal(t, OpTypeCast, resolved.Type())
	assert.Equal(t, shapes.Make(dtypes.Float32, dyn, 5), resolved.Shape())
	refined := resolved.Source()
	assert.Equal(t, OpTypeEmpty, refined.Type())
	assert.Equal(t, shapes.Make(dtypes.Float32, 7, 5), refined.Shape())
	assert.Equal(t, 0, refined.NumInputs())
}

func TestCanonicalizeExtractFromGenerate(t *testing.T) {
	g := New("canon")
	generate := Generate(g, shapes.Make(dtypes.Int64, 4), nil,
		func(coordinates []*Node) *Node {
			return coordinates[0]
		})
	extract := Extract(generate, ConstantIndex(g, 2))

	resolved := Canonicalize(g, []*Node{extract})[0]
	value, ok := resolved.ConstantIndexValue()
	require.True(t, ok)
	assert.Equal(t, int64(2), value)
}

func TestCanonicalizeConstantSliceFolding(t *testing.T) {
	g := New("canon")
	c := Constant(g, LiteralFromInts(shapes.Make(dtypes.Int64, 4), []int64{1, 2, 3, 4}))
	slice := ExtractSlice(c, staticDims(1), staticDims(2), staticDims(1))

	// Off by default.
	resolved := Canonicalize(g, []*Node{slice})[0]
	assert.Equal(t, slice, resolved)

	// Opt-in, with the default always-fold control.
	resolved = Canonicalize(g, []*Node{slice}, WithConstantSliceFolding(nil))[0]
	require.Equal(t, OpTypeConstant, resolved.Type())
	literal := resolved.ConstantLiteral()
	assert.Equal(t, int64(2), literal.Int(0))
	assert.Equal(t, int64(3), literal.Int(1))

	// A declining control blocks the fold.
	g2 := New("canon2")
	c2 := Constant(g2, LiteralFromInts(shapes.Make(dtypes.Int64, 4), []int64{1, 2, 3, 4}))
	slice2 := ExtractSlice(c2, staticDims(1), staticDims(2), staticDims(1))
	resolved = Canonicalize(g2, []*Node{slice2},
		WithConstantSliceFolding(func(*Node) bool { return false }))[0]
	assert.Equal(t, slice2, resolved)
}

func TestCanonicalizeOrthogonalPadFusion(t *testing.T) {
	g := New("canon")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 14, 14))
	zero := Constant(g, ScalarLiteralFloat(dtypes.Float32, 0))

	// Outer pair pads axis 0, inner pair pads axis 1, disjoint.
	outerSlice := ExtractSlice(x, staticDims(1, 0), staticDims(12, 14), staticDims(1, 1))
	outerPad := Pad(outerSlice, staticDims(0, 0), staticDims(2, 0), zero, false)
	innerSlice := ExtractSlice(outerPad, staticDims(0, 2), staticDims(14, 10), staticDims(1, 1))
	innerPad := Pad(innerSlice, staticDims(0, 0), staticDims(0, 4), zero, false)

	resolved := Canonicalize(g, []*Node{innerPad})[0]
	require.Equal(t, OpTypePad, resolved.Type())
	assert.Equal(t, []int64{2, 4}, resolved.StaticHighPad())
	assert.Equal(t, shapes.Make(dtypes.Float32, 14, 14), resolved.Shape())

	fused := resolved.Source()
	require.Equal(t, OpTypeExtractSlice, fused.Type())
	assert.Equal(t, x, fused.Source())
	assert.Equal(t, []int64{1, 2}, fused.StaticOffsets())
	assert.Equal(t, []int64{12, 10}, fused.StaticSizes())
}

func TestCanonicalizeOrthogonalPadFusionRejectsOverlap(t *testing.T) {
	g := New("canon")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 14, 14))
	zero := Constant(g, ScalarLiteralFloat(dtypes.Float32, 0))

	// Both pairs pad axis 0: not orthogonal, must not fuse.
	outerSlice := ExtractSlice(x, staticDims(1, 0), staticDims(12, 14), staticDims(1, 1))
	outerPad := Pad(outerSlice, staticDims(0, 0), staticDims(2, 0), zero, false)
	innerSlice := ExtractSlice(outerPad, staticDims(2, 0), staticDims(12, 14), staticDims(1, 1))
	innerPad := Pad(innerSlice, staticDims(0, 0), staticDims(2, 0), zero, false)

	resolved := Canonicalize(g, []*Node{innerPad})[0]
	assert.Equal(t, innerPad, resolved)
	assert.Equal(t, innerSlice, resolved.Source())
}

func TestCanonicalizeDimThroughCastAndDest(t *testing.T) {
	g := New("canon")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 4, dyn))
	cast := Cast(x, shapes.Make(dtypes.Float32, dyn, dyn))
	d := Dim(cast, 1)

	resolved := Canonicalize(g, []*Node{d})[0]
	assert.Equal(t, d, resolved)
	assert.Equal(t, x, resolved.Source())

	// A dim of a destination-style op reads from the destination.
	g2 := New("canon2")
	dest := Parameter(g2, "dest", shapes.Make(dtypes.Float32, dyn, 8))
	v := Parameter(g2, "v", shapes.Make(dtypes.Float32, 4, 4))
	insert := InsertSlice(v, dest, staticDims(0, 0), staticDims(4, 4), staticDims(1, 1))
	d2 := Dim(insert, 0)

	resolved = Canonicalize(g2, []*Node{d2})[0]
	assert.Equal(t, d2, resolved)
	assert.Equal(t, dest, resolved.Source())
}

func TestCanonicalizeInsertSliceConstantArguments(t *testing.T) {
	g := New("canon")
	dest := Parameter(g, "dest", shapes.Make(dtypes.Float32, 8, 8))
	src := Parameter(g, "src", shapes.Make(dtypes.Float32, 4, dyn))
	sizes := []DimExpr{StaticDim(4), DynamicDim(ConstantIndex(g, 4))}
	insert := InsertSlice(src, dest, staticDims(0, 0), sizes, staticDims(1, 1))

	resolved := Canonicalize(g, []*Node{insert})[0]
	require.Equal(t, OpTypeInsertSlice, resolved.Type())
	assert.Equal(t, []int64{4, 4}, resolved.StaticSizes())
	// The source is cast to the now fully static window type.
	castSource := resolved.Input(0)
	require.Equal(t, OpTypeCast, castSource.Type())
	assert.Equal(t, shapes.Make(dtypes.Float32, 4, 4), castSource.Shape())
	assert.Equal(t, src, castSource.Source())
}

func TestCanonicalizeInsertSliceCastFolding(t *testing.T) {
	g := New("canon")
	dest := Parameter(g, "dest", shapes.Make(dtypes.Float32, 8, 8))
	widened := Cast(dest, shapes.Make(dtypes.Float32, dyn, 8))
	src := Parameter(g, "src", shapes.Make(dtypes.Float32, 4, 4))
	insert := InsertSlice(src, widened, staticDims(0, 0), staticDims(4, 4), staticDims(1, 1))

	resolved := Canonicalize(g, []*Node{insert})[0]
	// The insert now writes into the original destination; a cast restores
	// the declared result type.
	require.Equal(t, OpTypeCast, resolved.Type())
	assert.Equal(t, shapes.Make(dtypes.Float32, dyn, 8), resolved.Shape())
	inner := resolved.Source()
	require.Equal(t, OpTypeInsertSlice, inner.Type())
	assert.Equal(t, dest, inner.Dest())
	assert.Equal(t, shapes.Make(dtypes.Float32, 8, 8), inner.Shape())
}

func TestCanonicalizeCastOfExtractSlice(t *testing.T) {
	g := New("canon")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 10, 20))
	size := Parameter(g, "size", shapes.Scalar(dtypes.Int64))
	sizes := []DimExpr{StaticDim(1), DynamicDim(size)}
	slice := ExtractSliceRankReduced(x, staticDims(0, 0), sizes, staticDims(1, 1), 1)
	require.Equal(t, shapes.Make(dtypes.Float32, dyn), slice.Shape())

	cast := Cast(slice, shapes.Make(dtypes.Float32, 6))
	resolved := Canonicalize(g, []*Node{cast})[0]
	require.Equal(t, OpTypeExtractSlice, resolved.Type())
	assert.Equal(t, shapes.Make(dtypes.Float32, 6), resolved.Shape())
	// The asserted extent lands in the size list, skipping the dropped
	// leading unit axis.
	assert.Equal(t, []int64{1, 6}, resolved.StaticSizes())
	assert.Equal(t, x, resolved.Source())
}

func TestCanonicalizeEmptyPropagation(t *testing.T) {
	g := New("canon")
	extent := Parameter(g, "n", shapes.Scalar(dtypes.Int64))
	empty := Empty(g, shapes.Make(dtypes.Float32, dyn, 6), extent)
	slice := ExtractSlice(empty, staticDims(0, 0), staticDims(3, 6), staticDims(1, 1))

	resolved := Canonicalize(g, []*Node{slice})[0]
	require.Equal(t, OpTypeEmpty, resolved.Type())
	assert.Equal(t, shapes.Make(dtypes.Float32, 3, 6), resolved.Shape())

	g2 := New("canon2")
	extent2 := Parameter(g2, "n", shapes.Scalar(dtypes.Int64))
	empty2 := Empty(g2, shapes.Make(dtypes.Float32, dyn, 1, 6), extent2)
	collapsed := CollapseShape(empty2, [][]int{{0, 1}, {2}})

	resolved = Canonicalize(g2, []*Node{collapsed})[0]
	require.Equal(t, OpTypeEmpty, resolved.Type())
	assert.Equal(t, shapes.Make(dtypes.Float32, dyn, 6), resolved.Shape())
	require.Equal(t, 1, resolved.NumInputs())
	assert.Equal(t, extent2, resolved.Input(0))
}

func TestCanonicalizeCastOfPad(t *testing.T) {
	g := New("canon")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 4, dyn))
	zero := Constant(g, ScalarLiteralFloat(dtypes.Float32, 0))
	pad := Pad(x, staticDims(0, 0), staticDims(1, 0), zero, false)
	require.Equal(t, shapes.Make(dtypes.Float32, 5, dyn), pad.Shape())
	cast := Cast(pad, shapes.Make(dtypes.Float32, 5, 7))

	resolved := Canonicalize(g, []*Node{cast})[0]
	require.Equal(t, OpTypePad, resolved.Type())
	assert.Equal(t, shapes.Make(dtypes.Float32, 5, 7), resolved.Shape())
	assert.Equal(t, x, resolved.Source())
	require.NoError(t, resolved.Verify())
}

func TestCanonicalizePadConstantArguments(t *testing.T) {
	g := New("canon")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 4))
	zero := Constant(g, ScalarLiteralFloat(dtypes.Float32, 0))
	high := []DimExpr{DynamicDim(ConstantIndex(g, 2))}
	pad := Pad(x, staticDims(0), high, zero, false)
	require.Equal(t, shapes.Make(dtypes.Float32, dyn), pad.Shape())

	resolved := Canonicalize(g, []*Node{pad})[0]
	// The refined pad keeps a cast back to the declared dynamic type.
	require.Equal(t, OpTypeCast, resolved.Type())
	newPad := resolved.Source()
	require.Equal(t, OpTypePad, newPad.Type())
	assert.Equal(t, []int64{2}, newPad.StaticHighPad())
	assert.Equal(t, []int64{0}, newPad.StaticLowPad())
	assert.Equal(t, shapes.Make(dtypes.Float32, 6), newPad.Shape())
	require.NoError(t, newPad.Verify())
}

func TestCanonicalizeZeroPadBecomesCast(t *testing.T) {
	g := New("canon")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 4, dyn))
	zero := Constant(g, ScalarLiteralFloat(dtypes.Float32, 0))

	pad := Pad(x, staticDims(0, 0), staticDims(0, 0), zero, false)
	resolved := Canonicalize(g, []*Node{pad})[0]
	// The zero pad turns into a cast, and the same-type cast folds away.
	assert.Equal(t, x, resolved)

	// nofold keeps the pad as a distinct allocation.
	g2 := New("canon2")
	x2 := Parameter(g2, "x", shapes.Make(dtypes.Float32, 4, dyn))
	zero2 := Constant(g2, ScalarLiteralFloat(dtypes.Float32, 0))
	nofold := Pad(x2, staticDims(0, 0), staticDims(0, 0), zero2, true)
	resolved = Canonicalize(g2, []*Node{nofold})[0]
	assert.Equal(t, nofold, resolved)
}

func TestCanonicalizeReassociativeOfFromElements(t *testing.T) {
	g := New("canon")
	elements := make([]*Node, 4)
	for ii := range elements {
		elements[ii] = Parameter(g, "", shapes.Scalar(dtypes.Float32))
	}
	fe := FromElements(g, shapes.Make(dtypes.Float32, 4), elements...)
	expanded := ExpandShape(fe, [][]int{{0, 1}}, shapes.Make(dtypes.Float32, 2, 2))

	resolved := Canonicalize(g, []*Node{expanded})[0]
	require.Equal(t, OpTypeFromElements, resolved.Type())
	assert.Equal(t, shapes.Make(dtypes.Float32, 2, 2), resolved.Shape())
	assert.Equal(t, elements[3], resolved.Input(3))
}

func TestCanonicalizeGenerateStaticShapeDims(t *testing.T) {
	g := New("canon")
	generate := Generate(g, shapes.Make(dtypes.Float32, dyn), []*Node{ConstantIndex(g, 5)},
		func(coordinates []*Node) *Node {
			return Constant(g, ScalarLiteralFloat(dtypes.Float32, 1))
		})

	resolved := Canonicalize(g, []*Node{generate})[0]
	require.Equal(t, OpTypeCast, resolved.Type())
	refined := resolved.Source()
	require.Equal(t, OpTypeGenerate, refined.Type())
	assert.Equal(t, shapes.Make(dtypes.Float32, 5), refined.Shape())
	require.NoError(t, refined.Verify())
}
