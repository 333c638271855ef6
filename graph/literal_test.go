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
	"github.com/x448/float16"
)

func TestLiteralSplatNormalization(t *testing.T) {
	shape := shapes.Make(dtypes.Int32, 2, 3)
	dense := LiteralFromInts(shape, []int64{7, 7, 7, 7, 7, 7})
	assert.True(t, dense.IsSplat())
	assert.Equal(t, int64(7), dense.Int(5))

	mixed := LiteralFromInts(shape, []int64{7, 7, 7, 7, 7, 8})
	assert.False(t, mixed.IsSplat())
	assert.Equal(t, int64(8), mixed.Int(5))
}

func TestLiteralFloatQuantization(t *testing.T) {
	want := float64(float16.Fromfloat32(0.1).Float32())
	l := SplatLiteralFloat(shapes.Make(dtypes.Float16, 4), 0.1)
	assert.Equal(t, want, l.Float(0))

	// Float64 keeps the value untouched.
	l = SplatLiteralFloat(shapes.Make(dtypes.Float64, 4), 0.1)
	assert.Equal(t, 0.1, l.Float(0))
}

func TestLiteralSlice(t *testing.T) {
	shape := shapes.Make(dtypes.Int64, 2, 4)
	l := LiteralFromInts(shape, []int64{
		0, 1, 2, 3,
		4, 5, 6, 7,
	})

	got := l.Slice([]int64{0, 1}, []int64{2, 2}, []int64{1, 1})
	require.Equal(t, shapes.Make(dtypes.Int64, 2, 2), got.Shape())
	assert.Equal(t, []int64{1, 2, 5, 6}, []int64{got.Int(0), got.Int(1), got.Int(2), got.Int(3)})

	// Strided walk.
	got = l.Slice([]int64{0, 0}, []int64{1, 2}, []int64{1, 3})
	require.Equal(t, shapes.Make(dtypes.Int64, 1, 2), got.Shape())
	assert.Equal(t, int64(0), got.Int(0))
	assert.Equal(t, int64(3), got.Int(1))
}

func TestLiteralResizeSplat(t *testing.T) {
	scalar := ScalarLiteralFloat(dtypes.Float32, 2.5)
	grown := scalar.ResizeSplat(shapes.Make(dtypes.Float32, 3, 3))
	assert.True(t, grown.IsSplat())
	assert.Equal(t, 2.5, grown.Float(8))
}

func TestLiteralSameElements(t *testing.T) {
	a := LiteralFromInts(shapes.Make(dtypes.Int64, 4), []int64{1, 2, 3, 4})
	b := LiteralFromInts(shapes.Make(dtypes.Int64, 2, 2), []int64{1, 2, 3, 4})
	assert.True(t, a.SameElements(b))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(a.WithShape(shapes.Make(dtypes.Int64, 4))))

	c := LiteralFromInts(shapes.Make(dtypes.Int64, 4), []int64{1, 2, 3, 5})
	assert.False(t, a.SameElements(c))

	// Splats compare their repeated element, even across sizes.
	s1 := SplatLiteralFloat(shapes.Make(dtypes.Float32, 2), 1.5)
	s2 := SplatLiteralFloat(shapes.Make(dtypes.Float32, 3, 3), 1.5)
	assert.True(t, s1.SameElements(s2))
	assert.False(t, s1.SameElements(SplatLiteralFloat(shapes.Make(dtypes.Float32, 2), 2.5)))
	assert.False(t, a.SameElements(IndexLiteral(1)))
}

func TestLiteralIndexValue(t *testing.T) {
	idx := IndexLiteral(42)
	value, ok := idx.IndexValue()
	require.True(t, ok)
	assert.Equal(t, int64(42), value)

	_, ok = SplatLiteralFloat(shapes.Make(dtypes.Float32, 2), 1).IndexValue()
	assert.False(t, ok)
}
