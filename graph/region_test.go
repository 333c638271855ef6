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

func TestRegionConstantYield(t *testing.T) {
	g := New("region")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 4))
	zero := Constant(g, ScalarLiteralFloat(dtypes.Float32, 0))

	constantPad := Pad(x, staticDims(1), staticDims(0), zero, false)
	value, ok := constantPad.Region().ConstantYield()
	require.True(t, ok)
	assert.Equal(t, zero, value)

	dependent := PadGenerated(x, staticDims(1), staticDims(0), false,
		func(coordinates []*Node) *Node {
			return Extract(x, coordinates...)
		})
	_, ok = dependent.Region().ConstantYield()
	assert.False(t, ok)
}

func TestRegionInline(t *testing.T) {
	g := New("region")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 3, 3))
	generate := Generate(g, shapes.Make(dtypes.Float32, 3, 3), nil,
		func(coordinates []*Node) *Node {
			return Extract(x, coordinates[1], coordinates[0])
		})

	i := ConstantIndex(g, 1)
	j := ConstantIndex(g, 2)
	value := generate.Region().Inline([]*Node{i, j})
	require.Equal(t, OpTypeExtract, value.Type())
	// The transposed coordinates come through the mapping.
	assert.Equal(t, j, value.Input(1))
	assert.Equal(t, i, value.Input(2))
	// x is not argument-dependent and is shared, not cloned.
	assert.Equal(t, x, value.Input(0))
}

func TestRegionClone(t *testing.T) {
	g := New("region")
	x := Parameter(g, "x", shapes.Make(dtypes.Float32, 4))
	original := PadGenerated(x, staticDims(1), staticDims(0), false,
		func(coordinates []*Node) *Node {
			return Extract(x, coordinates...)
		})

	clone := original.Region().Clone()
	require.Equal(t, original.Region().NumArgs(), clone.NumArgs())
	assert.NotEqual(t, original.Region().Arg(0), clone.Arg(0))
	assert.NotEqual(t, original.Region().Yield(), clone.Yield())
	// The argument-dependent yield was deep-copied onto the fresh arguments.
	assert.Equal(t, clone.Arg(0), clone.Yield().Input(1))
	assert.Equal(t, x, clone.Yield().Input(0))
}
