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

// OpType identifies the operation kind of a Node.
//
// The set of kinds is closed: verification, folding and canonicalization
// dispatch on the OpType through fixed tables, there is no open registration
// of new kinds.
type OpType int

//go:generate go tool enumer -type=OpType -trimprefix=OpType optype.go

const (
	OpTypeInvalid OpType = iota

	// OpTypeParameter is a graph input: a free tensor value of a declared
	// shape, not computed by any operation.
	OpTypeParameter

	// OpTypeConstant materializes a Literal.
	OpTypeConstant

	// OpTypeRegionArg is an argument of a Region (see Generate and Pad); it
	// only exists inside a region's body.
	OpTypeRegionArg

	// OpTypeCast converts between compatible shapes of the same element
	// type, adding or removing static shape information. Casts towards a
	// more static shape carry an implied runtime shape check.
	OpTypeCast

	// OpTypeCollapseShape merges contiguous groups of axes according to a
	// reassociation mapping.
	OpTypeCollapseShape

	// OpTypeDim queries the runtime dimension of one axis of a tensor, as a
	// scalar index value.
	OpTypeDim

	// OpTypeEmpty constructs a tensor of a given shape with undefined
	// contents, one runtime size operand per dynamic axis.
	OpTypeEmpty

	// OpTypeExpandShape splits axes into contiguous groups according to a
	// reassociation mapping; the inverse of OpTypeCollapseShape.
	OpTypeExpandShape

	// OpTypeExtract reads one element at the given indices.
	OpTypeExtract

	// OpTypeExtractSlice extracts a strided sub-tensor, possibly
	// rank-reducing unit axes.
	OpTypeExtractSlice

	// OpTypeFromElements assembles a statically shaped tensor from scalar
	// element operands, in row-major order.
	OpTypeFromElements

	// OpTypeGather picks element-wise slices of a source at the given
	// indices along the gather_dims axes.
	OpTypeGather

	// OpTypeGenerate builds a tensor by evaluating a region once per
	// element, the region taking one index argument per axis.
	OpTypeGenerate

	// OpTypeInsert writes one scalar into a destination tensor at the given
	// indices.
	OpTypeInsert

	// OpTypeInsertSlice inserts a tensor into a strided sub-region of a
	// destination tensor.
	OpTypeInsertSlice

	// OpTypePad extends a tensor with low/high padding per axis, the padding
	// value computed by a region.
	OpTypePad

	// OpTypeParallelInsertSlice is the parallel-combining variant of
	// OpTypeInsertSlice, used by tiling-style producers; verification rules
	// are the same.
	OpTypeParallelInsertSlice

	// OpTypeRank queries the rank of a tensor as a scalar index value.
	OpTypeRank

	// OpTypeReshape reinterprets a tensor with a new shape taken from a 1-D
	// shape operand, preserving the total element count.
	OpTypeReshape

	// OpTypeScatter writes element-wise slices of a source into a
	// destination at the given indices along the scatter_dims axes. It
	// requires an explicit unique-indices attestation.
	OpTypeScatter

	// OpTypeSplat fills a statically shaped tensor with one scalar operand.
	OpTypeSplat
)
