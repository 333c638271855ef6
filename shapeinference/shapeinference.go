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

// Package shapeinference calculates the shapes resulting from the tensor IR
// operations and validates their inputs.
//
// It is pure shape arithmetic: no graph values are involved, only static
// dimensions (with shapes.DynamicSize marking the runtime-only ones). The
// graph package calls into it from builders, verifiers, folders and
// canonicalization patterns, so the same inference is shared by all of them.
//
// The slice functions deal in the "static" halves of the mixed
// offsets/sizes/strides lists: per axis either a compile-time value or the
// shapes.DynamicSize sentinel standing in for a runtime value.
package shapeinference

import (
	"github.com/gomlx/tensorir/types"
	"github.com/gomlx/tensorir/types/shapes"
	"github.com/pkg/errors"
)

// SliceResultShape returns the shape of a strided slice extraction with the
// given static sizes, not rank-reduced: the result has one axis per size
// entry, dynamic wherever the size is dynamic.
func SliceResultShape(source shapes.Shape, staticSizes []int64) shapes.Shape {
	dims := make([]int, len(staticSizes))
	for axis, size := range staticSizes {
		if size == shapes.DynamicSize {
			dims[axis] = shapes.DynamicSize
		} else {
			dims[axis] = int(size)
		}
	}
	return shapes.Make(source.DType, dims...)
}

// unitDimsToDrop marks the first count axes with dimension 1, scanning from
// the leading axis. This is what makes the rank-reduction tie-break
// deterministic: e.g. [1 6 1] reduced to rank 2 drops axis 0 and yields
// [6 1], never [1 6].
func unitDimsToDrop(count int, dims []int) types.Set[int] {
	drop := types.MakeSet[int](count)
	for axis, dim := range dims {
		if count == 0 {
			break
		}
		if dim == 1 {
			drop.Insert(axis)
			count--
		}
	}
	return drop
}

// RankReducedSliceResultShape returns the canonical rank-reduced shape of a
// strided slice extraction for the given desired rank: starting from the
// non-rank-reduced inferred shape, it drops exactly rank-difference many
// unit axes, leading ones first. If the desired rank is not smaller, the
// non-rank-reduced shape is returned unchanged.
func RankReducedSliceResultShape(source shapes.Shape, staticSizes []int64, desiredRank int) shapes.Shape {
	inferred := SliceResultShape(source, staticSizes)
	rankDiff := inferred.Rank() - desiredRank
	if rankDiff <= 0 {
		return inferred
	}
	drop := unitDimsToDrop(rankDiff, inferred.Dimensions)
	projected := make([]int, 0, desiredRank)
	for axis, dim := range inferred.Dimensions {
		if drop.Has(axis) {
			continue
		}
		projected = append(projected, dim)
	}
	return shapes.Make(inferred.DType, projected...)
}

// ComputeRankReductionMask returns the set of axes of originalDims dropped to
// obtain reducedDims, matching greedily from the leading axis. Only unit
// axes may be dropped. ok is false when reducedDims cannot be obtained from
// originalDims by dropping unit axes.
func ComputeRankReductionMask(originalDims, reducedDims []int) (dropped types.Set[int], ok bool) {
	if len(originalDims) < len(reducedDims) {
		return nil, false
	}
	dropped = types.MakeSet[int](len(originalDims) - len(reducedDims))
	reducedAxis := 0
	for originalAxis, dim := range originalDims {
		if reducedAxis < len(reducedDims) && dim == reducedDims[reducedAxis] {
			reducedAxis++
			continue
		}
		dropped.Insert(originalAxis)
		if dim != 1 {
			return nil, false
		}
	}
	if reducedAxis != len(reducedDims) {
		return nil, false
	}
	return dropped, true
}

// SliceVerificationResult classifies how a declared slice result type relates
// to the inferred (non-rank-reduced) one.
type SliceVerificationResult int

const (
	// SliceVerificationOK means the declared type is the inferred type up to
	// legal rank reduction.
	SliceVerificationOK SliceVerificationResult = iota

	// SliceRankTooLarge means the declared rank exceeds the inferred rank.
	SliceRankTooLarge

	// SliceSizeMismatch means the declared dimensions cannot be obtained from
	// the inferred ones by dropping unit axes.
	SliceSizeMismatch

	// SliceElementTypeMismatch means the element types differ.
	SliceElementTypeMismatch
)

// VerifySliceResult checks that the declared type equals the expected
// (non-rank-reduced) inferred type up to legal rank reduction, classifying
// any mismatch.
func VerifySliceResult(expected, declared shapes.Shape) SliceVerificationResult {
	if expected.Equal(declared) {
		return SliceVerificationOK
	}
	if expected.Rank() < declared.Rank() {
		return SliceRankTooLarge
	}
	if _, ok := ComputeRankReductionMask(expected.Dimensions, declared.Dimensions); !ok {
		return SliceSizeMismatch
	}
	if expected.DType != declared.DType {
		return SliceElementTypeMismatch
	}
	return SliceVerificationOK
}

// SliceError converts a non-OK SliceVerificationResult into the diagnostic
// reported by the slice verifiers, naming the expected and declared types.
func SliceError(result SliceVerificationResult, opName string, expected, declared shapes.Shape) error {
	switch result {
	case SliceRankTooLarge:
		return errors.Errorf("%s result rank is too large: expected %s or a rank-reduced version, got %s",
			opName, expected, declared)
	case SliceSizeMismatch:
		return errors.Errorf("%s result sizes mismatch: expected %s or a rank-reduced version, got %s",
			opName, expected, declared)
	case SliceElementTypeMismatch:
		return errors.Errorf("%s result element type mismatch: expected %s, got %s",
			opName, expected, declared)
	}
	return nil
}

// VerifyReassociation validates that reassociation is a partition of totalRank
// axes into contiguous, non-empty, covering groups, in order.
func VerifyReassociation(reassociation [][]int, totalRank int) error {
	next := 0
	for groupIdx, group := range reassociation {
		if len(group) == 0 {
			return errors.Errorf("reassociation group #%d is empty", groupIdx)
		}
		for _, axis := range group {
			if axis != next {
				return errors.Errorf("reassociation group #%d is not contiguous: got axis %d, expected %d",
					groupIdx, axis, next)
			}
			next++
		}
	}
	if next != totalRank {
		return errors.Errorf("reassociation covers %d axes, expected %d", next, totalRank)
	}
	return nil
}

// CollapsedShape returns the shape obtained by merging the axes of source
// according to the reassociation: per group, the product of the member
// dimensions, or dynamic if any member is dynamic.
//
// It panics if the reassociation is malformed; callers are expected to have
// validated it with VerifyReassociation.
func CollapsedShape(source shapes.Shape, reassociation [][]int) shapes.Shape {
	dims := make([]int, len(reassociation))
	for groupIdx, group := range reassociation {
		merged := 1
		for _, axis := range group {
			dim := source.Dim(axis)
			if dim == shapes.DynamicSize {
				merged = shapes.DynamicSize
				break
			}
			merged *= dim
		}
		dims[groupIdx] = merged
	}
	return shapes.Make(source.DType, dims...)
}

// GatherResultShape returns the shape of a gather of source at the given
// indices: the leading axes of indices minus its last (coordinate) axis,
// followed by the source axes. Gathered axes are kept as size 1 in the full
// form, or dropped entirely in the rank-reduced form. gatherDims must be
// strictly increasing; see VerifyGatherDims.
//
// The same inference serves scatter, where it constrains the shape of the
// source (the updates) against the destination.
func GatherResultShape(source, indices shapes.Shape, gatherDims []int, rankReduced bool) shapes.Shape {
	dims := make([]int, 0, indices.Rank()-1+source.Rank())
	dims = append(dims, indices.Dimensions[:indices.Rank()-1]...)
	gathered := types.SetWith(gatherDims...)
	for axis, dim := range source.Dimensions {
		if gathered.Has(axis) {
			if !rankReduced {
				dims = append(dims, 1)
			}
			continue
		}
		dims = append(dims, dim)
	}
	return shapes.Make(source.DType, dims...)
}

// VerifyGatherDims validates a gather_dims/scatter_dims list against the rank
// of the indexed operand: non-empty, strictly increasing, and within
// [0, rank). which names the list ("gather_dims" or "scatter_dims") and
// operand names the indexed operand for the diagnostics.
func VerifyGatherDims(dims []int, rank int, which, operand string) error {
	if len(dims) == 0 {
		return errors.Errorf("%s must be non-empty", which)
	}
	if len(dims) > rank {
		return errors.Errorf("%s overflow %s rank: got %d values for rank %d", which, operand, len(dims), rank)
	}
	for _, axis := range dims {
		if axis < 0 {
			return errors.Errorf("%s value must be non-negative, got %d", which, axis)
		}
		if axis >= rank {
			return errors.Errorf("%s value must be smaller than %s rank %d, got %d", which, operand, rank, axis)
		}
	}
	for ii := 1; ii < len(dims); ii++ {
		if dims[ii-1] >= dims[ii] {
			return errors.Errorf("%s values must be strictly increasing, got %v", which, dims)
		}
	}
	return nil
}

// PadResultShape returns the shape of padding source with the given static
// low/high padding amounts: per axis source+low+high, or dynamic if the
// source dimension or either padding amount is dynamic.
func PadResultShape(source shapes.Shape, staticLow, staticHigh []int64) shapes.Shape {
	dims := make([]int, source.Rank())
	for axis, dim := range source.Dimensions {
		if dim == shapes.DynamicSize ||
			staticLow[axis] == shapes.DynamicSize ||
			staticHigh[axis] == shapes.DynamicSize {
			dims[axis] = shapes.DynamicSize
			continue
		}
		dims[axis] = dim + int(staticLow[axis]) + int(staticHigh[axis])
	}
	return shapes.Make(source.DType, dims...)
}
