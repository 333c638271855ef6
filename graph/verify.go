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
	"github.com/gomlx/tensorir/shapeinference"
	"github.com/pkg/errors"
)

// Verify checks the well-formedness of the node: operand shapes, static
// attributes and the declared result shape, per the invariants of its
// operation. It returns a diagnostic error, or nil.
//
// Builders already reject structurally broken calls, so Verify focuses on
// the semantic invariants: cast compatibility, slice window agreement,
// reassociation validity, index typing and so on.
func (n *Node) Verify() error {
	n.AssertValid()
	switch n.Type() {
	case OpTypeParameter, OpTypeRegionArg:
		return nil
	case OpTypeConstant:
		return n.verifyConstant()
	case OpTypeCast:
		return n.verifyCast()
	case OpTypeCollapseShape:
		return n.verifyCollapseShape()
	case OpTypeDim:
		return n.verifyDim()
	case OpTypeEmpty:
		return n.verifyEmpty()
	case OpTypeExpandShape:
		return n.verifyExpandShape()
	case OpTypeExtract:
		return n.verifyExtract()
	case OpTypeExtractSlice:
		return n.verifyExtractSlice()
	case OpTypeFromElements:
		return n.verifyFromElements()
	case OpTypeGather:
		return n.verifyGather()
	case OpTypeGenerate:
		return n.verifyGenerate()
	case OpTypeInsert:
		return n.verifyInsert()
	case OpTypeInsertSlice, OpTypeParallelInsertSlice:
		return n.verifyInsertSlice()
	case OpTypePad:
		return n.verifyPad()
	case OpTypeRank:
		return nil
	case OpTypeReshape:
		return n.verifyReshape()
	case OpTypeScatter:
		return n.verifyScatter()
	case OpTypeSplat:
		return n.verifySplat()
	}
	return errors.Errorf("unknown operation type %s", n.Type())
}

func isScalarInt(n *Node) bool {
	shape := n.Shape()
	return shape.IsRanked() && shape.IsScalar() && shape.DType.IsInt()
}

func verifyCoordinates(coordinates []*Node, rank int, opName string) error {
	if len(coordinates) != rank {
		return errors.Errorf("%s needs one coordinate per axis: got %d coordinates for rank %d",
			opName, len(coordinates), rank)
	}
	for ii, coord := range coordinates {
		if !isScalarInt(coord) {
			return errors.Errorf("%s coordinate #%d must be a scalar integer, got %s",
				opName, ii, coord.Shape())
		}
	}
	return nil
}

func (n *Node) verifyConstant() error {
	literal := n.inputs.(*nodeInputsConstant).literal
	if !literal.Shape().Equal(n.shape) {
		return errors.Errorf("constant shape %s does not match its literal %s", n.shape, literal)
	}
	return nil
}

func (n *Node) verifyCast() error {
	source := n.Source().Shape()
	if !AreCastCompatible(source, n.shape) {
		return errors.Errorf("operand type %s and result type %s are cast incompatible", source, n.shape)
	}
	return nil
}

func (n *Node) verifyDim() error {
	source := n.Source()
	index := n.inputNodes[1]
	if !isScalarInt(index) {
		return errors.Errorf("dim index must be a scalar integer, got %s", index.Shape())
	}
	if !source.Shape().IsRanked() {
		// Any index is assumed in range for an unranked operand.
		return nil
	}
	if value, ok := index.ConstantIndexValue(); ok {
		if value < 0 || value >= int64(source.Rank()) {
			return errors.Errorf("dim index %d is out of range for operand of rank %d", value, source.Rank())
		}
	}
	return nil
}

func (n *Node) verifyEmpty() error {
	if !n.shape.IsRanked() {
		return errors.Errorf("empty requires a ranked result type, got %s", n.shape)
	}
	numDynamic := n.shape.NumDynamicDims()
	if len(n.inputNodes) != numDynamic {
		return errors.Errorf("empty needs one extent operand per dynamic axis: result %s has %d dynamic axes, got %d operands",
			n.shape, numDynamic, len(n.inputNodes))
	}
	for ii, extent := range n.inputNodes {
		if !isScalarInt(extent) {
			return errors.Errorf("empty extent operand #%d must be a scalar integer, got %s", ii, extent.Shape())
		}
	}
	return nil
}

func (n *Node) verifyExtract() error {
	source := n.Source()
	if !source.Shape().IsRanked() {
		return errors.Errorf("extract requires a ranked operand, got %s", source.Shape())
	}
	if source.DType() != n.DType() {
		return errors.Errorf("extract result dtype %s does not match operand dtype %s", n.DType(), source.DType())
	}
	return verifyCoordinates(n.inputNodes[1:], source.Rank(), "extract")
}

func (n *Node) verifyInsert() error {
	value, dest := n.inputNodes[0], n.inputNodes[1]
	if !value.Shape().IsScalar() {
		return errors.Errorf("insert value must be a scalar, got %s", value.Shape())
	}
	if value.DType() != dest.DType() {
		return errors.Errorf("insert value dtype %s does not match destination dtype %s",
			value.DType(), dest.DType())
	}
	if !dest.Shape().IsRanked() {
		return errors.Errorf("insert requires a ranked destination, got %s", dest.Shape())
	}
	if !n.shape.Equal(dest.Shape()) {
		return errors.Errorf("insert result type %s must match destination type %s", n.shape, dest.Shape())
	}
	return verifyCoordinates(n.inputNodes[2:], dest.Rank(), "insert")
}

func (n *Node) verifyFromElements() error {
	if !n.shape.FullyStatic() {
		return errors.Errorf("from_elements requires a fully static result type, got %s", n.shape)
	}
	if len(n.inputNodes) != n.shape.Size() {
		return errors.Errorf("from_elements needs %d elements for result %s, got %d",
			n.shape.Size(), n.shape, len(n.inputNodes))
	}
	for ii, element := range n.inputNodes {
		if !element.Shape().IsScalar() || element.DType() != n.DType() {
			return errors.Errorf("from_elements element #%d must be a scalar %s, got %s",
				ii, n.DType(), element.Shape())
		}
	}
	return nil
}

func (n *Node) verifySplat() error {
	value := n.Source()
	if !value.Shape().IsScalar() {
		return errors.Errorf("splat value must be a scalar, got %s", value.Shape())
	}
	if value.DType() != n.DType() {
		return errors.Errorf("splat value dtype %s does not match result dtype %s", value.DType(), n.DType())
	}
	if !n.shape.FullyStatic() {
		return errors.Errorf("splat requires a fully static result type, got %s", n.shape)
	}
	return nil
}

func (n *Node) verifyGenerate() error {
	if !n.shape.IsRanked() {
		return errors.Errorf("generate requires a ranked result type, got %s", n.shape)
	}
	numDynamic := n.shape.NumDynamicDims()
	if len(n.inputNodes) != numDynamic {
		return errors.Errorf("generate needs one extent operand per dynamic axis: result %s has %d dynamic axes, got %d operands",
			n.shape, numDynamic, len(n.inputNodes))
	}
	for ii, extent := range n.inputNodes {
		if !isScalarInt(extent) {
			return errors.Errorf("generate extent operand #%d must be a scalar integer, got %s", ii, extent.Shape())
		}
	}
	return n.verifyElementRegion(n.shape.Rank())
}

// verifyElementRegion checks the body region shared by Generate and Pad: one
// scalar integer coordinate argument per axis and a scalar yield of the
// element type.
func (n *Node) verifyElementRegion(rank int) error {
	region := n.region
	if region == nil {
		return errors.Errorf("%s is missing its body region", n.Type())
	}
	if region.NumArgs() != rank {
		return errors.Errorf("expected the body region to have %d coordinate arguments, got %d",
			rank, region.NumArgs())
	}
	yield := region.Yield()
	if yield == nil {
		return errors.Errorf("the body region of %s yields no value", n.Type())
	}
	if !yield.Shape().IsScalar() {
		return errors.Errorf("expected the body region to yield a scalar, got %s", yield.Shape())
	}
	if yield.DType() != n.DType() {
		return errors.Errorf("expected yield type %s to match the element type %s", yield.DType(), n.DType())
	}
	return nil
}

func (n *Node) verifyReshape() error {
	source, shapeOperand := n.inputNodes[0], n.inputNodes[1]
	if source.DType() != n.DType() {
		return errors.Errorf("reshape element types do not match: operand %s, result %s",
			source.DType(), n.DType())
	}
	operandShape := shapeOperand.Shape()
	if !operandShape.IsRanked() || operandShape.Rank() != 1 || !operandShape.DType.IsInt() {
		return errors.Errorf("reshape shape operand must be a 1-D integer tensor, got %s", operandShape)
	}
	if n.shape.IsRanked() {
		if operandShape.IsDynamicDim(0) {
			return errors.Errorf("cannot use shape operand with dynamic length to reshape to statically-ranked tensor type")
		}
		if operandShape.Dim(0) != n.shape.Rank() {
			return errors.Errorf("length of shape operand differs from the result's tensor rank: %d vs %d",
				operandShape.Dim(0), n.shape.Rank())
		}
	}
	if source.Shape().IsRanked() && source.Shape().FullyStatic() &&
		n.shape.IsRanked() && n.shape.FullyStatic() &&
		source.Shape().Size() != n.shape.Size() {
		return errors.Errorf("source and result tensor should have the same number of elements: %d vs %d",
			source.Shape().Size(), n.shape.Size())
	}
	return nil
}

func (n *Node) verifyCollapseShape() error {
	source := n.Source()
	reassociation := n.Reassociation()
	if !source.Shape().IsRanked() {
		return errors.Errorf("collapse_shape requires a ranked operand, got %s", source.Shape())
	}
	if err := shapeinference.VerifyReassociation(reassociation, source.Rank()); err != nil {
		return err
	}
	expected := shapeinference.CollapsedShape(source.Shape(), reassociation)
	if !expected.Equal(n.shape) {
		return errors.Errorf("collapse_shape result type %s does not match the computed type %s", n.shape, expected)
	}
	return nil
}

func (n *Node) verifyExpandShape() error {
	source := n.Source()
	reassociation := n.Reassociation()
	if !n.shape.IsRanked() || !source.Shape().IsRanked() {
		return errors.Errorf("expand_shape requires ranked operand and result, got %s and %s",
			source.Shape(), n.shape)
	}
	if err := shapeinference.VerifyReassociation(reassociation, n.shape.Rank()); err != nil {
		return err
	}
	expected := shapeinference.CollapsedShape(n.shape, reassociation)
	if !expected.Equal(source.Shape()) {
		return errors.Errorf("expand_shape result type %s does not collapse back to the operand type %s (computed %s)",
			n.shape, source.Shape(), expected)
	}
	return nil
}

func (n *Node) verifyExtractSlice() error {
	source := n.Source()
	staticOffsets, staticSizes, staticStrides, _ := n.sliceStatics()
	rank := source.Rank()
	if len(staticOffsets) != rank || len(staticSizes) != rank || len(staticStrides) != rank {
		return errors.Errorf("extract_slice needs one offset/size/stride per operand axis (%d), got %d/%d/%d",
			rank, len(staticOffsets), len(staticSizes), len(staticStrides))
	}
	expected := shapeinference.SliceResultShape(source.Shape(), staticSizes)
	result := shapeinference.VerifySliceResult(expected, n.shape)
	return shapeinference.SliceError(result, "extract_slice", expected, n.shape)
}

func (n *Node) verifyInsertSlice() error {
	source := n.inputNodes[0]
	dest := n.inputNodes[1]
	staticOffsets, staticSizes, staticStrides, _ := n.sliceStatics()
	rank := dest.Rank()
	if len(staticOffsets) != rank || len(staticSizes) != rank || len(staticStrides) != rank {
		return errors.Errorf("%s needs one offset/size/stride per destination axis (%d), got %d/%d/%d",
			n.Type(), rank, len(staticOffsets), len(staticSizes), len(staticStrides))
	}
	// The window type is inferred exactly like extract_slice infers its
	// result, and the source must match it up to rank reduction.
	expected := shapeinference.SliceResultShape(dest.Shape(), staticSizes)
	result := shapeinference.VerifySliceResult(expected, source.Shape())
	if err := shapeinference.SliceError(result, n.Type().String(), expected, source.Shape()); err != nil {
		return err
	}
	if !n.shape.Equal(dest.Shape()) {
		return errors.Errorf("%s result type %s must match destination type %s", n.Type(), n.shape, dest.Shape())
	}
	return nil
}

func (n *Node) verifyPad() error {
	source := n.Source()
	inputs := n.padInputs()
	if !source.Shape().IsRanked() || !n.shape.IsRanked() {
		return errors.Errorf("pad requires ranked operand and result, got %s and %s", source.Shape(), n.shape)
	}
	rank := source.Rank()
	if len(inputs.staticLow) != rank || len(inputs.staticHigh) != rank {
		return errors.Errorf("pad needs one low/high amount per operand axis (%d), got %d/%d",
			rank, len(inputs.staticLow), len(inputs.staticHigh))
	}
	if n.shape.Rank() != rank {
		return errors.Errorf("pad result rank %d does not match operand rank %d", n.shape.Rank(), rank)
	}
	expected := shapeinference.PadResultShape(source.Shape(), inputs.staticLow, inputs.staticHigh)
	for axis := 0; axis < rank; axis++ {
		if n.shape.Dim(axis) == expected.Dim(axis) {
			continue
		}
		if expected.IsDynamicDim(axis) {
			// The declared type may refine a dynamic inferred extent.
			continue
		}
		return errors.Errorf("specified type %s does not match the inferred type %s", n.shape, expected)
	}
	return n.verifyElementRegion(rank)
}

func (n *Node) verifyGather() error {
	source, indices := n.inputNodes[0], n.inputNodes[1]
	gatherDims := n.GatherDims()
	if err := verifyGatherIndices(indices, len(gatherDims), "gather"); err != nil {
		return err
	}
	if err := shapeinference.VerifyGatherDims(gatherDims, source.Rank(), "gather_dims", "gather"); err != nil {
		return err
	}
	expected := shapeinference.GatherResultShape(source.Shape(), indices.Shape(), gatherDims, false)
	expectedRankReduced := shapeinference.GatherResultShape(source.Shape(), indices.Shape(), gatherDims, true)
	if !n.shape.Equal(expected) && !n.shape.Equal(expectedRankReduced) {
		return errors.Errorf("gather result type mismatch: expected %s or its rank-reduced variant %s (got: %s)",
			expected, expectedRankReduced, n.shape)
	}
	return nil
}

func (n *Node) verifyScatter() error {
	source, dest, indices := n.inputNodes[0], n.inputNodes[1], n.inputNodes[2]
	scatterDims := n.ScatterDims()
	if err := verifyGatherIndices(indices, len(scatterDims), "scatter"); err != nil {
		return err
	}
	if err := shapeinference.VerifyGatherDims(scatterDims, dest.Rank(), "scatter_dims", "dest"); err != nil {
		return err
	}
	if !n.inputs.(*nodeInputsScatter).unique {
		return errors.Errorf("scatter requires 'unique' to be set: without it the write order would be unspecified")
	}
	// The updates must have the shape a gather of the destination at the same
	// coordinates would produce.
	expected := shapeinference.GatherResultShape(dest.Shape(), indices.Shape(), scatterDims, false)
	expectedRankReduced := shapeinference.GatherResultShape(dest.Shape(), indices.Shape(), scatterDims, true)
	if !source.Shape().Equal(expected) && !source.Shape().Equal(expectedRankReduced) {
		return errors.Errorf("scatter source type mismatch: expected %s or its rank-reduced variant %s (got: %s)",
			expected, expectedRankReduced, source.Shape())
	}
	if !n.shape.Equal(dest.Shape()) {
		return errors.Errorf("scatter result type %s must match destination type %s", n.shape, dest.Shape())
	}
	return nil
}

func verifyGatherIndices(indices *Node, numDims int, opName string) error {
	shape := indices.Shape()
	if !shape.IsRanked() || shape.Rank() < 1 {
		return errors.Errorf("%s indices must be a ranked tensor of rank >= 1, got %s", opName, shape)
	}
	if !shape.DType.IsInt() {
		return errors.Errorf("%s indices must have an integer element type, got %s", opName, shape.DType)
	}
	if shape.IsDynamicDim(-1) {
		return errors.Errorf("%s indices coordinate axis (the last) must be static, got %s", opName, shape)
	}
	if shape.Dim(-1) != numDims {
		return errors.Errorf("%s indices coordinate axis must have one entry per indexed axis: got %d, want %d",
			opName, shape.Dim(-1), numDims)
	}
	return nil
}
