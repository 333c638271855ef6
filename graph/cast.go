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
	"github.com/gomlx/tensorir/types/shapes"
)

// AreCastCompatible returns whether a Cast between the two shapes is legal:
// same element type and, when both are ranked, same rank with every pair of
// static extents agreeing. Unranked shapes are compatible with everything of
// the same element type.
func AreCastCompatible(source, target shapes.Shape) bool {
	if !source.Ok() || !target.Ok() {
		return false
	}
	return source.Compatible(target)
}

// CanFoldIntoConsumerOp returns whether the cast only erases static
// information: every static extent of the cast result is also static (and
// equal) in the cast source. A consumer of such a cast can use the cast
// source directly and lose nothing.
//
// Example: a cast from (F32)[8 16] to (F32)[? 16] can fold into its
// consumers, a cast from (F32)[? 16] to (F32)[8 16] cannot.
func CanFoldIntoConsumerOp(cast *Node) bool {
	if cast == nil || cast.Type() != OpTypeCast {
		return false
	}
	return shapes.PreservesStaticInformation(cast.Shape(), cast.Source().Shape())
}

// CanFoldIntoProducerOp returns whether the cast only adds static
// information: every static extent of the cast source is also static (and
// equal) in the cast result. The producer of the cast's operand can then
// produce the cast result type directly.
//
// Example: a cast from (F32)[? 16] to (F32)[8 16] can fold into its
// producer, a cast from (F32)[8 16] to (F32)[? 16] cannot.
func CanFoldIntoProducerOp(cast *Node) bool {
	if cast == nil || cast.Type() != OpTypeCast {
		return false
	}
	return shapes.PreservesStaticInformation(cast.Source().Shape(), cast.Shape())
}

// foldableCastSource returns the source of v when v is a cast that can fold
// into its consumers, and nil otherwise. Rewrite patterns use it to bypass
// information-erasing casts.
func foldableCastSource(v *Node) *Node {
	if v == nil || v.Type() != OpTypeCast || !CanFoldIntoConsumerOp(v) {
		return nil
	}
	return v.Source()
}
