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

// Package xslices provide missing functionality to the slices package.
package xslices

import (
	"golang.org/x/exp/constraints"
)

// Map executes the given function sequentially for every element on in, and returns a mapped slice.
func Map[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}

// Count the number of elements of the slice for which fn evaluates to true.
func Count[T any](slice []T, fn func(e T) bool) (count int) {
	for _, e := range slice {
		if fn(e) {
			count++
		}
	}
	return
}

// All returns whether fn evaluates to true for every element of the slice.
// It is trivially true for an empty slice.
func All[T any](slice []T, fn func(e T) bool) bool {
	for _, e := range slice {
		if !fn(e) {
			return false
		}
	}
	return true
}

// Product of the elements of the slice. It returns 1 for an empty slice.
func Product[T constraints.Integer | constraints.Float](slice []T) (product T) {
	product = T(1)
	for _, e := range slice {
		product *= e
	}
	return
}
