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
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/types/shapes"
)

// Region is the element-producing body of a region-carrying node (Generate,
// Pad). Its arguments are the element coordinates, one scalar Int64 node per
// axis, and its yield is the node computing the element value at those
// coordinates.
//
// Region body nodes live in the same Graph arena as everything else: a node
// "belongs" to the region if it transitively depends on one of the region's
// arguments.
type Region struct {
	graph *Graph
	args  []*Node
	yield *Node
}

// newRegion creates a region with numArgs coordinate arguments.
func (g *Graph) newRegion(numArgs int) *Region {
	r := &Region{graph: g}
	r.args = make([]*Node, numArgs)
	for ii := range r.args {
		r.args[ii] = g.newNode(shapes.Scalar(dtypes.Int64), &nodeInputsRegionArg{index: ii}, nil)
	}
	return r
}

// Args returns the coordinate argument nodes, one per axis.
func (r *Region) Args() []*Node { return r.args }

// NumArgs returns the number of coordinate arguments.
func (r *Region) NumArgs() int { return len(r.args) }

// Arg returns the idx-th coordinate argument node.
func (r *Region) Arg(idx int) *Node { return r.args[idx] }

// Yield returns the node computing the element value.
func (r *Region) Yield() *Node { return r.yield }

func (r *Region) setYield(yield *Node) {
	yield.AssertValid()
	if yield.graph != r.graph {
		exceptions.Panicf("region yield node belongs to graph %q, not to %q",
			yield.graph.name, r.graph.name)
	}
	r.yield = yield
}

// dependsOnArgs returns whether n transitively depends on any of the
// region's arguments.
func (r *Region) dependsOnArgs(n *Node) bool {
	targets := make(map[*Node]bool, len(r.args))
	for _, arg := range r.args {
		targets[arg] = true
	}
	return reachesAny(n, targets, make(map[*Node]bool))
}

// reachesAny returns whether n is one of targets or transitively depends on
// one, memoizing per node.
func reachesAny(n *Node, targets map[*Node]bool, memo map[*Node]bool) bool {
	if targets[n] {
		return true
	}
	if reached, visited := memo[n]; visited {
		return reached
	}
	memo[n] = false // guards against cycles, the graph should have none.
	reached := false
	for _, input := range n.inputNodes {
		if reachesAny(input, targets, memo) {
			reached = true
			break
		}
	}
	if !reached && n.region != nil && n.region.yield != nil {
		reached = reachesAny(n.region.yield, targets, memo)
	}
	memo[n] = reached
	return reached
}

// ConstantYield returns the yielded value if the region produces the same
// value at every coordinate: the yield is either a Constant node or a value
// that doesn't depend on the region's arguments. It returns (nil, false)
// otherwise.
func (r *Region) ConstantYield() (*Node, bool) {
	if r.yield == nil {
		return nil, false
	}
	if r.yield.Type() == OpTypeConstant {
		return r.yield, true
	}
	if !r.dependsOnArgs(r.yield) {
		return r.yield, true
	}
	return nil, false
}

// Clone returns a deep copy of the region: fresh argument nodes and a copy
// of every body node that depends on them. Nodes the body uses but that
// don't depend on the arguments are shared, not copied.
func (r *Region) Clone() *Region {
	mapping := make(map[*Node]*Node, len(r.args)+1)
	return r.cloneWithMapping(mapping)
}

func (r *Region) cloneWithMapping(mapping map[*Node]*Node) *Region {
	clone := r.graph.newRegion(len(r.args))
	for ii, arg := range r.args {
		mapping[arg] = clone.args[ii]
	}
	clone.yield = cloneNodeWithMapping(r.yield, mapping)
	return clone
}

// Inline returns the value the region produces at the given coordinates:
// the body is copied with the arguments substituted by the coordinate
// nodes. Body nodes not depending on the arguments are reused as is.
func (r *Region) Inline(coordinates []*Node) *Node {
	if len(coordinates) != len(r.args) {
		exceptions.Panicf("Region.Inline: region has %d arguments, got %d coordinates",
			len(r.args), len(coordinates))
	}
	mapping := make(map[*Node]*Node, len(r.args))
	for ii, arg := range r.args {
		mapping[arg] = coordinates[ii]
	}
	return cloneNodeWithMapping(r.yield, mapping)
}

// cloneNodeWithMapping copies the sub-graph rooted at n, substituting nodes
// per mapping. Nodes that don't transitively reach a mapping key are shared.
// Payloads are shared: they are immutable after construction.
func cloneNodeWithMapping(n *Node, mapping map[*Node]*Node) *Node {
	if replacement, ok := mapping[n]; ok {
		return replacement
	}
	targets := make(map[*Node]bool, len(mapping))
	for key := range mapping {
		targets[key] = true
	}
	if !reachesAny(n, targets, make(map[*Node]bool)) {
		return n
	}
	newInputs := make([]*Node, len(n.inputNodes))
	for ii, input := range n.inputNodes {
		newInputs[ii] = cloneNodeWithMapping(input, mapping)
	}
	clone := n.graph.newNode(n.shape, n.inputs, newInputs)
	if n.region != nil {
		clone.region = n.region.cloneWithMapping(mapping)
	}
	mapping[n] = clone
	return clone
}
