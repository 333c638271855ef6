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

// Package graph implements a tensor-level intermediate representation and
// the local transformations defined on it: per-operation verification,
// constant folding and canonicalization rewrites, and shape reification.
//
// A Graph is an arena of Nodes. Each Node is one operation: it points at its
// input nodes, carries the static attributes of the operation (offsets,
// sizes, padding amounts, ...) and its result shape. Nodes keep use lists,
// so rewrites can replace a value everywhere it is consumed.
//
// The op builders (Cast, ExtractSlice, Pad, ...) create nodes and infer
// result shapes where the operation determines them. Node.Verify and
// Graph.Verify check well-formedness and return diagnostics as errors.
// Canonicalize drives the folding and rewrite patterns to a fixed point.
package graph

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/tensorir/types/shapes"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// NodeId is a unique identifier of a Node within a Graph. It is dense: ids
// are assigned sequentially on node creation and never reused.
type NodeId int

// InvalidNodeId represents an invalid (or non-existent) node.
const InvalidNodeId = NodeId(-1)

// Graph is an arena of operation nodes. It owns every Node created through
// the op builders and hands out dense ids.
//
// A Graph is not thread-safe: build and rewrite it from one goroutine at a
// time.
type Graph struct {
	name  string
	nodes []*Node

	// nextParameter counts anonymous parameters for naming.
	nextParameter int
}

// New creates an empty Graph with the given name.
func New(name string) *Graph {
	if name == "" {
		name = "unnamed"
	}
	return &Graph{name: name}
}

// Name of the graph, set during construction.
func (g *Graph) Name() string { return g.name }

// AssertValid panics if the graph is nil.
func (g *Graph) AssertValid() {
	if g == nil {
		exceptions.Panicf("Graph is nil")
	}
}

// NumNodes returns the number of nodes ever created in the graph, including
// erased ones. Node ids are always smaller than NumNodes.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NodeById returns the node with the given id. It panics for out-of-range
// ids and returns nil for erased nodes.
func (g *Graph) NodeById(id NodeId) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		exceptions.Panicf("Graph %q has no node with id %d", g.name, id)
	}
	n := g.nodes[id]
	if n.erased {
		return nil
	}
	return n
}

// Nodes returns the alive (non-erased) nodes of the graph, in creation
// order.
func (g *Graph) Nodes() []*Node {
	alive := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if !n.erased {
			alive = append(alive, n)
		}
	}
	return alive
}

// newNode creates a node in the arena and registers the use edges on its
// inputs. All op builders funnel through here.
func (g *Graph) newNode(shape shapes.Shape, inputs nodeInputs, inputNodes []*Node) *Node {
	g.AssertValid()
	for _, input := range inputNodes {
		input.AssertValid()
		if input.graph != g {
			exceptions.Panicf("cannot mix nodes of different graphs: input node #%d belongs to graph %q, not to %q",
				input.id, input.graph.name, g.name)
		}
	}
	n := &Node{
		graph:      g,
		shape:      shape,
		id:         NodeId(len(g.nodes)),
		inputs:     inputs,
		inputNodes: inputNodes,
	}
	g.nodes = append(g.nodes, n)
	for _, input := range inputNodes {
		input.users = append(input.users, n)
	}
	return n
}

// Verify checks every alive node of the graph and returns the combined
// diagnostics, or nil if the whole graph is well-formed. Each individual
// error names the offending node.
func (g *Graph) Verify() (err error) {
	g.AssertValid()
	for _, n := range g.nodes {
		if n.erased {
			continue
		}
		if nodeErr := n.Verify(); nodeErr != nil {
			err = multierr.Append(err, errors.WithMessagef(nodeErr, "node #%d (%s)", n.id, n.Type()))
		}
	}
	return
}
