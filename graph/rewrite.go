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
	"k8s.io/klog/v2"
)

// Rewriter mutates a graph while keeping its use lists consistent. All
// rewrites -- folding and canonicalization patterns alike -- go through it,
// and it records every replacement so callers can track their node handles
// across rewrites.
type Rewriter struct {
	graph                *Graph
	replacements         map[*Node]*Node
	changed              bool
	constantSliceControl func(*Node) bool
}

// NewRewriter returns a Rewriter for the graph.
func NewRewriter(g *Graph) *Rewriter {
	g.AssertValid()
	return &Rewriter{graph: g, replacements: make(map[*Node]*Node)}
}

// Replace substitutes newNode for every use of old, erases old and records
// the replacement. old and newNode must be different nodes of the same
// graph.
func (rw *Rewriter) Replace(old, newNode *Node) {
	old.AssertValid()
	newNode.AssertValid()
	if old == newNode {
		exceptions.Panicf("Rewriter.Replace: old and new are the same node #%d", old.id)
	}
	if old.graph != rw.graph || newNode.graph != rw.graph {
		exceptions.Panicf("Rewriter.Replace: nodes must belong to the rewriter's graph %q", rw.graph.name)
	}
	users := old.users
	old.users = nil
	for _, user := range users {
		for ii, input := range user.inputNodes {
			if input == old {
				user.inputNodes[ii] = newNode
			}
		}
	}
	newNode.users = append(newNode.users, users...)
	// Region yields are uses too, but live outside the operand lists.
	for _, n := range rw.graph.nodes {
		if n.erased || n.region == nil {
			continue
		}
		if n.region.yield == old {
			n.region.yield = newNode
		}
	}
	rw.replacements[old] = newNode
	rw.erase(old)
	rw.changed = true
}

// UpdateOperand redirects the idx-th operand of n to operand, keeping the
// use lists consistent. It is the in-place rewrite used by folds that only
// change where a node reads from.
func (rw *Rewriter) UpdateOperand(n *Node, idx int, operand *Node) {
	n.AssertValid()
	operand.AssertValid()
	old := n.inputNodes[idx]
	if old == operand {
		return
	}
	for ii, user := range old.users {
		if user == n {
			old.users = append(old.users[:ii], old.users[ii+1:]...)
			break
		}
	}
	n.inputNodes[idx] = operand
	operand.users = append(operand.users, n)
	rw.changed = true
}

// erase removes a node without users from the graph.
func (rw *Rewriter) erase(n *Node) {
	if len(n.users) > 0 {
		exceptions.Panicf("Rewriter cannot erase node #%d (%s): it still has %d users", n.id, n.Type(), len(n.users))
	}
	for _, input := range n.inputNodes {
		for ii, user := range input.users {
			if user == n {
				input.users = append(input.users[:ii], input.users[ii+1:]...)
				break
			}
		}
	}
	n.inputNodes = nil
	n.erased = true
}

// EraseDead removes n from the graph if it has no users left, returning
// whether it was erased. Patterns that bypass an intermediate node call it
// to clean up the now unused producer.
func (rw *Rewriter) EraseDead(n *Node) bool {
	if n.erased || len(n.users) > 0 {
		return false
	}
	rw.erase(n)
	return true
}

// Resolve follows recorded replacements and returns the node currently
// standing for n. Nodes never replaced resolve to themselves.
func (rw *Rewriter) Resolve(n *Node) *Node {
	for {
		replacement, ok := rw.replacements[n]
		if !ok {
			return n
		}
		n = replacement
	}
}

// CanonicalizeOption configures Canonicalize.
type CanonicalizeOption func(rw *Rewriter)

// WithConstantSliceFolding enables materializing slices of dense constants
// as new, smaller constants. control decides per ExtractSlice node whether
// to fold it; a nil control folds every candidate. This trades IR size for
// locality, hence it is opt-in.
func WithConstantSliceFolding(control func(extractSlice *Node) bool) CanonicalizeOption {
	if control == nil {
		control = func(*Node) bool { return true }
	}
	return func(rw *Rewriter) {
		rw.constantSliceControl = control
	}
}

// maxCanonicalizePasses bounds the fixed-point iteration. Patterns strictly
// reduce or canonicalize the IR, so in practice the fixed point is reached
// in a handful of passes.
const maxCanonicalizePasses = 100

// Canonicalize drives folding and the canonicalization patterns over the
// whole graph to a fixed point. roots are node handles the caller wants
// tracked through the rewrites: the returned slice holds, in order, the node
// now standing for each root.
func Canonicalize(g *Graph, roots []*Node, opts ...CanonicalizeOption) []*Node {
	rw := NewRewriter(g)
	for _, opt := range opts {
		opt(rw)
	}
	for pass := 0; pass < maxCanonicalizePasses; pass++ {
		rw.changed = false
		// Nodes created by rewrites mid-pass are appended to the arena and
		// picked up by this same loop.
		for idx := 0; idx < len(g.nodes); idx++ {
			n := g.nodes[idx]
			if n.erased {
				continue
			}
			rw.simplify(n)
		}
		if !rw.changed {
			break
		}
	}
	resolved := make([]*Node, len(roots))
	for ii, root := range roots {
		resolved[ii] = rw.Resolve(root)
	}
	return resolved
}

// simplify applies folding and then the canonicalization patterns to one
// node. After a successful rewrite the node may be erased, so application
// stops at the first match.
func (rw *Rewriter) simplify(n *Node) {
	if replacement, ok := foldNode(rw, n); ok {
		if replacement != n {
			if klog.V(2).Enabled() {
				klog.V(2).Infof("canonicalize %q: folded node #%d (%s) into #%d (%s)",
					rw.graph.name, n.id, n.Type(), replacement.id, replacement.Type())
			}
			rw.Replace(n, replacement)
		}
		return
	}
	for _, p := range canonicalizationPatterns[n.Type()] {
		if p.fn(rw, n) {
			if klog.V(2).Enabled() {
				klog.V(2).Infof("canonicalize %q: pattern %s matched node #%d",
					rw.graph.name, p.name, n.id)
			}
			return
		}
	}
}

// pattern is one canonicalization rewrite: fn returns whether it matched and
// rewrote the node.
type pattern struct {
	name string
	fn   func(rw *Rewriter, n *Node) bool
}
