// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package vertex

import (
	"errors"
	"math"
	"slices"
	"strings"
	"sync"
)

type nodeID uint32

// errArenaFull is raised when a tree outgrows the nodeID space
var errArenaFull = errors.New("vertex: arena exhausted the node id space")

// maxNodes bounds the arena size so every index fits a nodeID
var maxNodes = uint64(math.MaxUint32) + 1

type edge struct {
	name string
	id   nodeID
}

// node is immutable once allocated
type node struct {
	value any
	edges []edge // sorted by name
}

func (n node) find(name string) (int, bool) {
	return slices.BinarySearchFunc(n.edges, name, func(e edge, target string) int {
		return strings.Compare(e.name, target)
	})
}

// arena is an append-only store of immutable nodes shared by every handle
// derived from the same tree.
type arena struct {
	mu    sync.RWMutex
	nodes []node
}

func newArena() *arena {
	return &arena{nodes: make([]node, 0, 16)}
}

func (a *arena) alloc(n node) nodeID {
	a.mu.Lock()
	defer a.mu.Unlock()
	if uint64(len(a.nodes)) >= maxNodes {
		panic(errArenaFull)
	}
	id := nodeID(len(a.nodes))
	a.nodes = append(a.nodes, n)
	return id
}

func (a *arena) get(id nodeID) node {
	a.mu.RLock()
	n := a.nodes[id]
	a.mu.RUnlock()
	return n
}

func (a *arena) size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes)
}

func (a *arena) lookup(id nodeID, path []string) (nodeID, bool) {
	for _, name := range path {
		n := a.get(id)
		i, ok := n.find(name)
		if !ok {
			return 0, false
		}
		id = n.edges[i].id
	}
	return id, true
}

// rewrite returns a new root in which the node at path is replaced with the
// result of fn. Nodes along the path are reallocated; everything else is shared.
// fn returns keep=false to remove the edge. Missing intermediate nodes are created.
func (a *arena) rewrite(id nodeID, path []string, fn func(current nodeID, exists bool) (nodeID, bool)) nodeID {
	n := a.get(id)
	i, found := n.find(path[0])

	var (
		child nodeID
		keep  = true
	)

	switch {
	case len(path) == 1:
		var current nodeID
		if found {
			current = n.edges[i].id
		}
		child, keep = fn(current, found)
	case found:
		child = a.rewrite(n.edges[i].id, path[1:], fn)
	default:
		child = a.rewrite(a.alloc(node{}), path[1:], fn)
	}

	edges := slices.Clone(n.edges)
	switch {
	case keep && found:
		edges[i].id = child
	case keep:
		edges = slices.Insert(edges, i, edge{name: path[0], id: child})
	case found:
		edges = slices.Delete(edges, i, i+1)
	default:
		return id
	}

	return a.alloc(node{value: n.value, edges: edges})
}

// transplant copies the subtree rooted at id in src into a
func (a *arena) transplant(src *arena, id nodeID) nodeID {
	n := src.get(id)
	edges := make([]edge, len(n.edges))
	for i, e := range n.edges {
		edges[i] = edge{name: e.name, id: a.transplant(src, e.id)}
	}
	return a.alloc(node{value: n.value, edges: edges})
}
