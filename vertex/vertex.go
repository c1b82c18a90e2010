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

// Package vertex implements the copy-on-write state tree.
//
// Nodes live in an append-only arena and are never mutated; a Vertex is a
// handle holding the index of its root node. Copy clones the handle, and
// every mutation allocates new nodes along the mutated path only, so copies
// share all untouched structure.
//
// Stored values must be treated as immutable: the tree copies structure, not
// the values themselves.
//
// The arena only grows. Nodes superseded by a mutation are kept for the
// lifetime of the tree, even when no handle reaches them anymore, and a tree
// holds at most 2^32 nodes; allocating past that limit panics.
package vertex

import (
	"context"
	"slices"
	"sync"

	gerrors "github.com/tochemey/exo/errors"
	"github.com/tochemey/exo/internal/pathlock"
)

// Commit publishes the vertex obtained from Update into its parent and
// releases the path lock. Only the first call has an effect; passing nil
// releases the lock without publishing.
type Commit func(updated *Vertex)

// Vertex is a handle on a node of the state tree
type Vertex struct {
	mu    sync.RWMutex
	arena *arena
	root  nodeID
	locks *pathlock.Table
}

// New creates a tree holding value at its root
func New(value any) *Vertex {
	a := newArena()
	return &Vertex{
		arena: a,
		root:  a.alloc(node{value: value}),
		locks: pathlock.New(),
	}
}

func (v *Vertex) snapshot() nodeID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.root
}

func (v *Vertex) handle(root nodeID) *Vertex {
	return &Vertex{arena: v.arena, root: root, locks: pathlock.New()}
}

// Value returns the value held by the vertex
func (v *Vertex) Value() any {
	return v.arena.get(v.snapshot()).value
}

// SetValue replaces the value held by the vertex. Children are kept.
func (v *Vertex) SetValue(value any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	current := v.arena.get(v.root)
	v.root = v.arena.alloc(node{value: value, edges: current.edges})
}

// Get returns the value stored at the given path relative to the vertex
func (v *Vertex) Get(path ...string) (any, bool) {
	id, ok := v.arena.lookup(v.snapshot(), path)
	if !ok {
		return nil, false
	}
	return v.arena.get(id).value, true
}

// Set stores value at the given path, creating missing intermediate vertices
func (v *Vertex) Set(value any, path ...string) error {
	if err := validatePath(path); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.root = v.arena.rewrite(v.root, path, func(current nodeID, exists bool) (nodeID, bool) {
		var edges []edge
		if exists {
			edges = v.arena.get(current).edges
		}
		return v.arena.alloc(node{value: value, edges: edges}), true
	})
	return nil
}

// Delete removes the subtree at the given path. It reports whether anything was removed.
func (v *Vertex) Delete(path ...string) bool {
	if validatePath(path) != nil {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.arena.lookup(v.root, path); !ok {
		return false
	}
	v.root = v.arena.rewrite(v.root, path, func(nodeID, bool) (nodeID, bool) {
		return 0, false
	})
	return true
}

// Child returns a snapshot handle on the named child
func (v *Vertex) Child(name string) (*Vertex, bool) {
	id, ok := v.arena.lookup(v.snapshot(), []string{name})
	if !ok {
		return nil, false
	}
	return v.handle(id), true
}

// Children returns the sorted names of the vertex children
func (v *Vertex) Children() []string {
	n := v.arena.get(v.snapshot())
	names := make([]string, len(n.edges))
	for i, e := range n.edges {
		names[i] = e.name
	}
	return names
}

// Copy returns a copy-on-write duplicate sharing all structure with v.
// Later mutations of either handle are invisible to the other.
func (v *Vertex) Copy() *Vertex {
	return v.handle(v.snapshot())
}

// Same reports whether both handles point at the same snapshot
func (v *Vertex) Same(other *Vertex) bool {
	if other == nil {
		return false
	}
	return v.arena == other.arena && v.snapshot() == other.snapshot()
}

// Update opens an exclusive transaction on the given path. It returns a
// handle on the vertex at path (empty when missing) and the Commit that
// publishes it back. Transactions on overlapping paths serialize; disjoint
// paths proceed concurrently. The caller must invoke Commit exactly once on
// every exit path.
func (v *Vertex) Update(ctx context.Context, path []string) (*Vertex, Commit, error) {
	if err := validatePath(path); err != nil {
		return nil, nil, err
	}

	release, err := v.locks.Lock(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	path = slices.Clone(path)
	original, exists := v.arena.lookup(v.snapshot(), path)
	if !exists {
		original = v.arena.alloc(node{})
	}

	var once sync.Once
	commit := func(updated *Vertex) {
		once.Do(func() {
			defer release()
			if updated == nil {
				return
			}

			root := updated.snapshot()
			if updated.arena != v.arena {
				root = v.arena.transplant(updated.arena, root)
			} else if root == original {
				// unchanged, a missing path stays missing
				return
			}

			v.mu.Lock()
			v.root = v.arena.rewrite(v.root, path, func(nodeID, bool) (nodeID, bool) {
				return root, true
			})
			v.mu.Unlock()
		})
	}

	return v.handle(original), commit, nil
}

func validatePath(path []string) error {
	if len(path) == 0 {
		return gerrors.ErrInvalidPath
	}
	for _, segment := range path {
		if segment == "" {
			return gerrors.ErrInvalidPath
		}
	}
	return nil
}
