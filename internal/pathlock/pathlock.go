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

// Package pathlock provides path-scoped mutual exclusion. Two paths conflict
// when one is a prefix of the other; conflicting holders serialize while
// disjoint paths proceed concurrently.
package pathlock

import (
	"context"
	"slices"
	"sync"
)

// Release releases a held path. Only the first call has an effect.
type Release func()

type hold struct {
	path     []string
	released chan struct{}
}

// Table tracks the paths currently held
type Table struct {
	mu    sync.Mutex
	holds map[*hold]struct{}
}

// New creates an instance of Table
func New() *Table {
	return &Table{holds: make(map[*hold]struct{})}
}

// Lock acquires the given path, waiting for every conflicting holder to release.
// It returns the context error when ctx is done before the path is acquired.
func (t *Table) Lock(ctx context.Context, path []string) (Release, error) {
	for {
		t.mu.Lock()
		blocker := t.conflict(path)
		if blocker == nil {
			h := &hold{path: slices.Clone(path), released: make(chan struct{})}
			t.holds[h] = struct{}{}
			t.mu.Unlock()
			return t.releaser(h), nil
		}
		t.mu.Unlock()

		select {
		case <-blocker.released:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Held returns the number of held paths
func (t *Table) Held() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.holds)
}

func (t *Table) releaser(h *hold) Release {
	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.holds, h)
			t.mu.Unlock()
			close(h.released)
		})
	}
}

// conflict must be called with the lock held
func (t *Table) conflict(path []string) *hold {
	for h := range t.holds {
		if Overlaps(h.path, path) {
			return h
		}
	}
	return nil
}

// Overlaps reports whether one path is a prefix of the other.
// The empty path is the root and overlaps every path.
func Overlaps(a, b []string) bool {
	n := min(len(a), len(b))
	return slices.Equal(a[:n], b[:n])
}
