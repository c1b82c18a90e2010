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

package journal

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/atomic"

	gerrors "github.com/tochemey/exo/errors"
)

// Memory is an in-memory Journal
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	closed  *atomic.Bool
}

var _ Journal = (*Memory)(nil)

// NewMemory creates an instance of Memory
func NewMemory() *Memory {
	return &Memory{
		entries: make([]Entry, 0, 64),
		closed:  atomic.NewBool(false),
	}
}

// Append records an entry
func (m *Memory) Append(ctx context.Context, entry Entry) error {
	if m.closed.Load() {
		return gerrors.ErrJournalClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()
	return nil
}

// Entries returns every recorded entry in canonical order
func (m *Memory) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	entries := slices.Clone(m.entries)
	m.mu.Unlock()

	Sort(entries)
	return entries, nil
}

// Len returns the number of recorded entries
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close marks the journal closed. Entries remain readable.
func (m *Memory) Close() error {
	m.closed.Store(true)
	return nil
}
