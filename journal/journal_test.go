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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/exo/errors"
)

func unordered() []Entry {
	return []Entry{
		{ActorID: "b", Port: "in", Tick: 5, Seq: 1},
		{ActorID: "ab", Port: "in", Tick: 3, Seq: 2},
		{ActorID: "a", Port: "in", Tick: 3, Seq: 4, Exception: true, Cause: "boom"},
		{ActorID: "a", Tick: 0, Seq: 1},
		{ActorID: "a", Port: "in", Tick: 3, Seq: 3},
	}
}

func canonical() []Entry {
	return []Entry{
		{ActorID: "a", Tick: 0, Seq: 1},
		{ActorID: "a", Port: "in", Tick: 3, Seq: 3},
		{ActorID: "a", Port: "in", Tick: 3, Seq: 4, Exception: true, Cause: "boom"},
		{ActorID: "ab", Port: "in", Tick: 3, Seq: 2},
		{ActorID: "b", Port: "in", Tick: 5, Seq: 1},
	}
}

func TestSort(t *testing.T) {
	entries := unordered()
	Sort(entries)
	assert.Equal(t, canonical(), entries)
	assert.Negative(t, Compare(Entry{Tick: 1, ActorID: "z"}, Entry{Tick: 2, ActorID: "a"}))
	assert.Zero(t, Compare(Entry{Tick: 1, ActorID: "a", Seq: 1}, Entry{Tick: 1, ActorID: "a", Seq: 1}))
}

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("With canonical order", func(t *testing.T) {
		journal := NewMemory()
		for _, entry := range unordered() {
			require.NoError(t, journal.Append(ctx, entry))
		}
		assert.Equal(t, 5, journal.Len())

		entries, err := journal.Entries(ctx)
		require.NoError(t, err)
		assert.Equal(t, canonical(), entries)
	})
	t.Run("With closed journal", func(t *testing.T) {
		journal := NewMemory()
		require.NoError(t, journal.Append(ctx, Entry{ActorID: "a", Seq: 1}))
		require.NoError(t, journal.Close())

		err := journal.Append(ctx, Entry{ActorID: "a", Seq: 2})
		assert.ErrorIs(t, err, gerrors.ErrJournalClosed)

		entries, err := journal.Entries(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
	t.Run("With cancelled context", func(t *testing.T) {
		journal := NewMemory()
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, journal.Append(cancelled, Entry{}), context.Canceled)
		_, err := journal.Entries(cancelled)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBolt(t *testing.T) {
	ctx := context.Background()

	t.Run("With canonical order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "journal.db")
		journal, err := NewBolt(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, path, journal.Path())

		for _, entry := range unordered() {
			require.NoError(t, journal.Append(ctx, entry))
		}

		entries, err := journal.Entries(ctx)
		require.NoError(t, err)
		assert.Equal(t, canonical(), entries)
		require.NoError(t, journal.Close())
	})
	t.Run("With reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "journal.db")
		journal, err := NewBolt(ctx, path, WithNoGrowSync())
		require.NoError(t, err)
		require.NoError(t, journal.Append(ctx, Entry{ActorID: "a", Tick: 7, SendTick: 7, Hops: 2, Seq: 1}))
		require.NoError(t, journal.Close())

		journal, err = NewBolt(ctx, path)
		require.NoError(t, err)
		entries, err := journal.Entries(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, Entry{ActorID: "a", Tick: 7, SendTick: 7, Hops: 2, Seq: 1}, entries[0])
		require.NoError(t, journal.Close())
	})
	t.Run("With closed journal", func(t *testing.T) {
		journal, err := NewBolt(ctx, filepath.Join(t.TempDir(), "journal.db"))
		require.NoError(t, err)
		require.NoError(t, journal.Close())
		require.NoError(t, journal.Close())

		assert.ErrorIs(t, journal.Append(ctx, Entry{}), gerrors.ErrJournalClosed)
		_, err = journal.Entries(ctx)
		assert.ErrorIs(t, err, gerrors.ErrJournalClosed)
	})
	t.Run("With locked file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "journal.db")
		journal, err := NewBolt(ctx, path)
		require.NoError(t, err)

		start := time.Now()
		_, err = NewBolt(ctx, path, WithOpenRetries(2), WithOpenTimeout(50*time.Millisecond))
		require.Error(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
		require.NoError(t, journal.Close())
	})
}
