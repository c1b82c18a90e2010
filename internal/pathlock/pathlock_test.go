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

package pathlock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps([]string{"a"}, []string{"a", "b"}))
	assert.True(t, Overlaps([]string{"a", "b"}, []string{"a"}))
	assert.True(t, Overlaps(nil, []string{"x"}))
	assert.True(t, Overlaps([]string{"a", "b"}, []string{"a", "b"}))
	assert.False(t, Overlaps([]string{"a", "b"}, []string{"a", "c"}))
	assert.False(t, Overlaps([]string{"a"}, []string{"b"}))
}

func TestLock(t *testing.T) {
	t.Run("With disjoint paths both are held", func(t *testing.T) {
		table := New()
		ctx := context.Background()

		releaseA, err := table.Lock(ctx, []string{"a"})
		require.NoError(t, err)
		releaseB, err := table.Lock(ctx, []string{"b", "c"})
		require.NoError(t, err)
		assert.Equal(t, 2, table.Held())

		releaseA()
		releaseB()
		assert.Zero(t, table.Held())
	})
	t.Run("With overlapping paths the second waits for the release", func(t *testing.T) {
		table := New()
		ctx := context.Background()

		release, err := table.Lock(ctx, []string{"a"})
		require.NoError(t, err)

		acquired := make(chan Release, 1)
		go func() {
			next, err := table.Lock(ctx, []string{"a", "b"})
			if err == nil {
				acquired <- next
			}
		}()

		select {
		case <-acquired:
			t.Fatal("overlapping path acquired while held")
		case <-time.After(50 * time.Millisecond):
		}

		release()
		next := <-acquired
		next()
		assert.Zero(t, table.Held())
	})
	t.Run("With a canceled context returns the context error", func(t *testing.T) {
		table := New()
		release, err := table.Lock(context.Background(), []string{"a"})
		require.NoError(t, err)
		defer release()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = table.Lock(ctx, []string{"a"})
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, table.Held())
	})
	t.Run("With a repeated release only the first counts", func(t *testing.T) {
		table := New()
		release, err := table.Lock(context.Background(), []string{"a"})
		require.NoError(t, err)
		release()
		assert.NotPanics(t, assert.PanicTestFunc(release))
		assert.Zero(t, table.Held())
	})
}
