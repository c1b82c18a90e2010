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

package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/goleak"

	gerrors "github.com/tochemey/exo/errors"
	"github.com/tochemey/exo/log"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLess(t *testing.T) {
	assert.True(t, Less(1, "b", 2, "a"))
	assert.False(t, Less(2, "a", 1, "b"))
	assert.True(t, Less(3, "a", 3, "b"))
	assert.False(t, Less(3, "b", 3, "a"))
	assert.False(t, Less(3, "a", 3, "a"))
}

func TestWait(t *testing.T) {
	t.Run("With a single actor resolves immediately", func(t *testing.T) {
		scheduler := New(WithLogger(log.DiscardLogger))
		require.NoError(t, scheduler.Wait(context.Background(), 0, "a"))

		recorded, ok := scheduler.Tick("a")
		require.True(t, ok)
		assert.Zero(t, recorded)
		assert.Equal(t, 1, scheduler.Len())
		assert.Zero(t, scheduler.Waiting())
	})
	t.Run("With a smaller registered actor suspends until it is done", func(t *testing.T) {
		scheduler := New(WithLogger(log.DiscardLogger))
		scheduler.Update("a", 0)

		resolved := make(chan error, 1)
		go func() {
			resolved <- scheduler.Wait(context.Background(), 0, "b")
		}()

		require.Eventually(t, func() bool { return scheduler.Waiting() == 1 }, waitFor, tick)
		select {
		case <-resolved:
			t.Fatal("wait resolved while a smaller key is registered")
		default:
		}

		scheduler.Done("a")
		require.NoError(t, <-resolved)
		assert.True(t, scheduler.IsDone("a"))
		assert.False(t, scheduler.IsDone("b"))
	})
	t.Run("With an update past the waiter resolves the wait", func(t *testing.T) {
		scheduler := New(WithLogger(log.DiscardLogger))
		scheduler.Update("a", 0)

		resolved := make(chan error, 1)
		go func() {
			resolved <- scheduler.Wait(context.Background(), 5, "b")
		}()
		require.Eventually(t, func() bool { return scheduler.Waiting() == 1 }, waitFor, tick)

		// still smaller than (5, b)
		scheduler.Update("a", 4)
		assert.Equal(t, 1, scheduler.Waiting())

		scheduler.Update("a", 7)
		require.NoError(t, <-resolved)
	})
	t.Run("With equal ticks the id breaks the tie", func(t *testing.T) {
		scheduler := New(WithLogger(log.DiscardLogger))
		scheduler.Update("b", 3)

		// (3, a) is smaller than (3, b)
		require.NoError(t, scheduler.Wait(context.Background(), 3, "a"))

		resolved := make(chan error, 1)
		go func() {
			resolved <- scheduler.Wait(context.Background(), 3, "b")
		}()
		require.Eventually(t, func() bool { return scheduler.Waiting() == 1 }, waitFor, tick)

		scheduler.Done("a")
		require.NoError(t, <-resolved)
	})
	t.Run("With a canceled context returns the context error", func(t *testing.T) {
		scheduler := New(WithLogger(log.DiscardLogger))
		scheduler.Update("a", 0)

		ctx, cancel := context.WithCancel(context.Background())
		resolved := make(chan error, 1)
		go func() {
			resolved <- scheduler.Wait(ctx, 1, "b")
		}()
		require.Eventually(t, func() bool { return scheduler.Waiting() == 1 }, waitFor, tick)

		cancel()
		require.ErrorIs(t, <-resolved, context.Canceled)
		assert.Zero(t, scheduler.Waiting())
	})
	t.Run("With a second concurrent wait for the same actor returns an error", func(t *testing.T) {
		scheduler := New(WithLogger(log.DiscardLogger))
		scheduler.Update("a", 0)

		resolved := make(chan error, 1)
		go func() {
			resolved <- scheduler.Wait(context.Background(), 1, "b")
		}()
		require.Eventually(t, func() bool { return scheduler.Waiting() == 1 }, waitFor, tick)

		require.Error(t, scheduler.Wait(context.Background(), 1, "b"))
		scheduler.Done("a")
		require.NoError(t, <-resolved)
	})
}

func TestWaitReleaseOrder(t *testing.T) {
	scheduler := New(WithLogger(log.DiscardLogger))
	// the barrier holds every other actor back
	scheduler.Update("barrier", 0)

	keys := []struct {
		id   string
		tick uint64
	}{
		{"c", 2},
		{"a", 9},
		{"b", 2},
		{"d", 1},
	}

	var (
		mu    sync.Mutex
		order []string
		wg    sync.WaitGroup
	)

	for _, key := range keys {
		wg.Add(1)
		go func(id string, tick uint64) {
			defer wg.Done()
			assert.NoError(t, scheduler.Wait(context.Background(), tick, id))
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			// finishing the turn lets the next key go
			scheduler.Done(id)
		}(key.id, key.tick)
	}

	require.Eventually(t, func() bool { return scheduler.Waiting() == len(keys) }, waitFor, tick)
	scheduler.Done("barrier")
	wg.Wait()

	assert.Equal(t, []string{"d", "b", "c", "a"}, order)
	assert.Zero(t, scheduler.Len())
}

func TestUpdate(t *testing.T) {
	t.Run("With a smaller tick keeps the recorded value", func(t *testing.T) {
		scheduler := New(WithLogger(log.DiscardLogger))
		scheduler.Update("a", 10)
		scheduler.Update("a", 3)

		recorded, ok := scheduler.Tick("a")
		require.True(t, ok)
		assert.EqualValues(t, 10, recorded)
	})
	t.Run("With a done actor registers it again", func(t *testing.T) {
		scheduler := New(WithLogger(log.DiscardLogger))
		scheduler.Update("a", 1)
		scheduler.Done("a")
		require.True(t, scheduler.IsDone("a"))

		scheduler.Update("a", 2)
		assert.False(t, scheduler.IsDone("a"))
		assert.Equal(t, 1, scheduler.Len())
	})
}

func TestDone(t *testing.T) {
	t.Run("With repeated calls is idempotent", func(t *testing.T) {
		scheduler := New(WithLogger(log.DiscardLogger))
		scheduler.Update("a", 1)
		scheduler.Done("a")
		scheduler.Done("a")
		scheduler.Done("unknown")

		assert.Zero(t, scheduler.Len())
		_, ok := scheduler.Tick("a")
		assert.False(t, ok)

		// nothing holds other actors back
		require.NoError(t, scheduler.Wait(context.Background(), 100, "b"))
	})
}

func TestStop(t *testing.T) {
	scheduler := New(WithLogger(log.DiscardLogger), WithMeter(noop.NewMeterProvider().Meter("test")))
	scheduler.Update("a", 0)

	resolved := make(chan error, 1)
	go func() {
		resolved <- scheduler.Wait(context.Background(), 1, "b")
	}()
	require.Eventually(t, func() bool { return scheduler.Waiting() == 1 }, waitFor, tick)

	scheduler.Stop()
	require.ErrorIs(t, <-resolved, gerrors.ErrSchedulerStopped)
	require.ErrorIs(t, scheduler.Wait(context.Background(), 0, "c"), gerrors.ErrSchedulerStopped)

	// stopping twice is safe
	scheduler.Stop()
	scheduler.Update("d", 1)
	assert.Zero(t, scheduler.Len())
}
