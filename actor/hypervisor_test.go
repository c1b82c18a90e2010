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

package actor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/exo/errors"
	"github.com/tochemey/exo/journal"
)

func TestHypervisor(t *testing.T) {
	ctx := context.Background()

	t.Run("With spawn", func(t *testing.T) {
		hypervisor := newHypervisor(t)
		actor, err := hypervisor.Spawn(ctx, "", noopContainer())
		require.NoError(t, err)
		assert.NotEmpty(t, actor.ID())
		assert.Same(t, hypervisor, actor.Hypervisor())
		assert.NotNil(t, actor.Container())
		assert.NotNil(t, actor.Logger())

		_, err = hypervisor.Spawn(ctx, actor.ID(), noopContainer())
		assert.ErrorIs(t, err, gerrors.ErrActorExists)

		_, err = hypervisor.Spawn(ctx, "x", nil)
		assert.ErrorIs(t, err, gerrors.ErrContainerRequired)

		_, err = hypervisor.Spawn(ctx, "nil-container", func(*Actor) (Container, error) { return nil, nil })
		assert.ErrorIs(t, err, gerrors.ErrContainerRequired)
	})
	t.Run("With container built on retry", func(t *testing.T) {
		hypervisor := newHypervisor(t, WithSpawnRetries(3, time.Second))
		attempts := atomic.NewInt32(0)
		_, err := hypervisor.Spawn(ctx, "flaky", func(actor *Actor) (Container, error) {
			if attempts.Inc() == 1 {
				return nil, errors.New("not yet")
			}
			return noopContainer()(actor)
		})
		require.NoError(t, err)
		assert.EqualValues(t, 2, attempts.Load())
	})
	t.Run("With failing container factory", func(t *testing.T) {
		hypervisor := newHypervisor(t, WithSpawnRetries(2, 100*time.Millisecond))
		errFactory := errors.New("no container")
		_, err := hypervisor.Spawn(ctx, "broken", func(*Actor) (Container, error) {
			return nil, errFactory
		})
		require.Error(t, err)
		_, err = hypervisor.GetInstance(ctx, "broken")
		assert.ErrorIs(t, err, gerrors.ErrActorNotFound)
	})
	t.Run("With instance lookup", func(t *testing.T) {
		hypervisor := newHypervisor(t)
		_, err := hypervisor.GetInstance(ctx, "ghost")
		assert.ErrorIs(t, err, gerrors.ErrActorNotFound)
		assert.ErrorIs(t, hypervisor.Queue(ctx, "ghost", "in", NewMessage()), gerrors.ErrActorNotFound)

		created := atomic.NewInt32(0)
		withDefault := newHypervisor(t, WithDefaultContainer(func(actor *Actor) (Container, error) {
			created.Inc()
			return noopContainer()(actor)
		}))
		first, err := withDefault.GetInstance(ctx, "ghost")
		require.NoError(t, err)
		second, err := withDefault.GetInstance(ctx, "ghost")
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.EqualValues(t, 1, created.Load())
	})
	t.Run("With send creating the destination", func(t *testing.T) {
		received := new(recorder[string])
		hypervisor := newHypervisor(t, WithDefaultContainer(NewFuncContainer(
			func(_ context.Context, actor *Actor, _ *Message) (any, error) {
				received.add(actor.ID())
				return nil, nil
			},
			WithInitialize(func(_ context.Context, actor *Actor, _ *Message) (any, error) {
				return nil, actor.BindPort("in", NewPort("", ""))
			}),
		)))

		sender, err := hypervisor.GetInstance(ctx, "sender")
		require.NoError(t, err)
		// an empty destination port name initializes the destination
		require.NoError(t, sender.Send(ctx, NewPort("target", ""), NewMessage()))
		require.NoError(t, sender.Send(ctx, NewPort("target", "in"), NewMessage()))
		awaitIdle(t, hypervisor)
		assert.Equal(t, []string{"target"}, received.all())
	})
	t.Run("With broadcast", func(t *testing.T) {
		hypervisor := newHypervisor(t)
		received := new(recorder[string])
		for _, id := range []string{"a", "b", "c"} {
			actor, err := hypervisor.Spawn(ctx, id, NewFuncContainer(func(_ context.Context, actor *Actor, msg *Message) (any, error) {
				received.add(msg.Payload().(string))
				return nil, nil
			}))
			require.NoError(t, err)
			require.NoError(t, actor.BindPort("in", NewPort("", "")))
		}

		require.NoError(t, hypervisor.Broadcast(ctx, "in", func(id string) *Message {
			return NewMessage(WithPayload("hello " + id))
		}))
		awaitIdle(t, hypervisor)
		assert.ElementsMatch(t, []string{"hello a", "hello b", "hello c"}, received.all())

		require.NoError(t, hypervisor.Broadcast(ctx, "in", func(id string) *Message {
			return NewMessage(WithPayload("again " + id))
		}, "b"))
		awaitIdle(t, hypervisor)
		assert.Contains(t, received.all(), "again b")

		err := hypervisor.Broadcast(ctx, "missing", func(string) *Message { return NewMessage() }, "a")
		assert.ErrorIs(t, err, gerrors.ErrPortNotFound)
	})
	t.Run("With remove", func(t *testing.T) {
		hypervisor := newHypervisor(t)
		_, err := hypervisor.Spawn(ctx, "a", noopContainer())
		require.NoError(t, err)
		require.Len(t, hypervisor.Actors(), 1)
		assert.Equal(t, 1, hypervisor.Len())

		require.NoError(t, hypervisor.Remove("a"))
		assert.Empty(t, hypervisor.Actors())
		assert.Zero(t, hypervisor.Len())
		assert.ErrorIs(t, hypervisor.Remove("a"), gerrors.ErrActorNotFound)
	})
	t.Run("With sorted actors", func(t *testing.T) {
		hypervisor := newHypervisor(t)
		for _, id := range []string{"c", "a", "b"} {
			_, err := hypervisor.Spawn(ctx, id, noopContainer())
			require.NoError(t, err)
		}
		var ids []string
		for _, actor := range hypervisor.Actors() {
			ids = append(ids, actor.ID())
		}
		assert.Equal(t, []string{"a", "b", "c"}, ids)
	})
	t.Run("With stop releasing waiting actors", func(t *testing.T) {
		memory := journal.NewMemory()
		hypervisor := newHypervisor(t, WithJournal(memory))
		assert.Same(t, memory, hypervisor.Journal())
		assert.NotNil(t, hypervisor.Logger())

		actor, err := hypervisor.Spawn(ctx, "waiter", noopContainer())
		require.NoError(t, err)
		require.NoError(t, actor.BindPort("a", NewPort("", "")))
		require.NoError(t, actor.BindPort("b", NewPort("", "")))

		hypervisor.Scheduler().Update("0-hold", 0)
		// not saturated: the actor waits behind the hold
		require.NoError(t, actor.Queue(ctx, "a", NewMessage()))
		require.True(t, actor.IsRunning())

		require.NoError(t, hypervisor.Stop(ctx))
		require.NoError(t, hypervisor.Stop(ctx))
		assert.True(t, actor.IsIdle())
		assert.Zero(t, actor.ProcessedCount())

		_, err = hypervisor.Spawn(ctx, "late", noopContainer())
		assert.ErrorIs(t, err, gerrors.ErrHypervisorStopped)
		assert.ErrorIs(t, actor.Queue(ctx, "a", NewMessage()), gerrors.ErrHypervisorStopped)
		assert.ErrorIs(t, memory.Append(ctx, journal.Entry{}), gerrors.ErrJournalClosed)
	})
	t.Run("With invalid port capacity", func(t *testing.T) {
		_, err := New(ctx, WithPortCapacity(-1))
		assert.ErrorIs(t, err, gerrors.ErrInvalidConfig)
	})
	t.Run("With await idle timeout", func(t *testing.T) {
		hypervisor := newHypervisor(t)
		release := make(chan struct{})
		actor, err := hypervisor.Spawn(ctx, "busy", NewFuncContainer(func(context.Context, *Actor, *Message) (any, error) {
			<-release
			return nil, nil
		}))
		require.NoError(t, err)
		require.NoError(t, actor.BindPort("in", NewPort("", "")))
		require.NoError(t, actor.Queue(ctx, "in", NewMessage()))

		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, hypervisor.AwaitIdle(cctx), context.DeadlineExceeded)

		close(release)
		require.Eventually(t, actor.IsIdle, awaitTimeout, pollInterval)
	})
}

// runGraph runs two producers feeding a consumer through two ports and
// returns the journal in canonical order.
func runGraph(t *testing.T) ([]journal.Entry, []string) {
	t.Helper()
	ctx := context.Background()
	memory := journal.NewMemory()
	hypervisor := newHypervisor(t, WithJournal(memory))
	consumed := new(recorder[string])

	producer := func(step uint64, target string) ContainerFactory {
		count := 0
		return NewFuncContainer(func(ctx context.Context, actor *Actor, _ *Message) (any, error) {
			count++
			actor.IncrementTicks(step)
			payload := fmt.Sprintf("%s-%d", actor.ID(), count)
			if err := actor.Send(ctx, NewPort("c", target), NewMessage(WithPayload(payload))); err != nil {
				return nil, err
			}
			if count < 3 {
				return nil, actor.Send(ctx, NewPort(actor.ID(), "loop"), NewMessage())
			}
			return nil, nil
		})
	}

	a, err := hypervisor.Spawn(ctx, "a", producer(2, "fromA"))
	require.NoError(t, err)
	b, err := hypervisor.Spawn(ctx, "b", producer(3, "fromB"))
	require.NoError(t, err)
	c, err := hypervisor.Spawn(ctx, "c", NewFuncContainer(func(_ context.Context, actor *Actor, msg *Message) (any, error) {
		actor.IncrementTicks(1)
		consumed.add(msg.Payload().(string))
		return nil, nil
	}))
	require.NoError(t, err)

	for _, producer := range []*Actor{a, b} {
		require.NoError(t, producer.BindPort("start", NewPort("", "")))
		require.NoError(t, producer.BindPort("loop", NewPort("", "")))
	}
	require.NoError(t, c.BindPort("fromA", NewPort("", "")))
	require.NoError(t, c.BindPort("fromB", NewPort("", "")))

	// every input is queued before any actor gets a turn
	hypervisor.Scheduler().Update("0-hold", 0)
	require.NoError(t, hypervisor.Queue(ctx, "b", "start", NewMessage()))
	require.NoError(t, hypervisor.Queue(ctx, "a", "start", NewMessage()))
	hypervisor.Scheduler().Done("0-hold")
	awaitIdle(t, hypervisor)

	entries, err := memory.Entries(ctx)
	require.NoError(t, err)
	return entries, consumed.all()
}

func TestDeterministicOrder(t *testing.T) {
	firstEntries, firstConsumed := runGraph(t)
	require.Len(t, firstEntries, 12)
	require.Len(t, firstConsumed, 6)

	for range 3 {
		entries, consumed := runGraph(t)
		assert.Equal(t, firstEntries, entries)
		assert.Equal(t, firstConsumed, consumed)
	}
}
