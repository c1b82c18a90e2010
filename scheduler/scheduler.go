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

// Package scheduler serializes actor turns by logical clock.
//
// Every running actor is registered with its current tick. A Wait resolves
// only for the actor holding the smallest (tick, id) key, so two runs over the
// same message graph resolve waits in the same order regardless of how the
// goroutines interleave.
package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"sync"

	goset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/exo/errors"
	"github.com/tochemey/exo/log"
)

// Scheduler arbitrates turn order among actors by (tick, id).
type Scheduler struct {
	// helps lock concurrent access
	mu sync.Mutex

	entries map[string]*entry
	queue   entryQueue
	waiters map[string]*waiter
	// actors that reported done and have not registered since
	finished goset.Set[string]

	stopped *atomic.Bool
	logger  log.Logger
	meter   metric.Meter
	waiting metric.Int64UpDownCounter
}

type waiter struct {
	tick uint64
	ch   chan error
}

// New creates an instance of Scheduler
func New(opts ...Option) *Scheduler {
	scheduler := &Scheduler{
		entries:  make(map[string]*entry),
		waiters:  make(map[string]*waiter),
		finished: goset.NewThreadUnsafeSet[string](),
		stopped:  atomic.NewBool(false),
		logger:   log.DefaultLogger,
	}

	for _, opt := range opts {
		opt.Apply(scheduler)
	}

	if scheduler.meter != nil {
		waiting, err := scheduler.meter.Int64UpDownCounter(
			"exo.scheduler.waiting",
			metric.WithDescription("Number of actors suspended on the scheduler"),
		)
		if err != nil {
			scheduler.logger.Warnf("scheduler: failed to create waiting instrument: %v", err)
		} else {
			scheduler.waiting = waiting
		}
	}

	return scheduler
}

// Less is the deterministic total order used by the scheduler: the smaller
// tick goes first and equal ticks are ordered by id.
func Less(tickA uint64, idA string, tickB uint64, idB string) bool {
	if tickA != tickB {
		return tickA < tickB
	}
	return idA < idB
}

// Wait suspends the caller until (tick, id) is the smallest key among the
// registered actors. The caller is registered at tick when it is not yet known.
// Wait returns the context error when ctx is done first, and ErrSchedulerStopped
// when the scheduler is stopped while waiting.
func (x *Scheduler) Wait(ctx context.Context, tick uint64, id string) error {
	x.mu.Lock()
	if x.stopped.Load() {
		x.mu.Unlock()
		return gerrors.ErrSchedulerStopped
	}

	x.register(id, tick)
	if x.isFirst(id) {
		x.mu.Unlock()
		return nil
	}

	if _, ok := x.waiters[id]; ok {
		x.mu.Unlock()
		return fmt.Errorf("scheduler: actor %s is already waiting", id)
	}

	w := &waiter{tick: x.entries[id].tick, ch: make(chan error, 1)}
	x.waiters[id] = w
	x.trackWaiting(1)
	x.mu.Unlock()

	select {
	case err := <-w.ch:
		return err
	case <-ctx.Done():
		x.mu.Lock()
		if current, ok := x.waiters[id]; ok && current == w {
			delete(x.waiters, id)
			x.trackWaiting(-1)
			x.mu.Unlock()
			return ctx.Err()
		}
		x.mu.Unlock()
		// released concurrently with the cancellation
		return <-w.ch
	}
}

// Update records the new tick of the given actor and re-evaluates the
// outstanding waits. Ticks never move backwards: a smaller value is ignored.
func (x *Scheduler) Update(id string, tick uint64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.stopped.Load() {
		return
	}
	x.register(id, tick)
	x.release()
}

// Done removes the actor from scheduling consideration. Waits of other actors
// no longer depend on it. Calling Done for an actor that is not registered is a no-op.
func (x *Scheduler) Done(id string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	e, ok := x.entries[id]
	if !ok {
		return
	}

	heap.Remove(&x.queue, e.index)
	delete(x.entries, id)
	x.finished.Add(id)

	if w, ok := x.waiters[id]; ok {
		delete(x.waiters, id)
		x.trackWaiting(-1)
		w.ch <- nil
	}

	x.release()
}

// Tick returns the tick recorded for the given actor
func (x *Scheduler) Tick(id string) (uint64, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if e, ok := x.entries[id]; ok {
		return e.tick, true
	}
	return 0, false
}

// IsDone reports whether the actor reported done and has not registered since.
func (x *Scheduler) IsDone(id string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.finished.Contains(id)
}

// Len returns the number of registered actors
func (x *Scheduler) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.entries)
}

// Waiting returns the number of suspended waits
func (x *Scheduler) Waiting() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.waiters)
}

// Stop releases every outstanding wait with ErrSchedulerStopped and rejects
// further waits.
func (x *Scheduler) Stop() {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.stopped.CompareAndSwap(false, true) {
		return
	}

	for id, w := range x.waiters {
		delete(x.waiters, id)
		x.trackWaiting(-1)
		w.ch <- gerrors.ErrSchedulerStopped
	}

	x.entries = make(map[string]*entry)
	x.queue = x.queue[:0]
	x.logger.Debug("scheduler stopped")
}

// register must be called with the lock held
func (x *Scheduler) register(id string, tick uint64) {
	x.finished.Remove(id)
	if e, ok := x.entries[id]; ok {
		if tick > e.tick {
			e.tick = tick
			heap.Fix(&x.queue, e.index)
		}
		if w, ok := x.waiters[id]; ok {
			w.tick = e.tick
		}
		return
	}

	e := &entry{id: id, tick: tick}
	heap.Push(&x.queue, e)
	x.entries[id] = e
}

// isFirst must be called with the lock held
func (x *Scheduler) isFirst(id string) bool {
	return len(x.queue) > 0 && x.queue[0].id == id
}

// release wakes the waiter holding the smallest key, if any.
// The released actor stays registered, so at most one wait resolves per call.
func (x *Scheduler) release() {
	if len(x.queue) == 0 {
		return
	}

	first := x.queue[0]
	w, ok := x.waiters[first.id]
	if !ok {
		return
	}

	delete(x.waiters, first.id)
	x.trackWaiting(-1)
	w.ch <- nil
}

func (x *Scheduler) trackWaiting(delta int64) {
	if x.waiting != nil {
		x.waiting.Add(context.Background(), delta)
	}
}
