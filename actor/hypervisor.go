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
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/tochemey/exo/errors"
	"github.com/tochemey/exo/eventstream"
	imetric "github.com/tochemey/exo/internal/metric"
	"github.com/tochemey/exo/journal"
	"github.com/tochemey/exo/log"
	"github.com/tochemey/exo/scheduler"
)

// Hypervisor owns the actors and the scheduler they share.
//
// Actors are created on Spawn, or on first address through GetInstance when a
// default container factory is configured.
type Hypervisor struct {
	ctx    context.Context
	cancel context.CancelFunc

	instances *instanceMap
	scheduler Scheduler
	journal   journal.Journal
	events    eventstream.Stream
	logger    log.Logger

	meterProvider metric.MeterProvider
	metric        *imetric.ActorMetric

	defaultContainer ContainerFactory
	portCapacity     int
	portManager      func() PortManager
	spawnMaxRetries  int
	spawnTimeout     time.Duration

	stopped *atomic.Bool
}

// New creates an instance of Hypervisor. The given context bounds the
// lifetime of every actor run loop.
func New(ctx context.Context, opts ...Option) (*Hypervisor, error) {
	h := &Hypervisor{
		instances:       newInstanceMap(),
		logger:          log.DefaultLogger,
		spawnMaxRetries: DefaultSpawnMaxRetries,
		spawnTimeout:    DefaultSpawnTimeout,
		stopped:         atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(h)
	}

	if h.portCapacity < 0 {
		return nil, fmt.Errorf("%w: negative port capacity %d", gerrors.ErrInvalidConfig, h.portCapacity)
	}

	meter := imetric.NewProvider(h.meterProvider).Meter()
	actorMetric, err := imetric.NewActorMetric(meter)
	if err != nil {
		return nil, err
	}
	h.metric = actorMetric

	if h.scheduler == nil {
		h.scheduler = scheduler.New(scheduler.WithLogger(h.logger), scheduler.WithMeter(meter))
	}
	if h.events == nil {
		h.events = eventstream.New()
	}

	h.ctx, h.cancel = context.WithCancel(ctx)
	return h, nil
}

// Spawn creates the actor id with a container built by factory.
// An empty id is replaced by a random one.
func (h *Hypervisor) Spawn(ctx context.Context, id string, factory ContainerFactory) (*Actor, error) {
	if h.stopped.Load() {
		return nil, gerrors.ErrHypervisorStopped
	}
	if factory == nil {
		return nil, gerrors.ErrContainerRequired
	}
	if id == "" {
		id = uuid.NewString()
	}

	actor, created, err := h.instances.getOrSet(id, func() (*Actor, error) {
		return h.build(ctx, id, factory)
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("%w: %s", gerrors.ErrActorExists, id)
	}

	h.logger.Debugf("actor %s spawned", id)
	return actor, nil
}

// GetInstance returns the actor id. Unknown ids are created with the default
// container factory, or fail with ErrActorNotFound when none is configured.
func (h *Hypervisor) GetInstance(ctx context.Context, id string) (*Actor, error) {
	if actor, ok := h.instances.get(id); ok {
		return actor, nil
	}
	if h.stopped.Load() {
		return nil, gerrors.ErrHypervisorStopped
	}
	if h.defaultContainer == nil {
		return nil, fmt.Errorf("%w: %s", gerrors.ErrActorNotFound, id)
	}

	actor, created, err := h.instances.getOrSet(id, func() (*Actor, error) {
		return h.build(ctx, id, h.defaultContainer)
	})
	if err != nil {
		return nil, err
	}
	if created {
		h.logger.Debugf("actor %s created on first address", id)
	}
	return actor, nil
}

// Queue delivers a message to the named port of the actor id
func (h *Hypervisor) Queue(ctx context.Context, id, portName string, msg *Message) error {
	actor, err := h.GetInstance(ctx, id)
	if err != nil {
		return err
	}
	return actor.Queue(ctx, portName, msg)
}

// Broadcast queues a message built by newMessage on the named port of every
// given actor, or of every registered actor when no id is given.
func (h *Hypervisor) Broadcast(ctx context.Context, portName string, newMessage func(id string) *Message, ids ...string) error {
	if len(ids) == 0 {
		for _, actor := range h.Actors() {
			ids = append(ids, actor.ID())
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		eg.Go(func() error {
			return h.Queue(ctx, id, portName, newMessage(id))
		})
	}
	return eg.Wait()
}

// Remove deletes an idle actor from the registry
func (h *Hypervisor) Remove(id string) error {
	actor, ok := h.instances.get(id)
	if !ok {
		return fmt.Errorf("%w: %s", gerrors.ErrActorNotFound, id)
	}
	if actor.IsRunning() {
		return gerrors.ErrActorBusy
	}
	h.instances.delete(id)
	return nil
}

// Actors returns the registered actors sorted by id
func (h *Hypervisor) Actors() []*Actor {
	actors := h.instances.actors()
	slices.SortFunc(actors, func(a, b *Actor) int {
		return strings.Compare(a.ID(), b.ID())
	})
	return actors
}

// Len returns the number of registered actors
func (h *Hypervisor) Len() int {
	return h.instances.len()
}

// Scheduler returns the scheduler shared by the actors
func (h *Hypervisor) Scheduler() Scheduler {
	return h.scheduler
}

// Events returns the lifecycle event stream
func (h *Hypervisor) Events() eventstream.Stream {
	return h.events
}

// Journal returns the execution journal, nil when none is configured
func (h *Hypervisor) Journal() journal.Journal {
	return h.journal
}

// Logger returns the hypervisor logger
func (h *Hypervisor) Logger() log.Logger {
	return h.logger
}

// AwaitIdle blocks until every actor is idle with empty ports
func (h *Hypervisor) AwaitIdle(ctx context.Context) error {
	ticker := time.NewTicker(DefaultIdlePollInterval)
	defer ticker.Stop()
	for {
		if h.idle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stop releases the scheduler waits, waits for every run loop to exit, then
// closes the event stream and the journal.
func (h *Hypervisor) Stop(ctx context.Context) error {
	if !h.stopped.CompareAndSwap(false, true) {
		return nil
	}

	h.scheduler.Stop()
	h.cancel()

	eg, ctx := errgroup.WithContext(ctx)
	for _, actor := range h.instances.actors() {
		eg.Go(func() error {
			return actor.shutdown(ctx)
		})
	}

	err := eg.Wait()
	h.events.Close()
	if h.journal != nil {
		err = multierr.Append(err, h.journal.Close())
	}

	h.logger.Debug("hypervisor stopped")
	return err
}

func (h *Hypervisor) build(ctx context.Context, id string, factory ContainerFactory) (*Actor, error) {
	actor := newActor(h, id)

	cctx, cancel := context.WithTimeout(ctx, h.spawnTimeout)
	defer cancel()

	retrier := retry.NewRetrier(h.spawnMaxRetries, time.Millisecond, h.spawnTimeout)
	if err := retrier.RunContext(cctx, func(_ context.Context) error {
		container, err := factory(actor)
		if err != nil {
			return err
		}
		actor.container = container
		return nil
	}); err != nil {
		h.logger.Errorf("failed to build container of actor %s: %v", id, err)
		return nil, fmt.Errorf("actor %s: failed to build container: %w", id, err)
	}

	if actor.container == nil {
		return nil, fmt.Errorf("actor %s: %w", id, gerrors.ErrContainerRequired)
	}
	return actor, nil
}

func (h *Hypervisor) newPortManager() PortManager {
	if h.portManager != nil {
		return h.portManager()
	}
	return NewPortManager(h.portCapacity)
}

func (h *Hypervisor) idle() bool {
	for _, actor := range h.instances.actors() {
		if actor.IsRunning() || actor.ports.HasMessages() {
			return false
		}
	}
	return true
}

// shutdown waits for the actor run loop to exit
func (a *Actor) shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.loops.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("actor %s: shutdown: %w", a.id, ctx.Err())
	}
}
