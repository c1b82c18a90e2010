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
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/exo/errors"
	"github.com/tochemey/exo/journal"
	"github.com/tochemey/exo/log"
)

const (
	idle int32 = iota
	running
	initializing
)

// Actor is an isolated execution unit wrapping a container.
//
// An actor owns a logical clock (ticks) and a set of ports. Messages queued on
// its ports are executed one at a time, in the order agreed on with the
// scheduler, by a run loop that exists only while there is work to do.
type Actor struct {
	id         string
	hypervisor *Hypervisor
	container  Container
	ports      PortManager
	scheduler  Scheduler
	logger     log.Logger

	ticks     *atomic.Uint64
	state     *atomic.Int32
	current   *atomic.Pointer[Message]
	processed *atomic.Uint64

	loops sync.WaitGroup
}

func newActor(hypervisor *Hypervisor, id string) *Actor {
	return &Actor{
		id:         id,
		hypervisor: hypervisor,
		ports:      hypervisor.newPortManager(),
		scheduler:  hypervisor.scheduler,
		logger:     hypervisor.logger.With("actor", id),
		ticks:      atomic.NewUint64(0),
		state:      atomic.NewInt32(idle),
		current:    atomic.NewPointer[Message](nil),
		processed:  atomic.NewUint64(0),
	}
}

// ID returns the actor id
func (a *Actor) ID() string {
	return a.id
}

// Ticks returns the actor logical clock
func (a *Actor) Ticks() uint64 {
	return a.ticks.Load()
}

// IsIdle reports whether no message owns the actor execution
func (a *Actor) IsIdle() bool {
	return a.state.Load() == idle
}

// IsRunning reports whether the actor is initializing or its run loop is active
func (a *Actor) IsRunning() bool {
	return !a.IsIdle()
}

// CurrentMessage returns the message being executed, nil when none
func (a *Actor) CurrentMessage() *Message {
	return a.current.Load()
}

// Ports returns the actor PortManager
func (a *Actor) Ports() PortManager {
	return a.ports
}

// Container returns the actor container
func (a *Actor) Container() Container {
	return a.container
}

// Logger returns the actor logger
func (a *Actor) Logger() log.Logger {
	return a.logger
}

// Hypervisor returns the hypervisor the actor belongs to
func (a *Actor) Hypervisor() *Hypervisor {
	return a.hypervisor
}

// ProcessedCount returns the number of executed messages, initialize calls included
func (a *Actor) ProcessedCount() uint64 {
	return a.processed.Load()
}

// Queue delivers a message to the named port and starts the run loop when
// the actor is idle. An empty port name executes the message right away as an
// initialize call; ErrActorBusy is returned when the actor is running.
func (a *Actor) Queue(ctx context.Context, portName string, msg *Message) error {
	if a.hypervisor.stopped.Load() {
		return gerrors.ErrHypervisorStopped
	}

	msg.hop()
	if portName == "" {
		return a.initialize(ctx, msg)
	}

	if err := a.ports.Queue(portName, msg); err != nil {
		return err
	}

	a.process()
	return nil
}

// IncrementTicks advances the logical clock by count and notifies the
// scheduler. It is meant to be called by the container while it executes a message.
func (a *Actor) IncrementTicks(count uint64) {
	if count == 0 {
		return
	}

	ticks := a.ticks.Add(count)
	a.hypervisor.metric.TickCount().Add(context.Background(), int64(count), a.attributes())
	if a.state.Load() == running {
		a.scheduler.Update(a.id, ticks)
	}
}

// CreateMessage builds a message. It fails with ErrInvalidPort when one of the
// transferred ports is bound to the actor.
func (a *Actor) CreateMessage(opts ...MessageOption) (*Message, error) {
	msg := NewMessage(opts...)
	if err := a.checkPorts(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Send stamps the message with the actor ticks and delivers it through the
// port: to the linked port of a local channel, or to the destination actor
// resolved by the hypervisor.
func (a *Actor) Send(ctx context.Context, port *Port, msg *Message) error {
	if port == nil {
		return gerrors.ErrPortUnbound
	}
	if err := a.checkPorts(msg); err != nil {
		return err
	}

	msg.stamp(a.Ticks())

	if port.IsLocal() {
		msg.channel()
		dest := port.DestPort()
		if owner, name := dest.binding(); owner != nil {
			return owner.Queue(ctx, name, msg)
		}
		// kept on the port until an actor binds it
		msg.hop()
		return dest.push(msg)
	}

	if port.DestID() == "" {
		return gerrors.ErrPortUnbound
	}

	target, err := a.hypervisor.GetInstance(ctx, port.DestID())
	if err != nil {
		return err
	}
	return target.Queue(ctx, port.DestName(), msg)
}

// BindPort binds the port to the actor under the given name. A port owned by
// another actor cannot be bound.
func (a *Actor) BindPort(name string, port *Port) error {
	if port == nil {
		return gerrors.ErrInvalidPort
	}
	if name == "" {
		return gerrors.ErrPortNameRequired
	}
	if err := port.claim(a, name); err != nil {
		return err
	}
	if err := a.ports.Bind(name, port); err != nil {
		port.release()
		return err
	}

	if port.Len() > 0 {
		a.process()
	}
	return nil
}

// DeletePort removes the named port from the actor
func (a *Actor) DeletePort(name string) error {
	port, ok := a.ports.Get(name)
	if !ok {
		return gerrors.ErrPortNotFound
	}
	if err := a.ports.Delete(name); err != nil {
		return err
	}

	port.release()
	a.publish(&PortDeleted{ActorID: a.id, Port: name})
	return nil
}

func (a *Actor) initialize(ctx context.Context, msg *Message) error {
	if !a.state.CompareAndSwap(idle, initializing) {
		return gerrors.ErrActorBusy
	}

	a.current.Store(msg)
	a.run(ctx, msg, true)
	a.current.Store(nil)
	a.state.Store(idle)

	if a.ports.HasMessages() {
		a.process()
	}
	return nil
}

// process starts the run loop when the actor is idle
func (a *Actor) process() {
	if !a.state.CompareAndSwap(idle, running) {
		return
	}

	a.loops.Add(1)
	go a.loop(a.hypervisor.ctx)
}

func (a *Actor) loop(ctx context.Context) {
	defer a.loops.Done()
	a.activate()

	for {
		if !a.ports.IsSaturated() {
			if err := a.scheduler.Wait(ctx, a.Ticks(), a.id); err != nil {
				a.halt(err)
				return
			}
		}

		if a.ports.HasMessages() {
			if next := a.ports.PeekNextMessage(); next != nil && next.SendTick() > a.Ticks() {
				a.scheduler.Update(a.id, a.advance(next.SendTick()))
				if err := a.scheduler.Wait(ctx, a.Ticks(), a.id); err != nil {
					a.halt(err)
					return
				}
			}

			msg := a.ports.NextMessage()
			if msg == nil {
				continue
			}

			a.current.Store(msg)
			a.run(ctx, msg, false)
			a.current.Store(nil)
			continue
		}

		a.scheduler.Done(a.id)
		a.state.Store(idle)
		a.publish(&ActorIdled{ActorID: a.id, Tick: a.Ticks()})

		// messages queued after the last check restart the loop here
		if a.ports.HasMessages() && a.state.CompareAndSwap(idle, running) {
			a.activate()
			continue
		}
		return
	}
}

func (a *Actor) activate() {
	ticks := a.Ticks()
	a.scheduler.Update(a.id, ticks)
	a.publish(&ActorActivated{ActorID: a.id, Tick: ticks})
}

func (a *Actor) halt(err error) {
	if !errors.Is(err, gerrors.ErrSchedulerStopped) && !errors.Is(err, context.Canceled) {
		a.logger.Warnf("actor %s: run loop stopped: %v", a.id, err)
	}
	a.scheduler.Done(a.id)
	a.state.Store(idle)
}

// advance moves the clock forward to tick and returns the resulting ticks
func (a *Actor) advance(tick uint64) uint64 {
	for {
		current := a.ticks.Load()
		if tick <= current {
			return current
		}
		if a.ticks.CompareAndSwap(current, tick) {
			a.hypervisor.metric.TickCount().Add(context.Background(), int64(tick-current), a.attributes())
			return tick
		}
	}
}

// run executes the message. Container failures and panics are converted into
// the returned Result and never propagate.
func (a *Actor) run(ctx context.Context, msg *Message, init bool) *Result {
	var (
		result   = new(Result)
		tick     = a.Ticks()
		portName string
	)

	if !init {
		portName = msg.PortName()
	}

	switch {
	case !init && msg.IsDelete():
		if err := a.DeletePort(portName); err != nil {
			a.logger.Warnf("actor %s: failed to delete port %s: %v", a.id, portName, err)
		}
	default:
		start := time.Now()
		value, err := a.invoke(ctx, msg, init)
		a.hypervisor.metric.RunDuration().Record(ctx, float64(time.Since(start))/float64(time.Millisecond), a.attributes())

		result.Value = value
		if err != nil {
			result.Exception = true
			result.ExceptionError = gerrors.NewExecutionError(a.id, portName, err)
			a.logger.Warn(result.ExceptionError)
			a.hypervisor.metric.FailureCount().Add(ctx, 1, a.attributes())
			a.publish(&ExecutionFailed{ActorID: a.id, Port: portName, Tick: tick, Err: result.ExceptionError})
		}
	}

	seq := a.processed.Inc()
	a.hypervisor.metric.ProcessedCount().Add(ctx, 1, a.attributes())
	a.record(ctx, journal.Entry{
		ActorID:   a.id,
		Port:      portName,
		Tick:      tick,
		SendTick:  msg.SendTick(),
		Hops:      msg.Hops(),
		Seq:       seq,
		Exception: result.Exception,
		Cause:     cause(result.ExceptionError),
	})
	a.publish(&MessageProcessed{ActorID: a.id, Port: portName, Tick: tick, SendTick: msg.SendTick(), Seq: seq})

	msg.reply(result)
	return result
}

func (a *Actor) invoke(ctx context.Context, msg *Message, init bool) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			// enrich the panic with the frame that raised it
			pc, fn, line, _ := runtime.Caller(2)
			if e, ok := r.(error); ok {
				err = gerrors.NewPanicError(fmt.Errorf("%w at %s[%s:%d]", e, runtime.FuncForPC(pc).Name(), fn, line))
				return
			}
			err = gerrors.NewPanicError(fmt.Errorf("%#v at %s[%s:%d]", r, runtime.FuncForPC(pc).Name(), fn, line))
		}
	}()

	if init {
		return a.container.Initialize(ctx, msg)
	}
	return a.container.Run(ctx, msg)
}

func (a *Actor) checkPorts(msg *Message) error {
	for _, port := range msg.ports {
		if a.ports.IsBound(port) {
			return gerrors.ErrInvalidPort
		}
	}
	return nil
}

func (a *Actor) record(ctx context.Context, entry journal.Entry) {
	if a.hypervisor.journal == nil {
		return
	}
	if err := a.hypervisor.journal.Append(ctx, entry); err != nil {
		a.logger.Warnf("actor %s: failed to journal message: %v", a.id, err)
	}
}

func (a *Actor) publish(event any) {
	if a.hypervisor.events != nil {
		a.hypervisor.events.Publish(EventsTopic, event)
	}
}

func (a *Actor) attributes() metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("actor.id", a.id))
}

func cause(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
