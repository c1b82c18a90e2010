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
	"sync"

	"github.com/Workiva/go-datastructures/queue"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/exo/errors"
)

// Port is a named message channel owned by at most one actor at a time.
//
// A port is either bound to a remote actor port (destination id and name) or
// linked to another in-process port. Messages delivered to a port are buffered
// in sendTick order; messages with the same sendTick keep their arrival order.
//
// A channel end that only ever received from its linked end has a single
// sender. Any delivery addressed by actor and port name makes it shared.
type Port struct {
	mu       sync.RWMutex
	name     string
	owner    *Actor
	destID   string
	destName string
	dest     *Port

	buffer   *queue.PriorityQueue
	arrivals *atomic.Uint64
	shared   *atomic.Bool
}

// NewPort creates a port bound to the port destName of the actor destID
func NewPort(destID, destName string) *Port {
	p := newPort()
	p.destID = destID
	p.destName = destName
	return p
}

// NewChannel creates two ports linked to each other. Messages sent on one
// end are delivered to the other.
func NewChannel() (*Port, *Port) {
	left, right := newPort(), newPort()
	left.dest = right
	right.dest = left
	return left, right
}

func newPort() *Port {
	return &Port{
		buffer:   queue.NewPriorityQueue(8, true),
		arrivals: atomic.NewUint64(0),
		shared:   atomic.NewBool(false),
	}
}

// Name returns the name the port is bound under, empty when unbound
func (p *Port) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// Owner returns the actor the port is bound to, nil when unbound
func (p *Port) Owner() *Actor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.owner
}

// DestID returns the id of the remote destination actor
func (p *Port) DestID() string {
	return p.destID
}

// DestName returns the port name on the remote destination actor
func (p *Port) DestName() string {
	return p.destName
}

// DestPort returns the linked port of a local channel
func (p *Port) DestPort() *Port {
	return p.dest
}

// IsLocal reports whether the port is linked to an in-process port
func (p *Port) IsLocal() bool {
	return p.dest != nil
}

// Len returns the number of buffered messages
func (p *Port) Len() int {
	return p.buffer.Len()
}

// singleSender reports whether every message the port can receive comes from
// the owner of its linked end, whose stamps never decrease
func (p *Port) singleSender() bool {
	return p.IsLocal() && !p.shared.Load()
}

func (p *Port) binding() (*Actor, string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.owner, p.name
}

func (p *Port) claim(owner *Actor, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.owner == owner:
		return gerrors.ErrPortExists
	case p.owner != nil:
		return gerrors.ErrInvalidPort
	}
	p.owner = owner
	p.name = name
	return nil
}

func (p *Port) release() {
	p.mu.Lock()
	p.owner = nil
	p.name = ""
	p.mu.Unlock()
}

func (p *Port) push(msg *Message) error {
	if !msg.channeled.Load() {
		p.shared.Store(true)
	}
	return p.buffer.Put(&envelope{message: msg, arrival: p.arrivals.Inc()})
}

func (p *Port) peek() *Message {
	item := p.buffer.Peek()
	if item == nil {
		return nil
	}
	return item.(*envelope).message
}

// pop must only be called by the single consumer of the port
func (p *Port) pop() *Message {
	if p.buffer.Empty() {
		return nil
	}
	items, err := p.buffer.Get(1)
	if err != nil || len(items) == 0 {
		return nil
	}
	return items[0].(*envelope).message
}

// envelope orders buffered messages by (sendTick, arrival)
type envelope struct {
	message *Message
	arrival uint64
}

var _ queue.Item = (*envelope)(nil)

func (e *envelope) Compare(other queue.Item) int {
	o := other.(*envelope)
	a, b := e.message.SendTick(), o.message.SendTick()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	case e.arrival < o.arrival:
		return -1
	case e.arrival > o.arrival:
		return 1
	}
	return 0
}
