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
	"slices"
	"sync"

	gerrors "github.com/tochemey/exo/errors"
)

// PortManager owns the ports of one actor and orders their buffered messages.
type PortManager interface {
	// Bind registers the port under the given name
	Bind(name string, port *Port) error
	// Queue appends the message to the named port buffer
	Queue(name string, msg *Message) error
	// IsSaturated reports whether no earlier-stamped message can still arrive
	// on any bound port
	IsSaturated() bool
	// HasMessages reports whether any port holds a message
	HasMessages() bool
	// PeekNextMessage returns the next message without removing it
	PeekNextMessage() *Message
	// NextMessage removes and returns the next message
	NextMessage() *Message
	// IsBound reports whether the port is bound to this manager
	IsBound(port *Port) bool
	// Delete removes the named port binding
	Delete(name string) error
	// Get returns the named port
	Get(name string) (*Port, bool)
	// Names returns the port names in bind order
	Names() []string
	// Len returns the number of bound ports
	Len() int
}

// portManager is the default PortManager.
//
// A manager is saturated once every bound port buffers at least one message:
// each port then exposes its earliest pending stamp and nothing earlier can
// overtake it. The next message is the earliest-stamped port head, ties going
// to the port bound first.
type portManager struct {
	mu       sync.RWMutex
	ports    map[string]*Port
	order    []string
	capacity int
}

var _ PortManager = (*portManager)(nil)

// NewPortManager creates the default PortManager. A positive capacity bounds
// every port buffer; Queue then fails with ErrPortFull.
func NewPortManager(capacity int) PortManager {
	return &portManager{
		ports:    make(map[string]*Port),
		capacity: capacity,
	}
}

func (m *portManager) Bind(name string, port *Port) error {
	if name == "" {
		return gerrors.ErrPortNameRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ports[name]; ok {
		return gerrors.ErrPortExists
	}
	for _, bound := range m.ports {
		if bound == port {
			return gerrors.ErrPortExists
		}
	}
	m.ports[name] = port
	m.order = append(m.order, name)
	return nil
}

func (m *portManager) Queue(name string, msg *Message) error {
	m.mu.RLock()
	port, ok := m.ports[name]
	m.mu.RUnlock()
	if !ok {
		return gerrors.ErrPortNotFound
	}

	if m.capacity > 0 && port.Len() >= m.capacity {
		return gerrors.ErrPortFull
	}

	msg.queuedOn(name)
	return port.push(msg)
}

func (m *portManager) IsSaturated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, name := range m.order {
		port := m.ports[name]
		if port.Len() == 0 || !port.singleSender() {
			return false
		}
	}
	return true
}

func (m *portManager) HasMessages() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, name := range m.order {
		if m.ports[name].Len() > 0 {
			return true
		}
	}
	return false
}

func (m *portManager) PeekNextMessage() *Message {
	_, msg := m.head()
	return msg
}

func (m *portManager) NextMessage() *Message {
	name, _ := m.head()
	if name == "" {
		return nil
	}

	m.mu.RLock()
	port, ok := m.ports[name]
	m.mu.RUnlock()
	if !ok {
		return nil
	}

	msg := port.pop()
	if msg != nil {
		// messages sent before the port was bound carry no port name
		msg.queuedOn(name)
	}
	return msg
}

func (m *portManager) IsBound(port *Port) bool {
	if port == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, bound := range m.ports {
		if bound == port {
			return true
		}
	}
	return false
}

func (m *portManager) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ports[name]; !ok {
		return gerrors.ErrPortNotFound
	}

	delete(m.ports, name)
	m.order = slices.DeleteFunc(m.order, func(bound string) bool { return bound == name })
	return nil
}

func (m *portManager) Get(name string) (*Port, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	port, ok := m.ports[name]
	return port, ok
}

func (m *portManager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.order)
}

func (m *portManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

func (m *portManager) head() (string, *Message) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		next string
		msg  *Message
	)
	for _, name := range m.order {
		candidate := m.ports[name].peek()
		if candidate == nil {
			continue
		}
		if msg == nil || candidate.SendTick() < msg.SendTick() {
			next, msg = name, candidate
		}
	}
	return next, msg
}
