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

	"go.uber.org/atomic"
)

// DeletePayload is the payload that removes the port a message was queued on
// instead of invoking the container.
const DeletePayload = "delete"

// Message is the envelope exchanged between actors.
//
// Its payload, ports and result handler are fixed at construction. The hop
// counter, the send tick and the port name are written by the delivery machinery.
type Message struct {
	payload  any
	ports    []*Port
	to       []string
	onResult func(*Result)

	hops      *atomic.Uint64
	sendTick  *atomic.Uint64
	portName  *atomic.String
	channeled *atomic.Bool
}

// MessageOption configures a Message
type MessageOption func(*Message)

// WithPayload sets the message payload
func WithPayload(payload any) MessageOption {
	return func(m *Message) {
		m.payload = payload
	}
}

// WithPorts sets the ports transferred with the message
func WithPorts(ports ...*Port) MessageOption {
	return func(m *Message) {
		m.ports = slices.Clone(ports)
	}
}

// WithTo sets the state tree path the message is routed to
func WithTo(path ...string) MessageOption {
	return func(m *Message) {
		m.to = slices.Clone(path)
	}
}

// WithResultHandler sets the function called with the execution result
// once the message has been processed.
func WithResultHandler(handler func(*Result)) MessageOption {
	return func(m *Message) {
		m.onResult = handler
	}
}

// NewMessage creates an instance of Message
func NewMessage(opts ...MessageOption) *Message {
	m := &Message{
		hops:      atomic.NewUint64(0),
		sendTick:  atomic.NewUint64(0),
		portName:  atomic.NewString(""),
		channeled: atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Payload returns the message payload
func (m *Message) Payload() any {
	return m.payload
}

// Ports returns the ports transferred with the message
func (m *Message) Ports() []*Port {
	return slices.Clone(m.ports)
}

// Hops returns the number of deliveries the message went through
func (m *Message) Hops() uint64 {
	return m.hops.Load()
}

// SendTick returns the sender logical clock at send time
func (m *Message) SendTick() uint64 {
	return m.sendTick.Load()
}

// PortName returns the name of the port the message was queued on
func (m *Message) PortName() string {
	return m.portName.Load()
}

// To returns the state tree path the message is routed to
func (m *Message) To() []string {
	return slices.Clone(m.to)
}

// SetTo replaces the routing path
func (m *Message) SetTo(path []string) {
	m.to = slices.Clone(path)
}

// IsDelete reports whether the message carries the delete sentinel
func (m *Message) IsDelete() bool {
	payload, ok := m.payload.(string)
	return ok && payload == DeletePayload
}

func (m *Message) stamp(tick uint64) {
	m.sendTick.Store(tick)
}

// channel marks a message sent through the linked end of a channel
func (m *Message) channel() {
	m.channeled.Store(true)
}

func (m *Message) hop() {
	m.hops.Inc()
}

func (m *Message) queuedOn(name string) {
	m.portName.Store(name)
}

func (m *Message) reply(result *Result) {
	if m.onResult != nil {
		m.onResult(result)
	}
}
