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

// Package eventstream is an in-process topic broker used to observe actor lifecycle events.
package eventstream

import (
	"sync"

	"go.uber.org/atomic"
)

// Stream defines the event stream broker.
type Stream interface {
	// AddSubscriber adds a subscriber.
	AddSubscriber() Subscriber
	// RemoveSubscriber removes a subscriber and shuts it down.
	RemoveSubscriber(sub Subscriber)
	// SubscribersCount returns the number of subscribers for a given topic.
	SubscribersCount(topic string) int
	// Subscribe subscribes a subscriber to a topic.
	Subscribe(sub Subscriber, topic string)
	// Unsubscribe removes a subscriber from a topic.
	Unsubscribe(sub Subscriber, topic string)
	// Publish publishes a message to a topic.
	Publish(topic string, msg any)
	// Broadcast notifies all subscribers of the given topics of a new message.
	Broadcast(msg any, topics []string)
	// Close shuts every subscriber down. Publishing on a closed stream is a no-op.
	Close()
}

// EventStream is the default Stream implementation
type EventStream struct {
	mu          sync.RWMutex
	subscribers map[string]Subscriber
	topics      map[string]map[string]Subscriber
	closed      *atomic.Bool
}

var _ Stream = (*EventStream)(nil)

// New creates an instance of EventStream
func New() *EventStream {
	return &EventStream{
		subscribers: make(map[string]Subscriber),
		topics:      make(map[string]map[string]Subscriber),
		closed:      atomic.NewBool(false),
	}
}

// AddSubscriber adds a subscriber
func (s *EventStream) AddSubscriber() Subscriber {
	sub := newSubscriber()
	if s.closed.Load() {
		sub.Shutdown()
		return sub
	}

	s.mu.Lock()
	s.subscribers[sub.ID()] = sub
	s.mu.Unlock()
	return sub
}

// RemoveSubscriber removes a subscriber and shuts it down
func (s *EventStream) RemoveSubscriber(sub Subscriber) {
	for _, topic := range sub.Topics() {
		s.Unsubscribe(sub, topic)
	}

	s.mu.Lock()
	delete(s.subscribers, sub.ID())
	s.mu.Unlock()

	sub.Shutdown()
}

// SubscribersCount returns the number of subscribers for a given topic
func (s *EventStream) SubscribersCount(topic string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.topics[topic])
}

// Subscribe subscribes a subscriber to a topic
func (s *EventStream) Subscribe(sub Subscriber, topic string) {
	if !sub.Active() {
		return
	}

	sub.subscribe(topic)

	s.mu.Lock()
	subs, ok := s.topics[topic]
	if !ok {
		subs = make(map[string]Subscriber)
		s.topics[topic] = subs
	}
	subs[sub.ID()] = sub
	s.mu.Unlock()
}

// Unsubscribe removes a subscriber from a topic
func (s *EventStream) Unsubscribe(sub Subscriber, topic string) {
	sub.unsubscribe(topic)

	s.mu.Lock()
	if subs, ok := s.topics[topic]; ok {
		delete(subs, sub.ID())
		if len(subs) == 0 {
			delete(s.topics, topic)
		}
	}
	s.mu.Unlock()
}

// Publish publishes a message to a topic
func (s *EventStream) Publish(topic string, msg any) {
	s.publish(topic, msg)
}

// Broadcast notifies all subscribers of the given topics of a new message
func (s *EventStream) Broadcast(msg any, topics []string) {
	for _, topic := range topics {
		s.publish(topic, msg)
	}
}

// Close shuts every subscriber down
func (s *EventStream) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	s.mu.Lock()
	for _, sub := range s.subscribers {
		sub.Shutdown()
	}
	s.subscribers = make(map[string]Subscriber)
	s.topics = make(map[string]map[string]Subscriber)
	s.mu.Unlock()
}

func (s *EventStream) publish(topic string, msg any) {
	if s.closed.Load() {
		return
	}

	s.mu.RLock()
	subs := s.topics[topic]
	if len(subs) == 0 {
		s.mu.RUnlock()
		return
	}
	snapshot := make([]Subscriber, 0, len(subs))
	for _, sub := range subs {
		snapshot = append(snapshot, sub)
	}
	s.mu.RUnlock()

	message := NewMessage(topic, msg)
	for _, sub := range snapshot {
		sub.signal(message)
	}
}
