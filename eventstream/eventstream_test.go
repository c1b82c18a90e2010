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

package eventstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEventStream(t *testing.T) {
	t.Run("With Subscription", func(t *testing.T) {
		stream := New()
		sub := stream.AddSubscriber()
		require.NotNil(t, sub)
		assert.True(t, sub.Active())

		stream.Subscribe(sub, "t1")
		stream.Subscribe(sub, "t2")
		assert.Equal(t, 1, stream.SubscribersCount("t1"))
		assert.Equal(t, 1, stream.SubscribersCount("t2"))
		assert.ElementsMatch(t, []string{"t1", "t2"}, sub.Topics())

		stream.RemoveSubscriber(sub)
		assert.False(t, sub.Active())
		assert.Zero(t, stream.SubscribersCount("t1"))
		assert.Zero(t, stream.SubscribersCount("t2"))

		// inactive subscribers are ignored
		stream.Subscribe(sub, "t3")
		assert.Zero(t, stream.SubscribersCount("t3"))
		stream.Close()
	})
	t.Run("With Unsubscription", func(t *testing.T) {
		stream := New()
		sub := stream.AddSubscriber()
		stream.Subscribe(sub, "t1")
		stream.Subscribe(sub, "t2")

		stream.Unsubscribe(sub, "t1")
		assert.Zero(t, stream.SubscribersCount("t1"))
		assert.Equal(t, 1, stream.SubscribersCount("t2"))
		assert.Equal(t, []string{"t2"}, sub.Topics())
		stream.Close()
	})
	t.Run("With Publication", func(t *testing.T) {
		stream := New()
		sub := stream.AddSubscriber()
		stream.Subscribe(sub, "t1")
		stream.Subscribe(sub, "t2")

		stream.Publish("t1", "hi")
		stream.Publish("t2", "hello")
		stream.Publish("t3", "ignored")
		require.Equal(t, 2, sub.Len())

		var payloads []any
		for message := range sub.Iterator() {
			payloads = append(payloads, message.Payload())
		}
		assert.Equal(t, []any{"hi", "hello"}, payloads)
		assert.Zero(t, sub.Len())
		stream.Close()
	})
	t.Run("With Broadcast", func(t *testing.T) {
		stream := New()
		first := stream.AddSubscriber()
		second := stream.AddSubscriber()
		stream.Subscribe(first, "t1")
		stream.Subscribe(second, "t2")

		stream.Broadcast("event", []string{"t1", "t2"})

		for _, sub := range []Subscriber{first, second} {
			var topics []string
			for message := range sub.Iterator() {
				topics = append(topics, message.Topic())
				assert.Equal(t, "event", message.Payload())
			}
			assert.Len(t, topics, 1)
		}
		stream.Close()
	})
	t.Run("With Close", func(t *testing.T) {
		stream := New()
		sub := stream.AddSubscriber()
		stream.Subscribe(sub, "t1")
		stream.Close()
		stream.Close()

		assert.False(t, sub.Active())
		stream.Publish("t1", "late")
		assert.Empty(t, sub.Iterator())

		late := stream.AddSubscriber()
		assert.False(t, late.Active())
	})
}
