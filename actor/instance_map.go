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

	"github.com/zeebo/xxh3"
)

const instanceShards = 32

type instanceShard struct {
	mu     sync.RWMutex
	actors map[string]*Actor
}

// instanceMap is the hypervisor registry of actors, sharded by id hash
type instanceMap struct {
	shards [instanceShards]*instanceShard
}

func newInstanceMap() *instanceMap {
	m := new(instanceMap)
	for i := range m.shards {
		m.shards[i] = &instanceShard{actors: make(map[string]*Actor)}
	}
	return m
}

func (m *instanceMap) shard(id string) *instanceShard {
	return m.shards[xxh3.HashString(id)%instanceShards]
}

// get retrieves an actor by its id
func (m *instanceMap) get(id string) (*Actor, bool) {
	shard := m.shard(id)
	shard.mu.RLock()
	actor, ok := shard.actors[id]
	shard.mu.RUnlock()
	return actor, ok
}

// getOrSet stores the actor built by create unless the id is already
// registered. It reports whether the stored actor is the one built by create.
// create runs without holding the shard lock; a concurrent registration wins.
func (m *instanceMap) getOrSet(id string, create func() (*Actor, error)) (*Actor, bool, error) {
	if actor, ok := m.get(id); ok {
		return actor, false, nil
	}

	actor, err := create()
	if err != nil {
		return nil, false, err
	}

	shard := m.shard(id)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if existing, ok := shard.actors[id]; ok {
		return existing, false, nil
	}
	shard.actors[id] = actor
	return actor, true, nil
}

// delete removes an actor from the registry
func (m *instanceMap) delete(id string) {
	shard := m.shard(id)
	shard.mu.Lock()
	delete(shard.actors, id)
	shard.mu.Unlock()
}

// len returns the number of actors
func (m *instanceMap) len() int {
	count := 0
	for _, shard := range m.shards {
		shard.mu.RLock()
		count += len(shard.actors)
		shard.mu.RUnlock()
	}
	return count
}

// actors returns all actors as a slice
func (m *instanceMap) actors() []*Actor {
	var out []*Actor
	for _, shard := range m.shards {
		shard.mu.RLock()
		for _, actor := range shard.actors {
			out = append(out, actor)
		}
		shard.mu.RUnlock()
	}
	return out
}
