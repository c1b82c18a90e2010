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

// Package journal records the order in which actors executed their messages.
//
// Actors run concurrently, so entries are appended in wall-clock order. The
// canonical order, the one two runs over the same message graph agree on, is
// (Tick, ActorID, Seq) and is what Entries returns.
package journal

import (
	"cmp"
	"context"
	"slices"
	"strings"
)

// Entry describes one executed message
type Entry struct {
	// ActorID is the id of the executing actor
	ActorID string `cbor:"1,keyasint"`
	// Port is the name of the port the message was queued on. Empty for initialize calls.
	Port string `cbor:"2,keyasint,omitempty"`
	// Tick is the actor logical clock when the message was dequeued
	Tick uint64 `cbor:"3,keyasint"`
	// SendTick is the sender logical clock at send time
	SendTick uint64 `cbor:"4,keyasint"`
	// Hops is the number of deliveries the message went through
	Hops uint64 `cbor:"5,keyasint"`
	// Seq is the per-actor execution sequence number, starting at 1
	Seq uint64 `cbor:"6,keyasint"`
	// Exception is set when the container failed
	Exception bool `cbor:"7,keyasint,omitempty"`
	// Cause is the container failure message
	Cause string `cbor:"8,keyasint,omitempty"`
}

// Journal stores execution entries
type Journal interface {
	// Append records an entry
	Append(ctx context.Context, entry Entry) error
	// Entries returns every recorded entry in canonical order
	Entries(ctx context.Context) ([]Entry, error)
	// Close releases the journal resources
	Close() error
}

// Compare orders entries by (Tick, ActorID, Seq)
func Compare(a, b Entry) int {
	if c := cmp.Compare(a.Tick, b.Tick); c != 0 {
		return c
	}
	if c := strings.Compare(a.ActorID, b.ActorID); c != 0 {
		return c
	}
	return cmp.Compare(a.Seq, b.Seq)
}

// Sort sorts entries in canonical order
func Sort(entries []Entry) {
	slices.SortStableFunc(entries, Compare)
}
