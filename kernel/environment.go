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

package kernel

import (
	"context"

	"github.com/tochemey/exo/actor"
	"github.com/tochemey/exo/vertex"
)

// ActorImport is the import under which a kernel running as an actor
// container exposes its actor to the code
const ActorImport = "actor"

// Environment is what code runs against
type Environment struct {
	// Message is the message being executed
	Message *actor.Message
	// State is a copy-on-write copy of the kernel state. It becomes the kernel
	// state when the code succeeds.
	State *vertex.Vertex
	// Imports are the interfaces the kernel exposes to its code
	Imports map[string]any
}

// Actor returns the actor exposed to the code, nil when the kernel does not
// run as an actor container
func (e *Environment) Actor() *actor.Actor {
	a, _ := e.Imports[ActorImport].(*actor.Actor)
	return a
}

// Code is the executable bound to a kernel state
type Code interface {
	Run(ctx context.Context, env *Environment) error
}

// CodeFunc implements Code
type CodeFunc func(ctx context.Context, env *Environment) error

// Run calls f
func (f CodeFunc) Run(ctx context.Context, env *Environment) error {
	return f(ctx, env)
}

// Loader returns the code bound to a state vertex, or nil when the vertex is
// a pure router
type Loader func(state *vertex.Vertex) (Code, error)
