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

import "context"

// RunFunc handles a message on behalf of an actor
type RunFunc = func(ctx context.Context, actor *Actor, msg *Message) (any, error)

// FuncOption is the interface that applies a FuncContainer option.
type FuncOption interface {
	// Apply sets the Option value of a config.
	Apply(container *FuncContainer)
}

var _ FuncOption = funcOption(nil)

// funcOption implements the FuncOption interface.
type funcOption func(container *FuncContainer)

// Apply implementation
func (f funcOption) Apply(c *FuncContainer) {
	f(c)
}

// WithInitialize sets the function handling initialize calls
func WithInitialize(fn RunFunc) FuncOption {
	return funcOption(func(container *FuncContainer) {
		container.initialize = fn
	})
}

// FuncContainer is a container built from functions
type FuncContainer struct {
	actor      *Actor
	run        RunFunc
	initialize RunFunc
}

var _ Container = (*FuncContainer)(nil)

// NewFuncContainer returns a ContainerFactory building a FuncContainer
func NewFuncContainer(run RunFunc, opts ...FuncOption) ContainerFactory {
	return func(actor *Actor) (Container, error) {
		container := &FuncContainer{
			actor: actor,
			run:   run,
		}
		for _, opt := range opts {
			opt.Apply(container)
		}
		return container, nil
	}
}

// Initialize calls the initialize function when set
func (x *FuncContainer) Initialize(ctx context.Context, msg *Message) (any, error) {
	if x.initialize == nil {
		return nil, nil
	}
	return x.initialize(ctx, x.actor, msg)
}

// Run calls the run function
func (x *FuncContainer) Run(ctx context.Context, msg *Message) (any, error) {
	if x.run == nil {
		return nil, nil
	}
	return x.run(ctx, x.actor, msg)
}
