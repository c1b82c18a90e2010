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

// Package kernel binds code to the nodes of the state tree.
//
// A kernel either runs its code against a copy of its state, adopting the
// resulting state only when the code succeeds, or routes a message down the
// tree to the kernel of a child vertex inside a path-scoped transaction.
package kernel

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"sync"

	"github.com/tochemey/exo/actor"
	gerrors "github.com/tochemey/exo/errors"
	"github.com/tochemey/exo/log"
	"github.com/tochemey/exo/vertex"
)

// Kernel owns a state vertex and the code bound to it
type Kernel struct {
	mu         sync.RWMutex
	state      *vertex.Vertex
	code       Code
	interfaces map[string]any
	parent     *Kernel
	loader     Loader
	logger     log.Logger
}

// New creates an instance of Kernel. A kernel without state starts from an empty vertex.
func New(opts ...Option) *Kernel {
	k := &Kernel{logger: log.DefaultLogger}
	for _, opt := range opts {
		opt.Apply(k)
	}
	if k.state == nil {
		k.state = vertex.New(nil)
	}
	if k.interfaces == nil {
		k.interfaces = make(map[string]any)
	}
	return k
}

// State returns the kernel state
func (k *Kernel) State() *vertex.Vertex {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.state
}

// Code returns the bound code, nil for a router
func (k *Kernel) Code() Code {
	return k.code
}

// Parent returns the parent kernel, nil for a root
func (k *Kernel) Parent() *Kernel {
	return k.parent
}

// Interfaces returns a copy of the imports exposed to the code
func (k *Kernel) Interfaces() map[string]any {
	return maps.Clone(k.interfaces)
}

// Run executes the bound code against env. Panics are returned as PanicError.
func (k *Kernel) Run(ctx context.Context, env *Environment) (out *Environment, err error) {
	if k.code == nil {
		return nil, gerrors.ErrCodeRequired
	}

	defer func() {
		if r := recover(); r != nil {
			pc, fn, line, _ := runtime.Caller(2)
			if e, ok := r.(error); ok {
				err = gerrors.NewPanicError(fmt.Errorf("%w at %s[%s:%d]", e, runtime.FuncForPC(pc).Name(), fn, line))
				return
			}
			err = gerrors.NewPanicError(fmt.Errorf("%#v at %s[%s:%d]", r, runtime.FuncForPC(pc).Name(), fn, line))
		}
	}()

	if err := k.code.Run(ctx, env); err != nil {
		return nil, err
	}
	return env, nil
}

// MessageReceiver handles a message.
//
// With code bound, the code runs against a copy of the state and the kernel
// adopts the resulting state only when the run succeeds. Without code, a
// message carrying a path is forwarded to the kernel of the child vertex at
// that path; the child is committed back when the nested call returns,
// whether it failed or not. Messages reaching a router without a path are ignored.
func (k *Kernel) MessageReceiver(ctx context.Context, msg *actor.Message) error {
	if k.code != nil {
		env := &Environment{
			Message: msg,
			State:   k.State().Copy(),
			Imports: k.Interfaces(),
		}

		out, err := k.Run(ctx, env)
		if err != nil {
			k.logger.Debugf("kernel: code failed, state left unchanged: %v", err)
			return err
		}

		k.mu.Lock()
		k.state = out.State
		k.mu.Unlock()
		return nil
	}

	path := msg.To()
	if len(path) == 0 {
		return nil
	}

	state, commit, err := k.State().Update(ctx, path)
	if err != nil {
		return err
	}

	child, err := k.child(state)
	if err != nil {
		commit(nil)
		return err
	}
	defer func() {
		commit(child.State())
	}()

	// the child handles the message locally
	msg.SetTo(nil)
	return child.MessageReceiver(ctx, msg)
}

// Copy returns a kernel over a copy-on-write snapshot of the state, keeping
// the code, the interfaces and the parent
func (k *Kernel) Copy() *Kernel {
	return New(
		WithState(k.State().Copy()),
		WithCode(k.code),
		WithInterfaces(k.interfaces),
		WithParent(k.parent),
		WithLoader(k.loader),
		WithLogger(k.logger),
	)
}

func (k *Kernel) child(state *vertex.Vertex) (*Kernel, error) {
	var code Code
	if k.loader != nil {
		var err error
		if code, err = k.loader(state); err != nil {
			return nil, fmt.Errorf("kernel: loading child code: %w", err)
		}
	}

	return New(
		WithState(state),
		WithCode(code),
		WithInterfaces(k.interfaces),
		WithParent(k),
		WithLoader(k.loader),
		WithLogger(k.logger),
	), nil
}
