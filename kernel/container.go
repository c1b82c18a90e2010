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
)

// Container runs a kernel as the container of an actor
type Container struct {
	kernel *Kernel
}

var _ actor.Container = (*Container)(nil)

// AsContainer returns a ContainerFactory running a copy of k for each actor.
// The actor is exposed to the code under ActorImport.
func AsContainer(k *Kernel) actor.ContainerFactory {
	return func(a *actor.Actor) (actor.Container, error) {
		kernel := k.Copy()
		kernel.interfaces[ActorImport] = a
		kernel.logger = a.Logger()
		return &Container{kernel: kernel}, nil
	}
}

// Kernel returns the kernel run by the container
func (c *Container) Kernel() *Kernel {
	return c.kernel
}

// Initialize returns the current state value
func (c *Container) Initialize(context.Context, *actor.Message) (any, error) {
	return c.kernel.State().Value(), nil
}

// Run hands the message to the kernel
func (c *Container) Run(ctx context.Context, msg *actor.Message) (any, error) {
	if err := c.kernel.MessageReceiver(ctx, msg); err != nil {
		return nil, err
	}
	return c.kernel.State().Value(), nil
}
