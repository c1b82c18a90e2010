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
	"maps"

	"github.com/tochemey/exo/log"
	"github.com/tochemey/exo/vertex"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(kernel *Kernel)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Kernel)

// Apply applies the Kernel's option
func (f OptionFunc) Apply(k *Kernel) {
	f(k)
}

// WithState sets the kernel state
func WithState(state *vertex.Vertex) Option {
	return OptionFunc(func(k *Kernel) {
		k.state = state
	})
}

// WithCode binds code to the kernel
func WithCode(code Code) Option {
	return OptionFunc(func(k *Kernel) {
		k.code = code
	})
}

// WithInterfaces sets the imports exposed to the code
func WithInterfaces(interfaces map[string]any) Option {
	return OptionFunc(func(k *Kernel) {
		k.interfaces = maps.Clone(interfaces)
	})
}

// WithParent sets the parent kernel
func WithParent(parent *Kernel) Option {
	return OptionFunc(func(k *Kernel) {
		k.parent = parent
	})
}

// WithLoader sets the function resolving the code of child kernels
func WithLoader(loader Loader) Option {
	return OptionFunc(func(k *Kernel) {
		k.loader = loader
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(k *Kernel) {
		k.logger = logger
	})
}
