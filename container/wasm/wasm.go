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

// Package wasm runs WebAssembly modules as actor containers.
//
// A module exports its linear memory as "memory" together with a
// "run(ptr, len i32) i32" function and, optionally, an
// "initialize(ptr, len i32) i32" function. The message payload is copied at
// offset zero of the memory before each call and the returned i32 is the
// result value. The host provides "env.incrementTicks(i64)" which advances
// the logical clock of the actor running the module.
package wasm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/tochemey/exo/actor"
)

const (
	// ImportModule is the namespace of the host functions
	ImportModule = "env"
	// IncrementTicksImport is the host function advancing the actor clock
	IncrementTicksImport = "incrementTicks"
	// MemoryExport is the exported linear memory
	MemoryExport = "memory"
	// InitializeExport is the optional initialization entry point
	InitializeExport = "initialize"
	// RunExport is the message entry point
	RunExport = "run"

	pageSize = 65536
)

// ErrInvalidPayload is returned when the message payload is neither bytes nor a string
var ErrInvalidPayload = errors.New("wasm: payload must be []byte or string")

// Container executes a WebAssembly module on behalf of an actor
type Container struct {
	mu         sync.Mutex
	instance   *wasmer.Instance
	memory     *wasmer.Memory
	initialize wasmer.NativeFunction
	run        wasmer.NativeFunction
}

var _ actor.Container = (*Container)(nil)

// New returns a ContainerFactory compiling code once per actor
func New(code []byte) actor.ContainerFactory {
	return func(a *actor.Actor) (actor.Container, error) {
		store := wasmer.NewStore(wasmer.NewEngine())
		module, err := wasmer.NewModule(store, code)
		if err != nil {
			return nil, fmt.Errorf("wasm: compiling module: %w", err)
		}

		incrementTicks := wasmer.NewFunction(
			store,
			wasmer.NewFunctionType(wasmer.NewValueTypes(wasmer.I64), wasmer.NewValueTypes()),
			func(args []wasmer.Value) ([]wasmer.Value, error) {
				if count := args[0].I64(); count > 0 {
					a.IncrementTicks(uint64(count))
				}
				return []wasmer.Value{}, nil
			},
		)

		imports := wasmer.NewImportObject()
		imports.Register(ImportModule, map[string]wasmer.IntoExtern{
			IncrementTicksImport: incrementTicks,
		})

		instance, err := wasmer.NewInstance(module, imports)
		if err != nil {
			return nil, fmt.Errorf("wasm: instantiating module: %w", err)
		}

		memory, err := instance.Exports.GetMemory(MemoryExport)
		if err != nil {
			return nil, fmt.Errorf("wasm: %w", err)
		}

		run, err := instance.Exports.GetFunction(RunExport)
		if err != nil {
			return nil, fmt.Errorf("wasm: %w", err)
		}

		// initialize is optional
		initialize, _ := instance.Exports.GetFunction(InitializeExport)

		return &Container{
			instance:   instance,
			memory:     memory,
			initialize: initialize,
			run:        run,
		}, nil
	}
}

// Initialize calls the exported initialize function when the module has one
func (c *Container) Initialize(ctx context.Context, msg *actor.Message) (any, error) {
	if c.initialize == nil {
		return nil, nil
	}
	return c.call(ctx, c.initialize, msg)
}

// Run calls the exported run function
func (c *Container) Run(ctx context.Context, msg *actor.Message) (any, error) {
	return c.call(ctx, c.run, msg)
}

func (c *Container) call(ctx context.Context, fn wasmer.NativeFunction, msg *actor.Message) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := payload(msg)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.write(data); err != nil {
		return nil, err
	}

	result, err := fn(int32(0), int32(len(data)))
	if err != nil {
		return nil, fmt.Errorf("wasm: %w", err)
	}
	return result, nil
}

// write copies data at offset zero, growing the memory when needed
func (c *Container) write(data []byte) error {
	if missing := len(data) - int(c.memory.DataSize()); missing > 0 {
		pages := (missing + pageSize - 1) / pageSize
		if !c.memory.Grow(wasmer.Pages(pages)) {
			return fmt.Errorf("wasm: cannot grow memory by %d pages", pages)
		}
	}
	copy(c.memory.Data(), data)
	return nil
}

func payload(msg *actor.Message) ([]byte, error) {
	switch value := msg.Payload().(type) {
	case nil:
		return nil, nil
	case []byte:
		return value, nil
	case string:
		return []byte(value), nil
	default:
		return nil, ErrInvalidPayload
	}
}
