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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPort is returned when a message is created with a port that is
	// still bound to the creating actor, or when a port owned by another actor is bound.
	ErrInvalidPort = errors.New("message must not contain bound ports")

	// ErrPortNotFound is returned when a message is queued on, or a delete targets, an unbound port.
	ErrPortNotFound = errors.New("port not found")

	// ErrPortExists is returned when binding a name that is already in use.
	ErrPortExists = errors.New("port already bound")

	// ErrPortNameRequired is returned when binding a port without a name.
	ErrPortNameRequired = errors.New("port name is required")

	// ErrPortFull is returned when a port buffer reached its capacity.
	ErrPortFull = errors.New("port buffer is full")

	// ErrPortUnbound is returned when sending through a port that has neither a
	// remote nor a local destination.
	ErrPortUnbound = errors.New("port has no destination")

	// ErrActorNotFound is returned when the hypervisor cannot resolve an actor id.
	ErrActorNotFound = errors.New("actor not found")

	// ErrActorExists is returned when spawning an id that is already registered.
	ErrActorExists = errors.New("actor already exists")

	// ErrActorBusy is returned when an initialize call targets a running actor.
	ErrActorBusy = errors.New("actor is running")

	// ErrContainerRequired is returned when an actor is created without a container factory.
	ErrContainerRequired = errors.New("container factory is required")

	// ErrHypervisorStopped is returned once the hypervisor has been stopped.
	ErrHypervisorStopped = errors.New("hypervisor is stopped")

	// ErrSchedulerStopped is returned by waits released by a scheduler shutdown.
	ErrSchedulerStopped = errors.New("scheduler is stopped")

	// ErrCodeRequired is returned when running a kernel that has no code bound.
	ErrCodeRequired = errors.New("kernel has no code bound")

	// ErrInvalidPath is returned when a state tree path contains an empty segment.
	ErrInvalidPath = errors.New("invalid state path")

	// ErrJournalClosed is returned when a closed journal is used.
	ErrJournalClosed = errors.New("journal is closed")

	// ErrInvalidConfig is returned when a configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}

// ExecutionError reports a container failure captured by an actor run loop.
type ExecutionError struct {
	ActorID string
	Port    string
	err     error
}

// enforce compilation error
var _ error = (*ExecutionError)(nil)

// NewExecutionError creates an instance of ExecutionError
func NewExecutionError(actorID, port string, err error) *ExecutionError {
	return &ExecutionError{ActorID: actorID, Port: port, err: err}
}

// Error implements the standard error interface
func (e *ExecutionError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("actor %s: execution failed: %v", e.ActorID, e.err)
	}
	return fmt.Sprintf("actor %s: execution failed on port %s: %v", e.ActorID, e.Port, e.err)
}

func (e *ExecutionError) Unwrap() error {
	return e.err
}
