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
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/exo/eventstream"
	"github.com/tochemey/exo/journal"
	"github.com/tochemey/exo/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(hypervisor *Hypervisor)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Hypervisor)

// Apply applies the Hypervisor's option
func (f OptionFunc) Apply(c *Hypervisor) {
	f(c)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(h *Hypervisor) {
		h.logger = logger
	})
}

// WithScheduler sets the scheduler shared by every actor
func WithScheduler(scheduler Scheduler) Option {
	return OptionFunc(func(h *Hypervisor) {
		h.scheduler = scheduler
	})
}

// WithJournal records every executed message in the given journal
func WithJournal(journal journal.Journal) Option {
	return OptionFunc(func(h *Hypervisor) {
		h.journal = journal
	})
}

// WithEventStream sets the stream actor lifecycle events are published on
func WithEventStream(stream eventstream.Stream) Option {
	return OptionFunc(func(h *Hypervisor) {
		h.events = stream
	})
}

// WithMeterProvider sets the OpenTelemetry meter provider
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(h *Hypervisor) {
		h.meterProvider = provider
	})
}

// WithDefaultContainer sets the factory used by GetInstance to create actors
// that have not been spawned explicitly
func WithDefaultContainer(factory ContainerFactory) Option {
	return OptionFunc(func(h *Hypervisor) {
		h.defaultContainer = factory
	})
}

// WithPortCapacity bounds every port buffer of the default PortManager
func WithPortCapacity(capacity int) Option {
	return OptionFunc(func(h *Hypervisor) {
		h.portCapacity = capacity
	})
}

// WithPortManager sets the function building each actor PortManager
func WithPortManager(factory func() PortManager) Option {
	return OptionFunc(func(h *Hypervisor) {
		h.portManager = factory
	})
}

// WithSpawnRetries sets the number of attempts and the overall timeout used
// when building a container
func WithSpawnRetries(maxRetries int, timeout time.Duration) Option {
	return OptionFunc(func(h *Hypervisor) {
		h.spawnMaxRetries = maxRetries
		h.spawnTimeout = timeout
	})
}
