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

package metric

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// ActorMetric defines the actor run loop instrumentation
type ActorMetric struct {
	// Specifies the total number of messages processed
	processedCount metric.Int64Counter
	// Specifies the total number of container failures
	failureCount metric.Int64Counter
	// Specifies the total number of ticks the actors advanced by
	tickCount metric.Int64Counter
	// Specifies the container invocation duration in milliseconds
	runDuration metric.Float64Histogram
}

// NewActorMetric creates an instance of ActorMetric
func NewActorMetric(meter metric.Meter) (*ActorMetric, error) {
	actorMetric := new(ActorMetric)
	var err error
	if actorMetric.processedCount, err = meter.Int64Counter(
		"exo.actor.processed",
		metric.WithDescription("Total number of messages processed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create processedCount instrument, %w", err)
	}

	if actorMetric.failureCount, err = meter.Int64Counter(
		"exo.actor.failures",
		metric.WithDescription("Total number of container failures"),
	); err != nil {
		return nil, fmt.Errorf("failed to create failureCount instrument, %w", err)
	}

	if actorMetric.tickCount, err = meter.Int64Counter(
		"exo.actor.ticks",
		metric.WithDescription("Total number of logical clock ticks advanced"),
	); err != nil {
		return nil, fmt.Errorf("failed to create tickCount instrument, %w", err)
	}

	if actorMetric.runDuration, err = meter.Float64Histogram(
		"exo.actor.run.duration",
		metric.WithDescription("The latency of container invocations in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create runDuration instrument, %w", err)
	}

	return actorMetric, nil
}

// ProcessedCount returns the processed messages counter
func (x *ActorMetric) ProcessedCount() metric.Int64Counter {
	return x.processedCount
}

// FailureCount returns the container failures counter
func (x *ActorMetric) FailureCount() metric.Int64Counter {
	return x.failureCount
}

// TickCount returns the ticks counter
func (x *ActorMetric) TickCount() metric.Int64Counter {
	return x.tickCount
}

// RunDuration returns the container invocation latency histogram
func (x *ActorMetric) RunDuration() metric.Float64Histogram {
	return x.runDuration
}
