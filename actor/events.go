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

// EventsTopic is the event stream topic actors publish their lifecycle events on
const EventsTopic = "topic.exo.events"

// ActorActivated is published when an actor starts its run loop
type ActorActivated struct {
	ActorID string
	Tick    uint64
}

// ActorIdled is published when an actor has drained its ports and reported done
type ActorIdled struct {
	ActorID string
	Tick    uint64
}

// MessageProcessed is published after every executed message
type MessageProcessed struct {
	ActorID  string
	Port     string
	Tick     uint64
	SendTick uint64
	Seq      uint64
}

// ExecutionFailed is published when a container fails to process a message
type ExecutionFailed struct {
	ActorID string
	Port    string
	Tick    uint64
	Err     error
}

// PortDeleted is published when a delete message removes a port
type PortDeleted struct {
	ActorID string
	Port    string
}
