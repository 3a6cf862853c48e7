/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package reactor is the concrete engine the event loop is built on. It
// turns blocking stdlib calls (net, net/http, time.Timer, os/signal,
// net.Resolver) into events posted on a single channel, so that the
// dispatch goroutine never blocks on I/O and every user callback still
// runs serialized on that one goroutine.
//
// Nothing in this package ever touches a registry.Registry directly: a
// Reactor only knows how to do the blocking work and report back; it is
// the caller (package loop and its component packages) that pairs a
// posted Event with a registry.Handle and a registry.Record.
package reactor

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"
)

// EventKind tags what a posted Event carries.
type EventKind uint8

const (
	EventTimerFired EventKind = iota + 1
	EventSignalRaised
	EventDNSResolved
	EventTCPAccepted
	EventTCPReadable
	EventTCPWritten
	EventTCPClosed
	EventHTTPRequest
	EventHTTPResponded
	EventHTTPCancelled
)

// Event is the payload posted back to the dispatch goroutine. Owner
// identifies which Handle's callbacks should be invoked; Payload is a
// Kind-specific value (net.Conn, []net.IP, []byte, *http.Response, ...);
// a failure is carried in Err.
type Event struct {
	Kind    EventKind
	Owner   uint64
	Payload any
	Err     error
}

// Reactor is the engine a loop.Loop drives. Every method that starts
// background work is non-blocking: it spawns a worker goroutine (or arms
// a stdlib timer/notifier) and returns immediately, with results flowing
// back through the channel returned by Events.
type Reactor interface {
	// Events returns the channel every posted Event arrives on. There is
	// exactly one channel per Reactor, shared by every owner.
	Events() <-chan Event

	// ArmTimer schedules a single EventTimerFired for owner after d.
	// Returns a cancel func that prevents the event from firing if
	// called before d elapses.
	ArmTimer(owner uint64, d time.Duration) (cancel func())

	// WatchSignal begins relaying OS signals for owner. Delivery stops
	// when the returned cancel func runs.
	WatchSignal(owner uint64, sig ...os.Signal) (cancel func())

	// Resolve looks up host's IPv4 addresses on a worker goroutine and
	// posts EventDNSResolved for owner.
	Resolve(ctx context.Context, owner uint64, host string)

	// Listen opens a TCP listener on addr and posts EventTCPAccepted for
	// owner once per accepted connection until the returned close func
	// runs.
	Listen(owner uint64, addr string) (close func() error, err error)

	// Dial opens a TCP connection to addr on a worker goroutine and
	// posts EventTCPAccepted for owner with the resulting net.Conn, or
	// Err set on failure.
	Dial(ctx context.Context, owner uint64, addr string)

	// ReadLoop starts relaying data arriving on conn as EventTCPReadable
	// events for owner until conn is closed or the returned cancel func
	// runs.
	ReadLoop(owner uint64, conn net.Conn, bufSize int) (cancel func())

	// ServeHTTP starts an HTTP server on addr using handler and posts
	// EventHTTPRequest for owner per inbound request. The returned
	// close func shuts the server down.
	ServeHTTP(owner uint64, addr string, handler http.Handler) (close func() error, err error)

	// DoHTTP performs req on a worker goroutine using client and posts
	// EventHTTPResponded for owner.
	DoHTTP(owner uint64, client *http.Client, req *http.Request)

	// Post delivers an Event with the given kind/payload for owner
	// directly on the Events channel. Used by collaborators (such as
	// httpserver's gin.Engine handler) that do their own blocking wait
	// on a foreign goroutine but still need the dispatch goroutine, not
	// their own goroutine, to run owner's callback.
	Post(owner uint64, kind EventKind, payload any)

	// Close stops accepting new work and closes the Events channel once
	// every in-flight worker has reported back.
	Close() error
}
