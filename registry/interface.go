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

// Package registry holds the one record per live resource (timer, signal
// handler, dns lookup, socket, http request) that every other package in
// this module allocates through. A Handle is the only thing ever handed
// back to a caller; the Record it names is read and destroyed on the
// dispatch goroutine, except that httpserver allocates and attaches its
// per-request records on its connection goroutines.
package registry

import (
	"sync"
)

// Kind tags what a Record stands for, for Stats() reporting. Lookup
// returns it with the Record but does not check it.
type Kind uint8

const (
	KindTimer Kind = iota + 1
	KindSignal
	KindDNS
	KindSocket
	KindSocketServer
	KindHTTPServer
	KindHTTPRequest
	KindHTTPClient
)

// Record is the payload a component attaches to its own Handle. State is
// an opaque, component-owned value (e.g. *socket.state) the registry never
// interprets; it only stores and returns it.
type Record struct {
	Kind   Kind
	Bundle Bundle
	State  any
}

// Bundle is the sum of every callback shape a Record might carry. Only the
// fields relevant to Kind are ever non-nil; the rest stay zero.
type Bundle struct {
	GenericCB func()
	EventCB   func(any)
}

// Registry is the handle table. Allocate/Attach/Lookup/Destroy are safe
// for concurrent use, but by convention only the dispatch goroutine ever
// calls Lookup/Destroy for a given Handle; reactor worker goroutines only
// ever read a Handle's identity to tag a result posted back on the event
// channel.
type Registry interface {
	// Allocate reserves a new Handle of the given Kind with no Record
	// attached yet. The id is never reused while any generation below
	// the current one for that slot is still outstanding.
	Allocate(k Kind) Handle

	// Attach stores r against an already-Allocated Handle. Attaching
	// twice for the same Handle overwrites the prior Record.
	Attach(h Handle, r Record)

	// Lookup returns the Record for h and true, or a zero Record and
	// false if h is unknown or stale (wrong generation).
	Lookup(h Handle) (Record, bool)

	// Destroy releases h's slot for reuse under a new generation and
	// returns the Record that was stored there, if any.
	Destroy(h Handle) (Record, bool)

	// PurgeAll destroys every live Record, returning the Records in
	// unspecified order so a caller (the forced-loop-exit path) can run
	// each Kind's teardown. Safe to call on an already-empty registry.
	PurgeAll() []Record

	// Stats reports the count of currently live Records per Kind.
	Stats() Stats
}

// Stats is the published, fixed-shape count of live records, resolving
// the open question of exact bookkeeping counts by publishing this
// implementation's own counters rather than an unspecified upstream set.
type Stats struct {
	Timers        int
	Signals       int
	DNSLookups    int
	Sockets       int
	SocketServers int
	HTTPServers   int
	HTTPRequests  int
	HTTPClients   int
}

// Total is the sum of every counted kind.
func (s Stats) Total() int {
	return s.Timers + s.Signals + s.DNSLookups + s.Sockets + s.SocketServers + s.HTTPServers + s.HTTPRequests + s.HTTPClients
}

// New returns an empty Registry ready for use.
func New() Registry {
	return &reg{
		m: make(map[Handle]Record, 64),
	}
}

type reg struct {
	mu   sync.Mutex
	m    map[Handle]Record
	seq  uint64
	gen  map[slot]uint16
	free []slot
}

type slot = uint64
