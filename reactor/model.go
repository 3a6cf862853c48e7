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

package reactor

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	liblog "github.com/nabbar/asyncio/logger"

	"golang.org/x/net/http2"
	"golang.org/x/sync/singleflight"
)

type eng struct {
	mu     sync.Mutex
	ev     chan Event
	closed bool
	wg     sync.WaitGroup
	log    liblog.Logger

	listeners map[uint64]net.Listener
	servers   map[uint64]*http.Server

	// resolveGroup collapses concurrent Resolve calls for the same host
	// into a single net.Resolver.LookupIPAddr call: every owner waiting
	// on that host gets the same result instead of each issuing its own
	// lookup.
	resolveGroup singleflight.Group
}

// New returns a Reactor with the given event channel buffer size. A small
// buffer (the teacher's own socket/httpserver packages favor unbuffered or
// tiny buffers) keeps backpressure visible rather than letting workers
// race arbitrarily far ahead of the dispatch goroutine.
//
// log receives the accept-loop's terminal error once a listener stops
// accepting, and a warning for any Event dropped after Close. A nil log
// is replaced with a discard Logger, so passing nil is always safe.
func New(buffer int, log liblog.Logger) Reactor {
	if log == nil {
		log = liblog.Discard()
	}

	return &eng{
		ev:        make(chan Event, buffer),
		log:       log,
		listeners: make(map[uint64]net.Listener),
		servers:   make(map[uint64]*http.Server),
	}
}

func (e *eng) Events() <-chan Event {
	return e.ev
}

func (e *eng) post(ev Event) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()

	if closed {
		e.log.WithFields(liblog.Fields{"owner": ev.Owner, "kind": ev.Kind}).
			Warn("dropping event posted after reactor close")
		return
	}

	e.ev <- ev
}

func (e *eng) ArmTimer(owner uint64, d time.Duration) func() {
	t := time.AfterFunc(d, func() {
		e.post(Event{Kind: EventTimerFired, Owner: owner})
	})
	return func() { t.Stop() }
}

func (e *eng) WatchSignal(owner uint64, sig ...os.Signal) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sig...)

	done := make(chan struct{})
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for {
			select {
			case s, ok := <-ch:
				if !ok {
					return
				}
				e.post(Event{Kind: EventSignalRaised, Owner: owner, Payload: s})
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}

func (e *eng) Resolve(ctx context.Context, owner uint64, host string) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		v, err, _ := e.resolveGroup.Do(host, func() (any, error) {
			r := &net.Resolver{}
			addrs, err := r.LookupIPAddr(ctx, host)
			if err != nil {
				return nil, err
			}

			v4 := make([]net.IP, 0, len(addrs))
			for _, a := range addrs {
				if ip4 := a.IP.To4(); ip4 != nil {
					v4 = append(v4, ip4)
				}
			}
			return v4, nil
		})

		if err != nil {
			e.post(Event{Kind: EventDNSResolved, Owner: owner, Err: err})
			return
		}

		e.post(Event{Kind: EventDNSResolved, Owner: owner, Payload: v.([]net.IP)})
	}()
}

func (e *eng) Listen(owner uint64, addr string) (func() error, error) {
	l, err := net.Listen("tcp4", addr)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.listeners[owner] = l
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for {
			c, err := l.Accept()
			if err != nil {
				e.log.WithFields(liblog.Fields{"owner": owner, "addr": addr}).
					Warn("accept loop terminated: " + err.Error())
				e.post(Event{Kind: EventTCPClosed, Owner: owner, Err: err})
				return
			}
			e.post(Event{Kind: EventTCPAccepted, Owner: owner, Payload: c})
		}
	}()

	return func() error {
		e.mu.Lock()
		delete(e.listeners, owner)
		e.mu.Unlock()
		return l.Close()
	}, nil
}

func (e *eng) Dial(ctx context.Context, owner uint64, addr string) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		var d net.Dialer
		c, err := d.DialContext(ctx, "tcp4", addr)
		if err != nil {
			e.post(Event{Kind: EventTCPAccepted, Owner: owner, Err: err})
			return
		}

		e.post(Event{Kind: EventTCPAccepted, Owner: owner, Payload: c})
	}()
}

func (e *eng) ReadLoop(owner uint64, conn net.Conn, bufSize int) func() {
	done := make(chan struct{})

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		buf := make([]byte, bufSize)
		for {
			select {
			case <-done:
				return
			default:
			}

			n, err := conn.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				e.post(Event{Kind: EventTCPReadable, Owner: owner, Payload: data})
			}
			if err != nil {
				e.post(Event{Kind: EventTCPClosed, Owner: owner, Err: err})
				return
			}
		}
	}()

	return func() { close(done) }
}

func (e *eng) ServeHTTP(owner uint64, addr string, handler http.Handler) (func() error, error) {
	srv := &http.Server{Addr: addr, Handler: handler}

	// http2.ConfigureServer registers HTTP/2 for TLS connections only.
	// This server never terminates TLS itself (per this package's no-TLS
	// rule), so it answers plain HTTP/1.x; h2c is not enabled.
	if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
		return nil, err
	}

	l, err := net.Listen("tcp4", addr)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.servers[owner] = srv
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		_ = srv.Serve(l)
	}()

	return func() error {
		e.mu.Lock()
		delete(e.servers, owner)
		e.mu.Unlock()
		return srv.Close()
	}, nil
}

func (e *eng) DoHTTP(owner uint64, client *http.Client, req *http.Request) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		resp, err := client.Do(req)
		if err != nil {
			e.post(Event{Kind: EventHTTPResponded, Owner: owner, Err: err})
			return
		}

		// Drain the body here, on the worker goroutine, so the
		// dispatch goroutine's later read of resp.Body never blocks
		// on network I/O.
		data, rerr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if rerr != nil {
			e.post(Event{Kind: EventHTTPResponded, Owner: owner, Err: rerr})
			return
		}

		resp.Body = io.NopCloser(bytes.NewReader(data))

		e.post(Event{Kind: EventHTTPResponded, Owner: owner, Payload: resp})
	}()
}

func (e *eng) Post(owner uint64, kind EventKind, payload any) {
	e.post(Event{Kind: kind, Owner: owner, Payload: payload})
}

func (e *eng) Close() error {
	e.mu.Lock()
	for _, l := range e.listeners {
		_ = l.Close()
	}
	for _, s := range e.servers {
		_ = s.Close()
	}
	e.closed = true
	e.mu.Unlock()

	e.wg.Wait()
	close(e.ev)

	return nil
}
