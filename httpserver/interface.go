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

// Package httpserver turns every inbound HTTP request, regardless of
// method or path, into one opaque Request record delivered to RequestCB.
// It is backed internally by a gin.Engine whose only route is a NoRoute
// catch-all: gin plays the role of an evented HTTP server here, not a
// general routing framework.
//
// No TLS, no multipart/form decoding: the raw body is handed to the
// callback unparsed.
package httpserver

import (
	"io"
	"net/http"
	"sync"

	libcond "github.com/nabbar/asyncio/condition"
	libloop "github.com/nabbar/asyncio/loop"
	libreact "github.com/nabbar/asyncio/reactor"
	libreg "github.com/nabbar/asyncio/registry"

	ginsdk "github.com/gin-gonic/gin"
	"github.com/hashicorp/go-uuid"
)

// EventCB receives an http-error condition when a request is cancelled
// (the peer aborts before Respond is called). It never fires for a
// request that reaches Respond.
type EventCB func(cond libcond.Condition)

// Request is the opaque record handed to RequestCB, and the data-model's
// http-request: {received, responded, cancelled}. Headers is net/http's
// header map: the values of one name keep their order, the order of
// distinct names is not kept, and names are in canonical case.
// RequestID correlates this request across
// whatever the callback logs, independent of any client-supplied header.
// QueryString is the raw substring after "?", undecoded, exactly as the
// data model defines it; callers that want it as a multi-map can parse it
// themselves with url.ParseQuery.
//
// Request owns its own registry.Handle (kind KindHTTPRequest), allocated
// on arrival and destroyed the first time the request reaches a terminal
// state — Respond, or cancellation — whichever comes first.
type Request struct {
	RequestID   string
	Method      string
	URI         string
	Resource    string
	QueryString string
	Headers     http.Header
	Body        []byte

	l  *libloop.Loop
	h  libreg.Handle
	w  http.ResponseWriter
	c  chan struct{}
	mu sync.Mutex
	st reqState
}

type reqState uint8

const (
	reqReceived reqState = iota
	reqResponded
	reqCancelled
)

// terminal moves the request to st if it is still reqReceived, returning
// whether the transition happened. Both Respond and the cancellation
// watcher race for this exactly once.
func (r *Request) terminal(st reqState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.st != reqReceived {
		return false
	}
	r.st = st
	return true
}

// Respond writes status/body/headers to the underlying connection and
// unblocks the gin handler goroutine waiting on this Request, destroying
// its registry record. A no-op if the peer already aborted the request
// (Request.cancelled reached first) or Respond was already called.
func (r *Request) Respond(status int, headers http.Header, body []byte) {
	if !r.terminal(reqResponded) {
		return
	}

	for k, vs := range headers {
		for _, v := range vs {
			r.w.Header().Add(k, v)
		}
	}

	r.w.WriteHeader(status)
	_, _ = r.w.Write(body)

	close(r.c)
	_, _ = r.l.Registry().Destroy(r.h)
}

// RequestCB receives every inbound request. The handler goroutine that
// accepted the connection blocks until Request.Respond is called or the
// peer aborts the connection.
type RequestCB func(req *Request)

// Server is one listening HTTP server.
type Server struct {
	l       *libloop.Loop
	h       libreg.Handle
	closeFn func() error

	mu     sync.Mutex
	closed bool
}

// New starts an HTTP server on bind and returns the registry.Handle
// identifying it alongside the Server. eventCB fires once per request
// that the peer aborts before Respond is called; requestCB fires exactly
// once per inbound request regardless of method or path.
func New(l *libloop.Loop, bind string, requestCB RequestCB, eventCB EventCB) (*Server, libreg.Handle, error) {
	ginsdk.SetMode(ginsdk.ReleaseMode)
	eng := ginsdk.New()

	h := l.Registry().Allocate(libreg.KindHTTPServer)

	eng.NoRoute(func(c *ginsdk.Context) {
		body, _ := io.ReadAll(c.Request.Body)

		rid, _ := uuid.GenerateUUID()

		rh := l.Registry().Allocate(libreg.KindHTTPRequest)

		req := &Request{
			RequestID:   rid,
			Method:      c.Request.Method,
			URI:         c.Request.RequestURI,
			Resource:    c.Request.URL.Path,
			QueryString: c.Request.URL.RawQuery,
			Headers:     c.Request.Header,
			Body:        body,
			l:           l,
			h:           rh,
			w:           c.Writer,
			c:           make(chan struct{}),
		}

		l.Registry().Attach(rh, libreg.Record{
			Kind: libreg.KindHTTPRequest,
			Bundle: libreg.Bundle{
				EventCB: func(raw any) {
					ev := raw.(libreact.Event)
					switch ev.Kind {
					case libreact.EventHTTPRequest:
						requestCB(req)
					case libreact.EventHTTPCancelled:
						_, _ = l.Registry().Destroy(rh)
						if eventCB != nil {
							eventCB(libcond.NewError(libcond.KindHTTPError, "request cancelled by peer"))
						}
					}
				},
			},
			State: req,
		})

		// Posting the request as an Event hands its actual
		// requestCB invocation to the dispatch goroutine, rather
		// than calling requestCB directly from gin's own per-
		// connection goroutine: every user callback in this module
		// runs on the one dispatch goroutine, HTTP requests included.
		l.Reactor().Post(uint64(rh), libreact.EventHTTPRequest, req)

		select {
		case <-req.c:
		case <-c.Request.Context().Done():
			// Post first, destroy on the dispatch goroutine: the
			// record (and its EventCB, the only thing that invokes
			// eventCB) must still exist when the event is popped.
			// Destroy runs on the dispatch goroutine; the record
			// itself was allocated and attached on this
			// per-connection goroutine, under the registry's lock.
			if req.terminal(reqCancelled) {
				l.Reactor().Post(uint64(rh), libreact.EventHTTPCancelled, req)
			}
		}
	})

	srv := &Server{l: l, h: h}

	closeFn, err := l.Reactor().ServeHTTP(uint64(h), bind, eng)
	if err != nil {
		_, _ = l.Registry().Destroy(h)
		return nil, 0, err
	}

	l.Registry().Attach(h, libreg.Record{
		Kind:  libreg.KindHTTPServer,
		State: srv,
	})

	srv.closeFn = closeFn

	return srv, h, nil
}

// Close shuts the server down. A second call is a no-op.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	_, _ = s.l.Registry().Destroy(s.h)
	return s.closeFn()
}
