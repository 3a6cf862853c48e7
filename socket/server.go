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

package socket

import (
	"net"
	"sync"

	libcond "github.com/nabbar/asyncio/condition"
	libloop "github.com/nabbar/asyncio/loop"
	libreact "github.com/nabbar/asyncio/reactor"
	libreg "github.com/nabbar/asyncio/registry"
)

// AcceptCB fires once per accepted connection with the new Socket's own
// bundle already wired.
type AcceptCB func(s *Socket)

// Server listens on one address and hands every accepted connection to
// AcceptCB. Unlike Socket.Close, Server.Close is idempotent: a second call
// is a no-op, since closing the underlying listener twice has no further
// effect to report.
type Server struct {
	l       *libloop.Loop
	h       libreg.Handle
	closeFn func() error

	mu     sync.Mutex
	closed bool
}

// NewServer starts listening on addr and returns the Server plus the
// registry.Handle identifying the listener.
func NewServer(l *libloop.Loop, addr string, b Bundle, acceptCB AcceptCB, eventCB EventCB) (*Server, libreg.Handle, error) {
	h := l.Registry().Allocate(libreg.KindSocketServer)

	srv := &Server{l: l, h: h}

	l.Registry().Attach(h, libreg.Record{
		Kind: libreg.KindSocketServer,
		Bundle: libreg.Bundle{
			EventCB: func(raw any) {
				ev := raw.(libreact.Event)

				switch ev.Kind {
				case libreact.EventTCPAccepted:
					conn := ev.Payload.(net.Conn)
					ch := l.Registry().Allocate(libreg.KindSocket)
					s := attach(l, ch, conn, b)
					acceptCB(s)
				case libreact.EventTCPClosed:
					if ev.Err != nil && eventCB != nil {
						eventCB(libcond.Wrap(libcond.KindTCPError, ev.Err))
					}
				}
			},
		},
		State: srv,
	})

	closeFn, err := l.Reactor().Listen(uint64(h), addr)
	if err != nil {
		_, _ = l.Registry().Destroy(h)
		return nil, 0, err
	}

	srv.closeFn = closeFn

	return srv, h, nil
}

// Close stops the listener. A second call on an already-closed Server is
// a no-op and does not surface as an error, unlike a second Socket.Close.
func (srv *Server) Close() error {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.closed {
		return nil
	}
	srv.closed = true

	_, _ = srv.l.Registry().Destroy(srv.h)

	return srv.closeFn()
}
