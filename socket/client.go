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
	"context"
	"net"

	libcond "github.com/nabbar/asyncio/condition"
	libloop "github.com/nabbar/asyncio/loop"
	libreact "github.com/nabbar/asyncio/reactor"
	libreg "github.com/nabbar/asyncio/registry"
)

const defaultReadBuffer = 64 * 1024

// ConnectCB receives the connected Socket with a tcp-info condition, or a
// nil Socket with a tcp-error condition on dial failure.
type ConnectCB func(s *Socket, cond libcond.Condition)

// Dial opens a TCP connection to addr and returns the registry.Handle
// identifying the in-flight attempt. connectCB fires exactly once, either
// with a live *Socket and a tcp-info condition or with a nil *Socket and a
// tcp-error condition.
func Dial(l *libloop.Loop, addr string, b Bundle, connectCB ConnectCB) libreg.Handle {
	h := l.Registry().Allocate(libreg.KindSocket)

	l.Registry().Attach(h, libreg.Record{
		Kind: libreg.KindSocket,
		Bundle: libreg.Bundle{
			EventCB: func(raw any) {
				ev := raw.(libreact.Event)

				if ev.Err != nil {
					_, _ = l.Registry().Destroy(h)
					connectCB(nil, libcond.Wrap(libcond.KindTCPError, ev.Err))
					return
				}

				conn := ev.Payload.(net.Conn)
				s := attach(l, h, conn, b)
				connectCB(s, libcond.Info(libcond.KindTCPInfo))
			},
		},
	})

	l.Reactor().Dial(context.Background(), uint64(h), addr)

	return h
}

// attach finalizes a Socket once its net.Conn is known (from Dial or from
// a Server's accept loop), replacing the connecting-phase registry record
// with the live one and starting the read loop.
func attach(l *libloop.Loop, h libreg.Handle, conn net.Conn, b Bundle) *Socket {
	s := newSocket(l, h, conn, b)
	s.setState(stateOpen)

	s.cancelR = l.Reactor().ReadLoop(uint64(h), conn, defaultReadBuffer)

	l.Registry().Attach(h, libreg.Record{
		Kind: libreg.KindSocket,
		Bundle: libreg.Bundle{
			EventCB: func(raw any) {
				s.onEvent(raw.(libreact.Event))
			},
		},
		State: s,
	})

	return s
}
