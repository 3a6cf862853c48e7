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

// Package socket is the evented TCP client and server. A Socket wraps one
// net.Conn; a Server accepts connections and hands each one to the same
// Socket machinery. No TLS: every dial and accept is plain tcp4.
package socket

import (
	"net"
	"sync"
	"time"

	libcond "github.com/nabbar/asyncio/condition"
	libloop "github.com/nabbar/asyncio/loop"
	libreact "github.com/nabbar/asyncio/reactor"
	libreg "github.com/nabbar/asyncio/registry"
)

// state is the socket's own connection lifecycle, independent of the
// registry's allocate/destroy bookkeeping and independent of the
// per-direction enable bits below.
type state uint8

const (
	stateConnecting state = iota
	stateOpen
	stateClosed
)

// Direction selects which half of a socket's monitoring an Enable/Disable
// call affects. The data model keeps read-enable and write-enable as two
// independent bits, so DirRead and DirWrite can be toggled separately;
// DirBoth affects both at once.
type Direction uint8

const (
	DirRead Direction = 1 << iota
	DirWrite
	DirBoth = DirRead | DirWrite
)

// ReadCB receives bytes as they arrive. WriteCB confirms a prior
// WriteData has been flushed to the OS. EventCB receives every
// condition.Condition raised for this socket, including terminal ones.
type (
	ReadCB  func(data []byte)
	WriteCB func(n int)
	EventCB func(cond libcond.Condition)
)

// Bundle groups the three callbacks a Socket is constructed with.
type Bundle struct {
	ReadCB  ReadCB
	WriteCB WriteCB
	EventCB EventCB
}

// WriteOptions overrides selected Bundle slots for a write call. A nil
// field leaves that slot's current callback untouched. The override is
// installed atomically before the write is enqueued, so a fresh WriteCB
// observes the completion of the very bytes just appended, and a fresh
// ReadCB/EventCB governs everything delivered after it; the write-side
// callback is not re-armed for the next call unless WriteOptions supplies
// one again.
type WriteOptions struct {
	ReadCB  ReadCB
	WriteCB WriteCB
	EventCB EventCB
}

// Socket is one TCP connection, client- or server-side.
type Socket struct {
	l        *libloop.Loop
	h        libreg.Handle
	conn     net.Conn
	bundleMu sync.Mutex
	bundle   Bundle
	mu       chan struct{} // binary semaphore guarding st/dir
	st       state
	dir      Direction // independent read/write enable bits, valid while st == stateOpen
	cancelR  func()
}

func (s *Socket) swapBundle(opts WriteOptions) {
	s.bundleMu.Lock()
	defer s.bundleMu.Unlock()

	if opts.ReadCB != nil {
		s.bundle.ReadCB = opts.ReadCB
	}
	if opts.WriteCB != nil {
		s.bundle.WriteCB = opts.WriteCB
	}
	if opts.EventCB != nil {
		s.bundle.EventCB = opts.EventCB
	}
}

func (s *Socket) getBundle() Bundle {
	s.bundleMu.Lock()
	defer s.bundleMu.Unlock()
	return s.bundle
}

func (s *Socket) setState(v state) {
	<-s.mu
	s.st = v
	s.mu <- struct{}{}
}

func (s *Socket) getState() state {
	<-s.mu
	v := s.st
	s.mu <- struct{}{}
	return v
}

func (s *Socket) setDir(d Direction, enabled bool) {
	<-s.mu
	if enabled {
		s.dir |= d
	} else {
		s.dir &^= d
	}
	s.mu <- struct{}{}
}

func (s *Socket) dirEnabled(d Direction) bool {
	<-s.mu
	v := s.dir&d != 0
	s.mu <- struct{}{}
	return v
}

// Send writes data to the connection, returning condition.ErrSocketClosed
// if the socket has already been Closed.
func (s *Socket) Send(data []byte) error {
	return s.SendWithOptions(data, WriteOptions{})
}

// WriteData is an alias of Send kept for symmetry with the read-side
// ReadCB naming.
func (s *Socket) WriteData(data []byte) error {
	return s.SendWithOptions(data, WriteOptions{})
}

// SendWithOptions writes data to the connection, first swapping in any
// non-nil callback carried by opts. The swap is applied before the write
// is enqueued: see WriteOptions.
func (s *Socket) SendWithOptions(data []byte, opts WriteOptions) error {
	if s.getState() == stateClosed {
		return libcond.ErrSocketClosed
	}
	if !s.dirEnabled(DirWrite) {
		return libcond.ErrWriteDisabled
	}

	s.swapBundle(opts)

	n, err := s.conn.Write(data)
	if err != nil {
		s.raiseError(err)
		return err
	}

	s.bundleMu.Lock()
	cb := s.bundle.WriteCB
	s.bundle.WriteCB = nil
	s.bundleMu.Unlock()

	if cb != nil {
		cb(n)
	}

	return nil
}

// SetTimeouts applies read/write deadlines to the underlying connection.
// A zero Duration clears that deadline.
func (s *Socket) SetTimeouts(read, write time.Duration) error {
	if s.getState() == stateClosed {
		return libcond.ErrSocketClosed
	}

	if read > 0 {
		if err := s.conn.SetReadDeadline(time.Now().Add(read)); err != nil {
			return err
		}
	} else {
		_ = s.conn.SetReadDeadline(time.Time{})
	}

	if write > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(write)); err != nil {
			return err
		}
	} else {
		_ = s.conn.SetWriteDeadline(time.Time{})
	}

	return nil
}

// Enable resumes monitoring the given direction(s): DirRead resumes
// ReadCB delivery, DirWrite resumes accepting Send/SendWithOptions/
// WriteData calls. The two bits are independent, matching the data
// model's read-enable/write-enable pair.
func (s *Socket) Enable(dir Direction) error {
	if s.getState() == stateClosed {
		return libcond.ErrSocketClosed
	}
	s.setDir(dir, true)
	return nil
}

// Disable pauses monitoring the given direction(s) without closing the
// connection: DirRead pauses ReadCB delivery (bytes already buffered by
// the reactor's read loop are dropped rather than queued), DirWrite makes
// Send/SendWithOptions/WriteData return condition.ErrWriteDisabled until
// a matching Enable(DirWrite).
func (s *Socket) Disable(dir Direction) error {
	if s.getState() == stateClosed {
		return libcond.ErrSocketClosed
	}
	s.setDir(dir, false)
	return nil
}

// Close tears the connection down and destroys its registry record. A
// second call on an already-closed Socket returns condition.ErrSocketClosed,
// unlike a Server's Close which is a no-op when called twice (see
// Server.Close).
func (s *Socket) Close() error {
	if s.getState() == stateClosed {
		return libcond.ErrSocketClosed
	}
	s.setState(stateClosed)

	if s.cancelR != nil {
		s.cancelR()
	}

	_, _ = s.l.Registry().Destroy(s.h)

	return s.conn.Close()
}

func (s *Socket) raiseError(err error) {
	if s.getState() == stateClosed {
		return
	}

	kind := libcond.KindTCPError
	cond := libcond.Wrap(kind, err)

	if cb := s.getBundle().EventCB; cb != nil {
		cb(cond)
	}

	// Every condition raiseError builds is tcp-eof or a tcp-error
	// specialization (never a pure tcp-info) — §4.10: any state closes
	// on tcp-eof or any tcp-error.
	_ = s.Close()
}

func (s *Socket) onReadable(data []byte) {
	if s.getState() != stateOpen {
		return
	}
	if !s.dirEnabled(DirRead) {
		return
	}
	if cb := s.getBundle().ReadCB; cb != nil {
		cb(data)
	}
}

func (s *Socket) onEvent(ev libreact.Event) {
	switch ev.Kind {
	case libreact.EventTCPReadable:
		s.onReadable(ev.Payload.([]byte))
	case libreact.EventTCPClosed:
		s.raiseError(ev.Err)
	}
}

func newSocket(l *libloop.Loop, h libreg.Handle, conn net.Conn, b Bundle) *Socket {
	s := &Socket{
		l:      l,
		h:      h,
		conn:   conn,
		bundle: b,
		mu:     make(chan struct{}, 1),
		st:     stateConnecting,
		dir:    DirBoth,
	}
	s.mu <- struct{}{}
	return s
}
