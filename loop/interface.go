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

// Package loop is the event-loop supervisor: it owns the registry, the
// reactor, and the single dispatch goroutine every timer/signal/dns/
// socket/httpserver/httpclient callback in this module runs on.
package loop

import (
	"fmt"
	"runtime"
	"sync"

	liberr "github.com/nabbar/asyncio/errors"
	libpool "github.com/nabbar/asyncio/errors/pool"
	liblog "github.com/nabbar/asyncio/logger"
	libreact "github.com/nabbar/asyncio/reactor"
	libreg "github.com/nabbar/asyncio/registry"

	"github.com/hashicorp/go-multierror"
)

const codeLoopActive liberr.CodeError = liberr.MinPkgLoop + iota

// ErrLoopActive is returned by Start when the calling goroutine already
// owns a running Loop.
var ErrLoopActive = liberr.New(codeLoopActive, "event-loop-active")

// Options configures a Loop before Start. Zero value is a usable default.
type Options struct {
	// EventBuffer sizes the reactor's internal event channel.
	EventBuffer int

	// CatchAppErrors, when true, recovers a panic raised by a user
	// callback and reports it on ErrorCB instead of crashing the
	// dispatch goroutine; the loop keeps running afterward.
	CatchAppErrors bool

	// ErrorCB receives every callback panic recovered under
	// CatchAppErrors, and every error surfaced by reactor teardown.
	ErrorCB func(error)

	// Logger receives structured diagnostics of the loop's own
	// lifecycle (start, exit, purge). Defaults to a discard logger.
	Logger liblog.Logger
}

// Loop is the handle every component package (timer, signalhandler, dns,
// socket, httpserver, httpclient) is built against: it exposes the
// Registry and Reactor they allocate through, plus the lifecycle methods
// an application calls directly.
type Loop struct {
	opt      Options
	reg      libreg.Registry
	react    libreact.Reactor
	exitCh   chan struct{}
	exitOnce sync.Once

	// teardown keeps one entry per record-close failure observed during
	// shutdown, indexed in the order they occurred, so a caller can
	// inspect which specific record failed rather than only the
	// aggregated error shutdown returns.
	teardown libpool.Pool
}

// Registry exposes the handle table backing every Allocate/Attach/Lookup
// call made by component packages.
func (l *Loop) Registry() libreg.Registry {
	return l.reg
}

// Reactor exposes the concrete engine component packages arm timers,
// watch signals, resolve DNS, and drive sockets/HTTP through.
func (l *Loop) Reactor() libreact.Reactor {
	return l.react
}

// Logger exposes the loop's configured logger so component packages can
// log consistently without each one needing its own Options field.
func (l *Loop) Logger() liblog.Logger {
	return l.opt.Logger
}

// CatchAppErrors reports whether a user callback panic should be
// recovered and routed to the configured ErrorCB rather than crashing the
// dispatch goroutine.
func (l *Loop) CatchAppErrors() bool {
	return l.opt.CatchAppErrors
}

// ReportError routes err to the configured ErrorCB, if any.
func (l *Loop) ReportError(err error) {
	if err == nil {
		return
	}
	if l.opt.ErrorCB != nil {
		l.opt.ErrorCB(err)
	}
}

// Exit requests the loop to stop: PurgeAll runs on every remaining
// registry record, and Run returns once the dispatch goroutine observes
// the request.
func (l *Loop) Exit() {
	l.exitOnce.Do(func() {
		close(l.exitCh)
	})
}

// Stats reports the registry's current live-record counts.
func (l *Loop) Stats() libreg.Stats {
	return l.reg.Stats()
}

// TeardownErrors returns the per-record close failures observed during
// the most recent shutdown, in the order they occurred. Empty before the
// loop has shut down, or if every record closed cleanly.
func (l *Loop) TeardownErrors() []error {
	res := make([]error, 0, l.teardown.Len())
	for i, n := uint64(1), l.teardown.MaxId(); i <= n; i++ {
		if e := l.teardown.Get(i); e != nil {
			res = append(res, e)
		}
	}
	return res
}

// Start pins the calling goroutine to its OS thread (the thread-local
// singleton analogue described for this component), constructs the
// Registry/Reactor pair, and runs entry followed by the dispatch loop
// until Exit is called or entry returns without scheduling any work.
//
// Returns ErrLoopActive if called re-entrantly from the same OS thread
// while a Loop started by it is still running.
func Start(entry func(*Loop), opt Options) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !singleton.claim() {
		return ErrLoopActive
	}
	defer singleton.release()

	if opt.Logger == nil {
		opt.Logger = liblog.Discard()
	}
	if opt.EventBuffer <= 0 {
		opt.EventBuffer = 64
	}

	l := &Loop{
		opt:      opt,
		reg:      libreg.New(),
		react:    libreact.New(opt.EventBuffer, opt.Logger),
		exitCh:   make(chan struct{}),
		teardown: libpool.New(),
	}

	l.invoke(func() { entry(l) })

	return l.run()
}

// run drains reactor events until either Exit is called or the registry
// empties out: "run until empty" (spec.md §4.2) means a loop whose entry
// function scheduled no outstanding work — or whose outstanding work has
// all completed and been destroyed — returns on its own, with no
// explicit Exit call required.
func (l *Loop) run() error {
	events := l.react.Events()

	if l.drained() {
		return l.shutdown()
	}

	for {
		select {
		case <-l.exitCh:
			return l.shutdown()

		case ev, ok := <-events:
			if !ok {
				return l.shutdown()
			}
			l.dispatch(ev)

			if l.drained() {
				return l.shutdown()
			}
		}
	}
}

// drained reports whether the registry holds no live records, i.e. there
// is nothing left that could ever post another event.
func (l *Loop) drained() bool {
	return l.reg.Stats().Total() == 0
}

func (l *Loop) shutdown() error {
	recs := l.reg.PurgeAll()

	var result *multierror.Error
	for _, rec := range recs {
		if closer, ok := rec.State.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				result = multierror.Append(result, err)
				l.teardown.Add(err)
			}
		}
	}

	if err := l.react.Close(); err != nil {
		result = multierror.Append(result, err)
	}

	if result.ErrorOrNil() != nil {
		l.ReportError(result)
		return result
	}

	return nil
}

func (l *Loop) dispatch(ev libreact.Event) {
	rec, ok := l.reg.Lookup(libreg.Handle(ev.Owner))
	if !ok {
		return
	}

	l.invoke(func() {
		if rec.Bundle.EventCB != nil {
			rec.Bundle.EventCB(ev)
		} else if rec.Bundle.GenericCB != nil {
			rec.Bundle.GenericCB()
		}
	})
}

func (l *Loop) invoke(fn func()) {
	if !l.opt.CatchAppErrors {
		fn()
		return
	}

	defer func() {
		if r := recover(); r != nil {
			l.ReportError(liberr.NewErrorRecovered("callback panic", toString(r)))
		}
	}()

	fn()
}

func toString(r any) string {
	if e, ok := r.(error); ok {
		return e.Error()
	}
	return fmt.Sprintf("%v", r)
}
