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

// Package signalhandler installs callbacks for OS signals on the loop's
// dispatch goroutine.
//
// Go gives no way to read back a process' prior sigaction the way the C
// original this is modeled on could: there is no "what was installed
// before" to restore on Free. What this package tracks instead is honest
// about that limitation: whether golib itself previously registered a
// handler for that signal, not what the process' disposition was before
// golib ever ran. Install refuses a signo that already has a handler on
// file (ErrSignalExists); Free stops relaying the signal and restores no
// saved disposition.
package signalhandler

import (
	"sync"
	"syscall"

	liberr "github.com/nabbar/asyncio/errors"
	libloop "github.com/nabbar/asyncio/loop"
	libreg "github.com/nabbar/asyncio/registry"

	"github.com/hashicorp/go-multierror"
)

// SignalCB is invoked on the dispatch goroutine when signo is raised.
type SignalCB func(signo syscall.Signal)

// Options reserved for future per-signal configuration; currently empty.
type Options struct{}

const codeSignalExists liberr.CodeError = liberr.MinPkgSignal + iota

// ErrSignalExists is returned by Install when signo already has a record
// installed; §4.4's invariant is "at most one record may be active" per
// signo, so a second Install must fail rather than silently replace it.
var ErrSignalExists = liberr.New(codeSignalExists, "signal-exists")

var (
	mu        sync.Mutex
	installed = map[syscall.Signal]libreg.Handle{}
)

// Install arms cb for signo and returns the registry.Handle identifying
// it. Fails with ErrSignalExists if golib already has a handler installed
// for signo; the caller must Free the existing one first.
func Install(l *libloop.Loop, signo syscall.Signal, cb SignalCB, _ Options) (libreg.Handle, error) {
	mu.Lock()
	if _, ok := installed[signo]; ok {
		mu.Unlock()
		return 0, ErrSignalExists
	}
	mu.Unlock()

	h := l.Registry().Allocate(libreg.KindSignal)

	cancel := l.Reactor().WatchSignal(uint64(h), signo)

	l.Registry().Attach(h, libreg.Record{
		Kind: libreg.KindSignal,
		Bundle: libreg.Bundle{
			GenericCB: func() { cb(signo) },
		},
		State: &sigState{signo: signo, handle: h, cancel: cancel},
	})

	mu.Lock()
	installed[signo] = h
	mu.Unlock()

	return h, nil
}

// Free removes the handler identified by h. Safe to call more than once.
func Free(l *libloop.Loop, h libreg.Handle) {
	rec, ok := l.Registry().Destroy(h)
	if !ok {
		return
	}

	if st, ok := rec.State.(*sigState); ok {
		st.cancel()
		st.forget()
	}
}

// ClearAll removes every signal handler this package currently has
// installed on l, aggregating any teardown failures instead of stopping
// at the first one so every handler still gets a chance to release.
func ClearAll(l *libloop.Loop) error {
	mu.Lock()
	handles := make([]libreg.Handle, 0, len(installed))
	for _, h := range installed {
		handles = append(handles, h)
	}
	mu.Unlock()

	var result *multierror.Error
	for _, h := range handles {
		if rec, ok := l.Registry().Lookup(h); !ok || rec.Kind != libreg.KindSignal {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					result = multierror.Append(result, errFromRecover(r))
				}
			}()
			Free(l, h)
		}()
	}

	return result.ErrorOrNil()
}

func errFromRecover(r any) error {
	if e, ok := r.(error); ok {
		return e
	}
	return &recoveredPanic{r}
}

type recoveredPanic struct{ v any }

func (p *recoveredPanic) Error() string {
	return "recovered panic during signal teardown"
}

type sigState struct {
	signo  syscall.Signal
	handle libreg.Handle
	cancel func()
}

// forget drops this handler's entry from installed, if it is still the
// one on file for signo. Shared by Free and Close (the latter runs when
// loop.shutdown's PurgeAll closes every remaining record on a forced
// Exit, bypassing Free entirely) so a signo is never left stuck on
// ErrSignalExists after its owning loop has gone away.
func (s *sigState) forget() {
	mu.Lock()
	defer mu.Unlock()

	if installed[s.signo] == s.handle {
		delete(installed, s.signo)
	}
}

func (s *sigState) Close() error {
	s.cancel()
	s.forget()
	return nil
}
