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

package loop

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// goroutineSingleton approximates "one Loop per OS thread" the only way
// reachable from plain Go: Go exposes no stable OS thread id, but after
// runtime.LockOSThread the calling goroutine is pinned to a dedicated OS
// thread for as long as it holds the lock, so keying the claim by the
// calling goroutine's id is equivalent in practice and catches the real
// failure mode this guards against: re-entrant Start calls from the same
// goroutine.
type goroutineSingleton struct {
	mu     sync.Mutex
	active map[uint64]struct{}
}

var singleton = &goroutineSingleton{active: make(map[uint64]struct{})}

func (s *goroutineSingleton) claim() bool {
	id := goroutineID()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[id]; ok {
		return false
	}
	s.active[id] = struct{}{}
	return true
}

func (s *goroutineSingleton) release() {
	id := goroutineID()

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.active, id)
}

// goroutineID parses the numeric id out of "goroutine N [running]:", the
// first line of runtime.Stack's output for the calling goroutine. This is
// the well-known, if unofficial, way to get a stable per-goroutine
// identity from pure Go.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}

	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}
