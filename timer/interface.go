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

// Package timer schedules a one-shot callback on the loop's dispatch
// goroutine after a delay.
package timer

import (
	"time"

	libloop "github.com/nabbar/asyncio/loop"
	libreg "github.com/nabbar/asyncio/registry"
)

// DelayOptions configures a single Delay call.
type DelayOptions struct {
	// Repeat, when true, re-arms the timer for the same Duration after
	// each firing instead of destroying its registry record.
	Repeat bool
}

// Delay arms fn to run on l's dispatch goroutine after d elapses, and
// returns the registry.Handle identifying it. Free destroys the timer
// before it fires (a no-op if it already fired and Repeat is false).
func Delay(l *libloop.Loop, d time.Duration, fn func(), opts DelayOptions) libreg.Handle {
	h := l.Registry().Allocate(libreg.KindTimer)

	var cancel func()
	var arm func()

	arm = func() {
		cancel = l.Reactor().ArmTimer(uint64(h), d)
	}

	l.Registry().Attach(h, libreg.Record{
		Kind: libreg.KindTimer,
		Bundle: libreg.Bundle{
			GenericCB: func() {
				fn()
				if opts.Repeat {
					arm()
				} else {
					_, _ = l.Registry().Destroy(h)
				}
			},
		},
		State: &timerState{cancel: func() {
			if cancel != nil {
				cancel()
			}
		}},
	})

	arm()

	return h
}

// Free cancels the timer identified by h before it fires. Safe to call
// after the timer already fired or was already freed.
func Free(l *libloop.Loop, h libreg.Handle) {
	rec, ok := l.Registry().Destroy(h)
	if !ok {
		return
	}
	if st, ok := rec.State.(*timerState); ok {
		st.cancel()
	}
}

type timerState struct {
	cancel func()
}

func (s *timerState) Close() error {
	s.cancel()
	return nil
}
