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

package timer_test

import (
	"sync/atomic"
	"time"

	libloop "github.com/nabbar/asyncio/loop"
	libreg "github.com/nabbar/asyncio/registry"
	libtimer "github.com/nabbar/asyncio/timer"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("timer", func() {
	It("fires once after the delay elapses", func() {
		var fired atomic.Int32

		go func() {
			_ = libloop.Start(func(l *libloop.Loop) {
				libtimer.Delay(l, 10*time.Millisecond, func() {
					fired.Add(1)
					l.Exit()
				}, libtimer.DelayOptions{})
			}, libloop.Options{})
		}()

		Eventually(func() int32 { return fired.Load() }, time.Second).Should(Equal(int32(1)))
	})

	It("re-arms itself when Repeat is set, until freed", func() {
		var fired atomic.Int32
		doneCh := make(chan struct{})

		go func() {
			_ = libloop.Start(func(l *libloop.Loop) {
				var h libreg.Handle
				h = libtimer.Delay(l, 5*time.Millisecond, func() {
					if fired.Add(1) == 3 {
						libtimer.Free(l, h)
						close(doneCh)
						l.Exit()
					}
				}, libtimer.DelayOptions{Repeat: true})
			}, libloop.Options{})
		}()

		Eventually(doneCh, time.Second).Should(BeClosed())
		Expect(fired.Load()).To(Equal(int32(3)))
	})
})
