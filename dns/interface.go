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

// Package dns resolves a hostname to its IPv4 addresses on the dispatch
// goroutine's behalf, without ever blocking it.
//
// IPv6 is out of scope: addresses the resolver returns are filtered down
// to their To4 form, and a bare IPv4 literal is resolved synchronously
// without touching the reactor at all.
package dns

import (
	"context"
	"net"

	libcond "github.com/nabbar/asyncio/condition"
	libloop "github.com/nabbar/asyncio/loop"
	libreact "github.com/nabbar/asyncio/reactor"
	libreg "github.com/nabbar/asyncio/registry"
)

// ResolveCB receives the resolved IPv4 addresses on success.
type ResolveCB func(addrs []net.IP)

// EventCB receives a dns-error condition on failure.
type EventCB func(cond libcond.Condition)

// Lookup resolves host and returns the registry.Handle identifying the
// in-flight request. If host is already an IPv4 literal, resolveCB runs
// synchronously before Lookup returns and the returned Handle is already
// destroyed.
func Lookup(l *libloop.Loop, host string, resolveCB ResolveCB, eventCB EventCB) libreg.Handle {
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			h := l.Registry().Allocate(libreg.KindDNS)
			resolveCB([]net.IP{v4})
			_, _ = l.Registry().Destroy(h)
			return h
		}
	}

	h := l.Registry().Allocate(libreg.KindDNS)

	l.Registry().Attach(h, libreg.Record{
		Kind: libreg.KindDNS,
		Bundle: libreg.Bundle{
			EventCB: func(raw any) {
				ev := raw.(libreact.Event)
				_, _ = l.Registry().Destroy(h)

				if ev.Err != nil {
					eventCB(libcond.Wrap(libcond.KindDNSError, ev.Err))
					return
				}

				addrs, _ := ev.Payload.([]net.IP)
				if len(addrs) == 0 {
					eventCB(libcond.NewError(libcond.KindDNSError, "no A record for "+host))
					return
				}

				resolveCB(addrs)
			},
		},
	})

	l.Reactor().Resolve(context.Background(), uint64(h), host)

	return h
}
