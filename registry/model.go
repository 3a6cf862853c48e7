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

package registry

func (r *reg) Allocate(k Kind) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gen == nil {
		r.gen = make(map[slot]uint16)
	}

	var s slot
	if n := len(r.free); n > 0 {
		// Reuse a destroyed slot under its bumped generation, rather
		// than growing seq forever: this is what makes the Handle's
		// generation half meaningful — a Handle captured before this
		// slot was last destroyed now collides on slot id but not on
		// generation, so Lookup/Destroy reject it instead of silently
		// handing back whatever got allocated into the reused slot.
		s = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.seq++
		s = r.seq
	}

	g := r.gen[s]
	h := newHandle(g, s)
	r.m[h] = Record{Kind: k}

	return h
}

func (r *reg) Attach(h Handle, rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.m[h]; !ok {
		return
	}

	r.m[h] = rec
}

func (r *reg) Lookup(h Handle) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.m[h]
	return rec, ok
}

func (r *reg) Destroy(h Handle) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.m[h]
	if !ok {
		return Record{}, false
	}

	delete(r.m, h)

	s := h.Slot()
	r.gen[s] = h.Generation() + 1
	r.free = append(r.free, s)

	return rec, true
}

func (r *reg) PurgeAll() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, 0, len(r.m))
	for h, rec := range r.m {
		out = append(out, rec)
		delete(r.m, h)
		r.gen[h.Slot()] = h.Generation() + 1
		r.free = append(r.free, h.Slot())
	}

	return out
}

func (r *reg) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s Stats
	for _, rec := range r.m {
		switch rec.Kind {
		case KindTimer:
			s.Timers++
		case KindSignal:
			s.Signals++
		case KindDNS:
			s.DNSLookups++
		case KindSocket:
			s.Sockets++
		case KindSocketServer:
			s.SocketServers++
		case KindHTTPServer:
			s.HTTPServers++
		case KindHTTPRequest:
			s.HTTPRequests++
		case KindHTTPClient:
			s.HTTPClients++
		}
	}

	return s
}
