/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package metrics

import (
	libreg "github.com/nabbar/asyncio/registry"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes registry.Stats snapshots as Prometheus gauges.
type Collector interface {
	// Observe sets every gauge from s. Safe to call repeatedly, e.g. on
	// a ticker or from an HTTP /metrics scrape handler just before
	// serving.
	Observe(s libreg.Stats)

	// Describe and Collect satisfy prometheus.Collector so the whole
	// thing can be passed to a Registerer as a single unit.
	prometheus.Collector
}

// New returns a Collector with the given metric name prefix, e.g.
// "asyncio" yields gauges named asyncio_handles_timers,
// asyncio_handles_total, and so on. namespace may be empty.
func New(namespace string) Collector {
	return newCollector(namespace)
}
