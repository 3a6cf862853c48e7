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
	"sync"

	libreg "github.com/nabbar/asyncio/registry"

	"github.com/prometheus/client_golang/prometheus"
)

type coll struct {
	mu sync.Mutex

	timers  prometheus.Gauge
	signals prometheus.Gauge
	dns     prometheus.Gauge
	sockets prometheus.Gauge
	servers prometheus.Gauge
	httpsrv prometheus.Gauge
	reqs    prometheus.Gauge
	clients prometheus.Gauge
	total   prometheus.Gauge
}

func newCollector(namespace string) *coll {
	g := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "handles",
			Name:      name,
			Help:      help,
		})
	}

	return &coll{
		timers:  g("timers", "Live timer handles."),
		signals: g("signals", "Live signal handler handles."),
		dns:     g("dns_lookups", "In-flight DNS lookup handles."),
		sockets: g("sockets", "Live client socket handles."),
		servers: g("socket_servers", "Live socket listener handles."),
		httpsrv: g("http_servers", "Live HTTP listener handles."),
		reqs:    g("http_requests", "In-flight inbound HTTP request handles."),
		clients: g("http_clients", "In-flight outbound HTTP client handles."),
		total:   g("total", "Sum of every live handle kind."),
	}
}

func (c *coll) Observe(s libreg.Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timers.Set(float64(s.Timers))
	c.signals.Set(float64(s.Signals))
	c.dns.Set(float64(s.DNSLookups))
	c.sockets.Set(float64(s.Sockets))
	c.servers.Set(float64(s.SocketServers))
	c.httpsrv.Set(float64(s.HTTPServers))
	c.reqs.Set(float64(s.HTTPRequests))
	c.clients.Set(float64(s.HTTPClients))
	c.total.Set(float64(s.Total()))
}

func (c *coll) Describe(ch chan<- *prometheus.Desc) {
	for _, g := range c.gauges() {
		g.Describe(ch)
	}
}

func (c *coll) Collect(ch chan<- prometheus.Metric) {
	for _, g := range c.gauges() {
		g.Collect(ch)
	}
}

func (c *coll) gauges() []prometheus.Gauge {
	return []prometheus.Gauge{
		c.timers, c.signals, c.dns, c.sockets, c.servers, c.httpsrv, c.reqs, c.clients, c.total,
	}
}
