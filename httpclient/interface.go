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

// Package httpclient performs one HTTP round trip per Do call, always
// closing the underlying connection afterward: no keep-alive pooling, no
// automatic reconnection, no TLS.
package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"time"

	libcond "github.com/nabbar/asyncio/condition"
	libloop "github.com/nabbar/asyncio/loop"
	libreact "github.com/nabbar/asyncio/reactor"
	libreg "github.com/nabbar/asyncio/registry"
)

// Options configures a single Do call. A zero Options is usable: no
// timeout, GET method.
type Options struct {
	Method  string
	Headers http.Header
	Body    []byte
	Timeout time.Duration
}

// Response is handed to RequestCB on success.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// RequestCB receives the Response on a successful round trip.
type RequestCB func(resp *Response)

// EventCB receives an http-error condition (including its terminal
// specializations) on failure.
type EventCB func(cond libcond.Condition)

// Do performs one HTTP request to uri and returns the registry.Handle
// identifying it. The underlying transport always disables keep-alives
// and sends an explicit Connection: close header, per this package's
// no-persistent-connections rule.
func Do(l *libloop.Loop, uri string, requestCB RequestCB, eventCB EventCB, opts Options) (libreg.Handle, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequest(method, uri, body)
	if err != nil {
		return 0, err
	}

	for k, vs := range opts.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Connection", "close")

	client := &http.Client{
		Transport: &http.Transport{DisableKeepAlives: true},
		Timeout:   opts.Timeout,
	}

	h := l.Registry().Allocate(libreg.KindHTTPClient)

	l.Registry().Attach(h, libreg.Record{
		Kind: libreg.KindHTTPClient,
		Bundle: libreg.Bundle{
			EventCB: func(raw any) {
				_, _ = l.Registry().Destroy(h)

				ev := raw.(libreact.Event)
				if ev.Err != nil {
					eventCB(libcond.Wrap(libcond.KindHTTPError, ev.Err))
					return
				}

				resp := ev.Payload.(*http.Response)
				defer resp.Body.Close()

				data, _ := io.ReadAll(resp.Body)
				requestCB(&Response{
					Status:  resp.StatusCode,
					Headers: resp.Header,
					Body:    data,
				})
			},
		},
	})

	l.Reactor().DoHTTP(uint64(h), client, req)

	return h, nil
}
