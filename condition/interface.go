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

// Package condition defines the values delivered to event callbacks by the
// socket, dns, and httpclient/httpserver packages.
//
// A Condition is either an Info (progress, no error) or a ConnError (the
// connection or request is being torn down). Both are built on top of the
// errors package so that a ConnError can still be matched with errors.Is
// and carries a file/line trace, but callers of the loop only ever see the
// small Condition surface documented here, never a raw liberr.Error.
package condition

import (
	liberr "github.com/nabbar/asyncio/errors"
)

// Kind enumerates the concrete conditions a callback can observe.
type Kind uint8

const (
	KindTCPInfo Kind = iota + 1
	KindHTTPInfo
	KindDNSError
	KindTCPError
	KindTCPEOF
	KindTCPTimeout
	KindTCPRefused
	KindHTTPError
	KindHTTPTimeout
	KindHTTPRefused
)

// String gives the wire-visible, lowercase-hyphenated name used in log
// fields and tests, matching the taxonomy's own naming.
func (k Kind) String() string {
	switch k {
	case KindTCPInfo:
		return "tcp-info"
	case KindHTTPInfo:
		return "http-info"
	case KindDNSError:
		return "dns-error"
	case KindTCPError:
		return "tcp-error"
	case KindTCPEOF:
		return "tcp-eof"
	case KindTCPTimeout:
		return "tcp-timeout"
	case KindTCPRefused:
		return "tcp-refused"
	case KindHTTPError:
		return "http-error"
	case KindHTTPTimeout:
		return "http-timeout"
	case KindHTTPRefused:
		return "http-refused"
	default:
		return "unknown-condition"
	}
}

// IsError reports whether the condition is one of the *-error kinds rather
// than a progress Info. A well-behaved event-cb normally returns/disables
// on any condition for which this is true.
func (k Kind) IsError() bool {
	switch k {
	case KindTCPInfo, KindHTTPInfo:
		return false
	default:
		return true
	}
}

// Condition is delivered to every event-cb registered through socket, dns,
// httpclient and httpserver. Read-only: callbacks observe it, they never
// construct one directly outside this package.
type Condition interface {
	// Kind returns the concrete condition raised.
	Kind() Kind
	// Error returns the underlying liberr.Error carrying the code,
	// message and trace, or nil for a pure Info condition.
	Error() liberr.Error
	// String renders "kind: message" for logging.
	String() string
}

type cond struct {
	k Kind
	e liberr.Error
}

func (c *cond) Kind() Kind        { return c.k }
func (c *cond) Error() liberr.Error { return c.e }

func (c *cond) String() string {
	if c.e == nil {
		return c.k.String()
	}
	return c.k.String() + ": " + c.e.Error()
}

// Info builds a non-error progress condition (tcp-info, http-info).
func Info(k Kind) Condition {
	return &cond{k: k}
}

// NewError builds an error condition wrapping msg as a liberr.Error at the
// code reserved for k's owning package, with parent chained if given.
func NewError(k Kind, msg string, parent ...error) Condition {
	return &cond{k: k, e: liberr.New(codeOf(k), msg, parent...)}
}

// Wrap promotes an arbitrary error (e.g. a net.Error from the reactor) into
// a ConnError of kind k, classifying common net.OpError/timeout shapes into
// the terminal specializations when k is KindTCPError or KindHTTPError.
func Wrap(k Kind, err error) Condition {
	if err == nil {
		return Info(k)
	}
	return &cond{k: classify(k, err), e: liberr.New(codeOf(k), err.Error(), err)}
}
