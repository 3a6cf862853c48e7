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

package condition

import (
	"errors"
	"io"
	"net"
	"os"

	liberr "github.com/nabbar/asyncio/errors"
)

const (
	codeDNSError liberr.CodeError = liberr.MinPkgDNS + iota
	codeTCPError
	codeTCPEOF
	codeTCPTimeout
	codeTCPRefused
	codeHTTPError
	codeHTTPTimeout
	codeHTTPRefused
)

func codeOf(k Kind) liberr.CodeError {
	switch k {
	case KindDNSError:
		return codeDNSError
	case KindTCPError:
		return codeTCPError
	case KindTCPEOF:
		return codeTCPEOF
	case KindTCPTimeout:
		return codeTCPTimeout
	case KindTCPRefused:
		return codeTCPRefused
	case KindHTTPError:
		return codeHTTPError
	case KindHTTPTimeout:
		return codeHTTPTimeout
	case KindHTTPRefused:
		return codeHTTPRefused
	default:
		return liberr.UnknownError
	}
}

// classify refines a generic tcp-error/http-error into its terminal
// specialization (eof/timeout/refused) when the underlying error makes the
// distinction obvious. Anything it cannot recognize stays at k unchanged.
func classify(k Kind, err error) Kind {
	if k != KindTCPError && k != KindHTTPError {
		return k
	}

	if errors.Is(err, io.EOF) {
		if k == KindTCPError {
			return KindTCPEOF
		}
		return k
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		if k == KindTCPError {
			return KindTCPTimeout
		}
		return KindHTTPTimeout
	}

	var oe *net.OpError
	if errors.As(err, &oe) {
		if errors.Is(oe.Err, os.ErrDeadlineExceeded) {
			if k == KindTCPError {
				return KindTCPTimeout
			}
			return KindHTTPTimeout
		}
		if isRefused(oe.Err) {
			if k == KindTCPError {
				return KindTCPRefused
			}
			return KindHTTPRefused
		}
	}

	return k
}

func isRefused(err error) bool {
	var se *os.SyscallError
	if errors.As(err, &se) {
		return se.Err.Error() == "connection refused"
	}
	return false
}
