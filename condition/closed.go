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
	liberr "github.com/nabbar/asyncio/errors"
)

const (
	codeSocketClosed  liberr.CodeError = liberr.MinPkgSocket + 10
	codeWriteDisabled liberr.CodeError = liberr.MinPkgSocket + 11
)

// ErrSocketClosed is the one condition that is never delivered through an
// event-cb. Any operation attempted on a handle already past Close (Send,
// WriteData, SetTimeouts, Enable/Disable) raises it synchronously to the
// caller instead, since by the time it would be observed the registry
// record backing the callback no longer exists.
var ErrSocketClosed = liberr.New(codeSocketClosed, "socket already closed")

// ErrWriteDisabled is returned by Send/SendWithOptions/WriteData when the
// socket's write direction has been paused by Disable(DirWrite) (or
// DirBoth) and not yet resumed by a matching Enable call.
var ErrWriteDisabled = liberr.New(codeWriteDisabled, "socket write direction disabled")

// IsSocketClosed reports whether err is, or wraps, ErrSocketClosed.
func IsSocketClosed(err error) bool {
	return liberr.Is(err) && liberr.Has(err, codeSocketClosed)
}
