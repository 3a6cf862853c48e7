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

// Package logger is a small, logrus-backed structured logger shared by the
// loop, socket, dns, httpserver and httpclient packages. It is deliberately
// narrower than a general-purpose logging facade: one Logger per Loop,
// fields attached per call, no hook/writer plumbing beyond what logrus
// itself already provides.
package logger

import (
	"github.com/sirupsen/logrus"
)

// Level mirrors logrus' level set so callers of this package never need to
// import logrus directly.
type Level uint32

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

func (l Level) logrus() logrus.Level {
	return logrus.Level(l)
}

// Fields is a set of structured key/value pairs attached to a single log
// entry.
type Fields map[string]any

func (f Fields) logrus() logrus.Fields {
	out := make(logrus.Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// FuncLog is the pattern every component package accepts to obtain a
// Logger scoped to one operation (e.g. one socket, one HTTP request)
// without forcing a package-wide logger field on every call site.
type FuncLog func() Logger

// Logger is the leveled, structured logging surface used throughout this
// module.
type Logger interface {
	// WithFields returns a Logger that attaches f to every subsequent
	// entry, in addition to this Logger's own fields.
	WithFields(f Fields) Logger

	Trace(msg string)
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)

	// SetLevel changes the minimum level entries are emitted at.
	SetLevel(l Level)
}

// New returns a Logger backed by a fresh logrus.Logger at InfoLevel,
// writing to the given entry's default output (stderr).
func New() Logger {
	l := logrus.New()
	l.SetLevel(InfoLevel.logrus())
	return &log{entry: logrus.NewEntry(l)}
}

// Discard returns a Logger that drops every entry, used as the default
// when no Logger is configured on loop.Options.
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return &log{entry: logrus.NewEntry(l)}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
