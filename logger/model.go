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

package logger

import (
	"github.com/sirupsen/logrus"
)

type log struct {
	entry *logrus.Entry
}

func (l *log) WithFields(f Fields) Logger {
	return &log{entry: l.entry.WithFields(f.logrus())}
}

func (l *log) Trace(msg string) { l.entry.Trace(msg) }
func (l *log) Debug(msg string) { l.entry.Debug(msg) }
func (l *log) Info(msg string)  { l.entry.Info(msg) }
func (l *log) Warn(msg string)  { l.entry.Warn(msg) }
func (l *log) Error(msg string) { l.entry.Error(msg) }
// Fatal logs at error level rather than calling logrus' Fatal, which would
// os.Exit the whole process out from under the dispatch goroutine.
func (l *log) Fatal(msg string) { l.entry.Error(msg) }

func (l *log) SetLevel(lvl Level) {
	l.entry.Logger.SetLevel(lvl.logrus())
}
