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

package rtconfig

import (
	"net/http"
	"time"

	libduration "github.com/nabbar/asyncio/duration"
	libhttpcli "github.com/nabbar/asyncio/httpclient"
	libloop "github.com/nabbar/asyncio/loop"
)

// LoopConfig carries the subset of loop.Options that is meaningful to
// serialize; ErrorCB and Logger are wired by the caller at Options() time
// since functions and interfaces cannot come from a config file.
type LoopConfig struct {
	EventBuffer    int  `mapstructure:"eventBuffer"`
	CatchAppErrors bool `mapstructure:"catchAppErrors"`
}

// Options builds a loop.Options from c, leaving ErrorCB and Logger at
// their zero value for the caller to fill in.
func (c LoopConfig) Options() libloop.Options {
	return libloop.Options{
		EventBuffer:    c.EventBuffer,
		CatchAppErrors: c.CatchAppErrors,
	}
}

// SocketConfig carries the read/write deadlines applied via
// socket.Socket.SetTimeouts. A zero Duration means no deadline.
type SocketConfig struct {
	ReadTimeout  libduration.Duration `mapstructure:"readTimeout"`
	WriteTimeout libduration.Duration `mapstructure:"writeTimeout"`
}

// HTTPServerConfig carries the bind address passed to httpserver.New.
type HTTPServerConfig struct {
	Bind string `mapstructure:"bind"`
}

// HTTPClientConfig carries the defaults applied to every httpclient.Do
// call that does not override them explicitly.
type HTTPClientConfig struct {
	Method  string               `mapstructure:"method"`
	Headers http.Header          `mapstructure:"headers"`
	Timeout libduration.Duration `mapstructure:"timeout"`
}

// Options builds an httpclient.Options from c.
func (c HTTPClientConfig) Options() libhttpcli.Options {
	return libhttpcli.Options{
		Method:  c.Method,
		Headers: c.Headers,
		Timeout: time.Duration(c.Timeout),
	}
}

// Config is the full decoded tree. Every field is optional: a Config
// decoded from an empty source is all zero values, which are themselves
// valid defaults for every component.
type Config struct {
	Loop       LoopConfig       `mapstructure:"loop"`
	Socket     SocketConfig     `mapstructure:"socket"`
	HTTPServer HTTPServerConfig `mapstructure:"httpServer"`
	HTTPClient HTTPClientConfig `mapstructure:"httpClient"`
}

// Loader reads a Config from a file and/or the process environment.
type Loader interface {
	// SetConfigFile points the loader at a specific file; its extension
	// picks the viper decoder (json, yaml, toml, ...).
	SetConfigFile(path string)

	// SetEnvPrefix enables environment-variable overrides under prefix,
	// e.g. prefix "ASYNCIO" lets ASYNCIO_LOOP_EVENTBUFFER override
	// loop.eventBuffer. An environment variable overrides only a key
	// that the config file sets.
	SetEnvPrefix(prefix string)

	// Load reads the configured file, if any, and returns the decoded
	// Config. Missing file is not an error when no file was set.
	Load() (*Config, error)
}

// New returns a Loader with no file configured; Load then returns a
// zero-value Config.
func New() Loader {
	return newLoader()
}
