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

package rtconfig_test

import (
	"os"
	"path/filepath"
	"time"

	libduration "github.com/nabbar/asyncio/duration"
	librtc "github.com/nabbar/asyncio/rtconfig"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("rtconfig", func() {
	It("decodes a yaml file into Config, including durations", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "asyncio.yaml")

		content := `
loop:
  eventBuffer: 64
  catchAppErrors: true
socket:
  readTimeout: 2s
  writeTimeout: 500ms
httpServer:
  bind: 127.0.0.1:8080
httpClient:
  method: POST
  timeout: 3s
`
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())

		l := librtc.New()
		l.SetConfigFile(path)

		cfg, err := l.Load()
		Expect(err).ToNot(HaveOccurred())

		Expect(cfg.Loop.EventBuffer).To(Equal(64))
		Expect(cfg.Loop.CatchAppErrors).To(BeTrue())
		Expect(cfg.Socket.ReadTimeout).To(Equal(libduration.ParseDuration(2 * time.Second)))
		Expect(cfg.Socket.WriteTimeout).To(Equal(libduration.ParseDuration(500 * time.Millisecond)))
		Expect(cfg.HTTPServer.Bind).To(Equal("127.0.0.1:8080"))
		Expect(cfg.HTTPClient.Method).To(Equal("POST"))
		Expect(cfg.HTTPClient.Timeout).To(Equal(libduration.ParseDuration(3 * time.Second)))

		opt := cfg.Loop.Options()
		Expect(opt.EventBuffer).To(Equal(64))
		Expect(opt.CatchAppErrors).To(BeTrue())

		hopt := cfg.HTTPClient.Options()
		Expect(hopt.Method).To(Equal("POST"))
		Expect(hopt.Timeout).To(Equal(3 * time.Second))
	})

	It("returns a usable zero Config when no file is set", func() {
		l := librtc.New()

		cfg, err := l.Load()
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Loop.EventBuffer).To(Equal(0))
	})
})
