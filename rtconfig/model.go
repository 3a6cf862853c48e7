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
	"os"
	"reflect"
	"strings"

	libduration "github.com/nabbar/asyncio/duration"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// stringToDurationHookFunc decodes a duration string ("2s", "500ms", ...)
// into a libduration.Duration. mapstructure's own
// StringToTimeDurationHookFunc only targets time.Duration; libduration.Duration
// is a distinct named type and needs its own hook even though the two share
// an underlying representation.
func stringToDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != reflect.TypeOf(libduration.Duration(0)) {
			return data, nil
		}

		return libduration.Parse(data.(string))
	}
}

type loader struct {
	v    *viper.Viper
	file string
}

func newLoader() *loader {
	return &loader{v: viper.New()}
}

func (l *loader) SetConfigFile(path string) {
	l.file = path
	l.v.SetConfigFile(path)
}

func (l *loader) SetEnvPrefix(prefix string) {
	l.v.SetEnvPrefix(prefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

func (l *loader) Load() (*Config, error) {
	if l.file != "" {
		if err := l.v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				if os.IsNotExist(err) {
					return nil, err
				}
				return nil, err
			}
		}
	}

	var cfg Config

	hook := mapstructure.ComposeDecodeHookFunc(
		stringToDurationHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)

	if err := l.v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, err
	}

	return &cfg, nil
}
