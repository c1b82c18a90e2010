// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package journal

import "time"

// Option configures the bolt journal
type Option interface {
	// Apply sets the Option value of a config.
	Apply(*boltConfig)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*boltConfig)

// Apply applies the options to the config
func (f OptionFunc) Apply(c *boltConfig) {
	f(c)
}

// WithOpenRetries sets the number of attempts made to open the database
func WithOpenRetries(retries int) Option {
	return OptionFunc(func(c *boltConfig) {
		if retries > 0 {
			c.openRetries = retries
		}
	})
}

// WithOpenTimeout sets how long a single open attempt waits for the file lock
func WithOpenTimeout(timeout time.Duration) Option {
	return OptionFunc(func(c *boltConfig) {
		if timeout > 0 {
			c.openTimeout = timeout
		}
	})
}

// WithNoGrowSync skips the fsync when the database file grows
func WithNoGrowSync() Option {
	return OptionFunc(func(c *boltConfig) {
		c.noGrowSync = true
	})
}
