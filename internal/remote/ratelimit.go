/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package remote

import (
	"context"

	"github.com/nabbar/sectora/internal/kind"
)

// RateLimit is the triple reported by the "ratelimit" command, per
// SPEC_FULL.md §3's addition.
type RateLimit struct {
	Limit     int64
	Remaining int64
	Reset     int64
}

// RateLimits fetches the core rate limit directly, never through the cache,
// per spec.md §4.D's "rate-limit queries are not cached".
func (c *Client) RateLimits(ctx context.Context) (RateLimit, error) {
	rl, _, err := c.gh.RateLimits(ctx)
	if err != nil {
		return RateLimit{}, kind.Wrap(kind.Transport, "rate limit fetch failed", err)
	}
	if rl == nil || rl.Core == nil {
		return RateLimit{}, kind.New(kind.Transport, "rate limit response missing core")
	}
	return RateLimit{
		Limit:     int64(rl.Core.Limit),
		Remaining: int64(rl.Core.Remaining),
		Reset:     rl.Core.Reset.Unix(),
	}, nil
}

// CleanCache removes every cached response file, per spec.md §4.D.5.
func (c *Client) CleanCache() error {
	if err := c.cache.clean(); err != nil {
		return kind.Wrap(kind.Transport, "cache cleanup failed", err)
	}
	return nil
}
