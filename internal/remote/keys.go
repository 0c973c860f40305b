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
	"fmt"

	"github.com/google/go-github/v33/github"
)

// ListKeys fetches the public keys registered to a GitHub user via
// client.Users.ListKeys, cache-first per spec.md §4.D.
func (c *Client) ListKeys(ctx context.Context, user string) ([]string, error) {
	items, err := paginateAndCache(c, fmt.Sprintf("/users/%s/keys", user), func(page int) ([]*github.Key, *github.Response, error) {
		return c.gh.Users.ListKeys(ctx, user, &github.ListOptions{Page: page, PerPage: pageSize})
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(items))
	for _, k := range items {
		if k == nil || k.Key == nil {
			continue
		}
		out = append(out, *k.Key)
	}
	return out, nil
}
