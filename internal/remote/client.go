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

// Package remote wraps github.com/google/go-github/v33 with the cache-first,
// stale-on-failure fetch policy spec.md §4.D requires, and adapts GitHub's
// team/repo/user shapes onto internal/domain's Fetcher contract.
package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"

	"github.com/google/go-github/v33/github"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"

	"github.com/nabbar/sectora/internal/buildinfo"
	"github.com/nabbar/sectora/internal/domain"
	"github.com/nabbar/sectora/internal/kind"
)

// Client is the remote-service collaborator the daemon holds: a go-github
// client authenticated with the configured token, backed by an on-disk
// cache keyed by request URL.
type Client struct {
	gh    *github.Client
	cache *fileCache
}

// New builds a Client from cfg. The trust-store path, if set, is exported to
// SSL_CERT_FILE for the TLS layer when that variable is not already present
// in the environment — the remote client is the described owner of that
// side effect (spec.md §4.H).
func New(cfg *domain.Config) (*Client, error) {
	if cfg.TrustStorePath != "" {
		if _, ok := os.LookupEnv("SSL_CERT_FILE"); !ok {
			_ = os.Setenv("SSL_CERT_FILE", cfg.TrustStorePath)
		}
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	oauthClient := oauth2.NewClient(context.Background(), ts)

	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, kind.Wrap(kind.ConfigInvalid, "invalid proxy url", err)
		}
		oauthClient.Transport.(*oauth2.Transport).Base = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = oauthClient
	rc.Logger = nil
	httpClient := rc.StandardClient()

	var gh *github.Client
	if cfg.BaseURL != "" {
		var err error
		gh, err = github.NewEnterpriseClient(cfg.BaseURL, cfg.BaseURL, httpClient)
		if err != nil {
			return nil, kind.Wrap(kind.ConfigInvalid, "invalid base url", err)
		}
	} else {
		gh = github.NewClient(httpClient)
	}
	gh.UserAgent = buildinfo.Short()

	return &Client{gh: gh, cache: newFileCache(cfg.CacheDir, cfg.CacheDuration)}, nil
}

// fetchCached implements spec.md §4.D.2-4's cache policy: fresh cache short-
// circuits the network entirely; a failed fetch falls back to stale cache
// content if any exists; only an empty cache plus a failed fetch surfaces an
// error.
func (c *Client) fetchCached(cacheKey string, fetch func() ([]byte, error)) ([]byte, error) {
	if data, fresh, exists := c.cache.read(cacheKey); exists && fresh {
		return data, nil
	}

	data, err := fetch()
	if err == nil {
		// A failed cache write does not discard the freshly fetched data.
		_ = c.cache.write(cacheKey, data)
		return data, nil
	}

	if stale, _, exists := c.cache.read(cacheKey); exists {
		return stale, nil
	}
	return nil, kind.Wrap(kind.Transport, "fetch failed and no cache available: "+cacheKey, err)
}

// paginateAndCache walks fetchPage from page 1 until a page comes back empty
// or curr reaches github.Response.LastPage, per the teacher's curr/LastPage
// loop shape, then caches and decodes the concatenated result as a JSON
// array of T. A response with LastPage 0 (single-page resource) satisfies
// curr >= LastPage after page 1.
func paginateAndCache[T any](c *Client, cacheKey string, fetchPage func(page int) ([]T, *github.Response, error)) ([]T, error) {
	raw, err := c.fetchCached(cacheKey, func() ([]byte, error) {
		var all []T
		curr := 0
		for {
			curr++
			items, resp, err := fetchPage(curr)
			if err != nil {
				return nil, err
			}
			all = append(all, items...)
			if len(items) == 0 || curr >= resp.LastPage {
				break
			}
		}
		return json.Marshal(all)
	})
	if err != nil {
		return nil, err
	}

	var out []T
	if jsonErr := json.Unmarshal(raw, &out); jsonErr != nil {
		return nil, kind.Wrap(kind.Decode, "cache decode: "+cacheKey, jsonErr)
	}
	return out, nil
}
