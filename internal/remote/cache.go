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
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"
)

// fileCache is a flat directory of files keyed by a hash of the fetched URL,
// with freshness determined by file modification time. It survives daemon
// restarts by design (spec.md §3's Cache entry is a filesystem artifact, not
// an in-process value), unlike a generic in-memory TTL cache.
type fileCache struct {
	dir      string
	duration time.Duration
}

func newFileCache(dir string, durationSeconds int64) *fileCache {
	return &fileCache{dir: dir, duration: time.Duration(durationSeconds) * time.Second}
}

func (c *fileCache) pathFor(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:]))
}

// read returns the cached bytes for url, whether the entry is fresh, and
// whether it exists at all.
func (c *fileCache) read(url string) (data []byte, fresh bool, exists bool) {
	p := c.pathFor(url)
	info, err := os.Stat(p)
	if err != nil {
		return nil, false, false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false, false
	}
	fresh = time.Since(info.ModTime()) <= c.duration
	return b, fresh, true
}

// write stores data under url's cache path, creating the cache directory if
// necessary.
func (c *fileCache) write(url string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.pathFor(url), data, 0o644)
}

// clean removes every regular file directly under the cache directory, per
// spec.md §4.D.5's non-recursive glob.
func (c *fileCache) clean() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
