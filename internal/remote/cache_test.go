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
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCacheReadMissing(t *testing.T) {
	c := newFileCache(t.TempDir(), 3600)
	_, fresh, exists := c.read("https://example.test/a")
	if exists || fresh {
		t.Fatalf("expected missing entry to report exists=false fresh=false")
	}
}

func TestFileCacheFreshWithinDuration(t *testing.T) {
	c := newFileCache(t.TempDir(), 3600)
	if err := c.write("https://example.test/a", []byte(`[1,2,3]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, fresh, exists := c.read("https://example.test/a")
	if !exists || !fresh {
		t.Fatalf("expected fresh existing entry, got exists=%v fresh=%v", exists, fresh)
	}
	if string(data) != `[1,2,3]` {
		t.Fatalf("unexpected cache contents: %s", data)
	}
}

func TestFileCacheStaleBeyondDuration(t *testing.T) {
	c := newFileCache(t.TempDir(), 1)
	if err := c.write("https://example.test/a", []byte(`[1]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(c.pathFor("https://example.test/a"), old, old); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, fresh, exists := c.read("https://example.test/a")
	if !exists || fresh {
		t.Fatalf("expected stale existing entry, got exists=%v fresh=%v", exists, fresh)
	}
	if string(data) != `[1]` {
		t.Fatalf("expected stale contents still readable, got %s", data)
	}
}

func TestFileCacheCleanRemovesOnlyFiles(t *testing.T) {
	dir := t.TempDir()
	c := newFileCache(dir, 3600)
	if err := c.write("https://example.test/a", []byte(`[]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := c.clean(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		t.Fatalf("expected only the subdirectory to remain, got %v", entries)
	}
}

func TestFileCacheCleanOnMissingDirIsNotAnError(t *testing.T) {
	c := newFileCache(filepath.Join(t.TempDir(), "does-not-exist"), 3600)
	if err := c.clean(); err != nil {
		t.Fatalf("expected no error for missing cache dir, got %v", err)
	}
}
