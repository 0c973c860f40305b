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

// Package buildinfo carries the version metadata stamped into the binary at
// link time via -ldflags, in the shape sectorctl version and the remote
// client's User-Agent header both need.
package buildinfo

import (
	"fmt"
	"runtime"
)

// These are overwritten at link time, e.g.:
//
//	go build -ldflags "-X github.com/nabbar/sectora/internal/buildinfo.Version=1.4.0 \
//	  -X github.com/nabbar/sectora/internal/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/nabbar/sectora/internal/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Short renders the compact form used in the User-Agent header.
func Short() string {
	return fmt.Sprintf("sectora/%s", Version)
}

// String renders the full multi-line form printed by "sectorctl version".
func String() string {
	return fmt.Sprintf(
		"sectora %s\n  commit:  %s\n  built:   %s\n  go:      %s\n  os/arch: %s/%s",
		Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH,
	)
}
