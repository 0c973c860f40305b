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

package nssclient

import (
	"golang.org/x/sys/unix"

	"github.com/nabbar/sectora/internal/kind"
)

// Status is the name-service-switch return-value convention spec.md §7
// documents: 1 success, 0 not-found, -1 unavailable, -2 try-again.
type Status int

const (
	StatusSuccess     Status = 1
	StatusNotFound    Status = 0
	StatusUnavailable Status = -1
	StatusTryAgain    Status = -2
)

// Errno maps one of this package's error Codes onto the errno value the
// NSS entry point must write into its *int output parameter, per spec.md
// §4.F's mapping table.
func Errno(code kind.Code) unix.Errno {
	switch code {
	case kind.NotFound:
		return unix.ENOENT
	case kind.OutOfSpace:
		return unix.ERANGE
	default:
		return unix.EAGAIN
	}
}

// StatusForError turns an error returned by Client.Call into the NSS status
// code and the errno that accompanies it. A nil error is StatusSuccess with
// errno 0. An error that is not a *kind.Error (should not happen given how
// Call constructs its errors) is treated as try-again. The errno half of the
// mapping is delegated to Errno so the table lives in one place.
func StatusForError(err error) (Status, unix.Errno) {
	if err == nil {
		return StatusSuccess, 0
	}
	e, ok := err.(*kind.Error)
	if !ok {
		return StatusTryAgain, unix.EAGAIN
	}
	status := StatusTryAgain
	if e.Code() == kind.NotFound {
		status = StatusNotFound
	}
	return status, Errno(e.Code())
}
