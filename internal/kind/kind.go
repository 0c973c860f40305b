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

// Package kind provides the small numbered-code error taxonomy shared by the
// daemon, NSS client and CLI. It is deliberately not a general-purpose error
// framework: it names exactly the six kinds the protocol and NSS convention
// distinguish and nothing else.
package kind

import (
	"fmt"
	"strings"
)

// Code identifies one of the error kinds a component of this repository can
// raise. The numeric value has no meaning outside this package; it exists so
// callers can switch on a Code instead of string-matching messages.
type Code uint8

const (
	// Unknown is the zero value; never raised deliberately.
	Unknown Code = iota
	// ConfigInvalid marks a parse failure or a missing required config field.
	ConfigInvalid
	// Transport marks an outbound HTTP or socket I/O failure.
	Transport
	// Decode marks a JSON decode or wire-frame parse failure.
	Decode
	// NotFound marks a lookup key absent from every sector-group.
	NotFound
	// OutOfSpace marks an NSS buffer too small to hold a packed record.
	OutOfSpace
	// TryAgain marks any other transient daemon-side failure.
	TryAgain
)

var names = [...]string{
	Unknown:       "unknown",
	ConfigInvalid: "config-invalid",
	Transport:     "transport",
	Decode:        "decode",
	NotFound:      "not-found",
	OutOfSpace:    "out-of-space",
	TryAgain:      "try-again",
}

func (c Code) String() string {
	if int(c) < len(names) {
		return names[c]
	}
	return "unknown"
}

// Error wraps a Code with an optional parent error and a human-readable
// message, the same shape used throughout this repository for anything
// that crosses a component boundary.
type Error struct {
	code   Code
	msg    string
	parent error
}

func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

func Wrap(code Code, msg string, parent error) *Error {
	return &Error{code: code, msg: msg, parent: parent}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.parent != nil {
		return fmt.Sprintf("%s: %s: %s", e.code, e.msg, e.parent.Error())
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.parent
}

func (e *Error) Code() Code {
	if e == nil {
		return Unknown
	}
	return e.code
}

// ClassifyMessage recovers a Code from an error-reply message that crossed
// the wire as plain text (Error's "<code>: <msg>" rendering), for the NSS
// client side of the protocol where the *Error value itself does not
// survive the trip. Returns Unknown if msg does not start with any known
// code name.
func ClassifyMessage(msg string) Code {
	for c, name := range names {
		if name == "" {
			continue
		}
		if strings.HasPrefix(msg, name+":") {
			return Code(c)
		}
	}
	return Unknown
}

// Is reports whether err carries the given Code, unwrapping as needed.
func Is(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.code == code {
				return true
			}
			err = e.parent
			continue
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
