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

package wire

import (
	"strings"

	"github.com/nabbar/sectora/internal/kind"
)

// dividedMaxPayload is the largest chunk Split will place in one divided
// frame: MaxFrameSize minus the "0:"/"1:" prefix.
const dividedMaxPayload = MaxFrameSize - 2

// Split breaks an encoded reply body into one or more divided frames, each
// of the form "<1|0>:<chunk>" per spec.md §4.B: "1" marks a chunk with more
// to follow, "0" marks the last chunk. A body that already fits in one
// frame still gets the "0:" prefix, so the receiver never special-cases the
// unsegmented case.
func Split(body string) []string {
	if len(body) <= dividedMaxPayload {
		return []string{"0:" + body}
	}

	var frames []string
	for len(body) > dividedMaxPayload {
		frames = append(frames, "1:"+body[:dividedMaxPayload])
		body = body[dividedMaxPayload:]
	}
	frames = append(frames, "0:"+body)
	return frames
}

// ParseDivided splits one divided frame into its payload chunk and whether
// it is the final chunk (flag "0") rather than one with more to follow
// (flag "1").
func ParseDivided(frame string) (final bool, payload string, err error) {
	flag, rest, ok := strings.Cut(frame, ":")
	if !ok || len(flag) != 1 {
		return false, "", kind.New(kind.Decode, "malformed divided frame: "+frame)
	}
	switch flag {
	case "0":
		return true, rest, nil
	case "1":
		return false, rest, nil
	default:
		return false, "", kind.New(kind.Decode, "malformed divided frame flag: "+flag)
	}
}

// IsContinuationRequest reports whether frame is the client's "c:cont"
// acknowledgment requesting the next chunk of a divided reply.
func IsContinuationRequest(frame string) bool {
	return frame == "c:cont"
}

// Reassembler accumulates the chunks of a divided reply as a client reads
// them off the socket, one ParseDivided call at a time.
type Reassembler struct {
	buf strings.Builder
}

// Add appends payload to the accumulated body. It returns true once final
// has been seen, at which point Body returns the complete reply text.
func (r *Reassembler) Add(final bool, payload string) bool {
	r.buf.WriteString(payload)
	return final
}

// Body returns the bytes accumulated so far.
func (r *Reassembler) Body() string {
	return r.buf.String()
}
