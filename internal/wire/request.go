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

// Package wire implements the textual request/reply frame grammar the
// daemon and the NSS client speak over the Unix datagram socket. Frames are
// UTF-8 text bounded by MaxFrameSize; see codec.go for the continuation
// ("divided frame") mechanism used when a reply does not fit in one
// datagram.
package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nabbar/sectora/internal/kind"
)

// MaxFrameSize is the implementation's datagram size budget (spec.md §4.B).
const MaxFrameSize = 4096

// EntryOp names one of the three enumeration lifecycle operations.
type EntryOp int

const (
	EntrySet EntryOp = iota
	EntryGet
	EntryEnd
)

func (o EntryOp) String() string {
	switch o {
	case EntrySet:
		return "set"
	case EntryGet:
		return "get"
	case EntryEnd:
		return "end"
	default:
		return "?"
	}
}

func parseEntryOp(s string) (EntryOp, bool) {
	switch s {
	case "set":
		return EntrySet, true
	case "get":
		return EntryGet, true
	case "end":
		return EntryEnd, true
	default:
		return 0, false
	}
}

// EntryKey identifies a caller's enumeration cursor: the lifecycle operation
// and the calling process id that owns the cursor.
type EntryKey struct {
	Op  EntryOp
	PID int
}

func (k EntryKey) String() string {
	return fmt.Sprintf("%s|%d", k.Op, k.PID)
}

func parseEntryKey(s string) (EntryKey, error) {
	parts := strings.SplitN(s, "|", 2)
	if len(parts) != 2 {
		return EntryKey{}, kind.New(kind.Decode, "malformed entry key: "+s)
	}
	op, ok := parseEntryOp(parts[0])
	if !ok {
		return EntryKey{}, kind.New(kind.Decode, "unknown entry op: "+parts[0])
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return EntryKey{}, kind.Wrap(kind.Decode, "malformed entry pid", err)
	}
	return EntryKey{Op: op, PID: pid}, nil
}

// Request is the closed sum type of every client->daemon message.
type Request interface {
	isRequest()
}

type KeyRequest struct{ Login string }
type PamRequest struct{ Login string }
type CleanupRequest struct{}
type RateLimitRequest struct{}
type SectorsRequest struct{}
type ContinuationRequest struct{}

// PwRequest carries exactly one of ByUID, ByName or Entry, matching the
// three pw request shapes in spec.md's grammar table.
type PwRequest struct {
	ByUID  *uint64
	ByName *string
	Entry  *EntryKey
}

type SpRequest struct {
	ByName *string
	Entry  *EntryKey
}

type GrRequest struct {
	ByGID  *uint64
	ByName *string
	Entry  *EntryKey
}

func (KeyRequest) isRequest()          {}
func (PamRequest) isRequest()          {}
func (CleanupRequest) isRequest()      {}
func (RateLimitRequest) isRequest()    {}
func (SectorsRequest) isRequest()      {}
func (ContinuationRequest) isRequest() {}
func (PwRequest) isRequest()           {}
func (SpRequest) isRequest()           {}
func (GrRequest) isRequest()           {}

// EncodeRequest renders r per the grammar table in spec.md §4.B.
func EncodeRequest(r Request) (string, error) {
	switch v := r.(type) {
	case KeyRequest:
		return "c:key:" + v.Login, nil
	case PamRequest:
		return "c:pam:" + v.Login, nil
	case CleanupRequest:
		return "c:cleanup", nil
	case RateLimitRequest:
		return "c:ratelimit", nil
	case SectorsRequest:
		return "c:sectors", nil
	case ContinuationRequest:
		return "c:cont", nil
	case PwRequest:
		return "c:pw:" + encodeKeyedSelector("uid", v.ByUID, v.ByName, v.Entry), nil
	case SpRequest:
		return "c:sp:" + encodeKeyedSelector("", nil, v.ByName, v.Entry), nil
	case GrRequest:
		return "c:gr:" + encodeKeyedSelector("gid", v.ByGID, v.ByName, v.Entry), nil
	default:
		return "", kind.New(kind.Decode, "unknown request type")
	}
}

func encodeKeyedSelector(numLabel string, byNum *uint64, byName *string, entry *EntryKey) string {
	switch {
	case byNum != nil:
		return fmt.Sprintf("%s=%d", numLabel, *byNum)
	case byName != nil:
		return "name=" + *byName
	case entry != nil:
		return "ent=" + entry.String()
	default:
		return ""
	}
}

// ParseRequest parses the payload of a "c:" frame (the part after "c:").
func ParseRequest(payload string) (Request, error) {
	if payload == "cont" {
		return ContinuationRequest{}, nil
	}
	if payload == "cleanup" {
		return CleanupRequest{}, nil
	}
	if payload == "ratelimit" {
		return RateLimitRequest{}, nil
	}
	if payload == "sectors" {
		return SectorsRequest{}, nil
	}

	kindStr, rest, ok := strings.Cut(payload, ":")
	if !ok {
		return nil, kind.New(kind.Decode, "malformed request: "+payload)
	}

	switch kindStr {
	case "key":
		return KeyRequest{Login: rest}, nil
	case "pam":
		return PamRequest{Login: rest}, nil
	case "pw":
		uid, name, entry, err := parseSelector(rest, "uid")
		if err != nil {
			return nil, err
		}
		return PwRequest{ByUID: uid, ByName: name, Entry: entry}, nil
	case "sp":
		_, name, entry, err := parseSelector(rest, "")
		if err != nil {
			return nil, err
		}
		return SpRequest{ByName: name, Entry: entry}, nil
	case "gr":
		gid, name, entry, err := parseSelector(rest, "gid")
		if err != nil {
			return nil, err
		}
		return GrRequest{ByGID: gid, ByName: name, Entry: entry}, nil
	default:
		return nil, kind.New(kind.Decode, "unknown request kind: "+kindStr)
	}
}

func parseSelector(s, numField string) (*uint64, *string, *EntryKey, error) {
	field, val, ok := strings.Cut(s, "=")
	if !ok {
		return nil, nil, nil, kind.New(kind.Decode, "malformed selector: "+s)
	}

	switch field {
	case numField:
		n, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return nil, nil, nil, kind.Wrap(kind.Decode, "malformed numeric key", err)
		}
		return &n, nil, nil, nil
	case "name":
		return nil, &val, nil, nil
	case "ent":
		ek, err := parseEntryKey(val)
		if err != nil {
			return nil, nil, nil, err
		}
		return nil, nil, &ek, nil
	default:
		return nil, nil, nil, kind.New(kind.Decode, "unknown selector field: "+field)
	}
}
