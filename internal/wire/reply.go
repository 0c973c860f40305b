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
	"strconv"
	"strings"

	"github.com/nabbar/sectora/internal/kind"
)

// SectorKind distinguishes a team-backed sector from a repo-backed one, per
// spec.md's sector line grammar ("T" or "R" in the third column).
type SectorKind byte

const (
	SectorTeam SectorKind = 'T'
	SectorRepo SectorKind = 'R'
)

// MemberRef is one entry in a sector's member list: the member's numeric id
// as reported by the remote service plus their login.
type MemberRef struct {
	ID    uint64
	Login string
}

// SectorLine is the decoded form of one tab-separated sector line, as
// produced by "c:sectors" and embedded in a GrReply.
type SectorLine struct {
	ID      uint64
	Name    string
	Kind    SectorKind
	GID     *uint64
	Group   *string
	Members []MemberRef
}

// EncodeSectorLine renders l as "<id>:<name>:<kind>\t<gid>\t<group>\t<members>".
// GID and Group fields are empty when the pointer is nil; Members are
// space-separated "<id>:<login>" pairs.
func EncodeSectorLine(l SectorLine) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(l.ID, 10))
	b.WriteByte(':')
	b.WriteString(l.Name)
	b.WriteByte(':')
	b.WriteByte(byte(l.Kind))
	b.WriteByte('\t')
	if l.GID != nil {
		b.WriteString(strconv.FormatUint(*l.GID, 10))
	}
	b.WriteByte('\t')
	if l.Group != nil {
		b.WriteString(*l.Group)
	}
	b.WriteByte('\t')
	for i, m := range l.Members {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatUint(m.ID, 10))
		b.WriteByte(':')
		b.WriteString(m.Login)
	}
	return b.String()
}

// ParseSectorLine parses the format EncodeSectorLine produces.
func ParseSectorLine(s string) (SectorLine, error) {
	cols := strings.Split(s, "\t")
	if len(cols) != 4 {
		return SectorLine{}, kind.New(kind.Decode, "malformed sector line: "+s)
	}

	head := strings.SplitN(cols[0], ":", 3)
	if len(head) != 3 || len(head[2]) != 1 {
		return SectorLine{}, kind.New(kind.Decode, "malformed sector head: "+cols[0])
	}

	id, err := strconv.ParseUint(head[0], 10, 64)
	if err != nil {
		return SectorLine{}, kind.Wrap(kind.Decode, "malformed sector id", err)
	}

	line := SectorLine{ID: id, Name: head[1], Kind: SectorKind(head[2][0])}
	if line.Kind != SectorTeam && line.Kind != SectorRepo {
		return SectorLine{}, kind.New(kind.Decode, "unknown sector kind: "+head[2])
	}

	if cols[1] != "" {
		gid, err := strconv.ParseUint(cols[1], 10, 64)
		if err != nil {
			return SectorLine{}, kind.Wrap(kind.Decode, "malformed sector gid", err)
		}
		line.GID = &gid
	}
	if cols[2] != "" {
		group := cols[2]
		line.Group = &group
	}
	if cols[3] != "" {
		for _, tok := range strings.Split(cols[3], " ") {
			idStr, login, ok := strings.Cut(tok, ":")
			if !ok {
				return SectorLine{}, kind.New(kind.Decode, "malformed sector member: "+tok)
			}
			mid, err := strconv.ParseUint(idStr, 10, 64)
			if err != nil {
				return SectorLine{}, kind.Wrap(kind.Decode, "malformed member id", err)
			}
			line.Members = append(line.Members, MemberRef{ID: mid, Login: login})
		}
	}

	return line, nil
}

// Reply is the closed sum type of every daemon->client message.
type Reply interface {
	isReply()
}

type SuccessReply struct{}
type ErrorReply struct{ Msg string }
type KeyReply struct{ Keys []string }
type PamReply struct{ Allowed bool }
type RateLimitReply struct{ Limit, Remaining, Reset int64 }
type SectorsReply struct{ Sectors []SectorLine }

type PwReply struct {
	Login       string
	UID, GID    uint64
	Home, Shell string
}

type SpReply struct{ Login, Passwd string }
type GrReply struct{ Sector SectorLine }

func (SuccessReply) isReply()   {}
func (ErrorReply) isReply()     {}
func (KeyReply) isReply()       {}
func (PamReply) isReply()       {}
func (RateLimitReply) isReply() {}
func (SectorsReply) isReply()   {}
func (PwReply) isReply()        {}
func (SpReply) isReply()        {}
func (GrReply) isReply()        {}

// EncodeReply renders r per the grammar table in spec.md §4.B. The returned
// string may exceed MaxFrameSize; Split (codec.go) handles segmentation.
func EncodeReply(r Reply) (string, error) {
	switch v := r.(type) {
	case SuccessReply:
		return "d:success", nil
	case ErrorReply:
		return "d:error:" + v.Msg, nil
	case KeyReply:
		return "d:key:" + strings.Join(v.Keys, "\n"), nil
	case PamReply:
		if v.Allowed {
			return "d:pam:true", nil
		}
		return "d:pam:false", nil
	case RateLimitReply:
		return "d:ratelimit:" + strconv.FormatInt(v.Limit, 10) + ":" +
			strconv.FormatInt(v.Remaining, 10) + ":" + strconv.FormatInt(v.Reset, 10), nil
	case SectorsReply:
		lines := make([]string, len(v.Sectors))
		for i, s := range v.Sectors {
			lines[i] = EncodeSectorLine(s)
		}
		return "d:sectors:" + strings.Join(lines, "\n"), nil
	case PwReply:
		return "d:pw:" + v.Login + ":" + strconv.FormatUint(v.UID, 10) + ":" +
			strconv.FormatUint(v.GID, 10) + ":" + v.Home + ":" + v.Shell, nil
	case SpReply:
		return "d:sp:" + v.Login + ":" + v.Passwd, nil
	case GrReply:
		return "d:gr:" + EncodeSectorLine(v.Sector), nil
	default:
		return "", kind.New(kind.Decode, "unknown reply type")
	}
}

// ParseReply parses the payload of a "d:" frame (the part after "d:").
func ParseReply(payload string) (Reply, error) {
	if payload == "success" {
		return SuccessReply{}, nil
	}

	kindStr, rest, ok := strings.Cut(payload, ":")
	if !ok {
		return nil, kind.New(kind.Decode, "malformed reply: "+payload)
	}

	switch kindStr {
	case "error":
		return ErrorReply{Msg: rest}, nil
	case "key":
		if rest == "" {
			return KeyReply{}, nil
		}
		return KeyReply{Keys: strings.Split(rest, "\n")}, nil
	case "pam":
		switch rest {
		case "true":
			return PamReply{Allowed: true}, nil
		case "false":
			return PamReply{Allowed: false}, nil
		default:
			return nil, kind.New(kind.Decode, "malformed pam reply: "+rest)
		}
	case "ratelimit":
		parts := strings.Split(rest, ":")
		if len(parts) != 3 {
			return nil, kind.New(kind.Decode, "malformed ratelimit reply: "+rest)
		}
		limit, err1 := strconv.ParseInt(parts[0], 10, 64)
		remaining, err2 := strconv.ParseInt(parts[1], 10, 64)
		reset, err3 := strconv.ParseInt(parts[2], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, kind.New(kind.Decode, "malformed ratelimit numbers: "+rest)
		}
		return RateLimitReply{Limit: limit, Remaining: remaining, Reset: reset}, nil
	case "sectors":
		if rest == "" {
			return SectorsReply{}, nil
		}
		lines := strings.Split(rest, "\n")
		sectors := make([]SectorLine, len(lines))
		for i, l := range lines {
			s, err := ParseSectorLine(l)
			if err != nil {
				return nil, err
			}
			sectors[i] = s
		}
		return SectorsReply{Sectors: sectors}, nil
	case "pw":
		fields := strings.SplitN(rest, ":", 5)
		if len(fields) != 5 {
			return nil, kind.New(kind.Decode, "malformed pw reply: "+rest)
		}
		uid, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, kind.Wrap(kind.Decode, "malformed pw uid", err)
		}
		gid, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return nil, kind.Wrap(kind.Decode, "malformed pw gid", err)
		}
		return PwReply{Login: fields[0], UID: uid, GID: gid, Home: fields[3], Shell: fields[4]}, nil
	case "sp":
		login, passwd, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, kind.New(kind.Decode, "malformed sp reply: "+rest)
		}
		return SpReply{Login: login, Passwd: passwd}, nil
	case "gr":
		s, err := ParseSectorLine(rest)
		if err != nil {
			return nil, err
		}
		return GrReply{Sector: s}, nil
	default:
		return nil, kind.New(kind.Decode, "unknown reply kind: "+kindStr)
	}
}
