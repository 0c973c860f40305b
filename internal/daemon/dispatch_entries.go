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

package daemon

import (
	"context"
	"fmt"

	"github.com/nabbar/sectora/internal/domain"
	"github.com/nabbar/sectora/internal/kind"
	"github.com/nabbar/sectora/internal/wire"
)

// handlePw implements the three pw request shapes of spec.md §4.E: by-key
// lookup, and the set/get/end enumeration lifecycle. The cursor key for
// enumeration requests is the pid carried in the wire frame itself
// (wire.EntryKey.PID), not anything recovered from the transport.
func (d *Daemon) handlePw(ctx context.Context, v wire.PwRequest) wire.Reply {
	switch {
	case v.ByUID != nil:
		set, err := d.sectors(ctx)
		if err != nil {
			return errorReply(err)
		}
		g, m, ok := set.FindByUID(*v.ByUID)
		if !ok {
			return errorReply(kind.New(kind.NotFound, fmt.Sprintf("pw: uid %d", *v.ByUID)))
		}
		reply, err := d.pwReplyFor(g, m)
		if err != nil {
			return errorReply(err)
		}
		return reply

	case v.ByName != nil:
		set, err := d.sectors(ctx)
		if err != nil {
			return errorReply(err)
		}
		g, m, ok := set.FindByLogin(*v.ByName)
		if !ok {
			return errorReply(kind.New(kind.NotFound, "pw: name "+*v.ByName))
		}
		reply, err := d.pwReplyFor(g, m)
		if err != nil {
			return errorReply(err)
		}
		return reply

	case v.Entry != nil:
		return d.handlePwEntry(ctx, *v.Entry)

	default:
		return errorReply(kind.New(kind.TryAgain, "pw: empty selector"))
	}
}

func (d *Daemon) handlePwEntry(ctx context.Context, entry wire.EntryKey) wire.Reply {
	switch entry.Op {
	case wire.EntrySet:
		set, err := d.sectors(ctx)
		if err != nil {
			return errorReply(err)
		}
		records := make([]wire.Reply, 0, countMembers(set))
		for _, g := range set.Groups {
			for _, m := range g.Members {
				r, err := d.pwReplyFor(g, m)
				if err != nil {
					return errorReply(err)
				}
				records = append(records, r)
			}
		}
		d.cursors.set(entry.PID, pwEntry, records)
		return wire.SuccessReply{}

	case wire.EntryGet:
		r, ok := d.cursors.next(entry.PID, pwEntry)
		if !ok {
			return errorReply(kind.New(kind.NotFound, "pw: enumeration exhausted"))
		}
		return r

	case wire.EntryEnd:
		d.cursors.end(entry.PID, pwEntry)
		return wire.SuccessReply{}

	default:
		return errorReply(kind.New(kind.TryAgain, "pw: unknown entry op"))
	}
}

// handleSp implements sp by-name lookup and enumeration, mirroring handlePw.
func (d *Daemon) handleSp(ctx context.Context, v wire.SpRequest) wire.Reply {
	switch {
	case v.ByName != nil:
		set, err := d.sectors(ctx)
		if err != nil {
			return errorReply(err)
		}
		_, m, ok := set.FindByLogin(*v.ByName)
		if !ok {
			return errorReply(kind.New(kind.NotFound, "sp: name "+*v.ByName))
		}
		reply, err := d.spReplyFor(m)
		if err != nil {
			return errorReply(err)
		}
		return reply

	case v.Entry != nil:
		return d.handleSpEntry(ctx, *v.Entry)

	default:
		return errorReply(kind.New(kind.TryAgain, "sp: empty selector"))
	}
}

func (d *Daemon) handleSpEntry(ctx context.Context, entry wire.EntryKey) wire.Reply {
	switch entry.Op {
	case wire.EntrySet:
		set, err := d.sectors(ctx)
		if err != nil {
			return errorReply(err)
		}
		records := make([]wire.Reply, 0, countMembers(set))
		for _, g := range set.Groups {
			for _, m := range g.Members {
				r, err := d.spReplyFor(m)
				if err != nil {
					return errorReply(err)
				}
				records = append(records, r)
			}
		}
		d.cursors.set(entry.PID, spEntry, records)
		return wire.SuccessReply{}

	case wire.EntryGet:
		r, ok := d.cursors.next(entry.PID, spEntry)
		if !ok {
			return errorReply(kind.New(kind.NotFound, "sp: enumeration exhausted"))
		}
		return r

	case wire.EntryEnd:
		d.cursors.end(entry.PID, spEntry)
		return wire.SuccessReply{}

	default:
		return errorReply(kind.New(kind.TryAgain, "sp: unknown entry op"))
	}
}

// handleGr implements gr by-gid/by-name lookup and enumeration.
func (d *Daemon) handleGr(ctx context.Context, v wire.GrRequest) wire.Reply {
	switch {
	case v.ByGID != nil:
		set, err := d.sectors(ctx)
		if err != nil {
			return errorReply(err)
		}
		g, ok := set.FindByGID(*v.ByGID)
		if !ok {
			return errorReply(kind.New(kind.NotFound, fmt.Sprintf("gr: gid %d", *v.ByGID)))
		}
		return wire.GrReply{Sector: sectorLineFor(g)}

	case v.ByName != nil:
		set, err := d.sectors(ctx)
		if err != nil {
			return errorReply(err)
		}
		g, ok := set.FindByGroupName(*v.ByName)
		if !ok {
			return errorReply(kind.New(kind.NotFound, "gr: name "+*v.ByName))
		}
		return wire.GrReply{Sector: sectorLineFor(g)}

	case v.Entry != nil:
		return d.handleGrEntry(ctx, *v.Entry)

	default:
		return errorReply(kind.New(kind.TryAgain, "gr: empty selector"))
	}
}

func (d *Daemon) handleGrEntry(ctx context.Context, entry wire.EntryKey) wire.Reply {
	switch entry.Op {
	case wire.EntrySet:
		set, err := d.sectors(ctx)
		if err != nil {
			return errorReply(err)
		}
		records := make([]wire.Reply, 0, len(set.Groups))
		for _, g := range set.Groups {
			records = append(records, wire.GrReply{Sector: sectorLineFor(g)})
		}
		d.cursors.set(entry.PID, grEntry, records)
		return wire.SuccessReply{}

	case wire.EntryGet:
		r, ok := d.cursors.next(entry.PID, grEntry)
		if !ok {
			return errorReply(kind.New(kind.NotFound, "gr: enumeration exhausted"))
		}
		return r

	case wire.EntryEnd:
		d.cursors.end(entry.PID, grEntry)
		return wire.SuccessReply{}

	default:
		return errorReply(kind.New(kind.TryAgain, "gr: unknown entry op"))
	}
}

func countMembers(set domain.SectorSet) int {
	n := 0
	for _, g := range set.Groups {
		n += len(g.Members)
	}
	return n
}
