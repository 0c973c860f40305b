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

// Package daemon implements the resolver daemon's single-threaded dispatch
// loop (spec.md §4.E): it turns parsed wire.Request values into wire.Reply
// values by consulting the domain model and the remote client, holding the
// per-caller enumeration cursors between calls.
package daemon

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/nabbar/sectora/internal/domain"
	"github.com/nabbar/sectora/internal/kind"
	"github.com/nabbar/sectora/internal/remote"
	"github.com/nabbar/sectora/internal/wire"
)

// Remote is the contract the daemon needs from internal/remote: the
// Fetcher methods GetSectors uses plus the three operations with no
// domain-level home (key lookup, rate limit, cache cleanup). *remote.Client
// satisfies this.
type Remote interface {
	domain.Fetcher
	ListKeys(ctx context.Context, user string) ([]string, error)
	RateLimits(ctx context.Context) (remote.RateLimit, error)
	CleanCache() error
}

// Daemon dispatches parsed requests to replies. It holds no long-lived
// sector table: every request that needs one recomputes it via GetSectors,
// which is itself cache-backed (spec.md §3's "Lifecycles").
type Daemon struct {
	cfg     *domain.Config
	remote  Remote
	log     *logrus.Logger
	cursors *cursorTable

	loadUserConfig func(path string) (*domain.UserConfig, error)
	fileExists     func(path string) bool
}

// New builds a Daemon wired to the real filesystem for per-user override
// files and shell-existence checks.
func New(cfg *domain.Config, r Remote, log *logrus.Logger, loadUserConfig func(path string) (*domain.UserConfig, error)) *Daemon {
	return &Daemon{
		cfg:            cfg,
		remote:         r,
		log:            log,
		cursors:        newCursorTable(),
		loadUserConfig: loadUserConfig,
		fileExists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

// Handle dispatches one parsed request and returns the reply to send back.
// Enumeration requests carry their own caller pid in the wire frame
// (wire.EntryKey.PID); Handle does not need the transport layer to supply
// one separately. It never panics: every internal failure becomes an
// ErrorReply, per spec.md §7.
func (d *Daemon) Handle(ctx context.Context, req wire.Request) wire.Reply {
	switch v := req.(type) {
	case wire.KeyRequest:
		keys, err := d.remote.ListKeys(ctx, v.Login)
		if err != nil {
			return errorReply(kind.Wrap(kind.Transport, "fetch keys: "+v.Login, err))
		}
		return wire.KeyReply{Keys: keys}

	case wire.PamRequest:
		set, err := d.sectors(ctx)
		if err != nil {
			return errorReply(err)
		}
		return wire.PamReply{Allowed: set.CheckPAM(v.Login)}

	case wire.CleanupRequest:
		if err := d.remote.CleanCache(); err != nil {
			return errorReply(kind.Wrap(kind.Transport, "cleanup", err))
		}
		return wire.SuccessReply{}

	case wire.RateLimitRequest:
		rl, err := d.remote.RateLimits(ctx)
		if err != nil {
			return errorReply(kind.Wrap(kind.Transport, "rate limit", err))
		}
		return wire.RateLimitReply{Limit: rl.Limit, Remaining: rl.Remaining, Reset: rl.Reset}

	case wire.SectorsRequest:
		set, err := d.sectors(ctx)
		if err != nil {
			return errorReply(err)
		}
		lines := make([]wire.SectorLine, len(set.Groups))
		for i, g := range set.Groups {
			lines[i] = sectorLineFor(g)
		}
		return wire.SectorsReply{Sectors: lines}

	case wire.PwRequest:
		return d.handlePw(ctx, v)

	case wire.SpRequest:
		return d.handleSp(ctx, v)

	case wire.GrRequest:
		return d.handleGr(ctx, v)

	default:
		return errorReply(kind.New(kind.TryAgain, "unsupported request"))
	}
}

func (d *Daemon) sectors(ctx context.Context) (domain.SectorSet, error) {
	return domain.GetSectors(ctx, d.cfg, d.remote)
}

func errorReply(err error) wire.ErrorReply {
	return wire.ErrorReply{Msg: err.Error()}
}

// userConfigFor loads the per-user override file under login's home
// directory, per spec.md §3's UserConfig lifecycle. Absence is not an
// error (LoadUserConfig returns nil, nil for it).
func (d *Daemon) userConfigFor(login string) (*domain.UserConfig, error) {
	path := filepath.Join(d.cfg.HomePath(login), d.cfg.UserConfPath)
	return d.loadUserConfig(path)
}

func (d *Daemon) pwReplyFor(group domain.SectorGroup, m domain.Member) (wire.PwReply, error) {
	uc, err := d.userConfigFor(m.Login)
	if err != nil {
		return wire.PwReply{}, err
	}
	return wire.PwReply{
		Login: m.Login,
		UID:   m.ID,
		GID:   group.EffectiveGID(),
		Home:  d.cfg.HomePath(m.Login),
		Shell: domain.ResolveShell(d.cfg, uc, d.fileExists),
	}, nil
}

func (d *Daemon) spReplyFor(m domain.Member) (wire.SpReply, error) {
	uc, err := d.userConfigFor(m.Login)
	if err != nil {
		return wire.SpReply{}, err
	}
	return wire.SpReply{Login: m.Login, Passwd: domain.ResolvePasswd(uc)}, nil
}

func sectorLineFor(g domain.SectorGroup) wire.SectorLine {
	line := wire.SectorLine{ID: g.Sector.ID, Name: g.Sector.Name}
	if g.Sector.Kind == domain.Repo {
		line.Kind = wire.SectorRepo
	} else {
		line.Kind = wire.SectorTeam
	}
	if g.GID != nil {
		gid := *g.GID
		line.GID = &gid
	}
	if g.GroupName != nil {
		name := *g.GroupName
		line.Group = &name
	}
	for _, m := range g.Members {
		line.Members = append(line.Members, wire.MemberRef{ID: m.ID, Login: m.Login})
	}
	return line
}
