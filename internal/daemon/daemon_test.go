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
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/nabbar/sectora/internal/domain"
	"github.com/nabbar/sectora/internal/kind"
	"github.com/nabbar/sectora/internal/remote"
	"github.com/nabbar/sectora/internal/wire"
)

// fakeRemote reproduces spec.md §8's literal scenario: team tA (id 100,
// override gid 500, override group name teamA) with members alice/1001 and
// bob/1002; repo rA (id 200, no overrides) with outside collaborators
// bob/1002 and carol/1003.
type fakeRemote struct {
	keys     map[string][]string
	rateLim  remote.RateLimit
	cleaned  bool
	failTeam bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		keys:    map[string][]string{"alice": {"ssh-ed25519 AAAA alice"}},
		rateLim: remote.RateLimit{Limit: 5000, Remaining: 4999, Reset: 1234567890},
	}
}

func (f *fakeRemote) ListTeams(ctx context.Context, org string) ([]domain.RemoteSector, error) {
	if f.failTeam {
		return nil, kind.New(kind.Transport, "boom")
	}
	return []domain.RemoteSector{{ID: 100, Name: "tA"}}, nil
}

func (f *fakeRemote) ListTeamMembers(ctx context.Context, org, teamSlug string) ([]domain.Member, error) {
	return []domain.Member{{ID: 1001, Login: "alice"}, {ID: 1002, Login: "bob"}}, nil
}

func (f *fakeRemote) ListRepos(ctx context.Context, org string) ([]domain.RemoteSector, error) {
	return []domain.RemoteSector{{ID: 200, Name: "rA"}}, nil
}

func (f *fakeRemote) ListOutsideCollaborators(ctx context.Context, org, repo string) ([]domain.Member, error) {
	return []domain.Member{{ID: 1002, Login: "bob"}, {ID: 1003, Login: "carol"}}, nil
}

func (f *fakeRemote) ListKeys(ctx context.Context, user string) ([]string, error) {
	return f.keys[user], nil
}

func (f *fakeRemote) RateLimits(ctx context.Context) (remote.RateLimit, error) {
	return f.rateLim, nil
}

func (f *fakeRemote) CleanCache() error {
	f.cleaned = true
	return nil
}

func gid500() *uint64 { g := uint64(500); return &g }
func groupName(s string) *string { return &s }

func testDaemon(r *fakeRemote) *Daemon {
	gid := gid500()
	cfg := &domain.Config{
		Org:          "acme",
		HomeTemplate: "/home/{}",
		DefaultShell: "/bin/bash",
		UserConfPath: ".sectora.conf",
		Teams: []domain.TeamConfig{
			{Name: "tA", GID: gid, GroupName: groupName("teamA")},
		},
		Repos: []domain.RepoConfig{
			{Name: "rA"},
		},
	}
	return New(cfg, r, logrus.New(), func(path string) (*domain.UserConfig, error) {
		return nil, nil
	})
}

func strPtr(s string) *string { return &s }
func u64Ptr(v uint64) *uint64 { return &v }

func TestHandlePamAllowedAndDenied(t *testing.T) {
	d := testDaemon(newFakeRemote())

	reply := d.Handle(context.Background(), wire.PamRequest{Login: "alice"})
	if r, ok := reply.(wire.PamReply); !ok || !r.Allowed {
		t.Fatalf("expected allowed pam reply, got %#v", reply)
	}

	reply = d.Handle(context.Background(), wire.PamRequest{Login: "mallory"})
	if r, ok := reply.(wire.PamReply); !ok || r.Allowed {
		t.Fatalf("expected denied pam reply, got %#v", reply)
	}
}

func TestHandlePwByNameAlice(t *testing.T) {
	d := testDaemon(newFakeRemote())

	reply := d.Handle(context.Background(), wire.PwRequest{ByName: strPtr("alice")})
	pw, ok := reply.(wire.PwReply)
	if !ok {
		t.Fatalf("expected pw reply, got %#v", reply)
	}
	want := wire.PwReply{Login: "alice", UID: 1001, GID: 500, Home: "/home/alice", Shell: "/bin/bash"}
	if pw != want {
		t.Fatalf("unexpected pw reply: %+v want %+v", pw, want)
	}
}

func TestHandlePwByUIDTeamWinsOverRepoByDeclarationOrder(t *testing.T) {
	d := testDaemon(newFakeRemote())

	reply := d.Handle(context.Background(), wire.PwRequest{ByUID: u64Ptr(1002)})
	pw, ok := reply.(wire.PwReply)
	if !ok {
		t.Fatalf("expected pw reply, got %#v", reply)
	}
	if pw.UID != 1002 || pw.GID != 500 {
		t.Fatalf("expected bob's team gid 500 to win by declaration order, got %+v", pw)
	}
}

func TestHandlePwByNameNotFound(t *testing.T) {
	d := testDaemon(newFakeRemote())

	reply := d.Handle(context.Background(), wire.PwRequest{ByName: strPtr("mallory")})
	errReply, ok := reply.(wire.ErrorReply)
	if !ok {
		t.Fatalf("expected error reply, got %#v", reply)
	}
	if kind.ClassifyMessage(errReply.Msg) != kind.NotFound {
		t.Fatalf("expected not-found classified message, got %q", errReply.Msg)
	}
}

func TestHandleGrByGID(t *testing.T) {
	d := testDaemon(newFakeRemote())

	reply := d.Handle(context.Background(), wire.GrRequest{ByGID: u64Ptr(200)})
	gr, ok := reply.(wire.GrReply)
	if !ok {
		t.Fatalf("expected gr reply, got %#v", reply)
	}
	if gr.Sector.Name != "rA" || gr.Sector.ID != 200 || gr.Sector.Kind != wire.SectorRepo {
		t.Fatalf("unexpected sector: %+v", gr.Sector)
	}
	if len(gr.Sector.Members) != 2 {
		t.Fatalf("expected 2 members, got %+v", gr.Sector.Members)
	}
}

func TestHandleKeyAndRateLimitAndCleanup(t *testing.T) {
	r := newFakeRemote()
	d := testDaemon(r)

	keyReply := d.Handle(context.Background(), wire.KeyRequest{Login: "alice"})
	kr, ok := keyReply.(wire.KeyReply)
	if !ok || len(kr.Keys) != 1 {
		t.Fatalf("unexpected key reply: %#v", keyReply)
	}

	rlReply := d.Handle(context.Background(), wire.RateLimitRequest{})
	rl, ok := rlReply.(wire.RateLimitReply)
	if !ok || rl.Limit != 5000 || rl.Remaining != 4999 {
		t.Fatalf("unexpected ratelimit reply: %#v", rlReply)
	}

	cleanupReply := d.Handle(context.Background(), wire.CleanupRequest{})
	if _, ok := cleanupReply.(wire.SuccessReply); !ok || !r.cleaned {
		t.Fatalf("expected cleanup success, got %#v (cleaned=%v)", cleanupReply, r.cleaned)
	}
}

func TestPwEnumerationTotalityMatchesGetSectors(t *testing.T) {
	d := testDaemon(newFakeRemote())
	ctx := context.Background()

	setReply := d.Handle(ctx, wire.PwRequest{Entry: &wire.EntryKey{Op: wire.EntrySet, PID: 7}})
	if _, ok := setReply.(wire.SuccessReply); !ok {
		t.Fatalf("expected success on set, got %#v", setReply)
	}

	var got []wire.PwReply
	for {
		r := d.Handle(ctx, wire.PwRequest{Entry: &wire.EntryKey{Op: wire.EntryGet, PID: 7}})
		if errReply, ok := r.(wire.ErrorReply); ok {
			if kind.ClassifyMessage(errReply.Msg) != kind.NotFound {
				t.Fatalf("unexpected error during enumeration: %s", errReply.Msg)
			}
			break
		}
		got = append(got, r.(wire.PwReply))
	}

	endReply := d.Handle(ctx, wire.PwRequest{Entry: &wire.EntryKey{Op: wire.EntryEnd, PID: 7}})
	if _, ok := endReply.(wire.SuccessReply); !ok {
		t.Fatalf("expected success on end, got %#v", endReply)
	}

	want := []wire.PwReply{
		{Login: "alice", UID: 1001, GID: 500, Home: "/home/alice", Shell: "/bin/bash"},
		{Login: "bob", UID: 1002, GID: 500, Home: "/home/bob", Shell: "/bin/bash"},
		{Login: "bob", UID: 1002, GID: 200, Home: "/home/bob", Shell: "/bin/bash"},
		{Login: "carol", UID: 1003, GID: 200, Home: "/home/carol", Shell: "/bin/bash"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEnumerationSessionIsolationByPID(t *testing.T) {
	d := testDaemon(newFakeRemote())
	ctx := context.Background()

	d.Handle(ctx, wire.PwRequest{Entry: &wire.EntryKey{Op: wire.EntrySet, PID: 1}})
	d.Handle(ctx, wire.PwRequest{Entry: &wire.EntryKey{Op: wire.EntrySet, PID: 2}})

	first1 := d.Handle(ctx, wire.PwRequest{Entry: &wire.EntryKey{Op: wire.EntryGet, PID: 1}}).(wire.PwReply)
	first2 := d.Handle(ctx, wire.PwRequest{Entry: &wire.EntryKey{Op: wire.EntryGet, PID: 2}}).(wire.PwReply)

	if first1 != first2 {
		t.Fatalf("expected independent cursors to start at the same first record, got %+v vs %+v", first1, first2)
	}

	second1 := d.Handle(ctx, wire.PwRequest{Entry: &wire.EntryKey{Op: wire.EntryGet, PID: 1}}).(wire.PwReply)
	if second1 == first1 {
		t.Fatalf("expected pid 1's cursor to have advanced independently of pid 2's get call")
	}
}

func TestSetEntryDiscardsPriorCursorForSamePID(t *testing.T) {
	d := testDaemon(newFakeRemote())
	ctx := context.Background()

	d.Handle(ctx, wire.PwRequest{Entry: &wire.EntryKey{Op: wire.EntrySet, PID: 9}})
	d.Handle(ctx, wire.PwRequest{Entry: &wire.EntryKey{Op: wire.EntryGet, PID: 9}})
	// Re-issuing set discards progress; the next get must restart from the front.
	d.Handle(ctx, wire.PwRequest{Entry: &wire.EntryKey{Op: wire.EntrySet, PID: 9}})
	restarted := d.Handle(ctx, wire.PwRequest{Entry: &wire.EntryKey{Op: wire.EntryGet, PID: 9}}).(wire.PwReply)

	if restarted.Login != "alice" {
		t.Fatalf("expected re-issued set to restart enumeration at alice, got %+v", restarted)
	}
}

func TestSectorsPropagatesRemoteFailure(t *testing.T) {
	r := newFakeRemote()
	r.failTeam = true
	d := testDaemon(r)

	reply := d.Handle(context.Background(), wire.SectorsRequest{})
	errReply, ok := reply.(wire.ErrorReply)
	if !ok {
		t.Fatalf("expected error reply, got %#v", reply)
	}
	if kind.ClassifyMessage(errReply.Msg) != kind.Transport {
		t.Fatalf("expected transport-classified message, got %q", errReply.Msg)
	}
}
