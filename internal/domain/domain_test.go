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

package domain

import (
	"context"
	"errors"
	"testing"
)

func gidPtr(v uint64) *uint64   { return &v }
func namePtr(v string) *string { return &v }

func TestConfigValidateRequiresTokenAndOrg(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"missing both", Config{}, false},
		{"missing org", Config{Token: "t"}, false},
		{"missing token", Config{Org: "o"}, false},
		{"both set", Config{Token: "t", Org: "o"}, true},
	}
	for _, c := range cases {
		err := c.cfg.Validate()
		if c.ok && err != nil {
			t.Errorf("%s: expected no error, got %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected error, got nil", c.name)
		}
	}
}

func TestHomePathSubstitutesPlaceholder(t *testing.T) {
	cfg := Config{HomeTemplate: "/home/{}"}
	if got := cfg.HomePath("alice"); got != "/home/alice" {
		t.Fatalf("unexpected home path: %q", got)
	}
}

func TestEffectiveGIDAndGroupName(t *testing.T) {
	withOverride := SectorGroup{Sector: Sector{ID: 100, Name: "tA"}, GID: gidPtr(500), GroupName: namePtr("teamA")}
	if withOverride.EffectiveGID() != 500 {
		t.Fatalf("expected override gid 500, got %d", withOverride.EffectiveGID())
	}
	if withOverride.EffectiveGroupName() != "teamA" {
		t.Fatalf("expected override name teamA, got %q", withOverride.EffectiveGroupName())
	}

	noOverride := SectorGroup{Sector: Sector{ID: 200, Name: "rA"}}
	if noOverride.EffectiveGID() != 200 {
		t.Fatalf("expected fallback gid 200, got %d", noOverride.EffectiveGID())
	}
	if noOverride.EffectiveGroupName() != "rA" {
		t.Fatalf("expected fallback name rA, got %q", noOverride.EffectiveGroupName())
	}
}

// buildScenarioSet reproduces spec.md §8's end-to-end scenario fixture:
// team tA (id 100, gid override 500, name override teamA) with members
// alice(1001)/bob(1002); repo rA (id 200, no overrides) with collaborators
// bob(1002)/carol(1003).
func buildScenarioSet() SectorSet {
	return SectorSet{Groups: []SectorGroup{
		{
			Sector:    Sector{ID: 100, Name: "tA", Kind: Team},
			GID:       gidPtr(500),
			GroupName: namePtr("teamA"),
			Members:   []Member{{ID: 1001, Login: "alice"}, {ID: 1002, Login: "bob"}},
		},
		{
			Sector:  Sector{ID: 200, Name: "rA", Kind: Repo},
			Members: []Member{{ID: 1002, Login: "bob"}, {ID: 1003, Login: "carol"}},
		},
	}}
}

func TestFindByLoginDeclarationOrderDominance(t *testing.T) {
	set := buildScenarioSet()

	g, m, ok := set.FindByLogin("bob")
	if !ok {
		t.Fatalf("expected bob to be found")
	}
	if m.ID != 1002 {
		t.Fatalf("unexpected member id: %d", m.ID)
	}
	if g.EffectiveGID() != 500 {
		t.Fatalf("expected team sector-group (gid 500) to win over repo, got gid %d", g.EffectiveGID())
	}
}

func TestFindByUIDDeclarationOrderDominance(t *testing.T) {
	set := buildScenarioSet()

	g, _, ok := set.FindByUID(1002)
	if !ok {
		t.Fatalf("expected uid 1002 to be found")
	}
	if g.EffectiveGID() != 500 {
		t.Fatalf("expected team sector-group to win for uid 1002, got gid %d", g.EffectiveGID())
	}
}

func TestFindByGIDAndGroupName(t *testing.T) {
	set := buildScenarioSet()

	g, ok := set.FindByGID(200)
	if !ok || g.Sector.Name != "rA" {
		t.Fatalf("expected to find rA by gid 200, got %+v ok=%v", g, ok)
	}

	g2, ok := set.FindByGroupName("teamA")
	if !ok || g2.Sector.ID != 100 {
		t.Fatalf("expected to find tA by group name teamA, got %+v ok=%v", g2, ok)
	}
}

func TestCheckPAMUnionMembership(t *testing.T) {
	set := buildScenarioSet()

	for _, login := range []string{"alice", "bob", "carol"} {
		if !set.CheckPAM(login) {
			t.Errorf("expected %s to be a member", login)
		}
	}
	if set.CheckPAM("dave") {
		t.Errorf("expected dave to not be a member")
	}
}

func TestResolveShellHonorsOverrideOnlyWhenPathExists(t *testing.T) {
	cfg := &Config{DefaultShell: "/bin/bash"}
	override := "/bin/zsh"
	uc := &UserConfig{Shell: &override}

	existing := func(p string) bool { return p == "/bin/zsh" }
	if got := ResolveShell(cfg, uc, existing); got != "/bin/zsh" {
		t.Fatalf("expected override shell, got %q", got)
	}

	missing := func(p string) bool { return false }
	if got := ResolveShell(cfg, uc, missing); got != "/bin/bash" {
		t.Fatalf("expected default shell when override path absent, got %q", got)
	}

	if got := ResolveShell(cfg, nil, existing); got != "/bin/bash" {
		t.Fatalf("expected default shell when no user config, got %q", got)
	}
}

func TestResolvePasswdDefaultsToDisabled(t *testing.T) {
	if got := ResolvePasswd(nil); got != "*" {
		t.Fatalf("expected disabled placeholder, got %q", got)
	}
	passwd := "hash"
	uc := &UserConfig{Passwd: &passwd}
	if got := ResolvePasswd(uc); got != "hash" {
		t.Fatalf("expected override passwd, got %q", got)
	}
}

type fakeFetcher struct {
	teams       map[string][]RemoteSector
	teamMembers map[string][]Member
	repos       map[string][]RemoteSector
	collabs     map[string][]Member
	err         error
}

func (f *fakeFetcher) ListTeams(_ context.Context, org string) ([]RemoteSector, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.teams[org], nil
}

func (f *fakeFetcher) ListTeamMembers(_ context.Context, _, teamSlug string) ([]Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.teamMembers[teamSlug], nil
}

func (f *fakeFetcher) ListRepos(_ context.Context, org string) ([]RemoteSector, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.repos[org], nil
}

func (f *fakeFetcher) ListOutsideCollaborators(_ context.Context, _, repo string) ([]Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.collabs[repo], nil
}

func TestGetSectorsConcatenatesTeamsThenRepos(t *testing.T) {
	cfg := &Config{
		Org: "acme",
		Teams: []TeamConfig{
			{Name: "tA", GID: gidPtr(500), GroupName: namePtr("teamA")},
		},
		Repos: []RepoConfig{
			{Name: "rA"},
		},
	}
	f := &fakeFetcher{
		teams:       map[string][]RemoteSector{"acme": {{ID: 100, Name: "tA"}}},
		teamMembers: map[string][]Member{"tA": {{ID: 1001, Login: "alice"}, {ID: 1002, Login: "bob"}}},
		repos:       map[string][]RemoteSector{"acme": {{ID: 200, Name: "rA"}}},
		collabs:     map[string][]Member{"rA": {{ID: 1002, Login: "bob"}, {ID: 1003, Login: "carol"}}},
	}

	set, err := GetSectors(context.Background(), cfg, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(set.Groups))
	}
	if set.Groups[0].Sector.Kind != Team || set.Groups[1].Sector.Kind != Repo {
		t.Fatalf("expected teams before repos")
	}
}

func TestGetSectorsAllowsEmptyTeamsOrRepos(t *testing.T) {
	cfg := &Config{Org: "acme", Repos: []RepoConfig{{Name: "rA"}}}
	f := &fakeFetcher{
		repos:   map[string][]RemoteSector{"acme": {{ID: 200, Name: "rA"}}},
		collabs: map[string][]Member{"rA": {{ID: 1003, Login: "carol"}}},
	}

	set, err := GetSectors(context.Background(), cfg, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Groups) != 1 || set.Groups[0].Sector.Name != "rA" {
		t.Fatalf("expected single repo group, got %+v", set.Groups)
	}
}

func TestGetSectorsPropagatesFetchError(t *testing.T) {
	cfg := &Config{Org: "acme", Teams: []TeamConfig{{Name: "tA"}}}
	f := &fakeFetcher{err: errors.New("boom")}

	if _, err := GetSectors(context.Background(), cfg, f); err == nil {
		t.Fatalf("expected error to propagate")
	}
}
