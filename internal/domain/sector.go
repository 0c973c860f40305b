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

// SectorKind distinguishes a team-backed sector from a repo-backed one.
type SectorKind int

const (
	Team SectorKind = iota
	Repo
)

// Sector is a tagged record derived from a remote team or repo object.
type Sector struct {
	ID   uint64
	Name string
	Kind SectorKind
}

// Member is one user belonging to a sector, keyed by the remote service's
// numeric id (the local uid) and login.
type Member struct {
	ID    uint64
	Login string
}

// SectorGroup is a sector augmented with an optional local-identity override
// and its resolved membership.
type SectorGroup struct {
	Sector    Sector
	GID       *uint64
	GroupName *string
	Members   []Member
}

// EffectiveGID returns the override gid if present, else the sector's remote id.
func (g SectorGroup) EffectiveGID() uint64 {
	if g.GID != nil {
		return *g.GID
	}
	return g.Sector.ID
}

// EffectiveGroupName returns the override group name if present, else the
// sector's remote name.
func (g SectorGroup) EffectiveGroupName() string {
	if g.GroupName != nil {
		return *g.GroupName
	}
	return g.Sector.Name
}

// MemberByLogin returns the member with the given login and true, or the
// zero Member and false.
func (g SectorGroup) MemberByLogin(login string) (Member, bool) {
	for _, m := range g.Members {
		if m.Login == login {
			return m, true
		}
	}
	return Member{}, false
}

// MemberByID returns the member with the given id and true, or the zero
// Member and false.
func (g SectorGroup) MemberByID(id uint64) (Member, bool) {
	for _, m := range g.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// Logins returns the group's member logins, preserving declaration order.
func (g SectorGroup) Logins() []string {
	out := make([]string, len(g.Members))
	for i, m := range g.Members {
		out[i] = m.Login
	}
	return out
}

// SectorSet is the full, ordered list of sector-groups the daemon resolves
// lookups against: team-derived groups in team-config declaration order
// followed by repo-derived groups in repo-config declaration order, per
// spec.md §4.C.
type SectorSet struct {
	Groups []SectorGroup
}

// FindByLogin returns the first sector-group (in declaration order)
// containing login, and the member record within it.
func (s SectorSet) FindByLogin(login string) (SectorGroup, Member, bool) {
	for _, g := range s.Groups {
		if m, ok := g.MemberByLogin(login); ok {
			return g, m, true
		}
	}
	return SectorGroup{}, Member{}, false
}

// FindByUID returns the first sector-group (in declaration order) containing
// a member with the given id, and that member.
func (s SectorSet) FindByUID(uid uint64) (SectorGroup, Member, bool) {
	for _, g := range s.Groups {
		if m, ok := g.MemberByID(uid); ok {
			return g, m, true
		}
	}
	return SectorGroup{}, Member{}, false
}

// FindByGID returns the first sector-group (in declaration order) whose
// effective gid matches gid. Per spec.md §9's open question, overlapping
// effective gids are not deduplicated or detected; the earlier group wins.
func (s SectorSet) FindByGID(gid uint64) (SectorGroup, bool) {
	for _, g := range s.Groups {
		if g.EffectiveGID() == gid {
			return g, true
		}
	}
	return SectorGroup{}, false
}

// FindByGroupName returns the first sector-group (in declaration order)
// whose effective group name matches name.
func (s SectorSet) FindByGroupName(name string) (SectorGroup, bool) {
	for _, g := range s.Groups {
		if g.EffectiveGroupName() == name {
			return g, true
		}
	}
	return SectorGroup{}, false
}

// CheckPAM is the logical union across every sector-group: true iff login
// appears as a member of at least one of them.
func (s SectorSet) CheckPAM(login string) bool {
	_, _, ok := s.FindByLogin(login)
	return ok
}
