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

import "context"

// RemoteSector is the minimal shape domain needs out of a remote team or
// repo object: its numeric id and name/slug. internal/remote maps GitHub's
// team and repository objects onto this before handing them to GetSectors.
type RemoteSector struct {
	ID   uint64
	Name string
}

// Fetcher is the contract domain needs from the remote client. It is
// defined here, not in internal/remote, so that domain has no dependency on
// the transport that populates it; internal/remote implements it.
type Fetcher interface {
	ListTeams(ctx context.Context, org string) ([]RemoteSector, error)
	ListTeamMembers(ctx context.Context, org, teamSlug string) ([]Member, error)
	ListRepos(ctx context.Context, org string) ([]RemoteSector, error)
	ListOutsideCollaborators(ctx context.Context, org, repo string) ([]Member, error)
}

// GetSectors resolves every configured team and repo into a SectorGroup,
// concatenating team-derived groups (in team-config declaration order)
// ahead of repo-derived groups (in repo-config declaration order), per
// spec.md §4.C. A configured name that the remote listing does not contain
// is skipped. An empty Teams list and an empty Repos list are each
// independently valid.
func GetSectors(ctx context.Context, cfg *Config, f Fetcher) (SectorSet, error) {
	var groups []SectorGroup

	if len(cfg.Teams) > 0 {
		remoteTeams, err := f.ListTeams(ctx, cfg.Org)
		if err != nil {
			return SectorSet{}, err
		}
		byName := make(map[string]RemoteSector, len(remoteTeams))
		for _, t := range remoteTeams {
			byName[t.Name] = t
		}

		for _, tc := range cfg.Teams {
			rt, ok := byName[tc.Name]
			if !ok {
				continue
			}
			members, err := f.ListTeamMembers(ctx, cfg.Org, tc.Name)
			if err != nil {
				return SectorSet{}, err
			}
			groups = append(groups, SectorGroup{
				Sector:    Sector{ID: rt.ID, Name: rt.Name, Kind: Team},
				GID:       tc.GID,
				GroupName: tc.GroupName,
				Members:   members,
			})
		}
	}

	if len(cfg.Repos) > 0 {
		remoteRepos, err := f.ListRepos(ctx, cfg.Org)
		if err != nil {
			return SectorSet{}, err
		}
		byName := make(map[string]RemoteSector, len(remoteRepos))
		for _, r := range remoteRepos {
			byName[r.Name] = r
		}

		for _, rc := range cfg.Repos {
			rr, ok := byName[rc.Name]
			if !ok {
				continue
			}
			members, err := f.ListOutsideCollaborators(ctx, cfg.Org, rc.Name)
			if err != nil {
				return SectorSet{}, err
			}
			groups = append(groups, SectorGroup{
				Sector:    Sector{ID: rr.ID, Name: rr.Name, Kind: Repo},
				GID:       rc.GID,
				GroupName: rc.GroupName,
				Members:   members,
			})
		}
	}

	return SectorSet{Groups: groups}, nil
}
