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

package remote

import (
	"context"
	"fmt"

	"github.com/google/go-github/v33/github"

	"github.com/nabbar/sectora/internal/domain"
)

const pageSize = 100

// ListTeams implements domain.Fetcher over client.Teams.ListTeams.
func (c *Client) ListTeams(ctx context.Context, org string) ([]domain.RemoteSector, error) {
	items, err := paginateAndCache(c, fmt.Sprintf("/orgs/%s/teams", org), func(page int) ([]*github.Team, *github.Response, error) {
		return c.gh.Teams.ListTeams(ctx, org, &github.ListOptions{Page: page, PerPage: pageSize})
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.RemoteSector, 0, len(items))
	for _, t := range items {
		if t == nil || t.ID == nil || t.Slug == nil {
			continue
		}
		out = append(out, domain.RemoteSector{ID: uint64(*t.ID), Name: *t.Slug})
	}
	return out, nil
}

// ListTeamMembers implements domain.Fetcher over
// client.Teams.ListTeamMembersBySlug.
func (c *Client) ListTeamMembers(ctx context.Context, org, teamSlug string) ([]domain.Member, error) {
	items, err := paginateAndCache(c, fmt.Sprintf("/orgs/%s/teams/%s/members", org, teamSlug), func(page int) ([]*github.User, *github.Response, error) {
		return c.gh.Teams.ListTeamMembersBySlug(ctx, org, teamSlug, &github.TeamListTeamMembersOptions{
			ListOptions: github.ListOptions{Page: page, PerPage: pageSize},
		})
	})
	if err != nil {
		return nil, err
	}
	return usersToMembers(items), nil
}

func usersToMembers(users []*github.User) []domain.Member {
	out := make([]domain.Member, 0, len(users))
	for _, u := range users {
		if u == nil || u.ID == nil || u.Login == nil {
			continue
		}
		out = append(out, domain.Member{ID: uint64(*u.ID), Login: *u.Login})
	}
	return out
}
