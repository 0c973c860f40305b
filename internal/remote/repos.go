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

// ListRepos implements domain.Fetcher over client.Repositories.ListByOrg.
func (c *Client) ListRepos(ctx context.Context, org string) ([]domain.RemoteSector, error) {
	items, err := paginateAndCache(c, fmt.Sprintf("/orgs/%s/repos", org), func(page int) ([]*github.Repository, *github.Response, error) {
		return c.gh.Repositories.ListByOrg(ctx, org, &github.RepositoryListByOrgOptions{
			ListOptions: github.ListOptions{Page: page, PerPage: pageSize},
		})
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.RemoteSector, 0, len(items))
	for _, r := range items {
		if r == nil || r.ID == nil || r.Name == nil {
			continue
		}
		out = append(out, domain.RemoteSector{ID: uint64(*r.ID), Name: *r.Name})
	}
	return out, nil
}

// ListOutsideCollaborators implements domain.Fetcher over
// client.Repositories.ListCollaborators with affiliation=outside, per
// spec.md §4.C's rule that a repo sector's membership is its outside
// collaborators rather than its full collaborator list.
func (c *Client) ListOutsideCollaborators(ctx context.Context, org, repo string) ([]domain.Member, error) {
	items, err := paginateAndCache(c, fmt.Sprintf("/repos/%s/%s/collaborators?affiliation=outside", org, repo), func(page int) ([]*github.User, *github.Response, error) {
		return c.gh.Repositories.ListCollaborators(ctx, org, repo, &github.ListCollaboratorsOptions{
			Affiliation: "outside",
			ListOptions: github.ListOptions{Page: page, PerPage: pageSize},
		})
	})
	if err != nil {
		return nil, err
	}
	return usersToMembers(items), nil
}
